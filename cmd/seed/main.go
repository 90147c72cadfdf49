package main

import (
	"context"
	"flag"
	"time"

	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"triviarooms/internal/config"
	"triviarooms/internal/logging"
	"triviarooms/internal/model"
	"triviarooms/internal/repository"
)

func main() {
	configFile := flag.String("config", "", "path to a config file")
	flag.Parse()

	logger, err := logging.New("info", "console")
	if err != nil {
		panic(err)
	}
	defer logging.Install(logger)()
	defer logger.Sync()

	cfg, err := config.Load(viper.New(), *configFile)
	if err != nil {
		zap.L().Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		zap.L().Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	quizRepo := repository.NewQuizRepo(client.Database(cfg.Mongo.Database))

	quiz := sampleQuiz()
	quiz.AuthorID = cfg.Auth.CuratorUsername
	for i := range quiz.Questions {
		if err := quiz.Questions[i].Check(); err != nil {
			zap.L().Fatal("invalid sample question", zap.Error(err))
		}
	}

	id, err := quizRepo.Create(ctx, quiz)
	if err != nil {
		zap.L().Fatal("failed to insert quiz", zap.Error(err))
	}

	zap.L().Info("seeded quiz",
		zap.String("id", id),
		zap.String("title", quiz.Title),
		zap.Int("questions", len(quiz.Questions)))
}

func sampleQuiz() *model.Quiz {
	return &model.Quiz{
		Title:      "General Knowledge Warm-up",
		Category:   "general",
		Difficulty: "easy",
		Questions: []model.Question{
			{
				Text:          "What is the largest planet in our solar system?",
				Options:       []string{"Earth", "Jupiter", "Saturn", "Neptune"},
				CorrectAnswer: 1,
			},
			{
				Text:          "Which element has the chemical symbol O?",
				Options:       []string{"Gold", "Osmium", "Oxygen", "Iron"},
				CorrectAnswer: 2,
			},
			{
				Text:          "How many continents are there?",
				Options:       []string{"5", "6", "7", "8"},
				CorrectAnswer: 2,
			},
			{
				Text:          "Who painted the Mona Lisa?",
				Options:       []string{"Leonardo da Vinci", "Michelangelo", "Raphael", "Donatello"},
				CorrectAnswer: 0,
			},
			{
				Text:          "What is the boiling point of water at sea level in Celsius?",
				Options:       []string{"90", "100", "110", "120"},
				CorrectAnswer: 1,
			},
			{
				Text:          "Which ocean is the largest?",
				Options:       []string{"Atlantic", "Indian", "Arctic", "Pacific"},
				CorrectAnswer: 3,
			},
		},
	}
}
