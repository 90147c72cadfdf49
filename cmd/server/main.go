package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"triviarooms/internal/config"
	"triviarooms/internal/game"
	"triviarooms/internal/logging"
	"triviarooms/internal/repository"
	"triviarooms/internal/service"
	"triviarooms/internal/store"
	"triviarooms/internal/transport/rest"
	"triviarooms/internal/transport/ws"
)

func main() {
	cobra.CheckErr(newCmd().Execute())
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"port":      "server.port",
	"store":     "store.driver",
	"log-level": "log.level",
}

func newCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "triviarooms",
		Short: "Serves multiplayer trivia rooms over HTTP and WebSocket.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&configFile, "config", "c", "", "path to a config file (default: ./config.yaml if present)")
	fs.IntP("port", "p", 8080, "port to listen on (env: TRIVIA_SERVER_PORT)")
	fs.String("store", config.StoreRedis, "room store driver, redis or memory (env: TRIVIA_STORE_DRIVER)")
	fs.String("log-level", "info", "log level (env: TRIVIA_LOG_LEVEL)")

	fs.VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = v.BindPFlag(key, f)
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func run(parent context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logging.Install(logger)()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zap.L().Info("app starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("store", cfg.Store.Driver))

	roomStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Quiz bank and archive are optional; without Mongo rooms carry their own questions.
	var (
		quizRepo    repository.QuizRepo
		archiveRepo repository.ArchiveRepo
	)
	if cfg.Mongo.Enabled {
		client, err := connectMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}()
		db := client.Database(cfg.Mongo.Database)
		quizRepo = repository.NewQuizRepo(db)
		archiveRepo = repository.NewArchiveRepo(db)
		zap.L().Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))
	} else {
		zap.L().Warn("MongoDB disabled: quiz bank and archive are off")
	}

	clock := game.SystemClock()
	engine := game.NewEngine(cfg.Game.BaseAward)
	builder := game.NewSessionBuilder(game.UUIDs, clock)

	authSvc := service.NewAuthService(cfg.Auth, clock)
	quizSvc := service.NewQuizService(quizRepo)
	roomSvc := service.NewRoomService(roomStore, quizRepo, archiveRepo, authSvc, builder, engine, clock, cfg.Game)
	gameSvc := service.NewGameService(roomStore, archiveRepo, engine, clock, cfg.Game.ConflictRetries)

	wsHub := ws.NewHub()
	defer wsHub.Close()
	roomSvc.SetBroadcaster(wsHub)
	gameSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		AuthService:   authSvc,
		QuizService:   quizSvc,
		RoomService:   roomSvc,
		GameService:   gameSvc,
		WSHub:         wsHub,
		CORS:          cfg.Server.CORS,
		PublicBaseURL: cfg.Server.PublicBaseURL,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	zap.L().Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	zap.L().Info("server exited")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.RoomStore, func(), error) {
	if cfg.Store.Driver == config.StoreMemory {
		zap.L().Warn("using in-memory room store: rooms are lost on restart and not shared between instances")
		return store.NewMemoryStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rs := store.NewRedisStore(rdb, cfg.Redis.TTL)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.Redis.Addr, err)
	}
	zap.L().Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	return rs, func() { rdb.Close() }, nil
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}
