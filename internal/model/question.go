package model

// Question is a multiple choice question bound to a room by Index.
// It is immutable once persisted.
type Question struct {
	Index         int      `json:"questionIndex" bson:"questionIndex"`
	Text          string   `json:"questionText" bson:"questionText" validate:"required"`
	Options       []string `json:"options" bson:"options" validate:"min=2,dive,required"`
	CorrectAnswer int      `json:"correctAnswer" bson:"correctAnswer" validate:"gte=0"`
	Category      string   `json:"category" bson:"category"`
	Difficulty    string   `json:"difficulty" bson:"difficulty"`
}

// PublicQuestion is what players see while a round is open.
type PublicQuestion struct {
	Index      int      `json:"questionIndex"`
	Text       string   `json:"questionText"`
	Options    []string `json:"options"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
}

func (q *Question) Public() PublicQuestion {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return PublicQuestion{
		Index:      q.Index,
		Text:       q.Text,
		Options:    opts,
		Category:   q.Category,
		Difficulty: q.Difficulty,
	}
}

// Check enforces the structural rules that tags cannot express.
func (q *Question) Check() error {
	if q.Text == "" {
		return Validationf("question text is required")
	}
	if len(q.Options) < 2 {
		return Validationf("question %q needs at least 2 options", q.Text)
	}
	for _, o := range q.Options {
		if o == "" {
			return Validationf("question %q has an empty option", q.Text)
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return Validationf("question %q: correct answer %d out of range", q.Text, q.CorrectAnswer)
	}
	return nil
}

// IsCorrect reports whether answerIndex picks the right option.
func (q *Question) IsCorrect(answerIndex int) bool {
	return answerIndex == q.CorrectAnswer
}
