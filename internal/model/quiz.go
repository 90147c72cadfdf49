package model

import "time"

// Quiz is a reusable question set stored by curators.
type Quiz struct {
	ID         string     `json:"id" bson:"_id,omitempty"`
	Title      string     `json:"title" bson:"title" validate:"required"`
	Category   string     `json:"category" bson:"category"`
	Difficulty string     `json:"difficulty" bson:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Questions  []Question `json:"questions" bson:"questions" validate:"required,min=1,dive"`
	AuthorID   string     `json:"authorId" bson:"authorId"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}
