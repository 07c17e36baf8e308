package domain

import "time"

const ContentMinLen = 20

// Answer represents an answer posted under a question. QuestionID is
// immutable after creation.
type Answer struct {
	ID            int64     `json:"id" db:"id"`
	QuestionID    int64     `json:"question_id" db:"question_id"`
	AuthorID      int64     `json:"author_id" db:"author_id"`
	Content       string    `json:"content" db:"content"`
	VoteTotal     int       `json:"vote_total" db:"vote_total"`
	IsAccepted    bool      `json:"is_accepted" db:"is_accepted"`
	IsAIGenerated bool      `json:"is_ai_generated" db:"is_ai_generated"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	// Joined author fields, populated by detail queries.
	AuthorUsername   string `json:"author_username" db:"author_username"`
	AuthorReputation int    `json:"author_reputation" db:"author_reputation"`
}
