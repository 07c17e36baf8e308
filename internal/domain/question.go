package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	TitleMinLen       = 10
	DescriptionMinLen = 20
	MaxTags           = 5
)

// Tags is a set of lowercase topic tags stored as a JSONB array.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("cannot scan %T into Tags", src)
	}
}

// NormalizeTags lowercases, trims and deduplicates tags, preserving
// first-seen order, and enforces the 1..MaxTags bound.
func NormalizeTags(raw []string) (Tags, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make(Tags, 0, len(raw))
	for _, tag := range raw {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil, Invalid("tags", "at least one tag is required")
	}
	if len(out) > MaxTags {
		return nil, Invalid("tags", fmt.Sprintf("at most %d tags are allowed", MaxTags))
	}
	return out, nil
}

// QuestionSort orders question listings.
type QuestionSort string

const (
	SortNewest QuestionSort = "newest"
	SortVotes  QuestionSort = "votes"
	SortViews  QuestionSort = "views"
)

// QuestionFilter filters and paginates question listings.
type QuestionFilter struct {
	Tag    string
	Search string
	Sort   QuestionSort
	Limit  int
	Offset int
}

// Question represents a community question.
type Question struct {
	ID               int64     `json:"id" db:"id"`
	AuthorID         int64     `json:"author_id" db:"author_id"`
	Title            string    `json:"title" db:"title"`
	Description      string    `json:"description" db:"description"`
	Tags             Tags      `json:"tags" db:"tags"`
	VoteTotal        int       `json:"vote_total" db:"vote_total"`
	ViewCount        int       `json:"view_count" db:"view_count"`
	AcceptedAnswerID *int64    `json:"accepted_answer_id,omitempty" db:"accepted_answer_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`

	// Joined author fields, populated by list/detail queries.
	AuthorUsername   string `json:"author_username" db:"author_username"`
	AuthorReputation int    `json:"author_reputation" db:"author_reputation"`

	AnswerCount int `json:"answer_count" db:"answer_count"`
}
