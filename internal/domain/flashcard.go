package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/Raghvendrath3/conceptForge/pkg/errors"
)

const (
	// DefaultEase is the ease factor of a never-reviewed card.
	DefaultEase = 2.5
	// MinEase is the floor applied after every successful review.
	MinEase = 1.3
)

// Flashcard is a spaced-repetition study item bound to one node.
type Flashcard struct {
	ID        string    `json:"id"`
	NodeID    string    `json:"nodeId"`
	OwnerID   string    `json:"ownerId"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Ease      float64   `json:"ease"`
	Interval  int       `json:"interval"`
	DueAt     time.Time `json:"dueAt"`
	Revision  int       `json:"revision"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewFlashcard builds a card that is due immediately.
func NewFlashcard(ownerID, nodeID, question, answer string, now time.Time) (*Flashcard, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, appErrors.NewValidation("owner is required")
	}
	if nodeID == "" {
		return nil, appErrors.NewValidation("nodeId is required")
	}
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return nil, appErrors.NewValidation("question and answer are required")
	}

	return &Flashcard{
		ID:        uuid.NewString(),
		NodeID:    nodeID,
		OwnerID:   ownerID,
		Question:  question,
		Answer:    answer,
		Ease:      DefaultEase,
		Interval:  0,
		DueAt:     now,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsDue reports whether the card should be shown at now.
func (f Flashcard) IsDue(now time.Time) bool {
	return !f.DueAt.After(now)
}

// FlashcardStats summarizes an owner's deck.
type FlashcardStats struct {
	Total int `json:"total"`
	Due   int `json:"due"`
}
