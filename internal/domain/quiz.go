package domain

import (
	"time"
)

var (
	ErrQuizNotFound = NewError(KindNotFound, "Quiz not found")
	ErrNotQuizOwner = NewError(KindForbidden, "You are not the owner of this quiz")
)

type Location struct {
	Longitude float64
	Latitude  float64
}

type Question struct {
	ID        string
	Name      string // optional label
	Text      string
	Answer    string
	Location  Location
	CreatedAt time.Time
}

// Quiz is the full record. OwnerEmail is a denormalized copy of the owner's
// email kept for listings, so they never need a user lookup.
type Quiz struct {
	ID         string
	Title      string
	OwnerID    string
	OwnerEmail string
	CreatedAt  time.Time
	Questions  []Question
}

// IsOwnedBy reports whether userID is the stored owner.
func (q *Quiz) IsOwnedBy(userID string) bool {
	return userID != "" && q.OwnerID == userID
}

// Summary is the public projection of a quiz used in listings.
func (q *Quiz) Summary() QuizSummary {
	return QuizSummary{ID: q.ID, Title: q.Title, OwnerEmail: q.OwnerEmail}
}

type QuizSummary struct {
	ID         string
	Title      string
	OwnerEmail string
}
