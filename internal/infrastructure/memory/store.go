// Package memory is an in-process document store with the same atomicity
// guarantees as the remote backends: conditional insert and append happen
// under one lock per call. It is used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ErlanBelekov/geoquiz/internal/infrastructure/document"
)

type Store struct {
	mu    sync.RWMutex
	users map[document.Key]document.UserRecord
	byID  map[string]document.Key
	quiz  map[document.Key]document.QuizRecord
}

func NewStore() *Store {
	return &Store{
		users: make(map[document.Key]document.UserRecord),
		byID:  make(map[string]document.Key),
		quiz:  make(map[document.Key]document.QuizRecord),
	}
}

func (s *Store) Ping(_ context.Context) error { return nil }

// quizRecords returns copies of all quiz records ordered by creation time.
func (s *Store) quizRecords() []document.QuizRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]document.QuizRecord, 0, len(s.quiz))
	for _, r := range s.quiz {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].QuizID < out[j].QuizID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
