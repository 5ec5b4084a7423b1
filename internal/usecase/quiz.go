package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/ErlanBelekov/geoquiz/internal/metrics"
	"github.com/ErlanBelekov/geoquiz/internal/repository"
	"github.com/google/uuid"
)

const maxTitleLen = 256

// QuestionInput is the unvalidated payload of an append. Coordinates are
// pointers so a missing value is distinguishable from zero.
type QuestionInput struct {
	Name      string
	Text      string
	Answer    string
	Longitude *float64
	Latitude  *float64
}

type QuizUsecase struct {
	quizzes repository.QuizRepository
	logger  *slog.Logger
	now     func() time.Time
}

func NewQuizUsecase(quizzes repository.QuizRepository, logger *slog.Logger) *QuizUsecase {
	return &QuizUsecase{
		quizzes: quizzes,
		logger:  logger.With("component", "quiz"),
		now:     time.Now,
	}
}

// CreateQuiz stores an empty quiz owned by the caller. The owner comes from
// the verified identity only.
func (u *QuizUsecase) CreateQuiz(ctx context.Context, caller domain.Identity, title string) (*domain.Quiz, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.Validation("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, domain.Validation("Title must be at most %d characters", maxTitleLen)
	}

	quiz := &domain.Quiz{
		ID:         uuid.NewString(),
		Title:      title,
		OwnerID:    caller.UserID,
		OwnerEmail: caller.Email,
		CreatedAt:  u.now().UTC().Truncate(time.Millisecond),
		Questions:  []domain.Question{},
	}
	if err := u.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	metrics.QuizMutationsTotal.WithLabelValues("create").Inc()
	u.logger.InfoContext(ctx, "quiz created", "quiz_id", quiz.ID)
	return quiz, nil
}

func (u *QuizUsecase) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	list, err := u.quizzes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return list, nil
}

func (u *QuizUsecase) GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	quiz, err := u.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return quiz, nil
}

// AddQuestion validates the payload before touching the store, then runs
// the ownership check and a single atomic append.
func (u *QuizUsecase) AddQuestion(ctx context.Context, caller domain.Identity, quizID string, in QuestionInput) (*domain.Question, error) {
	q, err := u.buildQuestion(in)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(quizID) == "" {
		return nil, domain.Validation("quizId is required")
	}

	if err := u.authorizeOwner(ctx, caller, quizID, "add_question"); err != nil {
		return nil, err
	}

	if err := u.quizzes.AppendQuestion(ctx, quizID, q); err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("append question: %w", err)
	}
	metrics.QuizMutationsTotal.WithLabelValues("add_question").Inc()
	u.logger.InfoContext(ctx, "question added", "quiz_id", quizID, "question_id", q.ID)
	return &q, nil
}

func (u *QuizUsecase) DeleteQuiz(ctx context.Context, caller domain.Identity, quizID string) error {
	if err := u.authorizeOwner(ctx, caller, quizID, "delete"); err != nil {
		return err
	}

	if err := u.quizzes.Delete(ctx, quizID); err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return err
		}
		return fmt.Errorf("delete quiz: %w", err)
	}
	metrics.QuizMutationsTotal.WithLabelValues("delete").Inc()
	u.logger.InfoContext(ctx, "quiz deleted", "quiz_id", quizID)
	return nil
}

// authorizeOwner loads the quiz and compares its stored owner to the caller.
// Owners never change, so the gap between this read and the write is safe.
func (u *QuizUsecase) authorizeOwner(ctx context.Context, caller domain.Identity, quizID, op string) error {
	quiz, err := u.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return err
		}
		return fmt.Errorf("load quiz: %w", err)
	}
	if !quiz.IsOwnedBy(caller.UserID) {
		metrics.OwnershipRejectionsTotal.WithLabelValues(op).Inc()
		u.logger.WarnContext(ctx, "ownership check failed", "quiz_id", quizID, "operation", op)
		return domain.ErrNotQuizOwner
	}
	return nil
}

func (u *QuizUsecase) buildQuestion(in QuestionInput) (domain.Question, error) {
	text := strings.TrimSpace(in.Text)
	answer := strings.TrimSpace(in.Answer)
	if text == "" || answer == "" || in.Longitude == nil || in.Latitude == nil {
		return domain.Question{}, domain.Validation("All fields are required")
	}
	if *in.Longitude < -180 || *in.Longitude > 180 {
		return domain.Question{}, domain.Validation("longitude must be between -180 and 180")
	}
	if *in.Latitude < -90 || *in.Latitude > 90 {
		return domain.Question{}, domain.Validation("latitude must be between -90 and 90")
	}

	return domain.Question{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Text:      text,
		Answer:    answer,
		Location:  domain.Location{Longitude: *in.Longitude, Latitude: *in.Latitude},
		CreatedAt: u.now().UTC().Truncate(time.Millisecond),
	}, nil
}
