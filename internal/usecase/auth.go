package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/ErlanBelekov/geoquiz/internal/email"
	"github.com/ErlanBelekov/geoquiz/internal/metrics"
	"github.com/ErlanBelekov/geoquiz/internal/repository"
	"github.com/google/uuid"
)

const (
	minPasswordLen      = 6
	maxPasswordBytes    = 72
	welcomeEmailTimeout = 5 * time.Second
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type TokenIssuer interface {
	Issue(id domain.Identity) (string, error)
}

// Session is what signup and login hand back to the client.
type Session struct {
	Token string
	User  domain.Identity
}

type AuthUsecase struct {
	users     repository.UserRepository
	passwords PasswordHasher
	tokens    TokenIssuer
	email     email.Sender
	logger    *slog.Logger
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthUsecase(
	users repository.UserRepository,
	passwords PasswordHasher,
	tokens TokenIssuer,
	sender email.Sender,
	logger *slog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		email:     sender,
		logger:    logger.With("component", "auth"),
		now:       time.Now,
	}
}

// Signup creates the account and returns a session for it. The store's
// conditional insert decides races between signups for the same email.
func (u *AuthUsecase) Signup(ctx context.Context, rawEmail, password string) (*Session, error) {
	addr, err := validateCredentials(rawEmail, password)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	hash, err := u.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        addr,
		PasswordHash: hash,
		CreatedAt:    u.now().UTC().Truncate(time.Millisecond),
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.SignupsTotal.WithLabelValues("duplicate").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.SignupsTotal.WithLabelValues("success").Inc()

	u.sendWelcome(ctx, user.Email)

	return u.session(user)
}

// Login answers every credential mismatch with ErrInvalidCredentials and
// runs a bcrypt comparison even for unknown emails.
func (u *AuthUsecase) Login(ctx context.Context, rawEmail, password string) (*Session, error) {
	addr := normalizeEmail(rawEmail)
	if addr == "" || password == "" {
		return nil, domain.Validation("Email and password is needed")
	}

	user, err := u.users.GetByEmail(ctx, addr)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("get user: %w", err)
		}
		u.passwords.Verify(password, u.dummy())
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if !u.passwords.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return u.session(user)
}

// Me returns the stored profile of an authenticated caller.
func (u *AuthUsecase) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (u *AuthUsecase) session(user *domain.User) (*Session, error) {
	id := domain.Identity{UserID: user.ID, Email: user.Email}
	token, err := u.tokens.Issue(id)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: id}, nil
}

// sendWelcome is best-effort: a failed email never fails the signup.
func (u *AuthUsecase) sendWelcome(ctx context.Context, to string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), welcomeEmailTimeout)
	defer cancel()

	if err := u.email.Send(ctx, to, email.WelcomeSubject, email.WelcomeBody(to)); err != nil {
		u.logger.WarnContext(ctx, "welcome email failed", "error", err)
	}
}

func (u *AuthUsecase) dummy() string {
	u.dummyOnce.Do(func() {
		h, err := u.passwords.Hash(uuid.NewString())
		if err != nil {
			u.logger.Error("generate dummy hash", "error", err)
			return
		}
		u.dummyHash = h
	})
	return u.dummyHash
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validateCredentials(rawEmail, password string) (string, error) {
	addr := normalizeEmail(rawEmail)
	if addr == "" || password == "" {
		return "", domain.Validation("email and password is required")
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "", domain.Validation("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return "", domain.Validation("password must be at most %d bytes", maxPasswordBytes)
	}
	if !emailPattern.MatchString(addr) {
		return "", domain.Validation("email not valid format")
	}
	return addr, nil
}
