package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ErlanBelekov/geoquiz/internal/auth"
	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/ErlanBelekov/geoquiz/internal/infrastructure/memory"
	"github.com/ErlanBelekov/geoquiz/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUserRepo struct {
	create     func(ctx context.Context, user *domain.User) error
	getByEmail func(ctx context.Context, email string) (*domain.User, error)
	getByID    func(ctx context.Context, id string) (*domain.User, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	return r.create(ctx, user)
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getByEmail(ctx, email)
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getByID(ctx, id)
}

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

// plainHasher keeps tests fast; it records every Verify call.
type plainHasher struct {
	verifies atomic.Int32
}

func (h *plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (h *plainHasher) Verify(password, hash string) bool {
	h.verifies.Add(1)
	return hash == "hashed:"+password
}

// ---- helpers ----

const testJWTKey = "test-jwt-secret-at-least-32-chars!!"

func noopSender() *fakeEmailSender {
	return &fakeEmailSender{send: func(context.Context, string, string, string) error { return nil }}
}

func newAuth(repo *fakeUserRepo, hasher usecase.PasswordHasher, sender *fakeEmailSender) (*usecase.AuthUsecase, *auth.TokenService) {
	tokens := auth.NewTokenService([]byte(testJWTKey), auth.DefaultTokenTTL)
	return usecase.NewAuthUsecase(repo, hasher, tokens, sender, slog.Default()), tokens
}

func newMemoryAuth(sender *fakeEmailSender) (*usecase.AuthUsecase, *auth.TokenService) {
	users := memory.NewUserRepository(memory.NewStore())
	tokens := auth.NewTokenService([]byte(testJWTKey), auth.DefaultTokenTTL)
	return usecase.NewAuthUsecase(users, &plainHasher{}, tokens, sender, slog.Default()), tokens
}

// ---- Signup ----

func TestSignup_NormalizesEmailAndIssuesToken(t *testing.T) {
	uc, tokens := newMemoryAuth(noopSender())

	sess, err := uc.Signup(context.Background(), "  Ann@Example.COM ", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.User.Email != "ann@example.com" {
		t.Errorf("email = %q, want ann@example.com", sess.User.Email)
	}
	if sess.User.UserID == "" {
		t.Error("expected a user id")
	}

	id, err := tokens.Verify(sess.Token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if id != sess.User {
		t.Errorf("token identity = %+v, want %+v", id, sess.User)
	}
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantMsg  string
	}{
		{"missing email", "", "secret1", "email and password is required"},
		{"missing password", "ann@example.com", "", "email and password is required"},
		{"short password", "ann@example.com", "abc", "password must be at least 6 characters"},
		{"long password", "ann@example.com", strings.Repeat("x", 73), "password must be at most 72 bytes"},
		{"no tld", "ann@example", "secret1", "email not valid format"},
		{"no at", "ann.example.com", "secret1", "email not valid format"},
		{"inner space", "ann smith@example.com", "secret1", "email not valid format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeUserRepo{create: func(context.Context, *domain.User) error {
				t.Fatal("store must not be touched on invalid input")
				return nil
			}}
			uc, _ := newAuth(repo, &plainHasher{}, noopSender())

			_, err := uc.Signup(context.Background(), tc.email, tc.password)
			if domain.KindOf(err) != domain.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if err.Error() != tc.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	uc, _ := newMemoryAuth(noopSender())

	if _, err := uc.Signup(context.Background(), "ann@example.com", "secret1"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, err := uc.Signup(context.Background(), "ANN@example.com", "other-secret")
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestSignup_ConcurrentSameEmail_ExactlyOneWins(t *testing.T) {
	uc, _ := newMemoryAuth(noopSender())

	const n = 16
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		dupes     atomic.Int32
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Signup(context.Background(), "race@example.com", "secret1")
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrUserExists):
				dupes.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 || dupes.Load() != n-1 {
		t.Fatalf("successes=%d dupes=%d, want 1 and %d", successes.Load(), dupes.Load(), n-1)
	}
}

func TestSignup_StoreErrorIsInternal(t *testing.T) {
	repo := &fakeUserRepo{create: func(context.Context, *domain.User) error {
		return errors.New("connection reset")
	}}
	uc, _ := newAuth(repo, &plainHasher{}, noopSender())

	_, err := uc.Signup(context.Background(), "ann@example.com", "secret1")
	if err == nil || domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestSignup_EmailFailureDoesNotFailSignup(t *testing.T) {
	var sentTo string
	sender := &fakeEmailSender{send: func(_ context.Context, to, _, _ string) error {
		sentTo = to
		return errors.New("resend unavailable")
	}}
	uc, _ := newMemoryAuth(sender)

	if _, err := uc.Signup(context.Background(), "ann@example.com", "secret1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sentTo != "ann@example.com" {
		t.Errorf("welcome email sent to %q", sentTo)
	}
}

func TestSignup_StoresBcryptHash(t *testing.T) {
	var stored *domain.User
	repo := &fakeUserRepo{create: func(_ context.Context, u *domain.User) error {
		stored = u
		return nil
	}}
	uc, _ := newAuth(repo, auth.NewBcryptHasher(bcrypt.MinCost), noopSender())

	if _, err := uc.Signup(context.Background(), "ann@example.com", "secret1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.PasswordHash == "secret1" {
		t.Fatal("raw password stored")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match: %v", err)
	}
	if stored.CreatedAt.Location() != time.UTC {
		t.Error("CreatedAt should be UTC")
	}
}

// ---- Login ----

func TestLogin_ReturnsSameUser(t *testing.T) {
	uc, tokens := newMemoryAuth(noopSender())

	signed, err := uc.Signup(context.Background(), "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	sess, err := uc.Login(context.Background(), "ANN@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.User != signed.User {
		t.Fatalf("login user = %+v, want %+v", sess.User, signed.User)
	}
	id, err := tokens.Verify(sess.Token)
	if err != nil || id.UserID != signed.User.UserID {
		t.Fatalf("token verify = %+v, %v", id, err)
	}
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	hasher := &plainHasher{}
	users := memory.NewUserRepository(memory.NewStore())
	tokens := auth.NewTokenService([]byte(testJWTKey), auth.DefaultTokenTTL)
	uc := usecase.NewAuthUsecase(users, hasher, tokens, noopSender(), slog.Default())

	if _, err := uc.Signup(context.Background(), "ann@example.com", "secret1"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, wrongPw := uc.Login(context.Background(), "ann@example.com", "nope-nope")
	before := hasher.verifies.Load()
	_, unknown := uc.Login(context.Background(), "ghost@example.com", "secret1")

	if !errors.Is(wrongPw, domain.ErrInvalidCredentials) || !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", wrongPw, unknown)
	}
	if wrongPw.Error() != unknown.Error() {
		t.Errorf("messages differ: %q vs %q", wrongPw.Error(), unknown.Error())
	}
	if hasher.verifies.Load() != before+1 {
		t.Error("unknown email should still run a password comparison")
	}
}

func TestLogin_MissingFields(t *testing.T) {
	uc, _ := newMemoryAuth(noopSender())

	_, err := uc.Login(context.Background(), "", "secret1")
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogin_StoreErrorIsInternal(t *testing.T) {
	repo := &fakeUserRepo{getByEmail: func(context.Context, string) (*domain.User, error) {
		return nil, errors.New("timeout")
	}}
	uc, _ := newAuth(repo, &plainHasher{}, noopSender())

	_, err := uc.Login(context.Background(), "ann@example.com", "secret1")
	if err == nil || domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

// ---- Me ----

func TestMe(t *testing.T) {
	uc, _ := newMemoryAuth(noopSender())

	sess, err := uc.Signup(context.Background(), "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	u, err := uc.Me(context.Background(), sess.User.UserID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if u.Email != "ann@example.com" {
		t.Errorf("email = %q", u.Email)
	}

	if _, err := uc.Me(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
