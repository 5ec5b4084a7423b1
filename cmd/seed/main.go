// seed creates a demo user and a geolocated quiz in the configured store.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ErlanBelekov/geoquiz/config"
	"github.com/ErlanBelekov/geoquiz/internal/auth"
	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/ErlanBelekov/geoquiz/internal/email"
	"github.com/ErlanBelekov/geoquiz/internal/infrastructure/backend"
	ctxlog "github.com/ErlanBelekov/geoquiz/internal/log"
	"github.com/ErlanBelekov/geoquiz/internal/usecase"
	"github.com/joho/godotenv"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "seed-password"
	seedTitle    = "European Capitals"
)

type questionSpec struct {
	name, text, answer string
	lon, lat           float64
}

var questions = []questionSpec{
	{"Paris", "Capital of France?", "Paris", 2.3522, 48.8566},
	{"Stockholm", "Capital of Sweden?", "Stockholm", 18.0686, 59.3293},
	{"Madrid", "Capital of Spain?", "Madrid", -3.7038, 40.4168},
	{"Rome", "Capital of Italy?", "Rome", 12.4964, 41.9028},
	{"Berlin", "Capital of Germany?", "Berlin", 13.4050, 52.5200},
	{"Lisbon", "Capital of Portugal?", "Lisbon", -9.1393, 38.7223},
	{"Oslo", "Capital of Norway?", "Oslo", 10.7522, 59.9139},
	{"Reykjavik", "Capital of Iceland?", "Reykjavik", -21.8277, 64.1283},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.StoreBackend == config.BackendMemory {
		log.Fatal("STORE_BACKEND=memory does not persist; point the seed at dynamodb, postgres or mongo")
	}

	// Progress goes to stdout; component logs are discarded.
	logger := ctxlog.New(io.Discard, cfg.Env, cfg.SlogLevel())
	ctx := context.Background()

	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer store.Close(ctx)

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTTTL)
	authUC := usecase.NewAuthUsecase(
		store.Users,
		auth.NewBcryptHasher(cfg.BcryptCost),
		tokens,
		email.NewSender("local", "", "", logger),
		logger,
	)
	quizUC := usecase.NewQuizUsecase(store.Quizzes, logger)

	sess, err := authUC.Signup(ctx, seedEmail, seedPassword)
	if errors.Is(err, domain.ErrUserExists) {
		sess, err = authUC.Login(ctx, seedEmail, seedPassword)
	}
	if err != nil {
		log.Fatalf("seed user: %v", err)
	}

	quizID, created, err := ensureQuiz(ctx, quizUC, sess.User)
	if err != nil {
		log.Fatalf("seed quiz: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Store:    %s\n", store.Name)
	fmt.Printf("  User:     %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  User ID:  %s\n", sess.User.UserID)
	if created {
		fmt.Printf("  Quiz:     %s (%d questions)\n", quizID, len(questions))
	} else {
		fmt.Printf("  Quiz:     %s (already existed, left unchanged)\n", quizID)
	}
	fmt.Println()
	fmt.Println("Try it:")
	fmt.Println()
	fmt.Printf("    export TOKEN=%s\n", sess.Token)
	fmt.Println("    curl -s http://localhost:8080/quizzes")
	fmt.Printf("    curl -s http://localhost:8080/quizzes/%s\n", quizID)
	fmt.Printf("    curl -s -X DELETE http://localhost:8080/quizzes/%s -H \"Authorization: Bearer $TOKEN\"\n", quizID)
}

// ensureQuiz reuses the seed user's quiz from an earlier run so re-seeding
// does not pile up duplicates.
func ensureQuiz(ctx context.Context, quizUC *usecase.QuizUsecase, owner domain.Identity) (string, bool, error) {
	list, err := quizUC.ListQuizzes(ctx)
	if err != nil {
		return "", false, err
	}
	for _, s := range list {
		if s.Title == seedTitle && s.OwnerEmail == owner.Email {
			return s.ID, false, nil
		}
	}

	quiz, err := quizUC.CreateQuiz(ctx, owner, seedTitle)
	if err != nil {
		return "", false, err
	}
	for _, q := range questions {
		lon, lat := q.lon, q.lat
		_, err := quizUC.AddQuestion(ctx, owner, quiz.ID, usecase.QuestionInput{
			Name:      q.name,
			Text:      q.text,
			Answer:    q.answer,
			Longitude: &lon,
			Latitude:  &lat,
		})
		if err != nil {
			return "", false, fmt.Errorf("add %q: %w", q.name, err)
		}
	}
	return quiz.ID, true, nil
}
