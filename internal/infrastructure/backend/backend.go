// Package backend opens the document store selected by configuration and
// exposes it through the repository interfaces.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/geoquiz/config"
	"github.com/ErlanBelekov/geoquiz/internal/health"
	"github.com/ErlanBelekov/geoquiz/internal/infrastructure/dynamo"
	"github.com/ErlanBelekov/geoquiz/internal/infrastructure/memory"
	"github.com/ErlanBelekov/geoquiz/internal/infrastructure/mongodb"
	"github.com/ErlanBelekov/geoquiz/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/geoquiz/internal/repository"
)

type Store struct {
	Name    string
	Users   repository.UserRepository
	Quizzes repository.QuizRepository
	Pinger  health.Pinger

	close func(ctx context.Context) error
}

// Close releases the backend's connections. Safe to call on every backend.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	logger = logger.With("component", "store", "backend", cfg.StoreBackend)

	var (
		s   *Store
		err error
	)
	switch cfg.StoreBackend {
	case config.BackendMemory:
		s = openMemory()
	case config.BackendDynamoDB:
		s, err = openDynamo(ctx, cfg)
	case config.BackendPostgres:
		s, err = openPostgres(ctx, cfg)
	case config.BackendMongo:
		s, err = openMongo(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("store opened")
	return s, nil
}

func openMemory() *Store {
	st := memory.NewStore()
	return &Store{
		Name:    config.BackendMemory,
		Users:   memory.NewUserRepository(st),
		Quizzes: memory.NewQuizRepository(st),
		Pinger:  st,
	}
}

func openDynamo(ctx context.Context, cfg *config.Config) (*Store, error) {
	client, err := dynamo.NewClient(ctx, dynamo.Options{Region: cfg.AWSRegion, Endpoint: cfg.DynamoDBEndpoint})
	if err != nil {
		return nil, fmt.Errorf("dynamodb client: %w", err)
	}
	table := dynamo.NewTable(client, cfg.DynamoDBTable)
	return &Store{
		Name:    config.BackendDynamoDB,
		Users:   dynamo.NewUserRepository(table, cfg.DynamoDBUserIDIndex),
		Quizzes: dynamo.NewQuizRepository(table),
		Pinger:  table,
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Store, error) {
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return &Store{
		Name:    config.BackendPostgres,
		Users:   postgres.NewUserRepository(pool),
		Quizzes: postgres.NewQuizRepository(pool),
		Pinger:  pool,
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*Store, error) {
	st, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("mongo: %w", err)
	}
	return &Store{
		Name:    config.BackendMongo,
		Users:   mongodb.NewUserRepository(st),
		Quizzes: mongodb.NewQuizRepository(st),
		Pinger:  st,
		close:   st.Close,
	}, nil
}
