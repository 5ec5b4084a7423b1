package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory" validate:"oneof=memory dynamodb postgres mongo"`

	DynamoDBTable       string `env:"DYNAMODB_TABLE"         validate:"required_if=StoreBackend dynamodb"`
	DynamoDBUserIDIndex string `env:"DYNAMODB_USER_ID_INDEX" envDefault:"UserIdIndex"`
	DynamoDBEndpoint    string `env:"DYNAMODB_ENDPOINT"      validate:"omitempty,url"`
	AWSRegion           string `env:"AWS_REGION"             envDefault:"eu-north-1"`

	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=StoreBackend postgres"`

	MongoURI      string `env:"MONGO_URI"      validate:"required_if=StoreBackend mongo"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"geoquiz"`

	JWTSecret  string        `env:"JWT_SECRET,required" validate:"required,min=32"`
	JWTTTL     time.Duration `env:"JWT_TTL"             envDefault:"24h" validate:"gt=0"`
	BcryptCost int           `env:"BCRYPT_COST"         envDefault:"12"  validate:"min=12,max=16"`

	// Single-quiz reads are public unless this is set.
	QuizReadRequiresAuth bool   `env:"QUIZ_READ_REQUIRES_AUTH" envDefault:"false"`
	CORSAllowOrigin      string `env:"CORS_ALLOW_ORIGIN"       envDefault:"*"`
	StatsCron            string `env:"STATS_CRON"              envDefault:"@every 5m" validate:"required"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
