package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/geoquiz/config"
	"github.com/ErlanBelekov/geoquiz/internal/auth"
	"github.com/ErlanBelekov/geoquiz/internal/email"
	"github.com/ErlanBelekov/geoquiz/internal/health"
	httptransport "github.com/ErlanBelekov/geoquiz/internal/http"
	"github.com/ErlanBelekov/geoquiz/internal/http/handler"
	"github.com/ErlanBelekov/geoquiz/internal/infrastructure/backend"
	ctxlog "github.com/ErlanBelekov/geoquiz/internal/log"
	"github.com/ErlanBelekov/geoquiz/internal/metrics"
	"github.com/ErlanBelekov/geoquiz/internal/stats"
	"github.com/ErlanBelekov/geoquiz/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := ctxlog.New(os.Stdout, cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		stop()
		log.Fatalf("store: %v", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error("store close", "error", err)
		}
	}()

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTTTL)
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	// Auth
	authUsecase := usecase.NewAuthUsecase(store.Users, auth.NewBcryptHasher(cfg.BcryptCost), tokens, sender, logger)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Quizzes
	quizUsecase := usecase.NewQuizUsecase(store.Quizzes, logger)
	quizHandler := handler.NewQuizHandler(quizUsecase, logger)

	metrics.Register(prometheus.DefaultRegisterer)
	checker := health.NewChecker(store.Name, store.Pinger, logger, prometheus.DefaultRegisterer)

	collector, err := stats.NewCollector(store.Quizzes, cfg.StatsCron, logger)
	if err != nil {
		stop()
		log.Fatalf("stats: %v", err)
	}

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(
			logger,
			httptransport.RouterConfig{AllowOrigin: cfg.CORSAllowOrigin, QuizReadRequiresAuth: cfg.QuizReadRequiresAuth},
			tokens,
			authHandler,
			quizHandler,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go collector.Start(ctx)

	go func() {
		logger.Info("server started", "port", cfg.Port, "store", store.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}
