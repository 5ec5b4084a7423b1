package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/geoquiz/internal/http/handler"
	"github.com/ErlanBelekov/geoquiz/internal/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type RouterConfig struct {
	AllowOrigin          string
	QuizReadRequiresAuth bool
}

func NewRouter(
	logger *slog.Logger,
	cfg RouterConfig,
	tokens middleware.TokenVerifier,
	authHandler *handler.AuthHandler,
	quizHandler *handler.QuizHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(cfg.AllowOrigin))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(tokens)

	// Public auth routes
	authRoutes := r.Group("/auth")
	authRoutes.POST("/signup", authHandler.Signup)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.GET("/me", authMW, authHandler.Me)

	// Quiz reads are public unless configured otherwise
	quizzes := r.Group("/quizzes")
	quizzes.GET("", quizHandler.List)
	if cfg.QuizReadRequiresAuth {
		quizzes.GET("/:quizId", authMW, quizHandler.Get)
	} else {
		quizzes.GET("/:quizId", quizHandler.Get)
	}

	// Protected quiz mutations
	owned := quizzes.Group("", authMW)
	owned.POST("", quizHandler.Create)
	owned.POST("/questions", quizHandler.AddQuestion)
	owned.POST("/:quizId/questions", quizHandler.AddQuestion)
	owned.DELETE("/:quizId", quizHandler.Delete)

	return r
}
