package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/ErlanBelekov/geoquiz/internal/reqctx"
	"github.com/ErlanBelekov/geoquiz/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Signup(ctx context.Context, email, password string) (*usecase.Session, error)
	Login(ctx context.Context, email, password string) (*usecase.Session, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type sessionResponse struct {
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
	Message string       `json:"message"`
}

type meResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toSessionResponse(s *usecase.Session, msg string) sessionResponse {
	return sessionResponse{
		Token:   s.Token,
		User:    userResponse{UserID: s.User.UserID, Email: s.User.Email},
		Message: msg,
	}
}

// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errSignupShape)
		return
	}

	sess, err := h.authUsecase.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond(c, h.logger, failure{op: "signup", internal: errInternalServer}, err)
		return
	}

	c.JSON(http.StatusCreated, toSessionResponse(sess, "User created successfully"))
}

// POST /auth/login
// Unknown email and wrong password both answer 401 "Invalid credentials".
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errLoginShape)
		return
	}

	sess, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond(c, h.logger, failure{op: "login", internal: errInternalServer}, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(sess, "Login successful"))
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := reqctx.IdentityFrom(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": errUnauthorized})
		return
	}

	user, err := h.authUsecase.Me(c.Request.Context(), caller.UserID)
	if err != nil {
		respond(c, h.logger, failure{op: "me", internal: errInternalServer}, err)
		return
	}

	c.JSON(http.StatusOK, meResponse{UserID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt})
}
