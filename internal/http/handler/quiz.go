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

type quizUsecaser interface {
	CreateQuiz(ctx context.Context, caller domain.Identity, title string) (*domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error)
	GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error)
	AddQuestion(ctx context.Context, caller domain.Identity, quizID string, in usecase.QuestionInput) (*domain.Question, error)
	DeleteQuiz(ctx context.Context, caller domain.Identity, quizID string) error
}

type QuizHandler struct {
	quizUsecase quizUsecaser
	logger      *slog.Logger
}

func NewQuizHandler(quizUsecase quizUsecaser, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{
		quizUsecase: quizUsecase,
		logger:      logger.With("component", "quiz_handler"),
	}
}

type createQuizRequest struct {
	Title string `json:"title" binding:"required"`
}

type locationPayload struct {
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
}

// addQuestionRequest accepts coordinates either nested under location or
// flat at the top level. The nested form wins when both are present.
type addQuestionRequest struct {
	QuizID    string           `json:"quizId"`
	Name      string           `json:"name"`
	Question  string           `json:"question" binding:"required"`
	Answer    string           `json:"answer"   binding:"required"`
	Location  *locationPayload `json:"location"`
	Longitude *float64         `json:"longitude"`
	Latitude  *float64         `json:"latitude"`
}

func (r addQuestionRequest) coordinates() (lon, lat *float64) {
	lon, lat = r.Longitude, r.Latitude
	if r.Location != nil {
		if r.Location.Longitude != nil {
			lon = r.Location.Longitude
		}
		if r.Location.Latitude != nil {
			lat = r.Location.Latitude
		}
	}
	return lon, lat
}

type createQuizResponse struct {
	QuizID         string `json:"quizId"`
	Title          string `json:"title"`
	CreatedBy      string `json:"createdBy"`
	CreatedByEmail string `json:"createdByEmail"`
}

type quizSummaryResponse struct {
	QuizID    string `json:"quizId"`
	Title     string `json:"title"`
	CreatedBy string `json:"createdBy"`
}

type locationResponse struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type questionResponse struct {
	QuestionID string           `json:"questionId"`
	Name       string           `json:"name,omitempty"`
	Question   string           `json:"question"`
	Answer     string           `json:"answer"`
	Location   locationResponse `json:"location"`
	CreatedAt  time.Time        `json:"createdAt"`
}

type quizResponse struct {
	QuizID    string             `json:"quizId"`
	Title     string             `json:"title"`
	CreatedBy string             `json:"createdBy"`
	Questions []questionResponse `json:"questions"`
}

type addQuestionResponse struct {
	Message  string           `json:"message"`
	Question questionResponse `json:"question"`
}

func toQuestionResponse(q *domain.Question) questionResponse {
	return questionResponse{
		QuestionID: q.ID,
		Name:       q.Name,
		Question:   q.Text,
		Answer:     q.Answer,
		Location:   locationResponse{Longitude: q.Location.Longitude, Latitude: q.Location.Latitude},
		CreatedAt:  q.CreatedAt,
	}
}

// caller returns the identity attached by the auth middleware, answering
// 401 itself when it is missing.
func caller(c *gin.Context) (domain.Identity, bool) {
	id, ok := reqctx.IdentityFrom(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": errUnauthorized})
	}
	return id, ok
}

// GET /quizzes
func (h *QuizHandler) List(c *gin.Context) {
	list, err := h.quizUsecase.ListQuizzes(c.Request.Context())
	if err != nil {
		respond(c, h.logger, failure{op: "list quizzes", internal: errFetchQuizzes}, err)
		return
	}

	resp := make([]quizSummaryResponse, len(list))
	for i, s := range list {
		resp[i] = quizSummaryResponse{QuizID: s.ID, Title: s.Title, CreatedBy: s.OwnerEmail}
	}
	c.JSON(http.StatusOK, resp)
}

// GET /quizzes/:quizId
func (h *QuizHandler) Get(c *gin.Context) {
	quiz, err := h.quizUsecase.GetQuiz(c.Request.Context(), c.Param("quizId"))
	if err != nil {
		respond(c, h.logger, failure{op: "get quiz", internal: errFetchQuiz}, err)
		return
	}

	questions := make([]questionResponse, len(quiz.Questions))
	for i := range quiz.Questions {
		questions[i] = toQuestionResponse(&quiz.Questions[i])
	}
	c.JSON(http.StatusOK, quizResponse{
		QuizID:    quiz.ID,
		Title:     quiz.Title,
		CreatedBy: quiz.OwnerEmail,
		Questions: questions,
	})
}

// POST /quizzes
func (h *QuizHandler) Create(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	var req createQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errTitleRequired)
		return
	}

	quiz, err := h.quizUsecase.CreateQuiz(c.Request.Context(), id, req.Title)
	if err != nil {
		respond(c, h.logger, failure{op: "create quiz", internal: errCreateQuiz}, err)
		return
	}

	c.JSON(http.StatusCreated, createQuizResponse{
		QuizID:         quiz.ID,
		Title:          quiz.Title,
		CreatedBy:      quiz.OwnerID,
		CreatedByEmail: quiz.OwnerEmail,
	})
}

// POST /quizzes/:quizId/questions and POST /quizzes/questions.
// The path parameter takes precedence over a quizId in the body.
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	var req addQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errQuestionFields)
		return
	}

	quizID := c.Param("quizId")
	if quizID == "" {
		quizID = req.QuizID
	}
	if quizID == "" {
		badRequest(c, errQuestionFields)
		return
	}

	lon, lat := req.coordinates()
	q, err := h.quizUsecase.AddQuestion(c.Request.Context(), id, quizID, usecase.QuestionInput{
		Name:      req.Name,
		Text:      req.Question,
		Answer:    req.Answer,
		Longitude: lon,
		Latitude:  lat,
	})
	if err != nil {
		respond(c, h.logger, failure{op: "add question", internal: errAddQuestion, forbidden: errNotOwnerQuestion}, err)
		return
	}

	c.JSON(http.StatusCreated, addQuestionResponse{
		Message:  "Question added successfully",
		Question: toQuestionResponse(q),
	})
}

// DELETE /quizzes/:quizId
func (h *QuizHandler) Delete(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	if err := h.quizUsecase.DeleteQuiz(c.Request.Context(), id, c.Param("quizId")); err != nil {
		respond(c, h.logger, failure{op: "delete quiz", internal: errDeleteQuiz, forbidden: errNotOwnerDelete}, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully"})
}
