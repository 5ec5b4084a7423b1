package handler

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer   = "Internal server error"
	errUnauthorized     = "Unauthorized"
	errSignupShape      = "email and password is required"
	errLoginShape       = "Email and password is needed"
	errTitleRequired    = "Title is required"
	errQuestionFields   = "All fields are required"
	errFetchQuizzes     = "Could not fetch quizzes"
	errFetchQuiz        = "Could not fetch quiz"
	errCreateQuiz       = "Could not create quiz"
	errAddQuestion      = "Could not add question"
	errDeleteQuiz       = "Could not delete quiz"
	errNotOwnerQuestion = "You can only add questions to your own quizzes"
	errNotOwnerDelete   = "You can only delete your own quizzes"
)

var kindStatus = map[domain.Kind]int{
	domain.KindValidation:   http.StatusBadRequest,
	domain.KindDuplicate:    http.StatusBadRequest,
	domain.KindUnauthorized: http.StatusUnauthorized,
	domain.KindForbidden:    http.StatusForbidden,
	domain.KindNotFound:     http.StatusNotFound,
}

// failure describes how one operation reports errors: the body for
// unclassified failures and an optional per-operation forbidden message.
type failure struct {
	op        string
	internal  string
	forbidden string
}

// respond maps err to a status by its kind. Unclassified errors are logged
// with their cause and answered with f.internal only.
func respond(c *gin.Context, logger *slog.Logger, f failure, err error) {
	kind := domain.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		logger.ErrorContext(c.Request.Context(), f.op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": f.internal})
		return
	}

	msg := domain.PublicMessage(err)
	if kind == domain.KindForbidden && f.forbidden != "" {
		msg = f.forbidden
	}
	c.JSON(status, gin.H{"message": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}
