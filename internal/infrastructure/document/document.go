// Package document defines the single-table record layout shared by every
// store backend: a composite key (PK, SK) and flat attribute names.
//
//	USER#<email>   PROFILE    user credentials
//	QUIZ#<quizId>  METADATA   quiz metadata and embedded questions
package document

import (
	"strings"
	"time"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
)

const (
	AttrPK        = "PK"
	AttrSK        = "SK"
	AttrUserID    = "userId"
	AttrQuestions = "questions"

	UserPrefix = "USER#"
	QuizPrefix = "QUIZ#"

	SKProfile  = "PROFILE"
	SKMetadata = "METADATA"
)

type Key struct {
	PK string
	SK string
}

func UserKey(email string) Key { return Key{PK: UserPrefix + email, SK: SKProfile} }

func QuizKey(quizID string) Key { return Key{PK: QuizPrefix + quizID, SK: SKMetadata} }

// IsQuizKey reports whether pk/sk address a quiz metadata record.
func IsQuizKey(pk, sk string) bool {
	return strings.HasPrefix(pk, QuizPrefix) && sk == SKMetadata
}

type UserRecord struct {
	PK           string    `json:"PK"        dynamodbav:"PK"        bson:"PK"`
	SK           string    `json:"SK"        dynamodbav:"SK"        bson:"SK"`
	UserID       string    `json:"userId"    dynamodbav:"userId"    bson:"userId"`
	Email        string    `json:"email"     dynamodbav:"email"     bson:"email"`
	PasswordHash string    `json:"password"  dynamodbav:"password"  bson:"password"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"createdAt" bson:"createdAt"`
}

type LocationRecord struct {
	Longitude float64 `json:"longitude" dynamodbav:"longitude" bson:"longitude"`
	Latitude  float64 `json:"latitude"  dynamodbav:"latitude"  bson:"latitude"`
}

type QuestionRecord struct {
	QuestionID string         `json:"questionId"     dynamodbav:"questionId"          bson:"questionId"`
	Name       string         `json:"name,omitempty" dynamodbav:"name,omitempty"      bson:"name,omitempty"`
	Question   string         `json:"question"       dynamodbav:"question"            bson:"question"`
	Answer     string         `json:"answer"         dynamodbav:"answer"              bson:"answer"`
	Location   LocationRecord `json:"location"       dynamodbav:"location"            bson:"location"`
	CreatedAt  time.Time      `json:"createdAt"      dynamodbav:"createdAt"           bson:"createdAt"`
}

type QuizRecord struct {
	PK             string           `json:"PK"             dynamodbav:"PK"             bson:"PK"`
	SK             string           `json:"SK"             dynamodbav:"SK"             bson:"SK"`
	QuizID         string           `json:"quizId"         dynamodbav:"quizId"         bson:"quizId"`
	Title          string           `json:"title"          dynamodbav:"title"          bson:"title"`
	CreatedBy      string           `json:"createdBy"      dynamodbav:"createdBy"      bson:"createdBy"`
	CreatedByEmail string           `json:"createdByEmail" dynamodbav:"createdByEmail" bson:"createdByEmail"`
	CreatedAt      time.Time        `json:"createdAt"      dynamodbav:"createdAt"      bson:"createdAt"`
	Questions      []QuestionRecord `json:"questions"      dynamodbav:"questions"      bson:"questions"`
}

func FromUser(u *domain.User) UserRecord {
	k := UserKey(u.Email)
	return UserRecord{
		PK:           k.PK,
		SK:           k.SK,
		UserID:       u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func (r UserRecord) ToDomain() *domain.User {
	return &domain.User{
		ID:           r.UserID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

func FromQuestion(q domain.Question) QuestionRecord {
	return QuestionRecord{
		QuestionID: q.ID,
		Name:       q.Name,
		Question:   q.Text,
		Answer:     q.Answer,
		Location:   LocationRecord{Longitude: q.Location.Longitude, Latitude: q.Location.Latitude},
		CreatedAt:  q.CreatedAt,
	}
}

func (r QuestionRecord) ToDomain() domain.Question {
	return domain.Question{
		ID:        r.QuestionID,
		Name:      r.Name,
		Text:      r.Question,
		Answer:    r.Answer,
		Location:  domain.Location{Longitude: r.Location.Longitude, Latitude: r.Location.Latitude},
		CreatedAt: r.CreatedAt,
	}
}

// FromQuiz always writes a non-nil question list so appends never need to
// create the attribute.
func FromQuiz(q *domain.Quiz) QuizRecord {
	k := QuizKey(q.ID)
	questions := make([]QuestionRecord, 0, len(q.Questions))
	for _, question := range q.Questions {
		questions = append(questions, FromQuestion(question))
	}
	return QuizRecord{
		PK:             k.PK,
		SK:             k.SK,
		QuizID:         q.ID,
		Title:          q.Title,
		CreatedBy:      q.OwnerID,
		CreatedByEmail: q.OwnerEmail,
		CreatedAt:      q.CreatedAt,
		Questions:      questions,
	}
}

func (r QuizRecord) ToDomain() *domain.Quiz {
	questions := make([]domain.Question, 0, len(r.Questions))
	for _, q := range r.Questions {
		questions = append(questions, q.ToDomain())
	}
	return &domain.Quiz{
		ID:         r.QuizID,
		Title:      r.Title,
		OwnerID:    r.CreatedBy,
		OwnerEmail: r.CreatedByEmail,
		CreatedAt:  r.CreatedAt,
		Questions:  questions,
	}
}

func (r QuizRecord) Summary() domain.QuizSummary {
	return domain.QuizSummary{ID: r.QuizID, Title: r.Title, OwnerEmail: r.CreatedByEmail}
}
