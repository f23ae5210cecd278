package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"qna/internal/qna"
)

const requestIDHeader = "X-Request-ID"

var errMissingService = errors.New("qna service dependency required")

const (
	messageQuestionNotFound = "Question not found"
	messageAnswerNotFound   = "Answer not found"
)

// Dependencies carries the collaborators for NewHTTPHandler.
type Dependencies struct {
	Service *qna.Service
	Logger  *zap.Logger
}

// NewHTTPHandler wires the Q&A routes onto a gin engine.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Service == nil {
		return nil, errMissingService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		service: deps.Service,
		logger:  logger,
	}

	router.GET("/healthz", handler.handleHealth)

	questions := router.Group("/questions")
	questions.GET("", handler.handleListQuestions)
	questions.POST("", handler.handleCreateQuestion)
	questions.GET("/:id", handler.handleGetQuestion)
	questions.PUT("/:id", handler.handleUpdateQuestion)
	questions.DELETE("/:id", handler.handleDeleteQuestion)
	questions.GET("/:id/answers", handler.handleListAnswers)
	questions.POST("/:id/answers", handler.handleCreateAnswer)
	questions.POST("/:id/upvote", handler.handleVoteQuestion(qna.VoteUp))
	questions.POST("/:id/downvote", handler.handleVoteQuestion(qna.VoteDown))

	answers := router.Group("/answers")
	answers.GET("/:id", handler.handleGetAnswer)
	answers.PUT("/:id", handler.handleUpdateAnswer)
	answers.DELETE("/:id", handler.handleDeleteAnswer)
	answers.POST("/:id/upvote", handler.handleVoteAnswer(qna.VoteUp))
	answers.POST("/:id/downvote", handler.handleVoteAnswer(qna.VoteDown))

	return router, nil
}

// requestID stamps every response with an id, keeping the client-supplied
// value when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

type httpHandler struct {
	service *qna.Service
	logger  *zap.Logger
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleListQuestions(c *gin.Context) {
	limit := qna.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit"})
			return
		}
		limit = parsed
	}

	filter := qna.QuestionFilter{
		Title:    c.Query("title"),
		Category: c.Query("category"),
	}

	questions, err := h.service.ListQuestions(c.Request.Context(), filter, limit)
	if err != nil {
		h.writeError(c, err, messageQuestionNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "data": questions})
}

func (h *httpHandler) handleGetQuestion(c *gin.Context) {
	question, err := h.service.GetQuestion(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, messageQuestionNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "data": question})
}

type questionPayload struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
}

func (h *httpHandler) handleCreateQuestion(c *gin.Context) {
	var payload questionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	question, err := h.service.CreateQuestion(c.Request.Context(), qna.QuestionInput{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
	})
	if err != nil {
		h.writeError(c, err, messageQuestionNotFound)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Create question successfully", "data": question})
}

type questionUpdatePayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (h *httpHandler) handleUpdateQuestion(c *gin.Context) {
	var payload questionUpdatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	question, err := h.service.UpdateQuestion(c.Request.Context(), c.Param("id"), qna.QuestionUpdate{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
	})
	if err != nil {
		h.writeError(c, err, messageQuestionNotFound)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Update question successfully", "data": question})
}

func (h *httpHandler) handleDeleteQuestion(c *gin.Context) {
	if err := h.service.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err, messageQuestionNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question and associated answers deleted successfully."})
}

func (h *httpHandler) handleListAnswers(c *gin.Context) {
	answers, err := h.service.ListAnswers(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, messageQuestionNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "data": answers})
}

type answerPayload struct {
	Content string `json:"content" binding:"required"`
}

func (h *httpHandler) handleCreateAnswer(c *gin.Context) {
	var payload answerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	answer, err := h.service.CreateAnswer(c.Request.Context(), c.Param("id"), qna.AnswerInput{Content: payload.Content})
	if err != nil {
		h.writeError(c, err, messageQuestionNotFound)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Create answer successfully", "data": answer})
}

func (h *httpHandler) handleGetAnswer(c *gin.Context) {
	answer, err := h.service.GetAnswer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, messageAnswerNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "data": answer})
}

type answerUpdatePayload struct {
	Content *string `json:"content"`
}

func (h *httpHandler) handleUpdateAnswer(c *gin.Context) {
	var payload answerUpdatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	answer, err := h.service.UpdateAnswer(c.Request.Context(), c.Param("id"), qna.AnswerUpdate{Content: payload.Content})
	if err != nil {
		h.writeError(c, err, messageAnswerNotFound)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Update answer successfully", "data": answer})
}

func (h *httpHandler) handleDeleteAnswer(c *gin.Context) {
	if err := h.service.DeleteAnswer(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err, messageAnswerNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Answer deleted successfully."})
}

func (h *httpHandler) handleVoteQuestion(value int) gin.HandlerFunc {
	return func(c *gin.Context) {
		question, err := h.service.VoteQuestion(c.Request.Context(), c.Param("id"), value)
		if err != nil {
			h.writeError(c, err, messageQuestionNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": voteMessage(value, "question"), "data": question})
	}
}

func (h *httpHandler) handleVoteAnswer(value int) gin.HandlerFunc {
	return func(c *gin.Context) {
		answer, err := h.service.VoteAnswer(c.Request.Context(), c.Param("id"), value)
		if err != nil {
			h.writeError(c, err, messageAnswerNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": voteMessage(value, "answer"), "data": answer})
	}
}

func voteMessage(value int, target string) string {
	if value == qna.VoteUp {
		return "Successfully upvoted the " + target + "."
	}
	return "Successfully downvoted the " + target + "."
}

// writeError maps domain sentinels to response statuses. Unexpected errors
// become a generic envelope carrying only the service error code.
func (h *httpHandler) writeError(c *gin.Context, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, qna.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
	case errors.Is(err, qna.ErrInvalidVote):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_vote"})
	case errors.Is(err, qna.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage})
	default:
		h.logger.Error("request failed", zap.Error(err))
		response := gin.H{"error": "internal_error"}
		var serviceErr *qna.ServiceError
		if errors.As(err, &serviceErr) {
			response["code"] = serviceErr.Code()
		}
		c.JSON(http.StatusInternalServerError, response)
	}
}
