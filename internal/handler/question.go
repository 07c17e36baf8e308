package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sumire/overflow/internal/domain"
	"github.com/sumire/overflow/internal/service"
)

// QuestionHandler handles question endpoints.
type QuestionHandler struct {
	questions *service.QuestionService
	votes     *service.VoteService
	aiAnswers *service.AIAnswerService
}

// NewQuestionHandler creates a new QuestionHandler. aiAnswers may be
// nil when the AI feature is not configured.
func NewQuestionHandler(questions *service.QuestionService, votes *service.VoteService, aiAnswers *service.AIAnswerService) *QuestionHandler {
	return &QuestionHandler{questions: questions, votes: votes, aiAnswers: aiAnswers}
}

// CreateQuestionRequest is the body of POST /questions.
type CreateQuestionRequest struct {
	Title       string   `json:"title" validate:"required,min=10"`
	Description string   `json:"description" validate:"required,min=20"`
	Tags        []string `json:"tags" validate:"required,min=1,max=5"`
}

// Create handles POST /questions.
func (h *QuestionHandler) Create(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req CreateQuestionRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	question, err := h.questions.Create(c.Request().Context(), userID, req.Title, req.Description, req.Tags)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusCreated, question)
}

// List handles GET /questions.
func (h *QuestionHandler) List(c echo.Context) error {
	opts := domain.QuestionFilter{
		Tag:    c.QueryParam("tag"),
		Search: c.QueryParam("q"),
		Sort:   domain.QuestionSort(c.QueryParam("sort")),
		Limit:  queryInt(c, "limit", 20),
		Offset: queryInt(c, "offset", 0),
	}

	questions, hasNext, err := h.questions.List(c.Request().Context(), opts)
	if err != nil {
		return err
	}

	return JSONList(c, http.StatusOK, questions, PaginationMeta{
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasNext: hasNext,
	})
}

// Trending handles GET /questions/trending.
func (h *QuestionHandler) Trending(c echo.Context) error {
	questions, err := h.questions.Trending(c.Request().Context(), queryInt(c, "limit", 5))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, questions)
}

// Get handles GET /questions/:id. Every call counts as a view.
func (h *QuestionHandler) Get(c echo.Context) error {
	questionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	viewerID, _ := GetUserID(c)
	detail, err := h.questions.GetDetail(c.Request().Context(), questionID, viewerID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, detail)
}

// VoteRequest is the body of vote endpoints.
type VoteRequest struct {
	Value int `json:"value" validate:"required,oneof=1 -1"`
}

// Vote handles POST /questions/:id/votes.
func (h *QuestionHandler) Vote(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	questionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req VoteRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.votes.Cast(c.Request().Context(), userID, questionID, domain.TargetQuestion, req.Value)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, result)
}

// RequestAIAnswer handles POST /questions/:id/ai-answer.
func (h *QuestionHandler) RequestAIAnswer(c echo.Context) error {
	if _, ok := GetUserID(c); !ok {
		return domain.ErrUnauthorized
	}
	if h.aiAnswers == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "AI answers are not enabled")
	}

	questionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	job, err := h.aiAnswers.Request(c.Request().Context(), questionID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusAccepted, job)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrInvalidInput, name)
	}
	return id, nil
}

func queryInt(c echo.Context, name string, defaultValue int) int {
	v := c.QueryParam(name)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}
