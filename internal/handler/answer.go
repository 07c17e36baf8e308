package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/overflow/internal/domain"
	"github.com/sumire/overflow/internal/service"
)

// AnswerHandler handles answer endpoints.
type AnswerHandler struct {
	answers *service.AnswerService
	votes   *service.VoteService
}

func NewAnswerHandler(answers *service.AnswerService, votes *service.VoteService) *AnswerHandler {
	return &AnswerHandler{answers: answers, votes: votes}
}

// CreateAnswerRequest is the body of POST /questions/:id/answers.
type CreateAnswerRequest struct {
	Content string `json:"content" validate:"required,min=20"`
}

// Create handles POST /questions/:id/answers.
func (h *AnswerHandler) Create(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	questionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req CreateAnswerRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	answer, err := h.answers.Create(c.Request().Context(), questionID, userID, req.Content)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusCreated, answer)
}

// Vote handles POST /answers/:id/votes.
func (h *AnswerHandler) Vote(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	answerID, err := pathID(c, "id")
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

	result, err := h.votes.Cast(c.Request().Context(), userID, answerID, domain.TargetAnswer, req.Value)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, result)
}

// AcceptRequest is the body of POST /questions/:id/accept.
type AcceptRequest struct {
	AnswerID int64 `json:"answer_id" validate:"required,gt=0"`
}

// Accept handles POST /questions/:id/accept.
func (h *AnswerHandler) Accept(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	questionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req AcceptRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.answers.Accept(c.Request().Context(), questionID, req.AnswerID, userID); err != nil {
		return err
	}

	return JSON(c, http.StatusOK, map[string]int64{"accepted_answer_id": req.AnswerID})
}

// Unaccept handles DELETE /questions/:id/accept.
func (h *AnswerHandler) Unaccept(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	questionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.answers.Unaccept(c.Request().Context(), questionID, userID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
