package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/overflow/internal/domain"
	"github.com/sumire/overflow/internal/service"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /notifications.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	notifications, err := h.notifications.List(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return err
	}

	return JSONList(c, http.StatusOK, notifications, PaginationMeta{
		Limit:   limit,
		Offset:  offset,
		HasNext: len(notifications) == limit,
	})
}

// UnreadCount handles GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	count, err := h.notifications.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, map[string]int{"unread": count})
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	notificationID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifications.MarkRead(c.Request().Context(), userID, notificationID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := h.notifications.MarkAllRead(c.Request().Context(), userID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
