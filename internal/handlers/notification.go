package handlers

import (
	"stagepay/internal/repositories"
	"stagepay/internal/services/notification"
	"stagepay/internal/utils"
	"stagepay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notifier *notification.Service
	store    repositories.Repos
}

func NewNotificationHandler(notifier *notification.Service, store repositories.Repos) *NotificationHandler {
	return &NotificationHandler{notifier: notifier, store: store}
}

// ListNotifications returns the caller's most recent notifications.
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	actor, err := utils.GetActor(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	limit := utils.GetLimit(c, 50, 100)
	items, err := h.notifier.ListForUser(c.UserContext(), h.store, actor.ID, limit)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Notifications retrieved successfully", items)
}
