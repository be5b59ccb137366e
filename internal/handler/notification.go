package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePage(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.notificationService.FindAll(userID, unreadOnly, page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	SuccessPaged(c, notifications, total, page, pageSize)
}

// GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	Success(c, gin.H{"count": h.notificationService.UnreadCount(userID)})
}

// PUT /notifications/:notificationId/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	notificationID := parseID(c.Param("notificationId"))

	if err := h.notificationService.MarkRead(userID, notificationID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "marked as read"})
}

// PUT /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	n, err := h.notificationService.MarkAllRead(userID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"marked": n})
}

// DELETE /notifications/:notificationId
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	notificationID := parseID(c.Param("notificationId"))

	if err := h.notificationService.Delete(userID, notificationID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"message": "notification deleted"})
}
