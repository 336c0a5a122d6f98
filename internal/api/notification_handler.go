package api

import (
	"errors"
	"fmt"
	"net/http"
	"nutrivida/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
)

// NotificationHandler holds the notification service dependency.
type NotificationHandler struct {
	notificationService service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// GetNotifications godoc
// @Summary List the caller's notifications, newest first
// @Tags Notifications
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Success 200 {array} domain.Notification
// @Router /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.notificationService.GetNotifications(c.Request.Context(), callerID, unreadOnly)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve notifications")
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead godoc
// @Summary Mark one notification as read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204 "Marked"
// @Failure 404 {object} gin.H "Notification not found"
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), callerID, id); err != nil {
		handleNotificationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteNotification godoc
// @Summary Delete one notification
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Notification not found"
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.DeleteNotification(c.Request.Context(), callerID, id); err != nil {
		handleNotificationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllNotificationsRead godoc
// @Summary Mark every notification as read
// @Tags Notifications
// @Success 204 "Marked"
// @Router /notifications/read-all [patch]
func (h *NotificationHandler) MarkAllNotificationsRead(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), callerID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to mark notifications read")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetUnreadCount godoc
// @Summary Count unread notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} gin.H "count"
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.notificationService.CountUnread(c.Request.Context(), callerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to count notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// SendMessage godoc
// @Summary Send a direct message
// @Tags Messages
// @Accept json
// @Produce json
// @Param message body SendMessageRequest true "Message"
// @Success 201 {object} domain.Message
// @Failure 404 {object} gin.H "Receiver not found"
// @Router /messages [post]
func (h *NotificationHandler) SendMessage(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	receiverID, err := parseHex(req.ReceiverID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid receiverId format")
		return
	}

	msg, err := h.notificationService.SendMessage(c.Request.Context(), callerID, receiverID, req.Content)
	if err != nil {
		handleNotificationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// GetConversation godoc
// @Summary Get the message thread with a partner
// @Description Fetching the thread marks the partner's messages as read.
// @Tags Messages
// @Produce json
// @Param partnerId path string true "Partner user ID"
// @Success 200 {array} domain.Message
// @Router /messages/{partnerId} [get]
func (h *NotificationHandler) GetConversation(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	partnerID, ok := pathObjectID(c, "partnerId")
	if !ok {
		return
	}

	messages, err := h.notificationService.GetConversation(c.Request.Context(), callerID, partnerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve conversation")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// GetConversations godoc
// @Summary List conversations with last message and unread count
// @Tags Messages
// @Produce json
// @Success 200 {array} service.Conversation
// @Router /messages [get]
func (h *NotificationHandler) GetConversations(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversations, err := h.notificationService.GetConversations(c.Request.Context(), callerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve conversations")
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// GetUnreadMessageCount godoc
// @Summary Count unread messages
// @Tags Messages
// @Produce json
// @Success 200 {object} gin.H "count"
// @Router /messages/unread-count [get]
func (h *NotificationHandler) GetUnreadMessageCount(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.notificationService.CountUnreadMessages(c.Request.Context(), callerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to count messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func handleNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotificationNotFound), errors.Is(err, service.ErrReceiverNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
