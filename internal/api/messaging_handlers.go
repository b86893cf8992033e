package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neurograph/internal/messaging"
	"neurograph/pkg/errors"
)

// ListChannels handles GET /api/corpus-callosum/channels.
func (h *Handler) ListChannels(c *gin.Context) {
	channels, err := h.messages.ListChannels(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if channels == nil {
		channels = []messaging.ChannelInfo{}
	}
	c.JSON(http.StatusOK, gin.H{
		"channels": channels,
		"total":    len(channels),
	})
}

// ListMessages handles GET /api/corpus-callosum/messages?channel&limit&unread_only.
func (h *Handler) ListMessages(c *gin.Context) {
	channel := c.DefaultQuery("channel", "general")
	limit := intQuery(c, "limit", 50)
	unreadOnly := c.Query("unread_only") == "true"

	msgs, err := h.messages.ListMessages(c.Request.Context(), channel, limit, unreadOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []messaging.Message{}
	}
	c.JSON(http.StatusOK, gin.H{
		"channel":  channel,
		"messages": msgs,
		"total":    len(msgs),
	})
}

// ListSessions handles GET /api/corpus-callosum/sessions.
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.messages.ListSessions(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if sessions == nil {
		sessions = []messaging.SessionInfo{}
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

// SendMessage handles POST /api/corpus-callosum/send. Field validation and
// defaulting live in the messaging service.
func (h *Handler) SendMessage(c *gin.Context) {
	var input messaging.SendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, errors.NewValidation("body", "malformed JSON"))
		return
	}

	result, err := h.messages.Send(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        result.ID,
		"timestamp": result.Timestamp,
		"status":    "sent",
	})
}

// GetThread handles GET /api/corpus-callosum/thread/:messageId.
func (h *Handler) GetThread(c *gin.Context) {
	messageID := c.Param("messageId")

	replies, err := h.messages.GetThread(c.Request.Context(), messageID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if replies == nil {
		replies = []messaging.Message{}
	}
	c.JSON(http.StatusOK, gin.H{
		"message_id": messageID,
		"replies":    replies,
		"total":      len(replies),
	})
}

// MarkRead handles POST /api/corpus-callosum/mark-read.
func (h *Handler) MarkRead(c *gin.Context) {
	var body struct {
		MessageIDs []string `json:"message_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, errors.NewValidation("message_ids", "must be a list of message ids"))
		return
	}

	updated, err := h.messages.MarkRead(c.Request.Context(), body.MessageIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// MessagingStats handles GET /api/corpus-callosum/stats.
func (h *Handler) MessagingStats(c *gin.Context) {
	stats, err := h.messages.MessagingStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
