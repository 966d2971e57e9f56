package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"salonbot/models"
	"salonbot/services/conversation"
	"salonbot/utils"
)

// WebhookHandler receives inbound channel events and answers with the
// orchestrator's outbound payload.
type WebhookHandler struct {
	Conversation conversation.ConversationService
	Logger       *zap.Logger
}

func NewWebhookHandler(svc conversation.ConversationService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Conversation: svc, Logger: logger}
}

type inboundMessage struct {
	CustomerID string `json:"customerId" binding:"required"`
	SalonID    string `json:"salonId" binding:"required"`
	Text       string `json:"text"`
	ButtonID   string `json:"buttonId"`
	Language   string `json:"language"`
	Intent     *struct {
		ServiceID      string `json:"serviceId"`
		PreferredDate  string `json:"preferredDate"`
		PreferredTime  string `json:"preferredTime"`
		PreferredStaff string `json:"preferredStaff"`
	} `json:"intent"`
}

// HandleMessage processes one inbound customer message or button tap.
func (h *WebhookHandler) HandleMessage(c *gin.Context) {
	var input inboundMessage
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Text == "" && input.ButtonID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either text or buttonId is required"})
		return
	}

	ev := conversation.InboundEvent{
		CustomerID: input.CustomerID,
		SalonID:    input.SalonID,
		Text:       input.Text,
		ButtonID:   input.ButtonID,
		Language:   input.Language,
	}
	if input.Intent != nil {
		ev.Intent = &models.OriginalIntent{
			ServiceID:      input.Intent.ServiceID,
			PreferredDate:  input.Intent.PreferredDate,
			PreferredTime:  input.Intent.PreferredTime,
			PreferredStaff: input.Intent.PreferredStaff,
		}
	}

	eventID := uuid.New().String()
	payload, err := h.Conversation.HandleInbound(c.Request.Context(), ev)
	if err != nil {
		h.Logger.Error("webhook: conversation failed",
			zap.String("eventId", eventID),
			zap.String("customerId", input.CustomerID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to process message", "event "+eventID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"eventId": eventID, "payload": payload})
}
