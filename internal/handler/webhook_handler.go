package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/12344-munna/order-handler/internal/command"
	"github.com/12344-munna/order-handler/internal/messenger"
)

// WebhookHandler serves the two inbound webhook shapes: the platform's
// verification handshake (GET) and event delivery (POST).
type WebhookHandler struct {
	router      *command.Router
	verifyToken string
	logger      *zap.Logger
}

func NewWebhookHandler(router *command.Router, verifyToken string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		router:      router,
		verifyToken: verifyToken,
		logger:      logger,
	}
}

// Verify answers the challenge/response handshake. The challenge is echoed
// back verbatim only when both the mode and the shared secret match.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		h.logger.Info("Webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}

	h.logger.Warn("Webhook verification failed", zap.String("mode", mode))
	c.String(http.StatusForbidden, "Forbidden")
}

// Receive accepts an event-delivery POST. Every messaging event in every
// entry is dispatched; the platform always gets 200 once the body parses so
// it never redelivers on application-level failures.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload messenger.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Error("Invalid webhook body", zap.Error(err))
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	if payload.Object == "page" {
		for _, entry := range payload.Entry {
			for _, event := range entry.Messaging {
				text := ""
				if event.Message != nil {
					text = event.Message.Text
				}
				h.router.Route(c.Request.Context(), event.Sender.ID, text)
			}
		}
	}

	c.String(http.StatusOK, "EVENT_RECEIVED")
}
