package webhook

import (
	"io"
	"net/http"

	"github.com/JakobStaudinger/cinnabar/internal/cinnaerr"
	"github.com/JakobStaudinger/cinnabar/internal/domain"
	"github.com/JakobStaudinger/cinnabar/internal/shared/secret"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TriggerHandler receives an authenticated, parsed trigger. It must not
// block: it owns its own scheduling and is expected to return immediately,
// having spawned whatever background work it needs.
type TriggerHandler func(domain.Trigger)

// Handler is the Gin-facing webhook ingress.
type Handler struct {
	webhookSecret secret.String
	onTrigger     TriggerHandler
	logger        *zap.Logger
}

// NewHandler builds a webhook Handler.
func NewHandler(webhookSecret secret.String, onTrigger TriggerHandler, logger *zap.Logger) *Handler {
	return &Handler{webhookSecret: webhookSecret, onTrigger: onTrigger, logger: logger}
}

// HandleWebhook implements POST /webhook.
func (h *Handler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "Failed to read body")
		return
	}

	verified, err := Verify(c.Request.Header, body, h.webhookSecret)
	if err != nil {
		h.logger.Debug("webhook rejected", zap.Error(err))
		c.String(http.StatusBadRequest, reasonOf(err))
		return
	}

	trigger, err := ParseTrigger(c.Request.Header, verified)
	if err != nil {
		h.logger.Debug("webhook rejected", zap.Error(err))
		c.String(http.StatusBadRequest, reasonOf(err))
		return
	}

	if trigger == nil {
		c.String(http.StatusNoContent, "OK")
		return
	}

	h.onTrigger(*trigger)
	c.String(http.StatusCreated, "OK")
}

// reasonOf extracts the short stable message carried by a cinnaerr.Error,
// falling back to the generic error text.
func reasonOf(err error) string {
	if tagged, ok := err.(*cinnaerr.Error); ok {
		return tagged.Message
	}
	return err.Error()
}
