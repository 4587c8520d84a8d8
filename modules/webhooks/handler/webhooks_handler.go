package handler

import (
	"io"
	"net/http"

	httpPlatform "github.com/alexandruradulescu-neurony/recruitflow/internal/platform/http"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/webhooks/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhooksHandler exposes the two inbound webhook endpoints external providers call.
// Neither requires the bearer-token auth middleware the rest of the API uses — each
// authenticates itself against its own shared secret instead.
type WebhooksHandler struct {
	elevenLabs *service.ElevenLabsWebhookService
	whapi      *service.WhapiWebhookService
	logger     *logger.Logger
}

func NewWebhooksHandler(elevenLabs *service.ElevenLabsWebhookService, whapi *service.WhapiWebhookService, log *logger.Logger) *WebhooksHandler {
	return &WebhooksHandler{elevenLabs: elevenLabs, whapi: whapi, logger: log}
}

func (h *WebhooksHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/elevenlabs", h.ElevenLabs)
	rg.POST("/webhooks/whapi", h.Whapi)
}

// ElevenLabs handles the voice-agent provider's post-call-transcription event.
func (h *WebhooksHandler) ElevenLabs(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		reject(c, "could not read request body")
		return
	}

	sigHeader := c.GetHeader("ElevenLabs-Signature")
	if err := h.elevenLabs.ValidateSignature(sigHeader, rawBody); err != nil {
		h.logger.Warn("elevenlabs webhook rejected", zap.Error(err))
		reject(c, err.Error())
		return
	}

	event, err := h.elevenLabs.Parse(rawBody)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	handled, err := h.elevenLabs.Handle(c.Request.Context(), event)
	if err != nil {
		h.logger.Error("elevenlabs webhook handling failed", zap.Error(err))
		ok(c, "processing_error")
		return
	}
	if !handled {
		ok(c, "call_not_found")
		return
	}
	ok(c, "ok")
}

// Whapi handles an inbound WhatsApp message event.
func (h *WebhooksHandler) Whapi(c *gin.Context) {
	if !h.whapi.ValidateToken(c.GetHeader("X-Whapi-Token"), c.GetHeader("Authorization")) {
		reject(c, "invalid or missing whapi token")
		return
	}

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		reject(c, "could not read request body")
		return
	}

	event, err := h.whapi.Parse(rawBody)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	if len(event.Messages) == 0 {
		ok(c, "no_messages")
		return
	}

	h.whapi.Handle(c.Request.Context(), event)
	ok(c, "ok")
}

func ok(c *gin.Context, status string) {
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func reject(c *gin.Context, reason string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": reason})
}
