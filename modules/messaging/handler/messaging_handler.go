package handler

import (
	"net/http"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/auth"
	httpPlatform "github.com/alexandruradulescu-neurony/recruitflow/internal/platform/http"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/ports"
	"github.com/gin-gonic/gin"
)

// MessagingHandler exposes template administration and the per-application
// communication history. Outbound sends themselves are triggered internally by the
// evaluation/scheduler flows, never directly by an operator.
type MessagingHandler struct {
	templates ports.MessageTemplateRepository
	messages  ports.MessageRepository
	replies   ports.CandidateReplyRepository
}

func NewMessagingHandler(templates ports.MessageTemplateRepository, messages ports.MessageRepository, replies ports.CandidateReplyRepository) *MessagingHandler {
	return &MessagingHandler{templates: templates, messages: messages, replies: replies}
}

// ListTemplates godoc
// @Summary List message templates
// @Tags messaging
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.MessageTemplateDTO
// @Router /messaging/templates [get]
func (h *MessagingHandler) ListTemplates(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	templates, err := h.templates.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	dtos := make([]*model.MessageTemplateDTO, 0, len(templates))
	for _, t := range templates {
		dtos = append(dtos, t.ToDTO())
	}
	httpPlatform.RespondWithData(c, http.StatusOK, dtos)
}

type upsertTemplateRequest struct {
	Type    model.Type    `json:"type" binding:"required"`
	Channel model.Channel `json:"channel" binding:"required"`
	Subject string        `json:"subject"`
	Body    string        `json:"body" binding:"required"`
	Active  bool          `json:"active"`
}

// UpsertTemplate godoc
// @Summary Create or replace a message template
// @Tags messaging
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body upsertTemplateRequest true "Template"
// @Success 200 {object} model.MessageTemplateDTO
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Router /messaging/templates [put]
func (h *MessagingHandler) UpsertTemplate(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	var req upsertTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if !req.Type.IsValid() || !req.Channel.IsValid() {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "unknown type or channel")
		return
	}

	tmpl := &model.MessageTemplate{Type: req.Type, Channel: req.Channel, Subject: req.Subject, Body: req.Body, Active: req.Active}
	if err := h.templates.Upsert(c.Request.Context(), tmpl); err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, tmpl.ToDTO())
}

// ListMessages godoc
// @Summary List outbound messages for an application
// @Tags messaging
// @Security BearerAuth
// @Produce json
// @Param application_id path string true "Application ID"
// @Success 200 {array} model.MessageDTO
// @Router /applications/{application_id}/messages [get]
func (h *MessagingHandler) ListMessages(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	messages, err := h.messages.ListByApplication(c.Request.Context(), c.Param("application_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	dtos := make([]*model.MessageDTO, 0, len(messages))
	for _, m := range messages {
		dtos = append(dtos, m.ToDTO())
	}
	httpPlatform.RespondWithData(c, http.StatusOK, dtos)
}

// ListReplies godoc
// @Summary List inbound replies for an application
// @Tags messaging
// @Security BearerAuth
// @Produce json
// @Param application_id path string true "Application ID"
// @Success 200 {array} model.CandidateReply
// @Router /applications/{application_id}/replies [get]
func (h *MessagingHandler) ListReplies(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	replies, err := h.replies.ListByApplication(c.Request.Context(), c.Param("application_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, replies)
}

func (h *MessagingHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	rg.GET("/messaging/templates", authMiddleware, h.ListTemplates)
	rg.PUT("/messaging/templates", authMiddleware, h.UpsertTemplate)
	rg.GET("/applications/:application_id/messages", authMiddleware, h.ListMessages)
	rg.GET("/applications/:application_id/replies", authMiddleware, h.ListReplies)
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch model.GetErrorCode(err) {
	case model.CodeTemplateNotFound, model.CodeMessageNotFound:
		status = http.StatusNotFound
	case model.CodeNoActiveTemplate, model.CodeNoRecipient:
		status = http.StatusBadRequest
	}
	httpPlatform.RespondWithError(c, status, string(model.GetErrorCode(err)), err.Error())
}
