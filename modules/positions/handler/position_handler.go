package handler

import (
	"net/http"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/auth"
	httpPlatform "github.com/alexandruradulescu-neurony/recruitflow/internal/platform/http"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/positions/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/positions/ports"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/positions/service"
	"github.com/gin-gonic/gin"
)

type PositionHandler struct {
	service *service.PositionService
}

func NewPositionHandler(service *service.PositionService) *PositionHandler {
	return &PositionHandler{service: service}
}

type positionRequest struct {
	Title                  string `json:"title" binding:"required"`
	Description            string `json:"description"`
	Status                 string `json:"status"`
	QualificationCriteria  string `json:"qualification_criteria"`
	VoiceAgentSystemPrompt string `json:"voice_agent_system_prompt"`
	VoiceAgentFirstMessage string `json:"voice_agent_first_message"`
	CallingHourStart       int    `json:"calling_hour_start"`
	CallingHourEnd         int    `json:"calling_hour_end"`
	CallRetryMax           int    `json:"call_retry_max"`
	CallRetryIntervalMins  int    `json:"call_retry_interval_minutes"`
	FollowUpIntervalHours  int    `json:"follow_up_interval_hours"`
	RejectedCVTimeoutDays  int    `json:"rejected_cv_timeout_days"`
}

func (r *positionRequest) toModel() *model.Position {
	status := model.Status(r.Status)
	if status == "" {
		status = model.StatusOpen
	}
	return &model.Position{
		Title:                  r.Title,
		Description:            r.Description,
		Status:                 status,
		QualificationCriteria:  r.QualificationCriteria,
		VoiceAgentSystemPrompt: r.VoiceAgentSystemPrompt,
		VoiceAgentFirstMessage: r.VoiceAgentFirstMessage,
		CallingHourStart:       r.CallingHourStart,
		CallingHourEnd:         r.CallingHourEnd,
		CallRetryMax:           r.CallRetryMax,
		CallRetryIntervalMins:  r.CallRetryIntervalMins,
		FollowUpIntervalHours:  r.FollowUpIntervalHours,
		RejectedCVTimeoutDays:  r.RejectedCVTimeoutDays,
	}
}

// Create godoc
// @Summary Create a position
// @Tags positions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body positionRequest true "Position"
// @Success 201 {object} model.PositionDTO
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Router /positions [post]
func (h *PositionHandler) Create(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	created, err := h.service.Create(c.Request.Context(), req.toModel())
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusCreated, created.ToDTO())
}

// Get godoc
// @Summary Get a position
// @Tags positions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Position ID"
// @Success 200 {object} model.PositionDTO
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /positions/{id} [get]
func (h *PositionHandler) Get(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, p.ToDTO())
}

// List godoc
// @Summary List positions
// @Tags positions
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} httpPlatform.PaginatedResponse
// @Router /positions [get]
func (h *PositionHandler) List(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	page, err := httpPlatform.ParsePaginationParams(c)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	filter := ports.ListFilter{Limit: page.Limit, Offset: page.Offset}
	if s := c.Query("status"); s != "" {
		status := model.Status(s)
		filter.Status = &status
	}
	positions, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	dtos := make([]*model.PositionDTO, 0, len(positions))
	for _, p := range positions {
		dtos = append(dtos, p.ToDTO())
	}
	httpPlatform.RespondWithPagination(c, http.StatusOK, dtos, page.Limit, page.Offset, total)
}

// Update godoc
// @Summary Update a position
// @Tags positions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Position ID"
// @Param request body positionRequest true "Position"
// @Success 200 {object} model.PositionDTO
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /positions/{id} [put]
func (h *PositionHandler) Update(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	p := req.toModel()
	p.ID = c.Param("id")
	if err := h.service.Update(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, p.ToDTO())
}

// Delete godoc
// @Summary Delete a position
// @Tags positions
// @Security BearerAuth
// @Param id path string true "Position ID"
// @Success 204
// @Router /positions/{id} [delete]
func (h *PositionHandler) Delete(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes mounts the position routes under the given router group.
func (h *PositionHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	positions := rg.Group("/positions", authMiddleware)
	positions.POST("", h.Create)
	positions.GET("", h.List)
	positions.GET("/:id", h.Get)
	positions.PUT("/:id", h.Update)
	positions.DELETE("/:id", h.Delete)
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch model.GetErrorCode(err) {
	case model.CodePositionNotFound:
		status = http.StatusNotFound
	case model.CodeInvalidStatus, model.CodeInvalidCallingWindow, model.CodeInvalidTuning:
		status = http.StatusBadRequest
	}
	httpPlatform.RespondWithError(c, status, string(model.GetErrorCode(err)), model.GetErrorMessage(err))
}
