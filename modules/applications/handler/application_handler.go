package handler

import (
	"net/http"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/auth"
	httpPlatform "github.com/alexandruradulescu-neurony/recruitflow/internal/platform/http"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/applications/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/applications/ports"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/applications/service"
	"github.com/gin-gonic/gin"
)

// ApplicationHandler exposes a read/annotate operator API over the pipeline.
// Mutation of Status never happens through a generic Update — every status change is
// driven by the scheduler, webhook, or evaluation adapter through service.Transition,
// so the only write endpoints here are adding a free-text timeline note and deleting an
// application.
type ApplicationHandler struct {
	service *service.ApplicationService
}

func NewApplicationHandler(service *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// Get godoc
// @Summary Get an application
// @Description Get details of a specific application by ID
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} model.ApplicationDTO
// @Failure 401 {object} httpPlatform.ErrorResponse
// @Failure 404 {object} httpPlatform.ErrorResponse "Application not found"
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	app, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, app.ToDTO())
}

// List godoc
// @Summary List applications
// @Description List applications, optionally filtered by status
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} httpPlatform.PaginatedResponse
// @Failure 401 {object} httpPlatform.ErrorResponse
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
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
		filter.Statuses = []model.Status{model.Status(s)}
	}
	apps, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	dtos := make([]*model.ApplicationDTO, 0, len(apps))
	for _, a := range apps {
		dtos = append(dtos, a.ToDTO())
	}
	httpPlatform.RespondWithPagination(c, http.StatusOK, dtos, page.Limit, page.Offset, total)
}

// Timeline godoc
// @Summary Get an application's status timeline
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {array} model.StatusChangeDTO
// @Failure 401 {object} httpPlatform.ErrorResponse
// @Router /applications/{id}/timeline [get]
func (h *ApplicationHandler) Timeline(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	changes, err := h.service.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	dtos := make([]*model.StatusChangeDTO, 0, len(changes))
	for _, ch := range changes {
		dtos = append(dtos, ch.ToDTO())
	}
	httpPlatform.RespondWithData(c, http.StatusOK, dtos)
}

type addNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

// AddNote godoc
// @Summary Add a free-text note to an application's timeline
// @Tags applications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param request body addNoteRequest true "Note text"
// @Success 201 {object} model.StatusChangeDTO
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 401 {object} httpPlatform.ErrorResponse
// @Router /applications/{id}/notes [post]
func (h *ApplicationHandler) AddNote(c *gin.Context) {
	userID, ok := auth.MustGetUserID(c)
	if !ok {
		return
	}
	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "note is required")
		return
	}
	change, err := h.service.AddNote(c.Request.Context(), c.Param("id"), &userID, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusCreated, change.ToDTO())
}

// Delete godoc
// @Summary Delete an application
// @Tags applications
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 204
// @Failure 401 {object} httpPlatform.ErrorResponse
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) Delete(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes mounts the application routes under the given router group.
func (h *ApplicationHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	apps := rg.Group("/applications", authMiddleware)
	apps.GET("", h.List)
	apps.GET("/:id", h.Get)
	apps.GET("/:id/timeline", h.Timeline)
	apps.POST("/:id/notes", h.AddNote)
	apps.DELETE("/:id", h.Delete)
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch model.GetErrorCode(err) {
	case model.CodeApplicationNotFound, model.CodeStatusChangeNotFound:
		status = http.StatusNotFound
	case model.CodeInvalidStatus, model.CodeDuplicateApplication, model.CodeTerminalApplication:
		status = http.StatusBadRequest
	}
	httpPlatform.RespondWithError(c, status, string(model.GetErrorCode(err)), model.GetErrorMessage(err))
}
