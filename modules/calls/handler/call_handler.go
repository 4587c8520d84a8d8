package handler

import (
	"net/http"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/auth"
	httpPlatform "github.com/alexandruradulescu-neurony/recruitflow/internal/platform/http"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/calls/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/calls/service"
	"github.com/gin-gonic/gin"
)

// CallHandler exposes a read-only operator view over Call attempts. Calls are created
// and mutated exclusively by the dispatcher, the webhook handler, and the scheduler.
type CallHandler struct {
	service *service.CallService
}

func NewCallHandler(service *service.CallService) *CallHandler {
	return &CallHandler{service: service}
}

// ListByApplication godoc
// @Summary List call attempts for an application
// @Tags calls
// @Security BearerAuth
// @Produce json
// @Param application_id path string true "Application ID"
// @Success 200 {array} model.CallDTO
// @Failure 401 {object} httpPlatform.ErrorResponse
// @Router /applications/{application_id}/calls [get]
func (h *CallHandler) ListByApplication(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	calls, err := h.service.ListByApplication(c.Request.Context(), c.Param("application_id"))
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	dtos := make([]*model.CallDTO, 0, len(calls))
	for _, call := range calls {
		dtos = append(dtos, call.ToDTO())
	}
	httpPlatform.RespondWithData(c, http.StatusOK, dtos)
}

// Get godoc
// @Summary Get a call attempt
// @Tags calls
// @Security BearerAuth
// @Produce json
// @Param id path string true "Call ID"
// @Success 200 {object} model.CallDTO
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /calls/{id} [get]
func (h *CallHandler) Get(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	call, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if model.GetErrorCode(err) == model.CodeCallNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(model.GetErrorCode(err)), err.Error())
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, call.ToDTO())
}

// RegisterRoutes mounts the call routes under the given router group.
func (h *CallHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	rg.GET("/calls/:id", authMiddleware, h.Get)
	rg.GET("/applications/:application_id/calls", authMiddleware, h.ListByApplication)
}
