package handler

import (
	"net/http"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/auth"
	httpPlatform "github.com/alexandruradulescu-neurony/recruitflow/internal/platform/http"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/service"
	"github.com/gin-gonic/gin"
)

// EvaluationHandler exposes a read-only operator view over scoring results.
// Evaluations are created exclusively by the evaluation adapter.
type EvaluationHandler struct {
	service *service.EvaluationService
}

func NewEvaluationHandler(service *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{service: service}
}

// Get godoc
// @Summary Get an evaluation
// @Tags evaluations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} model.EvaluationDTO
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /evaluations/{id} [get]
func (h *EvaluationHandler) Get(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	eval, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if model.GetErrorCode(err) == model.CodeEvaluationNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(model.GetErrorCode(err)), err.Error())
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, eval.ToDTO())
}

// GetByCall godoc
// @Summary Get the evaluation for a call
// @Tags evaluations
// @Security BearerAuth
// @Produce json
// @Param call_id path string true "Call ID"
// @Success 200 {object} model.EvaluationDTO
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /calls/{call_id}/evaluation [get]
func (h *EvaluationHandler) GetByCall(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	eval, err := h.service.GetByCallID(c.Request.Context(), c.Param("call_id"))
	if err != nil {
		status := http.StatusInternalServerError
		if model.GetErrorCode(err) == model.CodeEvaluationNotFound {
			status = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, status, string(model.GetErrorCode(err)), err.Error())
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, eval.ToDTO())
}

// RegisterRoutes mounts the evaluation routes under the given router group.
func (h *EvaluationHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	rg.GET("/evaluations/:id", authMiddleware, h.Get)
	rg.GET("/calls/:call_id/evaluation", authMiddleware, h.GetByCall)
}
