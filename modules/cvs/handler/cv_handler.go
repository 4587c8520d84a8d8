package handler

import (
	"net/http"
	"strconv"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/auth"
	httpPlatform "github.com/alexandruradulescu-neurony/recruitflow/internal/platform/http"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/ports"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/service"
	"github.com/gin-gonic/gin"
)

// CVHandler exposes the CV Inbox screen: the medium-confidence matches a recruiter
// needs to confirm, and the unmatched attachments waiting on manual assignment.
type CVHandler struct {
	cvService ports.CVUploadRepository
	unmatched ports.UnmatchedInboundRepository
	cascade   *service.CVService
}

func NewCVHandler(cvService ports.CVUploadRepository, unmatched ports.UnmatchedInboundRepository, cascade *service.CVService) *CVHandler {
	return &CVHandler{cvService: cvService, unmatched: unmatched, cascade: cascade}
}

// ListNeedingReview godoc
// @Summary List CV uploads matched with medium confidence, pending recruiter confirmation
// @Tags cvs
// @Security BearerAuth
// @Produce json
// @Success 200 {object} httpPlatform.PaginatedResponse
// @Router /cvs/needs-review [get]
func (h *CVHandler) ListNeedingReview(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	page, err := httpPlatform.ParsePaginationParams(c)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	uploads, total, err := h.cvService.ListNeedingReview(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		respondError(c, err)
		return
	}
	dtos := make([]*model.CVUploadDTO, 0, len(uploads))
	for _, u := range uploads {
		dtos = append(dtos, u.ToDTO())
	}
	httpPlatform.RespondWithPagination(c, http.StatusOK, dtos, page.Limit, page.Offset, total)
}

// ListUnmatched godoc
// @Summary List inbound attachments the matching cascade could not attribute to a candidate
// @Tags cvs
// @Security BearerAuth
// @Produce json
// @Param resolved query bool false "Filter by resolution state"
// @Success 200 {object} httpPlatform.PaginatedResponse
// @Router /cvs/unmatched [get]
func (h *CVHandler) ListUnmatched(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	page, err := httpPlatform.ParsePaginationParams(c)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	var resolved *bool
	if raw := c.Query("resolved"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "resolved must be a boolean")
			return
		}
		resolved = &b
	}
	items, total, err := h.unmatched.List(c.Request.Context(), resolved, page.Limit, page.Offset)
	if err != nil {
		respondError(c, err)
		return
	}
	dtos := make([]*model.UnmatchedInboundDTO, 0, len(items))
	for _, u := range items {
		dtos = append(dtos, u.ToDTO())
	}
	httpPlatform.RespondWithPagination(c, http.StatusOK, dtos, page.Limit, page.Offset, total)
}

type resolveRequest struct {
	ApplicationID string `json:"application_id" binding:"required"`
}

// Resolve godoc
// @Summary Attach an unmatched inbound CV to a recruiter-chosen application
// @Tags cvs
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Unmatched inbound ID"
// @Param request body resolveRequest true "Target application"
// @Success 200 {object} nil
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /cvs/unmatched/{id}/resolve [post]
func (h *CVHandler) Resolve(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	result, err := h.cascade.ResolveManually(c.Request.Context(), c.Param("id"), req.ApplicationID)
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, result)
}

// RegisterRoutes mounts the CV Inbox routes under the given router group.
func (h *CVHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	rg.GET("/cvs/needs-review", authMiddleware, h.ListNeedingReview)
	rg.GET("/cvs/unmatched", authMiddleware, h.ListUnmatched)
	rg.POST("/cvs/unmatched/:id/resolve", authMiddleware, h.Resolve)
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch model.GetErrorCode(err) {
	case model.CodeCVUploadNotFound, model.CodeUnmatchedInboundNotFound:
		status = http.StatusNotFound
	case model.CodeAlreadyResolved, model.CodeUnsupportedContentType:
		status = http.StatusBadRequest
	}
	httpPlatform.RespondWithError(c, status, string(model.GetErrorCode(err)), err.Error())
}
