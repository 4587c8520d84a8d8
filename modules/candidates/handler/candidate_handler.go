package handler

import (
	"net/http"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/auth"
	httpPlatform "github.com/alexandruradulescu-neurony/recruitflow/internal/platform/http"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/service"
	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	service *service.CandidateService
}

func NewCandidateHandler(service *service.CandidateService) *CandidateHandler {
	return &CandidateHandler{service: service}
}

type candidateRequest struct {
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Phone          string            `json:"phone"`
	Email          string            `json:"email"`
	WhatsAppNumber *string           `json:"whatsapp_number"`
	LeadSourceID   *string           `json:"lead_source_id"`
	FormAnswers    map[string]string `json:"form_answers"`
	Notes          *string           `json:"notes"`
}

// Create godoc
// @Summary Create a candidate
// @Tags candidates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body candidateRequest true "Candidate"
// @Success 201 {object} model.CandidateDTO
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Router /candidates [post]
func (h *CandidateHandler) Create(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	var req candidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	candidate := &model.Candidate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		FullName:       req.FirstName + " " + req.LastName,
		Phone:          req.Phone,
		Email:          req.Email,
		WhatsAppNumber: req.WhatsAppNumber,
		LeadSourceID:   req.LeadSourceID,
		FormAnswers:    req.FormAnswers,
		Notes:          req.Notes,
	}
	created, err := h.service.Create(c.Request.Context(), candidate)
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusCreated, created.ToDTO())
}

// Get godoc
// @Summary Get a candidate
// @Tags candidates
// @Security BearerAuth
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} model.CandidateDTO
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /candidates/{id} [get]
func (h *CandidateHandler) Get(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	candidate, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, candidate.ToDTO())
}

// List godoc
// @Summary List candidates
// @Tags candidates
// @Security BearerAuth
// @Produce json
// @Success 200 {object} httpPlatform.PaginatedResponse
// @Router /candidates [get]
func (h *CandidateHandler) List(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	page, err := httpPlatform.ParsePaginationParams(c)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	candidates, total, err := h.service.List(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		respondError(c, err)
		return
	}
	dtos := make([]*model.CandidateDTO, 0, len(candidates))
	for _, cand := range candidates {
		dtos = append(dtos, cand.ToDTO())
	}
	httpPlatform.RespondWithPagination(c, http.StatusOK, dtos, page.Limit, page.Offset, total)
}

// Update godoc
// @Summary Update a candidate
// @Tags candidates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param request body candidateRequest true "Candidate"
// @Success 200 {object} model.CandidateDTO
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Router /candidates/{id} [put]
func (h *CandidateHandler) Update(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	existing, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	var req candidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	existing.FirstName = req.FirstName
	existing.LastName = req.LastName
	existing.FullName = req.FirstName + " " + req.LastName
	existing.Phone = req.Phone
	existing.Email = req.Email
	existing.WhatsAppNumber = req.WhatsAppNumber
	existing.LeadSourceID = req.LeadSourceID
	existing.FormAnswers = req.FormAnswers
	existing.Notes = req.Notes

	if err := h.service.Update(c.Request.Context(), existing); err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, existing.ToDTO())
}

// Delete godoc
// @Summary Delete a candidate
// @Tags candidates
// @Security BearerAuth
// @Param id path string true "Candidate ID"
// @Success 204
// @Router /candidates/{id} [delete]
func (h *CandidateHandler) Delete(c *gin.Context) {
	if _, ok := auth.MustGetUserID(c); !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes mounts the candidate routes under the given router group.
func (h *CandidateHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	candidates := rg.Group("/candidates", authMiddleware)
	candidates.POST("", h.Create)
	candidates.GET("", h.List)
	candidates.GET("/:id", h.Get)
	candidates.PUT("/:id", h.Update)
	candidates.DELETE("/:id", h.Delete)
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch model.GetErrorCode(err) {
	case model.CodeCandidateNotFound:
		status = http.StatusNotFound
	case model.CodeMissingContactMethod, model.CodeDuplicateLeadSource:
		status = http.StatusBadRequest
	}
	httpPlatform.RespondWithError(c, status, string(model.GetErrorCode(err)), model.GetErrorMessage(err))
}
