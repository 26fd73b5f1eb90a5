package handler

import (
	populationapp "github.com/Faiz-abdurrachman/SIDESA/internal/application/population"
	"github.com/gin-gonic/gin"
)

// ResidentHandler handles /penduduk endpoints
type ResidentHandler struct {
	BaseHandler
	residentService *populationapp.ResidentService
}

// NewResidentHandler creates a new ResidentHandler
func NewResidentHandler(residentService *populationapp.ResidentService) *ResidentHandler {
	return &ResidentHandler{residentService: residentService}
}

// List handles GET /penduduk
func (h *ResidentHandler) List(c *gin.Context) {
	var filter populationapp.ResidentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if !h.queryUUID(c, "kk_id", &filter.FamilyCardID) {
		return
	}

	residents, total, err := h.residentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, residents, total, filter.Page, filter.PageSize)
}

// GetByID handles GET /penduduk/:id
func (h *ResidentHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	resident, err := h.residentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resident)
}

// Create handles POST /penduduk
func (h *ResidentHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req populationapp.CreateResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resident, err := h.residentService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resident)
}

// Update handles PUT /penduduk/:id
func (h *ResidentHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req populationapp.UpdateResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resident, err := h.residentService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resident)
}

// Delete handles DELETE /penduduk/:id
func (h *ResidentHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.residentService.Remove(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
