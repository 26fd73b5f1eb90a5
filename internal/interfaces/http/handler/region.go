package handler

import (
	regionapp "github.com/Faiz-abdurrachman/SIDESA/internal/application/region"
	"github.com/gin-gonic/gin"
)

// RegionHandler handles /rw and /rt endpoints
type RegionHandler struct {
	BaseHandler
	regionService *regionapp.Service
}

// NewRegionHandler creates a new RegionHandler
func NewRegionHandler(regionService *regionapp.Service) *RegionHandler {
	return &RegionHandler{regionService: regionService}
}

// ListRWs handles GET /rw
func (h *RegionHandler) ListRWs(c *gin.Context) {
	var filter regionapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	rws, total, err := h.regionService.ListRWs(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rws, total, filter.Page, filter.PageSize)
}

// GetRW handles GET /rw/:id
func (h *RegionHandler) GetRW(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	rw, err := h.regionService.GetRW(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rw)
}

// CreateRW handles POST /rw
func (h *RegionHandler) CreateRW(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req regionapp.CreateRWRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	rw, err := h.regionService.CreateRW(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rw)
}

// UpdateRW handles PUT /rw/:id
func (h *RegionHandler) UpdateRW(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req regionapp.UpdateRWRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	rw, err := h.regionService.UpdateRW(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rw)
}

// DeleteRW handles DELETE /rw/:id
func (h *RegionHandler) DeleteRW(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.regionService.RemoveRW(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListRTs handles GET /rt, optionally narrowed by ?rw_id=
func (h *RegionHandler) ListRTs(c *gin.Context) {
	var filter regionapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if !h.queryUUID(c, "rw_id", &filter.RWID) {
		return
	}

	rts, total, err := h.regionService.ListRTs(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rts, total, filter.Page, filter.PageSize)
}

// GetRT handles GET /rt/:id
func (h *RegionHandler) GetRT(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	rt, err := h.regionService.GetRT(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rt)
}

// CreateRT handles POST /rt
func (h *RegionHandler) CreateRT(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req regionapp.CreateRTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	rt, err := h.regionService.CreateRT(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rt)
}

// UpdateRT handles PUT /rt/:id
func (h *RegionHandler) UpdateRT(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req regionapp.UpdateRTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	rt, err := h.regionService.UpdateRT(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rt)
}

// DeleteRT handles DELETE /rt/:id
func (h *RegionHandler) DeleteRT(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.regionService.RemoveRT(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
