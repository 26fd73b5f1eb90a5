package handler

import (
	householdapp "github.com/Faiz-abdurrachman/SIDESA/internal/application/household"
	"github.com/gin-gonic/gin"
)

// FamilyCardHandler handles /kk endpoints
type FamilyCardHandler struct {
	BaseHandler
	cardService *householdapp.CardService
}

// NewFamilyCardHandler creates a new FamilyCardHandler
func NewFamilyCardHandler(cardService *householdapp.CardService) *FamilyCardHandler {
	return &FamilyCardHandler{cardService: cardService}
}

// List handles GET /kk
func (h *FamilyCardHandler) List(c *gin.Context) {
	var filter householdapp.CardListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if !h.queryUUID(c, "rt_id", &filter.RTID) {
		return
	}

	cards, total, err := h.cardService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, cards, total, filter.Page, filter.PageSize)
}

// GetByID handles GET /kk/:id
func (h *FamilyCardHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	card, err := h.cardService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, card)
}

// Create handles POST /kk
func (h *FamilyCardHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req householdapp.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	card, err := h.cardService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, card)
}

// Update handles PUT /kk/:id
func (h *FamilyCardHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req householdapp.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	card, err := h.cardService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, card)
}

// Archive handles DELETE /kk/:id
func (h *FamilyCardHandler) Archive(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.cardService.Archive(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
