package handler

import (
	"net/http"

	"armory/internal/apierror"
	"armory/internal/dto"
	"armory/internal/service"

	"github.com/gin-gonic/gin"
)

type EquipmentHandler struct{ svc service.CatalogService }

func NewEquipmentHandler(svc service.CatalogService) *EquipmentHandler {
	return &EquipmentHandler{svc: svc}
}

func (h *EquipmentHandler) List(c *gin.Context) {
	var filter dto.EquipmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return
	}
	resp, err := h.svc.ListEquipment(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EquipmentHandler) Get(c *gin.Context) {
	resp, err := h.svc.GetEquipment(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": resp})
}

func (h *EquipmentHandler) Create(c *gin.Context) {
	var req dto.CreateEquipmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateEquipment(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "item": resp})
}

func (h *EquipmentHandler) Update(c *gin.Context) {
	var req dto.UpdateEquipmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateEquipment(c.Request.Context(), principal(c), c.Param("code"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": resp})
}

func (h *EquipmentHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteEquipment(c.Request.Context(), principal(c), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
