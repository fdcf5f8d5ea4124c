package handler

import (
	"net/http"

	"armory/internal/dto"
	"armory/internal/service"

	"github.com/gin-gonic/gin"
)

type BasesHandler struct{ svc service.CatalogService }

func NewBasesHandler(svc service.CatalogService) *BasesHandler {
	return &BasesHandler{svc: svc}
}

func (h *BasesHandler) List(c *gin.Context) {
	resp, err := h.svc.ListBases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BasesHandler) Get(c *gin.Context) {
	resp, err := h.svc.GetBase(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": resp})
}

func (h *BasesHandler) Create(c *gin.Context) {
	var req dto.CreateBaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateBase(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "item": resp})
}

func (h *BasesHandler) Update(c *gin.Context) {
	var req dto.UpdateBaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateBase(c.Request.Context(), principal(c), c.Param("code"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": resp})
}

func (h *BasesHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteBase(c.Request.Context(), principal(c), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
