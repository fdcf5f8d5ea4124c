package handler

import (
	"net/http"

	"armory/internal/apierror"
	"armory/internal/dto"
	"armory/internal/service"

	"github.com/gin-gonic/gin"
)

type TransfersHandler struct{ svc service.TransferService }

func NewTransfersHandler(svc service.TransferService) *TransfersHandler {
	return &TransfersHandler{svc: svc}
}

func (h *TransfersHandler) CreateRequest(c *gin.Context) {
	var req dto.CreateTransferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateRequest(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "item": resp})
}

func (h *TransfersHandler) Approve(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Approve(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": resp})
}

// Claim binds an optional body: admins may name the supplier base, everyone
// else claims for their own base and can send an empty object.
func (h *TransfersHandler) Claim(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ClaimTransferRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
			return
		}
	}
	resp, err := h.svc.Claim(c.Request.Context(), principal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": resp})
}

func (h *TransfersHandler) Send(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Send(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": resp})
}

func (h *TransfersHandler) Receive(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Receive(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": resp})
}

func (h *TransfersHandler) ListOpen(c *gin.Context) {
	resp, err := h.svc.ListOpen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransfersHandler) List(c *gin.Context) {
	var filter dto.TransferFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransfersHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": resp})
}

func (h *TransfersHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
