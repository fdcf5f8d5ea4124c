package handler

import (
	"net/http"

	"armory/internal/apierror"
	"armory/internal/dto"
	"armory/internal/service"

	"github.com/gin-gonic/gin"
)

type ExpendituresHandler struct{ svc service.ExpenditureService }

func NewExpendituresHandler(svc service.ExpenditureService) *ExpendituresHandler {
	return &ExpendituresHandler{svc: svc}
}

func (h *ExpendituresHandler) Create(c *gin.Context) {
	var req dto.CreateExpenditureRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Record(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "item": resp})
}

func (h *ExpendituresHandler) List(c *gin.Context) {
	var filter dto.ExpenditureFilter
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

func (h *ExpendituresHandler) Get(c *gin.Context) {
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

func (h *ExpendituresHandler) Delete(c *gin.Context) {
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
