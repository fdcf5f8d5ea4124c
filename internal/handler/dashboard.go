package handler

import (
	"net/http"

	"armory/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Admin(c *gin.Context) {
	resp, err := h.svc.Admin(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Base serves the per-base dashboard. ?base= picks the base; omitted, it
// defaults to the caller's own base.
func (h *DashboardHandler) Base(c *gin.Context) {
	resp, err := h.svc.Base(c.Request.Context(), principal(c), c.Query("base"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
