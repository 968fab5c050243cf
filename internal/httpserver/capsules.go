package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	capsulesvc "xoned-commerce/internal/service/capsule"
)

func (h *handler) createCapsule(c *gin.Context) {
	var in capsulesvc.Input
	if !bind(c, &in) {
		return
	}
	capsule, err := h.deps.Capsules.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, capsule)
}

func (h *handler) updateCapsule(c *gin.Context) {
	var in capsulesvc.Input
	if !bind(c, &in) {
		return
	}
	capsule, err := h.deps.Capsules.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, capsule)
}

func (h *handler) deleteCapsule(c *gin.Context) {
	if err := h.deps.Capsules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) duplicateCapsule(c *gin.Context) {
	capsule, err := h.deps.Capsules.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, capsule)
}
