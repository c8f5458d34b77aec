package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/prescriptions-api/internal/app/prescriptions"
	"github.com/clinicore/prescriptions-api/internal/transport/http/dto"
	"github.com/clinicore/prescriptions-api/internal/transport/http/middleware"
)

type prescriptionHandlers struct {
	prescriptions prescriptions.Service
}

func (h *prescriptionHandlers) create(c *gin.Context) {
	actor, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	var body dto.CreatePrescriptionDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.prescriptions.Create(c.Request.Context(), actor, body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *prescriptionHandlers) list(c *gin.Context) {
	actor, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	var q dto.ListPrescriptionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, meta, err := h.prescriptions.List(c.Request.Context(), actor, q)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "meta": meta})
}

func (h *prescriptionHandlers) get(c *gin.Context) {
	actor, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a uuid"})
		return
	}

	p, err := h.prescriptions.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *prescriptionHandlers) listMine(c *gin.Context) {
	actor, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, meta, err := h.prescriptions.ListMine(c.Request.Context(), actor, q.Page, q.Limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "meta": meta})
}

func (h *prescriptionHandlers) consume(c *gin.Context) {
	actor, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a uuid"})
		return
	}

	p, err := h.prescriptions.Consume(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
