package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/prescriptions-api/internal/app/admin"
	"github.com/clinicore/prescriptions-api/internal/app/directory"
	"github.com/clinicore/prescriptions-api/internal/transport/http/dto"
)

type adminHandlers struct {
	admin     admin.Service
	directory directory.Service
}

func (h *adminHandlers) listUsers(c *gin.Context) {
	var q dto.ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	users, meta, err := h.admin.ListUsers(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "meta": meta})
}

func (h *adminHandlers) listDoctors(c *gin.Context) {
	var q dto.ListDoctorsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doctors, meta, err := h.directory.ListDoctors(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doctors, "meta": meta})
}

func (h *adminHandlers) listPatients(c *gin.Context) {
	var q dto.ListPatientsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patients, meta, err := h.directory.ListPatients(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": patients, "meta": meta})
}

func (h *adminHandlers) metrics(c *gin.Context) {
	var q dto.MetricsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.admin.Metrics(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
