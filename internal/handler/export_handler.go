package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/zeenat-khan28/sports-dbms/internal/service"
	"github.com/zeenat-khan28/sports-dbms/pkg/response"
)

// ExportHandler exposes register export endpoints.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ApprovedStudents godoc
// @Summary Export the approved-student register
// @Tags Export
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string true "csv or pdf"
// @Param branch query string false "Filter by branch"
// @Success 200 {file} binary
// @Router /export/approved [get]
func (h *ExportHandler) ApprovedStudents(c *gin.Context) {
	result, err := h.exports.ApprovedStudents(c.Request.Context(), c.DefaultQuery("format", "csv"), c.Query("branch"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(200, result.ContentType, result.Content)
}

// EventParticipants godoc
// @Summary Export the selected participants of an event with attendance
// @Tags Export
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Router /export/events/{id}/participants [get]
func (h *ExportHandler) EventParticipants(c *gin.Context) {
	id, err := eventID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.EventParticipants(c.Request.Context(), id, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(200, result.ContentType, result.Content)
}
