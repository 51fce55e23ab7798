package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
	"github.com/zeenat-khan28/sports-dbms/internal/service"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
	"github.com/zeenat-khan28/sports-dbms/pkg/response"
)

// ParticipationHandler exposes event participation endpoints.
type ParticipationHandler struct {
	participation *service.ParticipationService
}

// NewParticipationHandler constructs ParticipationHandler.
func NewParticipationHandler(participation *service.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{participation: participation}
}

// Create godoc
// @Summary Request event participation
// @Tags Participation
// @Accept json
// @Produce json
// @Param payload body service.CreateParticipationRequest true "Participation payload"
// @Success 201 {object} response.Envelope
// @Router /participation [post]
func (h *ParticipationHandler) Create(c *gin.Context) {
	var req service.CreateParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	p, err := h.participation.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

// List godoc
// @Summary List participation requests
// @Tags Participation
// @Produce json
// @Security BearerAuth
// @Param event_id query int false "Filter by event"
// @Param usn query string false "Filter by USN"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /participation [get]
func (h *ParticipationHandler) List(c *gin.Context) {
	var filter models.ParticipationFilter
	if eventID := c.Query("event_id"); eventID != "" {
		if v, err := strconv.ParseInt(eventID, 10, 64); err == nil {
			filter.EventID = v
		}
	}
	filter.USN = c.Query("usn")
	if status := c.Query("status"); status != "" {
		s := models.ParticipationStatus(status)
		if !s.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status "+status))
			return
		}
		filter.Status = &s
	}

	requests, err := h.participation.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Decide godoc
// @Summary Decide a participation request
// @Tags Participation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Participation ID"
// @Param payload body service.DecideParticipationRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /participation/{id}/decide [post]
func (h *ParticipationHandler) Decide(c *gin.Context) {
	var req service.DecideParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	p, err := h.participation.Decide(c.Request.Context(), c.Param("id"), actorFromContext(c), actorIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, p, nil)
}
