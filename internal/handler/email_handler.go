package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeenat-khan28/sports-dbms/internal/service"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
	"github.com/zeenat-khan28/sports-dbms/pkg/response"
)

// EmailHandler exposes bulk email endpoints.
type EmailHandler struct {
	email *service.EmailService
}

// NewEmailHandler constructs EmailHandler.
func NewEmailHandler(email *service.EmailService) *EmailHandler {
	return &EmailHandler{email: email}
}

// Send godoc
// @Summary Send a bulk email to filtered approved students
// @Tags Email
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.SendEmailRequest true "Email payload"
// @Success 200 {object} response.Envelope
// @Router /email/send [post]
func (h *EmailHandler) Send(c *gin.Context) {
	var req service.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	log, err := h.email.Send(c.Request.Context(), actorIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// Logs godoc
// @Summary List bulk email send logs
// @Tags Email
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /email/logs [get]
func (h *EmailHandler) Logs(c *gin.Context) {
	logs, err := h.email.Logs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}
