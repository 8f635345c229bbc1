package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sellwatch/internal/auth"
	"sellwatch/internal/models"
	"sellwatch/internal/repository"
	"sellwatch/internal/timeutil"
)

// AlertHandler handles alert subscription requests
type AlertHandler struct {
	alerts repository.AlertRepository
	tokens *auth.Service
	logger zerolog.Logger
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alerts repository.AlertRepository, tokens *auth.Service, logger zerolog.Logger) *AlertHandler {
	return &AlertHandler{
		alerts: alerts,
		tokens: tokens,
		logger: logger.With().Str("handler", "alerts").Logger(),
	}
}

// CreateAlert godoc
// @Summary Create an alert subscription
// @Description Registers a price alert delivered by email, push or both. When push is enabled without a token a pending placeholder is stored.
// @Tags alerts
// @Accept json
// @Produce json
// @Param alert body models.CreateAlertRequest true "Alert subscription"
// @Success 201 {object} models.CreateAlertResponse
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal Server Error"
// @Router /alerts [post]
func (h *AlertHandler) CreateAlert(c *gin.Context) {
	var req models.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: describeBindError(err)})
		return
	}

	if req.Email == nil && !req.EnablePush {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Either email or push notifications must be enabled"})
		return
	}

	from, to := req.TimeWindowFrom, req.TimeWindowTo
	if from != nil && to != nil {
		lo, _ := timeutil.ToMinutes(*from)
		hi, _ := timeutil.ToMinutes(*to)
		if lo > hi {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "timeWindowFrom must not be after timeWindowTo"})
			return
		}
	}

	alert := &models.AlertSubscription{
		Email:          req.Email,
		MinPrice:       *req.MinPrice,
		TimeWindowFrom: from,
		TimeWindowTo:   to,
	}
	if req.EnablePush {
		token := models.PendingPushToken
		if req.PushToken != nil {
			token = *req.PushToken
		}
		alert.PushToken = &token
	}

	if err := h.alerts.Create(c.Request.Context(), alert); err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error().Err(err).Msg("failed to create alert")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create alert"})
		return
	}

	h.logger.Info().
		Str("alert_id", alert.ID.String()).
		Bool("email", alert.HasEmail()).
		Bool("push", alert.HasPush()).
		Msg("alert created")

	c.JSON(http.StatusCreated, models.CreateAlertResponse{
		Success: true,
		Alert:   models.NewAlertResponse(alert),
	})
}

// ListAlerts godoc
// @Summary List active alert subscriptions
// @Description Returns the active subscriptions, newest first, with push tokens masked
// @Tags alerts
// @Produce json
// @Success 200 {object} models.ListAlertsResponse
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal Server Error"
// @Router /alerts [get]
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.alerts.ListActive(c.Request.Context(), repository.AlertFilter{NewestFirst: true})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list alerts")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to fetch alerts"})
		return
	}

	resp := models.ListAlertsResponse{
		Count:  len(alerts),
		Alerts: make([]models.AlertResponse, 0, len(alerts)),
	}
	for i := range alerts {
		resp.Alerts = append(resp.Alerts, models.NewAlertResponse(&alerts[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteAlert godoc
// @Summary Deactivate an alert subscription
// @Description Soft deletes a subscription. Deactivating an inactive subscription succeeds.
// @Tags alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse "Invalid alert ID"
// @Failure 404 {object} models.ErrorResponse "Alert not found"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal Server Error"
// @Router /alerts/{id} [delete]
func (h *AlertHandler) DeleteAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid alert ID"})
		return
	}
	h.deactivate(c, id)
}

// Unsubscribe godoc
// @Summary Unsubscribe through an email link
// @Description Deactivates the subscription named by a signed unsubscribe token
// @Tags alerts
// @Produce json
// @Param token query string true "Unsubscribe token"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse "Invalid or expired token"
// @Failure 404 {object} models.ErrorResponse "Alert not found"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 503 {object} models.ErrorResponse "Unsubscribe links disabled"
// @Router /alerts/unsubscribe [get]
func (h *AlertHandler) Unsubscribe(c *gin.Context) {
	if h.tokens == nil || !h.tokens.Enabled() {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "unsubscribe links are disabled"})
		return
	}

	id, err := h.tokens.ValidateToken(c.Query("token"))
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unsubscribe link has expired"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid unsubscribe link"})
		return
	}
	h.deactivate(c, id)
}

func (h *AlertHandler) deactivate(c *gin.Context, id uuid.UUID) {
	changed, err := h.alerts.Deactivate(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Alert not found"})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("alert_id", id.String()).Msg("failed to deactivate alert")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to deactivate alert"})
		return
	}

	message := "Alert deactivated"
	if !changed {
		message = "Alert already inactive"
	}
	h.logger.Info().Str("alert_id", id.String()).Bool("changed", changed).Msg("alert deactivated")
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: message})
}
