package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sellwatch/internal/models"
	"sellwatch/internal/timeutil"
)

// Ingester runs the price ingestion job
type Ingester interface {
	Run(ctx context.Context, dates []string) []models.IngestResult
}

// Evaluator runs the alert evaluation job
type Evaluator interface {
	Run(ctx context.Context, dates []string) ([]models.EvaluateResult, error)
}

// JobHandler exposes the scheduled jobs for external cron triggers
type JobHandler struct {
	ingester  Ingester
	evaluator Evaluator
	location  *time.Location
	now       func() time.Time
	logger    zerolog.Logger
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(ingester Ingester, evaluator Evaluator, loc *time.Location, logger zerolog.Logger) *JobHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &JobHandler{
		ingester:  ingester,
		evaluator: evaluator,
		location:  loc,
		now:       time.Now,
		logger:    logger.With().Str("handler", "jobs").Logger(),
	}
}

// dates returns the single date query parameter, or today and tomorrow
func (h *JobHandler) dates(c *gin.Context) ([]string, bool) {
	if date := c.Query("date"); date != "" {
		if err := timeutil.ValidateDate(date); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid date format. Use YYYY-MM-DD"})
			return nil, false
		}
		return []string{date}, true
	}
	return timeutil.UpcomingDates(h.now(), h.location), true
}

// Ingest godoc
// @Summary Fetch and store prices
// @Description Ingests today and tomorrow in the market time zone, or a single date. Per date failures are reported in the results.
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param date query string false "Single date to ingest (YYYY-MM-DD)"
// @Success 200 {object} models.IngestResponse
// @Failure 400 {object} models.ErrorResponse "Invalid date format"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Router /ingest [post]
func (h *JobHandler) Ingest(c *gin.Context) {
	dates, ok := h.dates(c)
	if !ok {
		return
	}

	results := h.ingester.Run(c.Request.Context(), dates)

	c.JSON(http.StatusOK, models.IngestResponse{
		Success:   true,
		Timestamp: time.Now().UTC(),
		Results:   results,
	})
}

// Evaluate godoc
// @Summary Evaluate alerts and send notifications
// @Description Matches active subscriptions against today and tomorrow, or a single date, and delivers notifications
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param date query string false "Single date to evaluate (YYYY-MM-DD)"
// @Success 200 {object} models.EvaluateResponse
// @Failure 400 {object} models.ErrorResponse "Invalid date format"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Subscriptions could not be loaded"
// @Router /alerts/evaluate [post]
func (h *JobHandler) Evaluate(c *gin.Context) {
	dates, ok := h.dates(c)
	if !ok {
		return
	}

	results, err := h.evaluator.Run(c.Request.Context(), dates)
	if err != nil {
		h.logger.Error().Err(err).Msg("alert evaluation failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.EvaluateResponse{
		Success:   true,
		Timestamp: time.Now().UTC(),
		Results:   results,
	})
}
