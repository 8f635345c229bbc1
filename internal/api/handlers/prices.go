package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sellwatch/internal/models"
	"sellwatch/internal/ranking"
	"sellwatch/internal/repository"
	"sellwatch/internal/timeutil"
)

// PriceHandler handles price and ranking requests
type PriceHandler struct {
	prices   repository.PriceIntervalRepository
	ranking  *ranking.Service
	location *time.Location
	now      func() time.Time
	logger   zerolog.Logger
}

// NewPriceHandler creates a new PriceHandler. Dates default to today in loc.
func NewPriceHandler(prices repository.PriceIntervalRepository, rank *ranking.Service, loc *time.Location, logger zerolog.Logger) *PriceHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PriceHandler{
		prices:   prices,
		ranking:  rank,
		location: loc,
		now:      time.Now,
		logger:   logger.With().Str("handler", "prices").Logger(),
	}
}

// GetPrices godoc
// @Summary Get the prices of a day
// @Description Returns every interval of the date ordered by start time. When storage is unavailable an empty list is returned with stale set.
// @Tags prices
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} models.PricesResponse
// @Failure 400 {object} models.ErrorResponse "Invalid date format"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Router /prices/{date} [get]
func (h *PriceHandler) GetPrices(c *gin.Context) {
	date := c.Param("date")
	if err := timeutil.ValidateDate(date); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	records, err := h.prices.ListByDate(c.Request.Context(), date)
	if err != nil {
		h.logger.Error().Err(err).Str("date", date).Msg("failed to read prices, serving stale placeholder")
		c.JSON(http.StatusOK, models.PricesResponse{
			Date:    date,
			Records: []models.PriceInterval{},
			Stale:   true,
		})
		return
	}

	c.JSON(http.StatusOK, models.PricesResponse{
		Date:    date,
		Count:   len(records),
		Records: records,
	})
}

// ListDates godoc
// @Summary List dates with prices
// @Description Returns the most recent dates that have stored prices, newest first
// @Tags prices
// @Produce json
// @Param limit query int false "Maximum number of dates" default(14)
// @Success 200 {object} models.PriceDatesResponse
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal Server Error"
// @Router /prices/dates [get]
func (h *PriceHandler) ListDates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	dates, err := h.prices.ListDates(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list price dates")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to fetch dates"})
		return
	}

	c.JSON(http.StatusOK, models.PriceDatesResponse{Dates: dates})
}

// BestIntervals godoc
// @Summary Get the highest priced intervals
// @Description Returns the top intervals of a day by price, ties ordered by start time
// @Tags prices
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today in the market time zone"
// @Param limit query int false "Number of intervals (max 96)" default(5)
// @Success 200 {object} models.BestIntervalsResponse
// @Failure 400 {object} models.ErrorResponse "Invalid date format"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal Server Error"
// @Router /best-intervals [get]
func (h *PriceHandler) BestIntervals(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = timeutil.FormatDate(h.now().In(h.location))
	}
	if err := timeutil.ValidateDate(date); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	limit := ranking.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "limit must be an integer"})
			return
		}
		limit = n
	}

	intervals, err := h.ranking.Top(c.Request.Context(), date, ranking.ClampLimit(limit))
	if err != nil {
		h.logger.Error().Err(err).Str("date", date).Msg("failed to rank intervals")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to fetch best intervals"})
		return
	}

	c.JSON(http.StatusOK, models.BestIntervalsResponse{
		Date:      date,
		Intervals: intervals,
	})
}
