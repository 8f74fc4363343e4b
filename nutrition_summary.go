package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

// getDailySummary returns the day's entries grouped by meal with totals.
// GET /api/nutrition/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailySummary(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	report, err := h.summary.Daily(c, c.GetString("user_id"), date)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// getTrends returns per-day totals and statistics over a named period
// (7d, 14d, 30d, 90d; default 7d) or an explicit start/end range.
// GET /api/nutrition/trends?period=30d&target=2200
// GET /api/nutrition/trends?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) getTrends(c *gin.Context) {
	from, ok := queryDate(c, "start")
	if !ok {
		return
	}
	to, ok := queryDate(c, "end")
	if !ok {
		return
	}
	target, ok := queryInt(c, "target")
	if !ok {
		return
	}

	report, err := h.summary.Trends(c, c.GetString("user_id"), nutrition.TrendQuery{
		Period:         c.Query("period"),
		From:           from,
		To:             to,
		TargetCalories: target,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// getWeeklySummary reports the Monday-to-Sunday week containing week_start.
// GET /api/nutrition/weekly?week_start=YYYY-MM-DD (defaults to the current week).
func (h *Handler) getWeeklySummary(c *gin.Context) {
	weekOf, ok := queryDate(c, "week_start")
	if !ok {
		return
	}
	target, ok := queryInt(c, "target")
	if !ok {
		return
	}
	report, err := h.summary.Weekly(c, c.GetString("user_id"), weekOf, target)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// getMonthlySummary reports every day of a calendar month.
// GET /api/nutrition/monthly?month=YYYY-MM (defaults to the current month).
func (h *Handler) getMonthlySummary(c *gin.Context) {
	month := nutrition.DateOf(h.now()).Time
	if s := c.Query("month"); s != "" {
		t, err := time.Parse("2006-01", s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid month, expected YYYY-MM")
			return
		}
		month = t
	}
	target, ok := queryInt(c, "target")
	if !ok {
		return
	}
	report, err := h.summary.Monthly(c, c.GetString("user_id"), month.Year(), month.Month(), target)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
