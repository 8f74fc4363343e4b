package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getStreak returns the logging streak, frozen days and remaining credits.
// GET /api/streak
func (h *Handler) getStreak(c *gin.Context) {
	streak, err := h.streaks.Current(c, c.GetString("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, streak)
}

// freezeStreak spends a freeze credit to cover a missed day.
// POST /api/streak/freeze with {"date": "YYYY-MM-DD"}
func (h *Handler) freezeStreak(c *gin.Context) {
	var body freezeRequest
	if !bindJSON(c, &body) {
		return
	}
	streak, err := h.streaks.Freeze(c, c.GetString("user_id"), body.Date)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, streak)
}
