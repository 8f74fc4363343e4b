package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

// getProfile returns the profile with its latest weigh-in, recent history and
// the BMR/TDEE/macro targets derived from them.
// GET /api/profile
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.profiles.GetProfile(c, c.GetString("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// createProfile stores the user's body profile. A second call answers 409.
// POST /api/profile
func (h *Handler) createProfile(c *gin.Context) {
	var body nutrition.UserProfileInput
	if !bindJSON(c, &body) {
		return
	}
	p, err := h.profiles.CreateProfile(c, c.GetString("user_id"), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// updateProfile writes only the fields present in the body.
// PATCH /api/profile
func (h *Handler) updateProfile(c *gin.Context) {
	var body nutrition.UserProfilePatch
	if !bindJSON(c, &body) {
		return
	}
	p, err := h.profiles.UpdateProfile(c, c.GetString("user_id"), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// listTracking returns body measurements, newest first.
// GET /api/profile/tracking?start=&end=&limit=&offset=
func (h *Handler) listTracking(c *gin.Context) {
	from, ok := queryDate(c, "start")
	if !ok {
		return
	}
	to, ok := queryDate(c, "end")
	if !ok {
		return
	}
	limit, offset, ok := queryPage(c)
	if !ok {
		return
	}

	rows, err := h.profiles.ListTracking(c, c.GetString("user_id"),
		nutrition.TrackingFilter{From: from, To: to, Limit: limit, Offset: offset})
	if err != nil {
		h.writeError(c, err)
		return
	}
	if rows == nil {
		rows = []nutrition.ProfileTracking{}
	}
	c.JSON(http.StatusOK, rows)
}

// createTracking records a measurement. When it carries a weight and a
// profile exists, the row snapshots BMR and TDEE as of today.
// POST /api/profile/tracking
func (h *Handler) createTracking(c *gin.Context) {
	var body nutrition.TrackingInput
	if !bindJSON(c, &body) {
		return
	}
	row, err := h.profiles.CreateTracking(c, c.GetString("user_id"), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

// DELETE /api/profile/tracking/:id
func (h *Handler) deleteTracking(c *gin.Context) {
	removed, err := h.profiles.DeleteTracking(c, c.GetString("user_id"), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, removedResponse{Removed: removed})
}
