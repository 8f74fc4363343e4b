package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

// listFoodEntries returns the user's entries, newest first.
// GET /api/food-entries?start=&end=&meal_type=&limit=&offset=
func (h *Handler) listFoodEntries(c *gin.Context) {
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
	filter := nutrition.FoodEntryFilter{From: from, To: to, Limit: limit, Offset: offset}
	if m := c.Query("meal_type"); m != "" {
		meal := nutrition.MealType(m)
		filter.MealType = &meal
	}

	entries, err := h.entries.List(c, c.GetString("user_id"), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	// Ensure entries is an empty array (not null) in JSON
	if entries == nil {
		entries = []nutrition.FoodEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// createFoodEntry logs a food item. entry_date defaults to today.
// POST /api/food-entries
func (h *Handler) createFoodEntry(c *gin.Context) {
	var body nutrition.FoodEntryInput
	if !bindJSON(c, &body) {
		return
	}
	entry, err := h.entries.Create(c, c.GetString("user_id"), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GET /api/food-entries/:id
func (h *Handler) getFoodEntry(c *gin.Context) {
	entry, err := h.entries.Get(c, c.GetString("user_id"), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// updateFoodEntry applies a partial update; omitted fields keep their value.
// PATCH /api/food-entries/:id
func (h *Handler) updateFoodEntry(c *gin.Context) {
	var body nutrition.FoodEntryPatch
	if !bindJSON(c, &body) {
		return
	}
	entry, err := h.entries.Update(c, c.GetString("user_id"), c.Param("id"), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// deleteFoodEntry removes an entry. A missing id answers {"removed": false}.
// DELETE /api/food-entries/:id
func (h *Handler) deleteFoodEntry(c *gin.Context) {
	removed, err := h.entries.Delete(c, c.GetString("user_id"), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, removedResponse{Removed: removed})
}
