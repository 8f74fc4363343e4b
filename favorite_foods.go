package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

// listFavoriteFoods returns favorites, most used first.
// GET /api/favorite-foods?category=&limit=&offset=
func (h *Handler) listFavoriteFoods(c *gin.Context) {
	limit, offset, ok := queryPage(c)
	if !ok {
		return
	}
	filter := nutrition.FavoriteFoodFilter{Limit: limit, Offset: offset}
	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		filter.Category = &cat
	}

	favorites, err := h.favorites.List(c, c.GetString("user_id"), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if favorites == nil {
		favorites = []nutrition.FavoriteFood{}
	}
	c.JSON(http.StatusOK, favorites)
}

// POST /api/favorite-foods
func (h *Handler) createFavoriteFood(c *gin.Context) {
	var body nutrition.FavoriteFoodInput
	if !bindJSON(c, &body) {
		return
	}
	fav, err := h.favorites.Create(c, c.GetString("user_id"), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fav)
}

// GET /api/favorite-foods/:id
func (h *Handler) getFavoriteFood(c *gin.Context) {
	fav, err := h.favorites.Get(c, c.GetString("user_id"), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fav)
}

// PATCH /api/favorite-foods/:id
func (h *Handler) updateFavoriteFood(c *gin.Context) {
	var body nutrition.FavoriteFoodPatch
	if !bindJSON(c, &body) {
		return
	}
	fav, err := h.favorites.Update(c, c.GetString("user_id"), c.Param("id"), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fav)
}

// DELETE /api/favorite-foods/:id
func (h *Handler) deleteFavoriteFood(c *gin.Context) {
	removed, err := h.favorites.Delete(c, c.GetString("user_id"), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, removedResponse{Removed: removed})
}

// logFavoriteFood copies a favorite into the food log and bumps its usage.
// POST /api/favorite-foods/:id/log with {"meal_type", "entry_date"?}
func (h *Handler) logFavoriteFood(c *gin.Context) {
	var body nutrition.AddToLogInput
	if !bindJSON(c, &body) {
		return
	}
	logged, err := h.favorites.AddToLog(c, c.GetString("user_id"), c.Param("id"), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, logged)
}
