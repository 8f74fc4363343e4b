package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
	"github.com/thitiph0n/second-brain-sub001/internal/store"
)

// userFinder is the slice of the account store the HTTP layer needs.
type userFinder interface {
	ByUsername(ctx context.Context, username string) (store.User, error)
	ByID(ctx context.Context, id string) (store.User, error)
}

// Handler holds shared dependencies (services, auth settings, AI client) for
// all route handlers.
type Handler struct {
	entries   *nutrition.FoodEntryService
	favorites *nutrition.FavoriteFoodService
	profiles  *nutrition.ProfileService
	summary   *nutrition.SummaryService
	streaks   *nutrition.StreakService
	users     userFinder

	jwtSecret []byte
	jwtTTL    time.Duration

	ai        *resty.Client // OpenAI-compatible API; base URL overridable for tests
	openAIKey string

	log *zap.Logger
	now nutrition.Clock
}

func newHandler(repo nutrition.Store, users userFinder, cfg config, log *zap.Logger, now nutrition.Clock) *Handler {
	return &Handler{
		entries:   nutrition.NewFoodEntryService(repo, now),
		favorites: nutrition.NewFavoriteFoodService(repo, now),
		profiles:  nutrition.NewProfileService(repo, now, log),
		summary:   nutrition.NewSummaryService(repo, now),
		streaks:   nutrition.NewStreakService(repo, now),
		users:     users,
		jwtSecret: []byte(cfg.JWTSecret),
		jwtTTL:    cfg.JWTTTL,
		ai:        newAIClient(cfg.OpenAIBaseURL),
		openAIKey: cfg.OpenAIAPIKey,
		log:       log,
		now:       now,
	}
}

/* ─── Response helpers ────────────────────────────────────────────────── */

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// writeError maps a service error onto a status code. Another user's row is
// reported as 404, never 403, so ids cannot be probed.
// Conflicts without a client-safe reason answer a bare "conflict" so store
// constraint names stay internal.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		verr *nutrition.ValidationError
		cerr *nutrition.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, nutrition.ErrNotFound):
		apiError(c, http.StatusNotFound, "not found")
	case errors.As(err, &cerr):
		apiError(c, http.StatusConflict, cerr.Reason)
	case errors.Is(err, nutrition.ErrConflict):
		h.log.Info("unmapped conflict", zap.String("path", c.FullPath()), zap.Error(err))
		apiError(c, http.StatusConflict, "conflict")
	default:
		_ = c.Error(err)
		h.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("user_id", c.GetString("user_id")),
			zap.Error(err))
		apiError(c, http.StatusInternalServerError, "internal error")
	}
}

/* ─── Query helpers ───────────────────────────────────────────────────── */

// queryDate parses an optional YYYY-MM-DD query parameter. A missing
// parameter yields nil; a malformed one writes a 400 and returns ok=false.
func queryDate(c *gin.Context, name string) (d *nutrition.Date, ok bool) {
	s := c.Query(name)
	if s == "" {
		return nil, true
	}
	parsed, err := nutrition.ParseDate(s)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid "+name+", expected YYYY-MM-DD")
		return nil, false
	}
	return &parsed, true
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string) (n *int, ok bool) {
	s := c.Query(name)
	if s == "" {
		return nil, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid "+name+", expected an integer")
		return nil, false
	}
	return &v, true
}

// queryPage reads limit/offset. Defaults and range checks happen in the
// services so the error carries field details.
func queryPage(c *gin.Context) (limit, offset int, ok bool) {
	l, ok := queryInt(c, "limit")
	if !ok {
		return 0, 0, false
	}
	o, ok := queryInt(c, "offset")
	if !ok {
		return 0, 0, false
	}
	if l != nil {
		limit = *l
	}
	if o != nil {
		offset = *o
	}
	return limit, offset, true
}

// bindJSON decodes the body, writing a 400 on malformed JSON. A value of the
// wrong type is reported against its field like any other validation error.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		verr := &nutrition.ValidationError{Fields: []nutrition.FieldError{
			{Field: typeErr.Field, Rule: "type", Message: typeMessage(typeErr.Type)},
		}}
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
		return false
	}
	apiError(c, http.StatusBadRequest, "invalid request body")
	return false
}

var dateType = reflect.TypeFor[nutrition.Date]()

func typeMessage(t reflect.Type) string {
	if t == dateType {
		return "must be a date in YYYY-MM-DD format"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "must be an integer"
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	case reflect.String:
		return "must be a string"
	case reflect.Bool:
		return "must be a boolean"
	default:
		return "has the wrong type"
	}
}

/* ─── Routes ──────────────────────────────────────────────────────────── */

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.POST("/refresh", h.refresh)

	api.GET("/food-entries", h.listFoodEntries)
	api.POST("/food-entries", h.createFoodEntry)
	api.POST("/food-entries/suggest", h.suggestFoodEntry)
	api.GET("/food-entries/:id", h.getFoodEntry)
	api.PATCH("/food-entries/:id", h.updateFoodEntry)
	api.DELETE("/food-entries/:id", h.deleteFoodEntry)

	api.GET("/favorite-foods", h.listFavoriteFoods)
	api.POST("/favorite-foods", h.createFavoriteFood)
	api.GET("/favorite-foods/:id", h.getFavoriteFood)
	api.PATCH("/favorite-foods/:id", h.updateFavoriteFood)
	api.DELETE("/favorite-foods/:id", h.deleteFavoriteFood)
	api.POST("/favorite-foods/:id/log", h.logFavoriteFood)

	api.GET("/profile", h.getProfile)
	api.POST("/profile", h.createProfile)
	api.PATCH("/profile", h.updateProfile)
	api.GET("/profile/tracking", h.listTracking)
	api.POST("/profile/tracking", h.createTracking)
	api.DELETE("/profile/tracking/:id", h.deleteTracking)

	api.GET("/nutrition/daily", h.getDailySummary)
	api.GET("/nutrition/trends", h.getTrends)
	api.GET("/nutrition/weekly", h.getWeeklySummary)
	api.GET("/nutrition/monthly", h.getMonthlySummary)

	api.GET("/streak", h.getStreak)
	api.POST("/streak/freeze", h.freezeStreak)
}
