package main

import (
	"time"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

// Domain types live in internal/nutrition; these are the request and
// response shapes that only exist at the HTTP boundary.

// loginRequest is the request body for POST /api/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenResponse is returned by login and refresh.
type tokenResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// removedResponse reports whether a DELETE removed a row. Deleting a missing
// row is not an error, so both outcomes answer 200.
type removedResponse struct {
	Removed bool `json:"removed"`
}

// freezeRequest is the request body for POST /api/streak/freeze.
type freezeRequest struct {
	Date nutrition.Date `json:"date"`
}

// suggestRequest is the request body for POST /api/food-entries/suggest.
type suggestRequest struct {
	Description string             `json:"description" validate:"required,max=500"`
	MealType    nutrition.MealType `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
}

// suggestionResponse is the structured nutrition data returned by the AI.
// Confidence is 1-5 indicating how accurate the estimate is.
type suggestionResponse struct {
	ItemName   string  `json:"item_name"`
	Calories   int     `json:"calories"`
	ProteinG   float64 `json:"protein_g"`
	CarbsG     float64 `json:"carbs_g"`
	FatG       float64 `json:"fat_g"`
	Confidence int     `json:"confidence"`
}
