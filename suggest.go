package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

/* ─── OpenAI prompt ──────────────────────────────────────────────────── */

const foodSystemPrompt = `You are a nutrition assistant. Parse the food description and return a JSON object with:
- "item_name" (string, cleaned up title case)
- "calories" (integer, total for the full quantity)
- "protein_g" (number, total for the full quantity)
- "carbs_g" (number, total for the full quantity)
- "fat_g" (number, total for the full quantity)
- "confidence" (integer 1-5: 5=exact known nutritional data, 4=very close estimate, 3=reasonable estimate, 2=rough guess, 1=very uncertain)

Always provide your best estimate, even for unfamiliar or vague items. Use your knowledge of similar foods to approximate. Only return {"error": "unrecognized"} if the input is not food at all (e.g. random characters, non-food objects).
Return only valid JSON, no explanation.`

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

var errNoAPIKey = errors.New("OPENAI_API_KEY not set")

// openAIMessage is a single message in the OpenAI chat completions request.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIRequest is the request body for the OpenAI chat completions API.
type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []openAIMessage   `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func newAIClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json")
}

// callOpenAI sends a chat completions request and returns the raw content
// string from the first choice.
func (h *Handler) callOpenAI(ctx context.Context, messages []openAIMessage) (string, error) {
	if h.openAIKey == "" {
		return "", errNoAPIKey
	}

	var result openAIResponse
	resp, err := h.ai.R().
		SetContext(ctx).
		SetAuthToken(h.openAIKey).
		SetBody(openAIRequest{
			Model:          "gpt-4o-mini",
			Messages:       messages,
			Temperature:    0,
			ResponseFormat: map[string]string{"type": "json_object"},
		}).
		SetResult(&result).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(result.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return result.Choices[0].Message.Content, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// suggestFoodEntry turns a free-text description into a draft food entry.
// Nothing is stored; the client reviews the draft and posts it to
// /api/food-entries.
// POST /api/food-entries/suggest
func (h *Handler) suggestFoodEntry(c *gin.Context) {
	var req suggestRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if err := nutrition.Validate(req); err != nil {
		h.writeError(c, err)
		return
	}

	content, err := h.callOpenAI(c.Request.Context(), []openAIMessage{
		{Role: "system", Content: foodSystemPrompt},
		{Role: "user", Content: req.Description},
	})
	if errors.Is(err, errNoAPIKey) {
		apiError(c, http.StatusServiceUnavailable, "ai estimates are not configured")
		return
	}
	if err != nil {
		h.log.Warn("openai request failed", zap.Error(err))
		apiError(c, http.StatusBadGateway, "openai request failed")
		return
	}

	// Check if the AI returned an "unrecognized" error
	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(content), &errorResp); err != nil {
		h.log.Warn("unparseable openai content", zap.Error(err))
		apiError(c, http.StatusBadGateway, "openai request failed")
		return
	}
	if errorResp.Error != "" {
		apiError(c, http.StatusUnprocessableEntity, "unrecognized")
		return
	}

	var suggestion suggestionResponse
	if err := json.Unmarshal([]byte(content), &suggestion); err != nil {
		h.log.Warn("unparseable suggestion", zap.Error(err))
		apiError(c, http.StatusBadGateway, "openai request failed")
		return
	}
	// A usable estimate needs at least a name and some calories.
	if strings.TrimSpace(suggestion.ItemName) == "" || suggestion.Calories <= 0 {
		apiError(c, http.StatusUnprocessableEntity, "unrecognized")
		return
	}

	c.JSON(http.StatusOK, draftFromSuggestion(suggestion, req))
}

// Bounds a draft must fit so it validates when posted back.
const (
	maxDraftCalories = 10000
	maxDraftMacroG   = 1000
	maxDraftNameLen  = 200
)

// draftFromSuggestion maps the model's 1-5 confidence onto ai_confidence in
// [0.2, 1] and clamps calories and macros into the range food entries accept.
func draftFromSuggestion(s suggestionResponse, req suggestRequest) nutrition.FoodEntryInput {
	confidence := float64(min(max(s.Confidence, 1), 5)) / 5
	calories := min(max(s.Calories, 0), maxDraftCalories)
	protein := min(max(s.ProteinG, 0), maxDraftMacroG)
	carbs := min(max(s.CarbsG, 0), maxDraftMacroG)
	fat := min(max(s.FatG, 0), maxDraftMacroG)
	name := []rune(strings.TrimSpace(s.ItemName))
	if len(name) > maxDraftNameLen {
		name = name[:maxDraftNameLen]
	}
	description := req.Description
	return nutrition.FoodEntryInput{
		FoodName:            strings.TrimSpace(string(name)),
		Calories:            &calories,
		ProteinG:            &protein,
		CarbsG:              &carbs,
		FatG:                &fat,
		MealType:            req.MealType,
		Source:              nutrition.SourceAI,
		AIConfidence:        &confidence,
		OriginalDescription: &description,
	}
}
