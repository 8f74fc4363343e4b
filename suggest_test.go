package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

// mockOpenAI serves a fixed status and body for every request and records the
// last request it received.
type mockOpenAI struct {
	*httptest.Server
	status int
	body   any
	last   *http.Request
	sent   openAIRequest
}

func newMockOpenAI(t *testing.T) *mockOpenAI {
	t.Helper()
	m := &mockOpenAI{status: http.StatusOK}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.last = r
		_ = json.NewDecoder(r.Body).Decode(&m.sent)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(m.status)
		_ = json.NewEncoder(w).Encode(m.body)
	}))
	t.Cleanup(m.Close)
	return m
}

// reply wraps content in the chat completions response shape
// (choices[0].message.content).
func (m *mockOpenAI) reply(status int, content string) {
	m.status = status
	m.body = map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestSuggest_FoodSuccess(t *testing.T) {
	ai := newMockOpenAI(t)
	s := newTestServer(t, ai.URL)
	ai.reply(http.StatusOK, `{"item_name":"Scrambled Eggs","calories":180,"protein_g":14,"carbs_g":2,"fat_g":12,"confidence":4}`)

	w := s.do(t, http.MethodPost, "/api/food-entries/suggest", alice,
		`{"description":"  2 eggs scrambled ","meal_type":"breakfast"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	draft := decode[nutrition.FoodEntryInput](t, w)
	assert.Equal(t, "Scrambled Eggs", draft.FoodName)
	assert.Equal(t, 180, *draft.Calories)
	assert.Equal(t, 14.0, *draft.ProteinG)
	assert.Equal(t, nutrition.MealBreakfast, draft.MealType)
	assert.Equal(t, nutrition.SourceAI, draft.Source)
	assert.InDelta(t, 0.8, *draft.AIConfidence, 1e-9)
	assert.Equal(t, "2 eggs scrambled", *draft.OriginalDescription)

	require.NotNil(t, ai.last)
	assert.Equal(t, "/v1/chat/completions", ai.last.URL.Path)
	assert.Equal(t, "Bearer test-key", ai.last.Header.Get("Authorization"))
	require.Len(t, ai.sent.Messages, 2)
	assert.Equal(t, "2 eggs scrambled", ai.sent.Messages[1].Content)

	// Nothing is logged until the client posts the draft.
	w = s.do(t, http.MethodGet, "/api/food-entries", alice, "")
	assert.Equal(t, "[]", w.Body.String())
}

func TestSuggest_DraftCanBePosted(t *testing.T) {
	ai := newMockOpenAI(t)
	s := newTestServer(t, ai.URL)
	ai.reply(http.StatusOK, `{"item_name":"Banana","calories":105,"protein_g":1.3,"carbs_g":27,"fat_g":0.4,"confidence":5}`)

	w := s.do(t, http.MethodPost, "/api/food-entries/suggest", alice, `{"description":"a banana","meal_type":"snack"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/food-entries", alice, w.Body.String())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := decode[nutrition.FoodEntry](t, w)
	assert.Equal(t, nutrition.SourceAI, entry.Source)
	require.NotNil(t, entry.AIConfidence)
	assert.Equal(t, 1.0, *entry.AIConfidence)
}

func TestSuggest_Unrecognized(t *testing.T) {
	ai := newMockOpenAI(t)
	s := newTestServer(t, ai.URL)

	for _, content := range []string{
		`{"error":"unrecognized"}`,
		`{"item_name":"","calories":0,"confidence":1}`,
	} {
		ai.reply(http.StatusOK, content)
		w := s.do(t, http.MethodPost, "/api/food-entries/suggest", alice, `{"description":"asdfghjkl","meal_type":"lunch"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, content)
		assert.Equal(t, "unrecognized", decode[errorBody](t, w).Error)
	}
}

func TestSuggest_BadRequest(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"empty description", `{"description":"","meal_type":"lunch"}`, "description"},
		{"blank description", `{"description":"   ","meal_type":"lunch"}`, "description"},
		{"description too long", `{"description":"` + strings.Repeat("a", 501) + `","meal_type":"lunch"}`, "description"},
		{"bad meal type", `{"description":"toast","meal_type":"brunch"}`, "meal_type"},
		{"missing meal type", `{"description":"toast"}`, "meal_type"},
		{"invalid json", `{bad`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/food-entries/suggest", alice, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			if tt.wantField != "" {
				assert.Equal(t, []string{tt.wantField}, decode[errorBody](t, w).fieldNames())
			}
		})
	}
}

func TestSuggest_DescriptionLimitCountsCharacters(t *testing.T) {
	ai := newMockOpenAI(t)
	s := newTestServer(t, ai.URL)
	ai.reply(http.StatusOK, `{"item_name":"Khao Man Gai","calories":600,"protein_g":30,"carbs_g":70,"fat_g":20,"confidence":3}`)

	// 200 characters, 600 bytes.
	thai := strings.Repeat("ข้าว", 50)
	require.Len(t, []rune(thai), 200)
	require.Len(t, thai, 600)

	body, err := json.Marshal(map[string]string{"description": thai, "meal_type": "lunch"})
	require.NoError(t, err)
	w := s.do(t, http.MethodPost, "/api/food-entries/suggest", alice, string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, thai, *decode[nutrition.FoodEntryInput](t, w).OriginalDescription)

	// The draft is accepted as-is by the create endpoint.
	w = s.do(t, http.MethodPost, "/api/food-entries", alice, w.Body.String())
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestSuggest_UpstreamFailures(t *testing.T) {
	ai := newMockOpenAI(t)
	s := newTestServer(t, ai.URL)

	ai.reply(http.StatusInternalServerError, "")
	w := s.do(t, http.MethodPost, "/api/food-entries/suggest", alice, `{"description":"toast","meal_type":"breakfast"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	ai.reply(http.StatusOK, `not json at all`)
	w = s.do(t, http.MethodPost, "/api/food-entries/suggest", alice, `{"description":"toast","meal_type":"breakfast"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	ai.status, ai.body = http.StatusOK, map[string]any{"choices": []any{}}
	w = s.do(t, http.MethodPost, "/api/food-entries/suggest", alice, `{"description":"toast","meal_type":"breakfast"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSuggest_NotConfigured(t *testing.T) {
	ai := newMockOpenAI(t)
	s := newTestServer(t, ai.URL)
	s.h.openAIKey = ""

	w := s.do(t, http.MethodPost, "/api/food-entries/suggest", alice, `{"description":"toast","meal_type":"breakfast"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Nil(t, ai.last, "no request leaves the server without a key")
}

func TestDraftFromSuggestion_ClampsConfidenceAndMacros(t *testing.T) {
	req := suggestRequest{Description: "mystery stew", MealType: nutrition.MealDinner}

	tests := []struct {
		confidence int
		want       float64
	}{
		{0, 0.2},
		{1, 0.2},
		{3, 0.6},
		{5, 1},
		{9, 1},
	}
	for _, tt := range tests {
		draft := draftFromSuggestion(suggestionResponse{ItemName: "Stew", Calories: 400, FatG: -3, Confidence: tt.confidence}, req)
		assert.InDelta(t, tt.want, *draft.AIConfidence, 1e-9, "confidence %d", tt.confidence)
		assert.Equal(t, 0.0, *draft.FatG)
	}
}

func TestDraftFromSuggestion_ClampsUpperBounds(t *testing.T) {
	req := suggestRequest{Description: "whole roast pig", MealType: nutrition.MealDinner}
	draft := draftFromSuggestion(suggestionResponse{
		ItemName:   strings.Repeat("x", 250),
		Calories:   25000,
		ProteinG:   4000,
		CarbsG:     1000.5,
		FatG:       999,
		Confidence: 2,
	}, req)

	assert.Equal(t, 10000, *draft.Calories)
	assert.Equal(t, 1000.0, *draft.ProteinG)
	assert.Equal(t, 1000.0, *draft.CarbsG)
	assert.Equal(t, 999.0, *draft.FatG)
	assert.Len(t, draft.FoodName, 200)
	assert.NoError(t, nutrition.Validate(draft))
}
