package nutrition_test

import (
	"errors"
	"time"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
	"github.com/thitiph0n/second-brain-sub001/internal/nutrition/memstore"
)

// fixedNow is a Wednesday afternoon.
var fixedNow = time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC)

var today = nutrition.DateOf(fixedNow)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

var errBoom = errors.New("boom")

// clock returns a Clock that reads *at, so tests can advance time.
func clock(at *time.Time) nutrition.Clock {
	return func() time.Time { return *at }
}

func ptr[T any](v T) *T { return &v }

func newStore() *memstore.Store { return memstore.New() }

func fieldNames(err error) []string {
	var v *nutrition.ValidationError
	if !errors.As(err, &v) {
		return nil
	}
	out := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		out = append(out, f.Field)
	}
	return out
}
