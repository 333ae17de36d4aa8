package deepeq_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/byu-oit-appdev/swagger-enforcer/internal/deepeq"
)

func TestEqual_NumericRepresentations(t *testing.T) {
	if !deepeq.Equal(5, 5.0) {
		t.Fatalf("expected int 5 == float 5.0")
	}
	if !deepeq.Equal(json.Number("5"), int64(5)) {
		t.Fatalf("expected json.Number 5 == int64 5")
	}
	if deepeq.Equal(json.Number("5.5"), 5) {
		t.Fatalf("expected 5.5 != 5")
	}
}

func TestEqual_NaN(t *testing.T) {
	if !deepeq.Equal(math.NaN(), math.NaN()) {
		t.Fatalf("expected NaN == NaN")
	}
}

func TestEqual_Nested(t *testing.T) {
	a := map[string]any{"k": []any{1, "x", map[string]any{"n": json.Number("2")}}}
	b := map[string]any{"k": []any{1.0, "x", map[string]any{"n": 2}}}
	if !deepeq.Equal(a, b) {
		t.Fatalf("expected nested structures to be equal")
	}
	b["k"].([]any)[1] = "y"
	if deepeq.Equal(a, b) {
		t.Fatalf("expected inequality after mutation")
	}
}

func TestEqual_TimeAndBytes(t *testing.T) {
	utc := time.Date(2000, 2, 29, 12, 0, 0, 0, time.UTC)
	other := utc.In(time.FixedZone("x", 3600))
	if !deepeq.Equal(utc, other) {
		t.Fatalf("expected same instant in different zones to be equal")
	}
	if !deepeq.Equal([]byte{1, 2}, []byte{1, 2}) {
		t.Fatalf("expected byte slices to compare by content")
	}
}

func TestEqual_NilAndMismatch(t *testing.T) {
	if !deepeq.Equal(nil, nil) {
		t.Fatalf("expected nil == nil")
	}
	if deepeq.Equal(nil, 0) {
		t.Fatalf("expected nil != 0")
	}
	if deepeq.Equal([]any{1}, map[string]any{"0": 1}) {
		t.Fatalf("expected array != object")
	}
}
