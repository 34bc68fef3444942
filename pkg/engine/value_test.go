package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSelection_DeduplicatesInOrder(t *testing.T) {
	got := Selection("Css", "HTML", "Css", "Javascript", "HTML").Items()
	if diff := cmp.Diff([]string{"Css", "HTML", "Javascript"}, got); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestValue_UnmarshalJSON(t *testing.T) {
	var payload struct {
		Text  Value `json:"text"`
		Multi Value `json:"multi"`
	}
	if err := json.Unmarshal([]byte(`{"text":"yes","multi":["HTML","HTML","Css"]}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Text.Multi() || payload.Text.String() != "yes" {
		t.Fatalf("unexpected text value: %#v", payload.Text)
	}
	if !payload.Multi.Equal(Selection("HTML", "Css")) {
		t.Fatalf("unexpected selection: %v", payload.Multi.Items())
	}

	var bad Value
	if err := json.Unmarshal([]byte(`42`), &bad); err == nil {
		t.Fatalf("expected error decoding a number")
	}
	if err := json.Unmarshal([]byte(`[1, 2]`), &bad); err == nil {
		t.Fatalf("expected error decoding non-string items")
	}
}

func TestValue_MarshalEmptySelectionAsArray(t *testing.T) {
	out, err := json.Marshal(Selection())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "[]" {
		t.Fatalf("expected [], got %s", out)
	}
}

func TestValueFrom(t *testing.T) {
	v, err := ValueFrom([]any{"a", "b"})
	if err != nil {
		t.Fatalf("value from: %v", err)
	}
	if !v.Equal(Selection("a", "b")) {
		t.Fatalf("unexpected value %v", v.Items())
	}
	if _, err := ValueFrom(true); err == nil {
		t.Fatalf("expected error for bool")
	}
	if _, err := ValueFrom([]any{"a", 1}); err == nil {
		t.Fatalf("expected error for mixed items")
	}
}
