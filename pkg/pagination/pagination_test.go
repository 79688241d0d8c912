package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
	if got := NormalizeLimit(-5); got != DefaultLimit {
		t.Fatalf("expected default limit for negative input, got %d", got)
	}
	if got := NormalizeLimit(MaxLimit + 50); got != MaxLimit {
		t.Fatalf("expected capped limit, got %d", got)
	}
	if got := NormalizeLimit(7); got != 7 {
		t.Fatalf("expected passthrough limit, got %d", got)
	}
	if got := LimitWithBuffer(7); got != 8 {
		t.Fatalf("expected buffered limit 8, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{
		CreatedAt: time.Date(2025, 8, 12, 10, 30, 0, 123456000, time.UTC),
		ID:        uuid.New(),
	}

	got, err := ParseCursor(EncodeCursor(want))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if got == nil {
		t.Fatal("expected cursor, got nil")
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || got.ID != want.ID {
		t.Fatalf("cursor mismatch: got %+v want %+v", got, want)
	}
}

func TestParseCursorBlankAndInvalid(t *testing.T) {
	got, err := ParseCursor("   ")
	if err != nil || got != nil {
		t.Fatalf("expected nil cursor for blank input, got %v err %v", got, err)
	}

	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected error for invalid encoding")
	}
	if _, err := ParseCursor("aGVsbG8"); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
