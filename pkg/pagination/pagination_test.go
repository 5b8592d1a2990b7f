package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2025, 9, 1, 12, 30, 0, 0, time.UTC),
		ID:        uuid.New(),
	}

	parsed, err := ParseCursor(EncodeCursor(cursor))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if parsed == nil {
		t.Fatal("expected a cursor")
	}
	if !parsed.CreatedAt.Equal(cursor.CreatedAt) || parsed.ID != cursor.ID {
		t.Fatalf("cursor mismatch: %+v vs %+v", parsed, cursor)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	parsed, err := ParseCursor("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != nil {
		t.Fatal("blank cursor should parse to nil")
	}
}

func TestParseCursorMalformed(t *testing.T) {
	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default, got %d", got)
	}
	if got := NormalizeLimit(1000); got != MaxLimit {
		t.Fatalf("expected max, got %d", got)
	}
	if got := NormalizeLimit(10); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestTrimPage(t *testing.T) {
	keep, more := TrimPage(11, 10)
	if keep != 10 || !more {
		t.Fatalf("expected full page with more, got keep=%d more=%v", keep, more)
	}
	keep, more = TrimPage(4, 10)
	if keep != 4 || more {
		t.Fatalf("expected short final page, got keep=%d more=%v", keep, more)
	}
}
