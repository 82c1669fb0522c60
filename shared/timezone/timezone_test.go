package timezone_test

import (
	"miyabi/shared/timezone"
	"testing"
	"time"
)

func TestTimezoneInit(t *testing.T) {
	// Test Now() function
	now := timezone.Now()
	if now.IsZero() {
		t.Error("Now() returned zero time")
	}

	// Test GetLocation()
	loc := timezone.GetLocation()
	if loc == nil {
		t.Error("GetLocation() returned nil")
	}
}

func TestTimezoneWithStandardLocation(t *testing.T) {
	utcTime := time.Now().UTC()
	appTime := timezone.ToAppTime(utcTime)

	if appTime.Location() == nil {
		t.Error("Expected converted time to have a location")
	}
}

func TestTimezoneFormat(t *testing.T) {
	testTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	formatted := timezone.Format(testTime, "2006-01-02 15:04:05 MST")

	if formatted == "" {
		t.Error("Format() returned empty string")
	}

	parsed, err := timezone.Parse("2006-01-02", "2024-01-01")
	if err != nil {
		t.Errorf("Parse() failed: %v", err)
	}

	if parsed == (time.Time{}) {
		t.Error("Parse() returned a zero time")
	}
}

func TestStartOfDay(t *testing.T) {
	value := time.Date(2026, 2, 20, 17, 45, 3, 0, timezone.GetLocation())
	start := timezone.StartOfDay(value)

	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Errorf("expected midnight, got %v", start)
	}

	if start.Day() != 20 {
		t.Errorf("expected day 20, got %d", start.Day())
	}
}

func TestParseDate(t *testing.T) {
	parsed, err := timezone.ParseDate("2026-02-25")
	if err != nil {
		t.Fatalf("ParseDate() failed: %v", err)
	}

	if parsed.Format(time.DateOnly) != "2026-02-25" {
		t.Errorf("expected 2026-02-25, got %s", parsed.Format(time.DateOnly))
	}

	if _, err := timezone.ParseDate("25/02/2026"); err == nil {
		t.Error("expected error for non ISO date")
	}
}
