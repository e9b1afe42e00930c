package repository

import (
	"errors"
	"testing"
	"time"

	"BetPulse/internal/domain/models"
)

func TestParseTimeRange(t *testing.T) {
	cases := []struct {
		in   string
		want TimeRange
	}{
		{"day", RangeDay},
		{"Week", RangeWeek},
		{" month ", RangeMonth},
		{" WEEK\t", RangeWeek},
		{"all", RangeAll},
	}
	for _, tc := range cases {
		got, err := ParseTimeRange(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("ParseTimeRange(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestParseTimeRangeRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "year", "7d"} {
		_, err := ParseTimeRange(in)
		var cfgErr *models.ConfigurationError
		if !errors.As(err, &cfgErr) || cfgErr.Field != "timeRange" {
			t.Fatalf("ParseTimeRange(%q): expected ConfigurationError, got %v", in, err)
		}
	}
}

func TestSince(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	if got := RangeWeek.Since(now); !got.Equal(time.Date(2024, 3, 24, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("week: %v", got)
	}
	if got := RangeAll.Since(now); !got.IsZero() {
		t.Fatalf("all should be unbounded, got %v", got)
	}
}
