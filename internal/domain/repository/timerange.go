package repository

import (
	"strings"
	"time"

	"BetPulse/internal/domain/models"
)

// TimeRange selects the window of records an aggregation covers.
type TimeRange string

const (
	RangeDay   TimeRange = "day"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeAll   TimeRange = "all"
)

// TimeRanges lists the supported ranges in ascending span.
func TimeRanges() []TimeRange {
	return []TimeRange{RangeDay, RangeWeek, RangeMonth, RangeAll}
}

// IsValid returns true if tr is a supported range.
func (tr TimeRange) IsValid() bool {
	switch tr {
	case RangeDay, RangeWeek, RangeMonth, RangeAll:
		return true
	default:
		return false
	}
}

// Since returns the lower bound of tr relative to now; zero for RangeAll.
func (tr TimeRange) Since(now time.Time) time.Time {
	switch tr {
	case RangeDay:
		return now.AddDate(0, 0, -1)
	case RangeWeek:
		return now.AddDate(0, 0, -7)
	case RangeMonth:
		return now.AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}

// ParseTimeRange accepts a range name case-insensitively, ignoring surrounding
// whitespace, and returns the canonical lowercase value. Unknown values are
// a ConfigurationError, never silently defaulted.
func ParseTimeRange(s string) (TimeRange, error) {
	tr := TimeRange(strings.ToLower(strings.TrimSpace(s)))
	if !tr.IsValid() {
		return "", models.NewConfigurationError("timeRange", s, "must be one of day, week, month, all")
	}
	return tr, nil
}
