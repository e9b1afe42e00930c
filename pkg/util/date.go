package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// unix timestamps above this are treated as milliseconds
const msThreshold = 1e11

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds or milliseconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return FromUnix(ts), true
	}
	return time.Time{}, false
}

// FromUnix converts unix seconds or milliseconds to time.
func FromUnix(ts int64) time.Time {
	if ts > msThreshold {
		return time.UnixMilli(ts)
	}
	return time.Unix(ts, 0)
}

// FlexTime decodes a JSON timestamp given as RFC3339 string, numeric string, or unix number.
type FlexTime struct {
	time.Time
}

func (f *FlexTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		f.Time = time.Time{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		t, ok := ParseTime(s)
		if !ok {
			return fmt.Errorf("invalid timestamp %q", s)
		}
		f.Time = t
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", b, err)
	}
	ts, err := n.Int64()
	if err != nil {
		fl, ferr := n.Float64()
		if ferr != nil {
			return fmt.Errorf("invalid timestamp %s: %w", b, err)
		}
		ts = int64(fl)
	}
	f.Time = FromUnix(ts)
	return nil
}

func (f FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Time.UnixMilli())
}
