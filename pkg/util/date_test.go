package util

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeUnixMillis(t *testing.T) {
	want := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got, ok := ParseTime(strconv.FormatInt(want.UnixMilli(), 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFlexTimeUnmarshal(t *testing.T) {
	want := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := map[string]string{
		"rfc3339": `"2025-01-02T03:04:05Z"`,
		"millis":  strconv.FormatInt(want.UnixMilli(), 10),
		"seconds": strconv.FormatInt(want.Unix(), 10),
		"quoted":  `"` + strconv.FormatInt(want.Unix(), 10) + `"`,
	}
	for name, raw := range cases {
		var ft FlexTime
		if err := json.Unmarshal([]byte(raw), &ft); err != nil {
			t.Fatalf("%s: unmarshal: %v", name, err)
		}
		if !ft.Equal(want) {
			t.Fatalf("%s: expected %v, got %v", name, want, ft.Time)
		}
	}

	var bad FlexTime
	if err := json.Unmarshal([]byte(`"yesterday"`), &bad); err == nil {
		t.Fatalf("expected error for invalid timestamp")
	}
}
