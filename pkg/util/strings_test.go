package util

import "testing"

func TestSplitCSV(t *testing.T) {
	got := SplitCSV("a, b,,c ")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected split %v", got)
	}
	if got := SplitCSV(" , "); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}
