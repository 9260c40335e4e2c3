package booking

import "testing"

// The array columns are NOT NULL; a nil slice must encode as an empty
// array, not as NULL.
func TestTextArray_NeverNil(t *testing.T) {
	got := textArray(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty slice for nil input, got %#v", got)
	}

	in := []string{"P0001_1_scan.pdf"}
	got = textArray(in)
	if len(got) != 1 || got[0] != "P0001_1_scan.pdf" {
		t.Errorf("expected passthrough, got %#v", got)
	}
}
