package util

import (
	"reflect"
	"testing"
)

func TestExpandRangeSpec(t *testing.T) {
	tests := []struct {
		spec    string
		want    []int
		wantErr bool
	}{
		{"110001-110005", []int{110001, 110002, 110003, 110004, 110005}, false},
		{"110001,110003", []int{110001, 110003}, false},
		{"110001-110003,110005", []int{110001, 110002, 110003, 110005}, false},
		{"110003,110001, 110002", []int{110001, 110002, 110003}, false},
		{"110001,110001", []int{110001}, false},
		{"", nil, false},
		{"110005-110001", nil, true},
		{"abc", nil, true},
		{"110001-abc", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ExpandRangeSpec(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ExpandRangeSpec(%q) expected error", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExpandRangeSpec(%q) failed: %v", tt.spec, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandRangeSpec(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestCompactRangeSpec(t *testing.T) {
	tests := []struct {
		values []int
		want   string
	}{
		{[]int{110001, 110002, 110003, 110005}, "110001-110003,110005"},
		{[]int{110005, 110001, 110002, 110003}, "110001-110003,110005"},
		{[]int{110001}, "110001"},
		{[]int{110001, 110001, 110002}, "110001-110002"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := CompactRangeSpec(tt.values); got != tt.want {
			t.Errorf("CompactRangeSpec(%v) = %q, want %q", tt.values, got, tt.want)
		}
	}
}

func TestRangeSpecRoundTrip(t *testing.T) {
	specs := []string{"110001-110005", "110001-110003,110005,110009"}
	for _, spec := range specs {
		values, err := ExpandRangeSpec(spec)
		if err != nil {
			t.Fatalf("expand %q: %v", spec, err)
		}
		if got := CompactRangeSpec(values); got != spec {
			t.Errorf("round trip of %q = %q", spec, got)
		}
	}
}

func TestDedupInts(t *testing.T) {
	got := DedupInts([]int{1, 1, 2, 3, 3, 3, 9})
	if !reflect.DeepEqual(got, []int{1, 2, 3, 9}) {
		t.Errorf("DedupInts = %v", got)
	}
	if got := DedupInts(nil); len(got) != 0 {
		t.Errorf("DedupInts(nil) = %v", got)
	}
}
