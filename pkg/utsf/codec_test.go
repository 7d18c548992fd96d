package utsf

import (
	"reflect"
	"sort"
	"testing"
)

func TestCompress(t *testing.T) {
	tests := []struct {
		name        string
		pincodes    []int
		threshold   int
		wantRanges  []Range
		wantSingles []int
	}{
		{
			name:        "runs and singles",
			pincodes:    []int{110001, 110002, 110003, 110005, 110007},
			threshold:   3,
			wantRanges:  []Range{{S: 110001, E: 110003}},
			wantSingles: []int{110005, 110007},
		},
		{
			name:        "unsorted with duplicates",
			pincodes:    []int{110003, 110001, 110002, 110001},
			threshold:   3,
			wantRanges:  []Range{{S: 110001, E: 110003}},
			wantSingles: nil,
		},
		{
			name:        "threshold 2 collapses pairs",
			pincodes:    []int{110001, 110002, 110005},
			threshold:   2,
			wantRanges:  []Range{{S: 110001, E: 110002}},
			wantSingles: []int{110005},
		},
		{
			name:        "run below threshold stays singles",
			pincodes:    []int{110001, 110002, 110005},
			threshold:   3,
			wantRanges:  nil,
			wantSingles: []int{110001, 110002, 110005},
		},
		{
			name:        "non-positive threshold uses default",
			pincodes:    []int{110001, 110002, 110003},
			threshold:   0,
			wantRanges:  []Range{{S: 110001, E: 110003}},
			wantSingles: nil,
		},
		{
			name:        "invalid pincodes dropped",
			pincodes:    []int{0, -5, 110001},
			threshold:   3,
			wantRanges:  nil,
			wantSingles: []int{110001},
		},
		{
			name:      "empty",
			pincodes:  nil,
			threshold: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranges, singles := Compress(tt.pincodes, tt.threshold)
			if !reflect.DeepEqual(ranges, tt.wantRanges) {
				t.Errorf("ranges = %v, want %v", ranges, tt.wantRanges)
			}
			if !reflect.DeepEqual(singles, tt.wantSingles) {
				t.Errorf("singles = %v, want %v", singles, tt.wantSingles)
			}
		})
	}
}

func TestExpandIgnoresMalformed(t *testing.T) {
	set := Expand([]Range{{S: 0, E: 0}, {S: 110005, E: 110003}, {S: 110001, E: 110002}}, []int{0, 110009})

	want := []int{110001, 110002, 110009}
	if len(set) != len(want) {
		t.Fatalf("len = %d, want %d", len(set), len(want))
	}
	for _, p := range want {
		if _, ok := set[p]; !ok {
			t.Errorf("missing %d", p)
		}
	}
}

// expand(compress(X, T)) must reproduce X for any threshold >= 2.
func TestCompressExpandRoundTrip(t *testing.T) {
	sets := [][]int{
		{110001, 110002, 110003, 110005, 110007},
		{194101, 194102, 194103, 194104, 194105},
		{800001},
		{800001, 800003, 800005, 800007},
		{560001, 560002, 560004, 560005, 560006, 560007, 560099},
		{},
	}

	for _, pins := range sets {
		for _, threshold := range []int{2, 3, 5} {
			ranges, singles := Compress(pins, threshold)
			got := Expand(ranges, singles)

			if len(got) != len(pins) {
				t.Fatalf("threshold %d: round trip of %v changed cardinality: %d", threshold, pins, len(got))
			}
			for _, p := range pins {
				if _, ok := got[p]; !ok {
					t.Errorf("threshold %d: round trip of %v lost %d", threshold, pins, p)
				}
			}

			if n := ExpandCount(ranges, singles); n != len(pins) {
				t.Errorf("threshold %d: ExpandCount = %d, want %d", threshold, n, len(pins))
			}
		}
	}
}

func TestCompressSinglesSorted(t *testing.T) {
	_, singles := Compress([]int{110099, 110007, 110005}, 3)
	if !sort.IntsAreSorted(singles) {
		t.Errorf("singles not sorted: %v", singles)
	}
}
