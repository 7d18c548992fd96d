// Package utsf implements the Unified Transporter Serviceability Format:
// the compressed, zone-partitioned coverage representation kept on disk
// for each vendor, the codec between pincode sets and their compact
// form, the in-memory serviceability service, and the administrative
// control plane that audits and repairs coverage against the master
// pincode catalog.
package utsf

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/freightline-io/freightline/pkg/util"
)

// Coverage variants. FULL_MINUS_EXCEPTIONS is accepted on read as a
// legacy alias for FULL_MINUS_EXCEPT; writers always emit the canonical
// names.
const (
	VariantFullZone        = "FULL_ZONE"
	VariantFullMinusExcept = "FULL_MINUS_EXCEPT"
	VariantOnlyServed      = "ONLY_SERVED"
	VariantNotServed       = "NOT_SERVED"

	variantFullMinusExceptLegacy = "FULL_MINUS_EXCEPTIONS"
)

// Integrity modes
const (
	ModeStrict     = "STRICT"
	ModePermissive = "PERMISSIVE"
)

// CurrentVersion is the format version written by this release.
const CurrentVersion = "3.0.0"

// Range is an inclusive pincode range. It decodes from both the object
// form {"s":110001,"e":110003} and the legacy 2-tuple form
// [110001,110003]; it always encodes as the object form.
type Range struct {
	S int `json:"s"`
	E int `json:"e"`
}

// UnmarshalJSON accepts object and tuple forms. Entries that are neither
// decode to the zero Range, which expansion ignores.
func (r *Range) UnmarshalJSON(data []byte) error {
	type rangeObj struct {
		S int `json:"s"`
		E int `json:"e"`
	}
	var obj rangeObj
	if err := json.Unmarshal(data, &obj); err == nil && (obj.S != 0 || obj.E != 0) {
		r.S, r.E = obj.S, obj.E
		return nil
	}
	var tuple []float64
	if err := json.Unmarshal(data, &tuple); err == nil && len(tuple) == 2 {
		r.S, r.E = int(tuple[0]), int(tuple[1])
		return nil
	}
	// Unrecognized entry: tolerate and leave zero.
	r.S, r.E = 0, 0
	return nil
}

// PinList is a list of pincodes tolerant of sloppy inputs: numeric
// strings are accepted, non-numeric entries are dropped.
type PinList []int

// UnmarshalJSON decodes an array of numbers or numeric strings.
func (p *PinList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		var n float64
		if err := json.Unmarshal(item, &n); err == nil {
			out = append(out, int(n))
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			var sn int
			if _, err := fmt.Sscanf(s, "%d", &sn); err == nil {
				out = append(out, sn)
			}
		}
	}
	*p = out
	return nil
}

// ZoneCoverage describes one zone's coverage for one vendor. The variant
// drives set-membership semantics; the constructors below are the only
// supported ways to build one, preventing invalid field mixes.
type ZoneCoverage struct {
	Variant string `json:"variant"`

	// FULL_MINUS_EXCEPT fields
	ExceptRanges  []Range `json:"exceptRanges,omitempty"`
	ExceptSingles PinList `json:"exceptSingles,omitempty"`

	// ONLY_SERVED fields
	ServedRanges  []Range `json:"servedRanges,omitempty"`
	ServedSingles PinList `json:"servedSingles,omitempty"`

	// SoftExclusions are temporary blocks on otherwise-served pincodes;
	// the control plane auto-lifts them when evidence of service appears.
	// Kept disjoint from ExceptSingles: these are distinct concepts.
	SoftExclusions PinList `json:"softExclusions,omitempty"`

	ServedCount     int     `json:"servedCount,omitempty"`
	CoveragePercent float64 `json:"coveragePercent,omitempty"`
}

// zoneCoverageAliases mirrors ZoneCoverage with the snake_case field
// names older writers emitted.
type zoneCoverageAliases struct {
	Variant           string  `json:"variant"`
	ExceptRanges      []Range `json:"exceptRanges"`
	ExceptRangesAlt   []Range `json:"except_ranges"`
	ExceptSingles     PinList `json:"exceptSingles"`
	ExceptSinglesAlt  PinList `json:"except_singles"`
	ServedRanges      []Range `json:"servedRanges"`
	ServedRangesAlt   []Range `json:"served_ranges"`
	ServedSingles     PinList `json:"servedSingles"`
	ServedSinglesAlt  PinList `json:"served_singles"`
	SoftExclusions    PinList `json:"softExclusions"`
	SoftExclusionsAlt PinList `json:"soft_exclusions"`
	ServedCount       int     `json:"servedCount"`
	CoveragePercent   float64 `json:"coveragePercent"`
}

// UnmarshalJSON reads both the canonical camelCase form and the legacy
// snake_case aliases, and normalizes the legacy variant name.
func (z *ZoneCoverage) UnmarshalJSON(data []byte) error {
	var raw zoneCoverageAliases
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	z.Variant = raw.Variant
	if z.Variant == variantFullMinusExceptLegacy {
		z.Variant = VariantFullMinusExcept
	}
	z.ExceptRanges = firstRanges(raw.ExceptRanges, raw.ExceptRangesAlt)
	z.ExceptSingles = firstPins(raw.ExceptSingles, raw.ExceptSinglesAlt)
	z.ServedRanges = firstRanges(raw.ServedRanges, raw.ServedRangesAlt)
	z.ServedSingles = firstPins(raw.ServedSingles, raw.ServedSinglesAlt)
	z.SoftExclusions = firstPins(raw.SoftExclusions, raw.SoftExclusionsAlt)
	z.ServedCount = raw.ServedCount
	z.CoveragePercent = raw.CoveragePercent
	return nil
}

func firstRanges(a, b []Range) []Range {
	if len(a) > 0 {
		return a
	}
	return b
}

func firstPins(a, b PinList) PinList {
	if len(a) > 0 {
		return a
	}
	return b
}

// FullZone constructs coverage serving every master pincode in the zone.
func FullZone() *ZoneCoverage {
	return &ZoneCoverage{Variant: VariantFullZone}
}

// FullMinusExcept constructs coverage serving the whole zone minus the
// given exceptions.
func FullMinusExcept(ranges []Range, singles []int) *ZoneCoverage {
	return &ZoneCoverage{
		Variant:       VariantFullMinusExcept,
		ExceptRanges:  canonicalRanges(ranges),
		ExceptSingles: canonicalSingles(singles),
	}
}

// OnlyServed constructs coverage serving exactly the enumerated pincodes.
func OnlyServed(ranges []Range, singles []int) *ZoneCoverage {
	return &ZoneCoverage{
		Variant:       VariantOnlyServed,
		ServedRanges:  canonicalRanges(ranges),
		ServedSingles: canonicalSingles(singles),
	}
}

// NotServed constructs coverage serving nothing in the zone.
func NotServed() *ZoneCoverage {
	return &ZoneCoverage{Variant: VariantNotServed}
}

func canonicalRanges(ranges []Range) []Range {
	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.S > 0 && r.E >= r.S {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].S < out[j].S })
	return out
}

func canonicalSingles(singles []int) PinList {
	sorted := make([]int, 0, len(singles))
	for _, p := range singles {
		if p > 0 {
			sorted = append(sorted, p)
		}
	}
	sort.Ints(sorted)
	return util.DedupInts(sorted)
}

// Created records file provenance.
type Created struct {
	By     string `json:"by"`
	At     string `json:"at"`
	Source string `json:"source,omitempty"`
}

// Meta is the governance header of a UTSF file.
type Meta struct {
	ID            string   `json:"id"`
	CompanyName   string   `json:"companyName"`
	Version       string   `json:"version"`
	Created       *Created `json:"created,omitempty"`
	UpdateCount   int      `json:"updateCount"`
	IntegrityMode string   `json:"integrityMode"`
}

// UpdateEntry is one append-only audit record inside a UTSF file.
type UpdateEntry struct {
	Timestamp     time.Time       `json:"timestamp"`
	EditorID      string          `json:"editorId"`
	Reason        string          `json:"reason"`
	ChangeSummary string          `json:"changeSummary"`
	Snapshot      json.RawMessage `json:"snapshot,omitempty"`
}

// Stats carries derived coverage statistics.
type Stats struct {
	ComplianceScore float64 `json:"complianceScore"`
}

// File is one vendor's UTSF document.
type File struct {
	Meta           Meta                     `json:"meta"`
	Serviceability map[string]*ZoneCoverage `json:"serviceability"`

	// ZoneOverrides reassigns specific pincodes (keyed as decimal
	// strings) to a different zone label for this vendor only.
	ZoneOverrides map[string]string `json:"zoneOverrides,omitempty"`

	Stats   Stats         `json:"stats"`
	Updates []UpdateEntry `json:"updates"`
}

// Strict reports whether the file is under strict integrity mode.
// Anything other than an explicit PERMISSIVE is treated as strict.
func (f *File) Strict() bool {
	return f.Meta.IntegrityMode != ModePermissive
}

// HasGovernance reports whether the governance header is complete.
func (f *File) HasGovernance() bool {
	return f.Meta.Created != nil && f.Meta.Version != "" && f.Updates != nil
}

// AppendUpdate appends an audit entry and keeps updateCount in sync.
func (f *File) AppendUpdate(e UpdateEntry) {
	f.Updates = append(f.Updates, e)
	f.Meta.UpdateCount = len(f.Updates)
}

// Validate checks the structural invariants of the file: canonically
// ordered non-overlapping ranges, sorted unique singles disjoint from
// ranges in the same set, and softExclusions disjoint from permanent
// exceptions.
func (f *File) Validate() error {
	v := &util.ValidationBuilder{}
	v.Add(f.Meta.ID != "", "meta.id is required")

	for zone, cov := range f.Serviceability {
		if cov == nil {
			v.AddErrorf("zone %s: nil coverage", zone)
			continue
		}
		switch cov.Variant {
		case VariantFullZone, VariantFullMinusExcept, VariantOnlyServed, VariantNotServed:
		default:
			v.AddErrorf("zone %s: unknown variant %q", zone, cov.Variant)
			continue
		}
		checkRanges(v, zone, "exceptRanges", cov.ExceptRanges)
		checkRanges(v, zone, "servedRanges", cov.ServedRanges)
		checkSingles(v, zone, "exceptSingles", cov.ExceptSingles, cov.ExceptRanges)
		checkSingles(v, zone, "servedSingles", cov.ServedSingles, cov.ServedRanges)

		except := make(map[int]bool, len(cov.ExceptSingles))
		for _, p := range cov.ExceptSingles {
			except[p] = true
		}
		for _, p := range cov.SoftExclusions {
			if except[p] {
				v.AddErrorf("zone %s: pincode %d in both softExclusions and exceptSingles", zone, p)
			}
		}
	}

	if f.Updates != nil && f.Meta.UpdateCount != len(f.Updates) {
		v.AddErrorf("meta.updateCount %d != len(updates) %d", f.Meta.UpdateCount, len(f.Updates))
	}
	return v.Build()
}

func checkRanges(v *util.ValidationBuilder, zone, field string, ranges []Range) {
	prevEnd := -1
	for _, r := range ranges {
		if r.S == 0 && r.E == 0 {
			continue // tolerated unparseable entry
		}
		if r.E < r.S {
			v.AddErrorf("zone %s: %s has inverted range %d-%d", zone, field, r.S, r.E)
		}
		if r.S <= prevEnd {
			v.AddErrorf("zone %s: %s not sorted or overlapping at %d", zone, field, r.S)
		}
		prevEnd = r.E
	}
}

func checkSingles(v *util.ValidationBuilder, zone, field string, singles PinList, ranges []Range) {
	for i, p := range singles {
		if i > 0 && singles[i-1] >= p {
			v.AddErrorf("zone %s: %s not sorted/unique at %d", zone, field, p)
		}
		for _, r := range ranges {
			if p >= r.S && p <= r.E {
				v.AddErrorf("zone %s: %s value %d overlaps range %d-%d", zone, field, p, r.S, r.E)
			}
		}
	}
}
