package utsf

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/freightline-io/freightline/pkg/pincode"
	"github.com/freightline-io/freightline/pkg/util"
)

func newTestManager(t *testing.T, entries []masterEntry, files ...*File) (*Manager, *Store) {
	t.Helper()

	store := NewStore(t.TempDir())
	for _, f := range files {
		if err := store.Save(f); err != nil {
			t.Fatal(err)
		}
	}

	mpc, err := pincode.Load(writeMaster(t, entries))
	if err != nil {
		t.Fatalf("loading master catalog: %v", err)
	}
	return NewManager(store, mpc), store
}

// A FULL_ZONE claim whose ingest enumeration misses master pincodes is
// promoted to FULL_MINUS_EXCEPT with the gap as exceptions.
func TestRepairPromotesStaleFullZone(t *testing.T) {
	// Master N1 has 20 pincodes; the vendor's enumeration stops at 15.
	master := masterEntries("N1")
	for p := 110001; p <= 110020; p++ {
		master = append(master, masterEntry{Pincode: p, Zone: "N1"})
	}
	cov := FullZone()
	cov.ServedRanges = []Range{{S: 110001, E: 110015}}
	f := &File{
		Meta:           Meta{ID: "v1", Version: "2.1.0", IntegrityMode: ModeStrict},
		Serviceability: map[string]*ZoneCoverage{"N1": cov},
		Updates:        []UpdateEntry{},
	}
	mgr, store := newTestManager(t, master, f)

	result, err := mgr.Repair("v1", "ops")
	if err != nil {
		t.Fatalf("Repair() failed: %v", err)
	}
	if !reflect.DeepEqual(result.PromotedZones, []string{"N1"}) {
		t.Errorf("promoted = %v, want [N1]", result.PromotedZones)
	}

	repaired, err := store.LoadVendor("v1")
	if err != nil {
		t.Fatal(err)
	}
	got := repaired.Serviceability["N1"]
	if got.Variant != VariantFullMinusExcept {
		t.Errorf("variant = %q, want FULL_MINUS_EXCEPT", got.Variant)
	}
	if n := len(Expand(got.ExceptRanges, got.ExceptSingles)); n != 5 {
		t.Errorf("exception set size = %d, want 5", n)
	}
	if got.ServedCount != 15 {
		t.Errorf("servedCount = %d, want 15", got.ServedCount)
	}
	if got.CoveragePercent != 75.0 {
		t.Errorf("coveragePercent = %v, want 75.0", got.CoveragePercent)
	}
	if math.Abs(result.Compliance-0.75) > 1e-4 {
		t.Errorf("compliance = %v, want 0.75", result.Compliance)
	}
	if len(repaired.Updates) != 1 {
		t.Errorf("updates = %d, want exactly 1 appended entry", len(repaired.Updates))
	}
}

// A soft-excluded pincode present in both the master zone and the
// rebuilt served set is unblocked by Repair.
func TestRepairSoftUnblock(t *testing.T) {
	cov := FullMinusExcept(nil, []int{194199})
	cov.SoftExclusions = PinList{194103, 194150}
	f := &File{
		Meta:           Meta{ID: "v1", Version: CurrentVersion, IntegrityMode: ModeStrict},
		Serviceability: map[string]*ZoneCoverage{"N4": cov},
		Updates:        []UpdateEntry{},
	}
	// 194103 is in master and served; 194150 is not in master.
	mgr, store := newTestManager(t, masterEntries("N4", 194101, 194102, 194103, 194199), f)

	result, err := mgr.Repair("v1", "ops")
	if err != nil {
		t.Fatalf("Repair() failed: %v", err)
	}
	if result.Unblocked != 1 {
		t.Errorf("unblocked = %d, want 1", result.Unblocked)
	}

	repaired, _ := store.LoadVendor("v1")
	soft := repaired.Serviceability["N4"].SoftExclusions
	if !reflect.DeepEqual(soft, PinList{194150}) {
		t.Errorf("softExclusions = %v, want [194150]", soft)
	}
}

// A soft exclusion shadowed by a permanent exception is redundant and
// leaves the file structurally invalid; Repair must drop it.
func TestRepairDropsSoftExclusionShadowedByException(t *testing.T) {
	cov := FullMinusExcept(nil, []int{194199})
	cov.SoftExclusions = PinList{194199}
	f := &File{
		Meta:           Meta{ID: "v1", Version: CurrentVersion, IntegrityMode: ModeStrict},
		Serviceability: map[string]*ZoneCoverage{"N4": cov},
		Updates:        []UpdateEntry{},
	}
	mgr, store := newTestManager(t, masterEntries("N4", 194101, 194199), f)

	result, err := mgr.Repair("v1", "ops")
	if err != nil {
		t.Fatalf("Repair() failed: %v", err)
	}
	if result.Unblocked != 0 {
		t.Errorf("unblocked = %d, want 0 (shadowed pin is dropped, not unblocked)", result.Unblocked)
	}

	repaired, _ := store.LoadVendor("v1")
	got := repaired.Serviceability["N4"]
	if len(got.SoftExclusions) != 0 {
		t.Errorf("softExclusions = %v, want empty", got.SoftExclusions)
	}
	if err := repaired.Validate(); err != nil {
		t.Errorf("repaired file fails validation: %v", err)
	}
}

func TestRepairBackfillsGovernance(t *testing.T) {
	f := &File{
		Meta:           Meta{ID: "v1", IntegrityMode: ModePermissive},
		Serviceability: map[string]*ZoneCoverage{"N1": FullZone()},
	}
	mgr, store := newTestManager(t, masterEntries("N1", 110001), f)

	if _, err := mgr.Repair("v1", "ops"); err != nil {
		t.Fatalf("Repair() failed: %v", err)
	}

	repaired, _ := store.LoadVendor("v1")
	if repaired.Meta.Created == nil {
		t.Error("created header not back-filled")
	}
	if repaired.Meta.Version != CurrentVersion {
		t.Errorf("version = %q, want %q", repaired.Meta.Version, CurrentVersion)
	}
	if repaired.Meta.IntegrityMode != ModeStrict {
		t.Errorf("integrityMode = %q, want STRICT", repaired.Meta.IntegrityMode)
	}
	if repaired.Meta.UpdateCount != len(repaired.Updates) {
		t.Errorf("updateCount %d != len(updates) %d", repaired.Meta.UpdateCount, len(repaired.Updates))
	}
}

// A second Repair run must change nothing beyond its own audit entry.
func TestRepairIdempotent(t *testing.T) {
	cov := FullZone()
	cov.ServedRanges = []Range{{S: 110001, E: 110003}}
	f := &File{
		Meta:           Meta{ID: "v1", Version: "1.0.0", IntegrityMode: ModePermissive},
		Serviceability: map[string]*ZoneCoverage{"N1": cov},
	}
	mgr, store := newTestManager(t, masterEntries("N1", 110001, 110002, 110003, 110004, 110005), f)

	if _, err := mgr.Repair("v1", "ops"); err != nil {
		t.Fatal(err)
	}
	first, _ := store.LoadVendor("v1")
	firstCov, _ := json.Marshal(first.Serviceability)

	if _, err := mgr.Repair("v1", "ops"); err != nil {
		t.Fatal(err)
	}
	second, _ := store.LoadVendor("v1")
	secondCov, _ := json.Marshal(second.Serviceability)

	if string(firstCov) != string(secondCov) {
		t.Errorf("coverage changed on second repair:\n%s\n%s", firstCov, secondCov)
	}
	if second.Stats != first.Stats {
		t.Errorf("stats changed on second repair: %+v vs %+v", second.Stats, first.Stats)
	}
	if len(second.Updates) != len(first.Updates)+1 {
		t.Errorf("updates = %d, want %d", len(second.Updates), len(first.Updates)+1)
	}
}

func TestRepairVendorNotFound(t *testing.T) {
	mgr, _ := newTestManager(t, masterEntries("N1", 110001))

	_, err := mgr.Repair("ghost", "ops")
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRollbackRestoresPriorState(t *testing.T) {
	cov := FullZone()
	cov.ServedRanges = []Range{{S: 110001, E: 110002}}
	f := &File{
		Meta:           Meta{ID: "v1", Version: CurrentVersion, IntegrityMode: ModeStrict},
		Serviceability: map[string]*ZoneCoverage{"N1": cov},
		Updates:        []UpdateEntry{},
	}
	mgr, store := newTestManager(t, masterEntries("N1", 110001, 110002, 110003, 110004), f)

	// Repair promotes N1 and captures the prior FULL_ZONE state.
	if _, err := mgr.Repair("v1", "ops"); err != nil {
		t.Fatal(err)
	}
	mid, _ := store.LoadVendor("v1")
	if mid.Serviceability["N1"].Variant != VariantFullMinusExcept {
		t.Fatalf("setup: expected promotion, got %q", mid.Serviceability["N1"].Variant)
	}

	if err := mgr.Rollback("v1", 0, "ops"); err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}

	rolled, _ := store.LoadVendor("v1")
	if rolled.Serviceability["N1"].Variant != VariantFullZone {
		t.Errorf("variant after rollback = %q, want FULL_ZONE", rolled.Serviceability["N1"].Variant)
	}
	if len(rolled.Updates) != 2 {
		t.Errorf("updates = %d, want 2 (repair + rollback)", len(rolled.Updates))
	}
	if rolled.Meta.UpdateCount != 2 {
		t.Errorf("updateCount = %d, want 2", rolled.Meta.UpdateCount)
	}
}

func TestRollbackIndexOutOfBounds(t *testing.T) {
	f := &File{
		Meta:           Meta{ID: "v1", Version: CurrentVersion, IntegrityMode: ModeStrict},
		Serviceability: map[string]*ZoneCoverage{"N1": FullZone()},
		Updates:        []UpdateEntry{},
	}
	mgr, _ := newTestManager(t, masterEntries("N1", 110001), f)

	if err := mgr.Rollback("v1", 5, "ops"); !errors.Is(err, ErrVersionIndex) {
		t.Errorf("err = %v, want ErrVersionIndex", err)
	}
	if err := mgr.Rollback("v1", -1, "ops"); !errors.Is(err, ErrVersionIndex) {
		t.Errorf("err = %v, want ErrVersionIndex", err)
	}
}

func TestRollbackWithoutSnapshotIsNoOp(t *testing.T) {
	f := &File{
		Meta:           Meta{ID: "v1", Version: CurrentVersion, IntegrityMode: ModeStrict},
		Serviceability: map[string]*ZoneCoverage{"N1": FullZone()},
	}
	f.AppendUpdate(UpdateEntry{EditorID: "ingest", Reason: "initial import"})
	mgr, store := newTestManager(t, masterEntries("N1", 110001), f)

	if err := mgr.Rollback("v1", 0, "ops"); err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}

	rolled, _ := store.LoadVendor("v1")
	if rolled.Serviceability["N1"].Variant != VariantFullZone {
		t.Error("snapshot-less rollback must not change coverage")
	}
	if len(rolled.Updates) != 2 {
		t.Errorf("updates = %d, want 2 (the rollback is still recorded)", len(rolled.Updates))
	}
}

func TestAuditFlagsDrift(t *testing.T) {
	healthy := &File{
		Meta: Meta{
			ID: "healthy", CompanyName: "Healthy Freight", Version: CurrentVersion,
			Created:       &Created{By: "ingest", At: "2026-01-01T00:00:00Z"},
			IntegrityMode: ModeStrict,
		},
		Serviceability: map[string]*ZoneCoverage{"N1": FullZone()},
		Stats:          Stats{ComplianceScore: 1.0},
		Updates:        []UpdateEntry{},
	}
	drifted := &File{
		Meta:           Meta{ID: "drifted", Version: "1.0.0", IntegrityMode: ModeStrict},
		Serviceability: map[string]*ZoneCoverage{"N1": OnlyServed(nil, []int{110001})},
		Stats:          Stats{ComplianceScore: 1.0},
	}
	mgr, _ := newTestManager(t, masterEntries("N1", 110001, 110002), healthy, drifted)

	report, err := mgr.Audit()
	if err != nil {
		t.Fatalf("Audit() failed: %v", err)
	}
	if len(report.Files) != 2 {
		t.Fatalf("files = %d, want 2", len(report.Files))
	}

	byID := map[string]FileAudit{}
	for _, fa := range report.Files {
		byID[fa.VendorID] = fa
	}
	if byID["healthy"].NeedsRepair {
		t.Error("healthy file flagged for repair")
	}
	d := byID["drifted"]
	if !d.NeedsRepair {
		t.Error("drifted file not flagged for repair")
	}
	if d.HasGovernance {
		t.Error("drifted file reported complete governance")
	}
	if math.Abs(d.ComputedScore-0.5) > 1e-4 {
		t.Errorf("computed score = %v, want 0.5", d.ComputedScore)
	}
	if report.NeedsRepair != 1 {
		t.Errorf("needsRepair total = %d, want 1", report.NeedsRepair)
	}
}

func TestCompareReportsMissing(t *testing.T) {
	f := &File{
		Meta: Meta{ID: "v1", Version: CurrentVersion, IntegrityMode: ModeStrict},
		Serviceability: map[string]*ZoneCoverage{
			"N1": FullMinusExcept(nil, []int{110002}),
		},
		Updates: []UpdateEntry{},
	}
	mgr, _ := newTestManager(t, masterEntries("N1", 110001, 110002, 110003), f)

	report, err := mgr.Compare("v1")
	if err != nil {
		t.Fatalf("Compare() failed: %v", err)
	}
	if len(report.Zones) != 1 {
		t.Fatalf("zones = %d, want 1", len(report.Zones))
	}
	z := report.Zones[0]
	if z.Zone != "N1" || z.MasterCount != 3 || z.ServedCount != 2 || z.MissingCount != 1 {
		t.Errorf("comparison = %+v", z)
	}
	if !reflect.DeepEqual(z.Missing, []int{110002}) {
		t.Errorf("missing = %v, want [110002]", z.Missing)
	}
}

func TestRepairAll(t *testing.T) {
	a := &File{
		Meta:           Meta{ID: "alpha", IntegrityMode: ModePermissive},
		Serviceability: map[string]*ZoneCoverage{"N1": FullZone()},
	}
	b := &File{
		Meta:           Meta{ID: "beta", IntegrityMode: ModePermissive},
		Serviceability: map[string]*ZoneCoverage{"N1": FullZone()},
	}
	mgr, store := newTestManager(t, masterEntries("N1", 110001), a, b)

	result, err := mgr.RepairAll("ops")
	if err != nil {
		t.Fatalf("RepairAll() failed: %v", err)
	}
	if len(result.Repaired) != 2 {
		t.Fatalf("repaired = %d, want 2", len(result.Repaired))
	}
	// Results come back in vendor ID order regardless of worker timing.
	if result.Repaired[0].VendorID != "alpha" || result.Repaired[1].VendorID != "beta" {
		t.Errorf("order = %s, %s", result.Repaired[0].VendorID, result.Repaired[1].VendorID)
	}
	if len(result.Failed) != 0 {
		t.Errorf("failed = %v, want none", result.Failed)
	}

	for _, id := range []string{"alpha", "beta"} {
		f, _ := store.LoadVendor(id)
		if f.Meta.IntegrityMode != ModeStrict {
			t.Errorf("%s not forced strict", id)
		}
	}
}
