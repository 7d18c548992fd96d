package utsf

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/freightline-io/freightline/pkg/audit"
	"github.com/freightline-io/freightline/pkg/pincode"
	"github.com/freightline-io/freightline/pkg/util"
)

// ErrVersionIndex is returned by Rollback for an out-of-bounds update
// index.
var ErrVersionIndex = errors.New("version index out of bounds")

// Manager is the UTSF control plane: it audits, compares, repairs, and
// rolls back vendor files against the master pincode catalog. Operations
// against a single file are serialized; distinct files may proceed in
// parallel.
type Manager struct {
	store *Store
	mpc   *pincode.Catalog
	ops   audit.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a manager over a store and master catalog.
func NewManager(store *Store, mpc *pincode.Catalog) *Manager {
	return &Manager{
		store: store,
		mpc:   mpc,
		ops:   audit.NopLogger{},
		locks: make(map[string]*sync.Mutex),
	}
}

// WithOpsLog attaches an operations trail logger.
func (m *Manager) WithOpsLog(l audit.Logger) *Manager {
	if l != nil {
		m.ops = l
	}
	return m
}

func (m *Manager) vendorLock(vendorID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[vendorID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[vendorID] = lock
	}
	return lock
}

// FileAudit is the audit result for one vendor file.
type FileAudit struct {
	VendorID      string  `json:"vendorId"`
	CompanyName   string  `json:"companyName"`
	HasGovernance bool    `json:"hasGovernance"`
	StoredScore   float64 `json:"storedScore"`
	ComputedScore float64 `json:"computedScore"`
	OverrideCount int     `json:"overrideCount"`
	NeedsRepair   bool    `json:"needsRepair"`
}

// AuditReport covers every file in the store.
type AuditReport struct {
	Files       []FileAudit `json:"files"`
	NeedsRepair int         `json:"needsRepair"`
}

// Audit scans all vendor files and reports governance and compliance
// state. Files that fail to load are skipped by the store with a
// warning.
func (m *Manager) Audit() (*AuditReport, error) {
	files, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	report := &AuditReport{}
	for _, id := range sortedKeys(files) {
		f := files[id]
		fa := FileAudit{
			VendorID:      id,
			CompanyName:   f.Meta.CompanyName,
			HasGovernance: f.HasGovernance(),
			StoredScore:   f.Stats.ComplianceScore,
			ComputedScore: m.computedCompliance(f),
			OverrideCount: len(f.ZoneOverrides),
		}
		fa.NeedsRepair = !fa.HasGovernance || fa.ComputedScore < 1.0
		if fa.NeedsRepair {
			report.NeedsRepair++
		}
		report.Files = append(report.Files, fa)
	}
	return report, nil
}

// ZoneComparison reports one zone's coverage against the master catalog.
type ZoneComparison struct {
	Zone         string `json:"zone"`
	MasterCount  int    `json:"masterCount"`
	ServedCount  int    `json:"servedCount"`
	MissingCount int    `json:"missingCount"`
	Missing      []int  `json:"missing,omitempty"`
}

// CompareReport is the per-zone diagnostic for one vendor.
type CompareReport struct {
	VendorID string           `json:"vendorId"`
	Zones    []ZoneComparison `json:"zones"`
}

// Compare reports, per declared zone, the master count, served count,
// missing count, and the sorted missing pincode list.
func (m *Manager) Compare(vendorID string) (*CompareReport, error) {
	f, err := m.store.LoadVendor(vendorID)
	if err != nil {
		return nil, err
	}

	report := &CompareReport{VendorID: vendorID}
	for _, zone := range sortedZones(f) {
		cov := f.Serviceability[zone]
		master := m.mpc.PincodesOfZone(zone)
		missing := MissingPincodes(cov, master)
		report.Zones = append(report.Zones, ZoneComparison{
			Zone:         zone,
			MasterCount:  len(master),
			ServedCount:  len(master) - len(missing),
			MissingCount: len(missing),
			Missing:      missing,
		})
	}
	return report, nil
}

// RepairResult summarizes one repair run.
type RepairResult struct {
	VendorID      string   `json:"vendorId"`
	Changes       []string `json:"changes"`
	PromotedZones []string `json:"promotedZones,omitempty"`
	Unblocked     int      `json:"unblocked"`
	Compliance    float64  `json:"compliance"`
}

// snapshotState is the portion of a file captured into an update entry's
// snapshot for rollback. The update log itself is never snapshotted;
// nesting it would grow files quadratically across repairs.
type snapshotState struct {
	Meta           Meta                     `json:"meta"`
	Serviceability map[string]*ZoneCoverage `json:"serviceability"`
	ZoneOverrides  map[string]string        `json:"zoneOverrides,omitempty"`
	Stats          Stats                    `json:"stats"`
}

// Repair reconciles one vendor file against the master catalog. It is
// idempotent: a second run produces a byte-identical file apart from the
// new audit entry. Steps: back-fill governance, force strict mode,
// promote stale FULL_ZONE coverage to FULL_MINUS_EXCEPT, recompute the
// compliance score, auto-unblock soft exclusions now served, append one
// audit entry, persist atomically.
func (m *Manager) Repair(vendorID, editorID string) (*RepairResult, error) {
	lock := m.vendorLock(vendorID)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()
	result, err := m.repairLocked(vendorID, editorID)

	event := audit.NewEvent(editorID, vendorID, audit.OpRepair).WithDuration(time.Since(started))
	if err != nil {
		event.WithError(err)
	} else {
		event.WithSuccess().WithChangeSummary(strings.Join(result.Changes, "; ")).WithUnblocked(result.Unblocked)
	}
	if logErr := m.ops.Log(event); logErr != nil {
		util.WithVendor(vendorID).Warnf("operations trail write failed: %v", logErr)
	}
	return result, err
}

func (m *Manager) repairLocked(vendorID, editorID string) (*RepairResult, error) {
	f, err := m.store.LoadVendor(vendorID)
	if err != nil {
		return nil, err
	}

	prior, err := json.Marshal(snapshotState{
		Meta:           f.Meta,
		Serviceability: f.Serviceability,
		ZoneOverrides:  f.ZoneOverrides,
		Stats:          f.Stats,
	})
	if err != nil {
		return nil, fmt.Errorf("snapshotting %s: %w", vendorID, err)
	}

	result := &RepairResult{VendorID: vendorID}

	// Step 1: governance back-fill and strict mode.
	if f.Meta.Created == nil {
		f.Meta.Created = &Created{
			By:     editorID,
			At:     time.Now().UTC().Format(time.RFC3339),
			Source: "repair",
		}
		result.Changes = append(result.Changes, "back-filled created header")
	}
	if f.Meta.Version != CurrentVersion {
		result.Changes = append(result.Changes, fmt.Sprintf("version %q -> %q", f.Meta.Version, CurrentVersion))
		f.Meta.Version = CurrentVersion
	}
	if f.Updates == nil {
		f.Updates = []UpdateEntry{}
		f.Meta.UpdateCount = 0
		result.Changes = append(result.Changes, "initialized update log")
	}
	if f.Meta.IntegrityMode != ModeStrict {
		result.Changes = append(result.Changes, fmt.Sprintf("integrity mode %q -> STRICT", f.Meta.IntegrityMode))
		f.Meta.IntegrityMode = ModeStrict
	}

	// Step 2: promote stale FULL_ZONE coverage. A FULL_ZONE claim that
	// carries an ingest-recorded served enumeration is checked against
	// the master zone; pincodes absent from the enumeration become
	// permanent exceptions. A claim with no enumeration is trusted.
	for _, zone := range sortedZones(f) {
		cov := f.Serviceability[zone]
		if cov.Variant != VariantFullZone {
			continue
		}
		if len(cov.ServedRanges) == 0 && len(cov.ServedSingles) == 0 {
			continue
		}
		master := m.mpc.PincodesOfZone(zone)
		served := Expand(cov.ServedRanges, cov.ServedSingles)
		var missing []int
		for _, p := range master {
			if _, ok := served[p]; !ok {
				missing = append(missing, p)
			}
		}
		if len(missing) == 0 {
			cov.ServedRanges = nil
			cov.ServedSingles = nil
			result.Changes = append(result.Changes,
				fmt.Sprintf("zone %s: dropped redundant served enumeration", zone))
			continue
		}
		ranges, singles := Compress(missing, DefaultRunThreshold)
		cov.Variant = VariantFullMinusExcept
		cov.ExceptRanges = ranges
		cov.ExceptSingles = singles
		cov.ServedRanges = nil
		cov.ServedSingles = nil
		cov.ServedCount = len(master) - len(missing)
		if len(master) > 0 {
			cov.CoveragePercent = round2(100 * float64(cov.ServedCount) / float64(len(master)))
		}
		result.PromotedZones = append(result.PromotedZones, zone)
		result.Changes = append(result.Changes,
			fmt.Sprintf("zone %s: FULL_ZONE -> FULL_MINUS_EXCEPT (%d exceptions)", zone, len(missing)))
	}

	// Step 3: recompute the compliance score.
	score := m.computedCompliance(f)
	if f.Stats.ComplianceScore != score {
		result.Changes = append(result.Changes,
			fmt.Sprintf("compliance %.4f -> %.4f", f.Stats.ComplianceScore, score))
		f.Stats.ComplianceScore = score
	}
	result.Compliance = score

	// Step 4: soft-exclusion auto-unblock. Rebuild each zone's served
	// set from permanent exceptions only; lift soft blocks on pincodes
	// that the master catalog and the rebuilt set both contain. A soft
	// pin already covered by a permanent exception is redundant and
	// would keep the file structurally invalid, so it is dropped.
	for _, zone := range sortedZones(f) {
		cov := f.Serviceability[zone]
		if len(cov.SoftExclusions) == 0 {
			continue
		}
		master := m.mpc.PincodesOfZone(zone)
		served := ServedSet(cov, master)
		inMaster := make(map[int]bool, len(master))
		for _, p := range master {
			inMaster[p] = true
		}

		var kept PinList
		unblocked := 0
		dropped := 0
		for _, p := range cov.SoftExclusions {
			if _, ok := served[p]; ok && inMaster[p] {
				unblocked++
				continue
			}
			if cov.isExcepted(p) {
				dropped++
				continue
			}
			kept = append(kept, p)
		}
		if unblocked > 0 || dropped > 0 {
			cov.SoftExclusions = kept
		}
		if unblocked > 0 {
			result.Unblocked += unblocked
			result.Changes = append(result.Changes,
				fmt.Sprintf("zone %s: unblocked %d soft exclusions", zone, unblocked))
		}
		if dropped > 0 {
			result.Changes = append(result.Changes,
				fmt.Sprintf("zone %s: dropped %d soft exclusions shadowed by permanent exceptions", zone, dropped))
		}
	}

	// Step 5: append one audit entry covering the whole run.
	summary := "no changes"
	if len(result.Changes) > 0 {
		summary = strings.Join(result.Changes, "; ")
	}
	f.AppendUpdate(UpdateEntry{
		Timestamp:     time.Now().UTC(),
		EditorID:      editorID,
		Reason:        "repair",
		ChangeSummary: summary,
		Snapshot:      prior,
	})

	// Step 6: persist atomically.
	if err := m.store.Save(f); err != nil {
		return nil, err
	}

	util.WithVendor(vendorID).WithField("operation", "repair").
		Infof("repair complete: %d changes, %d unblocked, compliance %.4f",
			len(result.Changes), result.Unblocked, score)
	return result, nil
}

// RepairAllResult summarizes a batch repair.
type RepairAllResult struct {
	Repaired []*RepairResult   `json:"repaired"`
	Failed   map[string]string `json:"failed,omitempty"`
}

// RepairAll repairs every vendor file in the store. Files are processed
// by a small worker pool; a failure aborts that file only.
func (m *Manager) RepairAll(editorID string) (*RepairAllResult, error) {
	ids, err := m.store.VendorIDs()
	if err != nil {
		return nil, err
	}

	workers := 4
	if workers > len(ids) {
		workers = len(ids)
	}

	type outcome struct {
		id     string
		result *RepairResult
		err    error
	}

	jobs := make(chan string, len(ids))
	results := make(chan outcome, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				r, err := m.Repair(id, editorID)
				results <- outcome{id: id, result: r, err: err}
			}
		}()
	}
	for _, id := range ids {
		jobs <- id
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	all := &RepairAllResult{Failed: make(map[string]string)}
	byID := make(map[string]*RepairResult)
	for out := range results {
		if out.err != nil {
			all.Failed[out.id] = out.err.Error()
			continue
		}
		byID[out.id] = out.result
	}
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			all.Repaired = append(all.Repaired, r)
		}
	}
	if len(all.Failed) == 0 {
		all.Failed = nil
	}
	return all, nil
}

// Rollback restores a vendor file from the snapshot carried by the
// referenced update entry. Without a usable snapshot the operation is a
// no-op beyond the appended audit entry.
func (m *Manager) Rollback(vendorID string, versionIndex int, editorID string) error {
	lock := m.vendorLock(vendorID)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()
	summary, err := m.rollbackLocked(vendorID, versionIndex, editorID)

	event := audit.NewEvent(editorID, vendorID, audit.OpRollback).WithDuration(time.Since(started))
	if err != nil {
		event.WithError(err)
	} else {
		event.WithSuccess().WithChangeSummary(summary)
	}
	if logErr := m.ops.Log(event); logErr != nil {
		util.WithVendor(vendorID).Warnf("operations trail write failed: %v", logErr)
	}
	return err
}

func (m *Manager) rollbackLocked(vendorID string, versionIndex int, editorID string) (string, error) {
	f, err := m.store.LoadVendor(vendorID)
	if err != nil {
		return "", err
	}
	if versionIndex < 0 || versionIndex >= len(f.Updates) {
		return "", fmt.Errorf("vendor %s has %d updates: %w", vendorID, len(f.Updates), ErrVersionIndex)
	}

	target := f.Updates[versionIndex]
	summary := fmt.Sprintf("rollback to update %d (no snapshot, state unchanged)", versionIndex)

	if len(target.Snapshot) > 0 {
		var prior snapshotState
		if err := json.Unmarshal(target.Snapshot, &prior); err != nil {
			util.WithVendor(vendorID).Warnf("rollback: unparseable snapshot at index %d: %v", versionIndex, err)
		} else {
			updateCount := f.Meta.UpdateCount
			f.Meta = prior.Meta
			f.Meta.UpdateCount = updateCount
			f.Serviceability = prior.Serviceability
			f.ZoneOverrides = prior.ZoneOverrides
			f.Stats = prior.Stats
			summary = fmt.Sprintf("rollback to update %d (%s)", versionIndex, target.Timestamp.Format(time.RFC3339))
		}
	}

	f.AppendUpdate(UpdateEntry{
		Timestamp:     time.Now().UTC(),
		EditorID:      editorID,
		Reason:        "rollback",
		ChangeSummary: summary,
	})

	if err := m.store.Save(f); err != nil {
		return "", err
	}
	util.WithVendor(vendorID).WithField("operation", "rollback").Info(summary)
	return summary, nil
}

// computedCompliance is 1 − (Σ zone missing / Σ zone master) over the
// vendor's declared zones. NOT_SERVED zones are a deliberate opt-out and
// do not count against the score.
func (m *Manager) computedCompliance(f *File) float64 {
	sumMaster := 0
	sumMissing := 0
	for zone, cov := range f.Serviceability {
		if cov == nil || cov.Variant == VariantNotServed {
			continue
		}
		master := m.mpc.PincodesOfZone(zone)
		sumMaster += len(master)
		sumMissing += len(MissingPincodes(cov, master))
	}
	if sumMaster == 0 {
		return 1.0
	}
	return 1.0 - float64(sumMissing)/float64(sumMaster)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortedZones(f *File) []string {
	zones := make([]string, 0, len(f.Serviceability))
	for zone, cov := range f.Serviceability {
		if cov != nil {
			zones = append(zones, zone)
		}
	}
	sort.Strings(zones)
	return zones
}

func sortedKeys(files map[string]*File) []string {
	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
