package utsf

import (
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/freightline-io/freightline/pkg/pincode"
	"github.com/freightline-io/freightline/pkg/util"
)

// Service answers serviceability queries against an immutable snapshot
// of all vendor UTSF files plus the master pincode catalog. Reload swaps
// the snapshot atomically; readers holding the prior snapshot finish on
// it. Mutators (the Manager) write new files and trigger a reload, never
// in-place edits observable to readers.
type Service struct {
	snapshot atomic.Pointer[Snapshot]
}

// Snapshot is one immutable epoch of loaded serviceability data.
// Per-zone served sets are materialized lazily on first query and cached
// for the life of the snapshot.
type Snapshot struct {
	MPC     *pincode.Catalog
	dir     string
	vendors map[string]*vendorState
}

type vendorState struct {
	file *File

	mu        sync.Mutex
	zoneCache map[string]map[int]struct{}
}

// NewService loads the UTSF directory and master catalog into the first
// snapshot.
func NewService(dir, mpcPath string) (*Service, error) {
	snap, err := loadSnapshot(dir, mpcPath)
	if err != nil {
		return nil, err
	}
	s := &Service{}
	s.snapshot.Store(snap)
	return s, nil
}

// Reload builds a fresh snapshot and swaps it in. On failure the prior
// snapshot stays active.
func (s *Service) Reload(dir, mpcPath string) error {
	snap, err := loadSnapshot(dir, mpcPath)
	if err != nil {
		util.WithOperation("utsf-reload").Errorf("reload failed, keeping last good snapshot: %v", err)
		return err
	}
	s.snapshot.Store(snap)
	util.WithOperation("utsf-reload").Infof("snapshot swapped: %d vendors", len(snap.vendors))
	return nil
}

// Snapshot returns the current epoch.
func (s *Service) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// IsServiceable reports whether the vendor serves the pincode.
func (s *Service) IsServiceable(vendorID string, pin int) bool {
	return s.Snapshot().IsServiceable(vendorID, pin)
}

func loadSnapshot(dir, mpcPath string) (*Snapshot, error) {
	mpc, err := pincode.Load(mpcPath)
	if err != nil {
		return nil, err
	}
	files, err := NewStore(dir).Load()
	if err != nil {
		return nil, err
	}

	vendors := make(map[string]*vendorState, len(files))
	for id, f := range files {
		vendors[id] = &vendorState{file: f}
	}
	return &Snapshot{MPC: mpc, dir: dir, vendors: vendors}, nil
}

// VendorIDs lists the vendors present in the snapshot, sorted.
func (sn *Snapshot) VendorIDs() []string {
	ids := make([]string, 0, len(sn.vendors))
	for id := range sn.vendors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// VendorFile returns the loaded UTSF document for a vendor. The returned
// file must not be mutated.
func (sn *Snapshot) VendorFile(vendorID string) (*File, bool) {
	vs, ok := sn.vendors[vendorID]
	if !ok {
		return nil, false
	}
	return vs.file, true
}

// EffectiveZone resolves the zone a pincode falls in under one vendor's
// view: the vendor's zoneOverrides first, then the master catalog.
// ok is false when neither source knows the pincode.
func (sn *Snapshot) EffectiveZone(vendorID string, pin int) (zone string, ok bool) {
	if vs, found := sn.vendors[vendorID]; found {
		if ov, has := vs.file.ZoneOverrides[strconv.Itoa(pin)]; has {
			return ov, true
		}
	}
	return sn.MPC.ZoneOf(pin)
}

// IsServiceable reports whether the vendor's applicable zone coverage
// contains the pincode, subject to strict-mode master presence, soft
// exclusions, and zone overrides.
func (sn *Snapshot) IsServiceable(vendorID string, pin int) bool {
	vs, ok := sn.vendors[vendorID]
	if !ok {
		return false
	}
	f := vs.file

	mpcZone, inMPC := sn.MPC.ZoneOf(pin)
	if f.Strict() && !inMPC {
		// Phantom pincode: never served under strict mode.
		util.WithVendor(vendorID).Debugf("strict block: pincode %d absent from master catalog", pin)
		return false
	}

	zone := mpcZone
	overridden := false
	if ov, has := f.ZoneOverrides[strconv.Itoa(pin)]; has {
		zone = ov
		overridden = true
	}
	if zone == "" {
		// Permissive mode with no master entry and no override: scan for
		// an explicit enumeration of the pincode.
		return sn.permissiveScan(vs, pin)
	}

	cov, covered := f.Serviceability[zone]
	if !covered || cov == nil {
		if overridden {
			// Override points at a zone the vendor does not cover.
			// Treated as not served rather than guessing.
			util.WithVendor(vendorID).Warnf("zone override maps %d to uncovered zone %s", pin, zone)
		}
		return false
	}

	// A soft block wins over nominal coverage until the control plane
	// auto-unblocks it.
	if cov.SoftExcluded(pin) {
		return false
	}

	memberOfZone := overridden || (inMPC && mpcZone == zone)
	if cov.Variant == VariantOnlyServed {
		if overridden {
			// An overridden pincode belongs to a different master zone,
			// so the per-zone cache would drop it. The strict presence
			// gate already ran; consult the enumeration directly.
			return cov.isListed(pin)
		}
		// ONLY_SERVED enumerations are authoritative but still capped by
		// the master list under strict mode (checked above). Use the
		// cached served set so repeated queries stay cheap.
		set := vs.servedSet(zone, sn.MPC, f.Strict())
		_, served := set[pin]
		return served
	}
	return cov.Contains(pin, memberOfZone)
}

// ServedPincodes enumerates the vendor's served pincodes for a zone, in
// ascending order. Soft exclusions are filtered out.
func (sn *Snapshot) ServedPincodes(vendorID, zone string) []int {
	vs, ok := sn.vendors[vendorID]
	if !ok {
		return nil
	}
	cov, covered := vs.file.Serviceability[zone]
	if !covered || cov == nil {
		return nil
	}
	set := vs.servedSet(zone, sn.MPC, vs.file.Strict())
	out := make([]int, 0, len(set))
	for p := range set {
		if !cov.SoftExcluded(p) {
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}

// servedSet returns the cached served set for a zone, materializing it
// on first use. Strict mode intersects with the master list; permissive
// ONLY_SERVED keeps its explicit enumeration as-is.
func (vs *vendorState) servedSet(zone string, mpc *pincode.Catalog, strict bool) map[int]struct{} {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if set, ok := vs.zoneCache[zone]; ok {
		return set
	}

	cov := vs.file.Serviceability[zone]
	var set map[int]struct{}
	if cov == nil {
		set = map[int]struct{}{}
	} else if !strict && cov.Variant == VariantOnlyServed {
		set = Expand(cov.ServedRanges, cov.ServedSingles)
	} else {
		set = ServedSet(cov, mpc.PincodesOfZone(zone))
	}

	if vs.zoneCache == nil {
		vs.zoneCache = make(map[string]map[int]struct{})
	}
	vs.zoneCache[zone] = set
	return set
}

func (sn *Snapshot) permissiveScan(vs *vendorState, pin int) bool {
	for _, cov := range vs.file.Serviceability {
		if cov == nil || cov.Variant != VariantOnlyServed {
			continue
		}
		if cov.SoftExcluded(pin) {
			return false
		}
		if cov.isListed(pin) {
			return true
		}
	}
	return false
}
