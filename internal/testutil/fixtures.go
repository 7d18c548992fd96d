// Package testutil provides shared fixtures for freightline tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/freightline-io/freightline/pkg/model"
	"github.com/freightline-io/freightline/pkg/pincode"
	"github.com/freightline-io/freightline/pkg/utsf"
)

// MasterEntry mirrors the master catalog record shape for fixture files.
type MasterEntry struct {
	Pincode int    `json:"pincode"`
	Zone    string `json:"zone"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
}

// WriteMasterCatalog writes a master pincode catalog JSON file into a
// temp dir and returns its path.
func WriteMasterCatalog(t *testing.T, entries []MasterEntry) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pincodes.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		t.Fatalf("marshaling master catalog: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing master catalog: %v", err)
	}
	return path
}

// ZoneRange produces consecutive master entries pin..pin+n-1 in one zone.
func ZoneRange(zone string, start, n int) []MasterEntry {
	entries := make([]MasterEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, MasterEntry{Pincode: start + i, Zone: zone})
	}
	return entries
}

// LoadMaster writes and loads a master catalog in one step.
func LoadMaster(t *testing.T, entries []MasterEntry) *pincode.Catalog {
	t.Helper()

	mpc, err := pincode.Load(WriteMasterCatalog(t, entries))
	if err != nil {
		t.Fatalf("loading master catalog: %v", err)
	}
	return mpc
}

// WriteVendorFile writes one vendor serviceability file into dir.
func WriteVendorFile(t *testing.T, dir string, f *utsf.File) string {
	t.Helper()

	path := filepath.Join(dir, f.Meta.ID+".json")
	if err := utsf.WriteFileAtomic(path, f); err != nil {
		t.Fatalf("writing vendor file %s: %v", f.Meta.ID, err)
	}
	return path
}

// VendorFile builds a minimal current-format serviceability file.
func VendorFile(vendorID string, serviceability map[string]*utsf.ZoneCoverage) *utsf.File {
	return &utsf.File{
		Meta: utsf.Meta{
			ID:            vendorID,
			CompanyName:   vendorID,
			Version:       utsf.CurrentVersion,
			IntegrityMode: utsf.ModeStrict,
		},
		Serviceability: serviceability,
	}
}

// TiedUpVendor builds a tied-up vendor with a single-cell base chart and
// the given extras applied.
func TiedUpVendor(id, originZone, destZone string, rate float64, mutate func(*model.Vendor)) *model.Vendor {
	v := &model.Vendor{
		ID:          id,
		CompanyName: id,
		Type:        "tied-up",
		Rating:      4.0,
		Prices: &model.PriceSet{
			PriceChart: model.PriceChart{
				originZone: {destZone: rate},
			},
		},
		OriginZone: originZone,
		DestZone:   destZone,
	}
	if mutate != nil {
		mutate(v)
	}
	return v
}
