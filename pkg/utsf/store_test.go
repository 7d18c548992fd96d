package utsf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freightline-io/freightline/pkg/util"
)

func testFile(id string) *File {
	return &File{
		Meta: Meta{ID: id, CompanyName: id, Version: CurrentVersion, IntegrityMode: ModeStrict},
		Serviceability: map[string]*ZoneCoverage{
			"N1": FullZone(),
			"S2": OnlyServed([]Range{{S: 560001, E: 560005}}, nil),
		},
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Save(testFile("fasttrack")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := store.LoadVendor("fasttrack")
	if err != nil {
		t.Fatalf("LoadVendor() failed: %v", err)
	}
	if loaded.Meta.ID != "fasttrack" || loaded.Meta.Version != CurrentVersion {
		t.Errorf("meta mismatch: %+v", loaded.Meta)
	}
	if loaded.Serviceability["N1"].Variant != VariantFullZone {
		t.Errorf("N1 variant = %q", loaded.Serviceability["N1"].Variant)
	}
	if loaded.Serviceability["S2"].ServedRanges[0] != (Range{S: 560001, E: 560005}) {
		t.Errorf("S2 ranges = %v", loaded.Serviceability["S2"].ServedRanges)
	}
}

func TestLoadVendorNotFound(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.LoadVendor("ghost")
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoadFileNormalizesZones(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v1.json")
	doc := `{
		"meta": {"id": "v1", "integrityMode": "STRICT"},
		"serviceability": {"n1": {"variant": "FULL_ZONE"}},
		"zoneOverrides": {"110099": "n1"}
	}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if _, ok := f.Serviceability["N1"]; !ok {
		t.Errorf("zone key not uppercased: %v", f.Serviceability)
	}
	if f.ZoneOverrides["110099"] != "N1" {
		t.Errorf("override value not uppercased: %v", f.ZoneOverrides)
	}
}

func TestStoreLoadSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.Save(testFile("good")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := store.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("loaded %d files, want 1", len(files))
	}
	if _, ok := files["good"]; !ok {
		t.Error("good file missing from load")
	}
}

func TestWriteFileAtomicLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v1.json")

	if err := WriteFileAtomic(path, testFile("v1")); err != nil {
		t.Fatalf("WriteFileAtomic() failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory has %v, want only v1.json", names)
	}
}

func TestVendorIDsSorted(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, id := range []string{"zephyr", "alpha", "mid"} {
		if err := store.Save(testFile(id)); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := store.VendorIDs()
	if err != nil {
		t.Fatalf("VendorIDs() failed: %v", err)
	}
	want := "alpha,mid,zephyr"
	if got := strings.Join(ids, ","); got != want {
		t.Errorf("ids = %s, want %s", got, want)
	}
}
