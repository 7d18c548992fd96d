package utsf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/freightline-io/freightline/pkg/util"
)

// Store reads and writes UTSF files in a directory, one JSON document
// per vendor named <vendorID>.json. All writes are atomic: a sibling
// temp file is written, fsynced, and renamed over the target.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for a vendor id.
func (s *Store) Path(vendorID string) string {
	return filepath.Join(s.dir, vendorID+".json")
}

// Load reads every UTSF file in the directory, keyed by vendor id.
// Files that fail to parse are skipped with a warning; a directory that
// cannot be read at all is a catalog error.
func (s *Store) Load() (map[string]*File, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, util.NewCatalogError("utsf", s.dir, err)
	}

	files := make(map[string]*File)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		f, err := LoadFile(path)
		if err != nil {
			util.WithOperation("utsf-load").Warnf("skipping %s: %v", entry.Name(), err)
			continue
		}
		if f.Meta.ID == "" {
			f.Meta.ID = strings.TrimSuffix(entry.Name(), ".json")
		}
		files[f.Meta.ID] = f
	}

	util.WithOperation("utsf-load").Infof("loaded %d vendor files from %s", len(files), s.dir)
	return files, nil
}

// LoadVendor reads one vendor's file. Returns util.ErrNotFound when the
// file does not exist.
func (s *Store) LoadVendor(vendorID string) (*File, error) {
	f, err := LoadFile(s.Path(vendorID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("vendor %s: %w", vendorID, util.ErrNotFound)
		}
		return nil, err
	}
	return f, nil
}

// Save writes a vendor file atomically.
func (s *Store) Save(f *File) error {
	if f.Meta.ID == "" {
		return util.NewInputError("meta.id", "is required")
	}
	return WriteFileAtomic(s.Path(f.Meta.ID), f)
}

// LoadFile parses a single UTSF document and normalizes zone keys to
// uppercase.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if f.Serviceability == nil {
		f.Serviceability = make(map[string]*ZoneCoverage)
	}
	normalized := make(map[string]*ZoneCoverage, len(f.Serviceability))
	for zone, cov := range f.Serviceability {
		normalized[strings.ToUpper(strings.TrimSpace(zone))] = cov
	}
	f.Serviceability = normalized

	for pin, zone := range f.ZoneOverrides {
		f.ZoneOverrides[pin] = strings.ToUpper(strings.TrimSpace(zone))
	}

	return &f, nil
}

// WriteFileAtomic serializes f and renames it over path via a sibling
// temp file, fsyncing before the rename.
func WriteFileAtomic(path string, f *File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	return nil
}

// VendorIDs lists the vendor ids present in the directory, sorted.
func (s *Store) VendorIDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, util.NewCatalogError("utsf", s.dir, err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
