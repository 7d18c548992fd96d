// Package pincode loads and indexes the master pincode catalog.
//
// The catalog is the source of truth for zone assignments: every pincode
// referenced by a vendor serviceability file must exist here. A loaded
// catalog is immutable for the life of the process; reloading produces a
// new instance.
package pincode

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/freightline-io/freightline/pkg/util"
)

// Entry is one master catalog record.
type Entry struct {
	Pincode int    `json:"pincode"`
	Zone    string `json:"zone"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
}

// Catalog is an immutable pincode → zone index built from the master file.
type Catalog struct {
	path    string
	entries map[int]Entry
	byZone  map[string][]int // sorted ascending per zone
	zones   []string         // sorted
}

// Load reads and indexes the master catalog file.
// Zones are uppercased on load; duplicate pincodes are rejected.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, util.NewCatalogError("pincode-master", path, err)
	}

	var raw []Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, util.NewCatalogError("pincode-master", path, fmt.Errorf("parsing: %w", err))
	}

	c := &Catalog{
		path:    path,
		entries: make(map[int]Entry, len(raw)),
		byZone:  make(map[string][]int),
	}

	v := &util.ValidationBuilder{}
	for _, e := range raw {
		if e.Pincode <= 0 {
			v.AddErrorf("invalid pincode %d", e.Pincode)
			continue
		}
		e.Zone = strings.ToUpper(strings.TrimSpace(e.Zone))
		if e.Zone == "" {
			v.AddErrorf("pincode %d has no zone", e.Pincode)
			continue
		}
		if _, dup := c.entries[e.Pincode]; dup {
			v.AddErrorf("duplicate pincode %d", e.Pincode)
			continue
		}
		c.entries[e.Pincode] = e
		c.byZone[e.Zone] = append(c.byZone[e.Zone], e.Pincode)
	}
	if v.HasErrors() {
		return nil, v.Build()
	}

	for zone := range c.byZone {
		sort.Ints(c.byZone[zone])
		c.zones = append(c.zones, zone)
	}
	sort.Strings(c.zones)

	util.WithOperation("mpc-load").Infof("loaded %d pincodes across %d zones from %s", len(c.entries), len(c.zones), path)
	return c, nil
}

// ZoneOf returns the zone for a pincode, or false if the pincode is
// absent from the master catalog.
func (c *Catalog) ZoneOf(pin int) (string, bool) {
	e, ok := c.entries[pin]
	return e.Zone, ok
}

// Lookup returns the full entry for a pincode.
func (c *Catalog) Lookup(pin int) (Entry, bool) {
	e, ok := c.entries[pin]
	return e, ok
}

// Contains reports whether the pincode exists in the master catalog.
func (c *Catalog) Contains(pin int) bool {
	_, ok := c.entries[pin]
	return ok
}

// PincodesOfZone returns the ordered pincodes of a zone. The returned
// slice is shared; callers must not modify it.
func (c *Catalog) PincodesOfZone(zone string) []int {
	return c.byZone[strings.ToUpper(strings.TrimSpace(zone))]
}

// Zones returns all distinct zone codes, sorted.
func (c *Catalog) Zones() []string {
	return c.zones
}

// Size returns the number of pincodes in the catalog.
func (c *Catalog) Size() int {
	return len(c.entries)
}

// Path returns the file the catalog was loaded from.
func (c *Catalog) Path() string {
	return c.path
}
