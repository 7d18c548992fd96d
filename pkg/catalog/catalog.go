package catalog

import (
	"context"
	"strconv"

	"github.com/freightline-io/freightline/pkg/model"
	"github.com/freightline-io/freightline/pkg/util"
	"github.com/freightline-io/freightline/pkg/utsf"
)

// RouteVendors is the resolved candidate set for one route.
type RouteVendors struct {
	FromZone string
	ToZone   string
	Vendors  []*model.Vendor
}

// Catalog filters the vendor store down to the vendors that can serve a
// route and resolves per-vendor effective zones.
type Catalog struct {
	store VendorStore
	svc   *utsf.Service
}

// New creates a catalog over a vendor store and the serviceability
// service.
func New(store VendorStore, svc *utsf.Service) *Catalog {
	return &Catalog{store: store, svc: svc}
}

// Candidates returns the vendors serving both endpoints of the route,
// each with its effective origin/destination zones and ODA flag
// resolved. Vendors without a resolvable zone pair are dropped.
func (c *Catalog) Candidates(ctx context.Context, from, to int) (*RouteVendors, error) {
	if err := validatePincode("from", from); err != nil {
		return nil, err
	}
	if err := validatePincode("to", to); err != nil {
		return nil, err
	}

	snap := c.svc.Snapshot()
	fromZone, _ := snap.MPC.ZoneOf(from)
	toZone, _ := snap.MPC.ZoneOf(to)

	vendors, err := c.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	route := &RouteVendors{FromZone: fromZone, ToZone: toZone}
	for _, v := range vendors {
		if !snap.IsServiceable(v.ID, from) || !snap.IsServiceable(v.ID, to) {
			continue
		}

		originZone, ok := snap.EffectiveZone(v.ID, from)
		if !ok {
			originZone = fromZone
		}
		destZone, ok := snap.EffectiveZone(v.ID, to)
		if !ok {
			destZone = toZone
		}
		if originZone == "" || destZone == "" {
			util.WithVendor(v.ID).Debugf("dropping vendor: unresolvable zones for %d->%d", from, to)
			continue
		}

		v.OriginZone = originZone
		v.DestZone = destZone
		if settings, has := v.ZoneConfig[destZone]; has {
			v.DestIsOda = settings.IsOda
		}
		route.Vendors = append(route.Vendors, v)
	}

	util.WithRoute(from, to).Debugf("%d/%d vendors serviceable", len(route.Vendors), len(vendors))
	return route, nil
}

func validatePincode(field string, pin int) error {
	if s := strconv.Itoa(pin); len(s) != 6 {
		return util.NewInputError(field, "must be a 6-digit pincode")
	}
	return nil
}
