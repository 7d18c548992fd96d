// Package pricing implements the deterministic per-vendor quote
// computation: zone-pair unit rate lookup, dimensional weighting, and
// the itemized charge breakdown.
package pricing

import (
	"strings"

	"github.com/freightline-io/freightline/pkg/model"
)

// UnitRate resolves the per-kg rate for a zone pair. Both orientations
// are accepted and the lookup is case-insensitive: a miss on the
// normalized keys falls back to scanning the top-level keys, trying both
// orientations against the normalized and raw destination forms. A miss
// means the vendor cannot price the route.
func UnitRate(chart model.PriceChart, origin, dest string) (float64, bool) {
	o := normalizeZone(origin)
	d := normalizeZone(dest)
	if o == "" || d == "" {
		return 0, false
	}

	if v, ok := direct(chart, o, d); ok {
		return v, true
	}
	if v, ok := direct(chart, d, o); ok {
		return v, true
	}

	for key, inner := range chart {
		ku := normalizeZone(key)
		var wanted []string
		switch ku {
		case o:
			wanted = []string{d, dest}
		case d:
			wanted = []string{o, origin}
		default:
			continue
		}
		for innerKey, rate := range inner {
			iku := normalizeZone(innerKey)
			for _, w := range wanted {
				if iku == normalizeZone(w) || innerKey == w {
					return rate, true
				}
			}
		}
	}
	return 0, false
}

func direct(chart model.PriceChart, a, b string) (float64, bool) {
	inner, ok := chart[a]
	if !ok {
		return 0, false
	}
	v, ok := inner[b]
	return v, ok
}

func normalizeZone(zone string) string {
	return strings.ToUpper(strings.TrimSpace(zone))
}
