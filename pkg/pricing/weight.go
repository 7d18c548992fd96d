package pricing

import (
	"math"

	"github.com/freightline-io/freightline/pkg/model"
)

// Volumetric computes the volumetric weight of a shipment. Itemized
// shipment lines take per-line ceilings summed afterwards; the legacy
// single-box parameters take one ceiling, and only apply when all four
// are provided. No dimensions means zero.
func Volumetric(rate *model.PriceRate, ctx *model.RouteContext) float64 {
	k := rate.KFactorOrDefault()

	if len(ctx.Shipment) > 0 {
		total := 0.0
		for _, item := range ctx.Shipment {
			total += math.Ceil(item.Length * item.Width * item.Height * float64(item.Count) / k)
		}
		return total
	}

	if l := ctx.Legacy; l != nil && l.Length > 0 && l.Width > 0 && l.Height > 0 && l.NoOfBoxes > 0 {
		return math.Ceil(l.Length * l.Width * l.Height * float64(l.NoOfBoxes) / k)
	}

	return 0
}

// Chargeable is the billed weight: the greater of volumetric and actual.
func Chargeable(volumetric, actual float64) float64 {
	return math.Max(volumetric, actual)
}
