package pricing

import (
	"fmt"
	"math"

	"github.com/freightline-io/freightline/pkg/model"
	"github.com/freightline-io/freightline/pkg/util"
)

// Calculate computes one vendor's itemized quote for a route. It is
// pure: the same vendor and context always produce the same result,
// regardless of which worker runs it. A pricing miss (no chart, no rate
// for the zone pair) returns util.ErrPricingMiss and the vendor is
// dropped from the result set, never reported as zero.
func Calculate(v *model.Vendor, ctx *model.RouteContext) (*model.Quote, error) {
	chart, rate, ivc, err := pricingSource(v)
	if err != nil {
		return nil, err
	}
	if len(chart) == 0 {
		return nil, fmt.Errorf("vendor %s has an empty price chart: %w", v.ID, util.ErrPricingMiss)
	}

	// Effective zones: the vendor record first, request zones fallback.
	originZone := firstNonEmpty(v.OriginZone, ctx.FromZone)
	destZone := firstNonEmpty(v.DestZone, ctx.ToZone)

	unitPrice, ok := UnitRate(chart, originZone, destZone)
	if !ok {
		return nil, fmt.Errorf("vendor %s has no rate for %s->%s: %w", v.ID, originZone, destZone, util.ErrPricingMiss)
	}

	volumetric := Volumetric(rate, ctx)
	chargeable := Chargeable(volumetric, ctx.ActualWeight)

	baseFreight := unitPrice * chargeable
	fuelCharges := rate.Fuel / 100 * baseFreight

	rovCharges := pairMax(rate.ROVCharges, baseFreight)
	insuranceCharges := pairMax(rate.InsuaranceCharges, baseFreight)
	fmCharges := pairMax(rate.FMCharges, baseFreight)
	appointmentCharges := pairMax(rate.AppointmentCharges, baseFreight)

	odaCharges := 0.0
	if v.DestIsOda {
		odaCharges = rate.ODACharges.Fixed + chargeable*rate.ODACharges.Variable/100
	}

	// Handling is the sum of both parts, not the max.
	handlingCharges := rate.HandlingCharges.Fixed + chargeable*rate.HandlingCharges.Variable/100

	// minCharges floors the base freight only, never the total.
	effectiveBase := math.Max(baseFreight, rate.MinCharges)

	subtotal := effectiveBase +
		rate.DocketCharges + rate.GreenTax + rate.DaccCharges + rate.MiscellanousCharges +
		fuelCharges + rovCharges + insuranceCharges + odaCharges +
		handlingCharges + fmCharges + appointmentCharges

	invoiceAddon := 0.0
	if ivc != nil && ivc.Enabled && ctx.InvoiceValue > 0 {
		invoiceAddon = math.Round(math.Max(ctx.InvoiceValue*ivc.Percentage/100, ivc.MinimumAmount))
	}

	total := math.Round(subtotal + invoiceAddon)

	return &model.Quote{
		VendorID:    v.ID,
		CompanyName: v.CompanyName,
		VendorType:  v.Type,
		UnitPrice:   unitPrice,

		ActualWeight:     round2(ctx.ActualWeight),
		VolumetricWeight: round2(volumetric),
		ChargeableWeight: round2(chargeable),

		BaseFreight:          roundMoney(baseFreight),
		EffectiveBaseFreight: roundMoney(effectiveBase),
		FuelCharges:          roundMoney(fuelCharges),
		ROVCharges:           roundMoney(rovCharges),
		InsuranceCharges:     roundMoney(insuranceCharges),
		ODACharges:           roundMoney(odaCharges),
		HandlingCharges:      roundMoney(handlingCharges),
		FMCharges:            roundMoney(fmCharges),
		AppointmentCharges:   roundMoney(appointmentCharges),
		DocketCharges:        roundMoney(rate.DocketCharges),
		GreenTax:             roundMoney(rate.GreenTax),
		DaccCharges:          roundMoney(rate.DaccCharges),
		MiscCharges:          roundMoney(rate.MiscellanousCharges),
		InvoiceAddon:         int(invoiceAddon),
		Total:                int(total),

		OriginZone: originZone,
		DestZone:   destZone,
		DestIsOda:  v.DestIsOda,
		EstTime:    ctx.EstTime,
		DistanceKm: ctx.DistanceKm,

		IsTiedUp:   v.Type == model.VendorTiedUp && v.CustomerID != "" && v.CustomerID == ctx.CustomerID,
		IsHidden:   v.IsHidden,
		IsVerified: v.IsVerified,
		Rating:     v.Rating,
		Phone:      v.Phone,
		Email:      v.Email,
	}, nil
}

// pricingSource selects the pricing bundle by vendor type: tied-up
// vendors use prices + the top-level invoiceValueCharges, public vendors
// use priceData.
func pricingSource(v *model.Vendor) (model.PriceChart, *model.PriceRate, *model.InvoiceValueCharges, error) {
	switch v.Type {
	case model.VendorTiedUp:
		if v.Prices == nil {
			return nil, nil, nil, fmt.Errorf("tied-up vendor %s has no prices: %w", v.ID, util.ErrPricingMiss)
		}
		return v.Prices.PriceChart, &v.Prices.PriceRate, v.InvoiceValueCharges, nil
	case model.VendorPublic:
		if v.PriceData == nil {
			return nil, nil, nil, fmt.Errorf("public vendor %s has no priceData: %w", v.ID, util.ErrPricingMiss)
		}
		return v.PriceData.ZoneRates, &v.PriceData.PriceRate, v.PriceData.InvoiceValueCharges, nil
	default:
		return nil, nil, nil, fmt.Errorf("vendor %s has unknown type %q: %w", v.ID, v.Type, util.ErrPricingMiss)
	}
}

// pairMax applies a {fixed, variable%} component: the greater of the
// percentage of base freight and the fixed floor.
func pairMax(p model.ChargePair, baseFreight float64) float64 {
	return math.Max(p.Variable/100*baseFreight, p.Fixed)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func roundMoney(v float64) int {
	return int(math.Round(v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
