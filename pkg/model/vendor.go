// Package model defines the shared domain types exchanged between the
// vendor catalog, the price calculator, and the quote dispatcher.
package model

// Vendor types
const (
	VendorTiedUp = "tied-up"
	VendorPublic = "public"
)

// Vendor is the read-only per-request view of a transporter, enriched
// with pricing tables and the origin/destination zones resolved under
// this vendor's serviceability view.
type Vendor struct {
	ID          string `json:"_id"`
	CompanyName string `json:"companyName"`
	Type        string `json:"type"` // tied-up or public

	// Pricing source: tied-up vendors carry Prices + top-level
	// InvoiceValueCharges, public vendors carry PriceData.
	Prices              *PriceSet            `json:"prices,omitempty"`
	PriceData           *PriceData           `json:"priceData,omitempty"`
	InvoiceValueCharges *InvoiceValueCharges `json:"invoiceValueCharges,omitempty"`

	// Route view resolved by the catalog for the current request.
	OriginZone string `json:"effectiveOriginZone,omitempty"`
	DestZone   string `json:"effectiveDestZone,omitempty"`
	DestIsOda  bool   `json:"destIsOda,omitempty"`

	IsHidden       bool    `json:"isHidden,omitempty"`
	ApprovalStatus string  `json:"approvalStatus,omitempty"`
	IsVerified     bool    `json:"isVerified,omitempty"`
	Rating         float64 `json:"rating,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	Email          string  `json:"email,omitempty"`

	SelectedZones       []string                `json:"selectedZones,omitempty"`
	ZoneConfig          map[string]ZoneSettings `json:"zoneConfig,omitempty"`
	CustomerID          string                  `json:"customerID,omitempty"`
	ServicePincodeCount int                     `json:"servicePincodeCount,omitempty"`
}

// ZoneSettings carries per-zone vendor options.
type ZoneSettings struct {
	IsOda bool `json:"isOda,omitempty"`
}

// PriceSet is the tied-up vendor pricing bundle.
type PriceSet struct {
	PriceChart PriceChart `json:"priceChart"`
	PriceRate  PriceRate  `json:"priceRate"`
}

// PriceData is the public vendor pricing bundle.
type PriceData struct {
	ZoneRates           PriceChart           `json:"zoneRates"`
	PriceRate           PriceRate            `json:"priceRate"`
	InvoiceValueCharges *InvoiceValueCharges `json:"invoiceValueCharges,omitempty"`
}

// PriceChart maps origin zone → destination zone → per-kg unit rate.
// Lookup is case-insensitive and accepts both orientations.
type PriceChart map[string]map[string]float64

// ChargePair is a {fixed, variable%} rate component.
type ChargePair struct {
	Fixed    float64 `json:"fixed"`
	Variable float64 `json:"variable"`
}

// PriceRate is the flat bag of numeric rate parameters for one vendor.
// Field spellings follow the wire format of the upstream pricing tables.
type PriceRate struct {
	KFactor             float64 `json:"kFactor,omitempty"`
	Divisor             float64 `json:"divisor,omitempty"` // legacy alias for kFactor
	DocketCharges       float64 `json:"docketCharges,omitempty"`
	MinCharges          float64 `json:"minCharges,omitempty"`
	GreenTax            float64 `json:"greenTax,omitempty"`
	DaccCharges         float64 `json:"daccCharges,omitempty"`
	MiscellanousCharges float64 `json:"miscellanousCharges,omitempty"`
	Fuel                float64 `json:"fuel,omitempty"` // percent of base freight

	ROVCharges         ChargePair `json:"rovCharges,omitempty"`
	InsuaranceCharges  ChargePair `json:"insuaranceCharges,omitempty"`
	ODACharges         ChargePair `json:"odaCharges,omitempty"`
	HandlingCharges    ChargePair `json:"handlingCharges,omitempty"`
	FMCharges          ChargePair `json:"fmCharges,omitempty"`
	AppointmentCharges ChargePair `json:"appointmentCharges,omitempty"`
}

// InvoiceValueCharges is the optional invoice-value add-on.
type InvoiceValueCharges struct {
	Enabled       bool    `json:"enabled"`
	Percentage    float64 `json:"percentage"`
	MinimumAmount float64 `json:"minimumAmount"`
}

// KFactorOrDefault resolves the volumetric divisor: kFactor, then the
// legacy divisor field, then 5000. Zero is treated as unset.
func (r *PriceRate) KFactorOrDefault() float64 {
	if r.KFactor > 0 {
		return r.KFactor
	}
	if r.Divisor > 0 {
		return r.Divisor
	}
	return 5000
}
