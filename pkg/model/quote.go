package model

// ShipmentItem is one line of an itemized shipment.
type ShipmentItem struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Count  int     `json:"count"`
}

// LegacyDims carries the single-box dimension parameters accepted for
// backward compatibility. All four must be set to take effect.
type LegacyDims struct {
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	NoOfBoxes int     `json:"noofboxes"`
}

// RouteContext is the immutable per-request context passed to every
// calculator worker alongside its vendor batch.
type RouteContext struct {
	FromPincode  int            `json:"fromPincode"`
	ToPincode    int            `json:"toPincode"`
	FromZone     string         `json:"fromZone"`
	ToZone       string         `json:"toZone"`
	DistanceKm   float64        `json:"distanceKm,omitempty"`
	EstTime      string         `json:"estTime,omitempty"`
	ActualWeight float64        `json:"actualWeight"`
	Shipment     []ShipmentItem `json:"shipment_details,omitempty"`
	Legacy       *LegacyDims    `json:"legacyParams,omitempty"`
	InvoiceValue float64        `json:"invoiceValue"`
	CustomerID   string         `json:"customerID,omitempty"`
}

// Quote is one vendor's fully itemized price for a route.
// Monetary fields are integers (rounded); weights carry two decimals.
type Quote struct {
	VendorID    string  `json:"vendorId"`
	CompanyName string  `json:"companyName"`
	VendorType  string  `json:"vendorType"`
	UnitPrice   float64 `json:"unitPrice"`

	ActualWeight     float64 `json:"actualWeight"`
	VolumetricWeight float64 `json:"volumetricWeight"`
	ChargeableWeight float64 `json:"chargeableWeight"`

	BaseFreight          int `json:"baseFreight"`
	EffectiveBaseFreight int `json:"effectiveBaseFreight"`
	FuelCharges          int `json:"fuelCharges"`
	ROVCharges           int `json:"rovCharges"`
	InsuranceCharges     int `json:"insuranceCharges"`
	ODACharges           int `json:"odaCharges"`
	HandlingCharges      int `json:"handlingCharges"`
	FMCharges            int `json:"fmCharges"`
	AppointmentCharges   int `json:"appointmentCharges"`
	DocketCharges        int `json:"docketCharges"`
	GreenTax             int `json:"greenTax"`
	DaccCharges          int `json:"daccCharges"`
	MiscCharges          int `json:"miscCharges"`
	InvoiceAddon         int `json:"invoiceAddon"`
	Total                int `json:"total"`

	OriginZone string `json:"originZone"`
	DestZone   string `json:"destZone"`
	DestIsOda  bool   `json:"destIsOda"`
	EstTime    string `json:"estTime,omitempty"`
	DistanceKm float64 `json:"distanceKm,omitempty"`

	IsTiedUp   bool    `json:"isTiedUp"`
	IsHidden   bool    `json:"isHidden"`
	IsVerified bool    `json:"isVerified"`
	Rating     float64 `json:"rating"`
	Phone      string  `json:"phone,omitempty"`
	Email      string  `json:"email,omitempty"`

	// Tier is assigned during result assembly: "best-value" for the
	// cheapest quote, "top-rated" for the highest-rated, else "standard".
	Tier string `json:"tier,omitempty"`
}
