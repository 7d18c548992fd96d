// Package quote fans a route's candidate vendors out over a fixed pool
// of calculator workers and assembles the ranked result list.
package quote

import (
	"time"

	"github.com/freightline-io/freightline/pkg/model"
)

// BatchRequest is the immutable message a worker receives: a vendor
// batch plus the shared route context. Workers share no state with the
// dispatcher; everything they need travels in the message.
type BatchRequest struct {
	Vendors []*model.Vendor     `json:"vendors"`
	Context *model.RouteContext `json:"context"`
}

// Result is one row of a batch response: either a computed quote or a
// captured per-vendor failure.
type Result struct {
	Error        bool         `json:"error,omitempty"`
	VendorName   string       `json:"vendorName,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	Quote        *model.Quote `json:"quote,omitempty"`
}

// BatchStats summarizes one batch run.
type BatchStats struct {
	VendorsProcessed int           `json:"vendorsProcessed"`
	ValidResults     int           `json:"validResults"`
	Errors           int           `json:"errors"`
	Duration         time.Duration `json:"duration"`
}

// BatchResponse is the immutable message a worker returns. Rows preserve
// the batch's input order.
type BatchResponse struct {
	Results []*Result  `json:"results"`
	Stats   BatchStats `json:"stats"`
}
