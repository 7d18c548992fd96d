package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/freightline-io/freightline/pkg/catalog"
	"github.com/freightline-io/freightline/pkg/model"
	"github.com/freightline-io/freightline/pkg/util"
)

// DefaultBatchMin is the smallest batch worth dispatching to a worker;
// fewer candidates than this per worker and the fan-out narrows.
const DefaultBatchMin = 8

// DefaultTimeout bounds one quote request.
const DefaultTimeout = 10 * time.Second

// CandidateSource resolves a route to its candidate vendors. Satisfied
// by *catalog.Catalog.
type CandidateSource interface {
	Candidates(ctx context.Context, from, to int) (*catalog.RouteVendors, error)
}

// BatchPool accepts quote batches for asynchronous computation.
// Satisfied by *Pool.
type BatchPool interface {
	Workers() int
	Submit(req *BatchRequest, out chan<- *BatchResponse)
}

// Request is one freight quote request.
type Request struct {
	From         int                  `json:"from"`
	To           int                  `json:"to"`
	ActualWeight float64              `json:"actualWeight"`
	Shipment     []model.ShipmentItem `json:"shipment_details,omitempty"`
	Legacy       *model.LegacyDims    `json:"legacyParams,omitempty"`
	InvoiceValue float64              `json:"invoiceValue,omitempty"`
	CustomerID   string               `json:"customerID,omitempty"`
	DistanceKm   float64              `json:"distanceKm,omitempty"`
	EstTime      string               `json:"estTime,omitempty"`
}

// Response is the assembled, ranked quote list. Hidden vendors are
// computed but kept out of Quotes; callers that want them read Hidden.
type Response struct {
	Quotes []*model.Quote `json:"quotes"`
	Hidden []*model.Quote `json:"hidden,omitempty"`
	Errors []*Result      `json:"errors,omitempty"`
	Stats  BatchStats     `json:"stats"`

	// Note carries a diagnostic for empty or partial results.
	Note string `json:"note,omitempty"`
}

// Dispatcher partitions candidates into batches, fans them out to the
// worker pool, and assembles the ranked response under a per-request
// deadline.
type Dispatcher struct {
	source   CandidateSource
	pool     BatchPool
	batchMin int
	timeout  time.Duration
}

// NewDispatcher creates a dispatcher. Zero batchMin and timeout take the
// defaults.
func NewDispatcher(source CandidateSource, pool BatchPool, batchMin int, timeout time.Duration) *Dispatcher {
	if batchMin <= 0 {
		batchMin = DefaultBatchMin
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{source: source, pool: pool, batchMin: batchMin, timeout: timeout}
}

// Quote runs one request end to end. An empty candidate set is not an
// error: the response carries an empty list and a diagnostic note. On
// deadline expiry, completed batches are returned if any quote exists,
// else the request fails with util.ErrTimeout.
func (d *Dispatcher) Quote(ctx context.Context, req *Request) (*Response, error) {
	if req.ActualWeight < 0 {
		return nil, util.NewInputError("actualWeight", "must not be negative")
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	route, err := d.source.Candidates(ctx, req.From, req.To)
	if err != nil {
		return nil, err
	}
	if len(route.Vendors) == 0 {
		util.WithRoute(req.From, req.To).Info("no vendor serves this route")
		return &Response{Quotes: []*model.Quote{}, Note: "no vendor serves this route"}, nil
	}

	rctx := &model.RouteContext{
		FromPincode:  req.From,
		ToPincode:    req.To,
		FromZone:     route.FromZone,
		ToZone:       route.ToZone,
		DistanceKm:   req.DistanceKm,
		EstTime:      req.EstTime,
		ActualWeight: req.ActualWeight,
		Shipment:     req.Shipment,
		Legacy:       req.Legacy,
		InvoiceValue: req.InvoiceValue,
		CustomerID:   req.CustomerID,
	}

	batches := partition(route.Vendors, d.pool.Workers(), d.batchMin)

	// Buffered so abandoned batches never block a worker after expiry;
	// late responses are discarded on arrival by the garbage collector.
	out := make(chan *BatchResponse, len(batches))
	for _, batch := range batches {
		d.pool.Submit(&BatchRequest{Vendors: batch, Context: rctx}, out)
	}

	resp := &Response{}
	received := 0
	timedOut := false

collect:
	for received < len(batches) {
		select {
		case br := <-out:
			received++
			resp.Stats.VendorsProcessed += br.Stats.VendorsProcessed
			resp.Stats.ValidResults += br.Stats.ValidResults
			resp.Stats.Errors += br.Stats.Errors
			if br.Stats.Duration > resp.Stats.Duration {
				resp.Stats.Duration = br.Stats.Duration
			}
			for _, r := range br.Results {
				if r.Error {
					resp.Errors = append(resp.Errors, r)
					continue
				}
				if r.Quote.IsHidden {
					resp.Hidden = append(resp.Hidden, r.Quote)
					continue
				}
				resp.Quotes = append(resp.Quotes, r.Quote)
			}
		case <-ctx.Done():
			timedOut = true
			break collect
		}
	}

	if timedOut && len(resp.Quotes) == 0 {
		return nil, fmt.Errorf("quote %d->%d: %d/%d batches completed: %w",
			req.From, req.To, received, len(batches), util.ErrTimeout)
	}

	Rank(resp.Quotes)
	AnnotateTiers(resp.Quotes)
	Rank(resp.Hidden)

	if timedOut {
		resp.Note = fmt.Sprintf("partial results: %d/%d batches completed before deadline", received, len(batches))
		util.WithRoute(req.From, req.To).Warn(resp.Note)
	}
	if resp.Quotes == nil {
		resp.Quotes = []*model.Quote{}
	}
	return resp, nil
}

// partition splits candidates into W near-equal batches preserving
// order, where W = min(workers, ceil(n/batchMin)).
func partition(vendors []*model.Vendor, workers, batchMin int) [][]*model.Vendor {
	n := len(vendors)
	w := (n + batchMin - 1) / batchMin
	if w > workers {
		w = workers
	}
	if w < 1 {
		w = 1
	}

	batches := make([][]*model.Vendor, 0, w)
	base := n / w
	extra := n % w
	start := 0
	for i := 0; i < w; i++ {
		size := base
		if i < extra {
			size++
		}
		batches = append(batches, vendors[start:start+size])
		start += size
	}
	return batches
}
