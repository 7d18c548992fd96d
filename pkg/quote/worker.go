package quote

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/freightline-io/freightline/pkg/model"
	"github.com/freightline-io/freightline/pkg/pricing"
	"github.com/freightline-io/freightline/pkg/util"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 4

// Pool is a fixed set of calculator workers fed over a channel. A worker
// never lets a failure escape the batch boundary: per-vendor errors and
// panics become error rows in the response.
type Pool struct {
	workers int
	jobs    chan job

	closeOnce sync.Once
	wg        sync.WaitGroup
}

type job struct {
	req *BatchRequest
	out chan<- *BatchResponse
}

// NewPool starts a pool of n workers; n <= 0 falls back to
// DefaultWorkers.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = DefaultWorkers
	}
	p := &Pool{
		workers: n,
		jobs:    make(chan job),
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Submit queues one batch; the response arrives on out.
func (p *Pool) Submit(req *BatchRequest, out chan<- *BatchResponse) {
	p.jobs <- job{req: req, out: out}
}

// Close stops the workers after the queued batches drain.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}

func (p *Pool) run() {
	defer p.wg.Done()
	for j := range p.jobs {
		j.out <- RunBatch(j.req)
	}
}

// RunBatch computes quotes for one vendor batch. Rows preserve input
// order. Pricing misses drop the vendor silently; any other failure
// becomes an error row counted into the stats.
func RunBatch(req *BatchRequest) *BatchResponse {
	started := time.Now()
	resp := &BatchResponse{}

	for _, v := range req.Vendors {
		resp.Stats.VendorsProcessed++

		q, err := calculateSafe(v, req.Context)
		if err != nil {
			if errors.Is(err, util.ErrPricingMiss) {
				util.WithVendor(v.ID).Debugf("pricing miss: %v", err)
				continue
			}
			resp.Stats.Errors++
			resp.Results = append(resp.Results, &Result{
				Error:        true,
				VendorName:   v.CompanyName,
				ErrorMessage: err.Error(),
			})
			continue
		}

		resp.Stats.ValidResults++
		resp.Results = append(resp.Results, &Result{Quote: q})
	}

	resp.Stats.Duration = time.Since(started)
	return resp
}

func calculateSafe(v *model.Vendor, ctx *model.RouteContext) (q *model.Quote, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &util.WorkerError{VendorName: v.CompanyName, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return pricing.Calculate(v, ctx)
}
