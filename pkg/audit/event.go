// Package audit provides the operations trail for control-plane changes
// to vendor serviceability files.
package audit

import (
	"fmt"
	"time"
)

// Event records one control-plane operation against a vendor file.
type Event struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Editor        string        `json:"editor"`
	Vendor        string        `json:"vendor"`
	Operation     string        `json:"operation"`
	ChangeSummary string        `json:"changeSummary,omitempty"`
	Unblocked     int           `json:"unblocked,omitempty"`
	Success       bool          `json:"success"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// Operation names
const (
	OpRepair    = "repair"
	OpRepairAll = "repair-all"
	OpRollback  = "rollback"
	OpAudit     = "audit"
)

// Filter defines criteria for querying audit events
type Filter struct {
	Vendor      string
	Editor      string
	Operation   string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(editor, vendor, operation string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		Editor:    editor,
		Vendor:    vendor,
		Operation: operation,
	}
}

// WithChangeSummary sets the change summary
func (e *Event) WithChangeSummary(summary string) *Event {
	e.ChangeSummary = summary
	return e
}

// WithUnblocked sets the count of auto-unblocked soft exclusions
func (e *Event) WithUnblocked(n int) *Event {
	e.Unblocked = n
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
