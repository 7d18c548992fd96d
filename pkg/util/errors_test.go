package util

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"input", NewInputError("from", "must be a 6-digit pincode"), ErrInput},
		{"catalog", NewCatalogError("pincode-master", "/data/pins.json", errors.New("no such file")), ErrCatalog},
		{"worker", &WorkerError{VendorName: "FastTrack", Err: errors.New("panic: boom")}, ErrWorker},
		{"integrity", &IntegrityError{VendorID: "v1", Pincode: 800032, Zone: "E1"}, ErrIntegrity},
		{"validation", NewValidationError("meta.id is required"), ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%v does not unwrap to %v", tt.err, tt.sentinel)
			}
		})
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("quote 110001->560001: %w", ErrTimeout)
	if !errors.Is(err, ErrTimeout) {
		t.Error("wrapped sentinel lost")
	}
}

func TestInputErrorMessageIsStable(t *testing.T) {
	err := NewInputError("actualWeight", "must not be negative")
	want := `invalid input: field "actualWeight" must not be negative`
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestValidationBuilder(t *testing.T) {
	v := &ValidationBuilder{}
	v.Add(true, "should not appear")
	v.Add(false, "first failure")
	v.AddErrorf("second failure: %d", 42)

	if !v.HasErrors() {
		t.Fatal("HasErrors() = false")
	}

	err := v.Build()
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Build() = %v, want ErrValidationFailed", err)
	}
	msg := err.Error()
	for _, want := range []string{"first failure", "second failure: 42"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
	if strings.Contains(msg, "should not appear") {
		t.Errorf("passing condition leaked into %q", msg)
	}
}

func TestValidationBuilderCleanBuild(t *testing.T) {
	v := &ValidationBuilder{}
	v.Add(true, "fine")
	if err := v.Build(); err != nil {
		t.Errorf("Build() with no failures = %v", err)
	}
}
