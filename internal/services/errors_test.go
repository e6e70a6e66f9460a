package services_test

import (
	"errors"
	"strings"
	"testing"

	"brandforge/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "marketplace", "state", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"marketplace", "state", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "media", "poll", "gave up", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	if !services.IsRetryable(services.Wrap(services.ErrTimeout, "media", "poll", "cap exhausted", nil)) {
		t.Fatal("expected timeout to be retryable")
	}
	if services.IsRetryable(services.Wrap(services.ErrValidation, "gate", "initiate", "out of order", nil)) {
		t.Fatal("expected validation error to be non-retryable")
	}
	if services.IsRetryable(nil) {
		t.Fatal("expected nil to be non-retryable")
	}
}
