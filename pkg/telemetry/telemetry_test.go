package telemetry

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid log level")
	}

	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid log format")
	}
}

func TestObserveOperation(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: true, Namespace: "test"})
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	m.ObserveOperation("users", "add", nil, 0.001)
	m.ObserveOperation("users", "add", errors.New("boom"), 0.002)
	m.ObserveOperation("users", "get", nil, 0.0005)

	if got := testutil.ToFloat64(m.opsTotal.WithLabelValues("users", "add", "ok")); got != 1 {
		t.Errorf("expected 1 ok add, got %v", got)
	}
	if got := testutil.ToFloat64(m.opsTotal.WithLabelValues("users", "add", "error")); got != 1 {
		t.Errorf("expected 1 failed add, got %v", got)
	}
	if got := testutil.ToFloat64(m.opsTotal.WithLabelValues("users", "get", "ok")); got != 1 {
		t.Errorf("expected 1 ok get, got %v", got)
	}
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("users", "add", nil, 0)
	m.RecordUpgrade(0, 1)
	m.AddOpenStores(1)
	if m.Registry() != nil {
		t.Error("nil metrics should have no registry")
	}

	disabled, err := NewMetrics(MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create disabled metrics: %v", err)
	}
	disabled.ObserveOperation("users", "add", nil, 0)
	if disabled.Registry() != nil {
		t.Error("disabled metrics should have no registry")
	}
}

func TestDiscardLogger(t *testing.T) {
	l := Discard()
	// Must not panic or write anywhere.
	l.NewComponentLogger("stores").WithStore("users").WithOp("add").
		WithError(errors.New("boom")).Debug("dropped")
}
