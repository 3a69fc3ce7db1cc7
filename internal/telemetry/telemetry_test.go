package telemetry

import (
	"context"
	"testing"
)

func TestNewProviderDisabledIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("disabled provider: %v", err)
	}
	if p.Enabled {
		t.Fatal("provider must report disabled")
	}
	if p.Tracer() == nil || p.Meter() == nil {
		t.Fatal("disabled provider must still hand out noop tracer/meter")
	}

	// Recording against noop instruments must be safe.
	p.RecordPrediction("real", "rules", 1.5, true)
	p.RecordBatch(10)
	p.Shutdown(context.Background())
}

func TestNilProviderIsSafe(t *testing.T) {
	var p *Provider
	if p.Tracer() == nil || p.Meter() == nil {
		t.Fatal("nil provider must hand out noop tracer/meter")
	}
	p.RecordPrediction("fake", "onnx", 0.1, false)
	p.RecordBatch(1)
	p.Shutdown(context.Background())
}
