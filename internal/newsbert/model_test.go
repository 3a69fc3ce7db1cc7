package newsbert

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/veridict-ai/veridict/internal/inference"
)

// Integration coverage requires a real bundle plus the onnxruntime shared
// library; point VERIDICT_TEST_BUNDLE_DIR at one to enable it.
func integrationBundle(t *testing.T) string {
	t.Helper()
	dir := os.Getenv("VERIDICT_TEST_BUNDLE_DIR")
	if dir == "" {
		t.Skip("VERIDICT_TEST_BUNDLE_DIR not set; skipping ONNX integration test")
	}
	return dir
}

func TestModelInferIntegration(t *testing.T) {
	dir := integrationBundle(t)

	model, err := Load(dir, 128, DefaultRuntime())
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	defer model.Close()

	out := model.Infer(context.Background(),
		"According to a study published this week, officials confirmed the findings.")
	if out.Unavailable {
		t.Fatalf("expected usable output, got unavailable: %s", out.Reason)
	}
	if out.Source != inference.SourceONNX {
		t.Fatalf("expected onnx source, got %q", out.Source)
	}
	if math.Abs(out.Real+out.Fake-1) > 1e-6 {
		t.Fatalf("probabilities must sum to 1, got %v + %v", out.Real, out.Fake)
	}
	if out.Label != inference.LabelReal && out.Label != inference.LabelFake {
		t.Fatalf("expected argmax label, got %v", out.Label)
	}
}

func TestModelInferRespectsContext(t *testing.T) {
	dir := integrationBundle(t)

	model, err := Load(dir, 128, Runtime{MaxSessions: 1, Timeout: time.Minute})
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	defer model.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Pool is drained by holding the only session, so the acquire must fail
	// on the cancelled context.
	s := <-model.sessions
	out := model.Infer(ctx, "some text")
	model.sessions <- s

	if !out.Unavailable {
		t.Fatal("expected unavailable output on cancelled context")
	}
}

func TestNilModelInfer(t *testing.T) {
	var model *Model
	out := model.Infer(context.Background(), "anything")
	if !out.Unavailable {
		t.Fatal("nil model must report unavailable")
	}
	if model.Version() != "" {
		t.Fatal("nil model version must be empty")
	}
}
