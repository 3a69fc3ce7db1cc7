package inference

import "time"

// Label is the verdict assigned to an analyzed text.
type Label string

const (
	LabelReal         Label = "real"
	LabelFake         Label = "fake"
	LabelInconclusive Label = "inconclusive"
)

// Sources identify which scoring path produced an Output.
const (
	SourceONNX  = "onnx"
	SourceRules = "rules"
)

// Output is the normalized result of one classification pass, whether it came
// from the ONNX model or from the rule-based fallback. Probabilities are on
// the [0,1] scale; conversion to the [0,100] confidence scale happens once,
// in the combiner.
type Output struct {
	Label Label
	Real  float64
	Fake  float64

	Source string

	// Unavailable marks a pass that produced no usable score (model not
	// loaded, inference error, timeout). Reason carries the cause.
	Unavailable bool
	Reason      string

	Latency time.Duration
}
