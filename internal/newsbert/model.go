package newsbert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/veridict-ai/veridict/internal/inference"
)

const (
	// DefaultSeqLen is the tokenizer sequence budget when configuration
	// leaves it unset.
	DefaultSeqLen = 256

	defaultTimeout     = 2 * time.Second
	maxDefaultSessions = 4
)

// Runtime controls the ONNX execution environment.
type Runtime struct {
	MaxSessions  int
	IntraThreads int
	InterThreads int
	Timeout      time.Duration
}

// DefaultRuntime sizes the session pool to the machine, capped so a large
// host does not hold the model in memory once per core.
func DefaultRuntime() Runtime {
	sessions := runtime.NumCPU()
	if sessions > maxDefaultSessions {
		sessions = maxDefaultSessions
	}
	return Runtime{
		MaxSessions: sessions,
		Timeout:     defaultTimeout,
	}
}

// session is one pooled ONNX session with its pre-allocated tensors.
type session struct {
	sess          *ort.AdvancedSession
	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	logits        *ort.Tensor[float32]
}

// Model wraps a pooled ONNX classifier over a local bundle directory. It is
// safe for concurrent use; the pool bounds in-flight runs.
type Model struct {
	sessions chan *session
	all      []*session

	tokenizer *WordPieceTokenizer
	seqLen    int
	timeout   time.Duration
	version   string

	realIdx int
	fakeIdx int
	labels  []string
}

// Load initializes the ONNX runtime and builds the session pool from a
// bundle directory containing model.onnx, vocab.txt, and label_map.json.
func Load(dir string, seqLen int, rt Runtime) (*Model, error) {
	resolved, err := ResolveBundleDir(dir)
	if err != nil {
		return nil, err
	}
	if seqLen <= 0 {
		seqLen = DefaultSeqLen
	}
	if rt.MaxSessions <= 0 {
		rt.MaxSessions = DefaultRuntime().MaxSessions
	}
	if rt.Timeout <= 0 {
		rt.Timeout = defaultTimeout
	}

	libPath := resolveSharedLibraryPath(resolved)
	if libPath == "" {
		return nil, errors.New("onnxruntime shared library not found; set VERIDICT_ONNX_LIB or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	modelPath := filepath.Join(resolved, "model.onnx")
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}

	labels, err := loadLabels(filepath.Join(resolved, "label_map.json"))
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	realIdx, fakeIdx, err := labelIndexes(labels)
	if err != nil {
		return nil, err
	}

	tokenizer, err := LoadWordPieceTokenizer(filepath.Join(resolved, "vocab.txt"))
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	version := DefaultModelVersion
	if m, mErr := ReadManifest(resolved); mErr == nil && strings.TrimSpace(m.Version) != "" {
		version = strings.TrimSpace(m.Version)
	}

	model := &Model{
		sessions:  make(chan *session, rt.MaxSessions),
		tokenizer: tokenizer,
		seqLen:    seqLen,
		timeout:   rt.Timeout,
		version:   version,
		realIdx:   realIdx,
		fakeIdx:   fakeIdx,
		labels:    labels,
	}

	for i := 0; i < rt.MaxSessions; i++ {
		s, err := newSession(modelPath, seqLen, len(labels), rt)
		if err != nil {
			model.Close()
			return nil, fmt.Errorf("create session %d: %w", i, err)
		}
		model.all = append(model.all, s)
		model.sessions <- s
	}
	return model, nil
}

func newSession(modelPath string, seqLen, labelCount int, rt Runtime) (*session, error) {
	inputShape := ort.NewShape(1, int64(seqLen))
	inputIDs, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate input_ids tensor: %w", err)
	}
	attnMask, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		inputIDs.Destroy()
		return nil, fmt.Errorf("allocate attention_mask tensor: %w", err)
	}
	logits, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(labelCount)))
	if err != nil {
		inputIDs.Destroy()
		attnMask.Destroy()
		return nil, fmt.Errorf("allocate logits tensor: %w", err)
	}

	var opts *ort.SessionOptions
	if rt.IntraThreads > 0 || rt.InterThreads > 0 {
		opts, err = ort.NewSessionOptions()
		if err != nil {
			return nil, fmt.Errorf("create session options: %w", err)
		}
		defer opts.Destroy()
		if rt.IntraThreads > 0 {
			if err := opts.SetIntraOpNumThreads(rt.IntraThreads); err != nil {
				return nil, fmt.Errorf("set intra-op threads: %w", err)
			}
		}
		if rt.InterThreads > 0 {
			if err := opts.SetInterOpNumThreads(rt.InterThreads); err != nil {
				return nil, fmt.Errorf("set inter-op threads: %w", err)
			}
		}
	}

	sess, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		[]ort.Value{inputIDs, attnMask},
		[]ort.Value{logits},
		opts,
	)
	if err != nil {
		inputIDs.Destroy()
		attnMask.Destroy()
		logits.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	return &session{sess: sess, inputIDs: inputIDs, attentionMask: attnMask, logits: logits}, nil
}

// Version reports the bundle version string.
func (m *Model) Version() string {
	if m == nil {
		return ""
	}
	return m.version
}

// Infer classifies one text. It never returns an error: failures and
// timeouts come back as an Unavailable output so the caller can fall back. A
// timed-out run keeps its session until the background run finishes, then
// the session rejoins the pool.
func (m *Model) Infer(ctx context.Context, text string) inference.Output {
	start := time.Now()
	if m == nil {
		return unavailable("model not loaded", start)
	}

	var s *session
	select {
	case s = <-m.sessions:
	case <-ctx.Done():
		return unavailable("session wait: "+ctx.Err().Error(), start)
	}

	type runResult struct {
		real, fake float64
		err        error
	}
	resCh := make(chan runResult, 1)
	go func() {
		defer func() { m.sessions <- s }()

		ids, attn := m.tokenizer.Encode(text, m.seqLen)
		copy(s.inputIDs.GetData(), ids)
		copy(s.attentionMask.GetData(), attn)

		if err := s.sess.Run(); err != nil {
			resCh <- runResult{err: err}
			return
		}
		real, fake := m.probabilities(s.logits.GetData())
		resCh <- runResult{real: real, fake: fake}
	}()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case r := <-resCh:
		if r.err != nil {
			return unavailable("onnx run: "+r.err.Error(), start)
		}
		label := inference.LabelFake
		if r.real >= r.fake {
			label = inference.LabelReal
		}
		return inference.Output{
			Label:   label,
			Real:    r.real,
			Fake:    r.fake,
			Source:  inference.SourceONNX,
			Latency: time.Since(start),
		}
	case <-timer.C:
		return unavailable("inference timed out", start)
	case <-ctx.Done():
		return unavailable(ctx.Err().Error(), start)
	}
}

// Warmup runs n dummy inferences to page in the model and settle thread
// pools before the first real request.
func (m *Model) Warmup(n int) {
	for i := 0; i < n; i++ {
		m.Infer(context.Background(), "warmup text for model initialization")
	}
}

// Close destroys all sessions and tensors. The caller must ensure no Infer
// calls are in flight.
func (m *Model) Close() error {
	if m == nil {
		return nil
	}
	var firstErr error
	for _, s := range m.all {
		if s.sess != nil {
			if err := s.sess.Destroy(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		s.inputIDs.Destroy()
		s.attentionMask.Destroy()
		s.logits.Destroy()
	}
	m.all = nil
	return firstErr
}

// probabilities applies softmax over the logit vector and picks out the
// real/fake entries.
func (m *Model) probabilities(logits []float32) (real, fake float64) {
	if len(logits) == 0 {
		return 0.5, 0.5
	}

	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}
	exp := make([]float64, len(logits))
	sum := 0.0
	for i, l := range logits {
		exp[i] = math.Exp(float64(l - maxLogit))
		sum += exp[i]
	}

	real, fake = 0.5, 0.5
	if m.realIdx < len(exp) {
		real = exp[m.realIdx] / sum
	}
	if m.fakeIdx < len(exp) {
		fake = exp[m.fakeIdx] / sum
	}
	return real, fake
}

func unavailable(reason string, start time.Time) inference.Output {
	return inference.Output{
		Label:       inference.LabelInconclusive,
		Source:      inference.SourceONNX,
		Unavailable: true,
		Reason:      reason,
		Latency:     time.Since(start),
	}
}

func loadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil && len(arr) > 0 {
		return arr, nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	out := make([]string, len(m))
	for k, v := range m {
		idx, convErr := strconv.Atoi(k)
		if convErr != nil {
			return nil, fmt.Errorf("invalid label index %q: %w", k, convErr)
		}
		if idx < 0 || idx >= len(m) {
			return nil, fmt.Errorf("label index %d out of range", idx)
		}
		out[idx] = v
	}
	return out, nil
}

func labelIndexes(labels []string) (realIdx, fakeIdx int, err error) {
	realIdx, fakeIdx = -1, -1
	for i, l := range labels {
		switch strings.ToUpper(strings.TrimSpace(l)) {
		case "REAL":
			realIdx = i
		case "FAKE":
			fakeIdx = i
		}
	}
	if realIdx < 0 || fakeIdx < 0 {
		return 0, 0, fmt.Errorf("label map must contain REAL and FAKE, got %v", labels)
	}
	return realIdx, fakeIdx, nil
}

// resolveSharedLibraryPath locates the onnxruntime shared library. The
// VERIDICT_ONNX_LIB environment variable wins; otherwise common names and
// locations are probed, starting with the bundle itself.
func resolveSharedLibraryPath(bundleDir string) string {
	if env := strings.TrimSpace(os.Getenv("VERIDICT_ONNX_LIB")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		bundleDir,
		filepath.Join(bundleDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}
	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
