package detector

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/veridict-ai/veridict/internal/textprep"
)

// BatchItem pairs one input text with its outcome. Exactly one of Result and
// Err is set.
type BatchItem struct {
	Index  int     `json:"index"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// AnalyzeBatch classifies texts with a bounded worker pool. Items come back
// in input order; per-item validation failures are recorded on the item, not
// returned. Cancellation marks unstarted items with ctx.Err() and leaves
// finished ones intact.
func (d *Detector) AnalyzeBatch(ctx context.Context, texts []string) ([]BatchItem, error) {
	if len(texts) > d.maxBatchSize {
		return nil, &textprep.ValidationError{
			Reason: fmt.Sprintf("batch of %d texts exceeds the maximum of %d", len(texts), d.maxBatchSize),
		}
	}
	if len(texts) == 0 {
		return nil, nil
	}

	d.tel.RecordBatch(len(texts))

	items := make([]BatchItem, len(texts))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := d.batchConcurrency
	if workers > len(texts) {
		workers = len(texts)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					items[i] = BatchItem{Index: i, Err: ctx.Err()}
					continue
				default:
				}
				res, err := d.Analyze(ctx, texts[i])
				items[i] = BatchItem{Index: i, Result: res, Err: err}
			}
		}()
	}

	for i := range texts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	d.log.Debug("batch complete", zap.Int("texts", len(texts)))
	return items, nil
}
