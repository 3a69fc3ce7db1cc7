package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/veridict-ai/veridict/internal/detector"
	"github.com/veridict-ai/veridict/internal/inference"
)

var batchCmd = &cobra.Command{
	Use:   "batch <path>...",
	Short: "Classify a set of text files",
	Long:  "Analyzes every text file among the given files and directories. Non-text files are skipped.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

// batchRecord is one NDJSON line of --json output.
type batchRecord struct {
	File   string           `json:"file"`
	Result *detector.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	files, err := collectTextFiles(args, a.log)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no text files found under %v", args)
	}

	var records []batchRecord
	chunk := a.cfg.Analysis.MaxBatchSize
	for start := 0; start < len(files); start += chunk {
		end := start + chunk
		if end > len(files) {
			end = len(files)
		}
		group := files[start:end]

		texts := make([]string, len(group))
		readErrs := make([]error, len(group))
		for i, f := range group {
			data, err := os.ReadFile(f)
			if err != nil {
				readErrs[i] = err
				continue
			}
			texts[i] = string(data)
		}

		items, err := a.det.AnalyzeBatch(ctx, texts)
		if err != nil {
			return err
		}
		for i, item := range items {
			rec := batchRecord{File: group[i]}
			switch {
			case readErrs[i] != nil:
				rec.Error = readErrs[i].Error()
			case item.Err != nil:
				rec.Error = item.Err.Error()
			default:
				rec.Result = item.Result
			}
			records = append(records, rec)
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	}

	printBatchSummary(records)
	return nil
}

func printBatchSummary(records []batchRecord) {
	counts := map[inference.Label]int{}
	failed := 0
	for _, rec := range records {
		if rec.Result == nil {
			failed++
			fmt.Printf("%-40s error: %s\n", rec.File, rec.Error)
			continue
		}
		counts[rec.Result.Prediction]++
		fmt.Printf("%-40s %s (%.1f)\n", rec.File, verdictBanner(rec.Result.Prediction), rec.Result.Confidence)
	}
	fmt.Printf("\n%d files: %d real, %d fake, %d inconclusive, %d failed\n",
		len(records),
		counts[inference.LabelReal],
		counts[inference.LabelFake],
		counts[inference.LabelInconclusive],
		failed)
}

// collectTextFiles expands directories one level deep and keeps only files
// whose sniffed MIME type descends from text/plain.
func collectTextFiles(paths []string, log *zap.Logger) ([]string, error) {
	var candidates []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			candidates = append(candidates, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				candidates = append(candidates, filepath.Join(p, e.Name()))
			}
		}
	}

	var files []string
	for _, f := range candidates {
		ok, err := isTextFile(f)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Debug("skipping non-text file", zap.String("file", f))
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

func isTextFile(path string) (bool, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false, err
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true, nil
		}
	}
	return false, nil
}
