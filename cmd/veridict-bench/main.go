package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"

	"github.com/veridict-ai/veridict/internal/config"
	"github.com/veridict-ai/veridict/internal/detector"
	"github.com/veridict-ai/veridict/internal/newsbert"
)

const defaultText = "According to a study published this week, officials confirmed the new policy will take effect next year after a review of the available data."

func main() {
	cfgPath := flag.String("config", "", "path to config yaml")
	n := flag.Int("n", 200, "number of iterations")
	text := flag.String("text", defaultText, "text to analyze")
	file := flag.String("file", "", "read the benchmark text from a file instead")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	input := *text
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("read file: %v", err)
		}
		input = string(data)
	}

	var model detector.ModelService
	mode := "rules-only"
	if cfg.Model.BundleDir != "" {
		dir, err := newsbert.ResolveBundleDir(cfg.Model.BundleDir)
		if err != nil {
			log.Fatalf("resolve bundle dir: %v", err)
		}
		m, err := newsbert.Load(dir, cfg.Model.SeqLen, cfg.Model.Runtime())
		if err != nil {
			log.Fatalf("load model: %v", err)
		}
		m.Warmup(5)
		model = m
		mode = m.Version()
	}

	det, err := detector.New(cfg, model, zap.NewNop(), nil)
	if err != nil {
		log.Fatalf("build detector: %v", err)
	}
	defer det.Close()

	if *n <= 0 {
		*n = 1
	}

	ctx := context.Background()
	durations := make([]time.Duration, 0, *n)
	for i := 0; i < *n; i++ {
		start := time.Now()
		if _, err := det.Analyze(ctx, input); err != nil {
			log.Fatalf("analyze failed: %v", err)
		}
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	avg := float64(total.Microseconds()) / 1000.0 / float64(len(durations))
	p50 := float64(durations[len(durations)/2].Microseconds()) / 1000.0
	p95 := float64(durations[int(float64(len(durations))*0.95)].Microseconds()) / 1000.0

	rssMB := 0.0
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := p.MemoryInfo(); err == nil {
			rssMB = float64(mem.RSS) / (1024 * 1024)
		}
	}

	fmt.Printf("bench: n=%d avg_ms=%.2f p50_ms=%.2f p95_ms=%.2f rss_mb=%.1f model=%s\n",
		len(durations), avg, p50, p95, rssMB, mode)
}
