package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/veridict-ai/veridict/internal/config"
	"github.com/veridict-ai/veridict/internal/detector"
	"github.com/veridict-ai/veridict/internal/logging"
	"github.com/veridict-ai/veridict/internal/newsbert"
	"github.com/veridict-ai/veridict/internal/telemetry"
)

var (
	flagConfig  string
	flagJSON    bool
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "veridict",
	Short: "Explainable fake news detection",
	Long: "Veridict scores news text with a fine-tuned BERT ONNX model plus a transparent\n" +
		"rule-based fallback, and explains every verdict.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagNoColor {
			color.Disable()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config yaml")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "machine-readable output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(bundleCmd)
	rootCmd.AddCommand(versionCmd)
}

// app bundles the wired engine with the resources that need teardown.
type app struct {
	cfg *config.Config
	log *zap.Logger
	tel *telemetry.Provider
	det *detector.Detector
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	tel, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Protocol: cfg.Telemetry.Protocol,
		Service:  cfg.Telemetry.Service,
		Version:  cfg.Telemetry.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var model detector.ModelService
	if cfg.Model.BundleDir != "" {
		m, err := loadModel(cfg)
		switch {
		case err == nil:
			model = m
			log.Info("model bundle loaded", zap.String("version", m.Version()))
		case cfg.Model.RequireModel:
			return nil, fmt.Errorf("load model bundle: %w", err)
		default:
			log.Warn("model bundle unavailable, running rules-only", zap.Error(err))
		}
	} else if cfg.Model.RequireModel {
		return nil, errors.New("model.require_model is set but no bundle_dir is configured")
	} else {
		log.Warn("no model bundle configured, running rules-only")
	}

	det, err := detector.New(cfg, model, log, tel)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, tel: tel, det: det}, nil
}

func loadModel(cfg *config.Config) (*newsbert.Model, error) {
	dir, err := newsbert.ResolveBundleDir(cfg.Model.BundleDir)
	if err != nil {
		return nil, err
	}
	if !newsbert.BundleFilesPresent(dir) {
		return nil, fmt.Errorf("bundle at %s is missing required files", dir)
	}
	return newsbert.Load(dir, cfg.Model.SeqLen, cfg.Model.Runtime())
}

func (a *app) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if err := a.det.Close(); err != nil {
		a.log.Warn("close model", zap.Error(err))
	}
	a.tel.Shutdown(ctx)
	_ = a.log.Sync()
}
