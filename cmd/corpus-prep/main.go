package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ironsheep/corpus-prep/internal/brightness"
	"github.com/ironsheep/corpus-prep/internal/config"
	"github.com/ironsheep/corpus-prep/internal/corpus"
	"github.com/ironsheep/corpus-prep/internal/imaging"
	"github.com/ironsheep/corpus-prep/internal/pipeline"
	"github.com/ironsheep/corpus-prep/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg := config.Load()
	fs := newFlagSet(&cfg)

	// Handle --version and --help before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("corpus-prep %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("corpus-prep - normalize an image tree into a training corpus")
			fmt.Println()
			fmt.Println("Usage: corpus-prep -input DIR -output DIR [options]")
			fmt.Println()
			fmt.Println("Options:")
			fs.SetOutput(os.Stdout)
			fs.PrintDefaults()
			fmt.Println()
			fmt.Println("Every option can also be set with a CORPUS_PREP_* environment")
			fmt.Println("variable, e.g. CORPUS_PREP_INPUT_DIR or CORPUS_PREP_LOG_LEVEL=debug.")
			fmt.Println("Flags take precedence over the environment.")
			return
		}
	}
	if code, ok := parseFlags(fs, os.Args[1:]); !ok {
		os.Exit(code)
	}

	os.Exit(run(cfg))
}

func newFlagSet(cfg *config.Config) *flag.FlagSet {
	fs := flag.NewFlagSet("corpus-prep", flag.ContinueOnError)
	cfg.BindFlags(fs)
	return fs
}

// parseFlags parses args into fs. When parsing stops the process (a bad flag,
// or -help given after other flags) it returns the exit code and false.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	err := fs.Parse(args)
	switch {
	case err == nil:
		return 0, true
	case errors.Is(err, flag.ErrHelp):
		return 0, false
	default:
		return 2, false
	}
}

func run(cfg config.Config) int {
	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "corpus-prep: %v\n", err)
		return 2
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Error("Configuration error")
		return 2
	}
	logger.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
	}).Debug("corpus-prep starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracing(ctx, telemetry.TraceConfig{
		ServiceName:    "corpus-prep",
		ServiceVersion: Version,
		Exporter:       cfg.Trace.Exporter,
		OTLPEndpoint:   cfg.Trace.OTLPEndpoint,
		OTLPInsecure:   cfg.Trace.OTLPInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Tracing setup failed")
		return 2
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.WithError(err).Warn("Tracing shutdown failed")
		}
	}()

	strategy, err := brightness.Lookup(cfg.Strategy)
	if err != nil {
		logger.WithError(err).WithField("available", brightness.Names()).Error("Configuration error")
		return 2
	}

	metrics := pipeline.NewMetrics()
	runner, err := pipeline.NewRunner(
		corpus.Walker{Root: cfg.InputDir},
		imaging.FileCodec{AutoOrient: cfg.AutoOrient, JPEGQuality: cfg.JPEGQuality},
		pipeline.Options{
			OutputDir:     cfg.OutputDir,
			Width:         cfg.OutputWidth,
			Height:        cfg.OutputHeight,
			AspectRatio:   cfg.AspectRatio,
			ContentCrop:   cfg.ContentCrop,
			EdgeThreshold: uint8(cfg.EdgeThreshold),
			CropMargin:    cfg.CropMargin,
			Strategy:      strategy,
			FallbackExt:   cfg.FallbackFormat,
			FailFast:      cfg.FailFast,
			ProgressEvery: cfg.ProgressEvery,
		},
		logger,
		metrics,
	)
	if err != nil {
		logger.WithError(err).Error("Configuration error")
		return 2
	}

	code := 0
	if cfg.StatsOnly {
		gs, tally, err := runner.Stats(ctx)
		logger.WithField("tally", tally.String()).Info("Statistics pass finished")
		if err != nil {
			logger.WithError(err).Error("Run failed")
			code = 1
		} else {
			fmt.Println(gs.String())
		}
	} else {
		tally, err := runner.Run(ctx)
		logger.WithFields(logrus.Fields{
			"attempted": tally.Attempted,
			"succeeded": tally.Succeeded,
			"failed":    tally.Failed,
		}).Info(tally.String())
		if err != nil {
			logger.WithError(err).Error("Run failed")
			code = 1
		}
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.WithError(err).Warn("Writing metrics failed")
		}
	}
	return code
}
