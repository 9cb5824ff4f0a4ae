package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"bankpivot/internal/cli"
	"bankpivot/internal/config"
	"bankpivot/internal/log"
	"bankpivot/internal/report"
	"bankpivot/internal/rules"
	"bankpivot/internal/services"
	"bankpivot/internal/statement"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	logger := cli.SetupLogger(cfg.LogLevel)
	cli.LoadAndValidateConfig(logger, cfg)

	ctx, stop := cli.SignalContext()
	defer stop()

	runFn := run
	if cfg.HistoryLimit > 0 {
		runFn = showHistory
	}
	if err := runFn(ctx, cfg, os.Stdout, logger); err != nil {
		logger.Error("bankpivot failed", log.FieldError, err)
		stop()
		os.Exit(1)
	}
}

// run executes one statement-to-report pass: aggregate, render the local
// sinks, then publish to whatever remote destinations are configured.
func run(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *log.Logger) error {
	started := time.Now()

	profile, err := rules.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return err
	}
	pipeline, err := services.NewPipeline(profile, cfg.OrderPolicy, logger)
	if err != nil {
		return err
	}

	opts := statement.Options{SkipRows: cfg.SkipRows, Comma: cfg.Comma()}
	rep, err := pipeline.RunFile(ctx, cfg.InputPath, opts)
	if err != nil {
		return err
	}

	renderers := []report.Renderer{report.Console{W: stdout}}
	if cfg.OutputCSV != "" {
		renderers = append(renderers, report.CSVFile{Path: cfg.OutputCSV})
	}
	if cfg.OutputXLSX != "" {
		renderers = append(renderers, report.Workbook{Path: cfg.OutputXLSX, Spacers: cfg.XLSXSpacers})
	}
	if cfg.OutputChart != "" {
		renderers = append(renderers, report.Chart{Path: cfg.OutputChart})
	}
	files, err := services.RenderAll(ctx, rep, logger, renderers...)
	if err != nil {
		return err
	}

	publisher, closePublisher, err := cli.NewPublisher(ctx, cfg, logger)
	defer func() {
		if cerr := closePublisher(); cerr != nil {
			logger.Warn("Closing remote destinations failed", log.FieldError, cerr)
		}
	}()
	if err != nil {
		return err
	}
	if publisher == nil {
		return nil
	}

	runInfo := services.NewRun(rep, started)
	artifacts, err := publisher.Publish(ctx, rep, runInfo, files)
	if err != nil {
		return fmt.Errorf("publish run %s: %w", runInfo.ID, err)
	}
	logger.Info("Run published",
		log.FieldRunID, runInfo.ID,
		"artifacts", artifacts)
	return nil
}

// showHistory prints the most recent archived runs.
func showHistory(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *log.Logger) error {
	repo, err := cli.InitHistory(logger, cfg.HistoryDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	runs, err := repo.ListRuns(ctx, cfg.HistoryLimit)
	if err != nil {
		return err
	}
	return report.WriteHistory(stdout, runs)
}
