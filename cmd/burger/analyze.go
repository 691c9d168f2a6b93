package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"burger/internal/aggregate"
	"burger/internal/artifact"
	"burger/internal/pipeline"
	"burger/internal/report"
	"burger/internal/topping"
	"burger/internal/toppings"
)

type analyzeOptions struct {
	Toppings []string
	Parallel bool
	Verbose  bool
	Logger   *slog.Logger
}

type analysis struct {
	Set     *aggregate.Set
	Results []pipeline.StageResult
	Report  *report.Report
}

// analyze runs the selected toppings against jar and builds the report.
func analyze(ctx context.Context, name string, jar artifact.Artifact, opts analyzeOptions) (*analysis, error) {
	selected, err := toppings.Select(opts.Toppings)
	if err != nil {
		return nil, err
	}
	plan, err := pipeline.NewPlan(selected...)
	if err != nil {
		return nil, fmt.Errorf("failed to plan toppings: %w", err)
	}

	runner := pipeline.NewRunner(plan, topping.Options{Verbose: opts.Verbose, Logger: opts.Logger})
	run := runner.Run
	if opts.Parallel {
		run = runner.RunParallel
	}

	set := aggregate.New()
	results, runErr := run(ctx, set, jar)

	rep := report.Build(filepath.Base(name), set, toppings.Expected(selected), results)
	return &analysis{Set: set, Results: results, Report: rep}, runErr
}
