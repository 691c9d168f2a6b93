package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"burger/internal/aggregate"
	"burger/internal/artifact"
	"burger/internal/topping"
)

// StageResult describes one topping execution.
type StageResult struct {
	Topping  string
	Written  []string
	Duration time.Duration
	Err      error
}

// Runner executes a plan against an artifact.
type Runner struct {
	plan *Plan
	opts topping.Options
}

// NewRunner creates a runner. opts is handed to every topping.
func NewRunner(plan *Plan, opts topping.Options) *Runner {
	return &Runner{plan: plan, opts: opts}
}

// Plan returns the plan the runner executes.
func (r *Runner) Plan() *Plan { return r.plan }

// Run executes toppings one at a time in plan order. It stops at the first
// failing topping; toppings after it never run.
func (r *Runner) Run(ctx context.Context, set *aggregate.Set, jar artifact.Artifact) ([]StageResult, error) {
	if r.plan == nil {
		return nil, nil
	}

	var out []StageResult
	for _, t := range r.plan.Order() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res := r.runOne(ctx, t, set, jar)
		out = append(out, res)
		if res.Err != nil {
			return out, &StageError{Topping: res.Topping, Err: res.Err}
		}
	}
	return out, nil
}

// RunParallel executes each level of the plan concurrently. Toppings within
// a level own disjoint labels, so they never write the same key. Artifact
// access is serialized unless the artifact is safe for concurrent use.
// Results are reported in plan level order, declaration order within a level.
func (r *Runner) RunParallel(ctx context.Context, set *aggregate.Set, jar artifact.Artifact) ([]StageResult, error) {
	if r.plan == nil {
		return nil, nil
	}
	shared := artifact.Synchronized(jar)

	var out []StageResult
	for _, level := range r.plan.Levels() {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		results := make([]StageResult, len(level))
		g, gctx := errgroup.WithContext(ctx)
		for i, t := range level {
			g.Go(func() error {
				results[i] = r.runOne(gctx, t, set, shared)
				if results[i].Err != nil {
					return &StageError{Topping: results[i].Topping, Err: results[i].Err}
				}
				return nil
			})
		}
		err := g.Wait()
		out = append(out, results...)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func (r *Runner) runOne(ctx context.Context, t topping.Topping, set *aggregate.Set, jar artifact.Artifact) StageResult {
	log := r.opts.Log()
	scope := set.Scope(t.Name(), t.Provides())

	log.Debug("running topping", slog.String("topping", t.Name()))
	start := time.Now()
	err := t.Act(ctx, scope, jar, r.opts)
	res := StageResult{
		Topping:  t.Name(),
		Written:  scope.Written(),
		Duration: time.Since(start),
		Err:      err,
	}

	if err != nil {
		log.Error("topping failed", slog.String("topping", t.Name()), slog.Any("error", err))
		return res
	}
	level := slog.LevelDebug
	if r.opts.Verbose {
		level = slog.LevelInfo
	}
	log.Log(ctx, level, "topping finished",
		slog.String("topping", t.Name()),
		slog.Int("written", len(res.Written)),
		slog.Duration("duration", res.Duration),
	)
	return res
}
