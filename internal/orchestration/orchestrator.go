// Package orchestration schedules check tasks across dependency levels
// with resource-bounded concurrency.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gauntlet-dev/gauntlet/internal/checks"
	"github.com/gauntlet-dev/gauntlet/internal/depgraph"
	"github.com/gauntlet-dev/gauntlet/internal/hooks"
	"github.com/gauntlet-dev/gauntlet/internal/models"
	"github.com/gauntlet-dev/gauntlet/internal/recovery"
	"github.com/gauntlet-dev/gauntlet/internal/resource"
)

// timeoutGrace is how long past a task's deadline the orchestrator
// waits for the kill to land before synthesizing the timeout result.
const timeoutGrace = 5 * time.Second

// Orchestrator runs batches of check tasks. Zero value is not usable;
// construct with New.
type Orchestrator struct {
	registry *checks.Registry
	monitor  *resource.Monitor
	engine   *recovery.Engine
	hooks    *hooks.Runner
	hookCfg  hooks.Config
	bus      eventBus

	workdir  string
	verbose  bool
	failFast bool
	grace    time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkingDirectory sets the project root checks run against.
func WithWorkingDirectory(dir string) Option {
	return func(o *Orchestrator) { o.workdir = dir }
}

// WithVerbose keeps full tool output in results.
func WithVerbose(v bool) Option {
	return func(o *Orchestrator) { o.verbose = v }
}

// WithFailFast stops scheduling new dependency levels after the first
// failure; unscheduled tasks are reported as skipped.
func WithFailFast(v bool) Option {
	return func(o *Orchestrator) { o.failFast = v }
}

// WithRecoveryEngine wires the error classifier and recovery engine.
func WithRecoveryEngine(e *recovery.Engine) Option {
	return func(o *Orchestrator) { o.engine = e }
}

// WithHooks wires lifecycle hooks.
func WithHooks(r *hooks.Runner, cfg hooks.Config) Option {
	return func(o *Orchestrator) {
		o.hooks = r
		o.hookCfg = cfg
	}
}

// WithGrace overrides the post-deadline wait before a timed-out task is
// abandoned. Tests shorten it.
func WithGrace(d time.Duration) Option {
	return func(o *Orchestrator) { o.grace = d }
}

// New creates an Orchestrator around a checker registry and a resource
// monitor.
func New(registry *checks.Registry, monitor *resource.Monitor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		monitor:  monitor,
		workdir:  ".",
		grace:    timeoutGrace,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.engine == nil {
		o.engine = recovery.NewEngine()
	}
	return o
}

// Subscribe registers a progress listener for subsequent runs.
func (o *Orchestrator) Subscribe(l ProgressListener) {
	o.bus.subscribe(l)
}

// ExecuteChecks runs the batch and returns one terminal result per
// requested task. Scheduling problems surface as failure results, not
// as a returned error; the error return is reserved for invalid input
// and aborting hooks.
func (o *Orchestrator) ExecuteChecks(ctx context.Context, tasks []models.CheckTask) (*models.RunOutcome, error) {
	started := time.Now()

	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return nil, err
		}
	}
	if err := o.runHooks(ctx, "before_run", o.hookCfg.BeforeRun, nil); err != nil {
		return nil, err
	}

	o.bus.publish(ProgressEvent{Type: EventRunStarted})
	results := make(map[string]*models.CheckResult, len(tasks))

	runnable := o.filterAvailable(tasks, results)

	levels, err := depgraph.Levels(runnable)
	if err != nil {
		// A cycle poisons the whole batch: every requested task gets a
		// failure result so callers still see N terminal results.
		var cycleErr *depgraph.CycleError
		if errors.As(err, &cycleErr) {
			for _, t := range tasks {
				r := models.NewCheckResult(t.Name, models.StatusFailure)
				r.Errors = append(r.Errors, err.Error())
				results[t.Name] = r
			}
			return o.finishRun(ctx, results, started)
		}
		return nil, err
	}

	byName := make(map[string]models.CheckTask, len(runnable))
	for _, t := range runnable {
		byName[t.Name] = t
	}

	var failed bool
	for level := 0; level < len(levels); level++ {
		names := levels[level]

		if o.failFast && failed {
			for _, name := range names {
				r := models.NewCheckResult(name, models.StatusSkipped)
				r.Warnings = append(r.Warnings, "skipped after earlier failure")
				results[name] = r
				o.bus.publish(ProgressEvent{Type: EventTaskSkipped, TaskName: name, Level: level, Result: r})
			}
			continue
		}

		o.bus.publish(ProgressEvent{Type: EventLevelStarted, Level: level})
		group := make([]models.CheckTask, 0, len(names))
		for _, name := range names {
			group = append(group, byName[name])
		}
		// Higher priority is submitted first within the level.
		sort.SliceStable(group, func(i, j int) bool { return group[i].Priority > group[j].Priority })

		levelResults := o.executeLevel(ctx, level, group)
		for name, r := range levelResults {
			results[name] = r
			if r.Status == models.StatusFailure {
				failed = true
			}
		}
	}

	return o.finishRun(ctx, results, started)
}

func (o *Orchestrator) finishRun(ctx context.Context, results map[string]*models.CheckResult, started time.Time) (*models.RunOutcome, error) {
	outcome := models.BuildOutcome(results, started)
	o.bus.publish(ProgressEvent{Type: EventRunCompleted})

	env := []string{fmt.Sprintf("GAUNTLET_RUN_STATUS=%s", outcome.OverallStatus)}
	if err := o.runHooks(ctx, "after_run", o.hookCfg.AfterRun, env); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// filterAvailable drops tasks whose checker reports unavailable,
// recording a skipped result for each.
func (o *Orchestrator) filterAvailable(tasks []models.CheckTask, results map[string]*models.CheckResult) []models.CheckTask {
	runnable := make([]models.CheckTask, 0, len(tasks))
	for _, t := range tasks {
		checker, err := o.registry.Create(t.CheckType, t.Name, t.Params)
		if err != nil {
			// An unregistered type is treated like an unavailable
			// checker: the task is skipped, never failed.
			slog.Warn("no usable checker for task, skipping", "task", t.Name, "type", t.CheckType, "error", err)
			r := models.NewCheckResult(t.Name, models.StatusSkipped)
			r.Warnings = append(r.Warnings, err.Error())
			results[t.Name] = r
			o.bus.publish(ProgressEvent{Type: EventTaskSkipped, TaskName: t.Name, Result: r})
			continue
		}
		available := checker.IsAvailable()
		_ = checker.Cleanup()
		if !available {
			slog.Warn("checker unavailable, skipping task", "task", t.Name, "type", t.CheckType)
			r := models.NewCheckResult(t.Name, models.StatusSkipped)
			r.Warnings = append(r.Warnings, fmt.Sprintf("checker %q is not available in this environment", t.CheckType))
			results[t.Name] = r
			o.bus.publish(ProgressEvent{Type: EventTaskSkipped, TaskName: t.Name, Result: r})
			continue
		}
		runnable = append(runnable, t)
	}
	return runnable
}

// executeLevel runs one dependency level. A single task, or a
// concurrency limit of one, runs inline; otherwise tasks run on
// goroutines gated by the monitor's slots.
func (o *Orchestrator) executeLevel(ctx context.Context, level int, group []models.CheckTask) map[string]*models.CheckResult {
	results := make(map[string]*models.CheckResult, len(group))

	if len(group) == 1 || o.monitor.MaxParallel() == 1 {
		for _, t := range group {
			results[t.Name] = o.executeTask(ctx, level, t)
		}
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, t := range group {
		wg.Add(1)
		go func(task models.CheckTask) {
			defer wg.Done()
			r := o.executeGated(ctx, level, task)
			mu.Lock()
			results[task.Name] = r
			mu.Unlock()
		}(t)
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) executeGated(ctx context.Context, level int, task models.CheckTask) *models.CheckResult {
	if err := o.monitor.AcquireSlot(ctx); err != nil {
		r := models.NewCheckResult(task.Name, models.StatusFailure)
		r.Errors = append(r.Errors, fmt.Sprintf("could not acquire execution slot: %v", err))
		return r
	}
	defer o.monitor.ReleaseSlot()
	return o.executeTask(ctx, level, task)
}

type taskReturn struct {
	result *models.CheckResult
	err    error
}

// executeTask runs one task to a terminal result. Checker errors,
// panics and timeouts all land as failure results; this function never
// returns nil.
func (o *Orchestrator) executeTask(ctx context.Context, level int, task models.CheckTask) *models.CheckResult {
	o.bus.publish(ProgressEvent{Type: EventTaskStarted, TaskName: task.Name, Level: level})
	started := time.Now()

	checkEnv := []string{fmt.Sprintf("GAUNTLET_CHECK_NAME=%s", task.Name)}
	if err := o.runHooks(ctx, "before_check", o.hookCfg.BeforeCheck, checkEnv); err != nil {
		return o.finishTask(ctx, task, o.failureResult(task.Name, err), started, level)
	}

	checker, err := o.registry.Create(task.CheckType, task.Name, task.Params)
	if err != nil {
		o.engine.HandleError(ctx, err, "orchestrator", "create checker")
		return o.finishTask(ctx, task, o.failureResult(task.Name, err), started, level)
	}
	defer func() {
		if err := checker.Cleanup(); err != nil {
			slog.Warn("checker cleanup failed", "task", task.Name, "error", err)
		}
	}()

	runCtx := ctx
	var cancel context.CancelFunc
	if task.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	done := make(chan taskReturn, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- taskReturn{err: fmt.Errorf("checker panicked: %v", p)}
			}
		}()
		r, err := checker.RunCheck(runCtx, checks.RunArgs{
			WorkingDirectory: o.workdir,
			Verbose:          o.verbose,
		})
		done <- taskReturn{result: r, err: err}
	}()

	var result *models.CheckResult
	select {
	case ret := <-done:
		result = o.resolveReturn(runCtx, task, ret)
	case <-runCtx.Done():
		// The subprocess kill is in flight; give it a bounded grace
		// window before abandoning the goroutine.
		select {
		case ret := <-done:
			result = o.resolveReturn(runCtx, task, ret)
		case <-time.After(o.grace):
			slog.Error("task did not stop after timeout, abandoning", "task", task.Name)
			result = o.timeoutResult(task)
		}
	}

	return o.finishTask(ctx, task, result, started, level)
}

func (o *Orchestrator) resolveReturn(runCtx context.Context, task models.CheckTask, ret taskReturn) *models.CheckResult {
	if ret.err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			o.engine.HandleError(context.WithoutCancel(runCtx), context.DeadlineExceeded, task.Name, "run check")
			return o.timeoutResult(task)
		}
		o.engine.HandleError(context.WithoutCancel(runCtx), ret.err, task.Name, "run check")
		return o.failureResult(task.Name, ret.err)
	}
	if ret.result == nil {
		return o.failureResult(task.Name, fmt.Errorf("checker returned no result"))
	}
	return ret.result
}

func (o *Orchestrator) finishTask(ctx context.Context, task models.CheckTask, result *models.CheckResult, started time.Time, level int) *models.CheckResult {
	result.Duration = time.Since(started)
	result.MergeMetadata(map[string]any{
		"task_name":      task.Name,
		"execution_time": result.Duration.Seconds(),
	})

	env := []string{
		fmt.Sprintf("GAUNTLET_CHECK_NAME=%s", task.Name),
		fmt.Sprintf("GAUNTLET_CHECK_STATUS=%s", result.Status),
	}
	if err := o.runHooks(ctx, "after_check", o.hookCfg.AfterCheck, env); err != nil {
		slog.Warn("after_check hook aborted", "task", task.Name, "error", err)
	}

	o.bus.publish(ProgressEvent{Type: EventTaskCompleted, TaskName: task.Name, Level: level, Result: result})
	return result
}

func (o *Orchestrator) failureResult(name string, err error) *models.CheckResult {
	r := models.NewCheckResult(name, models.StatusFailure)
	r.Errors = append(r.Errors, err.Error())
	return r
}

func (o *Orchestrator) timeoutResult(task models.CheckTask) *models.CheckResult {
	r := models.NewCheckResult(task.Name, models.StatusFailure)
	r.Errors = append(r.Errors, fmt.Sprintf("check timed out after %s", task.Timeout))
	r.Suggestions = append(r.Suggestions, "raise the task timeout or split the check into smaller tasks")
	return r
}

func (o *Orchestrator) runHooks(ctx context.Context, stage string, hs []hooks.Hook, env []string) error {
	if o.hooks == nil || len(hs) == 0 {
		return nil
	}
	return o.hooks.Execute(ctx, stage, hs, env)
}
