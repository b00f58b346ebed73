package recovery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/gauntlet-dev/gauntlet/internal/models"
	"github.com/gauntlet-dev/gauntlet/internal/resource"
)

// Defaults matching the engine's config surface.
const (
	DefaultMaxRetryAttempts = 3
	DefaultRetryDelay       = time.Second
)

// Action is one recovery step for an error category. Actions with a nil
// Func are advisory: they are recorded as attempted but cannot resolve
// anything automatically.
type Action struct {
	Strategy             Strategy
	Description          string
	Func                 func(ctx context.Context, ec *ErrorContext) error
	SuccessProbability   float64
	EstimatedTime        time.Duration
	RequiresConfirmation bool
}

// Strategy names how an action tries to recover.
type Strategy string

const (
	StrategyRetry    Strategy = "retry"
	StrategyFallback Strategy = "fallback"
	StrategySkip     Strategy = "skip"
	StrategyAbort    Strategy = "abort"
	StrategyManual   Strategy = "manual"
	StrategyAutoFix  Strategy = "auto_fix"
)

// Attempt records one recovery action taken for an error, with the
// action's advertised odds so reports can show what was tried.
type Attempt struct {
	Strategy           Strategy      `json:"strategy"`
	Description        string        `json:"description"`
	SuccessProbability float64       `json:"success_probability"`
	EstimatedTime      time.Duration `json:"estimated_time"`
	Succeeded          bool          `json:"succeeded"`
}

func attemptOf(a Action) Attempt {
	return Attempt{
		Strategy:           a.Strategy,
		Description:        a.Description,
		SuccessProbability: a.SuccessProbability,
		EstimatedTime:      a.EstimatedTime,
	}
}

// ErrorContext records one handled error with its classification and
// recovery trail.
type ErrorContext struct {
	Err       error
	Category  Category
	Severity  models.Severity
	Component string
	Operation string
	Timestamp time.Time
	Attempts  []Attempt
	Resolved  bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMaxRetryAttempts caps recovery attempts per error.
func WithMaxRetryAttempts(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the pause between paced retry attempts.
func WithRetryDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.retryDelay = d
		}
	}
}

// WithAutoRecovery toggles automatic recovery. When off, HandleError
// only classifies and records.
func WithAutoRecovery(enabled bool) EngineOption {
	return func(e *Engine) { e.autoRecovery = enabled }
}

// WithTempTracker wires the temp tracker used by resource-category
// cleanup actions.
func WithTempTracker(t *resource.TempTracker) EngineOption {
	return func(e *Engine) { e.tracker = t }
}

// Engine classifies errors and walks per-category action lists in
// declared order, stopping at the first action that resolves the error.
// Attempts per error are capped at the configured maximum.
type Engine struct {
	maxAttempts  int
	retryDelay   time.Duration
	autoRecovery bool
	tracker      *resource.TempTracker

	strategies map[Category][]Action

	mu      sync.Mutex
	history []*ErrorContext
}

// NewEngine creates an Engine with the default action lists.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		maxAttempts:  DefaultMaxRetryAttempts,
		retryDelay:   DefaultRetryDelay,
		autoRecovery: true,
	}
	for _, o := range opts {
		o(e)
	}
	e.strategies = e.defaultStrategies()
	return e
}

// RegisterAction appends an action to a category's list.
func (e *Engine) RegisterAction(category Category, action Action) {
	e.strategies[category] = append(e.strategies[category], action)
}

// HandleError classifies err, attempts recovery when enabled, and
// records the outcome in the engine's history.
func (e *Engine) HandleError(ctx context.Context, err error, component, operation string) *ErrorContext {
	category := Classify(err)
	ec := &ErrorContext{
		Err:       err,
		Category:  category,
		Severity:  SeverityFor(err, category),
		Component: component,
		Operation: operation,
		Timestamp: time.Now(),
	}

	logger := slog.With("component", component, "operation", operation,
		"category", string(category), "severity", string(ec.Severity))
	logger.Error("check error", "error", err)

	if e.autoRecovery {
		e.attemptRecovery(ctx, ec, logger)
	}

	e.mu.Lock()
	e.history = append(e.history, ec)
	e.mu.Unlock()
	return ec
}

func (e *Engine) attemptRecovery(ctx context.Context, ec *ErrorContext, logger *slog.Logger) {
	for _, action := range e.strategies[ec.Category] {
		if len(ec.Attempts) >= e.maxAttempts {
			break
		}
		if action.RequiresConfirmation {
			logger.Info("recovery action needs manual confirmation, skipping",
				"action", action.Description)
			ec.Attempts = append(ec.Attempts, attemptOf(action))
			continue
		}

		logger.Info("attempting recovery", "action", action.Description,
			"strategy", string(action.Strategy))
		ec.Attempts = append(ec.Attempts, attemptOf(action))

		if action.Func == nil {
			continue
		}
		if err := e.runAction(ctx, action, ec); err != nil {
			logger.Warn("recovery action failed", "action", action.Description, "error", err)
			continue
		}
		ec.Resolved = true
		ec.Attempts[len(ec.Attempts)-1].Succeeded = true
		logger.Info("recovery successful", "action", action.Description)
		break
	}
}

// runAction executes one action. Retry-strategy actions get one paced
// re-attempt; everything else runs once.
func (e *Engine) runAction(ctx context.Context, action Action, ec *ErrorContext) error {
	if action.Strategy != StrategyRetry {
		return action.Func(ctx, ec)
	}
	backoff := retry.WithMaxRetries(1, retry.NewConstant(e.retryDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := action.Func(ctx, ec); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Stats summarizes the engine's error history.
type Stats struct {
	Total      int              `json:"total"`
	Resolved   int              `json:"resolved"`
	ByCategory map[Category]int `json:"by_category"`
}

// ResolutionRate is resolved/total, or 1 with an empty history.
func (s Stats) ResolutionRate() float64 {
	if s.Total == 0 {
		return 1
	}
	return float64(s.Resolved) / float64(s.Total)
}

// Stats returns counters over all handled errors.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Stats{ByCategory: make(map[Category]int)}
	for _, ec := range e.history {
		s.Total++
		if ec.Resolved {
			s.Resolved++
		}
		s.ByCategory[ec.Category]++
	}
	return s
}

// History returns a copy of the handled-error trail.
func (e *Engine) History() []*ErrorContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*ErrorContext, len(e.history))
	copy(out, e.history)
	return out
}

// defaultStrategies wires the built-in action lists. Automatic actions
// stay within safe territory: temp cleanup and pacing. Anything that
// would mutate the host (installing packages, rewriting config) is
// advisory and requires confirmation.
func (e *Engine) defaultStrategies() map[Category][]Action {
	return map[Category][]Action{
		CategoryEnvironment: {
			{
				Strategy:             StrategyManual,
				Description:          "install the missing tools and re-run",
				SuccessProbability:   0.9,
				RequiresConfirmation: true,
			},
		},
		CategoryConfiguration: {
			{
				Strategy:             StrategyFallback,
				Description:          "fall back to default configuration",
				SuccessProbability:   0.8,
				EstimatedTime:        time.Second,
				RequiresConfirmation: true,
			},
		},
		CategoryDependency: {
			{
				Strategy:             StrategyManual,
				Description:          "install the missing dependencies and re-run",
				SuccessProbability:   0.8,
				EstimatedTime:        20 * time.Second,
				RequiresConfirmation: true,
			},
		},
		CategoryResource: {
			{
				Strategy:           StrategyAutoFix,
				Description:        "clean up temporary files",
				Func:               e.cleanupTempFiles,
				SuccessProbability: 0.7,
				EstimatedTime:      5 * time.Second,
			},
			{
				Strategy:           StrategyFallback,
				Description:        "wait for resource pressure to ease",
				Func:               e.waitForPressure,
				SuccessProbability: 0.6,
				EstimatedTime:      2 * time.Second,
			},
		},
		CategoryTimeout: {
			{
				Strategy:           StrategyRetry,
				Description:        "pause before the next attempt",
				Func:               e.pauseBriefly,
				SuccessProbability: 0.6,
			},
			{
				Strategy:           StrategySkip,
				Description:        "skip the timeout-prone check",
				SuccessProbability: 0.9,
			},
		},
	}
}

func (e *Engine) cleanupTempFiles(ctx context.Context, ec *ErrorContext) error {
	if e.tracker == nil {
		return &EnvironmentError{Msg: "no temp tracker configured"}
	}
	removed := e.tracker.CleanupAll()
	slog.Info("cleaned temp artifacts during recovery", "removed", removed)
	if removed == 0 {
		return &EnvironmentError{Msg: "nothing to clean up"}
	}
	return nil
}

func (e *Engine) waitForPressure(ctx context.Context, ec *ErrorContext) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(e.retryDelay):
		return nil
	}
}

func (e *Engine) pauseBriefly(ctx context.Context, ec *ErrorContext) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(e.retryDelay):
		return nil
	}
}
