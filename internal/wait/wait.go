package wait

import (
	"context"
	"time"

	"ui-verbs/internal/config"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"
	"ui-verbs/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	waiterName  = "Waiter"
	waiterTrace = "ui.wait"
)

// Condition is a predicate over driver state. Check returns ok=false when the
// condition does not hold yet; an error means the check itself faulted.
type Condition[T any] struct {
	Name  string
	Check func(ctx context.Context) (T, bool, error)
}

type Waiter struct {
	logger       *zap.Logger
	tracer       trace.Tracer
	timeout      time.Duration
	pollInterval time.Duration
	timeoutLevel zapcore.Level
}

type Params struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func NewWaiter(params Params) *Waiter {
	return New(params.Logger, params.Config.WaitConfig.Explicit(), params.Config.WaitConfig.PollInterval)
}

func New(logger *zap.Logger, timeout, pollInterval time.Duration) *Waiter {
	if pollInterval <= 0 {
		pollInterval = 250 * time.Millisecond
	}

	return &Waiter{
		logger:       logger.With(zap.String(logg.Layer, waiterName)),
		tracer:       otel.Tracer(waiterTrace),
		timeout:      timeout,
		pollInterval: pollInterval,
		timeoutLevel: zapcore.ErrorLevel,
	}
}

// WithTimeoutLevel returns a copy that reports unmet conditions at level.
// Callers that own the final diagnostic, like the retry loop, lower it.
func (w *Waiter) WithTimeoutLevel(level zapcore.Level) *Waiter {
	cp := *w
	cp.timeoutLevel = level

	return &cp
}

func (w *Waiter) Timeout() time.Duration {
	return w.timeout
}

func (w *Waiter) PollInterval() time.Duration {
	return w.pollInterval
}

// Await polls cond until it holds or timeout elapses. A timeout of zero or less
// uses the configured explicit wait.
//
// Not meeting the condition is not an error: Await returns ok=false and a nil
// error. Recoverable driver faults during a poll are swallowed and the poll is
// repeated. Only fatal session or configuration faults are returned.
func Await[T any](ctx context.Context, w *Waiter, cond Condition[T], timeout time.Duration) (value T, ok bool, err error) {
	const op = "Await"

	if timeout <= 0 {
		timeout = w.timeout
	}

	logger := w.logger.With(zap.String(logg.Operation, op), zap.String(logg.Condition, cond.Name))

	ctx, step := tracing.StartSpan(ctx, w.tracer, logger, "wait."+cond.Name,
		attribute.String(tracing.AttrCondition, cond.Name),
		attribute.Int64("timeout_ms", timeout.Milliseconds()))
	defer func() {
		step.SetAttributes(attribute.Bool("satisfied", ok))
		step.End(err)
	}()

	deadline := time.Now().Add(timeout)
	polls := 0

	var lastFault error

	for {
		polls++

		v, met, checkErr := cond.Check(ctx)

		switch {
		case checkErr == nil && met:
			logger.Debug("Condition met", zap.Int("polls", polls))

			return v, true, nil
		case checkErr != nil && apperr.IsFatal(checkErr):
			logger.Error("Condition aborted by fatal fault", zap.Error(checkErr))

			var zero T

			return zero, false, checkErr
		case checkErr != nil:
			lastFault = checkErr
			logger.Debug("Poll faulted, retrying", zap.Int("polls", polls), zap.Error(checkErr))
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}

		if !sleep(ctx, min(w.pollInterval, remaining)) {
			logger.Warn("Wait cancelled", zap.Error(ctx.Err()))

			break
		}
	}

	fields := []zap.Field{zap.Duration("timeout", timeout), zap.Int("polls", polls)}
	if lastFault != nil {
		fields = append(fields, zap.NamedError("last_fault", lastFault))
	}

	if ce := logger.Check(w.timeoutLevel, "Condition not met before timeout"); ce != nil {
		ce.Write(fields...)
	}

	step.AddEvent("disengaged")

	var zero T

	return zero, false, nil
}

// Probe evaluates cond exactly once. Faults other than fatal ones count as
// "not met".
func Probe[T any](ctx context.Context, w *Waiter, cond Condition[T]) (T, bool, error) {
	v, met, err := cond.Check(ctx)
	if err != nil {
		if apperr.IsFatal(err) {
			return v, false, err
		}

		w.logger.Debug("Probe faulted", zap.String(logg.Condition, cond.Name), zap.Error(err))

		var zero T

		return zero, false, nil
	}

	return v, met, nil
}

// Sleep blocks for d or until ctx is done. It reports false on cancellation.
func Sleep(ctx context.Context, d time.Duration) bool {
	return sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
