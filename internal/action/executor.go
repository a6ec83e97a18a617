package action

import (
	"context"
	"time"

	"ui-verbs/internal/config"
	"ui-verbs/internal/entity"
	"ui-verbs/internal/locator"
	"ui-verbs/internal/resolver"
	"ui-verbs/internal/wait"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"
	"ui-verbs/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	executorName  = "ActionExecutor"
	executorTrace = "ui.action"
)

// RetryBudget is constant for the lifetime of an executor: no backoff growth.
type RetryBudget struct {
	MaxAttempts int
	Interval    time.Duration
}

func DefaultBudget() RetryBudget {
	return RetryBudget{MaxAttempts: 4, Interval: time.Second}
}

type Executor struct {
	logger   *zap.Logger
	tracer   trace.Tracer
	resolver *resolver.Resolver
	budget   RetryBudget
}

type Params struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Resolver *resolver.Resolver
}

func NewExecutor(params Params) *Executor {
	return New(params.Logger, params.Resolver, RetryBudget{
		MaxAttempts: params.Config.RetryConfig.MaxAttempts,
		Interval:    params.Config.RetryConfig.Interval,
	})
}

func New(logger *zap.Logger, r *resolver.Resolver, budget RetryBudget) *Executor {
	if budget.MaxAttempts < 1 {
		budget.MaxAttempts = 1
	}

	return &Executor{
		logger:   logger.With(zap.String(logg.Layer, executorName)),
		tracer:   otel.Tracer(executorTrace),
		resolver: r,
		budget:   budget,
	}
}

func (e *Executor) Budget() RetryBudget {
	return e.budget
}

// Perform runs h against the element addressed by spec, re-resolving spec on
// every attempt.
//
// Running out of attempts is not an error: the outcome reports Applied=false
// and a single error-level line names the locator and action. The returned
// error is reserved for invalid specs and fatal session faults.
func (e *Executor) Perform(ctx context.Context, h Handler, spec locator.Spec) (out entity.Outcome, err error) {
	const op = "Perform"

	out = entity.Outcome{InvocationID: uuid.New(), Kind: h.Kind()}

	logger := e.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.Action, string(h.Kind())),
		zap.Stringer(logg.Locator, spec),
		zap.String(logg.InvocationID, out.InvocationID.String()),
	)

	ctx, step := tracing.StartSpan(ctx, e.tracer, logger, "action."+string(h.Kind()),
		attribute.String(tracing.AttrAction, string(h.Kind())),
		attribute.String(tracing.AttrLocator, spec.String()),
		attribute.String(tracing.AttrInvocationID, out.InvocationID.String()))
	defer func() {
		step.SetAttributes(attribute.Bool("applied", out.Applied), attribute.Int("attempts", out.Attempts))
		step.End(err)
	}()

	if verr := spec.Validate(); verr != nil {
		return out, apperr.InvalidReqError(op, "spec", verr)
	}

	var last error

	for attempt := 1; attempt <= e.budget.MaxAttempts; attempt++ {
		if attempt > 1 {
			if !wait.Sleep(ctx, e.budget.Interval) {
				logger.Warn("Retry loop cancelled", zap.Error(ctx.Err()))

				break
			}
		}

		out.Attempts = attempt

		value, fault := e.attempt(ctx, logger, h, spec, last)
		step.Attempt(attempt, fault)

		if fault == nil {
			out.Applied = true
			if h.Kind().ProducesValue() {
				out.Value = &value
			}

			if h.Kind() == entity.ActionGetAttribute && value == "" {
				logger.Debug("Attribute missing or empty", zap.Int(logg.Attempt, attempt))
			}

			logger.Debug("Action performed", zap.Int(logg.Attempt, attempt))

			return out, nil
		}

		if apperr.IsFatal(fault) {
			logger.Error("Action aborted by fatal fault", zap.Int(logg.Attempt, attempt), zap.Error(fault))

			return out, fault
		}

		last = fault

		if attempt < e.budget.MaxAttempts {
			logger.Warn("Attempt failed, retrying",
				zap.Int(logg.Attempt, attempt),
				zap.String("code", apperr.CodeOf(fault)),
				zap.Bool("classified", apperr.IsRecoverable(fault)),
				zap.Error(fault))
		}
	}

	logger.Error("Action not performed",
		zap.Int("attempts", out.Attempts),
		zap.String("code", apperr.CodeOf(last)),
		zap.Error(last))

	return out, nil
}

// attempt resolves spec and applies h once. On a retry the handler's recovery
// step runs first, on the element resolved for this attempt.
func (e *Executor) attempt(ctx context.Context, logger *zap.Logger, h Handler, spec locator.Spec, last error) (string, error) {
	el, err := e.resolver.Resolve(ctx, spec)
	if err != nil {
		return "", err
	}

	if last != nil {
		if rerr := h.Recover(ctx, el, last); rerr != nil {
			if apperr.IsFatal(rerr) {
				return "", rerr
			}

			logger.Debug("Recovery step failed", zap.Error(rerr))
		}
	}

	return h.Do(ctx, el, last)
}
