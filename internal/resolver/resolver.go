package resolver

import (
	"context"
	"fmt"
	"strings"

	"ui-verbs/internal/locator"
	"ui-verbs/internal/ports"
	"ui-verbs/internal/wait"
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
	resolverName  = "Resolver"
	resolverTrace = "ui.resolver"
)

// Resolver turns locators into element handles. It never caches handles:
// every call goes back to the driver.
type Resolver struct {
	logger *zap.Logger
	tracer trace.Tracer
	driver ports.Driver
	waiter *wait.Waiter
}

type Params struct {
	fx.In

	Logger *zap.Logger
	Driver ports.Driver
	Waiter *wait.Waiter
}

func NewResolver(params Params) *Resolver {
	return New(params.Logger, params.Driver, params.Waiter)
}

// New builds a resolver. Unmet waits are logged at warn level here because
// the caller decides whether a failed resolution is final.
func New(logger *zap.Logger, driver ports.Driver, waiter *wait.Waiter) *Resolver {
	return &Resolver{
		logger: logger.With(zap.String(logg.Layer, resolverName)),
		tracer: otel.Tracer(resolverTrace),
		driver: driver,
		waiter: waiter.WithTimeoutLevel(zapcore.WarnLevel),
	}
}

// Resolve returns the single element addressed by spec. Failures are apperr
// errors; all of them are recoverable except fatal session faults.
func (r *Resolver) Resolve(ctx context.Context, spec locator.Spec) (el ports.Element, err error) {
	const op = "Resolve"
	logger := r.logger.With(zap.String(logg.Operation, op), zap.Stringer(logg.Locator, spec))

	ctx, step := tracing.StartSpan(ctx, r.tracer, logger, op, attribute.String(tracing.AttrLocator, spec.String()))
	defer func() {
		step.End(err)
	}()

	if row, ok := spec.RowSpec(); ok {
		return r.ResolveRow(ctx, row)
	}

	l, ok := spec.Locator()
	if !ok {
		return nil, apperr.InvalidReqError(op, "spec", fmt.Errorf("empty resolution spec"))
	}

	return r.find(ctx, r.driver, l, false)
}

// ResolveAll returns every displayed match of l in document order. The slice
// is a snapshot: it is not refreshed if the page changes afterwards.
func (r *Resolver) ResolveAll(ctx context.Context, l locator.Locator) (els []ports.Element, err error) {
	const op = "ResolveAll"
	logger := r.logger.With(zap.String(logg.Operation, op), zap.Stringer(logg.Locator, l))

	ctx, step := tracing.StartSpan(ctx, r.tracer, logger, op, attribute.String(tracing.AttrLocator, l.String()))
	defer func() {
		step.End(err)
	}()

	scope, err := r.scope(ctx, r.driver, l, false)
	if err != nil {
		return nil, err
	}

	els, ok, err := wait.Await(ctx, r.waiter, wait.AllVisible(scope, l.Criterion()), 0)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, apperr.Wrap(op, apperr.CodeNotFound, fmt.Errorf("no visible element for %s", l), map[string]any{
			apperr.MetaLocator: l.String(),
			apperr.MetaStage:   apperr.StageResolution,
		})
	}

	logger.Debug("Resolved list", zap.Int("count", len(els)))

	return els, nil
}

// ResolveRow scans the rows in order and returns Target inside the first row
// whose reference value satisfies the match. Later rows are never looked at.
// A row whose reference cannot be read is skipped.
func (r *Resolver) ResolveRow(ctx context.Context, rs locator.RowSpec) (el ports.Element, err error) {
	const op = "ResolveRow"
	logger := r.logger.With(zap.String(logg.Operation, op), zap.Stringer(logg.Locator, rs))

	ctx, step := tracing.StartSpan(ctx, r.tracer, logger, op, attribute.String(tracing.AttrLocator, rs.String()))
	defer func() {
		step.End(err)
	}()

	rows, err := r.ResolveAll(ctx, rs.Rows)
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		ref, err := r.find(ctx, row, rs.Match.Reference, true)
		if err != nil {
			if apperr.IsFatal(err) {
				return nil, err
			}

			logger.Debug("Row skipped, reference not resolved", zap.Int("row", i), zap.Error(err))

			continue
		}

		value, err := readValue(ctx, ref, rs.Match.Source)
		if err != nil {
			if apperr.IsFatal(err) {
				return nil, err
			}

			logger.Debug("Row skipped, reference not readable", zap.Int("row", i), zap.Error(err))

			continue
		}

		if !rs.Match.Mode.Matches(value, rs.Match.Expected) {
			continue
		}

		logger.Debug("Row matched", zap.Int("row", i), zap.String("value", value))
		step.AddEvent("row matched", attribute.Int("row", i))

		return r.find(ctx, row, rs.Target, false)
	}

	return nil, apperr.Wrap(op, apperr.CodeRowNotMatched, fmt.Errorf("no row of %d where %s", len(rows), rs.Match), map[string]any{
		apperr.MetaLocator: rs.String(),
		apperr.MetaStage:   apperr.StageResolution,
	})
}

// find resolves l under root. With once set every step is probed a single
// time instead of waited for.
func (r *Resolver) find(ctx context.Context, root ports.Searcher, l locator.Locator, once bool) (ports.Element, error) {
	const op = "find"

	scope, err := r.scope(ctx, root, l, once)
	if err != nil {
		return nil, err
	}

	var cond wait.Condition[ports.Element]
	if idx, ok := l.Index(); ok {
		cond = wait.Visible(scope, l.Criterion(), idx)
	} else {
		cond = wait.Present(scope, l.Criterion())
	}

	var (
		el ports.Element
		ok bool
	)

	if once {
		el, ok, err = wait.Probe(ctx, r.waiter, cond)
	} else {
		el, ok, err = wait.Await(ctx, r.waiter, cond, 0)
	}

	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, apperr.Wrap(op, apperr.CodeNotFound, fmt.Errorf("no element for %s", l), map[string]any{
			apperr.MetaLocator: l.String(),
			apperr.MetaStage:   apperr.StageResolution,
		})
	}

	return el, nil
}

// Scope resolves the parents of l and returns what l itself is looked up in:
// the page for absolute locators, otherwise the parent element.
func (r *Resolver) Scope(ctx context.Context, l locator.Locator) (ports.Searcher, error) {
	return r.scope(ctx, r.driver, l, false)
}

func (r *Resolver) scope(ctx context.Context, root ports.Searcher, l locator.Locator, once bool) (ports.Searcher, error) {
	if pe := l.ParentElement(); pe != nil {
		return pe, nil
	}

	parent, ok := l.Parent()
	if !ok {
		return root, nil
	}

	el, err := r.find(ctx, root, parent, once)
	if err != nil {
		return nil, err
	}

	return el, nil
}

func readValue(ctx context.Context, el ports.Element, src locator.Source) (string, error) {
	if src.IsText() {
		text, err := el.Text(ctx)

		return strings.TrimSpace(text), err
	}

	value, _, err := el.Attribute(ctx, src.Attribute)

	return strings.TrimSpace(value), err
}
