package usecase

import (
	"context"
	"fmt"
	"strconv"

	"ui-verbs/internal/action"
	"ui-verbs/internal/entity"
	"ui-verbs/internal/locator"
	"ui-verbs/internal/ports"
	"ui-verbs/internal/resolver"
	"ui-verbs/internal/verify"
	"ui-verbs/internal/wait"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"
	"ui-verbs/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	verifyServiceName = "VerifyService"
	verifyTracer      = "usecase.verify"
)

// VerifyService reads values through the executor's get actions and compares
// them. It never clicks, types or otherwise changes the page.
type VerifyService struct {
	logger   *zap.Logger
	tracer   trace.Tracer
	driver   ports.Driver
	exec     *action.Executor
	resolver *resolver.Resolver
	waiter   *wait.Waiter
}

type VerifyServiceParams struct {
	Logger   *zap.Logger
	Driver   ports.Driver
	Executor *action.Executor
	Resolver *resolver.Resolver
	Waiter   *wait.Waiter
}

func NewVerifyService(params VerifyServiceParams) *VerifyService {
	return &VerifyService{
		logger:   params.Logger.With(zap.String(logg.Layer, verifyServiceName)),
		tracer:   otel.Tracer(verifyTracer),
		driver:   params.Driver,
		exec:     params.Executor,
		resolver: params.Resolver,
		waiter:   params.Waiter,
	}
}

func (s *VerifyService) VerifyText(ctx context.Context, spec locator.Spec, mode verify.Mode, expected string) (verify.Result, error) {
	return s.compareOutcome(ctx, "VerifyText", "text of "+spec.String(), action.GetText{}, spec, mode, expected)
}

func (s *VerifyService) VerifyAttribute(ctx context.Context, spec locator.Spec, name string, mode verify.Mode, expected string) (verify.Result, error) {
	subject := fmt.Sprintf("attribute %s of %s", name, spec)

	return s.compareOutcome(ctx, "VerifyAttribute", subject, action.GetAttribute{Name: name}, spec, mode, expected)
}

// VerifyDisplayed with expected=false waits for the element to disappear when
// spec is a single locator. A missing element is not displayed.
func (s *VerifyService) VerifyDisplayed(ctx context.Context, spec locator.Spec, expected bool) (res verify.Result, err error) {
	const op = "VerifyDisplayed"
	subject := "visibility of " + spec.String()

	ctx, step, logger := s.start(ctx, op, spec.String())
	defer func() {
		step.SetAttributes(attribute.Bool("passed", res.Passed))
		step.End(err)
	}()

	if l, ok := spec.Locator(); ok && !expected {
		gone, err := s.absent(ctx, l)
		if err != nil {
			return verify.Result{}, err
		}

		return s.report(logger, verify.CompareBool(subject, !gone, false)), nil
	}

	out, err := s.exec.Perform(ctx, action.State{Which: entity.ActionIsDisplayed}, spec)
	if err != nil {
		return verify.Result{}, err
	}

	return s.report(logger, verify.CompareBool(subject, out.Applied && out.Text() == "true", expected)), nil
}

func (s *VerifyService) VerifySelected(ctx context.Context, spec locator.Spec, expected bool) (res verify.Result, err error) {
	const op = "VerifySelected"
	subject := "selection of " + spec.String()

	ctx, step, logger := s.start(ctx, op, spec.String())
	defer func() {
		step.SetAttributes(attribute.Bool("passed", res.Passed))
		step.End(err)
	}()

	out, err := s.exec.Perform(ctx, action.State{Which: entity.ActionIsSelected}, spec)
	if err != nil {
		return verify.Result{}, err
	}

	if !out.Applied {
		return s.report(logger, verify.Unavailable(verify.Equals, strconv.FormatBool(expected)).About(subject)), nil
	}

	return s.report(logger, verify.CompareBool(subject, out.Text() == "true", expected)), nil
}

func (s *VerifyService) VerifyURL(ctx context.Context, mode verify.Mode, expected string) (verify.Result, error) {
	return s.comparePage(ctx, "VerifyURL", "url", s.driver.CurrentURL, mode, expected)
}

func (s *VerifyService) VerifyTitle(ctx context.Context, mode verify.Mode, expected string) (verify.Result, error) {
	return s.comparePage(ctx, "VerifyTitle", "title", s.driver.Title, mode, expected)
}

// VerifyCount waits up to the explicit timeout for exactly expected displayed
// matches of loc.
func (s *VerifyService) VerifyCount(ctx context.Context, loc locator.Locator, expected int) (res verify.Result, err error) {
	const op = "VerifyCount"
	subject := "count of " + loc.String()

	ctx, step, logger := s.start(ctx, op, loc.String())
	defer func() {
		step.SetAttributes(attribute.Bool("passed", res.Passed))
		step.End(err)
	}()

	want := strconv.Itoa(expected)

	scope, err := s.resolver.Scope(ctx, loc)
	if err != nil {
		if apperr.IsFatal(err) {
			return verify.Result{}, err
		}

		return s.report(logger, verify.Compare(verify.Equals, "0", want).About(subject)), nil
	}

	cond := wait.CountEquals(scope, loc.Criterion(), expected)

	n, ok, err := wait.Await(ctx, s.waiter, cond, 0)
	if err != nil {
		return verify.Result{}, err
	}

	if !ok {
		if n, _, err = wait.Probe(ctx, s.waiter, cond); err != nil {
			return verify.Result{}, err
		}
	}

	return s.report(logger, verify.Compare(verify.Equals, strconv.Itoa(n), want).About(subject)), nil
}

func (s *VerifyService) compareOutcome(
	ctx context.Context,
	op, subject string,
	h action.Handler,
	spec locator.Spec,
	mode verify.Mode,
	expected string,
) (res verify.Result, err error) {
	ctx, step, logger := s.start(ctx, op, spec.String())
	defer func() {
		step.SetAttributes(attribute.Bool("passed", res.Passed))
		step.End(err)
	}()

	if !mode.Valid() {
		return verify.Result{}, apperr.InvalidReqError(op, "mode", fmt.Errorf("unknown comparison mode %q", mode))
	}

	out, err := s.exec.Perform(ctx, h, spec)
	if err != nil {
		return verify.Result{}, err
	}

	if !out.Applied {
		return s.report(logger, verify.Unavailable(mode, expected).About(subject)), nil
	}

	return s.report(logger, verify.Compare(mode, out.Text(), expected).About(subject)), nil
}

func (s *VerifyService) comparePage(
	ctx context.Context,
	op, subject string,
	read func(context.Context) (string, error),
	mode verify.Mode,
	expected string,
) (res verify.Result, err error) {
	ctx, step, logger := s.start(ctx, op, subject)
	defer func() {
		step.SetAttributes(attribute.Bool("passed", res.Passed))
		step.End(err)
	}()

	if !mode.Valid() {
		return verify.Result{}, apperr.InvalidReqError(op, "mode", fmt.Errorf("unknown comparison mode %q", mode))
	}

	actual, err := read(ctx)
	if err != nil {
		if apperr.IsFatal(err) {
			return verify.Result{}, err
		}

		logger.Warn("Page value not readable", zap.Error(err))

		return s.report(logger, verify.Unavailable(mode, expected).About(subject)), nil
	}

	return s.report(logger, verify.Compare(mode, actual, expected).About(subject)), nil
}

// absent waits for l to be hidden or gone. Without a parent there is nothing
// to hide.
func (s *VerifyService) absent(ctx context.Context, l locator.Locator) (bool, error) {
	scope, err := s.resolver.Scope(ctx, l)
	if err != nil {
		if apperr.IsFatal(err) {
			return false, err
		}

		return true, nil
	}

	gone, _, err := wait.Await(ctx, s.waiter, wait.InvisibleOrAbsent(scope, l.Criterion()), 0)

	return gone, err
}

func (s *VerifyService) start(ctx context.Context, op, target string) (context.Context, *tracing.Span, *zap.Logger) {
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.Locator, target))
	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String(tracing.AttrLocator, target))

	return ctx, step, logger
}

func (s *VerifyService) report(logger *zap.Logger, res verify.Result) verify.Result {
	if res.Passed {
		logger.Info("Verification passed", zap.String("result", res.Message()))
	} else {
		logger.Warn("Verification failed", zap.String("result", res.Message()))
	}

	return res
}
