package scenario

import (
	"context"
	"fmt"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/usecase"
	"ui-verbs/internal/verify"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"
	"ui-verbs/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	runnerName  = "ScenarioRunner"
	runnerTrace = "scenario.runner"
)

type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// Result is the outcome of one step. Value carries what get steps read and
// the handle switch_window landed on.
type Result struct {
	Step   Step
	Status Status
	Value  string
	Check  *verify.Result
	Detail string
}

func (r Result) Passed() bool {
	return r.Status == StatusPassed
}

func (r Result) String() string {
	s := fmt.Sprintf("line %d %s: %s", r.Step.Line, r.Step, r.Status)

	switch {
	case r.Check != nil:
		s += " (" + r.Check.Message() + ")"
	case r.Detail != "":
		s += " (" + r.Detail + ")"
	case r.Value != "":
		s += fmt.Sprintf(" = %q", r.Value)
	}

	return s
}

type Report struct {
	Results []Result
}

func (r Report) Failures() []Result {
	var out []Result

	for _, res := range r.Results {
		if !res.Passed() {
			out = append(out, res)
		}
	}

	return out
}

func (r Report) Passed() bool {
	return len(r.Failures()) == 0
}

type Runner struct {
	service *usecase.Service
	logger  *zap.Logger
	tracer  trace.Tracer
}

type Params struct {
	fx.In

	Service *usecase.Service
	Logger  *zap.Logger
}

func NewRunner(params Params) *Runner {
	return New(params.Service, params.Logger)
}

func New(service *usecase.Service, logger *zap.Logger) *Runner {
	return &Runner{
		service: service,
		logger:  logger.With(zap.String(logg.Layer, runnerName)),
		tracer:  otel.Tracer(runnerTrace),
	}
}

// Run executes steps in order. Failed steps are recorded and the run goes on;
// an error stops it and is returned with the results gathered so far.
func (r *Runner) Run(ctx context.Context, steps []Step) (report Report, err error) {
	const op = "Run"
	logger := r.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, r.tracer, logger, op, attribute.Int("steps", len(steps)))
	defer func() {
		step.End(err)
	}()

	for i, s := range steps {
		res, err := r.Exec(ctx, s)
		report.Results = append(report.Results, res)

		if err != nil {
			logger.Error("Scenario aborted",
				zap.Int(logg.Step, i+1),
				zap.String(logg.Action, string(s.Action)),
				zap.Error(err))

			return report, err
		}
	}

	failed := len(report.Failures())
	logger.Info("Scenario finished",
		zap.Int("steps", len(steps)),
		zap.Int("passed", len(steps)-failed),
		zap.Int("failed", failed))

	return report, nil
}

// Exec runs one step. Recoverable UI faults that escape a verb fail the step;
// any other error is returned.
func (r *Runner) Exec(ctx context.Context, s Step) (res Result, err error) {
	logger := r.logger.With(zap.Int("line", s.Line), zap.String(logg.Action, string(s.Action)))

	res, err = r.dispatch(ctx, s)
	res.Step = s

	if err != nil && apperr.IsRecoverable(err) {
		res.Status = StatusFailed
		res.Detail = err.Error()
		err = nil
	}

	if err != nil {
		res.Status = StatusFailed
		res.Detail = err.Error()

		return res, err
	}

	if res.Passed() {
		logger.Debug("Step passed", zap.String("value", res.Value))
	} else {
		logger.Warn("Step failed", zap.String("detail", res.Detail))
	}

	return res, nil
}

func (r *Runner) dispatch(ctx context.Context, s Step) (Result, error) {
	switch s.Action {
	case ActionClick, ActionDoubleClick, ActionClickAndHold, ActionHover, ActionPressKey, ActionClear,
		ActionType, ActionSendText, ActionText, ActionAttribute, ActionDropdownValue:
		out, err := r.element(ctx, s)
		if err != nil {
			return Result{}, err
		}

		if !out.Applied {
			return failed(fmt.Sprintf("not applied after %d attempts", out.Attempts)), nil
		}

		return Result{Status: StatusPassed, Value: out.Text()}, nil

	case ActionVerifyText, ActionVerifyAttribute, ActionVerifyDisplayed, ActionVerifySelected,
		ActionVerifyURL, ActionVerifyTitle, ActionVerifyCount:
		check, err := r.verify(ctx, s)
		if err != nil {
			return Result{}, err
		}

		res := Result{Status: StatusFailed, Check: &check}
		if check.Passed {
			res.Status = StatusPassed
		}

		return res, nil

	case ActionWaitVisible, ActionWaitInvisible, ActionWaitURL, ActionWaitTitle:
		ok, err := r.wait(ctx, s)
		if err != nil {
			return Result{}, err
		}

		return okResult(ok, "condition not met in time", ""), nil
	}

	return r.page(ctx, s)
}

func (r *Runner) element(ctx context.Context, s Step) (entity.Outcome, error) {
	spec, err := s.Spec()
	if err != nil {
		return entity.Outcome{}, apperr.InvalidReqError("element", "locator", err)
	}

	el := r.service.Elements

	switch s.Action {
	case ActionClick:
		return el.Click(ctx, spec)
	case ActionDoubleClick:
		return el.DoubleClick(ctx, spec)
	case ActionClickAndHold:
		return el.ClickAndHold(ctx, spec)
	case ActionHover:
		return el.Hover(ctx, spec)
	case ActionPressKey:
		return el.PressKey(ctx, spec, s.Key)
	case ActionClear:
		return el.Clear(ctx, spec)
	case ActionType:
		return el.Type(ctx, spec, s.Text)
	case ActionSendText:
		return el.SendText(ctx, spec, s.Text)
	case ActionText:
		return el.Text(ctx, spec)
	case ActionAttribute:
		return el.Attribute(ctx, spec, s.Attribute)
	case ActionDropdownValue:
		return el.DropdownValue(ctx, spec)
	}

	return entity.Outcome{}, unknownAction(s)
}

func (r *Runner) verify(ctx context.Context, s Step) (verify.Result, error) {
	v := r.service.Verify

	switch s.Action {
	case ActionVerifyURL, ActionVerifyTitle:
		mode, err := s.VerifyMode()
		if err != nil {
			return verify.Result{}, apperr.InvalidReqError("verify", "mode", err)
		}

		if s.Action == ActionVerifyURL {
			return v.VerifyURL(ctx, mode, s.Expect)
		}

		return v.VerifyTitle(ctx, mode, s.Expect)

	case ActionVerifyCount:
		l, err := s.Locator.Locator()
		if err != nil {
			return verify.Result{}, apperr.InvalidReqError("verify", "locator", err)
		}

		return v.VerifyCount(ctx, l, *s.Count)
	}

	spec, err := s.Spec()
	if err != nil {
		return verify.Result{}, apperr.InvalidReqError("verify", "locator", err)
	}

	switch s.Action {
	case ActionVerifyDisplayed, ActionVerifySelected:
		expected, err := s.ExpectBool()
		if err != nil {
			return verify.Result{}, apperr.InvalidReqError("verify", "expect", err)
		}

		if s.Action == ActionVerifyDisplayed {
			return v.VerifyDisplayed(ctx, spec, expected)
		}

		return v.VerifySelected(ctx, spec, expected)
	}

	mode, err := s.VerifyMode()
	if err != nil {
		return verify.Result{}, apperr.InvalidReqError("verify", "mode", err)
	}

	switch s.Action {
	case ActionVerifyText:
		return v.VerifyText(ctx, spec, mode, s.Expect)
	case ActionVerifyAttribute:
		return v.VerifyAttribute(ctx, spec, s.Attribute, mode, s.Expect)
	}

	return verify.Result{}, unknownAction(s)
}

func (r *Runner) wait(ctx context.Context, s Step) (bool, error) {
	w := r.service.Waits

	switch s.Action {
	case ActionWaitVisible, ActionWaitInvisible:
		l, err := s.Locator.Locator()
		if err != nil {
			return false, apperr.InvalidReqError("wait", "locator", err)
		}

		if s.Action == ActionWaitVisible {
			return w.WaitVisible(ctx, l, s.Timeout)
		}

		return w.WaitInvisible(ctx, l, s.Timeout)
	}

	mode, err := s.MatchMode()
	if err != nil {
		return false, apperr.InvalidReqError("wait", "mode", err)
	}

	if s.Action == ActionWaitURL {
		return w.WaitURL(ctx, mode, s.Expect, s.Timeout)
	}

	return w.WaitTitle(ctx, mode, s.Expect, s.Timeout)
}

func (r *Runner) page(ctx context.Context, s Step) (Result, error) {
	p := r.service.Page
	passed := Result{Status: StatusPassed}

	switch s.Action {
	case ActionOpen:
		return passed, p.Open(ctx, s.URL)
	case ActionPressPageKey:
		return passed, p.PressKey(ctx, s.Key)
	case ActionScreenshot:
		return passed, p.Screenshot(ctx, s.Path)
	case ActionDeleteCookies:
		return passed, p.DeleteCookies(ctx)

	case ActionAcceptAlert:
		ok, err := p.AcceptAlert(ctx)

		return okResult(ok, "no alert", ""), err
	case ActionDismissAlert:
		ok, err := p.DismissAlert(ctx)

		return okResult(ok, "no alert", ""), err
	case ActionAlertText:
		text, ok, err := p.AlertText(ctx)

		return okResult(ok, "no alert", text), err
	case ActionSendAlertText:
		ok, err := p.SendAlertText(ctx, s.Text)

		return okResult(ok, "no alert", ""), err

	case ActionSwitchWindow:
		if s.Handle == NewWindow {
			handle, ok, err := p.SwitchToNewWindow(ctx)

			return okResult(ok, "no new window", handle), err
		}

		if err := p.SwitchWindow(ctx, s.Handle); err != nil {
			return Result{}, err
		}

		return Result{Status: StatusPassed, Value: s.Handle}, nil
	}

	return Result{}, unknownAction(s)
}

func okResult(ok bool, detail, value string) Result {
	if !ok {
		return failed(detail)
	}

	return Result{Status: StatusPassed, Value: value}
}

func failed(detail string) Result {
	return Result{Status: StatusFailed, Detail: detail}
}

func unknownAction(s Step) error {
	return apperr.InvalidReqError("dispatch", "action", fmt.Errorf("unknown action %q", s.Action))
}
