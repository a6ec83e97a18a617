package scenario

import (
	"context"
	"testing"
	"time"

	"ui-verbs/internal/action"
	"ui-verbs/internal/browser/mock"
	"ui-verbs/internal/resolver"
	"ui-verbs/internal/usecase"
	"ui-verbs/internal/wait"
	"ui-verbs/pkg/apperr"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRunner(d *mock.Driver) (*Runner, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	w := wait.New(logger, 20*time.Millisecond, 5*time.Millisecond)
	r := resolver.New(logger, d, w)
	exec := action.New(logger, r, action.RetryBudget{MaxAttempts: 2, Interval: time.Millisecond})

	svc := usecase.NewUsecase(usecase.Params{
		Logger:   logger,
		Driver:   d,
		Executor: exec,
		Resolver: r,
		Waiter:   w,
	})

	return New(svc, logger), logs
}

func grid() *mock.Driver {
	row := func(name, marker string) *mock.Node {
		return mock.El("row-"+marker, "css=tr").With(
			mock.El("name-"+marker, "xpath=./td[1]").WithText(name),
			mock.El("edit-"+marker, "css=a.edit"),
		)
	}

	d := mock.New(
		mock.El("user", "id=user"),
		mock.El("submit", "css=button[type=submit]").WithText("Sign in"),
		mock.El("grid", "css=#grid").With(row("Jane Doe", "1"), row("John Smith", "2")),
	)
	d.PageURL = "https://example.test/login"
	d.PageTitle = "Users"

	return d
}

func mustParse(t *testing.T, src string) []Step {
	t.Helper()

	steps, err := Parse([]byte(src), "test.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	return steps
}

func TestRunner_Run(t *testing.T) {
	d := grid()
	runner, logs := newRunner(d)

	steps := mustParse(t, `
- {action: type, locator: {id: user}, text: alice}
- {action: get_attribute, locator: {id: user}, attribute: value}
- {action: click, row: {rows: {css: tr, within: "#grid"}, reference: {xpath: "./td[1]"}, match: contains, expected: John, target: a.edit}}
- {action: verify_title, expect: Dashboard}
- {action: verify_url, mode: contains, expect: /login}
- {action: click, locator: "#missing"}
- {action: verify_count, locator: {css: tr}, count: 2}
`)

	report, err := runner.Run(context.Background(), steps)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Results) != len(steps) {
		t.Fatalf("results = %d, want %d", len(report.Results), len(steps))
	}

	want := []Status{StatusPassed, StatusPassed, StatusPassed, StatusFailed, StatusPassed, StatusFailed, StatusPassed}
	for i, res := range report.Results {
		if res.Status != want[i] {
			t.Errorf("step %d (%s) = %s, want %s", i+1, res.Step, res.Status, want[i])
		}
	}

	if report.Results[1].Value != "alice" {
		t.Errorf("get_attribute value = %q, want alice", report.Results[1].Value)
	}

	if check := report.Results[3].Check; check == nil || check.Actual != "Users" {
		t.Errorf("verify_title check = %+v", check)
	}

	clicked := d.Clicked()
	if len(clicked) != 1 || clicked[0].Name != "edit-2" {
		t.Errorf("clicked = %v, want [edit-2]", clicked)
	}

	if len(report.Failures()) != 2 || report.Passed() {
		t.Errorf("failures = %d, want 2", len(report.Failures()))
	}

	if logs.FilterMessage("Scenario finished").Len() != 1 {
		t.Error("missing run summary log")
	}
}

func TestRunner_FatalFaultAborts(t *testing.T) {
	d := grid()
	d.Root.Children[0].Fail(mock.OpClick, mock.ErrSessionClosed())
	runner, logs := newRunner(d)

	steps := mustParse(t, `
- {action: click, locator: {id: user}}
- {action: click, locator: "button[type=submit]"}
`)

	report, err := runner.Run(context.Background(), steps)
	if !apperr.IsFatal(err) {
		t.Fatalf("Run() error = %v, want a fatal fault", err)
	}

	if len(report.Results) != 1 || report.Results[0].Passed() {
		t.Errorf("results = %+v, want one failed step", report.Results)
	}

	if len(d.Clicked()) != 0 {
		t.Error("second step ran after a fatal fault")
	}

	if logs.FilterMessage("Scenario aborted").Len() != 1 {
		t.Error("missing abort log")
	}
}

func TestRunner_PageSteps(t *testing.T) {
	d := grid()
	runner, _ := newRunner(d)
	ctx := context.Background()

	d.AddWindow("popup")

	steps := mustParse(t, `
- {action: open, url: "https://example.test/users"}
- {action: accept_alert}
- {action: switch_window, handle: new}
- {action: switch_window, handle: nowhere}
- {action: press_page_key, key: Escape}
- {action: delete_cookies}
- {action: wait_url, mode: contains, expect: /users, timeout: 10ms}
`)

	report, err := runner.Run(ctx, steps)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []Status{StatusPassed, StatusFailed, StatusPassed, StatusFailed, StatusPassed, StatusPassed, StatusPassed}
	for i, res := range report.Results {
		if res.Status != want[i] {
			t.Errorf("step %d (%s) = %s, want %s (%s)", i+1, res.Step, res.Status, want[i], res.Detail)
		}
	}

	if report.Results[2].Value != "popup" {
		t.Errorf("switched to %q, want popup", report.Results[2].Value)
	}

	if d.HasCookies() {
		t.Error("cookies not deleted")
	}
}

func TestRunner_Exec_AlertText(t *testing.T) {
	d := grid()
	d.OpenAlert("Delete user?")
	runner, _ := newRunner(d)

	step, err := ParseLine(`{action: get_alert_text}`)
	if err != nil {
		t.Fatal(err)
	}

	res, err := runner.Exec(context.Background(), step)
	if err != nil || !res.Passed() || res.Value != "Delete user?" {
		t.Errorf("Exec() = %+v, %v", res, err)
	}
}
