package bootstrap

import (
	"context"
	"errors"
	"testing"

	"ui-verbs/internal/browser"
	"ui-verbs/internal/browser/mock"
	"ui-verbs/internal/ports"
	"ui-verbs/internal/scenario"
	"ui-verbs/pkg/apperr"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func withLauncher(l *mock.Launcher) fx.Option {
	return fx.Replace(fx.Annotate(l, fx.As(new(ports.Launcher))))
}

func TestModule_SessionFollowsLifecycle(t *testing.T) {
	t.Setenv("DRIVER_BACKEND", "playwright")

	d := mock.New(mock.El("go", "css=#go"))

	var (
		session *browser.Session
		runner  *scenario.Runner
	)

	app := fxtest.New(t, Module(), withLauncher(&mock.Launcher{Driver: d}), fx.Populate(&session, &runner))

	if session.IsOpen() {
		t.Fatal("session open before start")
	}

	app.RequireStart()

	if !session.IsOpen() {
		t.Fatal("session not opened on start")
	}

	step, err := scenario.ParseLine(`{action: click, locator: "#go"}`)
	if err != nil {
		t.Fatal(err)
	}

	res, err := runner.Exec(context.Background(), step)
	if err != nil || !res.Passed() {
		t.Fatalf("Exec() = %v, %v", res, err)
	}

	app.RequireStop()

	if session.IsOpen() || !d.Closed() {
		t.Error("session not closed on stop")
	}
}

func TestRunScenario(t *testing.T) {
	t.Setenv("DRIVER_BACKEND", "rod")

	d := mock.New(mock.El("go", "css=#go").WithText("Go"))
	d.PageTitle = "Home"

	steps, err := scenario.Parse([]byte(`
- {action: click, locator: "#go"}
- {action: verify_text, locator: "#go", expect: Go}
- {action: verify_title, expect: Away}
`), "run.yaml")
	if err != nil {
		t.Fatal(err)
	}

	report, err := RunScenario(context.Background(), steps, withLauncher(&mock.Launcher{Driver: d}))
	if err != nil {
		t.Fatalf("RunScenario() error = %v", err)
	}

	if len(report.Results) != 3 || len(report.Failures()) != 1 {
		t.Errorf("report = %+v, want 3 results with 1 failure", report.Results)
	}

	if !d.Closed() {
		t.Error("session left open")
	}
}

func TestRunScenario_OpenFails(t *testing.T) {
	t.Setenv("DRIVER_BACKEND", "selenium")

	openErr := apperr.Wrap("Open", apperr.CodeSessionNotReady, errors.New("no browser"), nil)

	_, err := RunScenario(context.Background(), nil, withLauncher(&mock.Launcher{Err: openErr}))
	if !apperr.IsFatal(err) {
		t.Errorf("RunScenario() error = %v, want the open failure", err)
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	t.Setenv("APP_LOG_LEVEL", "loud")

	err := NewApp().Err()
	if err == nil {
		t.Error("NewApp() should reject an unknown log level")
	}
}
