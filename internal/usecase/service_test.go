package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ui-verbs/internal/action"
	"ui-verbs/internal/browser/mock"
	"ui-verbs/internal/entity"
	"ui-verbs/internal/locator"
	"ui-verbs/internal/resolver"
	"ui-verbs/internal/verify"
	"ui-verbs/internal/wait"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newService(d *mock.Driver) (*Service, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	w := wait.New(logger, 30*time.Millisecond, 5*time.Millisecond)
	r := resolver.New(logger, d, w)
	exec := action.New(logger, r, action.RetryBudget{MaxAttempts: 2, Interval: time.Millisecond})

	return NewUsecase(Params{
		Logger:   logger,
		Driver:   d,
		Executor: exec,
		Resolver: r,
		Waiter:   w,
	}), logs
}

func loginPage() *mock.Driver {
	user := mock.El("user", "id=user")
	user.Value = "stale"
	remember := mock.El("remember", "id=remember")
	remember.Selected = true
	country := mock.El("country", "name=country")
	country.Value = "Norway"
	banner := mock.El("banner", "css=.banner").WithText(" Welcome back ")
	banner.Hidden = true

	d := mock.New(
		user,
		remember,
		country,
		banner,
		mock.El("submit", "css=button[type=submit]").WithText("Sign in").WithAttr("class", "btn primary"),
		mock.El("item", "css=li"),
		mock.El("item", "css=li"),
	)
	d.PageURL = "https://example.test/login"
	d.PageTitle = "Sign in - Example"

	return d
}

func TestElementService_Verbs(t *testing.T) {
	d := loginPage()
	svc, _ := newService(d)
	ctx := context.Background()
	user := locator.Single(locator.ID("user"))

	if out, err := svc.Elements.Type(ctx, user, "alice"); err != nil || !out.Applied {
		t.Fatalf("Type() = %+v, %v", out, err)
	}
	if out, _ := svc.Elements.Attribute(ctx, user, "value"); out.Text() != "alice" {
		t.Errorf("value after Type = %q, want alice", out.Text())
	}

	if _, err := svc.Elements.SendText(ctx, user, "!"); err != nil {
		t.Fatal(err)
	}
	if out, _ := svc.Elements.Attribute(ctx, user, "value"); out.Text() != "alice!" {
		t.Errorf("value after SendText = %q, want alice!", out.Text())
	}

	if _, err := svc.Elements.PressKey(ctx, user, entity.KeyEnter); err != nil {
		t.Fatal(err)
	}
	if keys := d.Keys(); len(keys) != 1 || keys[0] != entity.KeyEnter {
		t.Errorf("keys = %v, want [Enter]", keys)
	}

	if out, _ := svc.Elements.DropdownValue(ctx, locator.Single(locator.Name("country"))); out.Text() != "Norway" {
		t.Errorf("DropdownValue = %q, want Norway", out.Text())
	}

	if out, _ := svc.Elements.Click(ctx, locator.Single(locator.CSS("button[type=submit]"))); !out.Applied {
		t.Error("Click not applied")
	}

	if out, _ := svc.Elements.IsSelected(ctx, locator.Single(locator.ID("remember"))); out.Text() != "true" {
		t.Errorf("IsSelected = %q, want true", out.Text())
	}
}

func TestVerifyService(t *testing.T) {
	d := loginPage()
	svc, logs := newService(d)
	ctx := context.Background()
	submit := locator.Single(locator.CSS("button[type=submit]"))

	tests := []struct {
		name string
		run  func() (verify.Result, error)
		want bool
	}{
		{"text equals", func() (verify.Result, error) {
			return svc.Verify.VerifyText(ctx, submit, verify.Equals, "Sign in")
		}, true},
		{"text not contains", func() (verify.Result, error) {
			return svc.Verify.VerifyText(ctx, submit, verify.NotContains, "Sign")
		}, false},
		{"attribute contains", func() (verify.Result, error) {
			return svc.Verify.VerifyAttribute(ctx, submit, "class", verify.Contains, "primary")
		}, true},
		{"text of missing element", func() (verify.Result, error) {
			return svc.Verify.VerifyText(ctx, locator.Single(locator.ID("nope")), verify.NotEquals, "x")
		}, false},
		{"hidden banner not displayed", func() (verify.Result, error) {
			return svc.Verify.VerifyDisplayed(ctx, locator.Single(locator.CSS(".banner")), false)
		}, true},
		{"absent element not displayed", func() (verify.Result, error) {
			return svc.Verify.VerifyDisplayed(ctx, locator.Single(locator.CSS(".toast")), false)
		}, true},
		{"submit displayed", func() (verify.Result, error) {
			return svc.Verify.VerifyDisplayed(ctx, submit, true)
		}, true},
		{"selected", func() (verify.Result, error) {
			return svc.Verify.VerifySelected(ctx, locator.Single(locator.ID("remember")), true)
		}, true},
		{"url contains", func() (verify.Result, error) {
			return svc.Verify.VerifyURL(ctx, verify.Contains, "/login")
		}, true},
		{"title equals", func() (verify.Result, error) {
			return svc.Verify.VerifyTitle(ctx, verify.Equals, "Dashboard")
		}, false},
		{"count", func() (verify.Result, error) {
			return svc.Verify.VerifyCount(ctx, locator.CSS("li"), 2)
		}, true},
		{"count mismatch", func() (verify.Result, error) {
			return svc.Verify.VerifyCount(ctx, locator.CSS("li"), 3)
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.run()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if res.Passed != tt.want {
				t.Errorf("Passed = %v, want %v (%s)", res.Passed, tt.want, res.Message())
			}
		})
	}

	if len(d.Clicked()) != 0 || len(d.Keys()) != 0 {
		t.Error("verification interacted with the page")
	}
	if logs.FilterMessage("Verification failed").Len() == 0 {
		t.Error("failed verifications were not logged")
	}
}

func TestVerifyService_CountReportsActual(t *testing.T) {
	svc, _ := newService(loginPage())

	res, err := svc.Verify.VerifyCount(context.Background(), locator.CSS("li"), 5)
	if err != nil {
		t.Fatal(err)
	}

	if res.Actual != "2" || res.Expected != "5" {
		t.Errorf("result = %+v, want actual 2 expected 5", res)
	}
}

func TestPageService(t *testing.T) {
	d := loginPage()
	svc, _ := newService(d)
	ctx := context.Background()

	if err := svc.Page.Open(ctx, "https://example.test/home"); err != nil {
		t.Fatal(err)
	}
	if u, _ := svc.Page.URL(ctx); u != "https://example.test/home" {
		t.Errorf("URL() = %q", u)
	}
	if err := svc.Page.Open(ctx, ""); err == nil {
		t.Error("Open(\"\") should fail")
	}

	if ok, err := svc.Page.AcceptAlert(ctx); ok || err != nil {
		t.Errorf("AcceptAlert without dialog = %v, %v, want false, nil", ok, err)
	}

	d.OpenAlert("Name?")
	if ok, _ := svc.Page.SendAlertText(ctx, "bob"); !ok || d.Prompt() != "bob" {
		t.Errorf("SendAlertText did not reach the prompt, got %q", d.Prompt())
	}
	if text, ok, _ := svc.Page.AlertText(ctx); !ok || text != "Name?" {
		t.Errorf("AlertText() = %q, %v", text, ok)
	}
	if ok, _ := svc.Page.DismissAlert(ctx); !ok {
		t.Error("DismissAlert failed")
	}

	d.AddWindow("popup")
	handle, ok, err := svc.Page.SwitchToNewWindow(ctx)
	if err != nil || !ok || handle != "popup" {
		t.Errorf("SwitchToNewWindow() = %q, %v, %v", handle, ok, err)
	}
	if err := svc.Page.SwitchWindow(ctx, "missing"); err == nil {
		t.Error("SwitchWindow to unknown handle should fail")
	}

	if err := svc.Page.DeleteCookies(ctx); err != nil || d.HasCookies() {
		t.Errorf("DeleteCookies() = %v, cookies left %v", err, d.HasCookies())
	}

	path := filepath.Join(t.TempDir(), "shots", "page.png")
	if err := svc.Page.Screenshot(ctx, path); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("screenshot not written: %v", err)
	}
}

func TestWaitService(t *testing.T) {
	d := loginPage()
	svc, _ := newService(d)
	ctx := context.Background()

	if ok, _ := svc.Waits.WaitVisible(ctx, locator.CSS("li").At(1), 0); !ok {
		t.Error("second li should be visible")
	}
	if ok, _ := svc.Waits.WaitVisible(ctx, locator.CSS(".banner"), 10*time.Millisecond); ok {
		t.Error("hidden banner reported visible")
	}
	if ok, _ := svc.Waits.WaitInvisible(ctx, locator.CSS(".banner"), 0); !ok {
		t.Error("hidden banner should count as invisible")
	}
	if ok, _ := svc.Waits.WaitInvisible(ctx, locator.CSS("td").Within(locator.ID("grid")), 0); !ok {
		t.Error("child of absent parent should count as invisible")
	}
	if ok, _ := svc.Waits.WaitURL(ctx, entity.MatchContains, "/login", 0); !ok {
		t.Error("WaitURL contains /login")
	}
	if ok, _ := svc.Waits.WaitTitle(ctx, entity.MatchEquals, "Other", 10*time.Millisecond); ok {
		t.Error("WaitTitle matched the wrong title")
	}
}
