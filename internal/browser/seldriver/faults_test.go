package seldriver

import (
	"context"
	"errors"
	"testing"

	"ui-verbs/internal/config"
	"ui-verbs/internal/entity"
	"ui-verbs/pkg/apperr"

	"github.com/tebeka/selenium"
	"go.uber.org/zap"
)

func TestFault(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&selenium.Error{Err: "stale element reference", Message: "element is not attached to the page document"}, apperr.CodeStale},
		{&selenium.Error{Err: "element click intercepted", Message: "Other element would receive the click"}, apperr.CodeClickIntercepted},
		{&selenium.Error{Err: "element not interactable"}, apperr.CodeNotInteractable},
		{&selenium.Error{Err: "move target out of bounds"}, apperr.CodeOutOfViewport},
		{&selenium.Error{Err: "no such element", Message: "Unable to locate element"}, apperr.CodeNotFound},
		{&selenium.Error{Err: "no such alert"}, apperr.CodeNoAlert},
		{&selenium.Error{Err: "invalid session id"}, apperr.CodeSessionNotReady},
		{&selenium.Error{Err: "timeout"}, apperr.CodeTimeout},
		{errors.New("javascript error: boom"), apperr.CodeActionFailed},
	}

	for _, tt := range tests {
		if got := apperr.CodeOf(fault("Click", tt.err)); got != tt.want {
			t.Errorf("fault(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMissingValue(t *testing.T) {
	if !missingValue(errors.New("nil return value")) {
		t.Error("nil return value should count as missing")
	}

	if missingValue(errors.New("stale element reference")) || missingValue(nil) {
		t.Error("other errors are not a missing value")
	}
}

func TestByFor(t *testing.T) {
	tests := map[entity.By]string{
		entity.ByCSS:             selenium.ByCSSSelector,
		entity.ByXPath:           selenium.ByXPATH,
		entity.ByID:              selenium.ByID,
		entity.ByName:            selenium.ByName,
		entity.ByTag:             selenium.ByTagName,
		entity.ByClass:           selenium.ByClassName,
		entity.ByLinkText:        selenium.ByLinkText,
		entity.ByPartialLinkText: selenium.ByPartialLinkText,
	}

	for by, want := range tests {
		got, err := byFor(entity.Criterion{By: by, Value: "x"})
		if err != nil || got != want {
			t.Errorf("byFor(%s) = %q, %v, want %q", by, got, err, want)
		}
	}

	if _, err := byFor(entity.Criterion{By: "shadow"}); !apperr.IsFatal(err) {
		t.Errorf("unknown strategy should be fatal, got %v", err)
	}
}

func TestKeyCode(t *testing.T) {
	code, err := keyCode(entity.KeyEnter)
	if err != nil || code != selenium.EnterKey {
		t.Errorf("keyCode(Enter) = %q, %v", code, err)
	}

	if _, err := keyCode("F13"); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Errorf("keyCode(F13) error = %v, want invalid argument", err)
	}
}

func TestLauncher_Capabilities(t *testing.T) {
	l := NewLauncher(&config.DriverConfig{Browser: "chromium", Headless: true, ViewportWidth: 800, ViewportHeight: 600}, zap.NewNop())

	caps, err := l.capabilities()
	if err != nil {
		t.Fatalf("capabilities: %v", err)
	}

	if caps["browserName"] != "chrome" {
		t.Errorf("browserName = %v, want chrome", caps["browserName"])
	}

	l = NewLauncher(&config.DriverConfig{Browser: "webkit"}, zap.NewNop())
	if _, err := l.capabilities(); !apperr.Is(err, apperr.CodeUnsupported) {
		t.Errorf("webkit error = %v, want unsupported", err)
	}
}

func TestLauncher_LocalFirefoxNeedsRemote(t *testing.T) {
	l := NewLauncher(&config.DriverConfig{Browser: "firefox"}, zap.NewNop())

	if _, err := l.Open(testContext(t)); !apperr.Is(err, apperr.CodeUnsupported) {
		t.Errorf("Open error = %v, want unsupported", err)
	}
}

// testContext stands in for t.Context (Go 1.24): a context cancelled when the test ends.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
