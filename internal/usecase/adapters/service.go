package adapters

import (
	"context"
	"time"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/locator"
	"ui-verbs/internal/verify"
)

// ElementService performs element actions through the retrying executor.
// An action that could not be applied is reported in the outcome, not as an
// error.
type ElementService interface {
	Click(ctx context.Context, spec locator.Spec) (entity.Outcome, error)
	ClickAndHold(ctx context.Context, spec locator.Spec) (entity.Outcome, error)
	DoubleClick(ctx context.Context, spec locator.Spec) (entity.Outcome, error)
	Hover(ctx context.Context, spec locator.Spec) (entity.Outcome, error)
	PressKey(ctx context.Context, spec locator.Spec, key entity.Key) (entity.Outcome, error)
	Clear(ctx context.Context, spec locator.Spec) (entity.Outcome, error)
	Type(ctx context.Context, spec locator.Spec, text string) (entity.Outcome, error)
	SendText(ctx context.Context, spec locator.Spec, text string) (entity.Outcome, error)
	Text(ctx context.Context, spec locator.Spec) (entity.Outcome, error)
	Attribute(ctx context.Context, spec locator.Spec, name string) (entity.Outcome, error)
	DropdownValue(ctx context.Context, spec locator.Spec) (entity.Outcome, error)
	IsDisplayed(ctx context.Context, spec locator.Spec) (entity.Outcome, error)
	IsEnabled(ctx context.Context, spec locator.Spec) (entity.Outcome, error)
	IsSelected(ctx context.Context, spec locator.Spec) (entity.Outcome, error)
}

type VerifyService interface {
	VerifyText(ctx context.Context, spec locator.Spec, mode verify.Mode, expected string) (verify.Result, error)
	VerifyAttribute(ctx context.Context, spec locator.Spec, name string, mode verify.Mode, expected string) (verify.Result, error)
	VerifyDisplayed(ctx context.Context, spec locator.Spec, expected bool) (verify.Result, error)
	VerifySelected(ctx context.Context, spec locator.Spec, expected bool) (verify.Result, error)
	VerifyURL(ctx context.Context, mode verify.Mode, expected string) (verify.Result, error)
	VerifyTitle(ctx context.Context, mode verify.Mode, expected string) (verify.Result, error)
	VerifyCount(ctx context.Context, loc locator.Locator, expected int) (verify.Result, error)
}

// PageService covers session level verbs. Alert verbs wait for a dialog and
// report ok=false when none showed up in time.
type PageService interface {
	Open(ctx context.Context, url string) error
	URL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	PressKey(ctx context.Context, key entity.Key) error
	Screenshot(ctx context.Context, path string) error
	AcceptAlert(ctx context.Context) (bool, error)
	DismissAlert(ctx context.Context) (bool, error)
	AlertText(ctx context.Context) (string, bool, error)
	SendAlertText(ctx context.Context, text string) (bool, error)
	Windows(ctx context.Context) ([]string, error)
	SwitchWindow(ctx context.Context, handle string) error
	SwitchToNewWindow(ctx context.Context) (string, bool, error)
	DeleteCookies(ctx context.Context) error
}

// WaitService exposes explicit waits. A zero timeout uses the configured
// explicit wait.
type WaitService interface {
	WaitVisible(ctx context.Context, loc locator.Locator, timeout time.Duration) (bool, error)
	WaitInvisible(ctx context.Context, loc locator.Locator, timeout time.Duration) (bool, error)
	WaitURL(ctx context.Context, mode entity.Match, expected string, timeout time.Duration) (bool, error)
	WaitTitle(ctx context.Context, mode entity.Match, expected string, timeout time.Duration) (bool, error)
}
