package ports

import (
	"context"
	"time"

	"ui-verbs/internal/entity"
)

// Searcher is anything elements can be looked up from: the page or an element.
type Searcher interface {
	// FindElement returns an apperr CodeNotFound error when nothing matches.
	FindElement(ctx context.Context, c entity.Criterion) (Element, error)
	// FindElements returns an empty slice, not an error, when nothing matches.
	FindElements(ctx context.Context, c entity.Criterion) ([]Element, error)
}

// Element is a handle valid for a single attempt; it may go stale at any time.
type Element interface {
	Searcher

	Click(ctx context.Context) error
	// DispatchClick fires a click event on the node itself, independent of
	// coordinates and of whatever overlays it.
	DispatchClick(ctx context.Context) error
	DoubleClick(ctx context.Context) error
	ClickAndHold(ctx context.Context) error
	Hover(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	PressKey(ctx context.Context, key entity.Key) error
	Clear(ctx context.Context) error
	ScrollIntoView(ctx context.Context) error

	Text(ctx context.Context) (string, error)
	// Attribute reports ok=false when the attribute is absent on a live element.
	Attribute(ctx context.Context, name string) (value string, ok bool, err error)
	// SelectedOption returns the visible text of the selected option of a select.
	SelectedOption(ctx context.Context) (string, error)

	IsDisplayed(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
	IsSelected(ctx context.Context) (bool, error)
}

// Driver is one exclusive automation session.
type Driver interface {
	Searcher

	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	PressKey(ctx context.Context, key entity.Key) error
	Screenshot(ctx context.Context) ([]byte, error)

	// AlertText returns an apperr CodeNoAlert error when no dialog is open.
	AlertText(ctx context.Context) (string, error)
	AcceptAlert(ctx context.Context) error
	DismissAlert(ctx context.Context) error
	SendAlertText(ctx context.Context, text string) error

	WindowHandles(ctx context.Context) ([]string, error)
	CurrentWindow(ctx context.Context) (string, error)
	SwitchWindow(ctx context.Context, handle string) error

	DeleteAllCookies(ctx context.Context) error
	SetImplicitWait(ctx context.Context, d time.Duration) error

	Close(ctx context.Context) error
}

// Launcher opens sessions for one backend.
type Launcher interface {
	Open(ctx context.Context) (Driver, error)
	Name() string
}
