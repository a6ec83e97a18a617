package pwdriver

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/ports"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"
	"ui-verbs/pkg/tracing"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// defaultActionTimeout bounds a single native action. It is short because the
// executor owns retries.
const defaultActionTimeout = 5 * time.Second

// Driver is one playwright browser context. Each page of the context is a
// window, addressed by a generated handle.
type Driver struct {
	logger *zap.Logger
	tracer trace.Tracer

	playwright     *playwright.Playwright
	browser        playwright.Browser
	browserContext playwright.BrowserContext

	mu      sync.Mutex
	pages   map[string]playwright.Page
	order   []string
	current string
	dialogs map[string]playwright.Dialog
	prompt  *string
	timeout time.Duration
	closed  bool
}

func newDriver(logger *zap.Logger, tracer trace.Tracer, pw *playwright.Playwright, b playwright.Browser, bc playwright.BrowserContext, first playwright.Page) *Driver {
	d := &Driver{
		logger:         logger,
		tracer:         tracer,
		playwright:     pw,
		browser:        b,
		browserContext: bc,
		pages:          make(map[string]playwright.Page),
		dialogs:        make(map[string]playwright.Dialog),
		timeout:        defaultActionTimeout,
	}

	d.current = d.track(first)
	bc.OnPage(func(p playwright.Page) {
		handle := d.track(p)
		d.logger.Debug("Window opened", zap.String("handle", handle))
	})

	return d
}

// track registers p as a window and captures its dialogs. Registered dialogs
// stay open until accepted or dismissed.
func (d *Driver) track(p playwright.Page) string {
	handle := uuid.NewString()

	d.mu.Lock()
	d.pages[handle] = p
	d.order = append(d.order, handle)
	d.mu.Unlock()

	p.OnDialog(func(dialog playwright.Dialog) {
		d.mu.Lock()
		d.dialogs[handle] = dialog
		d.mu.Unlock()

		d.logger.Debug("Dialog opened", zap.String("type", dialog.Type()), zap.String("handle", handle))
	})

	p.OnClose(func(playwright.Page) {
		d.mu.Lock()
		delete(d.pages, handle)
		delete(d.dialogs, handle)
		d.order = slices.DeleteFunc(d.order, func(h string) bool { return h == handle })
		d.mu.Unlock()
	})

	return handle
}

// page returns the current page, falling back to any open one when the
// current page was closed.
func (d *Driver) page() (playwright.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, apperr.WrapErrorWithReason("page", apperr.CodeSessionNotReady, "session_closed")
	}

	if p, ok := d.pages[d.current]; ok && !p.IsClosed() {
		return p, nil
	}

	for _, h := range d.order {
		if p := d.pages[h]; p != nil && !p.IsClosed() {
			d.logger.Info("Current window closed, switched to an open one", zap.String("handle", h))
			d.current = h

			return p, nil
		}
	}

	return nil, apperr.WrapErrorWithReason("page", apperr.CodeSessionNotReady, "no_open_window")
}

func (d *Driver) actionTimeout() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return float64(d.timeout.Milliseconds())
}

func (d *Driver) wrap(p playwright.Page, h playwright.ElementHandle) *Element {
	return &Element{handle: h, page: p, driver: d}
}

func (d *Driver) wrapAll(p playwright.Page, hs []playwright.ElementHandle) []ports.Element {
	out := make([]ports.Element, 0, len(hs))
	for _, h := range hs {
		out = append(out, d.wrap(p, h))
	}

	return out
}

func (d *Driver) FindElement(ctx context.Context, c entity.Criterion) (ports.Element, error) {
	const op = "FindElement"

	p, err := d.page()
	if err != nil {
		return nil, err
	}

	sel, err := selector(c)
	if err != nil {
		return nil, err
	}

	h, err := p.QuerySelector(sel)
	if err != nil {
		return nil, fault(op, err)
	}

	if h == nil {
		return nil, apperr.NotFoundError(op, fmt.Errorf("no element for %s", c))
	}

	return d.wrap(p, h), nil
}

func (d *Driver) FindElements(ctx context.Context, c entity.Criterion) ([]ports.Element, error) {
	const op = "FindElements"

	p, err := d.page()
	if err != nil {
		return nil, err
	}

	sel, err := selector(c)
	if err != nil {
		return nil, err
	}

	hs, err := p.QuerySelectorAll(sel)
	if err != nil {
		return nil, fault(op, err)
	}

	return d.wrapAll(p, hs), nil
}

func (d *Driver) Navigate(ctx context.Context, url string) (err error) {
	const op = "Navigate"
	logger := d.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	_, step := tracing.StartSpan(ctx, d.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	p, err := d.page()
	if err != nil {
		return err
	}

	_, err = p.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeOf(fault(op, err)), err, map[string]any{
			apperr.MetaReason: "goto_failed",
			apperr.MetaStage:  apperr.StageNavigation,
			apperr.MetaURL:    url,
		})
	}

	return nil
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	p, err := d.page()
	if err != nil {
		return "", err
	}

	return p.URL(), nil
}

func (d *Driver) Title(ctx context.Context) (string, error) {
	p, err := d.page()
	if err != nil {
		return "", err
	}

	title, err := p.Title()

	return title, fault("Title", err)
}

func (d *Driver) PressKey(ctx context.Context, key entity.Key) error {
	p, err := d.page()
	if err != nil {
		return err
	}

	return fault("PressKey", p.Keyboard().Press(keyName(key)))
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	p, err := d.page()
	if err != nil {
		return nil, err
	}

	data, err := p.Screenshot(playwright.PageScreenshotOptions{
		Type: playwright.ScreenshotTypePng,
	})

	return data, fault("Screenshot", err)
}

func (d *Driver) dialog() (playwright.Dialog, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if dlg, ok := d.dialogs[d.current]; ok {
		return dlg, d.current, nil
	}

	return nil, "", apperr.WrapErrorWithReason("dialog", apperr.CodeNoAlert, "no_alert_open")
}

func (d *Driver) settle(handle string) {
	d.mu.Lock()
	delete(d.dialogs, handle)
	d.prompt = nil
	d.mu.Unlock()
}

func (d *Driver) AlertText(ctx context.Context) (string, error) {
	dlg, _, err := d.dialog()
	if err != nil {
		return "", err
	}

	return dlg.Message(), nil
}

func (d *Driver) AcceptAlert(ctx context.Context) error {
	dlg, handle, err := d.dialog()
	if err != nil {
		return err
	}

	d.mu.Lock()
	prompt := d.prompt
	d.mu.Unlock()

	if prompt != nil {
		err = dlg.Accept(*prompt)
	} else {
		err = dlg.Accept()
	}

	d.settle(handle)

	return fault("AcceptAlert", err)
}

func (d *Driver) DismissAlert(ctx context.Context) error {
	dlg, handle, err := d.dialog()
	if err != nil {
		return err
	}

	err = dlg.Dismiss()
	d.settle(handle)

	return fault("DismissAlert", err)
}

// SendAlertText stores text for the prompt; it is submitted on accept.
func (d *Driver) SendAlertText(ctx context.Context, text string) error {
	if _, _, err := d.dialog(); err != nil {
		return err
	}

	d.mu.Lock()
	d.prompt = &text
	d.mu.Unlock()

	return nil
}

func (d *Driver) WindowHandles(ctx context.Context) ([]string, error) {
	if _, err := d.page(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.order), nil
}

func (d *Driver) CurrentWindow(ctx context.Context) (string, error) {
	if _, err := d.page(); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.current, nil
}

func (d *Driver) SwitchWindow(ctx context.Context, handle string) error {
	d.mu.Lock()
	p, ok := d.pages[handle]
	d.mu.Unlock()

	if !ok {
		return apperr.NotFoundError("SwitchWindow", fmt.Errorf("no window %s", handle))
	}

	if err := p.BringToFront(); err != nil {
		return fault("SwitchWindow", err)
	}

	d.mu.Lock()
	d.current = handle
	d.mu.Unlock()

	return nil
}

func (d *Driver) DeleteAllCookies(ctx context.Context) error {
	return fault("DeleteAllCookies", d.browserContext.ClearCookies())
}

// SetImplicitWait bounds each native action. Zero restores the default.
func (d *Driver) SetImplicitWait(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultActionTimeout
	}

	d.mu.Lock()
	d.timeout = timeout
	d.mu.Unlock()

	d.browserContext.SetDefaultTimeout(float64(timeout.Milliseconds()))

	return nil
}

func (d *Driver) Close(ctx context.Context) (err error) {
	const op = "Close"
	logger := d.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, d.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()

		return nil
	}
	d.closed = true
	d.mu.Unlock()

	logger.Info("Closing browser...")

	if err := d.browserContext.Close(); err != nil {
		logger.Warn("Failed to close context", zap.Error(err))
	}

	if err := d.browser.Close(); err != nil {
		logger.Warn("Failed to close browser", zap.Error(err))
	}

	if err := d.playwright.Stop(); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "playwright_stop_failed",
			apperr.MetaStage:  apperr.StageSession,
		})
	}

	logger.Info("Browser closed")

	return nil
}
