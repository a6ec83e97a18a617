package roddriver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ui-verbs/internal/config"
	"ui-verbs/internal/entity"
	"ui-verbs/internal/ports"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"
	"ui-verbs/pkg/tracing"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const defaultActionTimeout = 5 * time.Second

// Driver is one DevTools connection. Windows are page targets, addressed by
// target id.
type Driver struct {
	logger *zap.Logger
	tracer trace.Tracer

	browser  *rod.Browser
	launcher *launcher.Launcher

	mu      sync.Mutex
	page    *rod.Page
	watched map[proto.TargetTargetID]bool
	dialogs map[proto.TargetTargetID]*proto.PageJavascriptDialogOpening
	prompt  *string
	timeout time.Duration
	closed  bool
}

func newDriver(logger *zap.Logger, tracer trace.Tracer, b *rod.Browser, l *launcher.Launcher, first *rod.Page) *Driver {
	d := &Driver{
		logger:   logger,
		tracer:   tracer,
		browser:  b,
		launcher: l,
		watched:  make(map[proto.TargetTargetID]bool),
		dialogs:  make(map[proto.TargetTargetID]*proto.PageJavascriptDialogOpening),
		timeout:  defaultActionTimeout,
	}

	d.adopt(first)

	return d
}

// adopt makes p the current page and starts recording its dialogs.
func (d *Driver) adopt(p *rod.Page) {
	id := p.TargetID

	d.mu.Lock()
	d.page = p
	seen := d.watched[id]
	d.watched[id] = true
	d.mu.Unlock()

	if seen {
		return
	}

	go p.EachEvent(
		func(e *proto.PageJavascriptDialogOpening) {
			d.mu.Lock()
			d.dialogs[id] = e
			d.mu.Unlock()

			d.logger.Debug("Dialog opened", zap.String("type", string(e.Type)), zap.String("handle", string(id)))
		},
		func(e *proto.PageJavascriptDialogClosed) {
			d.mu.Lock()
			delete(d.dialogs, id)
			d.mu.Unlock()
		},
	)()
}

func (d *Driver) current(op string) (*rod.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeSessionNotReady, "session_closed")
	}

	return d.page, nil
}

func (d *Driver) actionTimeout() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timeout
}

func (d *Driver) wrapAll(p *rod.Page, els rod.Elements) []ports.Element {
	out := make([]ports.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &Element{el: el, page: p, driver: d})
	}

	return out
}

func (d *Driver) FindElement(ctx context.Context, c entity.Criterion) (ports.Element, error) {
	const op = "FindElement"

	found, err := d.FindElements(ctx, c)
	if err != nil {
		return nil, err
	}

	if len(found) == 0 {
		return nil, apperr.NotFoundError(op, fmt.Errorf("no element for %s", c))
	}

	return found[0], nil
}

func (d *Driver) FindElements(ctx context.Context, c entity.Criterion) ([]ports.Element, error) {
	const op = "FindElements"

	p, err := d.current(op)
	if err != nil {
		return nil, err
	}

	var els rod.Elements
	if css, ok := c.CSS(); ok {
		els, err = p.Elements(css)
	} else if xp, ok := c.XPath(); ok {
		els, err = p.ElementsX(xp)
	} else {
		return nil, unsupportedStrategy(c)
	}

	if err != nil {
		return nil, fault(op, err)
	}

	return d.wrapAll(p, els), nil
}

func (d *Driver) Navigate(ctx context.Context, url string) (err error) {
	const op = "Navigate"
	logger := d.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	ctx, step := tracing.StartSpan(ctx, d.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	p, err := d.current(op)
	if err != nil {
		return err
	}

	p = p.Context(ctx)

	if err = p.Navigate(url); err == nil {
		err = p.WaitLoad()
	}

	if err != nil {
		return apperr.Wrap(op, apperr.CodeOf(fault(op, err)), err, map[string]any{
			apperr.MetaReason: "navigate_failed",
			apperr.MetaStage:  apperr.StageNavigation,
			apperr.MetaURL:    url,
		})
	}

	return nil
}

func (d *Driver) info(op string) (*proto.TargetTargetInfo, error) {
	p, err := d.current(op)
	if err != nil {
		return nil, err
	}

	info, err := p.Info()
	if err != nil {
		return nil, fault(op, err)
	}

	return info, nil
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	info, err := d.info("CurrentURL")
	if err != nil {
		return "", err
	}

	return info.URL, nil
}

func (d *Driver) Title(ctx context.Context) (string, error) {
	info, err := d.info("Title")
	if err != nil {
		return "", err
	}

	return info.Title, nil
}

func (d *Driver) PressKey(ctx context.Context, key entity.Key) error {
	const op = "PressKey"

	p, err := d.current(op)
	if err != nil {
		return err
	}

	code, err := keyCode(key)
	if err != nil {
		return err
	}

	return fault(op, p.Keyboard.Type(code))
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	const op = "Screenshot"

	p, err := d.current(op)
	if err != nil {
		return nil, err
	}

	data, err := p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})

	return data, fault(op, err)
}

func (d *Driver) dialog(op string) (*rod.Page, *proto.PageJavascriptDialogOpening, error) {
	p, err := d.current(op)
	if err != nil {
		return nil, nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	dlg, ok := d.dialogs[p.TargetID]
	if !ok {
		return nil, nil, apperr.WrapErrorWithReason(op, apperr.CodeNoAlert, "no_alert_open")
	}

	return p, dlg, nil
}

func (d *Driver) AlertText(ctx context.Context) (string, error) {
	_, dlg, err := d.dialog("AlertText")
	if err != nil {
		return "", err
	}

	return dlg.Message, nil
}

func (d *Driver) handleDialog(op string, accept bool) error {
	p, _, err := d.dialog(op)
	if err != nil {
		return err
	}

	d.mu.Lock()
	req := proto.PageHandleJavaScriptDialog{Accept: accept}
	if accept && d.prompt != nil {
		req.PromptText = *d.prompt
	}
	d.prompt = nil
	delete(d.dialogs, p.TargetID)
	d.mu.Unlock()

	return fault(op, req.Call(p))
}

func (d *Driver) AcceptAlert(ctx context.Context) error {
	return d.handleDialog("AcceptAlert", true)
}

func (d *Driver) DismissAlert(ctx context.Context) error {
	return d.handleDialog("DismissAlert", false)
}

// SendAlertText stores text for the prompt; it is submitted on accept.
func (d *Driver) SendAlertText(ctx context.Context, text string) error {
	if _, _, err := d.dialog("SendAlertText"); err != nil {
		return err
	}

	d.mu.Lock()
	d.prompt = &text
	d.mu.Unlock()

	return nil
}

func (d *Driver) WindowHandles(ctx context.Context) ([]string, error) {
	const op = "WindowHandles"

	if _, err := d.current(op); err != nil {
		return nil, err
	}

	pages, err := d.browser.Pages()
	if err != nil {
		return nil, fault(op, err)
	}

	handles := make([]string, 0, len(pages))
	for _, p := range pages {
		handles = append(handles, string(p.TargetID))
	}

	return handles, nil
}

func (d *Driver) CurrentWindow(ctx context.Context) (string, error) {
	p, err := d.current("CurrentWindow")
	if err != nil {
		return "", err
	}

	return string(p.TargetID), nil
}

func (d *Driver) SwitchWindow(ctx context.Context, handle string) error {
	const op = "SwitchWindow"

	if _, err := d.current(op); err != nil {
		return err
	}

	pages, err := d.browser.Pages()
	if err != nil {
		return fault(op, err)
	}

	for _, p := range pages {
		if string(p.TargetID) != handle {
			continue
		}

		if _, err := p.Activate(); err != nil {
			return fault(op, err)
		}

		d.adopt(p)

		return nil
	}

	return apperr.NotFoundError(op, fmt.Errorf("no window %s", handle))
}

func (d *Driver) DeleteAllCookies(ctx context.Context) error {
	const op = "DeleteAllCookies"

	if _, err := d.current(op); err != nil {
		return err
	}

	return fault(op, d.browser.SetCookies(nil))
}

// SetImplicitWait bounds each native action. Zero restores the default.
func (d *Driver) SetImplicitWait(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultActionTimeout
	}

	d.mu.Lock()
	d.timeout = timeout
	d.mu.Unlock()

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

	if err = d.browser.Close(); err != nil {
		err = apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:  "browser_close_failed",
			apperr.MetaStage:   apperr.StageSession,
			apperr.MetaBackend: config.BackendRod,
		})
	}

	if d.launcher != nil {
		d.launcher.Kill()
		d.launcher.Cleanup()
	}

	if err == nil {
		logger.Info("Browser closed")
	}

	return err
}

func unsupportedStrategy(c entity.Criterion) error {
	return apperr.WrapErrorWithReason("selector", apperr.CodeUnsupported, "unsupported_strategy_"+string(c.By))
}
