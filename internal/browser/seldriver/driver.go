package seldriver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/ports"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"
	"ui-verbs/pkg/tracing"

	"github.com/tebeka/selenium"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Driver is one WebDriver session, optionally backed by a local chromedriver
// service it owns.
type Driver struct {
	logger *zap.Logger
	tracer trace.Tracer

	wd      selenium.WebDriver
	service *selenium.Service

	mu     sync.Mutex
	closed bool
}

func newDriver(logger *zap.Logger, tracer trace.Tracer, wd selenium.WebDriver, service *selenium.Service) *Driver {
	return &Driver{
		logger:  logger,
		tracer:  tracer,
		wd:      wd,
		service: service,
	}
}

func (d *Driver) live(op string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return apperr.WrapErrorWithReason(op, apperr.CodeSessionNotReady, "session_closed")
	}

	return nil
}

func (d *Driver) wrap(we selenium.WebElement) *Element {
	return &Element{we: we, driver: d}
}

func (d *Driver) wrapAll(wes []selenium.WebElement) []ports.Element {
	out := make([]ports.Element, 0, len(wes))
	for _, we := range wes {
		out = append(out, d.wrap(we))
	}

	return out
}

func (d *Driver) FindElement(ctx context.Context, c entity.Criterion) (ports.Element, error) {
	const op = "FindElement"

	if err := d.live(op); err != nil {
		return nil, err
	}

	by, err := byFor(c)
	if err != nil {
		return nil, err
	}

	we, err := d.wd.FindElement(by, c.Value)
	if err != nil {
		if apperr.Is(fault(op, err), apperr.CodeNotFound) {
			return nil, apperr.NotFoundError(op, fmt.Errorf("no element for %s", c))
		}

		return nil, fault(op, err)
	}

	return d.wrap(we), nil
}

func (d *Driver) FindElements(ctx context.Context, c entity.Criterion) ([]ports.Element, error) {
	const op = "FindElements"

	if err := d.live(op); err != nil {
		return nil, err
	}

	by, err := byFor(c)
	if err != nil {
		return nil, err
	}

	wes, err := d.wd.FindElements(by, c.Value)
	if err != nil {
		return nil, fault(op, err)
	}

	return d.wrapAll(wes), nil
}

func (d *Driver) Navigate(ctx context.Context, url string) (err error) {
	const op = "Navigate"
	logger := d.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	_, step := tracing.StartSpan(ctx, d.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	if err = d.live(op); err != nil {
		return err
	}

	if err = d.wd.Get(url); err != nil {
		return apperr.Wrap(op, apperr.CodeOf(fault(op, err)), err, map[string]any{
			apperr.MetaReason: "get_failed",
			apperr.MetaStage:  apperr.StageNavigation,
			apperr.MetaURL:    url,
		})
	}

	return nil
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	if err := d.live("CurrentURL"); err != nil {
		return "", err
	}

	u, err := d.wd.CurrentURL()

	return u, fault("CurrentURL", err)
}

func (d *Driver) Title(ctx context.Context) (string, error) {
	if err := d.live("Title"); err != nil {
		return "", err
	}

	title, err := d.wd.Title()

	return title, fault("Title", err)
}

// PressKey sends the key to whichever element has focus.
func (d *Driver) PressKey(ctx context.Context, key entity.Key) error {
	const op = "PressKey"

	if err := d.live(op); err != nil {
		return err
	}

	code, err := keyCode(key)
	if err != nil {
		return err
	}

	active, err := d.wd.ActiveElement()
	if err != nil {
		return fault(op, err)
	}

	return fault(op, active.SendKeys(code))
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	if err := d.live("Screenshot"); err != nil {
		return nil, err
	}

	data, err := d.wd.Screenshot()

	return data, fault("Screenshot", err)
}

func (d *Driver) AlertText(ctx context.Context) (string, error) {
	if err := d.live("AlertText"); err != nil {
		return "", err
	}

	text, err := d.wd.AlertText()

	return text, fault("AlertText", err)
}

func (d *Driver) AcceptAlert(ctx context.Context) error {
	if err := d.live("AcceptAlert"); err != nil {
		return err
	}

	return fault("AcceptAlert", d.wd.AcceptAlert())
}

func (d *Driver) DismissAlert(ctx context.Context) error {
	if err := d.live("DismissAlert"); err != nil {
		return err
	}

	return fault("DismissAlert", d.wd.DismissAlert())
}

func (d *Driver) SendAlertText(ctx context.Context, text string) error {
	if err := d.live("SendAlertText"); err != nil {
		return err
	}

	return fault("SendAlertText", d.wd.SetAlertText(text))
}

func (d *Driver) WindowHandles(ctx context.Context) ([]string, error) {
	if err := d.live("WindowHandles"); err != nil {
		return nil, err
	}

	handles, err := d.wd.WindowHandles()

	return handles, fault("WindowHandles", err)
}

func (d *Driver) CurrentWindow(ctx context.Context) (string, error) {
	if err := d.live("CurrentWindow"); err != nil {
		return "", err
	}

	handle, err := d.wd.CurrentWindowHandle()

	return handle, fault("CurrentWindow", err)
}

func (d *Driver) SwitchWindow(ctx context.Context, handle string) error {
	if err := d.live("SwitchWindow"); err != nil {
		return err
	}

	err := d.wd.SwitchWindow(handle)
	if err != nil && apperr.Is(fault("SwitchWindow", err), apperr.CodeSessionNotReady) {
		// "no such window" here names the target, not the session.
		return apperr.NotFoundError("SwitchWindow", fmt.Errorf("no window %s: %w", handle, err))
	}

	return fault("SwitchWindow", err)
}

func (d *Driver) DeleteAllCookies(ctx context.Context) error {
	if err := d.live("DeleteAllCookies"); err != nil {
		return err
	}

	return fault("DeleteAllCookies", d.wd.DeleteAllCookies())
}

func (d *Driver) SetImplicitWait(ctx context.Context, timeout time.Duration) error {
	if err := d.live("SetImplicitWait"); err != nil {
		return err
	}

	if timeout < 0 {
		timeout = 0
	}

	return fault("SetImplicitWait", d.wd.SetImplicitWaitTimeout(timeout))
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

	if err := d.wd.Quit(); err != nil {
		logger.Warn("Failed to quit session", zap.Error(err))
	}

	if d.service != nil {
		if err := d.service.Stop(); err != nil {
			return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
				apperr.MetaReason: "chromedriver_stop_failed",
				apperr.MetaStage:  apperr.StageSession,
			})
		}
	}

	logger.Info("Browser closed")

	return nil
}
