// Package pwdriver runs sessions on playwright.
package pwdriver

import (
	"context"
	"fmt"

	"ui-verbs/internal/config"
	"ui-verbs/internal/ports"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"
	"ui-verbs/pkg/tracing"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	launcherName  = "PlaywrightLauncher"
	launcherTrace = "browser.playwright"
)

type Launcher struct {
	config *config.DriverConfig
	logger *zap.Logger
	tracer trace.Tracer
}

func NewLauncher(cfg *config.DriverConfig, logger *zap.Logger) *Launcher {
	return &Launcher{
		config: cfg,
		logger: logger.With(zap.String(logg.Layer, launcherName), zap.String(logg.Backend, config.BackendPlaywright)),
		tracer: otel.Tracer(launcherTrace),
	}
}

func (l *Launcher) Name() string {
	return config.BackendPlaywright
}

// Open starts playwright and a fresh browser context with one page. With
// DRIVER_REMOTE_URL set it connects to a running playwright server instead of
// launching a browser.
func (l *Launcher) Open(ctx context.Context) (driver ports.Driver, err error) {
	const op = "Open"
	logger := l.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, l.tracer, logger, op,
		attribute.String("browser", l.config.Browser),
		attribute.Bool("headless", l.config.Headless))
	defer func() {
		step.End(err)
	}()

	logger.Info("Launching browser...")

	if l.config.RemoteURL == "" {
		step.AddEvent("installing playwright")

		err = playwright.Install(&playwright.RunOptions{Browsers: []string{l.engine()}})
		if err != nil {
			return nil, sessionError(op, "playwright_install_failed", err)
		}
	}

	step.AddEvent("starting playwright")

	pw, err := playwright.Run()
	if err != nil {
		return nil, sessionError(op, "playwright_start_failed", err)
	}

	d, err := l.launch(ctx, pw)
	if err != nil {
		if stopErr := pw.Stop(); stopErr != nil {
			logger.Warn("Failed to stop playwright", zap.Error(stopErr))
		}

		return nil, err
	}

	logger.Info("Browser launched successfully")

	return d, nil
}

func (l *Launcher) launch(ctx context.Context, pw *playwright.Playwright) (*Driver, error) {
	const op = "launch"

	browserType, err := l.browserType(pw)
	if err != nil {
		return nil, err
	}

	var browser playwright.Browser
	if l.config.RemoteURL != "" {
		browser, err = browserType.Connect(l.config.RemoteURL)
	} else {
		browser, err = browserType.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(l.config.Headless),
			SlowMo:   playwright.Float(float64(l.config.SlowMo)),
		})
	}

	if err != nil {
		return nil, sessionError(op, "browser_launch_failed", err)
	}

	browserContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  l.config.ViewportWidth,
			Height: l.config.ViewportHeight,
		},
		AcceptDownloads:   playwright.Bool(true),
		JavaScriptEnabled: playwright.Bool(true),
	})
	if err != nil {
		_ = browser.Close()

		return nil, sessionError(op, "context_create_failed", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		_ = browser.Close()

		return nil, sessionError(op, "page_create_failed", err)
	}

	return newDriver(l.logger, l.tracer, pw, browser, browserContext, page), nil
}

// engine is the playwright browser name for DRIVER_BROWSER.
func (l *Launcher) engine() string {
	switch l.config.Browser {
	case "", "chrome":
		return "chromium"
	}

	return l.config.Browser
}

func (l *Launcher) browserType(pw *playwright.Playwright) (playwright.BrowserType, error) {
	switch l.engine() {
	case "chromium":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	}

	return nil, apperr.Wrap("browserType", apperr.CodeUnsupported, fmt.Errorf("unsupported browser %q", l.config.Browser), map[string]any{
		apperr.MetaReason:  "unsupported_browser",
		apperr.MetaStage:   apperr.StageSession,
		apperr.MetaBackend: config.BackendPlaywright,
	})
}

func sessionError(op, reason string, err error) error {
	return apperr.Wrap(op, apperr.CodeSessionNotReady, err, map[string]any{
		apperr.MetaReason:  reason,
		apperr.MetaStage:   apperr.StageSession,
		apperr.MetaBackend: config.BackendPlaywright,
	})
}
