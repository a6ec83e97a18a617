// Package roddriver runs sessions on go-rod over the DevTools protocol.
package roddriver

import (
	"context"
	"fmt"
	"time"

	"ui-verbs/internal/config"
	"ui-verbs/internal/ports"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"
	"ui-verbs/pkg/tracing"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	launcherName  = "RodLauncher"
	launcherTrace = "browser.rod"
)

type Launcher struct {
	config *config.DriverConfig
	logger *zap.Logger
	tracer trace.Tracer
}

func NewLauncher(cfg *config.DriverConfig, logger *zap.Logger) *Launcher {
	return &Launcher{
		config: cfg,
		logger: logger.With(zap.String(logg.Layer, launcherName), zap.String(logg.Backend, config.BackendRod)),
		tracer: otel.Tracer(launcherTrace),
	}
}

func (l *Launcher) Name() string {
	return config.BackendRod
}

// Open launches a local chromium, or attaches to DRIVER_REMOTE_URL, and opens
// a blank page sized to the configured viewport.
func (l *Launcher) Open(ctx context.Context) (driver ports.Driver, err error) {
	const op = "Open"
	logger := l.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, l.tracer, logger, op,
		attribute.String("browser", l.config.Browser),
		attribute.Bool("headless", l.config.Headless))
	defer func() {
		step.End(err)
	}()

	switch l.config.Browser {
	case "", "chrome", "chromium":
	default:
		return nil, apperr.Wrap(op, apperr.CodeUnsupported, fmt.Errorf("unsupported browser %q", l.config.Browser), map[string]any{
			apperr.MetaReason:  "unsupported_browser",
			apperr.MetaStage:   apperr.StageSession,
			apperr.MetaBackend: config.BackendRod,
		})
	}

	logger.Info("Launching browser...")

	var (
		local      *launcher.Launcher
		controlURL string
	)

	if l.config.RemoteURL != "" {
		controlURL, err = launcher.ResolveURL(l.config.RemoteURL)
	} else {
		local = launcher.New().
			Headless(l.config.Headless).
			NoSandbox(true)
		controlURL, err = local.Launch()
	}

	if err != nil {
		return nil, sessionError(op, "browser_launch_failed", err)
	}

	browser := rod.New().
		ControlURL(controlURL).
		SlowMotion(time.Duration(l.config.SlowMo) * time.Millisecond)

	if err = browser.Connect(); err != nil {
		l.kill(local)

		return nil, sessionError(op, "browser_connect_failed", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err == nil {
		err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             l.config.ViewportWidth,
			Height:            l.config.ViewportHeight,
			DeviceScaleFactor: 1,
		})
	}

	if err != nil {
		_ = browser.Close()
		l.kill(local)

		return nil, sessionError(op, "page_create_failed", err)
	}

	logger.Info("Browser launched successfully")

	return newDriver(l.logger, l.tracer, browser, local, page), nil
}

func (l *Launcher) kill(local *launcher.Launcher) {
	if local != nil {
		local.Kill()
		local.Cleanup()
	}
}

func sessionError(op, reason string, err error) error {
	return apperr.Wrap(op, apperr.CodeSessionNotReady, err, map[string]any{
		apperr.MetaReason:  reason,
		apperr.MetaStage:   apperr.StageSession,
		apperr.MetaBackend: config.BackendRod,
	})
}
