// Package seldriver runs sessions over the WebDriver protocol.
package seldriver

import (
	"context"
	"fmt"
	"os/exec"

	"ui-verbs/internal/config"
	"ui-verbs/internal/ports"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"
	"ui-verbs/pkg/tracing"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	launcherName  = "SeleniumLauncher"
	launcherTrace = "browser.selenium"
)

type Launcher struct {
	config *config.DriverConfig
	logger *zap.Logger
	tracer trace.Tracer
}

func NewLauncher(cfg *config.DriverConfig, logger *zap.Logger) *Launcher {
	return &Launcher{
		config: cfg,
		logger: logger.With(zap.String(logg.Layer, launcherName), zap.String(logg.Backend, config.BackendSelenium)),
		tracer: otel.Tracer(launcherTrace),
	}
}

func (l *Launcher) Name() string {
	return config.BackendSelenium
}

// Open starts a WebDriver session on DRIVER_REMOTE_URL, or on a chromedriver
// service started locally when no remote is configured.
func (l *Launcher) Open(ctx context.Context) (driver ports.Driver, err error) {
	const op = "Open"
	logger := l.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, l.tracer, logger, op,
		attribute.String("browser", l.config.Browser),
		attribute.Bool("headless", l.config.Headless))
	defer func() {
		step.End(err)
	}()

	caps, err := l.capabilities()
	if err != nil {
		return nil, err
	}

	var service *selenium.Service

	url := l.config.RemoteURL
	if url == "" {
		if caps["browserName"] != "chrome" {
			return nil, unsupported(op, "local_service_requires_chrome", fmt.Errorf("browser %q needs DRIVER_REMOTE_URL", l.config.Browser))
		}

		path, err := l.chromeDriverPath()
		if err != nil {
			return nil, err
		}

		logger.Info("Starting chromedriver", zap.String("path", path), zap.Int("port", l.config.ChromeDriverPort))
		step.AddEvent("starting chromedriver")

		service, err = selenium.NewChromeDriverService(path, l.config.ChromeDriverPort)
		if err != nil {
			return nil, sessionError(op, "chromedriver_start_failed", err)
		}

		url = fmt.Sprintf("http://localhost:%d/wd/hub", l.config.ChromeDriverPort)
	}

	logger.Info("Launching browser...", zap.String(logg.URL, url))

	wd, err := selenium.NewRemote(caps, url)
	if err != nil {
		if service != nil {
			if stopErr := service.Stop(); stopErr != nil {
				logger.Warn("Failed to stop chromedriver", zap.Error(stopErr))
			}
		}

		return nil, sessionError(op, "new_session_failed", err)
	}

	logger.Info("Browser launched successfully")

	return newDriver(l.logger, l.tracer, wd, service), nil
}

func (l *Launcher) capabilities() (selenium.Capabilities, error) {
	switch l.config.Browser {
	case "", "chrome", "chromium":
		caps := selenium.Capabilities{"browserName": "chrome"}
		args := []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
			fmt.Sprintf("--window-size=%d,%d", l.config.ViewportWidth, l.config.ViewportHeight),
		}

		if l.config.Headless {
			args = append(args, "--headless=new")
		}

		caps.AddChrome(chrome.Capabilities{Args: args})

		return caps, nil
	case "firefox":
		caps := selenium.Capabilities{"browserName": "firefox"}
		args := []string{
			fmt.Sprintf("--width=%d", l.config.ViewportWidth),
			fmt.Sprintf("--height=%d", l.config.ViewportHeight),
		}

		if l.config.Headless {
			args = append(args, "-headless")
		}

		caps.AddFirefox(firefox.Capabilities{Args: args})

		return caps, nil
	}

	return nil, unsupported("capabilities", "unsupported_browser", fmt.Errorf("unsupported browser %q", l.config.Browser))
}

func (l *Launcher) chromeDriverPath() (string, error) {
	if l.config.ChromeDriverPath != "" {
		return l.config.ChromeDriverPath, nil
	}

	path, err := exec.LookPath("chromedriver")
	if err != nil {
		return "", apperr.Wrap("chromeDriverPath", apperr.CodeInvalidConfig, err, map[string]any{
			apperr.MetaReason:  "chromedriver_not_found",
			apperr.MetaStage:   apperr.StageSession,
			apperr.MetaField:   "DRIVER_CHROMEDRIVER_PATH",
			apperr.MetaBackend: config.BackendSelenium,
		})
	}

	return path, nil
}

func unsupported(op, reason string, err error) error {
	return apperr.Wrap(op, apperr.CodeUnsupported, err, map[string]any{
		apperr.MetaReason:  reason,
		apperr.MetaStage:   apperr.StageSession,
		apperr.MetaBackend: config.BackendSelenium,
	})
}

func sessionError(op, reason string, err error) error {
	return apperr.Wrap(op, apperr.CodeSessionNotReady, err, map[string]any{
		apperr.MetaReason:  reason,
		apperr.MetaStage:   apperr.StageSession,
		apperr.MetaBackend: config.BackendSelenium,
	})
}
