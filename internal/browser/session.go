// Package browser owns the automation session and picks the backend it runs on.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ui-verbs/internal/browser/pwdriver"
	"ui-verbs/internal/browser/roddriver"
	"ui-verbs/internal/browser/seldriver"
	"ui-verbs/internal/config"
	"ui-verbs/internal/entity"
	"ui-verbs/internal/ports"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"
	"ui-verbs/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	sessionName  = "Session"
	sessionTrace = "browser.session"
)

// Session is the single exclusive driver of a run. It is a ports.Driver that
// fails with CodeSessionNotReady outside Open and Close.
type Session struct {
	launcher ports.Launcher
	implicit time.Duration
	logger   *zap.Logger
	tracer   trace.Tracer

	mu     sync.RWMutex
	driver ports.Driver
}

type Params struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Launcher ports.Launcher
}

func NewSession(params Params) *Session {
	return NewSessionWith(params.Launcher, params.Config.WaitConfig.Implicit(), params.Logger)
}

type LauncherParams struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func ProvideLauncher(params LauncherParams) (ports.Launcher, error) {
	return NewLauncher(params.Config.DriverConfig, params.Logger)
}

func NewSessionWith(launcher ports.Launcher, implicit time.Duration, logger *zap.Logger) *Session {
	return &Session{
		launcher: launcher,
		implicit: implicit,
		logger:   logger.With(zap.String(logg.Layer, sessionName), zap.String(logg.Backend, launcher.Name())),
		tracer:   otel.Tracer(sessionTrace),
	}
}

// NewLauncher picks the backend named by DRIVER_BACKEND.
func NewLauncher(cfg *config.DriverConfig, logger *zap.Logger) (ports.Launcher, error) {
	switch cfg.Backend {
	case config.BackendPlaywright:
		return pwdriver.NewLauncher(cfg, logger), nil
	case config.BackendSelenium:
		return seldriver.NewLauncher(cfg, logger), nil
	case config.BackendRod:
		return roddriver.NewLauncher(cfg, logger), nil
	}

	return nil, apperr.Wrap("NewLauncher", apperr.CodeUnsupported, fmt.Errorf("unknown backend %q", cfg.Backend), map[string]any{
		apperr.MetaReason: "unknown_backend",
		apperr.MetaStage:  apperr.StageSession,
		apperr.MetaField:  "DRIVER_BACKEND",
	})
}

// Open starts the backend session and applies the implicit wait. Opening an
// open session is a no-op.
func (s *Session) Open(ctx context.Context) (err error) {
	const op = "Open"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("backend", s.launcher.Name()))
	defer func() {
		step.End(err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.driver != nil {
		return nil
	}

	driver, err := s.launcher.Open(ctx)
	if err != nil {
		return err
	}

	if err = driver.SetImplicitWait(ctx, s.implicit); err != nil {
		if closeErr := driver.Close(ctx); closeErr != nil {
			logger.Warn("Failed to close driver", zap.Error(closeErr))
		}

		return err
	}

	s.driver = driver
	logger.Info("Session opened", zap.Duration("implicit_wait", s.implicit))

	return nil
}

// Close releases the backend session. Closing a closed session is a no-op.
func (s *Session) Close(ctx context.Context) (err error) {
	const op = "Close"
	logger := s.logger.With(zap.String(logg.Operation, op))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.driver == nil {
		return nil
	}

	err = s.driver.Close(ctx)
	s.driver = nil

	if err != nil {
		return err
	}

	logger.Info("Session closed")

	return nil
}

func (s *Session) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.driver != nil
}

func (s *Session) active(op string) (ports.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.driver == nil {
		return nil, apperr.Wrap(op, apperr.CodeSessionNotReady, fmt.Errorf("session is not open"), map[string]any{
			apperr.MetaReason: "session_not_open",
			apperr.MetaStage:  apperr.StageSession,
		})
	}

	return s.driver, nil
}

func (s *Session) FindElement(ctx context.Context, c entity.Criterion) (ports.Element, error) {
	d, err := s.active("FindElement")
	if err != nil {
		return nil, err
	}

	return d.FindElement(ctx, c)
}

func (s *Session) FindElements(ctx context.Context, c entity.Criterion) ([]ports.Element, error) {
	d, err := s.active("FindElements")
	if err != nil {
		return nil, err
	}

	return d.FindElements(ctx, c)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	d, err := s.active("Navigate")
	if err != nil {
		return err
	}

	return d.Navigate(ctx, url)
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	d, err := s.active("CurrentURL")
	if err != nil {
		return "", err
	}

	return d.CurrentURL(ctx)
}

func (s *Session) Title(ctx context.Context) (string, error) {
	d, err := s.active("Title")
	if err != nil {
		return "", err
	}

	return d.Title(ctx)
}

func (s *Session) PressKey(ctx context.Context, key entity.Key) error {
	d, err := s.active("PressKey")
	if err != nil {
		return err
	}

	return d.PressKey(ctx, key)
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	d, err := s.active("Screenshot")
	if err != nil {
		return nil, err
	}

	return d.Screenshot(ctx)
}

func (s *Session) AlertText(ctx context.Context) (string, error) {
	d, err := s.active("AlertText")
	if err != nil {
		return "", err
	}

	return d.AlertText(ctx)
}

func (s *Session) AcceptAlert(ctx context.Context) error {
	d, err := s.active("AcceptAlert")
	if err != nil {
		return err
	}

	return d.AcceptAlert(ctx)
}

func (s *Session) DismissAlert(ctx context.Context) error {
	d, err := s.active("DismissAlert")
	if err != nil {
		return err
	}

	return d.DismissAlert(ctx)
}

func (s *Session) SendAlertText(ctx context.Context, text string) error {
	d, err := s.active("SendAlertText")
	if err != nil {
		return err
	}

	return d.SendAlertText(ctx, text)
}

func (s *Session) WindowHandles(ctx context.Context) ([]string, error) {
	d, err := s.active("WindowHandles")
	if err != nil {
		return nil, err
	}

	return d.WindowHandles(ctx)
}

func (s *Session) CurrentWindow(ctx context.Context) (string, error) {
	d, err := s.active("CurrentWindow")
	if err != nil {
		return "", err
	}

	return d.CurrentWindow(ctx)
}

func (s *Session) SwitchWindow(ctx context.Context, handle string) error {
	d, err := s.active("SwitchWindow")
	if err != nil {
		return err
	}

	return d.SwitchWindow(ctx, handle)
}

func (s *Session) DeleteAllCookies(ctx context.Context) error {
	d, err := s.active("DeleteAllCookies")
	if err != nil {
		return err
	}

	return d.DeleteAllCookies(ctx)
}

func (s *Session) SetImplicitWait(ctx context.Context, timeout time.Duration) error {
	d, err := s.active("SetImplicitWait")
	if err != nil {
		return err
	}

	return d.SetImplicitWait(ctx, timeout)
}
