package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/ports"
	"ui-verbs/internal/wait"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"
	"ui-verbs/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	pageServiceName = "PageService"
	pageTracer      = "usecase.page"
)

type PageService struct {
	logger *zap.Logger
	tracer trace.Tracer
	driver ports.Driver
	waiter *wait.Waiter
}

func NewPageService(logger *zap.Logger, driver ports.Driver, waiter *wait.Waiter) *PageService {
	return &PageService{
		logger: logger.With(zap.String(logg.Layer, pageServiceName)),
		tracer: otel.Tracer(pageTracer),
		driver: driver,
		waiter: waiter,
	}
}

func (s *PageService) Open(ctx context.Context, url string) (err error) {
	const op = "Open"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	if url == "" {
		return apperr.InvalidReqError(op, "url", errors.New("url cannot be empty"))
	}

	if err := s.driver.Navigate(ctx, url); err != nil {
		logger.Error("Navigation failed", zap.Error(err))

		return apperr.Wrap(op, apperr.CodeOf(err), err, map[string]any{
			apperr.MetaReason: "navigation_failed",
			apperr.MetaStage:  apperr.StageNavigation,
			apperr.MetaURL:    url,
		})
	}

	logger.Info("Page opened")

	return nil
}

func (s *PageService) URL(ctx context.Context) (string, error) {
	return s.driver.CurrentURL(ctx)
}

func (s *PageService) Title(ctx context.Context) (string, error) {
	return s.driver.Title(ctx)
}

// PressKey sends key to whatever element has focus.
func (s *PageService) PressKey(ctx context.Context, key entity.Key) error {
	return s.driver.PressKey(ctx, key)
}

// Screenshot captures the viewport as PNG into path, creating parent
// directories as needed.
func (s *PageService) Screenshot(ctx context.Context, path string) (err error) {
	const op = "Screenshot"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String("path", path))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String("path", path))
	defer func() {
		step.End(err)
	}()

	data, err := s.driver.Screenshot(ctx)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{apperr.MetaReason: "mkdir_failed"})
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{apperr.MetaReason: "write_failed"})
	}

	logger.Debug("Screenshot saved", zap.Int("bytes", len(data)))

	return nil
}

func (s *PageService) AcceptAlert(ctx context.Context) (bool, error) {
	return s.onAlert(ctx, "AcceptAlert", s.driver.AcceptAlert)
}

func (s *PageService) DismissAlert(ctx context.Context) (bool, error) {
	return s.onAlert(ctx, "DismissAlert", s.driver.DismissAlert)
}

func (s *PageService) AlertText(ctx context.Context) (string, bool, error) {
	return wait.Await(ctx, s.waiter, wait.AlertPresent(s.driver), 0)
}

func (s *PageService) SendAlertText(ctx context.Context, text string) (bool, error) {
	return s.onAlert(ctx, "SendAlertText", func(ctx context.Context) error {
		return s.driver.SendAlertText(ctx, text)
	})
}

func (s *PageService) onAlert(ctx context.Context, op string, do func(context.Context) error) (bool, error) {
	logger := s.logger.With(zap.String(logg.Operation, op))

	_, ok, err := wait.Await(ctx, s.waiter, wait.AlertPresent(s.driver), 0)
	if err != nil || !ok {
		return false, err
	}

	if err := do(ctx); err != nil {
		if apperr.IsFatal(err) {
			return false, err
		}

		logger.Error("Alert handling failed", zap.Error(err))

		return false, nil
	}

	return true, nil
}

func (s *PageService) Windows(ctx context.Context) ([]string, error) {
	return s.driver.WindowHandles(ctx)
}

func (s *PageService) SwitchWindow(ctx context.Context, handle string) error {
	const op = "SwitchWindow"

	if err := s.driver.SwitchWindow(ctx, handle); err != nil {
		return apperr.Wrap(op, apperr.CodeOf(err), err, map[string]any{
			apperr.MetaReason: "switch_failed",
			apperr.MetaStage:  apperr.StageWindow,
		})
	}

	return nil
}

// SwitchToNewWindow waits for a window other than the current one and
// switches to the most recently opened of them.
func (s *PageService) SwitchToNewWindow(ctx context.Context) (string, bool, error) {
	const op = "SwitchToNewWindow"
	logger := s.logger.With(zap.String(logg.Operation, op))

	current, err := s.driver.CurrentWindow(ctx)
	if err != nil {
		return "", false, err
	}

	handle, ok, err := wait.Await(ctx, s.waiter, wait.Condition[string]{
		Name: "new_window",
		Check: func(ctx context.Context) (string, bool, error) {
			handles, err := s.driver.WindowHandles(ctx)
			if err != nil {
				return "", false, err
			}

			others := slices.DeleteFunc(handles, func(h string) bool { return h == current })
			if len(others) == 0 {
				return "", false, nil
			}

			return others[len(others)-1], true, nil
		},
	}, 0)
	if err != nil || !ok {
		return "", false, err
	}

	if err := s.SwitchWindow(ctx, handle); err != nil {
		return "", false, err
	}

	logger.Debug("Switched window", zap.String("from", current), zap.String("to", handle))

	return handle, true, nil
}

func (s *PageService) DeleteCookies(ctx context.Context) error {
	if err := s.driver.DeleteAllCookies(ctx); err != nil {
		return fmt.Errorf("delete cookies: %w", err)
	}

	return nil
}
