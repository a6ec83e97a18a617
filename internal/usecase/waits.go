package usecase

import (
	"context"
	"time"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/locator"
	"ui-verbs/internal/ports"
	"ui-verbs/internal/resolver"
	"ui-verbs/internal/wait"
	"ui-verbs/pkg/apperr"
	"ui-verbs/pkg/logg"

	"go.uber.org/zap"
)

const waitServiceName = "WaitService"

type WaitService struct {
	logger   *zap.Logger
	driver   ports.Driver
	resolver *resolver.Resolver
	waiter   *wait.Waiter
}

func NewWaitService(logger *zap.Logger, driver ports.Driver, r *resolver.Resolver, w *wait.Waiter) *WaitService {
	return &WaitService{
		logger:   logger.With(zap.String(logg.Layer, waitServiceName)),
		driver:   driver,
		resolver: r,
		waiter:   w,
	}
}

// WaitVisible waits for the match of loc, or its indexed match, to be displayed.
func (s *WaitService) WaitVisible(ctx context.Context, loc locator.Locator, timeout time.Duration) (bool, error) {
	const op = "WaitVisible"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.Stringer(logg.Locator, loc))

	scope, err := s.resolver.Scope(ctx, loc)
	if err != nil {
		if apperr.IsFatal(err) {
			return false, err
		}

		logger.Error("Parent not resolved", zap.Error(err))

		return false, nil
	}

	idx, _ := loc.Index()
	_, ok, err := wait.Await(ctx, s.waiter, wait.Visible(scope, loc.Criterion(), idx), timeout)

	return ok, err
}

// WaitInvisible holds when nothing matching loc is displayed. A parent that
// cannot be found counts as absent.
func (s *WaitService) WaitInvisible(ctx context.Context, loc locator.Locator, timeout time.Duration) (bool, error) {
	const op = "WaitInvisible"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.Stringer(logg.Locator, loc))

	scope, err := s.resolver.Scope(ctx, loc)
	if err != nil {
		if apperr.IsFatal(err) {
			return false, err
		}

		logger.Debug("Parent absent, child treated as absent", zap.Error(err))

		return true, nil
	}

	_, ok, err := wait.Await(ctx, s.waiter, wait.InvisibleOrAbsent(scope, loc.Criterion()), timeout)

	return ok, err
}

func (s *WaitService) WaitURL(ctx context.Context, mode entity.Match, expected string, timeout time.Duration) (bool, error) {
	cond := wait.URLEquals(s.driver, expected)
	if mode == entity.MatchContains {
		cond = wait.URLContains(s.driver, expected)
	}

	_, ok, err := wait.Await(ctx, s.waiter, cond, timeout)

	return ok, err
}

func (s *WaitService) WaitTitle(ctx context.Context, mode entity.Match, expected string, timeout time.Duration) (bool, error) {
	cond := wait.TitleEquals(s.driver, expected)
	if mode == entity.MatchContains {
		cond = wait.TitleContains(s.driver, expected)
	}

	_, ok, err := wait.Await(ctx, s.waiter, cond, timeout)

	return ok, err
}
