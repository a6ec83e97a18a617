package bootstrap

import (
	"context"

	"ui-verbs/internal/browser"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func manageSession(lc fx.Lifecycle, session *browser.Session, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Opening browser session...")

			if err := session.Open(ctx); err != nil {
				logger.Error("Failed to open browser session", zap.Error(err))

				return err
			}

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing browser session...")

			if err := session.Close(ctx); err != nil {
				logger.Error("Failed to close browser session", zap.Error(err))
			}

			return nil
		},
	})
}
