// Package bootstrap assembles the object graph behind the command line.
package bootstrap

import (
	"time"

	"ui-verbs/internal/action"
	"ui-verbs/internal/browser"
	"ui-verbs/internal/config"
	"ui-verbs/internal/console"
	"ui-verbs/internal/ports"
	"ui-verbs/internal/resolver"
	"ui-verbs/internal/scenario"
	"ui-verbs/internal/usecase"
	"ui-verbs/internal/wait"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Module provides everything from config to the scenario runner and ties the
// browser session to the app lifecycle.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			config.GetConfig,
			newLogger,
			newTraceProvider,

			browser.ProvideLauncher,
			fx.Annotate(browser.NewSession, fx.As(fx.Self()), fx.As(new(ports.Driver))),

			wait.NewWaiter,
			resolver.NewResolver,
			action.NewExecutor,

			usecase.NewUsecase,

			scenario.NewRunner,
			console.NewInterface,
		),

		fx.Invoke(
			func(*sdktrace.TracerProvider) {},
			manageSession,
		),

		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: logger.Named("fx")}
			l.UseLogLevel(zapcore.DebugLevel)

			return l
		}),

		fx.StartTimeout(60*time.Second),
	)
}

func NewApp(opts ...fx.Option) *fx.App {
	return fx.New(Module(), fx.Options(opts...))
}
