package bootstrap

import (
	"context"
	"errors"

	"ui-verbs/internal/scenario"

	"go.uber.org/fx"
)

// RunScenario opens a session, runs steps against it and closes it again.
// The session is closed even when the run aborts.
func RunScenario(ctx context.Context, steps []scenario.Step, opts ...fx.Option) (report scenario.Report, err error) {
	var runner *scenario.Runner

	app := NewApp(append(opts, fx.Populate(&runner))...)

	if err = app.Start(ctx); err != nil {
		return scenario.Report{}, err
	}

	defer func() {
		err = errors.Join(err, stop(app))
	}()

	return runner.Run(ctx, steps)
}
