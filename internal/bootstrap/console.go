package bootstrap

import (
	"context"
	"errors"

	"ui-verbs/internal/console"

	"go.uber.org/fx"
)

// RunConsole serves typed steps until the user exits or ctx is done.
func RunConsole(ctx context.Context, opts ...fx.Option) (err error) {
	var iface *console.Interface

	app := NewApp(append(opts, fx.Populate(&iface))...)

	if err = app.Start(ctx); err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, stop(app))
	}()

	return iface.Start(ctx)
}

func stop(app *fx.App) error {
	ctx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()

	return app.Stop(ctx)
}
