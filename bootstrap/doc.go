// Package bootstrap runs a long-lived process built from components.
//
// NewApp validates the typed config and initializes logging. Run starts the
// registered components in order, prints a startup summary, blocks until a
// shutdown signal and stops the components in reverse order:
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	_ = app.RegisterComponent(redisComponent)
//	_ = app.RegisterComponent(eurekaComponent)
//	_ = app.RegisterComponent(serverComponent)
//	return app.Run(ctx)
package bootstrap
