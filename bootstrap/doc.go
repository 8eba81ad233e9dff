// Package bootstrap wires the receiving tools together: logger, configuration,
// the reference-data store and the use-case service.
//
// Usage:
//
//	app, err := bootstrap.NewApp(ctx, configFile)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Shutdown()
//
//	out, err := app.Service.ValidateBarcode(ctx, cmd)
package bootstrap
