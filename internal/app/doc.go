// Package app wires econlab together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, an optional YAML file and the environment
//	2. Initialize logging and OpenTelemetry
//	3. Create the regression metrics and services
//	4. Set up the chi router, middleware and handlers
//	5. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM: active requests complete within
// ServerConfig.ShutdownTimeout and the telemetry providers are flushed.
// The package never calls os.Exit; main decides the exit code.
package app
