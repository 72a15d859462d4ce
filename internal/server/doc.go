// Package server holds the ServerContext shared by the MCP tools and the
// HTTP surfaces around them.
//
// A ServerContext carries the Upgates gateway, the logger, the server
// configuration and the optional instrumentation provider. Dependencies are
// injected with functional options:
//
//	sc, err := server.NewServerContext(ctx,
//		server.WithGateway(client),
//		server.WithLogger(logger),
//		server.WithConfig(cfg),
//		server.WithInstrumentationProvider(provider),
//	)
//	if err != nil {
//		return err
//	}
//	defer sc.Shutdown()
//
// The package also provides the health probes (/healthz, /readyz and
// /healthz/detailed) mounted on the HTTP transports, and the dedicated
// metrics server. Health output reports the upstream host, the circuit
// breaker state and readonly mode, never credentials.
package server
