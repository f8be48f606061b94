// Package logger is the public API of agoralog. Most applications only
// need to import this package.
//
// A LoggingContext owns the handler set and the logger cache for one
// logging configuration. Applications build one at their composition
// root:
//
//	ctx, err := logger.NewContext(logger.Config{
//	    ServiceName: "market-data",
//	    Environment: "production",
//	    Version:     "1.4.2",
//	})
//	defer ctx.Shutdown()
//
//	log := ctx.GetLogger("market-data.api")
//	log.Info("listening", core.Int("port", 8080))
//
// Tests can construct independent contexts in parallel; nothing in the
// pipeline is global. For programs that prefer process-wide state, the
// package-level Initialize/GetLogger/Shutdown functions manage one
// guarded default context.
//
// A Logger is immutable: WithContext returns a child sharing the parent's
// handlers and configuration but carrying its own merged context, so the
// read path needs no locking. Level checks happen before caller capture
// and entry allocation, so a filtered-out call costs one integer
// comparison.
//
// Timer measures an operation and logs its duration exactly once:
//
//	t := log.Timer("database query")
//	defer t.Stop()
package logger
