// Package logger wraps a process-wide zap logger and lets request handlers carry a
// scoped copy through context.Context.
//
// # Environments
//
//   - "dev" (default): colored console output, short caller, no stacktraces.
//   - "prod": JSON output with ISO8601 timestamps and stacktraces on error.
//
// # Usage
//
// Once, from main:
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "clothingshop"})
//	defer logger.Sync()
//
// Inside services and controllers:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Login"))
//	log.Info("login ok", logger.UserID(u.ID))
//
// The HTTP logging middleware stores a logger carrying request_id, method and path, so
// From(ctx) inside a request always yields those fields. Outside a request it falls back
// to L().
package logger
