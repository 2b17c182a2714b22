// Package logger wraps a process-wide zap logger with request scoping.
//
// Init builds the singleton once from Config (dev: colored console, prod:
// JSON). Middlewares attach a scoped logger carrying request_id, method and
// path with ToContext; services and stores retrieve it with From(ctx), which
// falls back to the singleton when nothing was attached.
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Refresh"))
//	log.Warn("old refresh token not revoked", logger.Err(err))
//
// Refresh tokens are never logged. Token identifiers are logged only through
// TokenFP, which emits a short SHA-256 fingerprint.
package logger
