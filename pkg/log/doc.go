// Package log provides ringlog's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context, backed by Go's standard library slog.
// Components receive a Logger explicitly; there is no global logger.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormat(log.TextFormat),
//	)
//	l = l.With(log.Component("engine"))
//	l.Info("scan complete", log.Int("sectors", 4))
//
// Components that do not care about logging take log.NewNop().
package log
