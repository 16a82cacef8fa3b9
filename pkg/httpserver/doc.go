// Package httpserver runs the HTTP listener with graceful shutdown wired to
// context cancellation and SIGINT/SIGTERM.
//
//	srv := httpserver.NewFromConfig(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithStopHook(func(l *slog.Logger) { hub.Close() }),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server exited", logger.Error(err))
//	}
package httpserver
