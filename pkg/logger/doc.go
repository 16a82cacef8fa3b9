// Package logger builds configured slog.Logger instances and provides typed
// attribute helpers for the identifiers this codebase logs most.
//
//	log := logger.New(logger.WithEnvironment(cfg.Env, "opsdesk"))
//	log.InfoContext(ctx, "ticket resolved",
//		logger.TicketID(ticket.ID),
//		logger.UserID(actor.ID),
//	)
package logger
