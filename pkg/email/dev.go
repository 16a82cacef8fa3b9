package email

import (
	"context"
	"log/slog"

	"github.com/opsdesk/opsdesk/pkg/logger"
)

// DevSender logs messages instead of delivering them. It still validates
// params so development catches the same mistakes production would.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender creates the logging sender.
func NewDevSender(log *slog.Logger) *DevSender {
	if log == nil {
		log = slog.Default()
	}
	return &DevSender{log: log}
}

func (d *DevSender) Send(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	d.log.InfoContext(ctx, "email suppressed in development",
		slog.String("to", params.To),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
		slog.Int("body_bytes", len(params.BodyHTML)),
		logger.Component("email"),
	)
	return nil
}
