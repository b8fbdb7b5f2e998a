package mailer

import (
	"context"
	"log/slog"

	"reviewhub/internal/microservices/http-api/models"
)

// LogSender writes confirmation codes to the log. Used in development when
// no Redis is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, user *models.User, code string) error {
	s.logger.InfoContext(ctx, "confirmation_code",
		"user_id", user.ID,
		"email", user.Email,
		"code", code,
	)
	return nil
}
