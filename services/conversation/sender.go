package conversation

import (
	"context"

	"go.uber.org/zap"

	"salonbot/models"
)

// LogSender is the default ChannelSender: it only records the outbound
// payload. The webhook response already carries the payload back to the
// channel integration, so nothing is lost.
type LogSender struct {
	Logger *zap.Logger
}

func (s *LogSender) SendPayload(ctx context.Context, customerID string, payload *models.CardPayload) error {
	s.Logger.Debug("outbound payload",
		zap.String("customerId", customerID),
		zap.String("kind", payload.Kind),
		zap.Int("buttons", len(payload.Buttons)))
	return nil
}
