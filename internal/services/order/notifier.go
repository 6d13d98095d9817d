package order

import (
	"context"
	"time"

	"sip-sunshine/internal/logger"
	"sip-sunshine/internal/models"
)

// BrokerNotifier forwards cart notifications to the fanout exchange where
// the notification subscriber picks them up. Best effort: a broker outage
// never breaks a cart operation.
type BrokerNotifier struct {
	publisher Publisher
	logger    *logger.Logger
}

func NewBrokerNotifier(publisher Publisher, log *logger.Logger) *BrokerNotifier {
	return &BrokerNotifier{
		publisher: publisher,
		logger:    log,
	}
}

func (n *BrokerNotifier) Notify(ctx context.Context, level, message string) {
	notification := models.NotificationMessage{
		Level:     level,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err := n.publisher.PublishNotification(ctx, notification); err != nil {
		n.logger.Error("notification_publish_failed", "Failed to publish cart notification", "", err, map[string]interface{}{
			"level": level,
		})
	}
}
