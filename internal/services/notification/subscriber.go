package notification

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sip-sunshine/internal/logger"
	"sip-sunshine/internal/messaging"
	"sip-sunshine/internal/models"
)

// Subscriber consumes the notification fanout and displays each message
// to the console.
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger

	shutdown chan os.Signal
	done     chan bool
}

// NewSubscriber creates a new notification subscriber
func NewSubscriber(consumer *messaging.Consumer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		shutdown: make(chan os.Signal, 1),
		done:     make(chan bool, 1),
	}
}

// Start runs the subscriber until the context is cancelled or a shutdown
// signal arrives.
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)

	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	go func() {
		if err := s.consumer.StartConsuming(ctx, s.handleNotification); err != nil {
			s.logger.Error("consumer_failed", "Notification consumer failed", requestID, err, nil)
		}
		s.done <- true
	}()

	select {
	case <-s.shutdown:
		s.logger.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		return s.gracefulShutdown(requestID)
	case <-s.done:
		return nil
	}
}

// handleNotification processes one notification message.
func (s *Subscriber) handleNotification(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var notification models.NotificationMessage
	if err := messaging.ParseMessage(body, &notification); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse notification message", requestID, err, nil)
		return fmt.Errorf("failed to parse notification: %w", err)
	}

	s.logger.Debug("notification_received", "Received notification", requestID, map[string]interface{}{
		"level":   notification.Level,
		"session": notification.Session,
	})

	s.displayNotification(&notification)

	return nil
}

// displayNotification prints a human-readable line and logs the structured
// counterpart.
func (s *Subscriber) displayNotification(notification *models.NotificationMessage) {
	fmt.Println(formatNotification(notification))

	s.logger.Info("notification_displayed", "Notification displayed to user", "", map[string]interface{}{
		"level":     notification.Level,
		"message":   notification.Message,
		"session":   notification.Session,
		"timestamp": notification.Timestamp.Format("2006-01-02 15:04:05"),
	})
}

// formatNotification creates the console line for a notification.
func formatNotification(notification *models.NotificationMessage) string {
	timestamp := notification.Timestamp.Format("2006-01-02 15:04:05")

	var marker string
	switch notification.Level {
	case "success":
		marker = "✅"
	case "error":
		marker = "❌"
	default:
		marker = "📋"
	}

	return fmt.Sprintf("%s [%s] %s", marker, timestamp, notification.Message)
}

// gracefulShutdown stops the consumer.
func (s *Subscriber) gracefulShutdown(requestID string) error {
	s.logger.Info("graceful_shutdown", "Starting graceful shutdown", requestID, nil)

	if s.consumer != nil {
		s.consumer.Close()
	}

	s.logger.Info("graceful_shutdown", "Graceful shutdown completed", requestID, nil)
	return nil
}
