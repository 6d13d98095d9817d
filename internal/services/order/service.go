package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"sip-sunshine/internal/config"
	"sip-sunshine/internal/logger"
	"sip-sunshine/internal/models"
)

// ErrOrderNotFound is returned when no order matches the given number.
var ErrOrderNotFound = errors.New("order not found")

// Repository is the storage the order service needs.
type Repository interface {
	NextOrderSequence(ctx context.Context, numberPrefix string) (int, error)
	CreateOrder(ctx context.Context, order *models.Order) (int, error)
	GetOrderByNumber(ctx context.Context, number string) (*models.Order, error)
	Ping(ctx context.Context) error
}

// Publisher is the broker surface the order service needs.
type Publisher interface {
	PublishOrder(ctx context.Context, orderMsg interface{}, routingKey string) error
	PublishNotification(ctx context.Context, notificationMsg interface{}) error
}

// Service implements order intake: validation, pricing, persistence and
// event publication.
type Service struct {
	repo      Repository
	publisher Publisher
	logger    *logger.Logger
	delivery  config.DeliveryConfig
}

func NewService(repo Repository, publisher Publisher, log *logger.Logger, delivery config.DeliveryConfig) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    log,
		delivery:  delivery,
	}
}

// CreateOrder validates the request, prices it, stores it and publishes the
// order-created event. Validation failures come back as
// models.ValidationError.
func (s *Service) CreateOrder(ctx context.Context, req *models.CreateOrderRequest, requestID string) (*models.CreateOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	subtotal := 0.0
	for _, item := range req.Items {
		subtotal += item.Price * float64(item.Quantity)
	}
	subtotal = round2(subtotal)

	// 21% VAT, applied at order time the same way the cart summary shows it.
	tax := round2(subtotal * 0.21)

	deliveryCharge := 0.0
	if models.OrderType(req.OrderType) == models.Delivery {
		deliveryCharge = round2(s.delivery.ChargeFixed + subtotal*s.delivery.ChargePercent/100)
	}

	total := round2(subtotal + tax + deliveryCharge)

	number, err := s.nextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	order := &models.Order{
		Number:               number,
		Type:                 models.OrderType(req.OrderType),
		GuestName:            req.GuestName,
		GuestPhone:           req.GuestPhone,
		GuestEmail:           req.GuestEmail,
		TableNumber:          req.TableNumber,
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryCity:         req.DeliveryCity,
		DeliveryPostalCode:   req.DeliveryPostalCode,
		DeliveryCountry:      req.DeliveryCountry,
		DeliveryInstructions: req.DeliveryInstructions,
		PaymentMethod:        req.PaymentMethod,
		SpecialRequests:      req.SpecialRequests,
		Subtotal:             subtotal,
		Tax:                  tax,
		DeliveryCharge:       deliveryCharge,
		TotalAmount:          total,
		Status:               models.StatusPending,
		Items:                req.Items,
	}

	if req.PreferredPickupTime != "" {
		pickupTime, err := parsePickupTime(req.PreferredPickupTime)
		if err != nil {
			return nil, models.ValidationError{
				Field:   "preferred_pickup_time",
				Message: "Invalid preferred_pickup_time. Use ISO format, e.g. 2024-01-15T14:30",
			}
		}
		order.PreferredPickupTime = &pickupTime
	}

	orderID, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to store order: %w", err)
	}

	s.publishOrderCreated(ctx, orderID, order, requestID)

	return &models.CreateOrderResponse{
		Success:     true,
		Message:     "Order created successfully",
		OrderID:     orderID,
		OrderNumber: number,
		Total:       strconv.FormatFloat(total, 'f', 2, 64),
	}, nil
}

// GetOrder returns a stored order with its items.
func (s *Service) GetOrder(ctx context.Context, number string) (*models.Order, error) {
	return s.repo.GetOrderByNumber(ctx, number)
}

// HealthCheck reports whether the storage backend is reachable.
func (s *Service) HealthCheck(ctx context.Context) bool {
	return s.repo.Ping(ctx) == nil
}

// nextOrderNumber assigns the next ORD_YYYYMMDD_NNN number for today.
func (s *Service) nextOrderNumber(ctx context.Context) (string, error) {
	now := time.Now().UTC()
	prefix := fmt.Sprintf("ORD_%s_%%", now.Format("20060102"))

	sequence, err := s.repo.NextOrderSequence(ctx, prefix)
	if err != nil {
		return "", err
	}
	return models.GenerateOrderNumber(now, sequence), nil
}

// publishOrderCreated emits the order event and a guest notification.
// The order is already stored; publish failures are logged, not returned.
func (s *Service) publishOrderCreated(ctx context.Context, orderID int, order *models.Order, requestID string) {
	event := models.OrderCreatedMessage{
		OrderNumber: order.Number,
		OrderID:     orderID,
		OrderType:   order.Type,
		GuestName:   order.GuestName,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		Timestamp:   time.Now().UTC(),
	}
	routingKey := fmt.Sprintf("order.%s.created", order.Type)
	if err := s.publisher.PublishOrder(ctx, event, routingKey); err != nil {
		s.logger.Error("order_publish_failed", "Failed to publish order created event", requestID, err, map[string]interface{}{
			"order_number": order.Number,
		})
	}

	notification := models.NotificationMessage{
		Level:     "success",
		Message:   fmt.Sprintf("Order %s received for %s", order.Number, order.GuestName),
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.PublishNotification(ctx, notification); err != nil {
		s.logger.Error("notification_publish_failed", "Failed to publish order notification", requestID, err, map[string]interface{}{
			"order_number": order.Number,
		})
	}
}

// parsePickupTime accepts the HTML datetime-local format and full RFC 3339.
func parsePickupTime(value string) (time.Time, error) {
	layouts := []string{"2006-01-02T15:04", time.RFC3339}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
