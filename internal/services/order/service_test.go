package order

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"sip-sunshine/internal/config"
	"sip-sunshine/internal/logger"
	"sip-sunshine/internal/models"
)

type fakeRepository struct {
	sequence  int
	orders    map[string]*models.Order
	createErr error
	lastOrder *models.Order
	nextID    int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{sequence: 1, orders: make(map[string]*models.Order), nextID: 100}
}

func (f *fakeRepository) NextOrderSequence(ctx context.Context, numberPrefix string) (int, error) {
	return f.sequence, nil
}

func (f *fakeRepository) CreateOrder(ctx context.Context, order *models.Order) (int, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	order.ID = f.nextID
	order.CreatedAt = time.Now().UTC()
	f.lastOrder = order
	f.orders[order.Number] = order
	return f.nextID, nil
}

func (f *fakeRepository) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	order, ok := f.orders[number]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }

type fakePublisher struct {
	orders        []interface{}
	routingKeys   []string
	notifications []interface{}
	publishErr    error
}

func (f *fakePublisher) PublishOrder(ctx context.Context, orderMsg interface{}, routingKey string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.orders = append(f.orders, orderMsg)
	f.routingKeys = append(f.routingKeys, routingKey)
	return nil
}

func (f *fakePublisher) PublishNotification(ctx context.Context, notificationMsg interface{}) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.notifications = append(f.notifications, notificationMsg)
	return nil
}

func newTestService(repo *fakeRepository, pub *fakePublisher) *Service {
	return NewService(repo, pub, logger.New("order-service-test"), config.DeliveryConfig{
		ChargeFixed:   2.50,
		ChargePercent: 0,
	})
}

func pickupRequest() *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		OrderType:     "pickup",
		PaymentMethod: "cash",
		GuestName:     "Jane",
		GuestPhone:    "123",
		Items: []models.OrderItem{
			{ItemID: "7", Name: "Burger", Price: 5.00, Quantity: 2},
		},
	}
}

func TestCreateOrder_PricesPickupOrder(t *testing.T) {
	repo := newFakeRepository()
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	resp, err := svc.CreateOrder(context.Background(), pickupRequest(), "req-1")
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	if !resp.Success || resp.Message != "Order created successfully" {
		t.Errorf("response = %+v, want success", resp)
	}
	if resp.Total != "12.10" {
		t.Errorf("total = %s, want 12.10 (10.00 + 21%% tax)", resp.Total)
	}

	stored := repo.lastOrder
	if stored.Subtotal != 10.00 || stored.Tax != 2.10 || stored.DeliveryCharge != 0 || stored.TotalAmount != 12.10 {
		t.Errorf("stored pricing = %.2f/%.2f/%.2f/%.2f, want 10.00/2.10/0.00/12.10",
			stored.Subtotal, stored.Tax, stored.DeliveryCharge, stored.TotalAmount)
	}
	if stored.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", stored.Status)
	}
}

func TestCreateOrder_DeliveryChargeApplied(t *testing.T) {
	repo := newFakeRepository()
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	req := pickupRequest()
	req.OrderType = "delivery"
	req.GuestEmail = "jane@example.com"
	req.DeliveryAddress = "1 Main St"
	req.DeliveryCity = "Amsterdam"
	req.DeliveryPostalCode = "1011AB"

	resp, err := svc.CreateOrder(context.Background(), req, "req-2")
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	// 10.00 subtotal + 2.10 tax + 2.50 fixed delivery charge.
	if resp.Total != "14.60" {
		t.Errorf("total = %s, want 14.60", resp.Total)
	}
	if repo.lastOrder.DeliveryCharge != 2.50 {
		t.Errorf("delivery charge = %.2f, want 2.50", repo.lastOrder.DeliveryCharge)
	}
}

func TestCreateOrder_OrderNumberFormat(t *testing.T) {
	repo := newFakeRepository()
	repo.sequence = 7
	svc := newTestService(repo, &fakePublisher{})

	resp, err := svc.CreateOrder(context.Background(), pickupRequest(), "req-3")
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	want := fmt.Sprintf("ORD_%s_007", time.Now().UTC().Format("20060102"))
	if resp.OrderNumber != want {
		t.Errorf("order number = %s, want %s", resp.OrderNumber, want)
	}
}

func TestCreateOrder_PublishesEvents(t *testing.T) {
	repo := newFakeRepository()
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	resp, err := svc.CreateOrder(context.Background(), pickupRequest(), "req-4")
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	if len(pub.routingKeys) != 1 || pub.routingKeys[0] != "order.pickup.created" {
		t.Fatalf("routing keys = %v, want [order.pickup.created]", pub.routingKeys)
	}
	event, ok := pub.orders[0].(models.OrderCreatedMessage)
	if !ok {
		t.Fatalf("published event has type %T", pub.orders[0])
	}
	if event.OrderNumber != resp.OrderNumber || event.ItemCount != 1 {
		t.Errorf("event = %+v, want order %s with 1 item", event, resp.OrderNumber)
	}

	if len(pub.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(pub.notifications))
	}
	note := pub.notifications[0].(models.NotificationMessage)
	if note.Level != "success" {
		t.Errorf("notification level = %s, want success", note.Level)
	}
}

func TestCreateOrder_PublishFailureStillSucceeds(t *testing.T) {
	repo := newFakeRepository()
	pub := &fakePublisher{publishErr: errors.New("broker down")}
	svc := newTestService(repo, pub)

	resp, err := svc.CreateOrder(context.Background(), pickupRequest(), "req-5")
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if !resp.Success {
		t.Errorf("order not accepted when the broker is down")
	}
	if repo.lastOrder == nil {
		t.Errorf("order not stored")
	}
}

func TestCreateOrder_ValidationErrorsPassThrough(t *testing.T) {
	svc := newTestService(newFakeRepository(), &fakePublisher{})

	req := pickupRequest()
	req.GuestName = ""

	_, err := svc.CreateOrder(context.Background(), req, "req-6")
	var validationErr models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if validationErr.Message != "Missing required field: guest_name" {
		t.Errorf("message = %q", validationErr.Message)
	}
}

func TestCreateOrder_InvalidPickupTime(t *testing.T) {
	svc := newTestService(newFakeRepository(), &fakePublisher{})

	req := pickupRequest()
	req.PreferredPickupTime = "tomorrow at noon"

	_, err := svc.CreateOrder(context.Background(), req, "req-7")
	var validationErr models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if validationErr.Field != "preferred_pickup_time" {
		t.Errorf("field = %s, want preferred_pickup_time", validationErr.Field)
	}
}

func TestCreateOrder_ParsesPickupTimeFormats(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, &fakePublisher{})

	req := pickupRequest()
	req.PreferredPickupTime = "2026-08-28T14:30"

	if _, err := svc.CreateOrder(context.Background(), req, "req-8"); err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if repo.lastOrder.PreferredPickupTime == nil {
		t.Fatalf("pickup time not stored")
	}
	if got := repo.lastOrder.PreferredPickupTime.Format("2006-01-02T15:04"); got != "2026-08-28T14:30" {
		t.Errorf("stored pickup time = %s", got)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	svc := newTestService(newFakeRepository(), &fakePublisher{})

	_, err := svc.GetOrder(context.Background(), "ORD_20260101_001")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("error = %v, want ErrOrderNotFound", err)
	}
}
