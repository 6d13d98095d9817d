package models

import "time"

// OrderCreatedMessage is published to the orders topic exchange when an
// order is accepted. Routing key: order.<type>.created.
type OrderCreatedMessage struct {
	OrderNumber string    `json:"order_number"`
	OrderID     int       `json:"order_id"`
	OrderType   OrderType `json:"order_type"`
	GuestName   string    `json:"guest_name"`
	TotalAmount float64   `json:"total_amount"`
	ItemCount   int       `json:"item_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// NotificationMessage is the transient user-facing notification published
// to the fanout exchange. Level is either "success" or "error".
type NotificationMessage struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Session   string    `json:"session,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
