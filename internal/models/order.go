package models

import (
	"fmt"
	"strings"
	"time"
)

// OrderType represents the fulfillment type of an order
type OrderType string

const (
	Seated   OrderType = "seated"
	Pickup   OrderType = "pickup"
	Delivery OrderType = "delivery"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// Valid payment methods; only cash is offered by the order form today.
var ValidPaymentMethods = []string{"cash", "stripe", "paypal"}

// OrderItem represents a line in an order payload
type OrderItem struct {
	ItemID              string  `json:"id"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	Quantity            int     `json:"quantity"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// Order represents a stored guest order
type Order struct {
	ID                   int         `json:"id"`
	Number               string      `json:"order_number"`
	Type                 OrderType   `json:"order_type"`
	GuestName            string      `json:"guest_name"`
	GuestPhone           string      `json:"guest_phone"`
	GuestEmail           string      `json:"guest_email,omitempty"`
	TableNumber          *int        `json:"table_number,omitempty"`
	PreferredPickupTime  *time.Time  `json:"preferred_pickup_time,omitempty"`
	DeliveryAddress      string      `json:"delivery_address,omitempty"`
	DeliveryCity         string      `json:"delivery_city,omitempty"`
	DeliveryPostalCode   string      `json:"delivery_postal_code,omitempty"`
	DeliveryCountry      string      `json:"delivery_country,omitempty"`
	DeliveryInstructions string      `json:"delivery_instructions,omitempty"`
	PaymentMethod        string      `json:"payment_method"`
	SpecialRequests      string      `json:"special_requests,omitempty"`
	Subtotal             float64     `json:"subtotal"`
	Tax                  float64     `json:"tax"`
	DeliveryCharge       float64     `json:"delivery_charge"`
	TotalAmount          float64     `json:"total_amount"`
	Status               OrderStatus `json:"status"`
	Items                []OrderItem `json:"items"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// CreateOrderRequest represents the request body of POST /api/orders/create/
type CreateOrderRequest struct {
	OrderType            string      `json:"order_type"`
	PaymentMethod        string      `json:"payment_method"`
	GuestName            string      `json:"guest_name"`
	GuestPhone           string      `json:"guest_phone"`
	GuestEmail           string      `json:"guest_email,omitempty"`
	TableNumber          *int        `json:"table_number,omitempty"`
	PreferredPickupTime  string      `json:"preferred_pickup_time,omitempty"`
	DeliveryAddress      string      `json:"delivery_address,omitempty"`
	DeliveryCity         string      `json:"delivery_city,omitempty"`
	DeliveryPostalCode   string      `json:"delivery_postal_code,omitempty"`
	DeliveryCountry      string      `json:"delivery_country,omitempty"`
	DeliveryInstructions string      `json:"delivery_instructions,omitempty"`
	SpecialRequests      string      `json:"special_requests,omitempty"`
	Items                []OrderItem `json:"items"`
}

// CreateOrderResponse is the JSON answer of the order creation endpoint
type CreateOrderResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	OrderID     int    `json:"order_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
	Total       string `json:"total,omitempty"`
}

// ValidationError carries the offending field along with a guest-readable message
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// Validate checks the create order request the way the API contract demands
func (req *CreateOrderRequest) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"order_type", req.OrderType},
		{"payment_method", req.PaymentMethod},
		{"guest_name", req.GuestName},
		{"guest_phone", req.GuestPhone},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return ValidationError{
				Field:   field.name,
				Message: fmt.Sprintf("Missing required field: %s", field.name),
			}
		}
	}

	orderType := OrderType(req.OrderType)
	switch orderType {
	case Seated, Pickup, Delivery:
	default:
		return ValidationError{
			Field:   "order_type",
			Message: "Invalid order type. Must be one of: seated, pickup, delivery",
		}
	}

	validPayment := false
	for _, method := range ValidPaymentMethods {
		if req.PaymentMethod == method {
			validPayment = true
			break
		}
	}
	if !validPayment {
		return ValidationError{
			Field:   "payment_method",
			Message: fmt.Sprintf("Invalid payment method. Must be one of: %s", strings.Join(ValidPaymentMethods, ", ")),
		}
	}

	if err := validateConditionalFields(orderType, req); err != nil {
		return err
	}

	return validateItems(req.Items)
}

// validateConditionalFields validates fields based on the fulfillment type
func validateConditionalFields(orderType OrderType, req *CreateOrderRequest) error {
	switch orderType {
	case Seated:
		if req.TableNumber == nil || *req.TableNumber == 0 {
			return ValidationError{
				Field:   "table_number",
				Message: "Table number required for dine-in orders",
			}
		}
		if *req.TableNumber < 1 || *req.TableNumber > 100 {
			return ValidationError{
				Field:   "table_number",
				Message: "Table number must be between 1 and 100",
			}
		}
	case Delivery:
		deliveryFields := []struct {
			name  string
			value string
		}{
			{"delivery_address", req.DeliveryAddress},
			{"delivery_city", req.DeliveryCity},
			{"delivery_postal_code", req.DeliveryPostalCode},
		}
		for _, field := range deliveryFields {
			if strings.TrimSpace(field.value) == "" {
				return ValidationError{
					Field:   field.name,
					Message: fmt.Sprintf("Missing delivery field: %s", field.name),
				}
			}
		}
	case Pickup:
		// Nothing extra; an absent pickup time means "as soon as possible".
	}

	return nil
}

// validateItems validates the order items
func validateItems(items []OrderItem) error {
	if len(items) == 0 {
		return ValidationError{
			Field:   "items",
			Message: "Order must contain at least one item",
		}
	}
	if len(items) > 20 {
		return ValidationError{
			Field:   "items",
			Message: "Order cannot contain more than 20 items",
		}
	}

	for i, item := range items {
		prefix := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Name) == "" {
			return ValidationError{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("%s.name is required", prefix),
			}
		}
		if item.Quantity < 1 {
			return ValidationError{
				Field:   prefix + ".quantity",
				Message: fmt.Sprintf("%s.quantity must be at least 1", prefix),
			}
		}
		if item.Price < 0.01 {
			return ValidationError{
				Field:   prefix + ".price",
				Message: fmt.Sprintf("%s.price must be at least 0.01", prefix),
			}
		}
	}

	return nil
}

// GenerateOrderNumber generates an order number in format ORD_YYYYMMDD_NNN
func GenerateOrderNumber(date time.Time, sequence int) string {
	return fmt.Sprintf("ORD_%s_%03d", date.Format("20060102"), sequence)
}
