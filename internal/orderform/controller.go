package orderform

import (
	"strconv"
	"sync"
)

// OrderType is the fulfillment type selected on the order form.
type OrderType string

const (
	Seated   OrderType = "seated"
	Pickup   OrderType = "pickup"
	Delivery OrderType = "delivery"
)

const (
	minQuantity = 1
	maxQuantity = 99
)

// View receives the form's UI effects. The page bindings implement it; the
// controller never reaches into the page itself.
type View interface {
	ShowSection(orderType OrderType)
	ShowErrors(errors []string)
	ShowConfirmation(orderID string)
	SetSubmitEnabled(enabled bool)
}

// NopView discards all UI effects.
type NopView struct{}

func (NopView) ShowSection(orderType OrderType) {}
func (NopView) ShowErrors(errors []string)      {}
func (NopView) ShowConfirmation(orderID string) {}
func (NopView) SetSubmitEnabled(enabled bool)   {}

// Item is the single dialog item an order is placed for.
type Item struct {
	ID       string
	Name     string
	Price    float64
	Quantity int
}

// Draft holds the transient form state for one order interaction.
// It is discarded on reset; only OrderType changes must go through
// SetOrderType so the section visibility side effects fire.
type Draft struct {
	OrderType          OrderType
	GuestName          string
	GuestPhone         string
	GuestEmail         string
	TableNumber        string
	PickupTime         string
	DeliveryAddress    string
	DeliveryCity       string
	DeliveryPostalCode string
	DeliveryCountry    string
	SpecialRequests    string
	Item               Item
}

// Controller drives one order form: fulfillment type switching, the
// quantity stepper, validation and submission.
type Controller struct {
	mu         sync.Mutex
	view       View
	submitter  *submitter
	submitting bool

	Draft Draft
}

// NewController creates a controller posting to the given endpoint with the
// given anti-forgery token. A nil view is replaced with NopView.
func NewController(endpoint, csrfToken string, view View) *Controller {
	if view == nil {
		view = NopView{}
	}
	c := &Controller{
		view:      view,
		submitter: newSubmitter(endpoint, csrfToken),
	}
	c.resetLocked()
	return c
}

// OpenItem populates the form for a menu item and resets the draft,
// mirroring the dialog being (re)opened.
func (c *Controller) OpenItem(id, name string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.Draft.Item = Item{ID: id, Name: name, Price: price, Quantity: minQuantity}
}

// SetOrderType switches the fulfillment type. The matching field section is
// shown and the others hidden; entering seated or delivery clears the table
// number field.
func (c *Controller) SetOrderType(orderType OrderType) {
	c.mu.Lock()
	c.Draft.OrderType = orderType
	if orderType == Seated || orderType == Delivery {
		c.Draft.TableNumber = ""
	}
	c.mu.Unlock()

	c.view.ShowSection(orderType)
}

// IncrementQuantity bumps the stepper, capped at 99.
func (c *Controller) IncrementQuantity() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Draft.Item.Quantity < maxQuantity {
		c.Draft.Item.Quantity++
	}
}

// DecrementQuantity lowers the stepper; a no-op at the floor of 1.
func (c *Controller) DecrementQuantity() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Draft.Item.Quantity > minQuantity {
		c.Draft.Item.Quantity--
	}
}

// SetQuantity sets the stepper directly, clamped to [1, 99].
func (c *Controller) SetQuantity(quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity < minQuantity {
		quantity = minQuantity
	}
	if quantity > maxQuantity {
		quantity = maxQuantity
	}
	c.Draft.Item.Quantity = quantity
}

// LineTotal returns unit price times quantity, formatted to two decimals.
func (c *Controller) LineTotal() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return formatAmount(c.Draft.Item.Price * float64(c.Draft.Item.Quantity))
}

// Reset returns the form to its defaults: seated type, quantity 1, all
// guest fields empty. The dialog item identity is kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()

	c.view.ShowSection(Seated)
}

func (c *Controller) resetLocked() {
	item := c.Draft.Item
	item.Quantity = minQuantity
	c.Draft = Draft{
		OrderType: Seated,
		Item:      item,
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
