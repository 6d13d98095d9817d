package orderform

import (
	"strings"
	"sync"
	"testing"
)

type recordingView struct {
	mu            sync.Mutex
	sections      []OrderType
	errors        [][]string
	confirmations []string
	submitEnabled []bool
}

func (v *recordingView) ShowSection(orderType OrderType) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sections = append(v.sections, orderType)
}

func (v *recordingView) ShowErrors(errors []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errors = append(v.errors, errors)
}

func (v *recordingView) ShowConfirmation(orderID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.confirmations = append(v.confirmations, orderID)
}

func (v *recordingView) SetSubmitEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.submitEnabled = append(v.submitEnabled, enabled)
}

func (v *recordingView) lastErrors() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.errors) == 0 {
		return nil
	}
	return v.errors[len(v.errors)-1]
}

func TestController_Defaults(t *testing.T) {
	c := NewController("http://localhost/api/orders/create/", "token", nil)

	if c.Draft.OrderType != Seated {
		t.Errorf("initial order type = %s, want seated", c.Draft.OrderType)
	}
	if c.Draft.Item.Quantity != 1 {
		t.Errorf("initial quantity = %d, want 1", c.Draft.Item.Quantity)
	}
}

func TestController_SetOrderType_ClearsTableNumber(t *testing.T) {
	view := &recordingView{}
	c := NewController("", "", view)

	c.Draft.TableNumber = "12"
	c.SetOrderType(Delivery)
	if c.Draft.TableNumber != "" {
		t.Errorf("entering delivery kept the table number")
	}

	c.Draft.TableNumber = "12"
	c.SetOrderType(Seated)
	if c.Draft.TableNumber != "" {
		t.Errorf("entering seated kept the table number")
	}

	c.Draft.TableNumber = "12"
	c.SetOrderType(Pickup)
	if c.Draft.TableNumber != "12" {
		t.Errorf("entering pickup cleared the table number")
	}

	want := []OrderType{Delivery, Seated, Pickup}
	for i, section := range view.sections {
		if section != want[i] {
			t.Errorf("section shown[%d] = %s, want %s", i, section, want[i])
		}
	}
}

func TestController_QuantityStepper(t *testing.T) {
	c := NewController("", "", nil)
	c.OpenItem("7", "Burger", 5.00)

	c.DecrementQuantity()
	if c.Draft.Item.Quantity != 1 {
		t.Errorf("decrement at floor changed quantity to %d", c.Draft.Item.Quantity)
	}

	c.IncrementQuantity()
	c.IncrementQuantity()
	if c.Draft.Item.Quantity != 3 {
		t.Errorf("quantity after two increments = %d, want 3", c.Draft.Item.Quantity)
	}
	if got := c.LineTotal(); got != "15.00" {
		t.Errorf("LineTotal() = %s, want 15.00", got)
	}

	c.SetQuantity(500)
	if c.Draft.Item.Quantity != 99 {
		t.Errorf("quantity not clamped to 99, got %d", c.Draft.Item.Quantity)
	}
	c.SetQuantity(-3)
	if c.Draft.Item.Quantity != 1 {
		t.Errorf("quantity not clamped to 1, got %d", c.Draft.Item.Quantity)
	}
}

func TestController_Validate(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*Controller)
		want    []string
	}{
		{
			name:    "everything missing",
			prepare: func(c *Controller) {},
			want:    []string{"Guest name is required", "Phone number is required", "Table number is required for dine-in orders"},
		},
		{
			name: "seated without table number",
			prepare: func(c *Controller) {
				c.Draft.GuestName = "Jane"
				c.Draft.GuestPhone = "123"
			},
			want: []string{"Table number is required for dine-in orders"},
		},
		{
			name: "valid seated",
			prepare: func(c *Controller) {
				c.Draft.GuestName = "Jane"
				c.Draft.GuestPhone = "123"
				c.Draft.TableNumber = "4"
			},
		},
		{
			name: "pickup needs nothing extra",
			prepare: func(c *Controller) {
				c.SetOrderType(Pickup)
				c.Draft.GuestName = "Jane"
				c.Draft.GuestPhone = "123"
			},
		},
		{
			name: "delivery missing address block",
			prepare: func(c *Controller) {
				c.SetOrderType(Delivery)
				c.Draft.GuestName = "Jane"
				c.Draft.GuestPhone = "123"
			},
			want: []string{"Delivery address is required", "City is required", "Postal code is required"},
		},
		{
			name: "delivery with invalid email",
			prepare: func(c *Controller) {
				c.SetOrderType(Delivery)
				c.Draft.GuestName = "Jane"
				c.Draft.GuestPhone = "123"
				c.Draft.GuestEmail = "foo"
				c.Draft.DeliveryAddress = "123 Main St"
				c.Draft.DeliveryCity = "Amsterdam"
				c.Draft.DeliveryPostalCode = "1012AB"
			},
			want: []string{"Please enter a valid email address"},
		},
		{
			name: "delivery with valid email",
			prepare: func(c *Controller) {
				c.SetOrderType(Delivery)
				c.Draft.GuestName = "Jane"
				c.Draft.GuestPhone = "123"
				c.Draft.GuestEmail = "jane@example.com"
				c.Draft.DeliveryAddress = "123 Main St"
				c.Draft.DeliveryCity = "Amsterdam"
				c.Draft.DeliveryPostalCode = "1012AB"
			},
		},
		{
			name: "delivery email is optional",
			prepare: func(c *Controller) {
				c.SetOrderType(Delivery)
				c.Draft.GuestName = "Jane"
				c.Draft.GuestPhone = "123"
				c.Draft.DeliveryAddress = "123 Main St"
				c.Draft.DeliveryCity = "Amsterdam"
				c.Draft.DeliveryPostalCode = "1012AB"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController("", "", nil)
			tt.prepare(c)

			got := c.Validate()
			if len(got) != len(tt.want) {
				t.Fatalf("Validate() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Validate()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestController_Validate_MentionsTableNumber(t *testing.T) {
	c := NewController("", "", nil)
	c.Draft.GuestName = "Jane"
	c.Draft.GuestPhone = "123"

	errs := c.Validate()
	if len(errs) != 1 || !strings.Contains(errs[0], "Table number") {
		t.Errorf("seated validation errors = %v, want a message mentioning the table number", errs)
	}
}

func TestController_Reset(t *testing.T) {
	view := &recordingView{}
	c := NewController("", "", view)
	c.OpenItem("7", "Burger", 5.00)
	c.SetOrderType(Delivery)
	c.Draft.GuestName = "Jane"
	c.SetQuantity(4)

	c.Reset()

	if c.Draft.OrderType != Seated {
		t.Errorf("reset order type = %s, want seated", c.Draft.OrderType)
	}
	if c.Draft.GuestName != "" {
		t.Errorf("reset kept guest name %q", c.Draft.GuestName)
	}
	if c.Draft.Item.Quantity != 1 {
		t.Errorf("reset quantity = %d, want 1", c.Draft.Item.Quantity)
	}
	if c.Draft.Item.Name != "Burger" {
		t.Errorf("reset dropped the dialog item")
	}
}
