package orderform

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the current draft and returns guest-readable error
// messages. It is a pure function of the field values; no side effects.
func (c *Controller) Validate() []string {
	c.mu.Lock()
	draft := c.Draft
	c.mu.Unlock()

	return validateDraft(&draft)
}

func validateDraft(draft *Draft) []string {
	var errors []string

	if strings.TrimSpace(draft.GuestName) == "" {
		errors = append(errors, "Guest name is required")
	}
	if strings.TrimSpace(draft.GuestPhone) == "" {
		errors = append(errors, "Phone number is required")
	}

	switch draft.OrderType {
	case Seated:
		if strings.TrimSpace(draft.TableNumber) == "" {
			errors = append(errors, "Table number is required for dine-in orders")
		}
	case Pickup:
		// No additional required fields; an empty pickup time means ASAP.
	case Delivery:
		if strings.TrimSpace(draft.DeliveryAddress) == "" {
			errors = append(errors, "Delivery address is required")
		}
		if strings.TrimSpace(draft.DeliveryCity) == "" {
			errors = append(errors, "City is required")
		}
		if strings.TrimSpace(draft.DeliveryPostalCode) == "" {
			errors = append(errors, "Postal code is required")
		}

		email := strings.TrimSpace(draft.GuestEmail)
		if email != "" && !emailPattern.MatchString(email) {
			errors = append(errors, "Please enter a valid email address")
		}
	}

	return errors
}
