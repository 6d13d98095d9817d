package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"sip-sunshine/internal/logger"
)

// CheckoutPath is where the client is sent after a checkout handoff.
const CheckoutPath = "/checkout/"

// ErrEmptyCart is returned when checkout is attempted on an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// LineItem is one product entry in the cart with its own quantity and notes.
type LineItem struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	Description         string  `json:"description"`
	Image               string  `json:"image"`
	Category            string  `json:"category"`
	Quantity            int     `json:"quantity"`
	SpecialInstructions string  `json:"special_instructions"`
}

// Notifier receives the transient user-facing notifications the store emits
// on add, remove and clear. Level is "success" or "error".
type Notifier interface {
	Notify(ctx context.Context, level, message string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, level, message string) {}

// Store holds one session's ordered cart line items and mirrors them to a
// snapshot store after every mutation. All mutations are serialized by the
// store's mutex; snapshot write failures are logged, never surfaced.
type Store struct {
	mu        sync.Mutex
	items     []LineItem
	session   string
	snapshots SnapshotStore
	notifier  Notifier
	logger    *logger.Logger
}

// NewStore creates an empty cart store for a session. Call Load to pick up
// a previously persisted snapshot.
func NewStore(session string, snapshots SnapshotStore, notifier Notifier, log *logger.Logger) *Store {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Store{
		items:     []LineItem{},
		session:   session,
		snapshots: snapshots,
		notifier:  notifier,
		logger:    log,
	}
}

// Load restores the cart from its persisted snapshot. A missing or
// unparsable snapshot degrades to an empty cart and never returns an error.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.snapshots.Load(ctx, cartKey(s.session))
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			s.logger.Error("cart_load_failed", "Failed to load cart snapshot", "", err, map[string]interface{}{
				"session": s.session,
			})
		}
		s.items = []LineItem{}
		return
	}

	items, err := decodeItems(data)
	if err != nil {
		s.logger.Error("cart_snapshot_corrupt", "Discarding unparsable cart snapshot", "", err, map[string]interface{}{
			"session": s.session,
		})
		s.items = []LineItem{}
		return
	}
	s.items = items
}

// decodeItems parses a persisted snapshot into line items.
func decodeItems(data []byte) ([]LineItem, error) {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}
	if items == nil {
		items = []LineItem{}
	}
	return items, nil
}

// AddItem adds an item to the cart, or bumps its quantity when an item with
// the same id is already present. Items with a missing id, name or price
// are rejected without mutation. Returns whether the cart changed.
func (s *Store) AddItem(ctx context.Context, item LineItem, quantity int) bool {
	if item.ID == "" || item.Name == "" || item.Price == 0 {
		s.logger.Error("cart_invalid_item", "Rejected cart item with missing id, name or price", "", nil, map[string]interface{}{
			"item_id": item.ID,
			"name":    item.Name,
		})
		return false
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	if existing := s.find(item.ID); existing != nil {
		existing.Quantity += quantity
	} else {
		item.Quantity = quantity
		item.SpecialInstructions = ""
		s.items = append(s.items, item)
	}
	s.persist(ctx)
	s.mu.Unlock()

	s.notifier.Notify(ctx, "success", fmt.Sprintf("%s added to cart!", item.Name))
	return true
}

// RemoveItem removes the matching item. Removing an absent id is a no-op
// apart from the persisted snapshot refresh.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.persist(ctx)
	s.mu.Unlock()

	s.notifier.Notify(ctx, "success", "Item removed from cart")
}

// UpdateQuantity sets an item's quantity. A quantity of zero or less
// removes the item.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, id)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(id)
	if item == nil {
		return
	}
	item.Quantity = quantity
	s.persist(ctx)
}

// UpdateInstructions sets the special instructions of an item if present.
func (s *Store) UpdateInstructions(ctx context.Context, id, instructions string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(id)
	if item == nil {
		return
	}
	item.SpecialInstructions = instructions
	s.persist(ctx)
}

// Clear empties the cart. It only acts when the caller confirmed the
// operation; otherwise it is a no-op. Returns whether the cart was cleared.
func (s *Store) Clear(ctx context.Context, confirmed bool) bool {
	if !confirmed {
		return false
	}

	s.mu.Lock()
	s.items = []LineItem{}
	s.persist(ctx)
	s.mu.Unlock()

	s.notifier.Notify(ctx, "success", "Cart cleared")
	return true
}

// Subtotal returns the sum of price times quantity over all items,
// formatted to two decimals. Tax is not part of this figure.
func (s *Store) Subtotal() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return formatAmount(subtotal(s.items))
}

// ItemCount returns the sum of quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Items returns a defensive copy of the cart's line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// View renders the cart view model from the current in-memory state.
func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildView(s.items)
}

// Checkout writes the cart and its subtotal to the session-scoped handoff
// keys consumed by the checkout page and returns the redirect target.
func (s *Store) Checkout(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		s.notifier.Notify(ctx, "error", "Cart is empty")
		return "", ErrEmptyCart
	}

	data, err := json.Marshal(s.items)
	if err != nil {
		return "", fmt.Errorf("failed to encode checkout cart: %w", err)
	}
	if err := s.snapshots.SaveTransient(ctx, checkoutCartKey(s.session), data); err != nil {
		return "", fmt.Errorf("failed to store checkout cart: %w", err)
	}
	subtotal := formatAmount(subtotal(s.items))
	if err := s.snapshots.SaveTransient(ctx, checkoutSubtotalKey(s.session), []byte(subtotal)); err != nil {
		return "", fmt.Errorf("failed to store checkout subtotal: %w", err)
	}

	return CheckoutPath, nil
}

// find returns a pointer into the items slice, valid only under the mutex.
func (s *Store) find(id string) *LineItem {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i]
		}
	}
	return nil
}

// persist mirrors the current sequence into the snapshot store. Always a
// complete JSON array, best effort: failures are logged, not surfaced.
// Caller must hold the mutex.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.items)
	if err != nil {
		s.logger.Error("cart_persist_failed", "Failed to encode cart snapshot", "", err, map[string]interface{}{
			"session": s.session,
		})
		return
	}
	if err := s.snapshots.Save(ctx, cartKey(s.session), data); err != nil {
		s.logger.Error("cart_persist_failed", "Failed to save cart snapshot", "", err, map[string]interface{}{
			"session": s.session,
		})
	}
}
