// Package cart keeps guest shopping carts in memory. Carts are keyed by a
// random id handed to the client and expire after a period of inactivity.
package cart

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTTL = 2 * time.Hour

	// MaxQuantity caps a single cart line.
	MaxQuantity = 99
)

var (
	ErrNotFound           = errors.New("cart not found")
	ErrItemNotInCart      = errors.New("item not in cart")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrQuantityLimit      = errors.New("quantity exceeds the per-item limit")
	ErrCheckoutInProgress = errors.New("cart is being checked out")
)

type Line struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
}

type Cart struct {
	ID        uuid.UUID `json:"id"`
	Items     []Line    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Cart) snapshot() Cart {
	cp := *c
	cp.Items = slices.Clone(c.Items)
	if cp.Items == nil {
		cp.Items = []Line{}
	}
	return cp
}

// Store holds carts in memory. A cart untouched for longer than the TTL is
// treated as gone and is removed by CleanupExpired. A claimed cart belongs to
// one checkout and cannot be changed or claimed again until it is released.
type Store struct {
	carts   map[uuid.UUID]*Cart
	claimed map[uuid.UUID]bool
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		carts:   make(map[uuid.UUID]*Cart),
		claimed: make(map[uuid.UUID]bool),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store) expired(c *Cart, now time.Time) bool {
	return now.Sub(c.UpdatedAt) > s.ttl
}

func (s *Store) Create() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := &Cart{
		ID:        uuid.New(),
		Items:     []Line{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.carts[c.ID] = c
	return c.snapshot()
}

func (s *Store) Get(id uuid.UUID) (Cart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[id]
	if !ok || s.expired(c, s.now()) {
		return Cart{}, false
	}
	return c.snapshot(), true
}

// update runs fn on a live cart under the write lock and refreshes its TTL.
func (s *Store) update(id uuid.UUID, fn func(c *Cart) error) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.carts[id]
	if !ok || s.expired(c, now) {
		return Cart{}, ErrNotFound
	}
	if s.claimed[id] {
		return Cart{}, ErrCheckoutInProgress
	}
	if err := fn(c); err != nil {
		return Cart{}, err
	}
	c.UpdatedAt = now
	return c.snapshot(), nil
}

// AddItem adds quantity to the line for menuItemID, creating it if needed.
// The merged line may not exceed MaxQuantity.
func (s *Store) AddItem(id, menuItemID uuid.UUID, quantity int) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return Cart{}, ErrQuantityLimit
	}
	return s.update(id, func(c *Cart) error {
		for i := range c.Items {
			if c.Items[i].MenuItemID == menuItemID {
				if c.Items[i].Quantity+quantity > MaxQuantity {
					return ErrQuantityLimit
				}
				c.Items[i].Quantity += quantity
				return nil
			}
		}
		c.Items = append(c.Items, Line{MenuItemID: menuItemID, Quantity: quantity})
		return nil
	})
}

// SetQuantity replaces the quantity of an existing line. Zero removes it.
func (s *Store) SetQuantity(id, menuItemID uuid.UUID, quantity int) (Cart, error) {
	if quantity < 0 {
		return Cart{}, ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return Cart{}, ErrQuantityLimit
	}
	return s.update(id, func(c *Cart) error {
		i := slices.IndexFunc(c.Items, func(l Line) bool { return l.MenuItemID == menuItemID })
		if i < 0 {
			return ErrItemNotInCart
		}
		if quantity == 0 {
			c.Items = slices.Delete(c.Items, i, i+1)
			return nil
		}
		c.Items[i].Quantity = quantity
		return nil
	})
}

func (s *Store) RemoveItem(id, menuItemID uuid.UUID) (Cart, error) {
	return s.SetQuantity(id, menuItemID, 0)
}

func (s *Store) Clear(id uuid.UUID) (Cart, error) {
	return s.update(id, func(c *Cart) error {
		c.Items = []Line{}
		return nil
	})
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
	delete(s.claimed, id)
}

// Claim reserves a live cart for checkout and returns its contents. Only one
// claim can be held at a time; the holder must Delete or Release the cart.
func (s *Store) Claim(id uuid.UUID) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[id]
	if !ok || s.expired(c, s.now()) {
		return Cart{}, ErrNotFound
	}
	if s.claimed[id] {
		return Cart{}, ErrCheckoutInProgress
	}
	s.claimed[id] = true
	return c.snapshot(), nil
}

// Release gives a claimed cart back to its owner unchanged.
func (s *Store) Release(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claimed, id)
}

// CleanupExpired removes expired carts and reports how many were dropped.
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, c := range s.carts {
		if s.expired(c, now) && !s.claimed[id] {
			delete(s.carts, id)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

// RunJanitor calls CleanupExpired every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := s.CleanupExpired()
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}
