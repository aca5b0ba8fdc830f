package cart

import (
	"context"
	"sync"
	"time"

	"github.com/davidquint/raffle-backend/pkg/config"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/davidquint/raffle-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one selected item in a cart, snapshotting display fields at add time.
type Line struct {
	ItemID            uuid.UUID       `json:"item_id"`
	ItemNumber        string          `json:"item_number"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	ImageURL          string          `json:"image_url,omitempty"`
	IsOver21          bool            `json:"is_over_21"`
	IsLocalPickupOnly bool            `json:"is_local_pickup_only"`
	Quantity          int             `json:"quantity"`
}

// Snapshot is a point-in-time copy of a cart with derived totals.
type Snapshot struct {
	CartID       uuid.UUID       `json:"cart_id"`
	Lines        []Line          `json:"lines"`
	TotalTickets int             `json:"total_tickets"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

type cartState struct {
	lines     []Line
	touchedAt time.Time
}

// Store keeps carts in process memory, keyed by the cart token. Carts are
// session-scoped and never persisted.
type Store struct {
	mu          sync.Mutex
	carts       map[uuid.UUID]*cartState
	minQuantity int
	ttl         time.Duration
	sweepEvery  time.Duration
	logg        *logger.Logger
	now         func() time.Time
}

// NewStore builds an empty cart store configured with the quantity floor and TTL.
func NewStore(cfg config.CartConfig, logg *logger.Logger) *Store {
	minQuantity := cfg.MinQuantity
	if minQuantity < 1 {
		minQuantity = 1
	}
	return &Store{
		carts:       make(map[uuid.UUID]*cartState),
		minQuantity: minQuantity,
		ttl:         cfg.TTL,
		sweepEvery:  cfg.SweepEvery,
		logg:        logg,
		now:         time.Now,
	}
}

// NewCartID issues a fresh cart token.
func NewCartID() uuid.UUID {
	return uuid.New()
}

// StartJanitor runs the TTL sweep loop until the context is cancelled.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.ttl <= 0 || s.sweepEvery <= 0 {
		return
	}
	ticker := time.NewTicker(s.sweepEvery)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				evicted := s.sweep()
				if evicted > 0 && s.logg != nil {
					logCtx := s.logg.WithField(ctx, "evicted", evicted)
					s.logg.Info(logCtx, "cart janitor evicted idle carts")
				}
			}
		}
	}()
}

func (s *Store) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	evicted := 0
	for id, state := range s.carts {
		if state.touchedAt.Before(cutoff) {
			delete(s.carts, id)
			evicted++
		}
	}
	return evicted
}

// Add increments the quantity for the item or appends a new line. The cart is
// created on first use of an unknown token. Add never fails.
func (s *Store) Add(cartID uuid.UUID, item Line) Snapshot {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.ensureLocked(cartID)
	for i := range state.lines {
		if state.lines[i].ItemID == item.ItemID {
			state.lines[i].Quantity += item.Quantity
			return s.snapshotLocked(cartID, state)
		}
	}
	state.lines = append(state.lines, item)
	return s.snapshotLocked(cartID, state)
}

// UpdateQuantity applies a delta to a line's quantity, clamping at the
// configured minimum. Unknown lines are reported, not created.
func (s *Store) UpdateQuantity(cartID, itemID uuid.UUID, delta int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.ensureLocked(cartID)
	for i := range state.lines {
		if state.lines[i].ItemID == itemID {
			next := state.lines[i].Quantity + delta
			if next < s.minQuantity {
				next = s.minQuantity
			}
			state.lines[i].Quantity = next
			return s.snapshotLocked(cartID, state), nil
		}
	}
	return Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
}

// Remove deletes the line unconditionally. Removing an absent line is a no-op.
func (s *Store) Remove(cartID, itemID uuid.UUID) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.ensureLocked(cartID)
	for i := range state.lines {
		if state.lines[i].ItemID == itemID {
			state.lines = append(state.lines[:i], state.lines[i+1:]...)
			break
		}
	}
	return s.snapshotLocked(cartID, state)
}

// Snapshot returns a copy of the cart with totals derived from current lines.
func (s *Store) Snapshot(cartID uuid.UUID) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.ensureLocked(cartID)
	return s.snapshotLocked(cartID, state)
}

// HasAgeRestrictedSelection reports whether any selected line is age restricted.
func (s *Store) HasAgeRestrictedSelection(cartID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.ensureLocked(cartID)
	for _, line := range state.lines {
		if line.IsOver21 && line.Quantity > 0 {
			return true
		}
	}
	return false
}

// Clear drops every line from the cart.
func (s *Store) Clear(cartID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, cartID)
}

func (s *Store) ensureLocked(cartID uuid.UUID) *cartState {
	state, ok := s.carts[cartID]
	if !ok {
		state = &cartState{}
		s.carts[cartID] = state
	}
	state.touchedAt = s.now()
	return state
}

func (s *Store) snapshotLocked(cartID uuid.UUID, state *cartState) Snapshot {
	lines := make([]Line, len(state.lines))
	copy(lines, state.lines)

	tickets := 0
	total := decimal.Zero
	for _, line := range lines {
		tickets += line.Quantity
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return Snapshot{
		CartID:       cartID,
		Lines:        lines,
		TotalTickets: tickets,
		TotalPrice:   total,
	}
}
