package cart

import (
	"context"
	"log"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/storage"
)

// Service owns the cart entity. Every operation is a full read-modify-write
// cycle against the slot, serialized by the mutex, so mutations within one
// process are strictly ordered. Operations return the fully recomputed cart.
type Service struct {
	mu   sync.Mutex
	slot storage.Slot
}

func NewService(slot storage.Slot) *Service {
	return &Service{slot: slot}
}

// Get loads the persisted cart, defaulting to empty on absence or corrupt
// state, and recomputes the total before returning it. Recomputing on every
// read guards against stale totals left behind by earlier bugs or direct
// edits to the underlying storage.
func (s *Service) Get(ctx context.Context) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx), nil
}

// Add increments the quantity of an existing item with the same code by one,
// or appends a new item with quantity 1. Deliberately cumulative: each call
// adds one unit.
func (s *Service) Add(ctx context.Context, product domain.Product) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(ctx)
	if item := cart.FindItem(product.Code); item != nil {
		item.Quantity++
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			Code:        product.Code,
			Name:        product.Name,
			Description: product.Description,
			ImageURL:    product.ImageURL,
			Price:       product.Price,
			Quantity:    1,
		})
	}
	return s.save(ctx, cart)
}

// UpdateQuantity sets the item's quantity to max(0, quantity). Negative
// requests clamp to zero rather than erroring, and a zero quantity does not
// remove the item; removal stays an explicit separate operation. Unknown
// codes are a no-op.
func (s *Service) UpdateQuantity(ctx context.Context, code string, quantity int) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(ctx)
	if item := cart.FindItem(code); item != nil {
		item.Quantity = max(0, quantity)
	}
	return s.save(ctx, cart)
}

// Remove filters out the item with the matching code. Removing an absent
// code yields the unchanged cart, so repeated calls are idempotent.
func (s *Service) Remove(ctx context.Context, code string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(ctx)
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.Code != code {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return s.save(ctx, cart)
}

// Clear replaces the persisted cart with the empty cart unconditionally.
func (s *Service) Clear(ctx context.Context) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, domain.EmptyCart())
}

// ItemCount is the badge value, the sum of quantities across all items.
func (s *Service) ItemCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx).ItemCount(), nil
}

// load returns the persisted cart or a fresh empty one. Slot errors degrade
// to an empty cart: storage trouble must never take the storefront down.
func (s *Service) load(ctx context.Context) *domain.Cart {
	cart := domain.EmptyCart()
	found, err := s.slot.Load(ctx, cart)
	if err != nil {
		log.Printf("cart slot load error, starting from empty cart: %v", err)
		found = false
	}
	if !found {
		cart = domain.EmptyCart()
	}
	cart.Recalculate()
	return cart
}

func (s *Service) save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	cart.Recalculate()
	if err := s.slot.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
