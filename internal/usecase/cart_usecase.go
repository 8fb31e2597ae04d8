package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const CartKey = "epiceats_cart"

// CartUseCase is the durable local cart. Every mutation rewrites the whole
// persisted cart and returns the updated lines.
type CartUseCase interface {
	Lines(ctx context.Context) domain.Cart
	Add(ctx context.Context, product domain.Product) (domain.Cart, error)
	UpdateQuantity(ctx context.Context, productID string, quantity int) (domain.Cart, error)
	Remove(ctx context.Context, productID string) (domain.Cart, error)
	Clear(ctx context.Context) (domain.Cart, error)
	// Settle takes ordered lines out of the cart. Quantities added after the
	// order was drafted stay. If the write fails, the ordered quantities stay
	// hidden from every read until a later write succeeds.
	Settle(ctx context.Context, ordered domain.Cart) (domain.Cart, error)
	Total(ctx context.Context) decimal.Decimal
	ItemCount(ctx context.Context) int
}

type cartUseCase struct {
	store domain.StateStore
	mu    sync.Mutex
	log   *logrus.Logger

	// ordered quantities not yet written back to the store
	unsettled domain.Cart
}

func NewCartUseCase(store domain.StateStore, logger *logrus.Logger) CartUseCase {
	return &cartUseCase{
		store: store,
		log:   logger,
	}
}

// load treats unparseable stored data as an empty cart. Store I/O errors are returned.
func (uc *cartUseCase) load(ctx context.Context) (domain.Cart, error) {
	raw, found, err := uc.store.Get(ctx, CartKey)
	if err != nil {
		return nil, fmt.Errorf("could not read cart: %w", err)
	}
	if !found || len(raw) == 0 {
		return domain.Cart{}, nil
	}

	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		uc.log.Warnf("Use Case: Stored cart is unreadable, starting from an empty cart: %v", err)
		return domain.Cart{}, nil
	}

	valid := make(domain.Cart, 0, len(cart))
	for _, line := range cart {
		if line.ProductID == "" || line.Quantity <= 0 {
			uc.log.Warnf("Use Case: Dropping invalid stored cart line (product %q, quantity %d)", line.ProductID, line.Quantity)
			continue
		}
		valid = append(valid, line)
	}
	return subtractLines(valid, uc.unsettled), nil
}

// subtractLines lowers each line by the quantity in taken, dropping lines that reach zero.
func subtractLines(cart, taken domain.Cart) domain.Cart {
	if len(taken) == 0 {
		return cart
	}
	out := make(domain.Cart, 0, len(cart))
	for _, line := range cart {
		if idx := taken.IndexOf(line.ProductID); idx >= 0 {
			line.Quantity -= taken[idx].Quantity
		}
		if line.Quantity > 0 {
			out = append(out, line)
		}
	}
	return out
}

func mergeLines(into, more domain.Cart) domain.Cart {
	out := into.Clone()
	for _, line := range more {
		if idx := out.IndexOf(line.ProductID); idx >= 0 {
			out[idx].Quantity += line.Quantity
			continue
		}
		out = append(out, line)
	}
	return out
}

func (uc *cartUseCase) save(ctx context.Context, cart domain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("could not encode cart: %w", err)
	}
	if err := uc.store.Set(ctx, CartKey, raw); err != nil {
		uc.log.Errorf("Use Case: Failed to persist cart: %v", err)
		return fmt.Errorf("could not save cart: %w", err)
	}
	uc.unsettled = nil
	return nil
}

func (uc *cartUseCase) Lines(ctx context.Context) domain.Cart {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	cart, err := uc.load(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: %v; showing an empty cart", err)
		return domain.Cart{}
	}
	if len(uc.unsettled) > 0 {
		if err := uc.save(ctx, cart); err != nil {
			uc.log.Warnf("Use Case: Ordered lines are still pending removal from the stored cart: %v", err)
		}
	}
	return cart
}

func (uc *cartUseCase) Add(ctx context.Context, product domain.Product) (domain.Cart, error) {
	if product.ID == "" {
		return nil, domain.NewValidationError("productId", "product id is required")
	}
	if product.Price.IsNegative() {
		return nil, domain.NewValidationError("price", "product price cannot be negative")
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	cart, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	if idx := cart.IndexOf(product.ID); idx >= 0 {
		cart[idx].Quantity++
		uc.log.Infof("Use Case: Incremented product %s in cart to quantity %d", product.ID, cart[idx].Quantity)
	} else {
		cart = append(cart, domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  1,
			ImageRef:  product.Image,
		})
		uc.log.Infof("Use Case: Added product %s to cart", product.ID)
	}

	if err := uc.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity sets an absolute quantity. A quantity of zero or less removes the line.
func (uc *cartUseCase) UpdateQuantity(ctx context.Context, productID string, quantity int) (domain.Cart, error) {
	if quantity <= 0 {
		return uc.Remove(ctx, productID)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	cart, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := cart.IndexOf(productID)
	if idx < 0 {
		uc.log.Debugf("Use Case: Quantity update for product %s not in cart ignored", productID)
	} else {
		cart[idx].Quantity = quantity
		uc.log.Infof("Use Case: Set quantity of product %s to %d", productID, quantity)
	}

	if err := uc.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (uc *cartUseCase) Remove(ctx context.Context, productID string) (domain.Cart, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	cart, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	kept := make(domain.Cart, 0, len(cart))
	for _, line := range cart {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	if len(kept) != len(cart) {
		uc.log.Infof("Use Case: Removed product %s from cart", productID)
	}

	if err := uc.save(ctx, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (uc *cartUseCase) Clear(ctx context.Context) (domain.Cart, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.store.Delete(ctx, CartKey); err != nil {
		uc.log.Errorf("Use Case: Failed to clear cart: %v", err)
		return nil, fmt.Errorf("could not clear cart: %w", err)
	}
	uc.unsettled = nil
	uc.log.Info("Use Case: Cart cleared")
	return domain.Cart{}, nil
}

func (uc *cartUseCase) Settle(ctx context.Context, ordered domain.Cart) (domain.Cart, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.unsettled = mergeLines(uc.unsettled, ordered)
	cart, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := uc.save(ctx, cart); err != nil {
		return cart, err
	}
	uc.log.Infof("Use Case: Settled %d ordered lines, %d lines left in cart", len(ordered), len(cart))
	return cart, nil
}

func (uc *cartUseCase) Total(ctx context.Context) decimal.Decimal {
	return Subtotal(uc.Lines(ctx))
}

func (uc *cartUseCase) ItemCount(ctx context.Context) int {
	return ItemCount(uc.Lines(ctx))
}
