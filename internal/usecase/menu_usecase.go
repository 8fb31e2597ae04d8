package usecase

import (
	"context"
	"sort"
	"strings"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

const DefaultCategory = "Popular"

type MenuView struct {
	Categories []string         `json:"categories"`
	Selected   string           `json:"selected"`
	Search     string           `json:"search,omitempty"`
	Items      []domain.Product `json:"items"`
}

type MenuUseCase interface {
	Browse(ctx context.Context, category, search string) (*MenuView, error)
	AddToCart(ctx context.Context, productID string) (domain.Cart, error)
}

type menuUseCase struct {
	menu domain.MenuService
	cart CartUseCase
	log  *logrus.Logger
}

func NewMenuUseCase(menu domain.MenuService, cart CartUseCase, logger *logrus.Logger) MenuUseCase {
	return &menuUseCase{
		menu: menu,
		cart: cart,
		log:  logger,
	}
}

// categoryNames puts the default category first, the rest alphabetically.
func categoryNames(menu map[string][]domain.Product) []string {
	names := make([]string, 0, len(menu))
	for name := range menu {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == DefaultCategory || names[j] == DefaultCategory {
			return names[i] == DefaultCategory
		}
		return names[i] < names[j]
	})
	return names
}

func matchesSearch(p domain.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

func (uc *menuUseCase) Browse(ctx context.Context, category, search string) (*MenuView, error) {
	menu, err := uc.menu.GetMenu(ctx, domain.MenuQuery{})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to fetch menu: %v", err)
		return nil, err
	}

	view := &MenuView{
		Categories: categoryNames(menu),
		Search:     strings.TrimSpace(search),
		Items:      []domain.Product{},
	}

	if _, ok := menu[category]; ok {
		view.Selected = category
	} else if _, ok := menu[DefaultCategory]; ok {
		view.Selected = DefaultCategory
	} else if len(view.Categories) > 0 {
		view.Selected = view.Categories[0]
	}

	term := strings.ToLower(view.Search)
	for _, p := range menu[view.Selected] {
		if term == "" || matchesSearch(p, term) {
			view.Items = append(view.Items, p)
		}
	}
	return view, nil
}

func (uc *menuUseCase) AddToCart(ctx context.Context, productID string) (domain.Cart, error) {
	if productID == "" {
		return nil, domain.NewValidationError("productId", "product id is required")
	}
	product, err := uc.menu.GetMenuItem(ctx, productID)
	if err != nil {
		uc.log.Warnf("Use Case: Could not load product %s: %v", productID, err)
		return nil, err
	}
	if product.Stock <= 0 {
		return nil, domain.NewValidationError("productId", "item is out of stock")
	}
	return uc.cart.Add(ctx, *product)
}
