package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// StateStore is the durable client-side key/value record. Get reports
// found=false for keys never written or deleted.
type StateStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all values or none.
	SetMany(ctx context.Context, values map[string][]byte) error
	// Delete removes all keys or none. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// TokenSource supplies the bearer token for collaborator calls.
type TokenSource interface {
	Token(ctx context.Context) string
}

type AuthService interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, reg Registration) (*AuthResult, error)
}

type ProfileService interface {
	GetProfile(ctx context.Context) (*ProfileSnapshot, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*ProfileSnapshot, error)
	AddAddress(ctx context.Context, input AddressInput) ([]SavedAddress, error)
	EditAddress(ctx context.Context, addressID string, input AddressInput) ([]SavedAddress, error)
	DeleteAddress(ctx context.Context, addressID string) ([]SavedAddress, error)
}

type MenuQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

type MenuService interface {
	GetMenu(ctx context.Context, query MenuQuery) (map[string][]Product, error)
	GetMenuItem(ctx context.Context, id string) (*Product, error)
}

// OrderCreator places an order. It is called at most once per user-initiated submit.
type OrderCreator interface {
	CreateOrder(ctx context.Context, draft *OrderDraft, idempotencyKey string) (*Order, error)
}

type OrderService interface {
	OrderCreator
	ListMyOrders(ctx context.Context) ([]Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
}

type ContactService interface {
	SubmitContact(ctx context.Context, msg ContactMessage) error
}

type ProductQuery struct {
	Search   string
	Category string
	Page     int
}

type AdminOrderQuery struct {
	Status OrderStatus
	Page   int
}

type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	IsVeg       bool            `json:"isVeg"`
	Stock       int             `json:"stock"`
	Unit        string          `json:"unit"`
	Image       string          `json:"image,omitempty"`
}

type AdminService interface {
	GetStats(ctx context.Context) (*AdminStats, error)
	ListProducts(ctx context.Context, query ProductQuery) ([]Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id string, input ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListOrders(ctx context.Context, query AdminOrderQuery) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) (*Order, error)
}
