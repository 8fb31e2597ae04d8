package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func IsValidStatus(status OrderStatus) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

func IsValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentCOD || m == PaymentOnline
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// DeliveryAddress is a resolved address value. Older orders may carry the
// address as a single string, which lands in Freeform.
type DeliveryAddress struct {
	Label    string `json:"label,omitempty"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	PinCode  string `json:"pinCode"`
	Phone    string `json:"phone"`
	Freeform string `json:"-"`
}

func (a *DeliveryAddress) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		*a = DeliveryAddress{}
		return json.Unmarshal(data, &a.Freeform)
	}
	type plain DeliveryAddress
	return json.Unmarshal(data, (*plain)(a))
}

func (a DeliveryAddress) String() string {
	if a.Freeform != "" {
		return a.Freeform
	}
	return fmt.Sprintf("%s, %s, %s - %s", a.Street, a.City, a.State, a.PinCode)
}

type OrderLineItem struct {
	MenuItem string          `json:"menuItem"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// OrderDraft is assembled at submission time only and never persisted on its own.
type OrderDraft struct {
	Items           []OrderLineItem `json:"items"`
	DeliveryAddress DeliveryAddress `json:"deliveryAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee"`
	Total           decimal.Decimal `json:"totalAmount"`
}

type OrderCustomer struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

// Order is owned by the backend and only read here.
type Order struct {
	ID              string           `json:"_id"`
	Status          OrderStatus      `json:"status"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod"`
	PaymentStatus   PaymentStatus    `json:"paymentStatus"`
	Items           []OrderLineItem  `json:"items"`
	DeliveryAddress *DeliveryAddress `json:"deliveryAddress,omitempty"`
	DeliveryFee     decimal.Decimal  `json:"deliveryFee"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	User            *OrderCustomer   `json:"user,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type StatusCount struct {
	Status OrderStatus `json:"_id"`
	Count  int         `json:"count"`
}

type AdminStats struct {
	TotalProducts  int             `json:"totalProducts"`
	TotalOrders    int             `json:"totalOrders"`
	TotalUsers     int             `json:"totalUsers"`
	Revenue        decimal.Decimal `json:"revenue"`
	OrdersByStatus []StatusCount   `json:"ordersByStatus"`
}
