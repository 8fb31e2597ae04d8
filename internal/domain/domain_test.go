package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestDeliveryAddressUnmarshal(t *testing.T) {
	var structured DeliveryAddress
	require.NoError(t, json.Unmarshal([]byte(`{"street":"1 Main","city":"Pune","state":"MH","pinCode":"411001","phone":"111"}`), &structured))
	assert.Equal(t, "Pune", structured.City)
	assert.Empty(t, structured.Freeform)
	assert.Equal(t, "1 Main, Pune, MH - 411001", structured.String())

	var freeform DeliveryAddress
	require.NoError(t, json.Unmarshal([]byte(`"12 Old Road, Nashik"`), &freeform))
	assert.Equal(t, "12 Old Road, Nashik", freeform.Freeform)
	assert.Equal(t, "12 Old Road, Nashik", freeform.String())
}

func TestOrderDraftMarshalsNumericPrices(t *testing.T) {
	draft := OrderDraft{
		Items:         []OrderLineItem{{MenuItem: "p1", Name: "Mango", Price: decimal.RequireFromString("120.5"), Quantity: 2}},
		PaymentMethod: PaymentCOD,
		Total:         decimal.NewFromInt(281),
	}
	raw, err := json.Marshal(draft)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":120.5`)
	assert.Contains(t, string(raw), `"totalAmount":281`)
	assert.NotContains(t, string(raw), "Freeform")
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("lost"))
	assert.False(t, IsValidStatus(""))
}

func TestIsValidPaymentMethod(t *testing.T) {
	assert.True(t, IsValidPaymentMethod(PaymentCOD))
	assert.True(t, IsValidPaymentMethod(PaymentOnline))
	assert.False(t, IsValidPaymentMethod("card"))
}

func TestIsAdmin(t *testing.T) {
	var none *ProfileSnapshot
	assert.False(t, none.IsAdmin())
	assert.False(t, (&ProfileSnapshot{Role: "user"}).IsAdmin())
	assert.True(t, (&ProfileSnapshot{Role: RoleAdmin}).IsAdmin())
}

func TestCartHelpers(t *testing.T) {
	cart := Cart{
		{ProductID: "a", UnitPrice: decimal.NewFromInt(10), Quantity: 3},
		{ProductID: "b", UnitPrice: decimal.NewFromInt(5), Quantity: 1},
	}
	assert.Equal(t, 1, cart.IndexOf("b"))
	assert.Equal(t, -1, cart.IndexOf("z"))
	assert.True(t, cart[0].LineTotal().Equal(decimal.NewFromInt(30)))

	clone := cart.Clone()
	clone[0].Quantity = 9
	assert.Equal(t, 3, cart[0].Quantity)

	var empty Cart
	assert.True(t, empty.IsEmpty())
	assert.NotNil(t, empty.Clone())
}

func TestErrorHelpers(t *testing.T) {
	verr := NewValidationError("city", "Please fill in all address fields")
	assert.Equal(t, "Please fill in all address fields", verr.Error())
	assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", verr)))
	assert.False(t, IsValidationError(errors.New("plain")))

	remote := NewRemoteError(codes.NotFound, "Order not found")
	assert.True(t, IsRemoteError(remote))
	assert.Equal(t, codes.NotFound, RemoteCode(remote))
	assert.Equal(t, "rpc error: code = NotFound desc = Order not found", remote.Error())
	assert.False(t, IsRemoteError(nil))
	assert.False(t, IsRemoteError(errors.New("plain")))
	assert.Equal(t, codes.Unknown, RemoteCode(errors.New("plain")))
}

func TestSessionActive(t *testing.T) {
	assert.False(t, Session{}.Active())
	assert.True(t, Session{Token: "t"}.Active())
}
