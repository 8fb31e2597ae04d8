package usecase

import (
	"context"
	"sync"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "idle"
	CheckoutSubmitting CheckoutState = "submitting"
	CheckoutSucceeded  CheckoutState = "succeeded"
	CheckoutFailed     CheckoutState = "failed"
)

// CheckoutRequest carries the user's choices for one submit. A nil Selection
// or empty PaymentMethod keeps the previously chosen value.
type CheckoutRequest struct {
	Selection     *domain.AddressSelection
	PaymentMethod domain.PaymentMethod
}

type CheckoutResult struct {
	State      CheckoutState `json:"state"`
	OrderID    string        `json:"orderId,omitempty"`
	Order      *domain.Order `json:"order,omitempty"`
	Error      string        `json:"error,omitempty"`
	RedirectTo string        `json:"redirectTo,omitempty"`
	CartEmpty  bool          `json:"cartEmpty,omitempty"`
}

type CheckoutView struct {
	LoggedIn      bool                    `json:"loggedIn"`
	Lines         domain.Cart             `json:"lines"`
	Pricing       PriceSummary            `json:"pricing"`
	Addresses     []domain.SavedAddress   `json:"addresses"`
	Selection     domain.AddressSelection `json:"selection"`
	PaymentMethod domain.PaymentMethod    `json:"paymentMethod"`
	State         CheckoutState           `json:"state"`
	Error         string                  `json:"error,omitempty"`
	OrderID       string                  `json:"orderId,omitempty"`
	RedirectTo    string                  `json:"redirectTo,omitempty"`
}

type CheckoutUseCase interface {
	// Load fetches saved addresses and starts a fresh checkout visit.
	Load(ctx context.Context) (*CheckoutView, error)
	View(ctx context.Context) (*CheckoutView, error)
	UpdateSelection(ctx context.Context, req CheckoutRequest) (*CheckoutView, error)
	Submit(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
	State() CheckoutState
}

type checkoutUseCase struct {
	cart     CartUseCase
	session  SessionUseCase
	profiles domain.ProfileService
	orders   domain.OrderCreator
	pricing  Pricing
	log      *logrus.Logger

	mu          sync.Mutex
	state       CheckoutState
	lastError   string
	lastOrderID string
	payment     domain.PaymentMethod
	resolver    *AddressResolver
	owner       string
}

func NewCheckoutUseCase(
	cart CartUseCase,
	session SessionUseCase,
	profiles domain.ProfileService,
	orders domain.OrderCreator,
	pricing Pricing,
	logger *logrus.Logger,
) CheckoutUseCase {
	return &checkoutUseCase{
		cart:     cart,
		session:  session,
		profiles: profiles,
		orders:   orders,
		pricing:  pricing,
		log:      logger,
		state:    CheckoutIdle,
		payment:  domain.PaymentCOD,
	}
}

// remoteMessage returns the collaborator's message unchanged.
func remoteMessage(err error) string {
	if s, ok := status.FromError(err); ok {
		return s.Message()
	}
	return err.Error()
}

func (uc *checkoutUseCase) fetchAddresses(ctx context.Context) []domain.SavedAddress {
	if !uc.session.IsActive(ctx) {
		return nil
	}
	profile, err := uc.profiles.GetProfile(ctx)
	if err != nil {
		uc.log.Warnf("Use Case: Could not load saved addresses, falling back to manual entry: %v", err)
		if domain.RemoteCode(err) == codes.Unauthenticated {
			if rerr := uc.session.Revoke(ctx); rerr != nil {
				uc.log.Errorf("Use Case: Failed to revoke rejected session: %v", rerr)
			}
		}
		return nil
	}
	if err := uc.session.RefreshProfile(ctx, *profile); err != nil {
		uc.log.Warnf("Use Case: Could not refresh cached profile: %v", err)
	}
	return profile.Addresses
}

// cachedResolver builds a resolver from the cached profile when Load was never called.
func (uc *checkoutUseCase) cachedResolver(ctx context.Context) *AddressResolver {
	if user := uc.session.CurrentUser(ctx); user != nil {
		return NewAddressResolver(user.Addresses)
	}
	return NewAddressResolver(nil)
}

// sessionKey names whose checkout this is. A guest has an empty key.
func sessionKey(s domain.Session) string {
	if !s.Active() {
		return ""
	}
	if s.User != nil {
		return s.Token + "/" + s.User.ID
	}
	return s.Token
}

// followSessionLocked starts a fresh checkout from the cached profile when the
// session changed since the resolver was built. An in-flight submit keeps its state.
func (uc *checkoutUseCase) followSessionLocked(ctx context.Context) {
	key := sessionKey(uc.session.Current(ctx))
	if uc.resolver != nil && key == uc.owner {
		return
	}
	if uc.state == CheckoutSubmitting {
		return
	}
	if uc.resolver != nil {
		uc.log.Info("Use Case: Session changed, starting a fresh checkout")
	}
	uc.resolver = uc.cachedResolver(ctx)
	uc.owner = key
	uc.state = CheckoutIdle
	uc.lastError = ""
	uc.lastOrderID = ""
	uc.payment = domain.PaymentCOD
}

func (uc *checkoutUseCase) Load(ctx context.Context) (*CheckoutView, error) {
	addresses := uc.fetchAddresses(ctx)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.state == CheckoutSubmitting {
		return uc.viewLocked(ctx), nil
	}
	if key := sessionKey(uc.session.Current(ctx)); key != uc.owner {
		uc.owner = key
		uc.payment = domain.PaymentCOD
	}
	uc.resolver = NewAddressResolver(addresses)
	uc.state = CheckoutIdle
	uc.lastError = ""
	uc.lastOrderID = ""
	uc.log.Infof("Use Case: Checkout loaded with %d saved addresses", len(addresses))
	return uc.viewLocked(ctx), nil
}

func (uc *checkoutUseCase) View(ctx context.Context) (*CheckoutView, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.followSessionLocked(ctx)
	return uc.viewLocked(ctx), nil
}

func (uc *checkoutUseCase) viewLocked(ctx context.Context) *CheckoutView {
	lines := uc.cart.Lines(ctx)
	view := &CheckoutView{
		LoggedIn:      uc.session.IsActive(ctx),
		Lines:         lines,
		Pricing:       uc.pricing.Summarize(lines),
		Addresses:     uc.resolver.Addresses(),
		Selection:     uc.resolver.Selection(),
		PaymentMethod: uc.payment,
		State:         uc.state,
		Error:         uc.lastError,
		OrderID:       uc.lastOrderID,
	}
	if !view.LoggedIn {
		view.RedirectTo = domain.LoginPath
	}
	return view
}

// applyLocked records the user's choices. They survive failed submits.
func (uc *checkoutUseCase) applyLocked(req CheckoutRequest) error {
	if req.PaymentMethod != "" {
		if !domain.IsValidPaymentMethod(req.PaymentMethod) {
			return domain.NewValidationError("paymentMethod", "Please select a valid payment method")
		}
		uc.payment = req.PaymentMethod
	}
	if req.Selection != nil {
		if err := uc.resolver.Apply(*req.Selection); err != nil {
			return err
		}
	}
	return nil
}

func (uc *checkoutUseCase) UpdateSelection(ctx context.Context, req CheckoutRequest) (*CheckoutView, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.followSessionLocked(ctx)
	if err := uc.applyLocked(req); err != nil {
		return nil, err
	}
	return uc.viewLocked(ctx), nil
}

func (uc *checkoutUseCase) State() CheckoutState {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.state
}

func (uc *checkoutUseCase) failLocked(message string) *CheckoutResult {
	uc.state = CheckoutFailed
	uc.lastError = message
	return &CheckoutResult{State: uc.state, Error: message}
}

func buildDraft(lines domain.Cart, address domain.DeliveryAddress, payment domain.PaymentMethod, pricing Pricing) *domain.OrderDraft {
	items := make([]domain.OrderLineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderLineItem{
			MenuItem: line.ProductID,
			Name:     line.Name,
			Price:    line.UnitPrice,
			Quantity: line.Quantity,
		})
	}
	subtotal := Subtotal(lines)
	fee := pricing.DeliveryFee(subtotal)
	return &domain.OrderDraft{
		Items:           items,
		DeliveryAddress: address,
		PaymentMethod:   payment,
		Subtotal:        subtotal,
		DeliveryFee:     fee,
		Total:           subtotal.Add(fee),
	}
}

// Submit places at most one order per call. The collaborator is invoked with
// the lock released; a concurrent Submit during that call is rejected.
func (uc *checkoutUseCase) Submit(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	uc.mu.Lock()

	if uc.state == CheckoutSubmitting {
		uc.mu.Unlock()
		uc.log.Warn("Use Case: Rejected checkout submit while another is in flight")
		return &CheckoutResult{State: CheckoutSubmitting}, domain.ErrSubmissionInProgress
	}
	uc.followSessionLocked(ctx)

	if !uc.session.IsActive(ctx) {
		result := &CheckoutResult{State: uc.state, RedirectTo: domain.LoginPath}
		uc.mu.Unlock()
		uc.log.Info("Use Case: Checkout requires login, redirecting")
		return result, nil
	}

	lines := uc.cart.Lines(ctx)
	if lines.IsEmpty() {
		result := &CheckoutResult{State: uc.state, OrderID: uc.lastOrderID, CartEmpty: true}
		uc.mu.Unlock()
		uc.log.Info("Use Case: Checkout submit with an empty cart ignored")
		return result, nil
	}

	if err := uc.applyLocked(req); err != nil {
		result := uc.failLocked(err.Error())
		uc.mu.Unlock()
		uc.log.Warnf("Use Case: Checkout validation failed: %v", err)
		return result, err
	}

	address, err := uc.resolver.ResolveCurrent()
	if err != nil {
		result := uc.failLocked(err.Error())
		uc.mu.Unlock()
		uc.log.Warnf("Use Case: Checkout address validation failed: %v", err)
		return result, err
	}

	draft := buildDraft(lines, address, uc.payment, uc.pricing)
	uc.state = CheckoutSubmitting
	uc.lastError = ""
	uc.mu.Unlock()

	key := uuid.NewString()
	uc.log.Infof("Use Case: Submitting order with %d lines, total %s (idempotency key %s)", len(draft.Items), draft.Total.String(), key)
	order, err := uc.orders.CreateOrder(ctx, draft, key)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err != nil {
		uc.log.Errorf("Use Case: Order creation failed: %v", err)
		return uc.failLocked(remoteMessage(err)), err
	}

	if _, serr := uc.cart.Settle(ctx, lines); serr != nil {
		uc.log.Errorf("Use Case: Order %s placed but the stored cart could not be updated, ordered lines stay hidden: %v", order.ID, serr)
	}
	uc.state = CheckoutSucceeded
	uc.lastError = ""
	uc.lastOrderID = order.ID
	uc.log.Infof("Use Case: Order %s placed", order.ID)

	return &CheckoutResult{State: uc.state, OrderID: order.ID, Order: order}, nil
}
