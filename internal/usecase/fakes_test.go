package usecase

import (
	"context"
	"errors"
	"io"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func product(id string, price int64) domain.Product {
	return domain.Product{ID: id, Name: "Product " + id, Price: decimal.NewFromInt(price), Stock: 10}
}

var errStoreDown = errors.New("store unavailable")

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errStoreDown
}

func (brokenStore) Set(context.Context, string, []byte) error {
	return errStoreDown
}

func (brokenStore) SetMany(context.Context, map[string][]byte) error {
	return errStoreDown
}

func (brokenStore) Delete(context.Context, ...string) error {
	return errStoreDown
}

// readOnlyStore reads from an in-memory store and fails writes while failWrites is set.
type readOnlyStore struct {
	domain.StateStore
	mu         sync.Mutex
	failWrites bool
}

func newReadOnlyStore() *readOnlyStore {
	return &readOnlyStore{StateStore: repository.NewMemoryStateStore()}
}

func (s *readOnlyStore) setFailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

func (s *readOnlyStore) writable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errStoreDown
	}
	return nil
}

func (s *readOnlyStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.writable(); err != nil {
		return err
	}
	return s.StateStore.Set(ctx, key, value)
}

func (s *readOnlyStore) SetMany(ctx context.Context, values map[string][]byte) error {
	if err := s.writable(); err != nil {
		return err
	}
	return s.StateStore.SetMany(ctx, values)
}

func (s *readOnlyStore) Delete(ctx context.Context, keys ...string) error {
	if err := s.writable(); err != nil {
		return err
	}
	return s.StateStore.Delete(ctx, keys...)
}

// fakeBackend records calls to every collaborator.
type fakeBackend struct {
	mu sync.Mutex

	authResult *domain.AuthResult
	authErr    error
	authCalls  int

	profile    *domain.ProfileSnapshot
	profileErr error
	addresses  []domain.SavedAddress

	menu     map[string][]domain.Product
	menuErr  error
	products map[string]domain.Product

	createCalls int
	lastDraft   *domain.OrderDraft
	lastKey     string
	createErr   error
	createOrder *domain.Order
	entered     chan struct{}
	release     chan struct{}

	orders   []domain.Order
	contacts []domain.ContactMessage

	stats         *domain.AdminStats
	adminQuery    domain.AdminOrderQuery
	statusUpdates map[string]domain.OrderStatus
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		createOrder:   &domain.Order{ID: "ord-1", Status: domain.StatusPending},
		products:      map[string]domain.Product{},
		statusUpdates: map[string]domain.OrderStatus{},
	}
}

func (f *fakeBackend) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	return f.authResult, f.authErr
}

func (f *fakeBackend) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	return f.authResult, f.authErr
}

func (f *fakeBackend) GetProfile(ctx context.Context) (*domain.ProfileSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeBackend) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.ProfileSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	f.profile.FullName = update.FullName
	f.profile.Phone = update.Phone
	p := *f.profile
	return &p, nil
}

func (f *fakeBackend) AddAddress(ctx context.Context, input domain.AddressInput) ([]domain.SavedAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	f.addresses = append(f.addresses, domain.SavedAddress{
		ID: "ad-new", Label: input.Label, Street: input.Street, City: input.City,
		State: input.State, PinCode: input.PinCode, Phone: input.Phone, IsDefault: input.IsDefault,
	})
	return append([]domain.SavedAddress(nil), f.addresses...), nil
}

func (f *fakeBackend) EditAddress(ctx context.Context, id string, input domain.AddressInput) ([]domain.SavedAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.addresses {
		if f.addresses[i].ID == id {
			f.addresses[i].Street = input.Street
			f.addresses[i].City = input.City
		}
	}
	return append([]domain.SavedAddress(nil), f.addresses...), nil
}

func (f *fakeBackend) DeleteAddress(ctx context.Context, id string) ([]domain.SavedAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.addresses[:0]
	for _, a := range f.addresses {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	f.addresses = kept
	return append([]domain.SavedAddress(nil), f.addresses...), nil
}

func (f *fakeBackend) GetMenu(ctx context.Context, query domain.MenuQuery) (map[string][]domain.Product, error) {
	return f.menu, f.menuErr
}

func (f *fakeBackend) GetMenuItem(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, domain.NewRemoteError(codes.NotFound, "Menu item not found")
	}
	return &p, nil
}

func (f *fakeBackend) CreateOrder(ctx context.Context, draft *domain.OrderDraft, key string) (*domain.Order, error) {
	f.mu.Lock()
	f.createCalls++
	f.lastDraft = draft
	f.lastKey = key
	entered, release := f.entered, f.release
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	o := *f.createOrder
	return &o, nil
}

func (f *fakeBackend) CreateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

func (f *fakeBackend) ListMyOrders(ctx context.Context) ([]domain.Order, error) {
	return f.orders, nil
}

func (f *fakeBackend) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			o := o
			return &o, nil
		}
	}
	return nil, domain.NewRemoteError(codes.NotFound, "Order not found")
}

func (f *fakeBackend) SubmitContact(ctx context.Context, msg domain.ContactMessage) error {
	f.contacts = append(f.contacts, msg)
	return nil
}

func (f *fakeBackend) GetStats(ctx context.Context) (*domain.AdminStats, error) {
	return f.stats, nil
}

func (f *fakeBackend) ListProducts(ctx context.Context, query domain.ProductQuery) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeBackend) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	p := domain.Product{ID: "p-new", Name: input.Name, Price: input.Price, Category: input.Category, Stock: input.Stock}
	f.products[p.ID] = p
	return &p, nil
}

func (f *fakeBackend) UpdateProduct(ctx context.Context, id string, input domain.ProductInput) (*domain.Product, error) {
	p := domain.Product{ID: id, Name: input.Name, Price: input.Price, Category: input.Category, Stock: input.Stock}
	f.products[id] = p
	return &p, nil
}

func (f *fakeBackend) DeleteProduct(ctx context.Context, id string) error {
	delete(f.products, id)
	return nil
}

func (f *fakeBackend) ListOrders(ctx context.Context, query domain.AdminOrderQuery) ([]domain.Order, error) {
	f.adminQuery = query
	return f.orders, nil
}

func (f *fakeBackend) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	f.statusUpdates[id] = status
	return &domain.Order{ID: id, Status: status}, nil
}

// fixture wires the use cases over one in-memory store and one fake backend.
type fixture struct {
	store    domain.StateStore
	backend  *fakeBackend
	session  SessionUseCase
	cart     CartUseCase
	checkout CheckoutUseCase
}

func newFixture() *fixture {
	return newFixtureWithStore(repository.NewMemoryStateStore())
}

func newFixtureWithStore(store domain.StateStore) *fixture {
	logger := testLogger()
	backend := newFakeBackend()
	session := NewSessionUseCase(store, logger)
	cart := NewCartUseCase(store, logger)
	return &fixture{
		store:    store,
		backend:  backend,
		session:  session,
		cart:     cart,
		checkout: NewCheckoutUseCase(cart, session, backend, backend, DefaultPricing(), logger),
	}
}

func (fx *fixture) login(addresses ...domain.SavedAddress) {
	fx.loginAs("u1", "tok-1", addresses...)
}

func (fx *fixture) loginAs(userID, token string, addresses ...domain.SavedAddress) {
	profile := domain.ProfileSnapshot{ID: userID, FullName: "Shopper " + userID, Email: userID + "@example.com", Addresses: addresses}
	fx.backend.profile = &profile
	fx.backend.addresses = addresses
	if err := fx.session.Establish(context.Background(), token, profile); err != nil {
		panic(err)
	}
}
