package delivery

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/clients"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

// fakeAPI stands in for the REST backend.
type fakeAPI struct {
	mu          sync.Mutex
	role        string
	orderCalls  int
	rejectOrder string
	lastDraft   domain.OrderDraft
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, code int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(v)
	}
	user := func() map[string]interface{} {
		return map[string]interface{}{
			"_id": "u1", "fullName": "Asha", "email": "asha@example.com", "role": f.role,
			"addresses": []map[string]interface{}{
				{"_id": "a1", "label": "home", "street": "1 Main", "city": "Pune", "state": "MH", "pinCode": "411001", "phone": "111", "isDefault": true},
			},
		}
	}
	products := map[string]map[string]interface{}{
		"p1": {"_id": "p1", "name": "Mango", "description": "Sweet", "price": 120, "category": "Popular", "stock": 5},
		"p2": {"_id": "p2", "name": "Paneer", "description": "Fresh", "price": 90, "category": "Popular", "stock": 0},
	}

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret1" {
			write(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
			return
		}
		write(w, http.StatusOK, map[string]interface{}{"token": "jwt-1", "user": user()})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]interface{}{"user": user()})
	})
	mux.HandleFunc("GET /api/menu", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{"Popular": []interface{}{products["p1"], products["p2"]}},
		})
	})
	mux.HandleFunc("GET /api/menu/{id}", func(w http.ResponseWriter, r *http.Request) {
		p, ok := products[r.PathValue("id")]
		if !ok {
			write(w, http.StatusNotFound, map[string]string{"message": "Menu item not found"})
			return
		}
		write(w, http.StatusOK, map[string]interface{}{"data": p})
	})
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.orderCalls++
		assert.NotEmpty(t, r.Header.Get(clients.IdempotencyKeyHeader))
		assert.Equal(t, "Bearer jwt-1", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&f.lastDraft)
		if f.rejectOrder != "" {
			write(w, http.StatusBadRequest, map[string]string{"message": f.rejectOrder})
			return
		}
		write(w, http.StatusCreated, map[string]interface{}{"order": map[string]interface{}{"_id": "ord-77", "status": "pending"}})
	})
	mux.HandleFunc("GET /api/orders", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]interface{}{"orders": []map[string]interface{}{
			{"_id": "o1", "status": "pending"}, {"_id": "o2", "status": "delivered"},
		}})
	})
	mux.HandleFunc("GET /api/admin/products", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, map[string]interface{}{"products": []interface{}{products["p1"], products["p2"]}})
	})
	mux.HandleFunc("POST /api/admin/products", func(w http.ResponseWriter, r *http.Request) {
		var in domain.ProductInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		write(w, http.StatusCreated, map[string]interface{}{"product": map[string]interface{}{"_id": "new-1", "name": in.Name}})
	})
	mux.HandleFunc("PUT /api/admin/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := products[r.PathValue("id")]; !ok {
			write(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
			return
		}
		write(w, http.StatusOK, map[string]interface{}{"product": products[r.PathValue("id")]})
	})
	mux.HandleFunc("PUT /api/admin/orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		write(w, http.StatusOK, map[string]interface{}{"order": map[string]interface{}{"_id": r.PathValue("id"), "status": body["status"]}})
	})
	return mux
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderCalls
}

type testApp struct {
	router *gin.Engine
	api    *fakeAPI
	cart   usecase.CartUseCase
}

func newTestApp(t *testing.T, role string) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &fakeAPI{role: role}
	backend := httptest.NewServer(api.handler(t))
	t.Cleanup(backend.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := repository.NewMemoryStateStore()
	session := usecase.NewSessionUseCase(store, logger)
	client := clients.NewBackendClient(backend.URL, 2*time.Second, session, logger)
	pricing := usecase.DefaultPricing()
	cart := usecase.NewCartUseCase(store, logger)
	menu := usecase.NewMenuUseCase(client, cart, logger)

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	RegisterHealth(router)
	NewMenuHandler(menu, logger).RegisterRoutes(router)
	NewCartHandler(cart, menu, pricing, logger).RegisterRoutes(router)
	NewCheckoutHandler(usecase.NewCheckoutUseCase(cart, session, client, client, pricing, logger), logger).RegisterRoutes(router)
	NewAccountHandler(usecase.NewAccountUseCase(session, client, client, client, logger), session, logger).RegisterRoutes(router)
	NewOrderHandler(usecase.NewOrderUseCase(session, client, logger), session, logger).RegisterRoutes(router)
	NewAdminHandler(usecase.NewAdminUseCase(session, client, logger), session, logger).RegisterRoutes(router)

	return &testApp{router: router, api: api, cart: cart}
}

type envelope struct {
	Status     string          `json:"Status"`
	Message    string          `json:"Message"`
	Data       json.RawMessage `json:"Data"`
	RedirectTo string          `json:"RedirectTo"`
}

func (a *testApp) call(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != xlsxContentType {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (a *testApp) login(t *testing.T) {
	w, _ := a.call(t, http.MethodPost, "/auth/login", map[string]string{"email": "asha@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
}

var manualBody = map[string]interface{}{
	"addressMode": "manual",
	"manual":      map[string]string{"street": "5 Lane", "city": "Mumbai", "pinCode": "400001", "phone": "333"},
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, "user")
	w, _ := app.call(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMenuBrowse(t *testing.T) {
	app := newTestApp(t, "user")
	w, env := app.call(t, http.MethodGet, "/menu?search=mAnGo", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view usecase.MenuView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "Popular", view.Selected)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "p1", view.Items[0].ID)
}

func TestCartEndpoints(t *testing.T) {
	app := newTestApp(t, "user")

	w, env := app.call(t, http.MethodPost, "/cart/items", map[string]string{"productId": "p1"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	_, _ = app.call(t, http.MethodPost, "/cart/items", map[string]string{"productId": "p1"})

	w, env = app.call(t, http.MethodPatch, "/cart/items/p1", map[string]int{"quantity": 5})
	require.Equal(t, http.StatusOK, w.Code)
	var view CartView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, 5, view.ItemCount)
	assert.True(t, view.Pricing.Subtotal.Equal(decimal.NewFromInt(600)))
	assert.True(t, view.Pricing.DeliveryFee.IsZero())

	w, _ = app.call(t, http.MethodPatch, "/cart/items/p1", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = app.call(t, http.MethodDelete, "/cart/items/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Empty(t, view.Lines)
	assert.True(t, view.Pricing.DeliveryFee.Equal(decimal.NewFromInt(40)))
}

func TestCartOutOfStockAndUnknownProduct(t *testing.T) {
	app := newTestApp(t, "user")

	w, env := app.call(t, http.MethodPost, "/cart/items", map[string]string{"productId": "p2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "item is out of stock", env.Message)

	w, env = app.call(t, http.MethodPost, "/cart/items", map[string]string{"productId": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Menu item not found", env.Message)

	w, _ = app.call(t, http.MethodPost, "/cart/items", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutRedirectsWithoutSession(t *testing.T) {
	app := newTestApp(t, "user")
	_, _ = app.call(t, http.MethodPost, "/cart/items", map[string]string{"productId": "p1"})

	w, env := app.call(t, http.MethodPost, "/checkout", manualBody)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.LoginPath, env.RedirectTo)
	assert.Equal(t, 0, app.api.calls())
}

func TestCheckoutPlacesOrder(t *testing.T) {
	app := newTestApp(t, "user")
	app.login(t)
	_, _ = app.call(t, http.MethodPost, "/cart/items", map[string]string{"productId": "p1"})

	w, env := app.call(t, http.MethodGet, "/checkout?refresh=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view usecase.CheckoutView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Len(t, view.Addresses, 1)
	assert.Equal(t, domain.AddressModeSaved, view.Selection.Mode)

	w, env = app.call(t, http.MethodPost, "/checkout", map[string]string{"paymentMethod": "online"})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var result usecase.CheckoutResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "ord-77", result.OrderID)
	assert.Equal(t, usecase.CheckoutSucceeded, result.State)

	assert.Equal(t, "1 Main", app.api.lastDraft.DeliveryAddress.Street)
	assert.Equal(t, domain.PaymentOnline, app.api.lastDraft.PaymentMethod)
	assert.True(t, app.api.lastDraft.Total.Equal(decimal.NewFromInt(160)))
	assert.Empty(t, app.cart.Lines(httptest.NewRequest(http.MethodGet, "/", nil).Context()))

	w, env = app.call(t, http.MethodPost, "/checkout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.CartEmpty)
	assert.Equal(t, 1, app.api.calls())
}

func TestCheckoutBackendRejection(t *testing.T) {
	app := newTestApp(t, "user")
	app.login(t)
	app.api.rejectOrder = "Item Mango is out of stock"
	_, _ = app.call(t, http.MethodPost, "/cart/items", map[string]string{"productId": "p1"})

	w, env := app.call(t, http.MethodPost, "/checkout", manualBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Item Mango is out of stock", env.Message)

	w, env = app.call(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view CartView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Len(t, view.Lines, 1)
}

func TestCheckoutValidation(t *testing.T) {
	app := newTestApp(t, "user")
	app.login(t)
	_, _ = app.call(t, http.MethodPost, "/cart/items", map[string]string{"productId": "p1"})

	body := map[string]interface{}{
		"addressMode": "manual",
		"manual":      map[string]string{"street": "5 Lane", "pinCode": "400001", "phone": "333"},
	}
	w, env := app.call(t, http.MethodPost, "/checkout", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please fill in all address fields", env.Message)
	assert.Equal(t, 0, app.api.calls())

	w, _ = app.call(t, http.MethodPut, "/checkout/selection", map[string]interface{}{"addressMode": "saved", "savedIndex": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionEndpoints(t *testing.T) {
	app := newTestApp(t, "user")

	w, env := app.call(t, http.MethodPost, "/auth/login", map[string]string{"email": "asha@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", env.Message)

	w, env = app.call(t, http.MethodPost, "/auth/login", map[string]string{"email": "", "password": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter email and password", env.Message)

	app.login(t)
	_, env = app.call(t, http.MethodGet, "/session", nil)
	var view SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.True(t, view.LoggedIn)
	assert.Equal(t, "Asha", view.User.FullName)

	_, _ = app.call(t, http.MethodPost, "/auth/logout", nil)
	_, env = app.call(t, http.MethodGet, "/session", nil)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.False(t, view.LoggedIn)
}

func TestOrdersRequireSession(t *testing.T) {
	app := newTestApp(t, "user")

	w, env := app.call(t, http.MethodGet, "/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, domain.LoginPath, env.RedirectTo)

	app.login(t)
	w, env = app.call(t, http.MethodGet, "/orders?status=delivered", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []domain.Order
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "o2", orders[0].ID)

	w, _ = app.call(t, http.MethodGet, "/orders?status=misplaced", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRequiresRole(t *testing.T) {
	app := newTestApp(t, "user")
	app.login(t)

	w, _ := app.call(t, http.MethodGet, "/admin/products", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminEndpoints(t *testing.T) {
	app := newTestApp(t, domain.RoleAdmin)
	app.login(t)

	w, env := app.call(t, http.MethodPut, "/admin/orders/o1/status", map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var order domain.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, domain.StatusShipped, order.Status)

	w, _ = app.call(t, http.MethodPut, "/admin/orders/o1/status", map[string]string{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = app.call(t, http.MethodGet, "/admin/products/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	book, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, book.Sheets, 1)
	rows := book.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0].Cells[0].String())
	assert.Equal(t, "Mango", rows[1].Cells[1].String())
}

func TestAdminImportProducts(t *testing.T) {
	app := newTestApp(t, domain.RoleAdmin)
	app.login(t)

	var book bytes.Buffer
	require.NoError(t, writeProductsWorkbook(&book, []domain.Product{
		{ID: "p1", Name: "Mango", Category: "Popular", Price: decimal.NewFromInt(120), Stock: 5},
		{ID: "gone", Name: "Plum", Category: "Fruits", Price: decimal.NewFromInt(30), Stock: 1},
		{Name: "Kiwi", Category: "Fruits", Price: decimal.NewFromInt(40), Stock: 2},
		{Name: "Free", Category: "Fruits", Price: decimal.Zero, Stock: 2},
	}))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "products.xlsx")
	require.NoError(t, err)
	_, err = part.Write(book.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/products/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var summary struct {
		Created int `json:"created_count"`
		Updated int `json:"updated_count"`
		Skipped int `json:"skipped_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 2, summary.Skipped)

	w, _ = app.call(t, http.MethodPost, "/admin/products/import", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
