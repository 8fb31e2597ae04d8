package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// BackendClient talks to the storefront REST backend. It implements every
// collaborator interface in domain. Failures are returned as status errors
// carrying the backend's message unchanged.
type BackendClient struct {
	baseURL string
	client  *http.Client
	tokens  domain.TokenSource
	log     *logrus.Logger
}

var (
	_ domain.AuthService    = (*BackendClient)(nil)
	_ domain.ProfileService = (*BackendClient)(nil)
	_ domain.MenuService    = (*BackendClient)(nil)
	_ domain.OrderService   = (*BackendClient)(nil)
	_ domain.ContactService = (*BackendClient)(nil)
	_ domain.AdminService   = (*BackendClient)(nil)
)

func NewBackendClient(baseURL string, timeout time.Duration, tokens domain.TokenSource, logger *logrus.Logger) *BackendClient {
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
		log:    logger,
	}
}

type messageBody struct {
	Message string `json:"message"`
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// do sends one request and decodes a 2xx body into out. out may be nil.
func (c *BackendClient) do(ctx context.Context, method, path string, body interface{}, out interface{}, headers map[string]string) error {
	endpoint := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.log.Errorf("BackendClient: Failed to marshal %s %s body: %v", method, path, err)
			return domain.NewRemoteError(codes.Internal, fmt.Sprintf("failed to prepare request: %v", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		c.log.Errorf("BackendClient: Failed to create %s %s request: %v", method, path, err)
		return domain.NewRemoteError(codes.Internal, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.log.Debugf("BackendClient: %s %s", method, endpoint)
	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.log.Errorf("BackendClient: %s %s timed out: %v", method, path, err)
			return domain.NewRemoteError(codes.DeadlineExceeded, msgTimeout)
		}
		c.log.Errorf("BackendClient: %s %s failed: %v", method, path, err)
		return domain.NewRemoteError(codes.Unavailable, msgUnreachable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Errorf("BackendClient: Failed to read %s %s response: %v", method, path, err)
		return domain.NewRemoteError(codes.Unavailable, msgUnreachable)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var mb messageBody
		_ = json.Unmarshal(raw, &mb)
		msg := mb.Message
		if msg == "" {
			msg = msgFallback
		}
		c.log.Warnf("BackendClient: %s %s returned status %d: %s", method, path, resp.StatusCode, msg)
		return domain.NewRemoteError(codeForHTTPStatus(resp.StatusCode), msg)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Errorf("BackendClient: Failed to decode %s %s response: %v", method, path, err)
		return domain.NewRemoteError(codes.Internal, msgBadResponse)
	}
	return nil
}

func withQuery(path string, q url.Values) string {
	if encoded := q.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}

func setPositive(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

// Auth

func (c *BackendClient) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	var result domain.AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", creds, &result, nil); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *BackendClient) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	var result domain.AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", reg, &result, nil); err != nil {
		return nil, err
	}
	return &result, nil
}

// Profile

type userEnvelope struct {
	User domain.ProfileSnapshot `json:"user"`
}

type addressesEnvelope struct {
	Addresses []domain.SavedAddress `json:"addresses"`
}

func (c *BackendClient) GetProfile(ctx context.Context) (*domain.ProfileSnapshot, error) {
	var env userEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &env, nil); err != nil {
		return nil, err
	}
	return &env.User, nil
}

func (c *BackendClient) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.ProfileSnapshot, error) {
	var env userEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", update, &env, nil); err != nil {
		return nil, err
	}
	return &env.User, nil
}

func (c *BackendClient) AddAddress(ctx context.Context, input domain.AddressInput) ([]domain.SavedAddress, error) {
	var env addressesEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/address", input, &env, nil); err != nil {
		return nil, err
	}
	return env.Addresses, nil
}

func (c *BackendClient) EditAddress(ctx context.Context, addressID string, input domain.AddressInput) ([]domain.SavedAddress, error) {
	var env addressesEnvelope
	path := "/api/auth/address/" + url.PathEscape(addressID)
	if err := c.do(ctx, http.MethodPut, path, input, &env, nil); err != nil {
		return nil, err
	}
	return env.Addresses, nil
}

func (c *BackendClient) DeleteAddress(ctx context.Context, addressID string) ([]domain.SavedAddress, error) {
	var env addressesEnvelope
	path := "/api/auth/address/" + url.PathEscape(addressID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &env, nil); err != nil {
		return nil, err
	}
	return env.Addresses, nil
}

// Menu

func (c *BackendClient) GetMenu(ctx context.Context, query domain.MenuQuery) (map[string][]domain.Product, error) {
	q := url.Values{}
	if query.Category != "" && query.Category != "All" {
		q.Set("category", query.Category)
	}
	if query.Search != "" {
		q.Set("search", query.Search)
	}
	setPositive(q, "page", query.Page)
	setPositive(q, "limit", query.Limit)

	var env struct {
		Data map[string][]domain.Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/api/menu", q), nil, &env, nil); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = map[string][]domain.Product{}
	}
	return env.Data, nil
}

func (c *BackendClient) GetMenuItem(ctx context.Context, id string) (*domain.Product, error) {
	var env struct {
		Data *domain.Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/menu/"+url.PathEscape(id), nil, &env, nil); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, domain.NewRemoteError(codes.NotFound, "Menu item not found")
	}
	return env.Data, nil
}

// Orders

type orderEnvelope struct {
	Order *domain.Order `json:"order"`
}

type ordersEnvelope struct {
	Orders []domain.Order `json:"orders"`
}

func (o orderEnvelope) result() (*domain.Order, error) {
	if o.Order == nil {
		return nil, domain.NewRemoteError(codes.Internal, msgBadResponse)
	}
	return o.Order, nil
}

func (c *BackendClient) CreateOrder(ctx context.Context, draft *domain.OrderDraft, idempotencyKey string) (*domain.Order, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{IdempotencyKeyHeader: idempotencyKey}
	}
	var env orderEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/orders", draft, &env, headers); err != nil {
		return nil, err
	}
	order, err := env.result()
	if err != nil {
		return nil, err
	}
	c.log.Infof("BackendClient: Order %s created with status %s", order.ID, order.Status)
	return order, nil
}

func (c *BackendClient) ListMyOrders(ctx context.Context) ([]domain.Order, error) {
	var env ordersEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &env, nil); err != nil {
		return nil, err
	}
	return env.Orders, nil
}

func (c *BackendClient) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var env orderEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &env, nil); err != nil {
		return nil, err
	}
	return env.result()
}

// Contact

func (c *BackendClient) SubmitContact(ctx context.Context, msg domain.ContactMessage) error {
	return c.do(ctx, http.MethodPost, "/api/contact", msg, nil, nil)
}

// Admin

type productEnvelope struct {
	Product *domain.Product `json:"product"`
}

func (p productEnvelope) result() (*domain.Product, error) {
	if p.Product == nil {
		return nil, domain.NewRemoteError(codes.Internal, msgBadResponse)
	}
	return p.Product, nil
}

func (c *BackendClient) GetStats(ctx context.Context) (*domain.AdminStats, error) {
	var env struct {
		Stats domain.AdminStats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, &env, nil); err != nil {
		return nil, err
	}
	return &env.Stats, nil
}

func (c *BackendClient) ListProducts(ctx context.Context, query domain.ProductQuery) ([]domain.Product, error) {
	q := url.Values{}
	if query.Search != "" {
		q.Set("search", query.Search)
	}
	if query.Category != "" {
		q.Set("category", query.Category)
	}
	setPositive(q, "page", query.Page)

	var env struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/api/admin/products", q), nil, &env, nil); err != nil {
		return nil, err
	}
	return env.Products, nil
}

func (c *BackendClient) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	var env productEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/admin/products", input, &env, nil); err != nil {
		return nil, err
	}
	return env.result()
}

func (c *BackendClient) UpdateProduct(ctx context.Context, id string, input domain.ProductInput) (*domain.Product, error) {
	var env productEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/admin/products/"+url.PathEscape(id), input, &env, nil); err != nil {
		return nil, err
	}
	return env.result()
}

func (c *BackendClient) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/products/"+url.PathEscape(id), nil, nil, nil)
}

func (c *BackendClient) ListOrders(ctx context.Context, query domain.AdminOrderQuery) ([]domain.Order, error) {
	q := url.Values{}
	if query.Status != "" {
		q.Set("status", string(query.Status))
	}
	setPositive(q, "page", query.Page)

	var env ordersEnvelope
	if err := c.do(ctx, http.MethodGet, withQuery("/api/admin/orders", q), nil, &env, nil); err != nil {
		return nil, err
	}
	return env.Orders, nil
}

func (c *BackendClient) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	var env orderEnvelope
	body := map[string]domain.OrderStatus{"status": status}
	path := "/api/admin/orders/" + url.PathEscape(id) + "/status"
	if err := c.do(ctx, http.MethodPut, path, body, &env, nil); err != nil {
		return nil, err
	}
	return env.result()
}
