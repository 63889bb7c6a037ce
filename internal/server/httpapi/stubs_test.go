package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

var (
	testUser  = &models.User{ID: 7, Name: "Ann", Email: "ann@example.com", Role: common.RoleUser}
	testAdmin = &models.User{ID: 1, Name: "Root", Email: "root@example.com", Role: common.RoleAdmin}
)

// stubUsers resolves userToken and adminToken; everything else is invalid.
type stubUsers struct {
	register      func(name, email, password string) (*models.User, error)
	login         func(email, password string) (string, error)
	forgot        func(email string) error
	reset         func(token, pw string) error
	getProfile    func(id int64) (*models.Profile, error)
	updateProfile func(id int64, name string) (*models.Profile, error)
}

func (s *stubUsers) Register(_ context.Context, name, email, password string) (*models.User, error) {
	return s.register(name, email, password)
}
func (s *stubUsers) Login(_ context.Context, email, password string) (string, error) {
	return s.login(email, password)
}
func (s *stubUsers) ForgotPassword(_ context.Context, email string) error { return s.forgot(email) }
func (s *stubUsers) ResetPassword(_ context.Context, token, pw string) error {
	return s.reset(token, pw)
}
func (s *stubUsers) Authenticate(_ context.Context, token string) (*models.User, error) {
	switch token {
	case userToken:
		return testUser, nil
	case adminToken:
		return testAdmin, nil
	case "expired":
		return nil, common.ErrTokenExpired
	}
	return nil, common.ErrInvalidToken
}
func (s *stubUsers) GetProfile(_ context.Context, id int64) (*models.Profile, error) {
	return s.getProfile(id)
}
func (s *stubUsers) UpdateProfile(_ context.Context, id int64, name string) (*models.Profile, error) {
	return s.updateProfile(id, name)
}

type stubCatalog struct {
	listCategories func() ([]*models.Category, error)
	createCategory func(name, desc string) (*models.Category, error)
	deleteCategory func(id int64) error
	listProducts   func() ([]*models.Product, error)
	getProduct     func(id int64) (*models.Product, error)
	createProduct  func(in services.ProductInput, img *services.ImageUpload) (*models.Product, error)
	updateProduct  func(id int64, in services.ProductInput, img *services.ImageUpload) (*models.Product, error)
	deleteProduct  func(id int64) error
}

func (s *stubCatalog) ListCategories(context.Context) ([]*models.Category, error) {
	return s.listCategories()
}
func (s *stubCatalog) CreateCategory(_ context.Context, name, desc string) (*models.Category, error) {
	return s.createCategory(name, desc)
}
func (s *stubCatalog) UpdateCategory(_ context.Context, id int64, name, desc string) (*models.Category, error) {
	return &models.Category{ID: id, Name: name, Description: desc}, nil
}
func (s *stubCatalog) DeleteCategory(_ context.Context, id int64) error { return s.deleteCategory(id) }
func (s *stubCatalog) ListProducts(context.Context) ([]*models.Product, error) {
	return s.listProducts()
}
func (s *stubCatalog) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	return s.getProduct(id)
}
func (s *stubCatalog) CreateProduct(_ context.Context, in services.ProductInput, img *services.ImageUpload) (*models.Product, error) {
	return s.createProduct(in, img)
}
func (s *stubCatalog) UpdateProduct(_ context.Context, id int64, in services.ProductInput, img *services.ImageUpload) (*models.Product, error) {
	return s.updateProduct(id, in, img)
}
func (s *stubCatalog) DeleteProduct(_ context.Context, id int64) error { return s.deleteProduct(id) }

type stubCarts struct {
	get            func(userID int64) (*models.Cart, error)
	add            func(userID, productID int64, qty int) (*models.CartItem, error)
	updateQuantity func(itemID int64, qty int) (*models.CartItem, error)
	remove         func(itemID int64) error
	clear          func(userID int64) error
}

func (s *stubCarts) GetOrCreateCart(_ context.Context, userID int64) (*models.Cart, error) {
	return s.get(userID)
}
func (s *stubCarts) AddItem(_ context.Context, userID, productID int64, qty int) (*models.CartItem, error) {
	return s.add(userID, productID, qty)
}
func (s *stubCarts) UpdateQuantity(_ context.Context, itemID int64, qty int) (*models.CartItem, error) {
	return s.updateQuantity(itemID, qty)
}
func (s *stubCarts) RemoveItem(_ context.Context, itemID int64) error { return s.remove(itemID) }
func (s *stubCarts) ClearCart(_ context.Context, userID int64) error  { return s.clear(userID) }

type stubAddresses struct {
	list       func(userID int64) ([]*models.Address, error)
	create     func(userID int64, in services.AddressInput) (*models.Address, error)
	update     func(userID, id int64, in services.AddressInput) (*models.Address, error)
	delete     func(userID, id int64) error
	setDefault func(userID, id int64) (*models.Address, error)
}

func (s *stubAddresses) List(_ context.Context, userID int64) ([]*models.Address, error) {
	return s.list(userID)
}
func (s *stubAddresses) Create(_ context.Context, userID int64, in services.AddressInput) (*models.Address, error) {
	return s.create(userID, in)
}
func (s *stubAddresses) Update(_ context.Context, userID, id int64, in services.AddressInput) (*models.Address, error) {
	return s.update(userID, id, in)
}
func (s *stubAddresses) Delete(_ context.Context, userID, id int64) error {
	return s.delete(userID, id)
}
func (s *stubAddresses) SetDefault(_ context.Context, userID, id int64) (*models.Address, error) {
	return s.setDefault(userID, id)
}

type stubOrders struct {
	create      func(userID int64, items []services.OrderItemInput, total decimal.Decimal) (*models.Order, error)
	listForUser func(userID int64) ([]*models.Order, error)
	listAll     func(q services.OrderQuery) ([]*models.Order, error)
	get         func(id int64) (*models.Order, error)
	setStatus   func(id int64, status string) (*models.Order, error)
}

func (s *stubOrders) Create(_ context.Context, userID int64, items []services.OrderItemInput, total decimal.Decimal) (*models.Order, error) {
	return s.create(userID, items, total)
}
func (s *stubOrders) ListForUser(_ context.Context, userID int64) ([]*models.Order, error) {
	return s.listForUser(userID)
}
func (s *stubOrders) ListAll(_ context.Context, q services.OrderQuery) ([]*models.Order, error) {
	return s.listAll(q)
}
func (s *stubOrders) GetByID(_ context.Context, id int64) (*models.Order, error) { return s.get(id) }
func (s *stubOrders) SetStatus(_ context.Context, id int64, status string) (*models.Order, error) {
	return s.setStatus(id, status)
}

type testEnv struct {
	users     *stubUsers
	catalog   *stubCatalog
	carts     *stubCarts
	addresses *stubAddresses
	orders    *stubOrders
	logs      *bytes.Buffer
	server    *Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:     &stubUsers{},
		catalog:   &stubCatalog{},
		carts:     &stubCarts{},
		addresses: &stubAddresses{},
		orders:    &stubOrders{},
		logs:      &bytes.Buffer{},
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(env.logs, nil)))
	env.server = NewServer("127.0.0.1:0", logger, Services{
		Users:     env.users,
		Catalog:   env.catalog,
		Carts:     env.carts,
		Addresses: env.addresses,
		Orders:    env.orders,
	}, nil)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.serve(req)
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env.Error
}
