package services

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/addresses"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/carts"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/categories"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/orders"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/products"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/users"
)

// memStore is an in-memory database shared by the mem* repositories. It
// mirrors the constraints of the SQL schema that the services rely on.
type memStore struct {
	mu sync.Mutex

	nextID int64
	clock  time.Time

	users      map[int64]*models.User
	categories map[int64]*models.Category
	products   map[int64]*models.Product
	carts      map[int64]*models.Cart
	cartItems  map[int64]*models.CartItem
	addresses  map[int64]*models.Address
	orders     map[int64]*models.Order

	// failOrderItems makes order creation fail after the order row is written.
	failOrderItems error
	ownerLocks     int
}

func newMemStore() *memStore {
	return &memStore{
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:      map[int64]*models.User{},
		categories: map[int64]*models.Category{},
		products:   map[int64]*models.Product{},
		carts:      map[int64]*models.Cart{},
		cartItems:  map[int64]*models.CartItem{},
		addresses:  map[int64]*models.Address{},
		orders:     map[int64]*models.Order{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type memSnapshot struct {
	nextID     int64
	clock      time.Time
	users      map[int64]*models.User
	categories map[int64]*models.Category
	products   map[int64]*models.Product
	carts      map[int64]*models.Cart
	cartItems  map[int64]*models.CartItem
	addresses  map[int64]*models.Address
	orders     map[int64]*models.Order
}

func cloneMap[T any](m map[int64]*T) map[int64]*T {
	out := make(map[int64]*T, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		nextID: s.nextID, clock: s.clock,
		users: cloneMap(s.users), categories: cloneMap(s.categories), products: cloneMap(s.products),
		carts: cloneMap(s.carts), cartItems: cloneMap(s.cartItems), addresses: cloneMap(s.addresses),
		orders: cloneMap(s.orders),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID, s.clock = snap.nextID, snap.clock
	s.users, s.categories, s.products = snap.users, snap.categories, snap.products
	s.carts, s.cartItems, s.addresses, s.orders = snap.carts, snap.cartItems, snap.addresses, snap.orders
}

// memRunner serializes transactions and rolls the store back when fn fails.
type memRunner struct {
	store   *memStore
	txMu    sync.Mutex
	txCalls int
}

func (r *memRunner) Conn() dbx.DBTX { return nil }

func (r *memRunner) InTx(ctx context.Context, fn dbx.TxFunc) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	r.txCalls++

	snap := r.store.snapshot()
	if err := fn(ctx, nil); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

type memManager struct{ s *memStore }

func (m *memManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m *memManager) Users(dbx.DBTX) users.Repository                { return &memUsers{m.s} }
func (m *memManager) Categories(dbx.DBTX) categories.Repository      { return &memCategories{m.s} }
func (m *memManager) Products(dbx.DBTX) products.Repository          { return &memProducts{m.s} }
func (m *memManager) Carts(dbx.DBTX) carts.Repository                { return &memCarts{m.s} }
func (m *memManager) Addresses(dbx.DBTX) addresses.Repository        { return &memAddresses{m.s} }
func (m *memManager) Orders(dbx.DBTX) orders.Repository              { return &memOrders{m.s} }

func newMemEnv() (*memStore, *memRunner, *memManager) {
	s := newMemStore()
	return s, &memRunner{store: s}, &memManager{s: s}
}

// --- users ---

type memUsers struct{ s *memStore }

func copyUser(u *models.User) *models.User { c := *u; return &c }

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.users {
		if e.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID, u.Role, u.CreatedAt = r.s.id(), common.RoleUser, r.s.tick()
	r.s.users[u.ID] = copyUser(u)
	return u, nil
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(u), nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) UpdateName(_ context.Context, id int64, name string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.Name = name
	return copyUser(u), nil
}

func (r *memUsers) SetRole(_ context.Context, id int64, role string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Role = role
	return nil
}

func (r *memUsers) SetResetToken(_ context.Context, id int64, token string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.ResetToken, u.ResetTokenExpiresAt = &token, &expiresAt
	return nil
}

func (r *memUsers) GetByResetToken(_ context.Context, token string, now time.Time) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ResetToken != nil && *u.ResetToken == token && !u.ResetTokenExpiresAt.Before(now) {
			return copyUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash, u.ResetToken, u.ResetTokenExpiresAt = &hash, nil, nil
	return nil
}

// --- catalog ---

type memCategories struct{ s *memStore }

func (r *memCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID, c.CreatedAt = r.s.id(), r.s.tick()
	cp := *c
	r.s.categories[c.ID] = &cp
	return c, nil
}

func (r *memCategories) GetByID(_ context.Context, id int64) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCategories) List(_ context.Context) ([]*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memCategories) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.categories[c.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cur.Name, cur.Description = c.Name, c.Description
	cp := *cur
	return &cp, nil
}

func (r *memCategories) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return common.ErrorNotFound
	}
	for _, p := range r.s.products {
		if p.CategoryID == id {
			return common.Validationf("category %d still has products", id)
		}
	}
	delete(r.s.categories, id)
	return nil
}

type memProducts struct{ s *memStore }

func (r *memProducts) Create(_ context.Context, p *models.Product) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[p.CategoryID]; !ok {
		return nil, common.Validationf("category %d not found", p.CategoryID)
	}
	p.ID, p.CreatedAt = r.s.id(), r.s.tick()
	cp := *p
	r.s.products[p.ID] = &cp
	return p, nil
}

func (r *memProducts) GetByID(_ context.Context, id int64) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProducts) List(_ context.Context) ([]*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memProducts) Update(_ context.Context, p *models.Product) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if _, ok := r.s.categories[p.CategoryID]; !ok {
		return nil, common.Validationf("category %d not found", p.CategoryID)
	}
	p.CreatedAt = cur.CreatedAt
	cp := *p
	r.s.products[p.ID] = &cp
	return p, nil
}

func (r *memProducts) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.products, id)
	for iid, it := range r.s.cartItems {
		if it.ProductID == id {
			delete(r.s.cartItems, iid)
		}
	}
	return nil
}

// --- carts ---

type memCarts struct{ s *memStore }

func (r *memCarts) GetOrCreate(_ context.Context, userID int64) (*models.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return nil, common.ErrorNotFound
	}
	for _, c := range r.s.carts {
		if c.UserID == userID {
			return &models.Cart{ID: c.ID, UserID: c.UserID}, nil
		}
	}
	c := &models.Cart{ID: r.s.id(), UserID: userID}
	r.s.carts[c.ID] = c
	return &models.Cart{ID: c.ID, UserID: userID}, nil
}

func (r *memCarts) GetByUserID(_ context.Context, userID int64) (*models.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.carts {
		if c.UserID == userID {
			return &models.Cart{ID: c.ID, UserID: c.UserID}, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memCarts) ListItems(_ context.Context, cartID int64) ([]*models.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.CartItem, 0)
	for _, it := range r.s.cartItems {
		if it.CartID == cartID {
			cp := *it
			p := *r.s.products[it.ProductID]
			cp.Product = &p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCarts) AddItem(_ context.Context, cartID, productID int64, quantity int) (*models.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[productID]; !ok {
		return nil, common.ErrorNotFound
	}
	for _, it := range r.s.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			it.Quantity += quantity
			cp := *it
			return &cp, nil
		}
	}
	it := &models.CartItem{ID: r.s.id(), CartID: cartID, ProductID: productID, Quantity: quantity}
	r.s.cartItems[it.ID] = it
	cp := *it
	return &cp, nil
}

func (r *memCarts) SetItemQuantity(_ context.Context, itemID int64, quantity int) (*models.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.cartItems[itemID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	it.Quantity = quantity
	cp := *it
	return &cp, nil
}

func (r *memCarts) DeleteItem(_ context.Context, itemID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cartItems[itemID]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.cartItems, itemID)
	return nil
}

func (r *memCarts) ClearItems(_ context.Context, cartID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, it := range r.s.cartItems {
		if it.CartID == cartID {
			delete(r.s.cartItems, id)
			n++
		}
	}
	return n, nil
}

// --- addresses ---

type memAddresses struct{ s *memStore }

// hasOtherDefault mirrors the partial unique index on (user_id) WHERE is_default.
func (r *memAddresses) hasOtherDefault(userID, exceptID int64) bool {
	for _, a := range r.s.addresses {
		if a.UserID == userID && a.IsDefault && a.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *memAddresses) ListByUser(_ context.Context, userID int64) ([]*models.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Address, 0)
	for _, a := range r.s.addresses {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memAddresses) GetByID(_ context.Context, id int64) (*models.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.addresses[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAddresses) LockOwner(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return common.ErrorNotFound
	}
	r.s.ownerLocks++
	return nil
}

func (r *memAddresses) ClearDefault(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.addresses {
		if a.UserID == userID {
			a.IsDefault = false
		}
	}
	return nil
}

func (r *memAddresses) Create(_ context.Context, a *models.Address) (*models.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.IsDefault && r.hasOtherDefault(a.UserID, 0) {
		return nil, common.ErrorAlreadyExists
	}
	a.ID, a.CreatedAt = r.s.id(), r.s.tick()
	cp := *a
	r.s.addresses[a.ID] = &cp
	return a, nil
}

func (r *memAddresses) Update(_ context.Context, a *models.Address) (*models.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.addresses[a.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if a.IsDefault && r.hasOtherDefault(cur.UserID, a.ID) {
		return nil, common.ErrorAlreadyExists
	}
	a.UserID, a.CreatedAt = cur.UserID, cur.CreatedAt
	cp := *a
	r.s.addresses[a.ID] = &cp
	return a, nil
}

func (r *memAddresses) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.addresses[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.addresses, id)
	return nil
}

func (r *memAddresses) SetDefault(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.addresses[id]
	if !ok {
		return common.ErrorNotFound
	}
	if r.hasOtherDefault(a.UserID, id) {
		return common.ErrorAlreadyExists
	}
	a.IsDefault = true
	return nil
}

func (r *memAddresses) PromoteLatest(_ context.Context, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *models.Address
	for _, a := range r.s.addresses {
		if a.UserID != userID {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) ||
			(a.CreatedAt.Equal(latest.CreatedAt) && a.ID > latest.ID) {
			latest = a
		}
	}
	if latest == nil {
		return false, nil
	}
	if r.hasOtherDefault(userID, latest.ID) {
		return false, common.ErrorAlreadyExists
	}
	latest.IsDefault = true
	return true, nil
}

// --- orders ---

type memOrders struct{ s *memStore }

func (r *memOrders) copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = make([]*models.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		ic := *it
		cp.Items = append(cp.Items, &ic)
	}
	if u, ok := r.s.users[o.UserID]; ok {
		cp.User = u.Profile()
	}
	return &cp
}

func (r *memOrders) Create(_ context.Context, o *models.Order) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[o.UserID]; !ok {
		return nil, common.ErrorNotFound
	}
	o.ID, o.CreatedAt = r.s.id(), r.s.tick()
	stored := &models.Order{ID: o.ID, UserID: o.UserID, Total: o.Total, Status: o.Status, CreatedAt: o.CreatedAt}
	r.s.orders[o.ID] = stored

	if r.s.failOrderItems != nil {
		return nil, r.s.failOrderItems
	}
	for _, it := range o.Items {
		it.ID, it.OrderID = r.s.id(), o.ID
		ic := *it
		stored.Items = append(stored.Items, &ic)
	}
	return o, nil
}

func (r *memOrders) sorted(match func(*models.Order) bool, asc bool) []*models.Order {
	out := make([]*models.Order, 0)
	for _, o := range r.s.orders {
		if match(o) {
			out = append(out, r.copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt) == asc
		}
		return (a.ID < b.ID) == asc
	})
	return out
}

func (r *memOrders) ListByUser(_ context.Context, userID int64) ([]*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(o *models.Order) bool { return o.UserID == userID }, false), nil
}

func (r *memOrders) ListAll(_ context.Context, f models.OrderFilter) ([]*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, idErr := strconv.ParseInt(f.Search, 10, 64)
	return r.sorted(func(o *models.Order) bool {
		if f.Status != "" && o.Status != f.Status {
			return false
		}
		if f.Search == "" {
			return true
		}
		if idErr == nil && o.ID == id {
			return true
		}
		u := r.s.users[o.UserID]
		return u != nil && strings.Contains(strings.ToLower(u.Name), strings.ToLower(f.Search))
	}, f.Ascending), nil
}

func (r *memOrders) GetByID(_ context.Context, id int64) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.copyOrder(o), nil
}

func (r *memOrders) SetStatus(_ context.Context, id int64, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return common.ErrorNotFound
	}
	o.Status = status
	return nil
}

// --- seed helpers ---

func (s *memStore) addUser(name, email string) *models.User {
	u, err := (&memUsers{s}).Create(context.Background(), &models.User{Name: name, Email: email})
	if err != nil {
		panic(err)
	}
	return u
}

func (s *memStore) addProduct(name string, categoryID int64) *models.Product {
	p, err := (&memProducts{s}).Create(context.Background(), &models.Product{Name: name, CategoryID: categoryID})
	if err != nil {
		panic(err)
	}
	return p
}

func (s *memStore) addCategory(name string) *models.Category {
	c, err := (&memCategories{s}).Create(context.Background(), &models.Category{Name: name})
	if err != nil {
		panic(err)
	}
	return c
}

func (s *memStore) defaultCount(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.addresses {
		if a.UserID == userID && a.IsDefault {
			n++
		}
	}
	return n
}
