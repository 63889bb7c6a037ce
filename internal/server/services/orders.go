package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
)

// OrderItemInput is one submitted line. Name and Price are stored as given
// and never refreshed from the catalog.
type OrderItemInput struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// OrderQuery is the raw administrative listing query. Sort "oldest" or "asc"
// lists oldest first; anything else newest first.
type OrderQuery struct {
	Status string
	Search string
	Sort   string
}

func (q OrderQuery) filter() models.OrderFilter {
	sort := strings.ToLower(strings.TrimSpace(q.Sort))
	return models.OrderFilter{
		Status:    strings.TrimSpace(q.Status),
		Search:    strings.TrimSpace(q.Search),
		Ascending: sort == "oldest" || sort == "asc",
	}
}

// OrderService creates immutable order snapshots and manages their status.
type OrderService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	policy      *StatusPolicy
}

func NewOrderService(runner dbx.Runner, m repomanager.RepositoryManager, policy *StatusPolicy) *OrderService {
	return &OrderService{runner: runner, repomanager: m, policy: policy}
}

// Create writes the order and all of its items atomically. An empty item
// list is rejected before anything is written.
func (s *OrderService) Create(ctx context.Context, userID int64, items []OrderItemInput, total decimal.Decimal) (*models.Order, error) {
	if len(items) == 0 {
		return nil, common.Validationf("cart is empty")
	}
	if err := checkMoney("total", total); err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID: userID,
		Total:  total,
		Status: s.policy.Initial(),
		Items:  make([]*models.OrderItem, 0, len(items)),
	}
	for i, it := range items {
		switch {
		case it.Quantity < 1:
			return nil, common.Validationf("item %d: quantity must be at least 1", i)
		case strings.TrimSpace(it.Name) == "":
			return nil, common.Validationf("item %d: name is required", i)
		}
		if err := checkMoney(fmt.Sprintf("item %d: price", i), it.Price); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, &models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	var out *models.Order
	err := s.runner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		out, err = s.repomanager.Orders(tx).Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating order: %w", err)
	}
	return out, nil
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	list, err := s.repomanager.Orders(s.runner.Conn()).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing orders: %w", err)
	}
	return list, nil
}

// ListAll returns orders of all users matching q.
func (s *OrderService) ListAll(ctx context.Context, q OrderQuery) ([]*models.Order, error) {
	list, err := s.repomanager.Orders(s.runner.Conn()).ListAll(ctx, q.filter())
	if err != nil {
		return nil, fmt.Errorf("error listing orders: %w", err)
	}
	return list, nil
}

func (s *OrderService) GetByID(ctx context.Context, orderID int64) (*models.Order, error) {
	o, err := s.repomanager.Orders(s.runner.Conn()).GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("error searching order: %w", err)
	}
	return o, nil
}

// SetStatus changes the order status after checking it against the policy
// and returns the updated order.
func (s *OrderService) SetStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	to, err := s.policy.Normalize(status)
	if err != nil {
		return nil, err
	}

	var out *models.Order
	err = s.runner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Orders(tx)

		o, err := repo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.policy.CheckTransition(o.Status, to); err != nil {
			return err
		}
		if err := repo.SetStatus(ctx, orderID, to); err != nil {
			return err
		}
		o.Status = to
		out = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error updating order status: %w", err)
	}
	return out, nil
}
