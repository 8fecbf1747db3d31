package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/shopcore/internal/domain"
	"github.com/nikolayk812/shopcore/internal/port"
)

type orderRepository struct {
	mu    sync.RWMutex
	store map[string]domain.Order
}

func NewOrders() port.OrderRepository {
	return &orderRepository{
		store: make(map[string]domain.Order),
	}
}

func (r *orderRepository) Get(_ context.Context, orderID string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.store[orderID]
	if !ok {
		return domain.Order{}, fmt.Errorf("order[%s]: %w", orderID, domain.ErrNotFound)
	}

	return order.Clone(), nil
}

func (r *orderRepository) Add(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[order.ID]; ok {
		return fmt.Errorf("order[%s]: %w", order.ID, domain.ErrAlreadyExists)
	}

	r.store[order.ID] = order.Clone()
	return nil
}

func (r *orderRepository) Update(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[order.ID]; !ok {
		return fmt.Errorf("order[%s]: %w", order.ID, domain.ErrNotFound)
	}

	r.store[order.ID] = order.Clone()
	return nil
}

func (r *orderRepository) Search(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.store {
		if filter.Matches(order) {
			result = append(result, order.Clone())
		}
	}

	return result, nil
}
