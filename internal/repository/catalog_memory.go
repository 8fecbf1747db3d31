package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/shopcore/internal/domain"
	"github.com/nikolayk812/shopcore/internal/port"
)

// Products are immutable catalog entries, so values are stored and returned as
// plain copies; Update replaces the entry wholesale.
type productRepository struct {
	mu    sync.RWMutex
	store map[domain.SKU]domain.Product
}

func NewProducts() port.ProductRepository {
	return &productRepository{
		store: make(map[domain.SKU]domain.Product),
	}
}

func (r *productRepository) Get(_ context.Context, sku domain.SKU) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.store[sku]
	if !ok {
		return domain.Product{}, fmt.Errorf("product[%s]: %w", sku, domain.ErrNotFound)
	}

	return product, nil
}

func (r *productRepository) Add(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[product.SKU]; ok {
		return fmt.Errorf("product[%s]: %w", product.SKU, domain.ErrAlreadyExists)
	}

	r.store[product.SKU] = product
	return nil
}

func (r *productRepository) Update(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[product.SKU]; !ok {
		return fmt.Errorf("product[%s]: %w", product.SKU, domain.ErrNotFound)
	}

	r.store[product.SKU] = product
	return nil
}

type inventoryRepository struct {
	mu    sync.RWMutex
	store map[domain.SKU]domain.InventoryItem
}

func NewInventory() port.InventoryRepository {
	return &inventoryRepository{
		store: make(map[domain.SKU]domain.InventoryItem),
	}
}

func (r *inventoryRepository) Get(_ context.Context, sku domain.SKU) (domain.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.store[sku]
	if !ok {
		return domain.InventoryItem{}, fmt.Errorf("inventory[%s]: %w", sku, domain.ErrNotFound)
	}

	return item, nil
}

func (r *inventoryRepository) Add(_ context.Context, item domain.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[item.SKU]; ok {
		return fmt.Errorf("inventory[%s]: %w", item.SKU, domain.ErrAlreadyExists)
	}

	r.store[item.SKU] = item
	return nil
}

func (r *inventoryRepository) Update(_ context.Context, item domain.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[item.SKU]; !ok {
		return fmt.Errorf("inventory[%s]: %w", item.SKU, domain.ErrNotFound)
	}

	r.store[item.SKU] = item
	return nil
}

type customerRepository struct {
	mu    sync.RWMutex
	store map[string]domain.Customer
}

func NewCustomers() port.CustomerRepository {
	return &customerRepository{
		store: make(map[string]domain.Customer),
	}
}

func (r *customerRepository) Get(_ context.Context, customerID string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.store[customerID]
	if !ok {
		return domain.Customer{}, fmt.Errorf("customer[%s]: %w", customerID, domain.ErrNotFound)
	}

	return customer, nil
}

func (r *customerRepository) Add(_ context.Context, customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[customer.ID]; ok {
		return fmt.Errorf("customer[%s]: %w", customer.ID, domain.ErrAlreadyExists)
	}

	r.store[customer.ID] = customer
	return nil
}

func (r *customerRepository) Update(_ context.Context, customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[customer.ID]; !ok {
		return fmt.Errorf("customer[%s]: %w", customer.ID, domain.ErrNotFound)
	}

	r.store[customer.ID] = customer
	return nil
}
