package repositories

import (
	"context"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create inserts the order and then its items.
	Create(ctx context.Context, order *models.Order) error
	// FindByID loads the order with its items and their products.
	FindByID(ctx context.Context, id int64) (*models.Order, error)
}
