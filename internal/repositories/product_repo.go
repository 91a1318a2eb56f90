package repositories

import (
	"context"

	"storefront/internal/models"
	"storefront/internal/pagination"
)

// ProductSortProperties lists the properties a product search may sort by.
var ProductSortProperties = []string{"id", "name", "description", "price", "imgUrl"}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// FindByID loads the product with its categories.
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	// GetReference loads only the identity of the product.
	GetReference(ctx context.Context, id int64) (*models.Product, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, product *models.Product) error
	// Update writes the scalar fields and replaces the category set.
	Update(ctx context.Context, product *models.Product) error
	DeleteByID(ctx context.Context, id int64) error
	SearchByName(ctx context.Context, name string, page pagination.Pageable) ([]models.Product, int64, error)
}
