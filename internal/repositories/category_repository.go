package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	FindAll(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Count(ctx context.Context) (int64, error)
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// FindAll returns every category ordered by name.
func (r *GORMCategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := conn(ctx, r.db).Order("name").Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", translate(err))
	}
	return categories, nil
}

func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := conn(ctx, r.db).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", translate(err))
	}
	return nil
}

func (r *GORMCategoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.Category{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", translate(err))
	}
	return count, nil
}
