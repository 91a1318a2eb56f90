package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return nil
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		return tx.Omit(clause.Associations).Create(&order.Items).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create order: %w", translate(err))
	}
	return nil
}

func (r *GORMOrderRepository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("product_id") }).
		Preload("Items.Product").
		First(&order, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, translate(err))
	}
	return &order, nil
}
