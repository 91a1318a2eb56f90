package repositories

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
	"storefront/internal/pagination"
)

var productSortColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"description": "description",
	"price":       "price",
	"imgUrl":      "img_url",
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := conn(ctx, r.db).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&product, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, translate(err))
	}
	return &product, nil
}

func (r *GORMProductRepository) GetReference(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := conn(ctx, r.db).Select("id").First(&product, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, translate(err))
	}
	return &product, nil
}

func (r *GORMProductRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product %d: %w", id, translate(err))
	}
	return count > 0, nil
}

// Create inserts the product and links it to the categories referenced by id.
// The categories themselves are never written.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return err
		}
		return replaceCategories(tx, product.ID, product.Categories)
	})
	if err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]any{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"img_url":     product.ImgURL,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return replaceCategories(tx, product.ID, product.Categories)
	})
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", product.ID, translate(err))
	}
	return nil
}

// DeleteByID removes the product's category links and then the product, in
// one unit of work.
func (r *GORMProductRepository) DeleteByID(ctx context.Context, id int64) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductCategory{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, translate(err))
	}
	return nil
}

// SearchByName matches name as a case-insensitive substring.
func (r *GORMProductRepository) SearchByName(ctx context.Context, name string, page pagination.Pageable) ([]models.Product, int64, error) {
	query := conn(ctx, r.db).Model(&models.Product{}).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%").
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", translate(err))
	}

	find := query.Offset(page.Offset()).Limit(page.Size)
	sortedByID := false
	for _, o := range page.Sort {
		column, ok := productSortColumns[o.Property]
		if !ok {
			return nil, 0, fmt.Errorf("cannot sort products by %q", o.Property)
		}
		sortedByID = sortedByID || column == "id"
		find = find.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: o.Desc})
	}
	if !sortedByID {
		find = find.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}

	var products []models.Product
	if err := find.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", translate(err))
	}
	return products, total, nil
}

// replaceCategories clears the product's links and rebuilds them from the
// given references.
func replaceCategories(tx *gorm.DB, productID int64, categories []models.Category) error {
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductCategory{}).Error; err != nil {
		return err
	}
	if len(categories) == 0 {
		return nil
	}

	links := make([]models.ProductCategory, 0, len(categories))
	seen := make(map[int64]struct{}, len(categories))
	for _, c := range categories {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		links = append(links, models.ProductCategory{ProductID: productID, CategoryID: c.ID})
	}
	return tx.Create(&links).Error
}
