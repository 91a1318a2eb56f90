package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.Database{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedCategories(t *testing.T, db *gorm.DB, names ...string) []models.Category {
	t.Helper()
	cats := make([]models.Category, 0, len(names))
	for _, n := range names {
		cats = append(cats, models.Category{Name: n})
	}
	require.NoError(t, db.Create(&cats).Error)
	return cats
}

func seedProduct(t *testing.T, repo *GORMProductRepository, name string, price float64, cats ...models.Category) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Description: name + " description text", Price: price, ImgURL: "img.png", Categories: cats}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestProductRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGORMProductRepository(db)
	ctx := context.Background()
	cats := seedCategories(t, db, "Books", "Electronics")

	created := seedProduct(t, repo, "Notebook", 1250, models.Category{ID: cats[1].ID}, models.Category{ID: cats[0].ID})
	require.NotZero(t, created.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Notebook", found.Name)
	require.Len(t, found.Categories, 2)
	assert.Equal(t, "Books", found.Categories[0].Name)
	assert.Equal(t, "Electronics", found.Categories[1].Name)

	ref, err := repo.GetReference(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, ref.ID)
	assert.Empty(t, ref.Name)

	exists, err := repo.ExistsByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByID(ctx, 999)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetReference(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductRepository_CreateWithUnknownCategory(t *testing.T) {
	db := newTestDB(t)
	repo := NewGORMProductRepository(db)

	p := &models.Product{Name: "Ghost", Description: "Linked to nothing at all", Price: 1, Categories: []models.Category{{ID: 404}}}
	err := repo.Create(context.Background(), p)
	assert.ErrorIs(t, err, ErrIntegrityViolation)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.Zero(t, count, "product row must be rolled back with its links")
}

func TestProductRepository_UpdateReplacesCategories(t *testing.T) {
	db := newTestDB(t)
	repo := NewGORMProductRepository(db)
	ctx := context.Background()
	cats := seedCategories(t, db, "A", "B", "C")
	p := seedProduct(t, repo, "Phone", 900, models.Category{ID: cats[0].ID}, models.Category{ID: cats[1].ID})

	update := &models.Product{
		ID:          p.ID,
		Name:        "Phone X",
		Description: "A newer phone with more cameras",
		Price:       1100,
		ImgURL:      "phone-x.png",
		Categories:  []models.Category{{ID: cats[2].ID}},
	}
	require.NoError(t, repo.Update(ctx, update))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Phone X", found.Name)
	assert.Equal(t, 1100.0, found.Price)
	assert.Equal(t, "phone-x.png", found.ImgURL)
	require.Len(t, found.Categories, 1)
	assert.Equal(t, "C", found.Categories[0].Name)

	update.Categories = nil
	require.NoError(t, repo.Update(ctx, update))
	found, err = repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Categories)

	err = repo.Update(ctx, &models.Product{ID: 999, Name: "Nope"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductRepository_DeleteByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewGORMProductRepository(db)
	ctx := context.Background()
	cats := seedCategories(t, db, "Books")
	p := seedProduct(t, repo, "Novel", 30, models.Category{ID: cats[0].ID})

	require.NoError(t, repo.DeleteByID(ctx, p.ID))

	var links int64
	db.Model(&models.ProductCategory{}).Where("product_id = ?", p.ID).Count(&links)
	assert.Zero(t, links)

	exists, err := repo.ExistsByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, repo.DeleteByID(ctx, p.ID), ErrNotFound)
}

func TestProductRepository_DeleteReferencedByOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewGORMProductRepository(db)
	orders := NewGORMOrderRepository(db)
	ctx := context.Background()
	cats := seedCategories(t, db, "Books")
	p := seedProduct(t, repo, "Novel", 30, models.Category{ID: cats[0].ID})

	user := &models.User{Username: "maria", Email: "maria@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, orders.Create(ctx, &models.Order{
		Moment:   time.Now(),
		Status:   models.OrderStatusWaitingPayment,
		ClientID: user.ID,
		Items:    []models.OrderItem{{ProductID: p.ID, Quantity: 1, Price: 30}},
	}))

	err := repo.DeleteByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrIntegrityViolation)

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, found.Categories, 1, "links must survive a failed delete")
}

func TestProductRepository_SearchByName(t *testing.T) {
	db := newTestDB(t)
	repo := NewGORMProductRepository(db)
	ctx := context.Background()
	seedProduct(t, repo, "Notebook Pro", 3000)
	seedProduct(t, repo, "Smart TV", 2190)
	seedProduct(t, repo, "notebook air", 2500)
	seedProduct(t, repo, "Gaming NOTEBOOK", 5000)

	products, total, err := repo.SearchByName(ctx, "note", pagination.Pageable{Page: 0, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, products, 2)
	assert.Equal(t, "Notebook Pro", products[0].Name)
	assert.Equal(t, "notebook air", products[1].Name)

	products, _, err = repo.SearchByName(ctx, "note", pagination.Pageable{Page: 1, Size: 2})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Gaming NOTEBOOK", products[0].Name)

	products, total, err = repo.SearchByName(ctx, "", pagination.Pageable{Size: 10, Sort: []pagination.Order{{Property: "price", Desc: true}}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, "Gaming NOTEBOOK", products[0].Name)
	assert.Equal(t, "Smart TV", products[3].Name)

	products, _, err = repo.SearchByName(ctx, "", pagination.Pageable{Size: 10, Sort: []pagination.Order{{Property: "description"}}})
	require.NoError(t, err)
	assert.Equal(t, "Gaming NOTEBOOK", products[0].Name)
	assert.Equal(t, "notebook air", products[3].Name)

	// Equal image URLs fall back to id order.
	products, _, err = repo.SearchByName(ctx, "", pagination.Pageable{Size: 10, Sort: []pagination.Order{{Property: "imgUrl", Desc: true}}})
	require.NoError(t, err)
	assert.Equal(t, "Notebook Pro", products[0].Name)

	_, _, err = repo.SearchByName(ctx, "", pagination.Pageable{Size: 10, Sort: []pagination.Order{{Property: "password"}}})
	assert.Error(t, err)
}

func TestProductSortPropertiesHaveColumns(t *testing.T) {
	for _, property := range ProductSortProperties {
		assert.Contains(t, productSortColumns, property)
	}
	assert.Len(t, productSortColumns, len(ProductSortProperties))
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	repo := NewGORMProductRepository(db)
	tx := NewTxManager(db)
	ctx := context.Background()

	err := tx.Do(ctx, ReadWrite, func(ctx context.Context) error {
		assert.True(t, InTransaction(ctx))
		p := &models.Product{Name: "Temp", Description: "Rolled back product", Price: 1}
		require.NoError(t, repo.Create(ctx, p))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.Zero(t, count)
}

func TestTxManager_SupportsRunsWithoutTransaction(t *testing.T) {
	tx := NewTxManager(newTestDB(t))

	err := tx.Do(context.Background(), Supports, func(ctx context.Context) error {
		assert.False(t, InTransaction(ctx))
		return nil
	})
	require.NoError(t, err)

	err = tx.Do(context.Background(), ReadWrite, func(outer context.Context) error {
		return tx.Do(outer, Supports, func(inner context.Context) error {
			assert.True(t, InTransaction(inner))
			return nil
		})
	})
	require.NoError(t, err)
}

func TestCategoryRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGORMCategoryRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Category{Name: "Electronics"}))
	require.NoError(t, repo.Create(ctx, &models.Category{Name: "Books"}))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Books", all[0].Name)

	err = repo.Create(ctx, &models.Category{Name: "Books"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestOrderRepository(t *testing.T) {
	db := newTestDB(t)
	products := NewGORMProductRepository(db)
	repo := NewGORMOrderRepository(db)
	ctx := context.Background()
	pen := seedProduct(t, products, "Pen", 2)
	ink := seedProduct(t, products, "Ink", 5)
	user := &models.User{Username: "joao", Email: "joao@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	order := &models.Order{
		Moment:   time.Now(),
		Status:   models.OrderStatusWaitingPayment,
		ClientID: user.ID,
		Items: []models.OrderItem{
			{ProductID: ink.ID, Quantity: 1, Price: 5},
			{ProductID: pen.ID, Quantity: 3, Price: 2},
		},
	}
	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "Pen", found.Items[0].Product.Name)
	assert.Equal(t, 11.0, found.Total())

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	dup := &models.Order{
		Moment:   time.Now(),
		Status:   models.OrderStatusWaitingPayment,
		ClientID: user.ID,
		Items:    []models.OrderItem{{ProductID: pen.ID, Quantity: 1, Price: 2}, {ProductID: pen.ID, Quantity: 1, Price: 2}},
	}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicateKey)
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGORMUserRepository(db)
	ctx := context.Background()

	admin, err := repo.FindOrCreateRole(ctx, "ROLE_ADMIN")
	require.NoError(t, err)
	again, err := repo.FindOrCreateRole(ctx, "ROLE_ADMIN")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	user := &models.User{Username: "ana", Email: "ana@example.com", Password: "hash", Roles: []models.Role{*admin}}
	require.NoError(t, repo.Create(ctx, user))

	byName, err := repo.GetByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.True(t, byName.HasRole("ROLE_ADMIN"))

	byEmail, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", byID.Username)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Create(ctx, &models.User{Username: "ana", Email: "other@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}
