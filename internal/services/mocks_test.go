package services_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/pagination"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"
)

// fakeTx runs fn directly and records the options of every boundary.
type fakeTx struct {
	calls []repositories.TxOptions
}

func (f *fakeTx) Do(ctx context.Context, opts repositories.TxOptions, fn func(ctx context.Context) error) error {
	f.calls = append(f.calls, opts)
	return fn(ctx)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetReference(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) SearchByName(ctx context.Context, name string, page pagination.Pageable) ([]models.Product, int64, error) {
	args := m.Called(ctx, name, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindOrCreateRole(ctx context.Context, authority string) (*models.Role, error) {
	args := m.Called(ctx, authority)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

// MockCache is a mock implementation of cache.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, value any) (bool, error) {
	args := m.Called(ctx, key, value)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Version(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) SetIfVersion(ctx context.Context, key string, version int64, value any, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, version, value, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCache) Close() error {
	return m.Called().Error(0)
}

// memoryCache is a versioned in-process cache with the same fill semantics as
// the redis implementation.
type memoryCache struct {
	mu       sync.Mutex
	values   map[string][]byte
	versions map[string]int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}, versions: map[string]int64{}}
}

func (c *memoryCache) Get(_ context.Context, key string, value any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, value)
}

func (c *memoryCache) Version(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[key], nil
}

func (c *memoryCache) SetIfVersion(_ context.Context, key string, version int64, value any, _ time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[key] != version {
		return false, nil
	}
	c.values[key] = data
	return true, nil
}

func (c *memoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[key]++
	delete(c.values, key)
	return nil
}

func (c *memoryCache) Close() error { return nil }

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(event rabbitmq.Event) error {
	return m.Called(event).Error(0)
}

func adminCtx() context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{
		UserID:   1,
		Username: "admin",
		Roles:    []string{auth.RoleClient, auth.RoleAdmin},
	})
}

func clientCtx(userID int64) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{
		UserID:   userID,
		Username: "client",
		Roles:    []string{auth.RoleClient},
	})
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(e rabbitmq.Event) bool { return e.Type == eventType })
}
