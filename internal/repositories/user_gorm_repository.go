package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := conn(ctx, r.db).Omit("Roles.*").Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

// GetByUsername retrieves a user and its roles by username.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

// GetByEmail retrieves a user and its roles by email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByID retrieves a user and its roles by ID.
func (r *GORMUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GORMUserRepository) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Preload("Roles").First(&user, query, arg).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by %v: %w", arg, translate(err))
	}
	return &user, nil
}

func (r *GORMUserRepository) FindOrCreateRole(ctx context.Context, authority string) (*models.Role, error) {
	role := models.Role{Authority: authority}
	if err := conn(ctx, r.db).Where(models.Role{Authority: authority}).FirstOrCreate(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve role %s: %w", authority, translate(err))
	}
	return &role, nil
}
