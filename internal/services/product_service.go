package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"storefront/internal/apperror"
	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/dto"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/pagination"
	"storefront/internal/repositories"
	"storefront/internal/validation"
)

const (
	msgProductNotFound  = "Product not found"
	msgResourceNotFound = "Resource not found"
	msgIntegrity        = "Referential integrity violation"
)

// ProductService owns the transaction boundary, authorization and error
// translation for catalog operations.
type ProductService struct {
	tx       repositories.Transactor
	repo     repositories.ProductRepository
	cache    cache.Cache
	cacheTTL time.Duration
	events   EventPublisher
	validate *validation.Validator
	log      *zap.Logger
}

// NewProductService creates a new ProductService. A nil cache disables
// caching and a nil publisher disables events.
func NewProductService(tx repositories.Transactor, repo repositories.ProductRepository, c cache.Cache, events EventPublisher, log *zap.Logger) *ProductService {
	if c == nil {
		c = cache.NewNoop()
	}
	return &ProductService{
		tx:       tx,
		repo:     repo,
		cache:    c,
		events:   events,
		validate: validation.New(),
		log:      log,
	}
}

// WithCacheTTL overrides the cache default TTL for product entries.
func (s *ProductService) WithCacheTTL(ttl time.Duration) *ProductService {
	s.cacheTTL = ttl
	return s
}

// FindByID returns the product with its categories. Cache fills are fenced
// by the key's version so a read racing an update cannot cache the old row.
func (s *ProductService) FindByID(ctx context.Context, id int64) (*dto.ProductDTO, error) {
	key := cache.ProductKey(id)
	var cached dto.ProductDTO
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.For(ctx, s.log).Warn("Product cache read failed", zap.Int64("product_id", id), zap.Error(err))
	}
	metrics.RecordCacheLookup(hit)
	if hit {
		return &cached, nil
	}

	// Taken before the load: an invalidation after this point rejects the fill.
	version, versionErr := s.cache.Version(ctx, key)
	if versionErr != nil {
		logger.For(ctx, s.log).Warn("Product cache version read failed", zap.Int64("product_id", id), zap.Error(versionErr))
	}

	var result dto.ProductDTO
	err = s.tx.Do(ctx, repositories.ReadOnly, func(ctx context.Context) error {
		product, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperror.NotFound(msgProductNotFound).WithError(err)
			}
			return err
		}
		result = dto.NewProductDTO(product)
		return nil
	})
	if err != nil {
		return nil, unexpected(err)
	}

	if versionErr == nil {
		stored, err := s.cache.SetIfVersion(ctx, key, version, result, s.cacheTTL)
		if err != nil {
			logger.For(ctx, s.log).Warn("Product cache write failed", zap.Int64("product_id", id), zap.Error(err))
		} else if !stored {
			logger.For(ctx, s.log).Debug("Product cache fill skipped, entry invalidated meanwhile", zap.Int64("product_id", id))
		}
	}
	return &result, nil
}

// SearchByProductName pages through products whose name contains name,
// ignoring case. Any failure is reported as not found.
func (s *ProductService) SearchByProductName(ctx context.Context, name string, page pagination.Pageable) (pagination.Page[dto.ProductMinDTO], error) {
	var result pagination.Page[dto.ProductMinDTO]
	err := s.tx.Do(ctx, repositories.ReadOnly, func(ctx context.Context) error {
		products, total, err := s.repo.SearchByName(ctx, name, page)
		if err != nil {
			return err
		}
		result = pagination.Map(pagination.NewPage(products, page, total), dto.NewProductMinDTO)
		return nil
	})
	if err != nil {
		logger.For(ctx, s.log).Error("Product search failed", zap.String("name", name), zap.Error(err))
		return pagination.Page[dto.ProductMinDTO]{}, apperror.NotFound(msgProductNotFound).WithError(err)
	}
	return result, nil
}

// Insert creates a product. Administrators only.
func (s *ProductService) Insert(ctx context.Context, d dto.ProductDTO) (*dto.ProductDTO, error) {
	if _, err := auth.Require(ctx, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(d); err != nil {
		return nil, err
	}

	var result dto.ProductDTO
	err := s.tx.Do(ctx, repositories.ReadWrite, func(ctx context.Context) error {
		product := &models.Product{}
		d.CopyTo(product)
		if err := s.repo.Create(ctx, product); err != nil {
			return translateWrite(err)
		}
		saved, err := s.repo.FindByID(ctx, product.ID)
		if err != nil {
			return err
		}
		result = dto.NewProductDTO(saved)
		return nil
	})
	metrics.RecordProductMutation("insert", err)
	if err != nil {
		return nil, unexpected(err)
	}

	logger.For(ctx, s.log).Info("Product created", zap.Int64("product_id", result.ID))
	publishEvent(ctx, s.log, s.events, EventProductCreated, result)
	return &result, nil
}

// Update overwrites the product's fields and replaces its category set.
// Administrators only.
func (s *ProductService) Update(ctx context.Context, id int64, d dto.ProductDTO) (*dto.ProductDTO, error) {
	if _, err := auth.Require(ctx, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(d); err != nil {
		return nil, err
	}

	var result dto.ProductDTO
	err := s.tx.Do(ctx, repositories.ReadWrite, func(ctx context.Context) error {
		product, err := s.repo.GetReference(ctx, id)
		if err != nil {
			return translateWrite(err)
		}
		d.CopyTo(product)
		if err := s.repo.Update(ctx, product); err != nil {
			return translateWrite(err)
		}
		saved, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		result = dto.NewProductDTO(saved)
		return nil
	})
	metrics.RecordProductMutation("update", err)
	if err != nil {
		return nil, unexpected(err)
	}

	s.evict(ctx, id)
	logger.For(ctx, s.log).Info("Product updated", zap.Int64("product_id", id))
	publishEvent(ctx, s.log, s.events, EventProductUpdated, result)
	return &result, nil
}

// Delete removes a product that no order references. It joins a caller's
// transaction when there is one. Administrators only.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if _, err := auth.Require(ctx, auth.RoleAdmin); err != nil {
		return err
	}

	err := s.tx.Do(ctx, repositories.Supports, func(ctx context.Context) error {
		exists, err := s.repo.ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return apperror.NotFound(msgResourceNotFound)
		}
		if err := s.repo.DeleteByID(ctx, id); err != nil {
			return translateWrite(err)
		}
		return nil
	})
	metrics.RecordProductMutation("delete", err)
	if err != nil {
		return unexpected(err)
	}

	s.evict(ctx, id)
	logger.For(ctx, s.log).Info("Product deleted", zap.Int64("product_id", id))
	publishEvent(ctx, s.log, s.events, EventProductDeleted, map[string]int64{"id": id})
	return nil
}

func (s *ProductService) evict(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, cache.ProductKey(id)); err != nil {
		logger.For(ctx, s.log).Warn("Product cache eviction failed", zap.Int64("product_id", id), zap.Error(err))
	}
}

// translateWrite maps repository sentinels raised by writes to typed errors.
func translateWrite(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperror.NotFound(msgResourceNotFound).WithError(err)
	case errors.Is(err, repositories.ErrIntegrityViolation):
		return apperror.Integrity(msgIntegrity).WithError(err)
	}
	return err
}
