package services

import (
	"context"

	"storefront/internal/dto"
	"storefront/internal/repositories"
)

// CategoryService handles read access to categories.
type CategoryService struct {
	tx   repositories.Transactor
	repo repositories.CategoryRepository
}

func NewCategoryService(tx repositories.Transactor, repo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{tx: tx, repo: repo}
}

func (s *CategoryService) FindAll(ctx context.Context) ([]dto.CategoryDTO, error) {
	var result []dto.CategoryDTO
	err := s.tx.Do(ctx, repositories.ReadOnly, func(ctx context.Context) error {
		categories, err := s.repo.FindAll(ctx)
		if err != nil {
			return err
		}
		result = make([]dto.CategoryDTO, 0, len(categories))
		for _, c := range categories {
			result = append(result, dto.NewCategoryDTO(c))
		}
		return nil
	})
	if err != nil {
		return nil, unexpected(err)
	}
	return result, nil
}
