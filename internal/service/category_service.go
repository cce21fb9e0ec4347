package service

import (
	"context"
	"errors"

	"product-catalog/internal/database"
	"product-catalog/internal/domain"
	"product-catalog/internal/dto"
	"product-catalog/internal/repository"
)

var ErrCategoryAlreadyExists = errors.New("category already exists")

// CategoryService exposes the category list products are assigned from
type CategoryService interface {
	FindAll(ctx context.Context) ([]dto.CategoryDTO, error)
	Insert(ctx context.Context, name string) (*dto.CategoryDTO, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	tx           database.Transactor
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository, tx database.Transactor) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		tx:           tx,
	}
}

func (s *categoryService) FindAll(ctx context.Context) ([]dto.CategoryDTO, error) {
	var result []dto.CategoryDTO

	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		categories, err := s.categoryRepo.List(ctx)
		if err != nil {
			return err
		}

		result = make([]dto.CategoryDTO, 0, len(categories))
		for _, c := range categories {
			result = append(result, dto.NewCategoryDTO(c))
		}
		return nil
	})

	return result, err
}

func (s *categoryService) Insert(ctx context.Context, name string) (*dto.CategoryDTO, error) {
	category := &domain.Category{Name: name}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.categoryRepo.Create(ctx, category); err != nil {
			if errors.Is(err, repository.ErrCategoryAlreadyExists) {
				return ErrCategoryAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := dto.NewCategoryDTO(category)
	return &result, nil
}
