package service

import (
	"context"
	"errors"

	"product-catalog/internal/database"
	"product-catalog/internal/domain"
	"product-catalog/internal/dto"
	"product-catalog/internal/repository"

	"go.uber.org/zap"
)

// ProductService defines the interface for product catalog operations.
//
// Concurrent updates of the same product are not ordered here: the last
// transaction to commit wins.
type ProductService interface {
	FindByID(ctx context.Context, id int64) (*dto.ProductDTO, error)
	FindAll(ctx context.Context, name string, page domain.PageRequest) (domain.Page[dto.ProductMinDTO], error)
	Insert(ctx context.Context, product dto.ProductDTO) (*dto.ProductDTO, error)
	Update(ctx context.Context, id int64, product dto.ProductDTO) (*dto.ProductDTO, error)
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	tx           database.Transactor
	logger       *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	tx database.Transactor,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		tx:           tx,
		logger:       logger,
	}
}

// FindByID returns the product with its categories
func (s *productService) FindByID(ctx context.Context, id int64) (*dto.ProductDTO, error) {
	var result dto.ProductDTO

	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		product, err := s.productRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return NewResourceNotFoundError(MsgResourceNotFound)
			}
			return err
		}

		result = dto.NewProductDTO(product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// FindAll pages through products whose name contains name, ignoring case
func (s *productService) FindAll(ctx context.Context, name string, page domain.PageRequest) (domain.Page[dto.ProductMinDTO], error) {
	var result domain.Page[dto.ProductMinDTO]

	err := s.tx.WithinReadOnlyTx(ctx, func(ctx context.Context) error {
		products, err := s.productRepo.SearchByName(ctx, name, page)
		if err != nil {
			return err
		}

		result = domain.MapPage(products, dto.NewProductMinDTO)
		return nil
	})

	return result, err
}

// Insert stores a new product; the store assigns its ID
func (s *productService) Insert(ctx context.Context, product dto.ProductDTO) (*dto.ProductDTO, error) {
	var result dto.ProductDTO

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		entity := &domain.Product{}
		s.copyToEntity(product, entity)

		saved, err := s.productRepo.Save(ctx, entity)
		if err != nil {
			return s.translateSaveError(err)
		}

		result = dto.NewProductDTO(saved)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product created", zap.Int64("product_id", result.ID))
	return &result, nil
}

// Update overwrites the product fields and replaces its category set
func (s *productService) Update(ctx context.Context, id int64, product dto.ProductDTO) (*dto.ProductDTO, error) {
	var result dto.ProductDTO

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		entity, err := s.productRepo.GetReference(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				s.logger.Debug("Product reference not found", zap.Int64("product_id", id))
				return NewResourceNotFoundError(MsgResourceNotFound)
			}
			return err
		}

		s.copyToEntity(product, entity)

		saved, err := s.productRepo.Save(ctx, entity)
		if err != nil {
			return s.translateSaveError(err)
		}

		result = dto.NewProductDTO(saved)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", zap.Int64("product_id", id))
	return &result, nil
}

// Delete removes an unreferenced product
func (s *productService) Delete(ctx context.Context, id int64) error {
	return s.tx.WithinSupportsTx(ctx, func(ctx context.Context) error {
		exists, err := s.productRepo.ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return NewResourceNotFoundError(MsgResourceNotFound)
		}

		if err := s.productRepo.DeleteByID(ctx, id); err != nil {
			switch {
			case errors.Is(err, repository.ErrReferentialIntegrity):
				s.logger.Debug("Product delete blocked", zap.Int64("product_id", id), zap.Error(err))
				return NewDatabaseError(MsgReferentialIntegrity)
			case errors.Is(err, repository.ErrProductNotFound):
				return NewResourceNotFoundError(MsgResourceNotFound)
			default:
				return err
			}
		}

		s.logger.Info("Product deleted", zap.Int64("product_id", id))
		return nil
	})
}

// copyToEntity overwrites the scalar fields of entity and rebuilds its
// category set from the references in product, in order
func (s *productService) copyToEntity(product dto.ProductDTO, entity *domain.Product) {
	entity.Name = product.Name
	entity.Description = product.Description
	entity.Price = product.Price
	entity.ImageURL = product.ImgURL

	entity.ClearCategories()
	for _, category := range product.Categories {
		entity.AddCategory(s.categoryRepo.GetReference(category.ID))
	}
}

func (s *productService) translateSaveError(err error) error {
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		s.logger.Debug("Product references unknown category", zap.Error(err))
		return NewResourceNotFoundError(MsgResourceNotFound)
	case errors.Is(err, repository.ErrProductNotFound):
		return NewResourceNotFoundError(MsgResourceNotFound)
	default:
		return err
	}
}
