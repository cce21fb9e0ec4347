package dto

import (
	"product-catalog/internal/domain"

	"github.com/shopspring/decimal"
)

// CategoryDTO is a category reference. Name is filled on read paths and
// ignored on input.
type CategoryDTO struct {
	ID   int64  `json:"id" validate:"required,gt=0"`
	Name string `json:"name,omitempty"`
}

// Prices are stored as DECIMAL(12,2)
const PriceScale = 2

// MaxPrice is the exclusive upper bound of a storable price
var MaxPrice = decimal.New(1, 10)

// StorablePrice reports whether price survives the round trip through the
// products table unchanged
func StorablePrice(price decimal.Decimal) bool {
	return price.Equal(price.Truncate(PriceScale)) && price.Abs().LessThan(MaxPrice)
}

// ProductDTO is the full boundary view of a product
type ProductDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name" validate:"required,min=3,max=80"`
	Description string          `json:"description" validate:"required,min=10"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	ImgURL      string          `json:"imgUrl" validate:"omitempty,url"`
	Categories  []CategoryDTO   `json:"categories" validate:"dive"`
}

// ProductMinDTO is the list view of a product, without category detail
type ProductMinDTO struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	ImgURL string          `json:"imgUrl"`
}

// NewCategoryDTO maps a category entity
func NewCategoryDTO(c *domain.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name}
}

// NewProductDTO maps a product entity including its categories
func NewProductDTO(p *domain.Product) ProductDTO {
	categories := make([]CategoryDTO, 0, len(p.Categories))
	for _, c := range p.Categories {
		categories = append(categories, NewCategoryDTO(c))
	}

	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImgURL:      p.ImageURL,
		Categories:  categories,
	}
}

// NewProductMinDTO maps a product entity to its list view
func NewProductMinDTO(p *domain.Product) ProductMinDTO {
	return ProductMinDTO{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price,
		ImgURL: p.ImageURL,
	}
}
