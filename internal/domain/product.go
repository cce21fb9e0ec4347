package domain

import (
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    string          `json:"img_url" db:"img_url"`
	Categories  []*Category     `json:"categories"`
}

// Category represents a product category
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ClearCategories drops every category association of the product
func (p *Product) ClearCategories() {
	p.Categories = []*Category{}
}

// AddCategory associates a category with the product. A category whose
// id is already present is ignored.
func (p *Product) AddCategory(category *Category) {
	if p.HasCategory(category.ID) {
		return
	}
	p.Categories = append(p.Categories, category)
}

// HasCategory reports whether the product is associated with the category id
func (p *Product) HasCategory(id int64) bool {
	for _, c := range p.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// CategoryIDs returns the ids of the associated categories in association order
func (p *Product) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}
