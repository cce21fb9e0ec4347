package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"product-catalog/internal/domain"
	"product-catalog/internal/repository"
)

// memoryStore backs the mock repositories. referenced marks products that
// an order line item points at.
type memoryStore struct {
	products   map[int64]*domain.Product
	categories map[int64]*domain.Category
	referenced map[int64]bool
	nextID     int64
}

func newMemoryStore(categories ...*domain.Category) *memoryStore {
	s := &memoryStore{
		products:   make(map[int64]*domain.Product),
		categories: make(map[int64]*domain.Category),
		referenced: make(map[int64]bool),
		nextID:     1,
	}
	for _, c := range categories {
		s.categories[c.ID] = c
	}
	return s
}

func cloneProduct(p *domain.Product) *domain.Product {
	cp := *p
	cp.Categories = make([]*domain.Category, 0, len(p.Categories))
	for _, c := range p.Categories {
		cc := *c
		cp.Categories = append(cp.Categories, &cc)
	}
	return &cp
}

func (s *memoryStore) snapshot() map[int64]*domain.Product {
	snap := make(map[int64]*domain.Product, len(s.products))
	for id, p := range s.products {
		snap[id] = cloneProduct(p)
	}
	return snap
}

type mockProductRepository struct {
	store *memoryStore
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := m.store.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (m *mockProductRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, ok := m.store.products[id]
	return ok, nil
}

func (m *mockProductRepository) SearchByName(ctx context.Context, name string, page domain.PageRequest) (domain.Page[*domain.Product], error) {
	page = page.Normalize()
	needle := strings.ToLower(name)

	matches := []*domain.Product{}
	for _, p := range m.store.products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matches = append(matches, cloneProduct(p))
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })

	total := int64(len(matches))
	start := page.Offset()
	if start > len(matches) {
		start = len(matches)
	}
	end := start + page.Size
	if end > len(matches) {
		end = len(matches)
	}

	return domain.NewPage(matches[start:end], page, total), nil
}

func (m *mockProductRepository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	resolved := make([]*domain.Category, 0, len(product.Categories))
	for _, ref := range product.Categories {
		c, ok := m.store.categories[ref.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", repository.ErrCategoryNotFound, ref.ID)
		}
		cc := *c
		resolved = append(resolved, &cc)
	}
	sort.Slice(resolved, func(i, j int) bool { return resolved[i].ID < resolved[j].ID })

	if product.ID == 0 {
		product.ID = m.store.nextID
		m.store.nextID++
	} else if _, ok := m.store.products[product.ID]; !ok {
		return nil, repository.ErrProductNotFound
	}

	stored := cloneProduct(product)
	stored.Categories = resolved
	m.store.products[stored.ID] = stored

	return cloneProduct(stored), nil
}

func (m *mockProductRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, ok := m.store.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	if m.store.referenced[id] {
		return fmt.Errorf("%w: product %d is still referenced", repository.ErrReferentialIntegrity, id)
	}
	delete(m.store.products, id)
	return nil
}

func (m *mockProductRepository) GetReference(ctx context.Context, id int64) (*domain.Product, error) {
	if _, ok := m.store.products[id]; !ok {
		return nil, repository.ErrProductNotFound
	}
	return &domain.Product{ID: id, Categories: []*domain.Category{}}, nil
}

type mockCategoryRepository struct {
	store *memoryStore
}

func (m *mockCategoryRepository) GetReference(id int64) *domain.Category {
	return &domain.Category{ID: id}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, c := range m.store.categories {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	category.ID = int64(len(m.store.categories) + 1)
	m.store.categories[category.ID] = &domain.Category{ID: category.ID, Name: category.Name}
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	for _, c := range m.store.categories {
		cc := *c
		categories = append(categories, &cc)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, ok := m.store.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	cc := *c
	return &cc, nil
}

// mockTransactor restores the product snapshot when a read-write unit of
// work fails and records which scopes were requested
type mockTransactor struct {
	store *memoryStore
	modes []string
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.modes = append(m.modes, "rw")
	snap := m.store.snapshot()
	nextID := m.store.nextID
	if err := fn(ctx); err != nil {
		m.store.products = snap
		m.store.nextID = nextID
		return err
	}
	return nil
}

func (m *mockTransactor) WithinReadOnlyTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.modes = append(m.modes, "ro")
	return fn(ctx)
}

func (m *mockTransactor) WithinSupportsTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.modes = append(m.modes, "supports")
	return fn(ctx)
}
