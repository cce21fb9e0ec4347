package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"product-catalog/internal/database"
	"product-catalog/internal/domain"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
)

// ProductRepository defines the interface for product data access.
// Every method runs on the transaction carried by ctx when there is one.
type ProductRepository interface {
	// FindByID loads a product with its categories
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	// SearchByName pages through products whose name contains name,
	// ignoring case. Categories are not loaded.
	SearchByName(ctx context.Context, name string, page domain.PageRequest) (domain.Page[*domain.Product], error)
	// Save inserts a product with a zero ID or updates an existing one,
	// replacing its category associations, and returns the stored state
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	// DeleteByID returns ErrReferentialIntegrity when other rows still
	// reference the product
	DeleteByID(ctx context.Context, id int64) error
	// GetReference locks the product row and returns a handle carrying
	// only its ID, or ErrProductNotFound
	GetReference(ctx context.Context, id int64) (*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// columns the list endpoints may sort on
var productSortColumns = map[string]string{
	"id":    "id",
	"name":  "name",
	"price": "price",
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	conn := database.Conn(ctx, r.db)

	query := `
		SELECT id, name, description, price, img_url
		FROM products
		WHERE id = $1
	`

	product, err := scanProduct(conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	categories, err := r.findCategories(ctx, conn, id)
	if err != nil {
		return nil, err
	}
	product.Categories = categories

	return product, nil
}

func (r *productRepository) findCategories(ctx context.Context, conn database.Executor, productID int64) ([]*domain.Category, error) {
	query := `
		SELECT c.id, c.name
		FROM categories c
		INNER JOIN product_categories pc ON pc.category_id = c.id
		WHERE pc.product_id = $1
		ORDER BY c.id
	`

	rows, err := conn.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product categories: %w", err)
	}

	return categories, nil
}

func (r *productRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := database.Conn(ctx, r.db).
		QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}
	return exists, nil
}

func (r *productRepository) SearchByName(ctx context.Context, name string, page domain.PageRequest) (domain.Page[*domain.Product], error) {
	conn := database.Conn(ctx, r.db)
	page = page.Normalize()

	// An empty name matches every row
	pattern := escapeLike(name)

	countQuery := `
		SELECT COUNT(*)
		FROM products
		WHERE name ILIKE '%' || $1::text || '%' ESCAPE '\'
	`
	var total int64
	if err := conn.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		return domain.Page[*domain.Product]{}, fmt.Errorf("failed to count search results: %w", err)
	}

	searchQuery := fmt.Sprintf(`
		SELECT id, name, description, price, img_url
		FROM products
		WHERE name ILIKE '%%' || $1::text || '%%' ESCAPE '\'
		ORDER BY %s
		LIMIT $2 OFFSET $3
	`, orderByClause(page.Sort))

	rows, err := conn.QueryContext(ctx, searchQuery, pattern, page.Size, page.Offset())
	if err != nil {
		return domain.Page[*domain.Product]{}, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return domain.Page[*domain.Product]{}, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return domain.Page[*domain.Product]{}, fmt.Errorf("error iterating search results: %w", err)
	}

	return domain.NewPage(products, page, total), nil
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	conn := database.Conn(ctx, r.db)

	if product.ID == 0 {
		query := `
			INSERT INTO products (name, description, price, img_url)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		err := conn.QueryRowContext(ctx, query,
			product.Name,
			product.Description,
			product.Price,
			product.ImageURL,
		).Scan(&product.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create product: %w", err)
		}
	} else {
		query := `
			UPDATE products
			SET name = $2, description = $3, price = $4, img_url = $5
			WHERE id = $1
		`
		result, err := conn.ExecContext(ctx, query,
			product.ID,
			product.Name,
			product.Description,
			product.Price,
			product.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return nil, ErrProductNotFound
		}
	}

	if err := r.replaceCategories(ctx, conn, product); err != nil {
		return nil, err
	}

	return r.FindByID(ctx, product.ID)
}

// replaceCategories rewrites the association rows of the product from scratch
func (r *productRepository) replaceCategories(ctx context.Context, conn database.Executor, product *domain.Product) error {
	if _, err := conn.ExecContext(ctx, `DELETE FROM product_categories WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("failed to clear product categories: %w", err)
	}

	ids := product.CategoryIDs()
	if len(ids) == 0 {
		return nil
	}

	query := `
		INSERT INTO product_categories (product_id, category_id)
		SELECT $1, unnest($2::bigint[])
	`
	if _, err := conn.ExecContext(ctx, query, product.ID, ids); err != nil {
		if isForeignKeyViolation(err, "fk_product_categories_category") {
			return fmt.Errorf("%w: %v", ErrCategoryNotFound, ids)
		}
		return fmt.Errorf("failed to link product categories: %w", err)
	}

	return nil
}

func (r *productRepository) DeleteByID(ctx context.Context, id int64) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err, "") {
			return fmt.Errorf("%w: product %d is still referenced", ErrReferentialIntegrity, id)
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepository) GetReference(ctx context.Context, id int64) (*domain.Product, error) {
	var ref int64
	err := database.Conn(ctx, r.db).
		QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, id).
		Scan(&ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product reference: %w", err)
	}

	return &domain.Product{ID: ref, Categories: []*domain.Category{}}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// orderByClause builds an ORDER BY list from whitelisted columns only. The
// id column always closes the list so pages are stable.
func orderByClause(orders []domain.SortOrder) string {
	parts := make([]string, 0, len(orders)+1)
	seen := make(map[string]bool)

	for _, o := range orders {
		column, ok := productSortColumns[strings.ToLower(o.Property)]
		if !ok || seen[column] {
			continue
		}
		seen[column] = true

		direction := domain.SortAsc
		if o.Direction == domain.SortDesc {
			direction = domain.SortDesc
		}
		parts = append(parts, column+" "+string(direction))
	}

	if !seen["id"] {
		parts = append(parts, "id ASC")
	}

	return strings.Join(parts, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
