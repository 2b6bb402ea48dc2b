package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-rescue/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductUpdate carries the mutable fields of a product for a partial update.
// Nil fields are left untouched; a non-nil pointer to a zero value is applied.
type ProductUpdate struct {
	Name           *string
	OriginalPrice  *decimal.Decimal
	DiscountPrice  *decimal.Decimal
	Image          *string
	Category       *string
	Quantity       *int
	ExpirationDate *time.Time
	Description    *string
}

// IsEmpty reports whether the update carries no fields at all.
func (u *ProductUpdate) IsEmpty() bool {
	return u.Name == nil &&
		u.OriginalPrice == nil &&
		u.DiscountPrice == nil &&
		u.Image == nil &&
		u.Category == nil &&
		u.Quantity == nil &&
		u.ExpirationDate == nil &&
		u.Description == nil
}

// ProductTx is a transaction scoped to a single product insert. Callers must
// end it with Commit or Rollback; Rollback after a successful Commit is a
// harmless no-op, so a deferred Rollback releases the transaction on every
// exit path.
type ProductTx interface {
	Create(ctx context.Context, product *domain.Product) error
	Commit() error
	Rollback() error
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context) ([]*domain.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, update *ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	BeginTx(ctx context.Context) (ProductTx, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, original_price, discount_price, image, category, quantity, expiration_date, description, created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.OriginalPrice,
		&product.DiscountPrice,
		&product.Image,
		&product.Category,
		&product.Quantity,
		&product.ExpirationDate,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

type productTx struct {
	tx *sql.Tx
}

// BeginTx opens a database transaction for a single product insert
func (r *productRepository) BeginTx(ctx context.Context) (ProductTx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &productTx{tx: tx}, nil
}

// Create inserts a new product within the transaction using parameterized
// queries. Creation and update timestamps are assigned by the database and
// scanned back into the product.
func (t *productTx) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, original_price, discount_price, image, category, quantity, expiration_date, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING created_at, updated_at
	`

	err := t.tx.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.OriginalPrice,
		product.DiscountPrice,
		product.Image,
		product.Category,
		product.Quantity,
		product.ExpirationDate,
		product.Description,
	).Scan(&product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (t *productTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *productTx) Rollback() error {
	return t.tx.Rollback()
}

// List retrieves every product ordered by creation time, newest first
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		ORDER BY created_at DESC
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE id = $1
	`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// Update applies the non-nil fields of the update to the targeted product and
// returns the post-update row. The SET clause is built only from the fields
// actually carried by the update, so untouched columns are never rewritten.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, update *ProductUpdate) (*domain.Product, error) {
	setClauses := []string{}
	args := []interface{}{id}
	argIndex := 2

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.Name != nil {
		addClause("name", *update.Name)
	}
	if update.OriginalPrice != nil {
		addClause("original_price", *update.OriginalPrice)
	}
	if update.DiscountPrice != nil {
		addClause("discount_price", *update.DiscountPrice)
	}
	if update.Image != nil {
		addClause("image", *update.Image)
	}
	if update.Category != nil {
		addClause("category", *update.Category)
	}
	if update.Quantity != nil {
		addClause("quantity", *update.Quantity)
	}
	if update.ExpirationDate != nil {
		addClause("expiration_date", *update.ExpirationDate)
	}
	if update.Description != nil {
		addClause("description", *update.Description)
	}

	if len(setClauses) == 0 {
		return nil, errors.New("no fields to update")
	}

	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(`
		UPDATE products
		SET %s
		WHERE id = $1
		RETURNING %s
	`, strings.Join(setClauses, ", "), productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Delete removes a product by ID and returns its last known state
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`
		DELETE FROM products
		WHERE id = $1
		RETURNING %s
	`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	return product, nil
}
