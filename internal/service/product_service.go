package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-rescue/internal/domain"
	"food-rescue/internal/repository"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

var (
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

// CreateProductInput carries the validated fields for a new product.
// ExpirationDate is nil when the client did not provide one.
type CreateProductInput struct {
	Name           string
	OriginalPrice  decimal.Decimal
	DiscountPrice  decimal.Decimal
	Image          string
	Category       string
	Quantity       int
	ExpirationDate *time.Time
	Description    string
}

// ProductService defines the interface for product business logic
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, update *repository.ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	created     prometheus.Counter
	deleted     prometheus.Counter
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	created, deleted prometheus.Counter,
) ProductService {
	return &productService{
		productRepo: productRepo,
		created:     created,
		deleted:     deleted,
	}
}

// List returns every product, most recently created first
func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Create normalizes the input and inserts the product inside a single
// transaction. The transaction is released on every exit path: the deferred
// rollback is a no-op once Commit has succeeded.
func (s *productService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	product := &domain.Product{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(input.Name),
		OriginalPrice:  input.OriginalPrice,
		DiscountPrice:  input.DiscountPrice,
		Image:          strings.TrimSpace(input.Image),
		Category:       strings.TrimSpace(input.Category),
		Quantity:       input.Quantity,
		ExpirationDate: input.ExpirationDate,
		Description:    strings.TrimSpace(input.Description),
	}

	tx, err := s.productRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.created.Inc()
	return product, nil
}

// Update applies a partial update to the targeted product. A field present
// with a zero value counts as provided and is applied; only absent (nil)
// fields are skipped. String fields are trimmed, nothing is re-validated
// beyond type coercion.
func (s *productService) Update(ctx context.Context, id uuid.UUID, update *repository.ProductUpdate) (*domain.Product, error) {
	if update == nil || update.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	update.Name = trim(update.Name)
	update.Image = trim(update.Image)
	update.Category = trim(update.Category)
	update.Description = trim(update.Description)

	product, err := s.productRepo.Update(ctx, id, update)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Delete removes the targeted product and returns its last known state
func (s *productService) Delete(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	s.deleted.Inc()
	return product, nil
}
