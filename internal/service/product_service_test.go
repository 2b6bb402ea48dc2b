package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-rescue/internal/domain"
	"food-rescue/internal/repository"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	products   map[uuid.UUID]*domain.Product
	failCreate bool
	failCommit bool
	lastUpdate *repository.ProductUpdate
	rollbacks  int
	commits    int
}

func newStubRepository() *stubRepository {
	return &stubRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (s *stubRepository) List(ctx context.Context) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (s *stubRepository) Update(ctx context.Context, id uuid.UUID, update *repository.ProductUpdate) (*domain.Product, error) {
	s.lastUpdate = update
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (s *stubRepository) Delete(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	delete(s.products, id)
	return p, nil
}

func (s *stubRepository) BeginTx(ctx context.Context) (repository.ProductTx, error) {
	return &stubTx{repo: s}, nil
}

type stubTx struct {
	repo   *stubRepository
	staged *domain.Product
	ended  bool
}

func (t *stubTx) Create(ctx context.Context, product *domain.Product) error {
	if t.repo.failCreate {
		return errors.New("insert failed")
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	t.staged = product
	return nil
}

func (t *stubTx) Commit() error {
	if t.repo.failCommit {
		return errors.New("commit failed")
	}
	if t.staged != nil {
		t.repo.products[t.staged.ID] = t.staged
	}
	t.ended = true
	t.repo.commits++
	return nil
}

func (t *stubTx) Rollback() error {
	if !t.ended {
		t.staged = nil
		t.ended = true
		t.repo.rollbacks++
	}
	return nil
}

func newTestService(repo repository.ProductRepository) (ProductService, prometheus.Counter, prometheus.Counter) {
	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "svc_test_created_total"})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{Name: "svc_test_deleted_total"})
	return NewProductService(repo, created, deleted), created, deleted
}

func validInput() CreateProductInput {
	return CreateProductInput{
		Name:          "  Bread  ",
		OriginalPrice: decimal.NewFromInt(5),
		DiscountPrice: decimal.NewFromInt(2),
		Image:         " x.png ",
		Category:      " Bakery ",
		Quantity:      3,
		Description:   "  day old  ",
	}
}

func TestCreate_NormalizesAndCommits(t *testing.T) {
	repo := newStubRepository()
	svc, created, _ := newTestService(repo)

	product, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "Bread", product.Name)
	assert.Equal(t, "x.png", product.Image)
	assert.Equal(t, "Bakery", product.Category)
	assert.Equal(t, "day old", product.Description)
	assert.NotEqual(t, uuid.Nil, product.ID)
	assert.Nil(t, product.ExpirationDate)

	assert.Equal(t, 1, repo.commits)
	assert.Len(t, repo.products, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(created))
}

func TestCreate_InsertFaultRollsBack(t *testing.T) {
	repo := newStubRepository()
	repo.failCreate = true
	svc, created, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), validInput())
	require.Error(t, err)

	assert.Equal(t, 1, repo.rollbacks, "transaction must be released on the failure path")
	assert.Equal(t, 0, repo.commits)
	assert.Empty(t, repo.products, "no partial write may be visible")
	assert.Equal(t, float64(0), testutil.ToFloat64(created))
}

func TestCreate_CommitFaultSurfaces(t *testing.T) {
	repo := newStubRepository()
	repo.failCommit = true
	svc, _, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), validInput())
	require.Error(t, err)
	assert.Empty(t, repo.products)
}

func TestUpdate_EmptyFieldSet(t *testing.T) {
	repo := newStubRepository()
	svc, _, _ := newTestService(repo)

	_, err := svc.Update(context.Background(), uuid.New(), &repository.ProductUpdate{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	assert.Nil(t, repo.lastUpdate, "empty updates must not reach the store")
}

func TestUpdate_TrimsStringFields(t *testing.T) {
	repo := newStubRepository()
	id := uuid.New()
	repo.products[id] = &domain.Product{ID: id, Name: "Bread"}
	svc, _, _ := newTestService(repo)

	name := "  Baguette  "
	zero := 0
	_, err := svc.Update(context.Background(), id, &repository.ProductUpdate{
		Name:     &name,
		Quantity: &zero,
	})
	require.NoError(t, err)

	require.NotNil(t, repo.lastUpdate)
	assert.Equal(t, "Baguette", *repo.lastUpdate.Name)
	require.NotNil(t, repo.lastUpdate.Quantity, "an explicit zero counts as provided")
	assert.Equal(t, 0, *repo.lastUpdate.Quantity)
}

func TestUpdate_NotFound(t *testing.T) {
	repo := newStubRepository()
	svc, _, _ := newTestService(repo)

	name := "Baguette"
	_, err := svc.Update(context.Background(), uuid.New(), &repository.ProductUpdate{Name: &name})
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestDelete_ReturnsLastKnownState(t *testing.T) {
	repo := newStubRepository()
	id := uuid.New()
	repo.products[id] = &domain.Product{ID: id, Name: "Bread", Quantity: 3}
	svc, _, deleted := newTestService(repo)

	product, err := svc.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Bread", product.Name)
	assert.Equal(t, 3, product.Quantity)
	assert.Empty(t, repo.products)
	assert.Equal(t, float64(1), testutil.ToFloat64(deleted))
}

func TestDelete_NotFound(t *testing.T) {
	repo := newStubRepository()
	svc, _, deleted := newTestService(repo)

	_, err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
	assert.Equal(t, float64(0), testutil.ToFloat64(deleted))
}
