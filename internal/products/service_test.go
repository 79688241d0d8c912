package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront/pkg/errors"
)

type stubProductRepo struct {
	byID map[uuid.UUID]*models.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: map[uuid.UUID]*models.Product{}}
}

func (s *stubProductRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubProductRepo) Create(ctx context.Context, product *models.Product) error {
	s.byID[product.ID] = product
	return nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (s *stubProductRepo) List(ctx context.Context, params ListParams) ([]models.Product, error) {
	out := make([]models.Product, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubProductRepo) Update(ctx context.Context, product *models.Product) error {
	s.byID[product.ID] = product
	return nil
}

func (s *stubProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *stubProductRepo) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return nil, nil
}

func (s *stubProductRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
	return true, nil
}

type stubCategoryChecker struct {
	known map[uuid.UUID]bool
}

func (s *stubCategoryChecker) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if s.known[id] {
		return &models.Category{ID: id}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func buildProductService(t *testing.T) (Service, *stubProductRepo, *stubCategoryChecker) {
	t.Helper()
	repo := newStubProductRepo()
	categories := &stubCategoryChecker{known: map[uuid.UUID]bool{}}
	svc, err := NewService(repo, categories)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, categories
}

var seller = Actor{Email: "seller@example.com"}

func TestCreateProductRoundsPriceAndStampsActor(t *testing.T) {
	svc, repo, _ := buildProductService(t)

	dto, err := svc.Create(context.Background(), seller, CreateProductRequest{
		Name:  "  Widget  ",
		Price: decimal.RequireFromString("19.999"),
		Stock: 5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Name != "Widget" {
		t.Fatalf("unexpected name %q", dto.Name)
	}
	if !dto.Price.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("expected price rounded to 20.00, got %s", dto.Price)
	}
	if dto.CreatedBy != seller.Email {
		t.Fatalf("unexpected creator %q", dto.CreatedBy)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected one persisted product, got %d", len(repo.byID))
	}
}

func TestCreateProductRejectsNegativePriceAndUnknownCategory(t *testing.T) {
	svc, _, _ := buildProductService(t)

	_, err := svc.Create(context.Background(), seller, CreateProductRequest{
		Name:  "Widget",
		Price: decimal.NewFromInt(-1),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for price, got %v", err)
	}

	missing := uuid.New()
	_, err = svc.Create(context.Background(), seller, CreateProductRequest{
		Name:       "Widget",
		Price:      decimal.NewFromInt(1),
		CategoryID: &missing,
	})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for category, got %v", err)
	}
}

func TestUpdateProductEnforcesCreatorOrAdmin(t *testing.T) {
	svc, repo, _ := buildProductService(t)

	created, err := svc.Create(context.Background(), seller, CreateProductRequest{
		Name:  "Widget",
		Price: decimal.NewFromInt(10),
		Stock: 5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "Gadget"
	_, err = svc.Update(context.Background(), Actor{Email: "intruder@example.com"}, created.ID, UpdateProductRequest{Name: &newName})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}

	updated, err := svc.Update(context.Background(), Actor{Email: "admin@example.com", IsAdmin: true}, created.ID, UpdateProductRequest{Name: &newName})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Name != "Gadget" {
		t.Fatalf("unexpected name %q", updated.Name)
	}
	if repo.byID[created.ID].UpdatedBy != "admin@example.com" {
		t.Fatalf("expected updated_by stamp, got %q", repo.byID[created.ID].UpdatedBy)
	}

	_, err = svc.Update(context.Background(), seller, created.ID, UpdateProductRequest{Name: &newName})
	if err != nil {
		t.Fatalf("creator update: %v", err)
	}
}

func TestDeleteProductEnforcesAuthorizationAndExistence(t *testing.T) {
	svc, _, _ := buildProductService(t)

	err := svc.Delete(context.Background(), seller, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	created, err := svc.Create(context.Background(), seller, CreateProductRequest{
		Name:  "Widget",
		Price: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.Delete(context.Background(), Actor{Email: "intruder@example.com"}, created.ID)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if err := svc.Delete(context.Background(), seller, created.ID); err != nil {
		t.Fatalf("creator delete: %v", err)
	}
}
