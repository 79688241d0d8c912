package products

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront/pkg/db/models"
	"github.com/storefrontlabs/storefront/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustCreateProduct(t *testing.T, db *gorm.DB, name string, stock int, createdAt time.Time) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.NewFromFloat(9.99),
		Stock:     stock,
		IsActive:  true,
		CreatedBy: "seller@example.com",
		UpdatedBy: "seller@example.com",
		CreatedAt: createdAt,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return product
}

func TestAdjustStockGuardsNegative(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := mustCreateProduct(t, db, "Widget", 5, time.Now())

	ok, err := repo.AdjustStock(ctx, product.ID, -3)
	if err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	if !ok {
		t.Fatal("expected decrement within stock to succeed")
	}

	ok, err = repo.AdjustStock(ctx, product.ID, -3)
	if err != nil {
		t.Fatalf("adjust stock past zero: %v", err)
	}
	if ok {
		t.Fatal("expected decrement past zero to be rejected")
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("expected stock 2 after guard, got %d", reloaded.Stock)
	}

	ok, err = repo.AdjustStock(ctx, product.ID, 4)
	if err != nil || !ok {
		t.Fatalf("restock failed: ok=%v err=%v", ok, err)
	}
}

func TestListPaginatesWithCursor(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		mustCreateProduct(t, db, fmt.Sprintf("Item %d", i), 10, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := repo.List(ctx, ListParams{Pagination: pagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	// limit+1 buffer row signals another page
	if len(first) != 3 {
		t.Fatalf("expected 3 rows (2 + buffer), got %d", len(first))
	}

	cursor := pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: first[1].CreatedAt,
		ID:        first[1].ID,
	})
	second, err := repo.List(ctx, ListParams{Pagination: pagination.Params{Limit: 2, Cursor: cursor}})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(second) == 0 {
		t.Fatal("expected rows on second page")
	}
	for _, row := range second {
		if row.ID == first[0].ID || row.ID == first[1].ID {
			t.Fatalf("page two repeated product %s", row.ID)
		}
	}
}

func TestListFiltersInactiveAndCategory(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := &models.Category{
		ID:        uuid.New(),
		Name:      "Gadgets",
		Slug:      "gadgets",
		CreatedBy: "admin@example.com",
		UpdatedBy: "admin@example.com",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	inCategory := mustCreateProduct(t, db, "Gadget", 1, time.Now())
	if err := db.Model(inCategory).UpdateColumn("category_id", category.ID).Error; err != nil {
		t.Fatalf("assign category: %v", err)
	}
	mustCreateProduct(t, db, "Other", 1, time.Now())

	hidden := mustCreateProduct(t, db, "Hidden", 1, time.Now())
	if err := db.Model(hidden).UpdateColumn("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	rows, err := repo.List(ctx, ListParams{CategoryID: &category.ID})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != inCategory.ID {
		t.Fatalf("expected only the categorized product, got %d rows", len(rows))
	}

	all, err := repo.List(ctx, ListParams{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	for _, row := range all {
		if row.ID == hidden.ID {
			t.Fatal("inactive product leaked into listing")
		}
	}
}

func TestLockByIDsLoadsOrdered(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	a := mustCreateProduct(t, db, "A", 1, time.Now())
	b := mustCreateProduct(t, db, "B", 2, time.Now())

	rows, err := repo.LockByIDs(ctx, []uuid.UUID{b.ID, a.ID})
	if err != nil {
		t.Fatalf("lock by ids: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID.String() > rows[1].ID.String() {
		t.Fatal("expected rows ordered by id")
	}

	empty, err := repo.LockByIDs(ctx, nil)
	if err != nil || empty != nil {
		t.Fatalf("expected nil result for empty input, got %v err %v", empty, err)
	}
}
