package products

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefrontlabs/storefront/pkg/db/models"
	"github.com/storefrontlabs/storefront/pkg/pagination"
)

// Repository defines persistence operations for product listings. Stock
// mutation goes through AdjustStock so the non-negative guard lives in one
// place.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, params ListParams) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Pagination.Limit))

	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}

	cursor, err := pagination.ParseCursor(params.Pagination.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var out []models.Product
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LockByIDs loads the referenced products under FOR UPDATE, ordered by id so
// concurrent checkouts acquire locks in the same order. sqlite has no row
// locks; its single-writer model makes the plain read equivalent.
func (r *repository) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ordered := append([]uuid.UUID(nil), ids...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].String() < ordered[j].String()
	})

	query := r.db.WithContext(ctx).Order("id asc")
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var out []models.Product
	if err := query.Find(&out, "id IN ?", ordered).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// AdjustStock applies a guarded stock delta. Returns false when the guard
// rejects the write (stock would go negative), without mutating the row.
func (r *repository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
