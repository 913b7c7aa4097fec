package ledger

import (
	"context"

	"github.com/parttrack/parttrack-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists parts for the stock ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads one part. Returns gorm.ErrRecordNotFound when absent.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Part, error) {
	var part models.Part
	if err := r.db.WithContext(ctx).First(&part, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

// List returns all parts ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.Part, error) {
	var parts []models.Part
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

// Search matches parts whose id or name contains the query, case-insensitive.
func (r *Repository) Search(ctx context.Context, query string) ([]models.Part, error) {
	pattern := "%" + query + "%"
	var parts []models.Part
	err := r.db.WithContext(ctx).
		Where("LOWER(id) LIKE LOWER(?) OR LOWER(name) LIKE LOWER(?)", pattern, pattern).
		Order("id ASC").
		Find(&parts).
		Error
	if err != nil {
		return nil, err
	}
	return parts, nil
}

// BelowQuantity returns parts with quantity at or under the threshold.
func (r *Repository) BelowQuantity(ctx context.Context, threshold int) ([]models.Part, error) {
	var parts []models.Part
	err := r.db.WithContext(ctx).
		Where("quantity <= ?", threshold).
		Order("quantity ASC, id ASC").
		Find(&parts).
		Error
	if err != nil {
		return nil, err
	}
	return parts, nil
}

// Insert creates a new part row.
func (r *Repository) Insert(ctx context.Context, part *models.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

// Save persists all columns of an existing part.
func (r *Repository) Save(ctx context.Context, part *models.Part) error {
	return r.db.WithContext(ctx).Save(part).Error
}

// Delete removes a part row and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Part{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecrementOne atomically takes a single unit. The guard clause makes the
// decrement and the zero-floor check one statement, so two concurrent takes
// of the last unit cannot both succeed.
func (r *Repository) DecrementOne(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Part{}).
		Where("id = ? AND quantity > 0", id).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IncrementBy adds amount units and reports whether the part existed.
func (r *Repository) IncrementBy(ctx context.Context, id string, amount int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Part{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetAllQuantities forces every part to the same quantity and returns the
// number of parts touched.
func (r *Repository) SetAllQuantities(ctx context.Context, quantity int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Part{}).
		Where("1 = 1").
		UpdateColumn("quantity", quantity)
	return res.RowsAffected, res.Error
}
