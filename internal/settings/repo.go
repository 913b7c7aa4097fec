package settings

import (
	"context"

	"github.com/parttrack/parttrack-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the single system settings row.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get loads the settings row, creating an empty one on first access.
func (r *Repository) Get(ctx context.Context) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).First(&setting, "id = ?", models.SettingsRowID).Error
	if err == gorm.ErrRecordNotFound {
		setting = models.Setting{ID: models.SettingsRowID}
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&setting).
			Error; err != nil {
			return nil, err
		}
		return &setting, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Save persists all columns of the settings row.
func (r *Repository) Save(ctx context.Context, setting *models.Setting) error {
	setting.ID = models.SettingsRowID
	return r.db.WithContext(ctx).Save(setting).Error
}
