package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mkcamara/graniteledger-backend/pkg/config"
	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
)

// Repository persists the single-row application settings.
type Repository struct {
	db   *gorm.DB
	seed models.AppSettings
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, seed: models.DefaultAppSettings()}
}

// NewRepositoryWithDefaults seeds the first-boot settings row from the
// environment instead of the compiled defaults.
func NewRepositoryWithDefaults(db *gorm.DB, cfg config.FinanceConfig) *Repository {
	seed := models.DefaultAppSettings()
	seed.DefaultCommissionRate = cfg.DefaultCommissionRate
	seed.DefaultOtherFees = cfg.DefaultOtherFees
	if cfg.CurrencyCode != "" {
		seed.CurrencyCode = cfg.CurrencyCode
	}
	return &Repository{db: db, seed: seed}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx, seed: r.seed}
}

// Get loads the settings row, seeding defaults on first read.
func (r *Repository) Get(ctx context.Context) (*models.AppSettings, error) {
	var s models.AppSettings
	err := r.db.WithContext(ctx).First(&s, "id = ?", models.AppSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = r.seed
		if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
			return nil, err
		}
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the settings row back.
func (r *Repository) Save(ctx context.Context, s *models.AppSettings) error {
	s.ID = models.AppSettingsID
	return r.db.WithContext(ctx).Save(s).Error
}
