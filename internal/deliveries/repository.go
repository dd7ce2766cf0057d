package deliveries

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkcamara/graniteledger-backend/pkg/db/models"
	"github.com/mkcamara/graniteledger-backend/pkg/pagination"
)

// Repository wires delivery persistence.
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

// Create persists the delivery and any nested payments atomically.
func (r *Repository) Create(ctx context.Context, d *models.Delivery) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(d).Error
	})
}

// Update replaces the delivery row. Nested payments are not written here;
// payment mutations go through the payments repository.
func (r *Repository) Update(ctx context.Context, d *models.Delivery) error {
	return r.db.WithContext(ctx).
		Omit("Payments").
		Save(d).Error
}

// Delete removes the delivery. Payments cascade at the database level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Delivery{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID loads the delivery with its payments ordered by payment date.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var d models.Delivery
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date ASC, created_at ASC")
		}).
		First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns up to limit+1 rows after the cursor so callers can detect the
// next page.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]*models.Delivery, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date ASC, created_at ASC")
		})

	if query.OwnerID != nil {
		tx = tx.Where("user_id = ?", *query.OwnerID)
	}
	if query.Filters.From != nil {
		tx = tx.Where("delivery_date >= ?", *query.Filters.From)
	}
	if query.Filters.To != nil {
		tx = tx.Where("delivery_date <= ?", *query.Filters.To)
	}
	if client := strings.TrimSpace(query.Filters.Client); client != "" {
		tx = tx.Where("client ILIKE ?", "%"+client+"%")
	}
	if sandType := strings.TrimSpace(query.Filters.SandType); sandType != "" {
		tx = tx.Where("sand_type = ?", sandType)
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		tx = tx.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []*models.Delivery
	err = tx.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(query.Pagination.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll loads every delivery matching the filters without pagination, for
// statements and dashboard aggregates.
func (r *Repository) ListAll(ctx context.Context, ownerID *uuid.UUID, filters ListFilters) ([]*models.Delivery, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Preload("Payments")

	if ownerID != nil {
		tx = tx.Where("user_id = ?", *ownerID)
	}
	if filters.From != nil {
		tx = tx.Where("delivery_date >= ?", *filters.From)
	}
	if filters.To != nil {
		tx = tx.Where("delivery_date <= ?", *filters.To)
	}
	if client := strings.TrimSpace(filters.Client); client != "" {
		tx = tx.Where("client ILIKE ?", "%"+client+"%")
	}
	if sandType := strings.TrimSpace(filters.SandType); sandType != "" {
		tx = tx.Where("sand_type = ?", sandType)
	}

	var rows []*models.Delivery
	if err := tx.Order("delivery_date ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
