package repository

import (
	"context"
	"errors"

	"boardengine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpdateRepository reads and appends activity ledger entries. The ledger
// is append-only: there is deliberately no Update or Delete here.
type UpdateRepository struct {
	db *gorm.DB
}

func NewUpdateRepository(db *gorm.DB) *UpdateRepository {
	return &UpdateRepository{db: db}
}

func (r *UpdateRepository) Create(ctx context.Context, update *model.ItemUpdate) error {
	return r.db.WithContext(ctx).Create(update).Error
}

func (r *UpdateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ItemUpdate, error) {
	var update model.ItemUpdate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&update).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUpdateNotFound
		}
		return nil, err
	}
	return &update, nil
}

// ListByItem returns an item's events newest first. Within one item the
// order matches the commit order of the mutations.
func (r *UpdateRepository) ListByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]model.ItemUpdate, error) {
	var updates []model.ItemUpdate
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Limit(limit).
		Find(&updates).Error
	return updates, err
}

func (r *UpdateRepository) ListRecent(ctx context.Context, limit int) ([]model.ItemUpdate, error) {
	var updates []model.ItemUpdate
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&updates).Error
	return updates, err
}

func (r *UpdateRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.ItemUpdate, error) {
	var updates []model.ItemUpdate
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&updates).Error
	return updates, err
}
