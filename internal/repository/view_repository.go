package repository

import (
	"context"
	"errors"

	"boardengine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ViewRepository struct {
	db *gorm.DB
}

func NewViewRepository(db *gorm.DB) *ViewRepository {
	return &ViewRepository{db: db}
}

// Create saves a view; when it is flagged default, any previous default
// of the same (user, board_type) loses the flag in the same transaction.
func (r *ViewRepository) Create(ctx context.Context, view *model.BoardView) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if view.IsDefault {
			if err := clearDefaultTx(tx, view.UserID, view.BoardType); err != nil {
				return err
			}
		}
		return tx.Create(view).Error
	})
}

func (r *ViewRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.BoardView, error) {
	var view model.BoardView
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&view).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrViewNotFound
		}
		return nil, err
	}
	return &view, nil
}

// GetForUser returns the user's own views of a board type plus views
// shared by others.
func (r *ViewRepository) GetForUser(ctx context.Context, userID uuid.UUID, boardType model.BoardType) ([]model.BoardView, error) {
	var views []model.BoardView
	err := r.db.WithContext(ctx).
		Where("board_type = ?", boardType).
		Where("user_id = ? OR is_shared = true", userID).
		Order("created_at").
		Find(&views).Error
	return views, err
}

func (r *ViewRepository) Update(ctx context.Context, view *model.BoardView) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if view.IsDefault {
			if err := clearDefaultTx(tx, view.UserID, view.BoardType); err != nil {
				return err
			}
		}
		result := tx.Save(view)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrViewNotFound
		}
		return nil
	})
}

func (r *ViewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.BoardView{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrViewNotFound
	}
	return nil
}

func clearDefaultTx(tx *gorm.DB, userID uuid.UUID, boardType model.BoardType) error {
	return tx.Model(&model.BoardView{}).
		Where("user_id = ? AND board_type = ? AND is_default = true", userID, boardType).
		Update("is_default", false).Error
}
