package repository

import (
	"context"
	"errors"

	"boardengine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	return &board, nil
}

func (r *BoardRepository) GetOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at").Find(&boards).Error
	return boards, err
}

func (r *BoardRepository) GetByType(ctx context.Context, boardType model.BoardType, ownerID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Where("board_type = ? AND owner_id = ?", boardType, ownerID).
		Order("created_at").
		Find(&boards).Error
	return boards, err
}

func (r *BoardRepository) Update(ctx context.Context, board *model.Board) error {
	result := r.db.WithContext(ctx).Save(board)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBoardNotFound
	}
	return nil
}

// Archive soft-archives a board. Boards referenced by items are never
// hard-deleted.
func (r *BoardRepository) Archive(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&model.Board{}).
		Where("id = ?", id).
		Update("is_archived", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBoardNotFound
	}
	return nil
}

// Delete removes a board only when no items reference it; otherwise the
// caller must archive instead.
func (r *BoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.BoardItem{}).Where("board_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrBoardHasItems
		}
		result := tx.Delete(&model.Board{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBoardNotFound
		}
		return nil
	})
}
