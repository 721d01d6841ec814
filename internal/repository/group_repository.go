package repository

import (
	"context"
	"errors"

	"boardengine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, group *model.BoardGroup) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if group.Position == 0 {
			var maxPosition struct {
				Max int
			}
			if err := tx.Model(&model.BoardGroup{}).
				Select("COALESCE(MAX(position), 0) as max").
				Where("board_id = ?", group.BoardID).
				Scan(&maxPosition).Error; err != nil {
				return err
			}
			group.Position = maxPosition.Max + 1
		}
		return tx.Create(group).Error
	})
}

func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.BoardGroup, error) {
	var group model.BoardGroup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.BoardGroup, error) {
	var groups []model.BoardGroup
	err := r.db.WithContext(ctx).Where("board_id = ?", boardID).Order("position").Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) Update(ctx context.Context, group *model.BoardGroup) error {
	result := r.db.WithContext(ctx).Save(group)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// Delete removes a group and, in the same transaction, reassigns member
// items to reassignTo (or clears their membership when reassignTo is
// nil). Items are never cascade-deleted with their group.
func (r *GroupRepository) Delete(ctx context.Context, id uuid.UUID, reassignTo *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group model.BoardGroup
		if err := tx.Where("id = ?", id).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return err
		}

		if reassignTo != nil {
			var target model.BoardGroup
			if err := tx.Where("id = ? AND board_id = ?", *reassignTo, group.BoardID).First(&target).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrGroupNotFound
				}
				return err
			}
		}

		if err := tx.Model(&model.BoardItem{}).
			Where("group_id = ?", id).
			Update("group_id", reassignTo).Error; err != nil {
			return err
		}

		return tx.Delete(&model.BoardGroup{}, "id = ?", id).Error
	})
}
