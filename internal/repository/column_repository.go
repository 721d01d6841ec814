package repository

import (
	"context"
	"errors"
	"strings"

	"boardengine/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ColumnRepository struct {
	db *gorm.DB
}

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

func (r *ColumnRepository) Create(ctx context.Context, column *model.BoardColumn) error {
	err := r.db.WithContext(ctx).Create(column).Error
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateColumn
	}
	return err
}

func (r *ColumnRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.BoardColumn, error) {
	var column model.BoardColumn
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, err
	}
	return &column, nil
}

// GetByBoardType returns the full ordered column set of a board type.
func (r *ColumnRepository) GetByBoardType(ctx context.Context, boardType model.BoardType) ([]model.BoardColumn, error) {
	var columns []model.BoardColumn
	err := r.db.WithContext(ctx).
		Where("board_type = ?", boardType).
		Order("position").
		Find(&columns).Error
	return columns, err
}

// Update persists display changes of a column. Changing ColumnType is
// rejected once any item holds typed data under the column; display name,
// width, visibility and position stay freely editable.
func (r *ColumnRepository) Update(ctx context.Context, column *model.BoardColumn) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.BoardColumn
		if err := tx.Where("id = ?", column.ID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrColumnNotFound
			}
			return err
		}
		if existing.ColumnType != column.ColumnType {
			referenced, err := columnDataExists(tx, existing.BoardType, existing.ColumnID)
			if err != nil {
				return err
			}
			if referenced {
				return ErrColumnTypeLocked
			}
		}
		return tx.Save(column).Error
	})
}

func (r *ColumnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.BoardColumn{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrColumnNotFound
	}
	return nil
}

func (r *ColumnRepository) GetMaxPosition(ctx context.Context, boardType model.BoardType) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.BoardColumn{}).
		Select("COALESCE(MAX(position), 0) as max").
		Where("board_type = ?", boardType).
		Scan(&maxPosition).Error
	return maxPosition.Max, err
}

func (r *ColumnRepository) Reorder(ctx context.Context, columns []model.BoardColumn) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, column := range columns {
			if err := tx.Model(&model.BoardColumn{}).Where("id = ?", column.ID).
				Update("position", column.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedDefaults inserts the default column set of a board type when none
// exists yet. Safe to run at every startup.
func (r *ColumnRepository) SeedDefaults(ctx context.Context, boardType model.BoardType, defaults []model.BoardColumn) error {
	if len(defaults) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.BoardColumn{}).Where("board_type = ?", boardType).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&defaults).Error
	})
}

// columnDataExists reports whether any item of a board of this type holds
// a value under the column id.
func columnDataExists(tx *gorm.DB, boardType model.BoardType, columnID string) (bool, error) {
	var count int64
	err := tx.Model(&model.BoardItem{}).
		Joins("JOIN boards ON boards.id = board_items.board_id").
		Where("boards.board_type = ?", boardType).
		Where(datatypes.JSONQuery("data").HasKey(columnID)).
		Count(&count).Error
	return count > 0, err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// pgx surfaces SQLSTATE 23505 in the message when the translated
	// error is unavailable.
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key")
}
