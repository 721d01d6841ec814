package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"boardengine/internal/apperr"
	"boardengine/internal/model"
	"boardengine/internal/schema"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ItemRepository owns board items and their ordering invariants. Every
// mutation writes its activity events in the same transaction as the data
// change, so no caller can observe changed data without its event.
type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// ItemPatch carries partial update semantics: only non-nil fields (and
// supplied Data keys) change. Clear flags distinguish "set to null" from
// "leave alone".
type ItemPatch struct {
	Name          *string
	Status        *string
	Priority      *int
	AssignedTo    *uuid.UUID
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
	Data          map[string]any
	// Meta is stamped into every event this patch emits, on top of any
	// per-event metadata.
	Meta map[string]any
}

func (r *ItemRepository) Create(ctx context.Context, item *model.BoardItem, actor *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createItemTx(tx, item, actor)
	})
}

func createItemTx(tx *gorm.DB, item *model.BoardItem, actor *uuid.UUID) error {
	if item.Status == "" {
		item.Status = model.StatusDefault
	}
	maxPos, err := maxPositionTx(tx, item.BoardID, item.GroupID)
	if err != nil {
		return err
	}
	item.Position = maxPos + 1

	if err := validateItemData(tx, item.BoardID, item.Data); err != nil {
		return err
	}

	if err := tx.Create(item).Error; err != nil {
		return err
	}

	event := &model.ItemUpdate{
		ItemID:     item.ID,
		UserID:     actor,
		UpdateType: model.UpdateCreated,
		NewValue:   strPtr(item.Name),
	}
	return tx.Create(event).Error
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.BoardItem, error) {
	var item model.BoardItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.BoardItem, error) {
	var items []model.BoardItem
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("position").
		Find(&items).Error
	return items, err
}

func (r *ItemRepository) SearchByName(ctx context.Context, boardID uuid.UUID, query string, limit int) ([]model.BoardItem, error) {
	var items []model.BoardItem
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Where("name ILIKE ?", "%"+query+"%").
		Order("position").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// UpdateFields applies a partial patch and records one activity event per
// changed field.
func (r *ItemRepository) UpdateFields(ctx context.Context, itemID uuid.UUID, patch ItemPatch, actor *uuid.UUID) (*model.BoardItem, error) {
	var updated *model.BoardItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.BoardItem
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		var events []model.ItemUpdate

		if patch.Name != nil && *patch.Name != item.Name {
			events = append(events, fieldEvent(item.ID, actor, model.UpdateUpdated, "name", strPtr(item.Name), strPtr(*patch.Name)))
			item.Name = *patch.Name
		}

		if patch.Status != nil && *patch.Status != item.Status {
			eventType := model.UpdateStatusChanged
			if *patch.Status == model.StatusDone {
				eventType = model.UpdateCompleted
			}
			events = append(events, fieldEvent(item.ID, actor, eventType, "status", strPtr(item.Status), strPtr(*patch.Status)))
			item.Status = *patch.Status
		}

		if patch.Priority != nil && *patch.Priority != item.Priority {
			events = append(events, fieldEvent(item.ID, actor, model.UpdateUpdated, "priority",
				strPtr(fmt.Sprintf("%d", item.Priority)), strPtr(fmt.Sprintf("%d", *patch.Priority))))
			item.Priority = *patch.Priority
		}

		if patch.ClearAssignee && item.AssignedTo != nil {
			events = append(events, fieldEvent(item.ID, actor, model.UpdateReassigned, "assigned_to",
				strPtr(item.AssignedTo.String()), nil))
			item.AssignedTo = nil
		} else if patch.AssignedTo != nil && (item.AssignedTo == nil || *item.AssignedTo != *patch.AssignedTo) {
			eventType := model.UpdateAssigned
			var oldValue *string
			if item.AssignedTo != nil {
				eventType = model.UpdateReassigned
				oldValue = strPtr(item.AssignedTo.String())
			}
			events = append(events, fieldEvent(item.ID, actor, eventType, "assigned_to",
				oldValue, strPtr(patch.AssignedTo.String())))
			assignee := *patch.AssignedTo
			item.AssignedTo = &assignee
		}

		if patch.ClearDueDate && item.DueDate != nil {
			events = append(events, fieldEvent(item.ID, actor, model.UpdateUpdated, "due_date",
				strPtr(item.DueDate.Format(time.RFC3339)), nil))
			item.DueDate = nil
		} else if patch.DueDate != nil && (item.DueDate == nil || !item.DueDate.Equal(*patch.DueDate)) {
			var oldValue *string
			if item.DueDate != nil {
				oldValue = strPtr(item.DueDate.Format(time.RFC3339))
			}
			events = append(events, fieldEvent(item.ID, actor, model.UpdateUpdated, "due_date",
				oldValue, strPtr(patch.DueDate.Format(time.RFC3339))))
			due := *patch.DueDate
			item.DueDate = &due
		}

		if len(patch.Data) > 0 {
			columns, err := boardColumnsTx(tx, item.BoardID)
			if err != nil {
				return err
			}
			if item.Data == nil {
				item.Data = datatypes.JSONMap{}
			}
			for columnID, value := range patch.Data {
				if col, ok := columns[columnID]; ok {
					if err := schema.ValidateValue(col.ColumnType, value); err != nil {
						return apperr.Wrap(apperr.KindValidation,
							fmt.Sprintf("value for column %q: %s", columnID, apperr.Reason(err)), err)
					}
				}
				oldValue, hadOld := item.Data[columnID]
				if hadOld && valueEqual(oldValue, value) {
					continue
				}
				event := fieldEvent(item.ID, actor, model.UpdateColumnChanged, columnID,
					jsonValue(oldValue, hadOld), jsonValue(value, true))
				columnID := columnID
				event.ColumnID = &columnID
				if col, ok := columns[columnID]; ok {
					event.Metadata = datatypes.JSONMap{"column_name": col.ColumnName}
				}
				events = append(events, event)
				item.Data[columnID] = value
			}
		}

		if len(events) == 0 {
			updated = &item
			return nil
		}

		if len(patch.Meta) > 0 {
			for i := range events {
				if events[i].Metadata == nil {
					events[i].Metadata = datatypes.JSONMap{}
				}
				for k, v := range patch.Meta {
					events[i].Metadata[k] = v
				}
			}
		}

		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		if err := tx.Create(&events).Error; err != nil {
			return err
		}
		updated = &item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Move places an item into a (possibly different) group at a new
// position, keeping positions dense and unique within each
// (board_id, group_id) scope.
func (r *ItemRepository) Move(ctx context.Context, itemID uuid.UUID, targetGroupID *uuid.UUID, newPosition int, actor *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.BoardItem
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		oldGroupID := item.GroupID
		oldPosition := item.Position
		sameGroup := uuidPtrEqual(oldGroupID, targetGroupID)

		if sameGroup && oldPosition == newPosition {
			return nil
		}

		if !sameGroup {
			// Close the gap left behind in the old group.
			if err := groupScope(tx, item.BoardID, oldGroupID).
				Where("position > ?", oldPosition).
				Update("position", gorm.Expr("position - 1")).Error; err != nil {
				return err
			}
			// Make room in the target group.
			if err := groupScope(tx, item.BoardID, targetGroupID).
				Where("position >= ?", newPosition).
				Update("position", gorm.Expr("position + 1")).Error; err != nil {
				return err
			}
			item.GroupID = targetGroupID
			item.Position = newPosition
		} else if oldPosition < newPosition {
			if err := groupScope(tx, item.BoardID, targetGroupID).
				Where("position > ? AND position <= ?", oldPosition, newPosition).
				Update("position", gorm.Expr("position - 1")).Error; err != nil {
				return err
			}
			item.Position = newPosition
		} else {
			if err := groupScope(tx, item.BoardID, targetGroupID).
				Where("position >= ? AND position < ?", newPosition, oldPosition).
				Update("position", gorm.Expr("position + 1")).Error; err != nil {
				return err
			}
			item.Position = newPosition
		}

		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		event := fieldEvent(item.ID, actor, model.UpdateUpdated, "position",
			strPtr(fmt.Sprintf("%d", oldPosition)), strPtr(fmt.Sprintf("%d", item.Position)))
		event.Metadata = datatypes.JSONMap{
			"from_group_id": uuidPtrString(oldGroupID),
			"to_group_id":   uuidPtrString(targetGroupID),
		}
		return tx.Create(event).Error
	})
}

// Delete hard-deletes an item. The deleted event is written before the
// row disappears, inside the same transaction.
func (r *ItemRepository) Delete(ctx context.Context, itemID uuid.UUID, actor *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.BoardItem
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		event := &model.ItemUpdate{
			ItemID:     item.ID,
			UserID:     actor,
			UpdateType: model.UpdateDeleted,
			OldValue:   strPtr(item.Name),
		}
		if err := tx.Create(event).Error; err != nil {
			return err
		}

		return tx.Delete(&model.BoardItem{}, "id = ?", itemID).Error
	})
}

// Duplicate copies an item (optionally onto another board) at the end of
// its target position scope.
func (r *ItemRepository) Duplicate(ctx context.Context, itemID uuid.UUID, newName string, targetBoardID *uuid.UUID, actor *uuid.UUID) (*model.BoardItem, error) {
	var copy *model.BoardItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original model.BoardItem
		if err := tx.Where("id = ?", itemID).First(&original).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		boardID := original.BoardID
		groupID := original.GroupID
		if targetBoardID != nil && *targetBoardID != original.BoardID {
			boardID = *targetBoardID
			groupID = nil
		}

		name := newName
		if name == "" {
			name = original.Name + " (copy)"
		}

		data := datatypes.JSONMap{}
		for k, v := range original.Data {
			data[k] = v
		}

		copy = &model.BoardItem{
			BoardID:    boardID,
			GroupID:    groupID,
			Name:       name,
			Status:     original.Status,
			Priority:   original.Priority,
			AssignedTo: original.AssignedTo,
			DueDate:    original.DueDate,
			Data:       data,
			CreatedBy:  actor,
		}
		return createItemTx(tx, copy, actor)
	})
	if err != nil {
		return nil, err
	}
	return copy, nil
}

// MoveToBoard rewrites an item onto a target board with already-mapped
// data and migration provenance, and records the moved_to_board event.
// The write is idempotent on (source item, target board): retrying a move
// whose write already committed returns the item unchanged.
func (r *ItemRepository) MoveToBoard(ctx context.Context, itemID uuid.UUID, target *model.Board, newData datatypes.JSONMap, meta model.MoveMetadata, actor *uuid.UUID) (*model.BoardItem, error) {
	var moved *model.BoardItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.BoardItem
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		if item.BoardID == target.ID {
			var existing model.MoveMetadata
			if len(item.MoveMetadata) > 0 && json.Unmarshal(item.MoveMetadata, &existing) == nil &&
				existing.MovedFromBoardID == meta.MovedFromBoardID {
				moved = &item
				return nil
			}
		}

		maxPos, err := maxPositionTx(tx, target.ID, nil)
		if err != nil {
			return err
		}

		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return err
		}

		if item.OriginalBoardID == nil {
			source := meta.MovedFromBoardID
			item.OriginalBoardID = &source
		}
		item.BoardID = target.ID
		item.GroupID = nil
		item.Position = maxPos + 1
		item.Data = newData
		item.MoveMetadata = datatypes.JSON(metaJSON)

		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		event := &model.ItemUpdate{
			ItemID:     item.ID,
			UserID:     actor,
			UpdateType: model.UpdateMovedToBoard,
			Metadata: datatypes.JSONMap{
				"source_board_id":   meta.MovedFromBoardID.String(),
				"source_board_name": meta.MovedFromBoardName,
				"target_board_id":   target.ID.String(),
				"target_board_name": target.Name,
			},
		}
		if err := tx.Create(event).Error; err != nil {
			return err
		}

		moved = &item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func maxPositionTx(tx *gorm.DB, boardID uuid.UUID, groupID *uuid.UUID) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := groupScope(tx, boardID, groupID).
		Select("COALESCE(MAX(position), 0) as max").
		Scan(&maxPosition).Error
	return maxPosition.Max, err
}

func groupScope(tx *gorm.DB, boardID uuid.UUID, groupID *uuid.UUID) *gorm.DB {
	scope := tx.Model(&model.BoardItem{}).Where("board_id = ?", boardID)
	if groupID == nil {
		return scope.Where("group_id IS NULL")
	}
	return scope.Where("group_id = ?", *groupID)
}

// validateItemData type-checks data values against the board's column
// schema. Keys without a declared column pass through untouched; the bag
// is duck-typed beyond the declared schema.
func validateItemData(tx *gorm.DB, boardID uuid.UUID, data datatypes.JSONMap) error {
	if len(data) == 0 {
		return nil
	}
	columns, err := boardColumnsTx(tx, boardID)
	if err != nil {
		return err
	}
	for columnID, value := range data {
		col, ok := columns[columnID]
		if !ok {
			continue
		}
		if err := schema.ValidateValue(col.ColumnType, value); err != nil {
			return apperr.Wrap(apperr.KindValidation,
				fmt.Sprintf("value for column %q: %s", columnID, apperr.Reason(err)), err)
		}
	}
	return nil
}

func boardColumnsTx(tx *gorm.DB, boardID uuid.UUID) (map[string]model.BoardColumn, error) {
	var board model.Board
	if err := tx.Where("id = ?", boardID).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	var columns []model.BoardColumn
	if err := tx.Where("board_type = ?", board.BoardType).Find(&columns).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]model.BoardColumn, len(columns))
	for _, col := range columns {
		byID[col.ColumnID] = col
	}
	return byID, nil
}

func fieldEvent(itemID uuid.UUID, actor *uuid.UUID, eventType model.UpdateType, field string, oldValue, newValue *string) model.ItemUpdate {
	fieldName := field
	return model.ItemUpdate{
		ItemID:     itemID,
		UserID:     actor,
		UpdateType: eventType,
		FieldName:  &fieldName,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
}

func strPtr(s string) *string { return &s }

// jsonValue serializes a data value for the ledger in JSON form, strings
// included, so a rollback decodes the identical value back (a stored
// `"123"` stays the string "123", never the number). Absent values stay
// nil so rollback eligibility can tell "was empty" from "was not there".
func jsonValue(v any, present bool) *string {
	if !present {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return strPtr(fmt.Sprintf("%v", v))
	}
	return strPtr(string(raw))
}

func valueEqual(a, b any) bool {
	rawA, errA := json.Marshal(a)
	rawB, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(rawA) == string(rawB)
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func uuidPtrString(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
