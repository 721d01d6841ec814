// Package activity exposes the item activity ledger: listing an item's
// history, posting comments into it, and rolling a single field back to
// a previously recorded value.
package activity

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"boardengine/internal/apperr"
	"boardengine/internal/model"
	"boardengine/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultListLimit = 50

type Ledger struct {
	updates *repository.UpdateRepository
	items   *repository.ItemRepository
	log     *zap.Logger
}

func NewLedger(updates *repository.UpdateRepository, items *repository.ItemRepository, log *zap.Logger) *Ledger {
	return &Ledger{updates: updates, items: items, log: log}
}

// ListByItem returns an item's events newest first.
func (l *Ledger) ListByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]model.ItemUpdate, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return l.updates.ListByItem(ctx, itemID, limit)
}

func (l *Ledger) GetByID(ctx context.Context, updateID uuid.UUID) (*model.ItemUpdate, error) {
	return l.updates.GetByID(ctx, updateID)
}

// ListRecent returns the newest events across all boards, for feed
// surfaces not scoped to one item or user.
func (l *Ledger) ListRecent(ctx context.Context, limit int) ([]model.ItemUpdate, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return l.updates.ListRecent(ctx, limit)
}

func (l *Ledger) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.ItemUpdate, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return l.updates.ListByUser(ctx, userID, limit)
}

// Comment appends a comment event to an item's ledger. The item must
// exist; comments on deleted items would otherwise dangle.
func (l *Ledger) Comment(ctx context.Context, itemID uuid.UUID, author uuid.UUID, content string) (*model.ItemUpdate, error) {
	if content == "" {
		return nil, apperr.Validation("comment content is required")
	}
	if _, err := l.items.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	update := &model.ItemUpdate{
		ItemID:     itemID,
		UserID:     &author,
		UpdateType: model.UpdateComment,
		Content:    &content,
	}
	if err := l.updates.Create(ctx, update); err != nil {
		return nil, err
	}
	return update, nil
}

// CanRollback reports whether an event is a reversible single-field
// change: the field is named, the prior value was recorded (an explicit
// empty string counts, an absent value does not), and the event is not a
// creation or deletion, which have no single-field inverse.
func CanRollback(u *model.ItemUpdate) bool {
	if u.FieldName == nil || u.OldValue == nil {
		return false
	}
	switch u.UpdateType {
	case model.UpdateCreated, model.UpdateDeleted:
		return false
	}
	return true
}

// Rollback re-applies an event's old value to its field through the
// ordinary update path. History is never rewritten: the rollback itself
// lands in the ledger as a new forward event whose new_value is the
// restored value, tagged with the id of the event it reverses.
func (l *Ledger) Rollback(ctx context.Context, updateID uuid.UUID, actor *uuid.UUID) (*model.BoardItem, error) {
	update, err := l.updates.GetByID(ctx, updateID)
	if err != nil {
		return nil, err
	}
	if !CanRollback(update) {
		return nil, apperr.Validation("this event cannot be rolled back")
	}

	field := *update.FieldName
	oldValue := *update.OldValue

	if field == "position" {
		return l.rollbackPosition(ctx, update, actor)
	}

	patch := repository.ItemPatch{
		Meta: map[string]any{"rollback_of": update.ID.String()},
	}
	switch field {
	case "name":
		patch.Name = &oldValue
	case "status":
		patch.Status = &oldValue
	case "priority":
		priority, err := strconv.Atoi(oldValue)
		if err != nil {
			return nil, apperr.Validation("recorded priority is not a number")
		}
		patch.Priority = &priority
	case "assigned_to":
		assignee, err := uuid.Parse(oldValue)
		if err != nil {
			return nil, apperr.Validation("recorded assignee is not a user id")
		}
		patch.AssignedTo = &assignee
	case "due_date":
		due, err := time.Parse(time.RFC3339, oldValue)
		if err != nil {
			return nil, apperr.Validation("recorded due date is not a timestamp")
		}
		patch.DueDate = &due
	default:
		// Anything else names a data column; the stored form is JSON and
		// decodes back to the identical value.
		patch.Data = map[string]any{field: decodeLedgerValue(oldValue)}
	}

	item, err := l.items.UpdateFields(ctx, update.ItemID, patch, actor)
	if err != nil {
		return nil, err
	}

	l.log.Info("rolled back field change",
		zap.String("item_id", update.ItemID.String()),
		zap.String("update_id", update.ID.String()),
		zap.String("field", field))
	return item, nil
}

// rollbackPosition restores an item's recorded position and group. The
// move path renormalizes positions itself, so the restore stays dense.
func (l *Ledger) rollbackPosition(ctx context.Context, update *model.ItemUpdate, actor *uuid.UUID) (*model.BoardItem, error) {
	position, err := strconv.Atoi(*update.OldValue)
	if err != nil {
		return nil, apperr.Validation("recorded position is not a number")
	}
	var groupID *uuid.UUID
	if raw, ok := update.Metadata["from_group_id"].(string); ok && raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperr.Validation("recorded group id is malformed")
		}
		groupID = &parsed
	}
	if err := l.items.Move(ctx, update.ItemID, groupID, position, actor); err != nil {
		return nil, err
	}
	return l.items.GetByID(ctx, update.ItemID)
}

// decodeLedgerValue reverses the ledger's JSON encoding of data column
// values. The raw-string fallback only fires on malformed rows; records
// written by this engine always decode.
func decodeLedgerValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
