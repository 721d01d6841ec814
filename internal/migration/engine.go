package migration

import (
	"context"
	"time"

	"boardengine/internal/apperr"
	"boardengine/internal/model"
	"boardengine/internal/repository"
	"boardengine/internal/schema"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Engine carries an item from a source board onto a target board. The
// target write is idempotent and the source is never cleaned up before
// the target write is confirmed, so a crash mid-move is recovered by
// retrying.
type Engine struct {
	boards   *repository.BoardRepository
	items    *repository.ItemRepository
	registry *schema.Registry
	log      *zap.Logger
}

func NewEngine(boards *repository.BoardRepository, items *repository.ItemRepository, registry *schema.Registry, log *zap.Logger) *Engine {
	return &Engine{boards: boards, items: items, registry: registry, log: log}
}

// MappingPreview is what a client needs to confirm or correct a move
// before running it.
type MappingPreview struct {
	SourceColumns []model.BoardColumn `json:"source_columns"`
	TargetColumns []model.BoardColumn `json:"target_columns"`
	AutoMapped    map[string]string   `json:"auto_mapped"`
	NeedsMapping  []string            `json:"needs_mapping"`
	SameBoardType bool                `json:"same_board_type"`
}

// PreviewMapping computes the automatic column mapping between two
// boards without moving anything.
func (e *Engine) PreviewMapping(ctx context.Context, sourceBoardID, targetBoardID uuid.UUID) (*MappingPreview, error) {
	sourceBoard, err := e.boards.GetByID(ctx, sourceBoardID)
	if err != nil {
		return nil, err
	}
	targetBoard, err := e.boards.GetByID(ctx, targetBoardID)
	if err != nil {
		return nil, err
	}

	sourceColumns, err := e.registry.ColumnsFor(ctx, sourceBoard.BoardType)
	if err != nil {
		return nil, err
	}
	targetColumns, err := e.registry.ColumnsFor(ctx, targetBoard.BoardType)
	if err != nil {
		return nil, err
	}

	mapping := BuildColumnMapping(sourceColumns, targetColumns)
	return &MappingPreview{
		SourceColumns: sourceColumns,
		TargetColumns: targetColumns,
		AutoMapped:    mapping.AutoMapped,
		NeedsMapping:  mapping.NeedsMapping,
		SameBoardType: sourceBoard.BoardType == targetBoard.BoardType,
	}, nil
}

// MoveOptions tunes one move. A nil ColumnMapping means "use the
// automatic mapping"; DiscardUnmapped opts out of preserving unmapped
// fields in the move metadata.
type MoveOptions struct {
	ColumnMapping   map[string]string
	DiscardUnmapped bool
}

// MoveItem carries one item onto the target board, reconciling schemas
// when the board types differ.
func (e *Engine) MoveItem(ctx context.Context, itemID, targetBoardID uuid.UUID, opts MoveOptions, actor *uuid.UUID) (*model.BoardItem, error) {
	item, err := e.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.BoardID == targetBoardID {
		return nil, apperr.Validation("item is already on the target board")
	}

	sourceBoard, err := e.boards.GetByID(ctx, item.BoardID)
	if err != nil {
		return nil, err
	}
	targetBoard, err := e.boards.GetByID(ctx, targetBoardID)
	if err != nil {
		return nil, err
	}
	if targetBoard.IsArchived {
		return nil, apperr.Conflict("target board is archived")
	}

	sameBoardType := sourceBoard.BoardType == targetBoard.BoardType

	var mappingUsed map[string]string
	newData := datatypes.JSONMap{}
	var unmapped map[string]any

	if sameBoardType {
		// Identical schemas: values carry over verbatim, no mapping was
		// necessary and the metadata says so with explicit nulls.
		for k, v := range item.Data {
			newData[k] = v
		}
	} else {
		mappingUsed = opts.ColumnMapping
		if mappingUsed == nil {
			sourceColumns, err := e.registry.ColumnsFor(ctx, sourceBoard.BoardType)
			if err != nil {
				return nil, err
			}
			targetColumns, err := e.registry.ColumnsFor(ctx, targetBoard.BoardType)
			if err != nil {
				return nil, err
			}
			mappingUsed = BuildColumnMapping(sourceColumns, targetColumns).AutoMapped
		}

		mapped, unmappedData := ApplyColumnMapping(item.Data, mappingUsed, !opts.DiscardUnmapped)
		for k, v := range mapped {
			newData[k] = v
		}
		if len(unmappedData) > 0 {
			unmapped = unmappedData
		}
	}

	meta := model.MoveMetadata{
		MovedFromBoardID:   sourceBoard.ID,
		MovedFromBoardName: sourceBoard.Name,
		MovedAt:            time.Now().UTC(),
		ColumnMappingUsed:  mappingUsed,
		UnmappedData:       unmapped,
	}

	moved, err := e.items.MoveToBoard(ctx, itemID, targetBoard, newData, meta, actor)
	if err != nil {
		return nil, err
	}

	e.log.Info("item moved between boards",
		zap.String("item_id", itemID.String()),
		zap.String("source_board", sourceBoard.ID.String()),
		zap.String("target_board", targetBoard.ID.String()),
		zap.Bool("same_board_type", sameBoardType),
		zap.Int("unmapped_fields", len(unmapped)))

	return moved, nil
}

// MoveFailure reports one item of a bulk move that could not be carried
// over.
type MoveFailure struct {
	ItemID uuid.UUID `json:"item_id"`
	Reason string    `json:"reason"`
}

// BulkResult is the outcome of a bulk move; failures never roll back the
// items already moved.
type BulkResult struct {
	Moved  []model.BoardItem `json:"moved"`
	Failed []MoveFailure     `json:"failed"`
}

// MoveItems moves items one at a time, honoring cancellation between
// items and aggregating per-item failures.
func (e *Engine) MoveItems(ctx context.Context, itemIDs []uuid.UUID, targetBoardID uuid.UUID, opts MoveOptions, actor *uuid.UUID) (*BulkResult, error) {
	result := &BulkResult{}
	var errs *multierror.Error

	for _, itemID := range itemIDs {
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, err)
			break
		}
		moved, err := e.MoveItem(ctx, itemID, targetBoardID, opts, actor)
		if err != nil {
			result.Failed = append(result.Failed, MoveFailure{ItemID: itemID, Reason: apperr.Reason(err)})
			errs = multierror.Append(errs, err)
			continue
		}
		result.Moved = append(result.Moved, *moved)
	}
	return result, errs.ErrorOrNil()
}
