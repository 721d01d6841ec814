package schema

import (
	"context"
	"fmt"

	"boardengine/internal/apperr"
	"boardengine/internal/model"
)

// ColumnSource supplies the persisted column configuration. Implemented
// by repository.ColumnRepository.
type ColumnSource interface {
	GetByBoardType(ctx context.Context, boardType model.BoardType) ([]model.BoardColumn, error)
}

// Registry answers "what columns does this board type have". It is inert
// configuration data: adding a column type means extending the closed
// enum and its value handler, never this type.
type Registry struct {
	columns ColumnSource
}

func NewRegistry(columns ColumnSource) *Registry {
	return &Registry{columns: columns}
}

// ColumnsFor returns the ordered column list of a board type.
func (r *Registry) ColumnsFor(ctx context.Context, boardType model.BoardType) ([]model.BoardColumn, error) {
	if !boardType.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown board type %q", boardType))
	}
	return r.columns.GetByBoardType(ctx, boardType)
}

// Resolve finds one column of a board type by its column id.
func (r *Registry) Resolve(ctx context.Context, boardType model.BoardType, columnID string) (*model.BoardColumn, error) {
	cols, err := r.ColumnsFor(ctx, boardType)
	if err != nil {
		return nil, err
	}
	for i := range cols {
		if cols[i].ColumnID == columnID {
			return &cols[i], nil
		}
	}
	return nil, apperr.NotFound(fmt.Sprintf("column %q is not defined for board type %q", columnID, boardType))
}
