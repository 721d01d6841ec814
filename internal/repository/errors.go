package repository

import "boardengine/internal/apperr"

// Common repository errors. Not-found conditions are always surfaced,
// never folded into empty results.
var (
	ErrBoardNotFound  = apperr.NotFound("board not found")
	ErrColumnNotFound = apperr.NotFound("column not found")
	ErrGroupNotFound  = apperr.NotFound("group not found")
	ErrItemNotFound   = apperr.NotFound("item not found")
	ErrUpdateNotFound = apperr.NotFound("activity entry not found")
	ErrViewNotFound   = apperr.NotFound("view not found")

	// ErrDuplicateColumn guards the (board_type, column_id) uniqueness
	// invariant.
	ErrDuplicateColumn = apperr.Conflict("a column with this id already exists for the board type")

	// ErrColumnTypeLocked rejects a column_type change once items hold
	// typed data under the column.
	ErrColumnTypeLocked = apperr.Conflict("column type cannot change while items reference it with typed data")

	// ErrBoardHasItems rejects hard deletion of a board that items still
	// reference; such boards can only be archived.
	ErrBoardHasItems = apperr.Conflict("board still has items and can only be archived")
)
