package repository_test

import (
	"context"
	"testing"

	"boardengine/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestUpdateFields_OneEventPerChangedField(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewItemRepository(gormDB)

	itemID := uuid.New()
	boardID := uuid.New()
	actorID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "board_items" WHERE id = .* LIMIT \$2`).
		WithArgs(itemID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "position", "name", "status", "priority"}).
			AddRow(itemID.String(), boardID.String(), 1, "Pump station check", "pending", 0))
	mock.ExpectExec(`UPDATE "board_items" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Three changed fields land as three ledger rows in one batch insert,
	// each carrying its own before/after pair.
	mock.ExpectQuery(`INSERT INTO "item_updates"`).
		WithArgs(
			itemID, actorID, "updated", "name", nil, "Pump station check", "Pump station recheck", nil, nil, sqlmock.AnyArg(),
			itemID, actorID, "status_changed", "status", nil, "pending", "working_on_it", nil, nil, sqlmock.AnyArg(),
			itemID, actorID, "updated", "priority", nil, "0", "2", nil, nil, sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow(uuid.New().String()).
			AddRow(uuid.New().String()).
			AddRow(uuid.New().String()))
	mock.ExpectCommit()

	patch := repository.ItemPatch{
		Name:     strPtr("Pump station recheck"),
		Status:   strPtr("working_on_it"),
		Priority: intPtr(2),
	}

	// Act
	item, err := repo.UpdateFields(context.Background(), itemID, patch, &actorID)

	// Assert
	assert.NoError(t, err)
	if assert.NotNil(t, item) {
		assert.Equal(t, "Pump station recheck", item.Name)
		assert.Equal(t, "working_on_it", item.Status)
		assert.Equal(t, 2, item.Priority)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFields_NoChangeWritesNothing(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewItemRepository(gormDB)

	itemID := uuid.New()
	boardID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "board_items" WHERE id = .* LIMIT \$2`).
		WithArgs(itemID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "position", "name", "status", "priority"}).
			AddRow(itemID.String(), boardID.String(), 1, "Pump station check", "pending", 0))
	mock.ExpectCommit()

	patch := repository.ItemPatch{Name: strPtr("Pump station check")}

	// Act
	item, err := repo.UpdateFields(context.Background(), itemID, patch, nil)

	// Assert
	assert.NoError(t, err)
	if assert.NotNil(t, item) {
		assert.Equal(t, "Pump station check", item.Name)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
