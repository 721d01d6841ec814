package repository_test

import (
	"context"
	"testing"

	"boardengine/internal/model"
	"boardengine/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	assert.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_Create(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	userID := uuid.New()
	user := &model.User{
		ID:             userID,
		Email:          "inspector@example.com",
		HashedPassword: "hashed_password",
		FullName:       "Test Inspector",
		Role:           "inspector",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WithArgs(sqlmock.AnyArg(), user.Email, user.HashedPassword, user.FullName, user.Role, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID.String()))
	mock.ExpectCommit()

	// Act
	err := userRepo.Create(context.Background(), user)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_Found(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	userID := uuid.New()
	email := "inspector@example.com"

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE email = .* LIMIT \$2`).
		WithArgs(email, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "hashed_password", "full_name", "role", "created_at"}).
			AddRow(userID.String(), email, "hashed_password", "Test Inspector", "inspector", "2023-01-01 00:00:00"))

	// Act
	user, err := userRepo.FindByEmail(context.Background(), email)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, email, user.Email)
	assert.Equal(t, "Test Inspector", user.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	email := "nonexistent@example.com"

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE email = .* LIMIT \$2`).
		WithArgs(email, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	user, err := userRepo.FindByEmail(context.Background(), email)

	// Assert
	assert.NoError(t, err) // Absent users are reported as nil, not an error
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByIDs(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	firstID := uuid.New()
	secondID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE id IN`).
		WithArgs(firstID, secondID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "role"}).
			AddRow(firstID.String(), "one@example.com", "Inspector One", "inspector").
			AddRow(secondID.String(), "two@example.com", "Inspector Two", "inspector"))

	// Act
	users, err := userRepo.GetByIDs(context.Background(), []uuid.UUID{firstID, secondID})

	// Assert
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Inspector One", users[0].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByIDs_EmptyInput(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	// Act
	users, err := userRepo.GetByIDs(context.Background(), nil)

	// Assert: no query is issued for an empty id list.
	assert.NoError(t, err)
	assert.Nil(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_Error(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	email := "inspector@example.com"

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE email = .* LIMIT \$2`).
		WithArgs(email, 1).
		WillReturnError(assert.AnError)

	// Act
	user, err := userRepo.FindByEmail(context.Background(), email)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}
