package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"boardengine/internal/handler"
	"boardengine/internal/middleware"
	"boardengine/internal/realtime"
	"boardengine/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupBoardTest(t *testing.T, userID uuid.UUID) (*gin.Engine, sqlmock.Sqlmock) {
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

	boardRepo := repository.NewBoardRepository(gormDB)
	columnRepo := repository.NewColumnRepository(gormDB)
	memberRepo := repository.NewMemberRepository(gormDB)
	hub := realtime.NewHub(zap.NewNop())
	boardHandler := handler.NewBoardHandler(boardRepo, columnRepo, memberRepo, hub)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	})
	r.GET("/boards/:id", boardHandler.GetByID)

	return r, mock
}

func boardRows(boardID, ownerID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "owner_id", "board_type", "name", "is_archived"}).
		AddRow(boardID.String(), ownerID.String(), "inspections", "Monthly Inspections", false)
}

func TestBoardGetByID_OwnerCanRead(t *testing.T) {
	// Arrange
	userID := uuid.New()
	boardID := uuid.New()
	router, mock := setupBoardTest(t, userID)

	mock.ExpectQuery(`SELECT .* FROM "boards" WHERE id = .* LIMIT \$2`).
		WithArgs(boardID, 1).
		WillReturnRows(boardRows(boardID, userID))
	mock.ExpectQuery(`SELECT .* FROM "boards" WHERE id = .* AND owner_id = .* LIMIT \$3`).
		WithArgs(boardID, userID, 1).
		WillReturnRows(boardRows(boardID, userID))

	req, _ := http.NewRequest("GET", "/boards/"+boardID.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardGetByID_NotFound(t *testing.T) {
	// Arrange
	userID := uuid.New()
	boardID := uuid.New()
	router, mock := setupBoardTest(t, userID)

	mock.ExpectQuery(`SELECT .* FROM "boards" WHERE id = .* LIMIT \$2`).
		WithArgs(boardID, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	req, _ := http.NewRequest("GET", "/boards/"+boardID.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardGetByID_NonMemberForbidden(t *testing.T) {
	// Arrange
	userID := uuid.New()
	ownerID := uuid.New()
	boardID := uuid.New()
	router, mock := setupBoardTest(t, userID)

	mock.ExpectQuery(`SELECT .* FROM "boards" WHERE id = .* LIMIT \$2`).
		WithArgs(boardID, 1).
		WillReturnRows(boardRows(boardID, ownerID))
	mock.ExpectQuery(`SELECT .* FROM "boards" WHERE id = .* AND owner_id = .* LIMIT \$3`).
		WithArgs(boardID, userID, 1).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery(`SELECT .* FROM "board_members"`).
		WithArgs(boardID, userID, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	req, _ := http.NewRequest("GET", "/boards/"+boardID.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardGetByID_InvalidID(t *testing.T) {
	// Arrange
	router, _ := setupBoardTest(t, uuid.New())

	req, _ := http.NewRequest("GET", "/boards/not-a-uuid", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
