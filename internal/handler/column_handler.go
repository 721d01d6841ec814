package handler

import (
	"net/http"

	"boardengine/internal/model"
	"boardengine/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ColumnHandler manages the per-board-type column configuration. Columns
// belong to a board type, not a single board: every board of the type
// shares them.
type ColumnHandler struct {
	columnRepo *repository.ColumnRepository
}

func NewColumnHandler(columnRepo *repository.ColumnRepository) *ColumnHandler {
	return &ColumnHandler{columnRepo: columnRepo}
}

type CreateColumnRequest struct {
	BoardType    string         `json:"board_type" binding:"required"`
	ColumnID     string         `json:"column_id" binding:"required"`
	ColumnName   string         `json:"column_name" binding:"required"`
	ColumnNameKa string         `json:"column_name_ka"`
	ColumnType   string         `json:"column_type" binding:"required"`
	IsVisible    *bool          `json:"is_visible"`
	IsPinned     bool           `json:"is_pinned"`
	Width        int            `json:"width"`
	Config       map[string]any `json:"config"`
}

type UpdateColumnRequest struct {
	ColumnName   *string        `json:"column_name"`
	ColumnNameKa *string        `json:"column_name_ka"`
	ColumnType   *string        `json:"column_type"`
	IsVisible    *bool          `json:"is_visible"`
	IsPinned     *bool          `json:"is_pinned"`
	Width        *int           `json:"width"`
	Config       map[string]any `json:"config"`
}

type ReorderColumnsRequest struct {
	Columns []struct {
		ID       string `json:"id" binding:"required,uuid"`
		Position int    `json:"position"`
	} `json:"columns" binding:"required,min=1"`
}

// GetByBoardType lists the ordered column set of a board type.
func (h *ColumnHandler) GetByBoardType(c *gin.Context) {
	boardType := model.BoardType(c.Param("board_type"))
	if !boardType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown board type"})
		return
	}

	columns, err := h.columnRepo.GetByBoardType(c.Request.Context(), boardType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, columns)
}

// Create adds a column to a board type's schema. A duplicate column_id
// within the board type is rejected with a conflict.
func (h *ColumnHandler) Create(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	boardType := model.BoardType(req.BoardType)
	if !boardType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown board type"})
		return
	}
	columnType := model.ColumnType(req.ColumnType)
	if !columnType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown column type"})
		return
	}

	maxPos, err := h.columnRepo.GetMaxPosition(c.Request.Context(), boardType)
	if err != nil {
		respondError(c, err)
		return
	}

	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}

	column := &model.BoardColumn{
		BoardType:    boardType,
		ColumnID:     req.ColumnID,
		ColumnName:   req.ColumnName,
		ColumnNameKa: req.ColumnNameKa,
		ColumnType:   columnType,
		IsVisible:    visible,
		IsPinned:     req.IsPinned,
		Position:     maxPos + 1,
		Width:        req.Width,
		Config:       datatypes.JSONMap(req.Config),
	}

	if err := h.columnRepo.Create(c.Request.Context(), column); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, column)
}

// Update edits a column's display configuration. A column_type change is
// rejected with a conflict once any item holds data under the column.
func (h *ColumnHandler) Update(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	columnID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	column, err := h.columnRepo.GetByID(c.Request.Context(), columnID)
	if err != nil {
		respondError(c, err)
		return
	}

	var req UpdateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.ColumnName != nil {
		column.ColumnName = *req.ColumnName
	}
	if req.ColumnNameKa != nil {
		column.ColumnNameKa = *req.ColumnNameKa
	}
	if req.ColumnType != nil {
		columnType := model.ColumnType(*req.ColumnType)
		if !columnType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown column type"})
			return
		}
		column.ColumnType = columnType
	}
	if req.IsVisible != nil {
		column.IsVisible = *req.IsVisible
	}
	if req.IsPinned != nil {
		column.IsPinned = *req.IsPinned
	}
	if req.Width != nil {
		column.Width = *req.Width
	}
	if req.Config != nil {
		column.Config = datatypes.JSONMap(req.Config)
	}

	if err := h.columnRepo.Update(c.Request.Context(), column); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, column)
}

func (h *ColumnHandler) Reorder(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req ReorderColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	columns := make([]model.BoardColumn, 0, len(req.Columns))
	for _, entry := range req.Columns {
		id, err := uuid.Parse(entry.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
			return
		}
		columns = append(columns, model.BoardColumn{ID: id, Position: entry.Position})
	}

	if err := h.columnRepo.Reorder(c.Request.Context(), columns); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Columns reordered successfully"})
}

func (h *ColumnHandler) Delete(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	columnID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.columnRepo.Delete(c.Request.Context(), columnID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Column deleted successfully"})
}
