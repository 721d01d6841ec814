package handler

import (
	"encoding/json"
	"net/http"

	"boardengine/internal/model"
	"boardengine/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// ViewHandler manages per-user saved views. A view belongs to its
// creator; marking one default clears the flag on the user's other
// views of the same board type.
type ViewHandler struct {
	viewRepo *repository.ViewRepository
}

func NewViewHandler(viewRepo *repository.ViewRepository) *ViewHandler {
	return &ViewHandler{viewRepo: viewRepo}
}

type CreateViewRequest struct {
	BoardType    string          `json:"board_type" binding:"required"`
	ViewName     string          `json:"view_name" binding:"required"`
	ViewNameKa   string          `json:"view_name_ka"`
	Filters      json.RawMessage `json:"filters"`
	SortConfig   json.RawMessage `json:"sort_config"`
	ColumnConfig json.RawMessage `json:"column_config"`
	IsDefault    bool            `json:"is_default"`
	IsShared     bool            `json:"is_shared"`
}

type UpdateViewRequest struct {
	ViewName     *string         `json:"view_name"`
	ViewNameKa   *string         `json:"view_name_ka"`
	Filters      json.RawMessage `json:"filters"`
	SortConfig   json.RawMessage `json:"sort_config"`
	ColumnConfig json.RawMessage `json:"column_config"`
	IsDefault    *bool           `json:"is_default"`
	IsShared     *bool           `json:"is_shared"`
}

func (h *ViewHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	boardType := model.BoardType(req.BoardType)
	if !boardType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown board type"})
		return
	}
	if !validViewConfig(req.Filters, req.SortConfig) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid view configuration"})
		return
	}

	view := &model.BoardView{
		UserID:     userID,
		BoardType:  boardType,
		ViewName:   req.ViewName,
		ViewNameKa: req.ViewNameKa,
		IsDefault:  req.IsDefault,
		IsShared:   req.IsShared,
	}
	if len(req.Filters) > 0 {
		view.Filters = datatypes.JSON(req.Filters)
	}
	if len(req.SortConfig) > 0 {
		view.SortConfig = datatypes.JSON(req.SortConfig)
	}
	if len(req.ColumnConfig) > 0 {
		view.ColumnConfig = datatypes.JSON(req.ColumnConfig)
	}

	if err := h.viewRepo.Create(c.Request.Context(), view); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetForUser lists the user's own views of a board type plus views
// shared by others.
func (h *ViewHandler) GetForUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	boardType := model.BoardType(c.Param("board_type"))
	if !boardType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown board type"})
		return
	}

	views, err := h.viewRepo.GetForUser(c.Request.Context(), userID, boardType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

func (h *ViewHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	viewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.viewRepo.GetByID(c.Request.Context(), viewID)
	if err != nil {
		respondError(c, err)
		return
	}
	if view.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the view owner can edit it"})
		return
	}

	var req UpdateViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !validViewConfig(req.Filters, req.SortConfig) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid view configuration"})
		return
	}

	if req.ViewName != nil {
		view.ViewName = *req.ViewName
	}
	if req.ViewNameKa != nil {
		view.ViewNameKa = *req.ViewNameKa
	}
	if len(req.Filters) > 0 {
		view.Filters = datatypes.JSON(req.Filters)
	}
	if len(req.SortConfig) > 0 {
		view.SortConfig = datatypes.JSON(req.SortConfig)
	}
	if len(req.ColumnConfig) > 0 {
		view.ColumnConfig = datatypes.JSON(req.ColumnConfig)
	}
	if req.IsDefault != nil {
		view.IsDefault = *req.IsDefault
	}
	if req.IsShared != nil {
		view.IsShared = *req.IsShared
	}

	if err := h.viewRepo.Update(c.Request.Context(), view); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *ViewHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	viewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.viewRepo.GetByID(c.Request.Context(), viewID)
	if err != nil {
		respondError(c, err)
		return
	}
	if view.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the view owner can delete it"})
		return
	}

	if err := h.viewRepo.Delete(c.Request.Context(), viewID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "View deleted successfully"})
}

// validViewConfig rejects stored configuration that would not
// deserialize when the view is later applied.
func validViewConfig(filters, sortConfig json.RawMessage) bool {
	if len(filters) > 0 {
		var parsed []model.BoardFilter
		if err := json.Unmarshal(filters, &parsed); err != nil {
			return false
		}
	}
	if len(sortConfig) > 0 {
		var parsed model.SortConfig
		if err := json.Unmarshal(sortConfig, &parsed); err != nil {
			return false
		}
	}
	return true
}
