package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"boardengine/internal/model"
	"boardengine/internal/realtime"
	"boardengine/internal/repository"
	"boardengine/internal/schema"
	"boardengine/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const defaultSearchLimit = 20

type ItemHandler struct {
	itemRepo *repository.ItemRepository
	viewRepo *repository.ViewRepository
	registry *schema.Registry
	views    *view.Engine
	hub      *realtime.Hub
	guard    boardGuard
}

func NewItemHandler(
	itemRepo *repository.ItemRepository,
	viewRepo *repository.ViewRepository,
	boardRepo *repository.BoardRepository,
	memberRepo *repository.MemberRepository,
	registry *schema.Registry,
	views *view.Engine,
	hub *realtime.Hub,
) *ItemHandler {
	return &ItemHandler{
		itemRepo: itemRepo,
		viewRepo: viewRepo,
		registry: registry,
		views:    views,
		hub:      hub,
		guard:    boardGuard{boards: boardRepo, members: memberRepo},
	}
}

type CreateItemRequest struct {
	Name       string         `json:"name" binding:"required"`
	GroupID    *string        `json:"group_id"`
	Status     string         `json:"status"`
	Priority   int            `json:"priority"`
	AssignedTo *string        `json:"assigned_to"`
	DueDate    *time.Time     `json:"due_date"`
	Data       map[string]any `json:"data"`
}

// UpdateItemRequest carries a partial patch: absent fields stay
// untouched; the clear flags distinguish "set to null" from "leave
// alone".
type UpdateItemRequest struct {
	Name          *string        `json:"name"`
	Status        *string        `json:"status"`
	Priority      *int           `json:"priority"`
	AssignedTo    *string        `json:"assigned_to"`
	ClearAssignee bool           `json:"clear_assignee"`
	DueDate       *time.Time     `json:"due_date"`
	ClearDueDate  bool           `json:"clear_due_date"`
	Data          map[string]any `json:"data"`
}

type MoveItemRequest struct {
	GroupID  *string `json:"group_id"`
	Position int     `json:"position" binding:"min=0"`
}

type DuplicateItemRequest struct {
	Name          string  `json:"name"`
	TargetBoardID *string `json:"target_board_id"`
}

// ListItemsRequest is an inline view configuration for the query
// endpoint, mirroring what a saved view stores.
type ListItemsRequest struct {
	Filters []model.BoardFilter `json:"filters"`
	Sort    *model.SortConfig   `json:"sort"`
	GroupBy string              `json:"group_by"`
}

func (h *ItemHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, ok := h.guard.require(c, boardID, userID, model.RoleEditor)
	if !ok {
		return
	}
	if board.IsArchived {
		c.JSON(http.StatusConflict, gin.H{"error": "Board is archived"})
		return
	}

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	item := &model.BoardItem{
		BoardID:   boardID,
		Name:      req.Name,
		Status:    req.Status,
		Priority:  req.Priority,
		DueDate:   req.DueDate,
		Data:      datatypes.JSONMap(req.Data),
		CreatedBy: &userID,
	}
	if req.GroupID != nil {
		groupID, err := uuid.Parse(*req.GroupID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID format"})
			return
		}
		item.GroupID = &groupID
	}
	if req.AssignedTo != nil {
		assignee, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
			return
		}
		item.AssignedTo = &assignee
	}

	if err := h.itemRepo.Create(c.Request.Context(), item, &userID); err != nil {
		respondError(c, err)
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventItemCreated, BoardID: boardID, Payload: item})
	c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.itemRepo.GetByID(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, ok := h.guard.require(c, item.BoardID, userID, model.RoleViewer); !ok {
		return
	}

	c.JSON(http.StatusOK, item)
}

// GetByBoardID lists a board's items, optionally projected through a
// saved view (view_id) and bucketed by one column (group_by).
func (h *ItemHandler) GetByBoardID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, ok := h.guard.require(c, boardID, userID, model.RoleViewer)
	if !ok {
		return
	}

	cfg := view.Config{GroupBy: c.Query("group_by")}
	if rawViewID := c.Query("view_id"); rawViewID != "" {
		viewID, err := uuid.Parse(rawViewID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid view ID format"})
			return
		}
		saved, err := h.viewRepo.GetByID(c.Request.Context(), viewID)
		if err != nil {
			respondError(c, err)
			return
		}
		if saved.UserID != userID && !saved.IsShared {
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to use this view"})
			return
		}
		savedCfg, err := viewToConfig(saved)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Saved view configuration is malformed"})
			return
		}
		savedCfg.GroupBy = cfg.GroupBy
		cfg = savedCfg
	}

	h.respondProjection(c, board, cfg)
}

// Query lists a board's items through an inline view configuration,
// without saving it.
func (h *ItemHandler) Query(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, ok := h.guard.require(c, boardID, userID, model.RoleViewer)
	if !ok {
		return
	}

	var req ListItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	h.respondProjection(c, board, view.Config{
		Filters: req.Filters,
		Sort:    req.Sort,
		GroupBy: req.GroupBy,
	})
}

func (h *ItemHandler) respondProjection(c *gin.Context, board *model.Board, cfg view.Config) {
	items, err := h.itemRepo.GetByBoardID(c.Request.Context(), board.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	columns, err := h.registry.ColumnsFor(c.Request.Context(), board.BoardType)
	if err != nil {
		respondError(c, err)
		return
	}

	projected := h.views.Apply(items, columns, cfg)
	if cfg.GroupBy != "" {
		c.JSON(http.StatusOK, gin.H{"buckets": h.views.Group(projected, columns, cfg.GroupBy)})
		return
	}
	c.JSON(http.StatusOK, projected)
}

func (h *ItemHandler) Search(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, ok := h.guard.require(c, boardID, userID, model.RoleViewer); !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}
	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	items, err := h.itemRepo.SearchByName(c.Request.Context(), boardID, query, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// Update applies a partial patch. Every changed field lands in the
// activity ledger as its own event.
func (h *ItemHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.itemRepo.GetByID(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, ok := h.guard.require(c, item.BoardID, userID, model.RoleEditor); !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	patch := repository.ItemPatch{
		Name:          req.Name,
		Status:        req.Status,
		Priority:      req.Priority,
		ClearAssignee: req.ClearAssignee,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
		Data:          req.Data,
	}
	if req.AssignedTo != nil {
		assignee, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
			return
		}
		patch.AssignedTo = &assignee
	}

	updated, err := h.itemRepo.UpdateFields(c.Request.Context(), itemID, patch, &userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventItemUpdated, BoardID: updated.BoardID, Payload: updated})
	c.JSON(http.StatusOK, updated)
}

// Move repositions an item inside its board, optionally into another
// group. Positions stay dense in both affected groups.
func (h *ItemHandler) Move(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.itemRepo.GetByID(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, ok := h.guard.require(c, item.BoardID, userID, model.RoleEditor); !ok {
		return
	}

	var req MoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var groupID *uuid.UUID
	if req.GroupID != nil {
		parsed, err := uuid.Parse(*req.GroupID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID format"})
			return
		}
		groupID = &parsed
	}

	if err := h.itemRepo.Move(c.Request.Context(), itemID, groupID, req.Position, &userID); err != nil {
		respondError(c, err)
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventItemMoved, BoardID: item.BoardID, Payload: gin.H{
		"item_id":  itemID,
		"group_id": groupID,
		"position": req.Position,
	}})
	c.JSON(http.StatusOK, gin.H{"message": "Item moved successfully"})
}

func (h *ItemHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.itemRepo.GetByID(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, ok := h.guard.require(c, item.BoardID, userID, model.RoleEditor); !ok {
		return
	}

	if err := h.itemRepo.Delete(c.Request.Context(), itemID, &userID); err != nil {
		respondError(c, err)
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventItemDeleted, BoardID: item.BoardID, Payload: gin.H{"item_id": itemID}})
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

func (h *ItemHandler) Duplicate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.itemRepo.GetByID(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, ok := h.guard.require(c, item.BoardID, userID, model.RoleEditor); !ok {
		return
	}

	var req DuplicateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var targetBoardID *uuid.UUID
	if req.TargetBoardID != nil {
		parsed, err := uuid.Parse(*req.TargetBoardID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target board ID format"})
			return
		}
		if _, ok := h.guard.require(c, parsed, userID, model.RoleEditor); !ok {
			return
		}
		targetBoardID = &parsed
	}

	clone, err := h.itemRepo.Duplicate(c.Request.Context(), itemID, req.Name, targetBoardID, &userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventItemCreated, BoardID: clone.BoardID, Payload: clone})
	c.JSON(http.StatusCreated, clone)
}

type BulkDuplicateRequest struct {
	ItemIDs []string `json:"item_ids" binding:"required,min=1"`
}

type DuplicateFailure struct {
	ItemID uuid.UUID `json:"item_id"`
	Reason string    `json:"reason"`
}

// BulkDuplicate copies a batch of items within their board. Items that
// cannot be copied are reported per item; the rest are still copied.
func (h *ItemHandler) BulkDuplicate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, ok := h.guard.require(c, boardID, userID, model.RoleEditor); !ok {
		return
	}

	var req BulkDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	duplicated := make([]model.BoardItem, 0, len(req.ItemIDs))
	failed := make([]DuplicateFailure, 0)
	for _, raw := range req.ItemIDs {
		itemID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID format"})
			return
		}
		clone, err := h.itemRepo.Duplicate(c.Request.Context(), itemID, "", nil, &userID)
		if err != nil {
			failed = append(failed, DuplicateFailure{ItemID: itemID, Reason: err.Error()})
			continue
		}
		duplicated = append(duplicated, *clone)
		h.hub.Publish(realtime.Event{Type: realtime.EventItemCreated, BoardID: clone.BoardID, Payload: clone})
	}

	c.JSON(http.StatusOK, gin.H{"duplicated": duplicated, "failed": failed})
}

// viewToConfig deserializes a saved view's stored configuration.
func viewToConfig(saved *model.BoardView) (view.Config, error) {
	var cfg view.Config
	if len(saved.Filters) > 0 {
		if err := json.Unmarshal(saved.Filters, &cfg.Filters); err != nil {
			return view.Config{}, err
		}
	}
	if len(saved.SortConfig) > 0 {
		var sort model.SortConfig
		if err := json.Unmarshal(saved.SortConfig, &sort); err != nil {
			return view.Config{}, err
		}
		if sort.ColumnID != "" {
			cfg.Sort = &sort
		}
	}
	return cfg, nil
}
