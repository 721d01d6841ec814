package handler

import (
	"net/http"

	"boardengine/internal/migration"
	"boardengine/internal/model"
	"boardengine/internal/realtime"
	"boardengine/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MigrationHandler moves items between boards of different types,
// reconciling their column schemas on the way.
type MigrationHandler struct {
	engine   *migration.Engine
	itemRepo *repository.ItemRepository
	hub      *realtime.Hub
	guard    boardGuard
}

func NewMigrationHandler(
	engine *migration.Engine,
	itemRepo *repository.ItemRepository,
	boardRepo *repository.BoardRepository,
	memberRepo *repository.MemberRepository,
	hub *realtime.Hub,
) *MigrationHandler {
	return &MigrationHandler{
		engine:   engine,
		itemRepo: itemRepo,
		hub:      hub,
		guard:    boardGuard{boards: boardRepo, members: memberRepo},
	}
}

type PreviewMappingRequest struct {
	SourceBoardID string `json:"source_board_id" binding:"required,uuid"`
	TargetBoardID string `json:"target_board_id" binding:"required,uuid"`
}

type MoveToBoardRequest struct {
	TargetBoardID   string            `json:"target_board_id" binding:"required,uuid"`
	ColumnMapping   map[string]string `json:"column_mapping"`
	DiscardUnmapped bool              `json:"discard_unmapped"`
}

type BulkMoveRequest struct {
	ItemIDs         []string          `json:"item_ids" binding:"required,min=1"`
	TargetBoardID   string            `json:"target_board_id" binding:"required,uuid"`
	ColumnMapping   map[string]string `json:"column_mapping"`
	DiscardUnmapped bool              `json:"discard_unmapped"`
}

// PreviewMapping computes the automatic column mapping between two
// board schemas without moving anything: which columns carry over by
// id or name, and which need an explicit decision.
func (h *MigrationHandler) PreviewMapping(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req PreviewMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	sourceBoardID, _ := uuid.Parse(req.SourceBoardID)
	targetBoardID, _ := uuid.Parse(req.TargetBoardID)

	if _, ok := h.guard.require(c, sourceBoardID, userID, model.RoleViewer); !ok {
		return
	}
	if _, ok := h.guard.require(c, targetBoardID, userID, model.RoleViewer); !ok {
		return
	}

	preview, err := h.engine.PreviewMapping(c.Request.Context(), sourceBoardID, targetBoardID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// MoveToBoard moves one item to another board, translating its data
// through the column mapping. The item keeps its identity and its
// ledger; a migration event records where it came from.
func (h *MigrationHandler) MoveToBoard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req MoveToBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	targetBoardID, _ := uuid.Parse(req.TargetBoardID)

	item, err := h.itemRepo.GetByID(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	sourceBoardID := item.BoardID

	if _, ok := h.guard.require(c, sourceBoardID, userID, model.RoleEditor); !ok {
		return
	}
	if _, ok := h.guard.require(c, targetBoardID, userID, model.RoleEditor); !ok {
		return
	}

	moved, err := h.engine.MoveItem(c.Request.Context(), itemID, targetBoardID, migration.MoveOptions{
		ColumnMapping:   req.ColumnMapping,
		DiscardUnmapped: req.DiscardUnmapped,
	}, &userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventItemDeleted, BoardID: sourceBoardID, Payload: gin.H{"item_id": itemID}})
	h.hub.Publish(realtime.Event{Type: realtime.EventItemCreated, BoardID: targetBoardID, Payload: moved})
	c.JSON(http.StatusOK, moved)
}

// BulkMove moves a batch of items from one board to another. Items
// that cannot move are reported per item; the rest still move.
func (h *MigrationHandler) BulkMove(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sourceBoardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req BulkMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	targetBoardID, _ := uuid.Parse(req.TargetBoardID)

	if _, ok := h.guard.require(c, sourceBoardID, userID, model.RoleEditor); !ok {
		return
	}
	if _, ok := h.guard.require(c, targetBoardID, userID, model.RoleEditor); !ok {
		return
	}

	itemIDs := make([]uuid.UUID, 0, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID format"})
			return
		}
		itemIDs = append(itemIDs, id)
	}

	result, err := h.engine.MoveItems(c.Request.Context(), itemIDs, targetBoardID, migration.MoveOptions{
		ColumnMapping:   req.ColumnMapping,
		DiscardUnmapped: req.DiscardUnmapped,
	}, &userID)
	if err != nil {
		respondError(c, err)
		return
	}

	for i := range result.Moved {
		h.hub.Publish(realtime.Event{Type: realtime.EventItemDeleted, BoardID: sourceBoardID, Payload: gin.H{"item_id": result.Moved[i].ID}})
		h.hub.Publish(realtime.Event{Type: realtime.EventItemCreated, BoardID: targetBoardID, Payload: result.Moved[i]})
	}
	c.JSON(http.StatusOK, result)
}
