package handler

import (
	"encoding/json"
	"net/http"

	"boardengine/internal/model"
	"boardengine/internal/realtime"
	"boardengine/internal/repository"
	"boardengine/internal/schema"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type BoardHandler struct {
	boardRepo  *repository.BoardRepository
	columnRepo *repository.ColumnRepository
	memberRepo *repository.MemberRepository
	hub        *realtime.Hub
	guard      boardGuard
}

func NewBoardHandler(boardRepo *repository.BoardRepository, columnRepo *repository.ColumnRepository, memberRepo *repository.MemberRepository, hub *realtime.Hub) *BoardHandler {
	return &BoardHandler{
		boardRepo:  boardRepo,
		columnRepo: columnRepo,
		memberRepo: memberRepo,
		hub:        hub,
		guard:      boardGuard{boards: boardRepo, members: memberRepo},
	}
}

type CreateBoardRequest struct {
	BoardType   string          `json:"board_type" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	NameKa      string          `json:"name_ka"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Color       string          `json:"color"`
	Settings    json.RawMessage `json:"settings"`
}

type UpdateBoardRequest struct {
	Name        *string         `json:"name"`
	NameKa      *string         `json:"name_ka"`
	Description *string         `json:"description"`
	Icon        *string         `json:"icon"`
	Color       *string         `json:"color"`
	Settings    json.RawMessage `json:"settings"`
}

// Create creates a board. For the well-known board types the shared
// column set is seeded on first use.
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	boardType := model.BoardType(req.BoardType)
	if !boardType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown board type"})
		return
	}

	board := &model.Board{
		OwnerID:     userID,
		BoardType:   boardType,
		Name:        req.Name,
		NameKa:      req.NameKa,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
	}
	if len(req.Settings) > 0 {
		board.Settings = datatypes.JSON(req.Settings)
	}

	if err := h.boardRepo.Create(c.Request.Context(), board); err != nil {
		respondError(c, err)
		return
	}

	if defaults := schema.DefaultColumns(boardType); len(defaults) > 0 {
		if err := h.columnRepo.SeedDefaults(c.Request.Context(), boardType, defaults); err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, board)
}

// GetAll lists the user's own boards plus boards shared with them.
func (h *BoardHandler) GetAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	owned, err := h.boardRepo.GetOwned(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	shared, err := h.memberRepo.GetSharedBoards(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"owned":  owned,
		"shared": shared,
	})
}

func (h *BoardHandler) GetByID(c *gin.Context) {
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

	c.JSON(http.StatusOK, board)
}

func (h *BoardHandler) Update(c *gin.Context) {
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

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Name != nil {
		board.Name = *req.Name
	}
	if req.NameKa != nil {
		board.NameKa = *req.NameKa
	}
	if req.Description != nil {
		board.Description = *req.Description
	}
	if req.Icon != nil {
		board.Icon = *req.Icon
	}
	if req.Color != nil {
		board.Color = *req.Color
	}
	if len(req.Settings) > 0 {
		board.Settings = datatypes.JSON(req.Settings)
	}

	if err := h.boardRepo.Update(c.Request.Context(), board); err != nil {
		respondError(c, err)
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventBoardUpdated, BoardID: board.ID, Payload: board})
	c.JSON(http.StatusOK, board)
}

// Archive soft-archives a board; its items stay readable.
func (h *BoardHandler) Archive(c *gin.Context) {
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
	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the board owner can archive it"})
		return
	}

	if err := h.boardRepo.Archive(c.Request.Context(), boardID); err != nil {
		respondError(c, err)
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventBoardUpdated, BoardID: boardID, Payload: gin.H{"is_archived": true}})
	c.JSON(http.StatusOK, gin.H{"message": "Board archived successfully"})
}

// Delete removes a board permanently. Boards still holding items are
// rejected with a conflict; they can only be archived.
func (h *BoardHandler) Delete(c *gin.Context) {
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
	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the board owner can delete it"})
		return
	}

	if err := h.boardRepo.Delete(c.Request.Context(), boardID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Board deleted successfully"})
}
