package handler

import (
	"net/http"
	"strconv"

	"boardengine/internal/activity"
	"boardengine/internal/model"
	"boardengine/internal/realtime"
	"boardengine/internal/repository"

	"github.com/gin-gonic/gin"
)

// ActivityHandler exposes the per-item activity ledger: reading
// history, commenting, and rolling a single event back.
type ActivityHandler struct {
	ledger   *activity.Ledger
	itemRepo *repository.ItemRepository
	hub      *realtime.Hub
	guard    boardGuard
}

func NewActivityHandler(
	ledger *activity.Ledger,
	itemRepo *repository.ItemRepository,
	boardRepo *repository.BoardRepository,
	memberRepo *repository.MemberRepository,
	hub *realtime.Hub,
) *ActivityHandler {
	return &ActivityHandler{
		ledger:   ledger,
		itemRepo: itemRepo,
		hub:      hub,
		guard:    boardGuard{boards: boardRepo, members: memberRepo},
	}
}

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListByItem returns an item's ledger, newest first.
func (h *ActivityHandler) ListByItem(c *gin.Context) {
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

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	updates, err := h.ledger.ListByItem(c.Request.Context(), itemID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updates)
}

// ListByUser returns the calling user's recent activity across boards.
func (h *ActivityHandler) ListByUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	updates, err := h.ledger.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updates)
}

// ListRecent returns the newest events across all boards, backing the
// workspace-wide activity feed.
func (h *ActivityHandler) ListRecent(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	updates, err := h.ledger.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updates)
}

func (h *ActivityHandler) Comment(c *gin.Context) {
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

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	update, err := h.ledger.Comment(c.Request.Context(), itemID, userID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventItemUpdated, BoardID: item.BoardID, Payload: gin.H{
		"item_id": itemID,
		"comment": update,
	}})
	c.JSON(http.StatusCreated, update)
}

// Rollback re-applies the old value of a single recorded field change.
// The ledger itself is never rewritten: the rollback lands as a new
// forward event.
func (h *ActivityHandler) Rollback(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	updateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	update, err := h.ledger.GetByID(c.Request.Context(), updateID)
	if err != nil {
		respondError(c, err)
		return
	}
	item, err := h.itemRepo.GetByID(c.Request.Context(), update.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, ok := h.guard.require(c, item.BoardID, userID, model.RoleEditor); !ok {
		return
	}

	rolled, err := h.ledger.Rollback(c.Request.Context(), updateID, &userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventItemUpdated, BoardID: rolled.BoardID, Payload: rolled})
	c.JSON(http.StatusOK, rolled)
}
