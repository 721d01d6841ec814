package handler

import (
	"net/http"

	"boardengine/internal/model"
	"boardengine/internal/presence"
	"boardengine/internal/realtime"
	"boardengine/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// PresenceHandler serves ephemeral who-is-where state: REST heartbeats
// for clients that poll, and a websocket feed for clients that listen.
type PresenceHandler struct {
	tracker *presence.Tracker
	hub     *realtime.Hub
	users   repository.UserRepositoryInterface
	log     *zap.Logger
	guard   boardGuard
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers connect from the web app's origin; cross-origin policy is
	// enforced at the gateway.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewPresenceHandler(
	tracker *presence.Tracker,
	hub *realtime.Hub,
	boardRepo *repository.BoardRepository,
	memberRepo *repository.MemberRepository,
	userRepo repository.UserRepositoryInterface,
	log *zap.Logger,
) *PresenceHandler {
	return &PresenceHandler{
		tracker: tracker,
		hub:     hub,
		users:   userRepo,
		log:     log,
		guard:   boardGuard{boards: boardRepo, members: memberRepo},
	}
}

type HeartbeatRequest struct {
	ItemID   *string `json:"item_id"`
	ColumnID *string `json:"column_id"`
}

// Heartbeat records that the user is looking at a board right now,
// optionally focused on one item and column. Clients send it on focus
// changes and on an interval shorter than the staleness window.
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
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

	var req HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var itemID *uuid.UUID
	if req.ItemID != nil {
		parsed, err := uuid.Parse(*req.ItemID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID format"})
			return
		}
		itemID = &parsed
	}

	record := h.tracker.Heartbeat(userID, board.BoardType, boardID, itemID, req.ColumnID)
	c.JSON(http.StatusOK, record)
}

// PresenceEntry is a presence record enriched with the user's display
// name, so clients can render avatars without a second lookup.
type PresenceEntry struct {
	presence.Record
	UserName string `json:"user_name,omitempty"`
}

// List returns who is on a board right now, oldest arrival first.
func (h *PresenceHandler) List(c *gin.Context) {
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

	records := h.tracker.List(boardID)
	ids := make([]uuid.UUID, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.UserID)
	}
	users, err := h.users.GetByIDs(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, user := range users {
		names[user.ID] = user.FullName
	}

	entries := make([]PresenceEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, PresenceEntry{Record: record, UserName: names[record.UserID]})
	}
	c.JSON(http.StatusOK, entries)
}

// Leave drops the user's presence on a board immediately instead of
// waiting for the staleness window.
func (h *PresenceHandler) Leave(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	h.tracker.Leave(userID, boardID)
	c.JSON(http.StatusOK, gin.H{"message": "Left board"})
}

// Subscribe upgrades the connection to a websocket subscribed to one
// board's event stream: item changes, board changes, presence updates.
func (h *PresenceHandler) Subscribe(c *gin.Context) {
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

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(h.hub, conn, boardID, userID, h.log)
	h.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()
}
