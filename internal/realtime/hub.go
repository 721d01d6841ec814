// Package realtime pushes board events to connected clients over
// WebSocket. Delivery is best-effort: a slow client is dropped rather
// than allowed to stall the board's room.
package realtime

import (
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is one realtime notification, scoped to a board.
type Event struct {
	Type    string    `json:"type"`
	BoardID uuid.UUID `json:"board_id"`
	Payload any       `json:"payload,omitempty"`
}

// Common event types.
const (
	EventItemCreated  = "item_created"
	EventItemUpdated  = "item_updated"
	EventItemMoved    = "item_moved"
	EventItemDeleted  = "item_deleted"
	EventPresence     = "presence"
	EventBoardUpdated = "board_updated"
)

type outbound struct {
	boardID uuid.UUID
	data    []byte
}

// Hub maintains per-board rooms of connected clients and fans events out
// to them. All room state is owned by the Run goroutine; the exported
// methods only pass messages to it.
type Hub struct {
	rooms      map[uuid.UUID]map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish fans an event out to the board's room. It never blocks the
// caller: when the hub's queue is full the event is dropped, which is
// acceptable for a best-effort courtesy channel.
func (h *Hub) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("dropping unmarshalable event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- outbound{boardID: event.BoardID, data: data}:
	default:
		h.log.Warn("realtime queue full, dropping event",
			zap.String("type", event.Type),
			zap.String("board_id", event.BoardID.String()))
	}
}

// Run is the hub's main loop. It owns the room maps exclusively.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			room, ok := h.rooms[client.boardID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[client.boardID] = room
			}
			room[client] = true
			h.log.Debug("client joined board room",
				zap.String("board_id", client.boardID.String()),
				zap.String("user_id", client.userID.String()))

		case client := <-h.unregister:
			if room, ok := h.rooms[client.boardID]; ok {
				if _, connected := room[client]; connected {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.boardID)
					}
				}
			}

		case msg := <-h.broadcast:
			room := h.rooms[msg.boardID]
			for client := range room {
				select {
				case client.send <- msg.data:
				default:
					// Send buffer full; the client is too far behind to
					// catch up, disconnect it.
					delete(room, client)
					close(client.send)
				}
			}
			if len(room) == 0 {
				delete(h.rooms, msg.boardID)
			}
		}
	}
}
