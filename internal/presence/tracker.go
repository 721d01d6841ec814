// Package presence tracks which users are currently viewing or editing
// which board. Records live only in memory and expire when heartbeats
// stop; presence is a courtesy signal and never blocks an edit.
package presence

import (
	"context"
	"sort"
	"sync"
	"time"

	"boardengine/internal/model"
	"boardengine/internal/realtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record is one user's live presence on one board.
type Record struct {
	UserID    uuid.UUID       `json:"user_id"`
	BoardType model.BoardType `json:"board_type"`
	BoardID   uuid.UUID       `json:"board_id"`
	IsEditing bool            `json:"is_editing"`
	ItemID    *uuid.UUID      `json:"editing_item_id,omitempty"`
	ColumnID  *string         `json:"editing_column_id,omitempty"`
	LastSeen  time.Time       `json:"last_seen"`
}

// Publisher pushes presence changes to board subscribers.
type Publisher interface {
	Publish(event realtime.Event)
}

// Tracker holds presence records keyed by (user, board). A user appears
// once per board; a new heartbeat for the same key refreshes the record
// in place.
type Tracker struct {
	mu      sync.RWMutex
	records map[presenceKey]*Record
	ttl     time.Duration
	pub     Publisher
	log     *zap.Logger
	now     func() time.Time
}

type presenceKey struct {
	userID  uuid.UUID
	boardID uuid.UUID
}

func NewTracker(ttl time.Duration, pub Publisher, log *zap.Logger) *Tracker {
	return &Tracker{
		records: make(map[presenceKey]*Record),
		ttl:     ttl,
		pub:     pub,
		log:     log,
		now:     time.Now,
	}
}

// Heartbeat registers or refreshes a user's presence on a board and
// broadcasts the change to the board's room.
func (t *Tracker) Heartbeat(userID uuid.UUID, boardType model.BoardType, boardID uuid.UUID, itemID *uuid.UUID, columnID *string) Record {
	record := Record{
		UserID:    userID,
		BoardType: boardType,
		BoardID:   boardID,
		IsEditing: itemID != nil,
		ItemID:    itemID,
		ColumnID:  columnID,
		LastSeen:  t.now(),
	}

	t.mu.Lock()
	t.records[presenceKey{userID: userID, boardID: boardID}] = &record
	t.mu.Unlock()

	t.publishBoard(boardID)
	return record
}

// Leave drops a user's presence on a board immediately instead of
// waiting for it to go stale.
func (t *Tracker) Leave(userID, boardID uuid.UUID) {
	key := presenceKey{userID: userID, boardID: boardID}

	t.mu.Lock()
	_, present := t.records[key]
	delete(t.records, key)
	t.mu.Unlock()

	if present {
		t.publishBoard(boardID)
	}
}

// List returns the live presence records for one board, oldest first.
// Records past the staleness window are filtered out but not removed;
// the sweeper owns removal.
func (t *Tracker) List(boardID uuid.UUID) []Record {
	cutoff := t.now().Add(-t.ttl)

	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Record
	for key, record := range t.records {
		if key.boardID != boardID || !record.LastSeen.After(cutoff) {
			continue
		}
		out = append(out, *record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.Before(out[j].LastSeen) })
	return out
}

// Run sweeps stale records until the context is canceled. The sweep
// cadence matches the staleness window; a record is therefore removed at
// most one window after it expired, which List already hides.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := t.sweep(); removed > 0 {
				t.log.Debug("swept stale presence records", zap.Int("removed", removed))
			}
		}
	}
}

func (t *Tracker) sweep() int {
	cutoff := t.now().Add(-t.ttl)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, record := range t.records {
		if !record.LastSeen.After(cutoff) {
			delete(t.records, key)
			removed++
		}
	}
	return removed
}

func (t *Tracker) publishBoard(boardID uuid.UUID) {
	if t.pub == nil {
		return
	}
	t.pub.Publish(realtime.Event{
		Type:    realtime.EventPresence,
		BoardID: boardID,
		Payload: t.List(boardID),
	})
}
