package presence

import (
	"testing"
	"time"

	"boardengine/internal/model"
	"boardengine/internal/realtime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type capturingPublisher struct {
	events []realtime.Event
}

func (p *capturingPublisher) Publish(event realtime.Event) {
	p.events = append(p.events, event)
}

func newTestTracker(ttl time.Duration) (*Tracker, *capturingPublisher, *time.Time) {
	pub := &capturingPublisher{}
	tracker := NewTracker(ttl, pub, zap.NewNop())
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }
	return tracker, pub, &now
}

func TestHeartbeat_RefreshesInPlace(t *testing.T) {
	tracker, _, now := newTestTracker(5 * time.Minute)
	userID := uuid.New()
	boardID := uuid.New()

	tracker.Heartbeat(userID, model.BoardTypeRoutes, boardID, nil, nil)
	*now = now.Add(2 * time.Minute)
	itemID := uuid.New()
	tracker.Heartbeat(userID, model.BoardTypeRoutes, boardID, &itemID, nil)

	records := tracker.List(boardID)
	assert.Len(t, records, 1)
	assert.Equal(t, userID, records[0].UserID)
	assert.Equal(t, &itemID, records[0].ItemID)
	assert.Equal(t, *now, records[0].LastSeen)
}

func TestList_HidesStaleRecords(t *testing.T) {
	tracker, _, now := newTestTracker(5 * time.Minute)
	boardID := uuid.New()
	stale := uuid.New()
	fresh := uuid.New()

	tracker.Heartbeat(stale, model.BoardTypeRoutes, boardID, nil, nil)
	*now = now.Add(6 * time.Minute)
	tracker.Heartbeat(fresh, model.BoardTypeRoutes, boardID, nil, nil)

	records := tracker.List(boardID)
	assert.Len(t, records, 1)
	assert.Equal(t, fresh, records[0].UserID)
}

func TestList_RecordAtExactWindowEdgeIsStale(t *testing.T) {
	tracker, _, now := newTestTracker(5 * time.Minute)
	boardID := uuid.New()

	tracker.Heartbeat(uuid.New(), model.BoardTypeRoutes, boardID, nil, nil)
	*now = now.Add(5 * time.Minute)

	assert.Empty(t, tracker.List(boardID))
}

func TestList_ScopedToBoard(t *testing.T) {
	tracker, _, _ := newTestTracker(5 * time.Minute)
	boardA := uuid.New()
	boardB := uuid.New()
	userID := uuid.New()

	tracker.Heartbeat(userID, model.BoardTypeRoutes, boardA, nil, nil)
	tracker.Heartbeat(uuid.New(), model.BoardTypeCompanies, boardB, nil, nil)

	records := tracker.List(boardA)
	assert.Len(t, records, 1)
	assert.Equal(t, userID, records[0].UserID)
}

func TestLeave_DropsImmediately(t *testing.T) {
	tracker, pub, _ := newTestTracker(5 * time.Minute)
	boardID := uuid.New()
	userID := uuid.New()

	tracker.Heartbeat(userID, model.BoardTypeRoutes, boardID, nil, nil)
	tracker.Leave(userID, boardID)

	assert.Empty(t, tracker.List(boardID))
	// One broadcast for the heartbeat, one for the leave.
	assert.Len(t, pub.events, 2)
	assert.Equal(t, realtime.EventPresence, pub.events[1].Type)
}

func TestLeave_UnknownUserDoesNotBroadcast(t *testing.T) {
	tracker, pub, _ := newTestTracker(5 * time.Minute)

	tracker.Leave(uuid.New(), uuid.New())

	assert.Empty(t, pub.events)
}

func TestSweep_RemovesOnlyStaleRecords(t *testing.T) {
	tracker, _, now := newTestTracker(5 * time.Minute)
	boardID := uuid.New()

	tracker.Heartbeat(uuid.New(), model.BoardTypeRoutes, boardID, nil, nil)
	*now = now.Add(3 * time.Minute)
	fresh := uuid.New()
	tracker.Heartbeat(fresh, model.BoardTypeRoutes, boardID, nil, nil)
	*now = now.Add(3 * time.Minute)

	removed := tracker.sweep()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, len(tracker.records))
	records := tracker.List(boardID)
	assert.Len(t, records, 1)
	assert.Equal(t, fresh, records[0].UserID)
}

func TestHeartbeat_BroadcastsBoardPresence(t *testing.T) {
	tracker, pub, _ := newTestTracker(5 * time.Minute)
	boardID := uuid.New()

	tracker.Heartbeat(uuid.New(), model.BoardTypeInspections, boardID, nil, nil)

	assert.Len(t, pub.events, 1)
	assert.Equal(t, realtime.EventPresence, pub.events[0].Type)
	assert.Equal(t, boardID, pub.events[0].BoardID)
	payload, ok := pub.events[0].Payload.([]Record)
	assert.True(t, ok)
	assert.Len(t, payload, 1)
}
