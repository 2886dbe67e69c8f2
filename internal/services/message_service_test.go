package services

import (
	"context"
	"testing"
	"time"

	"notesnexus-backend/internal/models"
	"notesnexus-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendN(t *testing.T, svc *MessageService, roomID string, bodies ...string) {
	t.Helper()
	for _, body := range bodies {
		_, err := svc.Send(context.Background(), &models.Message{
			RoomID: roomID, UserID: "user-a", UserName: "A", Body: body,
		})
		require.NoError(t, err)
	}
}

func bodies(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Body
	}
	return out
}

func TestSendAssignsServerTimestamp(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewMessageService(mem)

	msg, err := svc.Send(context.Background(), &models.Message{
		RoomID: "r1", UserID: "user-a", UserName: "A", Body: "hello",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestSendRejectsEmptyBody(t *testing.T) {
	svc := NewMessageService(store.NewMemoryStore())
	_, err := svc.Send(context.Background(), &models.Message{RoomID: "r1", UserID: "user-a"})
	assert.Error(t, err)
}

func TestHistoryOrdering(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewMessageService(mem)
	sendN(t, svc, "r1", "one", "two", "three")

	history, err := svc.History(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, bodies(history))
}

func TestHistoryFallbackWhenIndexNotReady(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewMessageService(mem)
	sendN(t, svc, "r1", "one", "two", "three")

	// The unordered fetch returns reverse insertion order; the fallback
	// must restore ascending timestamp order client-side.
	mem.SetIndexReady(false)
	history, err := svc.History(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, bodies(history))
}

func TestFallbackSortTreatsMissingTimestampAsNow(t *testing.T) {
	msgs := []models.Message{
		{Body: "no-timestamp"},
		{Body: "old", CreatedAt: time.Now().Add(-time.Hour)},
	}
	sortByTimestamp(msgs)
	assert.Equal(t, []string{"old", "no-timestamp"}, bodies(msgs))
}

func TestFallbackSortIsStableOnEqualKeys(t *testing.T) {
	at := time.Now()
	msgs := []models.Message{
		{Body: "first", CreatedAt: at},
		{Body: "second", CreatedAt: at},
		{Body: "third", CreatedAt: at},
	}
	sortByTimestamp(msgs)
	assert.Equal(t, []string{"first", "second", "third"}, bodies(msgs))
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewMessageService(mem)
	sendN(t, svc, "r1", "one")

	snapshots, unsubscribe, err := svc.Subscribe(context.Background(), "r1")
	require.NoError(t, err)
	defer unsubscribe()

	initial := <-snapshots
	assert.Equal(t, []string{"one"}, bodies(initial))

	sendN(t, svc, "r1", "two")
	next := <-snapshots
	assert.Equal(t, []string{"one", "two"}, bodies(next))
}

func TestSubscribeDegradedMode(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewMessageService(mem)
	sendN(t, svc, "r1", "one", "two")

	mem.SetIndexReady(false)
	snapshots, unsubscribe, err := svc.Subscribe(context.Background(), "r1")
	require.NoError(t, err)

	// Exactly one client-sorted snapshot, then silence.
	snap := <-snapshots
	assert.Equal(t, []string{"one", "two"}, bodies(snap))

	mem.SetIndexReady(true)
	sendN(t, svc, "r1", "three")
	select {
	case extra, ok := <-snapshots:
		if ok {
			t.Fatalf("unexpected live update in degraded mode: %v", bodies(extra))
		}
	default:
	}

	// Unsubscribe is a safe no-op in degraded mode.
	unsubscribe()
	unsubscribe()
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewMessageService(mem)

	snapshots, unsubscribe, err := svc.Subscribe(context.Background(), "r1")
	require.NoError(t, err)
	<-snapshots // initial empty snapshot
	unsubscribe()

	sendN(t, svc, "r1", "late")
	_, ok := <-snapshots
	assert.False(t, ok, "channel should be closed after unsubscribe")
}

func TestNotifyRoomTerminatedDeliversEmptySnapshot(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewMessageService(mem)
	require.NoError(t, mem.CreateRoom(context.Background(), &models.Room{
		ID: "r1", Name: "Study Group", CreatedBy: "user-a",
		Token: "ABC123", Participants: []string{"user-a"}, ParticipantLimit: 2,
	}))
	sendN(t, svc, "r1", "one")

	snapshots, unsubscribe, err := svc.Subscribe(context.Background(), "r1")
	require.NoError(t, err)
	defer unsubscribe()
	<-snapshots // initial snapshot

	require.NoError(t, mem.DeleteRoomCascade(context.Background(), "r1"))
	svc.NotifyRoomTerminated("r1")

	final := <-snapshots
	assert.Empty(t, final)
}

func TestTimestampOrderAcrossSends(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewMessageService(mem)
	sendN(t, svc, "r1", "m1", "m2")

	history, err := svc.History(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].CreatedAt.Before(history[1].CreatedAt))
}
