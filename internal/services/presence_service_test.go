package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"notesnexus-backend/internal/models"
	"notesnexus-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceSetupAndTeardown(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewPresenceService(mem, mem)
	ctx := context.Background()

	teardown := svc.Setup(ctx, "user-a")

	p := svc.Get(ctx, "user-a")
	assert.True(t, p.IsOnline)
	assert.False(t, p.LastSeen.IsZero())

	teardown()
	p = svc.Get(ctx, "user-a")
	assert.False(t, p.IsOnline)
}

func TestHeartbeatRefreshesLastSeen(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewPresenceService(mem, mem)
	ctx := context.Background()

	base := time.Now()
	svc.now = func() time.Time { return base }
	svc.Heartbeat(ctx, "user-a", true)

	later := base.Add(time.Minute)
	svc.now = func() time.Time { return later }
	svc.Heartbeat(ctx, "user-a", true)

	p := svc.Get(ctx, "user-a")
	assert.True(t, p.IsOnline)
	assert.Equal(t, later, p.LastSeen)
}

// failingPresenceStore rejects every write.
type failingPresenceStore struct{}

func (failingPresenceStore) SetPresence(context.Context, string, bool, time.Time) error {
	return errors.New("redis down")
}

func (failingPresenceStore) GetPresence(ctx context.Context, userID string) (models.Presence, error) {
	return models.Presence{}, errors.New("redis down")
}

func TestPresenceWriteFailuresAreSwallowed(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewPresenceService(failingPresenceStore{}, mem)
	ctx := context.Background()

	// None of these may panic or surface an error.
	teardown := svc.Setup(ctx, "user-a")
	svc.Heartbeat(ctx, "user-a", true)
	teardown()

	p := svc.Get(ctx, "user-a")
	assert.False(t, p.IsOnline)
	assert.Equal(t, "user-a", p.UserID)
}

func TestListUserStatusOrdersOnlineFirst(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewPresenceService(mem, mem)
	ctx := context.Background()

	for _, u := range []*models.User{
		{ID: "u1", Email: "a@x.dev", DisplayName: "A"},
		{ID: "u2", Email: "b@x.dev", DisplayName: "B"},
		{ID: "u3", Email: "c@x.dev", DisplayName: "C"},
	} {
		require.NoError(t, mem.CreateUser(ctx, u))
	}

	base := time.Now()
	require.NoError(t, mem.SetPresence(ctx, "u1", false, base.Add(-time.Hour)))
	require.NoError(t, mem.SetPresence(ctx, "u2", true, base))
	require.NoError(t, mem.SetPresence(ctx, "u3", false, base.Add(-time.Minute)))

	statuses, err := svc.ListUserStatus(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, "u2", statuses[0].ID)
	assert.Equal(t, "u3", statuses[1].ID) // seen more recently than u1
	assert.Equal(t, "u1", statuses[2].ID)
}
