package services

import (
	"context"
	"sort"
	"time"

	"notesnexus-backend/internal/models"
	"notesnexus-backend/internal/store"
	"notesnexus-backend/internal/utils"
)

// PresenceService records best-effort online/last-seen state. Write failures
// are logged and swallowed; presence must never take a session down.
type PresenceService struct {
	presence store.PresenceStore
	users    store.UserStore
	now      func() time.Time
}

func NewPresenceService(presence store.PresenceStore, users store.UserStore) *PresenceService {
	return &PresenceService{presence: presence, users: users, now: time.Now}
}

// Setup marks the user online immediately and returns a teardown func that
// performs the final offline write.
func (s *PresenceService) Setup(ctx context.Context, userID string) func() {
	s.Heartbeat(ctx, userID, true)
	return func() {
		s.Heartbeat(context.Background(), userID, false)
	}
}

// Heartbeat idempotently writes {isOnline, lastSeen=now} for the user.
func (s *PresenceService) Heartbeat(ctx context.Context, userID string, online bool) {
	if err := s.presence.SetPresence(ctx, userID, online, s.now()); err != nil {
		utils.LogError(err, "presence write")
	}
}

// Get returns the recorded presence for one user, offline if nothing was
// recorded or the read failed.
func (s *PresenceService) Get(ctx context.Context, userID string) models.Presence {
	p, err := s.presence.GetPresence(ctx, userID)
	if err != nil {
		utils.LogError(err, "presence read")
		return models.Presence{UserID: userID}
	}
	return p
}

// ListUserStatus joins all users with their presence records, online users
// first, then by most recent last-seen.
func (s *PresenceService) ListUserStatus(ctx context.Context) ([]models.UserStatus, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]models.UserStatus, 0, len(users))
	for _, u := range users {
		p := s.Get(ctx, u.ID)
		statuses = append(statuses, models.UserStatus{
			User:     u,
			IsOnline: p.IsOnline,
			LastSeen: p.LastSeen,
		})
	}

	sort.SliceStable(statuses, func(i, j int) bool {
		if statuses[i].IsOnline != statuses[j].IsOnline {
			return statuses[i].IsOnline
		}
		return statuses[i].LastSeen.After(statuses[j].LastSeen)
	})
	return statuses, nil
}
