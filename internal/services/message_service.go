package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"notesnexus-backend/internal/models"
	"notesnexus-backend/internal/store"

	"github.com/google/uuid"
)

// snapshotBuffer is the per-subscriber channel depth. A consumer that falls
// behind misses intermediate snapshots, never the shape of the final one,
// since every delivery carries the full ordered list.
const snapshotBuffer = 8

// MessageService appends messages and fans out full ordered snapshots to
// room subscribers.
type MessageService struct {
	messages store.MessageStore

	mu   sync.RWMutex
	subs map[string]map[string]chan []models.Message // roomID -> subID -> ch
}

func NewMessageService(messages store.MessageStore) *MessageService {
	return &MessageService{
		messages: messages,
		subs:     make(map[string]map[string]chan []models.Message),
	}
}

// Send appends a message with a server-assigned timestamp and pushes an
// updated snapshot to the room's subscribers. No retry is performed here.
func (s *MessageService) Send(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if msg.Body == "" {
		return nil, errors.New("message body is required")
	}
	if err := s.messages.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.publish(ctx, msg.RoomID)
	return msg, nil
}

// History returns the room's messages in ascending timestamp order. While
// the ordering index is unavailable it falls back to an unordered fetch
// sorted client-side.
func (s *MessageService) History(ctx context.Context, roomID string) ([]models.Message, error) {
	msgs, err := s.messages.MessagesOrdered(ctx, roomID)
	if errors.Is(err, store.ErrIndexNotReady) {
		msgs, err = s.messages.MessagesUnordered(ctx, roomID)
		if err != nil {
			return nil, err
		}
		sortByTimestamp(msgs)
		return msgs, nil
	}
	return msgs, err
}

// sortByTimestamp orders messages ascending by server timestamp. Missing
// timestamps are treated as "now" so the comparison stays total; equal keys
// keep their original fetch order.
func sortByTimestamp(msgs []models.Message) {
	now := time.Now()
	at := func(m models.Message) time.Time {
		if m.CreatedAt.IsZero() {
			return now
		}
		return m.CreatedAt
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return at(msgs[i]).Before(at(msgs[j]))
	})
}

// Subscribe establishes a live snapshot stream for the room. The current
// snapshot is delivered first; every subsequent send or termination delivers
// the full updated sequence. If the ordered query cannot be served yet
// (index still building), exactly one client-sorted snapshot is delivered
// and no further updates follow until a future Subscribe; the returned
// unsubscribe func is safe to call in both modes.
func (s *MessageService) Subscribe(ctx context.Context, roomID string) (<-chan []models.Message, func(), error) {
	msgs, err := s.messages.MessagesOrdered(ctx, roomID)
	if errors.Is(err, store.ErrIndexNotReady) {
		msgs, err = s.messages.MessagesUnordered(ctx, roomID)
		if err != nil {
			return nil, nil, err
		}
		sortByTimestamp(msgs)

		// Degraded mode: one-shot snapshot, no live registration.
		ch := make(chan []models.Message, 1)
		ch <- msgs
		var once sync.Once
		return ch, func() { once.Do(func() { close(ch) }) }, nil
	}
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []models.Message, snapshotBuffer)
	ch <- msgs

	subID := uuid.New().String()
	s.mu.Lock()
	if s.subs[roomID] == nil {
		s.subs[roomID] = make(map[string]chan []models.Message)
	}
	s.subs[roomID][subID] = ch
	s.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			if room, ok := s.subs[roomID]; ok {
				delete(room, subID)
				if len(room) == 0 {
					delete(s.subs, roomID)
				}
			}
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe, nil
}

// NotifyRoomTerminated delivers a final empty snapshot to the room's
// subscribers after the room and its messages were deleted.
func (s *MessageService) NotifyRoomTerminated(roomID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs[roomID] {
		select {
		case ch <- []models.Message{}:
		default:
		}
	}
}

func (s *MessageService) publish(ctx context.Context, roomID string) {
	s.mu.RLock()
	n := len(s.subs[roomID])
	s.mu.RUnlock()
	if n == 0 {
		return
	}

	msgs, err := s.History(ctx, roomID)
	if err != nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs[roomID] {
		select {
		case ch <- msgs:
		default:
			// Subscriber buffer full; it will catch up on the next
			// snapshot.
		}
	}
}
