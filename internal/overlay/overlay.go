// Package overlay maintains a client-side message view with optimistic
// sends: a temporary entry is shown immediately, rolled back if the send
// fails, and reconciled against the authoritative message by a
// client-generated correlation id once it arrives through the live
// subscription.
package overlay

import (
	"context"
	"sync"
	"time"

	"notesnexus-backend/internal/models"

	"github.com/google/uuid"
)

// Sender performs the real send. It receives the correlation id the overlay
// stamped on the temporary entry so the persisted message can echo it back.
type Sender func(ctx context.Context, text, clientID string) error

// Overlay is the local view of one room's messages for one user.
type Overlay struct {
	roomID     string
	userID     string
	userName   string
	userAvatar string
	send       Sender

	mu        sync.Mutex
	snapshot  []models.Message // last authoritative snapshot
	pending   []models.Message // temp entries not yet reconciled
	composer  string
	now       func() time.Time
}

func New(roomID, userID, userName, userAvatar string, send Sender) *Overlay {
	return &Overlay{
		roomID:     roomID,
		userID:     userID,
		userName:   userName,
		userAvatar: userAvatar,
		send:       send,
		now:        time.Now,
	}
}

// Composer returns the current input text.
func (o *Overlay) Composer() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.composer
}

// SetComposer replaces the current input text.
func (o *Overlay) SetComposer(text string) {
	o.mu.Lock()
	o.composer = text
	o.mu.Unlock()
}

// Send clears the composer, inserts a temporary message into the view and
// performs the real send. On failure the temporary entry is removed and the
// composer is restored to the attempted text so nothing is lost.
func (o *Overlay) Send(ctx context.Context) error {
	o.mu.Lock()
	text := o.composer
	if text == "" {
		o.mu.Unlock()
		return nil
	}
	o.composer = ""

	clientID := uuid.New().String()
	temp := models.Message{
		ID:         models.TempIDPrefix + clientID,
		RoomID:     o.roomID,
		UserID:     o.userID,
		UserName:   o.userName,
		UserAvatar: o.userAvatar,
		Body:       text,
		ClientID:   clientID,
		IsTemp:     true,
		CreatedAt:  o.now(),
	}
	o.pending = append(o.pending, temp)
	o.mu.Unlock()

	if err := o.send(ctx, text, clientID); err != nil {
		o.mu.Lock()
		o.removePendingLocked(temp.ID)
		o.composer = text
		o.mu.Unlock()
		return err
	}
	return nil
}

func (o *Overlay) removePendingLocked(tempID string) {
	kept := o.pending[:0]
	for _, m := range o.pending {
		if m.ID != tempID {
			kept = append(kept, m)
		}
	}
	o.pending = kept
}

// ApplySnapshot installs an authoritative snapshot from the live
// subscription and drops any temporary entry whose correlation id now
// appears in it, so temp and real messages never render together.
func (o *Overlay) ApplySnapshot(msgs []models.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.snapshot = msgs

	confirmed := make(map[string]bool, len(msgs))
	for _, m := range msgs {
		if m.ClientID != "" {
			confirmed[m.ClientID] = true
		}
	}
	kept := o.pending[:0]
	for _, m := range o.pending {
		if !confirmed[m.ClientID] {
			kept = append(kept, m)
		}
	}
	o.pending = kept
}

// Messages returns the rendered list: the authoritative snapshot followed by
// any unconfirmed temporary entries.
func (o *Overlay) Messages() []models.Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]models.Message, 0, len(o.snapshot)+len(o.pending))
	out = append(out, o.snapshot...)
	out = append(out, o.pending...)
	return out
}
