package store

import (
	"context"
	"errors"

	"notesnexus-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements RoomStore, MessageStore and UserStore on a pgx
// connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	query := `
		INSERT INTO rooms (id, name, created_by, token, participants, participant_limit)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := s.pool.QueryRow(ctx, query,
		room.ID, room.Name, room.CreatedBy, room.Token, room.Participants, room.ParticipantLimit,
	).Scan(&room.CreatedAt)
	if isUniqueViolation(err, "rooms_token_key") {
		return ErrTokenTaken
	}
	return err
}

func (s *PostgresStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	query := `
		SELECT id, name, created_by, token, participants, participant_limit, created_at
		FROM rooms WHERE id = $1
	`
	return s.scanRoom(s.pool.QueryRow(ctx, query, roomID))
}

func (s *PostgresStore) GetRoomByToken(ctx context.Context, token string) (*models.Room, error) {
	query := `
		SELECT id, name, created_by, token, participants, participant_limit, created_at
		FROM rooms WHERE token = $1
	`
	return s.scanRoom(s.pool.QueryRow(ctx, query, token))
}

func (s *PostgresStore) scanRoom(row pgx.Row) (*models.Room, error) {
	var room models.Room
	err := row.Scan(&room.ID, &room.Name, &room.CreatedBy, &room.Token,
		&room.Participants, &room.ParticipantLimit, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *PostgresStore) MutateRoom(ctx context.Context, roomID string, mutate func(*models.Room) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		SELECT id, name, created_by, token, participants, participant_limit, created_at
		FROM rooms WHERE id = $1 FOR UPDATE
	`
	room, err := s.scanRoom(tx.QueryRow(ctx, query, roomID))
	if err != nil {
		return err
	}

	if err := mutate(room); err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE rooms SET name = $2, participants = $3, participant_limit = $4 WHERE id = $1`,
		room.ID, room.Name, room.Participants, room.ParticipantLimit,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) ListRoomsByParticipant(ctx context.Context, userID string) ([]models.Room, error) {
	query := `
		SELECT id, name, created_by, token, participants, participant_limit, created_at
		FROM rooms WHERE $1 = ANY(participants)
		ORDER BY created_at DESC
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatedBy, &room.Token,
			&room.Participants, &room.ParticipantLimit, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (s *PostgresStore) DeleteRoomCascade(ctx context.Context, roomID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE room_id = $1`, roomID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, roomID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	query := `
		INSERT INTO messages (id, room_id, user_id, user_name, user_avatar, body, client_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	return s.pool.QueryRow(ctx, query,
		msg.ID, msg.RoomID, msg.UserID, msg.UserName, msg.UserAvatar, msg.Body, msg.ClientID,
	).Scan(&msg.CreatedAt)
}

func (s *PostgresStore) MessagesOrdered(ctx context.Context, roomID string) ([]models.Message, error) {
	query := `
		SELECT id, room_id, user_id, user_name, user_avatar, body, client_id, created_at
		FROM messages WHERE room_id = $1
		ORDER BY created_at ASC
	`
	msgs, err := s.queryMessages(ctx, query, roomID)
	if isIndexNotReady(err) {
		return nil, ErrIndexNotReady
	}
	return msgs, err
}

func (s *PostgresStore) MessagesUnordered(ctx context.Context, roomID string) ([]models.Message, error) {
	query := `
		SELECT id, room_id, user_id, user_name, user_avatar, body, client_id, created_at
		FROM messages WHERE room_id = $1
	`
	return s.queryMessages(ctx, query, roomID)
}

func (s *PostgresStore) queryMessages(ctx context.Context, query, roomID string) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.UserID, &msg.UserName,
			&msg.UserAvatar, &msg.Body, &msg.ClientID, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	query := `
		INSERT INTO users (id, email, display_name, avatar_url, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := s.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.DisplayName, user.AvatarURL, user.PasswordHash, user.IsAdmin,
	).Scan(&user.CreatedAt)
	if isUniqueViolation(err, "users_email_key") {
		return ErrEmailTaken
	}
	return err
}

func (s *PostgresStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, email, display_name, avatar_url, password_hash, is_admin, force_logout, created_at
		FROM users WHERE id = $1
	`
	return s.scanUser(s.pool.QueryRow(ctx, query, userID))
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, display_name, avatar_url, password_hash, is_admin, force_logout, created_at
		FROM users WHERE email = $1
	`
	return s.scanUser(s.pool.QueryRow(ctx, query, email))
}

func (s *PostgresStore) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.AvatarURL,
		&user.PasswordHash, &user.IsAdmin, &user.ForceLogout, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, email, display_name, avatar_url, password_hash, is_admin, force_logout, created_at
		FROM users ORDER BY created_at ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.DisplayName, &user.AvatarURL,
			&user.PasswordHash, &user.IsAdmin, &user.ForceLogout, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, userID, displayName, avatarURL string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET display_name = $2, avatar_url = $3 WHERE id = $1`,
		userID, displayName, avatarURL,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) SetForceLogout(ctx context.Context, userID string, value bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET force_logout = $2 WHERE id = $1`, userID, value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) ForceLogoutFlag(ctx context.Context, userID string) (bool, error) {
	var flag bool
	err := s.pool.QueryRow(ctx,
		`SELECT force_logout FROM users WHERE id = $1`, userID).Scan(&flag)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrUserNotFound
	}
	return flag, err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}

// isIndexNotReady detects the window where the message-ordering index has
// been invalidated and is being rebuilt concurrently (object_not_in_
// prerequisite_state). Reads fall back to the unordered path until the
// rebuild finishes.
func isIndexNotReady(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "55000"
	}
	return false
}
