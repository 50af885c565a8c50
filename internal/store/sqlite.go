package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS chat_selections (
	client_id  TEXT    NOT NULL,
	product_id INTEGER NOT NULL,
	position   INTEGER NOT NULL,
	PRIMARY KEY (client_id, product_id)
);
CREATE TABLE IF NOT EXISTS chat_messages (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT    NOT NULL UNIQUE,
	client_id  TEXT    NOT NULL,
	sender     TEXT    NOT NULL,
	body       TEXT    NOT NULL,
	prompt     TEXT    NOT NULL DEFAULT '',
	notice     INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS chat_messages_client_seq ON chat_messages (client_id, seq);
CREATE TABLE IF NOT EXISTS chat_preferences (
	client_id  TEXT    PRIMARY KEY,
	direction  TEXT    NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLiteStore keeps timestamps as unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, conn *sql.DB) (*SQLiteStore, error) {
	if conn == nil {
		return nil, fmt.Errorf("sqlite handle is nil")
	}
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("initialize chat schema: %w", err)
	}
	return &SQLiteStore{db: conn}, nil
}

func (s *SQLiteStore) Selection(ctx context.Context, clientID string) ([]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT product_id FROM chat_selections WHERE client_id = ? ORDER BY position ASC`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) SaveSelection(ctx context.Context, clientID string, productIDs []int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_selections WHERE client_id = ?`, clientID); err != nil {
		return err
	}
	for pos, id := range dedupeIDs(productIDs) {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO chat_selections (client_id, product_id, position) VALUES (?, ?, ?)`,
			clientID, id, pos,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, clientID string, msg Message) (Message, error) {
	msg = prepareMessage(clientID, msg)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO chat_messages (id, client_id, sender, body, prompt, notice, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, clientID, msg.Sender, msg.Text, msg.Prompt, msg.Notice, msg.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return Message{}, err
	}
	return msg, nil
}

func (s *SQLiteStore) Messages(ctx context.Context, clientID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, client_id, sender, body, prompt, notice, created_at FROM chat_messages
		 WHERE client_id = ? ORDER BY seq DESC LIMIT ?`,
		clientID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Message, 0)
	for rows.Next() {
		var (
			msg       Message
			createdAt int64
		)
		if err := rows.Scan(&msg.ID, &msg.ClientID, &msg.Sender, &msg.Text, &msg.Prompt, &msg.Notice, &createdAt); err != nil {
			return nil, err
		}
		msg.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	reverseMessages(out)
	return out, nil
}

func (s *SQLiteStore) ClearMessages(ctx context.Context, clientID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE client_id = ?`, clientID)
	return err
}

func (s *SQLiteStore) Direction(ctx context.Context, clientID string) (string, error) {
	var direction string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT direction FROM chat_preferences WHERE client_id = ?`,
		clientID,
	).Scan(&direction)
	if errors.Is(err, sql.ErrNoRows) {
		return DirectionLTR, nil
	}
	if err != nil {
		return "", err
	}
	return direction, nil
}

func (s *SQLiteStore) SaveDirection(ctx context.Context, clientID, direction string) error {
	d, err := NormalizeDirection(direction)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO chat_preferences (client_id, direction, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(client_id) DO UPDATE SET direction = excluded.direction, updated_at = excluded.updated_at`,
		clientID, d, time.Now().UTC().UnixMilli(),
	)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
