package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS chat_selections (
	client_id  TEXT    NOT NULL,
	product_id INTEGER NOT NULL,
	position   INTEGER NOT NULL,
	PRIMARY KEY (client_id, product_id)
);
CREATE TABLE IF NOT EXISTS chat_messages (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT        NOT NULL UNIQUE,
	client_id  TEXT        NOT NULL,
	sender     TEXT        NOT NULL,
	body       TEXT        NOT NULL,
	prompt     TEXT        NOT NULL DEFAULT '',
	notice     BOOLEAN     NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS chat_messages_client_seq ON chat_messages (client_id, seq);
CREATE TABLE IF NOT EXISTS chat_preferences (
	client_id  TEXT        PRIMARY KEY,
	direction  TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates missing tables and checks that existing ones have
// the columns the store reads.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("database pool is nil")
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("ensure chat schema: %w", err)
	}
	if err := validateRuntimeSchema(ctx, pool); err != nil {
		return nil, fmt.Errorf("database schema mismatch: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Selection(ctx context.Context, clientID string) ([]int, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT product_id FROM chat_selections WHERE client_id = $1 ORDER BY position ASC`,
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

func (s *PostgresStore) SaveSelection(ctx context.Context, clientID string, productIDs []int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chat_selections WHERE client_id = $1`, clientID); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for pos, id := range dedupeIDs(productIDs) {
		batch.Queue(
			`INSERT INTO chat_selections (client_id, product_id, position) VALUES ($1, $2, $3)`,
			clientID, id, pos,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) AppendMessage(ctx context.Context, clientID string, msg Message) (Message, error) {
	msg = prepareMessage(clientID, msg)
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO chat_messages (id, client_id, sender, body, prompt, notice, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		msg.ID, clientID, msg.Sender, msg.Text, msg.Prompt, msg.Notice, msg.CreatedAt,
	)
	if err != nil {
		return Message{}, err
	}
	return msg, nil
}

func (s *PostgresStore) Messages(ctx context.Context, clientID string, limit int) ([]Message, error) {
	query := `SELECT id, client_id, sender, body, prompt, notice, created_at FROM chat_messages
		WHERE client_id = $1 ORDER BY seq DESC`
	args := []any{clientID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Message, 0)
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.ClientID, &msg.Sender, &msg.Text, &msg.Prompt, &msg.Notice, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.CreatedAt = msg.CreatedAt.UTC()
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	reverseMessages(out)
	return out, nil
}

func (s *PostgresStore) ClearMessages(ctx context.Context, clientID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM chat_messages WHERE client_id = $1`, clientID)
	return err
}

func (s *PostgresStore) Direction(ctx context.Context, clientID string) (string, error) {
	var direction string
	err := s.pool.QueryRow(
		ctx,
		`SELECT direction FROM chat_preferences WHERE client_id = $1`,
		clientID,
	).Scan(&direction)
	if errors.Is(err, pgx.ErrNoRows) {
		return DirectionLTR, nil
	}
	if err != nil {
		return "", err
	}
	return direction, nil
}

func (s *PostgresStore) SaveDirection(ctx context.Context, clientID, direction string) error {
	d, err := NormalizeDirection(direction)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(
		ctx,
		`INSERT INTO chat_preferences (client_id, direction, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (client_id) DO UPDATE SET direction = EXCLUDED.direction, updated_at = EXCLUDED.updated_at`,
		clientID, d, time.Now().UTC(),
	)
	return err
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func validateRuntimeSchema(ctx context.Context, pool *pgxpool.Pool) error {
	requiredColumns := []struct {
		table  string
		column string
	}{
		{table: "chat_selections", column: "position"},
		{table: "chat_messages", column: "seq"},
		{table: "chat_messages", column: "body"},
		{table: "chat_messages", column: "prompt"},
		{table: "chat_messages", column: "notice"},
		{table: "chat_preferences", column: "direction"},
	}

	for _, item := range requiredColumns {
		ok, err := columnExists(ctx, pool, item.table, item.column)
		if err != nil {
			return fmt.Errorf(
				"failed checking schema for %s.%s: %w",
				item.table,
				item.column,
				err,
			)
		}
		if !ok {
			return fmt.Errorf(
				"required column %s.%s is missing; drop the stale table or migrate it",
				item.table,
				item.column,
			)
		}
	}
	return nil
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	table := strings.TrimSpace(tableName)
	column := strings.TrimSpace(columnName)
	if table == "" || column == "" {
		return false, fmt.Errorf("table/column must not be empty")
	}
	var exists bool
	err := pool.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM information_schema.columns
		   WHERE table_schema = current_schema()
		     AND lower(table_name) = lower($1)
		     AND lower(column_name) = lower($2)
		 )`,
		table,
		column,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
