// Package store persists per-client picker state: the selected products,
// the chat transcript and the text direction preference.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"skincarechat/internal/db"
)

const (
	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

var ErrInvalidDirection = errors.New("direction must be ltr or rtl")

type Message struct {
	ID       string
	ClientID string
	Sender   string
	Text     string
	// Prompt replaces Text in the conversation sent upstream when set.
	Prompt string
	// Notice marks display-only messages that are never sent upstream.
	Notice    bool
	CreatedAt time.Time
}

// ConversationText is the content sent upstream for msg.
func (m Message) ConversationText() string {
	if m.Prompt != "" {
		return m.Prompt
	}
	return m.Text
}

type Store interface {
	Selection(ctx context.Context, clientID string) ([]int, error)
	SaveSelection(ctx context.Context, clientID string, productIDs []int) error
	// AppendMessage assigns ID and CreatedAt when they are empty and returns
	// the stored message.
	AppendMessage(ctx context.Context, clientID string, msg Message) (Message, error)
	// Messages returns at most limit of the newest messages, oldest first.
	// A non-positive limit returns the whole transcript.
	Messages(ctx context.Context, clientID string, limit int) ([]Message, error)
	ClearMessages(ctx context.Context, clientID string) error
	Direction(ctx context.Context, clientID string) (string, error)
	SaveDirection(ctx context.Context, clientID, direction string) error
	Close() error
}

// Open selects the backend from a DATABASE_URL value.
func Open(ctx context.Context, rawURL string, log zerolog.Logger) (Store, error) {
	driver, target, err := db.Detect(rawURL)
	if err != nil {
		return nil, err
	}
	switch driver {
	case db.DriverPostgres:
		pool, err := db.Connect(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("database connect failed: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		s, err := NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Str("driver", string(driver)).Msg("store opened")
		return s, nil
	case db.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, target)
		if err != nil {
			return nil, err
		}
		s, err := NewSQLiteStore(ctx, conn)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		log.Info().Str("driver", string(driver)).Str("path", target).Msg("store opened")
		return s, nil
	default:
		log.Warn().Msg("DATABASE_URL not set; client state is kept in memory and lost on restart")
		return NewMemoryStore(), nil
	}
}

func NormalizeDirection(direction string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case DirectionLTR:
		return DirectionLTR, nil
	case DirectionRTL:
		return DirectionRTL, nil
	}
	return "", ErrInvalidDirection
}

func prepareMessage(clientID string, msg Message) Message {
	msg.ClientID = clientID
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	// Millisecond precision survives every backend unchanged.
	msg.CreatedAt = msg.CreatedAt.UTC().Truncate(time.Millisecond)
	return msg
}

func dedupeIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func reverseMessages(items []Message) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
