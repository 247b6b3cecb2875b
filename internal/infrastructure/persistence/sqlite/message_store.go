package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/chatvault/chatvault/internal/domain/entity"
	"github.com/chatvault/chatvault/internal/domain/repository"
)

const (
	kindDeleted = "deleted"
	kindEdited  = "edited"
)

// MessageStore provides a SQLite implementation of repository.MessageStore.
// Message bodies are stored as JSON blobs; the deleted/edited indexes keep
// their observation order through an autoincrement sequence.
type MessageStore struct {
	db            *sql.DB
	maxMessages   int
	maxPerChannel int
}

// NewMessageStore creates a new SQLite message store with the given
// retention caps (0 = unlimited).
func NewMessageStore(db *sql.DB, maxMessages, maxPerChannel int) *MessageStore {
	return &MessageStore{
		db:            db,
		maxMessages:   maxMessages,
		maxPerChannel: maxPerChannel,
	}
}

// SaveMessage persists a record. A tombstone (nil body) never overwrites a
// stored body thanks to the COALESCE in the upsert.
func (s *MessageStore) SaveMessage(ctx context.Context, rec *entity.MessageRecord) error {
	var body sql.NullString
	if rec.Message != nil {
		data, err := json.Marshal(rec.Message)
		if err != nil {
			return fmt.Errorf("marshal message body: %w", err)
		}
		body = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, channel_id, guild_id, author_id, body, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			channel_id = excluded.channel_id,
			guild_id   = excluded.guild_id,
			author_id  = excluded.author_id,
			body       = COALESCE(excluded.body, messages.body),
			saved_at   = excluded.saved_at`,
		rec.ID, rec.ChannelID, rec.GuildID, rec.AuthorID, body,
		rec.SavedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}

	return s.evictOverCap(ctx)
}

// Message retrieves a record by message id.
// Returns nil, nil if not found.
func (s *MessageStore) Message(ctx context.Context, id string) (*entity.MessageRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, channel_id, guild_id, author_id, body, saved_at
		FROM messages WHERE id = ?`, id)

	var rec entity.MessageRecord
	var body sql.NullString
	var savedAt string
	err := row.Scan(&rec.ID, &rec.ChannelID, &rec.GuildID, &rec.AuthorID, &body, &savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find message: %w", err)
	}

	if t, err := time.Parse(time.RFC3339Nano, savedAt); err == nil {
		rec.SavedAt = t
	}
	if body.Valid {
		var msg discordgo.Message
		if err := json.Unmarshal([]byte(body.String), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal message body: %w", err)
		}
		rec.Message = &msg
	}
	return &rec, nil
}

// RecordDeleted appends a message id to the channel's deleted index.
func (s *MessageStore) RecordDeleted(ctx context.Context, channelID, messageID string) error {
	return s.recordEvent(ctx, channelID, messageID, kindDeleted)
}

// RecordEdited appends a message id to the channel's edited index.
func (s *MessageStore) RecordEdited(ctx context.Context, channelID, messageID string) error {
	return s.recordEvent(ctx, channelID, messageID, kindEdited)
}

func (s *MessageStore) recordEvent(ctx context.Context, channelID, messageID, kind string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO channel_events (channel_id, message_id, kind)
		VALUES (?, ?, ?)`, channelID, messageID, kind)
	if err != nil {
		return fmt.Errorf("record %s: %w", kind, err)
	}
	return s.trimIndex(ctx, channelID, kind)
}

// DeletedIDs returns the channel's deleted index in observation order.
func (s *MessageStore) DeletedIDs(ctx context.Context, channelID string) ([]string, error) {
	return s.eventIDs(ctx, channelID, kindDeleted)
}

// EditedIDs returns the channel's edited index in observation order.
func (s *MessageStore) EditedIDs(ctx context.Context, channelID string) ([]string, error) {
	return s.eventIDs(ctx, channelID, kindEdited)
}

func (s *MessageStore) eventIDs(ctx context.Context, channelID, kind string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id FROM channel_events
		WHERE channel_id = ? AND kind = ?
		ORDER BY seq`, channelID, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", kind, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", kind, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteMessage removes a record and its index entries.
func (s *MessageStore) DeleteMessage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM channel_events WHERE message_id = ?`, id); err != nil {
		return fmt.Errorf("delete message events: %w", err)
	}
	return nil
}

// Stats returns aggregate archive counts.
func (s *MessageStore) Stats(ctx context.Context) (*entity.ArchiveStats, error) {
	stats := entity.NewArchiveStats()

	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN body IS NOT NULL THEN 1 END),
			COUNT(CASE WHEN body IS NULL THEN 1 END)
		FROM messages`)
	if err := row.Scan(&stats.Messages, &stats.Tombstones); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT channel_id, kind, COUNT(*)
		FROM channel_events
		GROUP BY channel_id, kind`)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var channelID, kind string
		var count int
		if err := rows.Scan(&channelID, &kind, &count); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		switch kind {
		case kindDeleted:
			stats.DeletedByChannel[channelID] = count
		case kindEdited:
			stats.EditedByChannel[channelID] = count
		}
	}
	return stats, rows.Err()
}

// trimIndex drops the oldest index entries (and their bodies) beyond the
// per-channel cap.
func (s *MessageStore) trimIndex(ctx context.Context, channelID, kind string) error {
	if s.maxPerChannel <= 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id FROM channel_events
		WHERE channel_id = ? AND kind = ?
		ORDER BY seq DESC LIMIT -1 OFFSET ?`, channelID, kind, s.maxPerChannel)
	if err != nil {
		return fmt.Errorf("find evictable ids: %w", err)
	}
	defer rows.Close()

	var evict []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan evictable id: %w", err)
		}
		evict = append(evict, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range evict {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM channel_events WHERE channel_id = ? AND message_id = ? AND kind = ?`, channelID, id, kind); err != nil {
			return fmt.Errorf("evict index entry: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id); err != nil {
			return fmt.Errorf("evict message: %w", err)
		}
	}
	return nil
}

// evictOverCap drops the oldest records beyond the total cap.
func (s *MessageStore) evictOverCap(ctx context.Context) error {
	if s.maxMessages <= 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM messages
		ORDER BY saved_at DESC, id DESC LIMIT -1 OFFSET ?`, s.maxMessages)
	if err != nil {
		return fmt.Errorf("find evictable messages: %w", err)
	}
	defer rows.Close()

	var evict []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan evictable message: %w", err)
		}
		evict = append(evict, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range evict {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id); err != nil {
			return fmt.Errorf("evict message: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM channel_events WHERE message_id = ?`, id); err != nil {
			return fmt.Errorf("evict message events: %w", err)
		}
	}
	return nil
}
