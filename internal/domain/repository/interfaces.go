package repository

import (
	"context"

	"github.com/chatvault/chatvault/internal/domain/entity"
)

// MessageStore is the archive of retained messages plus the per-channel
// deleted/edited id indexes. The retention core only ever sees this
// contract; backends (memory, sqlite) live in infrastructure.
type MessageStore interface {
	// SaveMessage persists a record, replacing any existing record with
	// the same id. A record saved without a body never overwrites one
	// that has a body.
	SaveMessage(ctx context.Context, rec *entity.MessageRecord) error

	// Message retrieves a record by message id.
	// Returns nil, nil if not found.
	Message(ctx context.Context, id string) (*entity.MessageRecord, error)

	// RecordDeleted appends a message id to the channel's deleted index.
	// Duplicate ids are ignored.
	RecordDeleted(ctx context.Context, channelID, messageID string) error

	// RecordEdited appends a message id to the channel's edited index.
	// Duplicate ids are ignored.
	RecordEdited(ctx context.Context, channelID, messageID string) error

	// DeletedIDs returns the channel's deleted index in observation order.
	// Returns an empty slice when nothing was recorded.
	DeletedIDs(ctx context.Context, channelID string) ([]string, error)

	// EditedIDs returns the channel's edited index in observation order.
	EditedIDs(ctx context.Context, channelID string) ([]string, error)

	// DeleteMessage removes a record and its index entries.
	// Returns ErrNotFound if no record exists.
	DeleteMessage(ctx context.Context, id string) error

	// Stats returns aggregate archive counts.
	Stats(ctx context.Context) (*entity.ArchiveStats, error)
}

// SettingsStore persists the retention policy settings. The engine reads a
// fresh snapshot per event so external edits (settings panel, import) take
// effect without restarts.
type SettingsStore interface {
	// Load returns the current policy snapshot.
	Load() (*entity.PolicyState, error)

	// Save writes the policy back to the settings backend.
	Save(p *entity.PolicyState) error
}
