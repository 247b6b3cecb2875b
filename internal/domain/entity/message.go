package entity

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// MessageContext describes one message at the moment a retention decision
// is made. It is built fresh per host event and never persisted.
type MessageContext struct {
	// MessageID is the snowflake id of the evaluated message.
	MessageID string

	// ChannelID is the channel the message was posted in.
	ChannelID string

	// AuthorID is the message author's user id.
	AuthorID string

	// GuildID is empty for direct messages.
	GuildID string

	// Flags carries the host's message flag bitmask.
	Flags discordgo.MessageFlags

	// Bot is true when the author is a bot account.
	Bot bool

	// GhostPinged is true when the message mentioned the current user and
	// was deleted before it could be viewed.
	GhostPinged bool

	// CachedByHost marks messages captured only because the host client
	// happened to have them in its own cache.
	CachedByHost bool

	// Content is the message text, used for blacklisted-word matching.
	Content string
}

// ContextForMessage builds a MessageContext from a host message.
func ContextForMessage(msg *discordgo.Message) MessageContext {
	ctx := MessageContext{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
		Flags:     msg.Flags,
		Content:   msg.Content,
	}
	if msg.Author != nil {
		ctx.AuthorID = msg.Author.ID
		ctx.Bot = msg.Author.Bot
	}
	return ctx
}

// MessageRecord is an archived message keyed by its id. Message may be nil:
// the id was observed (e.g. in a bulk delete) but the body was never
// retained.
type MessageRecord struct {
	ID        string
	ChannelID string
	GuildID   string
	AuthorID  string
	Message   *discordgo.Message
	SavedAt   time.Time
}

// NewMessageRecord creates a record with a retained body.
func NewMessageRecord(msg *discordgo.Message) *MessageRecord {
	rec := &MessageRecord{
		ID:        msg.ID,
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
		Message:   msg,
		SavedAt:   time.Now().UTC(),
	}
	if msg.Author != nil {
		rec.AuthorID = msg.Author.ID
	}
	return rec
}

// NewTombstoneRecord creates a body-less record for an id whose content was
// already lost when the deletion was observed.
func NewTombstoneRecord(channelID, messageID string) *MessageRecord {
	return &MessageRecord{
		ID:        messageID,
		ChannelID: channelID,
		SavedAt:   time.Now().UTC(),
	}
}

// ArchiveStats holds aggregate counts over the archive.
type ArchiveStats struct {
	// Messages is the number of records with a retained body.
	Messages int

	// Tombstones is the number of records without a body.
	Tombstones int

	// DeletedByChannel maps channel id to deleted-index length.
	DeletedByChannel map[string]int

	// EditedByChannel maps channel id to edited-index length.
	EditedByChannel map[string]int
}

// NewArchiveStats creates an empty stats value.
func NewArchiveStats() *ArchiveStats {
	return &ArchiveStats{
		DeletedByChannel: make(map[string]int),
		EditedByChannel:  make(map[string]int),
	}
}
