package dto

import "github.com/bwmarrin/discordgo"

// Event types accepted on the host event stream.
const (
	EventState          = "state"
	EventMessageDelete  = "message_delete"
	EventMessageBulkDel = "message_delete_bulk"
	EventMessageUpdate  = "message_update"
	EventHistoryLoaded  = "history_load"
)

// HostEvent is one line of the host client's event stream. Exactly the
// fields relevant to its Type are set.
type HostEvent struct {
	Type string `json:"type"`

	// State replaces the directory snapshot (EventState).
	State *HostState `json:"state,omitempty"`

	// Message carries the affected message for delete/update events. For
	// updates this is the pre-edit version.
	Message *discordgo.Message `json:"message,omitempty"`

	// CachedByHost marks messages the host only held in its own cache.
	CachedByHost bool `json:"cached_by_host,omitempty"`

	// ChannelID/GuildID and IDs describe bulk deletions.
	ChannelID string   `json:"channel_id,omitempty"`
	GuildID   string   `json:"guild_id,omitempty"`
	IDs       []string `json:"ids,omitempty"`

	// Messages is a freshly loaded history page, newest-first
	// (EventHistoryLoaded).
	Messages []*discordgo.Message `json:"messages,omitempty"`

	// AtStart/AtEnd flag whether the page touches the channel's newest
	// or oldest message.
	AtStart bool `json:"at_start,omitempty"`
	AtEnd   bool `json:"at_end,omitempty"`
}

// HostState is the client-side state the evaluator queries: identity,
// focus, and mute configuration.
type HostState struct {
	CurrentUserID    string   `json:"current_user_id"`
	CurrentChannelID string   `json:"current_channel_id"`
	DMChannels       []string `json:"dm_channels"`
	MutedGuilds      []string `json:"muted_guilds"`
	MutedCategories  []string `json:"muted_categories"` // keyed by channel id
	MutedChannels    []string `json:"muted_channels"`
}

// HistoryResult is written back for every history_load event.
type HistoryResult struct {
	ChannelID string               `json:"channel_id"`
	Messages  []*discordgo.Message `json:"messages"`
}
