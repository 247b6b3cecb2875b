package host

import (
	"sync"

	"github.com/chatvault/chatvault/internal/adapter/dto"
)

// StateDirectory is a retention.Directory backed by the latest state
// snapshot the host sent. Thread-safe: the host may refresh state while an
// evaluation reads it.
type StateDirectory struct {
	mu               sync.RWMutex
	currentUserID    string
	currentChannelID string
	dmChannels       map[string]bool
	mutedGuilds      map[string]bool
	mutedCategories  map[string]bool
	mutedChannels    map[string]bool
}

// NewStateDirectory creates an empty directory; every predicate is false
// until the first state snapshot arrives.
func NewStateDirectory() *StateDirectory {
	return &StateDirectory{
		dmChannels:      make(map[string]bool),
		mutedGuilds:     make(map[string]bool),
		mutedCategories: make(map[string]bool),
		mutedChannels:   make(map[string]bool),
	}
}

// Update replaces the directory contents with a new snapshot.
func (d *StateDirectory) Update(state *dto.HostState) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.currentUserID = state.CurrentUserID
	d.currentChannelID = state.CurrentChannelID
	d.dmChannels = toSet(state.DMChannels)
	d.mutedGuilds = toSet(state.MutedGuilds)
	d.mutedCategories = toSet(state.MutedCategories)
	d.mutedChannels = toSet(state.MutedChannels)
}

func (d *StateDirectory) CurrentUserID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.currentUserID
}

func (d *StateDirectory) CurrentChannelID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.currentChannelID
}

func (d *StateDirectory) IsDMChannel(channelID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dmChannels[channelID]
}

func (d *StateDirectory) IsGuildMuted(guildID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mutedGuilds[guildID]
}

func (d *StateDirectory) IsCategoryMuted(channelID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mutedCategories[channelID]
}

func (d *StateDirectory) IsChannelMuted(channelID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mutedChannels[channelID]
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = true
		}
	}
	return set
}
