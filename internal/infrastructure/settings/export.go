package settings

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/chatvault/chatvault/internal/domain/entity"
)

// exportVersion is bumped when the envelope layout changes.
const exportVersion = 1

// Envelope is the versioned export format for the retention settings.
type Envelope struct {
	ID         string    `yaml:"id"`
	Version    int       `yaml:"version"`
	ExportedAt time.Time `yaml:"exported_at"`

	WhitelistedIDs   string `yaml:"whitelisted_ids"`
	BlacklistedIDs   string `yaml:"blacklisted_ids"`
	BlacklistedWords string `yaml:"blacklisted_words"`

	AlwaysLogDirectMessages  bool `yaml:"always_log_direct_messages"`
	AlwaysLogCurrentChannel  bool `yaml:"always_log_current_channel"`
	IgnoreBots               bool `yaml:"ignore_bots"`
	IgnoreSelf               bool `yaml:"ignore_self"`
	IgnoreMutedGuilds        bool `yaml:"ignore_muted_guilds"`
	IgnoreMutedCategories    bool `yaml:"ignore_muted_categories"`
	IgnoreMutedChannels      bool `yaml:"ignore_muted_channels"`
	CacheMessagesFromServers bool `yaml:"cache_messages_from_servers"`
}

// Export writes the policy as a YAML envelope.
func Export(w io.Writer, p *entity.PolicyState) error {
	env := Envelope{
		ID:                       uuid.New().String(),
		Version:                  exportVersion,
		ExportedAt:               time.Now().UTC(),
		WhitelistedIDs:           p.Whitelist.String(),
		BlacklistedIDs:           p.Blacklist.String(),
		BlacklistedWords:         strings.Join(p.BlacklistedWords, ","),
		AlwaysLogDirectMessages:  p.AlwaysLogDirectMessages,
		AlwaysLogCurrentChannel:  p.AlwaysLogCurrentChannel,
		IgnoreBots:               p.IgnoreBots,
		IgnoreSelf:               p.IgnoreSelf,
		IgnoreMutedGuilds:        p.IgnoreMutedGuilds,
		IgnoreMutedCategories:    p.IgnoreMutedCategories,
		IgnoreMutedChannels:      p.IgnoreMutedChannels,
		CacheMessagesFromServers: p.CacheMessagesFromServers,
	}

	data, err := yaml.Marshal(&env)
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// Import parses a YAML envelope back into a policy snapshot. The whole
// envelope is validated before anything is returned, so a bad file never
// half-applies.
func Import(r io.Reader) (*entity.PolicyState, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}

	var env Envelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse import: %w", err)
	}
	if env.Version != exportVersion {
		return nil, fmt.Errorf("%w: %d", entity.ErrUnsupportedExport, env.Version)
	}

	return &entity.PolicyState{
		Whitelist:                entity.ParseIDList(env.WhitelistedIDs),
		Blacklist:                entity.ParseIDList(env.BlacklistedIDs),
		BlacklistedWords:         entity.ParseWordList(env.BlacklistedWords),
		AlwaysLogDirectMessages:  env.AlwaysLogDirectMessages,
		AlwaysLogCurrentChannel:  env.AlwaysLogCurrentChannel,
		IgnoreBots:               env.IgnoreBots,
		IgnoreSelf:               env.IgnoreSelf,
		IgnoreMutedGuilds:        env.IgnoreMutedGuilds,
		IgnoreMutedCategories:    env.IgnoreMutedCategories,
		IgnoreMutedChannels:      env.IgnoreMutedChannels,
		CacheMessagesFromServers: env.CacheMessagesFromServers,
	}, nil
}
