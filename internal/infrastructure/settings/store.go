package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/chatvault/chatvault/internal/domain/entity"
)

// Settings file keys. The id lists keep the comma-joined form the original
// settings panel wrote, so an existing file imports cleanly.
const (
	keyWhitelistedIDs          = "whitelisted_ids"
	keyBlacklistedIDs          = "blacklisted_ids"
	keyBlacklistedWords        = "blacklisted_words"
	keyAlwaysLogDirectMessages = "always_log_direct_messages"
	keyAlwaysLogCurrentChannel = "always_log_current_channel"
	keyIgnoreBots              = "ignore_bots"
	keyIgnoreSelf              = "ignore_self"
	keyIgnoreMutedGuilds       = "ignore_muted_guilds"
	keyIgnoreMutedCategories   = "ignore_muted_categories"
	keyIgnoreMutedChannels     = "ignore_muted_channels"
	keyCacheFromServers        = "cache_messages_from_servers"
)

// Store is a viper-backed repository.SettingsStore. The settings file is
// shared with the client's settings panel, so Watch re-reads it on change.
type Store struct {
	mu     sync.Mutex
	v      *viper.Viper
	path   string
	logger *slog.Logger
}

// NewStore creates a settings store backed by the file at path. A missing
// file is not an error; defaults apply until the first Save.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := entity.DefaultPolicyState()
	v.SetDefault(keyWhitelistedIDs, "")
	v.SetDefault(keyBlacklistedIDs, "")
	v.SetDefault(keyBlacklistedWords, "")
	v.SetDefault(keyAlwaysLogDirectMessages, defaults.AlwaysLogDirectMessages)
	v.SetDefault(keyAlwaysLogCurrentChannel, defaults.AlwaysLogCurrentChannel)
	v.SetDefault(keyIgnoreBots, defaults.IgnoreBots)
	v.SetDefault(keyIgnoreSelf, defaults.IgnoreSelf)
	v.SetDefault(keyIgnoreMutedGuilds, defaults.IgnoreMutedGuilds)
	v.SetDefault(keyIgnoreMutedCategories, defaults.IgnoreMutedCategories)
	v.SetDefault(keyIgnoreMutedChannels, defaults.IgnoreMutedChannels)
	v.SetDefault(keyCacheFromServers, defaults.CacheMessagesFromServers)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading settings file: %w", err)
		}
	}

	return &Store{v: v, path: path, logger: logger}, nil
}

// Load returns the current policy snapshot.
func (s *Store) Load() (*entity.PolicyState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policyLocked(), nil
}

func (s *Store) policyLocked() *entity.PolicyState {
	wl := entity.ParseIDList(s.v.GetString(keyWhitelistedIDs))
	bl := entity.ParseIDList(s.v.GetString(keyBlacklistedIDs))
	return &entity.PolicyState{
		Whitelist:                wl,
		Blacklist:                bl,
		BlacklistedWords:         entity.ParseWordList(s.v.GetString(keyBlacklistedWords)),
		AlwaysLogDirectMessages:  s.v.GetBool(keyAlwaysLogDirectMessages),
		AlwaysLogCurrentChannel:  s.v.GetBool(keyAlwaysLogCurrentChannel),
		IgnoreBots:               s.v.GetBool(keyIgnoreBots),
		IgnoreSelf:               s.v.GetBool(keyIgnoreSelf),
		IgnoreMutedGuilds:        s.v.GetBool(keyIgnoreMutedGuilds),
		IgnoreMutedCategories:    s.v.GetBool(keyIgnoreMutedCategories),
		IgnoreMutedChannels:      s.v.GetBool(keyIgnoreMutedChannels),
		CacheMessagesFromServers: s.v.GetBool(keyCacheFromServers),
	}
}

// Save writes the policy back to the settings file.
func (s *Store) Save(p *entity.PolicyState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(keyWhitelistedIDs, p.Whitelist.String())
	s.v.Set(keyBlacklistedIDs, p.Blacklist.String())
	s.v.Set(keyBlacklistedWords, strings.Join(p.BlacklistedWords, ","))
	s.v.Set(keyAlwaysLogDirectMessages, p.AlwaysLogDirectMessages)
	s.v.Set(keyAlwaysLogCurrentChannel, p.AlwaysLogCurrentChannel)
	s.v.Set(keyIgnoreBots, p.IgnoreBots)
	s.v.Set(keyIgnoreSelf, p.IgnoreSelf)
	s.v.Set(keyIgnoreMutedGuilds, p.IgnoreMutedGuilds)
	s.v.Set(keyIgnoreMutedCategories, p.IgnoreMutedCategories)
	s.v.Set(keyIgnoreMutedChannels, p.IgnoreMutedChannels)
	s.v.Set(keyCacheFromServers, p.CacheMessagesFromServers)

	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// Watch re-reads the settings file when it changes on disk and hands the
// fresh snapshot to onChange. The watch runs until the process exits.
func (s *Store) Watch(onChange func(*entity.PolicyState)) {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		s.mu.Lock()
		policy := s.policyLocked()
		s.mu.Unlock()

		s.logger.Info("settings file changed",
			"path", e.Name,
			"whitelisted", policy.Whitelist.Len(),
			"blacklisted", policy.Blacklist.Len(),
		)
		if onChange != nil {
			onChange(policy)
		}
	})
	s.v.WatchConfig()
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}
