package settings

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvault/chatvault/internal/domain/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNewStoreMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	store, err := NewStore(path, testLogger())
	require.NoError(t, err)

	policy, err := store.Load()
	require.NoError(t, err)

	defaults := entity.DefaultPolicyState()
	assert.Equal(t, defaults.AlwaysLogDirectMessages, policy.AlwaysLogDirectMessages)
	assert.Equal(t, defaults.IgnoreBots, policy.IgnoreBots)
	assert.Equal(t, defaults.IgnoreSelf, policy.IgnoreSelf)
	assert.Equal(t, 0, policy.Whitelist.Len())
	assert.Equal(t, 0, policy.Blacklist.Len())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	store, err := NewStore(path, testLogger())
	require.NoError(t, err)

	policy, err := store.Load()
	require.NoError(t, err)
	policy.Whitelist.Add("111")
	policy.Whitelist.Add("222")
	policy.Blacklist.Add("333")
	policy.BlacklistedWords = entity.ParseWordList("secret,spoiler")
	policy.IgnoreSelf = true
	policy.AlwaysLogDirectMessages = false

	require.NoError(t, store.Save(policy))

	// A fresh store reading the same file sees the saved state.
	reloaded, err := NewStore(path, testLogger())
	require.NoError(t, err)

	got, err := reloaded.Load()
	require.NoError(t, err)
	assert.Equal(t, "111,222", got.Whitelist.String())
	assert.Equal(t, "333", got.Blacklist.String())
	assert.Equal(t, []string{"secret", "spoiler"}, got.BlacklistedWords)
	assert.True(t, got.IgnoreSelf)
	assert.False(t, got.AlwaysLogDirectMessages)
}

func TestLoadParsesCommaJoinedLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	store, err := NewStore(path, testLogger())
	require.NoError(t, err)

	policy := entity.DefaultPolicyState()
	policy.Whitelist = entity.ParseIDList("111, 222 ,111")
	require.NoError(t, store.Save(policy))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222"}, got.Whitelist.IDs())
}
