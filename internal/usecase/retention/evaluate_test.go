package retention

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"github.com/chatvault/chatvault/internal/domain/entity"
)

type fakeDirectory struct {
	currentUserID    string
	currentChannelID string
	dmChannels       map[string]bool
	mutedGuilds      map[string]bool
	mutedCategories  map[string]bool
	mutedChannels    map[string]bool
}

func (d *fakeDirectory) CurrentUserID() string          { return d.currentUserID }
func (d *fakeDirectory) CurrentChannelID() string       { return d.currentChannelID }
func (d *fakeDirectory) IsDMChannel(id string) bool     { return d.dmChannels[id] }
func (d *fakeDirectory) IsGuildMuted(id string) bool    { return d.mutedGuilds[id] }
func (d *fakeDirectory) IsCategoryMuted(id string) bool { return d.mutedCategories[id] }
func (d *fakeDirectory) IsChannelMuted(id string) bool  { return d.mutedChannels[id] }

type recordingSink struct {
	rules []string
}

func (s *recordingSink) Decision(rule string, ignore bool, keysAndValues ...any) {
	s.rules = append(s.rules, rule)
}

func (s *recordingSink) last() string {
	if len(s.rules) == 0 {
		return ""
	}
	return s.rules[len(s.rules)-1]
}

func newTestEvaluator(dir *fakeDirectory) (*EvaluateUseCase, *recordingSink) {
	sink := &recordingSink{}
	return NewEvaluateUseCase(dir, sink), sink
}

func guildMsg() entity.MessageContext {
	return entity.MessageContext{
		MessageID: "900",
		ChannelID: "ch1",
		AuthorID:  "author1",
		GuildID:   "g1",
		Content:   "hello there",
	}
}

func TestExecuteDefaultKeeps(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{})
	policy := entity.DefaultPolicyState()

	assert.False(t, uc.Execute(guildMsg(), policy))
	assert.Equal(t, RuleDefault, sink.last())
}

func TestExecuteEphemeralBeatsEverything(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{
		dmChannels: map[string]bool{"ch1": true},
	})
	policy := entity.DefaultPolicyState()
	policy.Whitelist.Add("author1")

	msg := guildMsg()
	msg.Flags = discordgo.MessageFlagsEphemeral

	assert.True(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleEphemeral, sink.last())
}

func TestExecuteBlacklistedWord(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{})
	policy := entity.DefaultPolicyState()
	policy.BlacklistedWords = entity.ParseWordList("secret")
	policy.Whitelist.Add("author1")

	msg := guildMsg()
	msg.Content = "this is SECRET stuff"

	// A whitelist entry does not rescue content matches.
	assert.True(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleBlacklistedWord, sink.last())
}

func TestExecuteSelfBeatsWhitelist(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{currentUserID: "author1"})
	policy := entity.DefaultPolicyState()
	policy.IgnoreSelf = true
	policy.Whitelist.Add("author1")

	assert.True(t, uc.Execute(guildMsg(), policy))
	assert.Equal(t, RuleSelf, sink.last())
}

func TestExecuteSelfDisabled(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{currentUserID: "author1"})
	policy := entity.DefaultPolicyState()

	assert.False(t, uc.Execute(guildMsg(), policy))
	assert.Equal(t, RuleDefault, sink.last())
}

func TestExecuteDMOverridesBlacklist(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{
		dmChannels: map[string]bool{"dm1": true},
	})
	policy := entity.DefaultPolicyState()
	policy.Blacklist.Add("author1")

	msg := guildMsg()
	msg.ChannelID = "dm1"
	msg.GuildID = ""

	assert.False(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleDirectMessage, sink.last())
}

func TestExecuteDMDoesNotOverrideBlacklistedWord(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{
		dmChannels: map[string]bool{"dm1": true},
	})
	policy := entity.DefaultPolicyState()
	policy.BlacklistedWords = entity.ParseWordList("secret")

	msg := guildMsg()
	msg.ChannelID = "dm1"
	msg.GuildID = ""
	msg.Content = "a secret for you"

	assert.True(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleBlacklistedWord, sink.last())
}

func TestExecuteDMDoesNotOverrideSelf(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{
		currentUserID: "author1",
		dmChannels:    map[string]bool{"dm1": true},
	})
	policy := entity.DefaultPolicyState()
	policy.IgnoreSelf = true

	msg := guildMsg()
	msg.ChannelID = "dm1"
	msg.GuildID = ""

	assert.True(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleSelf, sink.last())
}

func TestExecuteBotIgnored(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{})
	policy := entity.DefaultPolicyState()

	msg := guildMsg()
	msg.Bot = true

	assert.True(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleBot, sink.last())
}

func TestExecuteWhitelistedBotAuthorKept(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{})
	policy := entity.DefaultPolicyState()
	policy.Whitelist.Add("author1")

	msg := guildMsg()
	msg.Bot = true

	assert.False(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleWhitelist, sink.last())
}

func TestExecuteChannelWhitelistDoesNotRescueBot(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{})
	policy := entity.DefaultPolicyState()
	policy.Whitelist.Add("ch1")

	msg := guildMsg()
	msg.Bot = true

	// Only an author-level whitelist entry rescues a bot message.
	assert.True(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleBot, sink.last())
}

func TestExecuteGhostPingKept(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{})
	policy := entity.DefaultPolicyState()
	policy.Blacklist.Add("author1")

	msg := guildMsg()
	msg.GhostPinged = true

	assert.False(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleGhostPing, sink.last())
}

func TestExecuteWhitelistBeatsBlacklist(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{})
	policy := entity.DefaultPolicyState()
	policy.Whitelist.Add("author1")
	policy.Blacklist.Add("g1")

	assert.False(t, uc.Execute(guildMsg(), policy))
	assert.Equal(t, RuleWhitelist, sink.last())
}

func TestExecuteCurrentChannelKept(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{currentChannelID: "ch1"})
	policy := entity.DefaultPolicyState()
	policy.AlwaysLogCurrentChannel = true
	policy.Blacklist.Add("g1")

	assert.False(t, uc.Execute(guildMsg(), policy))
	assert.Equal(t, RuleWhitelist, sink.last())
}

func TestExecuteBlacklistedGuildIgnored(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{})
	policy := entity.DefaultPolicyState()
	policy.Blacklist.Add("g1")

	assert.True(t, uc.Execute(guildMsg(), policy))
	assert.Equal(t, RuleBlacklist, sink.last())
}

func TestExecuteUncachedGuild(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{})
	policy := entity.DefaultPolicyState()

	msg := guildMsg()
	msg.CachedByHost = true

	assert.True(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleUncachedGuild, sink.last())

	policy.CacheMessagesFromServers = true
	assert.False(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleDefault, sink.last())
}

func TestExecuteUncachedGuildWhitelistedGuildKept(t *testing.T) {
	uc, sink := newTestEvaluator(&fakeDirectory{})
	policy := entity.DefaultPolicyState()
	policy.Whitelist.Add("g1")

	msg := guildMsg()
	msg.CachedByHost = true

	assert.False(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleWhitelist, sink.last())
}

func TestExecuteMutedRules(t *testing.T) {
	dir := &fakeDirectory{
		mutedGuilds:     map[string]bool{"g-muted": true},
		mutedCategories: map[string]bool{"ch-cat": true},
		mutedChannels:   map[string]bool{"ch-muted": true},
	}
	uc, sink := newTestEvaluator(dir)
	policy := entity.DefaultPolicyState()

	msg := guildMsg()
	msg.GuildID = "g-muted"
	assert.True(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleMutedGuild, sink.last())

	msg = guildMsg()
	msg.ChannelID = "ch-cat"
	assert.True(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleMutedCategory, sink.last())

	msg = guildMsg()
	msg.ChannelID = "ch-muted"
	assert.True(t, uc.Execute(msg, policy))
	assert.Equal(t, RuleMutedChannel, sink.last())
}

func TestExecuteMutedTogglesOff(t *testing.T) {
	dir := &fakeDirectory{
		mutedGuilds:   map[string]bool{"g1": true},
		mutedChannels: map[string]bool{"ch1": true},
	}
	uc, sink := newTestEvaluator(dir)
	policy := entity.DefaultPolicyState()
	policy.IgnoreMutedGuilds = false
	policy.IgnoreMutedCategories = false
	policy.IgnoreMutedChannels = false

	assert.False(t, uc.Execute(guildMsg(), policy))
	assert.Equal(t, RuleDefault, sink.last())
}

func TestExecuteWhitelistBeatsMuted(t *testing.T) {
	dir := &fakeDirectory{mutedGuilds: map[string]bool{"g1": true}}
	uc, sink := newTestEvaluator(dir)
	policy := entity.DefaultPolicyState()
	policy.Whitelist.Add("ch1")

	assert.False(t, uc.Execute(guildMsg(), policy))
	assert.Equal(t, RuleWhitelist, sink.last())
}

func TestExecuteNilSink(t *testing.T) {
	uc := NewEvaluateUseCase(&fakeDirectory{}, nil)
	assert.False(t, uc.Execute(guildMsg(), entity.DefaultPolicyState()))
}
