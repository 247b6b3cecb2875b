package retention

import (
	"github.com/bwmarrin/discordgo"

	"github.com/chatvault/chatvault/internal/domain/entity"
)

// Rule names emitted to the DecisionSink. One of these decides every
// evaluation.
const (
	RuleEphemeral       = "ephemeral"
	RuleBlacklistedWord = "blacklisted_word"
	RuleSelf            = "self"
	RuleDirectMessage   = "direct_message"
	RuleBot             = "bot"
	RuleGhostPing       = "ghost_ping"
	RuleWhitelist       = "whitelist"
	RuleBlacklist       = "blacklist"
	RuleUncachedGuild   = "uncached_guild"
	RuleMutedGuild      = "muted_guild"
	RuleMutedCategory   = "muted_category"
	RuleMutedChannel    = "muted_channel"
	RuleDefault         = "default"
)

// EvaluateUseCase decides whether a message should be ignored (not
// retained). It is a pure function of the message context and the policy
// snapshot, apart from the diagnostic sink.
type EvaluateUseCase struct {
	directory Directory
	sink      DecisionSink
}

// NewEvaluateUseCase creates a new EvaluateUseCase. sink may be nil.
func NewEvaluateUseCase(directory Directory, sink DecisionSink) *EvaluateUseCase {
	return &EvaluateUseCase{
		directory: directory,
		sink:      sink,
	}
}

// Execute returns true when the message should be ignored.
//
// Rules run top to bottom and the first match wins; the order is
// load-bearing. The whitelist check sits after the self/bot rules, so
// whitelisting a channel or guild never rescues a self-authored or bot
// message, but it sits before the blacklist check, so a whitelisted entity
// is never blocked by a blacklist entry.
func (uc *EvaluateUseCase) Execute(msg entity.MessageContext, policy *entity.PolicyState) bool {
	// Ephemeral messages were never really posted; drop before anything
	// else, including whitelists.
	if msg.Flags&discordgo.MessageFlagsEphemeral != 0 {
		return uc.decide(RuleEphemeral, true, msg)
	}

	if policy.MatchesBlacklistedWord(msg.Content) {
		return uc.decide(RuleBlacklistedWord, true, msg)
	}

	if policy.IgnoreSelf && msg.AuthorID == uc.directory.CurrentUserID() {
		return uc.decide(RuleSelf, true, msg)
	}

	// DM override short-circuits every later rule, blacklist included.
	if policy.AlwaysLogDirectMessages && uc.directory.IsDMChannel(msg.ChannelID) {
		return uc.decide(RuleDirectMessage, false, msg)
	}

	// Only an author-level whitelist entry rescues a bot message.
	if policy.IgnoreBots && msg.Bot && !policy.Whitelist.Contains(msg.AuthorID) {
		return uc.decide(RuleBot, true, msg)
	}

	if msg.GhostPinged {
		return uc.decide(RuleGhostPing, false, msg)
	}

	if policy.Whitelist.Contains(msg.AuthorID) ||
		policy.Whitelist.Contains(msg.ChannelID) ||
		(msg.GuildID != "" && policy.Whitelist.Contains(msg.GuildID)) ||
		(policy.AlwaysLogCurrentChannel && msg.ChannelID == uc.directory.CurrentChannelID()) {
		return uc.decide(RuleWhitelist, false, msg)
	}

	if policy.Blacklist.Contains(msg.AuthorID) ||
		policy.Blacklist.Contains(msg.ChannelID) ||
		(msg.GuildID != "" && policy.Blacklist.Contains(msg.GuildID)) {
		return uc.decide(RuleBlacklist, true, msg)
	}

	// Incidentally cached guild messages are only kept when guild-wide
	// caching is on or the guild earned a whitelist entry.
	if msg.CachedByHost && !policy.CacheMessagesFromServers &&
		msg.GuildID != "" && !policy.Whitelist.Contains(msg.GuildID) {
		return uc.decide(RuleUncachedGuild, true, msg)
	}

	if policy.IgnoreMutedGuilds && msg.GuildID != "" && uc.directory.IsGuildMuted(msg.GuildID) {
		return uc.decide(RuleMutedGuild, true, msg)
	}

	if policy.IgnoreMutedCategories && uc.directory.IsCategoryMuted(msg.ChannelID) {
		return uc.decide(RuleMutedCategory, true, msg)
	}

	if policy.IgnoreMutedChannels && uc.directory.IsChannelMuted(msg.ChannelID) {
		return uc.decide(RuleMutedChannel, true, msg)
	}

	return uc.decide(RuleDefault, false, msg)
}

func (uc *EvaluateUseCase) decide(rule string, ignore bool, msg entity.MessageContext) bool {
	if uc.sink != nil {
		uc.sink.Decision(rule, ignore,
			"messageID", msg.MessageID,
			"channelID", msg.ChannelID,
			"authorID", msg.AuthorID,
			"guildID", msg.GuildID,
		)
	}
	return ignore
}
