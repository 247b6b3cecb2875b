package entity

import "strings"

// PolicyState is a snapshot of the retention settings used for one
// evaluation pass. Callers load it from the settings store and pass it
// explicitly; the evaluator never reaches into shared state.
type PolicyState struct {
	// Whitelist holds ids (user, channel or guild) whose messages are
	// always retained regardless of most other toggles.
	Whitelist IDList

	// Blacklist holds ids whose messages are dropped unless whitelisted.
	Blacklist IDList

	// BlacklistedWords are trimmed, lower-cased substrings matched
	// case-insensitively against message content.
	BlacklistedWords []string

	// AlwaysLogDirectMessages retains every DM regardless of later rules.
	AlwaysLogDirectMessages bool

	// AlwaysLogCurrentChannel retains everything in the channel the user
	// currently has open.
	AlwaysLogCurrentChannel bool

	// IgnoreBots drops messages authored by bots unless the author is
	// whitelisted individually.
	IgnoreBots bool

	// IgnoreSelf drops the current user's own messages. Not overridable
	// by any whitelist entry.
	IgnoreSelf bool

	IgnoreMutedGuilds     bool
	IgnoreMutedCategories bool
	IgnoreMutedChannels   bool

	// CacheMessagesFromServers retains guild messages the host cached
	// incidentally even when their guild is not whitelisted.
	CacheMessagesFromServers bool
}

// DefaultPolicyState returns the settings a fresh install starts with.
func DefaultPolicyState() *PolicyState {
	return &PolicyState{
		AlwaysLogDirectMessages: true,
		IgnoreBots:              true,
		IgnoreSelf:              false,
		IgnoreMutedGuilds:       true,
		IgnoreMutedCategories:   true,
		IgnoreMutedChannels:     true,
	}
}

// MatchesBlacklistedWord reports whether content contains any configured
// blacklisted word, case-insensitively.
func (p *PolicyState) MatchesBlacklistedWord(content string) bool {
	if content == "" || len(p.BlacklistedWords) == 0 {
		return false
	}
	lower := strings.ToLower(content)
	for _, word := range p.BlacklistedWords {
		if word == "" {
			continue
		}
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// ParseWordList splits a comma-joined word list into normalized (trimmed,
// lower-cased) entries, dropping empties.
func ParseWordList(s string) []string {
	var words []string
	for _, part := range strings.Split(s, ",") {
		word := strings.ToLower(strings.TrimSpace(part))
		if word == "" {
			continue
		}
		words = append(words, word)
	}
	return words
}
