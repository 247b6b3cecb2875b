package retention

// Directory answers the host-state questions the evaluator cannot derive
// from the message itself: who the current user is, which channel is open,
// and what the client has muted.
type Directory interface {
	// CurrentUserID returns the id of the logged-in user.
	CurrentUserID() string

	// CurrentChannelID returns the id of the channel currently open in
	// the client, or "" when none is.
	CurrentChannelID() string

	// IsDMChannel reports whether the channel is a direct-message channel.
	IsDMChannel(channelID string) bool

	// IsGuildMuted reports whether the guild is muted in the client.
	IsGuildMuted(guildID string) bool

	// IsCategoryMuted reports whether the channel's parent category is muted.
	IsCategoryMuted(channelID string) bool

	// IsChannelMuted reports whether the channel itself is muted.
	IsChannelMuted(channelID string) bool
}

// DecisionSink receives one structured record per evaluation: the rule that
// decided, the outcome, and contextual fields. Diagnostics only; it never
// affects control flow.
type DecisionSink interface {
	Decision(rule string, ignore bool, keysAndValues ...any)
}

// Logger defines the contract for logging within use cases.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}
