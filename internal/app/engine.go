package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/chatvault/chatvault/internal/domain/entity"
	"github.com/chatvault/chatvault/internal/domain/repository"
	"github.com/chatvault/chatvault/internal/infrastructure/observability"
	"github.com/chatvault/chatvault/internal/usecase/history"
	"github.com/chatvault/chatvault/internal/usecase/retention"
)

// Engine receives the host client's local message events and drives the
// retention core: evaluate, archive, reconcile. The host calls these
// handlers synchronously from its own event delivery; nothing here opens a
// connection of its own.
type Engine struct {
	settings   repository.SettingsStore
	store      repository.MessageStore
	directory  retention.Directory
	evaluator  *retention.EvaluateUseCase
	reconciler *history.ReconcileUseCase
	metrics    *observability.Metrics
	logger     retention.Logger
}

// NewEngine wires the retention use cases together. metrics may be nil.
func NewEngine(
	settings repository.SettingsStore,
	store repository.MessageStore,
	directory retention.Directory,
	evaluator *retention.EvaluateUseCase,
	reconciler *history.ReconcileUseCase,
	metrics *observability.Metrics,
	logger retention.Logger,
) *Engine {
	return &Engine{
		settings:   settings,
		store:      store,
		directory:  directory,
		evaluator:  evaluator,
		reconciler: reconciler,
		metrics:    metrics,
		logger:     logger,
	}
}

// HandleMessageDelete processes a single message deletion. cachedByHost
// marks messages we only know about because the host client had them in
// its own cache.
func (e *Engine) HandleMessageDelete(ctx context.Context, msg *discordgo.Message, cachedByHost bool) error {
	policy, err := e.settings.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	mctx := entity.ContextForMessage(msg)
	mctx.CachedByHost = cachedByHost
	mctx.GhostPinged = e.mentionsCurrentUser(msg)

	if e.evaluate(ctx, mctx, policy) {
		return nil
	}

	rec := entity.NewMessageRecord(msg)
	if err := e.store.SaveMessage(ctx, rec); err != nil {
		return fmt.Errorf("archiving deleted message: %w", err)
	}
	if err := e.store.RecordDeleted(ctx, msg.ChannelID, msg.ID); err != nil {
		return fmt.Errorf("indexing deleted message: %w", err)
	}

	if e.metrics != nil {
		e.metrics.MessagesArchivedTotal.Add(ctx, 1)
	}
	e.logger.Debug("deleted message archived",
		"messageID", msg.ID,
		"channelID", msg.ChannelID,
		"ghostPinged", mctx.GhostPinged,
	)
	return nil
}

// HandleMessageDeleteBulk processes a bulk deletion. Bodies are usually
// already gone by the time the host reports these, so ids the policy keeps
// are recorded as tombstones unless the archive already holds a body.
func (e *Engine) HandleMessageDeleteBulk(ctx context.Context, channelID, guildID string, messageIDs []string) error {
	policy, err := e.settings.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	for _, id := range messageIDs {
		mctx := entity.MessageContext{
			MessageID: id,
			ChannelID: channelID,
			GuildID:   guildID,
		}
		if e.evaluate(ctx, mctx, policy) {
			continue
		}

		if err := e.store.SaveMessage(ctx, entity.NewTombstoneRecord(channelID, id)); err != nil {
			return fmt.Errorf("archiving bulk-deleted id: %w", err)
		}
		if err := e.store.RecordDeleted(ctx, channelID, id); err != nil {
			return fmt.Errorf("indexing bulk-deleted id: %w", err)
		}
		if e.metrics != nil {
			e.metrics.TombstonesTotal.Add(ctx, 1)
		}
	}

	e.logger.Debug("bulk deletion recorded",
		"channelID", channelID,
		"count", len(messageIDs),
	)
	return nil
}

// HandleMessageUpdate processes an edit. msg is the message as it stood
// before the edit, which is the version worth retaining.
func (e *Engine) HandleMessageUpdate(ctx context.Context, msg *discordgo.Message, cachedByHost bool) error {
	policy, err := e.settings.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	mctx := entity.ContextForMessage(msg)
	mctx.CachedByHost = cachedByHost

	if e.evaluate(ctx, mctx, policy) {
		return nil
	}

	if err := e.store.SaveMessage(ctx, entity.NewMessageRecord(msg)); err != nil {
		return fmt.Errorf("archiving edited message: %w", err)
	}
	if err := e.store.RecordEdited(ctx, msg.ChannelID, msg.ID); err != nil {
		return fmt.Errorf("indexing edited message: %w", err)
	}

	if e.metrics != nil {
		e.metrics.MessagesArchivedTotal.Add(ctx, 1)
	}
	return nil
}

// HandleHistoryLoaded splices archived deleted messages into a freshly
// loaded history page and returns the merged page, newest-first.
func (e *Engine) HandleHistoryLoaded(ctx context.Context, channelID string, page []*discordgo.Message, atStart, atEnd bool) ([]*discordgo.Message, error) {
	deletedIDs, err := e.store.DeletedIDs(ctx, channelID)
	if err != nil {
		return page, fmt.Errorf("loading deleted index: %w", err)
	}

	start := time.Now()
	merged := e.reconciler.Execute(ctx, page, deletedIDs, atStart, atEnd)

	if e.metrics != nil {
		e.metrics.RecordReconcile(ctx, len(merged)-len(page), time.Since(start).Seconds())
	}
	return merged, nil
}

// evaluate runs one retention decision and records its duration.
func (e *Engine) evaluate(ctx context.Context, mctx entity.MessageContext, policy *entity.PolicyState) bool {
	start := time.Now()
	ignore := e.evaluator.Execute(mctx, policy)
	if e.metrics != nil {
		e.metrics.DecisionDuration.Record(ctx, time.Since(start).Seconds())
	}
	return ignore
}

// mentionsCurrentUser reports whether a deleted message pinged the current
// user, directly or via @everyone. An @everyone in a muted channel never
// pinged anyone, so it does not count.
func (e *Engine) mentionsCurrentUser(msg *discordgo.Message) bool {
	if msg.MentionEveryone && !e.directory.IsChannelMuted(msg.ChannelID) {
		return true
	}
	current := e.directory.CurrentUserID()
	for _, u := range msg.Mentions {
		if u != nil && u.ID == current {
			return true
		}
	}
	return false
}
