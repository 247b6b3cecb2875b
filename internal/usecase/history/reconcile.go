package history

import (
	"context"
	"sort"

	"github.com/bwmarrin/discordgo"

	"github.com/chatvault/chatvault/internal/domain/entity"
	"github.com/chatvault/chatvault/internal/domain/repository"
)

// Logger defines the contract for logging within use cases.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ReconcileUseCase splices archived deleted messages back into a freshly
// loaded history page so the scrollback stays chronologically coherent.
type ReconcileUseCase struct {
	store  repository.MessageStore
	logger Logger
}

// NewReconcileUseCase creates a new ReconcileUseCase.
func NewReconcileUseCase(store repository.MessageStore, logger Logger) *ReconcileUseCase {
	return &ReconcileUseCase{
		store:  store,
		logger: logger,
	}
}

// timedID pairs a message id with the timestamp recovered from it.
// msg is set for entries originating from the live page.
type timedID struct {
	id   string
	time int64
	msg  *discordgo.Message
}

// Execute merges the channel's known deleted ids into a live history page.
//
// live is newest-first, the host's page convention, and the result keeps
// that order. atStart means the page touches the channel's newest message,
// atEnd that it touches the oldest. Deleted records whose timestamps fall
// outside the page window are left for the adjacent pages; if a window
// bound cannot be resolved the page is returned untouched (all-or-nothing).
// Ids whose body was never retained are silently skipped.
func (uc *ReconcileUseCase) Execute(ctx context.Context, live []*discordgo.Message, deletedIDs []string, atStart, atEnd bool) []*discordgo.Message {
	if len(live) == 0 || len(deletedIDs) == 0 {
		return live
	}

	deleted := make([]timedID, 0, len(deletedIDs))
	for _, id := range deletedIDs {
		deleted = append(deleted, timedID{id: id, time: entity.SnowflakeTime(id)})
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i].time < deleted[j].time })

	// live is newest-first: oldest at the back, newest at the front.
	oldestLive := entity.SnowflakeTime(live[len(live)-1].ID)
	newestLive := entity.SnowflakeTime(live[0].ID)

	lo := 0
	if !atEnd {
		lo = -1
		for i := range deleted {
			if deleted[i].time > oldestLive {
				lo = i
				break
			}
		}
	}

	hi := len(deleted) - 1
	if !atStart {
		hi = -1
		for i := len(deleted) - 1; i >= 0; i-- {
			if deleted[i].time < newestLive {
				hi = i
				break
			}
		}
	}

	if lo < 0 || hi < 0 {
		uc.logger.Debug("no deleted messages fall inside the loaded page",
			"deleted", len(deleted),
			"atStart", atStart,
			"atEnd", atEnd,
		)
		return live
	}
	if lo > hi {
		return live
	}

	merged := make([]timedID, 0, (hi-lo+1)+len(live))
	merged = append(merged, deleted[lo:hi+1]...)
	present := make(map[string]bool, len(live))
	for _, m := range live {
		merged = append(merged, timedID{id: m.ID, time: entity.SnowflakeTime(m.ID), msg: m})
		present[m.ID] = true
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].time > merged[j].time })

	out := make([]*discordgo.Message, 0, len(merged))
	inserted := 0
	for _, e := range merged {
		if e.msg != nil {
			out = append(out, e.msg)
			continue
		}
		if present[e.id] {
			continue
		}
		rec, err := uc.store.Message(ctx, e.id)
		if err != nil {
			uc.logger.Warn("failed to load archived message",
				"messageID", e.id,
				"error", err,
			)
			continue
		}
		if rec == nil || rec.Message == nil {
			// Id known, body lost.
			continue
		}
		out = append(out, rec.Message)
		present[e.id] = true
		inserted++
	}

	if inserted > 0 {
		uc.logger.Debug("spliced deleted messages into history page",
			"inserted", inserted,
			"page", len(live),
		)
	}
	return out
}
