package host

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/chatvault/chatvault/internal/adapter/dto"
	"github.com/chatvault/chatvault/internal/app"
	"github.com/chatvault/chatvault/internal/usecase/retention"
)

// Runner consumes the host client's event stream (one JSON object per
// line) and drives the engine. Reconciled history pages are written back
// to out, one JSON object per line. This is local plumbing between two
// processes on the same machine, not a network surface.
type Runner struct {
	engine    *app.Engine
	directory *StateDirectory
	logger    retention.Logger
}

// NewRunner creates a runner around an engine and its directory.
func NewRunner(engine *app.Engine, directory *StateDirectory, logger retention.Logger) *Runner {
	return &Runner{
		engine:    engine,
		directory: directory,
		logger:    logger,
	}
}

// Run reads events until in is exhausted or ctx is canceled. Malformed
// lines are logged and skipped; handler errors do not stop the stream.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event dto.HostEvent
		if err := json.Unmarshal(line, &event); err != nil {
			r.logger.Warn("malformed host event", "error", err)
			continue
		}

		if err := r.dispatch(ctx, &event, encoder); err != nil {
			r.logger.Error("host event failed",
				"type", event.Type,
				"error", err,
			)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading host events: %w", err)
	}
	return nil
}

func (r *Runner) dispatch(ctx context.Context, event *dto.HostEvent, encoder *json.Encoder) error {
	switch event.Type {
	case dto.EventState:
		if event.State == nil {
			return fmt.Errorf("state event without state")
		}
		r.directory.Update(event.State)
		return nil

	case dto.EventMessageDelete:
		if event.Message == nil {
			return fmt.Errorf("delete event without message")
		}
		return r.engine.HandleMessageDelete(ctx, event.Message, event.CachedByHost)

	case dto.EventMessageBulkDel:
		return r.engine.HandleMessageDeleteBulk(ctx, event.ChannelID, event.GuildID, event.IDs)

	case dto.EventMessageUpdate:
		if event.Message == nil {
			return fmt.Errorf("update event without message")
		}
		return r.engine.HandleMessageUpdate(ctx, event.Message, event.CachedByHost)

	case dto.EventHistoryLoaded:
		merged, err := r.engine.HandleHistoryLoaded(ctx, event.ChannelID, event.Messages, event.AtStart, event.AtEnd)
		if err != nil {
			return err
		}
		return encoder.Encode(dto.HistoryResult{
			ChannelID: event.ChannelID,
			Messages:  merged,
		})

	default:
		return fmt.Errorf("unknown event type: %q", event.Type)
	}
}
