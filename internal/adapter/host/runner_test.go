package host

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvault/chatvault/internal/adapter/dto"
	"github.com/chatvault/chatvault/internal/app"
	"github.com/chatvault/chatvault/internal/domain/entity"
	"github.com/chatvault/chatvault/internal/infrastructure/persistence/memory"
	"github.com/chatvault/chatvault/internal/usecase/history"
	"github.com/chatvault/chatvault/internal/usecase/retention"
)

type noopLogger struct{}

func (noopLogger) Debug(msg string, keysAndValues ...any) {}
func (noopLogger) Info(msg string, keysAndValues ...any)  {}
func (noopLogger) Warn(msg string, keysAndValues ...any)  {}
func (noopLogger) Error(msg string, keysAndValues ...any) {}

type staticSettings struct {
	policy *entity.PolicyState
}

func (s *staticSettings) Load() (*entity.PolicyState, error) { return s.policy, nil }
func (s *staticSettings) Save(p *entity.PolicyState) error   { s.policy = p; return nil }

func newTestRunner() (*Runner, *memory.MessageStore) {
	store := memory.NewMessageStore(0, 0)
	directory := NewStateDirectory()
	evaluator := retention.NewEvaluateUseCase(directory, nil)
	reconciler := history.NewReconcileUseCase(store, noopLogger{})
	engine := app.NewEngine(
		&staticSettings{policy: entity.DefaultPolicyState()},
		store, directory, evaluator, reconciler, nil, noopLogger{},
	)
	return NewRunner(engine, directory, noopLogger{}), store
}

func stream(t *testing.T, events ...dto.HostEvent) string {
	t.Helper()
	var b strings.Builder
	for _, e := range events {
		line, err := json.Marshal(e)
		require.NoError(t, err)
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func TestRunProcessesEventStream(t *testing.T) {
	runner, store := newTestRunner()

	msg := &discordgo.Message{
		ID:        "900",
		ChannelID: "dm1",
		Content:   "hello",
		Author:    &discordgo.User{ID: "someone"},
	}
	in := stream(t,
		dto.HostEvent{
			Type: dto.EventState,
			State: &dto.HostState{
				CurrentUserID: "u1",
				DMChannels:    []string{"dm1"},
			},
		},
		dto.HostEvent{Type: dto.EventMessageDelete, Message: msg},
	)

	var out bytes.Buffer
	require.NoError(t, runner.Run(context.Background(), strings.NewReader(in), &out))

	rec, err := store.Message(context.Background(), "900")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "hello", rec.Message.Content)
	assert.Empty(t, out.String())
}

func TestRunWritesHistoryResults(t *testing.T) {
	runner, store := newTestRunner()
	ctx := context.Background()

	// Ids embed their creation time; the deleted one is older than the
	// live one, so it lands after it in the newest-first page.
	olderID := "4194304"
	newerID := "8388608"

	deleted := &discordgo.Message{ID: olderID, ChannelID: "ch1", Content: "gone"}
	require.NoError(t, store.SaveMessage(ctx, entity.NewMessageRecord(deleted)))
	require.NoError(t, store.RecordDeleted(ctx, "ch1", olderID))

	in := stream(t, dto.HostEvent{
		Type:      dto.EventHistoryLoaded,
		ChannelID: "ch1",
		Messages:  []*discordgo.Message{{ID: newerID, ChannelID: "ch1"}},
		AtStart:   true,
		AtEnd:     true,
	})

	var out bytes.Buffer
	require.NoError(t, runner.Run(ctx, strings.NewReader(in), &out))

	var result dto.HistoryResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "ch1", result.ChannelID)
	require.Len(t, result.Messages, 2)
	assert.Equal(t, newerID, result.Messages[0].ID)
	assert.Equal(t, olderID, result.Messages[1].ID)
}

func TestRunSkipsMalformedLines(t *testing.T) {
	runner, store := newTestRunner()

	in := "this is not json\n" + stream(t, dto.HostEvent{
		Type:    dto.EventMessageDelete,
		Message: &discordgo.Message{ID: "901", ChannelID: "ch1"},
	})

	var out bytes.Buffer
	require.NoError(t, runner.Run(context.Background(), strings.NewReader(in), &out))

	rec, err := store.Message(context.Background(), "901")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestRunUnknownEventDoesNotStopStream(t *testing.T) {
	runner, store := newTestRunner()

	in := stream(t,
		dto.HostEvent{Type: "resync"},
		dto.HostEvent{
			Type:    dto.EventMessageDelete,
			Message: &discordgo.Message{ID: "902", ChannelID: "ch1"},
		},
	)

	var out bytes.Buffer
	require.NoError(t, runner.Run(context.Background(), strings.NewReader(in), &out))

	rec, err := store.Message(context.Background(), "902")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}
