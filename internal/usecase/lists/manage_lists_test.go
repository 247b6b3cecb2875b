package lists

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvault/chatvault/internal/domain/entity"
)

type noopLogger struct{}

func (noopLogger) Debug(msg string, keysAndValues ...any) {}
func (noopLogger) Info(msg string, keysAndValues ...any)  {}
func (noopLogger) Warn(msg string, keysAndValues ...any)  {}
func (noopLogger) Error(msg string, keysAndValues ...any) {}

type fakeSettings struct {
	policy *entity.PolicyState
	saves  int
}

func (f *fakeSettings) Load() (*entity.PolicyState, error) {
	cp := *f.policy
	return &cp, nil
}

func (f *fakeSettings) Save(p *entity.PolicyState) error {
	f.policy = p
	f.saves++
	return nil
}

func newTestUseCase() (*ManageListsUseCase, *fakeSettings) {
	settings := &fakeSettings{policy: entity.DefaultPolicyState()}
	return NewManageListsUseCase(settings, noopLogger{}), settings
}

func TestAddTo(t *testing.T) {
	uc, settings := newTestUseCase()

	require.NoError(t, uc.AddTo(Whitelisted, "111"))
	require.NoError(t, uc.AddTo(Whitelisted, "111"))
	require.NoError(t, uc.AddTo(Blacklisted, "222"))

	assert.Equal(t, "111", settings.policy.Whitelist.String())
	assert.Equal(t, "222", settings.policy.Blacklist.String())
	assert.Equal(t, 3, settings.saves)
}

func TestRemoveFrom(t *testing.T) {
	uc, settings := newTestUseCase()
	settings.policy.Whitelist.Add("111")
	settings.policy.Whitelist.Add("222")

	require.NoError(t, uc.RemoveFrom(Whitelisted, "111"))
	assert.Equal(t, "222", settings.policy.Whitelist.String())

	// Removing an absent id still saves, leaving the list untouched.
	require.NoError(t, uc.RemoveFrom(Whitelisted, "999"))
	assert.Equal(t, "222", settings.policy.Whitelist.String())
}

func TestAddToAndRemoveFromOpposite(t *testing.T) {
	uc, settings := newTestUseCase()
	settings.policy.Blacklist.Add("111")

	require.NoError(t, uc.AddToAndRemoveFromOpposite(Whitelisted, "111"))

	assert.True(t, settings.policy.Whitelist.Contains("111"))
	assert.False(t, settings.policy.Blacklist.Contains("111"))

	// Moving back restores the original placement.
	require.NoError(t, uc.AddToAndRemoveFromOpposite(Blacklisted, "111"))
	assert.False(t, settings.policy.Whitelist.Contains("111"))
	assert.True(t, settings.policy.Blacklist.Contains("111"))
}

func TestAddToAndRemoveFromOppositeIdempotent(t *testing.T) {
	uc, settings := newTestUseCase()

	require.NoError(t, uc.AddToAndRemoveFromOpposite(Whitelisted, "111"))
	require.NoError(t, uc.AddToAndRemoveFromOpposite(Whitelisted, "111"))

	assert.Equal(t, "111", settings.policy.Whitelist.String())
	assert.Equal(t, 0, settings.policy.Blacklist.Len())
}

func TestUnknownListRejected(t *testing.T) {
	uc, settings := newTestUseCase()

	err := uc.AddTo(ListName("greylistedIds"), "111")
	assert.True(t, errors.Is(err, entity.ErrUnknownList))
	assert.Equal(t, 0, settings.saves)
}

func TestEmptyIDRejected(t *testing.T) {
	uc, settings := newTestUseCase()

	assert.Error(t, uc.AddTo(Whitelisted, ""))
	assert.Equal(t, 0, settings.saves)
}
