package settings

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvault/chatvault/internal/domain/entity"
)

func TestExportImportRoundTrip(t *testing.T) {
	policy := entity.DefaultPolicyState()
	policy.Whitelist = entity.ParseIDList("111,222")
	policy.Blacklist = entity.ParseIDList("333")
	policy.BlacklistedWords = entity.ParseWordList("secret")
	policy.IgnoreSelf = true

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, policy))

	got, err := Import(&buf)
	require.NoError(t, err)

	assert.Equal(t, "111,222", got.Whitelist.String())
	assert.Equal(t, "333", got.Blacklist.String())
	assert.Equal(t, []string{"secret"}, got.BlacklistedWords)
	assert.True(t, got.IgnoreSelf)
	assert.True(t, got.AlwaysLogDirectMessages)
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	_, err := Import(strings.NewReader("id: abc\nversion: 99\n"))
	assert.ErrorIs(t, err, entity.ErrUnsupportedExport)
}

func TestImportRejectsGarbage(t *testing.T) {
	_, err := Import(strings.NewReader("{{not yaml"))
	assert.Error(t, err)
}
