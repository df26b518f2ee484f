package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfiles(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileYieldsDefaultProfile(t *testing.T) {
	t.Parallel()

	set, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	settings, err := set.Settings(DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "chat", settings.ChatMode)
	assert.Equal(t, 4, settings.TopN)
	assert.Empty(t, set.Names())
}

func TestProfileOverridesFallBackToDefaults(t *testing.T) {
	t.Parallel()

	path := writeProfiles(t, `version = 1

[profiles.research]
open_ai_temp = 0.2
chat_mode = "query"
system_prompt = "Answer strictly from the documents."
`)

	set, err := Load(path)
	require.NoError(t, err)

	settings, err := set.Settings("research")
	require.NoError(t, err)
	assert.Equal(t, 0.2, settings.OpenAITemp)
	assert.Equal(t, "query", settings.ChatMode)
	assert.Equal(t, "Answer strictly from the documents.", settings.OpenAIPrompt)
	// Untouched knobs keep their defaults.
	assert.Equal(t, 0.25, settings.SimilarityThreshold)
	assert.Equal(t, 20, settings.OpenAIHistory)
}

func TestUnknownProfileIsAnError(t *testing.T) {
	t.Parallel()

	path := writeProfiles(t, `version = 1

[profiles.research]
chat_mode = "query"
`)

	set, err := Load(path)
	require.NoError(t, err)

	_, err = set.Settings("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestUnsupportedSchemaVersionIsRejected(t *testing.T) {
	t.Parallel()

	path := writeProfiles(t, "version = 99\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version 99")
}

func TestMalformedFileIsAnError(t *testing.T) {
	t.Parallel()

	path := writeProfiles(t, "version = [broken")

	_, err := Load(path)
	require.Error(t, err)
}
