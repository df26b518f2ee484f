package jsonfile

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kvist-dev/guestpass/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func (c fixedClock) Sleep(_ context.Context, _ time.Duration) error {
	return nil
}

func newTestRepository(t *testing.T) (*Repository, string) {
	t.Helper()

	storePath := filepath.Join(t.TempDir(), "sessions.json")
	cfg := viper.New()
	cfg.Set(storePathKey, storePath)

	repo, err := NewRepository(cfg, fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}, log.New(io.Discard))
	require.NoError(t, err)

	return repo, storePath
}

func TestListMissingFileReturnsEmpty(t *testing.T) {
	repo, _ := newTestRepository(t)

	sessions, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestAddThenListRoundTrip(t *testing.T) {
	repo, _ := newTestRepository(t)

	require.NoError(t, repo.Add(context.Background(), "sess-1", "42", "demo-workspace"))

	sessions, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, domain.SessionID("sess-1"), sessions[0].ID)
	assert.Equal(t, domain.UserID("42"), sessions[0].UserID)
	assert.Equal(t, domain.WorkspaceSlug("demo-workspace"), sessions[0].WorkspaceSlug)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), sessions[0].CreatedAt)
}

func TestPersistedLayoutIsOneObjectKeyedBySessionID(t *testing.T) {
	repo, storePath := newTestRepository(t)

	require.NoError(t, repo.Add(context.Background(), "sess-1", "42", "demo-workspace"))

	data, err := os.ReadFile(storePath)
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "sess-1")
	assert.Equal(t, "42", raw["sess-1"]["userId"])
	assert.Equal(t, "demo-workspace", raw["sess-1"]["workspaceSlug"])
	assert.Equal(t, "2026-03-01T10:00:00Z", raw["sess-1"]["createdAt"])
}

func TestRecordsSurviveRepositoryRestart(t *testing.T) {
	repo, storePath := newTestRepository(t)
	require.NoError(t, repo.Add(context.Background(), "sess-1", "42", "demo-workspace"))

	cfg := viper.New()
	cfg.Set(storePathKey, storePath)
	reopened, err := NewRepository(cfg, fixedClock{now: time.Now()}, log.New(io.Discard))
	require.NoError(t, err)

	session, err := reopened.GetByID(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("42"), session.UserID)
}

func TestRemoveDeletesRecord(t *testing.T) {
	repo, _ := newTestRepository(t)
	require.NoError(t, repo.Add(context.Background(), "sess-1", "42", "demo-workspace"))
	require.NoError(t, repo.Add(context.Background(), "sess-2", "43", "other-workspace"))

	require.NoError(t, repo.Remove(context.Background(), "sess-1"))

	sessions, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, domain.SessionID("sess-2"), sessions[0].ID)

	assert.ErrorIs(t, repo.Remove(context.Background(), "sess-1"), domain.ErrSessionNotFound)
}

func TestCorruptFileDegradesToEmpty(t *testing.T) {
	repo, storePath := newTestRepository(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(storePath), 0o700))
	require.NoError(t, os.WriteFile(storePath, []byte("{not json"), 0o600))

	sessions, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestLegacyNumericUserIDDecodes(t *testing.T) {
	repo, storePath := newTestRepository(t)

	legacy := `{"sess-legacy": {"userId": 7, "workspaceSlug": "old-workspace", "createdAt": "2025-11-02T08:00:00Z"}}`
	require.NoError(t, os.MkdirAll(filepath.Dir(storePath), 0o700))
	require.NoError(t, os.WriteFile(storePath, []byte(legacy), 0o600))

	session, err := repo.GetByID(context.Background(), "sess-legacy")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("7"), session.UserID)
	assert.Equal(t, domain.WorkspaceSlug("old-workspace"), session.WorkspaceSlug)
}

func TestGetByIDMissingReturnsNotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
