package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	envstore "github.com/kvist-dev/guestpass/internal/adapters/secrets/env"
)

// fakeStore is a scripted in-memory SecretStore.
type fakeStore struct {
	values    map[string]string
	getErr    error
	putErr    error
	deleteErr error

	gets    int
	puts    int
	deletes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	f.gets++
	if f.getErr != nil {
		return "", f.getErr
	}

	value, ok := f.values[key]
	if !ok {
		return "", errors.New("not found")
	}

	return value, nil
}

func (f *fakeStore) Put(ctx context.Context, key string, value string) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}

	f.values[key] = value
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}

	delete(f.values, key)
	return nil
}

func TestNewStoreRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStore(nil, newFakeStore())
	assert.ErrorIs(t, err, errNilPrimaryStore)

	_, err = NewStore(newFakeStore(), nil)
	assert.ErrorIs(t, err, errNilFallbackStore)
}

func TestGetPrefersPrimary(t *testing.T) {
	t.Parallel()

	primary := newFakeStore()
	primary.values["platform/api-key"] = "from-primary"
	fallback := newFakeStore()
	fallback.values["platform/api-key"] = "from-fallback"

	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "platform/api-key")
	require.NoError(t, err)
	assert.Equal(t, "from-primary", got)
	assert.Zero(t, fallback.gets)
}

func TestGetFallsBackWhenPrimaryMisses(t *testing.T) {
	t.Parallel()

	fallback := newFakeStore()
	fallback.values["platform/api-key"] = "from-fallback"

	store, err := NewStore(newFakeStore(), fallback)
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "platform/api-key")
	require.NoError(t, err)
	assert.Equal(t, "from-fallback", got)
}

func TestGetReportsBothFailures(t *testing.T) {
	t.Parallel()

	primary := newFakeStore()
	primary.getErr = errors.New("env unavailable")
	fallback := newFakeStore()
	fallback.getErr = errors.New("disk on fire")

	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "platform/api-key")
	require.Error(t, err)
	assert.ErrorContains(t, err, "env unavailable")
	assert.ErrorContains(t, err, "disk on fire")
}

func TestContextErrorsSkipFallback(t *testing.T) {
	t.Parallel()

	primary := newFakeStore()
	primary.getErr = context.Canceled
	fallback := newFakeStore()

	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "platform/api-key")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fallback.gets)
}

func TestPutLandsInFallbackWhenPrimaryIsReadOnly(t *testing.T) {
	t.Parallel()

	primary := newFakeStore()
	primary.putErr = envstore.ErrReadOnly
	primary.deleteErr = envstore.ErrReadOnly
	fallback := newFakeStore()

	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "platform/api-key", "top-secret"))
	assert.Equal(t, "top-secret", fallback.values["platform/api-key"])

	require.NoError(t, store.Delete(context.Background(), "platform/api-key"))
	assert.NotContains(t, fallback.values, "platform/api-key")
}

func TestPutStopsAtPrimaryOnSuccess(t *testing.T) {
	t.Parallel()

	primary := newFakeStore()
	fallback := newFakeStore()

	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "platform/api-key", "v"))
	assert.Equal(t, 1, primary.puts)
	assert.Zero(t, fallback.puts)
}

func TestEnvFirstWithFileFallbackRoundTrip(t *testing.T) {
	store, err := NewEnvFirstWithFileFallback("GUESTPASS_CHAIN_TEST", t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "platform/api-key", "file-backed"))

	got, err := store.Get(context.Background(), "platform/api-key")
	require.NoError(t, err)
	assert.Equal(t, "file-backed", got)

	t.Setenv("GUESTPASS_CHAIN_TEST_PLATFORM_API_KEY", "env-wins")

	got, err = store.Get(context.Background(), "platform/api-key")
	require.NoError(t, err)
	assert.Equal(t, "env-wins", got)
}
