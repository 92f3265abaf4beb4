package session

import (
	"path/filepath"
	"testing"

	"doj-chatbot-client/internal/pkg/logger"
	"doj-chatbot-client/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string) (*TokenStore, kvstore.Store) {
	kv, err := kvstore.NewBoltStore(path)
	require.NoError(t, err)
	ts, err := NewTokenStore(kv, logger.NewNopLogger())
	require.NoError(t, err)
	return ts, kv
}

func TestTokenPersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	ts, kv := openStore(t, path)
	_, ok := ts.Get()
	assert.False(t, ok)

	require.NoError(t, ts.Set("T"))
	require.NoError(t, kv.Close())

	restarted, kv := openStore(t, path)
	token, ok := restarted.Get()
	assert.True(t, ok)
	assert.Equal(t, "T", token)

	require.NoError(t, restarted.Clear())
	require.NoError(t, kv.Close())

	again, kv := openStore(t, path)
	defer kv.Close()
	_, ok = again.Get()
	assert.False(t, ok)
}

func TestSetReplacesPreviousToken(t *testing.T) {
	ts, err := NewTokenStore(kvstore.NewMemoryStore(), logger.NewNopLogger())
	require.NoError(t, err)

	require.NoError(t, ts.Set("first"))
	require.NoError(t, ts.Set("second"))

	token, ok := ts.Get()
	assert.True(t, ok)
	assert.Equal(t, "second", token)
}

func TestObserversSeeNewTokenBeforeSetReturns(t *testing.T) {
	ts, err := NewTokenStore(kvstore.NewMemoryStore(), logger.NewNopLogger())
	require.NoError(t, err)

	var events []string
	unsub := ts.Subscribe(func(token string) {
		current, _ := ts.Get()
		assert.Equal(t, token, current)
		events = append(events, token)
	})

	require.NoError(t, ts.Set("abc"))
	assert.Equal(t, []string{"abc"}, events)

	require.NoError(t, ts.Clear())
	assert.Equal(t, []string{"abc", ""}, events)

	unsub()
	require.NoError(t, ts.Set("ignored"))
	assert.Len(t, events, 2)
}
