package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	l := NewIsolatedLogger(path)

	l.Info("TokenStore", "token replaced", map[string]interface{}{"present": true})
	l.Warn("ApiClient", "request failed", map[string]interface{}{"status": 500})
	l.Error("ChatService", "send failed", nil)
	require.NoError(t, l.Sync())

	all, err := l.GetLogs("", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "send failed", all[0].Message)
	assert.Equal(t, "ChatService", all[0].Module)
	assert.Equal(t, "token replaced", all[2].Message)

	warns, err := l.GetLogs("WARN", 10)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, float64(500), warns[0].Details["status"])

	limited, err := l.GetLogs("", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetLogsSkipsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	require.NoError(t, os.WriteFile(path, []byte("not json\n{\"level\":\"INFO\",\"message\":\"ok\"}\n"), 0o600))

	entries, err := NewIsolatedLogger(path).GetLogs("", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ok", entries[0].Message)
}

func TestGetLogsMissingFile(t *testing.T) {
	entries, err := NewIsolatedLogger(filepath.Join(t.TempDir(), "none.log")).GetLogs("", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = NewNopLogger().GetLogs("", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
