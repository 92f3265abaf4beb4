package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "rfc3339 utc",
			input: `"2024-05-01T10:00:00Z"`,
			want:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339 offset",
			input: `"2024-05-01T12:00:00+02:00"`,
			want:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "naive microseconds",
			input: `"2024-05-01T10:00:00.123000"`,
			want:  time.Date(2024, 5, 1, 10, 0, 0, 123000000, time.UTC),
		},
		{
			name:  "naive seconds",
			input: `"2024-05-01T10:00:00"`,
			want:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`42`), &ts))
}

func TestChatResponseDecoding(t *testing.T) {
	var chats []ChatResponse
	body := `[{"id":"b","createdAt":"2024-05-02T09:00:00"},{"id":"a","createdAt":"2024-05-01T09:00:00Z"}]`
	require.NoError(t, json.Unmarshal([]byte(body), &chats))
	require.Len(t, chats, 2)
	assert.Equal(t, "b", chats[0].Id)
	assert.True(t, chats[0].CreatedAt.After(chats[1].CreatedAt.Time))
}
