package message

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuery(t *testing.T) {
	q := NewQuery("browser", "mitti kaisi hai", "auto")

	_, err := uuid.Parse(q.ID)
	require.NoError(t, err)
	assert.Equal(t, "browser", q.Source)
	assert.Equal(t, "mitti kaisi hai", q.Text)
	assert.False(t, q.Timestamp.IsZero())
	assert.NotEqual(t, q.ID, NewQuery("browser", "x", "").ID)
}

func TestQuery_WireNames(t *testing.T) {
	var q Query
	require.NoError(t, json.Unmarshal([]byte(`{"query":"weather today","language":"hi-IN"}`), &q))
	assert.Equal(t, "weather today", q.Text)
	assert.Equal(t, "hi-IN", q.Language)
}

func TestReply_JSON(t *testing.T) {
	r := Reply{QueryID: "q1", Text: "ok", Language: "en-IN", Mode: ModeDemo}
	r.SetResponseAudioBytes(nil)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"query_id":"q1","response":"ok","language":"en-IN","mode":"demo"}`, string(data))

	r.SetResponseAudioBytes([]byte("RIFF"))
	assert.Equal(t, "UklGRg==", r.ResponseAudio)
}
