package mqtt

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/krishivoice/internal/assistant"
	"github.com/nadzzz/krishivoice/internal/config"
	"github.com/nadzzz/krishivoice/internal/message"
)

func TestTopics(t *testing.T) {
	tr := New(config.MQTTConfig{})
	assert.Equal(t, "krishivoice/query/+", tr.QueryTopic())
	assert.Equal(t, "krishivoice/reply/kiosk-3", tr.ReplyTopic("kiosk-3"))

	tr = New(config.MQTTConfig{TopicPrefix: "farm/tn"})
	assert.Equal(t, "farm/tn/query/+", tr.QueryTopic())
}

func TestSourceOf(t *testing.T) {
	assert.Equal(t, "kiosk-3", sourceOf("krishivoice/query/kiosk-3"))
	assert.Equal(t, "", sourceOf("krishivoice/reply/kiosk-3"))
}

func TestHandle(t *testing.T) {
	tr := New(config.MQTTConfig{})
	handler := assistant.New(nil).Handle

	tests := []struct {
		name     string
		payload  string
		wantLang string
	}{
		{"json with language", `{"query":"weather today","language":"hi-IN"}`, "hi-IN"},
		{"plain text", "மழை எப்போது", "ta-IN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic, body := tr.handle(context.Background(), handler, "krishivoice/query/kiosk-3", []byte(tt.payload))
			assert.Equal(t, "krishivoice/reply/kiosk-3", topic)

			var reply message.Reply
			require.NoError(t, json.Unmarshal(body, &reply))
			assert.Equal(t, tt.wantLang, reply.Language)
			assert.Equal(t, message.ModeDemo, reply.Mode)
			assert.NotEmpty(t, reply.Text)
		})
	}
}

func TestHandle_Error(t *testing.T) {
	tr := New(config.MQTTConfig{})
	topic, body := tr.handle(context.Background(), assistant.New(nil).Handle, "krishivoice/query/kiosk-3", []byte(`{"query":""}`))
	assert.Equal(t, "krishivoice/reply/kiosk-3", topic)

	var reply ErrorReply
	require.NoError(t, json.Unmarshal(body, &reply))
	assert.Equal(t, assistant.ErrEmptyQuery.Error(), reply.Error)
}

func TestHandle_UnexpectedTopic(t *testing.T) {
	tr := New(config.MQTTConfig{})
	topic, body := tr.handle(context.Background(), assistant.New(nil).Handle, "elsewhere", []byte("hi"))
	assert.Empty(t, topic)
	assert.Nil(t, body)
}
