package remote

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/krishivoice/internal/message"
	"github.com/nadzzz/krishivoice/internal/recognition"
)

// browser plays the client side of the bridge.
type browser struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, b *Bridge) *browser {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &browser{t: t, conn: conn}
}

func (b *browser) send(msg ClientMessage) {
	b.t.Helper()
	require.NoError(b.t, b.conn.WriteJSON(msg))
}

func (b *browser) read() ServerMessage {
	b.t.Helper()
	require.NoError(b.t, b.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var msg ServerMessage
	require.NoError(b.t, b.conn.ReadJSON(&msg))
	return msg
}

// collect reads n messages and indexes them by type.
func (b *browser) collect(n int) map[string]ServerMessage {
	b.t.Helper()
	out := make(map[string]ServerMessage, n)
	for i := 0; i < n; i++ {
		msg := b.read()
		out[msg.Type] = msg
	}
	return out
}

func final(stream, text string, conf float64) ClientMessage {
	return ClientMessage{
		Type:   TypeStreamResult,
		Stream: stream,
		Results: []recognition.Chunk{{
			Final:        true,
			Alternatives: []recognition.Alternative{{Transcript: text, Confidence: conf}},
		}},
	}
}

type fakeAssistant struct {
	mu      sync.Mutex
	queries []message.Query
}

func (f *fakeAssistant) Handle(_ context.Context, q *message.Query) (*message.Reply, error) {
	f.mu.Lock()
	f.queries = append(f.queries, *q)
	f.mu.Unlock()
	return &message.Reply{QueryID: q.ID, Text: "answer: " + q.Text, Language: q.Language, Mode: message.ModeDemo}, nil
}

func (f *fakeAssistant) Queries() []message.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]message.Query(nil), f.queries...)
}

func TestBridge_FixedLanguage(t *testing.T) {
	fa := &fakeAssistant{}
	b := dial(t, NewBridge(fa.Handle))

	b.send(ClientMessage{Type: TypeListen, Lang: "ta-IN"})
	start := b.read()
	require.Equal(t, TypeStart, start.Type)
	require.NotNil(t, start.Options)
	assert.NotEmpty(t, start.Stream)
	assert.Equal(t, "ta-IN", start.Options.Language)
	assert.True(t, start.Interim)
	assert.Equal(t, 3, start.MaxAlternatives)

	b.send(final(start.Stream, "நெல் பயிர்", 0.9))
	b.send(ClientMessage{Type: TypeStreamEnd, Stream: start.Stream})

	got := b.collect(3)
	require.Contains(t, got, TypeResult)
	assert.Equal(t, "நெல் பயிர்", got[TypeResult].Text)
	assert.Equal(t, "ta-IN", got[TypeResult].Language)
	assert.Contains(t, got, TypeEnd)
	require.Contains(t, got, TypeReply)
	assert.Equal(t, "answer: நெல் பயிர்", got[TypeReply].Reply.Text)

	queries := fa.Queries()
	require.Len(t, queries, 1)
	assert.Equal(t, Source, queries[0].Source)
	assert.Equal(t, "ta-IN", queries[0].Language)
}

func TestBridge_AutoWithSecondPass(t *testing.T) {
	fa := &fakeAssistant{}
	b := dial(t, NewBridge(fa.Handle))

	b.send(ClientMessage{Type: TypeListen, Lang: "auto"})
	primary := b.read()
	require.Equal(t, TypeStart, primary.Type)
	require.NotNil(t, primary.Options)
	assert.Equal(t, "en-IN", primary.Options.Language)
	assert.Equal(t, 5, primary.MaxAlternatives)

	b.send(final(primary.Stream, "வணக்கம் நண்பரே", 0.4))

	child := b.read()
	require.Equal(t, TypeStart, child.Type)
	assert.NotEqual(t, primary.Stream, child.Stream)
	assert.Equal(t, "ta-IN", child.Options.Language)
	assert.Equal(t, 1, child.MaxAlternatives)
	assert.False(t, child.Interim)

	b.send(final(child.Stream, "வணக்கம் நண்பா", 0.8))
	b.send(ClientMessage{Type: TypeStreamEnd, Stream: primary.Stream})

	got := b.collect(3)
	assert.Equal(t, "வணக்கம் நண்பா", got[TypeResult].Text)
	assert.Equal(t, "ta-IN", got[TypeResult].Language)
	assert.Contains(t, got, TypeEnd)
	assert.Contains(t, got, TypeReply)
}

func TestBridge_EngineError(t *testing.T) {
	b := dial(t, NewBridge((&fakeAssistant{}).Handle))

	b.send(ClientMessage{Type: TypeListen, Lang: "hi"})
	start := b.read()
	require.NotNil(t, start.Options)
	assert.Equal(t, "hi-IN", start.Options.Language)

	b.send(ClientMessage{Type: TypeStreamError, Stream: start.Stream, Error: "no-speech"})
	b.send(ClientMessage{Type: TypeStreamEnd, Stream: start.Stream})

	errMsg := b.read()
	require.Equal(t, TypeError, errMsg.Type)
	assert.Equal(t, recognition.CauseNoSpeech, errMsg.Cause)
	assert.Equal(t, "No speech detected. Please speak clearly and try again.", errMsg.Message)
	assert.Equal(t, TypeEnd, b.read().Type)
}

func TestBridge_Cancel(t *testing.T) {
	b := dial(t, NewBridge((&fakeAssistant{}).Handle))

	b.send(ClientMessage{Type: TypeListen, Lang: "en-IN"})
	start := b.read()

	b.send(ClientMessage{Type: TypeCancel})
	stop := b.read()
	abort := b.read()
	assert.Equal(t, TypeStop, stop.Type)
	assert.Equal(t, start.Stream, stop.Stream)
	assert.Equal(t, TypeAbort, abort.Type)
	assert.Equal(t, start.Stream, abort.Stream)
}

func TestBridge_Unsupported(t *testing.T) {
	b := dial(t, NewBridge((&fakeAssistant{}).Handle))

	b.send(ClientMessage{Type: TypeUnsupported})
	b.send(ClientMessage{Type: TypeListen, Lang: "hi-IN"})

	msg := b.read()
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, recognition.ErrUnavailable.Error(), msg.Message)
}

func TestBridge_TypedQuery(t *testing.T) {
	fa := &fakeAssistant{}
	b := dial(t, NewBridge(fa.Handle))

	b.send(ClientMessage{Type: TypeQuery, Text: "how is the soil", Lang: "auto"})
	msg := b.read()
	require.Equal(t, TypeReply, msg.Type)
	assert.Equal(t, "answer: how is the soil", msg.Reply.Text)
}

func TestBridge_BadRequests(t *testing.T) {
	b := dial(t, NewBridge((&fakeAssistant{}).Handle))

	b.send(ClientMessage{Type: TypeListen, Lang: "fr"})
	msg := b.read()
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, msg.Message, "unknown language")

	b.send(ClientMessage{Type: "dance"})
	msg = b.read()
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, msg.Message, "dance")
}
