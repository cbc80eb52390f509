package remote

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nadzzz/krishivoice/internal/assistant"
	"github.com/nadzzz/krishivoice/internal/langid"
	"github.com/nadzzz/krishivoice/internal/message"
	"github.com/nadzzz/krishivoice/internal/metrics"
	"github.com/nadzzz/krishivoice/internal/recognition"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second

	// Source is the message.Query source for queries arriving over the bridge.
	Source = "websocket"
)

// Option configures a Bridge.
type Option func(*Bridge)

// WithControllerOptions passes options to the per-connection recognition controller.
func WithControllerOptions(opts ...recognition.Option) Option {
	return func(b *Bridge) { b.ctrlOpts = append(b.ctrlOpts, opts...) }
}

// WithCheckOrigin sets the websocket origin check. Any origin is accepted by default.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(b *Bridge) {
		if fn != nil {
			b.upgrader.CheckOrigin = fn
		}
	}
}

// Bridge is an http.Handler that upgrades to a websocket and runs
// recognition sessions on the connected browser's speech engine.
type Bridge struct {
	handler  assistant.Handler
	ctrlOpts []recognition.Option
	upgrader websocket.Upgrader
}

// NewBridge creates a bridge answering recognised speech with handler.
func NewBridge(handler assistant.Handler, opts ...Option) *Bridge {
	b := &Bridge{
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// ServeHTTP implements http.Handler.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection to websocket", "error", err)
		return
	}
	defer func() {
		_ = ws.Close()
	}()

	metrics.WebsocketConnections.Inc()
	defer metrics.WebsocketConnections.Dec()

	c := &connection{
		ws:      ws,
		handler: b.handler,
		logger:  slog.With("conn_id", uuid.NewString(), "remote_addr", r.RemoteAddr),
	}
	c.engine = newEngine(c)
	c.ctrl = recognition.New(c.engine, append([]recognition.Option{recognition.WithLogger(c.logger)}, b.ctrlOpts...)...)

	c.logger.Info("recognition bridge connected")
	c.serve(r.Context())
	c.logger.Info("recognition bridge disconnected")
}

type connection struct {
	ws      *websocket.Conn
	writeMu sync.Mutex

	engine  *Engine
	ctrl    *recognition.Controller
	handler assistant.Handler
	logger  *slog.Logger

	mu      sync.Mutex
	cancel  func() // current recognition session
	closed  bool
	pending sync.WaitGroup
}

func (c *connection) serve(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer func() {
		c.stopSession()
		c.engine.close()
		cancel()
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.pending.Wait()
	}()

	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		var msg ClientMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		metrics.WebsocketMessages.WithLabelValues("received").Inc()
		c.handle(ctx, msg)
	}
}

func (c *connection) handle(ctx context.Context, msg ClientMessage) {
	switch msg.Type {
	case TypeListen:
		c.listen(ctx, msg.Lang)
	case TypeCancel:
		c.stopSession()
	case TypeQuery:
		c.answer(ctx, msg.Text, msg.Lang)
	case TypeStreamResult, TypeStreamError, TypeStreamEnd:
		c.engine.deliver(msg)
	case TypeUnsupported:
		c.logger.Info("browser has no speech recognition")
		c.engine.markUnsupported()
	default:
		c.notify(ServerMessage{Type: TypeError, Message: "unsupported message type: " + msg.Type})
	}
}

func (c *connection) listen(ctx context.Context, lang string) {
	requested := langid.Auto
	if strings.TrimSpace(lang) != "" {
		code, err := langid.Parse(lang)
		if err != nil {
			c.notify(ServerMessage{Type: TypeError, Message: err.Error()})
			return
		}
		requested = code
	}

	c.stopSession()
	cancel := c.ctrl.Start(ctx, requested, recognition.Handlers{
		OnResult: func(text string, detected langid.Code) {
			lang := requested
			if detected != "" {
				lang = detected
			}
			c.notify(ServerMessage{Type: TypeResult, Text: text, Language: string(lang)})
			c.answer(ctx, text, string(lang))
		},
		OnError: func(err error) {
			msg := ServerMessage{Type: TypeError, Message: err.Error()}
			if cause, ok := recognition.CauseOf(err); ok {
				msg.Cause = cause
			}
			c.notify(msg)
		},
		OnEnd: func() {
			c.notify(ServerMessage{Type: TypeEnd})
		},
	})

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
}

func (c *connection) stopSession() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// answer runs the assistant in the background and pushes its reply.
func (c *connection) answer(ctx context.Context, text, lang string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pending.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.pending.Done()
		reply, err := c.handler(ctx, message.NewQuery(Source, text, lang))
		if err != nil {
			c.logger.Error("assistant query failed", "error", err)
			c.notify(ServerMessage{Type: TypeError, Message: err.Error()})
			return
		}
		c.notify(ServerMessage{Type: TypeReply, Reply: reply})
	}()
}

// send implements sender.
func (c *connection) send(msg ServerMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(msg); err != nil {
		return err
	}
	metrics.WebsocketMessages.WithLabelValues("sent").Inc()
	return nil
}

func (c *connection) notify(msg ServerMessage) {
	if err := c.send(msg); err != nil {
		c.logger.Debug("websocket write failed", "type", msg.Type, "error", err)
	}
}
