// Package mqtt implements the MQTT transport for krishivoice.
//
// MQTT suits field devices (kiosks, feature-phone gateways, sensor hubs)
// on flaky links. Devices publish a question to <prefix>/query/<device>
// and receive the reply on <prefix>/reply/<device>.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/nadzzz/krishivoice/internal/assistant"
	"github.com/nadzzz/krishivoice/internal/config"
	"github.com/nadzzz/krishivoice/internal/message"
	"github.com/nadzzz/krishivoice/internal/metrics"
)

const (
	defaultPrefix  = "krishivoice"
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Request is the payload devices publish. A payload that is not JSON is
// taken as the question text with automatic language detection.
type Request struct {
	Query    string `json:"query"`
	Language string `json:"language,omitempty"`
}

// ErrorReply is published when a query cannot be answered.
type ErrorReply struct {
	Error string `json:"error"`
}

// Transport implements transport.Transport over MQTT.
type Transport struct {
	cfg    config.MQTTConfig
	client paho.Client
}

// New creates a new MQTT transport.
func New(cfg config.MQTTConfig) *Transport {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = defaultPrefix
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "krishivoice"
	}
	return &Transport{cfg: cfg}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "mqtt" }

// QueryTopic is the subscription filter for incoming queries.
func (t *Transport) QueryTopic() string { return t.cfg.TopicPrefix + "/query/+" }

// ReplyTopic is where the reply for source is published.
func (t *Transport) ReplyTopic(source string) string { return t.cfg.TopicPrefix + "/reply/" + source }

// Listen connects to the MQTT broker and subscribes to the query topic.
func (t *Transport) Listen(ctx context.Context, handler assistant.Handler) error {
	opts := paho.NewClientOptions().
		AddBroker(t.cfg.Broker).
		SetClientID(t.cfg.ClientID).
		SetUsername(t.cfg.Username).
		SetPassword(t.cfg.Password).
		SetAutoReconnect(true).
		SetOrderMatters(false).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			slog.Warn("mqtt connection lost", "error", err)
		}).
		// Subscribing on every (re)connect restores the subscription after a drop.
		SetOnConnectHandler(func(c paho.Client) {
			token := c.Subscribe(t.QueryTopic(), t.cfg.QoS, func(c paho.Client, m paho.Message) {
				t.onMessage(ctx, c, handler, m)
			})
			if token.WaitTimeout(connectTimeout) && token.Error() != nil {
				slog.Error("mqtt subscribe failed", "topic", t.QueryTopic(), "error", token.Error())
				return
			}
			slog.Info("mqtt transport subscribed", "topic", t.QueryTopic())
		})

	t.client = paho.NewClient(opts)
	token := t.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect: timed out after %s", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	slog.Info("mqtt transport listening", "broker", t.cfg.Broker, "topic", t.QueryTopic())
	<-ctx.Done()
	slog.Info("mqtt transport shutting down")
	return nil
}

func (t *Transport) onMessage(ctx context.Context, c paho.Client, handler assistant.Handler, m paho.Message) {
	metrics.MQTTMessages.WithLabelValues("received").Inc()

	topic, body := t.handle(ctx, handler, m.Topic(), m.Payload())
	if topic == "" {
		return
	}
	token := c.Publish(topic, t.cfg.QoS, false, body)
	if !token.WaitTimeout(publishTimeout) {
		slog.Warn("mqtt publish timed out", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		slog.Error("mqtt publish failed", "topic", topic, "error", err)
		return
	}
	metrics.MQTTMessages.WithLabelValues("sent").Inc()
}

// handle answers one query message and returns the reply topic and
// payload. An empty topic means nothing should be published.
func (t *Transport) handle(ctx context.Context, handler assistant.Handler, topic string, payload []byte) (string, []byte) {
	source := sourceOf(topic)
	if source == "" {
		slog.Warn("mqtt message on unexpected topic", "topic", topic)
		return "", nil
	}

	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		req = Request{Query: string(payload)}
	}

	reply, err := handler(ctx, message.NewQuery(source, req.Query, req.Language))
	var body []byte
	if err != nil {
		slog.Warn("mqtt query failed", "source", source, "error", err)
		body, _ = json.Marshal(ErrorReply{Error: err.Error()})
	} else {
		body, _ = json.Marshal(reply)
	}
	return t.ReplyTopic(source), body
}

// sourceOf extracts the device id from <prefix>/query/<device>.
func sourceOf(topic string) string {
	i := strings.LastIndex(topic, "/query/")
	if i < 0 {
		return ""
	}
	return topic[i+len("/query/"):]
}

// Close disconnects from the MQTT broker.
func (t *Transport) Close() error {
	if t.client != nil && t.client.IsConnected() {
		t.client.Disconnect(250)
	}
	return nil
}
