// Package transport defines the interface for pluggable query transports.
//
// Each transport (gRPC, HTTP/WebSocket, MQTT) implements this interface and
// is handed the assistant as its Handler. The assistant doesn't care how
// queries arrive; it only works with the Transport contract.
package transport

import (
	"context"

	"github.com/nadzzz/krishivoice/internal/assistant"
)

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "grpc", "http", "mqtt").
	Name() string

	// Listen starts accepting queries and answers them with handler.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, handler assistant.Handler) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
