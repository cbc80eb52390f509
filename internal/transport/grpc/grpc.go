// Package grpc implements the gRPC transport for krishivoice.
//
// This transport serves the krishivoice.v1.Assistant service (Query and
// Detect) with JSON-encoded messages next to the standard gRPC health
// service. It suits kiosks and edge gateways that prefer a typed RPC.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/krishivoice/internal/assistant"
	"github.com/nadzzz/krishivoice/internal/config"
	"github.com/nadzzz/krishivoice/internal/langid"
	"github.com/nadzzz/krishivoice/internal/message"
	"github.com/nadzzz/krishivoice/internal/metrics"
)

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port       int
	classifier *langid.Classifier
	server     *grpc.Server
}

// New creates a new gRPC transport. classifier may be nil.
func New(cfg config.GRPCConfig, classifier *langid.Classifier) *Transport {
	if classifier == nil {
		classifier = langid.NewClassifier(nil)
	}
	return &Transport{port: cfg.Port, classifier: classifier}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler assistant.Handler) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis, handler)
}

// Serve runs the server on lis until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, handler assistant.Handler) error {
	t.server = grpc.NewServer(grpc.ChainUnaryInterceptor(countRequests))
	RegisterAssistantServer(t.server, &service{handler: handler, classifier: t.classifier})

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(t.server, hs)

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		hs.Shutdown()
		t.server.GracefulStop()
	}()

	return t.server.Serve(lis)
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.server != nil {
		t.server.GracefulStop()
	}
	return nil
}

type service struct {
	handler    assistant.Handler
	classifier *langid.Classifier
}

func (s *service) Query(ctx context.Context, req *QueryRequest) (*message.Reply, error) {
	source := req.Source
	if source == "" {
		source = "grpc"
	}
	reply, err := s.handler(ctx, message.NewQuery(source, req.Query, req.Language))
	switch {
	case errors.Is(err, assistant.ErrEmptyQuery), errors.Is(err, langid.ErrUnknownLanguage):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case err != nil:
		slog.Error("grpc query failed", "error", err)
		return nil, status.Error(codes.Internal, "query failed")
	}
	return reply, nil
}

func (s *service) Detect(_ context.Context, req *DetectRequest) (*DetectResponse, error) {
	res := s.classifier.Classify(req.Text)
	metrics.Detections.WithLabelValues(string(res.Language), "grpc").Inc()
	return &DetectResponse{Language: res.Language, Label: res.Language.Label(), Scores: res.Scores}, nil
}

func countRequests(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	metrics.GRPCRequests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	return resp, err
}
