package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nadzzz/krishivoice/internal/assistant"
	"github.com/nadzzz/krishivoice/internal/config"
	"github.com/nadzzz/krishivoice/internal/langid"
	"github.com/nadzzz/krishivoice/internal/message"
)

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())

	tr := New(config.GRPCConfig{}, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = tr.Serve(ctx, lis, assistant.New(nil).Handle)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return conn
}

func TestQuery(t *testing.T) {
	client := NewClient(startServer(t))

	reply, err := client.Query(context.Background(), &QueryRequest{Query: "soil testing", Language: "ta-IN"})
	require.NoError(t, err)
	assert.Equal(t, "ta-IN", reply.Language)
	assert.Equal(t, message.ModeDemo, reply.Mode)
	assert.NotEmpty(t, reply.Text)
}

func TestQuery_InvalidArgument(t *testing.T) {
	client := NewClient(startServer(t))

	for _, req := range []*QueryRequest{
		{Query: ""},
		{Query: "hello", Language: "de"},
	} {
		_, err := client.Query(context.Background(), req)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "request %+v", req)
	}
}

func TestDetect(t *testing.T) {
	client := NewClient(startServer(t))

	resp, err := client.Detect(context.Background(), &DetectRequest{Text: "నమస్కారం రైతు"})
	require.NoError(t, err)
	assert.Equal(t, langid.Telugu, resp.Language)
	assert.Equal(t, langid.Telugu.Label(), resp.Label)
	assert.Len(t, resp.Scores, len(langid.Concrete()))
}

func TestHealth(t *testing.T) {
	hc := healthpb.NewHealthClient(startServer(t))

	resp, err := hc.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
