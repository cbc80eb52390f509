package grpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/nadzzz/krishivoice/internal/langid"
	"github.com/nadzzz/krishivoice/internal/message"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "krishivoice.v1.Assistant"

const (
	queryMethod  = "/" + ServiceName + "/Query"
	detectMethod = "/" + ServiceName + "/Detect"
)

// Codec carries the service's messages as JSON. Clients select it with
// grpc.CallContentSubtype(Codec{}.Name()); the health service keeps protobuf.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (Codec) Name() string                       { return "json" }

func init() {
	encoding.RegisterCodec(Codec{})
}

// QueryRequest asks the assistant a question.
type QueryRequest struct {
	Query    string `json:"query"`
	Language string `json:"language,omitempty"`
	Source   string `json:"source,omitempty"`
}

// DetectRequest asks for the language of a text.
type DetectRequest struct {
	Text string `json:"text"`
}

// DetectResponse is the classifier's verdict.
type DetectResponse struct {
	Language langid.Code    `json:"language"`
	Label    string         `json:"label"`
	Scores   []langid.Score `json:"scores"`
}

// AssistantServer is the server API for the Assistant service.
type AssistantServer interface {
	Query(ctx context.Context, req *QueryRequest) (*message.Reply, error)
	Detect(ctx context.Context, req *DetectRequest) (*DetectResponse, error)
}

// RegisterAssistantServer registers srv on s.
func RegisterAssistantServer(s grpc.ServiceRegistrar, srv AssistantServer) {
	s.RegisterService(&assistantServiceDesc, srv)
}

var assistantServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AssistantServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Query", Handler: queryHandler},
		{MethodName: "Detect", Handler: detectHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "krishivoice/v1/assistant",
}

func queryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(QueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AssistantServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: queryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AssistantServer).Query(ctx, req.(*QueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func detectHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DetectRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AssistantServer).Detect(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: detectMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AssistantServer).Detect(ctx, req.(*DetectRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the Assistant service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Query asks the assistant a question.
func (c *Client) Query(ctx context.Context, req *QueryRequest, opts ...grpc.CallOption) (*message.Reply, error) {
	out := new(message.Reply)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(Codec{}.Name())}, opts...)
	if err := c.cc.Invoke(ctx, queryMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Detect classifies a text.
func (c *Client) Detect(ctx context.Context, req *DetectRequest, opts ...grpc.CallOption) (*DetectResponse, error) {
	out := new(DetectResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(Codec{}.Name())}, opts...)
	if err := c.cc.Invoke(ctx, detectMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
