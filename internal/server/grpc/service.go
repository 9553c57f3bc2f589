package grpcserver

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/and161185/fittrack/internal/model"
)

const (
	// ServiceName is the fully-qualified gRPC service name.
	ServiceName = "fittrack.v1.Assistant"
	// SendMethod is the full method name of Assistant.Send.
	SendMethod = "/" + ServiceName + "/Send"
)

// AssistantServer is the server API of the Assistant service.
//
// Send takes {"text": string, "choice": bool} and returns
// {"text": string, "choices": [{"label": string, "data": string}]}.
type AssistantServer interface {
	Send(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterAssistantServer attaches srv to the gRPC registrar.
func RegisterAssistantServer(r grpc.ServiceRegistrar, srv AssistantServer) {
	r.RegisterService(&assistantServiceDesc, srv)
}

func sendHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AssistantServer).Send(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SendMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AssistantServer).Send(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var assistantServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AssistantServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Send", Handler: sendHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fittrack/v1/assistant.proto",
}

// AssistantClient calls the Assistant service.
type AssistantClient struct {
	cc grpc.ClientConnInterface
}

// NewAssistantClient wraps a client connection.
func NewAssistantClient(cc grpc.ClientConnInterface) *AssistantClient {
	return &AssistantClient{cc: cc}
}

// Send delivers one input and returns the assistant's reply.
func (c *AssistantClient) Send(ctx context.Context, text string, choice bool, opts ...grpc.CallOption) (model.Reply, error) {
	req, err := structpb.NewStruct(map[string]any{"text": text, "choice": choice})
	if err != nil {
		return model.Reply{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SendMethod, req, out, opts...); err != nil {
		return model.Reply{}, err
	}
	return ReplyFromStruct(out), nil
}

// ReplyToStruct encodes a reply for the wire.
func ReplyToStruct(r model.Reply) (*structpb.Struct, error) {
	choices := make([]any, 0, len(r.Choices))
	for _, c := range r.Choices {
		choices = append(choices, map[string]any{"label": c.Label, "data": c.Data})
	}
	s, err := structpb.NewStruct(map[string]any{"text": r.Text, "choices": choices})
	if err != nil {
		return nil, fmt.Errorf("encode reply: %w", err)
	}
	return s, nil
}

// ReplyFromStruct decodes a reply. Unknown or mistyped fields are ignored.
func ReplyFromStruct(s *structpb.Struct) model.Reply {
	f := s.GetFields()
	r := model.Reply{Text: f["text"].GetStringValue()}
	for _, v := range f["choices"].GetListValue().GetValues() {
		c := v.GetStructValue().GetFields()
		r.Choices = append(r.Choices, model.Choice{
			Label: c["label"].GetStringValue(),
			Data:  c["data"].GetStringValue(),
		})
	}
	return r
}
