// Package grpcserver exposes the assistant over gRPC so scripts and the CLI
// can talk to it the same way Telegram users do.
package grpcserver

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/and161185/fittrack/internal/metrics"
	"github.com/and161185/fittrack/internal/model"
)

const transportName = "grpc"

// Handler turns one input into one reply.
type Handler interface {
	Handle(ctx context.Context, in model.Input) model.Reply
}

// Server adapts a Handler to the Assistant service.
type Server struct {
	handler Handler
	metrics *metrics.Metrics
}

// New constructs the Assistant service implementation.
func New(h Handler, m *metrics.Metrics) *Server {
	return &Server{handler: h, metrics: m}
}

// Send handles one user input. The user id comes from the x-user-id header.
func (s *Server) Send(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, ok := UserIDFromCtx(ctx)
	if !ok {
		id, err := userIDFromMD(ctx)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "no user id")
		}
		userID = id
	}
	f := req.GetFields()
	text := strings.TrimSpace(f["text"].GetStringValue())
	if text == "" {
		return nil, status.Error(codes.InvalidArgument, "empty text")
	}
	if s.metrics != nil {
		s.metrics.IncUpdate(transportName)
	}

	reply := s.handler.Handle(ctx, model.Input{
		UserID: userID,
		Text:   text,
		Choice: f["choice"].GetBoolValue(),
	})
	out, err := ReplyToStruct(reply)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "reply: %v", err)
	}
	return out, nil
}

// Options configure NewGRPCServer.
type Options struct {
	TLSCert    string
	TLSKey     string
	Reflection bool
}

// NewGRPCServer builds a grpc.Server with the Assistant, health and
// (optionally) reflection services and the standard interceptor chain.
func NewGRPCServer(srv *Server, opts Options, log *zap.Logger) (*grpc.Server, error) {
	sopts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			RecoverUnary(log),
			LoggingUnary(log),
			UserUnary(),
		),
	}
	if opts.TLSCert != "" && opts.TLSKey != "" {
		creds, err := credentials.NewServerTLSFromFile(opts.TLSCert, opts.TLSKey)
		if err != nil {
			return nil, err
		}
		sopts = append(sopts, grpc.Creds(creds))
	}

	gs := grpc.NewServer(sopts...)
	RegisterAssistantServer(gs, srv)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	if opts.Reflection {
		reflection.Register(gs)
	}
	return gs, nil
}
