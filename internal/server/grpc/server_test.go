package grpcserver

import (
	"context"
	"net"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/and161185/fittrack/internal/metrics"
	"github.com/and161185/fittrack/internal/model"
)

type fakeHandler struct {
	mu   sync.Mutex
	last model.Input
}

func (f *fakeHandler) Handle(_ context.Context, in model.Input) model.Reply {
	f.mu.Lock()
	f.last = in
	f.mu.Unlock()
	return model.Reply{
		Text:    "echo: " + in.Text,
		Choices: []model.Choice{{Label: "Male", Data: "male"}, {Label: "Female", Data: "female"}},
	}
}

func (f *fakeHandler) lastInput() model.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

const bufSize = 1 << 20

func startBufGRPC(t *testing.T, srv *Server) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	gs, err := NewGRPCServer(srv, Options{Reflection: true}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	go func() { _ = gs.Serve(lis) }()
	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	//nolint:staticcheck // DialContext is supported through 1.x; migrate when grpc.NewClient is stable
	cc, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close(); gs.Stop(); _ = lis.Close() })
	return cc
}

func withUser(id string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), UserIDHeader, id)
}

func TestSend_RoundTrip(t *testing.T) {
	t.Parallel()

	h := &fakeHandler{}
	m := metrics.New(nil)
	cc := startBufGRPC(t, New(h, m))
	client := NewAssistantClient(cc)

	reply, err := client.Send(withUser("12"), "  /help ", false)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Text != "echo: /help" {
		t.Fatalf("text mismatch: %q", reply.Text)
	}
	if len(reply.Choices) != 2 || reply.Choices[1].Data != "female" {
		t.Fatalf("choices mismatch: %+v", reply.Choices)
	}
	if in := h.lastInput(); in.UserID != 12 || in.Choice {
		t.Fatalf("input mismatch: %+v", in)
	}
	if got := testutil.ToFloat64(m.UpdatesTotal.WithLabelValues("grpc")); got != 1 {
		t.Fatalf("updates counter: %v", got)
	}

	if _, err := client.Send(withUser("12"), "female", true); err != nil {
		t.Fatalf("send choice: %v", err)
	}
	if in := h.lastInput(); !in.Choice || in.Text != "female" {
		t.Fatalf("choice input mismatch: %+v", in)
	}
}

func TestSend_Errors(t *testing.T) {
	t.Parallel()

	cc := startBufGRPC(t, New(&fakeHandler{}, nil))
	client := NewAssistantClient(cc)

	_, err := client.Send(context.Background(), "hi", false)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("want Unauthenticated, got %v", err)
	}

	_, err = client.Send(withUser("nope"), "hi", false)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("want Unauthenticated on bad id, got %v", err)
	}

	_, err = client.Send(withUser("1"), "   ", false)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument, got %v", err)
	}
}

func TestHealth_Serving(t *testing.T) {
	t.Parallel()

	cc := startBufGRPC(t, New(&fakeHandler{}, nil))
	resp, err := healthpb.NewHealthClient(cc).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("status: %v", resp.GetStatus())
	}
}

func TestReplyStruct_EmptyChoices(t *testing.T) {
	t.Parallel()

	s, err := ReplyToStruct(model.TextReply("done"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	r := ReplyFromStruct(s)
	if r.Text != "done" || len(r.Choices) != 0 {
		t.Fatalf("decoded: %+v", r)
	}
}
