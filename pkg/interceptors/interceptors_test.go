package interceptors

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/pribylovaa/go-threads/pkg/log"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// Unit-тесты интерсепторов (timeout.go, recover.go, logging.go).

// capHandler — минимальный slog.Handler для захвата последней записи
// и всех атрибутов. Дополнительно ведёт счётчик сообщений по тексту.
type capHandler struct {
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   map[string]int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})
	if h.count == nil {
		h.count = make(map[string]int)
	}
	h.count[r.Message]++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out
	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.base = append(h.base, attrs...)
	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func healthInfo(method string) *grpc.UnaryServerInfo {
	return &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/" + method}
}

// TestUnaryLoggingInterceptor — request_id/peer/код статуса и логгер в контексте.
func TestUnaryLoggingInterceptor(t *testing.T) {
	t.Parallel()

	withMD := func(rid string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.New(map[string]string{"x-request-id": rid}))
	}

	t.Run("request id from metadata and peer", func(t *testing.T) {
		t.Parallel()

		h := &capHandler{}
		ctx := peer.NewContext(withMD("rid-123"), &peer.Peer{
			Addr: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50055},
		})

		resp, err := UnaryLoggingInterceptor(slog.New(h))(ctx, "req", healthInfo("Check"),
			func(ctx context.Context, req any) (any, error) {
				time.Sleep(2 * time.Millisecond)
				log.From(ctx).Info("handler")
				return "ok", nil
			})
		require.NoError(t, err)
		require.Equal(t, "ok", resp)

		require.Equal(t, 1, h.count["handler"])
		require.Equal(t, "grpc", h.lastMsg)
		require.Equal(t, slog.LevelInfo, h.lastLvl)
		require.Equal(t, "rid-123", h.attrs["request_id"])
		require.Equal(t, "/grpc.health.v1.Health/Check", h.attrs["method"])
		require.Equal(t, "127.0.0.1:50055", h.attrs["peer"])
		require.Equal(t, "OK", h.attrs["code"])

		d, ok := h.attrs["dur"].(time.Duration)
		require.True(t, ok)
		require.Greater(t, d, time.Duration(0))
	})

	t.Run("generated uuid and error code", func(t *testing.T) {
		t.Parallel()

		h := &capHandler{}
		_, err := UnaryLoggingInterceptor(slog.New(h))(context.Background(), "req", healthInfo("Check"),
			func(ctx context.Context, req any) (any, error) {
				return nil, status.Error(codes.NotFound, "unknown service")
			})
		require.Error(t, err)
		require.Equal(t, "NotFound", h.attrs["code"])
		require.Equal(t, "-", h.attrs["peer"])

		rid, _ := h.attrs["request_id"].(string)
		_, parseErr := uuid.Parse(rid)
		require.NoError(t, parseErr)
	})
}

// TestRecover — паника превращается в codes.Internal со стеком в логе; без паники логов нет.
func TestRecover(t *testing.T) {
	t.Parallel()

	t.Run("panic", func(t *testing.T) {
		t.Parallel()

		h := &capHandler{}
		resp, err := Recover(slog.New(h))(context.Background(), "req", healthInfo("Check"),
			func(ctx context.Context, req any) (any, error) {
				panic("boom")
			})

		require.Nil(t, resp)
		require.Equal(t, codes.Internal, status.Code(err))
		require.Equal(t, slog.LevelError, h.lastLvl)
		require.Equal(t, "panic_recovered", h.lastMsg)
		require.Equal(t, "/grpc.health.v1.Health/Check", h.attrs["method"])
		require.NotEmpty(t, h.attrs["panic"])

		stack, ok := h.attrs["stack"].(string)
		require.True(t, ok)
		require.NotEmpty(t, stack)
	})

	t.Run("pass through", func(t *testing.T) {
		t.Parallel()

		h := &capHandler{}
		resp, err := Recover(slog.New(h))(context.Background(), "req", healthInfo("Check"),
			func(ctx context.Context, req any) (any, error) {
				return "ok", nil
			})

		require.NoError(t, err)
		require.Equal(t, "ok", resp)
		require.Empty(t, h.lastMsg)
	})
}

// TestWithTimeout — дедлайн навешивается только при отсутствии; d <= 0 — no-op.
func TestWithTimeout(t *testing.T) {
	t.Parallel()

	t.Run("sets deadline", func(t *testing.T) {
		t.Parallel()

		const d = 30 * time.Millisecond
		start := time.Now()
		_, err := WithTimeout(d)(context.Background(), "req", healthInfo("Check"),
			func(ctx context.Context, req any) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})

		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.GreaterOrEqual(t, time.Since(start), d)
	})

	t.Run("keeps existing deadline", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
		defer cancel()
		pdl, _ := parent.Deadline()

		var childDL time.Time
		_, err := WithTimeout(time.Second)(parent, "req", healthInfo("Check"),
			func(ctx context.Context, req any) (any, error) {
				childDL, _ = ctx.Deadline()
				return "ok", nil
			})

		require.NoError(t, err)
		require.WithinDuration(t, pdl, childDL, time.Millisecond)
	})

	t.Run("zero is noop", func(t *testing.T) {
		t.Parallel()

		var hasDL bool
		_, err := WithTimeout(0)(context.Background(), "req", healthInfo("Check"),
			func(ctx context.Context, req any) (any, error) {
				_, hasDL = ctx.Deadline()
				return "ok", nil
			})

		require.NoError(t, err)
		require.False(t, hasDL)
	})
}

// fakeStream — минимальный grpc.ServerStream с заданным контекстом.
type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *fakeStream) Context() context.Context { return s.ctx }

// TestStreamLoggingInterceptor_ContextLogger —
// handler видит обогащённый логгер через ss.Context(), итоговая строка grpc_stream.
func TestStreamLoggingInterceptor_ContextLogger(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	logger := slog.New(h)

	md := metadata.New(map[string]string{"x-request-id": "rid-stream"})
	ss := &fakeStream{ctx: metadata.NewIncomingContext(context.Background(), md)}
	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch", IsServerStream: true}

	err := StreamLoggingInterceptor(logger)(nil, ss, info, func(srv any, stream grpc.ServerStream) error {
		log.From(stream.Context()).Info("handler")
		return status.Error(codes.Canceled, "client gone")
	})
	require.Equal(t, codes.Canceled, status.Code(err))

	require.Equal(t, 1, h.count["handler"])
	require.Equal(t, "grpc_stream", h.lastMsg)
	require.Equal(t, "rid-stream", h.attrs["request_id"])
	require.Equal(t, "Canceled", h.attrs["code"])
}

// TestStreamRecover_PanicToInternal —
// паника в stream-обработчике превращается в codes.Internal.
func TestStreamRecover_PanicToInternal(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	ss := &fakeStream{ctx: context.Background()}
	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"}

	err := StreamRecover(slog.New(h))(nil, ss, info, func(any, grpc.ServerStream) error {
		panic("stream boom")
	})

	require.Equal(t, codes.Internal, status.Code(err))
	require.Equal(t, "panic_recovered", h.lastMsg)
	require.Equal(t, info.FullMethod, h.attrs["method"])
}
