package interceptors

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-threads/pkg/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// UnaryLoggingInterceptor кладёт в контекст логгер с request_id/method/peer
// и после вызова пишет строку msg="grpc" с кодом статуса и длительностью.
// request_id берётся из x-request-id входящих metadata, иначе генерируется UUID.
func UnaryLoggingInterceptor(base *slog.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = slog.Default()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		l := callLogger(ctx, base, info.FullMethod)
		resp, err := handler(log.Into(ctx, l), req)

		l.Info("grpc",
			slog.String("code", status.Code(err).String()),
			slog.Duration("dur", time.Since(start)),
		)

		return resp, err
	}
}

// StreamLoggingInterceptor — вариант для stream-вызовов; пишет строку при закрытии стрима.
func StreamLoggingInterceptor(base *slog.Logger) grpc.StreamServerInterceptor {
	if base == nil {
		base = slog.Default()
	}

	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()

		l := callLogger(ss.Context(), base, info.FullMethod)
		err := handler(srv, &loggedStream{ServerStream: ss, ctx: log.Into(ss.Context(), l)})

		l.Info("grpc_stream",
			slog.String("code", status.Code(err).String()),
			slog.Duration("dur", time.Since(start)),
		)

		return err
	}
}

// loggedStream подменяет контекст стрима на обогащённый логгером.
type loggedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *loggedStream) Context() context.Context { return s.ctx }

func callLogger(ctx context.Context, base *slog.Logger, method string) *slog.Logger {
	var rid string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("x-request-id"); len(v) > 0 && v[0] != "" {
			rid = v[0]
		}
	}
	if rid == "" {
		rid = uuid.NewString()
	}

	peerStr := "-"
	if p, ok := peer.FromContext(ctx); ok && p != nil && p.Addr != nil {
		peerStr = p.Addr.String()
	}

	return base.With(
		slog.String("request_id", rid),
		slog.String("method", method),
		slog.String("peer", peerStr),
	)
}
