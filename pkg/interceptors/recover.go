package interceptors

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/pribylovaa/go-threads/pkg/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errPanic — нейтральный ответ клиенту вместо деталей паники.
var errPanic = status.Error(codes.Internal, "internal server error")

// Recover перехватывает паники unary-обработчиков и отвечает codes.Internal.
// Логгер берётся из контекста, если он там есть, иначе base (или slog.Default()).
func Recover(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(ctx, base, info.FullMethod, r)
				resp, err = nil, errPanic
			}
		}()

		return handler(ctx, req)
	}
}

// StreamRecover — то же для stream-обработчиков (health Watch).
func StreamRecover(base *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(ss.Context(), base, info.FullMethod, r)
				err = errPanic
			}
		}()

		return handler(srv, ss)
	}
}

func logPanic(ctx context.Context, base *slog.Logger, method string, reason any) {
	l := log.From(ctx)
	if l == slog.Default() && base != nil {
		l = base
	}

	l.Error("panic_recovered",
		slog.String("method", method),
		slog.Any("panic", reason),
		slog.String("stack", string(debug.Stack())),
	)
}
