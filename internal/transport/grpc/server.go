// gRPC-поверхность threads-сервиса: стандартный grpc.health.v1 для оркестратора.
//
// Статус сервиса ServiceName (и общий "") отражает доступность хранилища:
// WatchReadiness периодически вызывает probe и переключает SERVING/NOT_SERVING.
package grpc

import (
	"context"
	"log/slog"
	"net"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/pribylovaa/go-threads/pkg/interceptors"
)

// ServiceName — имя сервиса в health-статусах.
const ServiceName = "threads.v1.Threads"

// Options — параметры сборки gRPC-сервера.
type Options struct {
	Logger     *slog.Logger
	Timeout    time.Duration
	Reflection bool
}

// Server — gRPC-сервер с health-сервисом и цепочкой интерсепторов.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	log    *slog.Logger
}

// New собирает сервер. Все сервисы стартуют в NOT_SERVING до первого SetServing(true).
func New(opts Options) *Server {
	lg := opts.Logger
	if lg == nil {
		lg = slog.Default()
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.Recover(lg),
			interceptors.UnaryLoggingInterceptor(lg),
			interceptors.WithTimeout(opts.Timeout),
			grpc_prometheus.UnaryServerInterceptor,
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamRecover(lg),
			interceptors.StreamLoggingInterceptor(lg),
			grpc_prometheus.StreamServerInterceptor,
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	if opts.Reflection {
		reflection.Register(srv)
	}

	grpc_prometheus.Register(srv)

	s := &Server{srv: srv, health: hs, log: lg}
	s.SetServing(false)

	return s
}

// SetServing переключает статус health для "" и ServiceName.
func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}

	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Serve блокируется до остановки сервера.
func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// WatchReadiness вызывает probe каждые every, пока ctx не отменён, и выставляет статус
// по результату. Первая проверка выполняется сразу.
func (s *Server) WatchReadiness(ctx context.Context, probe func(context.Context) error, every time.Duration) {
	const op = "transport/grpc/WatchReadiness"

	check := func() {
		pctx, cancel := context.WithTimeout(ctx, every)
		defer cancel()

		if err := probe(pctx); err != nil {
			if ctx.Err() == nil {
				s.log.Warn("readiness probe failed", "op", op, "err", err)
			}
			s.SetServing(false)
			return
		}

		s.SetServing(true)
	}

	check()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

// Stop переводит health в NOT_SERVING и останавливает сервер: сначала штатно,
// по истечении ctx — принудительно.
func (s *Server) Stop(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("grpc_stopped")
	case <-ctx.Done():
		s.log.Warn("grpc_force_stop")
		s.srv.Stop()
	}
}
