package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
)

// RequestIDHeader carries a caller-supplied request id.
const RequestIDHeader = "x-request-id"

// Server hosts BOLService and the standard health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *slog.Logger
}

func New(svc BOLServer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(RequestIDInterceptor(logger)))
	RegisterBOLServer(gs, svc)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(gs)

	return &Server{grpc: gs, health: hs, logger: logger}
}

// GRPC exposes the underlying server.
func (s *Server) GRPC() *grpc.Server { return s.grpc }

// Serve accepts connections on lis until ctx is cancelled, then drains
// in-flight calls.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
		errCh <- s.grpc.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down gRPC server")
		s.health.Shutdown()
		s.grpc.GracefulStop()
		return nil
	}
}

// RequestIDInterceptor attaches a request id and a request-scoped logger to
// the context and logs each call.
func RequestIDInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 {
				id = v[0]
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		reqLogger := logger.With("request_id", id, "method", info.FullMethod)
		ctx = common.WithRequestID(ctx, id)
		ctx = common.WithLogger(ctx, reqLogger)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		if err != nil {
			reqLogger.Warn("rpc.failed", "code", code.String(), "elapsed_ms", time.Since(start).Milliseconds(), "error", err)
		} else {
			reqLogger.Info("rpc.ok", "elapsed_ms", time.Since(start).Milliseconds())
		}
		return resp, err
	}
}
