package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Wang-tianhao/vibrant-blog-go/internal/config"
	"github.com/Wang-tianhao/vibrant-blog-go/internal/logger"
	"github.com/Wang-tianhao/vibrant-blog-go/internal/server"
	"github.com/Wang-tianhao/vibrant-blog-go/internal/store"
	"github.com/Wang-tianhao/vibrant-blog-go/jwtauth"
)

func main() {
	if err := run(); err != nil {
		slog.Error("blogd stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(settings.Logger.Level, settings.Logger.Format, os.Stdout)
	slog.SetDefault(log)
	gin.SetMode(settings.HTTP.Mode)

	authCfg, err := jwtauth.NewConfig(settings.AuthOptions(log)...)
	if err != nil {
		return err
	}

	st, err := store.NewStorage(settings.Storage.Path)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck // best-effort cleanup on shutdown

	guard := jwtauth.NewGuard[store.User](jwtauth.NewCodec(authCfg), st)

	api, err := server.New(server.Config{
		Store:              st,
		Guard:              guard,
		Logger:             log,
		CORSOrigins:        settings.HTTP.CORSOrigins,
		TrustedProxies:     settings.HTTP.TrustedProxies,
		LoginRatePerMinute: settings.Login.RatePerMinute,
		LoginBurst:         settings.Login.Burst,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         settings.HTTP.Addr,
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errs := make(chan error, 2)

	go func() {
		log.Info("http server listening", "addr", settings.HTTP.Addr, "algorithm", authCfg.Algorithm())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	var grpcServer *grpc.Server
	if settings.GRPC.Addr != "" {
		lis, err := net.Listen("tcp", settings.GRPC.Addr)
		if err != nil {
			return err
		}

		grpcServer = grpc.NewServer(
			grpc.UnaryInterceptor(jwtauth.UnaryServerInterceptor(guard)),
		)
		healthSrv := health.NewServer()
		healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		healthpb.RegisterHealthServer(grpcServer, healthSrv)

		go func() {
			log.Info("grpc server listening", "addr", settings.GRPC.Addr)
			if err := grpcServer.Serve(lis); err != nil {
				errs <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serveErr := awaitStop(log, quit, errs)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
	return serveErr
}

// awaitStop blocks until a shutdown signal or a listener failure.
// The failure, if any, is returned so the process exits non-zero.
func awaitStop(log *slog.Logger, quit <-chan os.Signal, errs <-chan error) error {
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
		return nil
	case err := <-errs:
		log.Error("server failed", "error", err)
		return err
	}
}
