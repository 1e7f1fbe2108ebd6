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

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/fcs-gates/internal/config"
	"github.com/danielpatrickdp/fcs-gates/internal/httpapi"
	"github.com/danielpatrickdp/fcs-gates/internal/logging"
	"github.com/danielpatrickdp/fcs-gates/internal/rpc"
	"github.com/danielpatrickdp/fcs-gates/internal/serving"
	"github.com/danielpatrickdp/fcs-gates/internal/store"
	"github.com/danielpatrickdp/fcs-gates/internal/textmodel"
)

const shutdownGrace = 10 * time.Second

// #region main
func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := serving.NewLogger(os.Stderr, cfg.SlogLevel())
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		var loadErr *textmodel.ArtifactLoadError
		if errors.As(err, &loadErr) {
			logger.Error("model artifact could not be loaded", "path", loadErr.Path, "err", loadErr.Err)
		} else {
			logger.Error("gate server stopped", "err", err)
		}
		os.Exit(1)
	}
}

// #endregion main

// #region run
func run(cfg config.Config, logger *slog.Logger) error {
	bindings, err := cfg.Gates()
	if err != nil {
		return err
	}
	gates, err := serving.LoadGates(bindings, logger)
	if err != nil {
		return err
	}

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	recorder := logging.NewRecorder(st.DB(), logger)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.New(gates, recorder).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcSrv := rpc.NewGRPCServer(gates, recorder, logger)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("gate server ready", "http", cfg.HTTPAddr, "grpc", cfg.GRPCAddr, "gates", len(gates), "db", cfg.DBPath)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		grpcSrv.GracefulStop()
		return err
	})
	return g.Wait()
}

// #endregion run
