package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/medaimane/AthleticEdge/internal/config"
	grpcdelivery "github.com/medaimane/AthleticEdge/internal/delivery/grpc"
	httpdelivery "github.com/medaimane/AthleticEdge/internal/delivery/http"
	"github.com/medaimane/AthleticEdge/internal/metrics"
	"github.com/medaimane/AthleticEdge/internal/service"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the gRPC health server and the order consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// --- Stores ---
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Failed to close stores", "err", err)
		}
	}()

	// --- Broker ---
	broker, err := openBroker(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := broker.Close(); err != nil {
			slog.Error("Failed to close broker", "err", err)
		}
	}()

	// --- Services ---
	m := metrics.NewRegistry()
	catalog := service.NewCatalogService(st.products)
	if err := catalog.Seed(ctx); err != nil {
		return err
	}
	carts := service.NewCartService(st.carts, st.products, m)
	orders := service.NewOrderService(st.orders, st.products, st.events, carts, broker, m, service.Topics{
		OrderPlaced: cfg.OrdersPlacedTopic,
		OrderStatus: cfg.OrdersStatusTopic,
	})

	// Consumer: orders.placed → confirmation notice
	go broker.Consume(ctx, cfg.OrdersPlacedTopic, cfg.ConsumerGroup, orders.HandleOrderPlaced)
	slog.Info("Order consumer started", "topic", cfg.OrdersPlacedTopic, "group", cfg.ConsumerGroup)

	// --- HTTP API ---
	mux := http.NewServeMux()
	httpdelivery.NewHandler(catalog, carts, orders).RegisterRoutes(mux)
	mux.Handle("GET /metrics", m.Handler())

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpdelivery.Instrument(m, httpdelivery.EnableCORS(mux)),
	}
	go func() {
		slog.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "err", err)
			cancel()
		}
	}()

	// --- gRPC health ---
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
	}
	health := grpcdelivery.NewServer()
	go func() {
		if err := health.Serve(lis); err != nil {
			slog.Error("gRPC server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")

	health.Shutdown()
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
