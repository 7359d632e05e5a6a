// cmd/pigd/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pigd/internal/broker"
	"pigd/internal/config"
	"pigd/internal/tracing"
	"pigd/internal/worker"
)

func main() {
	// 1. Initialize logger and tracer
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	tracerShutdown, err := tracing.InitTracer("pigd")
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tracerShutdown(context.Background()); err != nil {
			log.Printf("failed to shutdown tracer: %v", err)
		}
	}()

	log.Println("Starting pigd highlight daemon...")

	// 2. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 3. Create root context for lifecycle management
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Setup graceful shutdown
	setupGracefulShutdown(cancel)

	// 5. Start the worker pool
	pool := worker.NewPool(cfg.PoolSize, logger)
	poolDone := make(chan struct{})
	go func() {
		pool.Run(rootCtx)
		close(poolDone)
	}()

	// 6. Bind and start the broker on the public endpoint
	b := broker.New(pool.Requests(), pool.Replies(), logger)
	if err := b.Listen(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to bind public endpoint: %v", err)
	}
	go func() {
		if err := b.Serve(rootCtx); err != nil {
			log.Fatalf("Broker failed: %v", err)
		}
	}()

	// 7. Expose Prometheus metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    cfg.MetricsListenAddr,
		Handler: mux,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Metrics server failed: %v", err)
		}
	}()

	// 8. Block until shutdown. In-flight requests are abandoned: there
	// is no drain of open connections or the pool.
	<-rootCtx.Done()
	log.Println("Shutting down...")

	metricsServer.Close()
	<-poolDone

	log.Println("pigd shut down.")
}

func setupGracefulShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v. Shutting down...", sig)
		cancel()
	}()
}
