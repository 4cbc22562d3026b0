// Command originserver runs the HTTP/1.1 origin server.
//
// Usage: originserver [port] [host] [pool_size]
// Defaults: port 8080, host 127.0.0.1, pool size 10.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/yourusername/originserver/internal/acceptloop"
	"github.com/yourusername/originserver/internal/config"
	"github.com/yourusername/originserver/internal/connio"
	"github.com/yourusername/originserver/internal/cors"
	"github.com/yourusername/originserver/internal/dashboard"
	"github.com/yourusername/originserver/internal/dispatch"
	"github.com/yourusername/originserver/internal/logging"
	"github.com/yourusername/originserver/internal/metrics"
	"github.com/yourusername/originserver/internal/pool"
	"github.com/yourusername/originserver/internal/ratelimit"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "originserver:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := config.DefaultConfig()

	if len(args) >= 1 {
		port, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", args[0], err)
		}
		cfg.Port = port
	}
	if len(args) >= 2 {
		cfg.Host = args[1]
	}
	if len(args) >= 3 {
		workers, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid pool_size %q: %w", args[2], err)
		}
		cfg.PoolWorkers = workers
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if info, err := os.Stat(cfg.ResourcesDir); err != nil || !info.IsDir() {
		return fmt.Errorf("resource root %q is not a readable directory", cfg.ResourcesDir)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("cannot create uploads directory %q: %w", cfg.UploadsDir, err)
	}

	logger := logging.New(logging.DefaultConfig(), 200)
	metricsRecorder := metrics.New()

	var limiter *ratelimit.Limiter
	if cfg.RateLimitEnabled {
		limiter = ratelimit.New(ratelimit.DefaultConfig())
	}

	corsHandler := cors.New(cors.Config{
		Enabled:      cfg.CORSEnabled,
		AllowOrigins: cfg.CORSAllowedOrigins,
	})

	dispatcher := dispatch.New(cfg.ResourcesDir, cfg.UploadsDir, cfg.MaxFileReadBytes)

	workerPool := pool.New(pool.Config{Workers: cfg.PoolWorkers, QueueCap: cfg.PoolQueueCap})

	connCfg := connio.Config{
		ServerHost:         cfg.Host,
		ServerPort:         cfg.Port,
		MaxHeaderBytes:     cfg.MaxHeaderBytes,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		MaxURILength:       cfg.MaxURILength,
		IdleTimeout:        cfg.IdleTimeout,
		MaxRequestsPerConn: 100,
		Dispatcher:         dispatcher,
		RateLimiter:        limiter,
		Logger:             logger,
		Metrics:            metricsRecorder,
		CORS:               corsHandler,
	}

	loop, err := acceptloop.New(cfg.Host, cfg.Port, workerPool, connCfg)
	if err != nil {
		return fmt.Errorf("failed to bind %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	adminServer := dashboard.New(cfg.AdminAddr, logger, limiter)
	go func() {
		if err := adminServer.Start(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "originserver: admin dashboard exited:", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	select {
	case <-ctx.Done():
		loop.Stop()
		<-errCh
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	workerPool.Shutdown()
	return nil
}
