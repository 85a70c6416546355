package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"

	"github.com/baditaflorin/go_string_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_string_similarity/internal/config"
	"github.com/baditaflorin/go_string_similarity/pkg/similarity"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defaults := config.Default()

	// Parse command-line flags
	configPath := flag.String("config", "", "Path to a YAML config file")
	port := flag.Int("port", defaults.Server.Port, "HTTP server port")
	readTimeout := flag.Duration("read-timeout", defaults.Server.ReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", defaults.Server.WriteTimeout, "HTTP write timeout")
	maxRequestSize := flag.Int("max-request-size", defaults.Server.MaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", defaults.Server.Concurrency, "Maximum number of concurrent requests (0 = fasthttp default)")
	maxCandidates := flag.Int("max-candidates", defaults.Server.MaxCandidates, "Maximum candidates per best-match request")
	maxTextLength := flag.Int("max-text-length", defaults.Server.MaxTextLength, "Maximum characters per compared text")
	rateLimit := flag.Float64("rate-limit", defaults.Server.RateLimit, "Requests per second (0 = unlimited)")
	warmUp := flag.Bool("warm-up", defaults.Server.WarmUp, "Perform system warm-up on startup")
	logFile := flag.String("log-file", defaults.Logging.File, "Log file path (empty = stdout)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// Explicit flags win over file and environment values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "read-timeout":
			cfg.Server.ReadTimeout = *readTimeout
		case "write-timeout":
			cfg.Server.WriteTimeout = *writeTimeout
		case "max-request-size":
			cfg.Server.MaxRequestSize = *maxRequestSize
		case "concurrency":
			cfg.Server.Concurrency = *concurrency
		case "max-candidates":
			cfg.Server.MaxCandidates = *maxCandidates
		case "max-text-length":
			cfg.Server.MaxTextLength = *maxTextLength
		case "rate-limit":
			cfg.Server.RateLimit = *rateLimit
		case "warm-up":
			cfg.Server.WarmUp = *warmUp
		case "log-file":
			cfg.Logging.File = *logFile
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	baseLogger, logFile, err := createLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	defer baseLogger.Close()

	baseLogger.Info("Starting string similarity HTTP server",
		"port", cfg.Server.Port,
		"read_timeout", cfg.Server.ReadTimeout,
		"write_timeout", cfg.Server.WriteTimeout,
		"max_request_size", cfg.Server.MaxRequestSize,
		"concurrency", cfg.Server.Concurrency,
		"max_candidates", cfg.Server.MaxCandidates,
		"max_text_length", cfg.Server.MaxTextLength,
		"policy", cfg.Similarity.Policy,
	)

	toolkit, err := newToolkit(cfg, baseLogger)
	if err != nil {
		return fmt.Errorf("initializing toolkit: %w", err)
	}
	defer toolkit.Close()

	srv, err := newServer(cfg, toolkit, logger.FromExisting(baseLogger))
	if err != nil {
		return err
	}

	httpServer := &fasthttp.Server{
		Handler:               srv.requestHandler,
		Name:                  "StringSimilarityServer",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		MaxRequestBodySize:    cfg.Server.MaxRequestSize,
		Concurrency:           cfg.Server.Concurrency,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		baseLogger.Info("Server listening", "address", addr)
		return httpServer.ListenAndServe(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		baseLogger.Info("Shutting down server...")
		return httpServer.Shutdown()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		baseLogger.Error("Server error", "error", err)
		return err
	}

	baseLogger.Info("Server stopped")
	return nil
}

// newToolkit builds the similarity toolkit from the loaded configuration.
func newToolkit(cfg *config.Config, lg l.Logger) (*similarity.Toolkit, error) {
	opts := []similarity.Option{
		similarity.WithLogger(lg),
		similarity.WithThreshold(cfg.Similarity.Threshold),
		similarity.WithPrecision(cfg.Similarity.Precision),
		similarity.WithStrictParsing(cfg.Parser.Strict),
	}
	if cfg.Similarity.Normalizer == "optimized" {
		opts = append(opts, similarity.WithOptimizedNormalizer())
	}
	if cfg.Server.WarmUp {
		opts = append(opts, similarity.WithWarmUp(true))
	}

	toolkit, err := similarity.New(opts...)
	if err != nil {
		return nil, err
	}

	lg.Info("Similarity toolkit initialized",
		"warm_up", cfg.Server.WarmUp,
		"normalizer", cfg.Similarity.Normalizer,
		"cpus", runtime.NumCPU(),
	)
	return toolkit, nil
}

// createLogger creates and configures a logger.
// The returned file is nil when logging to stdout; the caller closes it after the logger.
func createLogger(cfg config.LoggingConfig) (l.Logger, *os.File, error) {
	var output io.Writer = os.Stdout
	var file *os.File
	if cfg.File != "" {
		var err error
		file, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	lc := logger.DefaultConfig(output, cfg.JSON)
	lc.MaxFileSize = 100 * 1024 * 1024 // 100MB

	lg, err := l.NewStandardFactory().CreateLogger(lc)
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return lg, file, nil
}
