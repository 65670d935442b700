package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/dasmlab/sensebridge/pkg/model"
	"github.com/dasmlab/sensebridge/pkg/server"
	"github.com/dasmlab/sensebridge/pkg/service"
)

const shutdownTimeout = 30 * time.Second

type cli struct {
	ListenAddr     string        `help:"HTTP listen address." default:":8080" env:"LISTEN_ADDR"`
	GRPCHealthPort int           `help:"gRPC health server port (0 disables it)." default:"50051" env:"GRPC_HEALTH_PORT"`
	Backend        string        `help:"Model backend: openai or ollama." default:"openai" env:"MODEL_BACKEND"`
	OpenAIAPIKey   string        `help:"OpenAI API key." env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string        `help:"OpenAI API base URL." default:"https://api.openai.com/v1" env:"OPENAI_BASE_URL"`
	Model          string        `help:"Model name. Empty selects the backend default." env:"MODEL"`
	OllamaURL      string        `help:"Ollama base URL." default:"http://localhost:11434" env:"OLLAMA_URL"`
	ModelTimeout   time.Duration `help:"Per-call model timeout (0 means none)." default:"0s" env:"MODEL_TIMEOUT"`
	LogLevel       string        `help:"Log level: debug, info, warn, error." default:"info" env:"LOG_LEVEL"`
	LogFormat      string        `help:"Log format: text or json." default:"text" enum:"text,json" env:"LOG_FORMAT"`
}

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	var c cli
	kong.Parse(&c,
		kong.Name("sensebridge"),
		kong.Description("Letter analysis and translation service backed by an LLM."),
	)

	logger := newLogger(c.LogLevel, c.LogFormat)

	if err := run(c, logger); err != nil {
		logger.WithError(err).Fatal("Server error")
	}
}

func newLogger(levelName, format string) *logrus.Logger {
	logger := logrus.New()
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func run(c cli, logger *logrus.Logger) error {
	backend, err := model.ParseBackend(c.Backend)
	if err != nil {
		return err
	}

	cfg := model.Config{
		Backend: backend,
		Model:   c.Model,
		Timeout: c.ModelTimeout,
		Logger:  logger,
	}
	switch backend {
	case model.BackendOpenAI:
		cfg.BaseURL = c.OpenAIBaseURL
		cfg.APIKey = c.OpenAIAPIKey
	case model.BackendOllama:
		cfg.BaseURL = c.OllamaURL
	}

	logger.WithFields(logrus.Fields{
		"listen_addr":      c.ListenAddr,
		"grpc_health_port": c.GRPCHealthPort,
		"backend":          backend,
		"model":            c.Model,
		"log_level":        logger.GetLevel().String(),
	}).Info("Starting sensebridge")

	generator, err := model.NewGenerator(cfg)
	if err != nil {
		return fmt.Errorf("create generator: %w", err)
	}

	// A missing key is reported per request, so startup continues.
	if err := generator.Configured(); err != nil {
		logger.WithError(err).Warn("Model backend is not configured, requests will fail until it is")
	} else {
		healthCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := generator.CheckHealth(healthCtx); err != nil {
			logger.WithError(err).Warn("Model backend health check failed, but continuing anyway")
		} else {
			logger.Info("Model backend health check passed")
		}
		cancel()
	}

	svc := service.NewAnalysisService(generator, logger)
	httpServer := server.NewHTTPServer(svc, logger, c.ListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(httpServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if c.GRPCHealthPort > 0 {
		if err := serveHealth(gctx, g, c.GRPCHealthPort, logger); err != nil {
			return err
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// serveHealth registers the gRPC health server on g. It reports
// NOT_SERVING once ctx is done, then stops.
func serveHealth(ctx context.Context, g *errgroup.Group, port int, logger *logrus.Logger) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listen on gRPC health port %d: %w", port, err)
	}

	s := grpc.NewServer(
		grpc.Creds(insecure.NewCredentials()),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             15 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: 5 * time.Minute,
			Time:              30 * time.Second,
			Timeout:           10 * time.Second,
		}),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(server.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	// Reflection lets grpcurl list the health service.
	reflection.Register(s)

	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"port": port,
		}).Info("gRPC health server listening")
		if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("failed to serve gRPC health: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		healthServer.Shutdown()

		stopped := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(stopped)
		}()

		timer := time.NewTimer(shutdownTimeout)
		defer timer.Stop()
		select {
		case <-stopped:
		case <-timer.C:
			logger.Warn("Graceful shutdown timeout, forcing gRPC stop")
			s.Stop()
		}
		return nil
	})
	return nil
}
