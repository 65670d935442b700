package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Backend represents the type of generation backend to use.
type Backend string

const (
	// BackendOpenAI uses the hosted OpenAI Responses API.
	BackendOpenAI Backend = "openai"
	// BackendOllama uses a self-hosted Ollama server.
	BackendOllama Backend = "ollama"
)

// Config holds configuration for creating a Generator instance.
type Config struct {
	// Backend specifies which backend to use.
	Backend Backend
	// BaseURL overrides the backend's default API base URL.
	BaseURL string
	// APIKey is the backend credential. Only OpenAI needs one.
	APIKey string
	// Model overrides the backend's default model.
	Model string
	// Timeout bounds each call. Zero means no client-side timeout.
	Timeout time.Duration
	// Logger is the logger instance to use. If nil, a default logger is created.
	Logger *logrus.Logger
}

// NewGenerator creates a new Generator instance based on the configuration.
func NewGenerator(cfg Config) (Generator, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	cfg.Logger.WithFields(logrus.Fields{
		"backend":  cfg.Backend,
		"base_url": cfg.BaseURL,
		"model":    cfg.Model,
		"timeout":  cfg.Timeout.String(),
	}).Info("Creating generator instance")

	switch cfg.Backend {
	case BackendOpenAI:
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout, cfg.Logger), nil
	case BackendOllama:
		return NewOllamaClient(cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.Logger), nil
	default:
		return nil, fmt.Errorf("unknown model backend: %s", cfg.Backend)
	}
}

// ParseBackend parses a string into a Backend, ignoring case.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai":
		return BackendOpenAI, nil
	case "ollama":
		return BackendOllama, nil
	default:
		return "", fmt.Errorf("unknown backend type: %s (supported: openai, ollama)", s)
	}
}
