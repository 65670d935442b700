package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	// DefaultOllamaURL is the default base URL of a local Ollama server.
	DefaultOllamaURL = "http://localhost:11434"
	// DefaultOllamaModel is used when no model is configured.
	DefaultOllamaModel = "qwen3:4b-instruct-2507-q4_K_M"
)

// OllamaClient implements the Generator interface against a self-hosted
// Ollama server. It needs no credential, which makes it handy for local
// development of the front end.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *logrus.Logger
	metrics    *MetricsCollector
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(baseURL, model string, timeout time.Duration, logger *logrus.Logger) *OllamaClient {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: NewMetricsCollector(string(BackendOllama)),
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options"`
}

// Name returns the backend name.
func (c *OllamaClient) Name() string {
	return string(BackendOllama)
}

// Configured always succeeds; Ollama has no credential.
func (c *OllamaClient) Configured() error {
	return nil
}

// Generate sends one chat message and returns the assistant's content.
func (c *OllamaClient) Generate(ctx context.Context, req Request) (string, error) {
	c.logger.WithFields(logrus.Fields{
		"model":         c.model,
		"format":        req.Format.String(),
		"prompt_length": len(req.Prompt),
	}).Debug("Sending prompt to Ollama")

	reqPayload := ollamaChatRequest{
		Model:    c.model,
		Messages: []ollamaMessage{{Role: "user", Content: req.Prompt}},
		Stream:   false,
		Options: ollamaOptions{
			Temperature: 0,
			NumPredict:  req.MaxOutputTokens,
		},
	}
	if req.Format == FormatJSONObject {
		reqPayload.Format = "json"
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(&reqPayload); err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := c.baseURL + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.RecordRequest(req.Format, time.Since(startTime), false, len(req.Prompt), 0)
		c.logger.WithError(err).WithFields(logrus.Fields{
			"url": url,
		}).Error("Ollama request failed")
		return "", &TransportError{Backend: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	duration := time.Since(startTime)
	if err != nil {
		c.metrics.RecordRequest(req.Format, duration, false, len(req.Prompt), 0)
		return "", &TransportError{Backend: c.Name(), StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordRequest(req.Format, duration, false, len(req.Prompt), 0)
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(body),
		}).Error("Ollama returned non-OK status")
		return "", &TransportError{Backend: c.Name(), StatusCode: resp.StatusCode, Body: string(body)}
	}
	if !gjson.ValidBytes(body) {
		c.metrics.RecordRequest(req.Format, duration, false, len(req.Prompt), 0)
		return "", &TransportError{Backend: c.Name(), StatusCode: resp.StatusCode, Body: string(body), Err: ErrMalformedEnvelope}
	}

	text := gjson.GetBytes(body, "message.content").String()
	c.metrics.RecordRequest(req.Format, duration, true, len(req.Prompt), len(text))

	c.logger.WithFields(logrus.Fields{
		"format":        req.Format.String(),
		"output_length": len(text),
		"duration_ms":   duration.Milliseconds(),
	}).Info("Ollama generation completed")

	return text, nil
}

// CheckHealth lists local models to verify the server is up.
func (c *OllamaClient) CheckHealth(ctx context.Context) error {
	url := c.baseURL + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
