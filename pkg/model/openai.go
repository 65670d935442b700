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
	// DefaultOpenAIURL is the default base URL for the OpenAI API.
	DefaultOpenAIURL = "https://api.openai.com/v1"
	// DefaultOpenAIModel is the model used for every call.
	DefaultOpenAIModel = "gpt-4o-mini"
)

// OpenAIClient implements the Generator interface using the OpenAI Responses API.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *logrus.Logger
	metrics    *MetricsCollector
}

// NewOpenAIClient creates a new OpenAI client.
// A zero timeout leaves the transport default in place.
// An empty apiKey is accepted here and reported by Configured and Generate.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration, logger *logrus.Logger) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: NewMetricsCollector(string(BackendOpenAI)),
	}
}

// responsesRequest represents a Responses API request.
type responsesRequest struct {
	Model           string        `json:"model"`
	Temperature     float64       `json:"temperature"`
	MaxOutputTokens int           `json:"max_output_tokens"`
	Input           string        `json:"input"`
	Text            responsesText `json:"text"`
}

type responsesText struct {
	Format responsesFormat `json:"format"`
}

type responsesFormat struct {
	Type string `json:"type"` // "text" or "json_object"
}

// Name returns the backend name.
func (c *OpenAIClient) Name() string {
	return string(BackendOpenAI)
}

// Configured returns ErrMissingCredential when no API key is set.
func (c *OpenAIClient) Configured() error {
	if c.apiKey == "" {
		return ErrMissingCredential
	}
	return nil
}

// Generate sends one prompt with deterministic decoding and returns the
// generated text found in the response envelope.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := c.Configured(); err != nil {
		return "", err
	}

	c.logger.WithFields(logrus.Fields{
		"model":         c.model,
		"format":        req.Format.String(),
		"max_tokens":    req.MaxOutputTokens,
		"prompt_length": len(req.Prompt),
	}).Debug("Sending prompt to OpenAI")

	reqPayload := responsesRequest{
		Model:           c.model,
		Temperature:     0,
		MaxOutputTokens: req.MaxOutputTokens,
		Input:           req.Prompt,
		Text:            responsesText{Format: responsesFormat{Type: req.Format.String()}},
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(&reqPayload); err != nil {
		c.logger.WithError(err).Error("Failed to encode responses request")
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := c.baseURL + "/responses"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		c.logger.WithError(err).Error("Failed to create responses request")
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	startTime := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.RecordRequest(req.Format, time.Since(startTime), false, len(req.Prompt), 0)
		c.logger.WithError(err).WithFields(logrus.Fields{
			"url": url,
		}).Error("OpenAI request failed")
		return "", &TransportError{Backend: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	duration := time.Since(startTime)
	if err != nil {
		c.metrics.RecordRequest(req.Format, duration, false, len(req.Prompt), 0)
		return "", &TransportError{Backend: c.Name(), StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
	}).Debug("OpenAI request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.RecordRequest(req.Format, duration, false, len(req.Prompt), 0)
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(body),
		}).Error("OpenAI returned non-success status")
		return "", &TransportError{Backend: c.Name(), StatusCode: resp.StatusCode, Body: string(body)}
	}

	if !gjson.ValidBytes(body) {
		c.metrics.RecordRequest(req.Format, duration, false, len(req.Prompt), 0)
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(body),
		}).Error("OpenAI returned a malformed envelope")
		return "", &TransportError{Backend: c.Name(), StatusCode: resp.StatusCode, Body: string(body), Err: ErrMalformedEnvelope}
	}

	text := ExtractText(body)
	c.metrics.RecordRequest(req.Format, duration, true, len(req.Prompt), len(text))

	c.logger.WithFields(logrus.Fields{
		"format":        req.Format.String(),
		"output_length": len(text),
		"total_tokens":  gjson.GetBytes(body, "usage.total_tokens").Int(),
		"duration_ms":   duration.Milliseconds(),
	}).Info("OpenAI generation completed")

	return text, nil
}

// CheckHealth verifies that the OpenAI API is reachable with the configured key.
func (c *OpenAIClient) CheckHealth(ctx context.Context) error {
	if err := c.Configured(); err != nil {
		return err
	}
	c.logger.Debug("Checking OpenAI health")

	url := c.baseURL + "/models/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"url": url,
		}).Error("Health check request failed")
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &TransportError{Backend: c.Name(), StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.logger.Debug("OpenAI health check passed")
	return nil
}
