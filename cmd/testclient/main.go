package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

type cli struct {
	Addr     string        `help:"sensebridge base URL." default:"http://localhost:8080"`
	Endpoint string        `help:"Endpoint to call." default:"analyze" enum:"analyze,translate"`
	Source   string        `help:"Source language code (AUTO to detect)." default:"AUTO"`
	Target   string        `help:"Language of the reader." default:"PL"`
	Tone     string        `help:"Preferred reply tone." default:"neutral"`
	File     string        `help:"Path to a text file to send." type:"existingfile"`
	Text     string        `help:"Text to send (if file not provided)."`
	Timeout  time.Duration `help:"Request timeout." default:"2m"`
}

func main() {
	var c cli
	kong.Parse(&c, kong.Name("testclient"), kong.Description("Sends a letter to a running sensebridge server."))

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	var letter string
	switch {
	case c.File != "":
		data, err := os.ReadFile(c.File)
		if err != nil {
			logger.WithError(err).Fatalf("Failed to read file: %s", c.File)
		}
		letter = string(data)
	case c.Text != "":
		letter = c.Text
	default:
		logger.Fatal("Either --file or --text must be provided")
	}

	body, err := buildBody(c, letter)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build request body")
	}

	url := strings.TrimRight(c.Addr, "/") + "/" + c.Endpoint
	logger.WithFields(logrus.Fields{
		"url":         url,
		"source_lang": c.Source,
		"target_lang": c.Target,
		"text_length": len(letter),
	}).Info("Sending request to sensebridge...")

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	start := time.Now()
	status, resp, err := send(ctx, url, body)
	if err != nil {
		logger.WithError(err).Fatal("Request failed")
	}
	duration := time.Since(start)

	doc := gjson.ParseBytes(resp)
	if status != http.StatusOK || !doc.Get("ok").Bool() {
		logger.WithFields(logrus.Fields{
			"status": status,
			"error":  doc.Get("error").String(),
		}).Fatal("Server returned an error")
	}

	logger.WithFields(logrus.Fields{
		"detected_lang": doc.Get("detectedLang").String(),
		"duration":      duration,
	}).Info("Request completed")

	fmt.Println("=== Translation ===")
	fmt.Println(doc.Get("translation").String())
	if c.Endpoint == "translate" {
		return
	}

	fmt.Println("\n=== Summary ===")
	fmt.Println(doc.Get("summary").String())
	fmt.Println("\n=== Risks ===")
	doc.Get("risks").ForEach(func(_, risk gjson.Result) bool {
		fmt.Printf("- %s\n", risk.String())
		return true
	})
	fmt.Println("\n=== Replies ===")
	doc.Get("replies").ForEach(func(tone, reply gjson.Result) bool {
		fmt.Printf("[%s]\n%s\n\n", tone.String(), reply.String())
		return true
	})
}

func buildBody(c cli, letter string) ([]byte, error) {
	body := []byte(`{}`)
	fields := []struct {
		key   string
		value string
	}{
		{"text", letter},
		{"sourceLang", c.Source},
		{"userLang", c.Target},
	}
	if c.Endpoint == "analyze" {
		fields = append(fields, struct {
			key   string
			value string
		}{"tone", c.Tone})
	}

	var err error
	for _, f := range fields {
		if body, err = sjson.SetBytes(body, f.key, f.value); err != nil {
			return nil, fmt.Errorf("set %s: %w", f.key, err)
		}
	}
	return body, nil
}

func send(ctx context.Context, url string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}
