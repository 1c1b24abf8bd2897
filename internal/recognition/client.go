package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/jwalitptl/pharmacy-api/pkg/logger"
)

// Engine is the external text recognition service. Recognize blocks until
// the engine finishes or ctx is cancelled; onProgress receives 0-100 updates
// and may be nil. Engine failures are fatal to the current scan attempt.
type Engine interface {
	Recognize(ctx context.Context, image []byte, filename string, onProgress func(percent int)) (string, error)
}

type ClientConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:      120 * time.Second,
		PollInterval: 500 * time.Millisecond,
	}
}

// Client adapts the recognition engine's submit-then-poll HTTP API. The scan
// session's context flows through every call, so closing the scanner cancels
// in-flight recognition instead of letting it finish and discarding the
// result.
type Client struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
	logger       *logger.Logger
}

func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClientConfig().Timeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultClientConfig().PollInterval
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		http:         &http.Client{Timeout: cfg.Timeout},
		pollInterval: cfg.PollInterval,
		logger:       log.WithComponent("recognition-client"),
	}
}

type submitResponse struct {
	Success bool `json:"success"`
	Data    struct {
		JobID string `json:"job_id"`
	} `json:"data"`
	Message string `json:"message,omitempty"`
}

type statusResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Status   string `json:"status"` // processing | done | failed
		Progress int    `json:"progress"`
		Text     string `json:"text,omitempty"`
		Message  string `json:"message,omitempty"`
	} `json:"data"`
	Message string `json:"message,omitempty"`
}

func (c *Client) Recognize(ctx context.Context, image []byte, filename string, onProgress func(int)) (string, error) {
	jobID, err := c.submit(ctx, image, filename)
	if err != nil {
		return "", err
	}
	if onProgress != nil {
		onProgress(0)
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		status, err := c.poll(ctx, jobID)
		if err != nil {
			return "", err
		}
		if onProgress != nil {
			onProgress(status.Data.Progress)
		}

		switch status.Data.Status {
		case "done":
			if onProgress != nil {
				onProgress(100)
			}
			return status.Data.Text, nil
		case "failed":
			return "", fmt.Errorf("recognition failed: %s", status.Data.Message)
		}
	}
}

func (c *Client) submit(ctx context.Context, image []byte, filename string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(image)); err != nil {
		return "", fmt.Errorf("failed to copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/recognize", body)
	if err != nil {
		return "", fmt.Errorf("failed to build recognition request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call recognition engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("recognition engine returned status %d", resp.StatusCode)
	}

	var submitted submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		return "", fmt.Errorf("failed to decode submit response: %w", err)
	}
	if !submitted.Success || submitted.Data.JobID == "" {
		return "", fmt.Errorf("recognition engine rejected the image: %s", submitted.Message)
	}
	return submitted.Data.JobID, nil
}

func (c *Client) poll(ctx context.Context, jobID string) (*statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/recognize/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to poll recognition status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recognition engine returned status %d", resp.StatusCode)
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	if !status.Success {
		return nil, fmt.Errorf("recognition status error: %s", status.Message)
	}
	return &status, nil
}
