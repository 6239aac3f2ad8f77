// Package submit is the client for the remote submission service. It accepts
// one aggregated record and returns the application reference the backend
// assigned, or a structured error carrying the backend's message.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"admissions-intake/internal/common/errors"
	"admissions-intake/internal/common/httpclient"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/models"
)

type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     logger.Logger
}

type ClientOptions struct {
	BaseURL string
	Timeout time.Duration
	Logger  logger.Logger
}

func NewClient(opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: httpclient.NewClient(timeout),
		logger:     log,
	}
}

// submitResponse is the backend's envelope for both outcomes. Success carries
// the assigned reference under one of several key names; failure carries a
// human-readable message.
type submitResponse struct {
	ApplicationNo string `json:"applicationNo"`
	Reference     string `json:"reference"`
	ID            string `json:"id"`
	Message       string `json:"message"`
	Error         string `json:"error"`
}

// Submit posts the aggregated record. Rejections with a backend message come
// back as a StandardError so the coordinator can surface the message verbatim;
// transport failures come back as plain errors and get the generic fallback.
func (c *Client) Submit(ctx context.Context, record models.AggregatedRecord) (string, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to encode submission record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admissions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Submission transport failure", map[string]interface{}{
			"error": err.Error(),
		})
		return "", fmt.Errorf("failed to execute submission request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read submission response: %w", err)
	}

	var parsed submitResponse
	_ = json.Unmarshal(respBody, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = parsed.Error
		}
		c.logger.Warn("Submission rejected", map[string]interface{}{
			"status":  resp.StatusCode,
			"message": msg,
		})
		return "", errors.NewSubmissionFailedError(msg, fmt.Errorf("submission rejected (status %d)", resp.StatusCode))
	}

	reference := parsed.ApplicationNo
	if reference == "" {
		reference = parsed.Reference
	}
	if reference == "" {
		reference = parsed.ID
	}
	if reference == "" {
		return "", errors.NewSubmissionFailedError("", fmt.Errorf("submission response carried no reference"))
	}

	c.logger.Info("Submission accepted by backend", map[string]interface{}{
		"reference": reference,
	})
	return reference, nil
}

// SubmitDamaged posts a damaged-application status update.
func (c *Client) SubmitDamaged(ctx context.Context, sub interface{}) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to encode status update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/application-status/update", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute status update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		var parsed submitResponse
		_ = json.Unmarshal(respBody, &parsed)
		msg := parsed.Message
		if msg == "" {
			msg = parsed.Error
		}
		return errors.NewSubmissionFailedError(msg, fmt.Errorf("status update rejected (status %d)", resp.StatusCode))
	}
	return nil
}
