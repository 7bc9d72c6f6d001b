// Package form drives the hosted lunch registration form. The form is an
// external capability: one Submit call walks its full step sequence (open a
// session, enter the attendee email, confirm, pick the meal) and reports a
// single success or failure.
package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"lunchbuddy-backend/config"
	"lunchbuddy-backend/internal/model"
)

// Submitter completes the lunch form for one attendee.
type Submitter interface {
	Submit(ctx context.Context, email string, pref model.DietaryPreference) error
}

// Client is the HTTP implementation of Submitter.
type Client struct {
	cfg    *config.FormConfig
	client *http.Client
}

// NewClient creates a form client from configuration.
func NewClient(cfg *config.FormConfig) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// stepRequest is one interaction against the form endpoint.
type stepRequest struct {
	Action  string `json:"action"`
	Session string `json:"session,omitempty"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
}

// stepResponse models the form endpoint's reply.
type stepResponse struct {
	Code    int    `json:"code"`
	Session string `json:"session"`
	Message string `json:"message"`
}

// Submit walks the form's step sequence for the given attendee.
func (c *Client) Submit(ctx context.Context, email string, pref model.DietaryPreference) error {
	start, err := c.doStep(ctx, stepRequest{Action: "start"})
	if err != nil {
		return fmt.Errorf("form start failed: %w", err)
	}
	session := start.Session
	log.Printf("Form session opened for %s", email)

	if _, err := c.doStep(ctx, stepRequest{Action: "input", Session: session, Field: "email", Value: email}); err != nil {
		return fmt.Errorf("form email step failed: %w", err)
	}

	if _, err := c.doStep(ctx, stepRequest{Action: "select", Session: session, Value: "yes"}); err != nil {
		return fmt.Errorf("form confirmation step failed: %w", err)
	}

	if _, err := c.doStep(ctx, stepRequest{Action: "select", Session: session, Value: string(pref)}); err != nil {
		return fmt.Errorf("form preference step failed: %w", err)
	}

	log.Printf("Form submitted for %s (%s)", email, pref)
	return nil
}

// doStep performs a single interaction against the form endpoint.
func (c *Client) doStep(ctx context.Context, step stepRequest) (*stepResponse, error) {
	jsonBody, err := json.Marshal(step)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal step payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	for key, value := range c.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var stepResp stepResponse
	if err := json.Unmarshal(body, &stepResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form response: %w", err)
	}

	if stepResp.Code != 0 {
		return nil, fmt.Errorf("form returned non-zero application code %d: %s", stepResp.Code, stepResp.Message)
	}

	return &stepResp, nil
}
