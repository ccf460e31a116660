package brevo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const apiURL = "https://api.brevo.com/v3/smtp/email"

type Config struct {
	APIKey      string
	SenderName  string
	SenderEmail string
}

type Client struct {
	config     *Config
	httpClient *http.Client
}

type contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      contact   `json:"sender"`
	To          []contact `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
	TextContent string    `json:"textContent,omitempty"`
}

type sendResponse struct {
	MessageID string `json:"messageId"`
}

type SendParams struct {
	ToName      string
	ToEmail     string
	Subject     string
	HTMLContent string
	TextContent string
}

func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SendEmail posts a transactional email and returns the provider message id.
func (c *Client) SendEmail(ctx context.Context, params SendParams) (string, error) {
	payload := sendRequest{
		Sender: contact{
			Name:  c.config.SenderName,
			Email: c.config.SenderEmail,
		},
		To:          []contact{{Name: params.ToName, Email: params.ToEmail}},
		Subject:     params.Subject,
		HTMLContent: params.HTMLContent,
		TextContent: params.TextContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("brevo API error (status %d): %s", resp.StatusCode, string(errBody))
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// Delivery succeeded; the message id is best effort.
		return "", nil
	}

	return result.MessageID, nil
}
