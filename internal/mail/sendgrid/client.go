package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const apiURL = "https://api.sendgrid.com/v3/mail/send"

type Config struct {
	APIKey      string
	SenderName  string
	SenderEmail string
}

type Client struct {
	config     *Config
	httpClient *http.Client
}

type address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type personalization struct {
	To []address `json:"to"`
}

type contentPart struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []contentPart     `json:"content"`
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
	// SendGrid requires text/plain before text/html in the content list.
	content := []contentPart{}
	if params.TextContent != "" {
		content = append(content, contentPart{Type: "text/plain", Value: params.TextContent})
	}
	content = append(content, contentPart{Type: "text/html", Value: params.HTMLContent})

	payload := sendRequest{
		Personalizations: []personalization{
			{To: []address{{Name: params.ToName, Email: params.ToEmail}}},
		},
		From: address{
			Name:  c.config.SenderName,
			Email: c.config.SenderEmail,
		},
		Subject: params.Subject,
		Content: content,
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
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("sendgrid API error (status %d): %s", resp.StatusCode, string(errBody))
	}

	return resp.Header.Get("X-Message-Id"), nil
}
