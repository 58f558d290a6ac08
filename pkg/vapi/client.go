// Package vapi wraps the calling vendor API: assistant script updates and
// outbound call placement.
package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.vapi.ai"

// Client defines the calling vendor operations used by escalation.
type Client interface {
	UpdateAssistantPrompt(ctx context.Context, assistantID, systemPrompt string) error
	CreateCall(ctx context.Context, req CallRequest) (*Call, error)
}

// CallRequest describes one outbound call.
type CallRequest struct {
	AssistantID   string   `json:"assistantId"`
	PhoneNumberID string   `json:"phoneNumberId"`
	Customer      Customer `json:"customer"`
}

// Customer is the callee.
type Customer struct {
	Number string `json:"number"`
}

// Call is the vendor's record of a placed call.
type Call struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Monitor struct {
		ListenURL  string `json:"listenUrl"`
		ControlURL string `json:"controlUrl"`
	} `json:"monitor"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a calling vendor client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) do(ctx context.Context, method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "vapi: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "vapi: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "vapi: %s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "vapi: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return eris.Errorf("vapi: %s %s: unexpected status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrapf(err, "vapi: decode %s response", path)
		}
	}
	return nil
}

// UpdateAssistantPrompt replaces the assistant's live system prompt.
func (c *httpClient) UpdateAssistantPrompt(ctx context.Context, assistantID, systemPrompt string) error {
	payload := map[string]any{
		"model": map[string]any{
			"provider":     "openai",
			"model":        "gpt-4o",
			"systemPrompt": systemPrompt,
		},
	}
	return c.do(ctx, http.MethodPatch, "/assistant/"+assistantID, payload, nil)
}

// CreateCall places an outbound call using the configured assistant.
func (c *httpClient) CreateCall(ctx context.Context, req CallRequest) (*Call, error) {
	var call Call
	if err := c.do(ctx, http.MethodPost, "/call", req, &call); err != nil {
		return nil, err
	}
	return &call, nil
}
