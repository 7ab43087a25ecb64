package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
)

const (
	defaultBaseURL = "https://fcm.googleapis.com"
	sendPath       = "/fcm/send"

	// MaxTokensPerBatch is the transport's hard cap per send call.
	MaxTokensPerBatch = 500

	responseBodyReadLimit int64 = 1 << 20
)

var errServerKeyRequired = errors.New("fcm server key is required")

// Client wraps the push delivery transport. Delivery is best effort;
// per-token failures are reported, not retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	serverKey  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured delivery base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the push client given a server key.
func NewClient(serverKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(serverKey)
	if trimmedKey == "" {
		return nil, errServerKeyRequired
	}

	client := &Client{
		serverKey:  trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// Message is the delivery payload shared by single and batch sends.
type Message struct {
	Title       string
	Body        string
	Data        map[string]string
	ClickAction string
}

type notificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type sendRequest struct {
	Notification notificationPayload `json:"notification"`
	Data         map[string]string   `json:"data"`
	Token        string              `json:"token,omitempty"`
	Tokens       []string            `json:"tokens,omitempty"`
}

type sendResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id,omitempty"`
		Error     string `json:"error,omitempty"`
	} `json:"results"`
}

// TokenResult reports the delivery outcome for a single device token.
type TokenResult struct {
	Token     string
	MessageID string
	Error     string
}

// BatchResult aggregates outcomes across every token in a batch send.
type BatchResult struct {
	SuccessCount int
	FailureCount int
	Results      []TokenResult
}

// SendToToken delivers one message to one device.
func (c *Client) SendToToken(ctx context.Context, token string, msg Message) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "device token required")
	}

	resp, err := c.send(ctx, sendRequest{
		Notification: notificationPayload{Title: msg.Title, Body: msg.Body},
		Data:         buildData(msg),
		Token:        token,
	})
	if err != nil {
		return err
	}
	if resp.Failure > 0 {
		detail := "delivery rejected"
		if len(resp.Results) > 0 && resp.Results[0].Error != "" {
			detail = resp.Results[0].Error
		}
		return pkgerrors.New(pkgerrors.CodeDependency, detail)
	}
	return nil
}

// SendToTokens delivers one message to many devices, chunking requests at
// the transport's batch cap. Per-token failures do not abort the batch.
func (c *Client) SendToTokens(ctx context.Context, tokens []string, msg Message) (*BatchResult, error) {
	cleaned := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return &BatchResult{}, nil
	}

	result := &BatchResult{Results: make([]TokenResult, 0, len(cleaned))}
	for start := 0; start < len(cleaned); start += MaxTokensPerBatch {
		end := start + MaxTokensPerBatch
		if end > len(cleaned) {
			end = len(cleaned)
		}
		chunk := cleaned[start:end]

		resp, err := c.send(ctx, sendRequest{
			Notification: notificationPayload{Title: msg.Title, Body: msg.Body},
			Data:         buildData(msg),
			Tokens:       chunk,
		})
		if err != nil {
			return nil, err
		}

		result.SuccessCount += resp.Success
		result.FailureCount += resp.Failure
		for i, token := range chunk {
			entry := TokenResult{Token: token}
			if i < len(resp.Results) {
				entry.MessageID = resp.Results[i].MessageID
				entry.Error = resp.Results[i].Error
			}
			result.Results = append(result.Results, entry)
		}
	}
	return result, nil
}

func (c *Client) send(ctx context.Context, payload sendRequest) (*sendResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode push payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build push request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "push transport unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read push response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("push transport status %d", resp.StatusCode)).
			WithDetails(map[string]any{"body": string(raw)})
	}

	decoded := &sendResponse{}
	if err := json.Unmarshal(raw, decoded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode push response")
	}
	return decoded, nil
}

func buildData(msg Message) map[string]string {
	data := make(map[string]string, len(msg.Data)+2)
	for k, v := range msg.Data {
		data[k] = v
	}
	// clickAction and timestamp are standing members of the payload,
	// present even when no action is set.
	data["clickAction"] = msg.ClickAction
	data["timestamp"] = strconv.FormatInt(time.Now().Unix(), 10)
	return data
}
