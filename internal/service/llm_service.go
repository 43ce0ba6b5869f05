package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"edubot/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

const (
	ProviderOpenAI   = "openai"
	ProviderGigaChat = "gigachat"

	completionTemperature = 0.7
)

var (
	ErrEndpointNotConfigured = errors.New("completion endpoint not configured")
	errTransport             = errors.New("connection to completion endpoint failed")
)

// ChatModel sends one system+user exchange to a chat-completion backend and
// returns the assistant's text.
type ChatModel interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// NewChatModel builds the provider selected in cfg. A provider that cannot be
// initialised yields a model that fails every call, so the service keeps
// answering from the local knowledge base.
func NewChatModel(cfg *config.CompletionConfig, logger *zap.Logger) ChatModel {
	switch cfg.Provider {
	case ProviderGigaChat:
		model, err := NewGigaChatClient(cfg, logger)
		if err != nil {
			logger.Error("Failed to initialize GigaChat client", zap.Error(err))
			return unavailableModel{err: err}
		}
		return model
	case ProviderOpenAI, "":
		if cfg.URL == "" {
			logger.Warn("Completion endpoint is not configured, remote answers are disabled")
		}
		return NewOpenAIClient(cfg, nil)
	default:
		logger.Error("Unknown completion provider", zap.String("provider", cfg.Provider))
		return unavailableModel{err: fmt.Errorf("unknown completion provider %q", cfg.Provider)}
	}
}

// OpenAIClient calls an OpenAI-compatible chat completion endpoint with
// bearer authentication.
type OpenAIClient struct {
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient uses http.DefaultClient when httpClient is nil.
func NewOpenAIClient(cfg *config.CompletionConfig, httpClient *http.Client) *OpenAIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAIClient{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: httpClient,
	}
}

func (c *OpenAIClient) Chat(ctx context.Context, system, user string) (string, error) {
	if c.url == "" {
		return "", ErrEndpointNotConfigured
	}

	jsonData, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: completionTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", withoutEndpoint(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completion request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	content := strings.TrimSpace(payload.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty completion content")
	}
	return content, nil
}

// GigaChatClient answers through the GigaChat SDK.
type GigaChatClient struct {
	client    *gigago.Client
	modelName string
}

// NewGigaChatClient fetches an access token up front, so it fails when the
// credential is rejected.
func NewGigaChatClient(cfg *config.CompletionConfig, logger *zap.Logger) (*GigaChatClient, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.URL != "" {
		opts = append(opts, gigago.WithCustomURLAI(cfg.URL))
	}
	if cfg.AuthURL != "" {
		opts = append(opts, gigago.WithCustomURLOauth(cfg.AuthURL))
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(context.Background(), cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	logger.Info("Using GigaChat model", zap.String("model", cfg.Model))
	return &GigaChatClient{client: client, modelName: cfg.Model}, nil
}

func (c *GigaChatClient) Chat(ctx context.Context, system, user string) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SystemInstruction = system
	model.Temperature = completionTemperature

	resp, err := model.Generate(ctx, []gigago.Message{
		{Role: gigago.RoleUser, Content: user},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", withoutEndpoint(err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from GigaChat")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty GigaChat content")
	}
	return content, nil
}

func (c *GigaChatClient) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

// withoutEndpoint replaces a net/http transport error, whose text carries the
// endpoint URL and dialed address, with its kind. Endpoints must stay out of
// logs.
func withoutEndpoint(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s request: %w", urlErr.Op, context.Canceled)
	case errors.Is(err, context.DeadlineExceeded), urlErr.Timeout():
		return fmt.Errorf("%s request: %w", urlErr.Op, context.DeadlineExceeded)
	default:
		return fmt.Errorf("%s request: %w", urlErr.Op, errTransport)
	}
}

type unavailableModel struct {
	err error
}

func (m unavailableModel) Chat(context.Context, string, string) (string, error) {
	return "", m.err
}
