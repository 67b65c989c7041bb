package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// Local model inference can be slow; the completion timeout is the
	// only bound on an in-flight call.
	generateTimeout = 120 * time.Second
	probeTimeout    = 5 * time.Second
)

// GenerateRequest is one completion call to the inference endpoint.
type GenerateRequest struct {
	SystemPrompt string
	Prompt       string
	ImageBase64  string
	Temperature  float64
	MaxTokens    int
}

// GenerateResult carries the generated text and the measured round-trip
// latency.
type GenerateResult struct {
	Text    string
	Latency time.Duration
}

// CompletionGateway adapts the external inference service. A failed call
// surfaces immediately; callers decide whether to abort or degrade. Ping is
// advisory only: the real call can still fail after a successful probe.
type CompletionGateway interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	Ping(ctx context.Context) bool
}

type ollamaClient struct {
	host        string
	model       string
	httpClient  *http.Client
	probeClient *http.Client
}

func NewOllamaClient(host, model string) CompletionGateway {
	return &ollamaClient{
		host:  host,
		model: model,
		httpClient: &http.Client{
			Timeout: generateTimeout,
		},
		probeClient: &http.Client{
			Timeout: probeTimeout,
		},
	}
}

type generatePayload struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
	Images  []string        `json:"images,omitempty"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

func (c *ollamaClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	fullPrompt := req.Prompt
	if req.SystemPrompt != "" {
		fullPrompt = fmt.Sprintf("%s\n\nUsuario: %s", req.SystemPrompt, req.Prompt)
	}

	payload := generatePayload{
		Model:  c.model,
		Prompt: fullPrompt,
		Stream: false,
		Options: generateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}
	if req.ImageBase64 != "" {
		payload.Images = []string{req.ImageBase64}
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.host+"/api/generate", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("inference endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("inference API error: %s - %s", resp.Status, string(body))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("malformed inference response: %w", err)
	}
	if result.Response == nil {
		return nil, fmt.Errorf("no response field in inference result")
	}

	return &GenerateResult{Text: *result.Response, Latency: latency}, nil
}

// Ping probes /api/tags to gate AI affordances before a real call.
func (c *ollamaClient) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", c.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
