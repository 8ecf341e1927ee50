// Package ollama talks to a locally hosted model behind an Ollama server.
// Unlike the cloud vendors, /api/generate streams line-delimited JSON chunks
// that are concatenated into the full reply.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"clinex/internal/config"
	"clinex/internal/llm"
	"clinex/internal/port"
)

const defaultBaseURL = "http://localhost:11434"

func init() {
	llm.Register("ollama", func(cfg *config.ProviderConfig) (port.ModelClient, error) {
		return NewClient(cfg), nil
	})
}

// Client implements port.ModelClient against an Ollama server.
type Client struct {
	model         string
	endpoint      string
	contextLength int
	client        *http.Client
}

// NewClient creates a local-model client from a provider config.
func NewClient(cfg *config.ProviderConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return NewClientWithEndpoint(cfg, base+"/api/generate")
}

// NewClientWithEndpoint creates a client pointing at a custom endpoint (for testing).
func NewClientWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		// Local models on large contexts are slow; give them longer than cloud APIs.
		timeout = 10 * time.Minute
	}
	return &Client{
		model:         cfg.DefaultModel,
		endpoint:      endpoint,
		contextLength: cfg.ContextLength,
		client:        &http.Client{Timeout: timeout},
	}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	options := map[string]interface{}{
		"temperature": 0,
	}
	if c.contextLength > 0 {
		options["num_ctx"] = c.contextLength
	}
	reqBody := map[string]interface{}{
		"model":   c.model,
		"prompt":  prompt,
		"options": options,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", llm.ClassifyTransportError("ollama", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return "", llm.StatusError("ollama", resp.StatusCode, buf.Bytes())
	}

	return readStream(resp.Body)
}

// chunk models one line of the streamed generate response.
type chunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func readStream(body io.Reader) (string, error) {
	var full bytes.Buffer
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var ch chunk
		if err := json.Unmarshal(line, &ch); err != nil {
			// Skip malformed keep-alive lines, as the stream sometimes interleaves them.
			continue
		}
		full.WriteString(ch.Response)
		if ch.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stream: %w", err)
	}
	return full.String(), nil
}
