package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Remote executes tools by POSTing to an external executor endpoint.
type Remote struct {
	url        string
	httpClient *http.Client
}

// NewRemote creates a remote executor for the given endpoint.
func NewRemote(url string, timeout time.Duration) *Remote {
	return &Remote{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type remoteRequest struct {
	ToolID string          `json:"tool_id"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Execute sends the tool invocation to the remote endpoint and returns its
// response body as the result.
func (r *Remote) Execute(ctx context.Context, toolID string, params json.RawMessage) (json.RawMessage, error) {
	body, err := json.Marshal(remoteRequest{ToolID: toolID, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call remote executor: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote executor returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if len(respBody) == 0 {
		return json.RawMessage(`{"status":"executed"}`), nil
	}
	return json.RawMessage(respBody), nil
}
