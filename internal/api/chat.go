package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/concierge/internal/errors"
	"github.com/diogo/concierge/internal/models"
)

// Chat posts the full history and session id to /chat and returns the reply
func (c *Client) Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatReply, error) {
	if req == nil {
		return nil, fmt.Errorf("chat request cannot be nil")
	}
	if c.IsClosed() {
		return nil, fmt.Errorf("client is closed")
	}

	endpoint := c.endpoint(models.EndpointChat)

	payload := *req
	if payload.History == nil {
		payload.History = []models.Message{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create chat request")
	}
	for key, value := range models.JSONHeaders() {
		httpReq.Header.Set(key, value)
	}

	start := time.Now()
	data, status, err := c.do(ctx, httpReq, "send chat", endpoint)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", status).
		Int("history", len(payload.History)).
		Dur("latency", time.Since(start)).
		Msg("chat request completed")

	if !isSuccess(status) {
		return nil, apierrors.NewAPIError(status, endpoint, statusMessage(status, data)).WithBody(string(data))
	}
	if len(data) > maxBodySize {
		pe := apierrors.NewParseError(fmt.Sprintf("response body exceeds %d bytes", maxBodySize), "")
		pe.Endpoint = endpoint
		return nil, pe
	}

	reply, err := parseChatReply(data)
	if err != nil {
		var pe *apierrors.ParseError
		if errors.As(err, &pe) {
			pe.Endpoint = endpoint
		}
		return nil, err
	}
	return reply, nil
}

// parseChatReply extracts the reply from a /chat response body
func parseChatReply(data []byte) (*models.ChatReply, error) {
	if !gjson.ValidBytes(data) {
		return nil, apierrors.NewParseError("response body is not valid JSON", "")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, apierrors.NewParseError("response body is not a JSON object", "")
	}

	response := root.Get(PathResponse)
	if !response.Exists() {
		return nil, apierrors.NewParseError("missing response field", PathResponse)
	}
	if response.Type != gjson.String {
		return nil, apierrors.NewParseError("response field is not a string", PathResponse)
	}

	reply := &models.ChatReply{Response: response.String()}
	if agent := root.Get(PathAgentType); agent.Type == gjson.String {
		reply.AgentType = agent.String()
	}
	return reply, nil
}

// do executes req and reads at most maxBodySize+1 bytes of the body, so
// callers can tell an oversized body from one that fits exactly.
// Failures before a status line is available are transport errors.
func (c *Client) do(ctx context.Context, req *http.Request, operation, endpoint string) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, 0, apierrors.NewTransportError(operation, endpoint, err)
	}
	defer func() {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.Body == nil {
		return nil, resp.StatusCode, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, resp.StatusCode, apierrors.NewTransportError(operation+" (read body)", endpoint, err)
	}
	return data, resp.StatusCode, nil
}

// isSuccess reports whether status is 2xx
func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// statusMessage builds the APIError message, preferring a "detail" field from the body
func statusMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		if detail := gjson.GetBytes(body, PathDetail); detail.Type == gjson.String && detail.String() != "" {
			return detail.String()
		}
	}
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("unexpected status: %s", text)
	}
	return fmt.Sprintf("unexpected status %d", status)
}
