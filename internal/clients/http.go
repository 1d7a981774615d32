package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/dexboard/internal/domain"
)

const (
	defaultTimeout  = 30 * time.Second
	maxErrorBodyLen = 512
)

// APIError non-2xx answer of a remote service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote returned status %d: %s", e.StatusCode, e.Message)
}

// IsClientError reports whether err is a 4xx answer.
func IsClientError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

type restClient struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
}

func newRestClient(baseURL string, timeout time.Duration, headers map[string]string) restClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return restClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		headers:    headers,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// send performs the request and returns status and body. Transport failures are reported as ErrServiceUnavailable.
func (c restClient) send(ctx context.Context, method, path string, query url.Values, body any) (int, []byte, error) {
	if c.baseURL == "" {
		return 0, nil, errors.Wrap(domain.ErrServiceUnavailable, "base URL is not configured")
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, errors.Wrap(err, "failed to marshal request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.Wrapf(domain.ErrServiceUnavailable, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.Wrapf(domain.ErrServiceUnavailable, "read response body: %v", err)
	}

	return resp.StatusCode, payload, nil
}

// doJSON performs the request and decodes a 2xx body into out.
func (c restClient) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	status, payload, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return &APIError{StatusCode: status, Message: errorMessage(payload)}
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrap(err, "failed to unmarshal response")
	}
	return nil
}

// errorMessage extracts a readable message from an error body.
func errorMessage(payload []byte) string {
	var body struct {
		Message     string `json:"message"`
		Description string `json:"description"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		switch {
		case body.Description != "":
			return body.Description
		case body.Message != "":
			return body.Message
		case body.Error != "":
			return body.Error
		}
	}

	msg := strings.TrimSpace(string(payload))
	if len(msg) > maxErrorBodyLen {
		msg = msg[:maxErrorBodyLen]
	}
	return msg
}
