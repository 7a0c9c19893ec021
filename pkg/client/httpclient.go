package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	retryWaitMin       = 200 * time.Millisecond
	retryWaitMax       = 2 * time.Second
	userAgent          = "hotelbook-client/1"
)

// HttpClient sends JSON requests to one base URL. Requests that are safe to
// repeat (GETs, and writes carrying an Idempotency-Key) are retried on
// transport errors and 502/503 responses. Only GETs retry a 504, since a
// timed out write may still be running on the server.
type HttpClient struct {
	BaseURL string
	retry   *retryablehttp.Client
}

func NewHttpClient(baseURL string) *HttpClient {
	retry := retryablehttp.NewClient()
	retry.HTTPClient.Timeout = defaultTimeout
	retry.Logger = nil
	retry.RetryMax = defaultMaxAttempts - 1
	retry.RetryWaitMin = retryWaitMin
	retry.RetryWaitMax = retryWaitMax
	retry.Backoff = linearBackoff
	retry.CheckRetry = checkRetry
	retry.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &HttpClient{BaseURL: baseURL, retry: retry}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

func (c *HttpClient) Get(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, headers)
}

func (c *HttpClient) Post(ctx context.Context, path string, body any, headers map[string]string) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, headers)
}

func (c *HttpClient) Delete(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, headers)
}

// Do encodes body as JSON when non-nil and returns the buffered response.
// Non-2xx statuses are not errors; see GetErrorMessage.
func (c *HttpClient) Do(ctx context.Context, method, path string, body any, headers map[string]string) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var rawBody any
	if payload != nil {
		rawBody = payload
	}
	ctx = context.WithValue(ctx, retryPolicyKey{}, policyFor(method, headers))
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.BaseURL+path, rawBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	httpResp, err := c.retry.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{Response: httpResp, Body: respBody}, nil
}

type retryPolicyKey struct{}

type retryPolicy struct {
	retry        bool
	retryTimeout bool
}

func policyFor(method string, headers map[string]string) retryPolicy {
	if method == http.MethodGet {
		return retryPolicy{retry: true, retryTimeout: true}
	}
	return retryPolicy{retry: headers[headerIdempotencyKey] != ""}
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	policy, _ := ctx.Value(retryPolicyKey{}).(retryPolicy)
	if !policy.retry {
		return false, nil
	}
	if err != nil {
		return true, nil
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return true, nil
	case http.StatusGatewayTimeout:
		return policy.retryTimeout, nil
	}
	return false, nil
}

func linearBackoff(minWait, maxWait time.Duration, attempt int, _ *http.Response) time.Duration {
	return min(minWait*time.Duration(attempt+1), maxWait)
}

// APIError is a non-2xx response decoded from the service's error body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// Err returns an *APIError for 4xx and 5xx responses and nil otherwise.
func (r *Response) Err() error {
	if r.StatusCode < http.StatusBadRequest {
		return nil
	}
	var body errorBody
	_ = r.DecodeJSON(&body)
	return &APIError{StatusCode: r.StatusCode, Code: body.Code, Message: GetErrorMessage(r)}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// GetErrorMessage extracts the error text from an API error body, falling
// back to the status line when the body carries none.
func GetErrorMessage(resp *Response) string {
	var body errorBody
	if len(resp.Body) == 0 || resp.DecodeJSON(&body) != nil {
		return resp.Status
	}
	switch {
	case body.Error != "":
		return body.Error
	case body.Code != "":
		return body.Code
	default:
		return resp.Status
	}
}
