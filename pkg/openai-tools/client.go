package openai_tools

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	ChatCompletionsSuffix = "/chat/completions"
	TranscriptionsSuffix  = "/audio/transcriptions"
)

// BaseURL turns a full endpoint URL into the base URL go-openai appends suffix to. URLs without the
// suffix are taken as base URLs already.
func BaseURL(endpointURL, suffix string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(endpointURL), "/")
	return strings.TrimSuffix(trimmed, suffix)
}

// ResponseRecorder keeps the status and raw body of the last failed response so callers can
// report them verbatim; go-openai only exposes the decoded error message.
type ResponseRecorder struct {
	base http.RoundTripper

	mu     sync.Mutex
	status int
	body   []byte
}

func NewResponseRecorder(base http.RoundTripper) *ResponseRecorder {
	if base == nil {
		base = http.DefaultTransport
	}
	return &ResponseRecorder{base: base}
}

func (r *ResponseRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return resp, nil
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.status = resp.StatusCode
	r.body = body
	r.mu.Unlock()

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// Failure returns the last failed status code and body; ok is false when every response succeeded.
func (r *ResponseRecorder) Failure() (status int, body string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == 0 {
		return 0, "", false
	}
	return r.status, string(r.body), true
}

// NewClient builds a go-openai client for one call against endpointURL.
func NewClient(endpointURL, apiKey, suffix string, timeout time.Duration) (*openai.Client, *ResponseRecorder) {
	recorder := NewResponseRecorder(nil)
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = BaseURL(endpointURL, suffix)
	clientConfig.HTTPClient = &http.Client{
		Transport: recorder,
		Timeout:   timeout,
	}
	return openai.NewClientWithConfig(clientConfig), recorder
}
