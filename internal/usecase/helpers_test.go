package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/iamvkosarev/ai-mail-assistant/config"
	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	in_memory "github.com/iamvkosarev/ai-mail-assistant/internal/storage/in-memory"
	"github.com/stretchr/testify/require"
)

type fakeReply struct {
	MessageID string
	Body      string
}

type fakeMail struct {
	mu        sync.Mutex
	compose   *model.ComposeDetails
	displayed *model.MailMessage
	messages  map[string]model.MailMessage
	thread    []model.MailMessage
	identity  model.Identity
	bodies    map[string]string
	replies   []fakeReply
	replyErr  error
}

func newFakeMail() *fakeMail {
	return &fakeMail{
		messages: make(map[string]model.MailMessage),
		bodies:   make(map[string]string),
	}
}

func (f *fakeMail) ActiveCompose(_ context.Context) (model.ComposeDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.compose == nil {
		return model.ComposeDetails{}, model.ErrNoComposeWindow
	}
	details := *f.compose
	if body, ok := f.bodies[details.Handle]; ok {
		details.Body = body
	}
	return details, nil
}

func (f *fakeMail) DisplayedMessage(_ context.Context) (model.MailMessage, error) {
	if f.displayed == nil {
		return model.MailMessage{}, model.ErrNoMessageDisplayed
	}
	return *f.displayed, nil
}

func (f *fakeMail) GetMessage(_ context.Context, messageID string) (model.MailMessage, error) {
	msg, ok := f.messages[messageID]
	if !ok {
		return model.MailMessage{}, model.ErrMessageNotFound
	}
	return msg, nil
}

func (f *fakeMail) ListThread(_ context.Context, _ string, limit int) ([]model.MailMessage, error) {
	thread := f.thread
	if len(thread) > limit {
		thread = thread[len(thread)-limit:]
	}
	return thread, nil
}

func (f *fakeMail) SetComposeBody(_ context.Context, handle, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[handle] = body
	return nil
}

func (f *fakeMail) BeginReply(_ context.Context, messageID, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replyErr != nil {
		return "", f.replyErr
	}
	f.replies = append(f.replies, fakeReply{MessageID: messageID, Body: body})
	return "reply-" + messageID, nil
}

func (f *fakeMail) DefaultIdentity(_ context.Context) (model.Identity, error) {
	return f.identity, nil
}

func newTestSettings(t *testing.T) *SettingsUsecase {
	t.Helper()
	return NewSettingsUsecase(
		SettingsUsecaseDeps{Storage: in_memory.NewSettingsStorage()},
		config.Defaults{},
	)
}

// chatServer is a fake chat completion endpoint.
type chatServer struct {
	*httptest.Server
	calls    atomic.Int32
	mu       sync.Mutex
	requests []map[string]any
	headers  []http.Header
}

func newChatServer(t *testing.T, status int, response string) *chatServer {
	t.Helper()
	s := &chatServer{}
	s.Server = httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				s.calls.Add(1)
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				var req map[string]any
				_ = json.Unmarshal(body, &req)
				s.mu.Lock()
				s.requests = append(s.requests, req)
				s.headers = append(s.headers, r.Header.Clone())
				s.mu.Unlock()

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_, _ = io.WriteString(w, response)
			},
		),
	)
	t.Cleanup(s.Close)
	return s
}

func (s *chatServer) endpoint() string {
	return s.URL + "/v1/chat/completions"
}

func (s *chatServer) lastRequest(t *testing.T) map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests)
	return s.requests[len(s.requests)-1]
}

const chatResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": "  Monday works for me.\n"}, "finish_reason": "stop"}
  ],
  "usage": {"prompt_tokens": 1000, "completion_tokens": 500, "total_tokens": 1500}
}`

func readyChat(endpoint string) model.ChatSettings {
	return model.ChatSettings{
		APIURL:      endpoint,
		APIKey:      "sk-test",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   300,
	}
}
