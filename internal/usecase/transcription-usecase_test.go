package usecase

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/iamvkosarev/ai-mail-assistant/config"
	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sttRequest struct {
	model    string
	language string
	fileName string
	audio    []byte
	auth     string
}

type sttServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []sttRequest
}

func newSTTServer(t *testing.T, status int, response string) *sttServer {
	t.Helper()
	s := &sttServer{}
	s.Server = httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
				if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
					return
				}
				file, header, err := r.FormFile("file")
				if !assert.NoError(t, err) {
					return
				}
				audio, _ := io.ReadAll(file)

				s.mu.Lock()
				s.requests = append(
					s.requests, sttRequest{
						model:    r.FormValue("model"),
						language: r.FormValue("language"),
						fileName: header.Filename,
						audio:    audio,
						auth:     r.Header.Get("Authorization"),
					},
				)
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

func (s *sttServer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func readySTT(server *sttServer) model.SttSettings {
	return model.SttSettings{
		APIURL:   server.URL + "/v1/audio/transcriptions",
		APIKey:   "sk-stt",
		Model:    "whisper-1",
		Language: "de",
	}
}

type fakeRecorder struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeRecorder) Record(_ context.Context, _ time.Duration) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

func newTestTranscription(t *testing.T, recorder Recorder) (*TranscriptionUsecase, *SettingsUsecase) {
	t.Helper()
	settings := newTestSettings(t)
	return NewTranscriptionUsecase(
		TranscriptionUsecaseDeps{Recorder: recorder, Settings: settings},
		config.Recording{MaxDuration: time.Second},
		config.HTTP{},
	), settings
}

func TestTranscriptionUsecase_Transcribe(t *testing.T) {
	server := newSTTServer(t, http.StatusOK, `{"text":"  Please confirm Monday.  "}`)
	transcription, _ := newTestTranscription(t, &fakeRecorder{})

	text, err := transcription.Transcribe(context.Background(), []byte("RIFF-audio"), readySTT(server))
	require.NoError(t, err)
	assert.Equal(t, "Please confirm Monday.", text)

	require.Equal(t, 1, server.count())
	req := server.requests[0]
	assert.Equal(t, "whisper-1", req.model)
	assert.Equal(t, "de", req.language)
	assert.Equal(t, "recording.wav", req.fileName)
	assert.Equal(t, []byte("RIFF-audio"), req.audio)
	assert.Equal(t, "Bearer sk-stt", req.auth)
}

func TestTranscriptionUsecase_EmptyTranscript(t *testing.T) {
	server := newSTTServer(t, http.StatusOK, `{"text":"   "}`)
	transcription, _ := newTestTranscription(t, &fakeRecorder{})

	_, err := transcription.Transcribe(context.Background(), []byte("audio"), readySTT(server))
	assert.ErrorIs(t, err, model.ErrEmptyTranscript)
}

func TestTranscriptionUsecase_EmptyAudioMakesNoCall(t *testing.T) {
	server := newSTTServer(t, http.StatusOK, `{"text":"x"}`)
	transcription, _ := newTestTranscription(t, &fakeRecorder{})

	_, err := transcription.Transcribe(context.Background(), nil, readySTT(server))
	assert.ErrorIs(t, err, model.ErrEmptyRecording)
	assert.Zero(t, server.count())
}

func TestTranscriptionUsecase_MissingSettingsMakeNoCall(t *testing.T) {
	server := newSTTServer(t, http.StatusOK, `{"text":"x"}`)
	transcription, _ := newTestTranscription(t, &fakeRecorder{})
	stt := readySTT(server)
	stt.APIKey = ""

	_, err := transcription.Transcribe(context.Background(), []byte("audio"), stt)
	assert.ErrorIs(t, err, model.ErrSttSettingsMissing)
	assert.Zero(t, server.count())
}

func TestTranscriptionUsecase_APIError(t *testing.T) {
	server := newSTTServer(t, http.StatusBadRequest, `{"error":{"message":"Invalid file format."}}`)
	transcription, _ := newTestTranscription(t, &fakeRecorder{})

	_, err := transcription.Transcribe(context.Background(), []byte("audio"), readySTT(server))

	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, `{"error":{"message":"Invalid file format."}}`, apiErr.Body)
	assert.Equal(t, model.ServiceSTT, apiErr.Service)
}

func TestTranscriptionUsecase_Dictate(t *testing.T) {
	ctx := context.Background()
	server := newSTTServer(t, http.StatusOK, `{"text":"Say yes politely."}`)
	recorder := &fakeRecorder{data: []byte("audio")}
	transcription, settings := newTestTranscription(t, recorder)
	require.NoError(t, settings.SetSTT(ctx, readySTT(server)))

	text, err := transcription.Dictate(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Say yes politely.", text)

	lastPrompt, err := settings.LastPrompt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Say yes politely.", lastPrompt)
}

func TestTranscriptionUsecase_DictateEmptyRecording(t *testing.T) {
	ctx := context.Background()
	server := newSTTServer(t, http.StatusOK, `{"text":"x"}`)
	transcription, settings := newTestTranscription(t, &fakeRecorder{err: model.ErrEmptyRecording})
	require.NoError(t, settings.SetSTT(ctx, readySTT(server)))

	_, err := transcription.Dictate(ctx, 0)
	assert.ErrorIs(t, err, model.ErrEmptyRecording)
	assert.Zero(t, server.count())
}

func TestTranscriptionUsecase_DictateWithoutSettings(t *testing.T) {
	recorder := &fakeRecorder{data: []byte("audio")}
	transcription, _ := newTestTranscription(t, recorder)

	_, err := transcription.Dictate(context.Background(), 0)
	assert.ErrorIs(t, err, model.ErrSttSettingsMissing)
	assert.Zero(t, recorder.calls)
}

func TestTranscriptionUsecase_TestAPIUsesSilence(t *testing.T) {
	server := newSTTServer(t, http.StatusOK, `{"text":""}`)
	transcription, _ := newTestTranscription(t, &fakeRecorder{})

	_, err := transcription.TestAPI(context.Background(), readySTT(server), nil)
	assert.ErrorIs(t, err, model.ErrEmptyTranscript)
	require.Equal(t, 1, server.count())
	assert.Equal(t, "RIFF", string(server.requests[0].audio[:4]))
}
