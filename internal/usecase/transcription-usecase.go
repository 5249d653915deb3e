package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iamvkosarev/ai-mail-assistant/config"
	"github.com/iamvkosarev/ai-mail-assistant/internal/audio"
	"github.com/iamvkosarev/ai-mail-assistant/internal/logger"
	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	openai_tools "github.com/iamvkosarev/ai-mail-assistant/pkg/openai-tools"

	"github.com/sashabaranov/go-openai"
)

const (
	recordingFileName = "recording.wav"
	testSampleLength  = time.Second
)

type Recorder interface {
	Record(ctx context.Context, maxDuration time.Duration) ([]byte, error)
}

type TranscriptionUsecaseDeps struct {
	Recorder Recorder
	Settings *SettingsUsecase
	Logger   *logger.Logger
}

type TranscriptionUsecase struct {
	TranscriptionUsecaseDeps
	cfg     config.Recording
	httpCfg config.HTTP
	busy    sync.Mutex
}

func NewTranscriptionUsecase(
	deps TranscriptionUsecaseDeps,
	cfg config.Recording,
	httpCfg config.HTTP,
) *TranscriptionUsecase {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	return &TranscriptionUsecase{
		TranscriptionUsecaseDeps: deps,
		cfg:                      cfg,
		httpCfg:                  httpCfg,
	}
}

// Transcribe uploads recorded audio and returns the recognized text.
func (t *TranscriptionUsecase) Transcribe(ctx context.Context, recorded []byte, stt model.SttSettings) (
	string,
	error,
) {
	if !stt.Ready() {
		return "", model.ErrSttSettingsMissing
	}
	if len(recorded) == 0 {
		return "", model.ErrEmptyRecording
	}

	log := t.Logger.WithContext(ctx)
	client, recorder := openai_tools.NewClient(stt.APIURL, stt.APIKey, openai_tools.TranscriptionsSuffix, t.httpCfg.Timeout)
	req := openai.AudioRequest{
		Model:    stt.Model,
		FilePath: recordingFileName,
		Reader:   bytes.NewReader(recorded),
		Language: stt.Language,
	}

	log.Info("starting transcription", "model", stt.Model, "audio_bytes", len(recorded))
	resp, err := client.CreateTranscription(ctx, req)
	if err != nil {
		err = apiError(model.ServiceSTT, recorder, err)
		t.Logger.LogError(ctx, err, "transcription failed")
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", model.ErrEmptyTranscript
	}
	log.Info("transcription finished", "text_length", len(text))
	return text, nil
}

// Dictate records instructions, transcribes them and keeps them as the last prompt. maxDuration
// of zero uses the configured limit; cancelling ctx ends the recording early.
func (t *TranscriptionUsecase) Dictate(ctx context.Context, maxDuration time.Duration) (string, error) {
	if !t.busy.TryLock() {
		return "", model.ErrActionInProgress
	}
	defer t.busy.Unlock()

	stt, err := t.Settings.STT(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get stt settings: %w", err)
	}
	if !stt.Ready() {
		return "", model.ErrSttSettingsMissing
	}
	if maxDuration <= 0 {
		maxDuration = t.cfg.MaxDuration
	}

	recorded, err := t.Recorder.Record(ctx, maxDuration)
	if err != nil {
		return "", err
	}
	// Cancelling ctx is how the recording ends; the upload and save must outlive it.
	ctx = context.WithoutCancel(ctx)
	text, err := t.Transcribe(ctx, recorded, stt)
	if err != nil {
		return "", err
	}
	if err = t.Settings.SaveLastPrompt(ctx, text); err != nil {
		return "", fmt.Errorf("failed to save last prompt: %w", err)
	}
	return text, nil
}

// TestAPI transcribes sample, or a second of silence when sample is empty. Silence may come back
// as model.ErrEmptyTranscript, which still proves the endpoint accepted the request.
func (t *TranscriptionUsecase) TestAPI(ctx context.Context, stt model.SttSettings, sample []byte) (string, error) {
	if len(sample) == 0 {
		sample = audio.SilentWAV(testSampleLength)
	}
	return t.Transcribe(ctx, sample, stt)
}
