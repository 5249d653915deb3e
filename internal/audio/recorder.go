package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/sourcegraph/conc"
)

const defaultDrainTimeout = 2 * time.Second

// Stream is an open audio input.
type Stream interface {
	io.Reader
	// Stop asks the input to finish; Read then runs into io.EOF.
	Stop() error
	// Close releases the input device. It is called exactly once per stream.
	Close() error
}

type Source interface {
	Open(ctx context.Context) (Stream, error)
}

type recording struct {
	stream Stream
	buf    bytes.Buffer
	copyWg conc.WaitGroup
	done   chan struct{}
	err    error
}

// Recorder captures one recording at a time from its source.
type Recorder struct {
	source       Source
	drainTimeout time.Duration

	mu     sync.Mutex
	active *recording
}

func NewRecorder(source Source) *Recorder {
	return &Recorder{
		source:       source,
		drainTimeout: defaultDrainTimeout,
	}
}

// Start opens the source and captures in the background until Stop. A second Start while
// recording fails with model.ErrRecordingActive.
func (r *Recorder) Start(ctx context.Context) error {
	_, err := r.start(ctx)
	return err
}

func (r *Recorder) start(ctx context.Context) (*recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return nil, model.ErrRecordingActive
	}

	stream, err := r.source.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMicrophoneAccess, err)
	}
	rec := &recording{
		stream: stream,
		done:   make(chan struct{}),
	}
	rec.copyWg.Go(
		func() {
			defer close(rec.done)
			_, rec.err = io.Copy(&rec.buf, stream)
		},
	)
	r.active = rec
	return rec, nil
}

func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Stop ends the recording and returns the captured audio. The stream is closed on every path.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	rec := r.active
	r.active = nil
	r.mu.Unlock()
	if rec == nil {
		return nil, model.ErrNoActiveRecording
	}

	// A failing Stop means the input has already ended.
	_ = rec.stream.Stop()
	select {
	case <-rec.done:
	case <-time.After(r.drainTimeout):
	}
	closeErr := rec.stream.Close()
	if recovered := rec.copyWg.WaitAndRecover(); recovered != nil {
		return nil, fmt.Errorf("audio capture panicked: %w", recovered.AsError())
	}

	if rec.buf.Len() == 0 {
		if cause := errors.Join(rec.err, closeErr); cause != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrEmptyRecording, cause)
		}
		return nil, model.ErrEmptyRecording
	}
	return rec.buf.Bytes(), nil
}

// Record captures until maxDuration passes, ctx is done or the source runs dry, whichever comes
// first. Cancelling ctx is the manual stop and still returns what was captured.
func (r *Recorder) Record(ctx context.Context, maxDuration time.Duration) ([]byte, error) {
	rec, err := r.start(ctx)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(maxDuration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	case <-rec.done:
	}
	return r.Stop()
}
