package audio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// pipeSource hands out a stream fed by the test through an io.Pipe.
type pipeSource struct {
	mu      sync.Mutex
	writer  *io.PipeWriter
	streams []*pipeStream
	openErr error
}

type pipeStream struct {
	*io.PipeReader
	writer *io.PipeWriter
	closed bool
}

func (p *pipeStream) Stop() error {
	return p.writer.Close()
}

func (p *pipeStream) Close() error {
	p.closed = true
	return p.PipeReader.Close()
}

func (s *pipeSource) Open(ctx context.Context) (Stream, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	reader, writer := io.Pipe()
	stream := &pipeStream{PipeReader: reader, writer: writer}
	s.mu.Lock()
	s.writer = writer
	s.streams = append(s.streams, stream)
	s.mu.Unlock()
	return stream, nil
}

func (s *pipeSource) write(t *testing.T, data []byte) {
	t.Helper()
	s.mu.Lock()
	writer := s.writer
	s.mu.Unlock()
	_, err := writer.Write(data)
	require.NoError(t, err)
}

func TestRecorder_StartStop(t *testing.T) {
	source := &pipeSource{}
	recorder := NewRecorder(source)

	require.NoError(t, recorder.Start(context.Background()))
	assert.True(t, recorder.Active())
	source.write(t, []byte("audio-data"))

	data, err := recorder.Stop()
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-data"), data)
	assert.False(t, recorder.Active())
	require.Len(t, source.streams, 1)
	assert.True(t, source.streams[0].closed)
}

func TestRecorder_EmptyRecording(t *testing.T) {
	source := &pipeSource{}
	recorder := NewRecorder(source)

	require.NoError(t, recorder.Start(context.Background()))
	data, err := recorder.Stop()

	assert.Nil(t, data)
	assert.ErrorIs(t, err, model.ErrEmptyRecording)
	assert.True(t, source.streams[0].closed)
}

func TestRecorder_SecondStartRejected(t *testing.T) {
	source := &pipeSource{}
	recorder := NewRecorder(source)

	require.NoError(t, recorder.Start(context.Background()))
	assert.ErrorIs(t, recorder.Start(context.Background()), model.ErrRecordingActive)
	assert.Len(t, source.streams, 1)

	_, err := recorder.Stop()
	assert.ErrorIs(t, err, model.ErrEmptyRecording)
}

func TestRecorder_StopWithoutStart(t *testing.T) {
	recorder := NewRecorder(&pipeSource{})

	_, err := recorder.Stop()
	assert.ErrorIs(t, err, model.ErrNoActiveRecording)
}

func TestRecorder_OpenFailure(t *testing.T) {
	recorder := NewRecorder(&pipeSource{openErr: errors.New("permission denied")})

	err := recorder.Start(context.Background())
	assert.ErrorIs(t, err, model.ErrMicrophoneAccess)
	assert.False(t, recorder.Active())
}

func TestRecorder_RecordStopsOnCancel(t *testing.T) {
	source := &pipeSource{}
	recorder := NewRecorder(source)
	ctx, cancel := context.WithCancel(context.Background())

	type result struct {
		data []byte
		err  error
	}
	results := make(chan result, 1)
	go func() {
		data, err := recorder.Record(ctx, time.Minute)
		results <- result{data, err}
	}()

	require.Eventually(t, recorder.Active, time.Second, 5*time.Millisecond)
	source.write(t, []byte("hello"))
	cancel()

	res := <-results
	require.NoError(t, res.err)
	assert.Equal(t, []byte("hello"), res.data)
}

func TestRecorder_RecordFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.wav")
	wav := SilentWAV(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, wav, 0o600))

	data, err := NewRecorder(FileSource{Path: path}).Record(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(wav, data))
}

func TestFileSource_Missing(t *testing.T) {
	recorder := NewRecorder(FileSource{Path: filepath.Join(t.TempDir(), "missing.wav")})

	_, err := recorder.Record(context.Background(), time.Second)
	assert.ErrorIs(t, err, model.ErrMicrophoneAccess)
}

func TestCommandSource_Empty(t *testing.T) {
	_, err := CommandSource{}.Open(context.Background())
	assert.Error(t, err)
}

func TestSilentWAV(t *testing.T) {
	wav := SilentWAV(time.Second)

	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Len(t, wav, 44+SampleRate*2)
}
