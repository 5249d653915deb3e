package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// CommandSource records by running an external recorder that writes audio to stdout, such as
// arecord or sox.
type CommandSource struct {
	Command []string
}

func (s CommandSource) Open(ctx context.Context) (Stream, error) {
	if len(s.Command) == 0 {
		return nil, errors.New("recording command is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Not bound to ctx: a cancelled ctx is the user's stop and must let the recorder flush.
	cmd := exec.Command(s.Command[0], s.Command[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open recorder output: %w", err)
	}
	stream := &commandStream{cmd: cmd, stdout: stdout}
	cmd.Stderr = &stream.stderr
	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", strings.Join(s.Command, " "), err)
	}
	return stream, nil
}

type commandStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer

	closeOnce sync.Once
	closeErr  error
}

func (c *commandStream) Read(p []byte) (int, error) {
	return c.stdout.Read(p)
}

func (c *commandStream) Stop() error {
	err := c.cmd.Process.Signal(os.Interrupt)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (c *commandStream) Close() error {
	c.closeOnce.Do(
		func() {
			if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				c.closeErr = err
			}
			// The exit status of an interrupted recorder is meaningless here.
			_ = c.cmd.Wait()
		},
	)
	return c.closeErr
}

// FileSource replays a recorded audio file.
type FileSource struct {
	Path string
}

func (s FileSource) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	return &fileStream{File: f}, nil
}

type fileStream struct {
	*os.File
}

func (f *fileStream) Stop() error {
	return nil
}
