package model

import (
	"errors"
	"fmt"
)

var (
	ErrChatSettingsMissing   = errors.New("chat api url, api key and model must be set")
	ErrSttSettingsMissing    = errors.New("stt api url, api key and model must be set")
	ErrNoMessageOpen         = errors.New("no message or reply draft open")
	ErrNoComposeWindow       = errors.New("no compose window open")
	ErrNoMessageDisplayed    = errors.New("no message displayed")
	ErrMessageNotFound       = errors.New("message not found")
	ErrMicrophoneAccess      = errors.New("microphone access denied")
	ErrNoActiveRecording     = errors.New("no active recording")
	ErrRecordingActive       = errors.New("recording already in progress")
	ErrEmptyRecording        = errors.New("empty recording")
	ErrEmptyTranscript       = errors.New("empty transcript")
	ErrEmptyCompletion       = errors.New("empty completion response")
	ErrActionInProgress      = errors.New("another action is in progress")
	ErrNoInstructions        = errors.New("no instructions provided")
	ErrSettingNotFound       = errors.New("setting not found")
	ErrUnknownNamespace      = errors.New("unknown settings namespace")
	ErrSystemPromptNotFound  = errors.New("system prompt not found")
	ErrEmptySystemPromptName = errors.New("system prompt name cannot be empty")
)

const (
	ServiceChat = "chat"
	ServiceSTT  = "stt"
)

// APIError is a non-success answer of a remote endpoint. Body is the raw response text.
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api request failed (%d): %s", e.Service, e.StatusCode, e.Body)
}

// FormatError reports a settings document that could not be accepted.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid settings file: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid settings file: %s", e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
