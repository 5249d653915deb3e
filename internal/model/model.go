package model

import "time"

type ContextSource string

const (
	ContextSourceViewer   = ContextSource("viewer")
	ContextSourceComposer = ContextSource("composer")
)

type ThreadMessage struct {
	Author  string
	Subject string
	Body    string
	Date    time.Time
}

// EmailContext is everything a single reply request knows about the mail it answers.
type EmailContext struct {
	MessageID            string
	Subject              string
	Sender               string
	Body                 string
	Context              ContextSource
	ComposeHandle        string
	Receiver             string
	ReceiverName         string
	ReceiverOrganization string
	Thread               []ThreadMessage
}

// MailMessage is a stored or displayed message as the mail client reports it.
type MailMessage struct {
	ID        string
	Subject   string
	Author    string
	To        []string
	InReplyTo string
	Text      string
	HTML      string
	Date      time.Time
}

// PlainBody prefers the text/plain part and falls back to HTML.
func (m MailMessage) PlainBody() string {
	if m.Text != "" {
		return m.Text
	}
	return m.HTML
}

// ComposeDetails describes an open draft.
type ComposeDetails struct {
	Handle    string
	From      string
	FromName  string
	To        []string
	Subject   string
	Body      string
	IsHTML    bool
	InReplyTo string
}

type Completion struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	Elapsed      time.Duration
	Cost         string
}

type GenerationStats struct {
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	Model        string  `json:"model"`
	Time         float64 `json:"time"`
	Cost         string  `json:"cost"`
	Temperature  float32 `json:"temperature"`
}
