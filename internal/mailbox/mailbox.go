package mailbox

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"net/mail"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-mail-assistant/config"
	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/jhillyerd/enmime"
)

const (
	emlExt           = ".eml"
	replyPrefix      = "Re: "
	noSubject        = "(no subject)"
	messageIDDomain  = "mail-assistant"
	draftPermissions = 0o600
)

var subjectPrefixPattern = regexp.MustCompile(`(?i)^\s*((re|aw|fwd?|wg)\s*(\[\d+\])?\s*:\s*)+`)

// FileClient is a mail client over .eml files: one displayed message, one draft being edited, a
// directory of stored mail and a directory new replies are written to.
type FileClient struct {
	cfg      config.Mailbox
	identity model.Identity
	now      func() time.Time
}

func NewFileClient(cfg config.Mailbox, identity config.Identity) *FileClient {
	return &FileClient{
		cfg: cfg,
		identity: model.Identity{
			Name:         identity.Name,
			Email:        identity.Email,
			Organization: identity.Organization,
		},
		now: time.Now,
	}
}

func (c *FileClient) DefaultIdentity(_ context.Context) (model.Identity, error) {
	return c.identity, nil
}

func (c *FileClient) ActiveCompose(_ context.Context) (model.ComposeDetails, error) {
	if c.cfg.ComposePath == "" {
		return model.ComposeDetails{}, model.ErrNoComposeWindow
	}
	env, err := readEnvelope(c.cfg.ComposePath)
	if err != nil {
		return model.ComposeDetails{}, err
	}

	details := model.ComposeDetails{
		Handle:    c.cfg.ComposePath,
		To:        addresses(env, "To"),
		Subject:   env.GetHeader("Subject"),
		InReplyTo: trimMessageID(env.GetHeader("In-Reply-To")),
	}
	if from := firstAddress(env, "From"); from != nil {
		details.From = from.Address
		details.FromName = from.Name
	}
	textPart, htmlPart := bodyParts(env)
	switch {
	case textPart != nil:
		details.Body = string(textPart.Content)
	case htmlPart != nil:
		details.Body = string(htmlPart.Content)
		details.IsHTML = true
	}
	return details, nil
}

func (c *FileClient) DisplayedMessage(_ context.Context) (model.MailMessage, error) {
	if c.cfg.MessagePath == "" {
		return model.MailMessage{}, model.ErrNoMessageDisplayed
	}
	return readMessage(c.cfg.MessagePath)
}

func (c *FileClient) GetMessage(_ context.Context, messageID string) (model.MailMessage, error) {
	messageID = trimMessageID(messageID)
	messages, err := c.messages()
	if err != nil {
		return model.MailMessage{}, err
	}
	for _, msg := range messages {
		if msg.ID == messageID {
			return msg, nil
		}
	}
	return model.MailMessage{}, fmt.Errorf("%w: %s", model.ErrMessageNotFound, messageID)
}

// ListThread matches messages by subject with reply and forward prefixes removed.
func (c *FileClient) ListThread(_ context.Context, messageID string, limit int) ([]model.MailMessage, error) {
	messageID = trimMessageID(messageID)
	messages, err := c.messages()
	if err != nil {
		return nil, err
	}
	var target *model.MailMessage
	for i := range messages {
		if messages[i].ID == messageID {
			target = &messages[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrMessageNotFound, messageID)
	}

	topic := NormalizeSubject(target.Subject)
	thread := make([]model.MailMessage, 0)
	for _, msg := range messages {
		if msg.ID == target.ID || NormalizeSubject(msg.Subject) != topic {
			continue
		}
		if !target.Date.IsZero() && msg.Date.After(target.Date) {
			continue
		}
		thread = append(thread, msg)
	}
	sort.SliceStable(
		thread, func(i, j int) bool {
			return thread[i].Date.Before(thread[j].Date)
		},
	)
	if limit > 0 && len(thread) > limit {
		thread = thread[len(thread)-limit:]
	}
	return thread, nil
}

// SetComposeBody replaces the body parts of the draft at handle. Headers are kept as they are.
func (c *FileClient) SetComposeBody(_ context.Context, handle, body string) error {
	env, err := readEnvelope(handle)
	if err != nil {
		return err
	}
	textPart, htmlPart := bodyParts(env)
	switch {
	case textPart != nil:
		textPart.Content = []byte(body)
		if htmlPart != nil {
			htmlPart.Content = []byte(strings.ReplaceAll(html.EscapeString(body), "\n", "<br>"))
		}
	case htmlPart != nil:
		htmlPart.Content = []byte(body)
	case env.Root.FirstChild == nil:
		env.Root.ContentType = "text/plain"
		env.Root.Content = []byte(body)
	default:
		return fmt.Errorf("draft %s has no body part", handle)
	}

	var buf bytes.Buffer
	if err = env.Root.Encode(&buf); err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	return writeFile(handle, buf.Bytes())
}

// BeginReply writes a new reply draft to the drafts directory and returns its path.
func (c *FileClient) BeginReply(ctx context.Context, messageID, body string) (string, error) {
	original, err := c.GetMessage(ctx, messageID)
	if err != nil {
		return "", err
	}
	env, err := c.envelope(original.ID)
	if err != nil {
		return "", err
	}

	recipient := firstAddress(env, "Reply-To")
	if recipient == nil {
		recipient = firstAddress(env, "From")
	}
	if recipient == nil {
		return "", fmt.Errorf("message %s has no sender to reply to", original.ID)
	}

	fromName, fromAddress := c.identity.Name, c.identity.Email
	if fromAddress == "" {
		if to := firstAddress(env, "To"); to != nil {
			fromName, fromAddress = to.Name, to.Address
		}
	}

	references := strings.TrimSpace(env.GetHeader("References") + " <" + original.ID + ">")
	id := uuid.New()
	builder := enmime.Builder().
		From(fromName, fromAddress).
		To(recipient.Name, recipient.Address).
		Subject(ReplySubject(original.Subject)).
		Date(c.now()).
		Header("Message-ID", fmt.Sprintf("<%s@%s>", id, messageIDDomain)).
		Header("In-Reply-To", "<"+original.ID+">").
		Header("References", references).
		Text([]byte(body))

	if err = os.MkdirAll(c.cfg.DraftsDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create drafts dir: %w", err)
	}
	path := filepath.Join(c.cfg.DraftsDir, fmt.Sprintf("reply-%s%s", id, emlExt))
	if err = writeDraft(path, builder); err != nil {
		return "", err
	}
	return path, nil
}

// ReplySubject prefixes subject with "Re: " unless it already is a reply.
func ReplySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(subject)), "re:") {
		return subject
	}
	return replyPrefix + orNoSubject(subject)
}

// NormalizeSubject strips reply and forward prefixes so the messages of a conversation compare equal.
func NormalizeSubject(subject string) string {
	return strings.ToLower(strings.TrimSpace(subjectPrefixPattern.ReplaceAllString(subject, "")))
}

func (c *FileClient) messages() ([]model.MailMessage, error) {
	paths, err := c.messagePaths()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(paths))
	messages := make([]model.MailMessage, 0, len(paths))
	for _, path := range paths {
		msg, err := readMessage(path)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[msg.ID]; ok && msg.ID != "" {
			continue
		}
		seen[msg.ID] = struct{}{}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (c *FileClient) envelope(messageID string) (*enmime.Envelope, error) {
	paths, err := c.messagePaths()
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		env, err := readEnvelope(path)
		if err != nil {
			return nil, err
		}
		if trimMessageID(env.GetHeader("Message-ID")) == messageID {
			return env, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", model.ErrMessageNotFound, messageID)
}

func (c *FileClient) messagePaths() ([]string, error) {
	var paths []string
	if c.cfg.MessagePath != "" {
		paths = append(paths, c.cfg.MessagePath)
	}
	if c.cfg.MailDir == "" {
		return paths, nil
	}
	entries, err := os.ReadDir(c.cfg.MailDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mail dir %s: %w", c.cfg.MailDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), emlExt) {
			continue
		}
		paths = append(paths, filepath.Join(c.cfg.MailDir, entry.Name()))
	}
	return paths, nil
}

func readEnvelope(path string) (*enmime.Envelope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	env, err := enmime.ReadEnvelope(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return env, nil
}

func readMessage(path string) (model.MailMessage, error) {
	env, err := readEnvelope(path)
	if err != nil {
		return model.MailMessage{}, err
	}
	msg := model.MailMessage{
		ID:        trimMessageID(env.GetHeader("Message-ID")),
		Subject:   env.GetHeader("Subject"),
		Author:    env.GetHeader("From"),
		To:        addresses(env, "To"),
		InReplyTo: trimMessageID(env.GetHeader("In-Reply-To")),
		HTML:      env.HTML,
	}
	// enmime fills Text from the HTML part of HTML-only mail; keep Text for real text parts.
	if textPart, _ := bodyParts(env); textPart != nil {
		msg.Text = env.Text
	}
	if date, err := mail.ParseDate(env.GetHeader("Date")); err == nil {
		msg.Date = date
	}
	return msg, nil
}

func writeDraft(path string, builder enmime.MailBuilder) error {
	part, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build draft: %w", err)
	}
	var buf bytes.Buffer
	if err = part.Encode(&buf); err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

// writeFile replaces path in one rename so a reader never sees half a draft.
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, draftPermissions); err != nil {
		return fmt.Errorf("failed to write draft %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write draft %s: %w", path, err)
	}
	return nil
}

// bodyParts finds the inline text/plain and text/html parts, either may be nil.
func bodyParts(env *enmime.Envelope) (textPart, htmlPart *enmime.Part) {
	if env.Root == nil {
		return nil, nil
	}
	inline := func(contentType string) func(p *enmime.Part) bool {
		return func(p *enmime.Part) bool {
			return p.ContentType == contentType && p.Disposition != "attachment"
		}
	}
	textPart = env.Root.BreadthMatchFirst(inline("text/plain"))
	htmlPart = env.Root.BreadthMatchFirst(inline("text/html"))
	if textPart == nil && htmlPart == nil && env.Root.FirstChild == nil && env.Root.ContentType == "" {
		textPart = env.Root
	}
	return textPart, htmlPart
}

func addressList(env *enmime.Envelope, header string) []mail.Address {
	list, err := env.AddressList(header)
	if err != nil {
		return nil
	}
	result := make([]mail.Address, 0, len(list))
	for _, addr := range list {
		result = append(result, *addr)
	}
	return result
}

func addresses(env *enmime.Envelope, header string) []string {
	list := addressList(env, header)
	result := make([]string, 0, len(list))
	for _, addr := range list {
		result = append(result, addr.Address)
	}
	return result
}

func firstAddress(env *enmime.Envelope, header string) *mail.Address {
	list := addressList(env, header)
	if len(list) == 0 {
		return nil
	}
	return &list[0]
}

func trimMessageID(id string) string {
	return strings.Trim(strings.TrimSpace(id), "<>")
}

func orNoSubject(subject string) string {
	if strings.TrimSpace(subject) == "" {
		return noSubject
	}
	return subject
}
