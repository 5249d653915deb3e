package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/iamvkosarev/ai-mail-assistant/internal/logger"
	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
)

const (
	textSeparator = "\n\n"
	htmlSeparator = "<br><br>"
)

type InsertionResult struct {
	// Handle is the draft that received the text.
	Handle   string
	NewReply bool
}

type InsertionUsecaseDeps struct {
	Mail   MailClient
	Logger *logger.Logger
}

type InsertionUsecase struct {
	InsertionUsecaseDeps
}

func NewInsertionUsecase(deps InsertionUsecaseDeps) *InsertionUsecase {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	return &InsertionUsecase{
		InsertionUsecaseDeps: deps,
	}
}

// Insert puts text where ectx came from. In a draft the body is replaced when clear is set,
// otherwise text goes below the current body after one blank line. For a displayed message a new
// reply is started.
func (i *InsertionUsecase) Insert(
	ctx context.Context,
	text string,
	ectx model.EmailContext,
	clear bool,
) (InsertionResult, error) {
	if ectx.Context != model.ContextSourceComposer {
		handle, err := i.Mail.BeginReply(ctx, ectx.MessageID, text)
		if err != nil {
			return InsertionResult{}, fmt.Errorf("failed to begin reply to %s: %w", ectx.MessageID, err)
		}
		i.Logger.WithContext(ctx).Info("reply started", "message_id", ectx.MessageID, "handle", handle)
		return InsertionResult{Handle: handle, NewReply: true}, nil
	}

	compose, err := i.Mail.ActiveCompose(ctx)
	if err != nil {
		return InsertionResult{}, fmt.Errorf("failed to get compose details: %w", err)
	}
	handle := ectx.ComposeHandle
	if handle == "" {
		handle = compose.Handle
	}

	body := MergeBody(compose.Body, text, compose.IsHTML, clear)
	if err = i.Mail.SetComposeBody(ctx, handle, body); err != nil {
		return InsertionResult{}, fmt.Errorf("failed to set compose body: %w", err)
	}
	i.Logger.WithContext(ctx).Info("reply inserted", "handle", handle, "replaced", clear)
	return InsertionResult{Handle: handle}, nil
}

// MergeBody returns the draft body after inserting text into current.
func MergeBody(current, text string, isHTML, clear bool) string {
	separator := textSeparator
	if isHTML {
		text = TextToHTML(text)
		separator = htmlSeparator
	}
	if clear || strings.TrimSpace(current) == "" {
		return text
	}
	return strings.TrimRight(current, " \t\r\n") + separator + text
}
