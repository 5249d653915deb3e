package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/iamvkosarev/ai-mail-assistant/internal/logger"
	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
)

// MailClient is the mail program the assistant works against.
type MailClient interface {
	// ActiveCompose returns model.ErrNoComposeWindow when no draft is being edited.
	ActiveCompose(ctx context.Context) (model.ComposeDetails, error)
	// DisplayedMessage returns model.ErrNoMessageDisplayed when no message is shown.
	DisplayedMessage(ctx context.Context) (model.MailMessage, error)
	GetMessage(ctx context.Context, messageID string) (model.MailMessage, error)
	// ListThread returns up to limit earlier messages of the conversation, oldest first.
	ListThread(ctx context.Context, messageID string, limit int) ([]model.MailMessage, error)
	SetComposeBody(ctx context.Context, handle, body string) error
	// BeginReply starts a reply to messageID prefilled with body and returns the draft handle.
	BeginReply(ctx context.Context, messageID, body string) (string, error)
	DefaultIdentity(ctx context.Context) (model.Identity, error)
}

type ContextUsecaseDeps struct {
	Mail   MailClient
	Logger *logger.Logger
}

type ContextUsecase struct {
	ContextUsecaseDeps
}

func NewContextUsecase(deps ContextUsecaseDeps) *ContextUsecase {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	return &ContextUsecase{
		ContextUsecaseDeps: deps,
	}
}

// Extract finds the mail the user wants to answer. An open reply draft wins over the displayed
// message; with neither model.ErrNoMessageOpen is returned.
func (c *ContextUsecase) Extract(ctx context.Context, contextSize int) (model.EmailContext, error) {
	compose, err := c.Mail.ActiveCompose(ctx)
	if err == nil {
		return c.fromCompose(ctx, compose, contextSize)
	}
	if !errors.Is(err, model.ErrNoComposeWindow) {
		return model.EmailContext{}, fmt.Errorf("failed to get compose details: %w", err)
	}

	msg, err := c.Mail.DisplayedMessage(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNoMessageDisplayed) {
			return model.EmailContext{}, model.ErrNoMessageOpen
		}
		return model.EmailContext{}, fmt.Errorf("failed to get displayed message: %w", err)
	}

	identity := c.identity(ctx)
	ectx := model.EmailContext{
		MessageID:            msg.ID,
		Subject:              msg.Subject,
		Sender:               msg.Author,
		Body:                 msg.PlainBody(),
		Context:              model.ContextSourceViewer,
		Receiver:             identity.Email,
		ReceiverName:         identity.Name,
		ReceiverOrganization: identity.Organization,
	}
	if ectx.Receiver == "" && len(msg.To) > 0 {
		ectx.Receiver = msg.To[0]
	}
	ectx.Thread = c.thread(ctx, msg.ID, contextSize)
	return ectx, nil
}

func (c *ContextUsecase) fromCompose(
	ctx context.Context,
	compose model.ComposeDetails,
	contextSize int,
) (model.EmailContext, error) {
	identity := c.identity(ctx)
	if identity.Name == "" {
		identity.Name = compose.FromName
	}
	receiver := identity.Email
	if receiver == "" {
		receiver = compose.From
	}

	ectx := model.EmailContext{
		Context:              model.ContextSourceComposer,
		ComposeHandle:        compose.Handle,
		Receiver:             receiver,
		ReceiverName:         identity.Name,
		ReceiverOrganization: identity.Organization,
	}

	if compose.InReplyTo != "" {
		original, err := c.Mail.GetMessage(ctx, compose.InReplyTo)
		if err == nil {
			ectx.MessageID = original.ID
			ectx.Subject = original.Subject
			ectx.Sender = original.Author
			ectx.Body = original.PlainBody()
			ectx.Thread = c.thread(ctx, original.ID, contextSize)
			return ectx, nil
		}
		c.Logger.WithContext(ctx).Warn(
			"failed to resolve replied message, using draft",
			"in_reply_to", compose.InReplyTo,
			"error", err,
		)
	}

	ectx.Subject = compose.Subject
	ectx.Body = compose.Body
	if len(compose.To) > 0 {
		ectx.Sender = compose.To[0]
	}
	return ectx, nil
}

func (c *ContextUsecase) identity(ctx context.Context) model.Identity {
	identity, err := c.Mail.DefaultIdentity(ctx)
	if err != nil {
		c.Logger.WithContext(ctx).Warn("failed to get default identity", "error", err)
		return model.Identity{}
	}
	return identity
}

func (c *ContextUsecase) thread(ctx context.Context, messageID string, contextSize int) []model.ThreadMessage {
	if contextSize <= 0 || messageID == "" {
		return nil
	}
	messages, err := c.Mail.ListThread(ctx, messageID, contextSize)
	if err != nil {
		c.Logger.WithContext(ctx).Warn("failed to list thread", "message_id", messageID, "error", err)
		return nil
	}
	thread := make([]model.ThreadMessage, 0, len(messages))
	for _, msg := range messages {
		thread = append(
			thread, model.ThreadMessage{
				Author:  msg.Author,
				Subject: msg.Subject,
				Body:    msg.PlainBody(),
				Date:    msg.Date,
			},
		)
	}
	return thread
}

