package maxbot

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jfk9w/maxbot/api"
)

// Origin returns the target to respond to the message:
// its chat if known, otherwise its sender.
func Origin(message *api.Message) (Target, error) {
	if chatID := message.Recipient.ChatID; chatID != nil {
		return ToChat(*chatID), nil
	}

	if message.Sender != nil {
		return ToUser(message.Sender.UserID), nil
	}

	if userID := message.Recipient.UserID; userID != nil {
		return ToUser(*userID), nil
	}

	return Target{}, errors.Errorf("no origin for message %s", message.Body.MID)
}

// Answer sends text to the chat of the message.
func Answer(ctx context.Context, sender Sender, message *api.Message, text string) (*api.Message, error) {
	return respond(ctx, sender, message, api.NewMessage(text))
}

// Reply sends text to the chat of the message as a reply to it.
func Reply(ctx context.Context, sender Sender, message *api.Message, text string) (*api.Message, error) {
	return respond(ctx, sender, message, api.NewMessage(text).LinkTo(api.Reply, message.Body.MID))
}

// Forward sends text to the chat of the message with the message attached as forwarded.
func Forward(ctx context.Context, sender Sender, message *api.Message, text string) (*api.Message, error) {
	return respond(ctx, sender, message, api.NewMessage(text).LinkTo(api.Forward, message.Body.MID))
}

func respond(ctx context.Context, sender Sender, message *api.Message, body *api.NewMessageBody) (*api.Message, error) {
	target, err := Origin(message)
	if err != nil {
		return nil, err
	}

	return sender.SendMessage(ctx, target, body)
}
