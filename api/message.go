package api

import (
	"golang.org/x/exp/utf8string"
)

// MaxTextLength is the maximum message text length in characters.
const MaxTextLength = 4000

type Message struct {
	Sender    *User          `json:"sender,omitempty"`
	Recipient Recipient      `json:"recipient"`
	Timestamp int64          `json:"timestamp"`
	Link      *LinkedMessage `json:"link,omitempty"`
	Body      MessageBody    `json:"body"`
	Stat      *MessageStat   `json:"stat,omitempty"`
	URL       *string        `json:"url,omitempty"`
}

// Recipient is the message destination: either a chat or a user.
type Recipient struct {
	ChatID   *int64   `json:"chat_id,omitempty"`
	ChatType ChatType `json:"chat_type"`
	UserID   *int64   `json:"user_id,omitempty"`
}

type MessageLinkType string

const (
	Forward MessageLinkType = "forward"
	Reply   MessageLinkType = "reply"
)

type LinkedMessage struct {
	Type    MessageLinkType `json:"type"`
	Sender  *User           `json:"sender,omitempty"`
	ChatID  *int64          `json:"chat_id,omitempty"`
	Message MessageBody     `json:"message"`
}

type MessageBody struct {
	MID         string      `json:"mid"`
	Seq         int64       `json:"seq"`
	Text        *string     `json:"text,omitempty"`
	Attachments Attachments `json:"attachments,omitempty"`
	Markup      Markup      `json:"markup,omitempty"`
}

type MessageStat struct {
	Views int `json:"views"`
}

type MessageList struct {
	Messages []Message `json:"messages"`
}

type TextFormat string

const (
	Markdown TextFormat = "markdown"
	HTML     TextFormat = "html"
)

// NewMessageLink references a message to be forwarded or replied to.
type NewMessageLink struct {
	Type MessageLinkType `json:"type"`
	MID  string          `json:"mid"`
}

type NewMessageBody struct {
	Text        *string             `json:"text,omitempty"`
	Attachments []AttachmentRequest `json:"attachments,omitempty"`
	Link        *NewMessageLink     `json:"link,omitempty"`
	Notify      *bool               `json:"notify,omitempty"`
	Format      *TextFormat         `json:"format,omitempty"`
}

// NewMessage creates a markdown message body without notification.
// Text longer than MaxTextLength characters is truncated.
func NewMessage(text string) *NewMessageBody {
	text = Truncate(text, MaxTextLength)
	notify := false
	format := Markdown
	return &NewMessageBody{
		Text:   &text,
		Notify: &notify,
		Format: &format,
	}
}

func (b *NewMessageBody) SetNotify(notify bool) *NewMessageBody {
	b.Notify = &notify
	return b
}

func (b *NewMessageBody) SetFormat(format TextFormat) *NewMessageBody {
	b.Format = &format
	return b
}

func (b *NewMessageBody) Attach(attachments ...AttachmentRequest) *NewMessageBody {
	b.Attachments = append(b.Attachments, attachments...)
	return b
}

func (b *NewMessageBody) LinkTo(linkType MessageLinkType, mid string) *NewMessageBody {
	b.Link = &NewMessageLink{Type: linkType, MID: mid}
	return b
}

// Truncate cuts the text to at most limit characters.
func Truncate(text string, limit int) string {
	str := utf8string.NewString(text)
	if str.RuneCount() <= limit {
		return text
	}

	return str.Slice(0, limit)
}

type SendMessageResult struct {
	Message Message `json:"message"`
}

// SimpleResult is returned by methods without a meaningful response body.
type SimpleResult struct {
	Success bool    `json:"success"`
	Message *string `json:"message,omitempty"`
}
