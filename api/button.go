package api

import (
	"encoding/json"
)

type ButtonType string

const (
	CallbackButtonType           ButtonType = "callback"
	LinkButtonType               ButtonType = "link"
	RequestGeoLocationButtonType ButtonType = "request_geo_location"
	RequestContactButtonType     ButtonType = "request_contact"
	ChatButtonType               ButtonType = "chat"

	MessageReplyButtonType         ButtonType = "message"
	UserGeoLocationReplyButtonType ButtonType = "user_geo_location"
	UserContactReplyButtonType     ButtonType = "user_contact"
)

// Intent affects the button rendering on the client side.
type Intent string

const (
	Positive      Intent = "positive"
	Negative      Intent = "negative"
	DefaultIntent Intent = "default"
)

// Button is an inline keyboard button.
type Button interface {
	ButtonType() ButtonType
}

type CallbackButton struct {
	Text    string  `json:"text"`
	Payload string  `json:"payload"`
	Intent  *Intent `json:"intent,omitempty"`
}

func (b *CallbackButton) ButtonType() ButtonType { return CallbackButtonType }

func (b CallbackButton) MarshalJSON() ([]byte, error) {
	type plain CallbackButton
	return marshalTagged(typeKey, string(CallbackButtonType), plain(b))
}

type LinkButton struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

func (b *LinkButton) ButtonType() ButtonType { return LinkButtonType }

func (b LinkButton) MarshalJSON() ([]byte, error) {
	type plain LinkButton
	return marshalTagged(typeKey, string(LinkButtonType), plain(b))
}

type RequestGeoLocationButton struct {
	Text  string `json:"text"`
	Quick *bool  `json:"quick,omitempty"`
}

func (b *RequestGeoLocationButton) ButtonType() ButtonType { return RequestGeoLocationButtonType }

func (b RequestGeoLocationButton) MarshalJSON() ([]byte, error) {
	type plain RequestGeoLocationButton
	return marshalTagged(typeKey, string(RequestGeoLocationButtonType), plain(b))
}

type RequestContactButton struct {
	Text string `json:"text"`
}

func (b *RequestContactButton) ButtonType() ButtonType { return RequestContactButtonType }

func (b RequestContactButton) MarshalJSON() ([]byte, error) {
	type plain RequestContactButton
	return marshalTagged(typeKey, string(RequestContactButtonType), plain(b))
}

type ChatButton struct {
	Text            string  `json:"text"`
	ChatTitle       string  `json:"chat_title"`
	ChatDescription *string `json:"chat_description,omitempty"`
	StartPayload    *string `json:"start_payload,omitempty"`
	UUID            *int64  `json:"uuid,omitempty"`
}

func (b *ChatButton) ButtonType() ButtonType { return ChatButtonType }

func (b ChatButton) MarshalJSON() ([]byte, error) {
	type plain ChatButton
	return marshalTagged(typeKey, string(ChatButtonType), plain(b))
}

type UnknownButton struct {
	Type ButtonType
	Raw  json.RawMessage
}

func (b *UnknownButton) ButtonType() ButtonType { return b.Type }

func (b UnknownButton) MarshalJSON() ([]byte, error) {
	return b.Raw, nil
}

var buttonVariants = variants[Button]{
	key: typeKey,
	known: map[string]func() Button{
		string(CallbackButtonType):           func() Button { return new(CallbackButton) },
		string(LinkButtonType):               func() Button { return new(LinkButton) },
		string(RequestGeoLocationButtonType): func() Button { return new(RequestGeoLocationButton) },
		string(RequestContactButtonType):     func() Button { return new(RequestContactButton) },
		string(ChatButtonType):               func() Button { return new(ChatButton) },
	},
	unknown: func(kind string, raw json.RawMessage) Button {
		return &UnknownButton{Type: ButtonType(kind), Raw: raw}
	},
}

// ButtonRows is a grid of inline keyboard buttons.
type ButtonRows [][]Button

func (rows *ButtonRows) UnmarshalJSON(data []byte) error {
	values, err := buttonVariants.decodeRows(data)
	if err != nil {
		return err
	}

	*rows = values
	return nil
}

type Keyboard struct {
	Buttons ButtonRows `json:"buttons"`
}

// ReplyButton is a reply keyboard button.
type ReplyButton interface {
	ButtonType() ButtonType
}

type MessageReplyButton struct {
	Text    string  `json:"text"`
	Payload *string `json:"payload,omitempty"`
	Intent  *Intent `json:"intent,omitempty"`
}

func (b *MessageReplyButton) ButtonType() ButtonType { return MessageReplyButtonType }

func (b MessageReplyButton) MarshalJSON() ([]byte, error) {
	type plain MessageReplyButton
	return marshalTagged(typeKey, string(MessageReplyButtonType), plain(b))
}

type UserGeoLocationReplyButton struct {
	Text    string  `json:"text"`
	Payload *string `json:"payload,omitempty"`
	Quick   *bool   `json:"quick,omitempty"`
}

func (b *UserGeoLocationReplyButton) ButtonType() ButtonType {
	return UserGeoLocationReplyButtonType
}

func (b UserGeoLocationReplyButton) MarshalJSON() ([]byte, error) {
	type plain UserGeoLocationReplyButton
	return marshalTagged(typeKey, string(UserGeoLocationReplyButtonType), plain(b))
}

type UserContactReplyButton struct {
	Text    string  `json:"text"`
	Payload *string `json:"payload,omitempty"`
}

func (b *UserContactReplyButton) ButtonType() ButtonType { return UserContactReplyButtonType }

func (b UserContactReplyButton) MarshalJSON() ([]byte, error) {
	type plain UserContactReplyButton
	return marshalTagged(typeKey, string(UserContactReplyButtonType), plain(b))
}

var replyButtonVariants = variants[ReplyButton]{
	key: typeKey,
	known: map[string]func() ReplyButton{
		string(MessageReplyButtonType):         func() ReplyButton { return new(MessageReplyButton) },
		string(UserGeoLocationReplyButtonType): func() ReplyButton { return new(UserGeoLocationReplyButton) },
		string(UserContactReplyButtonType):     func() ReplyButton { return new(UserContactReplyButton) },
	},
	unknown: func(kind string, raw json.RawMessage) ReplyButton {
		return &UnknownButton{Type: ButtonType(kind), Raw: raw}
	},
}

// ReplyButtonRows is a grid of reply keyboard buttons.
type ReplyButtonRows [][]ReplyButton

func (rows *ReplyButtonRows) UnmarshalJSON(data []byte) error {
	values, err := replyButtonVariants.decodeRows(data)
	if err != nil {
		return err
	}

	*rows = values
	return nil
}
