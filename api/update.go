package api

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// UpdateType is the update_type discriminator of an Update.
type UpdateType string

const (
	MessageCreated     UpdateType = "message_created"
	MessageCallback    UpdateType = "message_callback"
	MessageEdited      UpdateType = "message_edited"
	MessageRemoved     UpdateType = "message_removed"
	BotAdded           UpdateType = "bot_added"
	BotRemoved         UpdateType = "bot_removed"
	UserAdded          UpdateType = "user_added"
	UserRemoved        UpdateType = "user_removed"
	BotStarted         UpdateType = "bot_started"
	ChatTitleChanged   UpdateType = "chat_title_changed"
	MessageChatCreated UpdateType = "message_chat_created"
)

// UpdateTypes lists all update types known to this package.
// It may be used as a polling filter, though the platform accepts any value.
var UpdateTypes = []UpdateType{
	MessageCreated, MessageCallback, MessageEdited, MessageRemoved,
	BotAdded, BotRemoved, UserAdded, UserRemoved,
	BotStarted, ChatTitleChanged, MessageChatCreated,
}

// Update is a platform event.
// Updates with an unrecognized update_type are decoded as *UnknownUpdate.
type Update interface {
	UpdateType() UpdateType
	// Time is the event timestamp in unix milliseconds.
	Time() int64
}

// Callback is a pressed inline button.
type Callback struct {
	Timestamp  int64   `json:"timestamp"`
	CallbackID string  `json:"callback_id"`
	Payload    *string `json:"payload,omitempty"`
	User       User    `json:"user"`
}

type MessageCreatedUpdate struct {
	Timestamp  int64   `json:"timestamp"`
	Message    Message `json:"message"`
	UserLocale *string `json:"user_locale,omitempty"`
}

func (u *MessageCreatedUpdate) UpdateType() UpdateType { return MessageCreated }
func (u *MessageCreatedUpdate) Time() int64            { return u.Timestamp }

func (u MessageCreatedUpdate) MarshalJSON() ([]byte, error) {
	type plain MessageCreatedUpdate
	return marshalTagged(updateTypeKey, string(MessageCreated), plain(u))
}

type MessageCallbackUpdate struct {
	Timestamp  int64    `json:"timestamp"`
	Callback   Callback `json:"callback"`
	Message    *Message `json:"message,omitempty"`
	UserLocale *string  `json:"user_locale,omitempty"`
}

func (u *MessageCallbackUpdate) UpdateType() UpdateType { return MessageCallback }
func (u *MessageCallbackUpdate) Time() int64            { return u.Timestamp }

func (u MessageCallbackUpdate) MarshalJSON() ([]byte, error) {
	type plain MessageCallbackUpdate
	return marshalTagged(updateTypeKey, string(MessageCallback), plain(u))
}

type MessageEditedUpdate struct {
	Timestamp int64   `json:"timestamp"`
	Message   Message `json:"message"`
}

func (u *MessageEditedUpdate) UpdateType() UpdateType { return MessageEdited }
func (u *MessageEditedUpdate) Time() int64            { return u.Timestamp }

func (u MessageEditedUpdate) MarshalJSON() ([]byte, error) {
	type plain MessageEditedUpdate
	return marshalTagged(updateTypeKey, string(MessageEdited), plain(u))
}

type MessageRemovedUpdate struct {
	Timestamp int64  `json:"timestamp"`
	MessageID string `json:"message_id"`
	ChatID    int64  `json:"chat_id"`
	UserID    int64  `json:"user_id"`
}

func (u *MessageRemovedUpdate) UpdateType() UpdateType { return MessageRemoved }
func (u *MessageRemovedUpdate) Time() int64            { return u.Timestamp }

func (u MessageRemovedUpdate) MarshalJSON() ([]byte, error) {
	type plain MessageRemovedUpdate
	return marshalTagged(updateTypeKey, string(MessageRemoved), plain(u))
}

type BotAddedUpdate struct {
	Timestamp int64 `json:"timestamp"`
	ChatID    int64 `json:"chat_id"`
	User      User  `json:"user"`
	IsChannel bool  `json:"is_channel"`
}

func (u *BotAddedUpdate) UpdateType() UpdateType { return BotAdded }
func (u *BotAddedUpdate) Time() int64            { return u.Timestamp }

func (u BotAddedUpdate) MarshalJSON() ([]byte, error) {
	type plain BotAddedUpdate
	return marshalTagged(updateTypeKey, string(BotAdded), plain(u))
}

type BotRemovedUpdate struct {
	Timestamp int64 `json:"timestamp"`
	ChatID    int64 `json:"chat_id"`
	User      User  `json:"user"`
	IsChannel bool  `json:"is_channel"`
}

func (u *BotRemovedUpdate) UpdateType() UpdateType { return BotRemoved }
func (u *BotRemovedUpdate) Time() int64            { return u.Timestamp }

func (u BotRemovedUpdate) MarshalJSON() ([]byte, error) {
	type plain BotRemovedUpdate
	return marshalTagged(updateTypeKey, string(BotRemoved), plain(u))
}

type UserAddedUpdate struct {
	Timestamp int64  `json:"timestamp"`
	ChatID    int64  `json:"chat_id"`
	User      User   `json:"user"`
	InviterID *int64 `json:"inviter_id,omitempty"`
	IsChannel bool   `json:"is_channel"`
}

func (u *UserAddedUpdate) UpdateType() UpdateType { return UserAdded }
func (u *UserAddedUpdate) Time() int64            { return u.Timestamp }

func (u UserAddedUpdate) MarshalJSON() ([]byte, error) {
	type plain UserAddedUpdate
	return marshalTagged(updateTypeKey, string(UserAdded), plain(u))
}

type UserRemovedUpdate struct {
	Timestamp int64  `json:"timestamp"`
	ChatID    int64  `json:"chat_id"`
	User      User   `json:"user"`
	AdminID   *int64 `json:"admin_id,omitempty"`
	IsChannel bool   `json:"is_channel"`
}

func (u *UserRemovedUpdate) UpdateType() UpdateType { return UserRemoved }
func (u *UserRemovedUpdate) Time() int64            { return u.Timestamp }

func (u UserRemovedUpdate) MarshalJSON() ([]byte, error) {
	type plain UserRemovedUpdate
	return marshalTagged(updateTypeKey, string(UserRemoved), plain(u))
}

type BotStartedUpdate struct {
	Timestamp  int64   `json:"timestamp"`
	ChatID     int64   `json:"chat_id"`
	User       User    `json:"user"`
	Payload    *string `json:"payload,omitempty"`
	UserLocale *string `json:"user_locale,omitempty"`
}

func (u *BotStartedUpdate) UpdateType() UpdateType { return BotStarted }
func (u *BotStartedUpdate) Time() int64            { return u.Timestamp }

func (u BotStartedUpdate) MarshalJSON() ([]byte, error) {
	type plain BotStartedUpdate
	return marshalTagged(updateTypeKey, string(BotStarted), plain(u))
}

type ChatTitleChangedUpdate struct {
	Timestamp int64  `json:"timestamp"`
	ChatID    int64  `json:"chat_id"`
	User      User   `json:"user"`
	Title     string `json:"title"`
}

func (u *ChatTitleChangedUpdate) UpdateType() UpdateType { return ChatTitleChanged }
func (u *ChatTitleChangedUpdate) Time() int64            { return u.Timestamp }

func (u ChatTitleChangedUpdate) MarshalJSON() ([]byte, error) {
	type plain ChatTitleChangedUpdate
	return marshalTagged(updateTypeKey, string(ChatTitleChanged), plain(u))
}

type MessageChatCreatedUpdate struct {
	Timestamp    int64   `json:"timestamp"`
	Chat         Chat    `json:"chat"`
	MessageID    string  `json:"message_id"`
	StartPayload *string `json:"start_payload,omitempty"`
}

func (u *MessageChatCreatedUpdate) UpdateType() UpdateType { return MessageChatCreated }
func (u *MessageChatCreatedUpdate) Time() int64            { return u.Timestamp }

func (u MessageChatCreatedUpdate) MarshalJSON() ([]byte, error) {
	type plain MessageChatCreatedUpdate
	return marshalTagged(updateTypeKey, string(MessageChatCreated), plain(u))
}

// UnknownUpdate holds an update of a type this package does not recognize.
type UnknownUpdate struct {
	Type      UpdateType
	Timestamp int64
	Raw       json.RawMessage
}

func (u *UnknownUpdate) UpdateType() UpdateType { return u.Type }
func (u *UnknownUpdate) Time() int64            { return u.Timestamp }

func (u UnknownUpdate) MarshalJSON() ([]byte, error) {
	return u.Raw, nil
}

var updateVariants = variants[Update]{
	key: updateTypeKey,
	known: map[string]func() Update{
		string(MessageCreated):     func() Update { return new(MessageCreatedUpdate) },
		string(MessageCallback):    func() Update { return new(MessageCallbackUpdate) },
		string(MessageEdited):      func() Update { return new(MessageEditedUpdate) },
		string(MessageRemoved):     func() Update { return new(MessageRemovedUpdate) },
		string(BotAdded):           func() Update { return new(BotAddedUpdate) },
		string(BotRemoved):         func() Update { return new(BotRemovedUpdate) },
		string(UserAdded):          func() Update { return new(UserAddedUpdate) },
		string(UserRemoved):        func() Update { return new(UserRemovedUpdate) },
		string(BotStarted):         func() Update { return new(BotStartedUpdate) },
		string(ChatTitleChanged):   func() Update { return new(ChatTitleChangedUpdate) },
		string(MessageChatCreated): func() Update { return new(MessageChatCreatedUpdate) },
	},
	unknown: func(kind string, raw json.RawMessage) Update {
		update := &UnknownUpdate{Type: UpdateType(kind), Raw: raw}
		var head struct {
			Timestamp int64 `json:"timestamp"`
		}

		if err := json.Unmarshal(raw, &head); err == nil {
			update.Timestamp = head.Timestamp
		}

		return update
	},
}

// DecodeUpdate decodes a single update by its update_type.
func DecodeUpdate(data []byte) (Update, error) {
	return updateVariants.decode(data)
}

// IsUnknown reports whether the update type is not recognized by this package.
func IsUnknown(update Update) bool {
	_, ok := update.(*UnknownUpdate)
	return ok
}

// UpdateList is a single long polling batch.
type UpdateList struct {
	Updates []Update `json:"updates"`
	// Marker is the cursor to be passed with the next request. It may be absent.
	Marker *int64 `json:"marker"`
}

func (l *UpdateList) UnmarshalJSON(data []byte) error {
	var raw struct {
		Updates json.RawMessage `json:"updates"`
		Marker  *int64          `json:"marker"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	updates, err := updateVariants.decodeSlice(raw.Updates)
	if err != nil {
		return errors.Wrap(err, "decode updates")
	}

	l.Updates = updates
	l.Marker = raw.Marker
	return nil
}
