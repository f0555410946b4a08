package api

type ChatType string

const (
	Dialog  ChatType = "dialog"
	Group   ChatType = "chat"
	Channel ChatType = "channel"
)

type ChatStatus string

const (
	Active    ChatStatus = "active"
	Removed   ChatStatus = "removed"
	Left      ChatStatus = "left"
	Closed    ChatStatus = "closed"
	Suspended ChatStatus = "suspended"
)

type Chat struct {
	ChatID            int64            `json:"chat_id"`
	Type              ChatType         `json:"type"`
	Status            ChatStatus       `json:"status"`
	Title             *string          `json:"title,omitempty"`
	Icon              *Image           `json:"icon,omitempty"`
	LastEventTime     int64            `json:"last_event_time"`
	ParticipantsCount int              `json:"participants_count"`
	OwnerID           *int64           `json:"owner_id,omitempty"`
	Participants      map[string]int64 `json:"participants,omitempty"`
	IsPublic          bool             `json:"is_public"`
	Link              *string          `json:"link,omitempty"`
	Description       *string          `json:"description,omitempty"`
	DialogWithUser    *UserWithPhoto   `json:"dialog_with_user,omitempty"`
	MessagesCount     *int             `json:"messages_count,omitempty"`
	ChatMessageID     *string          `json:"chat_message_id,omitempty"`
	PinnedMessage     *Message         `json:"pinned_message,omitempty"`
}

type ChatList struct {
	Chats []Chat `json:"chats"`
	// Marker points to the next page. Absent on the last page.
	Marker *int64 `json:"marker"`
}

type ChatPatch struct {
	Icon   *PhotoRequestPayload `json:"icon,omitempty"`
	Title  *string              `json:"title,omitempty"`
	Pin    *string              `json:"pin,omitempty"`
	Notify *bool                `json:"notify,omitempty"`
}
