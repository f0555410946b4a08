package api

type User struct {
	UserID           int64   `json:"user_id"`
	FirstName        string  `json:"first_name"`
	LastName         *string `json:"last_name,omitempty"`
	Username         *string `json:"username,omitempty"`
	IsBot            bool    `json:"is_bot"`
	LastActivityTime int64   `json:"last_activity_time"`
}

type UserWithPhoto struct {
	User
	Description   *string `json:"description,omitempty"`
	AvatarURL     *string `json:"avatar_url,omitempty"`
	FullAvatarURL *string `json:"full_avatar_url,omitempty"`
}

type BotCommand struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// BotInfo is the bot's own profile.
type BotInfo struct {
	UserWithPhoto
	Commands []BotCommand `json:"commands,omitempty"`
}

type BotPatch struct {
	Name        *string              `json:"name,omitempty"`
	Description *string              `json:"description,omitempty"`
	Commands    []BotCommand         `json:"commands,omitempty"`
	Photo       *PhotoRequestPayload `json:"photo,omitempty"`
}
