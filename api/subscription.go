package api

// Subscription is a webhook subscription.
type Subscription struct {
	URL         string   `json:"url"`
	Time        int64    `json:"time"`
	UpdateTypes []string `json:"update_types,omitempty"`
	Version     *string  `json:"version,omitempty"`
}

type SubscriptionList struct {
	Subscriptions []Subscription `json:"subscriptions"`
}

type SubscriptionRequest struct {
	URL         string   `json:"url"`
	Secret      *string  `json:"secret,omitempty"`
	UpdateTypes []string `json:"update_types,omitempty"`
	Version     *string  `json:"version,omitempty"`
}

// Error is the platform error response body.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
