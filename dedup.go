package maxbot

import (
	"context"
	"fmt"
	"hash/fnv"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/jfk9w/maxbot/api"
)

const DefaultDedupSize = 1000

// Dedup drops recently seen updates. Polling delivers at least once,
// so updates may repeat after a restart or a partially delivered batch.
type Dedup struct {
	seen *lru.Cache
}

func NewDedup(size int) (*Dedup, error) {
	if size <= 0 {
		size = DefaultDedupSize
	}

	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "create cache")
	}

	return &Dedup{seen: cache}, nil
}

// Seen reports whether the update has been seen before and remembers it.
// Updates without identity are never considered seen.
func (d *Dedup) Seen(update api.Update) bool {
	key := UpdateKey(update)
	if key == "" {
		return false
	}

	seen, _ := d.seen.ContainsOrAdd(key, struct{}{})
	return seen
}

// Middleware skips handling of seen updates.
func (d *Dedup) Middleware(next Handler) Handler {
	return func(ctx context.Context, update api.Update) error {
		if d.Seen(update) {
			return nil
		}

		return next(ctx, update)
	}
}

// UpdateKey identifies an update.
// Unknown updates are identified by a hash of their JSON.
func UpdateKey(update api.Update) string {
	var id string
	switch update := update.(type) {
	case *api.MessageCreatedUpdate:
		id = update.Message.Body.MID
	case *api.MessageEditedUpdate:
		id = fmt.Sprintf("%s/%d", update.Message.Body.MID, update.Message.Body.Seq)
	case *api.MessageCallbackUpdate:
		id = update.Callback.CallbackID
	case *api.MessageRemovedUpdate:
		id = update.MessageID
	case *api.MessageChatCreatedUpdate:
		id = update.MessageID
	case *api.BotAddedUpdate:
		id = fmt.Sprintf("%d/%d", update.ChatID, update.User.UserID)
	case *api.BotRemovedUpdate:
		id = fmt.Sprintf("%d/%d", update.ChatID, update.User.UserID)
	case *api.UserAddedUpdate:
		id = fmt.Sprintf("%d/%d", update.ChatID, update.User.UserID)
	case *api.UserRemovedUpdate:
		id = fmt.Sprintf("%d/%d", update.ChatID, update.User.UserID)
	case *api.BotStartedUpdate:
		id = fmt.Sprintf("%d/%d", update.ChatID, update.User.UserID)
	case *api.ChatTitleChangedUpdate:
		id = fmt.Sprintf("%d/%s", update.ChatID, update.Title)
	case *api.UnknownUpdate:
		if len(update.Raw) > 0 {
			hash := fnv.New64a()
			_, _ = hash.Write(update.Raw)
			id = fmt.Sprintf("%x", hash.Sum64())
		}
	}

	if id == "" && update.Time() == 0 {
		return ""
	}

	return fmt.Sprintf("%s:%d:%s", update.UpdateType(), update.Time(), id)
}
