package maxbot

import (
	"context"
	"io"
	"runtime/debug"

	"github.com/pkg/errors"

	"github.com/jfk9w/maxbot/api"
	"github.com/jfk9w/maxbot/internal/logx"
	"github.com/jfk9w/maxbot/metrics"
)

// Handler processes a single update.
type Handler func(ctx context.Context, update api.Update) error

// Source yields updates until io.EOF.
type Source interface {
	Receive(ctx context.Context) (api.Update, error)
}

// Dispatcher routes updates to handlers by update type.
// Handler errors and panics are logged and do not stop the dispatcher.
type Dispatcher struct {
	Metrics metrics.Registry

	handlers map[api.UpdateType]Handler
	unknown  Handler
	fallback Handler
	filters  []func(Handler) Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		Metrics:  metrics.Dummy,
		handlers: make(map[api.UpdateType]Handler),
	}
}

func (d *Dispatcher) String() string {
	return "dispatcher"
}

// Handle registers the handler for the update type replacing the previous one.
func (d *Dispatcher) Handle(updateType api.UpdateType, handler Handler) *Dispatcher {
	d.handlers[updateType] = handler
	return d
}

// Default registers the handler for update types without a dedicated handler,
// including the ones unknown to this package.
func (d *Dispatcher) Default(handler Handler) *Dispatcher {
	d.fallback = handler
	return d
}

// OnUnknown registers the handler for update types unknown to this package.
// It takes precedence over Default.
func (d *Dispatcher) OnUnknown(fn func(context.Context, *api.UnknownUpdate) error) *Dispatcher {
	d.unknown = typed(fn)
	return d
}

// Use wraps all handlers with the middleware. Middlewares are applied in order.
func (d *Dispatcher) Use(middleware func(Handler) Handler) *Dispatcher {
	d.filters = append(d.filters, middleware)
	return d
}

func (d *Dispatcher) OnMessageCreated(fn func(context.Context, *api.MessageCreatedUpdate) error) *Dispatcher {
	return d.Handle(api.MessageCreated, typed(fn))
}

func (d *Dispatcher) OnMessageCallback(fn func(context.Context, *api.MessageCallbackUpdate) error) *Dispatcher {
	return d.Handle(api.MessageCallback, typed(fn))
}

func (d *Dispatcher) OnMessageEdited(fn func(context.Context, *api.MessageEditedUpdate) error) *Dispatcher {
	return d.Handle(api.MessageEdited, typed(fn))
}

func (d *Dispatcher) OnMessageRemoved(fn func(context.Context, *api.MessageRemovedUpdate) error) *Dispatcher {
	return d.Handle(api.MessageRemoved, typed(fn))
}

func (d *Dispatcher) OnBotAdded(fn func(context.Context, *api.BotAddedUpdate) error) *Dispatcher {
	return d.Handle(api.BotAdded, typed(fn))
}

func (d *Dispatcher) OnBotRemoved(fn func(context.Context, *api.BotRemovedUpdate) error) *Dispatcher {
	return d.Handle(api.BotRemoved, typed(fn))
}

func (d *Dispatcher) OnUserAdded(fn func(context.Context, *api.UserAddedUpdate) error) *Dispatcher {
	return d.Handle(api.UserAdded, typed(fn))
}

func (d *Dispatcher) OnUserRemoved(fn func(context.Context, *api.UserRemovedUpdate) error) *Dispatcher {
	return d.Handle(api.UserRemoved, typed(fn))
}

func (d *Dispatcher) OnBotStarted(fn func(context.Context, *api.BotStartedUpdate) error) *Dispatcher {
	return d.Handle(api.BotStarted, typed(fn))
}

func (d *Dispatcher) OnChatTitleChanged(fn func(context.Context, *api.ChatTitleChangedUpdate) error) *Dispatcher {
	return d.Handle(api.ChatTitleChanged, typed(fn))
}

func (d *Dispatcher) OnMessageChatCreated(fn func(context.Context, *api.MessageChatCreatedUpdate) error) *Dispatcher {
	return d.Handle(api.MessageChatCreated, typed(fn))
}

func typed[U api.Update](fn func(context.Context, U) error) Handler {
	return func(ctx context.Context, update api.Update) error {
		value, ok := update.(U)
		if !ok {
			return errors.Errorf("unexpected update %T", update)
		}

		return fn(ctx, value)
	}
}

// Dispatch passes the update to the matching handler.
func (d *Dispatcher) Dispatch(ctx context.Context, update api.Update) (err error) {
	handler, ok := d.handlers[update.UpdateType()]
	switch {
	case ok:
	case d.unknown != nil && api.IsUnknown(update):
		handler = d.unknown
	case d.fallback != nil:
		handler = d.fallback
	default:
		return nil
	}

	for i := len(d.filters) - 1; i >= 0; i-- {
		handler = d.filters[i](handler)
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()

	return handler(ctx, update)
}

// Run dispatches updates from the source until it is drained or ctx is done.
func (d *Dispatcher) Run(ctx context.Context, source Source) error {
	log := logx.Get(d.String())
	for {
		update, err := source.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}

			return errors.Wrap(err, "receive update")
		}

		labels := metrics.Labels{"type": string(update.UpdateType())}
		if err := d.Dispatch(ctx, update); err != nil {
			d.Metrics.Counter("handler_errors", labels).Inc()
			log.Warnf("handle [%s]: %v", update.UpdateType(), err)
		} else {
			d.Metrics.Counter("handled", labels).Inc()
			log.Debugf("handle [%s]: ok", update.UpdateType())
		}
	}
}
