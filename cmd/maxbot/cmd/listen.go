package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jfk9w/maxbot"
	"github.com/jfk9w/maxbot/api"
	"github.com/jfk9w/maxbot/internal/logx"
	"github.com/jfk9w/maxbot/metrics"
	"github.com/jfk9w/maxbot/poller"
	"github.com/jfk9w/maxbot/storage"
)

func listenCmd(a *app) *cobra.Command {
	var echo bool
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Poll bot updates and print them as JSON lines.",
		Long: `Polls bot updates until interrupted or a fatal error occurs.
The polling marker is kept in the database when storage is configured,
so updates are resumed after restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return a.listen(ctx, cmd.OutOrStdout(), echo)
		},
	}

	cmd.Flags().BoolVar(&echo, "echo", false, "Reply to every text message with its text")
	return cmd
}

func (a *app) listen(ctx context.Context, out io.Writer, echo bool) (err error) {
	log := logx.Get("listen")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var mx metrics.Registry = metrics.Dummy
	if a.config.Metrics.Address != "" {
		mx = metrics.NewPrometheus(registry).WithPrefix("maxbot")
	}

	var markers poller.MarkerStore = new(poller.MemoryMarkers)
	if a.config.Storage.Driver != "" {
		db, sqlMarkers, openErr := a.sqlMarkers(ctx)
		if openErr != nil {
			return openErr
		}

		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				err = multierror.Append(err, errors.Wrap(closeErr, "close storage"))
			}
		}()

		markers = sqlMarkers
	}

	dedup, err := maxbot.NewDedup(a.config.Poll.Dedup)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	encoder := json.NewEncoder(out)
	printUpdate := func(ctx context.Context, update api.Update) error {
		mu.Lock()
		defer mu.Unlock()
		return encoder.Encode(update)
	}

	dispatcher := maxbot.NewDispatcher().
		Use(dedup.Middleware).
		Default(printUpdate)
	dispatcher.Metrics = mx.WithPrefix("dispatcher")
	if echo {
		dispatcher.OnMessageCreated(func(ctx context.Context, update *api.MessageCreatedUpdate) error {
			if err := printUpdate(ctx, update); err != nil {
				return err
			}

			if text := update.Message.Body.Text; text != nil && *text != "" {
				_, err := maxbot.Reply(ctx, a.client, &update.Message, *text)
				return err
			}

			return nil
		})
	}

	bot := maxbot.NewBot(a.client, maxbot.BotOptions{
		Limit:     a.config.Poll.Limit,
		Timeout:   a.config.Poll.Timeout,
		Types:     a.config.Poll.Types,
		QueueSize: a.config.Poll.Queue,
		Backoff:   a.config.Backoff,
		Markers:   markers,
		Metrics:   mx,

		MaxDecodeFailures: a.config.Poll.MaxDecodeFailures,
	})

	group, ctx := errgroup.WithContext(ctx)
	if address := a.config.Metrics.Address; address != "" {
		server := &http.Server{
			Addr:              address,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		group.Go(func() error {
			log.Infof("serve metrics [%s]: started", address)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "serve metrics")
			}

			return nil
		})

		group.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	group.Go(func() error {
		return bot.Serve(ctx, dispatcher)
	})

	err = group.Wait()
	if closeErr := bot.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

// sqlMarkers opens the configured storage and returns the marker store of the bot.
func (a *app) sqlMarkers(ctx context.Context) (*storage.SQLStorage, *storage.SQLMarkers, error) {
	db, err := storage.Open(a.config.Storage.Driver, a.config.Storage.DSN)
	if err != nil {
		return nil, nil, err
	}

	if err := db.Init(ctx); err != nil {
		_ = db.Close()
		return nil, nil, errors.Wrap(err, "init storage")
	}

	me, err := a.client.GetMe(ctx)
	if err != nil {
		_ = db.Close()
		return nil, nil, errors.Wrap(err, "get bot info")
	}

	return db, db.Markers(strconv.FormatInt(me.UserID, 10)), nil
}

func markerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marker",
		Short: "Manage the persisted polling marker.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget the polling marker so that polling resumes from the most recent updates.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if a.config.Storage.Driver == "" {
				return errors.New("storage is not configured")
			}

			ctx := cmd.Context()
			db, markers, err := a.sqlMarkers(ctx)
			if err != nil {
				return err
			}

			defer func() {
				if closeErr := db.Close(); closeErr != nil {
					err = multierror.Append(err, errors.Wrap(closeErr, "close storage"))
				}
			}()

			if err := markers.Reset(ctx); err != nil {
				return err
			}

			logx.Get("listen").Infof("reset marker [%s]: ok", a.config.Storage.Driver)
			return nil
		},
	})

	return cmd
}
