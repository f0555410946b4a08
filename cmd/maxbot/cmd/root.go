package cmd

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jfk9w/maxbot"
	"github.com/jfk9w/maxbot/internal/config"
	"github.com/jfk9w/maxbot/internal/httpx"
	"github.com/jfk9w/maxbot/internal/logx"
)

type app struct {
	configPaths []string
	config      *config.Config
	client      *maxbot.Client
}

func (a *app) init(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPaths...)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	if err := logx.Configure(cfg.Log); err != nil {
		return errors.Wrap(err, "configure logging")
	}

	httpClient, err := httpx.NewClient(cfg.HTTP)
	if err != nil {
		return errors.Wrap(err, "configure http client")
	}

	client, err := maxbot.NewClient(cfg.Token, maxbot.ClientOptions{
		BaseURL:    cfg.BaseURL,
		HTTPClient: httpClient,
	})

	if err != nil {
		return errors.Wrap(err, "create client")
	}

	a.config = cfg
	a.client = client
	return nil
}

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	a := new(app)
	cmd := &cobra.Command{
		Use:   "maxbot",
		Short: "maxbot talks to the MAX bot platform API and listens for bot updates.",
		Long: `Configuration is read from YAML files passed with --config.
Every key may be overridden with an environment variable prefixed with ` + config.EnvironPrefix + `,
for example ` + config.EnvironPrefix + `TOKEN or ` + config.EnvironPrefix + `POLL_TIMEOUT.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.init,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return logx.Close() },
	}

	cmd.PersistentFlags().StringSliceVarP(&a.configPaths, "config", "c", nil, "Configuration files, later files override earlier ones")
	cmd.AddCommand(
		listenCmd(a),
		meCmd(a),
		chatsCmd(a),
		chatCmd(a),
		sendCmd(a),
		messageCmd(a),
		subscriptionsCmd(a),
		subscribeCmd(a),
		unsubscribeCmd(a),
		uploadURLCmd(a),
		markerCmd(a),
	)

	return cmd
}

func printJSON(out io.Writer, value interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
