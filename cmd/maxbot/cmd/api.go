package cmd

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jfk9w/maxbot"
	"github.com/jfk9w/maxbot/api"
)

func meCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Print bot info.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := a.client.GetMe(cmd.Context())
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), info)
		},
	}
}

func chatsCmd(a *app) *cobra.Command {
	var (
		count  int
		marker int64
	)

	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List group chats and channels the bot participates in.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var page *int64
			if cmd.Flags().Changed("marker") {
				page = &marker
			}

			chats, err := a.client.GetChats(cmd.Context(), count, page)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), chats)
		},
	}

	cmd.Flags().IntVar(&count, "count", 50, "Number of chats to return")
	cmd.Flags().Int64Var(&marker, "marker", 0, "Page marker returned with the previous page")
	return cmd
}

func chatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <chat-id|link>",
		Short: "Print chat info by its identifier or public link.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				chat *api.Chat
				err  error
			)

			if chatID, parseErr := strconv.ParseInt(args[0], 10, 64); parseErr == nil {
				chat, err = a.client.GetChat(cmd.Context(), chatID)
			} else {
				chat, err = a.client.GetChatByLink(cmd.Context(), args[0])
			}

			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), chat)
		},
	}
}

func sendCmd(a *app) *cobra.Command {
	var (
		chatID int64
		userID int64
		format string
		notify bool
		reply  string
	)

	cmd := &cobra.Command{
		Use:   "send <text>",
		Short: "Send a text message to a chat or a user.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target maxbot.Target
			switch {
			case chatID != 0 && userID != 0:
				return errors.New("only one of --chat and --user may be set")
			case chatID != 0:
				target = maxbot.ToChat(chatID)
			case userID != 0:
				target = maxbot.ToUser(userID)
			default:
				return errors.New("one of --chat and --user is required")
			}

			body := api.NewMessage(args[0]).
				SetFormat(api.TextFormat(format)).
				SetNotify(notify)
			if reply != "" {
				body.LinkTo(api.Reply, reply)
			}

			message, err := a.client.SendMessage(cmd.Context(), target, body)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), message)
		},
	}

	cmd.Flags().Int64Var(&chatID, "chat", 0, "Chat ID")
	cmd.Flags().Int64Var(&userID, "user", 0, "User ID")
	cmd.Flags().StringVar(&format, "format", string(api.Markdown), "Text format: markdown or html")
	cmd.Flags().BoolVar(&notify, "notify", false, "Notify chat participants")
	cmd.Flags().StringVar(&reply, "reply", "", "Message ID to reply to")
	return cmd
}

func messageCmd(a *app) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "message <message-id>",
		Short: "Print or delete a message.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remove {
				result, err := a.client.DeleteMessage(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), result)
			}

			message, err := a.client.GetMessage(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), message)
		},
	}

	cmd.Flags().BoolVar(&remove, "delete", false, "Delete the message")
	return cmd
}

func subscriptionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subscriptions",
		Short: "List webhook subscriptions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			subscriptions, err := a.client.GetSubscriptions(cmd.Context())
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), subscriptions)
		},
	}
}

func subscribeCmd(a *app) *cobra.Command {
	var (
		types  []string
		secret string
	)

	cmd := &cobra.Command{
		Use:   "subscribe <url>",
		Short: "Subscribe a webhook to bot updates. Long polling stops working while subscribed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &api.SubscriptionRequest{URL: args[0], UpdateTypes: types}
			if secret != "" {
				req.Secret = &secret
			}

			result, err := a.client.Subscribe(cmd.Context(), req)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringSliceVar(&types, "types", nil, "Update types to deliver")
	cmd.Flags().StringVar(&secret, "secret", "", "Secret sent with every webhook request")
	return cmd
}

func unsubscribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe <url>",
		Short: "Remove a webhook subscription.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client.Unsubscribe(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func uploadURLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "upload-url <image|video|audio|file>",
		Short:     "Obtain an upload URL for a media type.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(api.UploadImage), string(api.UploadVideo), string(api.UploadAudio), string(api.UploadFile)},
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint, err := a.client.GetUploadURL(cmd.Context(), api.UploadType(args[0]))
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), endpoint)
		},
	}
}
