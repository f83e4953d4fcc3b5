package cmd

import (
	"fmt"

	"github.com/bnema/voxlate/internal/adapters/chatlog/jsonfile"
	chatlogrender "github.com/bnema/voxlate/internal/adapters/render/chatlog"
	"github.com/bnema/voxlate/internal/application"
	"github.com/spf13/cobra"
)

func newLogsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the chat log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.app(cmd)
			if err != nil {
				return err
			}

			chatLog, closeChatLog, err := app.openChatLog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeChatLog()

			entries, err := chatLog.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list chat log: %w", err)
			}

			if asJSON {
				if limit > 0 && len(entries) > limit {
					entries = entries[len(entries)-limit:]
				}
				return jsonfile.Encode(cmd.OutOrStdout(), entries)
			}

			rendered, err := app.logRenderer(entries, chatlogrender.RenderOptions{
				Now:       app.now(),
				Limit:     limit,
				BotSender: application.BotSender,
			})
			if err != nil {
				return fmt.Errorf("render chat log: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the newest N entries")

	return cmd
}
