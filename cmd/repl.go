package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const replSender = "repl"

func newReplCmd(opts *rootOptions) *cobra.Command {
	var record bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Chat with the bot from the terminal",
		Long:  "repl reads one message per line and prints the reply the bot would send. Type exit or press Ctrl-D to leave.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.app(cmd)
			if err != nil {
				return err
			}

			var chatLog ports.ChatLog = discardChatLog{}
			if record {
				opened, closeChatLog, err := app.openChatLog(cmd.Context())
				if err != nil {
					return err
				}
				defer closeChatLog()
				chatLog = opened
			}

			dispatcher := app.newDispatcher(app.newTranslator(), nil, chatLog)

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "voxlate> ",
				HistoryFile:     replHistoryPath(),
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				Stdin:           io.NopCloser(cmd.InOrStdin()),
				Stdout:          cmd.OutOrStdout(),
				Stderr:          cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("start line editor: %w", err)
			}
			defer rl.Close()

			return runREPL(cmd.Context(), rl, cmd.OutOrStdout(), dispatcher, time.Now)
		},
	}

	cmd.Flags().BoolVar(&record, "log", false, "Record the conversation in the configured chat log")

	return cmd
}

type lineReader interface {
	Readline() (string, error)
}

type replDispatcher interface {
	Dispatch(ctx context.Context, event domain.InboundEvent, fetcher ports.AudioFetcher) (domain.Reply, bool)
}

func runREPL(ctx context.Context, in lineReader, out io.Writer, dispatcher replDispatcher, now func() time.Time) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		reply, ok := dispatcher.Dispatch(ctx, domain.InboundEvent{
			ID:        uuid.NewString(),
			Sender:    replSender,
			Timestamp: now(),
			Text:      line,
		}, nil)
		if !ok {
			continue
		}

		if _, err := fmt.Fprintln(out, reply.Text); err != nil {
			return err
		}
	}
}

func replHistoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "voxlate", "repl_history")
}

type discardChatLog struct{}

func (discardChatLog) Append(context.Context, domain.LogEntry) error {
	return nil
}

func (discardChatLog) List(context.Context) ([]domain.LogEntry, error) {
	return nil, nil
}
