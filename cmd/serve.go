package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/bnema/voxlate/internal/adapters/httpapi"
	"github.com/bnema/voxlate/internal/application"
	"github.com/bnema/voxlate/internal/ports"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot session and the health endpoint until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.app(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			chatLog, closeChatLog, err := app.openChatLog(ctx)
			if err != nil {
				return err
			}
			defer closeChatLog()

			pipeline, err := app.newTranscriptionPipeline()
			if err != nil {
				return err
			}

			dialer, err := app.newDialer()
			if err != nil {
				return err
			}

			creds, err := app.newCredentialStore()
			if err != nil {
				return err
			}

			dispatcher := app.newDispatcher(app.newTranslator(), pipeline, chatLog)
			sessions := application.NewSessionManager(dialer, creds, dispatcher, ports.SystemClock{}, app.logger, application.SessionConfig{
				MessageTimeout: app.cfg.Session.MessageTimeout,
				NewBackOff:     application.ExponentialReconnect(app.cfg.Session.ReconnectInitial, app.cfg.Session.ReconnectMax),
			})

			addr := net.JoinHostPort("", strconv.Itoa(app.cfg.HTTP.Port))
			server := httpapi.NewServer(addr, func() string { return sessions.State().String() }, app.logger)

			app.watchLogLevel()
			app.logger.Info("starting bot",
				"transport", app.cfg.Session.Transport,
				"target", dispatcher.TargetLanguage(),
				"chatlog", app.cfg.ChatLog.Backend,
				"transcriber", app.cfg.Transcription.Backend,
			)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return sessions.Run(gctx)
			})
			g.Go(func() error {
				return server.ListenAndServe(gctx)
			})

			if err := g.Wait(); err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			app.logger.Info("bot stopped")
			return nil
		},
	}
}
