package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/spf13/cobra"
)

func newTranslateCmd(opts *rootOptions) *cobra.Command {
	var from string
	var to string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "translate <text...>",
		Short: "Translate text once, the way the bot would",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd)
			if err != nil {
				return err
			}

			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("nothing to translate")
			}

			target := domain.NormalizeLanguage(to)
			if target == "" {
				target = domain.NormalizeLanguage(app.cfg.TargetLanguage)
			}

			source := domain.NormalizeLanguage(from)
			if source == "" {
				source = domain.NormalizeLanguage(app.newDetector().Detect(text))
			}
			if source != "" && domain.SameLanguage(source, target) {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			}

			translator := app.newTranslator()
			var translation domain.Translation
			work := func(ctx context.Context) error {
				var err error
				translation, err = translator.Translate(ctx, text, source, target)
				return err
			}

			if quiet {
				err = work(cmd.Context())
			} else {
				err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Translating...", work)
			}
			if err != nil {
				return fmt.Errorf("translate: %w", err)
			}

			if domain.SameLanguage(translation.SourceLang, target) {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), translation.Text)
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source language (default: detect)")
	cmd.Flags().StringVar(&to, "to", "", "Target language (default: target_language from config)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show a spinner")

	return cmd
}
