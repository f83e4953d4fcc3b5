package cmd

import (
	"fmt"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/spf13/cobra"
)

func newTranscribeCmd(opts *rootOptions) *cobra.Command {
	var translate bool

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Convert and transcribe a local audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd)
			if err != nil {
				return err
			}

			pipeline, err := app.newTranscriptionPipeline()
			if err != nil {
				return err
			}

			transcript, err := pipeline.TranscribeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if _, err := fmt.Fprintln(cmd.OutOrStdout(), transcript); err != nil {
				return err
			}
			if !translate {
				return nil
			}

			target := domain.NormalizeLanguage(app.cfg.TargetLanguage)
			source := domain.NormalizeLanguage(app.newDetector().Detect(transcript))
			if source != "" && domain.SameLanguage(source, target) {
				return nil
			}

			translation, err := app.newTranslator().Translate(cmd.Context(), transcript, source, target)
			if err != nil {
				return fmt.Errorf("translate transcript: %w", err)
			}
			if domain.SameLanguage(translation.SourceLang, target) {
				return nil
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), translation.Text)
			return err
		},
	}

	cmd.Flags().BoolVar(&translate, "translate", false, "Also translate the transcript into the target language")

	return cmd
}
