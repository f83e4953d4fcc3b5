package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "voxlate",
		Short:         "Chat translation bot: translates text and voice messages into one target language",
		Long:          "voxlate keeps a chat session alive, detects the language of every incoming text or voice message, translates it into the configured target language and replies in the same conversation.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.toml (default: search $XDG_CONFIG_HOME/voxlate, ~/.config/voxlate, .)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(opts),
		newTranslateCmd(opts),
		newTranscribeCmd(opts),
		newLogsCmd(opts),
		newReplCmd(opts),
		newConfigCmd(opts),
	)

	return rootCmd
}
