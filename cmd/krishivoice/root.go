package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nadzzz/krishivoice/internal/config"
)

type rootOptions struct {
	configFile string
}

// load reads the configuration and sends logs to logs.
func (o *rootOptions) load(logs io.Writer) (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	config.SetupLogging(logs, cfg.Logging)
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "krishivoice",
		Short: "Multilingual voice assistant for farmers",
		Long: `KrishiVoice detects which Indian language a farmer is speaking, runs speech
recognition sessions and answers agricultural questions in that language.

Examples:
  krishivoice serve --config configs/krishivoice.yaml
  krishivoice detect "மண் பரிசோதனை எப்படி"
  krishivoice ask --lang hi-IN "gehun mein keede lag gaye"`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "",
		"config file (default is search in ., ./configs, /etc/krishivoice)")

	root.AddCommand(
		newServeCmd(opts),
		newDetectCmd(),
		newAskCmd(opts),
		newLanguagesCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "krishivoice %s\n", version)
		},
	}
}
