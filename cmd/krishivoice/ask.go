package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/krishivoice/internal/message"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var (
		lang   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask the assistant one question",
		Long: `Ask the configured assistant backend one question and print the reply.
Useful to check API keys and prompts without starting the daemon.

Examples:
  krishivoice ask "how do I improve clay soil"
  krishivoice ask --lang ta-IN "நெல் பயிருக்கு எவ்வளவு தண்ணீர்"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			asst := newAssistant(cfg)
			defer asst.Close()

			reply, err := asst.Handle(cmd.Context(), message.NewQuery("cli", strings.Join(args, " "), lang))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(reply)
			}
			_, _ = fmt.Fprintf(out, "[%s, %s via %s]\n", reply.Language, reply.Mode, asst.Backend())
			_, err = fmt.Fprintln(out, reply.Text)
			return err
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "auto", "reply language code, or auto to detect it")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full reply as JSON")
	return cmd
}
