package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nadzzz/krishivoice/internal/langid"
)

func newDetectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "detect [text...]",
		Short: "Detect the language of a text",
		Long: `Detect the language of the given text. Without arguments every line of
standard input is classified.

Examples:
  krishivoice detect "मिट्टी की जांच कैसे करें"
  krishivoice detect --json "வணக்கம்"
  cat queries.txt | krishivoice detect`,
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier := langid.NewClassifier(nil)
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				return printDetection(out, classifier.Classify(strings.Join(args, " ")), asJSON)
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if err := printDetection(out, classifier.Classify(line), asJSON); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result and ranked scores as JSON")
	return cmd
}

func printDetection(w io.Writer, res langid.Result, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(res)
	}
	_, err := fmt.Fprintf(w, "%s\t%s\n", res.Language, res.Language.Label())
	return err
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", langid.Auto, langid.Auto.Label())
			for _, c := range langid.Concrete() {
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", c, c.Label())
			}
			return tw.Flush()
		},
	}
}
