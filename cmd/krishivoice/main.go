// KrishiVoice is a multilingual voice assistant for farmers. It detects which
// Indian language a farmer is speaking, runs speech recognition sessions
// (re-listening in the detected language when unsure) and answers
// agricultural questions in that language.
//
// Usage:
//
//	krishivoice serve [--config /path/to/krishivoice.yaml]
//	krishivoice detect "மண் பரிசோதனை எப்படி"
//	krishivoice ask --lang hi-IN "gehun mein keede"
//	krishivoice languages
package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
