// Package tts defines the interface for text-to-speech synthesis.
//
// KrishiVoice uses TTS to read the assistant's answer aloud in the reply
// language, so a farmer can ask by voice and hear the advice back.
package tts

import (
	"context"
	"sort"

	"golang.org/x/text/language"
)

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is the BCP-47 tag of the text (e.g., "hi-IN").
	Language string

	// Voice overrides automatic language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Synthesize generates audio from the given text.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// Audio is the synthesized audio as a WAV file.
	Audio []byte

	// ContentType is the MIME type of the audio (e.g., "audio/wav").
	ContentType string

	// SampleRate is the audio sample rate in Hz (e.g., 22050).
	SampleRate int

	// Channels is the number of audio channels (typically 1).
	Channels int
}

// SelectVoice picks the voice tag to use for lang out of the available
// voice tags: an exact match, else a voice of the same base language,
// else any voice. The last resort prefers English, and ties resolve
// lexically so the choice is stable. ok is false only when available is empty.
func SelectVoice(available []string, lang string) (tag string, ok bool) {
	if len(available) == 0 {
		return "", false
	}
	sorted := append([]string(nil), available...)
	sort.Strings(sorted)

	want := language.Make(lang)
	wantBase, _ := want.Base()
	englishBase, _ := language.English.Base()
	for _, v := range sorted {
		if language.Make(v) == want {
			return v, true
		}
	}
	for _, v := range sorted {
		if b, _ := language.Make(v).Base(); b == wantBase {
			return v, true
		}
	}
	for _, v := range sorted {
		if b, _ := language.Make(v).Base(); b == englishBase {
			return v, true
		}
	}
	return sorted[0], true
}
