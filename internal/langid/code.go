// Package langid identifies which supported Indian-subcontinent language (or
// English) an utterance is written in.
//
// Classification is a weighted vote over curated keyword markers and Unicode
// script blocks. It is deterministic and keeps no state between calls.
package langid

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Code is a BCP-47 language tag understood by browser and cloud speech
// engines (e.g. "hi-IN"), or Auto.
type Code string

const (
	// Auto asks the caller's pipeline to detect the language. It is only ever
	// an input preference and is never returned by detection.
	Auto Code = "auto"

	English   Code = "en-IN"
	Hindi     Code = "hi-IN"
	Tamil     Code = "ta-IN"
	Telugu    Code = "te-IN"
	Bengali   Code = "bn-IN"
	Gujarati  Code = "gu-IN"
	Kannada   Code = "kn-IN"
	Malayalam Code = "ml-IN"
	Marathi   Code = "mr-IN"
	Punjabi   Code = "pa-IN"
	Odia      Code = "or-IN"
	Assamese  Code = "as-IN"
)

// ErrUnknownLanguage is returned by Parse for tags outside the supported set.
var ErrUnknownLanguage = errors.New("unknown language")

// concrete lists every detectable code. The order doubles as the tie-break
// order when two languages end up with the same score.
var concrete = []Code{
	English, Hindi, Tamil, Telugu, Bengali, Gujarati,
	Kannada, Malayalam, Marathi, Punjabi, Odia, Assamese,
}

var labels = map[Code]string{
	Auto:      "Auto Detect",
	English:   "English",
	Hindi:     "हिंदी (Hindi)",
	Tamil:     "தமிழ் (Tamil)",
	Telugu:    "తెలుగు (Telugu)",
	Bengali:   "বাংলা (Bengali)",
	Gujarati:  "ગુજરાતી (Gujarati)",
	Kannada:   "ಕನ್ನಡ (Kannada)",
	Malayalam: "മലയാളം (Malayalam)",
	Marathi:   "मराठी (Marathi)",
	Punjabi:   "ਪੰਜਾਬੀ (Punjabi)",
	Odia:      "ଓଡ଼ିଆ (Odia)",
	Assamese:  "অসমীয়া (Assamese)",
}

var names = map[Code]string{
	English:   "English",
	Hindi:     "Hindi",
	Tamil:     "Tamil",
	Telugu:    "Telugu",
	Bengali:   "Bengali",
	Gujarati:  "Gujarati",
	Kannada:   "Kannada",
	Malayalam: "Malayalam",
	Marathi:   "Marathi",
	Punjabi:   "Punjabi",
	Odia:      "Odia",
	Assamese:  "Assamese",
}

// Concrete returns the detectable codes in tie-break order.
func Concrete() []Code {
	out := make([]Code, len(concrete))
	copy(out, concrete)
	return out
}

// IsConcrete reports whether c is one of the detectable languages.
func (c Code) IsConcrete() bool {
	_, ok := names[c]
	return ok
}

// Label returns the native display name shown in language pickers.
func (c Code) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// Name returns the English name of the language (e.g. "Tamil").
func (c Code) Name() string {
	if n, ok := names[c]; ok {
		return n
	}
	return string(c)
}

// Base returns the ISO-639-1 base language ("hi" for "hi-IN").
func (c Code) Base() string {
	if c == Auto || c == "" {
		return ""
	}
	base, _ := language.Make(string(c)).Base()
	return base.String()
}

// Tag returns the x/text language tag for c.
func (c Code) Tag() language.Tag {
	if c == Auto || c == "" {
		return language.Und
	}
	return language.Make(string(c))
}

func (c Code) String() string { return string(c) }

// Parse normalises a user supplied tag. It accepts "auto", full tags in any
// case ("HI-in") and bare base languages ("ta").
func Parse(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(Auto)) {
		return Auto, nil
	}
	if s == "" {
		return "", fmt.Errorf("%w: empty tag", ErrUnknownLanguage)
	}

	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnknownLanguage, s, err)
	}
	base, _ := tag.Base()
	for _, c := range concrete {
		if c.Base() == base.String() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}
