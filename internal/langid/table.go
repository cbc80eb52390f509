package langid

import (
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultKeywords []byte

// KeywordSignal is a short token that is a reliable marker for one language.
type KeywordSignal struct {
	Pattern  string
	Language Code
	Weight   float64
}

// Predicate reports whether a script signal fires for the given text.
type Predicate func(text string) bool

// ScriptSignal adds Weight to Language when Match holds for the original,
// un-normalised utterance.
type ScriptSignal struct {
	Name     string
	Language Code
	Weight   float64
	Match    Predicate
}

// Block is an inclusive Unicode code point range.
type Block struct {
	Lo, Hi rune
}

// In reports whether any rune of s falls inside the block.
func (b Block) In(s string) bool {
	for _, r := range s {
		if r >= b.Lo && r <= b.Hi {
			return true
		}
	}
	return false
}

var (
	DevanagariBlock = Block{0x0900, 0x097F}
	BengaliBlock    = Block{0x0980, 0x09FF}
	GurmukhiBlock   = Block{0x0A00, 0x0A7F}
	GujaratiBlock   = Block{0x0A80, 0x0AFF}
	OriyaBlock      = Block{0x0B00, 0x0B7F}
	TamilBlock      = Block{0x0B80, 0x0BFF}
	TeluguBlock     = Block{0x0C00, 0x0C7F}
	KannadaBlock    = Block{0x0C80, 0x0CFF}
	MalayalamBlock  = Block{0x0D00, 0x0D7F}
)

var latinOnly = regexp.MustCompile(`^[a-zA-Z\s\d.,!?]+$`)

// IsLatin reports whether s consists solely of ASCII letters, digits,
// whitespace and basic sentence punctuation.
func IsLatin(s string) bool { return latinOnly.MatchString(s) }

// marathiMarkers are Devanagari letters that occur in Marathi but not in
// standard Hindi orthography.
var marathiMarkers = []string{"ळ", "ऱ", "झ"}

// scriptFallback is consulted, in order, when no signal fired at all.
var scriptFallback = []struct {
	block Block
	lang  Code
}{
	{BengaliBlock, Bengali},
	{TamilBlock, Tamil},
	{TeluguBlock, Telugu},
	{GujaratiBlock, Gujarati},
	{KannadaBlock, Kannada},
	{MalayalamBlock, Malayalam},
	{GurmukhiBlock, Punjabi},
	{OriyaBlock, Odia},
	{DevanagariBlock, Hindi},
}

// DefaultScripts returns the script signals for every supported block.
// Devanagari is weighted below the other scripts because it is shared by
// Hindi and Marathi.
func DefaultScripts() []ScriptSignal {
	return []ScriptSignal{
		{Name: "latin", Language: English, Weight: 1, Match: IsLatin},
		{Name: "devanagari", Language: Hindi, Weight: 1.5, Match: DevanagariBlock.In},
		{Name: "tamil", Language: Tamil, Weight: 2, Match: TamilBlock.In},
		{Name: "telugu", Language: Telugu, Weight: 2, Match: TeluguBlock.In},
		{Name: "bengali", Language: Bengali, Weight: 2, Match: BengaliBlock.In},
		{Name: "gujarati", Language: Gujarati, Weight: 2, Match: GujaratiBlock.In},
		{Name: "kannada", Language: Kannada, Weight: 2, Match: KannadaBlock.In},
		{Name: "malayalam", Language: Malayalam, Weight: 2, Match: MalayalamBlock.In},
		{Name: "gurmukhi", Language: Punjabi, Weight: 2, Match: GurmukhiBlock.In},
		{Name: "oriya", Language: Odia, Weight: 2, Match: OriyaBlock.In},
	}
}

// Table is the immutable signal configuration a Classifier scores against.
type Table struct {
	keywords []KeywordSignal
	scripts  []ScriptSignal
}

// NewTable copies the given signals into a new Table. Keyword patterns are
// lower-cased so matching against normalised text is case-insensitive.
func NewTable(keywords []KeywordSignal, scripts []ScriptSignal) (*Table, error) {
	t := &Table{
		keywords: make([]KeywordSignal, 0, len(keywords)),
		scripts:  make([]ScriptSignal, 0, len(scripts)),
	}
	for _, k := range keywords {
		if k.Pattern == "" {
			return nil, fmt.Errorf("keyword for %s: empty pattern", k.Language)
		}
		if !k.Language.IsConcrete() {
			return nil, fmt.Errorf("keyword %q: %w: %s", k.Pattern, ErrUnknownLanguage, k.Language)
		}
		if k.Weight <= 0 {
			return nil, fmt.Errorf("keyword %q: weight must be positive, got %v", k.Pattern, k.Weight)
		}
		k.Pattern = strings.ToLower(k.Pattern)
		t.keywords = append(t.keywords, k)
	}
	for _, s := range scripts {
		if s.Match == nil || !s.Language.IsConcrete() {
			return nil, fmt.Errorf("script signal %q is incomplete", s.Name)
		}
		t.scripts = append(t.scripts, s)
	}
	return t, nil
}

// Keywords returns a copy of the keyword signals.
func (t *Table) Keywords() []KeywordSignal {
	out := make([]KeywordSignal, len(t.keywords))
	copy(out, t.keywords)
	return out
}

// LoadKeywords parses a YAML document mapping language codes to
// pattern/weight pairs.
func LoadKeywords(r io.Reader) ([]KeywordSignal, error) {
	var doc map[Code]map[string]float64
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding keyword table: %w", err)
	}

	var out []KeywordSignal
	for _, lang := range concrete {
		patterns := doc[lang]
		keys := make([]string, 0, len(patterns))
		for p := range patterns {
			keys = append(keys, p)
		}
		sort.Strings(keys)
		for _, p := range keys {
			out = append(out, KeywordSignal{Pattern: p, Language: lang, Weight: patterns[p]})
		}
		delete(doc, lang)
	}
	for lang := range doc {
		return nil, fmt.Errorf("keyword table: %w: %s", ErrUnknownLanguage, lang)
	}
	return out, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// DefaultTable returns the built-in signal table. It is parsed once.
func DefaultTable() *Table {
	defaultOnce.Do(func() {
		kw, err := LoadKeywords(strings.NewReader(string(defaultKeywords)))
		if err != nil {
			panic(fmt.Sprintf("langid: embedded keyword table: %v", err))
		}
		t, err := NewTable(kw, DefaultScripts())
		if err != nil {
			panic(fmt.Sprintf("langid: embedded keyword table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}
