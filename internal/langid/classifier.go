package langid

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// minConfidentScore is the absolute score above which the top language
	// is accepted regardless of the runner-up.
	minConfidentScore = 1.5
	// marginRatio is how far the top score must exceed the runner-up when it
	// is below minConfidentScore.
	marginRatio = 1.5
	// marathiBoost is added when Marathi-only letters appear in Devanagari text.
	marathiBoost = 2
	// shortWordThreshold is the mean word length at or below which Latin text
	// gets an extra vote for English.
	shortWordThreshold = 4.5
)

// Score is one entry of a ranked score vector.
type Score struct {
	Language Code    `json:"language"`
	Value    float64 `json:"score"`
}

// ScoreVector accumulates votes for every concrete language.
type ScoreVector map[Code]float64

func newScoreVector() ScoreVector {
	v := make(ScoreVector, len(concrete))
	for _, c := range concrete {
		v[c] = 0
	}
	return v
}

// Ranked returns the entries sorted by descending score. Equal scores keep
// the fixed language order, so ranking is deterministic.
func (v ScoreVector) Ranked() []Score {
	out := make([]Score, 0, len(concrete))
	for _, c := range concrete {
		out = append(out, Score{Language: c, Value: v[c]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// Result is the outcome of a classification.
type Result struct {
	Language Code    `json:"language"`
	Scores   []Score `json:"scores"`
}

// Classifier scores utterances against a signal Table.
type Classifier struct {
	table *Table
}

// NewClassifier returns a classifier over t. A nil table selects DefaultTable.
func NewClassifier(t *Table) *Classifier {
	if t == nil {
		t = DefaultTable()
	}
	return &Classifier{table: t}
}

// Detect classifies text with the built-in table.
func Detect(text string) Code {
	return NewClassifier(nil).Detect(text)
}

// Detect returns the most likely concrete language of text. It never
// returns Auto; inputs without usable signal yield English.
func (c *Classifier) Detect(text string) Code {
	return c.Classify(text).Language
}

// Classify returns the chosen language along with the ranked scores that led
// to it. Scores is nil for inputs too short to score.
func (c *Classifier) Classify(text string) Result {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if utf8.RuneCountInString(normalized) < 2 {
		return Result{Language: English}
	}

	scores := c.score(text, normalized)
	return Result{Language: decide(scores, text), Scores: scores.Ranked()}
}

func (c *Classifier) score(original, normalized string) ScoreVector {
	scores := newScoreVector()

	for _, k := range c.table.keywords {
		if strings.Contains(normalized, k.Pattern) {
			scores[k.Language] += k.Weight
		}
	}

	for _, s := range c.table.scripts {
		if s.Match(original) {
			scores[s.Language] += s.Weight
		}
	}

	if DevanagariBlock.In(original) {
		for _, m := range marathiMarkers {
			if strings.Contains(original, m) {
				scores[Marathi] += marathiBoost
				break
			}
		}
	}

	if words := strings.Fields(normalized); len(words) > 0 {
		total := 0
		for _, w := range words {
			total += utf8.RuneCountInString(w)
		}
		if float64(total)/float64(len(words)) <= shortWordThreshold && IsLatin(original) {
			scores[English]++
		}
	}

	return scores
}

// decide applies the selection rules to a finished score vector.
//
// When the runner-up scores zero the margin test passes for any positive top
// score, so a single weak signal is enough to win.
func decide(scores ScoreVector, original string) Code {
	ranked := scores.Ranked()
	top, second := ranked[0], ranked[1]

	if top.Value == 0 {
		for _, f := range scriptFallback {
			if f.block.In(original) {
				return f.lang
			}
		}
		return English
	}

	if top.Value >= minConfidentScore || top.Value > second.Value*marginRatio {
		return top.Language
	}
	return English
}
