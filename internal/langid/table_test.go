package langid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	require.Same(t, table, DefaultTable())

	byPattern := map[string]KeywordSignal{}
	for _, k := range table.Keywords() {
		byPattern[k.Pattern] = k
	}

	assert.Equal(t, KeywordSignal{Pattern: "hello", Language: English, Weight: 3}, byPattern["hello"])
	assert.Equal(t, KeywordSignal{Pattern: "namaste", Language: Hindi, Weight: 3}, byPattern["namaste"])
	assert.Equal(t, KeywordSignal{Pattern: "sat sri akal", Language: Punjabi, Weight: 3}, byPattern["sat sri akal"])
	assert.Equal(t, 1.0, byPattern["namaste_gu"].Weight)
}

func TestTable_KeywordsReturnsCopy(t *testing.T) {
	table := DefaultTable()
	kw := table.Keywords()
	kw[0].Weight = 100

	assert.NotEqual(t, 100.0, table.Keywords()[0].Weight)
}

func TestLoadKeywords(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		kw, err := LoadKeywords(strings.NewReader("ta-IN:\n  vanakkam: 3\n  nandri: 2\nen-IN:\n  hello: 3\n"))
		require.NoError(t, err)
		assert.Equal(t, []KeywordSignal{
			{Pattern: "hello", Language: English, Weight: 3},
			{Pattern: "nandri", Language: Tamil, Weight: 2},
			{Pattern: "vanakkam", Language: Tamil, Weight: 3},
		}, kw)
	})

	t.Run("unknown language", func(t *testing.T) {
		_, err := LoadKeywords(strings.NewReader("fr-FR:\n  bonjour: 3\n"))
		require.ErrorIs(t, err, ErrUnknownLanguage)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := LoadKeywords(strings.NewReader("- not a map"))
		require.Error(t, err)
	})
}

func TestNewTable_Validation(t *testing.T) {
	_, err := NewTable([]KeywordSignal{{Pattern: "x", Language: Hindi, Weight: 0}}, nil)
	assert.Error(t, err)

	_, err = NewTable([]KeywordSignal{{Pattern: "x", Language: Auto, Weight: 1}}, nil)
	assert.ErrorIs(t, err, ErrUnknownLanguage)

	_, err = NewTable(nil, []ScriptSignal{{Name: "broken", Language: Hindi}})
	assert.Error(t, err)

	table, err := NewTable([]KeywordSignal{{Pattern: "KISAN", Language: Hindi, Weight: 2}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "kisan", table.Keywords()[0].Pattern)
}

func TestBlock_In(t *testing.T) {
	assert.True(t, TamilBlock.In("abc வ"))
	assert.False(t, TamilBlock.In("abc"))
	assert.True(t, DevanagariBlock.In("ळ"))
	assert.False(t, DevanagariBlock.In(""))
}

func TestIsLatin(t *testing.T) {
	assert.True(t, IsLatin("Hello, how are you?"))
	assert.True(t, IsLatin("crop 42!"))
	assert.False(t, IsLatin("well-known"))
	assert.False(t, IsLatin("नमस्ते"))
	assert.False(t, IsLatin(""))
}
