package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrompt_Text(t *testing.T) {
	assert.Equal(t, "q", Prompt{User: "q"}.Text())
	assert.Equal(t, "s", Prompt{System: "s"}.Text())
	assert.Equal(t, "s\n\nq", Prompt{System: "s", User: "q"}.Text())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate([]byte(" short \n"), 10))
	assert.Equal(t, "abc...", Truncate([]byte("abcdef"), 3))
}
