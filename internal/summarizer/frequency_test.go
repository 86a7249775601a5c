package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeKeepsOriginalOrder(t *testing.T) {
	text := "Rockets burn fuel. The weather was mild. Rockets need fuel to reach orbit. Fuel is stored in tanks on rockets."
	s := NewFrequencySummarizer()

	got, err := s.Summarize(text, 2)
	require.NoError(t, err)
	assert.Equal(t, "Rockets burn fuel. Rockets need fuel to reach orbit.", got)
}

func TestSummarizeShortInputs(t *testing.T) {
	s := NewFrequencySummarizer()

	got, err := s.Summarize("  no terminal punctuation here  ", 3)
	require.NoError(t, err)
	assert.Equal(t, "no terminal punctuation here", got)

	got, err = s.Summarize("One sentence only.", 5)
	require.NoError(t, err)
	assert.Equal(t, "One sentence only.", got)
}

func TestSummarizeDefaultCount(t *testing.T) {
	text := "Alpha beta. Alpha gamma. Alpha delta. Alpha epsilon."
	got, err := NewFrequencySummarizer().Summarize(text, 0)
	require.NoError(t, err)
	assert.Len(t, splitSentences(got), DefaultMaxSentences)
}

func splitSentences(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '.' {
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	return out
}
