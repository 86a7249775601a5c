package chunker

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/domain"
)

func reconstruct(segments []domain.Segment, sep string) string {
	var b strings.Builder
	for i, s := range segments {
		if i == 0 {
			b.WriteString(s.Text)
			continue
		}
		if s.Overlap == 0 {
			b.WriteString(sep)
			b.WriteString(s.Text)
			continue
		}
		b.WriteString(string([]rune(s.Text)[s.Overlap:]))
	}
	return b.String()
}

func randomLines(r *rand.Rand, count, maxLen int) []string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzéü ÄÖ0123456789.,"
	letters := []rune(alphabet)
	lines := make([]string, count)
	for i := range lines {
		n := 1 + r.Intn(maxLen)
		rs := make([]rune, n)
		for j := range rs {
			rs[j] = letters[r.Intn(len(letters))]
		}
		// No surrounding whitespace so trimming leaves lines intact.
		rs[0], rs[n-1] = 'x', 'y'
		lines[i] = string(rs)
	}
	return lines
}

func TestNewCharacterChunkerDefaults(t *testing.T) {
	c, err := NewCharacterChunker()
	require.NoError(t, err)
	assert.Equal(t, DefaultChunkSize, c.size)
	assert.Equal(t, DefaultChunkOverlap, c.overlap)
	assert.Equal(t, "\n", c.separator)
}

func TestNewCharacterChunkerRejectsLargeOverlap(t *testing.T) {
	_, err := NewCharacterChunker(WithChunkSize(100), WithOverlap(100))
	assert.Error(t, err)
}

func TestSplitRoundTrip(t *testing.T) {
	c, err := NewCharacterChunker()
	require.NoError(t, err)

	for seed := int64(1); seed <= 20; seed++ {
		r := rand.New(rand.NewSource(seed))
		text := strings.Join(randomLines(r, 50+r.Intn(200), 300), "\n")

		segments := c.Split(text)
		require.NotEmpty(t, segments)
		assert.Equal(t, text, reconstruct(segments, "\n"), "seed %d", seed)

		for i, s := range segments {
			assert.Equal(t, i, s.Index)
			assert.LessOrEqual(t, utf8.RuneCountInString(s.Text), DefaultChunkSize, "seed %d segment %d", seed, i)
			assert.LessOrEqual(t, s.Overlap, DefaultChunkOverlap)
		}
	}
}

func TestSplitOverlapSharesLines(t *testing.T) {
	c, err := NewCharacterChunker(WithChunkSize(20), WithOverlap(10))
	require.NoError(t, err)

	segments := c.Split("aaaa\nbbbb\ncccc\ndddd\neeee")
	require.Len(t, segments, 2)
	assert.Equal(t, "aaaa\nbbbb\ncccc\ndddd", segments[0].Text)
	assert.Equal(t, 0, segments[0].Overlap)
	assert.Equal(t, "cccc\ndddd\neeee", segments[1].Text)
	assert.Equal(t, len("cccc\ndddd"), segments[1].Overlap)
}

func TestSplitNeverSplitsLongLine(t *testing.T) {
	c, err := NewCharacterChunker(WithChunkSize(50), WithOverlap(10))
	require.NoError(t, err)

	long := strings.Repeat("z", 120)
	segments := c.Split("short one\n" + long + "\nshort two")

	var found bool
	for _, s := range segments {
		if strings.Contains(s.Text, long) {
			found = true
			assert.Equal(t, long, s.Text)
		}
		if s.Text != long {
			assert.LessOrEqual(t, utf8.RuneCountInString(s.Text), 50)
		}
	}
	assert.True(t, found)
	assert.Equal(t, "short one\n"+long+"\nshort two", reconstruct(segments, "\n"))
}

func TestSplitDropsBlankPieces(t *testing.T) {
	c, err := NewCharacterChunker()
	require.NoError(t, err)

	segments := c.Split("\n\n  first\n\n\nsecond  \n")
	require.Len(t, segments, 1)
	assert.Equal(t, "first\nsecond", segments[0].Text)
}

func TestSplitEmptyInput(t *testing.T) {
	c, err := NewCharacterChunker()
	require.NoError(t, err)
	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Split("\n \n"))
}

func TestSplitIsDeterministic(t *testing.T) {
	c, err := NewCharacterChunker(WithChunkSize(100), WithOverlap(30))
	require.NoError(t, err)
	r := rand.New(rand.NewSource(7))
	text := strings.Join(randomLines(r, 80, 60), "\n")
	assert.Equal(t, c.Split(text), c.Split(text))
}

func TestSplitCountsRunesNotBytes(t *testing.T) {
	c, err := NewCharacterChunker(WithChunkSize(10), WithOverlap(0))
	require.NoError(t, err)

	// Ten two-byte runes fit exactly into one segment.
	segments := c.Split("éééééééééé")
	require.Len(t, segments, 1)
	assert.Equal(t, "éééééééééé", segments[0].Text)
}
