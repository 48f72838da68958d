package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/config"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

func TestExtractLinks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "no links", text: "nothing to see", want: nil},
		{name: "trailing punctuation", text: "read https://go.dev/doc.", want: []string{"https://go.dev/doc"}},
		{name: "www prefix", text: "www.example.com is up", want: []string{"www.example.com"}},
		{name: "deduplicated", text: "http://a.io http://a.io http://b.io", want: []string{"http://a.io", "http://b.io"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractLinks(tt.text))
		})
	}
}

func TestExtractEmojis(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "plain text", text: "hello", want: nil},
		{name: "duplicates preserved", text: "😂😂 ok 🔥", want: []string{"😂", "😂", "🔥"}},
		{name: "skin tone dropped", text: "👍🏽", want: []string{"👍"}},
		{name: "misc symbols", text: "☀ and ⭐", want: []string{"☀", "⭐"}},
		{name: "flag is one glyph", text: "Go India 🇮🇳!", want: []string{"🇮🇳"}},
		{name: "zwj family is one glyph", text: "family 👨\u200d👩\u200d👧", want: []string{"👨\u200d👩\u200d👧"}},
		{name: "variation selector dropped", text: "love ❤\ufe0f", want: []string{"❤"}},
		{name: "keycap", text: "pick 1\ufe0f\u20e3", want: []string{"1\u20e3"}},
		{name: "bare digits and marks", text: "1# ✓ ❶ © 2024", want: nil},
		{name: "emoji presentation copyright", text: "\u00a9\ufe0f", want: []string{"\u00a9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEmojis(tt.text))
		})
	}
}

func TestEngine_EmojiTableCountsGlyphs(t *testing.T) {
	engine, conv := prepare(t, models.ChatLog{Records: []models.MessageRecord{
		at(0, "Alice", "Go India 🇮🇳 family 👨\u200d👩\u200d👧"),
	}})

	table, err := engine.EmojiTable(models.AllParticipants(), conv)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Total)
	assert.ElementsMatch(t, []models.EmojiCount{
		{Emoji: "🇮🇳", Count: 1},
		{Emoji: "👨\u200d👩\u200d👧", Count: 1},
	}, table.Counts)
}

func TestEngine_Tokenize(t *testing.T) {
	policy := config.DefaultPolicy()
	policy.StopWords = []string{"Pizza"}
	engine := New(policy)

	tokens := engine.Tokenize("The PIZZA at https://food.io was GREAT, wasn't it? 2024 rocks!!")
	assert.Equal(t, []string{"great", "wasn't", "rocks"}, tokens)
}

func TestEngine_MostCommonWords(t *testing.T) {
	engine, conv := prepare(t, models.ChatLog{Records: []models.MessageRecord{
		at(0, "Alice", "coffee tea coffee"),
		at(1, "Bob", "tea biscuits"),
		at(2, "Alice", "biscuits coffee"),
		at(3, "Bob", "cake"),
	}})

	words, err := engine.MostCommonWords(models.AllParticipants(), conv)
	require.NoError(t, err)
	assert.Equal(t, []models.WordCount{
		{Word: "coffee", Count: 3},
		{Word: "tea", Count: 2},
		{Word: "biscuits", Count: 2},
		{Word: "cake", Count: 1},
	}, words)

	cloud, err := engine.WordCloud(models.AllParticipants(), conv)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cloud["coffee"])
	assert.InDelta(t, 2.0/3.0, cloud["tea"], 1e-9)
}

func TestEngine_MostCommonWordsCapsAtTopWords(t *testing.T) {
	policy := config.DefaultPolicy()
	policy.TopWords = 2
	engine := New(policy)
	conv, err := engine.Prepare(models.ChatLog{Records: []models.MessageRecord{
		at(0, "Alice", "alpha beta gamma delta"),
	}})
	require.NoError(t, err)

	words, err := engine.MostCommonWords(models.AllParticipants(), conv)
	require.NoError(t, err)
	assert.Len(t, words, 2)
	assert.Equal(t, "alpha", words[0].Word)
}

func TestEngine_EmojiTableOrdering(t *testing.T) {
	engine, conv := prepare(t, models.ChatLog{Records: []models.MessageRecord{
		at(0, "Alice", "🔥😂"),
		at(1, "Bob", "😂🎉"),
		at(2, "Alice", "🔥🎉😂"),
	}})

	emojis, err := engine.EmojiTable(models.AllParticipants(), conv)
	require.NoError(t, err)
	assert.Equal(t, 7, emojis.Total)
	require.Len(t, emojis.Counts, 3)
	assert.Equal(t, models.EmojiCount{Emoji: "😂", Count: 3}, emojis.Counts[0])
	// equal counts fall back to glyph order
	assert.Equal(t, "🎉", emojis.Counts[1].Emoji)
	assert.Equal(t, "🔥", emojis.Counts[2].Emoji)
}
