package analytics

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

var urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"]+`)

var defaultStopWords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any", "are",
	"as", "at", "be", "because", "been", "before", "being", "below", "between", "both", "but",
	"by", "can", "could", "did", "do", "does", "doing", "down", "during", "each", "few", "for",
	"from", "further", "had", "has", "have", "having", "he", "her", "here", "hers", "herself",
	"him", "himself", "his", "how", "i", "i'm", "if", "in", "into", "is", "it", "it's", "its",
	"itself", "just", "me", "more", "most", "my", "myself", "no", "nor", "not", "now", "of",
	"off", "on", "once", "only", "or", "other", "our", "ours", "ourselves", "out", "over", "own",
	"same", "she", "should", "so", "some", "such", "than", "that", "the", "their", "theirs",
	"them", "themselves", "then", "there", "these", "they", "this", "those", "through", "to",
	"too", "under", "until", "up", "very", "was", "we", "were", "what", "when", "where", "which",
	"while", "who", "whom", "why", "will", "with", "would", "you", "you're", "your", "yours",
	"yourself", "yourselves", "u", "ur", "im", "dont", "don't", "ok", "okay", "yeah", "yes",
	"media", "omitted", "deleted", "message",
	// Hinglish function words show up in most exported WhatsApp chats
	"hai", "ka", "ki", "ke", "ko", "se", "me", "mein", "ho", "na", "ye", "bhi", "kya", "nahi",
	"aur", "toh", "tha", "thi", "hi", "h",
}

// ExtractLinks returns the distinct URLs in text in order of first occurrence
func ExtractLinks(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var links []string
	for _, m := range matches {
		m = strings.TrimRight(m, ".,!?;:)]}'")
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		links = append(links, m)
	}
	return links
}

// ExtractEmojis returns every emoji glyph in text, duplicates preserved. Glyphs are
// grapheme clusters, so flags, keycaps and ZWJ sequences count once. Skin-tone modifiers
// and the emoji variation selector are dropped so 👍🏽 and ❤️ group with 👍 and ❤.
func ExtractEmojis(text string) []string {
	var out []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		if !isEmojiCluster(runes) {
			continue
		}
		out = append(out, normalizeEmoji(runes))
	}
	return out
}

const (
	variationSelector = 0xFE0F
	keycapMark        = 0x20E3
)

func isEmojiCluster(runes []rune) bool {
	first := runes[0]
	switch {
	case isRegionalIndicator(first):
		return len(runes) == 2 && isRegionalIndicator(runes[1])
	case containsRune(runes, keycapMark):
		return true
	case textDefaultEmoji[first]:
		return containsRune(runes, variationSelector)
	}
	return isPictographic(first)
}

func normalizeEmoji(runes []rune) string {
	var b strings.Builder
	for _, r := range runes {
		if isSkinTone(r) || r == variationSelector {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isRegionalIndicator(r rune) bool { return r >= 0x1F1E6 && r <= 0x1F1FF }

func isSkinTone(r rune) bool { return r >= 0x1F3FB && r <= 0x1F3FF }

func containsRune(runes []rune, want rune) bool {
	for _, r := range runes {
		if r == want {
			return true
		}
	}
	return false
}

// textDefaultEmoji render as plain symbols unless followed by U+FE0F
var textDefaultEmoji = map[rune]bool{
	0x00A9: true, 0x00AE: true, 0x203C: true, 0x2049: true, 0x2122: true, 0x2139: true,
}

// pictographicRanges lists the code points with the Unicode Emoji property outside
// the ASCII keycap bases and textDefaultEmoji
var pictographicRanges = [][2]rune{
	{0x2194, 0x2199}, {0x21A9, 0x21AA}, {0x231A, 0x231B}, {0x2328, 0x2328}, {0x23CF, 0x23CF},
	{0x23E9, 0x23F3}, {0x23F8, 0x23FA}, {0x24C2, 0x24C2}, {0x25AA, 0x25AB}, {0x25B6, 0x25B6},
	{0x25C0, 0x25C0}, {0x25FB, 0x25FE},
	{0x2600, 0x2604}, {0x260E, 0x260E}, {0x2611, 0x2611}, {0x2614, 0x2615}, {0x2618, 0x2618},
	{0x261D, 0x261D}, {0x2620, 0x2620}, {0x2622, 0x2623}, {0x2626, 0x2626}, {0x262A, 0x262A},
	{0x262E, 0x262F}, {0x2638, 0x263A}, {0x2640, 0x2640}, {0x2642, 0x2642}, {0x2648, 0x2653},
	{0x265F, 0x2660}, {0x2663, 0x2663}, {0x2665, 0x2666}, {0x2668, 0x2668}, {0x267B, 0x267B},
	{0x267E, 0x267F}, {0x2692, 0x2697}, {0x2699, 0x2699}, {0x269B, 0x269C}, {0x26A0, 0x26A1},
	{0x26A7, 0x26A7}, {0x26AA, 0x26AB}, {0x26B0, 0x26B1}, {0x26BD, 0x26BE}, {0x26C4, 0x26C5},
	{0x26C8, 0x26C8}, {0x26CE, 0x26CF}, {0x26D1, 0x26D1}, {0x26D3, 0x26D4}, {0x26E9, 0x26EA},
	{0x26F0, 0x26F5}, {0x26F7, 0x26FA}, {0x26FD, 0x26FD},
	{0x2702, 0x2702}, {0x2705, 0x2705}, {0x2708, 0x270D}, {0x270F, 0x270F}, {0x2712, 0x2712},
	{0x2714, 0x2714}, {0x2716, 0x2716}, {0x271D, 0x271D}, {0x2721, 0x2721}, {0x2728, 0x2728},
	{0x2733, 0x2734}, {0x2744, 0x2744}, {0x2747, 0x2747}, {0x274C, 0x274C}, {0x274E, 0x274E},
	{0x2753, 0x2755}, {0x2757, 0x2757}, {0x2763, 0x2764}, {0x2795, 0x2797}, {0x27A1, 0x27A1},
	{0x27B0, 0x27B0}, {0x27BF, 0x27BF},
	{0x2934, 0x2935}, {0x2B05, 0x2B07}, {0x2B1B, 0x2B1C}, {0x2B50, 0x2B50}, {0x2B55, 0x2B55},
	{0x3030, 0x3030}, {0x303D, 0x303D}, {0x3297, 0x3297}, {0x3299, 0x3299},
	{0x1F004, 0x1F004}, {0x1F0CF, 0x1F0CF}, {0x1F170, 0x1F171}, {0x1F17E, 0x1F17F},
	{0x1F18E, 0x1F18E}, {0x1F191, 0x1F19A}, {0x1F201, 0x1F202}, {0x1F21A, 0x1F21A},
	{0x1F22F, 0x1F22F}, {0x1F232, 0x1F23A}, {0x1F250, 0x1F251},
	{0x1F300, 0x1F3FA}, {0x1F400, 0x1F64F}, {0x1F680, 0x1F6FF}, {0x1F7E0, 0x1F7EB},
	{0x1F7F0, 0x1F7F0}, {0x1F90C, 0x1F9FF}, {0x1FA70, 0x1FAFF},
}

func isPictographic(r rune) bool {
	if r < 0x2194 {
		return false
	}
	i := sort.Search(len(pictographicRanges), func(i int) bool {
		return pictographicRanges[i][1] >= r
	})
	return i < len(pictographicRanges) && r >= pictographicRanges[i][0]
}

// Tokenize lower-cases text, drops URLs and punctuation and removes stop words
func (e *Engine) Tokenize(text string) []string {
	text = urlPattern.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	var tokens []string
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f == "" || !strings.ContainsFunc(f, unicode.IsLetter) {
			continue
		}
		if _, stop := e.stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

type termCount struct {
	term  string
	count int
	first int
}

// countTerms tallies message tokens keeping first-occurrence order for tie breaks
func countTerms(msgs []*Message) []termCount {
	docs := make([][]string, 0, len(msgs))
	for _, m := range msgs {
		docs = append(docs, m.Tokens)
	}
	return rankTerms(docs)
}

func rankTerms(docs [][]string) []termCount {
	index := make(map[string]int)
	var terms []termCount
	pos := 0
	for _, d := range docs {
		for _, tok := range d {
			if i, ok := index[tok]; ok {
				terms[i].count++
			} else {
				index[tok] = len(terms)
				terms = append(terms, termCount{term: tok, count: 1, first: pos})
			}
			pos++
		}
	}
	sort.SliceStable(terms, func(i, j int) bool {
		if terms[i].count != terms[j].count {
			return terms[i].count > terms[j].count
		}
		return terms[i].first < terms[j].first
	})
	return terms
}

// MostCommonWords returns the top words after stop-word removal, ties by first occurrence
func (e *Engine) MostCommonWords(scope models.Scope, conv *Conversation) ([]models.WordCount, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return nil, err
	}

	terms := countTerms(msgs)
	if len(terms) > e.policy.TopWords {
		terms = terms[:e.policy.TopWords]
	}
	out := make([]models.WordCount, 0, len(terms))
	for _, t := range terms {
		out = append(out, models.WordCount{Word: t.term, Count: t.count})
	}
	return out, nil
}

// WordCloud returns word weights normalized against the most frequent word
func (e *Engine) WordCloud(scope models.Scope, conv *Conversation) (map[string]float64, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return nil, err
	}

	terms := countTerms(msgs)
	if len(terms) > e.policy.WordCloudSize {
		terms = terms[:e.policy.WordCloudSize]
	}
	cloud := make(map[string]float64, len(terms))
	if len(terms) == 0 {
		return cloud, nil
	}
	top := float64(terms[0].count)
	for _, t := range terms {
		cloud[t.term] = float64(t.count) / top
	}
	return cloud, nil
}

// EmojiTable counts emoji glyphs, sorted by count descending then glyph
func (e *Engine) EmojiTable(scope models.Scope, conv *Conversation) (models.Emojis, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return models.Emojis{}, err
	}

	counts := make(map[string]int)
	total := 0
	for _, m := range msgs {
		for _, g := range m.Emojis {
			counts[g]++
			total++
		}
	}

	table := make([]models.EmojiCount, 0, len(counts))
	for g, c := range counts {
		table = append(table, models.EmojiCount{Emoji: g, Count: c})
	}
	sort.Slice(table, func(i, j int) bool {
		if table[i].Count != table[j].Count {
			return table[i].Count > table[j].Count
		}
		return table[i].Emoji < table[j].Emoji
	})

	return models.Emojis{Total: total, Counts: table}, nil
}
