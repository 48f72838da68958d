package analytics

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

// Anonymize returns a copy of the log with every participant renamed to "User N" in
// first-appearance order, including mentions inside message text, plus the forward mapping.
// The input log is not modified.
func Anonymize(log models.ChatLog) (models.ChatLog, []models.Alias) {
	participants := log.Participants()
	mapping := make([]models.Alias, 0, len(participants))
	lookup := make(map[string]string, len(participants))
	for i, p := range participants {
		alias := fmt.Sprintf("User %d", i+1)
		mapping = append(mapping, models.Alias{Original: p, Pseudonym: alias})
		lookup[p] = alias
	}

	// longest names first so "Ann Lee" wins over "Ann"
	names := make([]string, len(participants))
	copy(names, participants)
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	out := models.ChatLog{Name: log.Name, Records: make([]models.MessageRecord, len(log.Records))}
	for i, rec := range log.Records {
		if alias, ok := lookup[rec.Sender]; ok {
			rec.Sender = alias
		}
		rec.Text = replaceMentions(rec.Text, names, lookup)
		out.Records[i] = rec
	}
	return out, mapping
}

// replaceMentions substitutes whole-word participant names in a single left-to-right pass,
// so an inserted pseudonym is never rescanned
func replaceMentions(text string, names []string, lookup map[string]string) string {
	if text == "" || len(names) == 0 {
		return text
	}

	var b strings.Builder
	i := 0
	for i < len(text) {
		matched := ""
		if atBoundary(text, i) {
			for _, name := range names {
				if name != "" && strings.HasPrefix(text[i:], name) && endsAtBoundary(text, i+len(name)) {
					matched = name
					break
				}
			}
		}
		if matched != "" {
			b.WriteString(lookup[matched])
			i += len(matched)
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func atBoundary(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func endsAtBoundary(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(r)
}
