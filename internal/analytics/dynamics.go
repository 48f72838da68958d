package analytics

import (
	"sort"
	"strings"
	"unicode"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

// reply is one prompt/response pair between different senders inside the gap ceiling
type reply struct {
	prompt  *Message
	answer  *Message
	minutes float64
}

// replies pairs each message with the one before it when the senders differ and the gap
// stays within the ceiling. A message that goes straight back to the sender it just
// answered is not a new reply, so A, B, A, B yields B->A twice while A, B, C yields
// B->A and C->B.
func (e *Engine) replies(conv *Conversation) []reply {
	var out []reply
	answeredTo := make(map[int]string)
	for i := 1; i < len(conv.chatter); i++ {
		prev, cur := conv.chatter[i-1], conv.chatter[i]
		if prev.Sender == cur.Sender {
			continue
		}
		if to, ok := answeredTo[prev.Index]; ok && to == cur.Sender {
			continue
		}
		gap := cur.Timestamp.Sub(prev.Timestamp)
		if gap > e.policy.GapCeiling {
			continue
		}
		minutes := gap.Minutes()
		if minutes < 0 {
			minutes = 0
		}
		out = append(out, reply{prompt: prev, answer: cur, minutes: minutes})
		answeredTo[cur.Index] = prev.Sender
	}
	return out
}

// segments splits the non-system messages wherever the gap exceeds the ceiling
func (e *Engine) segments(conv *Conversation) [][]*Message {
	var out [][]*Message
	var current []*Message
	for i, m := range conv.chatter {
		if i > 0 && m.Timestamp.Sub(conv.chatter[i-1].Timestamp) > e.policy.GapCeiling {
			out = append(out, current)
			current = nil
		}
		current = append(current, m)
	}
	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}

// ResponseTimes lists every reply latency credited to a sender in scope plus a per-sender table
func (e *Engine) ResponseTimes(scope models.Scope, conv *Conversation) (models.ResponseTimes, error) {
	if err := conv.CheckScope(scope); err != nil {
		return models.ResponseTimes{}, err
	}

	result := models.ResponseTimes{
		Observations: []models.ResponseObservation{},
		PerSender:    []models.ResponseStat{},
	}
	perSender := make(map[string][]float64)
	var all []float64
	for _, r := range e.replies(conv) {
		if !scope.Includes(r.answer.Sender) {
			continue
		}
		result.Observations = append(result.Observations, models.ResponseObservation{
			Responder:   r.answer.Sender,
			RespondedTo: r.prompt.Sender,
			At:          r.answer.Timestamp,
			Minutes:     r.minutes,
		})
		perSender[r.answer.Sender] = append(perSender[r.answer.Sender], r.minutes)
		all = append(all, r.minutes)
	}

	for _, sender := range conv.scopedParticipants(scope) {
		latencies, ok := perSender[sender]
		if !ok {
			continue
		}
		result.PerSender = append(result.PerSender, models.ResponseStat{
			Sender:        sender,
			Responses:     len(latencies),
			MeanMinutes:   mean(latencies),
			MedianMinutes: median(latencies),
		})
	}
	result.MeanMinutes = mean(all)
	result.MedianMinutes = median(all)
	return result, nil
}

// ConversationInitiators credits the first sender of every conversation segment
func (e *Engine) ConversationInitiators(scope models.Scope, conv *Conversation) (models.Initiators, error) {
	if err := conv.CheckScope(scope); err != nil {
		return models.Initiators{}, err
	}

	segs := e.segments(conv)
	firsts := make([]*Message, 0, len(segs))
	for _, seg := range segs {
		firsts = append(firsts, seg[0])
	}

	groups := groupBy(firsts, func(m *Message) string { return m.Sender }, countOne)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })

	result := models.Initiators{Conversations: len(segs), Counts: []models.InitiatorCount{}}
	for _, g := range groups {
		if !scope.Includes(g.Key) {
			continue
		}
		result.Counts = append(result.Counts, models.InitiatorCount{Sender: g.Key, Conversations: g.Value})
	}
	return result, nil
}

// bySender splits messages per sender preserving order
func bySender(msgs []*Message) map[string][]*Message {
	out := make(map[string][]*Message)
	for _, m := range msgs {
		out[m.Sender] = append(out[m.Sender], m)
	}
	return out
}

func textMessages(msgs []*Message) []*Message {
	var out []*Message
	for _, m := range msgs {
		if !m.IsMedia {
			out = append(out, m)
		}
	}
	return out
}

// MessageLengths returns per-sender char and word distributions over non-media messages
func (e *Engine) MessageLengths(scope models.Scope, conv *Conversation) ([]models.LengthStats, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return nil, err
	}

	grouped := bySender(textMessages(msgs))
	out := []models.LengthStats{}
	for _, sender := range conv.scopedParticipants(scope) {
		own := grouped[sender]
		if len(own) == 0 {
			continue
		}
		chars := make([]float64, len(own))
		words := make([]float64, len(own))
		for i, m := range own {
			chars[i] = float64(m.CharCount)
			words[i] = float64(m.WordCount)
		}
		out = append(out, models.LengthStats{
			Sender:     sender,
			Messages:   len(own),
			CharMean:   mean(chars),
			CharMedian: median(chars),
			CharStd:    stdDev(chars),
			WordMean:   mean(words),
			WordMedian: median(words),
			WordStd:    stdDev(words),
		})
	}
	return out, nil
}

// CommunicationStyle returns per-message style rates for each sender in scope
func (e *Engine) CommunicationStyle(scope models.Scope, conv *Conversation) ([]models.StyleStats, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return nil, err
	}

	grouped := bySender(msgs)
	out := []models.StyleStats{}
	for _, sender := range conv.scopedParticipants(scope) {
		own := grouped[sender]
		if len(own) == 0 {
			continue
		}
		out = append(out, styleOf(sender, own))
	}
	return out, nil
}

func styleOf(sender string, own []*Message) models.StyleStats {
	texts := textMessages(own)
	var bangs, questions, emojis, links, capsWords, words int
	for _, m := range texts {
		bangs += strings.Count(m.Text, "!")
		questions += strings.Count(m.Text, "?")
		emojis += len(m.Emojis)
		links += len(m.Links)
		for _, w := range strings.Fields(m.Text) {
			words++
			if isShouted(w) {
				capsWords++
			}
		}
	}

	var gaps []float64
	for i := 1; i < len(own); i++ {
		gaps = append(gaps, own[i].Timestamp.Sub(own[i-1].Timestamp).Minutes())
	}

	return models.StyleStats{
		Sender:             sender,
		Messages:           len(texts),
		ExclamationRate:    ratio(bangs, len(texts)),
		QuestionRate:       ratio(questions, len(texts)),
		CapsRatio:          ratio(capsWords, words),
		EmojiRate:          ratio(emojis, len(texts)),
		LinkRate:           ratio(links, len(texts)),
		AvgIntervalMinutes: mean(gaps),
	}
}

// isShouted reports words of two or more letters written entirely in upper case
func isShouted(word string) bool {
	letters := 0
	for _, r := range word {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= 2
}
