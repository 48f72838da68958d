package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

const (
	salienceSentimentWeight   = 0.5
	salienceLengthWeight      = 0.3
	saliencePunctuationWeight = 0.2
	salienceMaxZ              = 3.0
	salienceMaxMarks          = 3.0
)

type scoredMoment struct {
	msg   *Message
	score float64
}

// ImportantMoments ranks messages by salience: sentiment extremity, length relative to the
// sender's own habit and salient punctuation. Ties keep chronological order.
func (e *Engine) ImportantMoments(scope models.Scope, conv *Conversation) ([]models.Moment, error) {
	ranked, err := e.rankMoments(scope, conv)
	if err != nil {
		return nil, err
	}
	if len(ranked) > e.policy.ImportantMoments {
		ranked = ranked[:e.policy.ImportantMoments]
	}
	return e.toMoments(conv, ranked), nil
}

// Highlights are the top moments re-ordered chronologically
func (e *Engine) Highlights(scope models.Scope, conv *Conversation) ([]models.Moment, error) {
	ranked, err := e.rankMoments(scope, conv)
	if err != nil {
		return nil, err
	}
	if len(ranked) > e.policy.Highlights {
		ranked = ranked[:e.policy.Highlights]
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].msg.Index < ranked[j].msg.Index })
	return e.toMoments(conv, ranked), nil
}

func (e *Engine) rankMoments(scope models.Scope, conv *Conversation) ([]scoredMoment, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return nil, err
	}
	scores := e.MessageSentiments(conv)

	// length baselines come from each sender's whole history, not the scoped slice
	baselines := make(map[string][2]float64)
	for sender, own := range bySender(textMessages(conv.chatter)) {
		lengths := make([]float64, len(own))
		for i, m := range own {
			lengths[i] = float64(m.WordCount)
		}
		baselines[sender] = [2]float64{mean(lengths), stdDev(lengths)}
	}

	var ranked []scoredMoment
	for _, m := range msgs {
		if !m.HasText() {
			continue
		}
		score := salienceSentimentWeight * math.Abs(scores[m.Index].Polarity)

		if base := baselines[m.Sender]; base[1] > 0 {
			z := (float64(m.WordCount) - base[0]) / base[1]
			score += salienceLengthWeight * clamp(z, 0, salienceMaxZ) / salienceMaxZ
		}

		marks := float64(strings.Count(m.Text, "!") + strings.Count(m.Text, "?"))
		score += saliencePunctuationWeight * math.Min(marks, salienceMaxMarks) / salienceMaxMarks

		if score > 0 {
			ranked = append(ranked, scoredMoment{msg: m, score: score})
		}
	}

	// msgs are chronological so a stable sort keeps timestamp order on ties
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	return ranked, nil
}

func (e *Engine) toMoments(conv *Conversation, ranked []scoredMoment) []models.Moment {
	scores := e.MessageSentiments(conv)
	out := make([]models.Moment, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, models.Moment{
			Timestamp: r.msg.Timestamp,
			Sender:    r.msg.Sender,
			Text:      r.msg.Text,
			Score:     r.score,
			Polarity:  scores[r.msg.Index].Polarity,
		})
	}
	return out
}
