package analytics

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

type lexEntry struct {
	polarity     float64
	subjectivity float64
}

var sentimentLexicon = map[string]lexEntry{
	"good": {0.7, 0.6}, "great": {0.8, 0.75}, "awesome": {1.0, 1.0}, "amazing": {0.6, 0.9},
	"excellent": {1.0, 1.0}, "fantastic": {0.4, 0.9}, "wonderful": {1.0, 1.0}, "nice": {0.6, 1.0},
	"love": {0.5, 0.6}, "loved": {0.7, 0.8}, "lovely": {0.5, 0.75}, "like": {0.2, 0.4},
	"happy": {0.8, 1.0}, "glad": {0.5, 1.0}, "cool": {0.35, 0.65}, "best": {1.0, 0.3},
	"better": {0.5, 0.5}, "beautiful": {0.85, 1.0}, "fun": {0.3, 0.2}, "funny": {0.25, 0.75},
	"thanks": {0.2, 0.2}, "thank": {0.2, 0.2}, "welcome": {0.8, 0.9}, "perfect": {1.0, 1.0},
	"congrats": {0.6, 0.6}, "congratulations": {0.6, 0.6}, "proud": {0.8, 1.0}, "sweet": {0.35, 0.65},
	"yay": {0.7, 0.8}, "lol": {0.8, 0.7}, "haha": {0.2, 0.3}, "hahaha": {0.3, 0.3},
	"excited": {0.4, 0.75}, "brilliant": {0.9, 1.0}, "enjoy": {0.4, 0.5}, "enjoyed": {0.5, 0.6},
	"super": {0.33, 0.67}, "fine": {0.4, 0.5}, "well": {0.2, 0.3}, "cute": {0.5, 1.0},
	"safe": {0.5, 0.5}, "win": {0.8, 0.4}, "won": {0.6, 0.4}, "success": {0.6, 0.4},
	"bad": {-0.7, 0.67}, "worse": {-0.4, 0.6}, "worst": {-1.0, 1.0}, "terrible": {-1.0, 1.0},
	"awful": {-1.0, 1.0}, "horrible": {-1.0, 1.0}, "hate": {-0.8, 0.9}, "hated": {-0.9, 0.7},
	"sad": {-0.5, 1.0}, "angry": {-0.5, 1.0}, "upset": {-0.6, 0.8}, "annoying": {-0.8, 0.9},
	"annoyed": {-0.4, 0.5}, "sorry": {-0.5, 1.0}, "wrong": {-0.5, 0.9}, "sick": {-0.7, 0.86},
	"tired": {-0.4, 0.7}, "boring": {-1.0, 1.0}, "bored": {-0.5, 1.0}, "stupid": {-0.8, 1.0},
	"ugly": {-0.7, 1.0}, "hurt": {-0.6, 0.8}, "pain": {-0.6, 0.8}, "problem": {-0.3, 0.3},
	"issue": {-0.2, 0.3}, "broken": {-0.4, 0.4}, "fail": {-0.5, 0.3}, "failed": {-0.5, 0.3},
	"miss": {-0.2, 0.4}, "missed": {-0.3, 0.4}, "lonely": {-0.4, 0.8}, "scared": {-0.6, 0.9},
	"worried": {-0.4, 0.8}, "disappointed": {-0.75, 0.75}, "crazy": {-0.6, 0.9}, "mad": {-0.6, 1.0},
	"poor": {-0.4, 0.6}, "late": {-0.3, 0.6}, "cry": {-0.6, 0.8}, "damn": {-0.4, 0.6},
}

var emojiLexicon = map[string]lexEntry{
	"😊": {0.6, 0.7}, "😀": {0.6, 0.7}, "😁": {0.6, 0.7}, "😃": {0.6, 0.7}, "😄": {0.6, 0.7},
	"😂": {0.5, 0.8}, "🤣": {0.5, 0.8}, "😍": {0.8, 0.9}, "🥰": {0.8, 0.9}, "😘": {0.6, 0.8},
	"❤": {0.7, 0.8}, "💕": {0.7, 0.8}, "💖": {0.7, 0.8}, "👍": {0.5, 0.5}, "🙏": {0.3, 0.4},
	"🎉": {0.7, 0.7}, "🥳": {0.7, 0.7}, "😎": {0.4, 0.6}, "🔥": {0.4, 0.6}, "👏": {0.5, 0.5},
	"😢": {-0.6, 0.8}, "😭": {-0.6, 0.9}, "😞": {-0.5, 0.8}, "😔": {-0.5, 0.8}, "😡": {-0.8, 0.9},
	"😠": {-0.7, 0.9}, "🤬": {-0.9, 1.0}, "💔": {-0.7, 0.9}, "👎": {-0.5, 0.5}, "😒": {-0.4, 0.7},
	"😩": {-0.5, 0.8}, "😫": {-0.5, 0.8}, "🙄": {-0.3, 0.7},
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "dont": {}, "don't": {}, "didn't": {}, "didnt": {},
	"isn't": {}, "isnt": {}, "wasn't": {}, "wasnt": {}, "can't": {}, "cant": {}, "won't": {},
	"wont": {}, "doesn't": {}, "doesnt": {}, "aren't": {}, "nothing": {}, "nobody": {},
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "so": 1.2, "extremely": 1.5, "too": 1.2, "super": 1.4,
	"totally": 1.3, "quite": 1.1, "absolutely": 1.5, "soo": 1.3, "sooo": 1.4,
}

// ScoreText returns polarity in [-1, 1] and subjectivity in [0, 1].
// Negation flips and halves the next sentiment word; intensifiers scale it.
func ScoreText(text string) (polarity, subjectivity float64) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	var pols, subs []float64
	negate := false
	boost := 1.0
	for _, w := range words {
		if _, ok := negations[w]; ok {
			negate = true
			continue
		}
		if f, ok := intensifiers[w]; ok {
			if _, alsoSentiment := sentimentLexicon[w]; !alsoSentiment {
				boost *= f
				continue
			}
		}
		entry, ok := sentimentLexicon[w]
		if !ok {
			continue
		}
		p := entry.polarity * boost
		if negate {
			p *= -0.5
		}
		pols = append(pols, p)
		subs = append(subs, math.Min(1, entry.subjectivity*boost))
		negate = false
		boost = 1.0
	}

	for _, g := range ExtractEmojis(text) {
		if entry, ok := emojiLexicon[g]; ok {
			pols = append(pols, entry.polarity)
			subs = append(subs, entry.subjectivity)
		}
	}

	if len(pols) == 0 {
		return 0, 0
	}

	polarity = mean(pols)
	if bangs := strings.Count(text, "!"); bangs > 0 {
		polarity *= 1 + math.Min(0.3, 0.1*float64(bangs))
	}
	return clamp(polarity, -1, 1), clamp(mean(subs), 0, 1)
}

// Classify maps a polarity onto the three sentiment classes
func (e *Engine) Classify(polarity float64) models.SentimentLabel {
	switch {
	case polarity > e.policy.PositiveThreshold:
		return models.Positive
	case polarity < e.policy.NegativeThreshold:
		return models.Negative
	default:
		return models.Neutral
	}
}

// MessageSentiments scores every record once per conversation; system records are unscored
func (e *Engine) MessageSentiments(conv *Conversation) []models.MessageSentiment {
	conv.sentimentOnce.Do(func() {
		conv.sentiments = make([]models.MessageSentiment, len(conv.messages))
		for i, m := range conv.messages {
			s := models.MessageSentiment{Timestamp: m.Timestamp, Sender: m.Sender, Label: models.Neutral}
			if !m.IsSystem() && m.HasText() {
				s.Polarity, s.Subjectivity = ScoreText(m.Text)
				s.Label = e.Classify(s.Polarity)
				s.Scored = true
			}
			conv.sentiments[i] = s
		}
	})
	return conv.sentiments
}

// SentimentAnalysis aggregates polarity, subjectivity and class distribution over the scope.
// Media and empty messages are not classified; with nothing classified the result is zero-filled.
func (e *Engine) SentimentAnalysis(scope models.Scope, conv *Conversation) (models.SentimentSummary, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return models.SentimentSummary{}, err
	}
	scores := e.MessageSentiments(conv)

	summary := models.SentimentSummary{Timeline: []models.SentimentDay{}}
	var pols, subs []float64
	for _, m := range msgs {
		s := scores[m.Index]
		if !s.Scored {
			continue
		}
		pols = append(pols, s.Polarity)
		subs = append(subs, s.Subjectivity)
		switch s.Label {
		case models.Positive:
			summary.Positive++
		case models.Negative:
			summary.Negative++
		default:
			summary.Neutral++
		}
	}

	summary.Classified = len(pols)
	if summary.Classified == 0 {
		return summary, nil
	}

	n := float64(summary.Classified)
	summary.AvgPolarity = mean(pols)
	summary.AvgSubjectivity = mean(subs)
	summary.PositiveRatio = float64(summary.Positive) / n
	summary.NeutralRatio = float64(summary.Neutral) / n
	summary.NegativeRatio = float64(summary.Negative) / n
	summary.Timeline = e.sentimentDays(msgs, scores)
	return summary, nil
}

// SentimentTimeline reports per-day class ratios; days without classified messages are omitted
func (e *Engine) SentimentTimeline(scope models.Scope, conv *Conversation) ([]models.SentimentDay, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return nil, err
	}
	return e.sentimentDays(msgs, e.MessageSentiments(conv)), nil
}

func (e *Engine) sentimentDays(msgs []*Message, scores []models.MessageSentiment) []models.SentimentDay {
	var classified []*Message
	for _, m := range msgs {
		if scores[m.Index].Scored {
			classified = append(classified, m)
		}
	}

	groups := groupBy(classified, dayOf, func(d models.SentimentDay, m *Message) models.SentimentDay {
		d.Total++
		switch scores[m.Index].Label {
		case models.Positive:
			d.Positive++
		case models.Negative:
			d.Negative++
		default:
			d.Neutral++
		}
		return d
	})
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })

	days := make([]models.SentimentDay, 0, len(groups))
	for _, g := range groups {
		d := g.Value
		d.Date = g.Key
		d.PositiveRatio = float64(d.Positive) / float64(d.Total)
		d.NegativeRatio = float64(d.Negative) / float64(d.Total)
		days = append(days, d)
	}
	return days
}
