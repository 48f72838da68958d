package analytics

import (
	"fmt"
	"time"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

// Insights turns the scope's statistics into short narrative sentences. There is always at
// least one line, even for an empty scope.
func (e *Engine) Insights(scope models.Scope, conv *Conversation) ([]string, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return []string{fmt.Sprintf("No messages from %s to analyze yet.", scope)}, nil
	}

	var out []string

	activity, err := e.ActivityMap(scope, conv)
	if err != nil {
		return nil, err
	}
	peak := 0
	for h, n := range activity.Hours {
		if n > activity.Hours[peak] {
			peak = h
		}
	}
	out = append(out, fmt.Sprintf("Most active around %02d:00 with %d messages sent in that hour.", peak, activity.Hours[peak]))

	prediction, err := e.PredictActivity(scope, conv)
	if err != nil {
		return nil, err
	}
	out = append(out, fmt.Sprintf("%s is the busiest day of the week.", prediction.BusiestDay))

	stats, err := e.FetchStats(scope, conv)
	if err != nil {
		return nil, err
	}
	out = append(out, fmt.Sprintf("%d messages averaging %.1f words each.", stats.TotalMessages, ratio(stats.TotalWords, stats.TotalMessages)))

	sentiment, err := e.SentimentAnalysis(scope, conv)
	if err != nil {
		return nil, err
	}
	if sentiment.Classified > 0 {
		out = append(out, fmt.Sprintf("The overall tone is %s (%.0f%% positive, %.0f%% negative).",
			toneOf(e.Classify(sentiment.AvgPolarity)), sentiment.PositiveRatio*100, sentiment.NegativeRatio*100))
	}

	emojis, err := e.EmojiTable(scope, conv)
	if err != nil {
		return nil, err
	}
	if len(emojis.Counts) > 0 {
		fav := emojis.Counts[0]
		out = append(out, fmt.Sprintf("Favourite emoji is %s, used %d times.", fav.Emoji, fav.Count))
	}

	if scope.IsAll() {
		if busy := e.MostBusyUsers(conv); len(busy) > 1 {
			out = append(out, fmt.Sprintf("%s is the most active participant with %.2f%% of messages.", busy[0].User, busy[0].Percent))
		}
	}

	if streak := longestStreak(msgs); streak > 1 {
		out = append(out, fmt.Sprintf("The longest streak of consecutive active days is %d days.", streak))
	}

	responses, err := e.ResponseTimes(scope, conv)
	if err != nil {
		return nil, err
	}
	if len(responses.Observations) > 0 {
		out = append(out, fmt.Sprintf("Replies typically arrive within %.1f minutes.", responses.MedianMinutes))
	}

	return out, nil
}

func toneOf(label models.SentimentLabel) string {
	switch label {
	case models.Positive:
		return "positive"
	case models.Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// longestStreak counts the longest run of consecutive calendar days with a message
func longestStreak(msgs []*Message) int {
	best, run := 0, 0
	var last time.Time
	for _, m := range msgs {
		y, mo, d := m.Timestamp.Date()
		day := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
		switch {
		case run > 0 && day.Equal(last):
			continue
		case run > 0 && day.Equal(last.AddDate(0, 0, 1)):
			run++
		default:
			run = 1
		}
		last = day
		if run > best {
			best = run
		}
	}
	return best
}
