package analytics

import (
	"fmt"
	"sort"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

// bucket is one (key, aggregate) pair produced by groupBy
type bucket[K comparable, V any] struct {
	Key   K
	Value V
}

// groupBy folds messages into buckets keyed by key, in order of first appearance
func groupBy[K comparable, V any](msgs []*Message, key func(*Message) K, fold func(V, *Message) V) []bucket[K, V] {
	index := make(map[K]int)
	var out []bucket[K, V]
	for _, m := range msgs {
		k := key(m)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			var zero V
			out = append(out, bucket[K, V]{Key: k, Value: zero})
		}
		out[i].Value = fold(out[i].Value, m)
	}
	return out
}

func countOne(n int, _ *Message) int { return n + 1 }

type yearMonth struct {
	year  int
	month int
}

func (ym yearMonth) before(other yearMonth) bool {
	if ym.year != other.year {
		return ym.year < other.year
	}
	return ym.month < other.month
}

func (ym yearMonth) label() string {
	return fmt.Sprintf("%.3s %d", monthNames[ym.month-1], ym.year)
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func monthOf(m *Message) yearMonth {
	return yearMonth{year: m.Timestamp.Year(), month: int(m.Timestamp.Month())}
}

func dayOf(m *Message) string {
	return m.Timestamp.Format("2006-01-02")
}

// FetchStats sums message, word, media and link counts over the scope
func (e *Engine) FetchStats(scope models.Scope, conv *Conversation) (models.BasicStats, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return models.BasicStats{}, err
	}

	var stats models.BasicStats
	for _, m := range msgs {
		stats.TotalMessages++
		stats.TotalWords += m.WordCount
		stats.LinksShared += len(m.Links)
		if m.IsMedia {
			stats.MediaMessages++
		}
	}
	return stats, nil
}

// MonthlyTimeline counts messages per (year, month), sorted chronologically
func (e *Engine) MonthlyTimeline(scope models.Scope, conv *Conversation) ([]models.TimelinePoint, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return nil, err
	}

	groups := groupBy(msgs, monthOf, countOne)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key.before(groups[j].Key) })

	out := make([]models.TimelinePoint, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.TimelinePoint{
			Period:   g.Key.label(),
			Year:     g.Key.year,
			Month:    g.Key.month,
			Messages: g.Value,
		})
	}
	return out, nil
}

// DailyTimeline counts messages per calendar day, sorted chronologically
func (e *Engine) DailyTimeline(scope models.Scope, conv *Conversation) ([]models.DailyPoint, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return nil, err
	}

	groups := groupBy(msgs, dayOf, countOne)
	// ISO dates sort lexicographically
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })

	out := make([]models.DailyPoint, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.DailyPoint{Date: g.Key, Messages: g.Value})
	}
	return out, nil
}

// MostBusyUsers ranks senders by message count with percentage shares that sum to exactly 100.
// Shares are apportioned in hundredths by largest remainder so rounding never drifts.
func (e *Engine) MostBusyUsers(conv *Conversation) []models.UserShare {
	groups := groupBy(conv.chatter, func(m *Message) string { return m.Sender }, countOne)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })

	total := len(conv.chatter)
	if total == 0 {
		return []models.UserShare{}
	}

	hundredths := make([]int, len(groups))
	remainders := make([]int, len(groups))
	assigned := 0
	for i, g := range groups {
		hundredths[i] = g.Value * 10000 / total
		remainders[i] = g.Value * 10000 % total
		assigned += hundredths[i]
	}

	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return remainders[order[a]] > remainders[order[b]] })
	for k := 0; assigned < 10000; k++ {
		hundredths[order[k%len(order)]]++
		assigned++
	}

	out := make([]models.UserShare, 0, len(groups))
	for i, g := range groups {
		out = append(out, models.UserShare{
			User:     g.Key,
			Messages: g.Value,
			Percent:  float64(hundredths[i]) / 100,
		})
	}
	return out
}
