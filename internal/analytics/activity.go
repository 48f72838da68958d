package analytics

import (
	"sort"
	"time"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

const predictedHours = 3

// weekdays is Monday-first
var weekdays = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ActivityMap counts messages per weekday, per hour and per (weekday, hour) cell
func (e *Engine) ActivityMap(scope models.Scope, conv *Conversation) (models.ActivityMap, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return models.ActivityMap{}, err
	}

	days := make([]int, len(weekdays))
	hours := make([]int, 24)
	heatmap := make([][]int, len(weekdays))
	for i := range heatmap {
		heatmap[i] = make([]int, 24)
	}
	for _, m := range msgs {
		d, h := weekdayIndex(m.Timestamp), m.Timestamp.Hour()
		days[d]++
		hours[h]++
		heatmap[d][h]++
	}

	named := make([]models.NamedCount, len(weekdays))
	for i, name := range weekdays {
		named[i] = models.NamedCount{Name: name, Count: days[i]}
	}
	return models.ActivityMap{Weekdays: named, Hours: hours, Heatmap: heatmap}, nil
}

// PredictActivity names the busiest and quietest hours and the busiest weekday.
// An empty scope predicts nothing.
func (e *Engine) PredictActivity(scope models.Scope, conv *Conversation) (models.Predictions, error) {
	activity, err := e.ActivityMap(scope, conv)
	if err != nil {
		return models.Predictions{}, err
	}

	result := models.Predictions{PeakHours: []int{}, QuietHours: []int{}}
	total := 0
	for _, n := range activity.Hours {
		total += n
	}
	if total == 0 {
		return result, nil
	}

	order := make([]int, 24)
	for h := range order {
		order[h] = h
	}
	sort.SliceStable(order, func(a, b int) bool { return activity.Hours[order[a]] > activity.Hours[order[b]] })
	result.PeakHours = append(result.PeakHours, order[:predictedHours]...)

	sort.SliceStable(order, func(a, b int) bool {
		if activity.Hours[order[a]] != activity.Hours[order[b]] {
			return activity.Hours[order[a]] < activity.Hours[order[b]]
		}
		return order[a] < order[b]
	})
	result.QuietHours = append(result.QuietHours, order[:predictedHours]...)

	busiest := activity.Weekdays[0]
	for _, d := range activity.Weekdays[1:] {
		if d.Count > busiest.Count {
			busiest = d
		}
	}
	result.BusiestDay = busiest.Name
	return result, nil
}

// RelationshipEvolution tracks one sender's monthly volume and mean polarity.
// It describes a single relationship, so the all-participant scope yields nothing.
func (e *Engine) RelationshipEvolution(scope models.Scope, conv *Conversation) ([]models.EvolutionPoint, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return nil, err
	}
	out := []models.EvolutionPoint{}
	if scope.IsAll() {
		return out, nil
	}

	scores := e.MessageSentiments(conv)
	type monthly struct {
		messages   int
		polarities []float64
	}
	groups := groupBy(msgs, monthOf, func(acc monthly, m *Message) monthly {
		acc.messages++
		if s := scores[m.Index]; s.Scored {
			acc.polarities = append(acc.polarities, s.Polarity)
		}
		return acc
	})
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key.before(groups[j].Key) })

	for _, g := range groups {
		out = append(out, models.EvolutionPoint{
			Period:      g.Key.label(),
			Messages:    g.Value.messages,
			AvgPolarity: mean(g.Value.polarities),
		})
	}
	return out, nil
}
