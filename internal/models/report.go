package models

import "time"

// Report is the consolidated analysis result handed to the presentation layer.
// A nil section was either not requested or failed; failures are listed by key.
type Report struct {
	ID          string            `json:"id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Transcript  string            `json:"transcript,omitempty"`
	Scope       string            `json:"scope"`
	Anonymized  bool              `json:"anonymized"`
	UserMapping []Alias           `json:"user_mapping,omitempty"`
	Failures    map[string]string `json:"failures,omitempty"`

	BasicStats            *BasicStats       `json:"basic_stats,omitempty"`
	Timeline              *Timeline         `json:"timeline,omitempty"`
	Words                 *Words            `json:"words,omitempty"`
	Emojis                *Emojis           `json:"emojis,omitempty"`
	BusyUsers             *BusyUsers        `json:"busy_users,omitempty"`
	Sentiment             *SentimentSummary `json:"sentiment_analysis,omitempty"`
	ResponseTimes         *ResponseTimes    `json:"response_times,omitempty"`
	Initiators            *Initiators       `json:"initiators,omitempty"`
	MessageStyle          *MessageStyle     `json:"message_style,omitempty"`
	Topics                *Topics           `json:"topics,omitempty"`
	ImportantMoments      *[]Moment         `json:"important_moments,omitempty"`
	GroupDynamics         *GroupDynamics    `json:"group_dynamics,omitempty"`
	Badges                *[]UserBadges     `json:"badges,omitempty"`
	Personality           *Personality      `json:"personality,omitempty"`
	Activity              *ActivityMap      `json:"activity,omitempty"`
	Predictions           *Predictions      `json:"predictions,omitempty"`
	RelationshipEvolution *[]EvolutionPoint `json:"relationship_evolution,omitempty"`
	Insights              *[]string         `json:"insights,omitempty"`
	Highlights            *[]Moment         `json:"highlights,omitempty"`
}

// Failed reports whether the named section was attempted and failed
func (r *Report) Failed(section string) bool {
	_, ok := r.Failures[section]
	return ok
}
