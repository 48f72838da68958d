package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy holds every numeric cutoff used by the analytics engine.
// Zero values are never meaningful; LoadPolicy overlays a file onto DefaultPolicy.
type Policy struct {
	// Sentiment classification
	PositiveThreshold float64 `yaml:"positive_threshold"`
	NegativeThreshold float64 `yaml:"negative_threshold"`

	// Messages further apart than this start a new conversation and are never responses
	GapCeiling time.Duration `yaml:"gap_ceiling"`

	MediaPlaceholder string   `yaml:"media_placeholder"`
	StopWords        []string `yaml:"stop_words"`

	TopWords      int `yaml:"top_words"`
	WordCloudSize int `yaml:"word_cloud_size"`

	TopicCount         int `yaml:"topic_count"`
	TopicWords         int `yaml:"topic_words"`
	TopicMinTokens     int `yaml:"topic_min_tokens"`
	TopicIterations    int `yaml:"topic_iterations"`
	TopicMaxVocabulary int `yaml:"topic_max_vocabulary"`
	TopicMaxDocuments  int `yaml:"topic_max_documents"`

	ImportantMoments int `yaml:"important_moments"`
	Highlights       int `yaml:"highlights"`

	MinGroupParticipants int `yaml:"min_group_participants"`

	Badges BadgePolicy `yaml:"badges"`
}

// BadgePolicy holds the predicate bounds of the badge catalogue
type BadgePolicy struct {
	NightOwlShare         float64 `yaml:"night_owl_share"`
	EarlyBirdShare        float64 `yaml:"early_bird_share"`
	ChatterboxDecile      float64 `yaml:"chatterbox_decile"`
	WordsmithAvgWords     float64 `yaml:"wordsmith_avg_words"`
	EmojiRate             float64 `yaml:"emoji_rate"`
	LinkRate              float64 `yaml:"link_rate"`
	QuestionRate          float64 `yaml:"question_rate"`
	SpeedyMedianMinutes   float64 `yaml:"speedy_median_minutes"`
	SpeedyMinObservations int     `yaml:"speedy_min_observations"`
	StarterShare          float64 `yaml:"starter_share"`
	StarterMinSegments    int     `yaml:"starter_min_segments"`
	PositiveVibes         float64 `yaml:"positive_vibes"`
	MinMessages           int     `yaml:"min_messages"`
}

// DefaultPolicy returns the cutoffs used when no policy file is configured
func DefaultPolicy() Policy {
	return Policy{
		PositiveThreshold: 0.1,
		NegativeThreshold: -0.1,
		GapCeiling:        12 * time.Hour,
		MediaPlaceholder:  "<Media omitted>",

		TopWords:      20,
		WordCloudSize: 200,

		TopicCount:         5,
		TopicWords:         8,
		TopicMinTokens:     50,
		TopicIterations:    150,
		TopicMaxVocabulary: 500,
		TopicMaxDocuments:  1000,

		ImportantMoments: 10,
		Highlights:       5,

		MinGroupParticipants: 3,

		Badges: BadgePolicy{
			NightOwlShare:         0.2,
			EarlyBirdShare:        0.2,
			ChatterboxDecile:      0.1,
			WordsmithAvgWords:     12,
			EmojiRate:             0.5,
			LinkRate:              0.1,
			QuestionRate:          0.3,
			SpeedyMedianMinutes:   5,
			SpeedyMinObservations: 3,
			StarterShare:          0.25,
			StarterMinSegments:    4,
			PositiveVibes:         0.25,
			MinMessages:           5,
		},
	}
}

// LoadPolicy overlays the YAML file at path onto DefaultPolicy. An empty path returns the defaults.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read policy %s: %w", path, err)
	}

	return ParsePolicy(data)
}

// ParsePolicy overlays YAML data onto DefaultPolicy and validates the result
func ParsePolicy(data []byte) (Policy, error) {
	policy := DefaultPolicy()
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, fmt.Errorf("parse policy: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return policy, err
	}
	return policy, nil
}

// Validate checks that the thresholds keep their required shape
func (p Policy) Validate() error {
	if p.NegativeThreshold > p.PositiveThreshold {
		return fmt.Errorf("negative_threshold (%v) must not exceed positive_threshold (%v)", p.NegativeThreshold, p.PositiveThreshold)
	}
	if p.PositiveThreshold < -1 || p.PositiveThreshold > 1 || p.NegativeThreshold < -1 || p.NegativeThreshold > 1 {
		return fmt.Errorf("sentiment thresholds must lie in [-1, 1]")
	}
	if p.GapCeiling <= 0 {
		return fmt.Errorf("gap_ceiling must be positive")
	}
	if p.MediaPlaceholder == "" {
		return fmt.Errorf("media_placeholder must not be empty")
	}

	positive := map[string]int{
		"top_words":              p.TopWords,
		"word_cloud_size":        p.WordCloudSize,
		"topic_count":            p.TopicCount,
		"topic_words":            p.TopicWords,
		"topic_min_tokens":       p.TopicMinTokens,
		"topic_iterations":       p.TopicIterations,
		"topic_max_vocabulary":   p.TopicMaxVocabulary,
		"topic_max_documents":    p.TopicMaxDocuments,
		"important_moments":      p.ImportantMoments,
		"highlights":             p.Highlights,
		"min_group_participants": p.MinGroupParticipants,
	}
	for name, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, value)
		}
	}

	if p.Badges.ChatterboxDecile <= 0 || p.Badges.ChatterboxDecile > 1 {
		return fmt.Errorf("badges.chatterbox_decile must lie in (0, 1]")
	}

	return nil
}
