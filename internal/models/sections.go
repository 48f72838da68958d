package models

import "time"

// BasicStats is the per-scope message/word/media/link summary
type BasicStats struct {
	TotalMessages int `json:"total_messages"`
	TotalWords    int `json:"total_words"`
	MediaMessages int `json:"media_messages"`
	LinksShared   int `json:"links_shared"`
}

// TimelinePoint is a (year, month) bucket. Period is a display label only.
type TimelinePoint struct {
	Period   string `json:"period"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Messages int    `json:"messages"`
}

// DailyPoint is a calendar-day bucket; Date is ISO-8601 (YYYY-MM-DD)
type DailyPoint struct {
	Date     string `json:"date"`
	Messages int    `json:"messages"`
}

type Timeline struct {
	Monthly []TimelinePoint `json:"monthly"`
	Daily   []DailyPoint    `json:"daily"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type Words struct {
	MostCommon []WordCount        `json:"most_common"`
	Cloud      map[string]float64 `json:"word_cloud"`
}

type EmojiCount struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

type Emojis struct {
	Total  int          `json:"total"`
	Counts []EmojiCount `json:"counts"`
}

// UserShare is one row of the busiest-users ranking
type UserShare struct {
	User     string  `json:"user"`
	Messages int     `json:"messages"`
	Percent  float64 `json:"percent"`
}

type BusyUsers struct {
	Users []UserShare `json:"users"`
}

// SentimentLabel is the three-way polarity class
type SentimentLabel string

const (
	Positive SentimentLabel = "Positive"
	Negative SentimentLabel = "Negative"
	Neutral  SentimentLabel = "Neutral"
)

// MessageSentiment is the score of a single message
type MessageSentiment struct {
	Timestamp    time.Time      `json:"timestamp"`
	Sender       string         `json:"sender"`
	Polarity     float64        `json:"polarity"`
	Subjectivity float64        `json:"subjectivity"`
	Label        SentimentLabel `json:"sentiment"`
	Scored       bool           `json:"scored"`
}

// SentimentDay holds class ratios for one calendar day with at least one classified message
type SentimentDay struct {
	Date          string  `json:"date"`
	Positive      int     `json:"positive"`
	Negative      int     `json:"negative"`
	Neutral       int     `json:"neutral"`
	Total         int     `json:"total"`
	PositiveRatio float64 `json:"positive_ratio"`
	NegativeRatio float64 `json:"negative_ratio"`
}

type SentimentSummary struct {
	Classified      int            `json:"classified"`
	AvgPolarity     float64        `json:"avg_polarity"`
	AvgSubjectivity float64        `json:"avg_subjectivity"`
	Positive        int            `json:"positive"`
	Neutral         int            `json:"neutral"`
	Negative        int            `json:"negative"`
	PositiveRatio   float64        `json:"positive_ratio"`
	NeutralRatio    float64        `json:"neutral_ratio"`
	NegativeRatio   float64        `json:"negative_ratio"`
	Timeline        []SentimentDay `json:"timeline"`
}

// ResponseObservation is one A -> B reply latency
type ResponseObservation struct {
	Responder   string    `json:"responder"`
	RespondedTo string    `json:"responded_to"`
	At          time.Time `json:"at"`
	Minutes     float64   `json:"minutes"`
}

type ResponseStat struct {
	Sender        string  `json:"sender"`
	Responses     int     `json:"responses"`
	MeanMinutes   float64 `json:"mean_minutes"`
	MedianMinutes float64 `json:"median_minutes"`
}

type ResponseTimes struct {
	Observations  []ResponseObservation `json:"observations"`
	PerSender     []ResponseStat        `json:"per_sender"`
	MeanMinutes   float64               `json:"mean_minutes"`
	MedianMinutes float64               `json:"median_minutes"`
}

type InitiatorCount struct {
	Sender        string `json:"sender"`
	Conversations int    `json:"conversations"`
}

type Initiators struct {
	Conversations int              `json:"conversations"`
	Counts        []InitiatorCount `json:"counts"`
}

type LengthStats struct {
	Sender     string  `json:"sender"`
	Messages   int     `json:"messages"`
	CharMean   float64 `json:"char_mean"`
	CharMedian float64 `json:"char_median"`
	CharStd    float64 `json:"char_std"`
	WordMean   float64 `json:"word_mean"`
	WordMedian float64 `json:"word_median"`
	WordStd    float64 `json:"word_std"`
}

// StyleStats are per-message rates so senders of different volume compare
type StyleStats struct {
	Sender             string  `json:"sender"`
	Messages           int     `json:"messages"`
	ExclamationRate    float64 `json:"exclamation_rate"`
	QuestionRate       float64 `json:"question_rate"`
	CapsRatio          float64 `json:"caps_ratio"`
	EmojiRate          float64 `json:"emoji_rate"`
	LinkRate           float64 `json:"link_rate"`
	AvgIntervalMinutes float64 `json:"avg_interval_minutes"`
}

type MessageStyle struct {
	Lengths []LengthStats `json:"lengths"`
	Styles  []StyleStats  `json:"styles"`
}

type Topic struct {
	ID       int      `json:"topic_id"`
	Words    []string `json:"words"`
	Strength float64  `json:"weight"`
}

type Topics struct {
	Applicable bool    `json:"applicable"`
	Reason     string  `json:"reason,omitempty"`
	Topics     []Topic `json:"topics"`
}

// Moment is a message ranked by salience
type Moment struct {
	Timestamp time.Time `json:"date"`
	Sender    string    `json:"user"`
	Text      string    `json:"message"`
	Score     float64   `json:"score"`
	Polarity  float64   `json:"polarity"`
}

// InteractionMatrix counts replies: Counts[a][b] is how often Participants[b] answered Participants[a]
type InteractionMatrix struct {
	Participants []string `json:"participants"`
	Counts       [][]int  `json:"counts"`
}

type Role string

const (
	RoleConnector   Role = "Connector"
	RoleInitiator   Role = "Initiator"
	RoleResponsive  Role = "Responsive"
	RoleParticipant Role = "Participant"
)

type RoleStats struct {
	TotalMessages     int     `json:"total_messages"`
	Responses         int     `json:"responses"`
	ResponseRate      float64 `json:"response_rate"`
	Initiations       int     `json:"initiations"`
	AvgLatencyMinutes float64 `json:"avg_latency_minutes"`
	HasLatency        bool    `json:"has_latency"`
}

type RoleAssignment struct {
	Sender string    `json:"user"`
	Role   Role      `json:"primary_role"`
	Stats  RoleStats `json:"stats"`
}

type GroupDynamics struct {
	Applicable bool               `json:"applicable"`
	Reason     string             `json:"reason,omitempty"`
	Matrix     *InteractionMatrix `json:"interaction_matrix,omitempty"`
	Roles      []RoleAssignment   `json:"roles"`
}

type Badge struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UserBadges struct {
	Sender string  `json:"user"`
	Badges []Badge `json:"badges"`
}

type PersonalityProfile struct {
	Sender   string    `json:"user"`
	Features []float64 `json:"features"`
}

type SimilarityPair struct {
	UserA      string  `json:"user1"`
	UserB      string  `json:"user2"`
	Similarity float64 `json:"similarity_score"`
}

type Personality struct {
	FeatureNames []string             `json:"feature_names"`
	Profiles     []PersonalityProfile `json:"profiles"`
	Matches      []SimilarityPair     `json:"matches"`
}

type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ActivityMap struct {
	Weekdays []NamedCount `json:"weekdays"`
	Hours    []int        `json:"hours"`
	Heatmap  [][]int      `json:"heatmap"`
}

type Predictions struct {
	PeakHours  []int  `json:"peak_hours"`
	QuietHours []int  `json:"quiet_hours"`
	BusiestDay string `json:"busiest_day"`
}

type EvolutionPoint struct {
	Period      string  `json:"period"`
	Messages    int     `json:"message_count"`
	AvgPolarity float64 `json:"avg_sentiment"`
}
