// Package report assembles engine sections into a single models.Report and exports it.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/analytics"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

// Section keys, also the top-level keys of the exported report
const (
	SectionBasicStats            = "basic_stats"
	SectionTimeline              = "timeline"
	SectionWords                 = "words"
	SectionEmojis                = "emojis"
	SectionBusyUsers             = "busy_users"
	SectionSentiment             = "sentiment_analysis"
	SectionResponseTimes         = "response_times"
	SectionInitiators            = "initiators"
	SectionMessageStyle          = "message_style"
	SectionTopics                = "topics"
	SectionImportantMoments      = "important_moments"
	SectionGroupDynamics         = "group_dynamics"
	SectionBadges                = "badges"
	SectionPersonality           = "personality"
	SectionActivity              = "activity"
	SectionPredictions           = "predictions"
	SectionRelationshipEvolution = "relationship_evolution"
	SectionInsights              = "insights"
	SectionHighlights            = "highlights"
)

// ErrUnknownSection is returned when a request names a section that does not exist
var ErrUnknownSection = errors.New("unknown report section")

// SectionError records a single isolated section failure
type SectionError struct {
	Section string
	Cause   error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("section %s: %v", e.Section, e.Cause)
}

func (e *SectionError) Unwrap() error {
	return e.Cause
}

// Request selects the scope and sections of a report. Empty Sections means every section.
type Request struct {
	Scope     models.Scope
	Sections  []string
	Anonymize bool
}

// sectionFunc computes one section and stores it on the report
type sectionFunc func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error

type section struct {
	key string
	run sectionFunc
}

// sections is the canonical section order
var sections = []section{
	{SectionBasicStats, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		stats, err := e.FetchStats(scope, conv)
		r.BasicStats = &stats
		return err
	}},
	{SectionTimeline, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		monthly, err := e.MonthlyTimeline(scope, conv)
		if err != nil {
			return err
		}
		daily, err := e.DailyTimeline(scope, conv)
		if err != nil {
			return err
		}
		r.Timeline = &models.Timeline{Monthly: monthly, Daily: daily}
		return nil
	}},
	{SectionWords, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		common, err := e.MostCommonWords(scope, conv)
		if err != nil {
			return err
		}
		cloud, err := e.WordCloud(scope, conv)
		if err != nil {
			return err
		}
		r.Words = &models.Words{MostCommon: common, Cloud: cloud}
		return nil
	}},
	{SectionEmojis, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		emojis, err := e.EmojiTable(scope, conv)
		r.Emojis = &emojis
		return err
	}},
	{SectionBusyUsers, func(e *analytics.Engine, _ models.Scope, conv *analytics.Conversation, r *models.Report) error {
		r.BusyUsers = &models.BusyUsers{Users: e.MostBusyUsers(conv)}
		return nil
	}},
	{SectionSentiment, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		sentiment, err := e.SentimentAnalysis(scope, conv)
		r.Sentiment = &sentiment
		return err
	}},
	{SectionResponseTimes, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		times, err := e.ResponseTimes(scope, conv)
		r.ResponseTimes = &times
		return err
	}},
	{SectionInitiators, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		initiators, err := e.ConversationInitiators(scope, conv)
		r.Initiators = &initiators
		return err
	}},
	{SectionMessageStyle, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		lengths, err := e.MessageLengths(scope, conv)
		if err != nil {
			return err
		}
		styles, err := e.CommunicationStyle(scope, conv)
		if err != nil {
			return err
		}
		r.MessageStyle = &models.MessageStyle{Lengths: lengths, Styles: styles}
		return nil
	}},
	{SectionTopics, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		topics, err := e.TopicModel(scope, conv)
		r.Topics = &topics
		return err
	}},
	{SectionImportantMoments, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		moments, err := e.ImportantMoments(scope, conv)
		r.ImportantMoments = &moments
		return err
	}},
	{SectionGroupDynamics, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		group, err := e.GroupDynamics(scope, conv)
		r.GroupDynamics = &group
		return err
	}},
	{SectionBadges, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		badges, err := e.AssignBadges(scope, conv)
		r.Badges = &badges
		return err
	}},
	{SectionPersonality, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		personality, err := e.PersonalityMatches(scope, conv)
		r.Personality = &personality
		return err
	}},
	{SectionActivity, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		activity, err := e.ActivityMap(scope, conv)
		r.Activity = &activity
		return err
	}},
	{SectionPredictions, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		predictions, err := e.PredictActivity(scope, conv)
		r.Predictions = &predictions
		return err
	}},
	{SectionRelationshipEvolution, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		evolution, err := e.RelationshipEvolution(scope, conv)
		r.RelationshipEvolution = &evolution
		return err
	}},
	{SectionInsights, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		insights, err := e.Insights(scope, conv)
		r.Insights = &insights
		return err
	}},
	{SectionHighlights, func(e *analytics.Engine, scope models.Scope, conv *analytics.Conversation, r *models.Report) error {
		highlights, err := e.Highlights(scope, conv)
		r.Highlights = &highlights
		return err
	}},
}

// AllSections lists every section key in canonical order
func AllSections() []string {
	keys := make([]string, 0, len(sections))
	for _, s := range sections {
		keys = append(keys, s.key)
	}
	return keys
}

// ParseSections splits a comma separated selector and validates every key
func ParseSections(selector string) ([]string, error) {
	var keys []string
	for _, part := range strings.Split(selector, ",") {
		key := strings.ToLower(strings.TrimSpace(part))
		if key == "" {
			continue
		}
		if !isSection(key) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSection, key)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func isSection(key string) bool {
	for _, s := range sections {
		if s.key == key {
			return true
		}
	}
	return false
}

// Aggregator runs the engine sections requested for a transcript
type Aggregator struct {
	engine *analytics.Engine
}

// NewAggregator creates an aggregator over the engine
func NewAggregator(engine *analytics.Engine) *Aggregator {
	return &Aggregator{engine: engine}
}

// Engine returns the underlying analytics engine
func (a *Aggregator) Engine() *analytics.Engine {
	return a.engine
}

// Generate builds the report. An unknown sender or an invalid log fails the whole request;
// any other section failure is recorded on the report and the remaining sections still run.
func (a *Aggregator) Generate(log models.ChatLog, req Request) (*models.Report, error) {
	wanted := make(map[string]bool, len(req.Sections))
	for _, key := range req.Sections {
		if !isSection(key) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSection, key)
		}
		wanted[key] = true
	}

	scope := req.Scope
	var mapping []models.Alias
	if req.Anonymize {
		log, mapping = analytics.Anonymize(log)
		scope = pseudonymScope(scope, mapping)
	}

	conv, err := a.engine.Prepare(log)
	if err != nil {
		return nil, err
	}
	if err := conv.CheckScope(scope); err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Transcript:  log.Name,
		Scope:       scope.String(),
		Anonymized:  req.Anonymize,
		UserMapping: mapping,
	}

	for _, s := range sections {
		if len(wanted) > 0 && !wanted[s.key] {
			continue
		}
		if err := a.runSection(s, scope, conv, report); err != nil {
			if report.Failures == nil {
				report.Failures = make(map[string]string)
			}
			report.Failures[s.key] = err.Cause.Error()
			clearSection(report, s.key)
			logrus.WithError(err.Cause).WithFields(logrus.Fields{
				"section": s.key,
				"scope":   scope.String(),
			}).Error("Report section failed")
		}
	}

	logrus.Debugf("Generated report %s for %s with %d failures", report.ID, scope, len(report.Failures))
	return report, nil
}

// runSection isolates one section, converting panics into a SectionError
func (a *Aggregator) runSection(s section, scope models.Scope, conv *analytics.Conversation, report *models.Report) (sectionErr *SectionError) {
	defer func() {
		if r := recover(); r != nil {
			sectionErr = &SectionError{Section: s.key, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := s.run(a.engine, scope, conv, report); err != nil {
		return &SectionError{Section: s.key, Cause: err}
	}
	return nil
}

func pseudonymScope(scope models.Scope, mapping []models.Alias) models.Scope {
	if scope.IsAll() {
		return scope
	}
	for _, alias := range mapping {
		if alias.Original == scope.Sender {
			return models.SenderScope(alias.Pseudonym)
		}
	}
	return scope
}

// clearSection drops a partially written section so failed keys never appear in the output
func clearSection(r *models.Report, key string) {
	switch key {
	case SectionBasicStats:
		r.BasicStats = nil
	case SectionTimeline:
		r.Timeline = nil
	case SectionWords:
		r.Words = nil
	case SectionEmojis:
		r.Emojis = nil
	case SectionBusyUsers:
		r.BusyUsers = nil
	case SectionSentiment:
		r.Sentiment = nil
	case SectionResponseTimes:
		r.ResponseTimes = nil
	case SectionInitiators:
		r.Initiators = nil
	case SectionMessageStyle:
		r.MessageStyle = nil
	case SectionTopics:
		r.Topics = nil
	case SectionImportantMoments:
		r.ImportantMoments = nil
	case SectionGroupDynamics:
		r.GroupDynamics = nil
	case SectionBadges:
		r.Badges = nil
	case SectionPersonality:
		r.Personality = nil
	case SectionActivity:
		r.Activity = nil
	case SectionPredictions:
		r.Predictions = nil
	case SectionRelationshipEvolution:
		r.RelationshipEvolution = nil
	case SectionInsights:
		r.Insights = nil
	case SectionHighlights:
		r.Highlights = nil
	}
}
