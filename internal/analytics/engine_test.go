package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/config"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

// base is a Monday morning
var base = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

func at(minutes float64, sender, text string) models.MessageRecord {
	return models.MessageRecord{
		Timestamp: base.Add(time.Duration(minutes * float64(time.Minute))),
		Sender:    sender,
		Text:      text,
	}
}

// greetingLog is the four-line Alice/Bob exchange
func greetingLog() models.ChatLog {
	return models.ChatLog{Name: "greeting", Records: []models.MessageRecord{
		at(0, "Alice", "Hi!"),
		at(2, "Bob", "Hello!!"),
		at(7, "Alice", "How are you?"),
		at(8, "Bob", "Good 😊"),
	}}
}

func systemOnlyLog() models.ChatLog {
	return models.ChatLog{Records: []models.MessageRecord{
		at(0, models.SystemSender, "Alice created group \"Weekend\""),
		at(1, models.SystemSender, "Alice added Bob"),
		at(5, models.SystemSender, "Bob left"),
	}}
}

func prepare(t *testing.T, log models.ChatLog) (*Engine, *Conversation) {
	t.Helper()
	engine := New(config.DefaultPolicy())
	conv, err := engine.Prepare(log)
	require.NoError(t, err)
	return engine, conv
}

func TestEngine_Prepare(t *testing.T) {
	engine := New(config.DefaultPolicy())

	tests := []struct {
		name    string
		log     models.ChatLog
		wantErr error
	}{
		{
			name: "valid log",
			log:  greetingLog(),
		},
		{
			name: "empty log",
			log:  models.ChatLog{},
		},
		{
			name: "empty sender",
			log: models.ChatLog{Records: []models.MessageRecord{
				at(0, "Alice", "hi"),
				at(1, " ", "who am I"),
			}},
			wantErr: ErrInvalidLog,
		},
		{
			name: "out of order",
			log: models.ChatLog{Records: []models.MessageRecord{
				at(5, "Alice", "later"),
				at(1, "Bob", "earlier"),
			}},
			wantErr: ErrInvalidLog,
		},
		{
			name: "equal timestamps allowed",
			log: models.ChatLog{Records: []models.MessageRecord{
				at(1, "Alice", "same"),
				at(1, "Bob", "time"),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Prepare(tt.log)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEngine_DerivedFields(t *testing.T) {
	_, conv := prepare(t, models.ChatLog{Records: []models.MessageRecord{
		at(0, "Alice", "see https://example.com/a, and https://example.com/a 🎉🎉"),
		at(1, "Bob", "<Media omitted>"),
		{Timestamp: base.Add(2 * time.Minute), Sender: "Bob", Text: "photo.jpg", IsMedia: true},
	}})

	first := conv.messages[0]
	assert.Equal(t, []string{"https://example.com/a"}, first.Links)
	assert.Equal(t, []string{"🎉", "🎉"}, first.Emojis)
	assert.Equal(t, 5, first.WordCount)

	for _, m := range conv.messages[1:] {
		assert.True(t, m.IsMedia)
		assert.Zero(t, m.WordCount)
		assert.Zero(t, m.CharCount)
		assert.Empty(t, m.Tokens)
	}
}

func TestEngine_Participants(t *testing.T) {
	log := greetingLog()
	log.Records = append([]models.MessageRecord{at(-1, models.SystemSender, "Alice added Bob")}, log.Records...)
	_, conv := prepare(t, log)

	assert.Equal(t, []string{"Alice", "Bob"}, conv.Participants())
	assert.NoError(t, conv.CheckScope(models.AllParticipants()))
	assert.NoError(t, conv.CheckScope(models.SenderScope("Bob")))
	assert.ErrorIs(t, conv.CheckScope(models.SenderScope("Mallory")), ErrUnknownSender)
	assert.ErrorIs(t, conv.CheckScope(models.SenderScope(models.SystemSender)), ErrUnknownSender)
}

func TestEngine_UnknownSenderFailsFast(t *testing.T) {
	engine, conv := prepare(t, greetingLog())
	scope := models.SenderScope("Mallory")

	calls := map[string]func() error{
		"FetchStats":             func() error { _, err := engine.FetchStats(scope, conv); return err },
		"MonthlyTimeline":        func() error { _, err := engine.MonthlyTimeline(scope, conv); return err },
		"DailyTimeline":          func() error { _, err := engine.DailyTimeline(scope, conv); return err },
		"MostCommonWords":        func() error { _, err := engine.MostCommonWords(scope, conv); return err },
		"EmojiTable":             func() error { _, err := engine.EmojiTable(scope, conv); return err },
		"SentimentAnalysis":      func() error { _, err := engine.SentimentAnalysis(scope, conv); return err },
		"ResponseTimes":          func() error { _, err := engine.ResponseTimes(scope, conv); return err },
		"ConversationInitiators": func() error { _, err := engine.ConversationInitiators(scope, conv); return err },
		"MessageLengths":         func() error { _, err := engine.MessageLengths(scope, conv); return err },
		"TopicModel":             func() error { _, err := engine.TopicModel(scope, conv); return err },
		"ImportantMoments":       func() error { _, err := engine.ImportantMoments(scope, conv); return err },
		"GroupDynamics":          func() error { _, err := engine.GroupDynamics(scope, conv); return err },
		"AssignBadges":           func() error { _, err := engine.AssignBadges(scope, conv); return err },
		"PersonalityMatches":     func() error { _, err := engine.PersonalityMatches(scope, conv); return err },
		"ActivityMap":            func() error { _, err := engine.ActivityMap(scope, conv); return err },
		"Insights":               func() error { _, err := engine.Insights(scope, conv); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), ErrUnknownSender)
		})
	}
}

func TestEngine_SystemOnlyLog(t *testing.T) {
	engine, conv := prepare(t, systemOnlyLog())
	all := models.AllParticipants()

	stats, err := engine.FetchStats(all, conv)
	require.NoError(t, err)
	assert.Equal(t, models.BasicStats{}, stats)

	assert.Empty(t, engine.MostBusyUsers(conv))

	lengths, err := engine.MessageLengths(all, conv)
	require.NoError(t, err)
	assert.Empty(t, lengths)

	responses, err := engine.ResponseTimes(all, conv)
	require.NoError(t, err)
	assert.Empty(t, responses.Observations)

	initiators, err := engine.ConversationInitiators(all, conv)
	require.NoError(t, err)
	assert.Zero(t, initiators.Conversations)

	sentiment, err := engine.SentimentAnalysis(all, conv)
	require.NoError(t, err)
	assert.Zero(t, sentiment.Classified)
	assert.Empty(t, sentiment.Timeline)

	badges, err := engine.AssignBadges(all, conv)
	require.NoError(t, err)
	assert.Empty(t, badges)

	personality, err := engine.PersonalityMatches(all, conv)
	require.NoError(t, err)
	assert.Empty(t, personality.Matches)

	group, err := engine.GroupDynamics(all, conv)
	require.NoError(t, err)
	assert.False(t, group.Applicable)

	topics, err := engine.TopicModel(all, conv)
	require.NoError(t, err)
	assert.False(t, topics.Applicable)

	insights, err := engine.Insights(all, conv)
	require.NoError(t, err)
	assert.Len(t, insights, 1)
}

func TestEngine_GreetingExample(t *testing.T) {
	engine, conv := prepare(t, greetingLog())
	all := models.AllParticipants()

	stats, err := engine.FetchStats(all, conv)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalMessages)

	responses, err := engine.ResponseTimes(all, conv)
	require.NoError(t, err)
	minutes := make([]float64, 0, len(responses.Observations))
	for _, o := range responses.Observations {
		minutes = append(minutes, o.Minutes)
	}
	assert.Equal(t, []float64{2, 1}, minutes)

	initiators, err := engine.ConversationInitiators(all, conv)
	require.NoError(t, err)
	assert.Equal(t, 1, initiators.Conversations)
	assert.Equal(t, []models.InitiatorCount{{Sender: "Alice", Conversations: 1}}, initiators.Counts)

	emojis, err := engine.EmojiTable(all, conv)
	require.NoError(t, err)
	assert.Equal(t, []models.EmojiCount{{Emoji: "😊", Count: 1}}, emojis.Counts)

	sentiment, err := engine.SentimentAnalysis(all, conv)
	require.NoError(t, err)
	assert.Zero(t, sentiment.Negative)
	assert.Equal(t, 1, sentiment.Positive)
	assert.Equal(t, 3, sentiment.Neutral)
}
