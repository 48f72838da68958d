package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

// badgeLog starts at 02:00: Alice is a night owl asking questions, Bob chats in the
// afternoon, Carol is too quiet to earn anything
func badgeLog() models.ChatLog {
	night := -7 * 60.0
	afternoon := 5 * 60.0
	var log models.ChatLog
	for i := 0; i < 6; i++ {
		log.Records = append(log.Records, at(night+float64(i), "Alice", "where are you?"))
	}
	for i := 0; i < 5; i++ {
		log.Records = append(log.Records, at(afternoon+float64(i), "Bob", "busy at work"))
	}
	log.Records = append(log.Records,
		at(afternoon+10, "Carol", "lol 😂😂"),
		at(afternoon+11, "Carol", "😂😂😂"),
	)
	return log
}

func badgeNames(b models.UserBadges) []string {
	names := make([]string, 0, len(b.Badges))
	for _, badge := range b.Badges {
		names = append(names, badge.Name)
	}
	return names
}

func TestEngine_AssignBadges(t *testing.T) {
	engine, conv := prepare(t, badgeLog())

	badges, err := engine.AssignBadges(models.AllParticipants(), conv)
	require.NoError(t, err)
	require.Len(t, badges, 3)

	assert.Equal(t, "Alice", badges[0].Sender)
	assert.Equal(t, []string{"Night Owl", "Chatterbox", "Question Master"}, badgeNames(badges[0]))

	assert.Equal(t, "Bob", badges[1].Sender)
	assert.Empty(t, badges[1].Badges)

	// below the minimum message count
	assert.Equal(t, "Carol", badges[2].Sender)
	assert.Empty(t, badges[2].Badges)
}

func TestEngine_AssignBadgesScoped(t *testing.T) {
	engine, conv := prepare(t, badgeLog())

	badges, err := engine.AssignBadges(models.SenderScope("Alice"), conv)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	// Chatterbox still compares against the whole group
	assert.Contains(t, badgeNames(badges[0]), "Chatterbox")
}

func TestBadgeCatalogueHasNoDuplicates(t *testing.T) {
	seen := make(map[string]bool)
	for _, rule := range badgeCatalogue {
		assert.False(t, seen[rule.badge.Name], "duplicate badge %s", rule.badge.Name)
		seen[rule.badge.Name] = true
		assert.NotEmpty(t, rule.badge.Description)
	}
}

func TestChatterboxThreshold(t *testing.T) {
	profiles := func(counts ...int) []*senderProfile {
		out := make([]*senderProfile, 0, len(counts))
		for _, c := range counts {
			out = append(out, &senderProfile{messages: c})
		}
		return out
	}

	tests := []struct {
		name   string
		counts []int
		decile float64
		want   int
	}{
		{name: "small group keeps the top sender", counts: []int{3, 9, 5}, decile: 0.1, want: 9},
		{name: "twenty senders top two", counts: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, decile: 0.1, want: 19},
		{name: "whole group", counts: []int{4, 2}, decile: 1, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chatterboxThreshold(profiles(tt.counts...), tt.decile))
		})
	}
}
