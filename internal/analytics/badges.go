package analytics

import (
	"math"
	"sort"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/config"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

// senderProfile holds the per-sender aggregates shared by badges and personality matching
type senderProfile struct {
	sender       string
	messages     int
	hours        [24]int
	avgChars     float64
	avgWords     float64
	charStd      float64
	polarity     float64
	subjectivity float64
	positive     float64
	style        models.StyleStats
	latencies    []float64
	initiations  int
}

func (p *senderProfile) hourShare(from, to int) float64 {
	n := 0
	for h := from; h < to; h++ {
		n += p.hours[h]
	}
	return ratio(n, p.messages)
}

// profiles builds one profile per participant in participant order
func (e *Engine) profiles(conv *Conversation) []*senderProfile {
	scores := e.MessageSentiments(conv)
	grouped := bySender(conv.chatter)

	latencies := make(map[string][]float64)
	for _, r := range e.replies(conv) {
		latencies[r.answer.Sender] = append(latencies[r.answer.Sender], r.minutes)
	}
	initiations := make(map[string]int)
	for _, seg := range e.segments(conv) {
		initiations[seg[0].Sender]++
	}

	out := make([]*senderProfile, 0, len(conv.participants))
	for _, sender := range conv.participants {
		own := grouped[sender]
		p := &senderProfile{
			sender:      sender,
			messages:    len(own),
			style:       styleOf(sender, own),
			latencies:   latencies[sender],
			initiations: initiations[sender],
		}

		var chars, words, pols, subs []float64
		positives := 0
		for _, m := range own {
			p.hours[m.Timestamp.Hour()]++
			if m.IsMedia {
				continue
			}
			chars = append(chars, float64(m.CharCount))
			words = append(words, float64(m.WordCount))
			if s := scores[m.Index]; s.Scored {
				pols = append(pols, s.Polarity)
				subs = append(subs, s.Subjectivity)
				if s.Label == models.Positive {
					positives++
				}
			}
		}
		p.avgChars = mean(chars)
		p.avgWords = mean(words)
		p.charStd = stdDev(chars)
		p.polarity = mean(pols)
		p.subjectivity = mean(subs)
		p.positive = ratio(positives, len(pols))
		out = append(out, p)
	}
	return out
}

type badgeContext struct {
	policy              config.BadgePolicy
	chatterboxThreshold int
	conversations       int
}

// badgeRule is one catalogue entry; the catalogue order is the award order
type badgeRule struct {
	badge  models.Badge
	earned func(p *senderProfile, ctx badgeContext) bool
}

var badgeCatalogue = []badgeRule{
	{
		badge: models.Badge{Name: "Night Owl", Description: "Sends a large share of messages between midnight and 5am"},
		earned: func(p *senderProfile, ctx badgeContext) bool {
			return p.hourShare(0, 5) > ctx.policy.NightOwlShare
		},
	},
	{
		badge: models.Badge{Name: "Early Bird", Description: "Sends a large share of messages between 5am and 9am"},
		earned: func(p *senderProfile, ctx badgeContext) bool {
			return p.hourShare(5, 9) > ctx.policy.EarlyBirdShare
		},
	},
	{
		badge: models.Badge{Name: "Chatterbox", Description: "Message count in the top decile of the group"},
		earned: func(p *senderProfile, ctx badgeContext) bool {
			return p.messages >= ctx.chatterboxThreshold
		},
	},
	{
		badge: models.Badge{Name: "Wordsmith", Description: "Writes long messages on average"},
		earned: func(p *senderProfile, ctx badgeContext) bool {
			return p.avgWords > ctx.policy.WordsmithAvgWords
		},
	},
	{
		badge: models.Badge{Name: "Emoji Enthusiast", Description: "Uses emojis in abundance"},
		earned: func(p *senderProfile, ctx badgeContext) bool {
			return p.style.EmojiRate > ctx.policy.EmojiRate
		},
	},
	{
		badge: models.Badge{Name: "Link Sharer", Description: "Frequently shares links"},
		earned: func(p *senderProfile, ctx badgeContext) bool {
			return p.style.LinkRate > ctx.policy.LinkRate
		},
	},
	{
		badge: models.Badge{Name: "Question Master", Description: "Asks a lot of questions"},
		earned: func(p *senderProfile, ctx badgeContext) bool {
			return p.style.QuestionRate > ctx.policy.QuestionRate
		},
	},
	{
		badge: models.Badge{Name: "Speedy Responder", Description: "Typically replies within minutes"},
		earned: func(p *senderProfile, ctx badgeContext) bool {
			return len(p.latencies) >= ctx.policy.SpeedyMinObservations &&
				median(p.latencies) <= ctx.policy.SpeedyMedianMinutes
		},
	},
	{
		badge: models.Badge{Name: "Conversation Starter", Description: "Starts a large share of conversations"},
		earned: func(p *senderProfile, ctx badgeContext) bool {
			return ctx.conversations >= ctx.policy.StarterMinSegments &&
				ratio(p.initiations, ctx.conversations) >= ctx.policy.StarterShare
		},
	},
	{
		badge: models.Badge{Name: "Positive Vibes", Description: "Keeps the mood positive"},
		earned: func(p *senderProfile, ctx badgeContext) bool {
			return p.positive >= ctx.policy.PositiveVibes
		},
	},
}

// AssignBadges evaluates the badge catalogue for every sender in scope. Senders below the
// minimum message count earn nothing; badges are listed in catalogue order.
func (e *Engine) AssignBadges(scope models.Scope, conv *Conversation) ([]models.UserBadges, error) {
	if err := conv.CheckScope(scope); err != nil {
		return nil, err
	}

	profiles := e.profiles(conv)
	ctx := badgeContext{
		policy:              e.policy.Badges,
		chatterboxThreshold: chatterboxThreshold(profiles, e.policy.Badges.ChatterboxDecile),
		conversations:       len(e.segments(conv)),
	}

	out := []models.UserBadges{}
	for _, p := range profiles {
		if !scope.Includes(p.sender) {
			continue
		}
		earned := []models.Badge{}
		if p.messages >= e.policy.Badges.MinMessages {
			for _, rule := range badgeCatalogue {
				if rule.earned(p, ctx) {
					earned = append(earned, rule.badge)
				}
			}
		}
		out = append(out, models.UserBadges{Sender: p.sender, Badges: earned})
	}
	return out, nil
}

// chatterboxThreshold is the message count at the top-decile rank
func chatterboxThreshold(profiles []*senderProfile, decile float64) int {
	if len(profiles) == 0 {
		return math.MaxInt
	}
	counts := make([]int, len(profiles))
	for i, p := range profiles {
		counts[i] = p.messages
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))
	rank := int(math.Ceil(float64(len(counts))*decile)) - 1
	if rank < 0 {
		rank = 0
	}
	return counts[rank]
}
