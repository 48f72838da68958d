package analytics

import (
	"fmt"
	"math"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

// roleContext holds the group-wide extremes role rules compare against
type roleContext struct {
	maxResponseRate float64
	medianMessages  float64
	maxInitiations  int
	minLatency      float64
}

// roleRule is one (predicate, role) entry; rules are evaluated in order and the first match wins
type roleRule struct {
	role    models.Role
	matches func(s models.RoleStats, ctx roleContext) bool
}

var roleRules = []roleRule{
	{
		role: models.RoleConnector,
		matches: func(s models.RoleStats, ctx roleContext) bool {
			return ctx.maxResponseRate > 0 && s.ResponseRate == ctx.maxResponseRate &&
				float64(s.TotalMessages) > ctx.medianMessages
		},
	},
	{
		role: models.RoleInitiator,
		matches: func(s models.RoleStats, ctx roleContext) bool {
			return ctx.maxInitiations > 0 && s.Initiations == ctx.maxInitiations
		},
	},
	{
		role: models.RoleResponsive,
		matches: func(s models.RoleStats, ctx roleContext) bool {
			return s.HasLatency && s.AvgLatencyMinutes == ctx.minLatency
		},
	},
}

// classifyRole applies the role rules in priority order
func classifyRole(s models.RoleStats, ctx roleContext) models.Role {
	for _, rule := range roleRules {
		if rule.matches(s, ctx) {
			return rule.role
		}
	}
	return models.RoleParticipant
}

// GroupDynamics builds the interaction matrix and assigns roles. It needs the all-participant
// scope and enough participants; otherwise the result is marked not applicable.
func (e *Engine) GroupDynamics(scope models.Scope, conv *Conversation) (models.GroupDynamics, error) {
	if err := conv.CheckScope(scope); err != nil {
		return models.GroupDynamics{}, err
	}
	if !scope.IsAll() {
		return models.GroupDynamics{Reason: "group dynamics need the all-participant scope", Roles: []models.RoleAssignment{}}, nil
	}
	if n := len(conv.participants); n < e.policy.MinGroupParticipants {
		return models.GroupDynamics{
			Reason: fmt.Sprintf("need at least %d participants, have %d", e.policy.MinGroupParticipants, n),
			Roles:  []models.RoleAssignment{},
		}, nil
	}

	matrix := e.InteractionMatrix(conv)
	stats := e.roleStats(conv)

	ctx := roleContext{minLatency: math.Inf(1)}
	volumes := make([]float64, 0, len(stats))
	for _, s := range stats {
		volumes = append(volumes, float64(s.TotalMessages))
		ctx.maxResponseRate = math.Max(ctx.maxResponseRate, s.ResponseRate)
		if s.Initiations > ctx.maxInitiations {
			ctx.maxInitiations = s.Initiations
		}
		if s.HasLatency {
			ctx.minLatency = math.Min(ctx.minLatency, s.AvgLatencyMinutes)
		}
	}
	ctx.medianMessages = median(volumes)

	roles := make([]models.RoleAssignment, 0, len(stats))
	for i, sender := range conv.participants {
		roles = append(roles, models.RoleAssignment{
			Sender: sender,
			Role:   classifyRole(stats[i], ctx),
			Stats:  stats[i],
		})
	}

	return models.GroupDynamics{Applicable: true, Matrix: &matrix, Roles: roles}, nil
}

// InteractionMatrix counts, for every ordered pair, how often the second sender's message
// directly followed the first's within the gap ceiling
func (e *Engine) InteractionMatrix(conv *Conversation) models.InteractionMatrix {
	n := len(conv.participants)
	index := make(map[string]int, n)
	for i, p := range conv.participants {
		index[p] = i
	}
	counts := make([][]int, n)
	for i := range counts {
		counts[i] = make([]int, n)
	}

	for i := 1; i < len(conv.chatter); i++ {
		prev, cur := conv.chatter[i-1], conv.chatter[i]
		if prev.Sender == cur.Sender || cur.Timestamp.Sub(prev.Timestamp) > e.policy.GapCeiling {
			continue
		}
		counts[index[prev.Sender]][index[cur.Sender]]++
	}

	return models.InteractionMatrix{Participants: conv.Participants(), Counts: counts}
}

// roleStats returns per-participant stats in participant order
func (e *Engine) roleStats(conv *Conversation) []models.RoleStats {
	index := make(map[string]int, len(conv.participants))
	for i, p := range conv.participants {
		index[p] = i
	}
	stats := make([]models.RoleStats, len(conv.participants))
	latencies := make([][]float64, len(conv.participants))

	for _, m := range conv.chatter {
		stats[index[m.Sender]].TotalMessages++
	}
	for _, r := range e.replies(conv) {
		i := index[r.answer.Sender]
		stats[i].Responses++
		latencies[i] = append(latencies[i], r.minutes)
	}
	for _, seg := range e.segments(conv) {
		stats[index[seg[0].Sender]].Initiations++
	}

	for i := range stats {
		stats[i].ResponseRate = ratio(stats[i].Responses, stats[i].TotalMessages)
		if len(latencies[i]) > 0 {
			stats[i].HasLatency = true
			stats[i].AvgLatencyMinutes = mean(latencies[i])
		}
	}
	return stats
}
