package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

func TestEngine_PersonalityMatches(t *testing.T) {
	engine, conv := prepare(t, trioLog())

	result, err := engine.PersonalityMatches(models.AllParticipants(), conv)
	require.NoError(t, err)
	assert.Equal(t, personalityFeatures, result.FeatureNames)
	require.Len(t, result.Profiles, 3)
	for _, p := range result.Profiles {
		assert.Len(t, p.Features, len(personalityFeatures))
	}

	// three senders give three unordered pairs
	require.Len(t, result.Matches, 3)
	seen := make(map[[2]string]bool)
	for i, m := range result.Matches {
		assert.NotEqual(t, m.UserA, m.UserB)
		assert.GreaterOrEqual(t, m.Similarity, -1.0)
		assert.LessOrEqual(t, m.Similarity, 1.0)
		assert.False(t, seen[[2]string{m.UserB, m.UserA}], "pair reported twice")
		seen[[2]string{m.UserA, m.UserB}] = true
		if i > 0 {
			assert.GreaterOrEqual(t, result.Matches[i-1].Similarity, m.Similarity)
		}
	}
}

func TestEngine_PersonalitySimilarityIsSymmetric(t *testing.T) {
	engine, conv := prepare(t, trioLog())
	profiles := engine.profiles(conv)

	vectors := make([][]float64, len(profiles))
	for i, p := range profiles {
		vectors[i] = p.features()
	}
	standardize(vectors)

	for i := range vectors {
		for j := range vectors {
			assert.InDelta(t, cosine(vectors[i], vectors[j]), cosine(vectors[j], vectors[i]), 1e-12)
		}
	}
}

func TestEngine_PersonalityScopedToSender(t *testing.T) {
	engine, conv := prepare(t, trioLog())

	result, err := engine.PersonalityMatches(models.SenderScope("Carol"), conv)
	require.NoError(t, err)
	require.Len(t, result.Matches, 2)
	for _, m := range result.Matches {
		assert.True(t, m.UserA == "Carol" || m.UserB == "Carol")
	}
}

func TestEngine_PersonalityNeedsTwoSenders(t *testing.T) {
	engine, conv := prepare(t, models.ChatLog{Records: []models.MessageRecord{
		at(0, "Alice", "talking to myself"),
		at(1, "Alice", "again"),
	}})

	result, err := engine.PersonalityMatches(models.AllParticipants(), conv)
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.Empty(t, result.Profiles)
}

func TestStandardize(t *testing.T) {
	vectors := [][]float64{{1, 5}, {3, 5}}
	standardize(vectors)

	// constant columns collapse to zero
	assert.Equal(t, 0.0, vectors[0][1])
	assert.Equal(t, 0.0, vectors[1][1])
	assert.InDelta(t, -vectors[0][0], vectors[1][0], 1e-12)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float64{1, 2}, []float64{2, 4}), 1e-12)
	assert.InDelta(t, -1.0, cosine([]float64{1, 0}, []float64{-1, 0}), 1e-12)
	assert.Equal(t, 0.0, cosine([]float64{0, 0}, []float64{1, 1}))
}
