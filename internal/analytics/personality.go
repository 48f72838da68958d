package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

var personalityFeatures = []string{
	"avg_chars", "avg_words", "char_std", "avg_polarity", "avg_subjectivity",
	"exclamation_rate", "question_rate", "caps_ratio", "emoji_rate",
	"hours_00_04", "hours_04_08", "hours_08_12", "hours_12_16", "hours_16_20", "hours_20_24",
}

func (p *senderProfile) features() []float64 {
	f := []float64{
		p.avgChars, p.avgWords, p.charStd, p.polarity, p.subjectivity,
		p.style.ExclamationRate, p.style.QuestionRate, p.style.CapsRatio, p.style.EmojiRate,
	}
	for h := 0; h < 24; h += 4 {
		f = append(f, p.hourShare(h, h+4))
	}
	return f
}

// PersonalityMatches ranks every unordered sender pair by cosine similarity of standardized
// feature vectors. A single-sender scope keeps only the pairs that include that sender.
func (e *Engine) PersonalityMatches(scope models.Scope, conv *Conversation) (models.Personality, error) {
	if err := conv.CheckScope(scope); err != nil {
		return models.Personality{}, err
	}

	result := models.Personality{
		FeatureNames: personalityFeatures,
		Profiles:     []models.PersonalityProfile{},
		Matches:      []models.SimilarityPair{},
	}
	profiles := e.profiles(conv)
	if len(profiles) < 2 {
		return result, nil
	}

	vectors := make([][]float64, len(profiles))
	for i, p := range profiles {
		vectors[i] = p.features()
	}
	standardize(vectors)

	for i, p := range profiles {
		result.Profiles = append(result.Profiles, models.PersonalityProfile{Sender: p.sender, Features: vectors[i]})
	}

	for i := 0; i < len(profiles); i++ {
		for j := i + 1; j < len(profiles); j++ {
			a, b := profiles[i].sender, profiles[j].sender
			if !scope.Includes(a) && !scope.Includes(b) {
				continue
			}
			result.Matches = append(result.Matches, models.SimilarityPair{
				UserA:      a,
				UserB:      b,
				Similarity: cosine(vectors[i], vectors[j]),
			})
		}
	}

	// pairs were generated in (i, j) order so a stable sort breaks ties by participant order
	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].Similarity > result.Matches[j].Similarity
	})
	return result, nil
}

// standardize rescales every feature column to zero mean and unit variance in place.
// Constant columns become zero.
func standardize(vectors [][]float64) {
	if len(vectors) == 0 {
		return
	}
	column := make([]float64, len(vectors))
	for f := range vectors[0] {
		for i, v := range vectors {
			column[i] = v[f]
		}
		mu, sigma := stat.MeanStdDev(column, nil)
		for _, v := range vectors {
			if sigma == 0 || math.IsNaN(sigma) {
				v[f] = 0
				continue
			}
			v[f] = (v[f] - mu) / sigma
		}
	}
}

func cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(floats.Dot(a, b)/(na*nb), -1, 1)
}
