package analytics

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

const (
	nmfEpsilon      = 1e-9
	nmfSeed         = 1
	minTopicVocab   = 5
	minTermDocCount = 2
)

// TopicModel factorizes the scope's term-frequency matrix into latent topics with
// non-negative matrix factorization. Sparse corpora yield a not-applicable result.
func (e *Engine) TopicModel(scope models.Scope, conv *Conversation) (models.Topics, error) {
	msgs, err := conv.filter(scope)
	if err != nil {
		return models.Topics{}, err
	}

	docs := e.topicDocuments(msgs)
	tokens := 0
	for _, d := range docs {
		tokens += len(d)
	}
	if tokens < e.policy.TopicMinTokens {
		return notApplicableTopics(fmt.Sprintf("need at least %d tokens, have %d", e.policy.TopicMinTokens, tokens)), nil
	}

	vocab := e.topicVocabulary(docs)
	if len(vocab) < minTopicVocab {
		return notApplicableTopics(fmt.Sprintf("need at least %d distinct terms, have %d", minTopicVocab, len(vocab))), nil
	}

	k := e.policy.TopicCount
	if k > len(vocab) {
		k = len(vocab)
	}
	if k > len(docs) {
		k = len(docs)
	}

	v := termMatrix(docs, vocab)
	w, h := factorize(v, k, e.policy.TopicIterations)
	return models.Topics{Applicable: true, Topics: e.describeTopics(w, h, vocab)}, nil
}

func notApplicableTopics(reason string) models.Topics {
	return models.Topics{Reason: reason, Topics: []models.Topic{}}
}

// topicDocuments turns each tokenized message into a document, merging neighbours
// once the corpus outgrows the document cap
func (e *Engine) topicDocuments(msgs []*Message) [][]string {
	var docs [][]string
	for _, m := range msgs {
		if !m.IsMedia && len(m.Tokens) > 0 {
			docs = append(docs, m.Tokens)
		}
	}

	limit := e.policy.TopicMaxDocuments
	if len(docs) <= limit {
		return docs
	}
	size := (len(docs) + limit - 1) / limit
	merged := make([][]string, 0, limit)
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		var doc []string
		for _, d := range docs[start:end] {
			doc = append(doc, d...)
		}
		merged = append(merged, doc)
	}
	return merged
}

// topicVocabulary keeps repeated terms when enough exist, capped by frequency
func (e *Engine) topicVocabulary(docs [][]string) map[string]int {
	terms := rankTerms(docs)

	repeated := 0
	for _, t := range terms {
		if t.count >= minTermDocCount {
			repeated++
		}
	}
	if repeated >= minTopicVocab {
		terms = terms[:repeated]
	}
	if len(terms) > e.policy.TopicMaxVocabulary {
		terms = terms[:e.policy.TopicMaxVocabulary]
	}

	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t.term] = i
	}
	return vocab
}

func termMatrix(docs [][]string, vocab map[string]int) *mat.Dense {
	v := mat.NewDense(len(docs), len(vocab), nil)
	for i, d := range docs {
		for _, tok := range d {
			if j, ok := vocab[tok]; ok {
				v.Set(i, j, v.At(i, j)+1)
			}
		}
	}
	return v
}

// factorize runs Lee-Seung multiplicative updates from a seeded start so results repeat
func factorize(v *mat.Dense, k, iterations int) (w, h *mat.Dense) {
	rows, cols := v.Dims()
	rng := rand.New(rand.NewSource(nmfSeed))
	w = mat.NewDense(rows, k, nil)
	h = mat.NewDense(k, cols, nil)
	w.Apply(func(_, _ int, _ float64) float64 { return rng.Float64() + nmfEpsilon }, w)
	h.Apply(func(_, _ int, _ float64) float64 { return rng.Float64() + nmfEpsilon }, h)

	var num, gram, den mat.Dense
	for it := 0; it < iterations; it++ {
		num.Reset()
		gram.Reset()
		den.Reset()
		num.Mul(w.T(), v)
		gram.Mul(w.T(), w)
		den.Mul(&gram, h)
		h.Apply(func(i, j int, x float64) float64 {
			return x * num.At(i, j) / (den.At(i, j) + nmfEpsilon)
		}, h)

		num.Reset()
		gram.Reset()
		den.Reset()
		num.Mul(v, h.T())
		gram.Mul(h, h.T())
		den.Mul(w, &gram)
		w.Apply(func(i, j int, x float64) float64 {
			return x * num.At(i, j) / (den.At(i, j) + nmfEpsilon)
		}, w)
	}
	return w, h
}

// describeTopics ranks topics by their share of the reconstructed corpus
func (e *Engine) describeTopics(w, h *mat.Dense, vocab map[string]int) []models.Topic {
	terms := make([]string, len(vocab))
	for term, j := range vocab {
		terms[j] = term
	}

	rows, k := w.Dims()
	_, cols := h.Dims()
	mass := make([]float64, k)
	total := 0.0
	for t := 0; t < k; t++ {
		var wSum, hSum float64
		for i := 0; i < rows; i++ {
			wSum += w.At(i, t)
		}
		for j := 0; j < cols; j++ {
			hSum += h.At(t, j)
		}
		mass[t] = wSum * hSum
		total += mass[t]
	}

	n := e.policy.TopicWords
	if n > cols {
		n = cols
	}

	topics := make([]models.Topic, 0, k)
	for t := 0; t < k; t++ {
		order := make([]int, cols)
		for j := range order {
			order[j] = j
		}
		sort.SliceStable(order, func(a, b int) bool { return h.At(t, order[a]) > h.At(t, order[b]) })

		words := make([]string, 0, n)
		for _, j := range order[:n] {
			words = append(words, terms[j])
		}
		strength := 0.0
		if total > 0 {
			strength = mass[t] / total
		}
		topics = append(topics, models.Topic{Words: words, Strength: strength})
	}

	sort.SliceStable(topics, func(i, j int) bool { return topics[i].Strength > topics[j].Strength })
	for i := range topics {
		topics[i].ID = i + 1
	}
	return topics
}
