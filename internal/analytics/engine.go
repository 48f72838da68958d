// Package analytics is the chat analytics engine: pure, stateless transformations
// from a normalized transcript into statistics, sentiment, dynamics, topics,
// group structure, badges and personality rankings.
package analytics

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/config"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

var (
	// ErrUnknownSender is returned when a scope names a sender absent from the log
	ErrUnknownSender = errors.New("unknown sender")
	// ErrInvalidLog is returned for structurally invalid transcripts
	ErrInvalidLog = errors.New("invalid chat log")
)

// Engine evaluates analyses under a fixed policy. It holds no per-transcript state.
type Engine struct {
	policy    config.Policy
	stopWords map[string]struct{}
}

// New creates an engine for the given policy
func New(policy config.Policy) *Engine {
	stop := make(map[string]struct{}, len(defaultStopWords)+len(policy.StopWords))
	for _, w := range defaultStopWords {
		stop[w] = struct{}{}
	}
	for _, w := range policy.StopWords {
		stop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &Engine{policy: policy, stopWords: stop}
}

// Policy returns the cutoffs the engine was built with
func (e *Engine) Policy() config.Policy {
	return e.policy
}

// Message is a transcript record with its derived fields computed once
type Message struct {
	models.MessageRecord
	Index     int
	WordCount int
	CharCount int
	Links     []string
	Emojis    []string
	Tokens    []string
}

// HasText reports whether the message carries scoreable text
func (m *Message) HasText() bool {
	return !m.IsMedia && strings.TrimSpace(m.Text) != ""
}

// Conversation is the read-only, prepared view of one ChatLog shared by every component
type Conversation struct {
	log          models.ChatLog
	messages     []*Message
	chatter      []*Message // non-system messages in order
	participants []string
	known        map[string]struct{}

	sentimentOnce sync.Once
	sentiments    []models.MessageSentiment
}

// Prepare validates the log and computes derived fields for every record
func (e *Engine) Prepare(log models.ChatLog) (*Conversation, error) {
	conv := &Conversation{
		log:      log,
		messages: make([]*Message, 0, len(log.Records)),
		known:    make(map[string]struct{}),
	}

	for i, rec := range log.Records {
		if strings.TrimSpace(rec.Sender) == "" {
			return nil, fmt.Errorf("%w: record %d has an empty sender", ErrInvalidLog, i)
		}
		if i > 0 && rec.Timestamp.Before(log.Records[i-1].Timestamp) {
			return nil, fmt.Errorf("%w: record %d is out of order", ErrInvalidLog, i)
		}

		msg := e.derive(rec, i)
		conv.messages = append(conv.messages, msg)
		if rec.IsSystem() {
			continue
		}
		conv.chatter = append(conv.chatter, msg)
		if _, ok := conv.known[rec.Sender]; !ok {
			conv.known[rec.Sender] = struct{}{}
			conv.participants = append(conv.participants, rec.Sender)
		}
	}

	return conv, nil
}

func (e *Engine) derive(rec models.MessageRecord, index int) *Message {
	msg := &Message{MessageRecord: rec, Index: index}
	if rec.IsMedia || strings.TrimSpace(rec.Text) == e.policy.MediaPlaceholder {
		msg.IsMedia = true
		return msg
	}
	msg.WordCount = len(strings.Fields(rec.Text))
	msg.CharCount = utf8.RuneCountInString(rec.Text)
	msg.Links = ExtractLinks(rec.Text)
	msg.Emojis = ExtractEmojis(rec.Text)
	msg.Tokens = e.Tokenize(rec.Text)
	return msg
}

// Log returns the underlying transcript
func (c *Conversation) Log() models.ChatLog {
	return c.log
}

// Participants returns non-system senders in first-appearance order
func (c *Conversation) Participants() []string {
	out := make([]string, len(c.participants))
	copy(out, c.participants)
	return out
}

// CheckScope fails fast when the scope references an unknown sender
func (c *Conversation) CheckScope(scope models.Scope) error {
	if scope.IsAll() {
		return nil
	}
	if _, ok := c.known[scope.Sender]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSender, scope.Sender)
	}
	return nil
}

// filter returns the non-system messages contributing under scope
func (c *Conversation) filter(scope models.Scope) ([]*Message, error) {
	if err := c.CheckScope(scope); err != nil {
		return nil, err
	}
	if scope.IsAll() {
		return c.chatter, nil
	}
	var out []*Message
	for _, m := range c.chatter {
		if m.Sender == scope.Sender {
			out = append(out, m)
		}
	}
	return out, nil
}

// scopedParticipants lists the senders a per-user table reports on
func (c *Conversation) scopedParticipants(scope models.Scope) []string {
	if scope.IsAll() {
		return c.Participants()
	}
	return []string{scope.Sender}
}
