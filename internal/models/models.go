package models

import (
	"fmt"
	"time"
)

// SystemSender marks non-participant notices (joins, leaves, subject changes).
const SystemSender = "SYSTEM"

// MessageRecord is one normalized transcript line
type MessageRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	IsMedia   bool      `json:"is_media"`
}

// IsSystem reports whether the record is a system notice rather than a participant message
func (m MessageRecord) IsSystem() bool {
	return m.Sender == SystemSender
}

// ChatLog is the full ordered transcript. It is never mutated once built.
type ChatLog struct {
	Name    string          `json:"name,omitempty"`
	Records []MessageRecord `json:"records"`
}

// Participants returns the distinct non-system senders in first-appearance order
func (l ChatLog) Participants() []string {
	seen := make(map[string]struct{})
	var participants []string
	for _, r := range l.Records {
		if r.IsSystem() {
			continue
		}
		if _, ok := seen[r.Sender]; ok {
			continue
		}
		seen[r.Sender] = struct{}{}
		participants = append(participants, r.Sender)
	}
	return participants
}

// HasParticipant reports whether sender wrote at least one message
func (l ChatLog) HasParticipant(sender string) bool {
	for _, r := range l.Records {
		if !r.IsSystem() && r.Sender == sender {
			return true
		}
	}
	return false
}

// Scope restricts an analysis to one sender. The zero value means all participants.
type Scope struct {
	Sender string `json:"sender,omitempty"`
}

// AllParticipants is the scope covering every non-system sender
func AllParticipants() Scope {
	return Scope{}
}

// SenderScope restricts an analysis to a single sender
func SenderScope(sender string) Scope {
	return Scope{Sender: sender}
}

// IsAll reports whether the scope covers every participant
func (s Scope) IsAll() bool {
	return s.Sender == ""
}

// Includes reports whether a sender contributes to computations under this scope
func (s Scope) Includes(sender string) bool {
	if sender == SystemSender {
		return false
	}
	return s.IsAll() || s.Sender == sender
}

func (s Scope) String() string {
	if s.IsAll() {
		return "Overall"
	}
	return s.Sender
}

// ParseScope maps the presentation-layer selector onto a Scope
func ParseScope(selector string) Scope {
	switch selector {
	case "", "Overall", "overall", "all", "All":
		return AllParticipants()
	default:
		return SenderScope(selector)
	}
}

// Alias maps a real participant identifier onto its pseudonym
type Alias struct {
	Original  string `json:"original"`
	Pseudonym string `json:"pseudonym"`
}

// Alert represents a notification about a degraded analysis run
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "critical", "warning", "info"
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Report    *Report   `json:"report,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Digest groups the reports produced by one batch run
type Digest struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Reports     []*Report `json:"reports"`
	Errors      []string  `json:"errors,omitempty"`
}

// TotalMessages sums message counts over every report that carries basic stats
func (d *Digest) TotalMessages() int {
	total := 0
	for _, r := range d.Reports {
		if r.BasicStats != nil {
			total += r.BasicStats.TotalMessages
		}
	}
	return total
}

func (d *Digest) String() string {
	return fmt.Sprintf("digest %s: %d reports, %d errors", d.RunID, len(d.Reports), len(d.Errors))
}
