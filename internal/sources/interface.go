// Package sources fetches raw transcripts for analysis.
package sources

import (
	"context"
	"errors"
)

// ErrTooLarge is returned when a transcript exceeds the configured size limit
var ErrTooLarge = errors.New("transcript exceeds size limit")

// Transcript is an unparsed chat export
type Transcript struct {
	Name string
	Data []byte
}

// Source defines the contract for transcript sources
type Source interface {
	GetName() string
	FetchTranscript(ctx context.Context, ref string) (*Transcript, error)
	IsEnabled() bool
}
