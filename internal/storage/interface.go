// Package storage persists transcripts and generated reports.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Retrieve when no object exists under the key
var ErrNotFound = errors.New("object not found")

// StorageInterface defines the contract for transcript and report persistence.
// Keys are slash separated paths such as "transcripts/family.txt".
type StorageInterface interface {
	Store(ctx context.Context, key string, data []byte) error
	Retrieve(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// Exists reports whether an object is stored under key
func Exists(ctx context.Context, s StorageInterface, key string) (bool, error) {
	_, err := s.Retrieve(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
