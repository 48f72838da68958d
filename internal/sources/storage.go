package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/storage"
)

// StorageSource reads transcripts uploaded under a storage prefix
type StorageSource struct {
	storage storage.StorageInterface
	prefix  string
}

// Ensure StorageSource implements Source
var _ Source = (*StorageSource)(nil)

// NewStorageSource creates a source over the keys below prefix
func NewStorageSource(s storage.StorageInterface, prefix string) *StorageSource {
	return &StorageSource{storage: s, prefix: prefix}
}

func (s *StorageSource) GetName() string {
	return "storage"
}

func (s *StorageSource) IsEnabled() bool {
	return s.storage != nil
}

// List returns the transcript names below the prefix, without the prefix
func (s *StorageSource) List(ctx context.Context) ([]string, error) {
	keys, err := s.storage.List(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if name := strings.TrimPrefix(key, s.prefix); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// FetchTranscript reads the transcript stored as prefix+ref
func (s *StorageSource) FetchTranscript(ctx context.Context, ref string) (*Transcript, error) {
	data, err := s.storage.Retrieve(ctx, s.prefix+ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript %s: %w", ref, err)
	}
	return &Transcript{Name: ref, Data: data}, nil
}
