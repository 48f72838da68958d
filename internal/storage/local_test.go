package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Store(ctx, "transcripts/family.txt", []byte("hello")))
	require.NoError(t, s.Store(ctx, "transcripts/work.txt", []byte("standup")))
	require.NoError(t, s.Store(ctx, "reports/family.txt.json", []byte("{}")))

	data, err := s.Retrieve(ctx, "transcripts/family.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	keys, err := s.List(ctx, "transcripts/")
	require.NoError(t, err)
	assert.Equal(t, []string{"transcripts/family.txt", "transcripts/work.txt"}, keys)

	exists, err := Exists(ctx, s, "reports/family.txt.json")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Delete(ctx, "transcripts/work.txt"))
	exists, err = Exists(ctx, s, "transcripts/work.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_Errors(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
	}{
		{name: "empty key", key: ""},
		{name: "parent escape", key: "../outside.txt"},
		{name: "nested escape", key: "reports/../../outside.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, s.Store(ctx, tt.key, []byte("x")))
		})
	}

	_, err = s.Retrieve(ctx, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing.txt"), ErrNotFound)

	_, err = NewLocalStorage("")
	assert.Error(t, err)
}
