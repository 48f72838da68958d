package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/storage"
)

const sampleChat = "04/03/2024, 09:00 - Alice: Hi!\n04/03/2024, 09:02 - Bob: Hello!!\n"

func TestHTTPSource_GetName(t *testing.T) {
	source := NewHTTPSource(time.Second, 1024)
	assert.Equal(t, "http", source.GetName())
	assert.True(t, source.IsEnabled())
}

func TestHTTPSource_FetchTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/exports/family.txt":
			w.Write([]byte(sampleChat))
		case "/exports/huge.txt":
			w.Write([]byte(strings.Repeat("x", 2048)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	source := NewHTTPSource(5*time.Second, 1024)

	tests := []struct {
		name     string
		ref      string
		wantName string
		wantErr  string
	}{
		{name: "downloads transcript", ref: server.URL + "/exports/family.txt", wantName: "family.txt"},
		{name: "not found", ref: server.URL + "/exports/missing.txt", wantErr: "status 404"},
		{name: "too large", ref: server.URL + "/exports/huge.txt", wantErr: "size limit"},
		{name: "unsupported scheme", ref: "ftp://example.com/chat.txt", wantErr: "invalid transcript URL"},
		{name: "not a URL", ref: "chat.txt", wantErr: "invalid transcript URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transcript, err := source.FetchTranscript(context.Background(), tt.ref)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, transcript.Name)
			assert.Equal(t, sampleChat, string(transcript.Data))
		})
	}
}

func TestHTTPSource_FetchTranscriptStopsReadingOversizedStream(t *testing.T) {
	const streamed = 64 << 20
	written := make(chan int, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// chunked transfer: no Content-Length for the client to check up front
		chunk := []byte(strings.Repeat("x", 32<<10))
		total := 0
		for total < streamed {
			n, err := w.Write(chunk)
			total += n
			if err != nil {
				break
			}
			w.(http.Flusher).Flush()
		}
		written <- total
	}))
	defer server.Close()

	source := NewHTTPSource(5*time.Second, 1024)
	_, err := source.FetchTranscript(context.Background(), server.URL+"/exports/stream.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooLarge)

	select {
	case total := <-written:
		assert.Less(t, total, streamed)
	case <-time.After(10 * time.Second):
		t.Fatal("server kept streaming after the client gave up")
	}
}

func TestStorageSource(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Store(ctx, "transcripts/family.txt", []byte(sampleChat)))
	require.NoError(t, store.Store(ctx, "transcripts/work.txt", []byte(sampleChat)))
	require.NoError(t, store.Store(ctx, "reports/family.txt.json", []byte("{}")))

	source := NewStorageSource(store, "transcripts/")
	assert.Equal(t, "storage", source.GetName())
	assert.True(t, source.IsEnabled())

	names, err := source.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"family.txt", "work.txt"}, names)

	transcript, err := source.FetchTranscript(ctx, "family.txt")
	require.NoError(t, err)
	assert.Equal(t, "family.txt", transcript.Name)
	assert.Equal(t, sampleChat, string(transcript.Data))

	_, err = source.FetchTranscript(ctx, "missing.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
