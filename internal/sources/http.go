package sources

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// HTTPSource downloads transcripts exported to a web location
type HTTPSource struct {
	client   *resty.Client
	maxBytes int64
}

// Ensure HTTPSource implements Source
var _ Source = (*HTTPSource)(nil)

// NewHTTPSource creates a source that rejects bodies larger than maxBytes
func NewHTTPSource(timeout time.Duration, maxBytes int64) *HTTPSource {
	return &HTTPSource{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(2).
			SetRetryWaitTime(500*time.Millisecond).
			SetHeader("User-Agent", "WhatsApp-Chat-Analyzer/1.0"),
		maxBytes: maxBytes,
	}
}

func (h *HTTPSource) GetName() string {
	return "http"
}

func (h *HTTPSource) IsEnabled() bool {
	return true
}

// FetchTranscript downloads the transcript at ref, an http or https URL
func (h *HTTPSource) FetchTranscript(ctx context.Context, ref string) (*Transcript, error) {
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid transcript URL %q", ref)
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/plain").
		SetDoNotParseResponse(true).
		Get(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to download transcript: %w", err)
	}
	raw := resp.RawBody()
	defer raw.Close()

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("transcript download returned status %d", resp.StatusCode())
	}

	body, err := h.readBody(raw, resp.RawResponse.ContentLength)
	if err != nil {
		return nil, err
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || strings.TrimSpace(name) == "" {
		name = u.Host
	}

	logrus.Debugf("Downloaded transcript %s (%d bytes)", name, len(body))
	return &Transcript{Name: name, Data: body}, nil
}

// readBody reads at most maxBytes, rejecting a larger body without buffering the rest
func (h *HTTPSource) readBody(r io.Reader, declared int64) ([]byte, error) {
	if h.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	if declared > h.maxBytes {
		return nil, fmt.Errorf("%w: declared %d bytes, limit %d", ErrTooLarge, declared, h.maxBytes)
	}

	body, err := io.ReadAll(io.LimitReader(r, h.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	if int64(len(body)) > h.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, h.maxBytes)
	}
	return body, nil
}
