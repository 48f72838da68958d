// Package transcript normalizes exported WhatsApp chat text into a models.ChatLog.
package transcript

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

var (
	// ErrUnrecognizedFormat is returned when no line of the input looks like a WhatsApp message header
	ErrUnrecognizedFormat = errors.New("unrecognized transcript format")
	// ErrInvalidTimestamp is returned for a header whose date or time cannot exist
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// DateOrder selects how the two leading date fields are read
type DateOrder int

const (
	// DetectOrder scans the whole file: a first field above 12 means day-first, a second
	// field above 12 means month-first; ambiguous files default to day-first.
	DetectOrder DateOrder = iota
	DayFirst
	MonthFirst
)

// Options controls parsing
type Options struct {
	Order            DateOrder
	Location         *time.Location
	MediaPlaceholder string
}

// DefaultOptions parses in UTC with automatic date order detection
func DefaultOptions() Options {
	return Options{Order: DetectOrder, Location: time.UTC, MediaPlaceholder: "<Media omitted>"}
}

// header matches "12/31/23, 9:05 PM - " and "[31.12.2023, 21:05:09] " style prefixes
var header = regexp.MustCompile(
	`^\[?(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4}),?\s+(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\s*([AaPp])\.?\s?[Mm]\.?)?\]?\s*(?:-\s+)?(.*)$`)

type rawLine struct {
	a, b, year   int
	hour, minute int
	second       int
	meridiem     string
	body         string
}

// Parse reads a transcript from r
func Parse(name string, r io.Reader, opts Options) (models.ChatLog, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.MediaPlaceholder == "" {
		opts.MediaPlaceholder = DefaultOptions().MediaPlaceholder
	}

	var lines []*rawLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	first := true
	skipped := 0
	for scanner.Scan() {
		text := normalizeSpaces(scanner.Text())
		if first {
			text = strings.TrimPrefix(text, "\ufeff")
			first = false
		}

		if raw, ok := parseHeader(text); ok {
			lines = append(lines, raw)
			continue
		}
		if len(lines) == 0 {
			skipped++
			continue
		}
		// continuation of a multi-line message
		lines[len(lines)-1].body += "\n" + text
	}
	if err := scanner.Err(); err != nil {
		return models.ChatLog{}, fmt.Errorf("read transcript %s: %w", name, err)
	}
	if len(lines) == 0 {
		if skipped == 0 {
			return models.ChatLog{Name: name}, nil
		}
		return models.ChatLog{}, fmt.Errorf("%w: %s has no message headers", ErrUnrecognizedFormat, name)
	}

	order := opts.Order
	if order == DetectOrder {
		order = detectOrder(lines)
	}

	log := models.ChatLog{Name: name, Records: make([]models.MessageRecord, 0, len(lines))}
	for i, raw := range lines {
		ts, err := raw.timestamp(order, opts.Location)
		if err != nil {
			return models.ChatLog{}, fmt.Errorf("line %d of %s: %w", i+1, name, err)
		}
		sender, text := splitBody(raw.body)
		rec := models.MessageRecord{Timestamp: ts, Sender: sender, Text: text}
		rec.IsMedia = isMedia(text, opts.MediaPlaceholder)
		log.Records = append(log.Records, rec)
	}

	sort.SliceStable(log.Records, func(i, j int) bool {
		return log.Records[i].Timestamp.Before(log.Records[j].Timestamp)
	})

	logrus.Debugf("Parsed %d records from %s (%d leading lines skipped)", len(log.Records), name, skipped)
	return log, nil
}

// ParseBytes is Parse over an in-memory transcript
func ParseBytes(name string, data []byte, opts Options) (models.ChatLog, error) {
	return Parse(name, bytes.NewReader(data), opts)
}

func normalizeSpaces(s string) string {
	return strings.NewReplacer("\u202f", " ", "\u00a0", " ", "\u200e", "", "\r", "").Replace(s)
}

func parseHeader(line string) (*rawLine, bool) {
	m := header.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	raw := &rawLine{meridiem: strings.ToUpper(m[7]), body: m[8]}
	raw.a, _ = strconv.Atoi(m[1])
	raw.b, _ = strconv.Atoi(m[2])
	raw.year, _ = strconv.Atoi(m[3])
	raw.hour, _ = strconv.Atoi(m[4])
	raw.minute, _ = strconv.Atoi(m[5])
	if m[6] != "" {
		raw.second, _ = strconv.Atoi(m[6])
	}
	return raw, true
}

func detectOrder(lines []*rawLine) DateOrder {
	for _, l := range lines {
		if l.a > 12 {
			return DayFirst
		}
		if l.b > 12 {
			return MonthFirst
		}
	}
	return DayFirst
}

func (l *rawLine) timestamp(order DateOrder, loc *time.Location) (time.Time, error) {
	day, month := l.a, l.b
	if order == MonthFirst {
		day, month = l.b, l.a
	}
	year := l.year
	if year < 100 {
		year += 2000
	}

	hour := l.hour
	switch l.meridiem {
	case "P":
		if hour < 12 {
			hour += 12
		}
	case "A":
		if hour == 12 {
			hour = 0
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || l.minute > 59 || l.second > 59 {
		return time.Time{}, fmt.Errorf("%w: %02d/%02d/%d %02d:%02d", ErrInvalidTimestamp, day, month, year, l.hour, l.minute)
	}
	ts := time.Date(year, time.Month(month), day, hour, l.minute, l.second, 0, loc)
	if ts.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %02d/%02d/%d", ErrInvalidTimestamp, day, month, year)
	}
	return ts, nil
}

// splitBody separates "Sender: text"; bodies without a sender are system notices
func splitBody(body string) (sender, text string) {
	idx := strings.Index(body, ": ")
	if idx <= 0 {
		return models.SystemSender, strings.TrimSpace(body)
	}
	sender = strings.TrimSpace(body[:idx])
	// the sender sits on the first line and never contains quotes; subject changes do
	if sender == "" || strings.ContainsAny(sender, "\n\"\u201c\u201d") {
		return models.SystemSender, strings.TrimSpace(body)
	}
	return sender, body[idx+2:]
}

func isMedia(text, placeholder string) bool {
	t := strings.TrimSpace(text)
	return t == placeholder || strings.HasSuffix(t, "(file attached)") || strings.HasSuffix(t, "omitted>")
}
