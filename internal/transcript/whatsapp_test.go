package transcript

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

func TestParse_Formats(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   time.Time
		sender string
		text   string
	}{
		{
			name:   "android 24h day first",
			input:  "25/12/2023, 21:05 - Alice: Merry Christmas",
			want:   time.Date(2023, 12, 25, 21, 5, 0, 0, time.UTC),
			sender: "Alice",
			text:   "Merry Christmas",
		},
		{
			name:   "us 12h month first two digit year",
			input:  "12/25/23, 9:05 PM - Bob: ho ho ho",
			want:   time.Date(2023, 12, 25, 21, 5, 0, 0, time.UTC),
			sender: "Bob",
			text:   "ho ho ho",
		},
		{
			name:   "narrow no-break space before meridiem",
			input:  "1/2/24, 12:30\u202fam - Carol: late night",
			want:   time.Date(2024, 2, 1, 0, 30, 0, 0, time.UTC),
			sender: "Carol",
			text:   "late night",
		},
		{
			name:   "ios bracketed with seconds",
			input:  "[31.12.2023, 23:59:58] Dan: almost midnight",
			want:   time.Date(2023, 12, 31, 23, 59, 58, 0, time.UTC),
			sender: "Dan",
			text:   "almost midnight",
		},
		{
			name:   "sender with colon in text",
			input:  "03/04/2024, 10:00 - Eve: note: bring snacks",
			want:   time.Date(2024, 4, 3, 10, 0, 0, 0, time.UTC),
			sender: "Eve",
			text:   "note: bring snacks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := Parse("chat.txt", strings.NewReader(tt.input), DefaultOptions())
			require.NoError(t, err)
			require.Len(t, log.Records, 1)
			rec := log.Records[0]
			assert.True(t, tt.want.Equal(rec.Timestamp), "got %s", rec.Timestamp)
			assert.Equal(t, tt.sender, rec.Sender)
			assert.Equal(t, tt.text, rec.Text)
		})
	}
}

func TestParse_Conversation(t *testing.T) {
	input := strings.Join([]string{
		"\ufeff04/03/2024, 09:00 - Messages and calls are end-to-end encrypted.",
		"04/03/2024, 09:00 - Alice created group \"Trip: 2024\"",
		"04/03/2024, 09:01 - Alice: Hi!",
		"04/03/2024, 09:03 - Bob: <Media omitted>",
		"04/03/2024, 09:05 - Alice: first line",
		"second line",
		"",
		"third line",
		"15/03/2024, 18:00 - Bob: see you",
	}, "\r\n")

	log, err := ParseBytes("trip.txt", []byte(input), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "trip.txt", log.Name)
	require.Len(t, log.Records, 6)

	assert.Equal(t, models.SystemSender, log.Records[0].Sender)
	assert.Equal(t, "Messages and calls are end-to-end encrypted.", log.Records[0].Text)
	assert.Equal(t, models.SystemSender, log.Records[1].Sender)

	assert.Equal(t, "Bob", log.Records[3].Sender)
	assert.True(t, log.Records[3].IsMedia)
	assert.False(t, log.Records[2].IsMedia)

	assert.Equal(t, "first line\nsecond line\n\nthird line", log.Records[4].Text)

	// 15/03 forces day-first for the whole file
	assert.Equal(t, time.March, log.Records[2].Timestamp.Month())
	assert.Equal(t, 4, log.Records[2].Timestamp.Day())

	assert.Equal(t, []string{"Alice", "Bob"}, log.Participants())
}

func TestParse_DetectsMonthFirst(t *testing.T) {
	input := "03/04/2024, 10:00 - Alice: one\n03/15/2024, 10:00 - Bob: two"

	log, err := Parse("us.txt", strings.NewReader(input), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, log.Records, 2)
	assert.Equal(t, time.March, log.Records[0].Timestamp.Month())
	assert.Equal(t, 4, log.Records[0].Timestamp.Day())
}

func TestParse_ExplicitOrderAndLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)

	opts := Options{Order: MonthFirst, Location: kolkata}
	log, err := Parse("chat.txt", strings.NewReader("03/04/2024, 10:00 - Alice: hi"), opts)
	require.NoError(t, err)
	require.Len(t, log.Records, 1)
	assert.Equal(t, time.March, log.Records[0].Timestamp.Month())
	assert.Equal(t, kolkata, log.Records[0].Timestamp.Location())
}

func TestParse_SortsStably(t *testing.T) {
	input := strings.Join([]string{
		"01/01/2024, 10:05 - Alice: later",
		"01/01/2024, 10:00 - Bob: earlier",
		"01/01/2024, 10:00 - Carol: same minute",
	}, "\n")

	log, err := Parse("chat.txt", strings.NewReader(input), DefaultOptions())
	require.NoError(t, err)
	senders := []string{log.Records[0].Sender, log.Records[1].Sender, log.Records[2].Sender}
	assert.Equal(t, []string{"Bob", "Carol", "Alice"}, senders)
}

func TestParse_Errors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		log, err := Parse("empty.txt", strings.NewReader(""), DefaultOptions())
		require.NoError(t, err)
		assert.Empty(t, log.Records)
	})

	t.Run("not a transcript", func(t *testing.T) {
		_, err := Parse("notes.txt", strings.NewReader("just some notes\nnothing else"), DefaultOptions())
		assert.ErrorIs(t, err, ErrUnrecognizedFormat)
	})

	t.Run("impossible date", func(t *testing.T) {
		_, err := Parse("bad.txt", strings.NewReader("31/02/2024, 10:00 - Alice: hi"), DefaultOptions())
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	})
}
