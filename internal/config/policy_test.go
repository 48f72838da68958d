package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyIsValid(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, p Policy)
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			check: func(t *testing.T, p Policy) {
				assert.Equal(t, DefaultPolicy(), p)
			},
		},
		{
			name: "overlay",
			yaml: "gap_ceiling: 90m\nstop_words: [lol, haha]\nbadges:\n  night_owl_share: 0.4\n",
			check: func(t *testing.T, p Policy) {
				assert.Equal(t, 90*time.Minute, p.GapCeiling)
				assert.Equal(t, []string{"lol", "haha"}, p.StopWords)
				assert.Equal(t, 0.4, p.Badges.NightOwlShare)
				assert.Equal(t, DefaultPolicy().Badges.EarlyBirdShare, p.Badges.EarlyBirdShare)
			},
		},
		{name: "inverted thresholds", yaml: "positive_threshold: -0.2\nnegative_threshold: 0.2\n", wantErr: true},
		{name: "threshold out of range", yaml: "positive_threshold: 1.5\n", wantErr: true},
		{name: "zero ceiling", yaml: "gap_ceiling: 0s\n", wantErr: true},
		{name: "empty placeholder", yaml: "media_placeholder: \"\"\n", wantErr: true},
		{name: "zero topic count", yaml: "topic_count: 0\n", wantErr: true},
		{name: "bad decile", yaml: "badges:\n  chatterbox_decile: 2\n", wantErr: true},
		{name: "malformed yaml", yaml: "top_words: [\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePolicy([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestLoadPolicy_EmptyPath(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), p)
}
