package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseISODuration(t *testing.T) {
	cases := map[string]int{
		"PT3M45S":   225,
		"PT1H2M3S":  3723,
		"PT45S":     45,
		"PT2M":      120,
		"PT1H":      3600,
		"PT0S":      0,
		"":          0,
		"P1DT2H":    0,
		"PT3M45.5S": 0,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseISODuration(in), "input %q", in)
	}
}

func TestSearchDisabledWithoutKey(t *testing.T) {
	client := NewYouTubeClient("")

	assert.False(t, client.Enabled())
	_, err := client.Search(context.Background(), "karaoke", 5)
	assert.ErrorIs(t, err, ErrDisabled)
}
