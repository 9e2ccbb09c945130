package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/go-scrape-goodreads/models"
)

// fixedScorer returns a preset score per text.
type fixedScorer map[string]float64

func (f fixedScorer) Compound(text string) float64 {
	return f[text]
}

func TestLabelForBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Label
	}{
		{score: 1, want: VeryPositive},
		{score: 0.85, want: VeryPositive},
		{score: 0.7, want: VeryPositive},
		{score: 0.6999, want: Positive},
		{score: 0.05, want: Positive},
		{score: 0.0499, want: Neutral},
		{score: 0, want: Neutral},
		{score: -0.0499, want: Neutral},
		{score: -0.05, want: Negative},
		{score: -0.7, want: Negative},
		{score: -0.701, want: VeryNegative},
		{score: -1, want: VeryNegative},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := LabelFor(tt.score); got != tt.want {
				t.Fatalf("LabelFor(%v) = %v, want %v", tt.score, got, tt.want)
			}
		})
	}
}

func TestClassifyReviews(t *testing.T) {
	c := New(fixedScorer{"great": 0.9, "fine": 0.3, "meh": 0, "awful": -0.9})
	reviews := []models.Review{
		{Content: "great"},
		{Content: "awful"},
		{Content: "fine"},
		{Content: "great"},
		{Content: "meh"},
	}

	labels := c.ClassifyReviews(reviews)
	assert.Equal(t, []Label{VeryPositive, VeryNegative, Positive, VeryPositive, Neutral}, labels)

	dist := Distribution(labels)
	require.Len(t, dist, len(Labels))
	assert.Equal(t, Count{Label: VeryPositive, Count: 2}, dist[0])
	assert.Equal(t, Count{Label: Negative, Count: 0}, dist[3])

	dominant, ok := Dominant(labels)
	assert.True(t, ok)
	assert.Equal(t, VeryPositive, dominant)
}

func TestDominantTieUsesLabelOrder(t *testing.T) {
	dominant, ok := Dominant([]Label{Negative, Positive, Negative, Positive})
	require.True(t, ok)
	assert.Equal(t, Positive, dominant)

	_, ok = Dominant(nil)
	assert.False(t, ok)
}

func TestVaderScorer(t *testing.T) {
	c := New(nil)
	assert.Equal(t, VeryPositive, c.Classify("I love this book, it is absolutely wonderful and amazing!"))
	assert.Contains(t, []Label{Negative, VeryNegative}, c.Classify("This was a terrible, boring, awful book. I hated it."))
}
