// Package sentiment labels review texts by the compound polarity of a scorer.
package sentiment

import (
	"github.com/jonreiter/govader"

	"github.com/aluiziolira/go-scrape-goodreads/models"
)

// Label is one of five opinion buckets.
type Label int

const (
	VeryPositive Label = iota
	Positive
	Neutral
	Negative
	VeryNegative
)

// Labels lists every label in display order.
var Labels = []Label{VeryPositive, Positive, Neutral, Negative, VeryNegative}

func (l Label) String() string {
	switch l {
	case VeryPositive:
		return "very positive"
	case Positive:
		return "positive"
	case Neutral:
		return "neutral"
	case Negative:
		return "negative"
	case VeryNegative:
		return "very negative"
	default:
		return "unknown"
	}
}

// Scorer returns a compound polarity in [-1, 1] for a text.
type Scorer interface {
	Compound(text string) float64
}

// VaderScorer scores texts with the VADER lexicon.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderScorer loads the VADER lexicon.
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Compound implements Scorer.
func (v *VaderScorer) Compound(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}

// Classifier maps texts to labels.
type Classifier struct {
	scorer Scorer
}

// New returns a classifier backed by scorer, or by VADER when scorer is nil.
func New(scorer Scorer) *Classifier {
	if scorer == nil {
		scorer = NewVaderScorer()
	}
	return &Classifier{scorer: scorer}
}

// Classify labels text by its compound score.
func (c *Classifier) Classify(text string) Label {
	return LabelFor(c.scorer.Compound(text))
}

// LabelFor buckets a compound score; the first matching range wins.
func LabelFor(score float64) Label {
	switch {
	case score >= 0.7:
		return VeryPositive
	case score >= 0.05:
		return Positive
	case score > -0.05:
		return Neutral
	case score >= -0.7:
		return Negative
	default:
		return VeryNegative
	}
}

// ClassifyReviews labels each review's content, in order.
func (c *Classifier) ClassifyReviews(reviews []models.Review) []Label {
	labels := make([]Label, len(reviews))
	for i, r := range reviews {
		labels[i] = c.Classify(r.Content)
	}
	return labels
}

// Count is the number of reviews carrying a label.
type Count struct {
	Label Label
	Count int
}

// Distribution counts labels, returning one entry per label in display order.
func Distribution(labels []Label) []Count {
	counts := make([]Count, len(Labels))
	for i, l := range Labels {
		counts[i].Label = l
	}
	for _, l := range labels {
		if l >= VeryPositive && l <= VeryNegative {
			counts[l].Count++
		}
	}
	return counts
}

// Dominant returns the most common label. Ties go to the label earlier in
// display order. ok is false when labels is empty.
func Dominant(labels []Label) (Label, bool) {
	if len(labels) == 0 {
		return Neutral, false
	}
	best := Count{Label: Neutral, Count: -1}
	for _, c := range Distribution(labels) {
		if c.Count > best.Count {
			best = c
		}
	}
	return best.Label, true
}
