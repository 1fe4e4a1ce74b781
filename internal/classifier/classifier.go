// Package classifier maps raw GBP metrics to a three-level health status
// and to the static presentation content rendered on the report page.
package classifier

import (
	"github.com/tribly-hq/dashboard-cli/internal/model"
)

// Score band boundaries for the normalized 0-100 path. The backend
// encodes metric-specific nuance into the score once, so this rule is
// universal: >70 good, 40-70 average, <40 poor.
const (
	scoreGoodAbove   = 70
	scoreAverageFrom = 40
)

// Input carries the two possible classification inputs for one metric.
// Score is the backend-normalized 0-100 value and wins when present;
// Raw is the metric-specific fallback input (already inverted where the
// metric calls for it, see FallbackInput).
type Input struct {
	Score *float64
	Raw   *float64
}

// thresholds is a "good <= Good, average <= Average, else poor" tuple
// applied to the fallback input.
type thresholds struct {
	Good    float64
	Average float64
}

// fallbackThresholds is the legacy raw-value rule per metric. The cutoffs
// assume the inversion performed by FallbackInput; changing one side
// without the other silently flips a metric's meaning.
var fallbackThresholds = map[model.MetricKey]thresholds{
	model.MetricSearchRank:          {Good: 5, Average: 10},
	model.MetricProfileCompletion:   {Good: 20, Average: 40},
	model.MetricSEOScore:            {Good: 30, Average: 60},
	model.MetricReviewScore:         {Good: 0, Average: 1},
	model.MetricReviewReplyScore:    {Good: 20, Average: 50},
	model.MetricResponseTime:        {Good: 24, Average: 72},
	model.MetricPhotos:              {Good: 0, Average: 5},
	model.MetricReviewSentiment:     {Good: 20, Average: 40},
	model.MetricLocalPackVisibility: {Good: 30, Average: 60},
}

// Classify returns the status for one metric. It is total: a nil score
// falls back to the raw threshold rule, and when neither input is
// available the metric reads as average rather than failing.
func Classify(key model.MetricKey, in Input) model.Status {
	if in.Score != nil {
		return classifyScore(*in.Score)
	}
	if in.Raw != nil {
		if t, ok := fallbackThresholds[key]; ok {
			return classifyRaw(*in.Raw, t)
		}
	}
	return model.StatusAverage
}

func classifyScore(score float64) model.Status {
	switch {
	case score > scoreGoodAbove:
		return model.StatusGood
	case score >= scoreAverageFrom:
		return model.StatusAverage
	default:
		return model.StatusPoor
	}
}

func classifyRaw(v float64, t thresholds) model.Status {
	switch {
	case v <= t.Good:
		return model.StatusGood
	case v <= t.Average:
		return model.StatusAverage
	default:
		return model.StatusPoor
	}
}

// FallbackInput derives the raw-threshold input for a metric from the
// snapshot. Several metrics invert the natural value so that every
// threshold tuple reads "lower is better":
//
//	profileCompletion   100 - completionPercent   (missing fields)
//	seoScore            100 - seoScore
//	reviewScore         2 - reviewsPerWeek        (target 2/week)
//	reviewReplyScore    100 - replyRatePercent
//	photos              15 - photoCount           (target 15 photos)
//	reviewSentiment     100 - positiveSentimentPercent
//	localPackVisibility 100 - localPackAppearancePercent
//
// searchRank and responseTime pass through unmodified. Photo quality
// participates only via the normalized-score path. ok is false when the
// needed raw field is absent from the snapshot.
func FallbackInput(key model.MetricKey, m model.Metrics) (float64, bool) {
	switch key {
	case model.MetricSearchRank:
		return deref(m.SearchRank)
	case model.MetricProfileCompletion:
		return inverted(100, m.ProfileCompletionPercent)
	case model.MetricSEOScore:
		return inverted(100, m.SEOScore)
	case model.MetricReviewScore:
		return inverted(2, m.ReviewsPerWeek)
	case model.MetricReviewReplyScore:
		return inverted(100, m.ReplyRatePercent)
	case model.MetricResponseTime:
		return deref(m.ResponseTimeHours)
	case model.MetricPhotos:
		return inverted(15, m.PhotoCount)
	case model.MetricReviewSentiment:
		return inverted(100, m.PositiveSentimentPercent)
	case model.MetricLocalPackVisibility:
		return inverted(100, m.LocalPackAppearancePercent)
	default:
		return 0, false
	}
}

func deref(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

func inverted(target float64, v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return target - *v, true
}

// ClassifyMetric combines the score map and the snapshot for one metric:
// a present normalized score ignores the raw fallback entirely.
func ClassifyMetric(key model.MetricKey, m model.Metrics, scores model.ScoreMap) model.Status {
	var in Input
	if scores != nil {
		if s, ok := scores[key]; ok {
			in.Score = &s
		}
	}
	if in.Score == nil {
		if raw, ok := FallbackInput(key, m); ok {
			in.Raw = &raw
		}
	}
	return Classify(key, in)
}

// SeverityOf maps a status to the detail-view severity. The mapping is
// fixed: poor is high, average is medium, good is low.
func SeverityOf(s model.Status) model.Severity {
	switch s {
	case model.StatusPoor:
		return model.SeverityHigh
	case model.StatusAverage:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}
