package model

import "time"

// MetricKey identifies one of the nine GBP health metrics.
type MetricKey string

const (
	MetricSearchRank          MetricKey = "searchRank"
	MetricProfileCompletion   MetricKey = "profileCompletion"
	MetricSEOScore            MetricKey = "seoScore"
	MetricReviewScore         MetricKey = "reviewScore"
	MetricReviewReplyScore    MetricKey = "reviewReplyScore"
	MetricResponseTime        MetricKey = "responseTime"
	MetricPhotos              MetricKey = "photos"
	MetricReviewSentiment     MetricKey = "reviewSentiment"
	MetricLocalPackVisibility MetricKey = "localPackVisibility"
)

// AllMetricKeys lists every metric in report display order.
var AllMetricKeys = []MetricKey{
	MetricSearchRank,
	MetricProfileCompletion,
	MetricSEOScore,
	MetricReviewScore,
	MetricReviewReplyScore,
	MetricResponseTime,
	MetricPhotos,
	MetricReviewSentiment,
	MetricLocalPackVisibility,
}

// Metrics is a raw GBP measurement snapshot for one business. Fields are
// pointers because the backend omits metrics it could not measure; a nil
// field disables the raw-threshold fallback for classifications that
// depend on it.
type Metrics struct {
	SearchRank                 *float64  `json:"search_rank"`
	ProfileCompletionPercent   *float64  `json:"profile_completion_percent"`
	SEOScore                   *float64  `json:"seo_score"`
	ReviewsPerWeek             *float64  `json:"reviews_per_week"`
	ReplyRatePercent           *float64  `json:"reply_rate_percent"`
	ResponseTimeHours          *float64  `json:"response_time_hours"`
	PhotoCount                 *float64  `json:"photo_count"`
	PhotoQualityPercent        *float64  `json:"photo_quality_percent"`
	PositiveSentimentPercent   *float64  `json:"positive_sentiment_percent"`
	NeutralSentimentPercent    *float64  `json:"neutral_sentiment_percent"`
	NegativeSentimentPercent   *float64  `json:"negative_sentiment_percent"`
	LocalPackAppearancePercent *float64  `json:"local_pack_appearance_percent"`
	FetchedAt                  time.Time `json:"fetched_at"`
}

// ScoreMap holds backend-normalized 0-100 scores per metric. A missing
// key sends classification down the raw-threshold fallback path.
type ScoreMap map[MetricKey]float64

// Status is the three-level classification of a metric.
type Status string

const (
	StatusGood    Status = "good"
	StatusAverage Status = "average"
	StatusPoor    Status = "poor"
)

// Severity drives the detail view ordering and badge color.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ActionPriority ranks backend-produced action items.
type ActionPriority string

const (
	PriorityHigh   ActionPriority = "high"
	PriorityMedium ActionPriority = "medium"
	PriorityLow    ActionPriority = "low"
)

// ActionItem is a backend-produced remediation task. Items are rendered
// in insertion order; the client never re-sorts them.
type ActionItem struct {
	ID          string         `json:"id"`
	Priority    ActionPriority `json:"priority"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
}
