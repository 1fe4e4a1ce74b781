package tribly

import (
	"context"
	"net/http"

	"github.com/tribly-hq/dashboard-cli/internal/apierr"
	"github.com/tribly-hq/dashboard-cli/internal/model"
)

// HealthSnapshot is the raw analysis payload behind the report page:
// the metric snapshot, the optional normalized score per metric, and
// the backend-produced action items in their original order.
type HealthSnapshot struct {
	Metrics     model.Metrics
	Scores      model.ScoreMap
	ActionItems []model.ActionItem
}

type healthSnapshotEnvelope struct {
	Data struct {
		Metrics      *model.Metrics     `json:"metrics"`
		MetricScores map[string]float64 `json:"metric_scores"`
		ActionItems  []model.ActionItem `json:"action_items"`
	} `json:"data"`
}

// HealthSnapshot fetches the GBP analysis snapshot for a business.
func (c *httpClient) HealthSnapshot(ctx context.Context, placeID string) (*HealthSnapshot, error) {
	path := "/dashboard/v1/gbp/businesses/" + placeID + "/health"
	var envelope healthSnapshotEnvelope
	if err := c.do(ctx, http.MethodGet, path, nil, nil, false, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.Metrics == nil {
		return nil, &apierr.DecodeError{Endpoint: path, Reason: "missing data.metrics"}
	}

	snap := &HealthSnapshot{
		Metrics:     *envelope.Data.Metrics,
		ActionItems: envelope.Data.ActionItems,
	}
	if snap.Metrics.FetchedAt.IsZero() {
		snap.Metrics.FetchedAt = c.now().UTC()
	}
	if len(envelope.Data.MetricScores) > 0 {
		snap.Scores = make(model.ScoreMap, len(envelope.Data.MetricScores))
		for k, v := range envelope.Data.MetricScores {
			snap.Scores[model.MetricKey(k)] = v
		}
	}
	return snap, nil
}
