package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribly-hq/dashboard-cli/internal/model"
	"github.com/tribly-hq/dashboard-cli/pkg/tribly"
)

type fakeBackend struct {
	snap    *tribly.HealthSnapshot
	snapErr error
	top3    *model.Top3InRadiusResult
	top3Err error
}

func (f *fakeBackend) HealthSnapshot(_ context.Context, _ string) (*tribly.HealthSnapshot, error) {
	return f.snap, f.snapErr
}

func (f *fakeBackend) NearbyRank(_ context.Context, _ tribly.NearbyRankQuery) (*model.Top3InRadiusResult, error) {
	return f.top3, f.top3Err
}

func f64(v float64) *float64 { return &v }

func TestBuild_ClassifiesAllMetricsWorstFirst(t *testing.T) {
	backend := &fakeBackend{
		snap: &tribly.HealthSnapshot{
			Metrics: model.Metrics{
				SearchRank:               f64(12), // poor
				ProfileCompletionPercent: f64(90), // missing=10 -> good
			},
			Scores: model.ScoreMap{
				model.MetricPhotos: 55, // average via score path
			},
			ActionItems: []model.ActionItem{
				{ID: "a1", Priority: model.PriorityHigh, Title: "Reply to reviews"},
				{ID: "a2", Priority: model.PriorityLow, Title: "Add photos"},
			},
		},
		top3: &model.Top3InRadiusResult{InTop3: true, Rank: 2, TotalInRadius: 14, RadiusKm: 2},
	}

	rep, err := NewBuilder(backend, 0).Build(context.Background(), "place-1")
	require.NoError(t, err)
	require.Len(t, rep.Cards, len(model.AllMetricKeys))

	byKey := map[model.MetricKey]model.MetricCard{}
	for _, c := range rep.Cards {
		byKey[c.Key] = c
	}
	assert.Equal(t, model.StatusPoor, byKey[model.MetricSearchRank].Status)
	assert.Equal(t, model.SeverityHigh, byKey[model.MetricSearchRank].Severity)
	assert.Equal(t, model.StatusGood, byKey[model.MetricProfileCompletion].Status)
	assert.Equal(t, model.StatusAverage, byKey[model.MetricPhotos].Status)
	require.NotNil(t, byKey[model.MetricPhotos].Score)
	assert.InDelta(t, 55, *byKey[model.MetricPhotos].Score, 0.001)

	// Worst first.
	assert.Equal(t, model.SeverityHigh, rep.Cards[0].Severity)
	last := rep.Cards[len(rep.Cards)-1]
	assert.Equal(t, model.SeverityLow, last.Severity)

	// Action items keep insertion order.
	require.Len(t, rep.ActionItems, 2)
	assert.Equal(t, "a1", rep.ActionItems[0].ID)

	assert.Contains(t, rep.Top3Message, "top 3")
	assert.NotContains(t, rep.Top3Message, "Likely")
}

func TestBuild_SnapshotFailureIsFatal(t *testing.T) {
	backend := &fakeBackend{snapErr: errors.New("boom")}

	_, err := NewBuilder(backend, 0).Build(context.Background(), "place-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch snapshot")
}

func TestBuild_NearbyRankFailureDegrades(t *testing.T) {
	backend := &fakeBackend{
		snap:    &tribly.HealthSnapshot{},
		top3Err: errors.New("spatial service down"),
	}

	rep, err := NewBuilder(backend, 0).Build(context.Background(), "place-1")
	require.NoError(t, err)
	assert.Nil(t, rep.Top3)
	assert.Empty(t, rep.Top3Message)
	assert.Len(t, rep.Cards, len(model.AllMetricKeys))
}

func TestTop3Message_FallbackSoftensCopy(t *testing.T) {
	exact := Top3Message(model.Top3InRadiusResult{InTop3: true, Rank: 1, TotalInRadius: 9, RadiusKm: 2})
	assert.Contains(t, exact, "rank #1 of 9")

	estimated := Top3Message(model.Top3InRadiusResult{InTop3: true, Rank: 2, Fallback: true})
	assert.Contains(t, estimated, "Likely")
	assert.Contains(t, estimated, "estimated")

	withMsg := Top3Message(model.Top3InRadiusResult{Rank: 4, Fallback: true, Message: "estimated from search rank"})
	assert.Contains(t, withMsg, "Roughly")
	assert.Contains(t, withMsg, "estimated from search rank")
}
