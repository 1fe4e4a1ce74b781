// Package report assembles the GBP health report: classified metric
// cards, backend action items, and the local top-3 standing.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tribly-hq/dashboard-cli/internal/classifier"
	"github.com/tribly-hq/dashboard-cli/internal/model"
	"github.com/tribly-hq/dashboard-cli/pkg/tribly"
)

// Client is the slice of the backend client the builder needs.
type Client interface {
	HealthSnapshot(ctx context.Context, placeID string) (*tribly.HealthSnapshot, error)
	NearbyRank(ctx context.Context, q tribly.NearbyRankQuery) (*model.Top3InRadiusResult, error)
}

// Builder fetches and classifies a business's health report.
type Builder struct {
	client  Client
	radiusM int
	log     *zap.Logger
}

// NewBuilder creates a report builder. radiusM is the nearby-rank query
// radius; zero uses 2km.
func NewBuilder(client Client, radiusM int) *Builder {
	if radiusM <= 0 {
		radiusM = 2000
	}
	return &Builder{
		client:  client,
		radiusM: radiusM,
		log:     zap.L().With(zap.String("component", "report.builder")),
	}
}

// Build fetches the analysis snapshot and the nearby-rank standing
// concurrently and classifies all nine metrics. A nearby-rank failure
// degrades the report instead of failing it; the snapshot is required.
func (b *Builder) Build(ctx context.Context, placeID string) (*model.HealthReport, error) {
	var (
		snap *tribly.HealthSnapshot
		top3 *model.Top3InRadiusResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = b.client.HealthSnapshot(gctx, placeID)
		if err != nil {
			return eris.Wrap(err, "report: fetch snapshot")
		}
		return nil
	})
	g.Go(func() error {
		res, err := b.client.NearbyRank(gctx, tribly.NearbyRankQuery{
			PlaceID: placeID,
			RadiusM: b.radiusM,
		})
		if err != nil {
			b.log.Warn("nearby-rank unavailable", zap.String("place_id", placeID), zap.Error(err))
			return nil
		}
		top3 = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &model.HealthReport{
		PlaceID:     placeID,
		Cards:       buildCards(snap),
		ActionItems: snap.ActionItems,
		Top3:        top3,
		GeneratedAt: snap.Metrics.FetchedAt,
	}
	if top3 != nil {
		report.Top3Message = Top3Message(*top3)
	}
	return report, nil
}

// buildCards classifies every metric and orders the cards worst-first,
// keeping the fixed metric order within each severity.
func buildCards(snap *tribly.HealthSnapshot) []model.MetricCard {
	cards := make([]model.MetricCard, 0, len(model.AllMetricKeys))
	for _, key := range model.AllMetricKeys {
		status := classifier.ClassifyMetric(key, snap.Metrics, snap.Scores)
		content := classifier.Content(key)

		card := model.MetricCard{
			Key:         key,
			Title:       content.Title,
			Status:      status,
			Severity:    classifier.SeverityOf(status),
			Description: content.Description(status),
			Remediation: content.Remediation,
		}
		if snap.Scores != nil {
			if s, ok := snap.Scores[key]; ok {
				card.Score = &s
			}
		}
		cards = append(cards, card)
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return severityRank(cards[i].Severity) < severityRank(cards[j].Severity)
	})
	return cards
}

func severityRank(s model.Severity) int {
	switch s {
	case model.SeverityHigh:
		return 0
	case model.SeverityMedium:
		return 1
	default:
		return 2
	}
}

// Top3Message renders the local-pack standing. Fallback results are
// estimates from a bare rank number, so the copy is softened and never
// presented as ground truth.
func Top3Message(r model.Top3InRadiusResult) string {
	if r.Message != "" && r.Fallback {
		return fmt.Sprintf("Roughly rank #%d nearby (%s).", r.Rank, r.Message)
	}
	if r.Fallback {
		if r.InTop3 {
			return fmt.Sprintf("Likely in the local top 3 (estimated from search rank #%d).", r.Rank)
		}
		return fmt.Sprintf("Likely outside the local top 3 (estimated from search rank #%d).", r.Rank)
	}
	if r.InTop3 {
		return fmt.Sprintf("In the local top 3: rank #%d of %d businesses within %.1f km.", r.Rank, r.TotalInRadius, r.RadiusKm)
	}
	return fmt.Sprintf("Rank #%d of %d businesses within %.1f km.", r.Rank, r.TotalInRadius, r.RadiusKm)
}
