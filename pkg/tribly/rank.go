package tribly

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tribly-hq/dashboard-cli/internal/model"
)

// NearbyRankQuery identifies the business either by place id or by
// coordinates. SearchRank, when known, lets the server fall back to a
// rank-only estimate when spatial data is unavailable.
type NearbyRankQuery struct {
	PlaceID    string
	Lat, Lng   float64
	HasLatLng  bool
	RadiusM    int
	SearchRank int
}

type nearbyRankEnvelope struct {
	InTop3        bool    `json:"in_top_3"`
	Rank          int     `json:"rank"`
	TotalInRadius int     `json:"total_in_radius"`
	RadiusKm      float64 `json:"radius_km"`
	Message       string  `json:"message"`
	Fallback      bool    `json:"fallback"`
}

// NearbyRank asks whether the business ranks in the local top 3 within
// the given radius. Fallback results are estimates, not ground truth.
func (c *httpClient) NearbyRank(ctx context.Context, q NearbyRankQuery) (*model.Top3InRadiusResult, error) {
	query := url.Values{}
	if q.PlaceID != "" {
		query.Set("place_id", q.PlaceID)
	} else if q.HasLatLng {
		query.Set("lat", strconv.FormatFloat(q.Lat, 'f', -1, 64))
		query.Set("lng", strconv.FormatFloat(q.Lng, 'f', -1, 64))
	}
	if q.RadiusM > 0 {
		query.Set("radius_m", strconv.Itoa(q.RadiusM))
	}
	if q.SearchRank > 0 {
		query.Set("search_rank", strconv.Itoa(q.SearchRank))
	}

	var envelope nearbyRankEnvelope
	if err := c.do(ctx, http.MethodGet, "/dashboard/v1/locations/nearby-rank", query, nil, false, &envelope); err != nil {
		return nil, err
	}
	return &model.Top3InRadiusResult{
		InTop3:        envelope.InTop3,
		Rank:          envelope.Rank,
		TotalInRadius: envelope.TotalInRadius,
		RadiusKm:      envelope.RadiusKm,
		Message:       envelope.Message,
		Fallback:      envelope.Fallback,
	}, nil
}
