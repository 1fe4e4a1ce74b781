package tribly

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tribly-hq/dashboard-cli/internal/apierr"
	"github.com/tribly-hq/dashboard-cli/internal/model"
)

type businessesEnvelope struct {
	Status        string              `json:"status"`
	Data          []model.Business    `json:"data"`
	Total         int                 `json:"total"`
	TotalPages    int                 `json:"total_pages"`
	FilterOptions model.FilterOptions `json:"filter_options"`
}

// OnboardedBusinesses lists onboarded businesses with filters and paging.
func (c *httpClient) OnboardedBusinesses(ctx context.Context, filter model.BusinessFilter) (*model.BusinessPage, error) {
	query := url.Values{}
	setIf := func(key, val string) {
		if val != "" {
			query.Set(key, val)
		}
	}
	setIf("search", filter.Search)
	setIf("category", filter.Category)
	setIf("status_filter", filter.StatusFilter)
	setIf("city", filter.City)
	setIf("area", filter.Area)
	setIf("onboarded_by", filter.OnboardedBy)
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(filter.PageSize))
	}

	path := "/dashboard/v1/business_qr/onboarded_businesses"
	var envelope businessesEnvelope
	if err := c.do(ctx, http.MethodGet, path, query, nil, false, &envelope); err != nil {
		return nil, err
	}
	if envelope.Status != "" && envelope.Status != "success" && envelope.Status != "ok" {
		return nil, &apierr.DecodeError{Endpoint: path, Reason: "unexpected status " + envelope.Status}
	}
	return &model.BusinessPage{
		Businesses:    envelope.Data,
		Total:         envelope.Total,
		TotalPages:    envelope.TotalPages,
		FilterOptions: envelope.FilterOptions,
	}, nil
}
