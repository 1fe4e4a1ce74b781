package model

// Business is one onboarded business as returned by the dashboard API.
type Business struct {
	ID          string `json:"id"`
	PlaceID     string `json:"place_id,omitempty"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	City        string `json:"city,omitempty"`
	Area        string `json:"area,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Status      string `json:"status,omitempty"`
	OnboardedBy string `json:"onboarded_by,omitempty"`
	OnboardedAt string `json:"onboarded_at,omitempty"`
	ReviewURL   string `json:"review_url,omitempty"`
}

// BusinessFilter narrows the onboarded-businesses listing. Zero values
// mean "no filter"; Page is 1-based.
type BusinessFilter struct {
	Search       string `json:"search,omitempty"`
	Category     string `json:"category,omitempty"`
	StatusFilter string `json:"status_filter,omitempty"`
	City         string `json:"city,omitempty"`
	Area         string `json:"area,omitempty"`
	OnboardedBy  string `json:"onboarded_by,omitempty"`
	Page         int    `json:"page,omitempty"`
	PageSize     int    `json:"page_size,omitempty"`
}

// FilterOptions enumerates the distinct values available for each
// filterable field, as computed by the backend.
type FilterOptions struct {
	Categories  []string `json:"categories"`
	Cities      []string `json:"cities"`
	Areas       []string `json:"areas"`
	OnboardedBy []string `json:"onboarded_by"`
}

// BusinessPage is one page of the onboarded-businesses listing.
type BusinessPage struct {
	Businesses    []Business    `json:"businesses"`
	Total         int           `json:"total"`
	TotalPages    int           `json:"total_pages"`
	FilterOptions FilterOptions `json:"filter_options"`
}

// Top3InRadiusResult answers "is this business in the local top 3 within
// the queried radius". Fallback means the backend estimated from a bare
// rank number instead of a spatial neighbor query; renderers must soften
// the copy rather than present it as ground truth.
type Top3InRadiusResult struct {
	InTop3        bool    `json:"in_top_3"`
	Rank          int     `json:"rank"`
	TotalInRadius int     `json:"total_in_radius"`
	RadiusKm      float64 `json:"radius_km"`
	Message       string  `json:"message,omitempty"`
	Fallback      bool    `json:"fallback"`
}

// Credentials is the stored user session issued by the login endpoint.
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}
