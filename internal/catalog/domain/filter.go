package domain

// Sort options for catalog queries.
const (
	SortNewest     = "newest"
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortRatingDesc = "rating_desc"
)

// Pagination bounds. DefaultLimit matches the web client's default page
// size; MaxLimit keeps a permissive endpoint from returning unbounded pages.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	RatingMax    = 5
)

// Filter is the ephemeral query value object. It is constructed fresh for
// every request and never persisted. A zero Filter normalizes to the default
// "first page of everything, newest first" query.
type Filter struct {
	Page      int      `json:"page"`
	Limit     int      `json:"limit"`
	Search    string   `json:"search,omitempty"`
	Category  string   `json:"category,omitempty"`
	Sort      string   `json:"sort,omitempty"`
	MinPrice  *float64 `json:"minPrice,omitempty"`
	MaxPrice  *float64 `json:"maxPrice,omitempty"`
	MinRating float64  `json:"minRating,omitempty"`
	Featured  bool     `json:"featured,omitempty"`
}

// DefaultFilter returns the filter every field resets to.
func DefaultFilter() Filter {
	return Filter{
		Page:     DefaultPage,
		Limit:    DefaultLimit,
		Category: CategoryAll,
		Sort:     SortNewest,
	}
}

// Normalize coerces every invalid field to its default instead of failing.
// The endpoint is deliberately permissive: callers may omit anything, and
// malformed values degrade to the default query rather than a 4xx.
//
// Default table:
//
//	page       < 1            -> 1
//	limit      < 1            -> 10
//	limit      > 100          -> 100
//	category   unknown, ""    -> "all"
//	sort       unknown, ""    -> "newest"
//	minPrice   < 0            -> unset
//	maxPrice   < 0            -> unset
//	minPrice > maxPrice       -> both unset
//	minRating  outside [0,5]  -> 0
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Category == "" || (f.Category != CategoryAll && !ValidCategory(f.Category)) {
		f.Category = CategoryAll
	}
	switch f.Sort {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortRatingDesc:
	default:
		f.Sort = SortNewest
	}
	if f.MinPrice != nil && *f.MinPrice < 0 {
		f.MinPrice = nil
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		f.MaxPrice = nil
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		f.MinPrice = nil
		f.MaxPrice = nil
	}
	if f.MinRating < 0 || f.MinRating > RatingMax {
		f.MinRating = 0
	}
	return f
}

// Offset returns the number of records to skip for this page.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Pagination is the metadata half of a page envelope.
type Pagination struct {
	TotalDocs   int64 `json:"totalDocs"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"totalPages"`
	Page        int   `json:"page"`
	HasPrevPage bool  `json:"hasPrevPage"`
	HasNextPage bool  `json:"hasNextPage"`
}

// PageEnvelope bundles one result slice with its pagination metadata.
type PageEnvelope struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// NewPagination derives the metadata for a total match count under a
// normalized filter. An empty result still reports totalPages = 1 so the
// "page X of Y" presentation never divides by or displays zero.
func NewPagination(totalDocs int64, f Filter) Pagination {
	totalPages := int((totalDocs + int64(f.Limit) - 1) / int64(f.Limit))
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{
		TotalDocs:   totalDocs,
		Limit:       f.Limit,
		TotalPages:  totalPages,
		Page:        f.Page,
		HasPrevPage: f.Page > 1,
		HasNextPage: f.Page < totalPages,
	}
}
