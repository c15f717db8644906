package products

import (
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	"github.com/angelmondragon/homeservices-backend/pkg/pagination"
)

// ListFilters describe the supported filter knobs for the catalog browse endpoint.
type ListFilters struct {
	Category string
	Status   enums.ProductStatus
	Search   string
	// Pagination is optional; a zero value returns the full matching list.
	Pagination pagination.Params
}

func (f ListFilters) paginated() bool {
	return f.Pagination.Limit > 0 || f.Pagination.Cursor != ""
}

// ListResult is a page of products plus the cursor for the next page, if any.
type ListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"nextCursor,omitempty"`
}
