package ridderiq

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/ridderiq-client/internal/constants"
)

// QueryParams is the single source of query parameters for a request.
// Nil pointers and empty strings are never sent.
type QueryParams struct {
	Page   *int
	Size   *int
	Sort   string
	Filter string
}

// ToValues converts QueryParams to url.Values, omitting unset keys.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q == nil {
		return values
	}

	if q.Page != nil {
		values.Set(constants.QueryParamPage, strconv.Itoa(*q.Page))
	}

	if q.Size != nil {
		values.Set(constants.QueryParamSize, strconv.Itoa(*q.Size))
	}

	if q.Sort != "" {
		values.Set(constants.QueryParamSort, q.Sort)
	}

	if q.Filter != "" {
		values.Set(constants.QueryParamFilter, q.Filter)
	}

	return values
}

// Assemble validates pagination and merges it with sort and the compiled
// filter. Reads get page and size defaults for whatever was not supplied.
func Assemble(method Method, page PageParams, sort, filter string) (*QueryParams, error) {
	if page.Size != nil && (*page.Size <= 0 || *page.Size > constants.MaxPageSize) {
		return nil, NewValidationError("page_size", fmt.Errorf("%w: got %d", ErrPageSizeOutOfRange, *page.Size))
	}

	if page.Page != nil && *page.Page <= 0 {
		return nil, NewValidationError("page", fmt.Errorf("%w: got %d", ErrPageOutOfRange, *page.Page))
	}

	params := &QueryParams{
		Page:   copyInt(page.Page),
		Size:   copyInt(page.Size),
		Sort:   sort,
		Filter: filter,
	}

	if method.IsRead() {
		if params.Page == nil {
			params.Page = intPtr(constants.DefaultPage)
		}

		if params.Size == nil {
			params.Size = intPtr(constants.DefaultPageSize)
		}
	}

	return params, nil
}

func intPtr(v int) *int {
	return &v
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}

	return intPtr(*v)
}
