// Package pagination turns page/limit query parameters into offsets and list
// metadata for the account administration listings.
package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	// DefaultLimit applies when the caller sends no limit
	DefaultLimit = 20
	// MaxLimit caps how many accounts one page may carry
	MaxLimit = 100
)

// Params is a normalized paging request
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// FromQuery reads page and limit from the query string. Out-of-range or
// unparseable values fall back to the defaults rather than erroring.
func FromQuery(c *fiber.Ctx) Params {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Meta describes where a page sits in the full result set
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Meta builds the metadata for one page out of total results
func (p Params) Meta(total int64) Meta {
	pages := int(total / int64(p.Limit))
	if total%int64(p.Limit) > 0 {
		pages++
	}

	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    p.Page < pages,
		HasPrev:    p.Page > 1,
	}
}

// Page is the envelope for one page of results
type Page struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

// NewPage wraps a page of data with its metadata
func NewPage(data interface{}, params Params, total int64) Page {
	return Page{
		Data: data,
		Meta: params.Meta(total),
	}
}
