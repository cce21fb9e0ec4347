package domain

import (
	"math"
	"strings"
)

// SortDirection represents the sort direction
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ParseSortDirection maps "asc"/"desc" in any case to a SortDirection.
// Anything else is ascending.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return SortDesc
	}
	return SortAsc
}

// SortOrder is a single sort criterion
type SortOrder struct {
	Property  string
	Direction SortDirection
}

// PageRequest describes which slice of a result set to return.
// Page is zero-based.
type PageRequest struct {
	Page int
	Size int
	Sort []SortOrder
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps Offset and Page+1 from overflowing. Any page this far
	// out is past the end of the result set anyway.
	MaxPage = math.MaxInt / MaxPageSize
)

// Normalize clamps page and size into usable bounds
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the number of rows to skip for the page
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one page of a paginated result
type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

// NewPage builds a page from its content, the request that produced it and
// the total number of matching elements
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return Page[T]{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Number:           req.Page,
		Size:             req.Size,
		NumberOfElements: len(content),
		First:            req.Page == 0,
		Last:             req.Page+1 >= totalPages,
		Empty:            len(content) == 0,
	}
}

// MapPage converts the content of a page keeping its pagination metadata
func MapPage[T, R any](page Page[T], fn func(T) R) Page[R] {
	content := make([]R, 0, len(page.Content))
	for _, item := range page.Content {
		content = append(content, fn(item))
	}

	return Page[R]{
		Content:          content,
		TotalElements:    page.TotalElements,
		TotalPages:       page.TotalPages,
		Number:           page.Number,
		Size:             page.Size,
		NumberOfElements: len(content),
		First:            page.First,
		Last:             page.Last,
		Empty:            len(content) == 0,
	}
}
