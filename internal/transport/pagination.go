package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"product-catalog/internal/domain"
)

// parsePageRequest reads ?page=&size=&sort=property,direction from the
// query. sort may repeat. Malformed numbers fall back to defaults.
func parsePageRequest(r *http.Request) domain.PageRequest {
	query := r.URL.Query()

	req := domain.PageRequest{
		Page: 0,
		Size: domain.DefaultPageSize,
	}

	// Out of range numbers come back saturated and are clamped by Normalize
	if page, err := strconv.Atoi(query.Get("page")); err == nil || errors.Is(err, strconv.ErrRange) {
		req.Page = page
	}
	if size, err := strconv.Atoi(query.Get("size")); err == nil {
		req.Size = size
	}

	for _, s := range query["sort"] {
		property, direction, _ := strings.Cut(s, ",")
		property = strings.TrimSpace(property)
		if property == "" {
			continue
		}
		req.Sort = append(req.Sort, domain.SortOrder{
			Property:  property,
			Direction: domain.ParseSortDirection(direction),
		})
	}

	return req.Normalize()
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
