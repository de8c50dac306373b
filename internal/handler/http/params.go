package http

import (
	"net/http"
	"strconv"
)

// queryInt returns nil when key is absent or not a number.
func queryInt(r *http.Request, key string) *int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryString(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}

// pagination reads page and limit, leaving zero for the filter defaults.
func pagination(r *http.Request) (page, limit int) {
	if p := queryInt(r, "page"); p != nil && *p > 0 {
		page = *p
	}
	if l := queryInt(r, "limit"); l != nil && *l > 0 {
		limit = *l
	}
	return page, limit
}
