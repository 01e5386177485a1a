package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"varirunBack/internal/models"
)

const maxPerPage = 100

// getParam returns a path or query parameter value regardless of whether
// the router stores it with a leading colon or not.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	if val := r.URL.Query().Get(":" + name); val != "" {
		return val
	}
	if val := r.URL.Query().Get(name); val != "" {
		return val
	}
	return r.PathValue(name)
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(getParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.InvalidInput("invalid id", map[string]string{"id": "must be a positive integer"})
	}
	return id, nil
}

// pagination reads page and per_page. Without per_page every row is returned.
func pagination(r *http.Request) (models.Pagination, error) {
	q := r.URL.Query()
	fields := map[string]string{}
	p := models.Pagination{Page: models.DefaultPage}

	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			fields["page"] = "must be an integer of at least 1"
		} else {
			p.Page = v
		}
	}
	if raw := q.Get("per_page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			fields["per_page"] = "must be an integer of at least 1"
		} else {
			p.PerPage = min(v, maxPerPage)
		}
	}
	if len(fields) > 0 {
		return models.Pagination{}, models.InvalidInput("invalid pagination", fields)
	}
	return p, nil
}

func optionalInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, models.InvalidInput("invalid "+name, map[string]string{name: "must be an integer"})
	}
	return &v, nil
}

// normalizeStatus trims and lowercases a status filter. Empty means any.
func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
