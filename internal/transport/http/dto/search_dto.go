package dto

import "strings"

type SearchRequest struct {
	Query   string            `json:"query" validate:"required"`
	Limit   int               `json:"limit,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

func (r *SearchRequest) Validate() []string {
	var errors []string
	if strings.TrimSpace(r.Query) == "" {
		errors = append(errors, "query is required")
	}
	if r.Limit < 0 {
		errors = append(errors, "limit must not be negative")
	}
	return errors
}
