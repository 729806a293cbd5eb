package dto

import "strings"

type SavePreferenceRequest struct {
	OwnerID     string                 `json:"owner_id" validate:"required"`
	Destination string                 `json:"destination" validate:"required"`
	Preferences map[string]interface{} `json:"preferences,omitempty"`
}

func (r *SavePreferenceRequest) Validate() []string {
	var errors []string
	if strings.TrimSpace(r.OwnerID) == "" {
		errors = append(errors, "owner_id is required")
	}
	if strings.TrimSpace(r.Destination) == "" {
		errors = append(errors, "destination is required")
	}
	return errors
}
