package dto

import "strings"

type SaveSessionRequest struct {
	Subject   string            `json:"subject" validate:"required"`
	SessionID string            `json:"session_id,omitempty"`
	Cookies   map[string]string `json:"cookies" validate:"required"`
}

func (r *SaveSessionRequest) Validate() []string {
	var errors []string
	if strings.TrimSpace(r.Subject) == "" {
		errors = append(errors, "subject is required")
	}
	if len(r.Cookies) == 0 {
		errors = append(errors, "cookies are required")
	}
	return errors
}

type SaveSessionResponse struct {
	SessionID string `json:"session_id"`
	Subject   string `json:"subject"`
}

type LinkSessionRequest struct {
	OwnerID   string `json:"owner_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
	Subject   string `json:"subject,omitempty"`
}

func (r *LinkSessionRequest) Validate() []string {
	var errors []string
	if strings.TrimSpace(r.OwnerID) == "" {
		errors = append(errors, "owner_id is required")
	}
	if strings.TrimSpace(r.SessionID) == "" {
		errors = append(errors, "session_id is required")
	}
	return errors
}
