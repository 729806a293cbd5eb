package domain

import "time"

// LoginSession holds the cookies of an authenticated session on the external site.
// Subject is the external identity the session logs in as (a phone number).
type LoginSession struct {
	ID        uint              `gorm:"primaryKey" json:"-"`
	Subject   string            `gorm:"size:64;not null;index" json:"subject"`
	SessionID string            `gorm:"size:128;not null;uniqueIndex" json:"session_id"`
	Data      string            `gorm:"column:cookies;type:text;not null" json:"-"`
	Cookies   map[string]string `gorm:"-" json:"cookies"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (LoginSession) TableName() string {
	return "login_sessions"
}

// OwnerSessionLink maps an internal owner to a login session. Rows are never
// updated; the newest link wins on lookup.
type OwnerSessionLink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   string    `gorm:"size:255;not null;index" json:"owner_id"`
	SessionID string    `gorm:"size:128;not null;index" json:"session_id"`
	Subject   string    `gorm:"size:64;not null" json:"subject"`
	CreatedAt time.Time `json:"created_at"`
}

func (OwnerSessionLink) TableName() string {
	return "owner_session_links"
}
