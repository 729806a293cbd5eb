package domain

import "time"

// Preference is a travel preference saved by an owner; its destination seeds
// default scraping keywords.
type Preference struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     string    `gorm:"size:255;not null;index" json:"owner_id"`
	Destination string    `gorm:"size:255" json:"destination"`
	Preferences JSONB     `gorm:"type:text" json:"preferences"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (Preference) TableName() string {
	return "preferences"
}
