package models

import (
	"time"

	"gorm.io/gorm"
)

// RightNowPost is a short, location-scoped post that expires.
type RightNowPost struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"not null;index:idx_rn_posts_user_created,priority:1" json:"user_id"`
	Membership        string         `gorm:"size:20;not null" json:"membership"`
	XpTier            string         `gorm:"size:20;not null" json:"xp_tier"`
	Intent            string         `gorm:"size:20;not null;index" json:"intent"`
	Title             string         `gorm:"size:160;not null" json:"title"`
	Text              string         `gorm:"type:text;not null" json:"text"`
	City              string         `gorm:"size:120;index" json:"city,omitempty"`
	Country           string         `gorm:"size:80" json:"country,omitempty"`
	Lat               *float64       `json:"lat,omitempty"`
	Lng               *float64       `json:"lng,omitempty"`
	RoomMode          string         `gorm:"size:10;not null" json:"room_mode"`
	CrowdCount        *int           `json:"crowd_count"`
	VisibilityRadiusM *float64       `json:"visibility_radius_m"`
	Boundaries        string         `gorm:"type:text" json:"boundaries"`
	MediaURL          string         `gorm:"size:512" json:"media_url,omitempty"`
	ExpiresAt         time.Time      `gorm:"not null;index" json:"expires_at"`
	CreatedAt         time.Time      `gorm:"index:idx_rn_posts_user_created,priority:2" json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (RightNowPost) TableName() string {
	return "right_now_posts"
}
