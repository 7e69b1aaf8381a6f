package db

import (
	"time"

	"gorm.io/datatypes"
)

// Session is a browser session: the durable identity a player keeps across
// reconnects. UserID is stable per person, the session row per browser.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    string    `gorm:"size:64;index;not null"`
	Username  string    `gorm:"size:64"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// WordLibrary holds the drawable word list served to sessions at startup.
type WordLibrary struct {
	ID        uint           `gorm:"primaryKey"`
	Text      string         `gorm:"size:64;not null;uniqueIndex"`
	Tags      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}
