package storage

import (
	"time"

	null "gopkg.in/guregu/null.v3"
)

// Marker is the persisted polling cursor of a bot.
type Marker struct {
	BotID     string `gorm:"primaryKey"`
	Value     null.Int
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *Marker) TableName() string {
	return "marker"
}
