package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Challenge is a system-design prompt. Challenges are not attributed to a user
// for scoring purposes.
type Challenge struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title          string    `gorm:"not null" json:"title"`
	Description    string    `json:"description"`
	Difficulty     string    `gorm:"type:varchar(16)" json:"difficulty"`
	UpvotesCount   int64     `gorm:"not null;default:0" json:"upvotes_count"`
	DownvotesCount int64     `gorm:"not null;default:0" json:"downvotes_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
