package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	UUID          string    `gorm:"uniqueIndex;size:36" json:"id"`
	Name          string    `gorm:"size:100;not null;uniqueIndex:idx_owner_name" json:"name"`
	Description   string    `json:"description,omitempty"`
	OwnerID       uint      `gorm:"not null;uniqueIndex:idx_owner_name" json:"owner_id"`
	Owner         User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Language      string    `gorm:"size:50" json:"language,omitempty"`
	StarsCount    int       `gorm:"not null;default:0" json:"stars_count"`
	ForksCount    int       `gorm:"not null;default:0" json:"forks_count"`
	WatchersCount int       `gorm:"not null;default:0" json:"watchers_count"`
	IsPrivate     bool      `gorm:"not null;default:false" json:"is_private"`
	Readme        string    `json:"readme,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (repo *Repository) BeforeCreate(tx *gorm.DB) (err error) {
	repo.UUID = uuid.NewString()
	return
}
