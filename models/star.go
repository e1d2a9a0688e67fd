package models

import (
	"time"
)

// Star marks a repository as starred by a user. The row's existence is
// the whole state; the unique index keeps one star per (user, repo).
type Star struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index;uniqueIndex:idx_star_user_repo" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	RepositoryID uint       `gorm:"not null;index;uniqueIndex:idx_star_user_repo" json:"repository_id"`
	Repository   Repository `gorm:"foreignKey:RepositoryID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}
