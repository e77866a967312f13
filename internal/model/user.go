package model

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email" json:"email"`
	Name         string    `gorm:"type:varchar(100);not null;default:''" json:"name"`
	Image        string    `gorm:"type:varchar(512);not null;default:''" json:"image"`
	Role         string    `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Passion      string    `gorm:"type:varchar(255);not null;default:''" json:"passion"`
	Interest     string    `gorm:"type:varchar(255);not null;default:''" json:"interest"`
	Organization string    `gorm:"type:varchar(255);not null;default:''" json:"organization"`
	Theme        string    `gorm:"type:varchar(20);not null;default:'system'" json:"theme"`
	CreatedAt    time.Time `gorm:"index:idx_users_created_at" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
