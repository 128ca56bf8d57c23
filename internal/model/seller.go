package model

import "time"

type Seller struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(120);uniqueIndex;not null"`
	ContactInfo string `gorm:"type:varchar(500)"`
	IsActive    bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
