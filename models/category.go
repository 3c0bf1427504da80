package models

import "time"

const DefaultCategoryColor = "#3b82f6"

// Category is a user-defined label referenced by EventMetadata.
// A nil UserID marks a record created before per-user ownership existed.
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Color     string    `json:"color" gorm:"not null;default:'#3b82f6'"`
	UserID    *uint     `json:"userId,omitempty" gorm:"index"`
	IsDefault bool      `json:"isDefault" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
