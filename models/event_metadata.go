package models

import (
	"time"

	"gorm.io/datatypes"
)

// EventMetadata annotates one remote event or a whole recurring series.
// GoogleEventID is unique per owner.
type EventMetadata struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	GoogleEventID string                      `json:"googleEventId" gorm:"not null;uniqueIndex:idx_event_metadata_owner_event"`
	UserID        *uint                       `json:"userId,omitempty" gorm:"uniqueIndex:idx_event_metadata_owner_event"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	Notes         string                      `json:"notes" gorm:"type:text"`
	CategoryID    *uint                       `json:"categoryId"`
	Category      *Category                   `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CustomStatus  string                      `json:"customStatus,omitempty"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

func (EventMetadata) TableName() string {
	return "event_metadata"
}
