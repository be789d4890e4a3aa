package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLog is an append-only record of drive mutations. Rows are never
// updated, so it does not embed BaseModel.
type ActivityLog struct {
	ID           uuid.UUID              `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       *uuid.UUID             `json:"userID,omitempty" gorm:"type:uuid;index"`
	Action       string                 `json:"action" gorm:"type:varchar(50);not null;index"`
	ResourceType string                 `json:"resourceType" gorm:"type:varchar(10);not null"`
	ResourceID   *uuid.UUID             `json:"resourceID,omitempty" gorm:"type:uuid;index"`
	Details      map[string]interface{} `json:"details,omitempty" gorm:"type:jsonb;serializer:json"`
	IPAddress    string                 `json:"ipAddress" gorm:"type:varchar(45);not null;default:''"`
	RequestID    string                 `json:"requestID,omitempty" gorm:"type:varchar(36)"`
	CreatedAt    time.Time              `json:"createdAt" gorm:"not null;index"`
}

func (a *ActivityLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
