package models

import (
	"time"

	"github.com/google/uuid"
)

// ShareGrant gives a permission level on one file or folder either to a named
// user (GrantedToID) or to whoever presents ShareToken.
type ShareGrant struct {
	BaseModel
	ResourceType ResourceType    `json:"resourceType" gorm:"type:varchar(10);not null;uniqueIndex:idx_share_grants_target,priority:1;index:idx_share_grants_resource,priority:1"`
	ResourceID   uuid.UUID       `json:"resourceID" gorm:"type:uuid;not null;uniqueIndex:idx_share_grants_target,priority:2;index:idx_share_grants_resource,priority:2"`
	GrantedByID  uuid.UUID       `json:"grantedByID" gorm:"type:uuid;not null;index"`
	GrantedToID  *uuid.UUID      `json:"grantedToID,omitempty" gorm:"type:uuid;uniqueIndex:idx_share_grants_target,priority:3;index"`
	ShareToken   *string         `json:"shareToken,omitempty" gorm:"type:varchar(64);uniqueIndex"`
	Permission   PermissionLevel `json:"permission" gorm:"type:varchar(10);not null"`
	ExpiresAt    *time.Time      `json:"expiresAt,omitempty" gorm:"index"`
}

func (ShareGrant) TableName() string {
	return "share_grants"
}

func (g *ShareGrant) IsToken() bool {
	return g.ShareToken != nil
}

func (g *ShareGrant) Expired(now time.Time) bool {
	return g.ExpiresAt != nil && !g.ExpiresAt.After(now)
}
