package models

import "time"

// RevokedToken blocks an access token (by jti) until its natural expiry.
type RevokedToken struct {
	BaseModel
	TokenID   string    `json:"tokenID" gorm:"type:varchar(64);uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
