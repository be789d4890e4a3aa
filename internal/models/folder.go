package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RootFolderName = "My Drive"
)

// DefaultFolderNames are created under every new root folder.
var DefaultFolderNames = []string{"Documents", "Pictures", "Videos"}

type Folder struct {
	BaseModel
	OwnerID   uuid.UUID  `json:"ownerID" gorm:"type:uuid;not null;index"`
	Name      string     `json:"name" gorm:"type:varchar(255);not null"`
	ParentID  *uuid.UUID `json:"parentID" gorm:"type:uuid;index"`
	IsTrashed bool       `json:"isTrashed" gorm:"not null;default:false;index"`
	TrashedAt *time.Time `json:"trashedAt,omitempty"`
	// DefaultKey marks one of the provisioned subfolders; unique per owner.
	DefaultKey *string `json:"-" gorm:"type:varchar(32)"`
}

func (Folder) TableName() string {
	return "folders"
}

// DefaultFolderKey is the DefaultKey stored for a default subfolder name.
func DefaultFolderKey(name string) string {
	return strings.ToLower(name)
}

func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
