package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type File struct {
	BaseModel
	OwnerID     uuid.UUID  `json:"ownerID" gorm:"type:uuid;not null;index"`
	FolderID    uuid.UUID  `json:"folderID" gorm:"type:uuid;not null;index"`
	Name        string     `json:"name" gorm:"type:varchar(255);not null"`
	Size        int64      `json:"size" gorm:"not null;default:0"`
	MimeType    string     `json:"mimeType" gorm:"type:varchar(255);not null"`
	StoragePath string     `json:"storagePath" gorm:"type:text;not null"`
	IsTrashed   bool       `json:"isTrashed" gorm:"not null;default:false;index"`
	TrashedAt   *time.Time `json:"trashedAt,omitempty"`
	UploadedAt  time.Time  `json:"uploadedAt" gorm:"not null;index"`

	Type string  `json:"type" gorm:"-"`
	URL  *string `json:"url,omitempty" gorm:"-"`
}

func (File) TableName() string {
	return "files"
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if err := f.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	f.Type = FileTypeFromMime(f.MimeType)
	return nil
}

func (f *File) AfterFind(_ *gorm.DB) error {
	f.Type = FileTypeFromMime(f.MimeType)
	return nil
}

// FileTypeFromMime buckets a MIME type into the coarse kinds the client renders.
func FileTypeFromMime(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	case mimeType == "application/pdf":
		return "pdf"
	default:
		return "file"
	}
}
