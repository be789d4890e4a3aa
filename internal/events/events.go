package events

import (
	"context"
	"time"
)

// Drive actions. The same names key activity log rows and bus events.
const (
	UserSignup    = "user.signup"
	UserLogin     = "user.login"
	UserLogout    = "user.logout"
	FolderCreate  = "folder.create"
	FolderRename  = "folder.rename"
	FolderMove    = "folder.move"
	FolderTrash   = "folder.trash"
	FolderRestore = "folder.restore"
	FolderDelete  = "folder.delete"
	FileUpload    = "file.upload"
	FileRename    = "file.rename"
	FileMove      = "file.move"
	FileTrash     = "file.trash"
	FileRestore   = "file.restore"
	FileDelete    = "file.delete"
	ShareGrant    = "share.grant"
	ShareRevoke   = "share.revoke"
)

const DefaultTopic = "drive.changes"

type Event struct {
	Type         string                 `json:"eventType"`
	ResourceType string                 `json:"resourceType"`
	ResourceID   string                 `json:"resourceID,omitempty"`
	ActorID      string                 `json:"actorID,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
