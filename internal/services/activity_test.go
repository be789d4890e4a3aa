package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Tarun62689/gdrive-backend/internal/events"
	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/google/uuid"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func TestActivityService_PersistsAndPublishes(t *testing.T) {
	db := setupTestDB(t)
	publisher := &recordingPublisher{}
	service := NewActivityService(db, publisher)

	userID := uuid.New()
	fileID := uuid.New()
	service.LogAsync(ActivityEntry{
		UserID:       &userID,
		Action:       events.FileUpload,
		ResourceType: "file",
		ResourceID:   &fileID,
		Details:      map[string]interface{}{"file_name": "report.pdf"},
		IPAddress:    "10.0.0.1",
		RequestID:    "req-1",
	})
	service.Close()

	var rows []models.ActivityLog
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("failed loading activity: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one activity row, got %d", len(rows))
	}
	if rows[0].Action != events.FileUpload || rows[0].Details["file_name"] != "report.pdf" {
		t.Fatalf("unexpected row %+v", rows[0])
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.Type != events.FileUpload || event.ResourceID != fileID.String() || event.ActorID != userID.String() {
		t.Fatalf("unexpected event %+v", event)
	}

	// Entries after Close are dropped rather than panicking.
	service.LogAsync(ActivityEntry{Action: events.FileDelete, ResourceType: "file"})
}

func TestActivityService_PublishFailureKeepsRow(t *testing.T) {
	db := setupTestDB(t)
	service := NewActivityService(db, &recordingPublisher{err: errors.New("broker down")})

	service.LogAsync(ActivityEntry{Action: events.FolderCreate, ResourceType: "folder"})
	service.Close()

	var count int64
	db.Model(&models.ActivityLog{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected row to persist despite publish failure, got %d", count)
	}
}

func TestActivityService_List(t *testing.T) {
	db := setupTestDB(t)
	service := NewActivityService(db, nil)

	me := uuid.New()
	other := uuid.New()
	for i := 0; i < 3; i++ {
		service.LogAsync(ActivityEntry{UserID: &me, Action: events.FileUpload, ResourceType: "file"})
	}
	service.LogAsync(ActivityEntry{UserID: &other, Action: events.FileUpload, ResourceType: "file"})
	service.Close()

	logs, total, err := service.List(context.Background(), me, utils.NewPagination(1, 2))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(logs) != 2 {
		t.Fatalf("expected 2 of 3 rows, got %d of %d", len(logs), total)
	}
	for _, l := range logs {
		if *l.UserID != me {
			t.Fatal("expected only the caller's activity")
		}
	}
}
