package services

import (
	"context"
	"sync"
	"time"

	"github.com/Tarun62689/gdrive-backend/internal/events"
	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const activityQueueSize = 1000

type ActivityEntry struct {
	UserID       *uuid.UUID
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	Details      map[string]interface{}
	IPAddress    string
	RequestID    string
}

// ActivityService records drive mutations off the request path. A single
// worker persists each row and then forwards it to the event publisher.
type ActivityService struct {
	DB        *gorm.DB
	Publisher events.Publisher
	queue     chan models.ActivityLog
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

func NewActivityService(db *gorm.DB, publisher events.Publisher) *ActivityService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	s := &ActivityService{
		DB:        db,
		Publisher: publisher,
		queue:     make(chan models.ActivityLog, activityQueueSize),
		done:      make(chan struct{}),
	}
	go s.processQueue()
	return s
}

func (s *ActivityService) LogAsync(entry ActivityEntry) {
	row := models.ActivityLog{
		UserID:       entry.UserID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      entry.Details,
		IPAddress:    entry.IPAddress,
		RequestID:    entry.RequestID,
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		logger.Warn("activity_queue_closed", map[string]interface{}{
			"action":  entry.Action,
			"dropped": true,
		})
		return
	}

	select {
	case s.queue <- row:
	default:
		logger.Warn("activity_queue_full", map[string]interface{}{
			"action":  entry.Action,
			"dropped": true,
		})
	}
}

func (s *ActivityService) processQueue() {
	defer close(s.done)
	for row := range s.queue {
		if err := s.DB.Create(&row).Error; err != nil {
			logger.Error("activity_log_insert_failed", err, map[string]interface{}{
				"action": row.Action,
			})
			continue
		}
		s.publish(row)
	}
}

func (s *ActivityService) publish(row models.ActivityLog) {
	event := events.Event{
		Type:         row.Action,
		ResourceType: row.ResourceType,
		Details:      row.Details,
		Timestamp:    row.CreatedAt,
	}
	if row.ResourceID != nil {
		event.ResourceID = row.ResourceID.String()
	}
	if row.UserID != nil {
		event.ActorID = row.UserID.String()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Publisher.Publish(ctx, event); err != nil {
		logger.Error("activity_publish_failed", err, map[string]interface{}{
			"action":      row.Action,
			"resource_id": event.ResourceID,
		})
	}
}

// Close stops accepting entries and waits for queued rows to be written.
func (s *ActivityService) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
	})
	<-s.done
}

// List returns the user's own activity, newest first.
func (s *ActivityService) List(ctx context.Context, userID uuid.UUID, pagination utils.PaginationParams) ([]models.ActivityLog, int64, error) {
	query := s.DB.WithContext(ctx).Model(&models.ActivityLog{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, dependency("failed to count activity", err)
	}

	logs := make([]models.ActivityLog, 0)
	if err := utils.ApplyPagination(query.Order("created_at DESC"), pagination).Find(&logs).Error; err != nil {
		return nil, 0, dependency("failed to list activity", err)
	}
	return logs, total, nil
}
