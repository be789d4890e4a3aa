package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestEncodeMessage(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	message, err := encodeMessage(Event{
		Type:         FileUpload,
		ResourceType: "file",
		ResourceID:   "file-1",
		ActorID:      "user-1",
		Details:      map[string]interface{}{"file_name": "report.pdf"},
		Timestamp:    ts,
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if string(message.Key) != "file-1" {
		t.Fatalf("expected key file-1, got %q", message.Key)
	}
	if !message.Time.Equal(ts) {
		t.Fatalf("expected message time %v, got %v", ts, message.Time)
	}

	var decoded map[string]any
	if err := json.Unmarshal(message.Value, &decoded); err != nil {
		t.Fatalf("value is not JSON: %v", err)
	}
	if decoded["eventType"] != FileUpload {
		t.Fatalf("expected eventType %q, got %v", FileUpload, decoded["eventType"])
	}
	if decoded["actorID"] != "user-1" {
		t.Fatalf("expected actorID user-1, got %v", decoded["actorID"])
	}
}

func TestEncodeMessageStampsMissingTimestamp(t *testing.T) {
	message, err := encodeMessage(Event{Type: FolderCreate, ResourceID: "f"})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if message.Time.IsZero() {
		t.Fatal("expected a timestamp to be assigned")
	}
}

func TestNewPublisherWithoutBrokersIsNop(t *testing.T) {
	publisher := NewPublisher(nil, "")
	if _, ok := publisher.(NopPublisher); !ok {
		t.Fatalf("expected NopPublisher, got %T", publisher)
	}
	if err := publisher.Publish(context.Background(), Event{Type: FileDelete}); err != nil {
		t.Fatalf("nop publish returned error: %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("nop close returned error: %v", err)
	}
}

func TestNewKafkaPublisherDefaultsTopic(t *testing.T) {
	publisher := NewKafkaPublisher([]string{"localhost:9092"}, "")
	defer publisher.Close()

	if publisher.writer.Topic != DefaultTopic {
		t.Fatalf("expected topic %q, got %q", DefaultTopic, publisher.writer.Topic)
	}
}
