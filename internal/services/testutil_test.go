package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Tarun62689/gdrive-backend/internal/config"
	"github.com/Tarun62689/gdrive-backend/internal/database"
	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeObjectStore struct {
	mu           sync.Mutex
	objects      map[string][]byte
	deleted      []string
	presignCalls int
	uploadErr    error
	deleteErr    error
	presignErr   error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[objectName] = data
	return nil
}

func (f *fakeObjectStore) Delete(_ context.Context, objectName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, objectName)
	f.deleted = append(f.deleted, objectName)
	return nil
}

func (f *fakeObjectStore) PresignedGetURL(_ context.Context, objectName string, expiry time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.presignErr != nil {
		return "", f.presignErr
	}
	f.presignCalls++
	return fmt.Sprintf("https://signed.example/%s?expires=%d&n=%d", objectName, int(expiry.Seconds()), f.presignCalls), nil
}

func (f *fakeObjectStore) PublicURL(string) string {
	return ""
}

func (f *fakeObjectStore) has(objectName string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[objectName]
	return ok
}

type testEnv struct {
	db        *gorm.DB
	store     *fakeObjectStore
	access    *AccessService
	hierarchy *HierarchyService
	sharing   *SharingService
	auth      *AuthService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	store := newFakeObjectStore()
	access := NewAccessService(db)
	hierarchy := NewHierarchyService(db, store, access)
	return &testEnv{
		db:        db,
		store:     store,
		access:    access,
		hierarchy: hierarchy,
		sharing:   NewSharingService(db, access, hierarchy, store, nil, 5*time.Minute, "/share/"),
		auth:      NewAuthService(db),
	}
}

// createUser inserts a user with a provisioned drive and returns it with its root.
func (e *testEnv) createUser(t *testing.T, email string) (models.User, *models.Folder) {
	t.Helper()

	user := models.User{Email: email, PasswordHash: "hash"}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("failed creating user %s: %v", email, err)
	}
	root, err := e.hierarchy.ProvisionDrive(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed provisioning drive for %s: %v", email, err)
	}
	return user, root
}

func (e *testEnv) childFolder(t *testing.T, ownerID uuid.UUID, parent *models.Folder, name string) *models.Folder {
	t.Helper()
	folder, err := e.hierarchy.CreateFolder(context.Background(), ownerID, name, &parent.ID)
	if err != nil {
		t.Fatalf("failed creating folder %s: %v", name, err)
	}
	return folder
}

func (e *testEnv) upload(t *testing.T, actorID uuid.UUID, folderID *uuid.UUID, name string, content string) *models.File {
	t.Helper()
	file, err := e.hierarchy.Upload(context.Background(), actorID, UploadInput{
		FolderID: folderID,
		Name:     name,
		Size:     int64(len(content)),
		MimeType: "application/pdf",
		Reader:   strings.NewReader(content),
	})
	if err != nil {
		t.Fatalf("failed uploading %s: %v", name, err)
	}
	return file
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v error, got %v", kind, err)
	}
}

func payload(size int) *bytes.Reader {
	return bytes.NewReader(bytes.Repeat([]byte("x"), size))
}

func postgresDryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 user=test password=test dbname=test port=5432 sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("failed to create dry-run gorm db: %v", err)
	}
	return db
}
