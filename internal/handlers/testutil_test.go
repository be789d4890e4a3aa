package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Tarun62689/gdrive-backend/internal/config"
	"github.com/Tarun62689/gdrive-backend/internal/database"
	"github.com/Tarun62689/gdrive-backend/internal/middleware"
	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/Tarun62689/gdrive-backend/internal/services"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
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
	delete(f.objects, objectName)
	return nil
}

func (f *fakeObjectStore) PresignedGetURL(_ context.Context, objectName string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://signed.example/%s?expires=%d", objectName, int(expiry.Seconds())), nil
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
	app       *fiber.App
	db        *gorm.DB
	store     *fakeObjectStore
	auth      *services.AuthService
	hierarchy *services.HierarchyService
	activity  *services.ActivityService
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := database.Connect(config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	store := &fakeObjectStore{objects: map[string][]byte{}}
	accessService := services.NewAccessService(db)
	hierarchyService := services.NewHierarchyService(db, store, accessService)
	sharingService := services.NewSharingService(db, accessService, hierarchyService, store, nil, 5*time.Minute, "/share/")
	authService := services.NewAuthService(db)
	activityService := services.NewActivityService(db, nil)

	t.Cleanup(func() {
		activityService.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	authHandler := NewAuthHandler(authService, hierarchyService, activityService, false)
	driveHandler := NewDriveHandler(hierarchyService)
	foldersHandler := NewFoldersHandler(hierarchyService, activityService)
	filesHandler := NewFilesHandler(hierarchyService, sharingService, activityService)
	sharesHandler := NewSharesHandler(sharingService, activityService)
	activityHandler := NewActivityHandler(activityService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.RequestLogger())

	app.Get("/health", Health)

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/signup", authHandler.Signup)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/logout", authMiddleware.RequireAuth, authHandler.Logout)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	driveRoutes := api.Group("/drive", authMiddleware.RequireAuth)
	driveRoutes.Get("/", driveHandler.UserData)
	driveRoutes.Get("/my-drive", driveHandler.MyDrive)
	driveRoutes.Get("/trash", driveHandler.Trash)

	folderRoutes := api.Group("/folders", authMiddleware.RequireAuth)
	folderRoutes.Post("/", foldersHandler.Create)
	folderRoutes.Get("/tree", foldersHandler.Tree)
	folderRoutes.Get("/:id", foldersHandler.Get)
	folderRoutes.Put("/:id", foldersHandler.Update)
	folderRoutes.Post("/:id/trash", foldersHandler.Trash)
	folderRoutes.Post("/:id/restore", foldersHandler.Restore)
	folderRoutes.Delete("/:id", foldersHandler.Delete)

	fileRoutes := api.Group("/files", authMiddleware.RequireAuth)
	fileRoutes.Post("/upload", filesHandler.Upload)
	fileRoutes.Get("/", filesHandler.List)
	fileRoutes.Get("/:id/signed-url", filesHandler.SignedURL)
	fileRoutes.Get("/:id", filesHandler.Get)
	fileRoutes.Put("/:id", filesHandler.Update)
	fileRoutes.Post("/:id/trash", filesHandler.Trash)
	fileRoutes.Post("/:id/restore", filesHandler.Restore)
	fileRoutes.Delete("/:id", filesHandler.Delete)

	api.Get("/search", authMiddleware.RequireAuth, driveHandler.Search)

	shareRoutes := api.Group("/shares", authMiddleware.RequireAuth)
	shareRoutes.Post("/", sharesHandler.Create)
	shareRoutes.Get("/", sharesHandler.List)
	shareRoutes.Delete("/:id", sharesHandler.Delete)

	api.Get("/public/shares/:token", authMiddleware.OptionalAuth, sharesHandler.Public)
	api.Get("/activity", authMiddleware.RequireAuth, activityHandler.List)

	return &testEnv{
		app:       app,
		db:        db,
		store:     store,
		auth:      authService,
		hierarchy: hierarchyService,
		activity:  activityService,
	}
}

// createTestUser signs a user up, provisions the drive and returns a token.
func createTestUser(t *testing.T, env *testEnv, email string) (*models.User, string) {
	t.Helper()

	ctx := context.Background()
	user, err := env.auth.SignUp(ctx, email, "password123")
	if err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}
	if _, err := env.hierarchy.ProvisionDrive(ctx, user.ID); err != nil {
		t.Fatalf("failed provisioning drive: %v", err)
	}

	token, _, err := utils.GenerateToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}
	return user, token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func performUpload(t *testing.T, app *fiber.App, token, filename, content string, fields map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed writing form field: %v", err)
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed creating form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed writing form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed closing multipart writer: %v", err)
	}

	headers := authHeaders(token)
	headers["Content-Type"] = writer.FormDataContentType()
	return performRequest(t, app, http.MethodPost, "/api/files/upload", &buf, headers)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func dataMap(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %+v", body["data"])
	}
	return data
}

func dataList(t *testing.T, body map[string]any) []any {
	t.Helper()
	data, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected list data, got %+v", body["data"])
	}
	return data
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
