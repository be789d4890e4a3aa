package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Tarun62689/gdrive-backend/internal/cache"
	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestGrantUpgradeScenario(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	u1, root := env.createUser(t, "u1@test.com")
	u2, _ := env.createUser(t, "u2@test.com")
	d1 := env.childFolder(t, u1.ID, root, "d1")

	first, err := env.sharing.Grant(ctx, u1.ID, GrantRequest{
		ResourceType: "folder",
		ResourceID:   d1.ID,
		UserID:       &u2.ID,
		Permission:   "view",
	})
	if err != nil {
		t.Fatalf("view grant failed: %v", err)
	}
	if first.Grant.Permission != models.PermissionView || first.ShareURL != "" {
		t.Fatalf("unexpected grant %+v", first)
	}

	_, err = env.hierarchy.Rename(ctx, u2.ID, models.ResourceFolder, d1.ID, "renamed")
	assertKind(t, err, ErrDenied)

	second, err := env.sharing.Grant(ctx, u1.ID, GrantRequest{
		ResourceType: "folder",
		ResourceID:   d1.ID,
		Email:        "U2@test.com",
		Permission:   "edit",
	})
	if err != nil {
		t.Fatalf("edit grant failed: %v", err)
	}
	if second.Grant.Permission != models.PermissionEdit || second.Grant.ID != first.Grant.ID {
		t.Fatalf("expected upgrade in place, got %+v (first id %s)", second.Grant, first.Grant.ID)
	}

	var count int64
	env.db.Model(&models.ShareGrant{}).Where("resource_id = ?", d1.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single grant row, got %d", count)
	}

	res, err := env.hierarchy.Rename(ctx, u2.ID, models.ResourceFolder, d1.ID, "renamed")
	if err != nil {
		t.Fatalf("rename after upgrade failed: %v", err)
	}
	if res.Folder.Name != "renamed" || res.Folder.OwnerID != u1.ID {
		t.Fatalf("unexpected folder after rename %+v", res.Folder)
	}
}

func TestGrantValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner, root := env.createUser(t, "owner@test.com")
	editor, _ := env.createUser(t, "editor@test.com")
	third, _ := env.createUser(t, "third@test.com")
	file := env.upload(t, owner.ID, &root.ID, "doc.pdf", "doc")
	insertGrant(t, env, models.ResourceFile, file.ID, owner.ID, editor.ID, models.PermissionEdit, nil)

	past := time.Now().Add(-time.Minute)
	missing := uuid.New()

	testCases := []struct {
		name    string
		actor   uuid.UUID
		req     GrantRequest
		wantErr error
	}{
		{
			name:    "unknown permission",
			actor:   owner.ID,
			req:     GrantRequest{ResourceType: "file", ResourceID: file.ID, UserID: &third.ID, Permission: "admin"},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "unknown resource type",
			actor:   owner.ID,
			req:     GrantRequest{ResourceType: "group", ResourceID: file.ID, UserID: &third.ID, Permission: "view"},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "no target",
			actor:   owner.ID,
			req:     GrantRequest{ResourceType: "file", ResourceID: file.ID, Permission: "view"},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "user and token",
			actor:   owner.ID,
			req:     GrantRequest{ResourceType: "file", ResourceID: file.ID, UserID: &third.ID, Token: true, Permission: "view"},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "expiry in the past",
			actor:   owner.ID,
			req:     GrantRequest{ResourceType: "file", ResourceID: file.ID, UserID: &third.ID, Permission: "view", ExpiresAt: &past},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "share with self",
			actor:   owner.ID,
			req:     GrantRequest{ResourceType: "file", ResourceID: file.ID, UserID: &owner.ID, Permission: "view"},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "unknown grantee",
			actor:   owner.ID,
			req:     GrantRequest{ResourceType: "file", ResourceID: file.ID, Email: "nobody@test.com", Permission: "view"},
			wantErr: ErrNotFound,
		},
		{
			name:    "missing resource",
			actor:   owner.ID,
			req:     GrantRequest{ResourceType: "file", ResourceID: missing, UserID: &third.ID, Permission: "view"},
			wantErr: ErrNotFound,
		},
		{
			name:    "editor cannot share",
			actor:   editor.ID,
			req:     GrantRequest{ResourceType: "file", ResourceID: file.ID, UserID: &third.ID, Permission: "view"},
			wantErr: ErrDenied,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.sharing.Grant(ctx, tc.actor, tc.req)
			assertKind(t, err, tc.wantErr)
		})
	}
}

func TestOwnerLevelGranteeCannotTargetOwner(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner, root := env.createUser(t, "owner@test.com")
	coOwner, _ := env.createUser(t, "co@test.com")
	insertGrant(t, env, models.ResourceFolder, root.ID, owner.ID, coOwner.ID, models.PermissionOwner, nil)

	_, err := env.sharing.Grant(ctx, coOwner.ID, GrantRequest{
		ResourceType: "folder",
		ResourceID:   root.ID,
		UserID:       &owner.ID,
		Permission:   "view",
	})
	assertKind(t, err, ErrInvalidArgument)
}

func TestTokenGrantScenario(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner, _ := env.createUser(t, "owner@test.com")
	f2 := env.upload(t, owner.ID, nil, "f2.pdf", "content")

	result, err := env.sharing.Grant(ctx, owner.ID, GrantRequest{
		ResourceType: "file",
		ResourceID:   f2.ID,
		Token:        true,
		Permission:   "view",
	})
	if err != nil {
		t.Fatalf("token grant failed: %v", err)
	}
	token := *result.Grant.ShareToken
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != shareTokenBytes {
		t.Fatalf("expected %d random bytes in token, got %d (%v)", shareTokenBytes, len(raw), err)
	}
	if result.ShareURL != "/share/"+token {
		t.Fatalf("unexpected share url %q", result.ShareURL)
	}
	if result.Grant.GrantedToID != nil {
		t.Fatal("token grants must not name a user")
	}

	shared, err := env.sharing.ResolveShared(ctx, token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if shared.File == nil || shared.File.ID != f2.ID || shared.Permission != models.PermissionView {
		t.Fatalf("unexpected shared resource %+v", shared)
	}
	if !strings.HasPrefix(shared.SignedURL, "https://signed.example/"+f2.StoragePath) {
		t.Fatalf("expected signed url for f2, got %q", shared.SignedURL)
	}
	if shared.ExpiresIn != 300 {
		t.Fatalf("expected 300s expiry, got %d", shared.ExpiresIn)
	}

	_, err = env.sharing.ResolveShared(ctx, "never-minted")
	assertKind(t, err, ErrNotFound)
	_, err = env.sharing.ResolveByToken(ctx, token[:len(token)-1])
	assertKind(t, err, ErrNotFound)
}

func TestResolveSharedFolderAndTrash(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner, root := env.createUser(t, "owner@test.com")
	folder := env.childFolder(t, owner.ID, root, "Public")
	env.upload(t, owner.ID, &folder.ID, "inside.pdf", "in")

	result, err := env.sharing.Grant(ctx, owner.ID, GrantRequest{
		ResourceType: "folder",
		ResourceID:   folder.ID,
		Token:        true,
		Permission:   "edit",
	})
	if err != nil {
		t.Fatalf("token grant failed: %v", err)
	}

	shared, err := env.sharing.ResolveShared(ctx, *result.Grant.ShareToken)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if shared.Folder == nil || len(shared.Folder.Files) != 1 || shared.Folder.Permission != models.PermissionEdit {
		t.Fatalf("unexpected folder share %+v", shared.Folder)
	}

	if _, err := env.hierarchy.Trash(ctx, owner.ID, models.ResourceFolder, folder.ID); err != nil {
		t.Fatalf("trash failed: %v", err)
	}
	_, err = env.sharing.ResolveShared(ctx, *result.Grant.ShareToken)
	assertKind(t, err, ErrNotFound)
}

func TestExpiredTokenIsNotFound(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner, _ := env.createUser(t, "owner@test.com")
	file := env.upload(t, owner.ID, nil, "temp.pdf", "t")

	expires := time.Now().Add(time.Hour)
	result, err := env.sharing.Grant(ctx, owner.ID, GrantRequest{
		ResourceType: "file",
		ResourceID:   file.ID,
		Token:        true,
		Permission:   "view",
		ExpiresAt:    &expires,
	})
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}

	if _, err := env.sharing.ResolveByToken(ctx, *result.Grant.ShareToken); err != nil {
		t.Fatalf("expected unexpired token to resolve, got %v", err)
	}

	env.sharing.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = env.sharing.ResolveByToken(ctx, *result.Grant.ShareToken)
	assertKind(t, err, ErrNotFound)
}

func TestListForActor(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner, root := env.createUser(t, "owner@test.com")
	grantee, _ := env.createUser(t, "grantee@test.com")
	outsider, _ := env.createUser(t, "outsider@test.com")
	file := env.upload(t, owner.ID, nil, "a.pdf", "a")

	if _, err := env.sharing.Grant(ctx, owner.ID, GrantRequest{ResourceType: "file", ResourceID: file.ID, UserID: &grantee.ID, Permission: "view"}); err != nil {
		t.Fatalf("file grant failed: %v", err)
	}
	if _, err := env.sharing.Grant(ctx, owner.ID, GrantRequest{ResourceType: "folder", ResourceID: root.ID, UserID: &grantee.ID, Permission: "view"}); err != nil {
		t.Fatalf("folder grant failed: %v", err)
	}

	for _, tc := range []struct {
		name  string
		actor uuid.UUID
		rt    string
		want  int
	}{
		{name: "grantor sees files", actor: owner.ID, rt: "file", want: 1},
		{name: "grantee sees folders", actor: grantee.ID, rt: "folder", want: 1},
		{name: "grantee sees all kinds", actor: grantee.ID, rt: "", want: 2},
		{name: "outsider sees nothing", actor: outsider.ID, rt: "", want: 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			grants, err := env.sharing.ListForActor(ctx, tc.rt, tc.actor)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(grants) != tc.want {
				t.Fatalf("expected %d grants, got %d", tc.want, len(grants))
			}
		})
	}

	_, err := env.sharing.ListForActor(ctx, "group", owner.ID)
	assertKind(t, err, ErrInvalidArgument)
}

func TestRevoke(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner, _ := env.createUser(t, "owner@test.com")
	grantee, _ := env.createUser(t, "grantee@test.com")
	file := env.upload(t, owner.ID, nil, "a.pdf", "a")

	result, err := env.sharing.Grant(ctx, owner.ID, GrantRequest{ResourceType: "file", ResourceID: file.ID, UserID: &grantee.ID, Permission: "view"})
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}

	_, err = env.sharing.Revoke(ctx, grantee.ID, result.Grant.ID)
	assertKind(t, err, ErrDenied)

	if _, err := env.sharing.Revoke(ctx, owner.ID, result.Grant.ID); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	_, err = env.access.Authorize(ctx, grantee.ID, models.ResourceFile, file.ID, models.PermissionView)
	assertKind(t, err, ErrDenied)

	_, err = env.sharing.Revoke(ctx, owner.ID, result.Grant.ID)
	assertKind(t, err, ErrNotFound)
}

func TestSignedURLForFile(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner, _ := env.createUser(t, "owner@test.com")
	stranger, _ := env.createUser(t, "stranger@test.com")
	file := env.upload(t, owner.ID, nil, "a.pdf", "a")

	signed, err := env.sharing.SignedURLForFile(ctx, owner.ID, file.ID)
	if err != nil {
		t.Fatalf("signed url failed: %v", err)
	}
	if signed.ExpiresIn != 300 || signed.File.ID != file.ID {
		t.Fatalf("unexpected signed url %+v", signed)
	}

	_, err = env.sharing.SignedURLForFile(ctx, stranger.ID, file.ID)
	assertKind(t, err, ErrDenied)

	env.store.presignErr = errors.New("signer down")
	_, err = env.sharing.SignedURLForFile(ctx, owner.ID, file.ID)
	assertKind(t, err, ErrDependency)
}

func TestSignedURLIsCached(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner, _ := env.createUser(t, "owner@test.com")
	file := env.upload(t, owner.ID, nil, "a.pdf", "a")

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	env.sharing.Cache = cache.NewRedisCache(client)

	clock := time.Unix(1_700_000_000, 0)
	env.sharing.now = func() time.Time { return clock }
	advance := func(d time.Duration) {
		clock = clock.Add(d)
		server.FastForward(d)
	}

	first, err := env.sharing.SignedURLForFile(ctx, owner.ID, file.ID)
	if err != nil {
		t.Fatalf("signed url failed: %v", err)
	}
	if first.ExpiresIn != 300 {
		t.Fatalf("expected a fresh url to report the full ttl, got %d", first.ExpiresIn)
	}

	advance(149 * time.Second)
	second, err := env.sharing.SignedURLForFile(ctx, owner.ID, file.ID)
	if err != nil {
		t.Fatalf("signed url failed: %v", err)
	}
	if first.URL != second.URL || env.store.presignCalls != 1 {
		t.Fatalf("expected cached url, presign calls=%d", env.store.presignCalls)
	}
	if second.ExpiresIn != 151 {
		t.Fatalf("expected the cached url to report its remaining lifetime, got %d", second.ExpiresIn)
	}

	advance(31 * time.Second)
	third, err := env.sharing.SignedURLForFile(ctx, owner.ID, file.ID)
	if err != nil {
		t.Fatalf("signed url failed: %v", err)
	}
	if env.store.presignCalls != 2 {
		t.Fatalf("expected cache entry to expire at half the ttl, presign calls=%d", env.store.presignCalls)
	}
	if third.ExpiresIn != 300 {
		t.Fatalf("expected a re-minted url to report the full ttl, got %d", third.ExpiresIn)
	}

	// A broken cache degrades to presigning on every call.
	server.Close()
	if _, err := env.sharing.SignedURLForFile(ctx, owner.ID, file.ID); err != nil {
		t.Fatalf("expected cache failure to be tolerated, got %v", err)
	}
}

func TestDeleteDropsCachedSignedURL(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner, _ := env.createUser(t, "owner@test.com")
	file := env.upload(t, owner.ID, nil, "a.pdf", "a")

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	urlCache := cache.NewRedisCache(client)
	env.sharing.Cache = urlCache
	env.hierarchy.URLCache = urlCache

	if _, err := env.sharing.SignedURLForFile(ctx, owner.ID, file.ID); err != nil {
		t.Fatalf("signed url failed: %v", err)
	}
	if _, found, _ := urlCache.GetURL(ctx, file.StoragePath); !found {
		t.Fatal("expected the signed url to be cached")
	}

	if _, err := env.hierarchy.Trash(ctx, owner.ID, models.ResourceFile, file.ID); err != nil {
		t.Fatalf("trash failed: %v", err)
	}
	if err := env.hierarchy.Delete(ctx, owner.ID, models.ResourceFile, file.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found, _ := urlCache.GetURL(ctx, file.StoragePath); found {
		t.Fatal("expected delete to drop the cached signed url")
	}
}
