package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/Tarun62689/gdrive-backend/internal/cache"
	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/Tarun62689/gdrive-backend/internal/storage"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const shareTokenBytes = 32

type SharingService struct {
	DB           *gorm.DB
	Access       *AccessService
	Hierarchy    *HierarchyService
	Storage      storage.ObjectStore
	Cache        cache.URLCache
	SignedURLTTL time.Duration
	BasePath     string
	now          func() time.Time
}

func NewSharingService(db *gorm.DB, access *AccessService, hierarchy *HierarchyService, objectStore storage.ObjectStore, urlCache cache.URLCache, signedURLTTL time.Duration, basePath string) *SharingService {
	if signedURLTTL <= 0 {
		signedURLTTL = 5 * time.Minute
	}
	if basePath == "" {
		basePath = "/share/"
	}
	return &SharingService{
		DB:           db,
		Access:       access,
		Hierarchy:    hierarchy,
		Storage:      objectStore,
		Cache:        urlCache,
		SignedURLTTL: signedURLTTL,
		BasePath:     basePath,
		now:          time.Now,
	}
}

// GrantRequest targets exactly one of a user (by id or email) or a new share token.
type GrantRequest struct {
	ResourceType string
	ResourceID   uuid.UUID
	UserID       *uuid.UUID
	Email        string
	Token        bool
	Permission   string
	ExpiresAt    *time.Time
}

type GrantResult struct {
	Grant    models.ShareGrant `json:"grant"`
	ShareURL string            `json:"shareUrl,omitempty"`
}

type SignedURL struct {
	URL       string       `json:"signedUrl"`
	ExpiresIn int          `json:"expiresIn"`
	File      *models.File `json:"file"`
}

type SharedResource struct {
	ResourceType models.ResourceType    `json:"resourceType"`
	Permission   models.PermissionLevel `json:"permission"`
	File         *models.File           `json:"file,omitempty"`
	SignedURL    string                 `json:"signedUrl,omitempty"`
	ExpiresIn    int                    `json:"expiresIn,omitempty"`
	Folder       *FolderDetails         `json:"folder,omitempty"`
}

func generateShareToken() (string, error) {
	raw := make([]byte, shareTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Grant records a permission on a file or folder. Only owner-level actors may
// share. Direct grants are upserted so the last write wins on permission.
func (s *SharingService) Grant(ctx context.Context, actorID uuid.UUID, req GrantRequest) (*GrantResult, error) {
	permission, err := models.ParsePermissionLevel(req.Permission)
	if err != nil {
		return nil, invalidArgument("invalid permission")
	}
	resourceType, ok := models.ParseResourceType(req.ResourceType)
	if !ok {
		return nil, invalidArgument("invalid resource type")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	hasUser := req.UserID != nil || email != ""
	if hasUser == req.Token {
		return nil, invalidArgument("exactly one of a user or a share token is required")
	}
	if req.UserID != nil && email != "" {
		return nil, invalidArgument("provide either userID or email, not both")
	}
	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		if !req.ExpiresAt.After(s.now()) {
			return nil, invalidArgument("expiresAt must be in the future")
		}
		utc := req.ExpiresAt.UTC()
		expiresAt = &utc
	}

	res, err := s.Access.Authorize(ctx, actorID, resourceType, req.ResourceID, models.PermissionOwner)
	if err != nil {
		return nil, err
	}

	grant := models.ShareGrant{
		ResourceType: resourceType,
		ResourceID:   res.ID,
		GrantedByID:  actorID,
		Permission:   permission,
		ExpiresAt:    expiresAt,
	}

	if req.Token {
		token, err := generateShareToken()
		if err != nil {
			return nil, dependency("failed to mint share token", err)
		}
		grant.ShareToken = &token
		if err := s.DB.WithContext(ctx).Create(&grant).Error; err != nil {
			return nil, storeError(err, "share not found")
		}
		return &GrantResult{Grant: grant, ShareURL: s.BasePath + token}, nil
	}

	grantee, err := s.findGrantee(ctx, req.UserID, email)
	if err != nil {
		return nil, err
	}
	if grantee.ID == actorID {
		return nil, invalidArgument("cannot share with yourself")
	}
	if grantee.ID == res.OwnerID {
		return nil, invalidArgument("the owner already has full access")
	}
	grant.GrantedToID = &grantee.ID

	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource_type"}, {Name: "resource_id"}, {Name: "granted_to_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"permission", "granted_by_id", "expires_at", "updated_at"}),
	}).Create(&grant).Error
	if err != nil {
		return nil, storeError(err, "share not found")
	}

	// On conflict the row keeps its original id, so read it back.
	var stored models.ShareGrant
	if err := s.DB.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ? AND granted_to_id = ?", resourceType, res.ID, grantee.ID).
		Take(&stored).Error; err != nil {
		return nil, storeError(err, "share not found")
	}
	return &GrantResult{Grant: stored}, nil
}

func (s *SharingService) findGrantee(ctx context.Context, userID *uuid.UUID, email string) (*models.User, error) {
	var user models.User
	query := s.DB.WithContext(ctx)
	var err error
	if userID != nil {
		err = query.First(&user, "id = ?", *userID).Error
	} else {
		err = query.First(&user, "email = ?", email).Error
	}
	if err != nil {
		return nil, storeError(err, "target user not found")
	}
	return &user, nil
}

// ResolveByToken returns the unexpired grant minted with exactly this token.
func (s *SharingService) ResolveByToken(ctx context.Context, token string) (*models.ShareGrant, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, notFound("share link not found")
	}

	var grant models.ShareGrant
	if err := s.DB.WithContext(ctx).Where("share_token = ?", token).Take(&grant).Error; err != nil {
		return nil, storeError(err, "share link not found")
	}
	if grant.Expired(s.now().UTC()) {
		return nil, notFound("share link not found")
	}
	return &grant, nil
}

// ListForActor returns unexpired grants the actor created or received. An
// empty resourceType lists both kinds.
func (s *SharingService) ListForActor(ctx context.Context, resourceType string, actorID uuid.UUID) ([]models.ShareGrant, error) {
	query := s.DB.WithContext(ctx).
		Where("granted_by_id = ? OR granted_to_id = ?", actorID, actorID).
		Where("expires_at IS NULL OR expires_at > ?", s.now().UTC())

	if resourceType != "" {
		rt, ok := models.ParseResourceType(resourceType)
		if !ok {
			return nil, invalidArgument("invalid resource type")
		}
		query = query.Where("resource_type = ?", rt)
	}

	grants := make([]models.ShareGrant, 0)
	if err := query.Order("created_at DESC").Find(&grants).Error; err != nil {
		return nil, dependency("failed to list shares", err)
	}
	return grants, nil
}

// Revoke deletes a grant. The grantor and the resource owner may revoke.
func (s *SharingService) Revoke(ctx context.Context, actorID, grantID uuid.UUID) (*models.ShareGrant, error) {
	var grant models.ShareGrant
	if err := s.DB.WithContext(ctx).First(&grant, "id = ?", grantID).Error; err != nil {
		return nil, storeError(err, "share not found")
	}

	if grant.GrantedByID != actorID {
		res, err := s.Access.Load(ctx, grant.ResourceType, grant.ResourceID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if err != nil || res.OwnerID != actorID {
			return nil, denied("only the grantor or the owner can revoke this share")
		}
	}

	if err := s.DB.WithContext(ctx).Delete(&models.ShareGrant{}, "id = ?", grant.ID).Error; err != nil {
		return nil, dependency("failed to revoke share", err)
	}
	return &grant, nil
}

// SignedURLForFile presigns a download link for a file the actor can view.
func (s *SharingService) SignedURLForFile(ctx context.Context, actorID, fileID uuid.UUID) (*SignedURL, error) {
	res, err := s.Access.Authorize(ctx, actorID, models.ResourceFile, fileID, models.PermissionView)
	if err != nil {
		return nil, err
	}

	url, expiresIn, err := s.signedURL(ctx, res.File.StoragePath)
	if err != nil {
		return nil, err
	}
	return &SignedURL{URL: url, ExpiresIn: expiresIn, File: res.File}, nil
}

// signedURL presigns objectPath and reports how many seconds the URL stays
// valid. A cached URL is reused while it still has at least half of its
// lifetime left.
func (s *SharingService) signedURL(ctx context.Context, objectPath string) (string, int, error) {
	now := s.now()
	if s.Cache != nil {
		cached, found, err := s.Cache.GetURL(ctx, objectPath)
		if err != nil {
			logger.Warn("signed_url_cache_read_failed", map[string]interface{}{
				"object_name": objectPath,
				"error":       err.Error(),
			})
		} else if found {
			if remaining := int(cached.ExpiresAt.Sub(now).Seconds()); remaining > 0 {
				return cached.URL, remaining, nil
			}
		}
	}

	url, err := s.Storage.PresignedGetURL(ctx, objectPath, s.SignedURLTTL)
	if err != nil {
		logger.Error("signed_url_failed", err, map[string]interface{}{"object_name": objectPath})
		return "", 0, dependency("failed to create signed url", err)
	}

	if s.Cache != nil {
		entry := cache.SignedURL{URL: url, ExpiresAt: now.Add(s.SignedURLTTL)}
		if err := s.Cache.SetURL(ctx, objectPath, entry, s.SignedURLTTL/2); err != nil {
			logger.Warn("signed_url_cache_write_failed", map[string]interface{}{
				"object_name": objectPath,
				"error":       err.Error(),
			})
		}
	}
	return url, int(s.SignedURLTTL.Seconds()), nil
}

// ResolveShared serves an anonymous token holder: a signed URL for a file,
// the folder listing for a folder. Trashed resources are not served.
func (s *SharingService) ResolveShared(ctx context.Context, token string) (*SharedResource, error) {
	grant, err := s.ResolveByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	res, err := s.Access.Load(ctx, grant.ResourceType, grant.ResourceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("share link not found")
		}
		return nil, err
	}
	if res.IsTrashed() {
		return nil, notFound("share link not found")
	}

	shared := &SharedResource{ResourceType: grant.ResourceType, Permission: grant.Permission}
	if res.File != nil {
		url, expiresIn, err := s.signedURL(ctx, res.File.StoragePath)
		if err != nil {
			return nil, err
		}
		shared.File = res.File
		shared.SignedURL = url
		shared.ExpiresIn = expiresIn
		return shared, nil
	}

	details, err := s.Hierarchy.folderContents(ctx, res.Folder, grant.Permission)
	if err != nil {
		return nil, err
	}
	shared.Folder = details
	return shared, nil
}
