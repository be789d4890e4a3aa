package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Tarun62689/gdrive-backend/internal/cache"
	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/Tarun62689/gdrive-backend/internal/storage"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxNameLength = 255

type HierarchyService struct {
	DB      *gorm.DB
	Storage storage.ObjectStore
	Access  *AccessService
	// URLCache, when set, loses a file's signed URL once the file is deleted.
	URLCache cache.URLCache
}

func NewHierarchyService(db *gorm.DB, objectStore storage.ObjectStore, access *AccessService) *HierarchyService {
	return &HierarchyService{DB: db, Storage: objectStore, Access: access}
}

type UploadInput struct {
	FolderID *uuid.UUID
	Name     string
	Size     int64
	MimeType string
	Reader   io.Reader
}

type FolderDetails struct {
	Folder     models.Folder          `json:"folder"`
	Permission models.PermissionLevel `json:"permission"`
	Subfolders []models.Folder        `json:"subfolders"`
	Files      []models.File          `json:"files"`
}

type Trash struct {
	Folders []models.Folder `json:"folders"`
	Files   []models.File   `json:"files"`
}

type DriveData struct {
	Files   []models.File `json:"files"`
	Folders []TreeNode    `json:"folders"`
}

type FolderWithFiles struct {
	models.Folder
	Files []models.File `json:"files"`
}

type MyDrive struct {
	Root    models.Folder     `json:"root"`
	Files   []models.File     `json:"files"`
	Folders []FolderWithFiles `json:"folders"`
}

type SearchPage[T any] struct {
	Results []T   `json:"results"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
}

type SearchResult struct {
	Files   SearchPage[models.File]   `json:"files"`
	Folders SearchPage[models.Folder] `json:"folders"`
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidArgument("name is required")
	}
	if len(name) > maxNameLength {
		return "", invalidArgument("name must be at most 255 characters")
	}
	if strings.ContainsAny(name, "/\\") {
		return "", invalidArgument("name must not contain slashes")
	}
	return name, nil
}

func (s *HierarchyService) findRoot(ctx context.Context, userID uuid.UUID) (*models.Folder, error) {
	var root models.Folder
	err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND parent_id IS NULL AND LOWER(name) = LOWER(?)", userID, models.RootFolderName).
		Take(&root).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dependency("failed to look up root folder", err)
	}
	return &root, nil
}

// ResolveDefaultFolder returns the user's root folder, creating it when
// missing. Losing a concurrent creation race re-reads the winner.
func (s *HierarchyService) ResolveDefaultFolder(ctx context.Context, userID uuid.UUID) (*models.Folder, error) {
	root, err := s.findRoot(ctx, userID)
	if err != nil || root != nil {
		return root, err
	}

	root = &models.Folder{OwnerID: userID, Name: models.RootFolderName}
	err = s.DB.WithContext(ctx).Create(root).Error
	if err == nil {
		logger.InfoWithUser(userID.String(), "root_folder_created", map[string]interface{}{
			"folder_id": root.ID.String(),
		})
		return root, nil
	}
	if !isDuplicateKey(err) {
		return nil, dependency("failed to create root folder", err)
	}

	winner, findErr := s.findRoot(ctx, userID)
	if findErr != nil {
		return nil, findErr
	}
	if winner == nil {
		return nil, conflict("root folder creation raced", err)
	}
	return winner, nil
}

// EnsureDefaultFolders creates whichever default subfolders are missing
// under the user's root. Safe to call repeatedly.
func (s *HierarchyService) EnsureDefaultFolders(ctx context.Context, userID uuid.UUID) error {
	root, err := s.findRoot(ctx, userID)
	if err != nil {
		return err
	}
	if root == nil {
		return notFound("root folder not found")
	}

	for _, name := range models.DefaultFolderNames {
		key := models.DefaultFolderKey(name)
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.Folder{}).
			Where("owner_id = ? AND (default_key = ? OR (parent_id = ? AND LOWER(name) = LOWER(?)))", userID, key, root.ID, name).
			Count(&count).Error; err != nil {
			return dependency("failed to check default folder", err)
		}
		if count > 0 {
			continue
		}

		child := models.Folder{OwnerID: userID, Name: name, ParentID: &root.ID, DefaultKey: &key}
		if err := s.DB.WithContext(ctx).Create(&child).Error; err != nil {
			// A concurrent provision already created it.
			if isDuplicateKey(err) {
				continue
			}
			return dependency(fmt.Sprintf("failed to create default folder %s", name), err)
		}
	}
	return nil
}

// ProvisionDrive sets up a new account's root and default subfolders. If the
// root exists but a subfolder fails, the root is still returned together with
// an error wrapping ErrDefaultFoldersIncomplete; retry with EnsureDefaultFolders.
func (s *HierarchyService) ProvisionDrive(ctx context.Context, userID uuid.UUID) (*models.Folder, error) {
	root, err := s.ResolveDefaultFolder(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.EnsureDefaultFolders(ctx, userID); err != nil {
		logger.ErrorWithUser(userID.String(), "default_folders_failed", err, map[string]interface{}{
			"root_id": root.ID.String(),
		})
		return root, &Error{
			Kind:    ErrDependency,
			Message: "failed to create default folders",
			Err:     fmt.Errorf("%w: %w", ErrDefaultFoldersIncomplete, err),
		}
	}
	return root, nil
}

// writableFolder resolves an upload or create target: the actor's root when
// folderID is nil, otherwise a non-trashed folder the actor can edit.
func (s *HierarchyService) writableFolder(ctx context.Context, actorID uuid.UUID, folderID *uuid.UUID) (*models.Folder, error) {
	if folderID == nil {
		return s.ResolveDefaultFolder(ctx, actorID)
	}

	res, err := s.Access.Authorize(ctx, actorID, models.ResourceFolder, *folderID, models.PermissionEdit)
	if err != nil {
		return nil, err
	}
	if res.Folder.IsTrashed {
		return nil, invalidArgument("target folder is in the trash")
	}
	return res.Folder, nil
}

// CreateFolder adds a folder under parentID (the actor's root when nil). The
// new folder belongs to the parent's owner.
func (s *HierarchyService) CreateFolder(ctx context.Context, actorID uuid.UUID, name string, parentID *uuid.UUID) (*models.Folder, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	parent, err := s.writableFolder(ctx, actorID, parentID)
	if err != nil {
		return nil, err
	}

	folder := models.Folder{OwnerID: parent.OwnerID, Name: name, ParentID: &parent.ID}
	if err := s.DB.WithContext(ctx).Create(&folder).Error; err != nil {
		return nil, storeError(err, "folder not found")
	}
	return &folder, nil
}

func objectNameFor(ownerID uuid.UUID, fileName string) string {
	return fmt.Sprintf("%s/%s-%s", ownerID, uuid.New(), fileName)
}

// Upload stores the object first and the record second. A failed record
// insert removes the object again.
func (s *HierarchyService) Upload(ctx context.Context, actorID uuid.UUID, input UploadInput) (*models.File, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	if input.Reader == nil {
		return nil, invalidArgument("file content is required")
	}
	if input.Size < 0 {
		return nil, invalidArgument("file size must not be negative")
	}
	mimeType := strings.TrimSpace(input.MimeType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	target, err := s.writableFolder(ctx, actorID, input.FolderID)
	if err != nil {
		return nil, err
	}

	objectName := objectNameFor(target.OwnerID, name)
	if err := s.Storage.Upload(ctx, objectName, input.Reader, input.Size, mimeType); err != nil {
		return nil, dependency("failed to upload file", err)
	}

	file := models.File{
		OwnerID:     target.OwnerID,
		FolderID:    target.ID,
		Name:        name,
		Size:        input.Size,
		MimeType:    mimeType,
		StoragePath: objectName,
	}
	if err := s.DB.WithContext(ctx).Create(&file).Error; err != nil {
		if delErr := s.Storage.Delete(ctx, objectName); delErr != nil {
			logger.ErrorWithUser(actorID.String(), "upload_cleanup_failed", delErr, map[string]interface{}{
				"object_name": objectName,
			})
		}
		return nil, storeError(err, "file not found")
	}

	s.attachURL(&file)
	return &file, nil
}

func (s *HierarchyService) attachURL(file *models.File) {
	if file == nil {
		return
	}
	if url := s.Storage.PublicURL(file.StoragePath); url != "" {
		file.URL = &url
	}
}

func (s *HierarchyService) attachURLs(files []models.File) {
	for i := range files {
		s.attachURL(&files[i])
	}
}

func (s *HierarchyService) Rename(ctx context.Context, actorID uuid.UUID, resourceType models.ResourceType, id uuid.UUID, name string) (Resource, error) {
	return s.Update(ctx, actorID, resourceType, id, &name, nil)
}

// Trash soft-deletes one item. Contents of a trashed folder keep their own state.
func (s *HierarchyService) Trash(ctx context.Context, actorID uuid.UUID, resourceType models.ResourceType, id uuid.UUID) (Resource, error) {
	return s.setTrashed(ctx, actorID, resourceType, id, true)
}

func (s *HierarchyService) Restore(ctx context.Context, actorID uuid.UUID, resourceType models.ResourceType, id uuid.UUID) (Resource, error) {
	return s.setTrashed(ctx, actorID, resourceType, id, false)
}

func (s *HierarchyService) setTrashed(ctx context.Context, actorID uuid.UUID, resourceType models.ResourceType, id uuid.UUID, trashed bool) (Resource, error) {
	res, err := s.Access.Authorize(ctx, actorID, resourceType, id, models.PermissionEdit)
	if err != nil {
		return Resource{}, err
	}
	if res.IsRootFolder() {
		return Resource{}, invalidArgument("the root folder cannot be trashed")
	}
	if res.IsTrashed() == trashed {
		return res, nil
	}

	var trashedAt *time.Time
	if trashed {
		now := time.Now().UTC()
		trashedAt = &now
	}
	if err := s.DB.WithContext(ctx).Model(res.model()).Updates(map[string]interface{}{
		"is_trashed": trashed,
		"trashed_at": trashedAt,
	}).Error; err != nil {
		return Resource{}, storeError(err, "resource not found")
	}
	res.setTrashed(trashed, trashedAt)
	return res, nil
}

// Move re-parents a file or folder within the same owner's drive.
func (s *HierarchyService) Move(ctx context.Context, actorID uuid.UUID, resourceType models.ResourceType, id uuid.UUID, newParentID uuid.UUID) (Resource, error) {
	return s.Update(ctx, actorID, resourceType, id, nil, &newParentID)
}

// Update renames and/or moves one item. Every check runs before anything is
// written, and both changes land in a single statement.
func (s *HierarchyService) Update(ctx context.Context, actorID uuid.UUID, resourceType models.ResourceType, id uuid.UUID, name *string, newParentID *uuid.UUID) (Resource, error) {
	if name == nil && newParentID == nil {
		return Resource{}, invalidArgument("name or parent is required")
	}

	updates := map[string]interface{}{}
	if name != nil {
		normalized, err := normalizeName(*name)
		if err != nil {
			return Resource{}, err
		}
		name = &normalized
		updates["name"] = normalized
	}

	res, err := s.Access.Authorize(ctx, actorID, resourceType, id, models.PermissionEdit)
	if err != nil {
		return Resource{}, err
	}
	if res.IsRootFolder() {
		if name != nil {
			return Resource{}, invalidArgument("the root folder cannot be renamed")
		}
		return Resource{}, invalidArgument("the root folder cannot be moved")
	}

	var target *models.Folder
	if newParentID != nil {
		target, err = s.writableFolder(ctx, actorID, newParentID)
		if err != nil {
			return Resource{}, err
		}
		if target.OwnerID != res.OwnerID {
			return Resource{}, invalidArgument("items can only be moved within the same drive")
		}

		column := "folder_id"
		if res.Folder != nil {
			column = "parent_id"
			if err := s.ensureNotDescendant(ctx, res.ID, target); err != nil {
				return Resource{}, err
			}
		}
		updates[column] = target.ID
	}

	if err := s.DB.WithContext(ctx).Model(res.model()).Updates(updates).Error; err != nil {
		return Resource{}, storeError(err, "resource not found")
	}
	if name != nil {
		res.setName(*name)
	}
	if target != nil {
		res.setParent(target.ID)
	}
	return res, nil
}

// ensureNotDescendant walks up from target and fails if it reaches folderID.
func (s *HierarchyService) ensureNotDescendant(ctx context.Context, folderID uuid.UUID, target *models.Folder) error {
	visited := map[uuid.UUID]bool{}
	current := target
	for {
		if current.ID == folderID {
			return invalidArgument("cannot move a folder into itself or its subfolders")
		}
		if current.ParentID == nil || visited[current.ID] {
			return nil
		}
		visited[current.ID] = true

		var parent models.Folder
		if err := s.DB.WithContext(ctx).First(&parent, "id = ?", *current.ParentID).Error; err != nil {
			return storeError(err, "folder not found")
		}
		current = &parent
	}
}

// Delete permanently removes a trashed item. A folder takes its whole subtree
// with it. Each stored object is removed before its record, and grants on
// removed resources are dropped.
func (s *HierarchyService) Delete(ctx context.Context, actorID uuid.UUID, resourceType models.ResourceType, id uuid.UUID) error {
	res, err := s.Access.Authorize(ctx, actorID, resourceType, id, models.PermissionOwner)
	if err != nil {
		return err
	}
	if res.IsRootFolder() {
		return invalidArgument("the root folder cannot be deleted")
	}
	if !res.IsTrashed() {
		return invalidArgument("item must be moved to trash before it is deleted")
	}

	if res.File != nil {
		return s.deleteFile(ctx, res.File)
	}
	return s.deleteFolderTree(ctx, res.Folder)
}

func (s *HierarchyService) deleteFile(ctx context.Context, file *models.File) error {
	if err := s.Storage.Delete(ctx, file.StoragePath); err != nil {
		return dependency("failed to delete stored object", err)
	}
	if s.URLCache != nil {
		if err := s.URLCache.Invalidate(ctx, file.StoragePath); err != nil {
			logger.Warn("signed_url_cache_invalidate_failed", map[string]interface{}{
				"object_name": file.StoragePath,
				"error":       err.Error(),
			})
		}
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resource_type = ? AND resource_id = ?", models.ResourceFile, file.ID).
			Delete(&models.ShareGrant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.File{}, "id = ?", file.ID).Error
	})
	if err != nil {
		return dependency("failed to delete file record", err)
	}
	return nil
}

func (s *HierarchyService) deleteFolderTree(ctx context.Context, root *models.Folder) error {
	folderIDs, err := s.subtreeIDs(ctx, root.ID)
	if err != nil {
		return err
	}

	var files []models.File
	if err := s.DB.WithContext(ctx).Where("folder_id IN ?", folderIDs).Find(&files).Error; err != nil {
		return dependency("failed to list folder contents", err)
	}
	for i := range files {
		if err := s.deleteFile(ctx, &files[i]); err != nil {
			return err
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resource_type = ? AND resource_id IN ?", models.ResourceFolder, folderIDs).
			Delete(&models.ShareGrant{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", folderIDs).Delete(&models.Folder{}).Error
	})
	if err != nil {
		return dependency("failed to delete folder records", err)
	}
	return nil
}

// subtreeIDs returns rootID and every folder below it, breadth first.
func (s *HierarchyService) subtreeIDs(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{rootID}
	seen := map[uuid.UUID]bool{rootID: true}
	frontier := []uuid.UUID{rootID}

	for len(frontier) > 0 {
		var children []models.Folder
		if err := s.DB.WithContext(ctx).Select("id").Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			return nil, dependency("failed to walk folder tree", err)
		}
		frontier = frontier[:0]
		for _, child := range children {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			ids = append(ids, child.ID)
			frontier = append(frontier, child.ID)
		}
	}
	return ids, nil
}

func (s *HierarchyService) GetFolder(ctx context.Context, actorID, id uuid.UUID) (*models.Folder, error) {
	res, err := s.Access.Authorize(ctx, actorID, models.ResourceFolder, id, models.PermissionView)
	if err != nil {
		return nil, err
	}
	return res.Folder, nil
}

func (s *HierarchyService) GetFile(ctx context.Context, actorID, id uuid.UUID) (*models.File, error) {
	res, err := s.Access.Authorize(ctx, actorID, models.ResourceFile, id, models.PermissionView)
	if err != nil {
		return nil, err
	}
	s.attachURL(res.File)
	return res.File, nil
}

func (s *HierarchyService) FolderDetails(ctx context.Context, actorID, id uuid.UUID) (*FolderDetails, error) {
	res, err := s.Access.Authorize(ctx, actorID, models.ResourceFolder, id, models.PermissionView)
	if err != nil {
		return nil, err
	}
	return s.folderContents(ctx, res.Folder, res.Level)
}

func (s *HierarchyService) folderContents(ctx context.Context, folder *models.Folder, level models.PermissionLevel) (*FolderDetails, error) {
	details := &FolderDetails{
		Folder:     *folder,
		Permission: level,
		Subfolders: make([]models.Folder, 0),
		Files:      make([]models.File, 0),
	}

	if err := s.DB.WithContext(ctx).
		Where("parent_id = ? AND is_trashed = ?", folder.ID, false).
		Order("name ASC").
		Find(&details.Subfolders).Error; err != nil {
		return nil, dependency("failed to list subfolders", err)
	}
	if err := s.DB.WithContext(ctx).
		Where("folder_id = ? AND is_trashed = ?", folder.ID, false).
		Order("uploaded_at DESC").
		Find(&details.Files).Error; err != nil {
		return nil, dependency("failed to list folder files", err)
	}
	s.attachURLs(details.Files)
	return details, nil
}

// ListFiles pages through the owner's non-trashed files, newest first.
func (s *HierarchyService) ListFiles(ctx context.Context, ownerID uuid.UUID, pagination utils.PaginationParams) ([]models.File, int64, error) {
	baseQuery := s.DB.WithContext(ctx).Model(&models.File{}).
		Where("owner_id = ? AND is_trashed = ?", ownerID, false)

	var total int64
	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, dependency("failed to count files", err)
	}

	files := make([]models.File, 0)
	if err := utils.ApplyPagination(baseQuery.Order("uploaded_at DESC"), pagination).Find(&files).Error; err != nil {
		return nil, 0, dependency("failed to list files", err)
	}
	s.attachURLs(files)
	return files, total, nil
}

func (s *HierarchyService) ListTrash(ctx context.Context, ownerID uuid.UUID) (*Trash, error) {
	trash := &Trash{Folders: make([]models.Folder, 0), Files: make([]models.File, 0)}

	if err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND is_trashed = ?", ownerID, true).
		Order("trashed_at DESC").
		Find(&trash.Folders).Error; err != nil {
		return nil, dependency("failed to list trashed folders", err)
	}
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND is_trashed = ?", ownerID, true).
		Order("trashed_at DESC").
		Find(&trash.Files).Error; err != nil {
		return nil, dependency("failed to list trashed files", err)
	}
	return trash, nil
}

// UserData returns every non-trashed file plus the folder tree. Folders under
// a trashed folder drop out of the tree with it.
func (s *HierarchyService) UserData(ctx context.Context, ownerID uuid.UUID) (*DriveData, error) {
	data := &DriveData{Files: make([]models.File, 0)}

	if err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND is_trashed = ?", ownerID, false).
		Order("uploaded_at DESC").
		Find(&data.Files).Error; err != nil {
		return nil, dependency("failed to list files", err)
	}

	var folders []models.Folder
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND is_trashed = ?", ownerID, false).
		Find(&folders).Error; err != nil {
		return nil, dependency("failed to list folders", err)
	}

	s.attachURLs(data.Files)
	data.Folders = BuildTree(folders)
	return data, nil
}

// MyDrive returns the root with its files and each direct subfolder with its files.
func (s *HierarchyService) MyDrive(ctx context.Context, ownerID uuid.UUID) (*MyDrive, error) {
	root, err := s.ResolveDefaultFolder(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	rootContents, err := s.folderContents(ctx, root, models.PermissionOwner)
	if err != nil {
		return nil, err
	}

	drive := &MyDrive{
		Root:    *root,
		Files:   rootContents.Files,
		Folders: make([]FolderWithFiles, 0, len(rootContents.Subfolders)),
	}
	for _, sub := range rootContents.Subfolders {
		files := make([]models.File, 0)
		if err := s.DB.WithContext(ctx).
			Where("folder_id = ? AND is_trashed = ?", sub.ID, false).
			Order("uploaded_at DESC").
			Find(&files).Error; err != nil {
			return nil, dependency("failed to list folder files", err)
		}
		s.attachURLs(files)
		drive.Folders = append(drive.Folders, FolderWithFiles{Folder: sub, Files: files})
	}
	return drive, nil
}

// nameMatch builds the search predicate: full-text OR substring on
// Postgres, substring elsewhere.
func nameMatch(db *gorm.DB, query string) (string, []interface{}) {
	pattern := "%" + escapeLike(query) + "%"
	if db.Dialector.Name() == "postgres" {
		return `(to_tsvector('simple', name) @@ plainto_tsquery('simple', ?) OR name ILIKE ? ESCAPE '\')`,
			[]interface{}{query, pattern}
	}
	return `LOWER(name) LIKE LOWER(?) ESCAPE '\'`, []interface{}{pattern}
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

// Search matches the owner's non-trashed files and folders by name. Each
// kind is paged independently.
func (s *HierarchyService) Search(ctx context.Context, ownerID uuid.UUID, query string, pagination utils.PaginationParams) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidArgument("search query is required")
	}
	clause, args := nameMatch(s.DB, query)

	result := &SearchResult{
		Files:   SearchPage[models.File]{Results: make([]models.File, 0), Page: pagination.Page, Limit: pagination.Limit},
		Folders: SearchPage[models.Folder]{Results: make([]models.Folder, 0), Page: pagination.Page, Limit: pagination.Limit},
	}

	fileQuery := s.DB.WithContext(ctx).Model(&models.File{}).
		Where("owner_id = ? AND is_trashed = ?", ownerID, false).
		Where(clause, args...)
	if err := fileQuery.Count(&result.Files.Total).Error; err != nil {
		return nil, dependency("failed to count file matches", err)
	}
	if err := utils.ApplyPagination(fileQuery.Order("uploaded_at DESC"), pagination).Find(&result.Files.Results).Error; err != nil {
		return nil, dependency("failed to search files", err)
	}

	folderQuery := s.DB.WithContext(ctx).Model(&models.Folder{}).
		Where("owner_id = ? AND is_trashed = ?", ownerID, false).
		Where(clause, args...)
	if err := folderQuery.Count(&result.Folders.Total).Error; err != nil {
		return nil, dependency("failed to count folder matches", err)
	}
	if err := utils.ApplyPagination(folderQuery.Order("created_at DESC"), pagination).Find(&result.Folders.Results).Error; err != nil {
		return nil, dependency("failed to search folders", err)
	}

	s.attachURLs(result.Files.Results)
	return result, nil
}
