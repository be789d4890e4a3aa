package handlers

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/Tarun62689/gdrive-backend/internal/events"
	"github.com/Tarun62689/gdrive-backend/internal/middleware"
	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/Tarun62689/gdrive-backend/internal/services"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type FilesHandler struct {
	itemOps
	Sharing *services.SharingService
}

func NewFilesHandler(hierarchy *services.HierarchyService, sharing *services.SharingService, activity *services.ActivityService) *FilesHandler {
	return &FilesHandler{itemOps: itemOps{Hierarchy: hierarchy, Activity: activity}, Sharing: sharing}
}

func (h *FilesHandler) Upload(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "file is required")
	}

	folderValue := c.FormValue("folderID")
	if folderValue == "" {
		folderValue = c.FormValue("parentID")
	}
	folderID, err := parseOptionalUUID(folderValue)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folderID")
	}

	filename := filepath.Base(strings.TrimSpace(fileHeader.Filename))
	if filename == "." || filename == string(filepath.Separator) {
		return utils.Error(c, fiber.StatusBadRequest, "invalid filename")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
			contentType = byExt
		}
	}

	stream, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed opening uploaded file")
	}
	defer stream.Close()

	file, err := h.Hierarchy.Upload(c.UserContext(), currentUser.ID, services.UploadInput{
		FolderID: folderID,
		Name:     filename,
		Size:     fileHeader.Size,
		MimeType: contentType,
		Reader:   stream,
	})
	if err != nil {
		return respondError(c, "file_upload_failed", err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "file_uploaded", map[string]interface{}{
		"file_id":      file.ID.String(),
		"file_name":    file.Name,
		"file_size":    file.Size,
		"mime_type":    file.MimeType,
		"storage_path": file.StoragePath,
		"folder_id":    file.FolderID.String(),
	})
	recordActivity(c, h.Activity, &currentUser.ID, events.FileUpload, models.ResourceFile, &file.ID, map[string]interface{}{
		"file_name": file.Name,
		"file_size": file.Size,
		"mime_type": file.MimeType,
		"folder_id": file.FolderID.String(),
	})

	return utils.Success(c, fiber.StatusCreated, file)
}

func (h *FilesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	p := utils.ParsePagination(c)
	files, total, err := h.Hierarchy.ListFiles(c.UserContext(), currentUser.ID, p)
	if err != nil {
		return respondError(c, "file_list_failed", err)
	}
	return utils.Paginated(c, files, p.Page, p.Limit, total)
}

func (h *FilesHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, err := h.Hierarchy.GetFile(c.UserContext(), currentUser.ID, id)
	if err != nil {
		return respondError(c, "file_get_failed", err)
	}
	return utils.Success(c, fiber.StatusOK, file)
}

func (h *FilesHandler) SignedURL(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	signed, err := h.Sharing.SignedURLForFile(c.UserContext(), currentUser.ID, id)
	if err != nil {
		return respondError(c, "file_signed_url_failed", err)
	}
	return utils.Success(c, fiber.StatusOK, signed)
}

func (h *FilesHandler) Update(c *fiber.Ctx) error {
	return h.update(c, models.ResourceFile)
}

func (h *FilesHandler) Trash(c *fiber.Ctx) error {
	return h.setTrashed(c, models.ResourceFile, true)
}

func (h *FilesHandler) Restore(c *fiber.Ctx) error {
	return h.setTrashed(c, models.ResourceFile, false)
}

func (h *FilesHandler) Delete(c *fiber.Ctx) error {
	return h.remove(c, models.ResourceFile)
}
