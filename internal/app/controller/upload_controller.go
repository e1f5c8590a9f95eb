package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/errors"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/middleware"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/storage"
)

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{storage: storage}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"` // optional, defaults to "uploads"
}

// Upload receives a multipart image and stores it in object storage
// POST /api/v1/upload
func (ctrl *UploadController) Upload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "A file is required")
		return
	}

	if err := ctrl.storage.ValidateFileSize(fileHeader.Size, storage.MaxUploadSize); err != nil {
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "File exceeds the 5MB limit")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := ctrl.storage.ValidateContentType(contentType, storage.AllowedImageTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
		return
	}

	folder := c.DefaultPostForm("folder", "uploads")

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", err, map[string]interface{}{
			"filename": fileHeader.Filename,
		})
		apperrors.InternalError(c, "Upload failed")
		return
	}
	defer file.Close()

	result, err := ctrl.storage.UploadToFolder(c.Request.Context(), fileHeader.Filename, contentType, folder, file)
	if err != nil {
		log.Error("Upload failed", err, map[string]interface{}{
			"filename": fileHeader.Filename,
			"folder":   folder,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Upload failed")
		return
	}

	log.Info("File uploaded", map[string]interface{}{
		"key":    result.Key,
		"folder": folder,
	})

	c.JSON(http.StatusCreated, gin.H{
		"key":      result.Key,
		"file_url": result.FileURL,
	})
}

// GeneratePresignedURL lets the client upload directly to S3
// POST /api/v1/upload/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Filename and content type are required")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType, storage.AllowedImageTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = "uploads"
	}

	response, err := ctrl.storage.GeneratePresignedURL(req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename": req.Filename,
			"folder":   folder,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to generate upload URL")
		return
	}

	log.Info("Presigned URL generated", map[string]interface{}{
		"key":    response.Key,
		"folder": folder,
	})

	c.JSON(http.StatusOK, gin.H{
		"upload_url": response.UploadURL,
		"file_url":   response.FileURL,
		"key":        response.Key,
	})
}
