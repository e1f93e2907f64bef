package handlers

import (
	"billingportal/internal/common"
	"billingportal/internal/models"
	"billingportal/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UploadHandlers handles customer photo uploads and quote files
type UploadHandlers struct {
	uploadService services.UploadService
}

// NewUploadHandlers creates a new upload handlers instance
func NewUploadHandlers(uploadService services.UploadService) *UploadHandlers {
	return &UploadHandlers{uploadService: uploadService}
}

// UploadRequest carries a base64 encoded file
type UploadRequest struct {
	FileName string  `json:"file_name"`
	FileType string  `json:"file_type"`
	FileData string  `json:"file_data"`
	QuoteID  *string `json:"quote_id"`
	Caption  *string `json:"caption"`
}

// Upload handles POST /api/portal/uploads
//
//	@Summary	Upload a photo
//	@Tags		portal
//	@Accept		json
//	@Produce	json
//	@Param		body	body		UploadRequest	true	"Base64 file"
//	@Success	200		{object}	map[string]models.CustomerUpload
//	@Failure	400		{object}	common.ErrorBody
//	@Router		/api/portal/uploads [post]
func (h *UploadHandlers) Upload(c echo.Context) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}
	var req UploadRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	var quoteID *uuid.UUID
	if id := common.SafeString(req.QuoteID); id != "" {
		parsed, err := common.ValidateUUID(id, "quote_id")
		if err != nil {
			return fail(c, err)
		}
		quoteID = &parsed
	}

	upload, err := h.uploadService.Upload(c.Request().Context(), customerID, services.UploadRequest{
		FileName: req.FileName,
		FileType: req.FileType,
		FileData: req.FileData,
		QuoteID:  quoteID,
		Caption:  req.Caption,
	}, requestMeta(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, map[string]any{"upload": upload})
}

// ListUploads handles GET /api/portal/uploads
func (h *UploadHandlers) ListUploads(c echo.Context) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}
	uploads, err := h.uploadService.ListUploads(c.Request().Context(), customerID)
	if err != nil {
		return fail(c, err)
	}
	if uploads == nil {
		uploads = []models.CustomerUpload{}
	}
	return ok(c, map[string]any{"uploads": uploads})
}

// ListFiles handles GET /api/portal/files
func (h *UploadHandlers) ListFiles(c echo.Context) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return fail(c, err)
	}
	files, err := h.uploadService.ListFiles(c.Request().Context(), customerID)
	if err != nil {
		return fail(c, err)
	}
	if files == nil {
		files = []models.CustomerFile{}
	}
	return ok(c, map[string]any{"attachments": files})
}
