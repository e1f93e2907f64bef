package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"billingportal/internal/common"
	"billingportal/internal/models"
	"billingportal/internal/repositories"

	"github.com/google/uuid"
)

// MaxUploadBytes caps the decoded size of a customer upload
const MaxUploadBytes = 10 << 20

var uploadExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/heic": "heic",
}

// sniffImageType reports the content type of an upload from its leading bytes.
// HEIC is checked by hand since http.DetectContentType does not know it.
func sniffImageType(content []byte) string {
	if len(content) >= 12 && string(content[4:8]) == "ftyp" {
		switch string(content[8:12]) {
		case "heic", "heix", "mif1", "msf1":
			return "image/heic"
		}
	}
	return http.DetectContentType(content)
}

func normalizeContentType(fileType string) string {
	t := strings.ToLower(strings.TrimSpace(fileType))
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if t == "image/jpg" {
		return "image/jpeg"
	}
	return t
}

type UploadRequest struct {
	FileName string     `json:"file_name"`
	FileType string     `json:"file_type"`
	FileData string     `json:"file_data"`
	QuoteID  *uuid.UUID `json:"quote_id,omitempty"`
	Caption  *string    `json:"caption,omitempty"`
}

// UploadService stores reference photos supplied by customers
type UploadService interface {
	Upload(ctx context.Context, customerID uuid.UUID, req UploadRequest, meta models.RequestMeta) (*models.CustomerUpload, error)
	ListUploads(ctx context.Context, customerID uuid.UUID) ([]models.CustomerUpload, error)
	ListFiles(ctx context.Context, customerID uuid.UUID) ([]models.CustomerFile, error)
}

type uploadService struct {
	uploads       repositories.UploadRepository
	quotes        repositories.QuoteRepository
	customers     repositories.CustomerRepository
	queue         repositories.NotificationRepository
	activity      repositories.ActivityRepository
	storage       ObjectStorage
	notifications NotificationService
	urlExpiry     time.Duration
}

func NewUploadService(
	uploads repositories.UploadRepository,
	quotes repositories.QuoteRepository,
	customers repositories.CustomerRepository,
	queue repositories.NotificationRepository,
	activity repositories.ActivityRepository,
	storage ObjectStorage,
	notifications NotificationService,
	urlExpiry time.Duration,
) UploadService {
	return &uploadService{
		uploads:       uploads,
		quotes:        quotes,
		customers:     customers,
		queue:         queue,
		activity:      activity,
		storage:       storage,
		notifications: notifications,
		urlExpiry:     urlExpiry,
	}
}

// decodeFileData accepts raw base64 or a data URL
func decodeFileData(data string) ([]byte, error) {
	if strings.HasPrefix(data, "data:") {
		if i := strings.Index(data, ","); i >= 0 {
			data = data[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(data))
}

func (s *uploadService) Upload(ctx context.Context, customerID uuid.UUID, req UploadRequest, meta models.RequestMeta) (*models.CustomerUpload, error) {
	if err := common.ValidateRequiredString(req.FileName, "file_name"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.FileData, "file_data"); err != nil {
		return nil, err
	}
	if base64.StdEncoding.DecodedLen(len(req.FileData)) > MaxUploadBytes+3 {
		return nil, common.NewValidationError("File is too large (max 10MB)")
	}

	content, err := decodeFileData(req.FileData)
	if err != nil {
		return nil, common.NewValidationError("file_data must be base64 encoded")
	}
	if len(content) > MaxUploadBytes {
		return nil, common.NewValidationError("File is too large (max 10MB)")
	}

	contentType := sniffImageType(content)
	ext, ok := uploadExtensions[contentType]
	if !ok {
		return nil, common.NewValidationError("Only image files can be uploaded")
	}
	if declared := normalizeContentType(req.FileType); declared != "" && declared != contentType {
		return nil, common.NewValidationError("file_type does not match the file contents")
	}

	if req.QuoteID != nil {
		quote, err := s.quotes.GetForCustomer(ctx, customerID, *req.QuoteID)
		if err != nil {
			return nil, common.NewUpstreamError("load quote", err)
		}
		if quote == nil {
			return nil, common.NewNotFoundError("Quote")
		}
	}

	uploadID := uuid.New()
	objectKey := fmt.Sprintf("customer-uploads/%s/%s.%s", customerID, uploadID, ext)
	if err := s.storage.Upload(ctx, objectKey, bytes.NewReader(content), int64(len(content)), contentType); err != nil {
		return nil, common.NewUpstreamError("store file", err)
	}

	upload := &models.CustomerUpload{
		ID:         uploadID,
		CustomerID: customerID,
		QuoteID:    req.QuoteID,
		ObjectKey:  objectKey,
		FileName:   req.FileName,
		FileType:   contentType,
		FileSize:   int64(len(content)),
		Caption:    req.Caption,
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		if delErr := s.storage.Delete(ctx, objectKey); delErr != nil {
			log.Printf("Failed to remove orphaned object %s: %v", objectKey, delErr)
		}
		return nil, common.NewUpstreamError("save upload", err)
	}

	if err := s.queue.Enqueue(ctx, &models.Notification{
		CustomerID:       customerID,
		NotificationType: models.NotificationPhotoUploaded,
		ReferenceType:    "upload",
		ReferenceID:      upload.ID,
		IsAdmin:          true,
	}); err != nil {
		log.Printf("Failed to queue upload notification for %s: %v", upload.ID, err)
	}
	if err := s.activity.Log(ctx, &models.ActivityLog{
		CustomerID:   customerID,
		QuoteID:      req.QuoteID,
		ActivityType: models.ActivityUpload,
		Description:  "Uploaded " + req.FileName,
		IPAddress:    meta.IPAddress,
	}); err != nil {
		log.Printf("Failed to record upload activity for %s: %v", upload.ID, err)
	}

	if customer, err := s.customers.GetByID(ctx, customerID); err != nil || customer == nil {
		log.Printf("Failed to load customer %s for upload notice: %v", customerID, err)
	} else {
		s.notifications.SendUploadNotice(ctx, customer, upload)
	}

	s.attachURL(ctx, upload)
	return upload, nil
}

func (s *uploadService) attachURL(ctx context.Context, upload *models.CustomerUpload) {
	url, err := s.storage.PresignedURL(ctx, upload.ObjectKey, s.urlExpiry)
	if err != nil {
		log.Printf("Failed to presign %s: %v", upload.ObjectKey, err)
		return
	}
	upload.FileURL = url
}

func (s *uploadService) ListUploads(ctx context.Context, customerID uuid.UUID) ([]models.CustomerUpload, error) {
	uploads, err := s.uploads.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, common.NewUpstreamError("load uploads", err)
	}
	for i := range uploads {
		s.attachURL(ctx, &uploads[i])
	}
	return uploads, nil
}

func (s *uploadService) ListFiles(ctx context.Context, customerID uuid.UUID) ([]models.CustomerFile, error) {
	files, err := s.quotes.ListCustomerFiles(ctx, customerID)
	if err != nil {
		return nil, common.NewUpstreamError("load files", err)
	}
	return files, nil
}
