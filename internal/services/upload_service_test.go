package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"billingportal/internal/common"
	"billingportal/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// Smallest valid PNG header; enough for content sniffing
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type UploadServiceTestSuite struct {
	suite.Suite
	uploads       *MockUploadRepository
	quotes        *MockQuoteRepository
	customers     *MockCustomerRepository
	queue         *MockNotificationRepository
	activity      *MockActivityRepository
	storage       *MockObjectStorage
	notifications *MockNotificationService
	service       UploadService
	customer      *models.Customer
}

func (suite *UploadServiceTestSuite) SetupTest() {
	suite.uploads = &MockUploadRepository{}
	suite.quotes = &MockQuoteRepository{}
	suite.customers = &MockCustomerRepository{}
	suite.queue = &MockNotificationRepository{}
	suite.activity = &MockActivityRepository{}
	suite.storage = &MockObjectStorage{}
	suite.notifications = &MockNotificationService{}
	suite.service = NewUploadService(suite.uploads, suite.quotes, suite.customers, suite.queue, suite.activity,
		suite.storage, suite.notifications, time.Hour)
	suite.customer = &models.Customer{ID: uuid.New(), Name: "Jane Doe", Email: "jane@example.com"}
}

func (suite *UploadServiceTestSuite) TearDownTest() {
	suite.uploads.AssertExpectations(suite.T())
	suite.quotes.AssertExpectations(suite.T())
	suite.customers.AssertExpectations(suite.T())
	suite.queue.AssertExpectations(suite.T())
	suite.activity.AssertExpectations(suite.T())
	suite.storage.AssertExpectations(suite.T())
	suite.notifications.AssertExpectations(suite.T())
}

func TestUploadServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UploadServiceTestSuite))
}

func (suite *UploadServiceTestSuite) TestUpload_StoresImageAndNotifies() {
	ctx := context.Background()
	keyPrefix := fmt.Sprintf("customer-uploads/%s/", suite.customer.ID)

	suite.storage.On("Upload", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, keyPrefix) && strings.HasSuffix(key, ".png")
	}), mock.Anything, int64(len(pngBytes)), "image/png").Return(nil)
	suite.uploads.On("Create", ctx, mock.AnythingOfType("*models.CustomerUpload")).Return(nil)
	suite.queue.On("Enqueue", ctx, mock.MatchedBy(func(n *models.Notification) bool {
		return n.NotificationType == models.NotificationPhotoUploaded && n.IsAdmin
	})).Return(nil)
	suite.activity.On("Log", ctx, mock.Anything).Return(nil)
	suite.customers.On("GetByID", ctx, suite.customer.ID).Return(suite.customer, nil)
	suite.notifications.On("SendUploadNotice", ctx, suite.customer, mock.Anything).Return()
	suite.storage.On("PresignedURL", ctx, mock.Anything, time.Hour).Return("https://minio.local/signed", nil)

	upload, err := suite.service.Upload(ctx, suite.customer.ID, UploadRequest{
		FileName: "deck.png",
		FileData: "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes),
	}, models.RequestMeta{})
	suite.Require().NoError(err)
	suite.Equal("image/png", upload.FileType)
	suite.Equal(int64(len(pngBytes)), upload.FileSize)
	suite.Equal("https://minio.local/signed", upload.FileURL)
	suite.True(strings.HasPrefix(upload.ObjectKey, keyPrefix))
}

func (suite *UploadServiceTestSuite) TestUpload_Validation() {
	ctx := context.Background()

	_, err := suite.service.Upload(ctx, suite.customer.ID, UploadRequest{FileData: "aGk="}, models.RequestMeta{})
	suite.True(common.IsKind(err, common.KindValidation))

	_, err = suite.service.Upload(ctx, suite.customer.ID, UploadRequest{FileName: "a.png"}, models.RequestMeta{})
	suite.True(common.IsKind(err, common.KindValidation))

	_, err = suite.service.Upload(ctx, suite.customer.ID, UploadRequest{FileName: "a.png", FileData: "%%%"}, models.RequestMeta{})
	suite.True(common.IsKind(err, common.KindValidation))

	_, err = suite.service.Upload(ctx, suite.customer.ID, UploadRequest{
		FileName: "notes.txt",
		FileData: base64.StdEncoding.EncodeToString([]byte("plain text")),
	}, models.RequestMeta{})
	suite.Equal("Only image files can be uploaded", common.AsAppError(err).Message)
}

func (suite *UploadServiceTestSuite) TestUpload_DeclaredTypeMustMatchContents() {
	ctx := context.Background()

	_, err := suite.service.Upload(ctx, suite.customer.ID, UploadRequest{
		FileName: "fake.png",
		FileType: "image/png",
		FileData: base64.StdEncoding.EncodeToString([]byte("<html><script>alert(1)</script></html>")),
	}, models.RequestMeta{})
	suite.Equal("Only image files can be uploaded", common.AsAppError(err).Message)

	_, err = suite.service.Upload(ctx, suite.customer.ID, UploadRequest{
		FileName: "deck.jpg",
		FileType: "image/jpeg",
		FileData: base64.StdEncoding.EncodeToString(pngBytes),
	}, models.RequestMeta{})
	suite.Equal("file_type does not match the file contents", common.AsAppError(err).Message)
	suite.storage.AssertNotCalled(suite.T(), "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSniffImageType(t *testing.T) {
	heic := append([]byte{0, 0, 0, 0x18}, []byte("ftypheic")...)
	assert.Equal(t, "image/heic", sniffImageType(heic))
	assert.Equal(t, "image/png", sniffImageType(pngBytes))
	assert.Equal(t, "image/jpeg", normalizeContentType(" Image/JPG "))
	assert.Equal(t, "image/png", normalizeContentType("image/png; charset=binary"))
}

func (suite *UploadServiceTestSuite) TestUpload_TooLarge() {
	big := make([]byte, MaxUploadBytes+1)
	copy(big, pngBytes)

	_, err := suite.service.Upload(context.Background(), suite.customer.ID, UploadRequest{
		FileName: "huge.png",
		FileData: base64.StdEncoding.EncodeToString(big),
	}, models.RequestMeta{})
	suite.True(common.IsKind(err, common.KindValidation))
}

func (suite *UploadServiceTestSuite) TestUpload_ForeignQuote() {
	ctx := context.Background()
	quoteID := uuid.New()
	suite.quotes.On("GetForCustomer", ctx, suite.customer.ID, quoteID).Return(nil, nil)

	_, err := suite.service.Upload(ctx, suite.customer.ID, UploadRequest{
		FileName: "deck.png",
		FileData: base64.StdEncoding.EncodeToString(pngBytes),
		QuoteID:  &quoteID,
	}, models.RequestMeta{})
	suite.True(common.IsKind(err, common.KindNotFound))
}

func (suite *UploadServiceTestSuite) TestUpload_RowFailureRemovesObject() {
	ctx := context.Background()
	suite.storage.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything, "image/png").Return(nil)
	suite.uploads.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))
	suite.storage.On("Delete", ctx, mock.Anything).Return(nil)

	_, err := suite.service.Upload(ctx, suite.customer.ID, UploadRequest{
		FileName: "deck.png",
		FileType: "image/png",
		FileData: base64.StdEncoding.EncodeToString(pngBytes),
	}, models.RequestMeta{})
	suite.True(common.IsKind(err, common.KindUpstream))
}
