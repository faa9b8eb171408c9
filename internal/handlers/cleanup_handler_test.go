package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"catalog-cleanup-service/internal/models"
	"catalog-cleanup-service/internal/repository"
	"catalog-cleanup-service/internal/services"
)

// MockCleanupRepository backs a real CleanupService in handler tests
type MockCleanupRepository struct {
	mock.Mock
}

var _ repository.CleanupRepositoryInterface = (*MockCleanupRepository)(nil)

func (m *MockCleanupRepository) CountMatching(ctx context.Context, tenantID string, filter *models.DeleteFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCleanupRepository) CountVariants(ctx context.Context, tenantID string) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCleanupRepository) SelectBatch(ctx context.Context, tenantID string, filter *models.DeleteFilter, limit int) ([]models.Product, error) {
	args := m.Called(ctx, tenantID, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockCleanupRepository) CollectImageIDs(ctx context.Context, product *models.Product) ([]uuid.UUID, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCleanupRepository) ListVariantIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCleanupRepository) DeleteProduct(ctx context.Context, tenantID string, productID uuid.UUID) error {
	args := m.Called(ctx, tenantID, productID)
	return args.Error(0)
}

func (m *MockCleanupRepository) DeleteProductRow(ctx context.Context, tenantID string, productID uuid.UUID) error {
	args := m.Called(ctx, tenantID, productID)
	return args.Error(0)
}

func (m *MockCleanupRepository) DeleteVariant(ctx context.Context, variantID uuid.UUID) error {
	args := m.Called(ctx, variantID)
	return args.Error(0)
}

func (m *MockCleanupRepository) DeleteAttachment(ctx context.Context, tenantID string, attachmentID uuid.UUID) error {
	args := m.Called(ctx, tenantID, attachmentID)
	return args.Error(0)
}

func (m *MockCleanupRepository) DeleteProductMeta(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockCleanupRepository) DeleteTermRelationships(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockCleanupRepository) ListProductTypes(ctx context.Context, tenantID string) ([]models.ProductTypeInfo, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductTypeInfo), args.Error(1)
}

func (m *MockCleanupRepository) ListTerms(ctx context.Context, tenantID string, taxonomy models.Taxonomy) ([]models.TermInfo, error) {
	args := m.Called(ctx, tenantID, taxonomy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TermInfo), args.Error(1)
}

func setupRouter(mockRepo *MockCleanupRepository, tenantID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	service := services.NewCleanupService(mockRepo, nil, nil, logger, 30)
	handler := NewCleanupHandler(service)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if tenantID != "" {
			c.Set("tenant_id", tenantID)
		} else {
			c.Set("tenant_id", "")
		}
		c.Next()
	})

	cleanup := router.Group("/api/v1/cleanup")
	{
		cleanup.POST("/count", handler.CountProducts)
		cleanup.POST("/batch", handler.DeleteBatch)
		cleanup.GET("/product-types", handler.GetProductTypes)
		cleanup.GET("/categories", handler.GetCategories)
		cleanup.GET("/tags", handler.GetTags)
	}

	return router
}

func TestCountProducts_Success(t *testing.T) {
	tenantID := "tenant-123"
	mockRepo := new(MockCleanupRepository)
	router := setupRouter(mockRepo, tenantID)

	mockRepo.On("CountMatching", mock.Anything, tenantID, mock.Anything).Return(int64(15), nil)
	mockRepo.On("CountVariants", mock.Anything, tenantID).Return(int64(40), nil)

	body := bytes.NewBufferString(`{"filters": {"only_without_sku": true}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cleanup/count", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    models.CountResult `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(15), resp.Data.Products)
	assert.Equal(t, int64(40), resp.Data.Variations)
	mockRepo.AssertExpectations(t)
}

func TestCountProducts_InvalidBody(t *testing.T) {
	mockRepo := new(MockCleanupRepository)
	router := setupRouter(mockRepo, "tenant-123")

	body := bytes.NewBufferString(`{not json`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cleanup/count", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestCountProducts_MissingTenant(t *testing.T) {
	mockRepo := new(MockCleanupRepository)
	router := setupRouter(mockRepo, "")

	body := bytes.NewBufferString(`{"filters": {}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cleanup/count", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "TENANT_REQUIRED", resp.Error.Code)
}

func TestDeleteBatch_Success(t *testing.T) {
	tenantID := "tenant-123"
	mockRepo := new(MockCleanupRepository)
	router := setupRouter(mockRepo, tenantID)

	product := models.Product{ID: uuid.New(), TenantID: tenantID, Name: "Old product", Status: models.ProductStatusDraft}

	mockRepo.On("SelectBatch", mock.Anything, tenantID, mock.Anything, 30).Return([]models.Product{product}, nil)
	mockRepo.On("CollectImageIDs", mock.Anything, mock.Anything).Return([]uuid.UUID{}, nil)
	mockRepo.On("ListVariantIDs", mock.Anything, product.ID).Return([]uuid.UUID{}, nil)
	mockRepo.On("DeleteProduct", mock.Anything, tenantID, product.ID).Return(nil)
	mockRepo.On("DeleteProductMeta", mock.Anything, product.ID).Return(nil)
	mockRepo.On("DeleteTermRelationships", mock.Anything, product.ID).Return(nil)
	mockRepo.On("CountMatching", mock.Anything, tenantID, mock.Anything).Return(int64(4), nil)

	body := bytes.NewBufferString(`{"filters": {"product_status": ["draft"]}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cleanup/batch", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                     `json:"success"`
		Data    models.BatchDeleteResult `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.Deleted)
	assert.Equal(t, int64(4), resp.Data.Remaining)
	mockRepo.AssertExpectations(t)
}

func TestDeleteBatch_OptionsFromBody(t *testing.T) {
	tenantID := "tenant-123"
	mockRepo := new(MockCleanupRepository)
	router := setupRouter(mockRepo, tenantID)

	product := models.Product{ID: uuid.New(), TenantID: tenantID, Name: "Old product", Status: models.ProductStatusPublish}

	mockRepo.On("SelectBatch", mock.Anything, tenantID, mock.Anything, 30).Return([]models.Product{product}, nil)
	// delete_variations disabled in the body; images still collected
	mockRepo.On("CollectImageIDs", mock.Anything, mock.Anything).Return([]uuid.UUID{}, nil)
	mockRepo.On("DeleteProduct", mock.Anything, tenantID, product.ID).Return(nil)
	mockRepo.On("DeleteProductMeta", mock.Anything, product.ID).Return(nil)
	mockRepo.On("DeleteTermRelationships", mock.Anything, product.ID).Return(nil)
	mockRepo.On("CountMatching", mock.Anything, tenantID, mock.Anything).Return(int64(0), nil)

	body := bytes.NewBufferString(`{"filters": {}, "options": {"delete_variations": false}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cleanup/batch", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertNotCalled(t, "ListVariantIDs", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "DeleteVariant", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestDeleteBatch_ServiceError(t *testing.T) {
	tenantID := "tenant-123"
	mockRepo := new(MockCleanupRepository)
	router := setupRouter(mockRepo, tenantID)

	mockRepo.On("SelectBatch", mock.Anything, tenantID, mock.Anything, 30).Return(nil, errors.New("db down"))

	body := bytes.NewBufferString(`{"filters": {}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cleanup/batch", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	mockRepo.AssertExpectations(t)
}

func TestGetProductTypes_Success(t *testing.T) {
	tenantID := "tenant-123"
	mockRepo := new(MockCleanupRepository)
	router := setupRouter(mockRepo, tenantID)

	types := []models.ProductTypeInfo{
		{Type: "simple", Label: "Simple product", Count: 8},
		{Type: "variable", Label: "Variable product", Count: 2},
	}
	mockRepo.On("ListProductTypes", mock.Anything, tenantID).Return(types, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cleanup/product-types", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                     `json:"success"`
		Data    []models.ProductTypeInfo `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, "Simple product", resp.Data[0].Label)
	mockRepo.AssertExpectations(t)
}

func TestGetCategoriesAndTags_Success(t *testing.T) {
	tenantID := "tenant-123"
	mockRepo := new(MockCleanupRepository)
	router := setupRouter(mockRepo, tenantID)

	cats := []models.TermInfo{{ID: uuid.New().String(), Name: "Shoes", Slug: "shoes", Count: 5}}
	tags := []models.TermInfo{{ID: uuid.New().String(), Name: "Clearance", Slug: "clearance", Count: 3}}
	mockRepo.On("ListTerms", mock.Anything, tenantID, models.TaxonomyCategory).Return(cats, nil)
	mockRepo.On("ListTerms", mock.Anything, tenantID, models.TaxonomyTag).Return(tags, nil)

	for _, path := range []string{"/api/v1/cleanup/categories", "/api/v1/cleanup/tags"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	mockRepo.AssertExpectations(t)
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", HealthCheck)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}
