package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"

	"catalog-cleanup-service/internal/events"
	"catalog-cleanup-service/internal/models"
	"catalog-cleanup-service/internal/services"
)

type CleanupHandler struct {
	service *services.CleanupService
}

func NewCleanupHandler(service *services.CleanupService) *CleanupHandler {
	return &CleanupHandler{service: service}
}

// actorFromContext maps the authenticated request identity onto the event
// actor fields
func actorFromContext(c *gin.Context) events.ActorInfo {
	actor := gosharedmw.GetActorInfo(c)
	return events.ActorInfo{
		ActorID:    actor.ActorID,
		ActorName:  actor.ActorName,
		ActorEmail: actor.ActorEmail,
		ClientIP:   actor.ClientIP,
		UserAgent:  actor.UserAgent,
	}
}

// CountProducts returns how many products and variations the filter matches
// @Summary Count products matching a cleanup filter
// @Tags cleanup
// @Accept json
// @Produce json
// @Param request body models.CountRequest true "Filter payload"
// @Success 200 {object} models.SuccessResponse
// @Router /cleanup/count [post]
func (h *CleanupHandler) CountProducts(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var req models.CountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid request body",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	result, err := h.service.Count(c.Request.Context(), tenantID.(string), &req.Filters)
	if err != nil {
		h.respondServiceError(c, err, "Failed to count products")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    result,
	})
}

// DeleteBatch deletes one batch of matching products with cascades
// @Summary Delete one batch of products matching a cleanup filter
// @Tags cleanup
// @Accept json
// @Produce json
// @Param request body models.BatchDeleteRequest true "Filter and cascade options"
// @Success 200 {object} models.SuccessResponse
// @Router /cleanup/batch [post]
func (h *CleanupHandler) DeleteBatch(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var req models.BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid request body",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	options := req.Options.Resolve()
	actor := actorFromContext(c)

	result, err := h.service.DeleteBatch(c.Request.Context(), tenantID.(string), &req.Filters, options, actor)
	if err != nil {
		h.respondServiceError(c, err, "Failed to delete batch")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    result,
	})
}

// GetProductTypes lists product types present in the catalog
// @Summary List product types with counts
// @Tags cleanup
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /cleanup/product-types [get]
func (h *CleanupHandler) GetProductTypes(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	types, err := h.service.ProductTypes(c.Request.Context(), tenantID.(string))
	if err != nil {
		h.respondServiceError(c, err, "Failed to list product types")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    types,
	})
}

// GetCategories lists category terms with published-product counts
// @Summary List categories with counts
// @Tags cleanup
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /cleanup/categories [get]
func (h *CleanupHandler) GetCategories(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	terms, err := h.service.Categories(c.Request.Context(), tenantID.(string))
	if err != nil {
		h.respondServiceError(c, err, "Failed to list categories")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    terms,
	})
}

// GetTags lists tag terms with published-product counts
// @Summary List tags with counts
// @Tags cleanup
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /cleanup/tags [get]
func (h *CleanupHandler) GetTags(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	terms, err := h.service.Tags(c.Request.Context(), tenantID.(string))
	if err != nil {
		h.respondServiceError(c, err, "Failed to list tags")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    terms,
	})
}

func (h *CleanupHandler) respondServiceError(c *gin.Context, err error, message string) {
	if errors.Is(err, services.ErrTenantRequired) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "TENANT_REQUIRED",
				Message: "Vendor/Tenant ID is required",
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "INTERNAL_ERROR",
			Message: message,
			Details: &models.JSON{"error": err.Error()},
		},
	})
}

// HealthCheck reports service liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "catalog-cleanup-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
