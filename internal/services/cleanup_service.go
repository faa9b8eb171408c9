package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-cleanup-service/internal/events"
	"catalog-cleanup-service/internal/models"
	"catalog-cleanup-service/internal/repository"
)

var (
	// ErrTenantRequired is returned when an operation is called without a
	// tenant scope
	ErrTenantRequired = errors.New("tenant ID is required")
)

// EventPublisher is the slice of the events publisher the service uses
type EventPublisher interface {
	PublishProductDeleted(ctx context.Context, product *models.Product, tenantID string, actor events.ActorInfo) error
	PublishBatchCompleted(ctx context.Context, tenantID string, actor events.ActorInfo, filter *models.DeleteFilter, result *models.BatchDeleteResult) error
}

// CleanupService runs filtered, batched, cascading catalog deletion.
// Stateless between calls: each DeleteBatch re-evaluates the filter from
// scratch, so concurrent catalog writes between batches are picked up and
// an interrupted run simply resumes on the next call.
type CleanupService struct {
	repo      repository.CleanupRepositoryInterface
	publisher EventPublisher
	audit     *AuditLog
	logger    *logrus.Entry
	batchSize int
}

// NewCleanupService creates a cleanup service. publisher and audit may be
// nil; the engine then runs without events or an audit trail.
func NewCleanupService(repo repository.CleanupRepositoryInterface, publisher EventPublisher, audit *AuditLog, logger *logrus.Logger, batchSize int) *CleanupService {
	return &CleanupService{
		repo:      repo,
		publisher: publisher,
		audit:     audit,
		logger:    logger.WithField("component", "cleanup-service"),
		batchSize: batchSize,
	}
}

// Count reports how much work matches the filter. The variations figure is
// the tenant's global variant total, not variants of matching parents; see
// models.CountResult.
func (s *CleanupService) Count(ctx context.Context, tenantID string, filter *models.DeleteFilter) (*models.CountResult, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}

	products, err := s.repo.CountMatching(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	variations, err := s.repo.CountVariants(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count variations: %w", err)
	}

	s.audit.Record(tenantID, "count requested", logrus.Fields{
		"products":   products,
		"variations": variations,
		"filters":    filter.Describe(),
	})

	return &models.CountResult{Products: products, Variations: variations}, nil
}

// DeleteBatch processes one page of matching products: per product it
// collects dependents, deletes the product through the strategy chain, then
// cascades per the options. A failed or panicking product is skipped with
// all its dependents untouched; the loop continues. Returns the counter
// summary plus a fresh remaining count under the same filter.
func (s *CleanupService) DeleteBatch(ctx context.Context, tenantID string, filter *models.DeleteFilter, options models.DeleteOptions, actor events.ActorInfo) (*models.BatchDeleteResult, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}

	products, err := s.repo.SelectBatch(ctx, tenantID, filter, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to select batch: %w", err)
	}

	result := &models.BatchDeleteResult{}

	if len(products) == 0 {
		// Nothing matches; a repeat call is a no-op with all-zero counters
		return result, nil
	}

	for i := range products {
		s.deleteOne(ctx, tenantID, &products[i], options, actor, result)
	}

	remaining, err := s.repo.CountMatching(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to recount remaining products: %w", err)
	}
	result.Remaining = remaining

	s.audit.Record(tenantID, "batch processed", logrus.Fields{
		"deleted":            result.Deleted,
		"images_deleted":     result.ImagesDeleted,
		"variations_deleted": result.VariationsDeleted,
		"remaining":          result.Remaining,
		"filters":            filter.Describe(),
	})

	if s.publisher != nil {
		if err := s.publisher.PublishBatchCompleted(ctx, tenantID, actor, filter, result); err != nil {
			s.logger.WithError(err).Warn("Failed to publish batch completion event")
		}
	}

	return result, nil
}

// deleteOne handles a single product inside the batch. The recover barrier
// keeps one pathological row from aborting the rest of the page.
func (s *CleanupService) deleteOne(ctx context.Context, tenantID string, product *models.Product, options models.DeleteOptions, actor events.ActorInfo, result *models.BatchDeleteResult) {
	log := s.logger.WithFields(logrus.Fields{
		"tenantId":  tenantID,
		"productId": product.ID,
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Panic while deleting product; skipping")
		}
	}()

	// Dependent IDs must be captured before the product row goes away
	var imageIDs []uuid.UUID
	if options.DeleteImages {
		var err error
		imageIDs, err = s.repo.CollectImageIDs(ctx, product)
		if err != nil {
			log.WithError(err).Warn("Failed to collect image IDs; images will be skipped")
			imageIDs = nil
		}
	}

	var variantIDs []uuid.UUID
	if options.DeleteVariations {
		var err error
		variantIDs, err = s.repo.ListVariantIDs(ctx, product.ID)
		if err != nil {
			log.WithError(err).Warn("Failed to list variant IDs; variants will be skipped")
			variantIDs = nil
		}
	}

	if err := s.deleteProductRecord(ctx, tenantID, product, actor); err != nil {
		log.WithError(err).Warn("All delete strategies failed; skipping product and dependents")
		s.audit.Record(tenantID, "product delete failed", logrus.Fields{
			"productId": product.ID.String(),
			"name":      product.Name,
		})
		return
	}
	result.Deleted++

	if options.DeleteVariations {
		for _, id := range variantIDs {
			if err := s.repo.DeleteVariant(ctx, id); err != nil {
				log.WithError(err).WithField("variantId", id).Warn("Failed to delete variant")
				continue
			}
			result.VariationsDeleted++
		}
	}

	if options.DeleteImages {
		for _, id := range imageIDs {
			// Counted per attempt; a shared attachment already removed by
			// an earlier product in the page still counts
			result.ImagesDeleted++
			if err := s.repo.DeleteAttachment(ctx, tenantID, id); err != nil {
				log.WithError(err).WithField("attachmentId", id).Debug("Failed to delete attachment")
			}
		}
	}

	if options.DeleteMeta {
		if err := s.repo.DeleteProductMeta(ctx, product.ID); err != nil {
			log.WithError(err).Warn("Failed to delete product meta")
		}
	}

	if options.DeleteTerms {
		if err := s.repo.DeleteTermRelationships(ctx, product.ID); err != nil {
			log.WithError(err).Warn("Failed to delete term relationships")
		}
	}

	s.audit.Record(tenantID, "product deleted", logrus.Fields{
		"productId": product.ID.String(),
		"name":      product.Name,
	})
}

// deleteProductRecord runs the delete strategy chain: the catalog-aware
// path first (tenant scoped, invalidates caches), then the plain row
// delete. Each attempt is logged; the product.deleted event fires once on
// whichever path succeeds.
func (s *CleanupService) deleteProductRecord(ctx context.Context, tenantID string, product *models.Product, actor events.ActorInfo) error {
	log := s.logger.WithFields(logrus.Fields{
		"tenantId":  tenantID,
		"productId": product.ID,
	})

	err := s.repo.DeleteProduct(ctx, tenantID, product.ID)
	if err == nil {
		s.publishDeleted(ctx, tenantID, product, actor)
		return nil
	}
	log.WithError(err).Debug("Catalog-aware delete failed; trying row delete")

	if err := s.repo.DeleteProductRow(ctx, tenantID, product.ID); err != nil {
		log.WithError(err).Debug("Row delete failed")
		return fmt.Errorf("failed to delete product %s: %w", product.ID, err)
	}
	s.publishDeleted(ctx, tenantID, product, actor)
	return nil
}

func (s *CleanupService) publishDeleted(ctx context.Context, tenantID string, product *models.Product, actor events.ActorInfo) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductDeleted(ctx, product, tenantID, actor); err != nil {
		s.logger.WithError(err).WithField("productId", product.ID).Warn("Failed to publish product.deleted event")
	}
}

// ProductTypes lists the types present in the tenant's catalog with counts
func (s *CleanupService) ProductTypes(ctx context.Context, tenantID string) ([]models.ProductTypeInfo, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	types, err := s.repo.ListProductTypes(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product types: %w", err)
	}
	return types, nil
}

// Categories lists category terms with published-product counts
func (s *CleanupService) Categories(ctx context.Context, tenantID string) ([]models.TermInfo, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	terms, err := s.repo.ListTerms(ctx, tenantID, models.TaxonomyCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return terms, nil
}

// Tags lists tag terms with published-product counts
func (s *CleanupService) Tags(ctx context.Context, tenantID string) ([]models.TermInfo, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	terms, err := s.repo.ListTerms(ctx, tenantID, models.TaxonomyTag)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return terms, nil
}
