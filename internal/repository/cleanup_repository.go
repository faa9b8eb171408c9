package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"catalog-cleanup-service/internal/models"
)

// Cache TTL constants
const (
	// Taxonomy and type listings change rarely relative to cleanup runs
	TaxonomyCacheTTL = 30 * time.Minute
)

// CleanupRepositoryInterface defines the row-level operations the batch
// deletion engine runs against the catalog store.
type CleanupRepositoryInterface interface {
	CountMatching(ctx context.Context, tenantID string, filter *models.DeleteFilter) (int64, error)
	CountVariants(ctx context.Context, tenantID string) (int64, error)
	SelectBatch(ctx context.Context, tenantID string, filter *models.DeleteFilter, limit int) ([]models.Product, error)
	CollectImageIDs(ctx context.Context, product *models.Product) ([]uuid.UUID, error)
	ListVariantIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
	DeleteProduct(ctx context.Context, tenantID string, productID uuid.UUID) error
	DeleteProductRow(ctx context.Context, tenantID string, productID uuid.UUID) error
	DeleteVariant(ctx context.Context, variantID uuid.UUID) error
	DeleteAttachment(ctx context.Context, tenantID string, attachmentID uuid.UUID) error
	DeleteProductMeta(ctx context.Context, productID uuid.UUID) error
	DeleteTermRelationships(ctx context.Context, productID uuid.UUID) error
	ListProductTypes(ctx context.Context, tenantID string) ([]models.ProductTypeInfo, error)
	ListTerms(ctx context.Context, tenantID string, taxonomy models.Taxonomy) ([]models.TermInfo, error)
}

type CleanupRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

var _ CleanupRepositoryInterface = (*CleanupRepository)(nil)

func NewCleanupRepository(db *gorm.DB, redis *redis.Client) *CleanupRepository {
	repo := &CleanupRepository{
		db:    db,
		redis: redis,
	}

	// Initialize CacheLayer with the existing Redis client
	if redis != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 1000,
			L1TTL:      30 * time.Second,
			DefaultTTL: TaxonomyCacheTTL,
			KeyPrefix:  "tesseract:cleanup:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redis, cacheConfig)
	}

	return repo
}

// invalidateTaxonomyCaches drops the cached type/term listings for a tenant.
// Called after every successful product delete, since counts shift.
func (r *CleanupRepository) invalidateTaxonomyCaches(ctx context.Context, tenantID string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, fmt.Sprintf("types:%s", tenantID))
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("terms:%s:*", tenantID))
}

// skuPatternToLike converts a user glob (where * matches any run of
// characters) into a SQL LIKE pattern. LIKE metacharacters in the input
// match themselves. The second return is false when the pattern has no
// wildcard and should be compared with equality instead.
func skuPatternToLike(pattern string) (string, bool) {
	if !strings.Contains(pattern, "*") {
		return pattern, false
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(pattern)
	return strings.ReplaceAll(escaped, "*", "%"), true
}

// simpleTypeCondition matches the implicit simple product type: legacy rows
// carry NULL or '' in place of the literal value.
const simpleTypeCondition = "(products.type IS NULL OR products.type = '' OR products.type = ?)"

// applyDeleteFilters compiles a DeleteFilter into a GORM predicate. The same
// compiled predicate serves counting, page selection and the post-batch
// recount, so all three see an identical match set. Unrecognized or
// out-of-range values constrain nothing; they never error.
func (r *CleanupRepository) applyDeleteFilters(query *gorm.DB, tenantID string, f *models.DeleteFilter) *gorm.DB {
	query = query.Where("products.tenant_id = ?", tenantID)
	if f == nil {
		return query
	}

	if f.OnlyWithoutSKU {
		query = query.Where("(products.sku IS NULL OR products.sku = '')")
	}

	if len(f.ProductTypes) > 0 {
		orConditions := make([]string, 0, len(f.ProductTypes))
		args := make([]interface{}, 0, len(f.ProductTypes))
		for _, t := range f.ProductTypes {
			if t == models.ProductTypeSimple {
				orConditions = append(orConditions, simpleTypeCondition)
			} else {
				orConditions = append(orConditions, "products.type = ?")
			}
			args = append(args, t)
		}
		query = query.Where(strings.Join(orConditions, " OR "), args...)
	}

	if len(f.ProductStatus) > 0 {
		query = query.Where("products.status IN ?", f.ProductStatus)
	}

	if len(f.ProductVisibility) > 0 {
		// "featured" is a checkbox in the UI but a separate column here
		orConditions := make([]string, 0, len(f.ProductVisibility))
		args := make([]interface{}, 0, len(f.ProductVisibility))
		for _, v := range f.ProductVisibility {
			if v == "featured" {
				orConditions = append(orConditions, "products.featured = TRUE")
			} else {
				orConditions = append(orConditions, "products.visibility = ?")
				args = append(args, v)
			}
		}
		query = query.Where(strings.Join(orConditions, " OR "), args...)
	}

	if len(f.StockStatus) > 0 {
		query = query.Where("products.stock_status IN ?", f.StockStatus)
	}

	if len(f.Categories) > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM term_relationships tr JOIN terms t ON t.id = tr.term_id WHERE tr.product_id = products.id AND t.taxonomy = ? AND t.id IN ?)",
			models.TaxonomyCategory, f.Categories,
		)
	}

	if len(f.Tags) > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM term_relationships tr JOIN terms t ON t.id = tr.term_id WHERE tr.product_id = products.id AND t.taxonomy = ? AND t.id IN ?)",
			models.TaxonomyTag, f.Tags,
		)
	}

	// Range bounds pass through literally; min > max simply matches nothing
	if f.MinPrice != nil {
		query = query.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("products.price <= ?", *f.MaxPrice)
	}

	if f.CreatedFrom != nil {
		query = query.Where("products.created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		query = query.Where("products.created_at <= ?", *f.CreatedTo)
	}
	if f.ModifiedFrom != nil {
		query = query.Where("products.updated_at >= ?", *f.ModifiedFrom)
	}
	if f.ModifiedTo != nil {
		query = query.Where("products.updated_at <= ?", *f.ModifiedTo)
	}

	if f.SKUPattern != "" {
		if like, ok := skuPatternToLike(f.SKUPattern); ok {
			query = query.Where("products.sku LIKE ?", like)
		} else {
			query = query.Where("products.sku = ?", f.SKUPattern)
		}
	}

	if f.MinStock != nil {
		query = query.Where("products.stock_quantity >= ?", *f.MinStock)
	}
	if f.MaxStock != nil {
		query = query.Where("products.stock_quantity <= ?", *f.MaxStock)
	}

	if f.MinWeight != nil {
		query = query.Where("products.weight >= ?", *f.MinWeight)
	}
	if f.MaxWeight != nil {
		query = query.Where("products.weight <= ?", *f.MaxWeight)
	}

	if f.MinSales != nil {
		query = query.Where("products.total_sales >= ?", *f.MinSales)
	}
	if f.MaxSales != nil {
		query = query.Where("products.total_sales <= ?", *f.MaxSales)
	}
	if f.ZeroSales {
		query = query.Where("products.total_sales = 0")
	}

	if f.MinRating != nil && *f.MinRating >= 1 && *f.MinRating <= 5 {
		query = query.Where("products.average_rating >= ?", *f.MinRating)
	}

	if f.NoReviews {
		query = query.Where("products.review_count = 0")
	}
	if f.LowReviews {
		query = query.Where("products.review_count < 5")
	}

	if f.AuthorID != nil && *f.AuthorID != "" {
		query = query.Where("products.author_id = ?", *f.AuthorID)
	}

	if f.UserRole != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM authors a WHERE a.id = products.author_id AND a.role = ?)",
			f.UserRole,
		)
	}

	if sf := f.SaleFilters; sf != nil {
		if sf.OnSale {
			query = query.Where("products.sale_price IS NOT NULL AND products.sale_price > 0")
		}
		if sf.NotOnSale {
			query = query.Where("(products.sale_price IS NULL OR products.sale_price = 0)")
		}
		if sf.ZeroPrice {
			query = query.Where("products.price = 0")
		}
		if sf.NoPrice {
			query = query.Where("products.price IS NULL")
		}
	}

	if df := f.DuplicateFilters; df != nil {
		if df.Title {
			query = query.Where(
				"products.name IN (SELECT p2.name FROM products p2 WHERE p2.tenant_id = ? GROUP BY p2.name HAVING COUNT(*) > 1)",
				tenantID,
			)
		}
		if df.SKU {
			query = query.Where(
				"products.sku IS NOT NULL AND products.sku <> '' AND products.sku IN (SELECT p2.sku FROM products p2 WHERE p2.tenant_id = ? AND p2.sku IS NOT NULL AND p2.sku <> '' GROUP BY p2.sku HAVING COUNT(*) > 1)",
				tenantID,
			)
		}
		if df.Content {
			query = query.Where(
				"products.description IS NOT NULL AND products.description <> '' AND products.description IN (SELECT p2.description FROM products p2 WHERE p2.tenant_id = ? AND p2.description IS NOT NULL AND p2.description <> '' GROUP BY p2.description HAVING COUNT(*) > 1)",
				tenantID,
			)
		}
	}

	if af := f.AdvancedFilters; af != nil {
		if af.Orphaned {
			query = query.Where(
				"NOT EXISTS (SELECT 1 FROM term_relationships tr JOIN terms t ON t.id = tr.term_id WHERE tr.product_id = products.id AND t.taxonomy = ?)",
				models.TaxonomyCategory,
			)
		}
		if af.OrphanedImages {
			query = query.Where(
				"products.featured_image_id IS NULL AND (products.gallery_image_ids IS NULL OR jsonb_array_length(products.gallery_image_ids) = 0)",
			)
		}
	}

	return query
}

// CountMatching returns how many products currently match the filter
func (r *CleanupRepository) CountMatching(ctx context.Context, tenantID string, filter *models.DeleteFilter) (int64, error) {
	var count int64
	query := r.applyDeleteFilters(r.db.WithContext(ctx).Model(&models.Product{}), tenantID, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count matching products: %w", err)
	}
	return count, nil
}

// CountVariants returns the tenant's total variant count. Deliberately
// unfiltered; see models.CountResult.
func (r *CleanupRepository) CountVariants(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("products.tenant_id = ?", tenantID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count variants: %w", err)
	}
	return count, nil
}

// SelectBatch returns the next page of matching products in stable ID order
func (r *CleanupRepository) SelectBatch(ctx context.Context, tenantID string, filter *models.DeleteFilter, limit int) ([]models.Product, error) {
	var products []models.Product
	query := r.applyDeleteFilters(r.db.WithContext(ctx).Model(&models.Product{}), tenantID, filter)
	if err := query.Order("products.id ASC").Limit(limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to select batch: %w", err)
	}
	return products, nil
}

// CollectImageIDs gathers the attachment IDs referenced by a product's
// featured slot, its gallery, and each variant's featured slot, deduplicated.
// Must run before the product row is deleted.
func (r *CleanupRepository) CollectImageIDs(ctx context.Context, product *models.Product) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID

	add := func(id uuid.UUID) {
		if id != uuid.Nil && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if product.FeaturedImageID != nil {
		add(*product.FeaturedImageID)
	}
	if product.GalleryImageIDs != nil {
		for _, raw := range *product.GalleryImageIDs {
			s, ok := raw.(string)
			if !ok {
				continue
			}
			id, err := uuid.Parse(s)
			if err != nil {
				continue
			}
			add(id)
		}
	}

	var variantImageIDs []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ? AND featured_image_id IS NOT NULL", product.ID).
		Pluck("featured_image_id", &variantImageIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to collect variant image IDs: %w", err)
	}
	for _, id := range variantImageIDs {
		add(id)
	}

	return ids, nil
}

// ListVariantIDs returns the IDs of a product's variants
func (r *CleanupRepository) ListVariantIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ?", productID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list variant IDs: %w", err)
	}
	return ids, nil
}

// DeleteProduct removes a product row through the catalog-aware path:
// tenant-scoped delete plus taxonomy cache invalidation. Returns
// gorm.ErrRecordNotFound when no row matched.
func (r *CleanupRepository) DeleteProduct(ctx context.Context, tenantID string, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Delete(&models.Product{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidateTaxonomyCaches(ctx, tenantID)
	return nil
}

// DeleteProductRow is the fallback path: a plain row delete with none of
// the catalog-aware side effects, for rows the primary path could not
// remove. Still tenant scoped so a stray ID can never cross tenants.
func (r *CleanupRepository) DeleteProductRow(ctx context.Context, tenantID string, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec("DELETE FROM products WHERE tenant_id = ? AND id = ?", tenantID, productID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product row: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteVariant removes a single variant row
func (r *CleanupRepository) DeleteVariant(ctx context.Context, variantID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", variantID).Delete(&models.ProductVariant{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete variant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAttachment removes a media attachment row by ID, tenant scoped
func (r *CleanupRepository) DeleteAttachment(ctx context.Context, tenantID string, attachmentID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, attachmentID).
		Delete(&models.MediaAttachment{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete attachment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteProductMeta removes all metadata rows of a product
func (r *CleanupRepository) DeleteProductMeta(ctx context.Context, productID uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ProductMeta{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete product meta: %w", err)
	}
	return nil
}

// DeleteTermRelationships removes all taxonomy links of a product. Terms
// themselves stay; only the links go.
func (r *CleanupRepository) DeleteTermRelationships(ctx context.Context, productID uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.TermRelationship{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete term relationships: %w", err)
	}
	return nil
}

// ListProductTypes returns the product types present in the tenant's
// catalog with display labels and counts. Legacy NULL/'' types fold into
// "simple". Grouping guarantees count > 0 per row.
func (r *CleanupRepository) ListProductTypes(ctx context.Context, tenantID string) ([]models.ProductTypeInfo, error) {
	fetch := func() ([]models.ProductTypeInfo, error) {
		var rows []struct {
			Type  string
			Count int64
		}
		err := r.db.WithContext(ctx).
			Raw(`SELECT COALESCE(NULLIF(type, ''), ?) AS type, COUNT(*) AS count
			     FROM products WHERE tenant_id = ?
			     GROUP BY COALESCE(NULLIF(type, ''), ?)
			     ORDER BY type`,
				models.ProductTypeSimple, tenantID, models.ProductTypeSimple).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list product types: %w", err)
		}

		types := make([]models.ProductTypeInfo, 0, len(rows))
		for _, row := range rows {
			types = append(types, models.ProductTypeInfo{
				Type:  row.Type,
				Label: models.ProductTypeLabel(row.Type),
				Count: row.Count,
			})
		}
		return types, nil
	}

	if r.cache != nil {
		var types []models.ProductTypeInfo
		cacheKey := fmt.Sprintf("types:%s", tenantID)
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &types, TaxonomyCacheTTL, func() (any, error) {
			return fetch()
		})
		if err == nil {
			return types, nil
		}
		// Cache failure falls through to a direct query
	}

	return fetch()
}

// ListTerms returns the tenant's terms of one taxonomy with the count of
// published products per term. Terms with no published product are
// excluded by the HAVING clause.
func (r *CleanupRepository) ListTerms(ctx context.Context, tenantID string, taxonomy models.Taxonomy) ([]models.TermInfo, error) {
	fetch := func() ([]models.TermInfo, error) {
		var terms []models.TermInfo
		err := r.db.WithContext(ctx).
			Raw(`SELECT t.id, t.name, t.slug, COUNT(p.id) AS count
			     FROM terms t
			     JOIN term_relationships tr ON tr.term_id = t.id
			     JOIN products p ON p.id = tr.product_id AND p.tenant_id = t.tenant_id AND p.status = ?
			     WHERE t.tenant_id = ? AND t.taxonomy = ?
			     GROUP BY t.id, t.name, t.slug
			     HAVING COUNT(p.id) > 0
			     ORDER BY t.name`,
				models.ProductStatusPublish, tenantID, taxonomy).
			Scan(&terms).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list %s terms: %w", taxonomy, err)
		}
		return terms, nil
	}

	if r.cache != nil {
		var terms []models.TermInfo
		cacheKey := fmt.Sprintf("terms:%s:%s", tenantID, taxonomy)
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &terms, TaxonomyCacheTTL, func() (any, error) {
			return fetch()
		})
		if err == nil {
			return terms, nil
		}
	}

	return fetch()
}
