package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the publication status of a product
type ProductStatus string

const (
	ProductStatusPublish ProductStatus = "publish"
	ProductStatusDraft   ProductStatus = "draft"
	ProductStatusPrivate ProductStatus = "private"
	ProductStatusPending ProductStatus = "pending"
)

// ProductVisibility represents catalog/search visibility of a product
type ProductVisibility string

const (
	VisibilityVisible ProductVisibility = "visible"
	VisibilityCatalog ProductVisibility = "catalog"
	VisibilitySearch  ProductVisibility = "search"
	VisibilityHidden  ProductVisibility = "hidden"
)

// StockStatus represents stock availability of a product or variant
type StockStatus string

const (
	StockStatusInStock     StockStatus = "instock"
	StockStatusOutOfStock  StockStatus = "outofstock"
	StockStatusOnBackorder StockStatus = "onbackorder"
)

// ProductTypeSimple is the implicit default product type. Legacy rows carry
// NULL or an empty string instead of the literal value; all three spellings
// mean "simple".
const ProductTypeSimple = "simple"

// ProductTypeLabels maps registered product type keys to display labels
var ProductTypeLabels = map[string]string{
	"simple":   "Simple product",
	"variable": "Variable product",
	"grouped":  "Grouped product",
	"external": "External/Affiliate product",
}

// ProductTypeLabel returns the display label for a type key, falling back
// to the key itself for unregistered custom types.
func ProductTypeLabel(key string) string {
	if label, ok := ProductTypeLabels[key]; ok {
		return label
	}
	return key
}

// Taxonomy identifies the kind of a term
type Taxonomy string

const (
	TaxonomyCategory Taxonomy = "category"
	TaxonomyTag      Taxonomy = "tag"
)

// JSON type for PostgreSQL JSONB (object/map)
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// JSONArray type for PostgreSQL JSONB (array)
type JSONArray []interface{}

func (j JSONArray) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONArray, 0)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Product represents a catalog product subject to cleanup. The cleanup
// service never creates these rows; the schema mirrors what the catalog
// writes so the filter compiler can query it directly.
type Product struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID string    `json:"tenantId" gorm:"not null;index:idx_products_tenant;index:idx_products_tenant_type;index:idx_products_tenant_status"`
	Name     string    `json:"name" gorm:"not null"`
	Slug     *string   `json:"slug,omitempty" gorm:"index"`
	// Type is NULL or "" on legacy rows and means simple
	Type            *string           `json:"type,omitempty" gorm:"index:idx_products_tenant_type"`
	Status          ProductStatus     `json:"status" gorm:"not null;default:'publish';index:idx_products_tenant_status"`
	Visibility      ProductVisibility `json:"visibility" gorm:"not null;default:'visible'"`
	Featured        bool              `json:"featured" gorm:"not null;default:false"`
	Description     *string           `json:"description,omitempty"`
	SKU             *string           `json:"sku,omitempty" gorm:"index"`
	Price           *decimal.Decimal  `json:"price,omitempty" gorm:"type:numeric(19,4)"`
	RegularPrice    *decimal.Decimal  `json:"regularPrice,omitempty" gorm:"type:numeric(19,4)"`
	SalePrice       *decimal.Decimal  `json:"salePrice,omitempty" gorm:"type:numeric(19,4)"`
	StockQuantity   *int              `json:"stockQuantity,omitempty"`
	StockStatus     *StockStatus      `json:"stockStatus,omitempty"`
	Weight          *decimal.Decimal  `json:"weight,omitempty" gorm:"type:numeric(12,4)"`
	TotalSales      int               `json:"totalSales" gorm:"not null;default:0"`
	AverageRating   *decimal.Decimal  `json:"averageRating,omitempty" gorm:"type:numeric(3,2)"`
	ReviewCount     int               `json:"reviewCount" gorm:"not null;default:0"`
	AuthorID        *uuid.UUID        `json:"authorId,omitempty" gorm:"type:uuid;index"`
	FeaturedImageID *uuid.UUID        `json:"featuredImageId,omitempty" gorm:"type:uuid"`
	// GalleryImageIDs holds attachment UUIDs as JSONB strings
	GalleryImageIDs *JSONArray `json:"galleryImageIds,omitempty" gorm:"type:jsonb"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ProductVariant represents one purchasable configuration of a product.
// A variant never outlives its parent product.
type ProductVariant struct {
	ID              uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID       uuid.UUID        `json:"productId" gorm:"type:uuid;not null;index"`
	SKU             *string          `json:"sku,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty" gorm:"type:numeric(19,4)"`
	StockQuantity   *int             `json:"stockQuantity,omitempty"`
	StockStatus     *StockStatus     `json:"stockStatus,omitempty"`
	Weight          *decimal.Decimal `json:"weight,omitempty" gorm:"type:numeric(12,4)"`
	FeaturedImageID *uuid.UUID       `json:"featuredImageId,omitempty" gorm:"type:uuid"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// MediaAttachment represents an uploaded media file referenced from product
// and variant image slots. Cleanup deletes attachments by ID, best effort,
// without reference counting against reuse by unrelated products.
type MediaAttachment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string    `json:"tenantId" gorm:"not null;index"`
	FileName  string    `json:"fileName" gorm:"not null"`
	MimeType  *string   `json:"mimeType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductMeta is one key/value metadata row attached to a product
type ProductMeta struct {
	ID        int64     `json:"id" gorm:"primary_key;autoIncrement"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`
	MetaKey   string    `json:"metaKey" gorm:"not null;index"`
	MetaValue *string   `json:"metaValue,omitempty"`
}

// Term represents a taxonomy term (category or tag)
type Term struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID string    `json:"tenantId" gorm:"not null;index:idx_terms_tenant_taxonomy"`
	Taxonomy Taxonomy  `json:"taxonomy" gorm:"not null;index:idx_terms_tenant_taxonomy"`
	Name     string    `json:"name" gorm:"not null"`
	Slug     string    `json:"slug" gorm:"not null"`
}

// TermRelationship links a product to a taxonomy term
type TermRelationship struct {
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;primary_key"`
	TermID    uuid.UUID `json:"termId" gorm:"type:uuid;primary_key;index"`
}

// Author is a read-only lookup row backing the author and role filters.
// Owned by the staff service; never written here.
type Author struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	TenantID    string    `json:"tenantId" gorm:"not null;index"`
	DisplayName string    `json:"displayName" gorm:"not null"`
	Role        string    `json:"role" gorm:"not null;index"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for the ProductVariant model
func (ProductVariant) TableName() string {
	return "product_variants"
}

// TableName returns the table name for the MediaAttachment model
func (MediaAttachment) TableName() string {
	return "media_attachments"
}

// TableName returns the table name for the ProductMeta model
func (ProductMeta) TableName() string {
	return "product_meta"
}

// TableName returns the table name for the Term model
func (Term) TableName() string {
	return "terms"
}

// TableName returns the table name for the TermRelationship model
func (TermRelationship) TableName() string {
	return "term_relationships"
}

// TableName returns the table name for the Author model
func (Author) TableName() string {
	return "authors"
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSON  `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}
