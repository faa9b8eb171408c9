package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SaleFilters narrows the match set by sale state. All switches are
// optional and additive (AND semantics across enabled switches).
type SaleFilters struct {
	OnSale    bool `json:"on_sale"`
	NotOnSale bool `json:"not_on_sale"`
	ZeroPrice bool `json:"zero_price"`
	NoPrice   bool `json:"no_price"`
}

// DuplicateFilters matches products sharing a value with at least one
// other product of the same tenant.
type DuplicateFilters struct {
	Title   bool `json:"title"`
	SKU     bool `json:"sku"`
	Content bool `json:"content"`
}

// AdvancedFilters holds structural-anomaly switches.
type AdvancedFilters struct {
	// Orphaned matches products with no category assignment
	Orphaned bool `json:"orphaned"`
	// OrphanedImages matches products with no featured image and an
	// empty gallery
	OrphanedImages bool `json:"orphaned_images"`
}

// DeleteFilter is the full filter payload accepted by the count and batch
// endpoints. Every field is optional; an absent field constrains nothing.
// Unknown JSON keys are ignored, so older UIs degrade to a broader match
// instead of erroring.
type DeleteFilter struct {
	OnlyWithoutSKU bool `json:"only_without_sku"`

	// Multi-select fields: values within one field OR together,
	// distinct fields AND together.
	ProductTypes      []string `json:"product_types"`
	ProductStatus     []string `json:"product_status"`
	ProductVisibility []string `json:"product_visibility"`
	StockStatus       []string `json:"stock_status"`
	Categories        []string `json:"categories"`
	Tags              []string `json:"tags"`

	MinPrice *decimal.Decimal `json:"min_price"`
	MaxPrice *decimal.Decimal `json:"max_price"`

	CreatedFrom  *time.Time `json:"created_from"`
	CreatedTo    *time.Time `json:"created_to"`
	ModifiedFrom *time.Time `json:"modified_from"`
	ModifiedTo   *time.Time `json:"modified_to"`

	// SKUPattern is a glob where * matches any run of characters.
	// A pattern without * matches exactly.
	SKUPattern string `json:"sku_pattern"`

	MinStock *int `json:"min_stock"`
	MaxStock *int `json:"max_stock"`

	MinWeight *decimal.Decimal `json:"min_weight"`
	MaxWeight *decimal.Decimal `json:"max_weight"`

	MinSales  *int `json:"min_sales"`
	MaxSales  *int `json:"max_sales"`
	ZeroSales bool `json:"zero_sales"`

	// MinRating is a 1..5 floor on average rating; values outside the
	// range are ignored.
	MinRating *int `json:"min_rating"`

	NoReviews  bool `json:"no_reviews"`
	LowReviews bool `json:"low_reviews"`

	AuthorID *string `json:"author_id"`
	UserRole string  `json:"user_role"`

	SaleFilters      *SaleFilters      `json:"sale_filters"`
	DuplicateFilters *DuplicateFilters `json:"duplicate_filters"`
	AdvancedFilters  *AdvancedFilters  `json:"advanced_filters"`
}

// IsEmpty reports whether no filter field constrains the match set.
// An empty filter matches the tenant's entire catalog.
func (f *DeleteFilter) IsEmpty() bool {
	return len(f.Describe()) == 0
}

// Describe returns a compact list of the active filter dimensions, used
// for audit log lines and event payloads. A nil filter is unconstrained
// and describes nothing.
func (f *DeleteFilter) Describe() []string {
	if f == nil {
		return nil
	}
	var active []string
	if f.OnlyWithoutSKU {
		active = append(active, "only_without_sku")
	}
	if len(f.ProductTypes) > 0 {
		active = append(active, fmt.Sprintf("product_types=%s", strings.Join(f.ProductTypes, ",")))
	}
	if len(f.ProductStatus) > 0 {
		active = append(active, fmt.Sprintf("product_status=%s", strings.Join(f.ProductStatus, ",")))
	}
	if len(f.ProductVisibility) > 0 {
		active = append(active, fmt.Sprintf("product_visibility=%s", strings.Join(f.ProductVisibility, ",")))
	}
	if len(f.StockStatus) > 0 {
		active = append(active, fmt.Sprintf("stock_status=%s", strings.Join(f.StockStatus, ",")))
	}
	if len(f.Categories) > 0 {
		active = append(active, fmt.Sprintf("categories=%d", len(f.Categories)))
	}
	if len(f.Tags) > 0 {
		active = append(active, fmt.Sprintf("tags=%d", len(f.Tags)))
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		active = append(active, "price_range")
	}
	if f.CreatedFrom != nil || f.CreatedTo != nil {
		active = append(active, "created_range")
	}
	if f.ModifiedFrom != nil || f.ModifiedTo != nil {
		active = append(active, "modified_range")
	}
	if f.SKUPattern != "" {
		active = append(active, fmt.Sprintf("sku_pattern=%s", f.SKUPattern))
	}
	if f.MinStock != nil || f.MaxStock != nil {
		active = append(active, "stock_range")
	}
	if f.MinWeight != nil || f.MaxWeight != nil {
		active = append(active, "weight_range")
	}
	if f.MinSales != nil || f.MaxSales != nil {
		active = append(active, "sales_range")
	}
	if f.ZeroSales {
		active = append(active, "zero_sales")
	}
	if f.MinRating != nil {
		active = append(active, fmt.Sprintf("min_rating=%d", *f.MinRating))
	}
	if f.NoReviews {
		active = append(active, "no_reviews")
	}
	if f.LowReviews {
		active = append(active, "low_reviews")
	}
	if f.AuthorID != nil && *f.AuthorID != "" {
		active = append(active, "author")
	}
	if f.UserRole != "" {
		active = append(active, fmt.Sprintf("user_role=%s", f.UserRole))
	}
	if f.SaleFilters != nil && (f.SaleFilters.OnSale || f.SaleFilters.NotOnSale || f.SaleFilters.ZeroPrice || f.SaleFilters.NoPrice) {
		active = append(active, "sale_filters")
	}
	if f.DuplicateFilters != nil && (f.DuplicateFilters.Title || f.DuplicateFilters.SKU || f.DuplicateFilters.Content) {
		active = append(active, "duplicate_filters")
	}
	if f.AdvancedFilters != nil && (f.AdvancedFilters.Orphaned || f.AdvancedFilters.OrphanedImages) {
		active = append(active, "advanced_filters")
	}
	return active
}
