package models

// DeleteOptions specifies which dependent records cascade with each
// successfully deleted product. Every switch defaults to true; dependents
// of a product whose own delete failed are never touched.
type DeleteOptions struct {
	DeleteImages     bool `json:"delete_images"`
	DeleteVariations bool `json:"delete_variations"`
	DeleteMeta       bool `json:"delete_meta"`
	DeleteTerms      bool `json:"delete_terms"`
}

// DefaultDeleteOptions returns options with every cascade enabled
func DefaultDeleteOptions() DeleteOptions {
	return DeleteOptions{
		DeleteImages:     true,
		DeleteVariations: true,
		DeleteMeta:       true,
		DeleteTerms:      true,
	}
}

// DeleteOptionsRequest is the wire form of DeleteOptions. Pointers
// distinguish "absent" from "false": an absent key takes its default (true)
// while an explicit false disables that cascade.
type DeleteOptionsRequest struct {
	DeleteImages     *bool `json:"delete_images"`
	DeleteVariations *bool `json:"delete_variations"`
	DeleteMeta       *bool `json:"delete_meta"`
	DeleteTerms      *bool `json:"delete_terms"`
}

// Resolve applies defaults to absent keys and returns concrete options
func (r *DeleteOptionsRequest) Resolve() DeleteOptions {
	opts := DefaultDeleteOptions()
	if r == nil {
		return opts
	}
	if r.DeleteImages != nil {
		opts.DeleteImages = *r.DeleteImages
	}
	if r.DeleteVariations != nil {
		opts.DeleteVariations = *r.DeleteVariations
	}
	if r.DeleteMeta != nil {
		opts.DeleteMeta = *r.DeleteMeta
	}
	if r.DeleteTerms != nil {
		opts.DeleteTerms = *r.DeleteTerms
	}
	return opts
}

// CountRequest is the body of POST /cleanup/count
type CountRequest struct {
	Filters DeleteFilter `json:"filters"`
}

// CountResult reports how much work matches a filter. Variations is the
// tenant's total variant count regardless of the filter, matching the
// long-standing behavior this service replaces; clients display it as an
// upper bound, not a per-filter figure.
type CountResult struct {
	Products   int64 `json:"products"`
	Variations int64 `json:"variations"`
}

// BatchDeleteRequest is the body of POST /cleanup/batch
type BatchDeleteRequest struct {
	Filters DeleteFilter          `json:"filters"`
	Options *DeleteOptionsRequest `json:"options"`
}

// BatchDeleteResult reports the outcome of one batch pass. Remaining is
// recounted under the same filter after the pass; callers loop until it
// reaches zero.
type BatchDeleteResult struct {
	Deleted           int   `json:"deleted"`
	ImagesDeleted     int   `json:"images_deleted"`
	VariationsDeleted int   `json:"variations_deleted"`
	Remaining         int64 `json:"remaining"`
}

// ProductTypeInfo is one row of the product-types listing
type ProductTypeInfo struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// TermInfo is one row of the categories/tags listings. Count covers
// published products only.
type TermInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int64  `json:"count"`
}
