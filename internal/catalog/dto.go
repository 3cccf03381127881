package catalog

// CreateProductRequest creates a new catalog product.
type CreateProductRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=160"`
	Slug       string  `json:"slug" validate:"omitempty,min=2,max=160"`
	ShortDesc  *string `json:"short_desc,omitempty" validate:"omitempty,max=500"`
	LongDesc   *string `json:"long_desc,omitempty"`
	IsFeatured bool    `json:"is_featured"`
}

// UpdateProductRequest applies partial edits to a product.
type UpdateProductRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=2,max=160"`
	Slug       *string `json:"slug,omitempty" validate:"omitempty,min=2,max=160"`
	ShortDesc  *string `json:"short_desc,omitempty" validate:"omitempty,max=500"`
	LongDesc   *string `json:"long_desc,omitempty"`
	IsFeatured *bool   `json:"is_featured,omitempty"`
}
