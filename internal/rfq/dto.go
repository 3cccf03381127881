package rfq

// SubmitRequest is the public buyer submission.
type SubmitRequest struct {
	FullName           string              `json:"full_name" validate:"required,min=2,max=160"`
	CompanyName        string              `json:"company_name" validate:"required,min=2,max=160"`
	Email              string              `json:"email" validate:"required,email"`
	Phone              *string             `json:"phone,omitempty" validate:"omitempty,max=40"`
	WhatsApp           *string             `json:"whatsapp,omitempty" validate:"omitempty,max=40"`
	Role               *string             `json:"role,omitempty" validate:"omitempty,max=80"`
	DestinationCountry string              `json:"destination_country" validate:"required,min=2,max=80"`
	Incoterm           *string             `json:"incoterm,omitempty" validate:"omitempty,max=10"`
	Timeline           *string             `json:"timeline,omitempty" validate:"omitempty,max=200"`
	Products           []SubmitProductItem `json:"products" validate:"required,min=1,dive"`
	IntendedUse        *string             `json:"intended_use,omitempty" validate:"omitempty,max=200"`
	RequireCOA         bool                `json:"require_coa"`
	Notes              *string             `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// SubmitProductItem is one requested line in a submission.
type SubmitProductItem struct {
	ProductID string  `json:"id" validate:"omitempty,uuid"`
	Name      string  `json:"name" validate:"required,max=160"`
	Qty       string  `json:"qty" validate:"required,max=80"`
	Packaging *string `json:"packaging,omitempty" validate:"omitempty,max=120"`
}

// UpdateStatusRequest moves an RFQ to another triage status.
type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

// AnnotateRequest replaces the internal staff notes.
type AnnotateRequest struct {
	InternalNotes string `json:"internal_notes" validate:"max=5000"`
}

// ListRequest filters the admin RFQ listing.
type ListRequest struct {
	Status *Status `json:"status,omitempty"`
	Limit  int     `json:"limit" validate:"gte=0,lte=500"`
	Offset int     `json:"offset" validate:"gte=0"`
}
