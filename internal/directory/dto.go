package directory

import "time"

// CreateLeadRequest registers a new prospect.
type CreateLeadRequest struct {
	CompanyName      string     `json:"company_name" validate:"required,min=2,max=160"`
	ContactName      string     `json:"contact_name" validate:"required,min=2,max=160"`
	Email            string     `json:"email" validate:"required,email"`
	Phone            *string    `json:"phone,omitempty" validate:"omitempty,max=40"`
	Country          string     `json:"country" validate:"required,min=2,max=80"`
	Source           *string    `json:"source,omitempty" validate:"omitempty,max=80"`
	EstimatedValue   *float64   `json:"estimated_value,omitempty" validate:"omitempty,gte=0"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date,omitempty"`
	Notes            *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateLeadRequest edits contact and planning fields. Status moves go
// through the transition endpoint.
type UpdateLeadRequest struct {
	CompanyName      *string    `json:"company_name,omitempty" validate:"omitempty,min=2,max=160"`
	ContactName      *string    `json:"contact_name,omitempty" validate:"omitempty,min=2,max=160"`
	Email            *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone            *string    `json:"phone,omitempty" validate:"omitempty,max=40"`
	Country          *string    `json:"country,omitempty" validate:"omitempty,min=2,max=80"`
	Source           *string    `json:"source,omitempty" validate:"omitempty,max=80"`
	EstimatedValue   *float64   `json:"estimated_value,omitempty" validate:"omitempty,gte=0"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date,omitempty"`
	Notes            *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// TransitionLeadRequest moves a lead along the pipeline.
type TransitionLeadRequest struct {
	Status LeadStatus `json:"status" validate:"required"`
}

// PromoteLeadRequest supplies the customer fields not present on the
// lead.
type PromoteLeadRequest struct {
	Industry *string `json:"industry,omitempty" validate:"omitempty,max=120"`
}

// CreateCustomerRequest registers a buyer directly, without a lead.
type CreateCustomerRequest struct {
	CompanyName string  `json:"company_name" validate:"required,min=2,max=160"`
	ContactName string  `json:"contact_name" validate:"required,min=2,max=160"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Country     string  `json:"country" validate:"required,min=2,max=80"`
	Industry    *string `json:"industry,omitempty" validate:"omitempty,max=120"`
}

// UpdateCustomerRequest edits customer contact fields and status.
type UpdateCustomerRequest struct {
	CompanyName *string         `json:"company_name,omitempty" validate:"omitempty,min=2,max=160"`
	ContactName *string         `json:"contact_name,omitempty" validate:"omitempty,min=2,max=160"`
	Email       *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string         `json:"phone,omitempty" validate:"omitempty,max=40"`
	Country     *string         `json:"country,omitempty" validate:"omitempty,min=2,max=80"`
	Industry    *string         `json:"industry,omitempty" validate:"omitempty,max=120"`
	Status      *CustomerStatus `json:"status,omitempty"`
}
