// Package models defines the core domain models for LLC formation workflows.
package models

// Address is the business address supplied with a formation request.
type Address struct {
	Street string `json:"street" validate:"required"`
	City   string `json:"city"   validate:"required"`
	State  string `json:"state"  validate:"required,len=2"`
	Zip    string `json:"zip"    validate:"required"`
}

// FormationRequest is the input payload for one formation attempt.
//
// The request is immutable once a workflow has been created from it. Step
// outputs (filing number, EIN, bank account, compliance schedule) live on the
// Workflow aggregate, never on the request.
type FormationRequest struct {
	CompanyName      string  `json:"company_name"      validate:"required,min=2"`
	BusinessType     string  `json:"business_type"     validate:"required"`
	State            string  `json:"state"             validate:"required,len=2"`
	OwnerName        string  `json:"owner_name"        validate:"required"`
	OwnerEmail       string  `json:"owner_email"       validate:"required,email"`
	OwnerPhone       string  `json:"owner_phone,omitempty"`
	Address          Address `json:"address"           validate:"required"`
	Description      string  `json:"description,omitempty"`
	EstimatedRevenue int64   `json:"estimated_revenue" validate:"min=0"`
	EmployeeCount    int     `json:"employee_count"    validate:"min=0"`
}
