package models

import (
	"time"

	"gorm.io/gorm"
)

// Company represents a corporate client whose employees submit claims
type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"column:code;uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (Company) TableName() string {
	return "companies"
}

// Beneficiary is the insured member claims belong to
type Beneficiary struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CompanyID       *uint          `gorm:"column:company_id;index" json:"companyId,omitempty"`
	ReferenceNumber string         `gorm:"column:reference_number;uniqueIndex;not null" json:"referenceNumber"`
	FullName        string         `gorm:"column:full_name" json:"fullName"`
	Email           string         `gorm:"column:email" json:"email"`
	CreatedAt       time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"column:updated_at" json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (Beneficiary) TableName() string {
	return "beneficiaries"
}

// Dependent is a family member covered under a beneficiary
type Dependent struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	BeneficiaryID uint           `gorm:"column:beneficiary_id;not null;index" json:"beneficiaryId"`
	Name          string         `gorm:"column:name" json:"name"`
	Relation      string         `gorm:"column:relation" json:"relation"` // spouse, child, parent
	CreatedAt     time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"column:updated_at" json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (Dependent) TableName() string {
	return "dependents"
}

// PolicyCard is a beneficiary's insurance/scheme card, refreshed during ingestion
type PolicyCard struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	BeneficiaryID uint           `gorm:"column:beneficiary_id;not null;uniqueIndex:idx_policy_card_key" json:"beneficiaryId"`
	CardNumber    string         `gorm:"column:card_number;not null;uniqueIndex:idx_policy_card_key" json:"cardNumber"`
	PolicyNumber  string         `gorm:"column:policy_number;index" json:"policyNumber"`
	ValidFrom     *time.Time     `gorm:"column:valid_from" json:"validFrom,omitempty"`
	ValidTo       *time.Time     `gorm:"column:valid_to" json:"validTo,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"column:updated_at" json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (PolicyCard) TableName() string {
	return "policy_cards"
}

// ClaimType is a lookup table for claim categories (cashless, reimbursement, ...)
type ClaimType struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Code  string `gorm:"column:code;uniqueIndex;not null" json:"code"`
	Label string `gorm:"column:label" json:"label"`
}

// TableName specifies the table name
func (ClaimType) TableName() string {
	return "claim_types"
}

// ClaimStatus is a lookup table for claim workflow statuses
type ClaimStatus struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Code  string `gorm:"column:code;uniqueIndex;not null" json:"code"`
	Label string `gorm:"column:label" json:"label"`
}

// TableName specifies the table name
func (ClaimStatus) TableName() string {
	return "claim_statuses"
}

// DocumentType is a lookup table for supporting document categories
type DocumentType struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Code  string `gorm:"column:code;uniqueIndex;not null" json:"code"`
	Label string `gorm:"column:label" json:"label"`
}

// TableName specifies the table name
func (DocumentType) TableName() string {
	return "document_types"
}
