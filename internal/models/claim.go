package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Claim is one row per external claim reference. The reference is the
// immutable natural key: re-ingestion always updates, never duplicates.
type Claim struct {
	ID            uint  `gorm:"primaryKey" json:"id"`
	CompanyID     *uint `gorm:"column:company_id;index" json:"companyId,omitempty"`
	BeneficiaryID uint  `gorm:"column:beneficiary_id;not null;index" json:"beneficiaryId"`
	DependentID   *uint `gorm:"column:dependent_id" json:"dependentId,omitempty"`
	PolicyCardID  *uint `gorm:"column:policy_card_id" json:"policyCardId,omitempty"`
	ClaimTypeID   *uint `gorm:"column:claim_type_id;index" json:"claimTypeId,omitempty"`
	StatusID      *uint `gorm:"column:status_id;index" json:"statusId,omitempty"`

	ClaimReference string `gorm:"column:claim_reference;uniqueIndex;not null" json:"claimReference"`
	TPAReference   string `gorm:"column:tpa_reference;index" json:"tpaReference"`
	Category       string `gorm:"column:category" json:"category"`
	SubStatus      string `gorm:"column:sub_status" json:"subStatus"`

	ClaimDate     *time.Time `gorm:"column:claim_date" json:"claimDate,omitempty"`
	AdmissionDate *time.Time `gorm:"column:admission_date" json:"admissionDate,omitempty"`
	DischargeDate *time.Time `gorm:"column:discharge_date" json:"dischargeDate,omitempty"`

	AmountClaimed    decimal.Decimal `gorm:"column:amount_claimed;type:decimal(14,2)" json:"amountClaimed"`
	AmountApproved   decimal.Decimal `gorm:"column:amount_approved;type:decimal(14,2)" json:"amountApproved"`
	AmountCashless   decimal.Decimal `gorm:"column:amount_cashless;type:decimal(14,2)" json:"amountCashless"`
	AmountCopay      decimal.Decimal `gorm:"column:amount_copay;type:decimal(14,2)" json:"amountCopay"`
	AmountNonPayable decimal.Decimal `gorm:"column:amount_non_payable;type:decimal(14,2)" json:"amountNonPayable"`
	AmountReimbursed decimal.Decimal `gorm:"column:amount_reimbursed;type:decimal(14,2)" json:"amountReimbursed"`

	HospitalName  string `gorm:"column:hospital_name" json:"hospitalName"`
	HospitalCode  string `gorm:"column:hospital_code" json:"hospitalCode"`
	HospitalCity  string `gorm:"column:hospital_city" json:"hospitalCity"`
	HospitalState string `gorm:"column:hospital_state" json:"hospitalState"`

	Diagnosis string `gorm:"column:diagnosis;type:text" json:"diagnosis"`
	Remarks   string `gorm:"column:remarks;type:text" json:"remarks"`

	IngestSource string     `gorm:"column:ingest_source" json:"ingestSource"`
	SourceBatch  string     `gorm:"column:source_batch;index" json:"sourceBatch"`
	ReceivedAt   *time.Time `gorm:"column:received_at" json:"receivedAt,omitempty"`
	LastSyncedAt *time.Time `gorm:"column:last_synced_at" json:"lastSyncedAt,omitempty"`
	RawPayload   JSONB      `gorm:"column:raw_payload;type:jsonb" json:"rawPayload"`

	CreatedAt time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (Claim) TableName() string {
	return "claims"
}

// ClaimEvent is an append-only status-history row. (claim, event code,
// event time) is the natural key used for de-duplication on re-ingestion.
type ClaimEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClaimID     uint      `gorm:"column:claim_id;not null;uniqueIndex:idx_claim_event_key" json:"claimId"`
	StatusID    *uint     `gorm:"column:status_id" json:"statusId,omitempty"`
	EventCode   string    `gorm:"column:event_code;not null;uniqueIndex:idx_claim_event_key" json:"eventCode"`
	EventLabel  string    `gorm:"column:event_label" json:"eventLabel"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	EventTime   time.Time `gorm:"column:event_time;not null;uniqueIndex:idx_claim_event_key" json:"eventTime"`
	Source      string    `gorm:"column:source" json:"source"`
	RawPayload  JSONB     `gorm:"column:raw_payload;type:jsonb" json:"rawPayload"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the table name
func (ClaimEvent) TableName() string {
	return "claim_events"
}

// ClaimDocument is one row per physical supporting document.
// (claim, storage path) is unique: re-ingesting the same path updates in place.
type ClaimDocument struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ClaimID        uint       `gorm:"column:claim_id;not null;uniqueIndex:idx_claim_doc_path" json:"claimId"`
	DocumentTypeID *uint      `gorm:"column:document_type_id" json:"documentTypeId,omitempty"`
	Title          string     `gorm:"column:title" json:"title"`
	StorageDisk    string     `gorm:"column:storage_disk;not null" json:"storageDisk"` // local | ftp
	StoragePath    string     `gorm:"column:storage_path;not null;uniqueIndex:idx_claim_doc_path" json:"storagePath"`
	Checksum       string     `gorm:"column:checksum" json:"checksum"` // sha256 hex, compared case-insensitively
	MimeType       string     `gorm:"column:mime_type" json:"mimeType"`
	FileSize       int64      `gorm:"column:file_size;default:0" json:"fileSize"`
	Source         string     `gorm:"column:source" json:"source"`
	UploadedBy     string     `gorm:"column:uploaded_by" json:"uploadedBy"`
	UploadedAt     *time.Time `gorm:"column:uploaded_at" json:"uploadedAt,omitempty"`
	Metadata       JSONB      `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name
func (ClaimDocument) TableName() string {
	return "claim_documents"
}
