package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BatchPayload is the inbound TPA batch
type BatchPayload struct {
	BatchReference string      `json:"batch_reference"`
	Claims         []ClaimItem `json:"claims"`
}

// ClaimItem is one inbound claim record. Reference is mandatory; the
// beneficiary is identified by internal id or by reference number.
type ClaimItem struct {
	Reference            string `json:"reference"`
	TPAReference         string `json:"tpa_reference"`
	CompanyCode          string `json:"company_code"`
	BeneficiaryID        uint   `json:"beneficiary_id"`
	BeneficiaryReference string `json:"beneficiary_reference"`
	DependentID          uint   `json:"dependent_id"`
	ClaimTypeCode        string `json:"claim_type_code"`
	StatusCode           string `json:"status_code"`
	Category             string `json:"category"`
	SubStatus            string `json:"sub_status"`
	Diagnosis            string `json:"diagnosis"`
	Remarks              string `json:"remarks"`

	PolicyCard *PolicyCardItem `json:"policy_card,omitempty"`
	Amounts    *AmountsItem    `json:"amounts,omitempty"`
	Dates      *DatesItem      `json:"dates,omitempty"`
	Hospital   *HospitalItem   `json:"hospital,omitempty"`
	Events     []EventItem     `json:"events,omitempty"`
	Documents  []DocumentItem  `json:"documents,omitempty"`
}

// PolicyCardItem carries card details to create or refresh a policy card
type PolicyCardItem struct {
	CardNumber   string `json:"card_number"`
	PolicyNumber string `json:"policy_number"`
	ValidFrom    string `json:"valid_from"`
	ValidTo      string `json:"valid_to"`
}

// AmountsItem carries the six monetary figures of a claim
type AmountsItem struct {
	Claimed    decimal.Decimal `json:"claimed"`
	Approved   decimal.Decimal `json:"approved"`
	Cashless   decimal.Decimal `json:"cashless"`
	Copay      decimal.Decimal `json:"copay"`
	NonPayable decimal.Decimal `json:"non_payable"`
	Reimbursed decimal.Decimal `json:"reimbursed"`
}

// DatesItem carries claim lifecycle dates as strings ("2006-01-02" or RFC3339)
type DatesItem struct {
	Claim     string `json:"claim"`
	Admission string `json:"admission"`
	Discharge string `json:"discharge"`
	Received  string `json:"received"`
}

// HospitalItem carries descriptive hospital fields
type HospitalItem struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	City  string `json:"city"`
	State string `json:"state"`
}

// EventItem is one inbound status-change event
type EventItem struct {
	StatusCode  string `json:"status_code"`
	EventCode   string `json:"event_code"`
	EventLabel  string `json:"event_label"`
	EventTime   string `json:"event_time"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// DocumentItem is one inbound supporting document
type DocumentItem struct {
	Title       string `json:"title"`
	TypeCode    string `json:"type_code"`
	StorageDisk string `json:"storage_disk"`
	StoragePath string `json:"storage_path"`
	Checksum    string `json:"checksum"`
	MimeType    string `json:"mime_type"`
	FileSize    int64  `json:"file_size"`
	Source      string `json:"source"`
	UploadedBy  string `json:"uploaded_by"`
	UploadedAt  string `json:"uploaded_at"`
}

// ParseFlexibleTime parses the date formats TPAs actually send:
// plain dates, date-times and RFC3339 timestamps. Returns nil when blank
// or unparseable.
func ParseFlexibleTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
