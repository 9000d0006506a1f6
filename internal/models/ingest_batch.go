package models

import (
	"time"

	"gorm.io/datatypes"
)

// IngestBatch records each ingestion call: counts, requester context and a
// JSON metadata blob with per-claim results and the document summary.
// Rows are written once, after all per-claim transactions, and never updated.
type IngestBatch struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	BatchReference string         `gorm:"column:batch_reference;not null;index" json:"batchReference"`
	Received       int            `gorm:"column:received;default:0" json:"received"`
	Success        int            `gorm:"column:success;default:0" json:"success"`
	Failed         int            `gorm:"column:failed;default:0" json:"failed"`
	RequestIP      string         `gorm:"column:request_ip" json:"requestIp"`
	UserAgent      string         `gorm:"column:user_agent" json:"userAgent"`
	Notes          string         `gorm:"column:notes;type:text" json:"notes"`           // up to 10 failure/partial messages, "; " joined
	CompanyIDs     string         `gorm:"column:company_ids" json:"companyIds"`          // comma-joined ids touched by the batch
	Metadata       datatypes.JSON `gorm:"column:metadata" json:"metadata"`               // BatchMetadata
	ProcessedAt    time.Time      `gorm:"column:processed_at;not null" json:"processedAt"`
	CreatedAt      time.Time      `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the table name
func (IngestBatch) TableName() string {
	return "ingest_batches"
}

// DocumentAccessLog is a write-once row per authorized document download
type DocumentAccessLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClaimID    uint      `gorm:"column:claim_id;not null;index" json:"claimId"`
	DocumentID uint      `gorm:"column:document_id;not null;index" json:"documentId"`
	ActorID    uint      `gorm:"column:actor_id" json:"actorId"`
	ActorType  string    `gorm:"column:actor_type" json:"actorType"`
	Channel    string    `gorm:"column:channel;not null;index" json:"channel"` // beneficiary | admin
	IP         string    `gorm:"column:ip" json:"ip"`
	UserAgent  string    `gorm:"column:user_agent" json:"userAgent"`
	AccessedAt time.Time `gorm:"column:accessed_at;not null;index" json:"accessedAt"`
}

// TableName specifies the table name
func (DocumentAccessLog) TableName() string {
	return "document_access_logs"
}
