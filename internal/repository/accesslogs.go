package repository

import (
	"time"

	"github.com/tpaops/claimsgo/internal/models"
	"gorm.io/gorm"
)

// AccessLogFilter is a normalized filter over document downloads
type AccessLogFilter struct {
	From           *time.Time
	To             *time.Time
	ClaimReference string // substring match
	IP             string // substring match
	Channel        string // exact: beneficiary | admin
	CompanyIDs     []uint
	None           bool
}

// DownloadRow is the denormalized audit view of one document download
type DownloadRow struct {
	ID                uint      `json:"id"`
	AccessedAt        time.Time `json:"accessedAt"`
	Channel           string    `json:"channel"`
	ActorID           uint      `json:"actorId"`
	ActorType         string    `json:"actorType"`
	IP                string    `json:"ip"`
	UserAgent         string    `json:"userAgent"`
	ClaimID           uint      `json:"claimId"`
	ClaimReference    string    `json:"claimReference"`
	BeneficiaryName   string    `json:"beneficiaryName"`
	CompanyName       string    `json:"companyName"`
	DocumentID        uint      `json:"documentId"`
	DocumentTitle     string    `json:"documentTitle"`
	DocumentTypeLabel string    `json:"documentTypeLabel"`
	StorageDisk       string    `json:"storageDisk"`
}

// AccessLogs is the data access seam for the download audit trail
type AccessLogs struct {
	db *gorm.DB
}

// NewAccessLogs creates an access log repository
func NewAccessLogs(db *gorm.DB) *AccessLogs {
	return &AccessLogs{db: db}
}

// Record appends one download row; rows are write-once
func (r *AccessLogs) Record(entry *models.DocumentAccessLog) error {
	return r.db.Create(entry).Error
}

// Count returns how many downloads match the filter
func (r *AccessLogs) Count(f AccessLogFilter) (int64, error) {
	if f.None {
		return 0, nil
	}
	var count int64
	err := r.scope(f).Count(&count).Error
	return count, err
}

// Page returns one page of denormalized download rows, newest first
func (r *AccessLogs) Page(f AccessLogFilter, offset, limit int) ([]DownloadRow, error) {
	if f.None {
		return []DownloadRow{}, nil
	}
	var rows []DownloadRow
	err := r.scope(f).
		Select(`al.id, al.accessed_at, al.channel, al.actor_id, al.actor_type, al.ip, al.user_agent,
			al.claim_id, c.claim_reference, b.full_name AS beneficiary_name, co.name AS company_name,
			al.document_id, d.title AS document_title, dt.label AS document_type_label, d.storage_disk`).
		Order("al.accessed_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ChannelBreakdown counts downloads per access channel, database-side
func (r *AccessLogs) ChannelBreakdown(f AccessLogFilter) (map[string]int64, error) {
	breakdown := make(map[string]int64)
	if f.None {
		return breakdown, nil
	}
	var rows []struct {
		Channel string
		Total   int64
	}
	err := r.scope(f).
		Select("al.channel, COUNT(*) AS total").
		Group("al.channel").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		breakdown[row.Channel] = row.Total
	}
	return breakdown, nil
}

func (r *AccessLogs) scope(f AccessLogFilter) *gorm.DB {
	q := r.db.Table("document_access_logs AS al").
		Joins("JOIN claims c ON c.id = al.claim_id").
		Joins("JOIN claim_documents d ON d.id = al.document_id").
		Joins("JOIN beneficiaries b ON b.id = c.beneficiary_id").
		Joins("LEFT JOIN companies co ON co.id = c.company_id").
		Joins("LEFT JOIN document_types dt ON dt.id = d.document_type_id")

	if f.From != nil {
		q = q.Where("al.accessed_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("al.accessed_at <= ?", *f.To)
	}
	if f.ClaimReference != "" {
		q = q.Where("c.claim_reference LIKE ?", "%"+f.ClaimReference+"%")
	}
	if f.IP != "" {
		q = q.Where("al.ip LIKE ?", "%"+f.IP+"%")
	}
	if f.Channel != "" {
		q = q.Where("al.channel = ?", f.Channel)
	}
	if len(f.CompanyIDs) > 0 {
		q = q.Where("c.company_id IN ?", f.CompanyIDs)
	}
	return q
}
