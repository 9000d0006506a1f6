package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/tpaops/claimsgo/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BatchFilter is a normalized filter over ingest batches. A nil field means
// "no constraint"; None short-circuits to an empty result (disjoint scopes).
type BatchFilter struct {
	From        *time.Time
	To          *time.Time
	Reference   string // substring match on batch_reference
	RequestIP   string // substring match on request_ip
	HasFailures *bool
	CompanyIDs  []uint // batch touched at least one of these companies
	None        bool
}

// IngestBatches is the data access seam for batch audit rows
type IngestBatches struct {
	db *gorm.DB
}

// NewIngestBatches creates an ingest batch repository
func NewIngestBatches(db *gorm.DB) *IngestBatches {
	return &IngestBatches{db: db}
}

// Create inserts the batch audit row; batches are never updated afterwards
func (r *IngestBatches) Create(batch *models.IngestBatch) error {
	return r.db.Create(batch).Error
}

// FindByID returns one batch row or gorm.ErrRecordNotFound
func (r *IngestBatches) FindByID(id uint) (*models.IngestBatch, error) {
	var batch models.IngestBatch
	if err := r.db.First(&batch, id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// Count returns how many batches match the filter
func (r *IngestBatches) Count(f BatchFilter) (int64, error) {
	if f.None {
		return 0, nil
	}
	var count int64
	err := r.scope(f).Model(&models.IngestBatch{}).Count(&count).Error
	return count, err
}

// Page returns one page of batches, newest first
func (r *IngestBatches) Page(f BatchFilter, offset, limit int) ([]models.IngestBatch, error) {
	if f.None {
		return []models.IngestBatch{}, nil
	}
	var batches []models.IngestBatch
	err := r.scope(f).
		Order("processed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&batches).Error
	return batches, err
}

// CountTotals sums the stored received/success/failed columns across the
// whole filtered set, database-side
func (r *IngestBatches) CountTotals(f BatchFilter) (received, success, failed int64, err error) {
	if f.None {
		return 0, 0, 0, nil
	}
	var row struct {
		Received int64
		Success  int64
		Failed   int64
	}
	err = r.scope(f).Model(&models.IngestBatch{}).
		Select("COALESCE(SUM(received),0) AS received, COALESCE(SUM(success),0) AS success, COALESCE(SUM(failed),0) AS failed").
		Scan(&row).Error
	return row.Received, row.Success, row.Failed, err
}

// MetadataOnly fetches just the metadata blobs of the filtered set, so the
// cross-batch document rollup does not load full rows
func (r *IngestBatches) MetadataOnly(f BatchFilter) ([]datatypes.JSON, error) {
	if f.None {
		return nil, nil
	}
	var blobs []datatypes.JSON
	err := r.scope(f).Model(&models.IngestBatch{}).Pluck("metadata", &blobs).Error
	return blobs, err
}

func (r *IngestBatches) scope(f BatchFilter) *gorm.DB {
	q := r.db
	if f.From != nil {
		q = q.Where("processed_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("processed_at <= ?", *f.To)
	}
	if f.Reference != "" {
		q = q.Where("batch_reference LIKE ?", "%"+f.Reference+"%")
	}
	if f.RequestIP != "" {
		q = q.Where("request_ip LIKE ?", "%"+f.RequestIP+"%")
	}
	if f.HasFailures != nil {
		if *f.HasFailures {
			q = q.Where("failed > 0")
		} else {
			q = q.Where("failed = 0")
		}
	}
	if len(f.CompanyIDs) > 0 {
		clause, args := companyListClause(f.CompanyIDs)
		q = q.Where(clause, args...)
	}
	return q
}

// companyListClause matches an id against the comma-joined company_ids
// column with portable LIKE patterns (no dialect-specific string concat)
func companyListClause(ids []uint) (string, []interface{}) {
	conditions := make([]string, 0, len(ids)*4)
	args := make([]interface{}, 0, len(ids)*4)
	for _, id := range ids {
		s := fmt.Sprintf("%d", id)
		conditions = append(conditions,
			"company_ids = ?",
			"company_ids LIKE ?",
			"company_ids LIKE ?",
			"company_ids LIKE ?",
		)
		args = append(args, s, s+",%", "%,"+s, "%,"+s+",%")
	}
	return "(" + strings.Join(conditions, " OR ") + ")", args
}
