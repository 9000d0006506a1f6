package audit

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/tpaops/claimsgo/internal/database"
	"github.com/tpaops/claimsgo/internal/models"
	"github.com/tpaops/claimsgo/internal/repository"
	"gorm.io/gorm"
)

const listItemCap = 20

// ErrNotVisible is returned when a batch exists but sits outside the
// caller's company scope
var ErrNotVisible = errors.New("batch not visible to caller")

// Service provides read-only, paginated, filterable views over ingestion
// batches and document-access logs. It never mutates state.
type Service struct {
	db *database.DB
}

// NewService creates the audit service
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// BatchView is one decorated batch row in the listing
type BatchView struct {
	ID             uint                   `json:"id"`
	BatchReference string                 `json:"batchReference"`
	Received       int                    `json:"received"`
	Success        int                    `json:"success"`
	Failed         int                    `json:"failed"`
	RequestIP      string                 `json:"requestIp"`
	UserAgent      string                 `json:"userAgent"`
	ProcessedAt    time.Time              `json:"processedAt"`
	Notes          []string               `json:"notes"`
	CompanyIDs     []uint                 `json:"companyIds"`
	Items          []models.ClaimResult   `json:"items"`
	ItemsTruncated bool                   `json:"itemsTruncated"`
	Documents      models.DocumentSummary `json:"documents"`
}

// BatchRollup sums counts and document figures across the whole filtered
// set, not just the current page
type BatchRollup struct {
	Batches   int64                  `json:"batches"`
	Received  int64                  `json:"received"`
	Success   int64                  `json:"success"`
	Failed    int64                  `json:"failed"`
	Documents models.DocumentSummary `json:"documents"`
}

// BatchPage is the batch listing response
type BatchPage struct {
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"perPage"`
	Batches []BatchView `json:"batches"`
	Summary BatchRollup `json:"summary"`
}

// ListBatches returns one page of batches plus the cross-batch rollup
func (s *Service) ListBatches(q BatchQuery, callerScope []uint) (*BatchPage, error) {
	f := normalizeBatchFilter(q, callerScope)
	page, perPage := normalizePage(q.Page, q.PerPage)
	repo := repository.NewIngestBatches(s.db.DB)

	total, err := repo.Count(f)
	if err != nil {
		return nil, err
	}

	rows, err := repo.Page(f, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}

	views := make([]BatchView, 0, len(rows))
	for i := range rows {
		views = append(views, batchView(&rows[i], listItemCap))
	}

	rollup, err := s.rollup(repo, f, total)
	if err != nil {
		return nil, err
	}

	return &BatchPage{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Batches: views,
		Summary: rollup,
	}, nil
}

// BatchDetail returns one full batch with the complete items list
func (s *Service) BatchDetail(id uint, callerScope []uint) (*BatchView, error) {
	batch, err := repository.NewIngestBatches(s.db.DB).FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotVisible
		}
		return nil, err
	}

	if len(callerScope) > 0 && !scopesIntersect(parseCompanyColumn(batch.CompanyIDs), callerScope) {
		return nil, ErrNotVisible
	}

	view := batchView(batch, 0)
	return &view, nil
}

// DownloadPage is the document-download listing response
type DownloadPage struct {
	Total     int64                    `json:"total"`
	Page      int                      `json:"page"`
	PerPage   int                      `json:"perPage"`
	Downloads []repository.DownloadRow `json:"downloads"`
	Channels  map[string]int64         `json:"channels"`
}

// ListDownloads returns one page of denormalized download audit rows plus
// the per-channel breakdown over the filtered set
func (s *Service) ListDownloads(q DownloadQuery, callerScope []uint) (*DownloadPage, error) {
	f := normalizeDownloadFilter(q, callerScope)
	page, perPage := normalizePage(q.Page, q.PerPage)
	repo := repository.NewAccessLogs(s.db.DB)

	total, err := repo.Count(f)
	if err != nil {
		return nil, err
	}

	rows, err := repo.Page(f, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}

	channels, err := repo.ChannelBreakdown(f)
	if err != nil {
		return nil, err
	}

	return &DownloadPage{
		Total:     total,
		Page:      page,
		PerPage:   perPage,
		Downloads: rows,
		Channels:  channels,
	}, nil
}

// rollup combines database-side count sums with the document summary read
// out of the stored per-batch metadata blobs
func (s *Service) rollup(repo *repository.IngestBatches, f repository.BatchFilter, total int64) (BatchRollup, error) {
	received, success, failed, err := repo.CountTotals(f)
	if err != nil {
		return BatchRollup{}, err
	}

	rollup := BatchRollup{
		Batches:  total,
		Received: received,
		Success:  success,
		Failed:   failed,
	}

	// Per-batch document figures only exist inside the metadata JSON, so the
	// cross-batch sum walks the blobs of the filtered set
	blobs, err := repo.MetadataOnly(f)
	if err != nil {
		return BatchRollup{}, err
	}
	for _, blob := range blobs {
		var meta models.BatchMetadata
		if err := json.Unmarshal(blob, &meta); err != nil {
			log.Printf("⚠️  Skipping unreadable batch metadata in rollup: %v", err)
			continue
		}
		rollup.Documents.Add(meta.Summary.Documents)
	}

	return rollup, nil
}

// batchView decorates a batch row with parsed metadata. itemCap 0 keeps the
// full items list (detail view); otherwise the list is truncated.
func batchView(batch *models.IngestBatch, itemCap int) BatchView {
	view := BatchView{
		ID:             batch.ID,
		BatchReference: batch.BatchReference,
		Received:       batch.Received,
		Success:        batch.Success,
		Failed:         batch.Failed,
		RequestIP:      batch.RequestIP,
		UserAgent:      batch.UserAgent,
		ProcessedAt:    batch.ProcessedAt,
		Notes:          splitNotes(batch.Notes),
		CompanyIDs:     parseCompanyColumn(batch.CompanyIDs),
	}

	var meta models.BatchMetadata
	if len(batch.Metadata) > 0 {
		if err := json.Unmarshal(batch.Metadata, &meta); err != nil {
			log.Printf("⚠️  Batch %d has unreadable metadata: %v", batch.ID, err)
		}
	}
	view.Items = meta.Items
	view.Documents = meta.Summary.Documents
	if itemCap > 0 && len(view.Items) > itemCap {
		view.Items = view.Items[:itemCap]
		view.ItemsTruncated = true
	}
	if view.Items == nil {
		view.Items = []models.ClaimResult{}
	}

	return view
}

func splitNotes(notes string) []string {
	out := []string{}
	for _, part := range strings.Split(notes, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseCompanyColumn(value string) []uint {
	return parseIDList(value)
}

func scopesIntersect(a, b []uint) bool {
	set := make(map[uint]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
