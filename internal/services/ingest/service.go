package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tpaops/claimsgo/internal/clock"
	"github.com/tpaops/claimsgo/internal/config"
	"github.com/tpaops/claimsgo/internal/database"
	"github.com/tpaops/claimsgo/internal/middleware"
	"github.com/tpaops/claimsgo/internal/models"
	"github.com/tpaops/claimsgo/internal/repository"
	"gorm.io/gorm"
)

// ErrEmptyBatch is the one terminal batch-level failure: a payload with no
// claims is rejected before any persistence
var ErrEmptyBatch = errors.New("batch contains no claims")

const (
	metadataItemCap = 200
	notesCap        = 10
	notesColumnCap  = 2000
)

// Service ingests TPA claim batches: per-claim transactions covering claim
// upsert, event ledger writes and document upserts, then one batch audit row.
// Claims are processed strictly sequentially so one claim's failure cannot
// roll back another's success.
type Service struct {
	db     *database.DB
	clock  clock.Clock
	source string
}

// NewService creates the ingestion service
func NewService(db *database.DB, clk clock.Clock, cfg config.IngestConfig) *Service {
	return &Service{
		db:     db,
		clock:  clk,
		source: cfg.SourceLabel,
	}
}

// IngestBatch processes a whole batch and returns the per-claim breakdown.
// Individual claim failures never abort the remaining batch.
func (s *Service) IngestBatch(payload *models.BatchPayload, actor *middleware.ActorContext) (*models.BatchResult, error) {
	if payload == nil || len(payload.Claims) == 0 {
		return nil, ErrEmptyBatch
	}

	batchRef := strings.TrimSpace(payload.BatchReference)
	if batchRef == "" {
		batchRef = "BT-" + uuid.NewString()
	}

	log.Printf("📥 Ingest batch %s: %d claim(s) received", batchRef, len(payload.Claims))

	results := make([]models.ClaimResult, 0, len(payload.Claims))
	companySet := make(map[uint]struct{})

	for i := range payload.Claims {
		item := &payload.Claims[i]
		result, companyID := s.ingestClaim(i, item, batchRef)
		if companyID != nil {
			companySet[*companyID] = struct{}{}
		}
		if !result.Succeeded() {
			log.Printf("❌ Batch %s claim %q: %s", batchRef, result.Reference, result.Message)
		}
		results = append(results, result)
	}

	summary := summarize(results)
	s.persistBatch(batchRef, results, summary, companySet, actor)

	log.Printf("✅ Ingest batch %s complete: %d success, %d failed", batchRef, summary.Success, summary.Failed)

	return &models.BatchResult{
		BatchReference: batchRef,
		Received:       summary.Received,
		Success:        summary.Success,
		Failed:         summary.Failed,
		Claims:         results,
	}, nil
}

// ingestClaim runs the full per-claim algorithm and reports which company
// the claim touched (for the batch's company list)
func (s *Service) ingestClaim(index int, item *models.ClaimItem, batchRef string) (models.ClaimResult, *uint) {
	result := models.ClaimResult{
		Index:             index,
		Reference:         strings.TrimSpace(item.Reference),
		Status:            "failed",
		DocumentsExpected: len(item.Documents),
	}

	if result.Reference == "" {
		result.Message = "claim reference is required"
		return result, nil
	}

	refs, err := s.resolve(item)
	if err != nil {
		result.Message = err.Error()
		return result, nil
	}

	var companyID *uint
	if refs.company != nil {
		companyID = &refs.company.ID
	}

	err = s.db.DB.Transaction(func(tx *gorm.DB) error {
		claims := repository.NewClaims(tx)
		now := s.clock.Now()

		claim, err := claims.FindByReference(result.Reference)
		if err != nil {
			return err
		}

		if claim != nil {
			s.applyItem(claim, item, refs, batchRef, now)
			if err := claims.Save(claim); err != nil {
				return err
			}
			result.Updated = true
		} else {
			claim = &models.Claim{
				ClaimReference: result.Reference,
				ReceivedAt:     &now,
			}
			s.applyItem(claim, item, refs, batchRef, now)
			if err := claims.Create(claim); err != nil {
				return err
			}
			result.Created = true
		}
		result.ClaimID = claim.ID

		appended, err := s.appendEvents(tx, claim, item, refs, now)
		if err != nil {
			return err
		}
		result.EventsIngested = appended

		s.ingestDocuments(tx, claim, item.Documents, &result.DocumentStats, now)
		result.DocumentsIngested = result.DocumentStats.Inserted + result.DocumentStats.Updated

		return nil
	})
	if err != nil {
		// rollback: nothing for this claim persisted
		result.Status = "failed"
		result.Message = fmt.Sprintf("persistence failed: %v", err)
		result.ClaimID = 0
		result.Created = false
		result.Updated = false
		result.EventsIngested = 0
		result.DocumentsIngested = 0
		return result, companyID
	}

	result.Status = "success"
	return result, companyID
}

// applyItem maps inbound fields onto the claim row. Primary key, claim
// reference and first-received timestamp are never overwritten.
func (s *Service) applyItem(claim *models.Claim, item *models.ClaimItem, refs *resolvedRefs, batchRef string, now time.Time) {
	if refs.company != nil {
		claim.CompanyID = &refs.company.ID
	}
	claim.BeneficiaryID = refs.beneficiary.ID
	if refs.dependent != nil {
		claim.DependentID = &refs.dependent.ID
	}
	if refs.policyCard != nil {
		claim.PolicyCardID = &refs.policyCard.ID
	}
	if refs.claimType != nil {
		claim.ClaimTypeID = &refs.claimType.ID
	}
	if refs.status != nil {
		claim.StatusID = &refs.status.ID
	}

	claim.TPAReference = strings.TrimSpace(item.TPAReference)
	claim.Category = strings.TrimSpace(item.Category)
	claim.SubStatus = strings.TrimSpace(item.SubStatus)
	claim.Diagnosis = item.Diagnosis
	claim.Remarks = item.Remarks

	if item.Amounts != nil {
		claim.AmountClaimed = item.Amounts.Claimed
		claim.AmountApproved = item.Amounts.Approved
		claim.AmountCashless = item.Amounts.Cashless
		claim.AmountCopay = item.Amounts.Copay
		claim.AmountNonPayable = item.Amounts.NonPayable
		claim.AmountReimbursed = item.Amounts.Reimbursed
	}

	if item.Dates != nil {
		claim.ClaimDate = models.ParseFlexibleTime(item.Dates.Claim)
		claim.AdmissionDate = models.ParseFlexibleTime(item.Dates.Admission)
		claim.DischargeDate = models.ParseFlexibleTime(item.Dates.Discharge)
		if claim.ReceivedAt == nil {
			if received := models.ParseFlexibleTime(item.Dates.Received); received != nil {
				claim.ReceivedAt = received
			}
		}
	}

	if item.Hospital != nil {
		claim.HospitalName = item.Hospital.Name
		claim.HospitalCode = item.Hospital.Code
		claim.HospitalCity = item.Hospital.City
		claim.HospitalState = item.Hospital.State
	}

	claim.IngestSource = s.source
	claim.SourceBatch = batchRef
	claim.LastSyncedAt = &now
	claim.RawPayload = models.Snapshot(item)
}

// persistBatch writes the one-per-call batch audit row. A failure here is
// logged but does not invalidate the already-committed claim transactions.
func (s *Service) persistBatch(batchRef string, results []models.ClaimResult, summary models.BatchSummary, companySet map[uint]struct{}, actor *middleware.ActorContext) {
	items := results
	if len(items) > metadataItemCap {
		items = items[:metadataItemCap]
	}

	raw, err := json.Marshal(models.BatchMetadata{
		Items:          items,
		Summary:        summary,
		BatchReference: batchRef,
	})
	if err != nil {
		log.Printf("⚠️  Batch %s: failed to encode metadata: %v", batchRef, err)
		raw = []byte("{}")
	}

	batch := models.IngestBatch{
		BatchReference: batchRef,
		Received:       summary.Received,
		Success:        summary.Success,
		Failed:         summary.Failed,
		Notes:          collectNotes(results),
		CompanyIDs:     joinCompanyIDs(companySet),
		Metadata:       raw,
		ProcessedAt:    s.clock.Now(),
	}
	if actor != nil {
		batch.RequestIP = actor.IP
		batch.UserAgent = actor.UserAgent
	}

	if err := repository.NewIngestBatches(s.db.DB).Create(&batch); err != nil {
		log.Printf("❌ Batch %s: failed to persist audit row: %v", batchRef, err)
	}
}

// collectNotes gathers up to 10 representative failure/partial messages
func collectNotes(results []models.ClaimResult) string {
	notes := make([]string, 0, notesCap)
	add := func(msg string) {
		if msg != "" && len(notes) < notesCap {
			notes = append(notes, msg)
		}
	}
	for i := range results {
		r := &results[i]
		if !r.Succeeded() {
			add(fmt.Sprintf("%s: %s", r.Reference, r.Message))
		}
		if r.DocumentStats.Failed > 0 {
			for _, msg := range r.DocumentStats.Messages {
				add(fmt.Sprintf("%s: %s", r.Reference, msg))
			}
		}
	}
	joined := strings.Join(notes, "; ")
	if len(joined) > notesColumnCap {
		joined = joined[:notesColumnCap]
	}
	return joined
}

// joinCompanyIDs renders the touched company set as a stable comma list
func joinCompanyIDs(companySet map[uint]struct{}) string {
	if len(companySet) == 0 {
		return ""
	}
	ids := make([]int, 0, len(companySet))
	for id := range companySet {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}
