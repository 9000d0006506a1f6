package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/tpaops/claimsgo/internal/database"
	"github.com/tpaops/claimsgo/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *database.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db := database.Wrap(gdb)
	err = db.AutoMigrate(
		&models.Company{},
		&models.Beneficiary{},
		&models.Claim{},
		&models.ClaimDocument{},
		&models.DocumentType{},
		&models.IngestBatch{},
		&models.DocumentAccessLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}
	return NewService(db), db
}

func seedBatch(t *testing.T, db *database.DB, reference string, companyIDs string, failed int, docOK int) {
	t.Helper()

	meta := models.BatchMetadata{
		BatchReference: reference,
		Summary: models.BatchSummary{
			Received: docOK + failed,
			Success:  docOK,
			Failed:   failed,
			Documents: models.DocumentSummary{
				Totals: models.DocumentTotals{Attempted: docOK, Ingested: docOK},
				Matrix: models.DocumentMatrix{RecordOKDocOK: docOK, RecordFailDocMissing: failed},
			},
		},
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("Failed to encode metadata: %v", err)
	}

	batch := models.IngestBatch{
		BatchReference: reference,
		Received:       docOK + failed,
		Success:        docOK,
		Failed:         failed,
		RequestIP:      "203.0.113.5",
		Notes:          "note one; note two",
		CompanyIDs:     companyIDs,
		Metadata:       raw,
		ProcessedAt:    time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&batch).Error; err != nil {
		t.Fatalf("Failed to seed batch: %v", err)
	}
}

func TestListBatchesRollup(t *testing.T) {
	svc, db := newTestService(t)
	seedBatch(t, db, "B1", "1", 0, 2)
	seedBatch(t, db, "B2", "1,2", 1, 1)
	seedBatch(t, db, "B3", "3", 0, 5)

	page, err := svc.ListBatches(BatchQuery{}, nil)
	if err != nil {
		t.Fatalf("ListBatches failed: %v", err)
	}

	if page.Total != 3 {
		t.Errorf("Total: got %d, want 3", page.Total)
	}
	if page.Summary.Received != 9 || page.Summary.Success != 8 || page.Summary.Failed != 1 {
		t.Errorf("Rollup counts: got %d/%d/%d, want 9/8/1",
			page.Summary.Received, page.Summary.Success, page.Summary.Failed)
	}
	if page.Summary.Documents.Matrix.RecordOKDocOK != 8 {
		t.Errorf("Rollup matrix record_ok_doc_ok: got %d, want 8",
			page.Summary.Documents.Matrix.RecordOKDocOK)
	}
	if page.Summary.Documents.Totals.Ingested != 8 {
		t.Errorf("Rollup totals ingested: got %d, want 8",
			page.Summary.Documents.Totals.Ingested)
	}

	if len(page.Batches) != 3 {
		t.Fatalf("Expected 3 batch views, got %d", len(page.Batches))
	}
	if len(page.Batches[0].Notes) != 2 {
		t.Errorf("Notes should split on ';': got %v", page.Batches[0].Notes)
	}
}

func TestListBatchesCompanyScope(t *testing.T) {
	svc, db := newTestService(t)
	seedBatch(t, db, "B1", "1", 0, 2)
	seedBatch(t, db, "B2", "1,2", 1, 1)
	seedBatch(t, db, "B3", "3", 0, 5)

	// Caller scoped to company 2 sees only the batch touching it
	page, err := svc.ListBatches(BatchQuery{}, []uint{2})
	if err != nil {
		t.Fatalf("ListBatches failed: %v", err)
	}
	if page.Total != 1 || page.Batches[0].BatchReference != "B2" {
		t.Errorf("Scoped listing: got total=%d, want the single B2 batch", page.Total)
	}

	// Requested filter disjoint from scope yields an explicit empty result
	page, err = svc.ListBatches(BatchQuery{CompanyID: "3"}, []uint{2})
	if err != nil {
		t.Fatalf("ListBatches failed: %v", err)
	}
	if page.Total != 0 || len(page.Batches) != 0 {
		t.Errorf("Disjoint scopes must return no results, got total=%d", page.Total)
	}
}

func TestListBatchesHasFailuresFilter(t *testing.T) {
	svc, db := newTestService(t)
	seedBatch(t, db, "B1", "", 0, 2)
	seedBatch(t, db, "B2", "", 3, 0)

	page, err := svc.ListBatches(BatchQuery{HasFailures: "true"}, nil)
	if err != nil {
		t.Fatalf("ListBatches failed: %v", err)
	}
	if page.Total != 1 || page.Batches[0].BatchReference != "B2" {
		t.Errorf("has_failures filter: got total=%d, want the single failing batch", page.Total)
	}
}

func TestBatchDetail(t *testing.T) {
	svc, db := newTestService(t)
	seedBatch(t, db, "B1", "1", 1, 2)

	var batch models.IngestBatch
	if err := db.First(&batch).Error; err != nil {
		t.Fatalf("Failed to load seeded batch: %v", err)
	}

	view, err := svc.BatchDetail(batch.ID, nil)
	if err != nil {
		t.Fatalf("BatchDetail failed: %v", err)
	}
	if view.BatchReference != "B1" {
		t.Errorf("Reference: got %q", view.BatchReference)
	}
	if view.ItemsTruncated {
		t.Error("Detail view must keep the full items list")
	}
	if view.Documents.Matrix.Total() != 3 {
		t.Errorf("Detail matrix total: got %d, want 3", view.Documents.Matrix.Total())
	}

	// Out-of-scope caller cannot see the batch
	if _, err := svc.BatchDetail(batch.ID, []uint{42}); !errors.Is(err, ErrNotVisible) {
		t.Errorf("Expected ErrNotVisible for out-of-scope caller, got %v", err)
	}
}

func TestListDownloads(t *testing.T) {
	svc, db := newTestService(t)

	company := models.Company{Code: "ACME", Name: "Acme Industries"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("Failed to seed company: %v", err)
	}
	beneficiary := models.Beneficiary{CompanyID: &company.ID, ReferenceNumber: "REF-1", FullName: "Jordan Doe"}
	if err := db.Create(&beneficiary).Error; err != nil {
		t.Fatalf("Failed to seed beneficiary: %v", err)
	}
	claim := models.Claim{CompanyID: &company.ID, BeneficiaryID: beneficiary.ID, ClaimReference: "C-1"}
	if err := db.Create(&claim).Error; err != nil {
		t.Fatalf("Failed to seed claim: %v", err)
	}
	doc := models.ClaimDocument{ClaimID: claim.ID, Title: "Bill", StorageDisk: "local", StoragePath: "claims/bill.pdf"}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("Failed to seed document: %v", err)
	}

	accessed := time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC)
	for i, channel := range []string{"beneficiary", "beneficiary", "admin"} {
		entry := models.DocumentAccessLog{
			ClaimID:    claim.ID,
			DocumentID: doc.ID,
			ActorID:    uint(i + 1),
			ActorType:  channel,
			Channel:    channel,
			IP:         "192.0.2.9",
			AccessedAt: accessed.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("Failed to seed access log: %v", err)
		}
	}

	page, err := svc.ListDownloads(DownloadQuery{}, nil)
	if err != nil {
		t.Fatalf("ListDownloads failed: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("Total: got %d, want 3", page.Total)
	}
	if page.Channels["beneficiary"] != 2 || page.Channels["admin"] != 1 {
		t.Errorf("Channel breakdown: got %v, want beneficiary=2 admin=1", page.Channels)
	}

	row := page.Downloads[0]
	if row.ClaimReference != "C-1" || row.DocumentTitle != "Bill" || row.CompanyName != "Acme Industries" {
		t.Errorf("Denormalized row mismatch: %+v", row)
	}
	if row.BeneficiaryName != "Jordan Doe" {
		t.Errorf("Beneficiary name: got %q", row.BeneficiaryName)
	}

	// Channel filter narrows both the page and the breakdown
	page, err = svc.ListDownloads(DownloadQuery{Channel: "admin"}, nil)
	if err != nil {
		t.Fatalf("ListDownloads failed: %v", err)
	}
	if page.Total != 1 || page.Channels["beneficiary"] != 0 {
		t.Errorf("Channel filter: got total=%d channels=%v", page.Total, page.Channels)
	}
}

func TestIntersectScope(t *testing.T) {
	cases := []struct {
		name      string
		requested []uint
		scope     []uint
		wantIDs   []uint
		wantNone  bool
	}{
		{"no filter, no scope", nil, nil, nil, false},
		{"filter only", []uint{1, 2}, nil, []uint{1, 2}, false},
		{"scope only", nil, []uint{3}, []uint{3}, false},
		{"overlap", []uint{1, 2}, []uint{2, 3}, []uint{2}, false},
		{"disjoint", []uint{1}, []uint{9}, nil, true},
	}

	for _, tc := range cases {
		ids, none := intersectScope(tc.requested, tc.scope)
		if none != tc.wantNone {
			t.Errorf("%s: none=%v, want %v", tc.name, none, tc.wantNone)
		}
		if len(ids) != len(tc.wantIDs) {
			t.Errorf("%s: ids=%v, want %v", tc.name, ids, tc.wantIDs)
			continue
		}
		for i := range ids {
			if ids[i] != tc.wantIDs[i] {
				t.Errorf("%s: ids=%v, want %v", tc.name, ids, tc.wantIDs)
				break
			}
		}
	}
}

func TestParseDateRange(t *testing.T) {
	from := parseDateStart("2026-02-01")
	if from == nil || !from.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("parseDateStart: got %v", from)
	}

	to := parseDateEnd("2026-02-01")
	if to == nil || !to.Equal(time.Date(2026, 2, 1, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("parseDateEnd should be inclusive through end of day, got %v", to)
	}

	if parseDateStart(" ") != nil || parseDateStart("not-a-date") != nil {
		t.Error("Blank or invalid dates must parse to nil")
	}
}
