package docstream

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/tpaops/claimsgo/internal/clock"
	"github.com/tpaops/claimsgo/internal/config"
	"github.com/tpaops/claimsgo/internal/database"
	"github.com/tpaops/claimsgo/internal/middleware"
	"github.com/tpaops/claimsgo/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	streamer    *Streamer
	db          *database.DB
	claim       models.Claim
	doc         models.ClaimDocument
	storageRoot string
}

const testFileContent = "claims pipeline test document"

func newFixture(t *testing.T) *fixture {
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
		&models.DocumentAccessLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "claims"), 0o755); err != nil {
		t.Fatalf("Failed to create storage dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "claims", "doc.pdf"), []byte(testFileContent), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	company := models.Company{Code: "ACME", Name: "Acme Industries"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("Failed to seed company: %v", err)
	}
	beneficiary := models.Beneficiary{CompanyID: &company.ID, ReferenceNumber: "REF-1", FullName: "Jordan Doe"}
	if err := db.Create(&beneficiary).Error; err != nil {
		t.Fatalf("Failed to seed beneficiary: %v", err)
	}
	claim := models.Claim{
		CompanyID:      &company.ID,
		BeneficiaryID:  beneficiary.ID,
		ClaimReference: "C-1",
	}
	if err := db.Create(&claim).Error; err != nil {
		t.Fatalf("Failed to seed claim: %v", err)
	}

	sum := sha256.Sum256([]byte(testFileContent))
	doc := models.ClaimDocument{
		ClaimID:     claim.ID,
		Title:       "Discharge Summary",
		StorageDisk: "local",
		StoragePath: "claims/doc.pdf",
		Checksum:    strings.ToUpper(hex.EncodeToString(sum[:])), // stored uppercase: compare is case-insensitive
		MimeType:    "application/pdf",
	}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("Failed to seed document: %v", err)
	}

	storage := config.StorageConfig{
		AllowedDisks: []string{"local", "ftp"},
		LocalRoot:    root,
	}
	clk := clock.Fixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	return &fixture{
		streamer:    NewStreamer(db, storage, clk),
		db:          db,
		claim:       claim,
		doc:         doc,
		storageRoot: root,
	}
}

func beneficiaryActor(beneficiaryID uint) *middleware.ActorContext {
	return &middleware.ActorContext{
		UserID:        3,
		UserType:      "beneficiary",
		BeneficiaryID: beneficiaryID,
		IP:            "192.0.2.10",
		UserAgent:     "member-portal/2.1",
	}
}

func (f *fixture) accessLogCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	f.db.Model(&models.DocumentAccessLog{}).Count(&count)
	return count
}

func TestFetchBeneficiarySuccess(t *testing.T) {
	f := newFixture(t)

	doc, err := f.streamer.Fetch(f.claim.ID, f.doc.ID, false, beneficiaryActor(f.claim.BeneficiaryID))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer doc.Reader.Close()

	body, err := io.ReadAll(doc.Reader)
	if err != nil {
		t.Fatalf("Failed to read stream: %v", err)
	}
	if string(body) != testFileContent {
		t.Errorf("Stream content mismatch: got %q", string(body))
	}
	if doc.Filename != "Discharge Summary.pdf" {
		t.Errorf("Filename: got %q, want %q", doc.Filename, "Discharge Summary.pdf")
	}
	if doc.MimeType != "application/pdf" {
		t.Errorf("MimeType: got %q", doc.MimeType)
	}

	if got := f.accessLogCount(t); got != 1 {
		t.Fatalf("Expected one access log row, got %d", got)
	}
	var entry models.DocumentAccessLog
	if err := f.db.First(&entry).Error; err != nil {
		t.Fatalf("Failed to load access log: %v", err)
	}
	if entry.Channel != "beneficiary" || entry.ClaimID != f.claim.ID || entry.DocumentID != f.doc.ID {
		t.Errorf("Access log row mismatch: %+v", entry)
	}
}

func TestFetchChecksumMismatch(t *testing.T) {
	f := newFixture(t)
	f.db.Model(&models.ClaimDocument{}).Where("id = ?", f.doc.ID).Update("checksum", "deadbeef")

	_, err := f.streamer.Fetch(f.claim.ID, f.doc.ID, false, beneficiaryActor(f.claim.BeneficiaryID))
	streamErr := requireStreamError(t, err)
	if streamErr.Code != CodeIntegrityConflict {
		t.Errorf("Code: got %s, want %s", streamErr.Code, CodeIntegrityConflict)
	}
	if streamErr.HTTPStatus() != 409 {
		t.Errorf("Status: got %d, want 409", streamErr.HTTPStatus())
	}
	if got := f.accessLogCount(t); got != 0 {
		t.Errorf("Checksum mismatch must not write an access log row, got %d", got)
	}
}

func TestFetchMissingChecksumTolerated(t *testing.T) {
	f := newFixture(t)
	f.db.Model(&models.ClaimDocument{}).Where("id = ?", f.doc.ID).Update("checksum", "")

	doc, err := f.streamer.Fetch(f.claim.ID, f.doc.ID, false, beneficiaryActor(f.claim.BeneficiaryID))
	if err != nil {
		t.Fatalf("Legacy document without checksum should stream: %v", err)
	}
	doc.Reader.Close()
}

func TestFetchPathTraversalBlocked(t *testing.T) {
	f := newFixture(t)
	f.db.Model(&models.ClaimDocument{}).Where("id = ?", f.doc.ID).
		Updates(map[string]interface{}{"storage_path": "../../etc/passwd", "checksum": ""})

	_, err := f.streamer.Fetch(f.claim.ID, f.doc.ID, false, beneficiaryActor(f.claim.BeneficiaryID))
	streamErr := requireStreamError(t, err)
	if streamErr.Code != CodeNotFound {
		t.Errorf("Code: got %s, want %s", streamErr.Code, CodeNotFound)
	}
	if streamErr.HTTPStatus() != 404 {
		t.Errorf("Status: got %d, want 404", streamErr.HTTPStatus())
	}
}

func TestFetchUnsupportedDisk(t *testing.T) {
	f := newFixture(t)
	f.db.Model(&models.ClaimDocument{}).Where("id = ?", f.doc.ID).Update("storage_disk", "s3")

	_, err := f.streamer.Fetch(f.claim.ID, f.doc.ID, false, beneficiaryActor(f.claim.BeneficiaryID))
	streamErr := requireStreamError(t, err)
	if streamErr.Code != CodeNotFound {
		t.Errorf("Code: got %s, want %s", streamErr.Code, CodeNotFound)
	}
}

func TestFetchBeneficiaryScopeViolation(t *testing.T) {
	f := newFixture(t)

	_, err := f.streamer.Fetch(f.claim.ID, f.doc.ID, false, beneficiaryActor(f.claim.BeneficiaryID+99))
	streamErr := requireStreamError(t, err)
	if streamErr.Code != CodeForbidden {
		t.Errorf("Code: got %s, want %s", streamErr.Code, CodeForbidden)
	}
	if streamErr.HTTPStatus() != 403 {
		t.Errorf("Status: got %d, want 403", streamErr.HTTPStatus())
	}
	if got := f.accessLogCount(t); got != 0 {
		t.Errorf("Scope violation must not write an access log row, got %d", got)
	}
}

func TestFetchAdminCompanyScope(t *testing.T) {
	f := newFixture(t)

	outOfScope := &middleware.ActorContext{
		UserID:       9,
		UserType:     "admin",
		CompanyScope: []uint{*f.claim.CompanyID + 50},
		IP:           "198.51.100.7",
	}
	_, err := f.streamer.Fetch(f.claim.ID, f.doc.ID, true, outOfScope)
	streamErr := requireStreamError(t, err)
	if streamErr.Code != CodeForbidden {
		t.Errorf("Out-of-scope admin: got %s, want %s", streamErr.Code, CodeForbidden)
	}

	inScope := &middleware.ActorContext{
		UserID:       9,
		UserType:     "admin",
		CompanyScope: []uint{*f.claim.CompanyID},
		IP:           "198.51.100.7",
	}
	doc, err := f.streamer.Fetch(f.claim.ID, f.doc.ID, true, inScope)
	if err != nil {
		t.Fatalf("In-scope admin fetch failed: %v", err)
	}
	doc.Reader.Close()

	var entry models.DocumentAccessLog
	if err := f.db.First(&entry).Error; err != nil {
		t.Fatalf("Failed to load access log: %v", err)
	}
	if entry.Channel != "admin" {
		t.Errorf("Channel: got %q, want admin", entry.Channel)
	}
}

func TestFetchUnknownDocument(t *testing.T) {
	f := newFixture(t)

	_, err := f.streamer.Fetch(f.claim.ID, f.doc.ID+123, false, beneficiaryActor(f.claim.BeneficiaryID))
	streamErr := requireStreamError(t, err)
	if streamErr.Code != CodeNotFound {
		t.Errorf("Code: got %s, want %s", streamErr.Code, CodeNotFound)
	}
}

func TestDownloadFilename(t *testing.T) {
	cases := []struct {
		title string
		path  string
		want  string
	}{
		{"Discharge Summary", "claims/doc.pdf", "Discharge Summary.pdf"},
		{"scan.PDF", "claims/scan.pdf", "scan.PDF"},
		{"", "claims/raw-upload.jpg", "raw-upload.jpg"},
		{"notes", "claims/notes", "notes"},
	}
	for _, tc := range cases {
		doc := &models.ClaimDocument{Title: tc.title, StoragePath: tc.path}
		if got := downloadFilename(doc); got != tc.want {
			t.Errorf("downloadFilename(%q, %q): got %q, want %q", tc.title, tc.path, got, tc.want)
		}
	}
}

func requireStreamError(t *testing.T, err error) *StreamError {
	t.Helper()
	if err == nil {
		t.Fatal("Expected an error")
	}
	streamErr, ok := err.(*StreamError)
	if !ok {
		t.Fatalf("Expected *StreamError, got %T: %v", err, err)
	}
	return streamErr
}
