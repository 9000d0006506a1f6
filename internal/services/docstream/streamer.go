package docstream

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tpaops/claimsgo/internal/clock"
	"github.com/tpaops/claimsgo/internal/config"
	"github.com/tpaops/claimsgo/internal/database"
	"github.com/tpaops/claimsgo/internal/middleware"
	"github.com/tpaops/claimsgo/internal/models"
	"github.com/tpaops/claimsgo/internal/repository"
)

// Document is a resolved, verified byte stream ready for download.
// Closing the reader releases the underlying file and any FTP temp file.
type Document struct {
	Reader   io.ReadCloser
	Filename string
	MimeType string
	Size     int64
}

// Streamer resolves a logical document reference to physical bytes (local
// disk or FTP), verifies its checksum, enforces access scope and logs the
// download. Every call re-reads from the source of truth so the checksum
// check stays meaningful.
type Streamer struct {
	db      *database.DB
	storage config.StorageConfig
	clock   clock.Clock
}

// NewStreamer creates the document streamer
func NewStreamer(db *database.DB, storage config.StorageConfig, clk clock.Clock) *Streamer {
	return &Streamer{
		db:      db,
		storage: storage,
		clock:   clk,
	}
}

// source is one resolved physical file; cleanup must run on every exit path
type source struct {
	file    *os.File
	size    int64
	cleanup func()
}

// streamCloser ties resource release to the caller's Close
type streamCloser struct {
	*os.File
	cleanup func()
}

func (c *streamCloser) Close() error {
	c.cleanup()
	return nil
}

// Fetch resolves, verifies and returns the document stream. Failures are
// *StreamError values: not-found, forbidden or integrity-conflict.
func (s *Streamer) Fetch(claimID, documentID uint, admin bool, actor *middleware.ActorContext) (*Document, error) {
	claim, err := repository.NewClaims(s.db.DB).FindByID(claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, notFoundf("claim %d not found", claimID)
	}

	doc, err := repository.NewClaimDocuments(s.db.DB).FindForClaim(claimID, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, notFoundf("document %d not found for claim %d", documentID, claimID)
	}

	if !s.diskAllowed(doc.StorageDisk) {
		return nil, notFoundf("storage disk %q is not supported", doc.StorageDisk)
	}

	src, serr := s.resolveSource(doc)
	if serr != nil {
		return nil, serr
	}

	delivered := false
	defer func() {
		if !delivered {
			src.cleanup()
		}
	}()

	if serr := checkScope(claim, admin, actor); serr != nil {
		return nil, serr
	}

	if serr := s.verifyChecksum(doc, src); serr != nil {
		return nil, serr
	}

	s.logAccess(claim, doc, admin, actor)

	delivered = true
	return &Document{
		Reader:   &streamCloser{File: src.file, cleanup: src.cleanup},
		Filename: downloadFilename(doc),
		MimeType: doc.MimeType,
		Size:     src.size,
	}, nil
}

func (s *Streamer) diskAllowed(disk string) bool {
	for _, allowed := range s.storage.AllowedDisks {
		if disk == allowed {
			return true
		}
	}
	return false
}

// resolveSource opens the physical file for the document's storage disk
func (s *Streamer) resolveSource(doc *models.ClaimDocument) (*source, *StreamError) {
	switch doc.StorageDisk {
	case "local":
		return s.openLocal(doc.StoragePath)
	default:
		// non-local allow-listed disks are remote FTP
		return s.fetchRemote(doc.StoragePath)
	}
}

// openLocal joins the configured root with the relative path and rejects
// anything that canonicalizes outside the root (directory-traversal guard)
func (s *Streamer) openLocal(relPath string) (*source, *StreamError) {
	root, err := filepath.Abs(s.storage.LocalRoot)
	if err != nil {
		return nil, notFoundf("storage root unavailable")
	}

	full := filepath.Clean(filepath.Join(root, filepath.FromSlash(relPath)))
	if full != root && !strings.HasPrefix(full, root+string(os.PathSeparator)) {
		log.Printf("⚠️  Blocked path traversal attempt: %q", relPath)
		return nil, notFoundf("document file not found")
	}

	file, err := os.Open(full)
	if err != nil {
		return nil, notFoundf("document file not found")
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		return nil, notFoundf("document file not found")
	}

	return &source{
		file:    file,
		size:    info.Size(),
		cleanup: func() { file.Close() },
	}, nil
}

// checkScope enforces the channel's ownership rules
func checkScope(claim *models.Claim, admin bool, actor *middleware.ActorContext) *StreamError {
	if actor == nil {
		return forbiddenf("caller context required")
	}

	if !admin {
		if claim.BeneficiaryID != actor.BeneficiaryID {
			return forbiddenf("claim does not belong to this beneficiary")
		}
		return nil
	}

	// An empty scope list means an unscoped administrator
	if len(actor.CompanyScope) == 0 {
		return nil
	}
	if claim.CompanyID == nil {
		return forbiddenf("claim is outside the caller's company scope")
	}
	for _, id := range actor.CompanyScope {
		if *claim.CompanyID == id {
			return nil
		}
	}
	return forbiddenf("claim is outside the caller's company scope")
}

// verifyChecksum compares the stored SHA-256 against the resolved bytes,
// case-insensitively. A missing checksum is tolerated (legacy rows) but logged.
func (s *Streamer) verifyChecksum(doc *models.ClaimDocument, src *source) *StreamError {
	if doc.Checksum == "" {
		log.Printf("⚠️  Document %d (%s) has no stored checksum, skipping verification", doc.ID, doc.StoragePath)
		return nil
	}

	hasher := sha256.New()
	if _, err := io.Copy(hasher, src.file); err != nil {
		return notFoundf("document file unreadable")
	}
	if _, err := src.file.Seek(0, io.SeekStart); err != nil {
		return notFoundf("document file unreadable")
	}

	actual := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(actual, doc.Checksum) {
		log.Printf("❌ Checksum mismatch for document %d (%s): stored %s, actual %s",
			doc.ID, doc.StoragePath, doc.Checksum, actual)
		return conflictf("document checksum mismatch")
	}
	return nil
}

// logAccess appends the audit row for this download
func (s *Streamer) logAccess(claim *models.Claim, doc *models.ClaimDocument, admin bool, actor *middleware.ActorContext) {
	channel := "beneficiary"
	if admin {
		channel = "admin"
	}
	entry := &models.DocumentAccessLog{
		ClaimID:    claim.ID,
		DocumentID: doc.ID,
		ActorID:    actor.UserID,
		ActorType:  actor.UserType,
		Channel:    channel,
		IP:         actor.IP,
		UserAgent:  actor.UserAgent,
		AccessedAt: s.clock.Now(),
	}
	if err := repository.NewAccessLogs(s.db.DB).Record(entry); err != nil {
		log.Printf("❌ Failed to record document access (claim %d, document %d): %v", claim.ID, doc.ID, err)
	}
}

// downloadFilename derives the attachment name: the stored title plus the
// original file extension when the title doesn't already carry it
func downloadFilename(doc *models.ClaimDocument) string {
	name := strings.TrimSpace(doc.Title)
	if name == "" {
		return filepath.Base(doc.StoragePath)
	}
	ext := filepath.Ext(doc.StoragePath)
	if ext != "" && !strings.EqualFold(filepath.Ext(name), ext) {
		name += ext
	}
	return name
}
