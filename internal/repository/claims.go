package repository

import (
	"errors"
	"time"

	"github.com/tpaops/claimsgo/internal/models"
	"gorm.io/gorm"
)

// Claims is the data access seam for claim rows. Construct it over the
// transaction handle when running inside a per-claim transaction.
type Claims struct {
	db *gorm.DB
}

// NewClaims creates a claim repository
func NewClaims(db *gorm.DB) *Claims {
	return &Claims{db: db}
}

// FindByReference looks up a claim by its natural key; nil when absent
func (r *Claims) FindByReference(reference string) (*models.Claim, error) {
	var claim models.Claim
	err := r.db.Where("claim_reference = ?", reference).First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

// FindByID looks up a claim by primary key; nil when absent
func (r *Claims) FindByID(id uint) (*models.Claim, error) {
	var claim models.Claim
	err := r.db.First(&claim, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

// Create inserts a new claim row
func (r *Claims) Create(claim *models.Claim) error {
	return r.db.Create(claim).Error
}

// Save persists all fields of an existing claim row
func (r *Claims) Save(claim *models.Claim) error {
	return r.db.Save(claim).Error
}

// ClaimEvents is the data access seam for the append-only event ledger
type ClaimEvents struct {
	db *gorm.DB
}

// NewClaimEvents creates a claim event repository
func NewClaimEvents(db *gorm.DB) *ClaimEvents {
	return &ClaimEvents{db: db}
}

// Exists reports whether an event with the same natural key already exists
func (r *ClaimEvents) Exists(claimID uint, eventCode string, eventTime time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.ClaimEvent{}).
		Where("claim_id = ? AND event_code = ? AND event_time = ?", claimID, eventCode, eventTime).
		Count(&count).Error
	return count > 0, err
}

// Append inserts a new event row
func (r *ClaimEvents) Append(event *models.ClaimEvent) error {
	return r.db.Create(event).Error
}

// ForClaim returns the event ledger of a claim, oldest first
func (r *ClaimEvents) ForClaim(claimID uint) ([]models.ClaimEvent, error) {
	var events []models.ClaimEvent
	err := r.db.Where("claim_id = ?", claimID).Order("event_time ASC").Find(&events).Error
	return events, err
}

// ClaimDocuments is the data access seam for document metadata rows
type ClaimDocuments struct {
	db *gorm.DB
}

// NewClaimDocuments creates a claim document repository
func NewClaimDocuments(db *gorm.DB) *ClaimDocuments {
	return &ClaimDocuments{db: db}
}

// FindByPath looks up a document by its (claim, storage path) key; nil when absent
func (r *ClaimDocuments) FindByPath(claimID uint, storagePath string) (*models.ClaimDocument, error) {
	var doc models.ClaimDocument
	err := r.db.Where("claim_id = ? AND storage_path = ?", claimID, storagePath).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// FindForClaim looks up a document by id, scoped to its owning claim
func (r *ClaimDocuments) FindForClaim(claimID, documentID uint) (*models.ClaimDocument, error) {
	var doc models.ClaimDocument
	err := r.db.Where("id = ? AND claim_id = ?", documentID, claimID).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// Create inserts a new document row
func (r *ClaimDocuments) Create(doc *models.ClaimDocument) error {
	return r.db.Create(doc).Error
}

// Save persists all fields of an existing document row
func (r *ClaimDocuments) Save(doc *models.ClaimDocument) error {
	return r.db.Save(doc).Error
}
