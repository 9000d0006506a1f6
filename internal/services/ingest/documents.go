package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/tpaops/claimsgo/internal/models"
	"github.com/tpaops/claimsgo/internal/repository"
	"gorm.io/gorm"
)

const documentMessageCap = 20

// ingestDocuments upserts document metadata rows for a claim. Failures are
// recorded per document and never fail the owning claim or its transaction.
func (s *Service) ingestDocuments(tx *gorm.DB, claim *models.Claim, items []models.DocumentItem, stats *models.DocumentStats, now time.Time) {
	if len(items) == 0 {
		return
	}

	docs := repository.NewClaimDocuments(tx)
	refs := repository.NewReferences(tx)

	for i := range items {
		item := &items[i]
		stats.Attempted++

		path := strings.TrimSpace(item.StoragePath)
		if path == "" {
			stats.Failed++
			addDocumentMessage(stats, fmt.Sprintf("document %q has no storage path", item.Title))
			continue
		}

		var typeID *uint
		if code := strings.TrimSpace(item.TypeCode); code != "" {
			// Unknown document type codes are tolerated; the row keeps a nil type
			if docType, err := refs.DocumentTypeByCode(code); err == nil && docType != nil {
				typeID = &docType.ID
			}
		}

		existing, err := docs.FindByPath(claim.ID, path)
		if err != nil {
			stats.Failed++
			addDocumentMessage(stats, fmt.Sprintf("document %q lookup failed: %v", path, err))
			continue
		}

		if existing != nil {
			applyDocumentItem(existing, item, typeID)
			if err := docs.Save(existing); err != nil {
				stats.Failed++
				addDocumentMessage(stats, fmt.Sprintf("document %q update failed: %v", path, err))
				continue
			}
			stats.Updated++
		} else {
			doc := &models.ClaimDocument{
				ClaimID:     claim.ID,
				StoragePath: path,
			}
			applyDocumentItem(doc, item, typeID)
			if err := docs.Create(doc); err != nil {
				stats.Failed++
				addDocumentMessage(stats, fmt.Sprintf("document %q insert failed: %v", path, err))
				continue
			}
			stats.Inserted++
		}
	}
}

// applyDocumentItem maps inbound document fields; (claim, path) stays fixed
func applyDocumentItem(doc *models.ClaimDocument, item *models.DocumentItem, typeID *uint) {
	doc.DocumentTypeID = typeID
	doc.Title = strings.TrimSpace(item.Title)
	doc.StorageDisk = strings.TrimSpace(item.StorageDisk)
	if doc.StorageDisk == "" {
		doc.StorageDisk = "local"
	}
	doc.Checksum = strings.TrimSpace(item.Checksum)
	doc.MimeType = strings.TrimSpace(item.MimeType)
	doc.FileSize = item.FileSize
	doc.Source = strings.TrimSpace(item.Source)
	doc.UploadedBy = strings.TrimSpace(item.UploadedBy)
	doc.UploadedAt = models.ParseFlexibleTime(item.UploadedAt)
	doc.Metadata = models.Snapshot(item)
}

func addDocumentMessage(stats *models.DocumentStats, msg string) {
	if len(stats.Messages) < documentMessageCap {
		stats.Messages = append(stats.Messages, msg)
	}
}
