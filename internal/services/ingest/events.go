package ingest

import (
	"strings"
	"time"

	"github.com/tpaops/claimsgo/internal/models"
	"github.com/tpaops/claimsgo/internal/repository"
	"gorm.io/gorm"
)

// appendEvents writes the claim's status-change events inside the claim
// transaction, skipping any (event code, event time) pair already recorded.
// When the TPA sends no explicit events, a single "status:<code>" event is
// synthesized from the claim's current status.
func (s *Service) appendEvents(tx *gorm.DB, claim *models.Claim, item *models.ClaimItem, refs *resolvedRefs, now time.Time) (int, error) {
	events := item.Events
	if len(events) == 0 {
		statusCode := strings.TrimSpace(item.StatusCode)
		if statusCode == "" {
			return 0, nil
		}
		label := ""
		if refs.status != nil {
			label = refs.status.Label
		}
		events = []models.EventItem{{
			StatusCode: statusCode,
			EventCode:  "status:" + statusCode,
			EventLabel: label,
			Source:     s.source,
		}}
	}

	ledger := repository.NewClaimEvents(tx)
	statuses := repository.NewReferences(tx)
	appended := 0

	for i := range events {
		ev := &events[i]

		code := strings.TrimSpace(ev.EventCode)
		if code == "" {
			if sc := strings.TrimSpace(ev.StatusCode); sc != "" {
				code = "status:" + sc
			} else {
				continue
			}
		}

		eventTime := eventTimestamp(ev, claim, now)

		exists, err := ledger.Exists(claim.ID, code, eventTime)
		if err != nil {
			return appended, err
		}
		if exists {
			continue
		}

		var statusID *uint
		if sc := strings.TrimSpace(ev.StatusCode); sc != "" {
			// Event-level status codes resolve non-fatally; the ledger keeps history
			// even when a code is no longer in the lookup table
			if status, err := statuses.ClaimStatusByCode(sc); err == nil && status != nil {
				statusID = &status.ID
			}
		}

		source := strings.TrimSpace(ev.Source)
		if source == "" {
			source = s.source
		}

		entry := &models.ClaimEvent{
			ClaimID:     claim.ID,
			StatusID:    statusID,
			EventCode:   code,
			EventLabel:  ev.EventLabel,
			Description: ev.Description,
			EventTime:   eventTime,
			Source:      source,
			RawPayload:  models.Snapshot(ev),
		}
		if err := ledger.Append(entry); err != nil {
			return appended, err
		}
		appended++
	}

	return appended, nil
}

// eventTimestamp prefers the explicit event time, then the claim date, then now
func eventTimestamp(ev *models.EventItem, claim *models.Claim, now time.Time) time.Time {
	if t := models.ParseFlexibleTime(ev.EventTime); t != nil {
		return *t
	}
	if claim.ClaimDate != nil {
		return *claim.ClaimDate
	}
	return now
}
