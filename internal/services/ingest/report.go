package ingest

import "github.com/tpaops/claimsgo/internal/models"

// classifyDocuments buckets a claim's document outcome: missing when nothing
// was attempted, ok/failed when uniform, partial when mixed
func classifyDocuments(stats models.DocumentStats) models.DocumentState {
	switch {
	case stats.Attempted == 0:
		return models.DocStateMissing
	case stats.Failed == 0:
		return models.DocStateOK
	case stats.Failed == stats.Attempted:
		return models.DocStateFailed
	default:
		return models.DocStatePartial
	}
}

// summarize tallies the batch: flat counts, document totals and the
// record x document matrix. Every claim lands in exactly one matrix cell,
// so the cells always sum to the received count.
func summarize(results []models.ClaimResult) models.BatchSummary {
	summary := models.BatchSummary{Received: len(results)}

	for i := range results {
		r := &results[i]
		recordOK := r.Succeeded()
		if recordOK {
			summary.Success++
		} else {
			summary.Failed++
		}

		totals := &summary.Documents.Totals
		totals.Attempted += r.DocumentStats.Attempted
		totals.Ingested += r.DocumentStats.Inserted
		totals.Updated += r.DocumentStats.Updated
		totals.Failed += r.DocumentStats.Failed

		state := classifyDocuments(r.DocumentStats)
		switch state {
		case models.DocStateMissing:
			totals.Missing++
		case models.DocStatePartial:
			totals.Partial++
		}

		bump(&summary.Documents.Matrix, recordOK, state)
	}

	return summary
}

func bump(m *models.DocumentMatrix, recordOK bool, state models.DocumentState) {
	if recordOK {
		switch state {
		case models.DocStateOK:
			m.RecordOKDocOK++
		case models.DocStatePartial:
			m.RecordOKDocPartial++
		case models.DocStateFailed:
			m.RecordOKDocFailed++
		case models.DocStateMissing:
			m.RecordOKDocMissing++
		}
		return
	}
	switch state {
	case models.DocStateOK:
		m.RecordFailDocOK++
	case models.DocStatePartial:
		m.RecordFailDocPartial++
	case models.DocStateFailed:
		m.RecordFailDocFailed++
	case models.DocStateMissing:
		m.RecordFailDocMissing++
	}
}
