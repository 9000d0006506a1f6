package models

// DocumentState classifies the document outcome of a single claim ingestion
type DocumentState string

const (
	DocStateMissing DocumentState = "missing" // no documents attempted
	DocStateOK      DocumentState = "ok"      // all attempted documents succeeded
	DocStatePartial DocumentState = "partial" // mixed success/failure
	DocStateFailed  DocumentState = "failed"  // all attempted documents failed
)

// DocumentStats tracks per-claim document upsert outcomes
type DocumentStats struct {
	Attempted int      `json:"attempted"`
	Inserted  int      `json:"inserted"`
	Updated   int      `json:"updated"`
	Failed    int      `json:"failed"`
	Messages  []string `json:"messages,omitempty"`
}

// ClaimResult is the per-claim outcome reported back to the TPA and stored
// in the batch metadata blob
type ClaimResult struct {
	Index             int           `json:"index"`
	Reference         string        `json:"reference"`
	Status            string        `json:"status"` // success | failed
	Message           string        `json:"message,omitempty"`
	ClaimID           uint          `json:"claim_id,omitempty"`
	Created           bool          `json:"created"`
	Updated           bool          `json:"updated"`
	EventsIngested    int           `json:"events_ingested"`
	DocumentsIngested int           `json:"documents_ingested"`
	DocumentsExpected int           `json:"documents_expected"`
	DocumentStats     DocumentStats `json:"document_stats"`
}

// Succeeded reports whether the claim record itself was ingested
func (r *ClaimResult) Succeeded() bool {
	return r.Status == "success"
}

// BatchResult is the payload returned to the ingesting caller
type BatchResult struct {
	BatchReference string        `json:"batch_reference"`
	Received       int           `json:"received"`
	Success        int           `json:"success"`
	Failed         int           `json:"failed"`
	Claims         []ClaimResult `json:"claims"`
}

// DocumentTotals are flat document counters across a whole batch
type DocumentTotals struct {
	Attempted int `json:"attempted"`
	Ingested  int `json:"ingested"`
	Updated   int `json:"updated"`
	Failed    int `json:"failed"`
	Missing   int `json:"missing"`
	Partial   int `json:"partial"`
}

// DocumentMatrix crosses {record ok, record fail} x {doc ok, partial, failed, missing}.
// It answers "how often did a successful claim still have a document problem".
type DocumentMatrix struct {
	RecordOKDocOK        int `json:"record_ok_doc_ok"`
	RecordOKDocPartial   int `json:"record_ok_doc_partial"`
	RecordOKDocFailed    int `json:"record_ok_doc_failed"`
	RecordOKDocMissing   int `json:"record_ok_doc_missing"`
	RecordFailDocOK      int `json:"record_fail_doc_ok"`
	RecordFailDocPartial int `json:"record_fail_doc_partial"`
	RecordFailDocFailed  int `json:"record_fail_doc_failed"`
	RecordFailDocMissing int `json:"record_fail_doc_missing"`
}

// Total sums all eight cells
func (m *DocumentMatrix) Total() int {
	return m.RecordOKDocOK + m.RecordOKDocPartial + m.RecordOKDocFailed + m.RecordOKDocMissing +
		m.RecordFailDocOK + m.RecordFailDocPartial + m.RecordFailDocFailed + m.RecordFailDocMissing
}

// Add accumulates another matrix into this one
func (m *DocumentMatrix) Add(o DocumentMatrix) {
	m.RecordOKDocOK += o.RecordOKDocOK
	m.RecordOKDocPartial += o.RecordOKDocPartial
	m.RecordOKDocFailed += o.RecordOKDocFailed
	m.RecordOKDocMissing += o.RecordOKDocMissing
	m.RecordFailDocOK += o.RecordFailDocOK
	m.RecordFailDocPartial += o.RecordFailDocPartial
	m.RecordFailDocFailed += o.RecordFailDocFailed
	m.RecordFailDocMissing += o.RecordFailDocMissing
}

// DocumentSummary combines flat totals with the record x document matrix
type DocumentSummary struct {
	Totals DocumentTotals `json:"totals"`
	Matrix DocumentMatrix `json:"matrix"`
}

// Add accumulates another summary, used by the audit cross-batch rollup
func (s *DocumentSummary) Add(o DocumentSummary) {
	s.Totals.Attempted += o.Totals.Attempted
	s.Totals.Ingested += o.Totals.Ingested
	s.Totals.Updated += o.Totals.Updated
	s.Totals.Failed += o.Totals.Failed
	s.Totals.Missing += o.Totals.Missing
	s.Totals.Partial += o.Totals.Partial
	s.Matrix.Add(o.Matrix)
}

// BatchSummary is the aggregate section of the stored batch metadata
type BatchSummary struct {
	Received  int             `json:"received"`
	Success   int             `json:"success"`
	Failed    int             `json:"failed"`
	Documents DocumentSummary `json:"documents"`
}

// BatchMetadata is the typed shape of IngestBatch.Metadata
type BatchMetadata struct {
	Items          []ClaimResult `json:"items"` // capped at 200
	Summary        BatchSummary  `json:"summary"`
	BatchReference string        `json:"batch_reference"`
}
