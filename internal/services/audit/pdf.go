package audit

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// BatchSummaryPDF renders a one-page summary sheet for a batch: counts,
// document totals and the record x document matrix, headed by a QR code of
// the batch reference so TPA staff can scan it back into their system.
func (s *Service) BatchSummaryPDF(id uint, callerScope []uint) ([]byte, error) {
	view, err := s.BatchDetail(id, callerScope)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Header with scannable batch reference
	qrPng, err := qrcode.Encode(view.BatchReference, qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("batch-qr", opts, bytes.NewReader(qrPng))
	pdf.ImageOptions("batch-qr", 165, 15, 30, 30, false, opts, 0, "")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Claims Ingestion Batch Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, "Batch: "+view.BatchReference, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Processed: "+view.ProcessedAt.Format("2006-01-02 15:04:05 MST"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Received: %d    Success: %d    Failed: %d",
		view.Received, view.Success, view.Failed), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Document totals
	totals := view.Documents.Totals
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Documents", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	row := func(label string, value int) {
		pdf.CellFormat(60, 6, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", value), "1", 1, "R", false, 0, "")
	}
	row("Attempted", totals.Attempted)
	row("Ingested", totals.Ingested)
	row("Updated", totals.Updated)
	row("Failed", totals.Failed)
	row("Claims without documents", totals.Missing)
	row("Claims with partial documents", totals.Partial)
	pdf.Ln(5)

	// Record x document matrix
	m := view.Documents.Matrix
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Record / Document Matrix", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "", "1", 0, "C", false, 0, "")
	for _, h := range []string{"Docs OK", "Partial", "Failed", "Missing"} {
		pdf.CellFormat(30, 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	matrixRow := func(label string, cells [4]int) {
		pdf.CellFormat(40, 6, label, "1", 0, "L", false, 0, "")
		for _, c := range cells {
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", c), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
	matrixRow("Record OK", [4]int{m.RecordOKDocOK, m.RecordOKDocPartial, m.RecordOKDocFailed, m.RecordOKDocMissing})
	matrixRow("Record Failed", [4]int{m.RecordFailDocOK, m.RecordFailDocPartial, m.RecordFailDocFailed, m.RecordFailDocMissing})
	pdf.Ln(5)

	// Representative failure notes
	if len(view.Notes) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, note := range view.Notes {
			pdf.MultiCell(0, 5, "- "+note, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
