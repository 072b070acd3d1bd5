package attendance

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"attendly/models"
	"attendly/services/gate"

	"github.com/jung-kurt/gofpdf"
)

// SheetInfo is the header printed above the roster.
type SheetInfo struct {
	Title string
	Start time.Time
	End   time.Time
}

// AttendanceSheet renders the current roster as a printable PDF for the owning
// provider.
func (s *DefaultAttendanceService) AttendanceSheet(ctx context.Context, callerID, occurrenceID string) ([]byte, error) {
	occ, err := s.Occurrences.GetByID(ctx, occurrenceID)
	if err != nil {
		return nil, gate.StoreError(err, "occurrence", occurrenceID)
	}
	off, err := s.Owners.Offering(ctx, callerID, occ.OfferingID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.ListByOccurrence(ctx, occ.ID)
	if err != nil {
		return nil, err
	}
	r := Project(occ.ID, bookings)
	r.GeneratedAt = s.now()
	return RenderSheet(r, SheetInfo{Title: off.Title, Start: occ.Start, End: occ.End})
}

// RenderSheet lays out one row per booking, checked-in first, with an empty
// signature column for walk-up verification.
func RenderSheet(r Roster, info SheetInfo) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(info.Title))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("%s - %s UTC",
		info.Start.UTC().Format("Mon 2006-01-02 15:04"),
		info.End.UTC().Format("15:04")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Checked in: %d    Expected: %d    Generated: %s",
		len(r.CheckedIn), len(r.Expected), r.GeneratedAt.UTC().Format(time.RFC3339)))
	pdf.Ln(10)

	widths := []float64{10, 70, 30, 30, 40}
	header := []string{"#", "Consumer", "Status", "Checked in", "Signature"}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range header {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	row := 0
	for _, group := range [][]models.Booking{r.CheckedIn, r.Expected} {
		for _, b := range group {
			row++
			checkedIn := ""
			if b.CheckedInAt != nil {
				checkedIn = b.CheckedInAt.UTC().Format("15:04")
			}
			cells := []string{fmt.Sprint(row), tr(b.ConsumerID), string(b.Status), checkedIn, ""}
			for i, c := range cells {
				pdf.CellFormat(widths[i], 8, c, "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render attendance sheet: %w", err)
	}
	return buf.Bytes(), nil
}
