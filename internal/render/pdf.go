// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// writePDF renders the document model and chart images to a PDF file.
// Failed charts become inline notices, matching the Word renderer's
// partial-failure policy.
func writePDF(doc *Document, charts []ChartImage, path string) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if doc.Title != "" {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.SetTextColor(0, 51, 102)
		pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, img := range charts {
		if img.PNG == nil {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetTextColor(80, 80, 80)
			pdf.MultiCell(0, 5, tr(chartNotice(img)), "", "L", false)
			continue
		}
		name := fmt.Sprintf("chart-%d", i)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.PNG))
		pdf.ImageOptions(name, 30, -1, 150, 0, true, opts, 0, "")
		pdf.Ln(4)
	}

	for _, block := range doc.Blocks {
		switch block.Kind {
		case BlockHeading:
			pdf.Ln(3)
			pdf.SetFont("Helvetica", "B", 13)
			pdf.SetTextColor(0, 51, 102)
			pdf.MultiCell(0, 7, tr(block.Text), "", "L", false)
		case BlockSubheading:
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 11)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(0, 6, tr(block.Text), "", "L", false)
		case BlockBullet:
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(0, 5, tr("• "+block.Text), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(0, 5, tr(block.Text), "", "L", false)
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing PDF document: %w", err)
	}
	return nil
}
