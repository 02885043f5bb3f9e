// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"os"

	"github.com/fumiama/go-docx"
)

// headingColor is the dark blue used for titles and headings in both formats.
const headingColor = "003366"

// writeWord renders the document model and chart images to a .docx file.
// Chart images that failed to render are replaced with an inline notice
// paragraph; a single bad chart never aborts the document.
func writeWord(doc *Document, charts []ChartImage, path string) error {
	w := docx.New().WithDefaultTheme()

	if doc.Title != "" {
		title := w.AddParagraph().Justification("center")
		title.AddText(doc.Title).Size("32").Color(headingColor).Bold()
		w.AddParagraph()
	}

	// Charts precede the narrative, mirroring the authored reports.
	for _, img := range charts {
		if img.PNG == nil {
			w.AddParagraph().AddText(chartNotice(img)).Italic()
			continue
		}
		para := w.AddParagraph().Justification("center")
		if _, err := para.AddInlineDrawing(img.PNG); err != nil {
			w.AddParagraph().AddText(chartNotice(img)).Italic()
		}
	}
	if len(charts) > 0 {
		w.AddParagraph()
	}

	for _, block := range doc.Blocks {
		switch block.Kind {
		case BlockHeading:
			w.AddParagraph().AddText(block.Text).Size("26").Color(headingColor).Bold()
		case BlockSubheading:
			w.AddParagraph().AddText(block.Text).Bold()
		case BlockBullet:
			w.AddParagraph().AddText("• " + block.Text)
		case BlockNumbered:
			w.AddParagraph().AddText(block.Text)
		default:
			w.AddParagraph().AddText(block.Text)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := w.WriteTo(f); err != nil {
		return fmt.Errorf("writing Word document: %w", err)
	}
	return nil
}
