package summarizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
)

// WriteMinutesPDF renders the meeting minutes (summary then transcript) to a
// single A4 PDF.
func WriteMinutesPDF(title, summary, transcript, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("ensure pdf directory: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("minutes-flow", false)
	pdf.AddPage()

	if strings.TrimSpace(title) == "" {
		title = "Meeting minutes"
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 10, tr(title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	writePDFSection(pdf, tr, "Summary", summary, true)
	pdf.Ln(6)
	writePDFSection(pdf, tr, "Transcript", transcript, false)

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writePDFSection(pdf *gofpdf.Fpdf, tr func(string) string, heading, content string, markdown bool) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, heading)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)

	content = strings.TrimSpace(content)
	if content == "" {
		pdf.MultiCell(0, 6, "(empty)", "", "L", false)
		return
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !markdown {
			pdf.MultiCell(0, 6, tr(line), "", "L", false)
			continue
		}

		switch {
		case strings.HasPrefix(line, "#"):
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, 7, tr(cleanMarkdownInline(strings.TrimLeft(line, "# "))), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
		case line == "---" || line == "***":
			pdf.Ln(2)
		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			pdf.MultiCell(0, 6, tr("• "+cleanMarkdownInline(line[2:])), "", "L", false)
		default:
			pdf.MultiCell(0, 6, tr(cleanMarkdownInline(line)), "", "L", false)
		}
	}
}
