// Package pdf renders single-document text reports.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Document is the content of one report
type Document struct {
	Title       string
	Subtitle    string
	Sections    []Section
	GeneratedAt time.Time
	Footer      string
}

type Section struct {
	Heading string
	Body    string
}

type Generator interface {
	Generate(ctx context.Context, doc Document) (io.ReadSeeker, error)
}

// Color represents an RGB color
type Color struct {
	R, G, B int
}

// Options configures page layout and typography
type Options struct {
	PageSize    string
	FontFamily  string
	FontSize    float64
	TitleSize   float64
	HeadingSize float64
	AccentColor Color
	MarginMM    float64
	DateFormat  string
	Compress    bool
}

// DefaultOptions returns A4 portrait with Arial
func DefaultOptions() Options {
	return Options{
		PageSize:    "A4",
		FontFamily:  "Arial",
		FontSize:    11,
		TitleSize:   18,
		HeadingSize: 12,
		AccentColor: Color{R: 0, G: 45, B: 98},
		MarginMM:    20,
		DateFormat:  "2006-01-02 15:04 MST",
		Compress:    true,
	}
}

type gofpdfGenerator struct {
	options Options
}

func NewGenerator(options Options) Generator {
	return &gofpdfGenerator{options: options}
}

func (g *gofpdfGenerator) Generate(ctx context.Context, doc Document) (io.ReadSeeker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := g.options
	pdf := gofpdf.New("P", "mm", o.PageSize, "")
	pdf.SetMargins(o.MarginMM, o.MarginMM, o.MarginMM)
	pdf.SetAutoPageBreak(true, o.MarginMM)
	pdf.SetCompression(o.Compress)
	pdf.SetTitle(doc.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if doc.Footer != "" {
		pdf.SetFooterFunc(func() {
			pdf.SetY(-15)
			pdf.SetFont(o.FontFamily, "I", o.FontSize-3)
			pdf.SetTextColor(128, 128, 128)
			pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s - page %d", doc.Footer, pdf.PageNo())), "", 0, "C", false, 0, "")
		})
	}

	pdf.AddPage()

	pdf.SetFont(o.FontFamily, "B", o.TitleSize)
	pdf.SetTextColor(o.AccentColor.R, o.AccentColor.G, o.AccentColor.B)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "L", false, 0, "")

	if doc.Subtitle != "" {
		pdf.SetFont(o.FontFamily, "", o.FontSize)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, tr(doc.Subtitle), "", 1, "L", false, 0, "")
	}

	if !doc.GeneratedAt.IsZero() {
		pdf.SetFont(o.FontFamily, "", o.FontSize-1)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, "Generated: "+doc.GeneratedAt.Format(o.DateFormat), "", 1, "L", false, 0, "")
	}

	pdf.SetDrawColor(o.AccentColor.R, o.AccentColor.G, o.AccentColor.B)
	pdf.Ln(2)
	pageWidth, _ := pdf.GetPageSize()
	pdf.Line(o.MarginMM, pdf.GetY(), pageWidth-o.MarginMM, pdf.GetY())
	pdf.Ln(6)

	for _, section := range doc.Sections {
		if section.Heading != "" {
			pdf.SetFont(o.FontFamily, "B", o.HeadingSize)
			pdf.SetTextColor(0, 0, 0)
			pdf.CellFormat(0, 8, tr(section.Heading), "", 1, "L", false, 0, "")
		}
		pdf.SetFont(o.FontFamily, "", o.FontSize)
		pdf.SetTextColor(30, 30, 30)
		pdf.MultiCell(0, 6, tr(section.Body), "", "J", false)
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return bytes.NewReader(buf.Bytes()), nil
}
