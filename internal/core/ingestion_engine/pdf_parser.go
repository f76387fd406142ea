package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFParser turns raw PDF bytes into plain text, page by page in document order.
type PDFParser interface {
	ParsePDF(ctx context.Context, data []byte) (string, error)
}

// PageCounter reports the number of pages of a PDF.
type PageCounter interface {
	CountPages(data []byte) (int, error)
}

var (
	_ PDFParser   = NativePDFParser{}
	_ PDFParser   = DocconvPDFParser{}
	_ PageCounter = (*PdfcpuPageCounter)(nil)
)

// NativePDFParser is a pure Go parser backed by ledongthuc/pdf.
type NativePDFParser struct{}

func (NativePDFParser) ParsePDF(ctx context.Context, data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", i, err)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// DocconvPDFParser shells out to poppler's pdftotext through docconv.
type DocconvPDFParser struct{}

func (DocconvPDFParser) ParsePDF(ctx context.Context, data []byte) (string, error) {
	body, _, err := docconv.ConvertPDF(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("docconv: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return body, nil
}

// NewPDFParser returns the parser for the named backend ("native" or "docconv").
func NewPDFParser(backend string) (PDFParser, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "native":
		return NativePDFParser{}, nil
	case "docconv":
		return DocconvPDFParser{}, nil
	default:
		return nil, fmt.Errorf("unknown pdf backend %q", backend)
	}
}

var disableConfigDir sync.Once

// PdfcpuPageCounter counts pages with pdfcpu using relaxed validation.
type PdfcpuPageCounter struct {
	conf *model.Configuration
}

func NewPdfcpuPageCounter() *PdfcpuPageCounter {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PdfcpuPageCounter{conf: conf}
}

func (c *PdfcpuPageCounter) CountPages(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), c.conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu page count: %w", err)
	}
	return n, nil
}
