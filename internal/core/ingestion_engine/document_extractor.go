package ingestion_engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/markdave123-py/docquery/internal/core"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var _ core.TextExtractor = (*DocumentExtractor)(nil)

var pdfMagic = []byte("%PDF")

// DocumentExtractor implements core.TextExtractor for PDF and plain text blobs.
//
// pdf:     parser backend (native or docconv).
// pages:   optional page counter; failures are ignored.
// timeout: upper bound on a single PDF parse, 0 disables it.
type DocumentExtractor struct {
	pdf     PDFParser
	pages   PageCounter
	timeout time.Duration
	log     *zap.Logger
}

func NewDocumentExtractor(parser PDFParser, pages PageCounter, timeout time.Duration, log *zap.Logger) *DocumentExtractor {
	if parser == nil {
		parser = NativePDFParser{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentExtractor{pdf: parser, pages: pages, timeout: timeout, log: log}
}

// Extract classifies the blob by its declared media type and returns its text.
// Text may be empty or whitespace only; callers decide what that means.
func (e *DocumentExtractor) Extract(ctx context.Context, blob core.UploadedBlob) (core.ExtractedText, error) {
	switch blob.MediaType {
	case core.MediaTypePDF:
		return e.extractPDF(ctx, blob.Data)
	case core.MediaTypePlainText:
		return core.ExtractedText{Text: decodeText(blob.Data), MediaType: core.MediaTypePlainText}, nil
	default:
		return core.ExtractedText{}, core.NewExtractionError(core.ExtractUnsupportedType, string(blob.MediaType), nil)
	}
}

type parseResult struct {
	text  string
	pages int
	err   error
}

func (e *DocumentExtractor) extractPDF(ctx context.Context, data []byte) (core.ExtractedText, error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return core.ExtractedText{}, core.NewExtractionError(core.ExtractNotActuallyPDF, "missing %PDF header", nil)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	done := make(chan parseResult, 1)
	go func() {
		var res parseResult
		g, gctx := errgroup.WithContext(ctx)

		g.Go(recovered(func() error {
			text, err := e.pdf.ParsePDF(gctx, data)
			res.text = text
			return err
		}))
		if e.pages != nil {
			g.Go(recovered(func() error {
				n, err := e.pages.CountPages(data)
				if err != nil {
					e.log.Debug("page count unavailable", zap.Error(err))
					return nil
				}
				res.pages = n
				return nil
			}))
		}

		res.err = g.Wait()
		done <- res
	}()

	select {
	case <-ctx.Done():
		detail := "canceled"
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			detail = "timed out"
		}
		return core.ExtractedText{}, core.NewExtractionError(core.ExtractParseFailed, detail, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return core.ExtractedText{}, core.NewExtractionError(core.ExtractParseFailed, res.err.Error(), res.err)
		}
		return core.ExtractedText{
			Text:      decodeText([]byte(res.text)),
			MediaType: core.MediaTypePDF,
			Pages:     res.pages,
		}, nil
	}
}

// recovered turns a panic inside a third-party parser into an error.
func recovered(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("parser panic: %v", r)
			}
		}()
		return fn()
	}
}

// decodeText returns valid UTF-8 untouched and replaces invalid sequences with U+FFFD.
func decodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
