package core

import (
	"fmt"
)

// ExtractionErrorKind classifies text extraction failures.
type ExtractionErrorKind string

const (
	ExtractUnsupportedType ExtractionErrorKind = "unsupported_type"
	ExtractNotActuallyPDF  ExtractionErrorKind = "not_actually_pdf"
	ExtractParseFailed     ExtractionErrorKind = "parse_failed"
	// ExtractBadEncoding is never produced by the default extractor, which replaces invalid UTF-8.
	ExtractBadEncoding ExtractionErrorKind = "bad_encoding"
)

var extractionMessages = map[ExtractionErrorKind]string{
	ExtractUnsupportedType: "unsupported file type",
	ExtractNotActuallyPDF:  "file does not appear to be a valid PDF",
	ExtractParseFailed:     "could not parse document",
	ExtractBadEncoding:     "document is not valid UTF-8 text",
}

// ExtractionError is returned by TextExtractor implementations.
type ExtractionError struct {
	Kind   ExtractionErrorKind
	Detail string
	Err    error
}

// NewExtractionError builds an extraction error of the given kind.
func NewExtractionError(kind ExtractionErrorKind, detail string, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, Detail: detail, Err: err}
}

func (e *ExtractionError) Error() string {
	return joinDetail(e.Message(), e.Detail)
}

// Message is the human-readable description without provider or parser detail.
func (e *ExtractionError) Message() string {
	if msg, ok := extractionMessages[e.Kind]; ok {
		return msg
	}
	return "extraction failed"
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is matches any ExtractionError of the same kind.
func (e *ExtractionError) Is(target error) bool {
	t, ok := target.(*ExtractionError)
	return ok && t.Kind == e.Kind
}

// CompletionErrorKind classifies completion provider failures.
type CompletionErrorKind string

const (
	CompletionNotConfigured  CompletionErrorKind = "not_configured"
	CompletionUnauthorized   CompletionErrorKind = "unauthorized"
	CompletionRateLimited    CompletionErrorKind = "rate_limited"
	CompletionNetworkFailure CompletionErrorKind = "network_failure"
	CompletionProviderError  CompletionErrorKind = "provider_error"
	CompletionEmptyResponse  CompletionErrorKind = "empty_response"
)

var completionMessages = map[CompletionErrorKind]string{
	CompletionNotConfigured:  "AI assistant is not configured",
	CompletionUnauthorized:   "AI provider rejected the credentials",
	CompletionRateLimited:    "AI provider rate limit or quota exceeded",
	CompletionNetworkFailure: "could not reach the AI provider",
	CompletionProviderError:  "AI provider returned an error",
	CompletionEmptyResponse:  "AI provider returned no answer",
}

// CompletionError is returned by CompletionClient implementations.
// StatusCode is the provider HTTP status when one was received, otherwise 0.
type CompletionError struct {
	Kind       CompletionErrorKind
	Detail     string
	StatusCode int
	Err        error
}

// NewCompletionError builds a completion error of the given kind.
func NewCompletionError(kind CompletionErrorKind, detail string, statusCode int, err error) *CompletionError {
	return &CompletionError{Kind: kind, Detail: detail, StatusCode: statusCode, Err: err}
}

func (e *CompletionError) Error() string {
	msg := e.Message()
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	return joinDetail(msg, e.Detail)
}

// Message is the human-readable description without the provider payload.
func (e *CompletionError) Message() string {
	if msg, ok := completionMessages[e.Kind]; ok {
		return msg
	}
	return "completion failed"
}

func (e *CompletionError) Unwrap() error { return e.Err }

// Is matches any CompletionError of the same kind.
func (e *CompletionError) Is(target error) bool {
	t, ok := target.(*CompletionError)
	return ok && t.Kind == e.Kind
}

// PipelineErrorKind classifies failures of the question-answering path.
type PipelineErrorKind string

const (
	PipelineDocumentUnreadable PipelineErrorKind = "document_unreadable"
	PipelineEmptyContent       PipelineErrorKind = "empty_content"
	PipelineUnsupportedType    PipelineErrorKind = "unsupported_type"
	PipelinePayloadTooLarge    PipelineErrorKind = "payload_too_large"
	PipelineInvalidQuestion    PipelineErrorKind = "invalid_question"
	PipelineCompletion         PipelineErrorKind = "completion"
)

var pipelineMessages = map[PipelineErrorKind]string{
	PipelineDocumentUnreadable: "document could not be read",
	PipelineEmptyContent:       "document has no readable content",
	PipelineUnsupportedType:    "invalid file type, only PDF and TXT files are allowed",
	PipelinePayloadTooLarge:    "file size exceeds the upload limit",
	PipelineInvalidQuestion:    "question must not be empty",
}

// PipelineError is returned by the ingestion pipeline.
// For PipelineCompletion, Err is the underlying *CompletionError.
type PipelineError struct {
	Kind PipelineErrorKind
	Err  error
}

// NewPipelineError builds a pipeline error of the given kind.
func NewPipelineError(kind PipelineErrorKind, err error) *PipelineError {
	return &PipelineError{Kind: kind, Err: err}
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return e.Message()
	}
	if e.Kind == PipelineCompletion {
		return e.Err.Error()
	}
	return e.Message() + ": " + e.Err.Error()
}

// Message is the human-readable description suitable for API responses.
func (e *PipelineError) Message() string {
	if e.Kind == PipelineCompletion {
		if ce, ok := e.Err.(*CompletionError); ok {
			return ce.Message()
		}
		return "completion failed"
	}
	if e.Kind == PipelineDocumentUnreadable {
		if xe, ok := e.Err.(*ExtractionError); ok {
			return pipelineMessages[e.Kind] + ": " + xe.Message()
		}
	}
	if msg, ok := pipelineMessages[e.Kind]; ok {
		return msg
	}
	return "pipeline failed"
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Is matches any PipelineError of the same kind.
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is. They match by kind, never by identity.
var (
	ErrUnsupportedMediaType = &ExtractionError{Kind: ExtractUnsupportedType}
	ErrNotActuallyPDF       = &ExtractionError{Kind: ExtractNotActuallyPDF}
	ErrParseFailed          = &ExtractionError{Kind: ExtractParseFailed}
	ErrBadEncoding          = &ExtractionError{Kind: ExtractBadEncoding}

	ErrNotConfigured  = &CompletionError{Kind: CompletionNotConfigured}
	ErrUnauthorized   = &CompletionError{Kind: CompletionUnauthorized}
	ErrRateLimited    = &CompletionError{Kind: CompletionRateLimited}
	ErrNetworkFailure = &CompletionError{Kind: CompletionNetworkFailure}
	ErrProviderError  = &CompletionError{Kind: CompletionProviderError}
	ErrEmptyResponse  = &CompletionError{Kind: CompletionEmptyResponse}

	ErrDocumentUnreadable  = &PipelineError{Kind: PipelineDocumentUnreadable}
	ErrEmptyContent        = &PipelineError{Kind: PipelineEmptyContent}
	ErrUnsupportedDocument = &PipelineError{Kind: PipelineUnsupportedType}
	ErrPayloadTooLarge     = &PipelineError{Kind: PipelinePayloadTooLarge}
	ErrInvalidQuestion     = &PipelineError{Kind: PipelineInvalidQuestion}
	ErrCompletionFailed    = &PipelineError{Kind: PipelineCompletion}
)

func joinDetail(msg, detail string) string {
	if detail == "" {
		return msg
	}
	return msg + ": " + detail
}
