package core

import (
	"context"
	"mime"
	"path/filepath"
	"strings"
)

// MediaType is the declared type of an uploaded blob.
type MediaType string

const (
	MediaTypePDF         MediaType = "application/pdf"
	MediaTypePlainText   MediaType = "text/plain"
	MediaTypeUnsupported MediaType = "unsupported"
)

// ParseMediaType maps a Content-Type header value onto one of the accepted media types.
// Parameters such as charset are ignored.
func ParseMediaType(contentType string) MediaType {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch MediaType(mt) {
	case MediaTypePDF:
		return MediaTypePDF
	case MediaTypePlainText:
		return MediaTypePlainText
	default:
		return MediaTypeUnsupported
	}
}

// MediaTypeFromFilename guesses the media type from the file extension.
func MediaTypeFromFilename(name string) MediaType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MediaTypePDF
	case ".txt", ".text":
		return MediaTypePlainText
	default:
		return MediaTypeUnsupported
	}
}

// Extension returns the file extension used when storing blobs of this type.
func (m MediaType) Extension() string {
	switch m {
	case MediaTypePDF:
		return ".pdf"
	case MediaTypePlainText:
		return ".txt"
	default:
		return ""
	}
}

// Supported reports whether uploads of this type are accepted.
func (m MediaType) Supported() bool {
	return m == MediaTypePDF || m == MediaTypePlainText
}

// UploadedBlob is the raw upload as handed to the pipeline. It is owned by the request.
type UploadedBlob struct {
	Data      []byte
	MediaType MediaType
	Size      int64
}

// NewUploadedBlob builds a blob from raw bytes and a Content-Type header value.
func NewUploadedBlob(data []byte, contentType string) UploadedBlob {
	return UploadedBlob{
		Data:      data,
		MediaType: ParseMediaType(contentType),
		Size:      int64(len(data)),
	}
}

// ExtractedText represents the result of text extraction.
// Text may be empty; callers decide whether that is usable.
type ExtractedText struct {
	Text      string
	MediaType MediaType
	Pages     int
}

// Excerpt is extracted text cut to a bounded number of characters.
type Excerpt string

// TextExtractor turns an uploaded blob into plain text.
type TextExtractor interface {
	// Extract returns an *ExtractionError for every failure it can classify.
	Extract(ctx context.Context, blob UploadedBlob) (ExtractedText, error)
}
