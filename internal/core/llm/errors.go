package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/markdave123-py/docquery/internal/core"
)

const maxDetailLen = 200

// parseOpenAIError maps go-openai errors onto completion error kinds.
// Provider payloads are reduced to a short message.
func parseOpenAIError(err error) *core.CompletionError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = reqErr.HTTPStatus
		}
		return fromStatus(reqErr.HTTPStatusCode, detail, err)
	}

	if isNetworkError(err) {
		return core.NewCompletionError(core.CompletionNetworkFailure, shorten(err.Error()), 0, err)
	}
	return core.NewCompletionError(core.CompletionProviderError, shorten(err.Error()), 0, err)
}

// parseGeminiError maps Google API and gRPC errors onto completion error kinds.
func parseGeminiError(err error) *core.CompletionError {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return core.NewCompletionError(core.CompletionProviderError, "response blocked by safety filters", 0, err)
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return fromStatus(gErr.Code, gErr.Message, err)
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if code := apiErr.HTTPCode(); code > 0 {
			return fromStatus(code, apiErr.Reason(), err)
		}
		if st := apiErr.GRPCStatus(); st != nil {
			return fromGRPC(st, err)
		}
	}

	if isNetworkError(err) {
		return core.NewCompletionError(core.CompletionNetworkFailure, shorten(err.Error()), 0, err)
	}

	if st, ok := status.FromError(err); ok {
		return fromGRPC(st, err)
	}
	return core.NewCompletionError(core.CompletionProviderError, shorten(err.Error()), 0, err)
}

func fromStatus(code int, detail string, err error) *core.CompletionError {
	detail = shorten(detail)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return core.NewCompletionError(core.CompletionUnauthorized, detail, code, err)
	case code == http.StatusTooManyRequests:
		return core.NewCompletionError(core.CompletionRateLimited, detail, code, err)
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return core.NewCompletionError(core.CompletionNetworkFailure, detail, code, err)
	default:
		return core.NewCompletionError(core.CompletionProviderError, detail, code, err)
	}
}

func fromGRPC(st *status.Status, err error) *core.CompletionError {
	detail := shorten(st.Message())
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return core.NewCompletionError(core.CompletionUnauthorized, detail, 0, err)
	case codes.ResourceExhausted:
		return core.NewCompletionError(core.CompletionRateLimited, detail, 0, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return core.NewCompletionError(core.CompletionNetworkFailure, detail, 0, err)
	default:
		return core.NewCompletionError(core.CompletionProviderError, detail, 0, err)
	}
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// extractDetail pulls a message out of the common JSON error body shapes.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return parsed.Error.Message
}

func shorten(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxDetailLen {
		return s
	}
	return strings.ToValidUTF8(s[:maxDetailLen], "") + "..."
}
