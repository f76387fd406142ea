package ingestion_engine

import (
	"github.com/markdave123-py/docquery/internal/core"
)

const (
	summarizeInstruction = "You are a helpful assistant that summarizes documents. Provide a concise summary highlighting the key points."
	answerInstruction    = "You are an assistant that answers questions based strictly on the provided document content, clearly and concisely."
)

// BuildPrompt pairs an excerpt with an intent. It is pure.
func BuildPrompt(excerpt core.Excerpt, intent core.Intent) core.Prompt {
	switch intent.Kind {
	case core.IntentAnswerQuestion:
		return core.Prompt{
			SystemInstruction: answerInstruction,
			UserMessage:       "Document Content:\n" + string(excerpt) + "\n\nQuestion: " + intent.Question,
		}
	default:
		return core.Prompt{
			SystemInstruction: summarizeInstruction,
			UserMessage:       "Please summarize the following document:\n\n" + string(excerpt),
		}
	}
}
