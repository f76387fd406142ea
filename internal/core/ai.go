package core

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyQuestion is returned when a question is blank after trimming.
var ErrEmptyQuestion = errors.New("question must not be empty")

// IntentKind tells the prompt builder what the completion is for.
type IntentKind int

const (
	IntentSummarize IntentKind = iota
	IntentAnswerQuestion
)

func (k IntentKind) String() string {
	switch k {
	case IntentSummarize:
		return "summarize"
	case IntentAnswerQuestion:
		return "answer_question"
	default:
		return "unknown"
	}
}

// Intent is either Summarize or AnswerQuestion(Question).
type Intent struct {
	Kind     IntentKind
	Question string
}

// SummarizeIntent asks for a summary of the excerpt.
func SummarizeIntent() Intent {
	return Intent{Kind: IntentSummarize}
}

// AnswerQuestionIntent asks the model to answer q from the excerpt. q is trimmed and must not be empty.
func AnswerQuestionIntent(q string) (Intent, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return Intent{}, ErrEmptyQuestion
	}
	return Intent{Kind: IntentAnswerQuestion, Question: q}, nil
}

// Prompt is a provider-neutral chat prompt.
type Prompt struct {
	SystemInstruction string
	UserMessage       string
}

// CompletionOptions tunes one completion call. Zero values mean "provider default".
type CompletionOptions struct {
	Model       string
	MaxTokens   int
	Temperature *float32
}

// CompletionClient sends a prompt to a remote text-completion provider.
// Implementations never retry and return *CompletionError for every failure.
type CompletionClient interface {
	Complete(ctx context.Context, prompt Prompt, opts CompletionOptions) (string, error)
	// Configured reports whether a credential is present. It never touches the network.
	Configured() bool
}
