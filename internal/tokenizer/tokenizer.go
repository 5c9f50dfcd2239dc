// Package tokenizer estimates prompt token counts before summarization calls.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

const (
	defaultModel        = "gpt-3.5-turbo"
	defaultEncodingName = "cl100k_base"
)

// NewCounter returns a Counter for the requested model. Models unknown to the
// tiktoken registry fall back to the cl100k_base encoding.
func NewCounter(modelName string) (Counter, error) {
	trimmedModelName := strings.ToLower(strings.TrimSpace(modelName))
	if trimmedModelName == "" {
		trimmedModelName = defaultModel
	}

	encoding, encodingError := tiktoken.EncodingForModel(trimmedModelName)
	if encodingError == nil && encoding != nil {
		return modelCounter{encoding: encoding, name: trimmedModelName}, nil
	}

	fallbackEncoding, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError != nil {
		return nil, fmt.Errorf("initialize fallback tokenizer: %w", fallbackError)
	}
	return modelCounter{encoding: fallbackEncoding, name: defaultEncodingName}, nil
}

// modelCounter wraps a tiktoken encoding.
type modelCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// Name returns the encoding or model name backing the counter.
func (counter modelCounter) Name() string {
	return counter.name
}

// CountString returns the token count of the input for the counter's encoding.
func (counter modelCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, fmt.Errorf("tokenizer encoding is not initialized")
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}
