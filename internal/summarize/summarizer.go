package summarize

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/temirov/sumtree/internal/tokenizer"
	"github.com/temirov/sumtree/internal/traverse"
	"github.com/temirov/sumtree/internal/tree"
)

const (
	// systemPrompt frames every summarization request.
	systemPrompt = "You are a professional code analyst who writes concise code summaries."

	// userPromptFormat embeds the file path and full content of one candidate.
	userPromptFormat = `Generate a concise summary for the following code file. The summary should cover:
1. The file's primary purpose
2. Core types and functions
3. Notable functionality

File path: %s
File content:
%s`

	processingFileMessage     = "processing file"
	fileSkippedReadMessage    = "file skipped: unreadable content"
	fileSkippedSizeMessage    = "file skipped: prompt exceeds token limit"
	fileSkippedRetriesMessage = "file skipped: summarization failed after retries"
	promptTokensMessage       = "prompt token count"
)

// Summarizer drives the sequential per-file summarization loop. Files are
// processed strictly one at a time; retries for one file block progress on all
// others.
type Summarizer struct {
	Completer        ChatCompleter
	Model            string
	Temperature      float64
	MaxTokens        int
	PromptTokenLimit int
	Retry            RetryPolicy
	Limiter          *rate.Limiter
	TokenCounter     tokenizer.Counter
	LogTokenCounts   bool
	Logger           *zap.Logger
}

// Run summarizes every candidate file and returns the insertion-ordered flat
// mapping of relative path to summary text. Every per-file failure is logged
// and contained: an unreadable file, an oversized prompt, or an exhausted
// retry budget skips that file and the run continues.
func (summarizer *Summarizer) Run(runContext context.Context, candidateFiles []traverse.CandidateFile) *tree.FlatMap {
	flatMapping := tree.NewFlatMap()

	for _, candidateFile := range candidateFiles {
		summarizer.Logger.Info(processingFileMessage, zap.String("path", candidateFile.RelativePath))

		fileContent, readError := readTextFile(candidateFile.AbsolutePath)
		if readError != nil {
			summarizer.Logger.Warn(fileSkippedReadMessage, zap.String("path", candidateFile.RelativePath), zap.Error(readError))
			continue
		}

		promptText := fmt.Sprintf(userPromptFormat, candidateFile.RelativePath, fileContent)
		if !summarizer.promptWithinBudget(candidateFile.RelativePath, promptText) {
			continue
		}

		summaryText, summarizeError := summarizer.summarizeWithRetry(runContext, promptText)
		if summarizeError != nil {
			summarizer.Logger.Warn(fileSkippedRetriesMessage, zap.String("path", candidateFile.RelativePath), zap.Error(summarizeError))
			continue
		}

		flatMapping.Add(candidateFile.RelativePath, summaryText)
	}

	return flatMapping
}

// promptWithinBudget counts the prompt tokens when a counter is configured and
// reports whether the prompt fits the configured limit. Counting failures do
// not skip the file. When token logging is requested the count is emitted at
// Info level so it is visible through the application logger.
func (summarizer *Summarizer) promptWithinBudget(relativePath string, promptText string) bool {
	if summarizer.TokenCounter == nil {
		return true
	}
	promptTokens, countError := summarizer.TokenCounter.CountString(promptText)
	if countError != nil {
		return true
	}
	if summarizer.LogTokenCounts {
		summarizer.Logger.Info(promptTokensMessage,
			zap.String("path", relativePath),
			zap.Int("tokens", promptTokens),
			zap.String("tokenizer", summarizer.TokenCounter.Name()))
	}
	if summarizer.PromptTokenLimit > 0 && promptTokens > summarizer.PromptTokenLimit {
		summarizer.Logger.Warn(fileSkippedSizeMessage, zap.String("path", relativePath), zap.Int("tokens", promptTokens), zap.Int("limit", summarizer.PromptTokenLimit))
		return false
	}
	return true
}

// summarizeWithRetry requests a summary under the retry policy. Each attempt
// consumes a rate-limiter token when a limiter is configured. A blank
// completion counts as a failed attempt.
func (summarizer *Summarizer) summarizeWithRetry(runContext context.Context, promptText string) (string, error) {
	var summaryText string
	attemptError := summarizer.Retry.Do(func() error {
		if summarizer.Limiter != nil {
			if waitError := summarizer.Limiter.Wait(runContext); waitError != nil {
				return waitError
			}
		}
		completionText, completionError := summarizer.Completer.Complete(runContext, CompletionRequest{
			Model:       summarizer.Model,
			System:      systemPrompt,
			User:        promptText,
			MaxTokens:   summarizer.MaxTokens,
			Temperature: summarizer.Temperature,
		})
		if completionError != nil {
			return completionError
		}
		if completionText == "" {
			return ErrEmptySummary
		}
		summaryText = completionText
		return nil
	})
	if attemptError != nil {
		return "", attemptError
	}
	return summaryText, nil
}

// readTextFile reads the file as UTF-8 text. Content that is not valid UTF-8
// is treated as a read failure so the file is skipped, not sent to the API.
func readTextFile(absoluteFilePath string) (string, error) {
	// #nosec G304
	fileBytes, readError := os.ReadFile(absoluteFilePath)
	if readError != nil {
		return "", readError
	}
	if !utf8.Valid(fileBytes) {
		return "", fmt.Errorf("file %s is not valid UTF-8 text", absoluteFilePath)
	}
	return string(fileBytes), nil
}
