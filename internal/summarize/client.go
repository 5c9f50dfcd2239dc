// Package summarize reads candidate files and requests natural-language
// summaries from an OpenAI-compatible chat-completions API.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrEmptySummary indicates that the API returned a blank completion. A blank
// completion is retried like a transport failure.
var ErrEmptySummary = errors.New("api returned an empty summary")

const (
	chatCompletionsPath   = "/chat/completions"
	authorizationHeader   = "Authorization"
	bearerPrefix          = "Bearer "
	contentTypeHeader     = "Content-Type"
	jsonContentType       = "application/json"
	defaultRequestTimeout = 120 * time.Second
)

// CompletionRequest carries one summarization call to the API.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// ChatCompleter is the external summarization API consumed as a black box.
type ChatCompleter interface {
	Complete(requestContext context.Context, request CompletionRequest) (string, error)
}

// apiRequest is the request body sent to the chat-completions endpoint. The
// temperature is always sent so an explicit zero reaches the API instead of
// falling back to the server default.
type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// apiResponse is the subset of the chat-completions response the tool reads.
type apiResponse struct {
	Choices []apiChoice `json:"choices"`
}

type apiChoice struct {
	Message apiMessage `json:"message"`
}

// OpenAIClient implements ChatCompleter against any OpenAI-compatible base URL.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenAIClient constructs a client for the provided base URL and credential.
func NewOpenAIClient(baseURL string, apiKey string) *OpenAIClient {
	return &OpenAIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

// Complete sends a non-streaming completion request and returns the trimmed
// content of the first choice.
func (client *OpenAIClient) Complete(requestContext context.Context, request CompletionRequest) (string, error) {
	requestBody := apiRequest{
		Model:       request.Model,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
		Messages: []apiMessage{
			{Role: "system", Content: request.System},
			{Role: "user", Content: request.User},
		},
	}

	encodedBody, marshalError := json.Marshal(requestBody)
	if marshalError != nil {
		return "", fmt.Errorf("building request body: %w", marshalError)
	}

	httpRequest, requestError := http.NewRequestWithContext(requestContext, http.MethodPost, client.baseURL+chatCompletionsPath, bytes.NewReader(encodedBody))
	if requestError != nil {
		return "", fmt.Errorf("creating request: %w", requestError)
	}
	httpRequest.Header.Set(contentTypeHeader, jsonContentType)
	httpRequest.Header.Set(authorizationHeader, bearerPrefix+client.apiKey)

	httpResponse, sendError := client.httpClient.Do(httpRequest)
	if sendError != nil {
		return "", fmt.Errorf("sending request: %w", sendError)
	}
	defer func() {
		_ = httpResponse.Body.Close()
	}()

	if httpResponse.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(httpResponse.Body)
		return "", fmt.Errorf("API error %d: %s", httpResponse.StatusCode, string(responseBody))
	}

	var decodedResponse apiResponse
	if decodeError := json.NewDecoder(httpResponse.Body).Decode(&decodedResponse); decodeError != nil {
		return "", fmt.Errorf("decoding response: %w", decodeError)
	}
	if len(decodedResponse.Choices) == 0 {
		return "", ErrEmptySummary
	}
	return strings.TrimSpace(decodedResponse.Choices[0].Message.Content), nil
}

var _ ChatCompleter = (*OpenAIClient)(nil)
