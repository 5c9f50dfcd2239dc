package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// completionFixture is the summary text returned by the test server.
const completionFixture = "Parses configuration files.\nExposes Load and Merge."

// TestOpenAIClientComplete verifies the request shape sent to the chat-completions endpoint and the trimmed content returned from it.
func TestOpenAIClientComplete(testingHandle *testing.T) {
	var receivedRequest apiRequest
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		if request.URL.Path != chatCompletionsPath {
			testingHandle.Errorf("unexpected path: %s", request.URL.Path)
		}
		if authorization := request.Header.Get(authorizationHeader); authorization != bearerPrefix+"secret" {
			testingHandle.Errorf("unexpected authorization header: %s", authorization)
		}
		if decodeError := json.NewDecoder(request.Body).Decode(&receivedRequest); decodeError != nil {
			testingHandle.Errorf("failed to decode request body: %v", decodeError)
		}
		responseBody := apiResponse{Choices: []apiChoice{{Message: apiMessage{Role: "assistant", Content: "  " + completionFixture + "\n"}}}}
		responseWriter.Header().Set(contentTypeHeader, jsonContentType)
		if encodeError := json.NewEncoder(responseWriter).Encode(responseBody); encodeError != nil {
			testingHandle.Errorf("failed to encode response body: %v", encodeError)
		}
	}))
	defer testServer.Close()

	client := NewOpenAIClient(testServer.URL, "secret")
	summaryText, completeError := client.Complete(context.Background(), CompletionRequest{
		Model:       "gpt-3.5-turbo",
		System:      "system prompt",
		User:        "user prompt",
		MaxTokens:   500,
		Temperature: 0.3,
	})
	if completeError != nil {
		testingHandle.Fatalf("Complete failed: %v", completeError)
	}

	if summaryText != completionFixture {
		testingHandle.Fatalf("unexpected summary: %q", summaryText)
	}
	if receivedRequest.Model != "gpt-3.5-turbo" {
		testingHandle.Fatalf("unexpected model: %q", receivedRequest.Model)
	}
	if receivedRequest.MaxTokens != 500 {
		testingHandle.Fatalf("unexpected max tokens: %d", receivedRequest.MaxTokens)
	}
	if receivedRequest.Temperature != 0.3 {
		testingHandle.Fatalf("unexpected temperature: %v", receivedRequest.Temperature)
	}
	if len(receivedRequest.Messages) != 2 || receivedRequest.Messages[0].Role != "system" || receivedRequest.Messages[1].Role != "user" {
		testingHandle.Fatalf("unexpected messages: %v", receivedRequest.Messages)
	}
}

// TestOpenAIClientCompleteSendsZeroTemperature verifies that a temperature of exactly zero is present in the request body rather than omitted.
func TestOpenAIClientCompleteSendsZeroTemperature(testingHandle *testing.T) {
	var receivedBody []byte
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		bodyBytes, readError := io.ReadAll(request.Body)
		if readError != nil {
			testingHandle.Errorf("failed to read request body: %v", readError)
		}
		receivedBody = bodyBytes
		responseBody := apiResponse{Choices: []apiChoice{{Message: apiMessage{Role: "assistant", Content: "summary"}}}}
		responseWriter.Header().Set(contentTypeHeader, jsonContentType)
		if encodeError := json.NewEncoder(responseWriter).Encode(responseBody); encodeError != nil {
			testingHandle.Errorf("failed to encode response body: %v", encodeError)
		}
	}))
	defer testServer.Close()

	client := NewOpenAIClient(testServer.URL, "secret")
	_, completeError := client.Complete(context.Background(), CompletionRequest{Model: "gpt-3.5-turbo", Temperature: 0})
	if completeError != nil {
		testingHandle.Fatalf("Complete failed: %v", completeError)
	}

	if !strings.Contains(string(receivedBody), `"temperature":0`) {
		testingHandle.Fatalf("expected zero temperature in request body, got %s", receivedBody)
	}
}

// TestOpenAIClientCompleteErrorStatus verifies that a non-200 response surfaces as an error carrying the response body.
func TestOpenAIClientCompleteErrorStatus(testingHandle *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		http.Error(responseWriter, "rate limited", http.StatusTooManyRequests)
	}))
	defer testServer.Close()

	client := NewOpenAIClient(testServer.URL, "secret")
	_, completeError := client.Complete(context.Background(), CompletionRequest{Model: "gpt-3.5-turbo"})
	if completeError == nil {
		testingHandle.Fatalf("expected an error for a non-200 response")
	}
	if !strings.Contains(completeError.Error(), "429") || !strings.Contains(completeError.Error(), "rate limited") {
		testingHandle.Fatalf("unexpected error message: %v", completeError)
	}
}

// TestOpenAIClientCompleteNoChoices verifies that a response without choices is reported as an empty summary.
func TestOpenAIClientCompleteNoChoices(testingHandle *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.Header().Set(contentTypeHeader, jsonContentType)
		_, _ = responseWriter.Write([]byte(`{"choices":[]}`))
	}))
	defer testServer.Close()

	client := NewOpenAIClient(testServer.URL, "secret")
	_, completeError := client.Complete(context.Background(), CompletionRequest{Model: "gpt-3.5-turbo"})
	if !errors.Is(completeError, ErrEmptySummary) {
		testingHandle.Fatalf("expected ErrEmptySummary, got %v", completeError)
	}
}
