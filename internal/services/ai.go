package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	apperrors "github.com/dodam-health/glucoquest/internal/errors"
)

const (
	geminiModelName     = "gemini-1.5-flash"
	geminiEmbeddingName = "text-embedding-004"
	openaiModelName     = openai.GPT4o
)

// GeminiClient implements the language model and embedder contracts on top
// of the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	timeout time.Duration
}

func NewGeminiClient(ctx context.Context, apiKey string, timeout time.Duration) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, apperrors.NewDependencyError(err, "gemini")
	}
	return &GeminiClient{client: client, timeout: timeout}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, prompt, system string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.GenerativeModel(geminiModelName)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyModelError("gemini completion", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.NewDependencyError(errors.New("no candidates in response"), "gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", apperrors.NewDependencyError(
			fmt.Errorf("non-text part %T in response", resp.Candidates[0].Content.Parts[0]), "gemini")
	}
	return string(text), nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.EmbeddingModel(geminiEmbeddingName)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, classifyModelError("gemini embedding", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, apperrors.NewDependencyError(errors.New("empty embedding in response"), "gemini")
	}
	return resp.Embedding.Values, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// OpenAIClient implements the language model contract on top of the OpenAI
// chat completions API.
type OpenAIClient struct {
	client  *openai.Client
	timeout time.Duration
}

func NewOpenAIClient(apiKey string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{client: openai.NewClient(apiKey), timeout: timeout}
}

func (o *OpenAIClient) Complete(ctx context.Context, prompt, system string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    openaiModelName,
		Messages: messages,
	})
	if err != nil {
		return "", classifyModelError("openai completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewDependencyError(errors.New("no choices in response"), "openai")
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyModelError maps provider errors onto the app error taxonomy so
// callers can distinguish a timed-out call from a hard provider failure.
func classifyModelError(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(operation)
	}
	return apperrors.NewDependencyError(err, operation)
}
