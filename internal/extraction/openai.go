package extraction

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"ofertaspro/internal/flyer"
	"ofertaspro/internal/model"
	"ofertaspro/internal/observability"
)

var ErrEmptyResponse = errors.New("extração sem resposta")

type Extractor interface {
	Extract(ctx context.Context, doc Document) (*model.RawFlyerPayload, error)
}

// OpenAIExtractor pede ao modelo o JSON das ofertas. O limiter segura o ritmo das chamadas
// quando vários encartes são processados em paralelo.
type OpenAIExtractor struct {
	Client  *openai.Client
	Model   string
	Limiter *rate.Limiter
}

func NewOpenAIExtractor(apiKey, model string, rps float64) *OpenAIExtractor {
	return &OpenAIExtractor{
		Client:  openai.NewClient(apiKey),
		Model:   model,
		Limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (e *OpenAIExtractor) Extract(ctx context.Context, doc Document) (*model.RawFlyerPayload, error) {
	if e.Limiter != nil {
		if err := e.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	timer := prometheus.NewTimer(observability.ExtractionDuration)
	resp, err := e.Client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:          e.Model,
			Messages:       buildMessages(doc),
			ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
			Temperature:    0.0,
		},
	)
	timer.ObserveDuration()
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return ParseResponse(resp.Choices[0].Message.Content)
}

func buildMessages(doc Document) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt()},
	}

	if doc.Kind != KindImage {
		return append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: userPrompt(doc),
		})
	}

	dataURL := "data:" + doc.MIME + ";base64," + base64.StdEncoding.EncodeToString(doc.Image)
	return append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: userPrompt(doc)},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL,
					Detail: openai.ImageURLDetailHigh,
				},
			},
		},
	})
}

// ParseResponse decodifica a resposta do modelo, tolerando cercas de markdown.
func ParseResponse(content string) (*model.RawFlyerPayload, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyResponse
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	return flyer.Decode([]byte(strings.TrimSpace(content)))
}
