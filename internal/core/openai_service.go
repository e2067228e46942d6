package core

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"visionmate.app/multimodal-mate/internal/apperr"
	"visionmate.app/multimodal-mate/internal/logger"
	"visionmate.app/multimodal-mate/internal/utils"
)

// OpenAIService answers text and image prompts through the chat completions
// API. It does not accept audio.
type OpenAIService struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// NewOpenAIService creates a client for apiKey. baseURL may be empty.
func NewOpenAIService(apiKey, model, baseURL string) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, apperr.New("core.NewOpenAIService", apperr.ErrConfig, "OpenAI API key not set")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    logger.WithComponent("openai"),
	}, nil
}

func (s *OpenAIService) Close() error { return nil }

func (s *OpenAIService) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	const op = "OpenAIService.Generate"

	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}

	var (
		texts   []string
		hasBlob bool
	)
	for _, p := range req.Parts {
		if !p.IsBlob() {
			texts = append(texts, p.Text)
			continue
		}
		if !strings.HasPrefix(p.MIMEType, "image/") {
			return "", apperr.New(op, apperr.ErrUnsupportedFormat, p.MIMEType)
		}
		hasBlob = true
	}

	if !hasBlob {
		msg.Content = strings.Join(texts, "\n")
	} else {
		for _, p := range req.Parts {
			if p.IsBlob() {
				msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    utils.DataURI(p.MIMEType, p.Data),
						Detail: openai.ImageURLDetailAuto,
					},
				})
				continue
			}
			msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: []openai.ChatCompletionMessage{msg},
	})
	if err != nil {
		s.log.Error().Err(err).Str("model", s.model).Msg("OpenAI request failed")
		return "", apperr.Wrap(op, apperr.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", apperr.New(op, apperr.ErrEmptyModelReply, s.model)
	}
	return resp.Choices[0].Message.Content, nil
}
