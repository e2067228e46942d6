package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"visionmate.app/multimodal-mate/internal/apperr"
	"visionmate.app/multimodal-mate/internal/logger"
)

// Role selects which configured model answers a request.
type Role string

const (
	RoleText       Role = "text"
	RoleVision     Role = "vision"
	RoleMultimodal Role = "multimodal"
)

const defaultModelName = "gemini-1.5-flash"

// Part is one piece of a prompt: either text or an inline blob.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

func TextPart(text string) Part { return Part{Text: text} }

func BlobPart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// IsBlob reports whether p carries binary data rather than text.
func (p Part) IsBlob() bool { return p.Data != nil }

type GenerateRequest struct {
	Role  Role
	Parts []Part
}

// LLM is a generative model backend.
type LLM interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Close() error
}

// contentGenerator is satisfied by *genai.GenerativeModel.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// ModelNames maps each role to a Gemini model name. Empty names fall back to
// gemini-1.5-flash.
type ModelNames struct {
	Text       string
	Vision     string
	Multimodal string
}

func (n ModelNames) forRole(role Role) string {
	var name string
	switch role {
	case RoleVision:
		name = n.Vision
	case RoleMultimodal:
		name = n.Multimodal
	default:
		name = n.Text
	}
	if name == "" {
		return defaultModelName
	}
	return name
}

type LLMService struct {
	client   *genai.Client
	models   ModelNames
	newModel func(name string) contentGenerator
	log      zerolog.Logger
}

func NewLLMService(ctx context.Context, apiKey string, models ModelNames) (*LLMService, error) {
	if apiKey == "" {
		return nil, apperr.New("core.NewLLMService", apperr.ErrConfig, "Gemini API key not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, apperr.Wrap("core.NewLLMService", apperr.ErrConfig, fmt.Errorf("create GenAI client: %w", err))
	}

	s := &LLMService{
		client: client,
		models: models,
		log:    logger.WithComponent("gemini"),
	}
	s.newModel = func(name string) contentGenerator {
		return client.GenerativeModel(name)
	}
	return s, nil
}

func (s *LLMService) Close() error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Close(); err != nil {
		s.log.Error().Err(err).Msg("Error closing GenAI client")
		return err
	}
	s.log.Info().Msg("GenAI client closed")
	return nil
}

func (s *LLMService) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	const op = "LLMService.Generate"

	name := s.models.forRole(req.Role)
	parts := make([]genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.IsBlob() {
			parts = append(parts, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
		} else {
			parts = append(parts, genai.Text(p.Text))
		}
	}

	resp, err := s.newModel(name).GenerateContent(ctx, parts...)
	if err != nil {
		s.log.Error().Err(err).Str("model", name).Msg("Gemini request failed")
		return "", apperr.Wrap(op, apperr.ErrUpstream, err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		s.log.Warn().Str("model", name).Msg("Gemini response was empty or had no text parts")
		return "", apperr.New(op, apperr.ErrEmptyModelReply, name)
	}
	return text, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
