package core

import (
	"context"

	"github.com/rs/zerolog"

	"visionmate.app/multimodal-mate/internal/apperr"
	"visionmate.app/multimodal-mate/internal/logger"
)

const (
	assistantInstruction = `
Please respond to my audio questions by only following these specific rules:

1. If I ask questions like "What is in front of me?", "Can I cross the road?", or "What is this object?", provide a concise description of the given image in the same language as the question, considering safety concerns for blind users.

2. For directional or location-based queries, like "How do I get to the nearest Walmart?", respond with: "Opening directions for {location}" in English, regardless of the language used.

3. For recent information queries like "What's happening in the world?", respond with: "Searching..." and repeat the question in the same language.

4. For general queries, respond in the same language as the question.

5. End each response by specifying the language used.
`
	assistantInputLabel = "Process this audio input and image:"
)

// Speaker turns text into a playable audio data URI.
type Speaker interface {
	Synthesize(ctx context.Context, text, language string) (string, error)
}

type AssistantInput struct {
	Audio     []byte
	AudioMIME string
	Image     []byte
	ImageMIME string
}

type AssistantReply struct {
	Response     string  `json:"response"`
	Audio        string  `json:"audio"`
	IsNavigation bool    `json:"is_navigation"`
	Location     *string `json:"location"`
	Language     string  `json:"-"`
}

// AssistantService answers a spoken question about a camera image and speaks
// the answer back.
type AssistantService struct {
	llm     LLM
	speaker Speaker
	log     zerolog.Logger
}

// NewAssistantService wires the multimodal model and speech engine. llm may
// be nil when no Gemini key is configured.
func NewAssistantService(llm LLM, speaker Speaker) *AssistantService {
	return &AssistantService{
		llm:     llm,
		speaker: speaker,
		log:     logger.WithComponent("assistant"),
	}
}

func (s *AssistantService) ProcessAudioImage(ctx context.Context, in AssistantInput) (*AssistantReply, error) {
	const op = "AssistantService.ProcessAudioImage"

	if len(in.Audio) == 0 || len(in.Image) == 0 {
		return nil, apperr.New(op, apperr.ErrInvalidRequest, "audio and image are both required")
	}
	if s.llm == nil {
		return nil, apperr.New(op, apperr.ErrConfig, "multimodal model not configured")
	}
	log := logger.FromContext(ctx)

	reply, err := s.llm.Generate(ctx, GenerateRequest{
		Role: RoleMultimodal,
		Parts: []Part{
			TextPart(assistantInstruction),
			TextPart(assistantInputLabel),
			BlobPart(in.AudioMIME, in.Audio),
			BlobPart(in.ImageMIME, in.Image),
		},
	})
	if err != nil {
		return nil, apperr.Wrap(op, apperr.ErrUpstream, err)
	}
	if reply == "" {
		return nil, apperr.New(op, apperr.ErrEmptyModelReply, "")
	}

	nav := ParseNavigation(reply)
	content, language := SplitLanguage(reply)
	log.Info().
		Bool("is_navigation", nav.IsNavigation).
		Stringer("match", nav.Match).
		Str("language", language).
		Msg("Assistant reply parsed")

	audio, err := s.Speak(ctx, content, language)
	if err != nil {
		return nil, err
	}

	out := &AssistantReply{
		Response:     reply,
		Audio:        audio,
		IsNavigation: nav.IsNavigation,
		Language:     language,
	}
	if nav.IsNavigation && nav.Location != "" {
		location := nav.Location
		out.Location = &location
	}
	return out, nil
}

// Speak synthesizes text in language.
func (s *AssistantService) Speak(ctx context.Context, text, language string) (string, error) {
	if s.speaker == nil {
		return "", apperr.New("AssistantService.Speak", apperr.ErrConfig, "speech synthesis not configured")
	}
	audio, err := s.speaker.Synthesize(ctx, text, language)
	if err != nil {
		return "", apperr.Wrap("AssistantService.Speak", apperr.ErrSynthesisFailed, err)
	}
	return audio, nil
}
