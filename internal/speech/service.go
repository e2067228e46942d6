// Package speech synthesizes spoken replies with Google Cloud Text-to-Speech.
package speech

import (
	"context"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"visionmate.app/multimodal-mate/internal/apperr"
	"visionmate.app/multimodal-mate/internal/logger"
	"visionmate.app/multimodal-mate/internal/utils"
)

const audioMediaType = "audio/mp3"

// Client is the subset of the Text-to-Speech client used here.
type Client interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
	Close() error
}

type Service struct {
	client Client
	log    zerolog.Logger
}

// NewService dials Text-to-Speech with the given client options.
func NewService(ctx context.Context, opts ...option.ClientOption) (*Service, error) {
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, apperr.Wrap("speech.NewService", apperr.ErrConfig, err)
	}
	return NewServiceWithClient(client), nil
}

// NewServiceWithClient wraps client. A nil client yields a service whose
// every call fails with apperr.ErrConfig.
func NewServiceWithClient(client Client) *Service {
	return &Service{
		client: client,
		log:    logger.WithComponent("speech"),
	}
}

// Synthesize speaks text with the voice for language and returns the MP3 as
// a data URI.
func (s *Service) Synthesize(ctx context.Context, text, language string) (string, error) {
	const op = "speech.Synthesize"

	if s == nil {
		return "", apperr.New(op, apperr.ErrConfig, "text-to-speech not configured")
	}
	if strings.TrimSpace(text) == "" {
		s.log.Warn().Msg("Text input for speech synthesis is empty")
		return "", apperr.New(op, apperr.ErrSynthesisFailed, "empty text")
	}
	if s.client == nil {
		return "", apperr.New(op, apperr.ErrConfig, "text-to-speech credentials not configured")
	}

	voice := VoiceFor(language)
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.Name,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := s.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		s.log.Error().Err(err).Str("voice", voice.Name).Msg("Speech synthesis failed")
		return "", apperr.Wrap(op, apperr.ErrSynthesisFailed, err)
	}
	if len(resp.GetAudioContent()) == 0 {
		return "", apperr.New(op, apperr.ErrSynthesisFailed, "no audio returned")
	}

	s.log.Debug().
		Str("voice", voice.Name).
		Int("bytes", len(resp.GetAudioContent())).
		Msg("Speech synthesized")
	return utils.DataURI(audioMediaType, resp.GetAudioContent()), nil
}

func (s *Service) Close() error {
	if s != nil && s.client != nil {
		return s.client.Close()
	}
	return nil
}
