package core

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"visionmate.app/multimodal-mate/internal/apperr"
	"visionmate.app/multimodal-mate/internal/extract"
	"visionmate.app/multimodal-mate/internal/logger"
	"visionmate.app/multimodal-mate/internal/store"
	"visionmate.app/multimodal-mate/internal/utils"
)

const (
	previewLength = 500

	documentPromptFormat = "Based on the following document content, answer this question: %s\n\nDocument content: %s"
	visionPromptFormat   = "Analyze this image and answer the following question: %s"

	imageStoredMessage = "Image file stored for vision processing"
)

// TextExtractor is satisfied by *extract.Extractor.
type TextExtractor interface {
	Extract(ctx context.Context, path, mimeType string) (string, error)
}

// Mode tells which path produced a chat answer.
type Mode string

const (
	ModeDocument Mode = "Document"
	ModeVision   Mode = "Vision"
	ModeDirect   Mode = "Direct"
)

type ChatRequest struct {
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	FileType string `json:"fileType,omitempty"`
}

type ModelReply struct {
	Response string `json:"response"`
	Mode     Mode   `json:"mode"`
}

type UploadResult struct {
	Message        string     `json:"message"`
	Filename       string     `json:"filename"`
	ContentPreview string     `json:"content_preview,omitempty"`
	Kind           store.Kind `json:"-"`
	MIMEType       string     `json:"-"`
}

// ChatService stores uploaded documents and answers questions about them.
type ChatService struct {
	store     store.DocumentStore
	extractor TextExtractor
	llm       LLM
	log       zerolog.Logger
}

func NewChatService(docs store.DocumentStore, extractor TextExtractor, llm LLM) *ChatService {
	return &ChatService{
		store:     docs,
		extractor: extractor,
		llm:       llm,
		log:       logger.WithComponent("chat"),
	}
}

// Upload extracts the text of an uploaded file and stores it under filename.
// Images that cannot be OCR'd are stored as base64 for the vision model.
func (s *ChatService) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	const op = "ChatService.Upload"

	if filename == "" {
		return nil, apperr.New(op, apperr.ErrInvalidRequest, "no file provided")
	}

	mimeType := extract.DetectMIME(filename)
	log := logger.FromContext(ctx).With().
		Str("filename", filename).
		Str("mime_type", mimeType).
		Logger()

	var text string
	err := extract.WithTempFile(filename, data, func(path string) error {
		var err error
		text, err = s.extractor.Extract(ctx, path, mimeType)
		return err
	})

	switch {
	case errors.Is(err, extract.ErrOCRUnavailable):
		doc := store.Document{
			Filename: filename,
			Kind:     store.KindImage,
			Content:  base64.StdEncoding.EncodeToString(data),
			MIMEType: mimeType,
		}
		if err := s.store.Put(ctx, doc); err != nil {
			return nil, fmt.Errorf("store image %q: %w", filename, err)
		}
		log.Info().Int("bytes", len(data)).Msg("Image stored for vision processing")
		return &UploadResult{
			Message:  imageStoredMessage,
			Filename: filename,
			Kind:     store.KindImage,
			MIMEType: mimeType,
		}, nil

	case err != nil:
		log.Warn().Err(err).Msg("Extraction failed")
		return nil, err

	case strings.TrimSpace(text) == "":
		return nil, apperr.New(op, apperr.ErrExtractionEmpty, filename)
	}

	doc := store.Document{
		Filename: filename,
		Kind:     store.KindText,
		Content:  text,
		MIMEType: mimeType,
	}
	if err := s.store.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("store document %q: %w", filename, err)
	}
	log.Info().Int("chars", len(text)).Msg("Document processed and stored")

	return &UploadResult{
		Message:        mimeType + " file processed and stored successfully",
		Filename:       filename,
		ContentPreview: utils.Preview(text, previewLength),
		Kind:           store.KindText,
		MIMEType:       mimeType,
	}, nil
}

// Chat answers req.Message, grounded on the referenced document when
// req.File is set.
func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (*ModelReply, error) {
	const op = "ChatService.Chat"

	if req.Message == "" && req.File == "" {
		return nil, apperr.New(op, apperr.ErrInvalidRequest, "no message or file provided")
	}
	log := logger.FromContext(ctx)

	if req.File == "" {
		log.Debug().Msg("Answering without a document")
		return s.generate(ctx, ModeDirect, GenerateRequest{
			Role:  RoleText,
			Parts: []Part{TextPart(req.Message)},
		})
	}

	doc, ok, err := s.store.Get(ctx, req.File)
	if err != nil {
		return nil, fmt.Errorf("load document %q: %w", req.File, err)
	}
	if !ok {
		return nil, apperr.New(op, apperr.ErrUnknownReference, req.File)
	}

	switch doc.Kind {
	case store.KindImage:
		image, err := base64.StdEncoding.DecodeString(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("decode stored image %q: %w", req.File, err)
		}
		mimeType := req.FileType
		if mimeType == "" {
			mimeType = doc.MIMEType
		}
		log.Debug().Str("file", req.File).Str("mime_type", mimeType).Msg("Answering from image")
		return s.generate(ctx, ModeVision, GenerateRequest{
			Role: RoleVision,
			Parts: []Part{
				TextPart(fmt.Sprintf(visionPromptFormat, req.Message)),
				BlobPart(mimeType, image),
			},
		})

	default:
		log.Debug().Str("file", req.File).Msg("Answering from document text")
		return s.generate(ctx, ModeDocument, GenerateRequest{
			Role:  RoleText,
			Parts: []Part{TextPart(fmt.Sprintf(documentPromptFormat, req.Message, doc.Content))},
		})
	}
}

func (s *ChatService) generate(ctx context.Context, mode Mode, req GenerateRequest) (*ModelReply, error) {
	text, err := s.llm.Generate(ctx, req)
	if err != nil {
		return nil, apperr.Wrap("ChatService.Chat", apperr.ErrUpstream, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperr.New("ChatService.Chat", apperr.ErrEmptyModelReply, string(mode))
	}
	return &ModelReply{Response: text, Mode: mode}, nil
}
