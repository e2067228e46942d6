package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"visionmate.app/multimodal-mate/internal/api"
	"visionmate.app/multimodal-mate/internal/config"
	"visionmate.app/multimodal-mate/internal/core"
	"visionmate.app/multimodal-mate/internal/extract"
	"visionmate.app/multimodal-mate/internal/logger"
	"visionmate.app/multimodal-mate/internal/places"
	"visionmate.app/multimodal-mate/internal/speech"
	"visionmate.app/multimodal-mate/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Example: `  # Both services on the port from HTTP_PORT
  server serve

  # Only the audio/image assistant on port 9000
  server serve --mate=false --port 9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("port", "", "Listen port (default: HTTP_PORT or 8000)")
	cmd.Flags().Bool("mate", true, "Serve the document Q&A service at /")
	cmd.Flags().Bool("visionary", true, "Serve the audio/image assistant at /visionary/")
}

// closers are released in reverse order on shutdown.
type closers []io.Closer

func (c closers) closeAll(log zerolog.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil {
			log.Warn().Err(err).Msg("Error releasing resource")
		}
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadConfig()
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	log := logger.WithComponent("server")

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.HTTPPort = port
	}
	services := config.Services{}
	services.Mate, _ = cmd.Flags().GetBool("mate")
	services.Visionary, _ = cmd.Flags().GetBool("visionary")

	warnings, err := cfg.Validate(services)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for _, w := range warnings {
		log.Warn().Msg(w)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var resources closers
	defer func() { resources.closeAll(log) }()

	opts := api.Options{
		MapboxAPIKey:   cfg.MapboxAPIKey,
		UploadMaxBytes: cfg.UploadMaxBytes,
	}

	if services.Mate {
		chat, err := buildChatService(ctx, cfg, &resources)
		if err != nil {
			return err
		}
		opts.Chat = chat
	}

	if services.Visionary {
		assistant, err := buildAssistantService(ctx, cfg, &resources)
		if err != nil {
			return err
		}
		opts.Assistant = assistant

		resolver, err := places.NewResolver(cfg.GooglePlacesAPIKey)
		if err != nil {
			return err
		}
		opts.Places = resolver
	}

	handler, err := api.NewAPIHandler(opts)
	if err != nil {
		return err
	}

	serverAddr := ":" + cfg.HTTPPort
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // multimodal calls plus TTS can take a while
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", serverAddr).
			Bool("mate", services.Mate).
			Bool("visionary", services.Visionary).
			Msg("Starting server. Press Ctrl+C to quit.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen on %s: %w", serverAddr, err)
		}
		return nil
	case <-quit:
	}
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exiting gracefully")
	return nil
}

func googleClientOptions(cfg *config.Config) []option.ClientOption {
	switch {
	case cfg.GoogleCredentialsJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.GoogleCredentialsJSON))}
	case cfg.GoogleCredentialsPath != "":
		return []option.ClientOption{option.WithCredentialsFile(cfg.GoogleCredentialsPath)}
	default:
		return nil
	}
}

func openDocumentStore(cfg *config.Config) (store.DocumentStore, error) {
	if cfg.DocumentStore == config.StoreSQLite {
		return store.NewSQLiteStore(cfg.DocumentStoreDSN)
	}
	return store.NewMemoryStore(), nil
}

func buildLLM(ctx context.Context, cfg *config.Config) (core.LLM, error) {
	if cfg.LLMProvider == config.ProviderOpenAI {
		return core.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	}
	return core.NewLLMService(ctx, cfg.GeminiAPIKey, core.ModelNames{
		Text:       cfg.GeminiTextModel,
		Vision:     cfg.GeminiVisionModel,
		Multimodal: cfg.GeminiMultimodalModel,
	})
}

func buildChatService(ctx context.Context, cfg *config.Config, resources *closers) (*core.ChatService, error) {
	log := logger.WithComponent("server")

	docs, err := openDocumentStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	*resources = append(*resources, docs)

	var ocr extract.OCR
	if cfg.OCREnabled && cfg.HasGoogleCredentials() {
		vision, err := extract.NewVisionOCR(ctx, googleClientOptions(cfg)...)
		if err != nil {
			log.Warn().Err(err).Msg("Cloud Vision unavailable; images will be answered by the vision model")
		} else {
			*resources = append(*resources, vision)
			ocr = vision
		}
	}

	llm, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}
	*resources = append(*resources, llm)

	extractor := extract.NewExtractor(ocr)
	log.Info().
		Str("provider", cfg.LLMProvider).
		Str("store", cfg.DocumentStore).
		Bool("ocr", extractor.OCRAvailable()).
		Msg("Document service ready")
	return core.NewChatService(docs, extractor, llm), nil
}

func buildAssistantService(ctx context.Context, cfg *config.Config, resources *closers) (*core.AssistantService, error) {
	log := logger.WithComponent("server")

	var llm core.LLM
	if cfg.GeminiAPIKey != "" {
		gemini, err := core.NewLLMService(ctx, cfg.GeminiAPIKey, core.ModelNames{
			Text:       cfg.GeminiTextModel,
			Vision:     cfg.GeminiVisionModel,
			Multimodal: cfg.GeminiMultimodalModel,
		})
		if err != nil {
			return nil, err
		}
		*resources = append(*resources, gemini)
		llm = gemini
	}

	tts := speech.NewServiceWithClient(nil)
	if cfg.HasGoogleCredentials() {
		svc, err := speech.NewService(ctx, googleClientOptions(cfg)...)
		if err != nil {
			log.Warn().Err(err).Msg("Text-to-Speech unavailable")
		} else {
			*resources = append(*resources, svc)
			tts = svc
		}
	}

	return core.NewAssistantService(llm, tts), nil
}
