package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"visionmate.app/multimodal-mate/internal/config"
	"visionmate.app/multimodal-mate/internal/extract"
	"visionmate.app/multimodal-mate/internal/logger"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Print the text the upload endpoint would extract from a file",
	Long: `Runs the document extractor on a local PDF, Word document or image and
prints the resulting text. Images are OCR'd with Google Cloud Vision when
GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS is set.`,
	Example: `  server extract report.pdf
  server extract notes.docx --type application/vnd.openxmlformats-officedocument.wordprocessingml.document`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().String("type", "", "Media type to extract as (default: guessed from the extension)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := config.LoadConfig()
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	log := logger.WithComponent("extract")

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}

	mimeType, _ := cmd.Flags().GetString("type")
	if mimeType == "" {
		mimeType = extract.DetectMIME(filepath.Base(path))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var ocr extract.OCR
	if cfg.OCREnabled && cfg.HasGoogleCredentials() {
		vision, err := extract.NewVisionOCR(ctx, googleClientOptions(cfg)...)
		if err != nil {
			return err
		}
		defer vision.Close()
		ocr = vision
	}

	log.Info().Str("file", path).Str("mime_type", mimeType).Msg("Extracting text")
	text, err := extract.NewExtractor(ocr).Extract(ctx, path, mimeType)
	if errors.Is(err, extract.ErrOCRUnavailable) {
		return fmt.Errorf("%w (set GOOGLE_APPLICATION_CREDENTIALS to enable Cloud Vision)", err)
	}
	if err != nil {
		return err
	}
	if text == "" {
		return errors.New("no content could be extracted from the file")
	}

	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}
