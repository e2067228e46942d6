package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// extractDocx concatenates the body paragraphs of a Word document, one
// paragraph per line. Table cells are not part of the body paragraphs.
func extractDocx(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat docx: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		p, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		sb.WriteString(p.String())
		sb.WriteString("\n")
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", nil
	}
	return sb.String(), nil
}
