package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/status"

	"visionmate.app/multimodal-mate/internal/apperr"
)

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) DetectText(_ context.Context, _ []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeAnnotator struct {
	resp *visionpb.BatchAnnotateImagesResponse
	err  error
	req  *visionpb.BatchAnnotateImagesRequest
}

func (f *fakeAnnotator) BatchAnnotateImages(_ context.Context, req *visionpb.BatchAnnotateImagesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	f.req = req
	return f.resp, f.err
}

func (f *fakeAnnotator) Close() error { return nil }

const docxTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>%s</w:body>
</w:document>`

func writeDocx(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(fmt.Sprintf(docxTemplate, body)))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return path
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestExtractDocxParagraphs(t *testing.T) {
	path := writeDocx(t,
		`<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve"> world</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>line</w:t></w:r></w:p>`)

	text, err := NewExtractor(nil).Extract(context.Background(), path, MIMEDocx)
	require.NoError(t, err)
	assert.Equal(t, "Hello world\nSecond\tline\n", text)
}

func TestExtractDocxSkipsTables(t *testing.T) {
	path := writeDocx(t,
		`<w:p><w:r><w:t>Before</w:t></w:r></w:p>`+
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`+
			`<w:p><w:r><w:t>After</w:t></w:r></w:p>`)

	text, err := NewExtractor(nil).Extract(context.Background(), path, MIMEDocx)
	require.NoError(t, err)
	assert.Equal(t, "Before\nAfter\n", text)
}

func TestExtractDocxWithoutTextIsEmpty(t *testing.T) {
	path := writeDocx(t, `<w:p></w:p><w:p><w:r><w:t>   </w:t></w:r></w:p>`)

	text, err := NewExtractor(nil).Extract(context.Background(), path, MIMEDocx)
	require.NoError(t, err)
	assert.Empty(t, text)
}

// writePDF builds a single-page PDF whose page content is the given stream.
func writePDF(t *testing.T, content string) string {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return writeFile(t, "doc.pdf", buf.Bytes())
}

func TestExtractPDF(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"page text", "BT /F1 24 Tf 72 720 Td (Hello PDF) Tj ET", "Hello PDF\n"},
		{"blank page", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePDF(t, tt.content)

			text, err := NewExtractor(nil).Extract(context.Background(), path, MIMEPDF)
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("not a pdf at all"))

	_, err := NewExtractor(nil).Extract(context.Background(), path, MIMEPDF)
	assert.Error(t, err)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("plain"))

	_, err := NewExtractor(nil).Extract(context.Background(), path, "text/plain")
	assert.ErrorIs(t, err, apperr.ErrUnsupportedFormat)
}

func TestExtractImage(t *testing.T) {
	path := writeFile(t, "scan.png", []byte{0x89, 'P', 'N', 'G'})

	t.Run("without OCR engine", func(t *testing.T) {
		ex := NewExtractor(nil)
		assert.False(t, ex.OCRAvailable())
		_, err := ex.Extract(context.Background(), path, "image/png")
		assert.ErrorIs(t, err, ErrOCRUnavailable)
	})

	t.Run("with OCR engine", func(t *testing.T) {
		ocr := &fakeOCR{text: "STOP"}
		ex := NewExtractor(ocr)
		assert.True(t, ex.OCRAvailable())
		text, err := ex.Extract(context.Background(), path, "image/png")
		require.NoError(t, err)
		assert.Equal(t, "STOP", text)
		assert.Equal(t, 1, ocr.calls)
	})

	t.Run("no text in image", func(t *testing.T) {
		text, err := NewExtractor(&fakeOCR{}).Extract(context.Background(), path, "image/jpeg")
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("OCR failure", func(t *testing.T) {
		_, err := NewExtractor(&fakeOCR{err: errors.New("quota")}).Extract(context.Background(), path, "image/png")
		assert.ErrorIs(t, err, apperr.ErrUpstream)
	})
}

func TestDetectMIME(t *testing.T) {
	tests := map[string]string{
		"report.pdf":   MIMEPDF,
		"Report.PDF":   MIMEPDF,
		"letter.docx":  MIMEDocx,
		"photo.png":    "image/png",
		"photo.jpg":    "image/jpeg",
		"README":       MIMEUnknown,
		"archive.zzz9": MIMEUnknown,
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, DetectMIME(name))
		})
	}
}

func TestWithTempFileAlwaysRemoves(t *testing.T) {
	var seen string
	err := WithTempFile("../../etc/report.PDF", []byte("data"), func(path string) error {
		seen = path
		assert.Equal(t, ".pdf", filepath.Ext(path))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "data", string(data))
		return nil
	})
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Dir(seen))

	boom := errors.New("boom")
	err = WithTempFile("x.png", []byte("img"), func(path string) error {
		seen = path
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoFileExists(t, seen)
	assert.NoDirExists(t, filepath.Dir(seen))
}

func TestVisionOCRDetectText(t *testing.T) {
	ctx := context.Background()

	t.Run("full text annotation", func(t *testing.T) {
		fa := &fakeAnnotator{resp: &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{{
				FullTextAnnotation: &visionpb.TextAnnotation{Text: "EXIT\n"},
			}},
		}}
		text, err := NewVisionOCRWithClient(fa).DetectText(ctx, []byte("img"))
		require.NoError(t, err)
		assert.Equal(t, "EXIT\n", text)
		require.Len(t, fa.req.GetRequests(), 1)
		assert.Equal(t, []byte("img"), fa.req.GetRequests()[0].GetImage().GetContent())
		assert.Equal(t, visionpb.Feature_TEXT_DETECTION, fa.req.GetRequests()[0].GetFeatures()[0].GetType())
	})

	t.Run("no text", func(t *testing.T) {
		fa := &fakeAnnotator{resp: &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{{}},
		}}
		text, err := NewVisionOCRWithClient(fa).DetectText(ctx, []byte("img"))
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("per-image error", func(t *testing.T) {
		fa := &fakeAnnotator{resp: &visionpb.BatchAnnotateImagesResponse{
			Responses: []*visionpb.AnnotateImageResponse{{Error: &status.Status{Message: "bad image"}}},
		}}
		_, err := NewVisionOCRWithClient(fa).DetectText(ctx, []byte("img"))
		assert.ErrorContains(t, err, "bad image")
	})
}
