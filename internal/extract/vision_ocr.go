package extract

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"visionmate.app/multimodal-mate/internal/apperr"
)

// ImageAnnotator is the subset of the Vision client used for OCR.
type ImageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// VisionOCR implements OCR with Google Cloud Vision text detection.
type VisionOCR struct {
	client ImageAnnotator
}

// NewVisionOCR dials the Vision API with the given client options
// (typically credentials).
func NewVisionOCR(ctx context.Context, opts ...option.ClientOption) (*VisionOCR, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, apperr.Wrap("NewVisionOCR", apperr.ErrConfig, err)
	}
	return &VisionOCR{client: client}, nil
}

// NewVisionOCRWithClient wraps an existing client (used in tests).
func NewVisionOCRWithClient(client ImageAnnotator) *VisionOCR {
	return &VisionOCR{client: client}
}

// DetectText returns the full text annotation of the image, or "" when the
// image contains no text.
func (v *VisionOCR) DetectText(ctx context.Context, image []byte) (string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image:    &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{{Type: visionpb.Feature_TEXT_DETECTION}},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision text detection: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", nil
	}

	res := resp.GetResponses()[0]
	if res.GetError() != nil {
		return "", fmt.Errorf("vision text detection: %s", res.GetError().GetMessage())
	}
	if res.GetFullTextAnnotation() != nil {
		return res.GetFullTextAnnotation().GetText(), nil
	}
	if len(res.GetTextAnnotations()) > 0 {
		return res.GetTextAnnotations()[0].GetDescription(), nil
	}
	return "", nil
}

// Close closes the underlying Vision client.
func (v *VisionOCR) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
