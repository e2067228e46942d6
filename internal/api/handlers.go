package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"

	"visionmate.app/multimodal-mate/internal/apperr"
	"visionmate.app/multimodal-mate/internal/core"
	"visionmate.app/multimodal-mate/internal/extract"
	"visionmate.app/multimodal-mate/internal/logger"
	"visionmate.app/multimodal-mate/internal/places"
	"visionmate.app/multimodal-mate/internal/speech"
)

//go:embed web
var webFS embed.FS

const (
	defaultUploadMaxBytes = 32 << 20

	msgUnsupportedType   = "Unsupported file type"
	msgNoContent         = "No content could be extracted from the file."
	msgProcessingFailed  = "Sorry, there was an error processing your request."
	msgSynthesisFailed   = "Failed to synthesize speech"
	msgPlacesKeyMissing  = "Server configuration error: Google Places API key not set"
	msgLocationNotFound  = "Location not found"
	msgLocationFetchFail = "Error fetching location"
)

// DocumentChat is implemented by *core.ChatService.
type DocumentChat interface {
	Upload(ctx context.Context, filename string, data []byte) (*core.UploadResult, error)
	Chat(ctx context.Context, req core.ChatRequest) (*core.ModelReply, error)
}

// Assistant is implemented by *core.AssistantService.
type Assistant interface {
	ProcessAudioImage(ctx context.Context, in core.AssistantInput) (*core.AssistantReply, error)
	Speak(ctx context.Context, text, language string) (string, error)
}

// PlaceResolver is implemented by *places.Resolver.
type PlaceResolver interface {
	Resolve(ctx context.Context, keyword string, lat, lng float64) (places.Coordinates, error)
}

// Options configures the handlers. A nil Chat disables the document routes
// and a nil Assistant disables the /visionary routes.
type Options struct {
	Chat           DocumentChat
	Assistant      Assistant
	Places         PlaceResolver
	MapboxAPIKey   string
	UploadMaxBytes int64
}

type APIHandler struct {
	chat      DocumentChat
	assistant Assistant
	places    PlaceResolver
	mapboxKey string
	maxUpload int64
	pages     *template.Template
}

func NewAPIHandler(opts Options) (*APIHandler, error) {
	pages, err := template.ParseFS(webFS, "web/templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	maxUpload := opts.UploadMaxBytes
	if maxUpload <= 0 {
		maxUpload = defaultUploadMaxBytes
	}
	return &APIHandler{
		chat:      opts.Chat,
		assistant: opts.Assistant,
		places:    opts.Places,
		mapboxKey: opts.MapboxAPIKey,
		maxUpload: maxUpload,
		pages:     pages,
	}, nil
}

type pageData struct {
	Title        string
	MapboxAPIKey string
	BasePath     string
}

func (h *APIHandler) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.ExecuteTemplate(w, name, data); err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Str("template", name).Msg("Failed to render page")
	}
}

func (h *APIHandler) MateHomeHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "mate.html", pageData{Title: "Multimodal Mate"})
}

func (h *APIHandler) VisionaryHomeHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "visionary.html", pageData{
		Title:        "Visionary",
		MapboxAPIKey: h.mapboxKey,
		BasePath:     visionaryBasePath,
	})
}

// readFormFile reads a whole multipart part and reports its declared media
// type, falling back to the one implied by the file name.
func readFormFile(r *http.Request, field string) ([]byte, *multipart.FileHeader, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, "", apperr.Newf("api.readFormFile", apperr.ErrInvalidRequest, "missing form field %q", field)
		}
		return nil, nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, "", err
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == extract.MIMEUnknown {
		mimeType = extract.DetectMIME(header.Filename)
	}
	return data, header, mimeType, nil
}

func (h *APIHandler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return apperr.Wrap("api.parseMultipart", apperr.ErrInvalidRequest, err)
	}
	return nil
}

func (h *APIHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		writeError(w, r, statusFor(err), "Invalid upload: "+err.Error(), err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	data, header, _, err := readFormFile(r, "file")
	if err != nil {
		writeError(w, r, statusFor(err), "No file provided", err)
		return
	}

	res, err := h.chat.Upload(r.Context(), header.Filename, data)
	if err != nil {
		status := statusFor(err)
		switch {
		case errors.Is(err, apperr.ErrUnsupportedFormat):
			writeJSON(w, r, status, map[string]string{"message": msgUnsupportedType})
		case errors.Is(err, apperr.ErrExtractionEmpty):
			writeJSON(w, r, status, map[string]string{"message": msgNoContent})
		default:
			writeError(w, r, status, "An unexpected error occurred: "+err.Error(), err)
		}
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req core.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error(), err)
		return
	}

	reply, err := h.chat.Chat(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		switch {
		case errors.Is(err, apperr.ErrInvalidRequest):
			writeError(w, r, status, "Message and file cannot both be empty", err)
		case errors.Is(err, apperr.ErrUnknownReference):
			writeError(w, r, status, fmt.Sprintf("File %q has not been uploaded", req.File), err)
		default:
			writeError(w, r, status, "An unexpected error occurred: "+err.Error(), err)
		}
		return
	}

	writeJSON(w, r, http.StatusOK, reply)
}

func (h *APIHandler) ProcessAudioImageHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		writeError(w, r, statusFor(err), msgProcessingFailed, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	audio, _, audioMIME, err := readFormFile(r, "audio")
	if err != nil {
		writeError(w, r, statusFor(err), msgProcessingFailed, err)
		return
	}
	image, _, imageMIME, err := readFormFile(r, "image")
	if err != nil {
		writeError(w, r, statusFor(err), msgProcessingFailed, err)
		return
	}

	reply, err := h.assistant.ProcessAudioImage(r.Context(), core.AssistantInput{
		Audio:     audio,
		AudioMIME: audioMIME,
		Image:     image,
		ImageMIME: imageMIME,
	})
	if err != nil {
		writeError(w, r, statusFor(err), msgProcessingFailed, err)
		return
	}

	writeJSON(w, r, http.StatusOK, reply)
}

type synthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (h *APIHandler) SynthesizeSpeechHandler(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error(), err)
		return
	}
	if req.Language == "" {
		req.Language = speech.DefaultLanguage
	}

	audio, err := h.assistant.Speak(r.Context(), req.Text, req.Language)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, msgSynthesisFailed, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"audio": audio})
}

type nearestPlaceRequest struct {
	Keyword   string   `json:"keyword"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type nearestPlaceResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *APIHandler) NearestPlaceHandler(w http.ResponseWriter, r *http.Request) {
	var req nearestPlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error(), err)
		return
	}
	if req.Keyword == "" || req.Latitude == nil || req.Longitude == nil {
		writeError(w, r, http.StatusBadRequest, "keyword, latitude and longitude are required", nil)
		return
	}
	if h.places == nil {
		writeError(w, r, http.StatusInternalServerError, msgPlacesKeyMissing, nil)
		return
	}

	coords, err := h.places.Resolve(r.Context(), req.Keyword, *req.Latitude, *req.Longitude)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrConfig):
			writeError(w, r, http.StatusInternalServerError, msgPlacesKeyMissing, err)
		case errors.Is(err, apperr.ErrNotFound):
			writeError(w, r, http.StatusNotFound, msgLocationNotFound, err)
		case errors.Is(err, apperr.ErrInvalidRequest):
			writeError(w, r, http.StatusBadRequest, err.Error(), err)
		default:
			writeError(w, r, http.StatusInternalServerError, msgLocationFetchFail, err)
		}
		return
	}

	writeJSON(w, r, http.StatusOK, nearestPlaceResponse{Latitude: coords.Lat, Longitude: coords.Lng})
}
