package api

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

const visionaryBasePath = "/visionary/"

func NewRouter(h *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.AllowAll().Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Document Q&A
	if h.chat != nil {
		r.Get("/", h.MateHomeHandler)
		r.Post("/upload", h.UploadHandler)
		r.Post("/chat", h.ChatHandler)
	}

	// Audio/image assistant
	if h.assistant != nil {
		static, _ := fs.Sub(webFS, "web/static")
		r.Route("/visionary", func(r chi.Router) {
			r.Get("/", h.VisionaryHomeHandler)
			r.Handle("/static/*", http.StripPrefix(visionaryBasePath+"static/", http.FileServer(http.FS(static))))
			r.Post("/process_audio_and_image", h.ProcessAudioImageHandler)
			r.Post("/synthesize_speech", h.SynthesizeSpeechHandler)
			r.Post("/get_nearest_place", h.NearestPlaceHandler)
		})
	}

	return r
}
