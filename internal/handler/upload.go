package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/bazaar/internal/storage"
)

// UploadHandler is the standalone asset gateway: it stores a single file
// and answers with the generated name and a /static/ retrieval path.
type UploadHandler struct {
	assets storage.ObjectStore
	logger *slog.Logger
}

func NewUploadHandler(assets storage.ObjectStore, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{assets: assets, logger: logger}
}

// HandleUpload stores one file.
//
// HTTP: POST /upload
// FORM: single file under "image"
//
// Missing file answers exactly {"error":"No file uploaded"} with 400 — a
// kept client contract, distinct from the API's usual error shape.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	obj, err := h.assets.Save(r.Context(), "image", header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Error("upload failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	h.logger.Info("file uploaded",
		slog.String("filename", obj.Name),
		slog.Int64("size", obj.Size),
	)
	writeJSON(w, http.StatusCreated, obj)
}
