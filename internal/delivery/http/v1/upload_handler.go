package v1

import (
	"net/http"
	"path/filepath"
	"strings"

	"daliah-backend/pkg/logger"
	"daliah-backend/pkg/storage"
	"daliah-backend/pkg/utils"
)

var (
	allowedMimeTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
	}
	allowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
	}
)

type UploadHandler struct {
	storage       *storage.R2Storage
	maxUploadSize int64
}

func NewUploadHandler(s *storage.R2Storage, maxUploadSizeMB int64) *UploadHandler {
	return &UploadHandler{
		storage:       s,
		maxUploadSize: maxUploadSizeMB << 20, // Convert MB to bytes
	}
}

// UploadProof accepts a proof photo, normalizes it and stores it
// content-addressed. The response hash is what carriers and buyers attach
// to temperature logs, pickup/delivery records and damage reports.
func (h *UploadHandler) UploadProof(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())

	// 1. Parse Multipart Form with configurable limit
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		log.Warn().Err(err).Msg("upload: ParseMultipartForm failed")
		utils.WriteError(w, http.StatusBadRequest, "File too large or invalid format")
		return
	}

	// 2. Get File
	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn().Err(err).Msg("upload: FormFile failed")
		utils.WriteError(w, http.StatusBadRequest, "Invalid file")
		return
	}
	defer file.Close()

	// 3. Validate MIME Type
	contentType := header.Header.Get("Content-Type")
	if !allowedMimeTypes[contentType] {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file type. Allowed: JPEG, PNG, WebP")
		return
	}

	// 4. Validate File Extension
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file extension")
		return
	}

	// 5. Process Image (Resize + WebP)
	processedData, newContentType, err := utils.ProcessProofImage(file)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("upload: image processing failed")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to process image")
		return
	}

	// 6. Upload Processed Buffer to R2
	hash, err := h.storage.UploadProof(r.Context(), processedData, newContentType)
	if err != nil {
		log.Error().Err(err).Msg("upload: storage put failed")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"hash": hash,
		"url":  h.storage.ProofURL(hash),
	})
}
