package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ilkin0/metadata-api/internal/api/types"
	"github.com/ilkin0/metadata-api/internal/imageinfo"
	"github.com/ilkin0/metadata-api/internal/logger"
	"github.com/ilkin0/metadata-api/internal/service"
	"github.com/ilkin0/metadata-api/internal/utils"
)

const (
	ServiceName    = "metadata-api"
	ServiceVersion = "1.0.0"

	uploadField = "file"

	// multipartOverhead covers boundaries and part headers on top of the file.
	multipartOverhead = 64 << 10
)

type MetadataHandler struct {
	metadataService *service.MetadataService
	maxUploadBytes  int64
}

func NewMetadataHandler(metadataService *service.MetadataService, maxUploadBytes int64) *MetadataHandler {
	return &MetadataHandler{
		metadataService: metadataService,
		maxUploadBytes:  maxUploadBytes,
	}
}

func (h *MetadataHandler) Root(w http.ResponseWriter, r *http.Request) {
	utils.Ok(w, types.ServiceInfoResponse{
		Service: ServiceName,
		Status:  "running",
		Version: ServiceVersion,
		Endpoints: map[string]string{
			"extract_metadata": "POST /extract-metadata",
			"health":           "GET /health",
		},
	})
}

func (h *MetadataHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.Ok(w, types.HealthResponse{
		Status:  "healthy",
		Service: ServiceName,
	})
}

func (h *MetadataHandler) ExtractMetadata(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		log.Warn("rejected upload", slog.String("error", err.Error()))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Error(w, http.StatusBadRequest, "File too large")
			return
		}
		utils.Error(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		log.Warn("upload field missing", slog.String("error", err.Error()))
		utils.Error(w, http.StatusBadRequest, "File field \"file\" is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		log.Warn("rejected upload",
			slog.String("filename", header.Filename),
			slog.Int64("size", header.Size),
		)
		utils.Error(w, http.StatusBadRequest, "File too large")
		return
	}

	if err := h.metadataService.ValidateFilename(header.Filename); err != nil {
		log.Warn("rejected filename",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read upload",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		utils.Error(w, http.StatusInternalServerError, "Failed to process image: "+err.Error())
		return
	}

	resp, err := h.metadataService.ExtractMetadata(r.Context(), header.Filename, data)
	if err != nil {
		status := mapServiceErrorToHTTP(err)
		log.Error("metadata extraction failed",
			slog.String("filename", header.Filename),
			slog.Int("size", len(data)),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
		if status == http.StatusBadRequest {
			utils.Error(w, status, err.Error())
			return
		}
		utils.Error(w, status, "Failed to process image: "+err.Error())
		return
	}

	log.Info("metadata extracted",
		slog.String("filename", resp.Filename),
		slog.String("format", resp.Format),
		slog.Int("width_px", resp.WidthPx),
		slog.Int("height_px", resp.HeightPx),
		slog.Int("size", resp.FileSizeBytes),
	)
	utils.Ok(w, resp)
}

func mapServiceErrorToHTTP(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidExtension):
		return http.StatusBadRequest
	case errors.Is(err, imageinfo.ErrDecode):
		// Unreadable images stay a 500 for existing clients; moving them to
		// 400 is a change to this line only.
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
