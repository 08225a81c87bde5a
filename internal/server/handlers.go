package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/framestrip-api/internal/staging"
	"github.com/maauso/framestrip-api/internal/storage"
	"github.com/maauso/framestrip-api/internal/thumbnail"
)

const (
	// videoField is the multipart field carrying the source video.
	videoField = "video"
	// imageField is the multipart field carrying a profile picture.
	imageField = "image"
	// multipartMemory is how much of a multipart body is kept in memory
	// before the rest spills to disk.
	multipartMemory = 32 << 20
	// DefaultMaxUploadBytes is used when no upload limit is configured.
	DefaultMaxUploadBytes = 512 << 20
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service        *thumbnail.Service
	spool          *staging.Spool
	validator      *validator.Validate
	logger         *slog.Logger
	maxUploadBytes int64
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithMaxUploadBytes limits the size of multipart request bodies.
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handlers) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *thumbnail.Service, spool *staging.Spool, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:        service,
		spool:          spool,
		validator:      validator.New(),
		logger:         logger,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// ExtractFrames handles POST /extract-frames requests.
func (h *Handlers) ExtractFrames(w http.ResponseWriter, r *http.Request) {
	source, ok := h.receiveSource(w, r, videoField)
	if !ok {
		return
	}
	defer h.discard(source)

	var form ExtractFramesForm
	var err error
	if form.FrameNumber, err = formInt(r, "frameNumber"); err != nil {
		h.rejectForm(w, err)
		return
	}
	if form.Width, err = formInt(r, "width"); err != nil {
		h.rejectForm(w, err)
		return
	}
	form.Format = r.FormValue("format")

	if err := h.validator.Struct(form); err != nil {
		h.rejectForm(w, err)
		return
	}

	result, err := h.service.ExtractFrames(r.Context(), thumbnail.FramesRequest{
		SourcePath: source,
		FrameCount: form.FrameNumber,
		Width:      form.Width,
		Format:     thumbnail.ImageFormat(form.Format),
	})
	if err != nil {
		h.writeServiceError(w, "extract frames", err)
		return
	}

	h.logger.Info("frames extracted",
		slog.String("run_id", result.RunID),
		slog.Int("frame_count", len(result.URLs)),
	)

	writeJSON(w, http.StatusOK, FramesResponse{
		RunID:  result.RunID,
		Frames: result.URLs,
	})
}

// CreateThumbnail handles POST /thumbnails requests.
func (h *Handlers) CreateThumbnail(w http.ResponseWriter, r *http.Request) {
	source, ok := h.receiveSource(w, r, videoField)
	if !ok {
		return
	}
	defer h.discard(source)

	var form ThumbnailForm
	var err error
	if form.Width, err = formInt(r, "width"); err != nil {
		h.rejectForm(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		h.rejectForm(w, err)
		return
	}

	result, err := h.service.CreateThumbnail(r.Context(), thumbnail.ThumbnailRequest{
		SourcePath: source,
		Width:      form.Width,
	})
	if err != nil {
		h.writeServiceError(w, "create thumbnail", err)
		return
	}

	writeJSON(w, http.StatusOK, ThumbnailResponse{
		RunID: result.RunID,
		URL:   result.URL,
	})
}

// CreateVideo handles POST /videos requests.
func (h *Handlers) CreateVideo(w http.ResponseWriter, r *http.Request) {
	source, ok := h.receiveSource(w, r, videoField)
	if !ok {
		return
	}
	defer h.discard(source)

	result, err := h.service.Transcode(r.Context(), thumbnail.TranscodeRequest{SourcePath: source})
	if err != nil {
		h.writeServiceError(w, "transcode video", err)
		return
	}

	writeJSON(w, http.StatusOK, VideoResponse{
		RunID:        result.RunID,
		VideoURL:     result.VideoURL,
		ThumbnailURL: result.ThumbnailURL,
		AspectRatio:  result.AspectRatio,
	})
}

// UploadProfilePicture handles POST /profile-pictures requests.
func (h *Handlers) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	source, ok := h.receiveSource(w, r, imageField)
	if !ok {
		return
	}
	defer h.discard(source)

	form := ProfilePictureForm{Username: r.FormValue("username")}
	if err := h.validator.Struct(form); err != nil {
		h.rejectForm(w, err)
		return
	}

	result, err := h.service.UploadProfilePicture(r.Context(), thumbnail.ProfilePictureRequest{
		SourcePath: source,
		Username:   form.Username,
	})
	if err != nil {
		h.writeServiceError(w, "upload profile picture", err)
		return
	}

	writeJSON(w, http.StatusCreated, ProfilePictureResponse{
		RunID:        result.RunID,
		URL:          result.URL,
		ThumbnailURL: result.ThumbnailURL,
	})
}

// DeleteArtifact handles DELETE /artifacts?url={public URL} requests.
func (h *Handlers) DeleteArtifact(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url query parameter is required", "MISSING_URL")
		return
	}

	if err := h.service.DeleteArtifact(r.Context(), url); err != nil {
		h.writeServiceError(w, "delete artifact", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRun handles GET /runs/{id} requests.
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if runID == "" {
		writeError(w, http.StatusBadRequest, "run ID is required", "MISSING_RUN_ID")
		return
	}

	run, err := h.service.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, thumbnail.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found", "RUN_NOT_FOUND")
			return
		}
		h.logger.Error("failed to get run",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get run", "RUN_FETCH_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, toRunResponse(run))
}

// receiveSource parses the multipart body and spools the file in field.
// On failure the error response has already been written.
func (h *Handlers) receiveSource(w http.ResponseWriter, r *http.Request, field string) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), "PAYLOAD_TOO_LARGE")
			return "", false
		}
		h.logger.Warn("failed to parse multipart form",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid multipart body", "INVALID_MULTIPART")
		return "", false
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(field)
	if err != nil {
		writeError(w, http.StatusBadRequest, field+" file is required", "MISSING_"+strings.ToUpper(field))
		return "", false
	}
	defer func() { _ = file.Close() }()

	path, err := h.spool.Save(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("failed to spool upload",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to store upload", "UPLOAD_SPOOL_FAILED")
		return "", false
	}

	return path, true
}

// discard removes a spooled source once its request is finished.
func (h *Handlers) discard(path string) {
	if err := h.spool.Remove(path); err != nil {
		h.logger.Warn("failed to remove spooled source",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

func (h *Handlers) rejectForm(w http.ResponseWriter, err error) {
	h.logger.Warn("request validation failed",
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
}

// writeServiceError maps pipeline errors to HTTP responses.
func (h *Handlers) writeServiceError(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	attrs := []any{
		slog.String("op", op),
		slog.String("code", code),
		slog.String("error", err.Error()),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("pipeline run failed", attrs...)
	} else {
		h.logger.Warn("pipeline run rejected", attrs...)
	}
	writeError(w, status, err.Error(), code)
}

// classify returns the HTTP status and error code for a pipeline error.
// Cancellation wins over stage errors: a decoder killed by a cancelled
// context also surfaces as an ExtractionError.
func classify(err error) (int, string) {
	var (
		validationErr *thumbnail.ValidationError
		probeErr      *thumbnail.ProbeError
		stagingErr    *thumbnail.StagingError
		extractionErr *thumbnail.ExtractionError
		uploadErr     *thumbnail.UploadError
		transcodeErr  *thumbnail.TranscodeError
		resizeErr     *thumbnail.ResizeError
		deleteErr     *thumbnail.DeleteError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "CANCELLED"
	case errors.As(err, &probeErr):
		return http.StatusUnprocessableEntity, "PROBE_FAILED"
	case errors.As(err, &stagingErr):
		return http.StatusInternalServerError, "STAGING_FAILED"
	case errors.As(err, &extractionErr):
		return http.StatusInternalServerError, "EXTRACTION_FAILED"
	case errors.As(err, &uploadErr):
		return http.StatusBadGateway, "UPLOAD_FAILED"
	case errors.As(err, &transcodeErr):
		return http.StatusInternalServerError, "TRANSCODE_FAILED"
	case errors.Is(err, thumbnail.ErrTranscodeUnavailable):
		return http.StatusNotImplemented, "TRANSCODE_UNAVAILABLE"
	case errors.As(err, &resizeErr):
		return http.StatusUnprocessableEntity, "RESIZE_FAILED"
	case errors.Is(err, thumbnail.ErrResizeUnavailable):
		return http.StatusNotImplemented, "RESIZE_UNAVAILABLE"
	case errors.Is(err, storage.ErrForeignURL), errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest, "FOREIGN_URL"
	case errors.As(err, &deleteErr):
		return http.StatusBadGateway, "DELETE_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// formInt reads an optional integer form field. A missing field is zero.
func formInt(r *http.Request, key string) (int, error) {
	raw := r.FormValue(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}

func toRunResponse(run *thumbnail.Run) RunResponse {
	resp := RunResponse{
		ID:           run.ID,
		Kind:         string(run.Kind),
		State:        string(run.State),
		FrameCount:   run.FrameCount,
		FramesDone:   run.FramesDone,
		CurrentFrame: run.CurrentFrame,
		Error:        run.Error,
		URLs:         run.URLs,
		CreatedAt:    run.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !run.CompletedAt.IsZero() {
		resp.CompletedAt = run.CompletedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
