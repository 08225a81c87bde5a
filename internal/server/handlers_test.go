package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maauso/framestrip-api/internal/media"
	"github.com/maauso/framestrip-api/internal/staging"
	"github.com/maauso/framestrip-api/internal/storage"
	"github.com/maauso/framestrip-api/internal/thumbnail"
)

const testBaseURL = "http://files.test/objects"

// mockProber implements media.Prober for testing.
type mockProber struct {
	mock.Mock
}

func (m *mockProber) Probe(ctx context.Context, path string) (media.Info, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(media.Info), args.Error(1)
}

// mockExtractor implements media.FrameExtractor for testing.
type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) ExtractFrame(ctx context.Context, src string, timestamp float64, dst string, width int) error {
	args := m.Called(ctx, src, timestamp, dst, width)
	return args.Error(0)
}

// mockResizer implements media.ImageResizer for testing.
type mockResizer struct {
	mock.Mock
}

func (m *mockResizer) ResizeImage(ctx context.Context, src, dst string, width, height int) error {
	args := m.Called(ctx, src, dst, width, height)
	return args.Error(0)
}

// writesRendition makes the mocked resizer leave a JPEG at dst.
func writesRendition(args mock.Arguments) {
	dst := args.String(2)
	_ = os.WriteFile(dst, []byte("\xff\xd8\xff\xe0rendition"), 0o600)
}

// writesFrame makes the mocked extractor leave an image file at dst.
func writesFrame(args mock.Arguments) {
	dst := args.String(3)
	_ = os.WriteFile(dst, []byte("\x89PNG\r\n\x1a\nframe"), 0o600)
}

type testEnv struct {
	handlers   *Handlers
	prober     *mockProber
	extractor  *mockExtractor
	resizer    *mockResizer
	stagingDir string
	spoolDir   string
	objectsDir string
}

func newTestEnv(t *testing.T, opts ...HandlerOption) *testEnv {
	t.Helper()
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	env := &testEnv{
		prober:     &mockProber{},
		extractor:  &mockExtractor{},
		resizer:    &mockResizer{},
		stagingDir: filepath.Join(root, "staging"),
		spoolDir:   filepath.Join(root, "uploads"),
		objectsDir: filepath.Join(root, "objects"),
	}

	store, err := storage.NewLocalStore(env.objectsDir)
	require.NoError(t, err)
	spool, err := staging.NewSpool(env.spoolDir)
	require.NoError(t, err)

	var n int
	svc := thumbnail.NewService(
		env.prober,
		env.extractor,
		storage.NewUploader(store, "thumbnails", testBaseURL),
		thumbnail.StagingManager(staging.NewManager(env.stagingDir)),
		thumbnail.NewMemoryRepository(),
		thumbnail.WithLogger(logger),
		thumbnail.WithResizer(env.resizer),
		thumbnail.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("run-%d", n)
		}),
	)

	env.handlers = NewHandlers(svc, spool, logger, opts...)
	return env
}

// assertNoLeftovers checks that neither staging areas nor spooled uploads survive a request.
func (e *testEnv) assertNoLeftovers(t *testing.T) {
	t.Helper()
	staged, _ := os.ReadDir(e.stagingDir)
	assert.Empty(t, staged, "staging areas left behind")
	spooled, _ := os.ReadDir(e.spoolDir)
	assert.Empty(t, spooled, "spooled uploads left behind")
}

func multipartRequest(t *testing.T, target string, fields map[string]string, video []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if video != nil {
		part, err := mw.CreateFormFile("video", "clip.mp4")
		require.NoError(t, err)
		_, err = part.Write(video)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func imageRequest(t *testing.T, username string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if username != "" {
		require.NoError(t, mw.WriteField("username", username))
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "avatar.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/profile-pictures", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

var (
	fakeVideo = []byte("not really an mp4")
	fakeImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	env.handlers.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestExtractFrames_Success(t *testing.T) {
	env := newTestEnv(t)
	env.prober.On("Probe", mock.Anything, mock.Anything).
		Return(media.Info{Duration: 9, Width: 160, Height: 90}, nil)
	env.extractor.On("ExtractFrame", mock.Anything, mock.Anything, mock.Anything, mock.Anything, 120).
		Run(writesFrame).Return(nil)

	req := multipartRequest(t, "/extract-frames", map[string]string{"frameNumber": "3", "width": "120"}, fakeVideo)
	rec := httptest.NewRecorder()

	env.handlers.ExtractFrames(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp FramesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, []string{
		testBaseURL + "/thumbnails/run-1/thumb_0001.png",
		testBaseURL + "/thumbnails/run-1/thumb_0002.png",
		testBaseURL + "/thumbnails/run-1/thumb_0003.png",
	}, resp.Frames)

	assert.FileExists(t, filepath.Join(env.objectsDir, "thumbnails", "run-1", "thumb_0003.png"))

	var timestamps []float64
	for _, call := range env.extractor.Calls {
		timestamps = append(timestamps, call.Arguments.Get(2).(float64))
	}
	assert.Equal(t, []float64{0, 3, 6}, timestamps)

	env.assertNoLeftovers(t)
}

func TestExtractFrames_JPEGFormat(t *testing.T) {
	env := newTestEnv(t)
	env.prober.On("Probe", mock.Anything, mock.Anything).Return(media.Info{Duration: 4}, nil)
	env.extractor.On("ExtractFrame", mock.Anything, mock.Anything, mock.Anything, mock.Anything, thumbnail.DefaultFrameWidth).
		Run(writesFrame).Return(nil)

	req := multipartRequest(t, "/extract-frames", map[string]string{"frameNumber": "1", "format": "jpeg"}, fakeVideo)
	rec := httptest.NewRecorder()

	env.handlers.ExtractFrames(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp FramesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{testBaseURL + "/thumbnails/run-1/thumb_0001.jpg"}, resp.Frames)
}

func TestExtractFrames_MissingVideo(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, "/extract-frames", map[string]string{"frameNumber": "3"}, nil)
	rec := httptest.NewRecorder()

	env.handlers.ExtractFrames(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_VIDEO", decodeError(t, rec).Code)
}

func TestExtractFrames_NotMultipart(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/extract-frames", bytes.NewReader([]byte(`{"frameNumber":3}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.handlers.ExtractFrames(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_MULTIPART", decodeError(t, rec).Code)
}

func TestExtractFrames_ValidationError(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"missing frame number", map[string]string{}},
		{"zero frames", map[string]string{"frameNumber": "0"}},
		{"negative frames", map[string]string{"frameNumber": "-2"}},
		{"non-numeric frames", map[string]string{"frameNumber": "three"}},
		{"too many frames", map[string]string{"frameNumber": "1000"}},
		{"negative width", map[string]string{"frameNumber": "3", "width": "-5"}},
		{"unsupported format", map[string]string{"frameNumber": "3", "format": "gif"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			req := multipartRequest(t, "/extract-frames", tt.fields, fakeVideo)
			rec := httptest.NewRecorder()

			env.handlers.ExtractFrames(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
			env.prober.AssertNotCalled(t, "Probe", mock.Anything, mock.Anything)
			env.assertNoLeftovers(t)
		})
	}
}

func TestExtractFrames_ProbeFailure(t *testing.T) {
	env := newTestEnv(t)
	env.prober.On("Probe", mock.Anything, mock.Anything).
		Return(media.Info{}, media.ErrNoVideoStream)

	req := multipartRequest(t, "/extract-frames", map[string]string{"frameNumber": "3"}, fakeVideo)
	rec := httptest.NewRecorder()

	env.handlers.ExtractFrames(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "PROBE_FAILED", decodeError(t, rec).Code)
	env.extractor.AssertNotCalled(t, "ExtractFrame", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	env.assertNoLeftovers(t)
}

func TestExtractFrames_ExtractionFailure(t *testing.T) {
	env := newTestEnv(t)
	env.prober.On("Probe", mock.Anything, mock.Anything).Return(media.Info{Duration: 9}, nil)
	env.extractor.On("ExtractFrame", mock.Anything, mock.Anything, 0.0, mock.Anything, mock.Anything).
		Run(writesFrame).Return(nil)
	env.extractor.On("ExtractFrame", mock.Anything, mock.Anything, 3.0, mock.Anything, mock.Anything).
		Return(&media.FFmpegError{Stderr: "corrupt packet", Err: errors.New("exit status 1")})

	req := multipartRequest(t, "/extract-frames", map[string]string{"frameNumber": "3"}, fakeVideo)
	rec := httptest.NewRecorder()

	env.handlers.ExtractFrames(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "EXTRACTION_FAILED", resp.Code)
	assert.Contains(t, resp.Error, "corrupt packet")
	env.extractor.AssertNumberOfCalls(t, "ExtractFrame", 2)
	env.assertNoLeftovers(t)
}

func TestExtractFrames_PayloadTooLarge(t *testing.T) {
	env := newTestEnv(t, WithMaxUploadBytes(64))

	req := multipartRequest(t, "/extract-frames", map[string]string{"frameNumber": "3"}, bytes.Repeat([]byte("x"), 4096))
	rec := httptest.NewRecorder()

	env.handlers.ExtractFrames(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decodeError(t, rec).Code)
}

func TestCreateThumbnail_Success(t *testing.T) {
	env := newTestEnv(t)
	env.prober.On("Probe", mock.Anything, mock.Anything).Return(media.Info{Duration: 10}, nil)
	env.extractor.On("ExtractFrame", mock.Anything, mock.Anything, 5.0, mock.Anything, thumbnail.DefaultThumbnailWidth).
		Run(writesFrame).Return(nil)

	req := multipartRequest(t, "/thumbnails", nil, fakeVideo)
	rec := httptest.NewRecorder()

	env.handlers.CreateThumbnail(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ThumbnailResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, testBaseURL+"/thumbnails/run-1/thumbnail.jpg", resp.URL)
	env.assertNoLeftovers(t)
}

func TestCreateVideo_TranscoderNotConfigured(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, "/videos", nil, fakeVideo)
	rec := httptest.NewRecorder()

	env.handlers.CreateVideo(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, "TRANSCODE_UNAVAILABLE", decodeError(t, rec).Code)
	env.assertNoLeftovers(t)
}

func TestGetRun_AfterFailure(t *testing.T) {
	env := newTestEnv(t)
	env.prober.On("Probe", mock.Anything, mock.Anything).Return(media.Info{Duration: 8}, nil)
	env.extractor.On("ExtractFrame", mock.Anything, mock.Anything, 0.0, mock.Anything, mock.Anything).
		Run(writesFrame).Return(nil)
	env.extractor.On("ExtractFrame", mock.Anything, mock.Anything, 4.0, mock.Anything, mock.Anything).
		Return(errors.New("decoder crashed"))

	rec := httptest.NewRecorder()
	env.handlers.ExtractFrames(rec, multipartRequest(t, "/extract-frames", map[string]string{"frameNumber": "2"}, fakeVideo))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/runs/run-1", nil)
	req.SetPathValue("id", "run-1")
	rec = httptest.NewRecorder()

	env.handlers.GetRun(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp RunResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "run-1", resp.ID)
	assert.Equal(t, "frames", resp.Kind)
	assert.Equal(t, "FAILED", resp.State)
	assert.Equal(t, 2, resp.FrameCount)
	assert.Equal(t, 1, resp.FramesDone)
	assert.Contains(t, resp.Error, "decoder crashed")
	assert.NotEmpty(t, resp.CompletedAt)
}

func TestGetRun_NotFound(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/runs/nonexistent", nil)
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()

	env.handlers.GetRun(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RUN_NOT_FOUND", decodeError(t, rec).Code)
}

func TestGetRun_MissingID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/runs/", nil)
	rec := httptest.NewRecorder()

	env.handlers.GetRun(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_RUN_ID", decodeError(t, rec).Code)
}

func TestUploadProfilePicture_Success(t *testing.T) {
	env := newTestEnv(t)
	env.resizer.On("ResizeImage", mock.Anything, mock.Anything, mock.Anything, 256, 256).Run(writesRendition).Return(nil).Once()
	env.resizer.On("ResizeImage", mock.Anything, mock.Anything, mock.Anything, 64, 64).Run(writesRendition).Return(nil).Once()

	rec := httptest.NewRecorder()
	env.handlers.UploadProfilePicture(rec, imageRequest(t, "alice", fakeImage))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp ProfilePictureResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, testBaseURL+"/thumbnails/profiles/alice.jpeg", resp.URL)
	assert.Equal(t, testBaseURL+"/thumbnails/profiles/alice_thumbnail.jpeg", resp.ThumbnailURL)

	assert.FileExists(t, filepath.Join(env.objectsDir, "thumbnails", "profiles", "alice.jpeg"))
	assert.FileExists(t, filepath.Join(env.objectsDir, "thumbnails", "profiles", "alice_thumbnail.jpeg"))
	env.resizer.AssertExpectations(t)
	env.prober.AssertNotCalled(t, "Probe", mock.Anything, mock.Anything)
	env.assertNoLeftovers(t)
}

func TestUploadProfilePicture_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		username string
		image    []byte
		code     string
	}{
		{"missing image", "alice", nil, "MISSING_IMAGE"},
		{"missing username", "", fakeImage, "VALIDATION_ERROR"},
		{"username with path", "../alice", fakeImage, "VALIDATION_ERROR"},
		{"not an image", "alice", fakeVideo, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := httptest.NewRecorder()
			env.handlers.UploadProfilePicture(rec, imageRequest(t, tt.username, tt.image))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
			env.resizer.AssertNotCalled(t, "ResizeImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			env.assertNoLeftovers(t)
		})
	}
}

func TestDeleteArtifact(t *testing.T) {
	env := newTestEnv(t)
	env.resizer.On("ResizeImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(writesRendition).Return(nil)

	rec := httptest.NewRecorder()
	env.handlers.UploadProfilePicture(rec, imageRequest(t, "bob", fakeImage))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var uploaded ProfilePictureResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&uploaded))

	stored := filepath.Join(env.objectsDir, "thumbnails", "profiles", "bob.jpeg")
	require.FileExists(t, stored)

	req := httptest.NewRequest(http.MethodDelete, "/artifacts?url="+url.QueryEscape(uploaded.URL), nil)
	rec = httptest.NewRecorder()
	env.handlers.DeleteArtifact(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoFileExists(t, stored)
	assert.FileExists(t, filepath.Join(env.objectsDir, "thumbnails", "profiles", "bob_thumbnail.jpeg"))
}

func TestDeleteArtifact_BadRequests(t *testing.T) {
	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"missing url", "", "MISSING_URL"},
		{"other host", "?url=" + url.QueryEscape("https://elsewhere.test/thumbnails/a.png"), "FOREIGN_URL"},
		{"other bucket", "?url=" + url.QueryEscape(testBaseURL+"/avatars/a.png"), "FOREIGN_URL"},
		{"escapes bucket", "?url=" + url.QueryEscape(testBaseURL+"/thumbnails/../../secret"), "FOREIGN_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			req := httptest.NewRequest(http.MethodDelete, "/artifacts"+tt.query, nil)
			rec := httptest.NewRecorder()
			env.handlers.DeleteArtifact(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &thumbnail.ValidationError{Field: "frame_count", Reason: "must be at least 1"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"probe", &thumbnail.ProbeError{Path: "in.mp4", Err: media.ErrSourceUnreadable}, http.StatusUnprocessableEntity, "PROBE_FAILED"},
		{"staging", &thumbnail.StagingError{Err: os.ErrExist}, http.StatusInternalServerError, "STAGING_FAILED"},
		{"extraction", &thumbnail.ExtractionError{Index: 2, Err: errors.New("exit status 1")}, http.StatusInternalServerError, "EXTRACTION_FAILED"},
		{"upload", &thumbnail.UploadError{Index: 1, Key: "run/thumb_0001.png", Err: errors.New("403")}, http.StatusBadGateway, "UPLOAD_FAILED"},
		{"transcode", &thumbnail.TranscodeError{Err: errors.New("exit status 1")}, http.StatusInternalServerError, "TRANSCODE_FAILED"},
		{"transcode unavailable", thumbnail.ErrTranscodeUnavailable, http.StatusNotImplemented, "TRANSCODE_UNAVAILABLE"},
		{"resize", &thumbnail.ResizeError{Width: 64, Height: 64, Err: media.ErrNoOutput}, http.StatusUnprocessableEntity, "RESIZE_FAILED"},
		{"resize unavailable", thumbnail.ErrResizeUnavailable, http.StatusNotImplemented, "RESIZE_UNAVAILABLE"},
		{"foreign url", &thumbnail.DeleteError{URL: "http://x/y", Err: storage.ErrForeignURL}, http.StatusBadRequest, "FOREIGN_URL"},
		{"delete", &thumbnail.DeleteError{URL: "http://x/y", Err: errors.New("403")}, http.StatusBadGateway, "DELETE_FAILED"},
		{"cancelled", fmt.Errorf("wait for run slot: %w", context.Canceled), http.StatusServiceUnavailable, "CANCELLED"},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, "CANCELLED"},
		{"decoder killed by cancel", &thumbnail.ExtractionError{Index: 1, Err: context.Canceled}, http.StatusServiceUnavailable, "CANCELLED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestRouter_Integration(t *testing.T) {
	env := newTestEnv(t)
	env.prober.On("Probe", mock.Anything, mock.Anything).Return(media.Info{Duration: 2}, nil)
	env.extractor.On("ExtractFrame", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(writesFrame).Return(nil)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	cfg := DefaultConfig()
	cfg.ObjectsDir = env.objectsDir
	router := NewRouter(env.handlers, logger, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = multipartRequest(t, "/extract-frames", map[string]string{"frameNumber": "2"}, fakeVideo)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var frames FramesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&frames))
	require.Len(t, frames.Frames, 2)

	// The local driver's objects are reachable under the URL path handed out.
	req = httptest.NewRequest(http.MethodGet, "/objects/thumbnails/run-1/thumb_0002.png", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "frame")

	req = httptest.NewRequest(http.MethodGet, "/runs/"+frames.RunID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/artifacts?url="+url.QueryEscape(frames.Frames[1]), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/objects/thumbnails/run-1/thumb_0002.png", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "framestrip_http_requests_duration_seconds")
}

func TestRouter_ObjectsDisabledByDefault(t *testing.T) {
	env := newTestEnv(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	router := NewRouter(env.handlers, logger, DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/objects/thumbnails/run-1/thumb_0001.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSMiddleware(t *testing.T) {
	env := newTestEnv(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	cfg := Config{AllowedOrigins: []string{"https://example.com"}}
	router := NewRouter(env.handlers, logger, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	// Disallowed origin gets no CORS headers
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	// OPTIONS preflight
	req = httptest.NewRequest(http.MethodOptions, "/extract-frames", nil)
	req.Header.Set("Origin", "https://example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	handler := RecoveryMiddleware(logger)(panicHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rec).Code)
}

func TestLoggingMiddleware_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/extract-frames", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http request", entry["msg"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.EqualValues(t, 15, entry["bytes"])

	// Health probes stay below info level.
	buf.Reset()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String())
}
