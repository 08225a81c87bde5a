package thumbnail

import (
	"errors"
	"fmt"
)

var (
	// ErrTranscodeUnavailable is returned by Transcode when no Transcoder is configured.
	ErrTranscodeUnavailable = errors.New("transcoding is not configured")
	// ErrResizeUnavailable is returned by UploadProfilePicture when no ImageResizer is configured.
	ErrResizeUnavailable = errors.New("image resizing is not configured")
)

// ValidationError reports a request that was rejected before any resource was allocated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProbeError reports a source that could not be inspected.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// StagingError reports a staging area that could not be created.
type StagingError struct {
	Err error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("acquire staging area: %v", e.Err)
}

func (e *StagingError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a decoder failure for one frame. When the decoder
// ran, the wrapped error is a *media.FFmpegError carrying its diagnostics.
type ExtractionError struct {
	Index     int
	Timestamp float64
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract frame %d at %.3fs: %v", e.Index, e.Timestamp, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// UploadError reports a storage write that failed for one artifact.
type UploadError struct {
	Index int
	Key   string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s (artifact %d): %v", e.Key, e.Index, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// TranscodeError reports a failed re-encode of the source video.
type TranscodeError struct {
	Err error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode: %v", e.Err)
}

func (e *TranscodeError) Unwrap() error {
	return e.Err
}

// ResizeError reports a still image that could not be rendered at one size.
type ResizeError struct {
	Width  int
	Height int
	Err    error
}

func (e *ResizeError) Error() string {
	return fmt.Sprintf("resize to %dx%d: %v", e.Width, e.Height, e.Err)
}

func (e *ResizeError) Unwrap() error {
	return e.Err
}

// DeleteError reports a stored artifact that could not be removed.
type DeleteError struct {
	URL string
	Err error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.URL, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}

// CleanupError reports a staging area that could not be removed.
// It is logged and never returned to callers.
type CleanupError struct {
	RunID string
	Err   error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("release staging area for run %s: %v", e.RunID, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}
