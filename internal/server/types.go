// Package server provides the HTTP surface of the framestrip API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// ExtractFramesForm holds the non-file fields of POST /extract-frames.
type ExtractFramesForm struct {
	// FrameNumber is how many frames to extract across the video.
	FrameNumber int `validate:"min=1"`
	// Width is the output frame width. Zero selects the server default.
	Width int `validate:"min=0,max=4096"`
	// Format is the image encoding of each frame.
	Format string `validate:"omitempty,oneof=png jpg jpeg"`
}

// ThumbnailForm holds the non-file fields of POST /thumbnails.
type ThumbnailForm struct {
	Width int `validate:"min=0,max=4096"`
}

// ProfilePictureForm holds the non-file fields of POST /profile-pictures.
type ProfilePictureForm struct {
	Username string `validate:"required,max=64"`
}

// FramesResponse is returned after a successful frame extraction.
type FramesResponse struct {
	RunID string `json:"run_id"`
	// Frames are the public URLs in frame order.
	Frames []string `json:"frames"`
}

// ThumbnailResponse is returned after a representative thumbnail was stored.
type ThumbnailResponse struct {
	RunID string `json:"run_id"`
	URL   string `json:"url"`
}

// VideoResponse is returned after a source video was transcoded and stored.
type VideoResponse struct {
	RunID        string `json:"run_id"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	AspectRatio  string `json:"aspect_ratio"`
}

// ProfilePictureResponse is returned after both profile renditions were stored.
type ProfilePictureResponse struct {
	RunID        string `json:"run_id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// RunResponse is the HTTP response for getting run details.
type RunResponse struct {
	// ID is the unique identifier for the run.
	ID string `json:"id"`
	// Kind is the pipeline that produced the run.
	Kind string `json:"kind"`
	// State is the current lifecycle state.
	State string `json:"state"`
	// FrameCount is the number of frames requested.
	FrameCount int `json:"frame_count"`
	// FramesDone counts frames extracted and uploaded so far.
	FramesDone int `json:"frames_done"`
	// CurrentFrame is the 1-based index being processed.
	CurrentFrame int `json:"current_frame,omitempty"`
	// Error contains the failure message if the run failed.
	Error string `json:"error,omitempty"`
	// URLs are the artifacts stored by a completed run.
	URLs []string `json:"urls,omitempty"`
	// CreatedAt is the creation time in RFC 3339 format.
	CreatedAt string `json:"created_at"`
	// CompletedAt is set once the run reached a terminal state.
	CompletedAt string `json:"completed_at,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
