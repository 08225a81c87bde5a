// Package media provides video inspection, frame extraction and transcoding
// on top of the ffprobe and ffmpeg command line tools.
package media

import (
	"context"
	"fmt"
)

// Info describes a probed source video.
type Info struct {
	// Duration is the container duration in seconds.
	Duration float64
	// Width and Height are the dimensions of the primary video stream.
	Width  int
	Height int
	// Codec is the primary video stream's codec name.
	Codec string
}

// AspectRatio returns the stream dimensions formatted as "W:H".
func (i Info) AspectRatio() string {
	return fmt.Sprintf("%d:%d", i.Width, i.Height)
}

// Prober inspects a source video without decoding it.
type Prober interface {
	// Probe returns the duration and primary video stream dimensions of the
	// file at path. It fails if the file is unreadable, has no video stream
	// or cannot be parsed.
	Probe(ctx context.Context, path string) (Info, error)
}

// FrameExtractor produces still images from a source video.
type FrameExtractor interface {
	// ExtractFrame seeks to timestamp (seconds) and writes exactly one frame,
	// scaled to width pixels with the aspect ratio preserved, to dst.
	// The image format follows dst's extension.
	ExtractFrame(ctx context.Context, src string, timestamp float64, dst string, width int) error
}

// Transcoder re-encodes a source video into a normalized delivery format.
type Transcoder interface {
	// Transcode writes an H.264/AAC MP4 rendition of src to dst.
	Transcode(ctx context.Context, src, dst string) error
}

// ImageResizer produces fixed-size renditions of still images.
type ImageResizer interface {
	// ResizeImage scales src to cover width x height, center-crops the
	// overflow and writes the result to dst. The format follows dst's extension.
	ResizeImage(ctx context.Context, src, dst string, width, height int) error
}
