package thumbnail

import (
	"fmt"
	"math"
)

// ImageFormat is the encoding of extracted frames.
type ImageFormat string

const (
	// FormatPNG is lossless and the default for timeline strips.
	FormatPNG ImageFormat = "png"
	// FormatJPEG is used for single representative thumbnails.
	FormatJPEG ImageFormat = "jpg"
)

// ParseImageFormat normalizes a user-supplied format name.
// An empty name selects def.
func ParseImageFormat(name string, def ImageFormat) (ImageFormat, error) {
	switch name {
	case "":
		return def, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return "", &ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported image format %q", name)}
	}
}

// FrameTask is one unit of work for the extract/upload loop.
type FrameTask struct {
	// Index is 1-based.
	Index int
	// Timestamp is the seek position in seconds.
	Timestamp float64
	// LocalPath is where the extractor writes the frame.
	LocalPath string
	// Key is the remote object key, {runID}/{filename}.
	Key string
}

// MinFrameInterval is the smallest spacing Schedule accepts between frames.
// Seek positions reach the decoder with millisecond precision.
const MinFrameInterval = 0.001

// Schedule returns count evenly spaced timestamps starting at zero:
// t[i] = i * duration/count. Every timestamp lies in [0, duration).
func Schedule(duration float64, count int) ([]float64, error) {
	if count < 1 {
		return nil, &ValidationError{Field: "frame_count", Reason: fmt.Sprintf("must be at least 1, got %d", count)}
	}
	if !(duration > 0) || math.IsInf(duration, 0) {
		return nil, &ValidationError{Field: "duration", Reason: fmt.Sprintf("must be positive and finite, got %v", duration)}
	}

	interval := duration / float64(count)
	if count > 1 && !(interval >= MinFrameInterval) {
		return nil, &ValidationError{
			Field:  "frame_count",
			Reason: fmt.Sprintf("%d frames over %vs are closer than %vs apart", count, duration, MinFrameInterval),
		}
	}

	timestamps := make([]float64, count)
	for i := range timestamps {
		timestamps[i] = float64(i) * interval
	}
	return timestamps, nil
}

// Midpoint returns the timestamp halfway through the source.
func Midpoint(duration float64) (float64, error) {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return 0, &ValidationError{Field: "duration", Reason: fmt.Sprintf("must be positive and finite, got %v", duration)}
	}
	return duration / 2, nil
}

// FrameName returns the staged and remote filename of the frame at index.
func FrameName(index int, format ImageFormat) string {
	return fmt.Sprintf("thumb_%04d.%s", index, format)
}

// ObjectKey places name inside the run's remote folder.
func ObjectKey(runID, name string) string {
	return runID + "/" + name
}

// planFrames turns a schedule into tasks rooted in ws and the run's remote folder.
func planFrames(runID string, ws Workspace, timestamps []float64, format ImageFormat) []FrameTask {
	tasks := make([]FrameTask, len(timestamps))
	for i, ts := range timestamps {
		name := FrameName(i+1, format)
		tasks[i] = FrameTask{
			Index:     i + 1,
			Timestamp: ts,
			LocalPath: ws.Path(name),
			Key:       ObjectKey(runID, name),
		}
	}
	return tasks
}
