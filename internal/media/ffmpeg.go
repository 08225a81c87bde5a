package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Static errors for media operations.
var (
	// ErrInvalidDimensions is returned when a requested output width or height is not positive.
	ErrInvalidDimensions = errors.New("invalid dimensions: width and height must be positive")
	// ErrInvalidTimestamp is returned when a seek position is negative.
	ErrInvalidTimestamp = errors.New("invalid timestamp: must not be negative")
	// ErrNoFrameProduced is returned when ffmpeg exits cleanly but writes no image,
	// which is what happens when the seek lands past the end of the stream.
	ErrNoFrameProduced = errors.New("ffmpeg produced no output frame")
	// ErrNoOutput is returned when a transcode finishes without an output file.
	ErrNoOutput = errors.New("ffmpeg produced no output file")
)

// killGrace bounds how long Wait blocks on output pipes after the process is killed.
const killGrace = 2 * time.Second

// FFmpegProcessor implements FrameExtractor, Transcoder and ImageResizer using the ffmpeg CLI.
type FFmpegProcessor struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
}

// NewFFmpegProcessor creates a new FFmpegProcessor.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegProcessor(ffmpegPath string) *FFmpegProcessor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegProcessor{ffmpegPath: ffmpegPath}
}

// ExtractFrame implements FrameExtractor.
// The seek is placed before the input so ffmpeg jumps to the nearest keyframe
// and decodes forward to the timestamp instead of decoding from the start.
func (p *FFmpegProcessor) ExtractFrame(ctx context.Context, src string, timestamp float64, dst string, width int) error {
	if width <= 0 {
		return fmt.Errorf("%w: width=%d", ErrInvalidDimensions, width)
	}
	if timestamp < 0 {
		return fmt.Errorf("%w: %.3f", ErrInvalidTimestamp, timestamp)
	}

	outArgs := ffmpeg.KwArgs{
		"frames:v": 1,
		"vf":       fmt.Sprintf("scale=%d:-2", width), // -2 keeps the aspect ratio with an even height
	}
	switch strings.ToLower(filepath.Ext(dst)) {
	case ".jpg", ".jpeg":
		outArgs["q:v"] = 2
	}

	args := ffmpeg.Input(src, ffmpeg.KwArgs{"ss": formatSeconds(timestamp)}).
		Output(dst, outArgs).
		OverWriteOutput().
		GetArgs()

	stderr, err := p.runFFmpeg(ctx, args)
	if err != nil {
		return err
	}

	if info, statErr := os.Stat(dst); statErr != nil || info.Size() == 0 {
		return &FFmpegError{Args: args, Stderr: stderr, Err: ErrNoFrameProduced}
	}

	return nil
}

// Transcode implements Transcoder. The rendition targets 2 Mbps H.264 at
// 30 fps with 128 kbps AAC audio.
func (p *FFmpegProcessor) Transcode(ctx context.Context, src, dst string) error {
	args := ffmpeg.Input(src).
		Output(dst, ffmpeg.KwArgs{
			"c:v":      "libx264",
			"b:v":      "2M",
			"crf":      28,
			"r":        30,
			"c:a":      "aac",
			"b:a":      "128k",
			"strict":   "-2",
			"movflags": "+faststart",
			"f":        "mp4",
		}).
		OverWriteOutput().
		GetArgs()

	stderr, err := p.runFFmpeg(ctx, args)
	if err != nil {
		return err
	}

	if info, statErr := os.Stat(dst); statErr != nil || info.Size() == 0 {
		return &FFmpegError{Args: args, Stderr: stderr, Err: ErrNoOutput}
	}

	return nil
}

// ResizeImage implements ImageResizer. JPEG output is encoded at a
// quality comparable to libjpeg 80.
func (p *FFmpegProcessor) ResizeImage(ctx context.Context, src, dst string, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}

	filter := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d", width, height, width, height)
	outArgs := ffmpeg.KwArgs{
		"frames:v": 1,
		"vf":       filter,
	}
	switch strings.ToLower(filepath.Ext(dst)) {
	case ".jpg", ".jpeg":
		outArgs["q:v"] = 4
	}

	args := ffmpeg.Input(src).
		Output(dst, outArgs).
		OverWriteOutput().
		GetArgs()

	stderr, err := p.runFFmpeg(ctx, args)
	if err != nil {
		return err
	}

	if info, statErr := os.Stat(dst); statErr != nil || info.Size() == 0 {
		return &FFmpegError{Args: args, Stderr: stderr, Err: ErrNoOutput}
	}

	return nil
}

// runFFmpeg executes ffmpeg with the given arguments and returns its stderr.
// A failed run yields an *FFmpegError carrying that output. Cancelling ctx
// kills the process.
func (p *FFmpegProcessor) runFFmpeg(ctx context.Context, args []string) (string, error) {
	args = append([]string{"-hide_banner", "-nostdin"}, args...)

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)
	cmd.WaitDelay = killGrace

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Check if context was cancelled
		if ctx.Err() != nil {
			return stderr.String(), fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return stderr.String(), &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return stderr.String(), nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}

// formatSeconds renders a seek position with millisecond precision.
func formatSeconds(t float64) string {
	return strconv.FormatFloat(t, 'f', 3, 64)
}
