package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	ffprobe "gopkg.in/vansante/go-ffprobe.v2"
)

// Static errors for probing.
var (
	// ErrSourceUnreadable is returned when the source file cannot be opened.
	ErrSourceUnreadable = errors.New("source video is not readable")
	// ErrNoVideoStream is returned when the source has no video stream.
	ErrNoVideoStream = errors.New("no video stream found")
	// ErrFFprobeExecution is returned when ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
)

// FFprobeProber implements Prober using go-ffprobe.
type FFprobeProber struct{}

// NewFFprobeProber creates a new FFprobeProber.
// If ffprobePath is empty, the binary is looked up as "ffprobe" in PATH.
func NewFFprobeProber(ffprobePath string) *FFprobeProber {
	if ffprobePath != "" {
		ffprobe.SetFFProbeBinPath(ffprobePath)
	}
	return &FFprobeProber{}
}

// Probe implements Prober.
func (p *FFprobeProber) Probe(ctx context.Context, path string) (Info, error) {
	f, err := os.Open(path) // #nosec G304 - path is a spooled upload owned by the service
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	_ = f.Close()

	data, err := ffprobe.ProbeURL(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return Info{}, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return Info{}, fmt.Errorf("%w: %w", ErrFFprobeExecution, err)
	}

	return infoFromProbeData(data)
}

// infoFromProbeData picks the container duration and the first video stream.
// Containers that omit a format duration fall back to the stream duration.
func infoFromProbeData(data *ffprobe.ProbeData) (Info, error) {
	stream := data.FirstVideoStream()
	if stream == nil {
		return Info{}, ErrNoVideoStream
	}

	info := Info{
		Width:  stream.Width,
		Height: stream.Height,
		Codec:  stream.CodecName,
	}
	if data.Format != nil {
		info.Duration = data.Format.DurationSeconds
	}
	if info.Duration <= 0 && stream.Duration != "" {
		d, err := strconv.ParseFloat(stream.Duration, 64)
		if err != nil {
			return Info{}, fmt.Errorf("parse stream duration %q: %w", stream.Duration, err)
		}
		info.Duration = d
	}

	return info, nil
}
