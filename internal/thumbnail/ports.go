package thumbnail

import (
	"context"
	"time"

	"github.com/maauso/framestrip-api/internal/staging"
)

// Uploader publishes a staged artifact and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	// Delete removes the artifact behind a URL returned by Upload.
	Delete(ctx context.Context, url string) error
}

// Workspace is a run's staging area.
type Workspace interface {
	// Path returns where a staged file named name lives.
	Path(name string) string
	// Release removes the workspace and everything in it.
	Release() error
}

// Stager creates one Workspace per run.
type Stager interface {
	Acquire(token string) (Workspace, error)
}

// StagingManager adapts a staging.Manager to Stager.
func StagingManager(m *staging.Manager) Stager {
	return managerStager{m: m}
}

type managerStager struct {
	m *staging.Manager
}

func (s managerStager) Acquire(token string) (Workspace, error) {
	area, err := s.m.Acquire(token)
	if err != nil {
		return nil, err
	}
	return area, nil
}

// Recorder receives pipeline measurements.
type Recorder interface {
	RunStarted(kind string)
	RunFinished(kind, outcome string)
	ObserveStage(stage string, d time.Duration)
	FrameExtracted()
	ObjectUploaded()
	CleanupFailed()
}

// Run outcomes reported to the Recorder.
const (
	OutcomeDone      = "done"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// Pipeline stages reported to the Recorder.
const (
	StageProbe     = "probe"
	StageStaging   = "staging"
	StageExtract   = "extract"
	StageUpload    = "upload"
	StageTranscode = "transcode"
	StageResize    = "resize"
	StageCleanup   = "cleanup"
)

type nopRecorder struct{}

func (nopRecorder) RunStarted(string)                  {}
func (nopRecorder) RunFinished(string, string)         {}
func (nopRecorder) ObserveStage(string, time.Duration) {}
func (nopRecorder) FrameExtracted()                    {}
func (nopRecorder) ObjectUploaded()                    {}
func (nopRecorder) CleanupFailed()                     {}
