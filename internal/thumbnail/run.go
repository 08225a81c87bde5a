// Package thumbnail turns source videos into timeline strips, single
// thumbnails and transcoded renditions. It includes the Run record with
// its state machine, the repository port for run history, and the
// Service that orchestrates probe, staging, extraction, upload and cleanup.
package thumbnail

import (
	"errors"
	"sync"
	"time"
)

// Kind identifies which pipeline a Run executes.
type Kind string

const (
	// KindFrames extracts an evenly spaced strip of frames.
	KindFrames Kind = "frames"
	// KindThumbnail extracts one representative frame.
	KindThumbnail Kind = "thumbnail"
	// KindTranscode re-encodes the source and extracts its thumbnail.
	KindTranscode Kind = "transcode"
	// KindProfile renders a still image as square profile pictures.
	KindProfile Kind = "profile"
)

// State is the position of a Run in the pipeline.
type State string

const (
	// StateValidating checks the request before anything is allocated.
	StateValidating State = "VALIDATING"
	// StateProbing inspects the source video.
	StateProbing State = "PROBING"
	// StateStaging creates the run's staging area.
	StateStaging State = "STAGING"
	// StateExtracting runs the decoder for the current frame or rendition.
	StateExtracting State = "EXTRACTING"
	// StateUploading pushes the current artifact to object storage.
	StateUploading State = "UPLOADING"
	// StateTranscoding re-encodes the source video.
	StateTranscoding State = "TRANSCODING"
	// StateCleaning releases the staging area.
	StateCleaning State = "CLEANING"
	// StateDone indicates every artifact was delivered.
	StateDone State = "DONE"
	// StateFailed indicates the run stopped on its first error.
	StateFailed State = "FAILED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
// Once a staging area exists, every path leaves through CLEANING.
// Still images skip PROBING.
var validTransitions = map[State][]State{
	StateValidating:  {StateProbing, StateStaging, StateFailed},
	StateProbing:     {StateStaging, StateFailed},
	StateStaging:     {StateExtracting, StateCleaning, StateFailed},
	StateExtracting:  {StateUploading, StateCleaning, StateFailed},
	StateUploading:   {StateExtracting, StateTranscoding, StateCleaning, StateFailed},
	StateTranscoding: {StateUploading, StateCleaning, StateFailed},
	StateCleaning:    {StateDone, StateFailed},
	StateDone:        {},
	StateFailed:      {},
}

// canTransition checks if a transition from one state to another is valid.
func canTransition(from, to State) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Run records one invocation of a pipeline.
type Run struct {
	mu sync.RWMutex

	// ID is the random run identifier. It also names the staging area
	// and the remote folder artifacts are uploaded to.
	ID string
	// Kind is the pipeline this run executes.
	Kind Kind
	// State is the current pipeline state.
	State State
	// FrameCount is the number of frames requested.
	FrameCount int
	// FramesDone counts frames that were extracted and uploaded.
	FramesDone int
	// CurrentFrame is the 1-based frame being processed, 0 outside the frame loop.
	CurrentFrame int
	// Error contains the first error if the run failed.
	Error string
	// URLs holds the delivered public URLs. Only set once the run is DONE.
	URLs []string
	// CreatedAt is when the run was created.
	CreatedAt time.Time
	// UpdatedAt is when the run was last updated.
	UpdatedAt time.Time
	// CompletedAt is when the run reached DONE or FAILED.
	CompletedAt time.Time
}

// NewRun creates a Run in VALIDATING state.
func NewRun(runID string, kind Kind, frameCount int) *Run {
	now := time.Now()
	return &Run{
		ID:         runID,
		Kind:       kind,
		State:      StateValidating,
		FrameCount: frameCount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// TransitionTo attempts to change the run state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (r *Run) TransitionTo(state State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transitionLocked(state)
}

func (r *Run) transitionLocked(state State) error {
	if !canTransition(r.State, state) {
		return ErrInvalidTransition
	}

	r.State = state
	r.UpdatedAt = time.Now()

	switch state {
	case StateDone, StateFailed:
		r.CompletedAt = r.UpdatedAt
		r.CurrentFrame = 0
	case StateCleaning:
		r.CurrentFrame = 0
	}

	return nil
}

// StartFrame moves the run to EXTRACTING for the given 1-based frame.
func (r *Run) StartFrame(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.transitionLocked(StateExtracting); err != nil {
		return err
	}
	r.CurrentFrame = index
	return nil
}

// FrameDone records that the current frame was uploaded.
func (r *Run) FrameDone() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FramesDone++
	r.UpdatedAt = time.Now()
}

// Complete transitions the run to DONE and records the delivered URLs.
func (r *Run) Complete(urls []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.transitionLocked(StateDone); err != nil {
		return err
	}
	r.URLs = append([]string(nil), urls...)
	return nil
}

// Fail transitions the run to FAILED with an error message.
func (r *Run) Fail(errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.transitionLocked(StateFailed); err != nil {
		return err
	}
	r.Error = errMsg
	return nil
}

// GetState returns the current state (thread-safe).
func (r *Run) GetState() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.State
}

// IsTerminal returns true if the run is DONE or FAILED.
func (r *Run) IsTerminal() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.State == StateDone || r.State == StateFailed
}

// Clone creates a deep copy of the run for safe reads.
func (r *Run) Clone() *Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var urls []string
	if r.URLs != nil {
		urls = make([]string, len(r.URLs))
		copy(urls, r.URLs)
	}

	return &Run{
		ID:           r.ID,
		Kind:         r.Kind,
		State:        r.State,
		FrameCount:   r.FrameCount,
		FramesDone:   r.FramesDone,
		CurrentFrame: r.CurrentFrame,
		Error:        r.Error,
		URLs:         urls,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		CompletedAt:  r.CompletedAt,
	}
}
