package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/semaphore"

	"github.com/maauso/framestrip-api/internal/media"
	"github.com/maauso/framestrip-api/internal/thumbnail/id"
)

// Defaults applied when the corresponding option is not set.
const (
	DefaultFrameWidth     = 80
	DefaultThumbnailWidth = 256
	DefaultMaxFrameCount  = 100
	DefaultMaxRuns        = 4
)

const (
	thumbnailName = "thumbnail.jpg"
	videoName     = "video.mp4"
)

// Profile picture renditions. Both are square JPEGs stored under
// profiles/{username}.jpeg and profiles/{username}_thumbnail.jpeg.
const (
	ProfilePictureSize   = 256
	ProfileThumbnailSize = 64
	profileFolder        = "profiles"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// FramesRequest asks for an evenly spaced strip of frames.
type FramesRequest struct {
	// SourcePath is the local path of the source video.
	SourcePath string
	// FrameCount is the number of frames to extract.
	FrameCount int
	// Width is the output width in pixels. Zero selects the default.
	Width int
	// Format is the output encoding. Empty selects PNG.
	Format ImageFormat
}

// FramesResult lists the public URLs of a strip in timestamp order.
type FramesResult struct {
	RunID string
	URLs  []string
}

// ThumbnailRequest asks for one representative frame.
type ThumbnailRequest struct {
	SourcePath string
	// Width is the output width in pixels. Zero selects the default.
	Width int
}

// ThumbnailResult holds the public URL of a representative frame.
type ThumbnailResult struct {
	RunID string
	URL   string
}

// TranscodeRequest asks for a normalized rendition plus its thumbnail.
type TranscodeRequest struct {
	SourcePath string
}

// TranscodeResult holds the delivered rendition.
type TranscodeResult struct {
	RunID        string
	VideoURL     string
	ThumbnailURL string
	// AspectRatio is the source's primary stream dimensions as "W:H".
	AspectRatio string
}

// ProfilePictureRequest asks for the square renditions of a user's picture.
type ProfilePictureRequest struct {
	// SourcePath is the local path of the uploaded image.
	SourcePath string
	// Username names the stored objects. It is replaced on every upload.
	Username string
}

// ProfilePictureResult holds the public URLs of both renditions.
type ProfilePictureResult struct {
	RunID        string
	URL          string
	ThumbnailURL string
}

// Service orchestrates probe, staging, extraction, upload and cleanup.
// Frames within a run are processed strictly one after another; separate
// runs proceed concurrently up to the configured number of run slots.
type Service struct {
	prober     media.Prober
	extractor  media.FrameExtractor
	transcoder media.Transcoder
	resizer    media.ImageResizer
	uploader   Uploader
	stager     Stager
	repo       Repository
	logger     *slog.Logger
	recorder   Recorder
	newID      func() string

	slots          *semaphore.Weighted
	frameWidth     int
	thumbnailWidth int
	maxFrameCount  int

	// maxRuns caps the run history; zero keeps every run.
	maxRuns int
	pruneMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithTranscoder enables Transcode.
func WithTranscoder(t media.Transcoder) Option {
	return func(s *Service) {
		s.transcoder = t
	}
}

// WithResizer enables UploadProfilePicture.
func WithResizer(r media.ImageResizer) Option {
	return func(s *Service) {
		s.resizer = r
	}
}

// WithRunRetention keeps at most n finished runs in the repository. When a
// run finishes, the oldest finished runs are deleted until the history fits.
// Non-positive values keep every run.
func WithRunRetention(n int) Option {
	return func(s *Service) {
		s.maxRuns = max(n, 0)
	}
}

// WithMaxConcurrentRuns bounds the number of runs past validation at once.
// Non-positive values are ignored.
func WithMaxConcurrentRuns(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.slots = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithFrameWidth sets the strip width used when a request omits it.
func WithFrameWidth(w int) Option {
	return func(s *Service) {
		if w > 0 {
			s.frameWidth = w
		}
	}
}

// WithThumbnailWidth sets the representative thumbnail width used when a request omits it.
func WithThumbnailWidth(w int) Option {
	return func(s *Service) {
		if w > 0 {
			s.thumbnailWidth = w
		}
	}
}

// WithMaxFrameCount sets the upper bound on requested frames.
func WithMaxFrameCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxFrameCount = n
		}
	}
}

// WithIDGenerator replaces the random run ID source. Generated IDs must be
// unique across concurrent runs.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewService creates a new Service.
func NewService(
	prober media.Prober,
	extractor media.FrameExtractor,
	uploader Uploader,
	stager Stager,
	repo Repository,
	opts ...Option,
) *Service {
	s := &Service{
		prober:         prober,
		extractor:      extractor,
		uploader:       uploader,
		stager:         stager,
		repo:           repo,
		logger:         slog.Default(),
		recorder:       nopRecorder{},
		newID:          id.Generate,
		slots:          semaphore.NewWeighted(DefaultMaxRuns),
		frameWidth:     DefaultFrameWidth,
		thumbnailWidth: DefaultThumbnailWidth,
		maxFrameCount:  DefaultMaxFrameCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRun retrieves a run record by ID.
func (s *Service) GetRun(ctx context.Context, runID string) (*Run, error) {
	return s.repo.FindByID(ctx, runID)
}

// ExtractFrames samples req.FrameCount frames at evenly spaced timestamps
// starting at zero, uploads each under {runID}/thumb_NNNN.{ext} and returns
// their URLs in timestamp order. Either every frame is delivered or the
// first error is returned. Objects uploaded before a failure are left in
// place; the run record shows how far the run got.
func (s *Service) ExtractFrames(ctx context.Context, req FramesRequest) (*FramesResult, error) {
	run := s.begin(ctx, KindFrames, req.FrameCount)

	width, format, err := s.validateFrames(req)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	release, err := s.acquireSlot(ctx)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}
	defer release()

	info, err := s.probe(ctx, run, req.SourcePath)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	timestamps, err := Schedule(info.Duration, req.FrameCount)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	urls, err := s.staged(ctx, run, func(ws Workspace) ([]string, error) {
		tasks := planFrames(run.ID, ws, timestamps, format)
		urls := make([]string, 0, len(tasks))
		for _, task := range tasks {
			url, err := s.deliverFrame(ctx, run, req.SourcePath, task, width)
			if err != nil {
				return nil, err
			}
			urls = append(urls, url)
		}
		return urls, nil
	})
	if err != nil {
		return nil, err
	}

	return &FramesResult{RunID: run.ID, URLs: urls}, nil
}

// CreateThumbnail extracts the frame halfway through the source as a JPEG
// and uploads it under {runID}/thumbnail.jpg.
func (s *Service) CreateThumbnail(ctx context.Context, req ThumbnailRequest) (*ThumbnailResult, error) {
	run := s.begin(ctx, KindThumbnail, 1)

	width, err := s.validateSingle(req.SourcePath, req.Width, s.thumbnailWidth)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	release, err := s.acquireSlot(ctx)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}
	defer release()

	info, err := s.probe(ctx, run, req.SourcePath)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	ts, err := Midpoint(info.Duration)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	urls, err := s.staged(ctx, run, func(ws Workspace) ([]string, error) {
		task := FrameTask{
			Index:     1,
			Timestamp: ts,
			LocalPath: ws.Path(thumbnailName),
			Key:       ObjectKey(run.ID, thumbnailName),
		}
		url, err := s.deliverFrame(ctx, run, req.SourcePath, task, width)
		if err != nil {
			return nil, err
		}
		return []string{url}, nil
	})
	if err != nil {
		return nil, err
	}

	return &ThumbnailResult{RunID: run.ID, URL: urls[0]}, nil
}

// Transcode uploads a midpoint thumbnail and an H.264/AAC rendition of the
// source under the run's folder, thumbnail first.
func (s *Service) Transcode(ctx context.Context, req TranscodeRequest) (*TranscodeResult, error) {
	run := s.begin(ctx, KindTranscode, 1)

	if s.transcoder == nil {
		return nil, s.fail(ctx, run, ErrTranscodeUnavailable)
	}

	width, err := s.validateSingle(req.SourcePath, 0, s.thumbnailWidth)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	release, err := s.acquireSlot(ctx)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}
	defer release()

	info, err := s.probe(ctx, run, req.SourcePath)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	ts, err := Midpoint(info.Duration)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	urls, err := s.staged(ctx, run, func(ws Workspace) ([]string, error) {
		thumbURL, err := s.deliverFrame(ctx, run, req.SourcePath, FrameTask{
			Index:     1,
			Timestamp: ts,
			LocalPath: ws.Path(thumbnailName),
			Key:       ObjectKey(run.ID, thumbnailName),
		}, width)
		if err != nil {
			return nil, err
		}

		s.advance(ctx, run, StateTranscoding)
		dst := ws.Path(videoName)
		start := time.Now()
		if err := s.transcoder.Transcode(ctx, req.SourcePath, dst); err != nil {
			return nil, &TranscodeError{Err: err}
		}
		s.recorder.ObserveStage(StageTranscode, time.Since(start))

		s.advance(ctx, run, StateUploading)
		videoURL, err := s.upload(ctx, dst, ObjectKey(run.ID, videoName), 2)
		if err != nil {
			return nil, err
		}

		return []string{thumbURL, videoURL}, nil
	})
	if err != nil {
		return nil, err
	}

	return &TranscodeResult{
		RunID:        run.ID,
		VideoURL:     urls[1],
		ThumbnailURL: urls[0],
		AspectRatio:  info.AspectRatio(),
	}, nil
}

// UploadProfilePicture renders the source image as a 256x256 picture and a
// 64x64 thumbnail, both center-cropped JPEGs, and uploads them under the
// profiles folder, replacing any earlier picture for the same username.
// Images are not probed; the run goes straight from VALIDATING to STAGING.
func (s *Service) UploadProfilePicture(ctx context.Context, req ProfilePictureRequest) (*ProfilePictureResult, error) {
	run := s.begin(ctx, KindProfile, 2)

	if s.resizer == nil {
		return nil, s.fail(ctx, run, ErrResizeUnavailable)
	}
	if err := validateProfile(req); err != nil {
		return nil, s.fail(ctx, run, err)
	}

	release, err := s.acquireSlot(ctx)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}
	defer release()

	urls, err := s.staged(ctx, run, func(ws Workspace) ([]string, error) {
		renditions := []struct {
			name string
			size int
		}{
			{req.Username + ".jpeg", ProfilePictureSize},
			{req.Username + "_thumbnail.jpeg", ProfileThumbnailSize},
		}

		urls := make([]string, 0, len(renditions))
		for i, r := range renditions {
			task := FrameTask{
				Index:     i + 1,
				LocalPath: ws.Path(r.name),
				Key:       ObjectKey(profileFolder, r.name),
			}
			url, err := s.deliver(ctx, run, task, func() error {
				start := time.Now()
				if err := s.resizer.ResizeImage(ctx, req.SourcePath, task.LocalPath, r.size, r.size); err != nil {
					return &ResizeError{Width: r.size, Height: r.size, Err: err}
				}
				s.recorder.ObserveStage(StageResize, time.Since(start))
				return nil
			})
			if err != nil {
				return nil, err
			}
			urls = append(urls, url)
		}
		return urls, nil
	})
	if err != nil {
		return nil, err
	}

	return &ProfilePictureResult{RunID: run.ID, URL: urls[0], ThumbnailURL: urls[1]}, nil
}

// DeleteArtifact removes a previously delivered object given its public
// URL. Deleting an object that is already gone succeeds.
func (s *Service) DeleteArtifact(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return &ValidationError{Field: "url", Reason: "no artifact URL provided"}
	}
	if err := s.uploader.Delete(ctx, url); err != nil {
		s.logger.Warn("artifact delete failed",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return &DeleteError{URL: url, Err: err}
	}
	s.logger.Info("artifact deleted", slog.String("url", url))
	return nil
}

// begin creates and records a run in VALIDATING state.
func (s *Service) begin(ctx context.Context, kind Kind, frameCount int) *Run {
	run := NewRun(s.newID(), kind, frameCount)
	s.recorder.RunStarted(string(kind))
	s.logger.Info("run started",
		slog.String("run_id", run.ID),
		slog.String("kind", string(kind)),
		slog.Int("frame_count", frameCount),
	)
	s.save(ctx, run)
	return run
}

func (s *Service) validateFrames(req FramesRequest) (int, ImageFormat, error) {
	if req.FrameCount < 1 {
		return 0, "", &ValidationError{Field: "frame_count", Reason: fmt.Sprintf("must be at least 1, got %d", req.FrameCount)}
	}
	if req.FrameCount > s.maxFrameCount {
		return 0, "", &ValidationError{Field: "frame_count", Reason: fmt.Sprintf("must be at most %d, got %d", s.maxFrameCount, req.FrameCount)}
	}

	format, err := ParseImageFormat(string(req.Format), FormatPNG)
	if err != nil {
		return 0, "", err
	}

	width, err := s.validateSingle(req.SourcePath, req.Width, s.frameWidth)
	if err != nil {
		return 0, "", err
	}

	return width, format, nil
}

// validateSingle checks the source is present and resolves the output width.
func (s *Service) validateSingle(sourcePath string, width, def int) (int, error) {
	if width < 0 {
		return 0, &ValidationError{Field: "width", Reason: fmt.Sprintf("must be positive, got %d", width)}
	}
	if width == 0 {
		width = def
	}

	if sourcePath == "" {
		return 0, &ValidationError{Field: "source", Reason: "no source video provided"}
	}
	info, err := os.Stat(sourcePath)
	if err != nil {
		return 0, &ValidationError{Field: "source", Reason: err.Error()}
	}
	if info.IsDir() {
		return 0, &ValidationError{Field: "source", Reason: "source is a directory"}
	}

	return width, nil
}

func validateProfile(req ProfilePictureRequest) error {
	if !usernamePattern.MatchString(req.Username) {
		return &ValidationError{
			Field:  "username",
			Reason: fmt.Sprintf("must be 1-64 letters, digits, '.', '_' or '-' and start with a letter or digit, got %q", req.Username),
		}
	}
	if req.SourcePath == "" {
		return &ValidationError{Field: "image", Reason: "no source image provided"}
	}
	mtype, err := mimetype.DetectFile(req.SourcePath)
	if err != nil {
		return &ValidationError{Field: "image", Reason: err.Error()}
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return &ValidationError{Field: "image", Reason: fmt.Sprintf("expected an image, got %s", mtype.String())}
	}
	return nil
}

// acquireSlot waits for run capacity. The returned func releases it.
func (s *Service) acquireSlot(ctx context.Context) (func(), error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for run slot: %w", err)
	}
	return func() { s.slots.Release(1) }, nil
}

func (s *Service) probe(ctx context.Context, run *Run, path string) (media.Info, error) {
	s.advance(ctx, run, StateProbing)

	start := time.Now()
	info, err := s.prober.Probe(ctx, path)
	if err != nil {
		return media.Info{}, &ProbeError{Path: path, Err: err}
	}
	s.recorder.ObserveStage(StageProbe, time.Since(start))

	s.logger.Debug("source probed",
		slog.String("run_id", run.ID),
		slog.Float64("duration", info.Duration),
		slog.Int("width", info.Width),
		slog.Int("height", info.Height),
	)
	return info, nil
}

// staged brackets fn with the run's staging area. The area is released on
// every path out of fn, and the run is finalized as DONE with fn's URLs or
// FAILED with its error. A release failure is logged and never changes the
// outcome.
func (s *Service) staged(ctx context.Context, run *Run, fn func(Workspace) ([]string, error)) (urls []string, err error) {
	s.advance(ctx, run, StateStaging)

	start := time.Now()
	ws, err := s.stager.Acquire(run.ID)
	if err != nil {
		return nil, s.fail(ctx, run, &StagingError{Err: err})
	}
	s.recorder.ObserveStage(StageStaging, time.Since(start))

	defer func() {
		s.advance(ctx, run, StateCleaning)
		s.release(run, ws)

		if err != nil {
			urls = nil
			err = s.fail(ctx, run, err)
			return
		}
		s.complete(ctx, run, urls)
	}()

	return fn(ws)
}

func (s *Service) release(run *Run, ws Workspace) {
	start := time.Now()
	if err := ws.Release(); err != nil {
		cerr := &CleanupError{RunID: run.ID, Err: err}
		s.recorder.CleanupFailed()
		s.logger.Warn("staging cleanup failed",
			slog.String("run_id", run.ID),
			slog.String("error", cerr.Error()),
		)
		return
	}
	s.recorder.ObserveStage(StageCleanup, time.Since(start))
}

// deliverFrame extracts one frame and uploads it.
func (s *Service) deliverFrame(ctx context.Context, run *Run, src string, task FrameTask, width int) (string, error) {
	return s.deliver(ctx, run, task, func() error {
		start := time.Now()
		if err := s.extractor.ExtractFrame(ctx, src, task.Timestamp, task.LocalPath, width); err != nil {
			return &ExtractionError{Index: task.Index, Timestamp: task.Timestamp, Err: err}
		}
		s.recorder.ObserveStage(StageExtract, time.Since(start))
		s.recorder.FrameExtracted()
		return nil
	})
}

// deliver renders one artifact into task.LocalPath with produce and
// uploads it. The upload resolves before deliver returns, so artifact i+1
// never starts early.
func (s *Service) deliver(ctx context.Context, run *Run, task FrameTask, produce func() error) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("run cancelled before artifact %d: %w", task.Index, err)
	}

	if err := run.StartFrame(task.Index); err != nil {
		s.logger.Error("invalid run transition",
			slog.String("run_id", run.ID),
			slog.String("from", string(run.GetState())),
			slog.String("to", string(StateExtracting)),
		)
	}
	s.save(ctx, run)

	if err := produce(); err != nil {
		return "", err
	}

	s.advance(ctx, run, StateUploading)
	url, err := s.upload(ctx, task.LocalPath, task.Key, task.Index)
	if err != nil {
		return "", err
	}

	run.FrameDone()
	s.save(ctx, run)

	s.logger.Debug("artifact delivered",
		slog.String("run_id", run.ID),
		slog.Int("index", task.Index),
		slog.Float64("timestamp", task.Timestamp),
		slog.String("key", task.Key),
	)
	return url, nil
}

func (s *Service) upload(ctx context.Context, localPath, key string, index int) (string, error) {
	start := time.Now()
	url, err := s.uploader.Upload(ctx, localPath, key)
	if err != nil {
		return "", &UploadError{Index: index, Key: key, Err: err}
	}
	s.recorder.ObserveStage(StageUpload, time.Since(start))
	s.recorder.ObjectUploaded()
	return url, nil
}

// advance moves the run to state and records it. An invalid transition is
// a programming error; it is logged and the run keeps its current state.
func (s *Service) advance(ctx context.Context, run *Run, state State) {
	from := run.GetState()
	if err := run.TransitionTo(state); err != nil {
		s.logger.Error("invalid run transition",
			slog.String("run_id", run.ID),
			slog.String("from", string(from)),
			slog.String("to", string(state)),
		)
		return
	}
	s.logger.Debug("run state changed",
		slog.String("run_id", run.ID),
		slog.String("from", string(from)),
		slog.String("to", string(state)),
	)
	s.save(ctx, run)
}

func (s *Service) complete(ctx context.Context, run *Run, urls []string) {
	if err := run.Complete(urls); err != nil {
		s.logger.Error("invalid run transition",
			slog.String("run_id", run.ID),
			slog.String("from", string(run.GetState())),
			slog.String("to", string(StateDone)),
		)
	}
	s.save(ctx, run)
	s.recorder.RunFinished(string(run.Kind), OutcomeDone)
	s.logger.Info("run finished",
		slog.String("run_id", run.ID),
		slog.String("kind", string(run.Kind)),
		slog.Int("urls", len(urls)),
	)
	s.prune(ctx)
}

// fail marks the run FAILED with err and returns err unchanged.
func (s *Service) fail(ctx context.Context, run *Run, err error) error {
	if terr := run.Fail(err.Error()); terr != nil {
		s.logger.Error("invalid run transition",
			slog.String("run_id", run.ID),
			slog.String("from", string(run.GetState())),
			slog.String("to", string(StateFailed)),
		)
	}
	s.save(ctx, run)

	outcome := OutcomeFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		outcome = OutcomeCancelled
	}
	s.recorder.RunFinished(string(run.Kind), outcome)

	level := slog.LevelError
	var verr *ValidationError
	if errors.As(err, &verr) || outcome == OutcomeCancelled {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "run failed",
		slog.String("run_id", run.ID),
		slog.String("kind", string(run.Kind)),
		slog.String("outcome", outcome),
		slog.String("error", err.Error()),
	)
	s.prune(ctx)
	return err
}

// save records a snapshot of run. History writes must survive the
// request being cancelled, and a failed write never fails the run.
func (s *Service) save(ctx context.Context, run *Run) {
	if err := s.repo.Save(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("failed to save run",
			slog.String("run_id", run.ID),
			slog.String("error", err.Error()),
		)
	}
}

// prune deletes the oldest finished runs until at most maxRuns remain.
// Runs in flight do not count against the cap and are never deleted.
func (s *Service) prune(ctx context.Context) {
	if s.maxRuns == 0 {
		return
	}
	s.pruneMu.Lock()
	defer s.pruneMu.Unlock()

	ctx = context.WithoutCancel(ctx)
	runs, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Warn("failed to list runs for retention", slog.String("error", err.Error()))
		return
	}

	finished := slices.DeleteFunc(runs, func(r *Run) bool { return !r.IsTerminal() })
	excess := len(finished) - s.maxRuns
	if excess <= 0 {
		return
	}

	pruned := 0
	for _, run := range finished[:excess] {
		if err := s.repo.Delete(ctx, run.ID); err != nil && !errors.Is(err, ErrRunNotFound) {
			s.logger.Warn("failed to delete expired run",
				slog.String("run_id", run.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		pruned++
	}

	s.logger.Debug("run history pruned",
		slog.Int("deleted", pruned),
		slog.Int("max_runs", s.maxRuns),
	)
}
