// Package session coordinates a lesson viewing session: the transitions
// between watching video, solving a challenge, and reviewing feedback, and the
// completion/unlock mutations they apply to the course progress model.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/upskilleo/learning-engine/internal/catalog"
	"github.com/upskilleo/learning-engine/internal/events"
	"github.com/upskilleo/learning-engine/internal/grading"
	"github.com/upskilleo/learning-engine/internal/player"
	"github.com/upskilleo/learning-engine/internal/progress"
)

const (
	defaultFeedbackResumeDelay = 5 * time.Second
	defaultAutoAdvanceDelay    = 3 * time.Second
	fallbackDurationSeconds    = 90
)

// ErrLessonLocked is returned when the user navigates to a lesson whose
// prerequisite has not been completed.
var ErrLessonLocked = errors.New("lesson is locked")

// Mode is the session's top-level state.
type Mode int

const (
	Watching Mode = iota
	Challenge
	Feedback
)

func (m Mode) String() string {
	switch m {
	case Watching:
		return "watching"
	case Challenge:
		return "challenge"
	case Feedback:
		return "feedback"
	default:
		return "unknown"
	}
}

// Config holds dependencies for a lesson session.
type Config struct {
	Course   catalog.Course
	UserID   string
	Grader   grading.Grader // default grading.FirstLineGrader
	Events   events.Logger  // default events.NopLogger
	Notifier Notifier       // default SlogNotifier

	// NewMedia builds the media source for a lesson. Defaults to a simulated
	// stream sized from the lesson's duration label.
	NewMedia func(lesson catalog.Lesson) player.MediaSource

	PollInterval        time.Duration
	Tolerance           float64
	FeedbackResumeDelay time.Duration // default 5s
	AutoAdvanceDelay    time.Duration // default 3s
}

// Status is a read snapshot of the session for the API layer.
type Status struct {
	ID              string               `json:"id"`
	CourseID        string               `json:"course_id"`
	ModuleIndex     int                  `json:"module_index"`
	LessonIndex     int                  `json:"lesson_index"`
	Mode            string               `json:"mode"`
	ActiveKeyMoment *catalog.KeyMoment   `json:"active_key_moment,omitempty"`
	CodeBuffer      string               `json:"code_buffer"`
	Fullscreen      bool                 `json:"fullscreen"`
	Playback        player.PlaybackState `json:"playback"`
	OverallProgress float64              `json:"overall_progress"`
	Modules         []catalog.Module     `json:"modules"`
}

// Session is the lesson session orchestrator. It owns the playback controller
// for the current lesson, the working code buffer, and all scheduled delays;
// it is the single writer of the module collection it holds.
type Session struct {
	id       string
	userID   string
	course   catalog.Course
	grader   grading.Grader
	events   events.Logger
	notifier Notifier
	newMedia func(lesson catalog.Lesson) player.MediaSource

	pollInterval time.Duration
	tolerance    float64
	resumeDelay  time.Duration
	advanceDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	modules     []catalog.Module
	moduleIndex int
	lessonIndex int
	mode        Mode
	active      *catalog.KeyMoment
	codeBuffer  string
	fullscreen  bool
	controller  *player.Controller
	timer       *time.Timer
	generation  int
	closed      bool
}

// New creates a session over the given course and starts its first unlocked
// lesson in Watching mode. Playback does not start until Play is called.
func New(cfg Config) *Session {
	grader := cfg.Grader
	if grader == nil {
		grader = grading.NewFirstLineGrader()
	}
	logger := cfg.Events
	if logger == nil {
		logger = events.NopLogger{}
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = SlogNotifier{}
	}
	newMedia := cfg.NewMedia
	if newMedia == nil {
		newMedia = defaultMedia
	}
	resumeDelay := cfg.FeedbackResumeDelay
	if resumeDelay == 0 {
		resumeDelay = defaultFeedbackResumeDelay
	}
	advanceDelay := cfg.AutoAdvanceDelay
	if advanceDelay == 0 {
		advanceDelay = defaultAutoAdvanceDelay
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		id:           uuid.NewString(),
		userID:       cfg.UserID,
		course:       cfg.Course,
		grader:       grader,
		events:       logger,
		notifier:     notifier,
		newMedia:     newMedia,
		pollInterval: cfg.PollInterval,
		tolerance:    cfg.Tolerance,
		resumeDelay:  resumeDelay,
		advanceDelay: advanceDelay,
		ctx:          ctx,
		cancel:       cancel,
		modules:      cfg.Course.CloneModules(),
		codeBuffer:   defaultCodeBuffer,
	}

	progress.NormalizeLocks(s.modules)
	progress.Recompute(s.modules)

	s.mu.Lock()
	s.startLessonLocked(0, 0)
	s.mu.Unlock()

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Play starts or resumes playback of the current lesson.
func (s *Session) Play() {
	s.mu.Lock()
	c := s.controller
	s.mu.Unlock()
	if c != nil {
		c.Play(s.ctx)
	}
}

// Pause pauses playback of the current lesson.
func (s *Session) Pause() {
	s.mu.Lock()
	c := s.controller
	s.mu.Unlock()
	if c != nil {
		c.Pause()
	}
}

// Seek moves the playhead of the current lesson.
func (s *Session) Seek(seconds float64) {
	s.mu.Lock()
	c := s.controller
	s.mu.Unlock()
	if c != nil {
		c.Seek(seconds)
	}
}

// SetVolume adjusts playback volume.
func (s *Session) SetVolume(v float64) {
	s.mu.Lock()
	c := s.controller
	s.mu.Unlock()
	if c != nil {
		c.SetVolume(v)
	}
}

// ToggleMute flips the mute flag.
func (s *Session) ToggleMute() {
	s.mu.Lock()
	c := s.controller
	s.mu.Unlock()
	if c != nil {
		c.ToggleMute()
	}
}

// ToggleFullscreen flips the fullscreen flag. Any pending scheduled
// transition is cancelled so it cannot fire against a stale layout.
func (s *Session) ToggleFullscreen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateTimerLocked()
	s.fullscreen = !s.fullscreen
	return s.fullscreen
}

// SetCode replaces the working code buffer.
func (s *Session) SetCode(code string) {
	s.mu.Lock()
	s.codeBuffer = code
	s.mu.Unlock()
}

// SelectLesson is explicit user navigation. Locked targets are rejected with
// no state change; out-of-range indices fall back to the first lesson. Any
// pending scheduled transition for the previous lesson is cancelled.
func (s *Session) SelectLesson(moduleIndex, lessonIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("session closed")
	}

	if moduleIndex < 0 || moduleIndex >= len(s.modules) ||
		lessonIndex < 0 || lessonIndex >= len(s.modules[moduleIndex].Lessons) {
		moduleIndex, lessonIndex = 0, 0
	}
	if moduleIndex < len(s.modules) && lessonIndex < len(s.modules[moduleIndex].Lessons) &&
		s.modules[moduleIndex].Lessons[lessonIndex].Locked {
		return ErrLessonLocked
	}

	s.invalidateTimerLocked()
	s.fullscreen = false
	s.startLessonLocked(moduleIndex, lessonIndex)
	progress.Recompute(s.modules)
	return nil
}

// Submit evaluates the working code against the active challenge. On success
// the session shows feedback and schedules an automatic resume; on failure it
// stays in Challenge mode.
func (s *Session) Submit(code string) grading.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.active == nil || s.mode == Watching {
		return grading.Result{}
	}

	s.codeBuffer = code
	result := s.grader.Evaluate(code, s.active.Solution)

	s.logEventLocked(events.TypeChallengeSubmitted, map[string]any{
		"key_moment_id": s.active.ID,
		"correct":       result.Correct,
	})

	if result.Correct {
		s.mode = Feedback
		s.notifier.Success("Great job! Your solution is correct!", "")
		s.scheduleLocked(s.resumeDelay, s.resumeLocked)
	} else {
		s.mode = Challenge
		s.notifier.Info("Try again! Your solution needs some work.", "")
	}
	return result
}

// Skip abandons the active challenge: the lesson's section is marked
// completed (skipping still counts as progress) and playback resumes.
func (s *Session) Skip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.active == nil {
		return
	}

	progress.MarkSectionCompleted(s.modules, s.moduleIndex, s.lessonIndex)
	progress.Recompute(s.modules)

	s.logEventLocked(events.TypeChallengeSkipped, map[string]any{
		"key_moment_id": s.active.ID,
	})
	s.logEventLocked(events.TypeModuleProgressChanged, map[string]any{
		"module_index": s.moduleIndex,
		"progress":     s.modules[s.moduleIndex].Progress,
	})
	s.notifier.Info("Challenge skipped. Moving on to the next part.", "")

	s.resumeLocked()
}

// Resume returns the session to Watching mode and resumes playback just past
// the moment that triggered the challenge.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.resumeLocked()
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	var playback player.PlaybackState
	if s.controller != nil {
		playback = s.controller.Snapshot()
	}
	return Status{
		ID:              s.id,
		CourseID:        s.course.ID,
		ModuleIndex:     s.moduleIndex,
		LessonIndex:     s.lessonIndex,
		Mode:            s.mode.String(),
		ActiveKeyMoment: s.active,
		CodeBuffer:      s.codeBuffer,
		Fullscreen:      s.fullscreen,
		Playback:        playback,
		OverallProgress: progress.OverallLessonProgress(s.modules),
		Modules:         s.modules,
	}
}

// Close cancels pending timers and stops playback. The session is not
// reusable afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.invalidateTimerLocked()
	if s.controller != nil {
		s.controller.Close()
	}
	s.cancel()
}

// startLessonLocked tears down the previous lesson's controller and builds a
// fresh one for the target lesson. Callers hold s.mu and have validated (or
// defaulted) the indices.
func (s *Session) startLessonLocked(moduleIndex, lessonIndex int) {
	if s.controller != nil {
		s.controller.Close()
	}

	s.moduleIndex = moduleIndex
	s.lessonIndex = lessonIndex
	s.mode = Watching
	s.active = nil
	s.codeBuffer = defaultCodeBuffer

	lesson := catalog.Lesson{}
	if moduleIndex < len(s.modules) && lessonIndex < len(s.modules[moduleIndex].Lessons) {
		lesson = s.modules[moduleIndex].Lessons[lessonIndex]
	}
	if lesson.VideoURL == "" {
		lesson.VideoURL = catalog.DefaultVideoURL
	}

	// Callbacks carry the controller that fired them; a callback already in
	// flight when the session moves to another lesson is discarded.
	var ctrl *player.Controller
	ctrl = player.NewController(player.ControllerConfig{
		Media:        s.newMedia(lesson),
		KeyMoments:   lesson.KeyMoments,
		Tolerance:    s.tolerance,
		PollInterval: s.pollInterval,
		OnKeyMoment:  func(km catalog.KeyMoment) { s.handleKeyMoment(ctrl, km) },
		OnCompleted:  func() { s.handleVideoCompleted(ctrl) },
	})
	s.controller = ctrl

	s.logEventLocked(events.TypeLessonStarted, map[string]any{
		"module_index": moduleIndex,
		"lesson_index": lessonIndex,
		"lesson_id":    lesson.ID,
	})
}

// handleKeyMoment runs on the controller's polling goroutine when a marker is
// hit; the controller has already paused the media.
func (s *Session) handleKeyMoment(from *player.Controller, km catalog.KeyMoment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.controller != from {
		return
	}

	s.mode = Challenge
	moment := km
	s.active = &moment
	s.codeBuffer = seedCode(km)

	s.logEventLocked(events.TypeKeyMomentEncountered, map[string]any{
		"key_moment_id": km.ID,
		"time":          km.TimeInSeconds,
	})
	s.notifier.Info("Coding challenge", km.Challenge)
}

// handleVideoCompleted runs once per lesson on the controller's polling
// goroutine when the playhead reaches the end of the media.
func (s *Session) handleVideoCompleted(from *player.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.controller != from {
		return
	}

	progress.CompleteLesson(s.modules, s.moduleIndex, s.lessonIndex)
	progress.Recompute(s.modules)

	s.logEventLocked(events.TypeLessonCompleted, map[string]any{
		"module_index": s.moduleIndex,
		"lesson_index": s.lessonIndex,
	})
	s.logEventLocked(events.TypeModuleProgressChanged, map[string]any{
		"module_index": s.moduleIndex,
		"progress":     s.modules[s.moduleIndex].Progress,
	})
	s.notifier.Success("Lesson completed!", "Moving to the next lesson automatically in 3 seconds")

	s.scheduleLocked(s.advanceDelay, s.advanceLocked)
}

// resumeLocked returns to Watching and steps playback past the trigger
// window. Any pending scheduled resume is cancelled first so a manual
// Resume or Skip during feedback does not leave a stale timer that would
// seek backward later. Callers hold s.mu.
func (s *Session) resumeLocked() {
	s.invalidateTimerLocked()
	s.mode = Watching
	s.active = nil
	if s.controller == nil {
		return
	}
	last := s.controller.Snapshot().LastTriggeredKeyMomentTime
	if last == player.NoTrigger {
		last = 0
	}
	// ResumeAt takes the controller's own lock; safe while holding s.mu since
	// controller callbacks never run with its lock held.
	s.controller.ResumeAt(s.ctx, last)
}

// advanceLocked moves to the next unlocked lesson after the auto-advance
// delay. Callers hold s.mu.
func (s *Session) advanceLocked() {
	mi, li, ok := progress.NextLesson(s.modules, s.moduleIndex, s.lessonIndex)
	if !ok || s.modules[mi].Lessons[li].Locked {
		s.fullscreen = false
		return
	}
	s.fullscreen = false
	s.startLessonLocked(mi, li)
	progress.Recompute(s.modules)
}

// scheduleLocked arms the session's single delayed transition. A later
// navigation or fullscreen toggle invalidates it via the generation counter,
// so a stale timer can never mutate state for a different lesson. Callers
// hold s.mu.
func (s *Session) scheduleLocked(d time.Duration, fn func()) {
	s.invalidateTimerLocked()
	gen := s.generation
	s.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || gen != s.generation {
			return
		}
		fn()
	})
}

// invalidateTimerLocked cancels any pending scheduled transition. Callers
// hold s.mu.
func (s *Session) invalidateTimerLocked() {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) logEventLocked(eventType string, data map[string]any) {
	if err := s.events.LogEvent(events.Event{
		UserID:    s.userID,
		CourseID:  s.course.ID,
		SessionID: s.id,
		EventType: eventType,
		Data:      data,
	}); err != nil {
		// Event logging is best effort; sessions never fail on it.
		slog.Warn("failed to log session event", "type", eventType, "error", err)
	}
}

// defaultMedia builds a simulated stream sized from the lesson's duration
// label ("mm:ss"), falling back to 90 seconds when the label is absent or
// malformed.
func defaultMedia(lesson catalog.Lesson) player.MediaSource {
	return player.NewSimulatedSource(parseDurationLabel(lesson.Duration))
}

func parseDurationLabel(label string) float64 {
	parts := strings.Split(strings.TrimSpace(label), ":")
	if len(parts) != 2 {
		return fallbackDurationSeconds
	}
	minutes, err1 := strconv.Atoi(parts[0])
	seconds, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || minutes < 0 || seconds < 0 || seconds > 59 {
		return fallbackDurationSeconds
	}
	return float64(minutes*60 + seconds)
}
