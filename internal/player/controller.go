package player

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/upskilleo/learning-engine/internal/catalog"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	// resumeEpsilon steps the playhead past the trigger window after a
	// challenge so the same moment does not immediately re-fire.
	resumeEpsilon = 1.0
	defaultVolume = 0.8
)

// State is the controller's transport state.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlaybackState is a snapshot of the controller for callers and the API layer.
type PlaybackState struct {
	IsPlaying                  bool    `json:"is_playing"`
	CurrentTime                float64 `json:"current_time"`
	Duration                   float64 `json:"duration"`
	Volume                     float64 `json:"volume"`
	IsMuted                    bool    `json:"is_muted"`
	LastTriggeredKeyMomentTime float64 `json:"last_triggered_key_moment_time"`
	Completed                  bool    `json:"completed"`
}

// ControllerConfig holds dependencies for a playback controller.
type ControllerConfig struct {
	Media        MediaSource
	KeyMoments   []catalog.KeyMoment
	Tolerance    float64       // seconds, default 1.0
	PollInterval time.Duration // default 100ms
	OnKeyMoment  func(catalog.KeyMoment)
	OnCompleted  func()
}

// Controller owns play/pause/seek/volume state and the polling loop that
// samples the media position, feeds it to the matcher, and pauses playback
// when a key moment is hit. End-of-media is reported exactly once; a key
// moment hit takes precedence over completion within the same tick.
type Controller struct {
	media        MediaSource
	moments      []catalog.KeyMoment
	tolerance    float64
	pollInterval time.Duration
	onKeyMoment  func(catalog.KeyMoment)
	onCompleted  func()

	mu            sync.Mutex
	state         State
	volume        float64
	muted         bool
	lastTriggered float64
	completed     bool
	cancelPoll    context.CancelFunc
}

// NewController creates a playback controller over the given media source.
func NewController(cfg ControllerConfig) *Controller {
	tolerance := cfg.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Controller{
		media:         cfg.Media,
		moments:       cfg.KeyMoments,
		tolerance:     tolerance,
		pollInterval:  interval,
		onKeyMoment:   cfg.OnKeyMoment,
		onCompleted:   cfg.OnCompleted,
		state:         Stopped,
		volume:        defaultVolume,
		lastTriggered: NoTrigger,
	}
}

// Play resumes media playback and starts the polling tick. A media rejection
// (autoplay policy) is logged and leaves the controller Paused; it is not an
// error to the caller.
func (c *Controller) Play(ctx context.Context) {
	c.mu.Lock()
	if c.state == Playing {
		c.mu.Unlock()
		return
	}
	if err := c.media.Play(ctx); err != nil {
		slog.Warn("media playback rejected, staying paused", "error", err)
		c.state = Paused
		c.mu.Unlock()
		return
	}
	c.state = Playing
	c.applyVolume()

	pollCtx, cancel := context.WithCancel(ctx)
	c.cancelPoll = cancel
	c.mu.Unlock()

	go c.pollLoop(pollCtx)
}

// Pause stops polling and pauses the media.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.stopPolling()
	c.media.Pause()
	if c.state == Playing {
		c.state = Paused
	}
	c.mu.Unlock()
}

// Seek moves the playhead, clamped to [0, duration], without altering the
// play state. Seeking backward past the last fired key moment clears the
// re-trigger guard so the moment can fire again on the next forward pass.
func (c *Controller) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seekLocked(seconds)
}

func (c *Controller) seekLocked(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	if dur := c.media.Duration(); dur > 0 && seconds > dur {
		seconds = dur
	}
	c.media.Seek(seconds)
	if c.lastTriggered != NoTrigger && seconds < c.lastTriggered {
		c.lastTriggered = NoTrigger
	}
}

// ResumeAt seeks just past the given key moment time and resumes playing.
// Used after a challenge is dismissed.
func (c *Controller) ResumeAt(ctx context.Context, seconds float64) {
	c.mu.Lock()
	c.seekLocked(seconds + resumeEpsilon)
	c.mu.Unlock()
	c.Play(ctx)
}

// SetVolume stores the volume, bounded to [0,1]. Raising the volume while
// muted unmutes.
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.volume = v
	if v > 0 && c.muted {
		c.muted = false
	}
	c.applyVolume()
}

// ToggleMute flips the mute flag. Muting zeroes the effective volume without
// touching the stored value.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = !c.muted
	c.applyVolume()
}

// Snapshot returns the current playback state.
func (c *Controller) Snapshot() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return PlaybackState{
		IsPlaying:                  c.state == Playing,
		CurrentTime:                c.media.CurrentTime(),
		Duration:                   c.media.Duration(),
		Volume:                     c.volume,
		IsMuted:                    c.muted,
		LastTriggeredKeyMomentTime: c.lastTriggered,
		Completed:                  c.completed,
	}
}

// Close stops the polling loop. The controller is not reusable afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopPolling()
	c.state = Stopped
	c.mu.Unlock()
}

func (c *Controller) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick is one polling sample. Key-moment detection runs before the
// end-of-media check, and at most one of the two fires per tick.
func (c *Controller) tick() {
	c.mu.Lock()
	if c.state != Playing {
		c.mu.Unlock()
		return
	}

	current := c.media.CurrentTime()

	if km, ok := FindTriggeredMoment(c.moments, current, c.lastTriggered, c.tolerance); ok {
		c.media.Pause()
		c.state = Paused
		c.lastTriggered = km.TimeInSeconds
		c.stopPolling()
		onKeyMoment := c.onKeyMoment
		c.mu.Unlock()
		if onKeyMoment != nil {
			onKeyMoment(km)
		}
		return
	}

	if dur := c.media.Duration(); dur > 0 && current >= dur && !c.completed {
		c.completed = true
		c.media.Pause()
		c.state = Stopped
		c.stopPolling()
		onCompleted := c.onCompleted
		c.mu.Unlock()
		if onCompleted != nil {
			onCompleted()
		}
		return
	}

	c.mu.Unlock()
}

// stopPolling must be called with the mutex held.
func (c *Controller) stopPolling() {
	if c.cancelPoll != nil {
		c.cancelPoll()
		c.cancelPoll = nil
	}
}

// applyVolume must be called with the mutex held.
func (c *Controller) applyVolume() {
	effective := c.volume
	if c.muted {
		effective = 0
	}
	c.media.SetVolume(effective)
}
