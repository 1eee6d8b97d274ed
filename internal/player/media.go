// Package player drives lesson video playback: it samples the media position
// on a fixed interval, matches key moments, and surfaces pause/complete
// transitions to the session layer.
package player

import (
	"context"
	"sync"
	"time"
)

// MediaSource is the opaque seekable stream behind a lesson video. The engine
// only needs position, duration, transport control, and volume; a push-based
// media API can be adapted behind this interface without touching the matcher
// or the session layer.
type MediaSource interface {
	// Play starts or resumes playback. A rejection (autoplay policy or the
	// like) is returned as an error; it is recoverable.
	Play(ctx context.Context) error
	Pause()
	// Seek moves the playhead to the given position in seconds.
	Seek(seconds float64)
	// CurrentTime returns the playhead position in seconds.
	CurrentTime() float64
	// Duration returns the media length in seconds, or 0 until metadata is
	// known.
	Duration() float64
	// SetVolume sets the effective output volume in [0,1].
	SetVolume(v float64)
}

// SimulatedSource is a wall-clock-driven MediaSource used when no real media
// engine backs a lesson. The playhead advances in real time while playing and
// caps at the configured duration.
type SimulatedSource struct {
	mu       sync.Mutex
	duration float64
	offset   float64
	playing  bool
	since    time.Time
	now      func() time.Time
}

// NewSimulatedSource creates a simulated stream of the given length in seconds.
func NewSimulatedSource(duration float64) *SimulatedSource {
	return &SimulatedSource{
		duration: duration,
		now:      time.Now,
	}
}

func (s *SimulatedSource) Play(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		s.playing = true
		s.since = s.now()
	}
	return nil
}

func (s *SimulatedSource) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		s.offset = s.position()
		s.playing = false
	}
}

func (s *SimulatedSource) Seek(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = seconds
	s.since = s.now()
}

func (s *SimulatedSource) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position()
}

func (s *SimulatedSource) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

func (s *SimulatedSource) SetVolume(float64) {}

// position must be called with the mutex held.
func (s *SimulatedSource) position() float64 {
	pos := s.offset
	if s.playing {
		pos += s.now().Sub(s.since).Seconds()
	}
	if s.duration > 0 && pos > s.duration {
		return s.duration
	}
	if pos < 0 {
		return 0
	}
	return pos
}
