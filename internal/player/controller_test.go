package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/upskilleo/learning-engine/internal/catalog"
)

// fakeMedia is a scripted media source; tests move the playhead themselves
// and drive the controller with direct tick calls.
type fakeMedia struct {
	mu      sync.Mutex
	pos     float64
	dur     float64
	playing bool
	volume  float64
	playErr error
}

func (m *fakeMedia) Play(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	m.playing = true
	return nil
}

func (m *fakeMedia) Pause() {
	m.mu.Lock()
	m.playing = false
	m.mu.Unlock()
}

func (m *fakeMedia) Seek(seconds float64) {
	m.mu.Lock()
	m.pos = seconds
	m.mu.Unlock()
}

func (m *fakeMedia) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

func (m *fakeMedia) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dur
}

func (m *fakeMedia) SetVolume(v float64) {
	m.mu.Lock()
	m.volume = v
	m.mu.Unlock()
}

func (m *fakeMedia) set(pos float64) {
	m.mu.Lock()
	m.pos = pos
	m.mu.Unlock()
}

// newTestController builds a controller whose background poll ticker never
// fires; tests call tick directly instead.
func newTestController(t *testing.T, media *fakeMedia, kms []catalog.KeyMoment, onKM func(catalog.KeyMoment), onDone func()) *Controller {
	t.Helper()
	c := NewController(ControllerConfig{
		Media:        media,
		KeyMoments:   kms,
		PollInterval: time.Hour,
		OnKeyMoment:  onKM,
		OnCompleted:  onDone,
	})
	t.Cleanup(c.Close)
	return c
}

func TestControllerPausesAtKeyMoment(t *testing.T) {
	media := &fakeMedia{dur: 90}
	var fired []catalog.KeyMoment
	c := newTestController(t, media, moments(15, 45), func(km catalog.KeyMoment) {
		fired = append(fired, km)
	}, nil)

	c.Play(context.Background())

	for pos := 0.0; pos < 15.5; pos += 0.1 {
		media.set(pos)
		c.tick()
	}

	if len(fired) != 1 {
		t.Fatalf("key moments fired = %d, want 1", len(fired))
	}
	if fired[0].TimeInSeconds != 15 {
		t.Errorf("fired at %g, want 15", fired[0].TimeInSeconds)
	}

	snap := c.Snapshot()
	if snap.IsPlaying {
		t.Error("expected playback paused after key moment")
	}
	if snap.LastTriggeredKeyMomentTime != 15 {
		t.Errorf("last triggered = %g, want 15", snap.LastTriggeredKeyMomentTime)
	}
	if media.playing {
		t.Error("expected media paused")
	}
}

func TestControllerDoesNotRefireSameMoment(t *testing.T) {
	media := &fakeMedia{dur: 90}
	count := 0
	c := newTestController(t, media, moments(15), func(catalog.KeyMoment) { count++ }, nil)

	c.Play(context.Background())
	media.set(15.2)
	c.tick()

	// Resume inside the same window; the guard keeps the moment quiet.
	c.ResumeAt(context.Background(), 15)
	c.tick()
	if count != 1 {
		t.Fatalf("key moment fired %d times, want 1", count)
	}
	if got := media.CurrentTime(); got != 16 {
		t.Errorf("resume position = %g, want 16", got)
	}
}

func TestControllerSeekBackRearmsMoment(t *testing.T) {
	media := &fakeMedia{dur: 90}
	count := 0
	c := newTestController(t, media, moments(30), func(catalog.KeyMoment) { count++ }, nil)

	c.Play(context.Background())
	media.set(30.3)
	c.tick()
	if count != 1 {
		t.Fatalf("key moment fired %d times, want 1", count)
	}

	// Rewinding past the moment clears the guard; a forward pass fires again.
	c.Seek(10)
	c.Play(context.Background())
	media.set(30.3)
	c.tick()
	if count != 2 {
		t.Errorf("key moment fired %d times after rewind, want 2", count)
	}
}

func TestControllerCompletion(t *testing.T) {
	media := &fakeMedia{dur: 60}
	done := 0
	c := newTestController(t, media, nil, nil, func() { done++ })

	c.Play(context.Background())
	media.set(60)
	c.tick()
	c.tick()

	if done != 1 {
		t.Fatalf("completion fired %d times, want 1", done)
	}
	snap := c.Snapshot()
	if !snap.Completed {
		t.Error("expected completed snapshot")
	}
	if snap.IsPlaying {
		t.Error("expected playback stopped at end of media")
	}
}

func TestControllerKeyMomentBeatsCompletion(t *testing.T) {
	media := &fakeMedia{dur: 60}
	var gotKM, gotDone bool
	c := newTestController(t, media, moments(60), func(catalog.KeyMoment) { gotKM = true }, func() { gotDone = true })

	c.Play(context.Background())
	media.set(60)
	c.tick()

	if !gotKM {
		t.Error("expected key moment to fire at end of media")
	}
	if gotDone {
		t.Error("completion must not fire on the same tick as a key moment")
	}
}

func TestControllerAutoplayRejection(t *testing.T) {
	media := &fakeMedia{dur: 60, playErr: errors.New("autoplay blocked")}
	c := newTestController(t, media, nil, nil, nil)

	c.Play(context.Background())

	snap := c.Snapshot()
	if snap.IsPlaying {
		t.Error("expected paused state after media rejection")
	}
	if media.playing {
		t.Error("media must not be playing after rejection")
	}
}

func TestControllerSeekClamps(t *testing.T) {
	media := &fakeMedia{dur: 60}
	c := newTestController(t, media, nil, nil, nil)

	c.Seek(-5)
	if got := media.CurrentTime(); got != 0 {
		t.Errorf("seek below zero landed at %g, want 0", got)
	}
	c.Seek(500)
	if got := media.CurrentTime(); got != 60 {
		t.Errorf("seek past end landed at %g, want 60", got)
	}
}

func TestControllerVolumeAndMute(t *testing.T) {
	media := &fakeMedia{dur: 60}
	c := newTestController(t, media, nil, nil, nil)

	c.SetVolume(0.5)
	if media.volume != 0.5 {
		t.Errorf("effective volume = %g, want 0.5", media.volume)
	}

	c.ToggleMute()
	if media.volume != 0 {
		t.Errorf("muted effective volume = %g, want 0", media.volume)
	}
	if snap := c.Snapshot(); snap.Volume != 0.5 || !snap.IsMuted {
		t.Errorf("snapshot volume = %g muted = %v, want stored 0.5 and muted", snap.Volume, snap.IsMuted)
	}

	// Raising the volume unmutes.
	c.SetVolume(0.7)
	if snap := c.Snapshot(); snap.IsMuted {
		t.Error("expected unmuted after raising volume")
	}
	if media.volume != 0.7 {
		t.Errorf("effective volume = %g, want 0.7", media.volume)
	}

	c.SetVolume(1.5)
	if snap := c.Snapshot(); snap.Volume != 1 {
		t.Errorf("volume = %g, want clamp to 1", snap.Volume)
	}
}

func TestSimulatedSource(t *testing.T) {
	current := time.Unix(0, 0)
	src := NewSimulatedSource(90)
	src.now = func() time.Time { return current }

	if got := src.CurrentTime(); got != 0 {
		t.Fatalf("initial position = %g, want 0", got)
	}

	if err := src.Play(context.Background()); err != nil {
		t.Fatalf("play: %v", err)
	}
	current = current.Add(10 * time.Second)
	if got := src.CurrentTime(); got != 10 {
		t.Errorf("position after 10s = %g, want 10", got)
	}

	src.Pause()
	current = current.Add(30 * time.Second)
	if got := src.CurrentTime(); got != 10 {
		t.Errorf("position while paused = %g, want 10", got)
	}

	src.Seek(80)
	if err := src.Play(context.Background()); err != nil {
		t.Fatalf("play: %v", err)
	}
	current = current.Add(30 * time.Second)
	if got := src.CurrentTime(); got != 90 {
		t.Errorf("position caps at duration, got %g want 90", got)
	}
}
