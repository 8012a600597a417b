package state

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	minSpeed = 0.25
	maxSpeed = 16
)

// PlaybackState moves the playback time through the plan. Time is
// measured in timesteps and Speed in timesteps per second.
type PlaybackState struct {
	mu sync.Mutex

	clock       clock.Clock
	currentTime float64
	maxTime     float64
	speed       float64
	playing     bool
	lastUpdate  time.Time
}

// NewPlaybackState creates a paused playback over [0, maxTime].
func NewPlaybackState(maxTime float64, clk clock.Clock) *PlaybackState {
	if clk == nil {
		clk = clock.New()
	}
	return &PlaybackState{
		clock:      clk,
		maxTime:    maxTime,
		speed:      2,
		lastUpdate: clk.Now(),
	}
}

// TogglePlay starts or stops playback. Starting at the end rewinds.
func (p *PlaybackState) TogglePlay() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = !p.playing
	if p.playing {
		p.lastUpdate = p.clock.Now()
		if p.currentTime >= p.maxTime {
			p.currentTime = 0
		}
	}
}

// Reset rewinds and pauses.
func (p *PlaybackState) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentTime = 0
	p.playing = false
}

// Advance moves the time by the wall time elapsed since the last call.
func (p *PlaybackState) Advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	now := p.clock.Now()
	p.currentTime += now.Sub(p.lastUpdate).Seconds() * p.speed
	p.lastUpdate = now
	if p.currentTime >= p.maxTime {
		p.currentTime = p.maxTime
		p.playing = false
	}
}

// SetTime seeks to t, clamped to the plan.
func (p *PlaybackState) SetTime(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentTime = math.Max(0, math.Min(t, p.maxTime))
}

// SetMaxTime changes the plan length.
func (p *PlaybackState) SetMaxTime(t float64) {
	p.mu.Lock()
	p.maxTime = t
	p.mu.Unlock()
	p.SetTime(p.Time())
}

// StepForward pauses and moves to the next whole timestep.
func (p *PlaybackState) StepForward() {
	p.mu.Lock()
	p.playing = false
	next := math.Floor(p.currentTime) + 1
	p.mu.Unlock()
	p.SetTime(next)
}

// StepBack pauses and moves to the previous whole timestep.
func (p *PlaybackState) StepBack() {
	p.mu.Lock()
	p.playing = false
	prev := math.Ceil(p.currentTime) - 1
	p.mu.Unlock()
	p.SetTime(prev)
}

// SetSpeed sets the speed, clamped to a usable range.
func (p *PlaybackState) SetSpeed(speed float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = math.Max(minSpeed, math.Min(speed, maxSpeed))
}

// Speed returns the playback speed.
func (p *PlaybackState) Speed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

// Time returns the playback time.
func (p *PlaybackState) Time() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentTime
}

// MaxTime returns the plan length.
func (p *PlaybackState) MaxTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxTime
}

// Playing reports whether playback is running.
func (p *PlaybackState) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Progress returns the playback position as a fraction of the plan.
func (p *PlaybackState) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.maxTime <= 0 {
		return 0
	}
	return p.currentTime / p.maxTime
}
