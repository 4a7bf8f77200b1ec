// Package playback advances through the timesteps of a sequence on a timer.
package playback

import (
	"context"
	"sync"
	"time"
)

const (
	defaultInterval = 500 * time.Millisecond
)

// Player handles automatic timestep advancing. It starts paused.
type Player struct {
	mu                 sync.Mutex
	isPaused           bool
	wasPlayingBeforeOp bool // Tracks if playback was running before a temp pause
	interval           time.Duration
	loop               bool
}

// NewPlayer creates a new Player.
// Interval is the time between timesteps; loop wraps back to the first one.
func NewPlayer(interval time.Duration, loop bool) *Player {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Player{
		isPaused: true,
		interval: interval,
		loop:     loop,
	}
}

// TogglePlayPause toggles the play/pause state.
func (p *Player) TogglePlayPause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isPaused = !p.isPaused
	p.wasPlayingBeforeOp = false // User toggle overrides any operation-specific state
}

// Pause forces playback to pause.
// If forOperation is true, it remembers if playback was running.
func (p *Player) Pause(forOperation bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if forOperation {
		p.wasPlayingBeforeOp = !p.isPaused
	}
	p.isPaused = true
}

// ResumeAfterOperation resumes only if playback was running before Pause(true).
func (p *Player) ResumeAfterOperation() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.wasPlayingBeforeOp {
		p.isPaused = false
	}
	p.wasPlayingBeforeOp = false
}

// IsPaused returns true if playback is currently paused.
func (p *Player) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isPaused
}

// Interval returns the configured interval.
func (p *Player) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// Loop reports whether playback wraps around at the last timestep.
func (p *Player) Loop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loop
}

// SetLoop changes the wrap-around behaviour.
func (p *Player) SetLoop(loop bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loop = loop
}

// Next returns the timestep after current in a sequence of count timesteps.
// ok is false when there is nowhere to go: at the end without looping, or
// with fewer than two timesteps.
func (p *Player) Next(current, count int) (next int, ok bool) {
	if count < 2 {
		return current, false
	}
	if current < 0 || current >= count-1 {
		if current >= count-1 && !p.Loop() {
			return current, false
		}
		return 0, true
	}
	return current + 1, true
}

// Run calls tick every interval while the player is not paused, until ctx is
// done. tick returning false pauses the player (end of sequence).
func (p *Player) Run(ctx context.Context, tick func() bool) {
	ticker := time.NewTicker(p.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.IsPaused() {
				continue
			}
			if !tick() {
				p.Pause(false)
			}
		}
	}
}
