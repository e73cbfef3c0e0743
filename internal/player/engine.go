package player

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Driver executes playback actions against the audio backend.
type Driver interface {
	Play(url string, positionMS int64) error
	Pause() error
	Resume() error
	Stop() error
	Seek(positionMS int64) error
	SetVolume(volume float64) error
	Position() (positionMS int64, durationMS int64, ok bool)
}

// Status is the engine's coarse playback state.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
)

// Engine drives a queue through a driver.
type Engine struct {
	log   *zap.Logger
	queue *Queue

	mu      sync.Mutex
	driver  Driver
	status  Status
	current Item
}

// NewEngine creates an engine around queue and driver.
func NewEngine(log *zap.Logger, queue *Queue, driver Driver) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log, queue: queue, driver: driver, status: StatusStopped}
}

// Queue exposes the engine's queue.
func (e *Engine) Queue() *Queue {
	return e.queue
}

// Play starts playing the current queue item. A paused engine resumes
// instead of restarting the pipeline.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == StatusPaused {
		if err := e.driver.Resume(); err != nil {
			return err
		}
		e.status = StatusPlaying
		return nil
	}
	return e.playCurrentLocked()
}

func (e *Engine) playCurrentLocked() error {
	item, ok := e.queue.Current()
	if !ok {
		return errors.New("queue empty")
	}
	if item.URL == "" {
		return errors.New("item not resolved")
	}
	if err := e.driver.Play(item.URL, 0); err != nil {
		return err
	}
	e.status = StatusPlaying
	e.current = item
	e.log.Debug("playback started",
		zap.String("artist", item.Artist),
		zap.String("title", item.Title),
	)
	return nil
}

// Pause pauses playback.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusPlaying {
		return errors.New("not playing")
	}
	if err := e.driver.Pause(); err != nil {
		return err
	}
	e.status = StatusPaused
	return nil
}

// Stop stops playback.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.driver.Stop(); err != nil {
		return err
	}
	e.status = StatusStopped
	e.current = Item{}
	return nil
}

// Next advances the queue and starts the new current item.
func (e *Engine) Next() error {
	if _, ok := e.queue.Next(); !ok {
		return errors.New("end of queue")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playCurrentLocked()
}

// Prev steps back and starts the new current item.
func (e *Engine) Prev() error {
	if _, ok := e.queue.Prev(); !ok {
		return errors.New("start of queue")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playCurrentLocked()
}

// IsPlaying reports whether playback is active.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status == StatusPlaying
}

// PlaybackStatus returns the coarse playback state.
func (e *Engine) PlaybackStatus() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Current returns the item the engine last started, if any.
func (e *Engine) Current() (Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current, e.status != StatusStopped
}

// AdvanceAfterEnd moves to the next item when a track finishes, stopping
// at the end of the queue.
func (e *Engine) AdvanceAfterEnd() {
	e.mu.Lock()
	if e.status != StatusPlaying {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	if _, ok := e.queue.Next(); !ok {
		if err := e.Stop(); err != nil {
			e.log.Warn("stop after queue end failed", zap.Error(err))
		}
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.playCurrentLocked(); err != nil {
		e.log.Warn("advance failed", zap.Error(err))
		_ = e.driver.Stop()
		e.status = StatusStopped
	}
}
