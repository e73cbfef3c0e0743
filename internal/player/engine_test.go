package player

import (
	"errors"
	"testing"
)

type recordingDriver struct {
	played   []string
	paused   int
	resumed  int
	stopped  int
	failNext bool
}

func (d *recordingDriver) Play(url string, positionMS int64) error {
	if d.failNext {
		d.failNext = false
		return errors.New("pipeline failed")
	}
	d.played = append(d.played, url)
	return nil
}
func (d *recordingDriver) Pause() error                   { d.paused++; return nil }
func (d *recordingDriver) Resume() error                  { d.resumed++; return nil }
func (d *recordingDriver) Stop() error                    { d.stopped++; return nil }
func (d *recordingDriver) Seek(positionMS int64) error    { return nil }
func (d *recordingDriver) SetVolume(v float64) error      { return nil }
func (d *recordingDriver) Position() (int64, int64, bool) { return 0, 0, false }

func newTestEngine() (*Engine, *recordingDriver) {
	driver := &recordingDriver{}
	queue := &Queue{}
	return NewEngine(nil, queue, driver), driver
}

func TestEnginePlayCurrentItem(t *testing.T) {
	engine, driver := newTestEngine()
	engine.Queue().Append(Item{Title: "Uprising", URL: "file:///a.mp3"})

	if err := engine.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if len(driver.played) != 1 || driver.played[0] != "file:///a.mp3" {
		t.Fatalf("driver played %v", driver.played)
	}
	if !engine.IsPlaying() {
		t.Fatalf("engine should report playing")
	}
}

func TestEnginePlayEmptyQueue(t *testing.T) {
	engine, _ := newTestEngine()
	if err := engine.Play(); err == nil {
		t.Fatalf("expected error on empty queue")
	}
	if engine.IsPlaying() {
		t.Fatalf("engine must stay stopped")
	}
}

func TestEnginePauseResume(t *testing.T) {
	engine, driver := newTestEngine()
	engine.Queue().Append(Item{URL: "file:///a.mp3"})

	if err := engine.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := engine.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if engine.IsPlaying() {
		t.Fatalf("paused engine reports playing")
	}
	if err := engine.Play(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if driver.resumed != 1 || len(driver.played) != 1 {
		t.Fatalf("resume should not rebuild the pipeline: %+v", driver)
	}
}

func TestEngineAdvanceAfterEnd(t *testing.T) {
	engine, driver := newTestEngine()
	engine.Queue().Append(
		Item{URL: "file:///a.mp3"},
		Item{URL: "file:///b.mp3"},
	)

	if err := engine.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	engine.AdvanceAfterEnd()
	if len(driver.played) != 2 || driver.played[1] != "file:///b.mp3" {
		t.Fatalf("driver played %v", driver.played)
	}

	engine.AdvanceAfterEnd()
	if engine.IsPlaying() {
		t.Fatalf("engine should stop at queue end")
	}
	if driver.stopped == 0 {
		t.Fatalf("driver not stopped at queue end")
	}
}
