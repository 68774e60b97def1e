package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/workhours/internal/calc"
)

var errNotPunchedIn = errors.New("not punched in")

// timerState tracks the punch clock.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused // on break
)

// timerModel is a punch clock: it runs from punch-in to punch-out, and time
// spent paused is counted as break. Stopping it yields a work-day entry.
type timerModel struct {
	now func() time.Time

	state     timerState
	startTime time.Time
	pausedAt  time.Time
	pauseGap  time.Duration
}

func newTimerModel(now func() time.Time) timerModel {
	if now == nil {
		now = time.Now
	}
	return timerModel{now: now, state: timerStopped}
}

func (t *timerModel) start() bool {
	if t.state != timerStopped {
		return false
	}
	t.state = timerRunning
	t.startTime = t.now().Truncate(time.Minute)
	t.pauseGap = 0
	return true
}

// stop ends the shift and returns it as an entry. An entry only holds clock
// times, so a shift of 24 hours or more is dropped with an error instead.
func (t *timerModel) stop() (calc.Entry, error) {
	if t.state == timerStopped {
		return calc.Entry{}, errNotPunchedIn
	}
	if t.state == timerPaused {
		t.resume()
	}
	end := t.now().Truncate(time.Minute)
	t.state = timerStopped
	if span := end.Sub(t.startTime); span >= 24*time.Hour {
		return calc.Entry{}, fmt.Errorf("shift since %s lasted %s, enter it in the log instead",
			t.startTime.Format("2006-01-02 15:04"), formatDuration(span))
	}
	e := calc.Entry{
		Date:         t.startTime.Format(calc.DateLayout),
		StartTime:    t.startTime.Format("15:04"),
		EndTime:      end.Format("15:04"),
		BreakMinutes: int(t.pauseGap / time.Minute),
		Type:         calc.WorkDay,
	}
	return e, nil
}

func (t *timerModel) pause() {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pausedAt = t.now()
}

func (t *timerModel) resume() {
	if t.state != timerPaused {
		return
	}
	t.pauseGap += t.now().Sub(t.pausedAt)
	t.state = timerRunning
}

func (t *timerModel) toggle() {
	switch t.state {
	case timerRunning:
		t.pause()
	case timerPaused:
		t.resume()
	}
}

func (t timerModel) running() bool {
	return t.state != timerStopped
}

func (t timerModel) paused() bool {
	return t.state == timerPaused
}

// currentElapsed is the worked time so far, excluding breaks.
func (t timerModel) currentElapsed() time.Duration {
	switch t.state {
	case timerStopped:
		return 0
	case timerPaused:
		return t.pausedAt.Sub(t.startTime) - t.pauseGap
	}
	return t.now().Sub(t.startTime) - t.pauseGap
}

// breakTaken is the break time so far, including a running pause.
func (t timerModel) breakTaken() time.Duration {
	if t.state == timerPaused {
		return t.pauseGap + t.now().Sub(t.pausedAt)
	}
	return t.pauseGap
}
