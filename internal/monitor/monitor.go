// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package monitor implements a terminal dashboard showing the progress of a
// running capture.
//
package monitor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/josko7452/qwave-project"
	"github.com/josko7452/qwave-project/capture"
)

// historyLen is the number of rate samples shown in the sparkline.
const historyLen = 32

// Source is what the monitor displays. It is implemented by
// *capture.Controller.
//
type Source interface {
	Stats() []capture.Stat
	Runs() int
}

var (
	defStyle = tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorWhite)
	invStyle = defStyle.Reverse(true)
	capStyle = tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorRed).Reverse(true).Bold(true)
)

// Monitor is a capture dashboard.
//
type Monitor struct {
	screen  tcell.Screen
	src     Source
	divisor uint64 // ps per sample
	rate    []uint64
	total   int
	paused  bool
	done    atomic.Bool
}

// New returns a new Monitor drawing on screen, which must be initialized.
// divisor is the sample period in picoseconds.
//
func New(screen tcell.Screen, src Source, divisor uint64) *Monitor {
	screen.SetStyle(defStyle)
	return &Monitor{
		screen:  screen,
		src:     src,
		divisor: divisor,
		rate:    make([]uint64, historyLen),
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func drawHLine(s tcell.Screen, y int, style tcell.Style) {
	w, _ := s.Size()
	for x := 0; x < w; x++ {
		s.SetContent(x, y, tcell.RuneHLine, nil, style)
	}
}

func (m *Monitor) renderHeader(style tcell.Style, s string) {
	w, _ := m.screen.Size()
	drawText(m.screen, 0, 0, style, fmt.Sprintf("%-*s", w, s))
}

// Tick records the number of samples captured since the last call.
//
func (m *Monitor) Tick() {
	total := 0
	for _, s := range m.src.Stats() {
		total += s.Samples
	}
	d := total - m.total
	if d < 0 {
		d = 0
	}
	m.total = total
	copy(m.rate, m.rate[1:])
	m.rate[len(m.rate)-1] = uint64(d)
}

// Done marks the capture as complete. It may be called from any goroutine.
//
func (m *Monitor) Done() { m.done.Store(true) }

// Render draws the dashboard.
//
func (m *Monitor) Render() {
	if m.paused {
		return
	}
	s := m.screen
	s.Clear()

	if m.done.Load() {
		m.renderHeader(invStyle, "CAPTURE (complete) [q: quit]")
	} else {
		m.renderHeader(capStyle, "CAPTURE (running) [p: pause] [q: stop]")
	}
	y := 1

	stats := m.src.Stats()
	longest := 0
	for _, st := range stats {
		if st.Samples > longest {
			longest = st.Samples
		}
	}
	drawText(s, 0, y, defStyle, fmt.Sprintf("Runs: %d", m.src.Runs()))
	drawText(s, 20, y, defStyle, fmt.Sprintf("Captured: %s", qwave.FormatTimescale(uint64(longest)*m.divisor)))
	y++

	drawHLine(s, y, defStyle)
	y++

	drawText(s, 0, y, defStyle, fmt.Sprintf("%s %10d samples/s", spark(m.rate), m.rate[len(m.rate)-1]))
	y++

	drawHLine(s, y, defStyle)
	y++

	for _, st := range stats {
		drawText(s, 0, y, defStyle, fmt.Sprintf("%-10s %-8s %-20s %10d", st.Device, st.Group, st.Signal.Name(), st.Samples))
		y++
	}
	s.Show()
}

// Loop runs the dashboard until ctx is done or the user quits. stop is
// called when the user asks to stop a running capture. Loop returns once the
// user quits after the capture is complete, or when ctx is done.
//
func (m *Monitor) Loop(ctx context.Context, stop func()) {
	events := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)
	go m.screen.ChannelEvents(events, quit)

	render := time.NewTicker(100 * time.Millisecond)
	defer render.Stop()
	seconds := time.NewTicker(time.Second)
	defer seconds.Stop()

	m.Render()
	for {
		select {
		case <-ctx.Done():
			return
		case <-render.C:
			m.Render()
		case <-seconds.C:
			m.Tick()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				m.screen.Sync()
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' || ev.Rune() == 'Q':
					if m.done.Load() {
						return
					}
					stop()
				case ev.Rune() == 'p' || ev.Rune() == 'P':
					m.paused = !m.paused
				case ev.Key() == tcell.KeyCtrlL:
					m.screen.Sync()
				}
			}
			m.Render()
		}
	}
}
