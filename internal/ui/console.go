package ui

import (
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/huimingz/commitpanel/internal/panel"
)

// ConsoleSurface renders controller events as plain terminal lines and keeps the
// last generated message for the caller
type ConsoleSurface struct {
	printer *Printer
	writer  io.Writer

	mu      sync.Mutex
	spinner *spinner.Spinner
	result  *panel.CommitResultEvent
}

// NewConsoleSurface creates a console surface writing to w
func NewConsoleSurface(w io.Writer, opts ...PrinterOption) *ConsoleSurface {
	return &ConsoleSurface{
		printer: NewPrinter(w, opts...),
		writer:  w,
	}
}

// Printer returns the underlying printer
func (s *ConsoleSurface) Printer() *Printer {
	return s.printer
}

// StartSpinner shows a spinner with the given suffix until a result, an error or StopSpinner
func (s *ConsoleSurface) StartSpinner(suffix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spinner != nil {
		return
	}
	s.spinner = spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(s.writer))
	s.spinner.Suffix = " " + suffix
	s.spinner.Start()
}

// StopSpinner stops the spinner if running
func (s *ConsoleSurface) StopSpinner() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopSpinnerLocked()
}

func (s *ConsoleSurface) stopSpinnerLocked() {
	if s.spinner != nil {
		s.spinner.Stop()
		s.spinner = nil
	}
}

// Emit implements panel.Surface. Results, errors and successes end the spinner;
// other notices are printed above it.
func (s *ConsoleSurface) Emit(e panel.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := e.(type) {
	case panel.InfoEvent:
		if ev.Level == panel.LevelError || ev.Level == panel.LevelSuccess {
			s.stopSpinnerLocked()
			_ = s.printer.PrintInfoEvent(ev)
			return
		}
		if s.spinner != nil {
			s.spinner.Stop()
			_ = s.printer.PrintInfoEvent(ev)
			s.spinner.Start()
			return
		}
		_ = s.printer.PrintInfoEvent(ev)
	case panel.CommitResultEvent:
		s.stopSpinnerLocked()
		result := ev
		s.result = &result
	}
}

// Result returns the last generated message, if any
func (s *ConsoleSurface) Result() (panel.CommitResultEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return panel.CommitResultEvent{}, false
	}
	return *s.result, true
}
